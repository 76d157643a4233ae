package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/saigonmart/backend/pkg/types"
)

// CartItem snapshots one purchasable line: product, variant selection, and
// the unit price computed at the time the line was added. Quantity is always
// at least 1; dropping to zero removes the row instead.
type CartItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID       uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName  string          `gorm:"column:product_name;not null"`
	Selection    types.Selection `gorm:"column:selection;type:jsonb;serializer:json"`
	Quantity     int             `gorm:"column:quantity;not null"`
	UnitPrice    int64           `gorm:"column:unit_price;not null"`
	LineSubtotal int64           `gorm:"column:line_subtotal;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
