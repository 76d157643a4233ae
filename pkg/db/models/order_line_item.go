package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/saigonmart/backend/pkg/types"
)

// OrderLineItem freezes the product name, selection, and unit price a buyer
// agreed to at checkout time.
type OrderLineItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName  string          `gorm:"column:product_name;not null"`
	Selection    types.Selection `gorm:"column:selection;type:jsonb;serializer:json"`
	Quantity     int             `gorm:"column:quantity;not null"`
	UnitPrice    int64           `gorm:"column:unit_price;not null"`
	LineSubtotal int64           `gorm:"column:line_subtotal;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}
