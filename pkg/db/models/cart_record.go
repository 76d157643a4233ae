package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/saigonmart/backend/pkg/enums"
)

// CartRecord is the single active cart for a customer. Totals are snapshots
// recomputed server-side on every mutation.
type CartRecord struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID  uuid.UUID        `gorm:"column:customer_id;type:uuid;not null;index"`
	Status      enums.CartStatus `gorm:"column:status;not null;default:'active'"`
	CouponCode  *string          `gorm:"column:coupon_code"`
	Subtotal    int64            `gorm:"column:subtotal;not null;default:0"`
	Discount    int64            `gorm:"column:discount;not null;default:0"`
	ShippingFee int64            `gorm:"column:shipping_fee;not null;default:0"`
	Total       int64            `gorm:"column:total;not null;default:0"`
	Items       []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
