package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/saigonmart/backend/pkg/enums"
)

// Order is an immutable snapshot of a checked-out cart.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number          string            `gorm:"column:number;uniqueIndex;not null"`
	CustomerID      uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	ContactName     string            `gorm:"column:contact_name;not null"`
	ContactPhone    string            `gorm:"column:contact_phone;not null"`
	ShippingAddress string            `gorm:"column:shipping_address;not null"`
	Note            *string           `gorm:"column:note"`
	CouponCode      *string           `gorm:"column:coupon_code"`
	Subtotal        int64             `gorm:"column:subtotal;not null"`
	Discount        int64             `gorm:"column:discount;not null;default:0"`
	ShippingFee     int64             `gorm:"column:shipping_fee;not null;default:0"`
	Total           int64             `gorm:"column:total;not null"`
	LineItems       []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PlacedAt        time.Time         `gorm:"column:placed_at;not null"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
