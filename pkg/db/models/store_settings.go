package models

import (
	"time"

	"github.com/google/uuid"
)

// StoreSettings is a singleton row read by the storefront and edited by the
// back office.
type StoreSettings struct {
	ID                    uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreName             string    `gorm:"column:store_name;not null"`
	Currency              string    `gorm:"column:currency;not null;default:'VND'"`
	ShippingFee           int64     `gorm:"column:shipping_fee;not null;default:0"`
	FreeShippingThreshold int64     `gorm:"column:free_shipping_threshold;not null;default:0"`
	SupportPhone          *string   `gorm:"column:support_phone"`
	Announcement          *string   `gorm:"column:announcement"`
	UpdatedAt             time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
