package models

import (
	"time"

	"github.com/google/uuid"
)

// VariantOption is a selectable axis on a product, e.g. Size.
type VariantOption struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID      `gorm:"column:product_id;type:uuid;not null;index"`
	Name      string         `gorm:"column:name;not null"`
	Position  int            `gorm:"column:position;not null;default:0"`
	Required  bool           `gorm:"column:required;not null;default:true"`
	Values    []VariantValue `gorm:"foreignKey:OptionID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// VariantValue is one concrete choice within an option, carrying a signed
// price delta relative to the product base price.
type VariantValue struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OptionID   uuid.UUID `gorm:"column:option_id;type:uuid;not null;index"`
	Label      string    `gorm:"column:label;not null"`
	PriceDelta int64     `gorm:"column:price_delta;not null;default:0"`
	Position   int       `gorm:"column:position;not null;default:0"`
	ImageKey   *string   `gorm:"column:image_key"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
