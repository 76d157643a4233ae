package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents a storefront listing.
type Product struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug           string            `gorm:"column:slug;uniqueIndex;not null"`
	Name           string            `gorm:"column:name;not null"`
	Description    *string           `gorm:"column:description"`
	CategoryID     *uuid.UUID        `gorm:"column:category_id;type:uuid"`
	BasePrice      int64             `gorm:"column:base_price;not null"`
	CompareAtPrice *int64            `gorm:"column:compare_at_price"`
	ImageKeys      pq.StringArray    `gorm:"column:image_keys;type:text[];not null;default:ARRAY[]::text[]"`
	IsActive       bool              `gorm:"column:is_active;not null;default:true"`
	IsFeatured     bool              `gorm:"column:is_featured;not null;default:false"`
	Options        []VariantOption   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Rules          []CombinationRule `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
