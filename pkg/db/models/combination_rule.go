package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/saigonmart/backend/pkg/types"
)

// CombinationRule overrides price or availability for a specific selection.
// Combination may name a subset of the product's options; availability checks
// treat that as a subset match while custom pricing requires an exact match.
type CombinationRule struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Combination     types.Selection `gorm:"column:combination;type:jsonb;serializer:json;not null"`
	Available       bool            `gorm:"column:available;not null;default:true"`
	Reason          *string         `gorm:"column:reason"`
	PriceAdjustment *int64          `gorm:"column:price_adjustment"`
	Position        int             `gorm:"column:position;not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
