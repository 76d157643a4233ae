package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/saigonmart/backend/pkg/enums"
)

// Coupon is a code-activated discount. Code is stored upper-cased; lookups
// normalize user input the same way. EligibleItemIDs empty means the coupon
// applies to every product.
type Coupon struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code            string           `gorm:"column:code;uniqueIndex;not null"`
	Description     *string          `gorm:"column:description"`
	Kind            enums.CouponKind `gorm:"column:kind;not null"`
	Value           int64            `gorm:"column:value;not null"`
	ExpiresAt       time.Time        `gorm:"column:expires_at;not null"`
	EligibleItemIDs pq.StringArray   `gorm:"column:eligible_item_ids;type:text[];not null;default:ARRAY[]::text[]"`
	IsActive        bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
