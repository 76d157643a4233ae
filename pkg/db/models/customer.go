package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a storefront buyer identified by phone number. A record is
// created the first time an OTP verification succeeds for the phone.
type Customer struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Phone       string     `gorm:"column:phone;uniqueIndex;not null"`
	Name        *string    `gorm:"column:name"`
	Address     *string    `gorm:"column:address"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
