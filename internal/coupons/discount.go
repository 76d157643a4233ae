package coupons

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/saigonmart/backend/pkg/db/models"
	"github.com/saigonmart/backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// NormalizeCode upper-cases and trims a user-entered coupon code. Codes are
// stored upper-cased, so normalizing both sides makes matching
// case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CalculateDiscount computes the discount a coupon contributes against a
// subtotal. It is total over its inputs and never fails: a nil, inactive, or
// expired coupon, an unknown kind, or an allow-list with no matching line all
// contribute zero. Eligibility is cart-wide: one qualifying line unlocks the
// discount on the whole subtotal. The result is clamped to the subtotal so a
// coupon can never push a total negative.
func CalculateDiscount(coupon *models.Coupon, lines []models.CartItem, subtotal int64, now time.Time) int64 {
	if coupon == nil || !coupon.IsActive {
		return 0
	}
	if coupon.ExpiresAt.Before(now) {
		return 0
	}
	if subtotal <= 0 {
		return 0
	}
	if !eligible(coupon, lines) {
		return 0
	}

	var discount int64
	switch coupon.Kind {
	case enums.CouponKindPercentage:
		discount = decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(coupon.Value)).
			Div(hundred).
			Floor().
			IntPart()
	case enums.CouponKindFixed:
		discount = coupon.Value
	default:
		return 0
	}

	if discount < 0 {
		return 0
	}
	if discount > subtotal {
		return subtotal
	}
	return discount
}

func eligible(coupon *models.Coupon, lines []models.CartItem) bool {
	if len(coupon.EligibleItemIDs) == 0 {
		return true
	}
	allowed := make(map[string]struct{}, len(coupon.EligibleItemIDs))
	for _, id := range coupon.EligibleItemIDs {
		allowed[id] = struct{}{}
	}
	for _, line := range lines {
		if _, ok := allowed[line.ProductID.String()]; ok {
			return true
		}
	}
	return false
}
