package variants

import (
	"github.com/saigonmart/backend/pkg/db/models"
	"github.com/saigonmart/backend/pkg/types"
)

// DefaultUnavailableReason is returned when a disabling rule carries no reason.
const DefaultUnavailableReason = "This combination is currently unavailable"

// Availability is the result of checking a selection against the rule table.
type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// CalculatePrice computes the unit price for a variant selection.
//
// A rule whose combination names exactly the same options as the selection and
// carries a custom price adjustment replaces the per-value deltas outright:
// the result is basePrice plus that adjustment. Otherwise each selected value
// contributes its own delta. Option names or value ids that do not resolve
// contribute nothing; the storefront treats stale selections as degraded, not
// broken. The result never goes below zero.
func CalculatePrice(basePrice int64, selection types.Selection, options []models.VariantOption, rules []models.CombinationRule) int64 {
	if len(selection) == 0 {
		return clampPrice(basePrice)
	}

	if rule := findExactPriceRule(selection, rules); rule != nil {
		return clampPrice(basePrice + *rule.PriceAdjustment)
	}

	price := basePrice
	for optionName, valueID := range selection {
		option := findOption(options, optionName)
		if option == nil {
			continue
		}
		for _, value := range option.Values {
			if value.ID.String() == valueID {
				price += value.PriceDelta
				break
			}
		}
	}
	return clampPrice(price)
}

// CheckAvailability reports whether the exact combination may be purchased.
//
// Unlike custom pricing, matching here is by subset: a rule keyed only on
// {Color: Red} blocks every red selection regardless of the other axes. The
// first disabling rule in table order wins.
func CheckAvailability(selection types.Selection, rules []models.CombinationRule) Availability {
	for _, rule := range rules {
		if rule.Available {
			continue
		}
		if !selection.Contains(rule.Combination) {
			continue
		}
		reason := DefaultUnavailableReason
		if rule.Reason != nil && *rule.Reason != "" {
			reason = *rule.Reason
		}
		return Availability{Available: false, Reason: reason}
	}
	return Availability{Available: true}
}

// Enumerate produces every full selection across the given options, one value
// per option, depth-first in the order options and values were supplied. Zero
// options yields an empty list; an option with no values prunes the whole
// branch, so its count multiplies in as zero.
func Enumerate(options []models.VariantOption) []types.Selection {
	if len(options) == 0 {
		return nil
	}
	var out []types.Selection
	walk(options, 0, types.Selection{}, &out)
	return out
}

func walk(options []models.VariantOption, idx int, acc types.Selection, out *[]types.Selection) {
	if idx == len(options) {
		*out = append(*out, acc.Clone())
		return
	}
	option := options[idx]
	for _, value := range option.Values {
		acc[option.Name] = value.ID.String()
		walk(options, idx+1, acc, out)
	}
	delete(acc, option.Name)
}

// findExactPriceRule returns the first rule carrying a price adjustment whose
// combination keys match the selection exactly, not as a subset.
func findExactPriceRule(selection types.Selection, rules []models.CombinationRule) *models.CombinationRule {
	for i := range rules {
		rule := &rules[i]
		if rule.PriceAdjustment == nil {
			continue
		}
		if selection.Equal(rule.Combination) {
			return rule
		}
	}
	return nil
}

func findOption(options []models.VariantOption, name string) *models.VariantOption {
	for i := range options {
		if options[i].Name == name {
			return &options[i]
		}
	}
	return nil
}

func clampPrice(price int64) int64 {
	if price < 0 {
		return 0
	}
	return price
}
