package variants

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saigonmart/backend/pkg/db/models"
	"github.com/saigonmart/backend/pkg/types"
)

func option(name string, values ...models.VariantValue) models.VariantOption {
	return models.VariantOption{
		ID:     uuid.New(),
		Name:   name,
		Values: values,
	}
}

func value(id uuid.UUID, label string, delta int64) models.VariantValue {
	return models.VariantValue{ID: id, Label: label, PriceDelta: delta}
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func TestCalculatePriceEmptySelection(t *testing.T) {
	opts := []models.VariantOption{option("Size")}
	assert.Equal(t, int64(100000), CalculatePrice(100000, nil, opts, nil))
	assert.Equal(t, int64(100000), CalculatePrice(100000, types.Selection{}, opts, nil))
}

func TestCalculatePriceSumsDeltas(t *testing.T) {
	small := uuid.New()
	medium := uuid.New()
	opts := []models.VariantOption{
		option("Size", value(small, "S", 0), value(medium, "M", 20000)),
	}

	got := CalculatePrice(100000, types.Selection{"Size": medium.String()}, opts, nil)
	assert.Equal(t, int64(120000), got)

	got = CalculatePrice(100000, types.Selection{"Size": small.String()}, opts, nil)
	assert.Equal(t, int64(100000), got)
}

func TestCalculatePriceUnknownPairsAreNoOps(t *testing.T) {
	medium := uuid.New()
	opts := []models.VariantOption{
		option("Size", value(medium, "M", 20000)),
	}

	sel := types.Selection{
		"Size":   medium.String(),
		"Color":  uuid.NewString(), // option does not exist
		"Weight": "not-a-real-id",
	}
	assert.Equal(t, int64(120000), CalculatePrice(100000, sel, opts, nil))

	// unknown value id within a known option also contributes nothing
	sel = types.Selection{"Size": uuid.NewString()}
	assert.Equal(t, int64(100000), CalculatePrice(100000, sel, opts, nil))
}

func TestCalculatePriceClampsAtZero(t *testing.T) {
	cheap := uuid.New()
	opts := []models.VariantOption{
		option("Size", value(cheap, "Promo", -500000)),
	}

	got := CalculatePrice(100000, types.Selection{"Size": cheap.String()}, opts, nil)
	assert.Equal(t, int64(0), got)
}

func TestCalculatePriceCustomAdjustmentRequiresExactKeys(t *testing.T) {
	red := uuid.New()
	medium := uuid.New()
	opts := []models.VariantOption{
		option("Color", value(red, "Red", 5000)),
		option("Size", value(medium, "M", 20000)),
	}
	rules := []models.CombinationRule{
		{
			Combination:     types.Selection{"Color": red.String()},
			Available:       true,
			PriceAdjustment: int64Ptr(50000),
		},
	}

	// rule keys a single axis; a two-axis selection must fall back to deltas
	sel := types.Selection{"Color": red.String(), "Size": medium.String()}
	assert.Equal(t, int64(125000), CalculatePrice(100000, sel, opts, rules))

	// exact match: adjustment replaces the per-value delta entirely
	sel = types.Selection{"Color": red.String()}
	assert.Equal(t, int64(150000), CalculatePrice(100000, sel, opts, rules))
}

func TestCalculatePriceCustomAdjustmentOverridesDeltas(t *testing.T) {
	red := uuid.New()
	medium := uuid.New()
	opts := []models.VariantOption{
		option("Color", value(red, "Red", 5000)),
		option("Size", value(medium, "M", 20000)),
	}
	rules := []models.CombinationRule{
		{
			Combination:     types.Selection{"Color": red.String(), "Size": medium.String()},
			Available:       true,
			PriceAdjustment: int64Ptr(-10000),
		},
	}

	sel := types.Selection{"Color": red.String(), "Size": medium.String()}
	// 100000 - 10000, deltas ignored rather than stacked
	assert.Equal(t, int64(90000), CalculatePrice(100000, sel, opts, rules))
}

func TestCalculatePriceRuleWithoutAdjustmentIsIgnored(t *testing.T) {
	medium := uuid.New()
	opts := []models.VariantOption{
		option("Size", value(medium, "M", 20000)),
	}
	rules := []models.CombinationRule{
		{
			Combination: types.Selection{"Size": medium.String()},
			Available:   false,
			Reason:      strPtr("Hết hàng"),
		},
	}

	sel := types.Selection{"Size": medium.String()}
	assert.Equal(t, int64(120000), CalculatePrice(100000, sel, opts, rules))
}

func TestCheckAvailabilityNoRules(t *testing.T) {
	got := CheckAvailability(types.Selection{"Size": "m"}, nil)
	assert.True(t, got.Available)
	assert.Empty(t, got.Reason)
}

func TestCheckAvailabilitySubsetMatch(t *testing.T) {
	rules := []models.CombinationRule{
		{
			Combination: types.Selection{"Color": "red"},
			Available:   false,
			Reason:      strPtr("Hết hàng"),
		},
	}

	// every selection containing Color=red is blocked regardless of size
	for _, sel := range []types.Selection{
		{"Color": "red"},
		{"Color": "red", "Size": "m"},
		{"Color": "red", "Size": "l", "Material": "wool"},
	} {
		got := CheckAvailability(sel, rules)
		assert.False(t, got.Available, "selection %v should be blocked", sel)
		assert.Equal(t, "Hết hàng", got.Reason)
	}

	got := CheckAvailability(types.Selection{"Color": "blue", "Size": "m"}, rules)
	assert.True(t, got.Available)
}

func TestCheckAvailabilityFallbackReason(t *testing.T) {
	rules := []models.CombinationRule{
		{Combination: types.Selection{"Size": "m"}, Available: false},
		{Combination: types.Selection{"Size": "l"}, Available: false, Reason: strPtr("")},
	}

	got := CheckAvailability(types.Selection{"Size": "m"}, rules)
	require.False(t, got.Available)
	assert.Equal(t, DefaultUnavailableReason, got.Reason)

	got = CheckAvailability(types.Selection{"Size": "l"}, rules)
	require.False(t, got.Available)
	assert.Equal(t, DefaultUnavailableReason, got.Reason)
}

func TestCheckAvailabilityFirstMatchWins(t *testing.T) {
	rules := []models.CombinationRule{
		{Combination: types.Selection{"Size": "m"}, Available: false, Reason: strPtr("first")},
		{Combination: types.Selection{"Size": "m"}, Available: false, Reason: strPtr("second")},
	}

	got := CheckAvailability(types.Selection{"Size": "m"}, rules)
	assert.Equal(t, "first", got.Reason)
}

func TestCheckAvailabilityIgnoresEnablingRules(t *testing.T) {
	rules := []models.CombinationRule{
		{Combination: types.Selection{"Size": "m"}, Available: true, Reason: strPtr("noise")},
	}
	got := CheckAvailability(types.Selection{"Size": "m"}, rules)
	assert.True(t, got.Available)
}

func TestEnumerateCartesianProduct(t *testing.T) {
	s, m := uuid.New(), uuid.New()
	red, blue, green := uuid.New(), uuid.New(), uuid.New()
	opts := []models.VariantOption{
		option("Size", value(s, "S", 0), value(m, "M", 0)),
		option("Color", value(red, "Red", 0), value(blue, "Blue", 0), value(green, "Green", 0)),
	}

	combos := Enumerate(opts)
	require.Len(t, combos, 6)

	// depth-first: size varies slowest, colors in declared order
	assert.Equal(t, types.Selection{"Size": s.String(), "Color": red.String()}, combos[0])
	assert.Equal(t, types.Selection{"Size": s.String(), "Color": blue.String()}, combos[1])
	assert.Equal(t, types.Selection{"Size": s.String(), "Color": green.String()}, combos[2])
	assert.Equal(t, types.Selection{"Size": m.String(), "Color": red.String()}, combos[3])
}

func TestEnumerateEmptyInputs(t *testing.T) {
	assert.Empty(t, Enumerate(nil))
	assert.Empty(t, Enumerate([]models.VariantOption{}))
}

func TestEnumerateOptionWithZeroValues(t *testing.T) {
	s := uuid.New()
	opts := []models.VariantOption{
		option("Size", value(s, "S", 0)),
		option("Color"), // no values: prunes every branch
	}
	assert.Empty(t, Enumerate(opts))
}

func TestEnumerateDoesNotMutateInputs(t *testing.T) {
	s, m := uuid.New(), uuid.New()
	opts := []models.VariantOption{
		option("Size", value(s, "S", 0), value(m, "M", 0)),
	}

	combos := Enumerate(opts)
	require.Len(t, combos, 2)

	// returned selections must be independent of each other
	combos[0]["Size"] = "tampered"
	assert.Equal(t, m.String(), combos[1]["Size"])
	assert.Len(t, opts[0].Values, 2)
}
