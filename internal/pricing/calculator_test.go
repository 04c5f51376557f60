package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func nd(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(d(v))
}

func TestOfferLifecycleScenario(t *testing.T) {
	calculated, err := CalculatedPrice(d("10.00"), d("30"))
	require.NoError(t, err)
	require.Equal(t, "13.00", calculated.StringFixed(2))

	discounted, err := FinalPrice(calculated, true, nd("20"))
	require.NoError(t, err)
	require.Equal(t, "10.40", discounted.StringFixed(2))

	restored, err := FinalPrice(calculated, false, decimal.NullDecimal{})
	require.NoError(t, err)
	require.Equal(t, "13.00", restored.StringFixed(2))
}

func TestMarginOverrideScenario(t *testing.T) {
	for cost, want := range map[string]string{"8.00": "10.00", "40.00": "50.00"} {
		got, err := CalculatedPrice(d(cost), d("25"))
		require.NoError(t, err)
		require.Equal(t, want, got.StringFixed(2), cost)
	}
}

func TestRoundingHalfUpPerStep(t *testing.T) {
	// 0.10 × 1.05 = 0.105 → 0.11
	got, err := CalculatedPrice(d("0.10"), d("5"))
	require.NoError(t, err)
	require.Equal(t, "0.11", got.StringFixed(2))

	// discount applies to the rounded 0.11, not the raw 0.105: 0.11 × 0.5 = 0.055 → 0.06
	final, err := FinalPrice(got, true, nd("50"))
	require.NoError(t, err)
	require.Equal(t, "0.06", final.StringFixed(2))
}

func TestNegativeMarginIsAllowed(t *testing.T) {
	got, err := CalculatedPrice(d("20.00"), d("-15.5"))
	require.NoError(t, err)
	require.Equal(t, "16.90", got.StringFixed(2))
}

func TestRecomputeIsIdempotent(t *testing.T) {
	in := Inputs{
		Cost:            nd("19.99"),
		MarginPercent:   d("37.5"),
		OfferActive:     true,
		DiscountPercent: nd("12.25"),
	}
	first, err := Recompute(in)
	require.NoError(t, err)
	second, err := Recompute(in)
	require.NoError(t, err)
	require.True(t, first.Calculated.Equal(second.Calculated))
	require.True(t, first.Final.Equal(second.Final))
	require.Equal(t, "27.49", first.Calculated.StringFixed(2))
	require.Equal(t, "24.12", first.Final.StringFixed(2))
}

func TestRecomputeRejectsInvalidInputs(t *testing.T) {
	cases := map[string]Inputs{
		"null cost":          {MarginPercent: d("10")},
		"negative cost":      {Cost: nd("-1.00"), MarginPercent: d("10")},
		"discount over 100":  {Cost: nd("5.00"), OfferActive: true, DiscountPercent: nd("100.01")},
		"negative discount":  {Cost: nd("5.00"), OfferActive: true, DiscountPercent: nd("-5")},
		"active no discount": {Cost: nd("5.00"), OfferActive: true},
		"margin precision":   {Cost: nd("5.00"), MarginPercent: d("10.125")},
		"margin overflow":    {Cost: nd("5.00"), MarginPercent: d("100000")},
	}
	for name, in := range cases {
		_, err := Recompute(in)
		require.Error(t, err, name)
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), name)
	}
}

func TestInactiveOfferIgnoresDiscount(t *testing.T) {
	prices, err := Recompute(Inputs{Cost: nd("10.00"), MarginPercent: d("30"), DiscountPercent: nd("20")})
	require.NoError(t, err)
	require.True(t, prices.Final.Equal(prices.Calculated))
}

func TestValidateDiscountBounds(t *testing.T) {
	require.NoError(t, ValidateDiscount(d("0")))
	require.NoError(t, ValidateDiscount(d("100")))
	require.Error(t, ValidateDiscount(d("33.333")))
}
