package pricing

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
)

var (
	hundred = decimal.NewFromInt(100)
	// maxMargin is the exclusive bound of a numeric(7,2) column.
	maxMargin = decimal.NewFromInt(100000)
)

// Inputs are the stored fields a variant's prices derive from.
type Inputs struct {
	Cost            decimal.NullDecimal
	MarginPercent   decimal.Decimal
	OfferActive     bool
	DiscountPercent decimal.NullDecimal
}

// Prices are the derived, engine-owned price columns.
type Prices struct {
	Calculated decimal.Decimal
	Final      decimal.Decimal
}

// CalculatedPrice returns round2(cost × (1 + margin/100)).
func CalculatedPrice(cost, marginPercent decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateCost(decimal.NewNullDecimal(cost)); err != nil {
		return decimal.Zero, err
	}
	if err := ValidateMargin(marginPercent); err != nil {
		return decimal.Zero, err
	}
	return cost.Mul(hundred.Add(marginPercent)).Div(hundred).Round(2), nil
}

// FinalPrice applies the offer discount to an already rounded calculated price.
func FinalPrice(calculated decimal.Decimal, offerActive bool, discountPercent decimal.NullDecimal) (decimal.Decimal, error) {
	if !offerActive {
		return calculated, nil
	}
	if !discountPercent.Valid {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "active offer requires a discount percent")
	}
	if err := ValidateDiscount(discountPercent.Decimal); err != nil {
		return decimal.Zero, err
	}
	return Discounted(calculated, discountPercent.Decimal), nil
}

// Discounted returns round2(price × (1 − discount/100)) without validation.
func Discounted(price, discountPercent decimal.Decimal) decimal.Decimal {
	return price.Mul(hundred.Sub(discountPercent)).Div(hundred).Round(2)
}

// Recompute derives both prices from the stored inputs. Recomputing from the
// same inputs always yields the same result.
func Recompute(in Inputs) (Prices, error) {
	if !in.Cost.Valid {
		return Prices{}, pkgerrors.New(pkgerrors.CodeValidation, "cost is required to derive a price")
	}
	calculated, err := CalculatedPrice(in.Cost.Decimal, in.MarginPercent)
	if err != nil {
		return Prices{}, err
	}
	final, err := FinalPrice(calculated, in.OfferActive, in.DiscountPercent)
	if err != nil {
		return Prices{}, err
	}
	return Prices{Calculated: calculated, Final: final}, nil
}

// ValidateCost rejects missing or negative cost bases.
func ValidateCost(cost decimal.NullDecimal) error {
	if !cost.Valid {
		return pkgerrors.New(pkgerrors.CodeValidation, "cost is required to derive a price")
	}
	if cost.Decimal.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cost must not be negative").
			WithDetails(map[string]any{"cost": cost.Decimal.String()})
	}
	return nil
}

// ValidateMargin accepts any two-decimal percentage that fits numeric(7,2), including negatives.
func ValidateMargin(marginPercent decimal.Decimal) error {
	if marginPercent.Abs().GreaterThanOrEqual(maxMargin) {
		return pkgerrors.New(pkgerrors.CodeValidation, "margin percent out of range").
			WithDetails(map[string]any{"marginPercent": marginPercent.String()})
	}
	if !hasAtMostTwoPlaces(marginPercent) {
		return pkgerrors.New(pkgerrors.CodeValidation, "margin percent allows at most 2 decimal places").
			WithDetails(map[string]any{"marginPercent": marginPercent.String()})
	}
	return nil
}

// ValidateDiscount accepts 0–100 inclusive with at most two decimal places.
func ValidateDiscount(discountPercent decimal.Decimal) error {
	if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 0 and 100").
			WithDetails(map[string]any{"discountPercent": discountPercent.String()})
	}
	if !hasAtMostTwoPlaces(discountPercent) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount percent allows at most 2 decimal places").
			WithDetails(map[string]any{"discountPercent": discountPercent.String()})
	}
	return nil
}

func hasAtMostTwoPlaces(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2))
}
