package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/catalog-pricing/pkg/db"
)

// Operand is a SQL fragment plus its positional arguments, in order.
// The builders below mirror the Go calculator so set-based UPDATEs derive
// exactly the prices Recompute would.
type Operand struct {
	SQL  string
	Args []any
}

// Column references a product_variants column.
func Column(name string) Operand {
	return Operand{SQL: name}
}

// Literal embeds a constant SQL token such as TRUE.
func Literal(sql string) Operand {
	return Operand{SQL: sql}
}

// Param binds a decimal as a NUMERIC parameter. The value is passed as a
// string so neither driver goes through float64.
func Param(value decimal.Decimal) Operand {
	return Operand{SQL: "CAST(? AS NUMERIC)", Args: []any{value.String()}}
}

// Expr converts the operand into a gorm expression usable in Updates maps.
func (o Operand) Expr() clause.Expr {
	return gorm.Expr(o.SQL, o.Args...)
}

func compose(format string, operands ...Operand) Operand {
	parts := make([]any, 0, len(operands))
	var args []any
	for _, op := range operands {
		parts = append(parts, op.SQL)
		args = append(args, op.Args...)
	}
	return Operand{SQL: fmt.Sprintf(format, parts...), Args: args}
}

// CalculatedPriceSQL renders round2(cost × (1 + margin/100)).
func CalculatedPriceSQL(margin Operand) Operand {
	return compose("ROUND(cost * (100 + %s) / 100.0, 2)", margin)
}

// DiscountedSQL renders round2(price × (1 − discount/100)).
func DiscountedSQL(price, discount Operand) Operand {
	return compose("ROUND(%s * (100 - %s) / 100.0, 2)", price, discount)
}

// FinalPriceSQL renders the offer-aware final price from a calculated price operand.
func FinalPriceSQL(calculated, offerActive, discount Operand) Operand {
	return finalSQL(numericFormulas{}, calculated, offerActive, discount)
}

func finalSQL(f formulas, calculated, offerActive, discount Operand) Operand {
	discounted := f.discounted(calculated, discount)
	return compose(
		"CASE WHEN %s AND %s IS NOT NULL THEN %s ELSE %s END",
		offerActive, discount, discounted, calculated,
	)
}

// formulas renders the price math for one SQL dialect. calculated and
// discounted may work in an internal unit; price converts back to currency.
type formulas interface {
	calculated(margin Operand) Operand
	discounted(price, discount Operand) Operand
	price(op Operand) Operand
}

func formulasFor(dialect string) formulas {
	if dialect == db.DialectSQLite {
		return centFormulas{}
	}
	return numericFormulas{}
}

// numericFormulas relies on exact NUMERIC arithmetic, where ROUND is half away
// from zero like decimal.Round.
type numericFormulas struct{}

func (numericFormulas) calculated(margin Operand) Operand { return CalculatedPriceSQL(margin) }

func (numericFormulas) discounted(price, discount Operand) Operand {
	return DiscountedSQL(price, discount)
}

func (numericFormulas) price(op Operand) Operand { return op }

// centFormulas works in integer cents and hundredths of a percent. SQLite
// stores NUMERIC values as REAL, so ROUND on a product lands below the half
// cent (10.05 × 1.5 = 15.0749...). Inputs carry at most two decimal places.
type centFormulas struct{}

func (centFormulas) calculated(margin Operand) Operand {
	return HalfUpCentsSQL(compose("%s * (10000 + %s)", CentsSQL(Column("cost")), CentsSQL(margin)))
}

func (centFormulas) discounted(priceCents, discount Operand) Operand {
	return HalfUpCentsSQL(compose("%s * (10000 - %s)", priceCents, CentsSQL(discount)))
}

func (centFormulas) price(op Operand) Operand {
	return compose("(%s / 100.0)", op)
}

// CentsSQL scales a two-decimal value to an integer.
func CentsSQL(value Operand) Operand {
	return compose("CAST(ROUND(%s * 100) AS INTEGER)", value)
}

// HalfUpCentsSQL divides an integer by 10000, rounding half away from zero.
func HalfUpCentsSQL(n Operand) Operand {
	return compose(
		"(CASE WHEN %s < 0 THEN -((-(%s) + 5000) / 10000) ELSE (%s + 5000) / 10000 END)",
		n, n, n,
	)
}

// Assignments is the SET clause for a set-based recompute. Any column left
// nil keeps its stored value as the input to the price formulas.
type Assignments struct {
	MarginPercent   *decimal.Decimal
	OfferActive     *bool
	DiscountPercent *decimal.NullDecimal
	ClearRule       bool
	SetRule         *string
}

// Updates renders the column → expression map passed to gorm's Updates for
// the named gorm dialect. The price expressions read the pre-update column
// values, so the new inputs are substituted as parameters rather than
// referenced by column name.
func (a Assignments) Updates(dialect string) map[string]any {
	updates := map[string]any{}

	margin := Column("margin_percent")
	if a.MarginPercent != nil {
		margin = Param(*a.MarginPercent)
		updates["margin_percent"] = a.MarginPercent.String()
	}

	active := Column("is_offer_active")
	if a.OfferActive != nil {
		if *a.OfferActive {
			active = Literal("1 = 1")
		} else {
			active = Literal("1 = 0")
		}
		updates["is_offer_active"] = *a.OfferActive
	}

	discount := Column("offer_discount_percent")
	if a.DiscountPercent != nil {
		if a.DiscountPercent.Valid {
			discount = Param(a.DiscountPercent.Decimal)
			updates["offer_discount_percent"] = a.DiscountPercent.Decimal.String()
		} else {
			discount = Literal("NULL")
			updates["offer_discount_percent"] = nil
		}
	}

	f := formulasFor(dialect)
	calculated := f.calculated(margin)
	updates["calculated_price"] = f.price(calculated).Expr()
	updates["final_price"] = f.price(finalSQL(f, calculated, active, discount)).Expr()

	switch {
	case a.SetRule != nil:
		updates["applied_rule_id"] = *a.SetRule
	case a.ClearRule:
		updates["applied_rule_id"] = nil
	}
	return updates
}
