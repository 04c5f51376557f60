package offers

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-pricing/internal/pricing"
	"github.com/angelmondragon/catalog-pricing/internal/rules"
	"github.com/angelmondragon/catalog-pricing/internal/variants"
	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
)

// PreviewSample is one matched variant with its price before and after the discount.
type PreviewSample struct {
	SKUCode        string  `json:"sku_code"`
	Name           string  `json:"name"`
	CurrentPrice   *string `json:"current_price"`
	ProjectedPrice string  `json:"projected_price"`
}

// PreviewResult summarizes what applying a scope/discount would do. Counts
// come from a read-committed snapshot and may differ from a later apply.
type PreviewResult struct {
	AffectedCount     int64           `json:"affected_count"`
	AvgCurrentPrice   string          `json:"avg_current_price"`
	AvgProjectedPrice string          `json:"avg_projected_price"`
	MinProjectedPrice string          `json:"min_projected_price"`
	MaxProjectedPrice string          `json:"max_projected_price"`
	Samples           []PreviewSample `json:"samples"`
}

type previewAggregate struct {
	AffectedCount     int64
	AvgCurrentPrice   decimal.NullDecimal
	AvgProjectedPrice decimal.NullDecimal
	MinProjectedPrice decimal.NullDecimal
	MaxProjectedPrice decimal.NullDecimal
}

func preview(ctx context.Context, db *gorm.DB, scope rules.Scope, discount decimal.Decimal, sampleSize int) (*PreviewResult, error) {
	projected := pricing.DiscountedSQL(pricing.Column("calculated_price"), pricing.Param(discount))

	var args []any
	for i := 0; i < 3; i++ {
		args = append(args, projected.Args...)
	}
	selectSQL := fmt.Sprintf(
		"COUNT(*) AS affected_count, AVG(final_price) AS avg_current_price, AVG(%[1]s) AS avg_projected_price, MIN(%[1]s) AS min_projected_price, MAX(%[1]s) AS max_projected_price",
		projected.SQL,
	)

	var agg previewAggregate
	err := db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Scopes(scope.Query()).
		Select(selectSQL, args...).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	result := &PreviewResult{
		AffectedCount:     agg.AffectedCount,
		AvgCurrentPrice:   money(agg.AvgCurrentPrice),
		AvgProjectedPrice: money(agg.AvgProjectedPrice),
		MinProjectedPrice: money(agg.MinProjectedPrice),
		MaxProjectedPrice: money(agg.MaxProjectedPrice),
		Samples:           []PreviewSample{},
	}
	if agg.AffectedCount == 0 || sampleSize <= 0 {
		return result, nil
	}

	var rows []models.ProductVariant
	err = db.WithContext(ctx).
		Scopes(scope.Query()).
		Order("sku_code ASC").
		Limit(sampleSize).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		sample := PreviewSample{
			SKUCode:      row.SKUCode,
			Name:         row.Name,
			CurrentPrice: variants.Fixed(row.FinalPrice),
		}
		if row.CalculatedPrice.Valid {
			sample.ProjectedPrice = pricing.Discounted(row.CalculatedPrice.Decimal, discount).StringFixed(2)
		}
		result.Samples = append(result.Samples, sample)
	}
	return result, nil
}

// money renders an aggregate rounded half-up to cents; empty aggregates are zero.
func money(value decimal.NullDecimal) string {
	if !value.Valid {
		return decimal.Zero.StringFixed(2)
	}
	return value.Decimal.Round(2).StringFixed(2)
}
