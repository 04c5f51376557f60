package bulk

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-pricing/internal/audit"
	"github.com/angelmondragon/catalog-pricing/internal/pricing"
	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
	"github.com/angelmondragon/catalog-pricing/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
)

// VariantUpdate is a partial edit of one variant's pricing inputs. A nil field
// is left unchanged; OfferDiscountPercent with Valid=false clears the discount.
type VariantUpdate struct {
	MarginPercent        *decimal.Decimal
	IsOfferActive        *bool
	OfferDiscountPercent *decimal.NullDecimal
}

func (u VariantUpdate) empty() bool {
	return u.MarginPercent == nil && u.IsOfferActive == nil && u.OfferDiscountPercent == nil
}

// VariantResult is the outcome of a single-variant edit.
type VariantResult struct {
	Variant models.ProductVariant
	Audit   audit.Receipt
}

// UpdateSingleVariant edits one variant with the same recompute rules as the
// bulk operations. An explicit margin change clears rule provenance; turning
// the offer off clears its discount.
func (e *Executor) UpdateSingleVariant(ctx context.Context, operator, sku string, update VariantUpdate) (*VariantResult, error) {
	if err := requireOperator(operator); err != nil {
		return nil, err
	}
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if update.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one pricing field is required")
	}

	before, err := e.variants.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("variant", sku)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}

	inputs, assignments := planUpdate(*before, update)
	if _, err := pricing.Recompute(inputs); err != nil {
		return nil, err
	}

	started := e.now()
	affected, err := e.execute(ctx, func(ctx context.Context) (int64, error) {
		return e.variants.Recompute(ctx, func(db *gorm.DB) *gorm.DB {
			return db.Where("sku_code = ?", sku)
		}, assignments)
	})
	e.observe(enums.AuditVariantUpdated, err, affected, started)
	if err != nil {
		return nil, err
	}

	after, err := e.variants.FindBySKU(ctx, sku)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload variant")
	}

	snapshot := audit.VariantUpdateSnapshot{
		SKU:           sku,
		MarginPercent: update.MarginPercent,
		IsOfferActive: update.IsOfferActive,
		Before:        priceState(*before),
		After:         priceState(*after),
	}
	if update.OfferDiscountPercent != nil {
		if update.OfferDiscountPercent.Valid {
			snapshot.OfferDiscountPercent = &update.OfferDiscountPercent.Decimal
		} else {
			snapshot.ClearDiscount = true
		}
	}

	result := &VariantResult{Variant: *after, Audit: e.record(ctx, operator, 1, snapshot)}
	e.logCompleted(ctx, &Result{Action: enums.AuditVariantUpdated, AffectedCount: 1, Audit: result.Audit})
	return result, nil
}

// planUpdate merges the edit over the stored inputs for validation and builds
// the SET clause that recomputes from the row's current values.
func planUpdate(current models.ProductVariant, update VariantUpdate) (pricing.Inputs, pricing.Assignments) {
	inputs := pricing.Inputs{
		Cost:            current.Cost,
		MarginPercent:   current.MarginPercent,
		OfferActive:     current.IsOfferActive,
		DiscountPercent: current.OfferDiscountPercent,
	}
	var assignments pricing.Assignments

	if update.MarginPercent != nil {
		inputs.MarginPercent = *update.MarginPercent
		assignments.MarginPercent = update.MarginPercent
		assignments.ClearRule = true
	}
	if update.OfferDiscountPercent != nil {
		inputs.DiscountPercent = *update.OfferDiscountPercent
		assignments.DiscountPercent = update.OfferDiscountPercent
	}
	if update.IsOfferActive != nil {
		inputs.OfferActive = *update.IsOfferActive
		assignments.OfferActive = update.IsOfferActive
		if !*update.IsOfferActive && update.OfferDiscountPercent == nil {
			cleared := decimal.NullDecimal{}
			inputs.DiscountPercent = cleared
			assignments.DiscountPercent = &cleared
		}
	}
	return inputs, assignments
}

func priceState(v models.ProductVariant) audit.PriceState {
	return audit.PriceState{
		MarginPercent:        v.MarginPercent,
		CalculatedPrice:      v.CalculatedPrice,
		IsOfferActive:        v.IsOfferActive,
		OfferDiscountPercent: v.OfferDiscountPercent,
		FinalPrice:           v.FinalPrice,
		AppliedRuleID:        v.AppliedRuleID,
	}
}
