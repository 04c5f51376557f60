package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/catalog-pricing/internal/pricing"
	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
	"github.com/angelmondragon/catalog-pricing/pkg/enums"
	"github.com/angelmondragon/catalog-pricing/pkg/logger"
)

// Summary counts the rows written by one run.
type Summary struct {
	Rules    int
	Offers   int
	Variants int
}

// Seeder upserts fixtures. Re-running it with the same fixture converges on
// the same rows; offers are only created, never applied.
type Seeder struct {
	db            *gorm.DB
	logg          *logger.Logger
	defaultMargin decimal.Decimal
}

func NewSeeder(db *gorm.DB, logg *logger.Logger, defaultMargin decimal.Decimal) *Seeder {
	return &Seeder{db: db, logg: logg, defaultMargin: defaultMargin}
}

// Apply writes every fixture row it can. Row failures are collected and
// returned together so one bad sku does not block the rest.
func (s *Seeder) Apply(ctx context.Context, fixture *Fixture) (Summary, error) {
	var summary Summary
	var errs error

	rules := map[string]models.MarginRule{}
	for _, in := range fixture.MarginRules {
		rule, err := s.upsertRule(ctx, in)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("margin rule %q: %w", in.Name, err))
			continue
		}
		rules[rule.Name] = *rule
		summary.Rules++
	}

	for _, in := range fixture.Offers {
		created, err := s.ensureOffer(ctx, in)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("offer %q: %w", in.Name, err))
			continue
		}
		if created {
			summary.Offers++
		}
	}

	for _, in := range fixture.Variants {
		if err := s.upsertVariant(ctx, in, rules); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("variant %q: %w", in.SKU, err))
			continue
		}
		summary.Variants++
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"rules":    summary.Rules,
			"offers":   summary.Offers,
			"variants": summary.Variants,
			"failed":   len(multierr.Errors(errs)),
		})
		s.logg.Info(logCtx, "seed.completed")
	}
	return summary, errs
}

func (s *Seeder) upsertRule(ctx context.Context, in RuleFixture) (*models.MarginRule, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	margin, err := decimal.NewFromString(in.MarginPercent)
	if err != nil {
		return nil, fmt.Errorf("margin_percent: %w", err)
	}
	if err := pricing.ValidateMargin(margin); err != nil {
		return nil, err
	}

	rule := models.MarginRule{Name: name}
	err = s.db.WithContext(ctx).
		Where(models.MarginRule{Name: name}).
		Assign(models.MarginRule{MarginPercent: margin, Active: true}).
		FirstOrCreate(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (s *Seeder) ensureOffer(ctx context.Context, in OfferFixture) (bool, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return false, fmt.Errorf("name is required")
	}
	discount, err := decimal.NewFromString(in.DiscountPercent)
	if err != nil {
		return false, fmt.Errorf("discount_percent: %w", err)
	}
	if err := pricing.ValidateDiscount(discount); err != nil {
		return false, err
	}
	ruleType, err := enums.ParseOfferRuleType(in.RuleType)
	if err != nil {
		return false, err
	}
	start, err := parseDate(in.StartDate)
	if err != nil {
		return false, fmt.Errorf("start_date: %w", err)
	}
	end, err := parseDate(in.EndDate)
	if err != nil {
		return false, fmt.Errorf("end_date: %w", err)
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.SpecialOffer{}).Where("name = ?", name).Count(&existing).Error; err != nil {
		return false, err
	}
	if existing > 0 {
		return false, nil
	}

	offer := models.SpecialOffer{
		Name:            name,
		DiscountPercent: discount,
		RuleType:        ruleType,
		ScopeValue:      strings.TrimSpace(in.ScopeValue),
		StartDate:       start,
		EndDate:         end,
		Active:          true,
	}
	if err := s.db.WithContext(ctx).Create(&offer).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (s *Seeder) upsertVariant(ctx context.Context, in VariantFixture, rules map[string]models.MarginRule) error {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return fmt.Errorf("sku is required")
	}

	variant := models.ProductVariant{
		SKUCode:       sku,
		StyleCode:     fallback(in.Style, sku),
		Brand:         strings.TrimSpace(in.Brand),
		ProductType:   strings.TrimSpace(in.ProductType),
		Category:      strings.TrimSpace(in.Category),
		Name:          fallback(in.Name, sku),
		Colour:        optional(in.Colour),
		Size:          optional(in.Size),
		MarginPercent: s.defaultMargin,
	}
	if variant.Brand == "" || variant.ProductType == "" {
		return fmt.Errorf("brand and product_type are required")
	}

	if name := strings.TrimSpace(in.Rule); name != "" {
		rule, ok := rules[name]
		if !ok {
			return fmt.Errorf("unknown margin rule %q", name)
		}
		variant.MarginPercent = rule.MarginPercent
		variant.AppliedRuleID = &rule.ID
	} else if strings.TrimSpace(in.Margin) != "" {
		margin, err := decimal.NewFromString(in.Margin)
		if err != nil {
			return fmt.Errorf("margin: %w", err)
		}
		variant.MarginPercent = margin
	}
	if err := pricing.ValidateMargin(variant.MarginPercent); err != nil {
		return err
	}

	if strings.TrimSpace(in.Cost) != "" {
		cost, err := decimal.NewFromString(in.Cost)
		if err != nil {
			return fmt.Errorf("cost: %w", err)
		}
		variant.Cost = decimal.NewNullDecimal(cost)
		prices, err := pricing.Recompute(pricing.Inputs{Cost: variant.Cost, MarginPercent: variant.MarginPercent})
		if err != nil {
			return err
		}
		variant.CalculatedPrice = decimal.NewNullDecimal(prices.Calculated)
		variant.FinalPrice = decimal.NewNullDecimal(prices.Final)
	}

	// Reseeding resets pricing inputs and clears any offer applied since.
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sku_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"style_code", "brand", "product_type", "category", "name", "colour", "size",
			"cost", "margin_percent", "calculated_price", "is_offer_active",
			"offer_discount_percent", "final_price", "applied_rule_id", "updated_at",
		}),
	}).Create(&variant).Error
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		if t, err = time.Parse(time.DateOnly, raw); err != nil {
			return nil, err
		}
	}
	t = t.UTC()
	return &t, nil
}

func fallback(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}

func optional(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}
