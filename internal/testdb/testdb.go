// Package testdb provides in-memory sqlite databases and variant fixtures for tests.
package testdb

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/catalog-pricing/internal/pricing"
	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
	"github.com/angelmondragon/catalog-pricing/pkg/migrate"
)

// Open returns a private in-memory database with the full schema.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.AutoMigrateModels(context.Background(), conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

// Variant describes a fixture row. Empty Cost leaves the variant unpriced;
// a non-empty Discount marks the offer active.
type Variant struct {
	SKU         string
	Style       string
	Brand       string
	ProductType string
	Category    string
	Name        string
	Cost        string
	Margin      string
	Discount    string
	RuleID      *uuid.UUID
}

// MustVariant inserts the fixture with prices derived by the calculator.
func MustVariant(t testing.TB, conn *gorm.DB, in Variant) models.ProductVariant {
	t.Helper()

	v := models.ProductVariant{
		SKUCode:       in.SKU,
		StyleCode:     orDefault(in.Style, in.SKU),
		Brand:         orDefault(in.Brand, "Acme"),
		ProductType:   orDefault(in.ProductType, "Tee"),
		Category:      in.Category,
		Name:          orDefault(in.Name, in.SKU),
		MarginPercent: decimal.RequireFromString(orDefault(in.Margin, "0")),
		AppliedRuleID: in.RuleID,
	}
	if in.Discount != "" {
		v.IsOfferActive = true
		v.OfferDiscountPercent = decimal.NewNullDecimal(decimal.RequireFromString(in.Discount))
	}
	if in.Cost != "" {
		v.Cost = decimal.NewNullDecimal(decimal.RequireFromString(in.Cost))
		prices, err := pricing.Recompute(pricing.Inputs{
			Cost:            v.Cost,
			MarginPercent:   v.MarginPercent,
			OfferActive:     v.IsOfferActive,
			DiscountPercent: v.OfferDiscountPercent,
		})
		if err != nil {
			t.Fatalf("price fixture %s: %v", in.SKU, err)
		}
		v.CalculatedPrice = decimal.NewNullDecimal(prices.Calculated)
		v.FinalPrice = decimal.NewNullDecimal(prices.Final)
	}

	if err := conn.Create(&v).Error; err != nil {
		t.Fatalf("create variant %s: %v", in.SKU, err)
	}
	return v
}

// MustVariants inserts each fixture in order.
func MustVariants(t testing.TB, conn *gorm.DB, in ...Variant) []models.ProductVariant {
	t.Helper()
	out := make([]models.ProductVariant, 0, len(in))
	for _, v := range in {
		out = append(out, MustVariant(t, conn, v))
	}
	return out
}

// MustMarginRule inserts an active margin rule.
func MustMarginRule(t testing.TB, conn *gorm.DB, name, margin string) models.MarginRule {
	t.Helper()
	rule := models.MarginRule{Name: name, MarginPercent: decimal.RequireFromString(margin), Active: true}
	if err := conn.Create(&rule).Error; err != nil {
		t.Fatalf("create margin rule: %v", err)
	}
	return rule
}

// LoadVariant reads a variant by sku.
func LoadVariant(t testing.TB, conn *gorm.DB, sku string) models.ProductVariant {
	t.Helper()
	var v models.ProductVariant
	if err := conn.Where("sku_code = ?", sku).First(&v).Error; err != nil {
		t.Fatalf("load variant %s: %v", sku, err)
	}
	return v
}

// AssertPriceInvariant fails when any priced variant's stored prices differ
// from a fresh recompute of its inputs.
func AssertPriceInvariant(t testing.TB, conn *gorm.DB) {
	t.Helper()

	var variants []models.ProductVariant
	if err := conn.Where("cost IS NOT NULL").Find(&variants).Error; err != nil {
		t.Fatalf("load variants: %v", err)
	}
	for _, v := range variants {
		prices, err := pricing.Recompute(pricing.Inputs{
			Cost:            v.Cost,
			MarginPercent:   v.MarginPercent,
			OfferActive:     v.IsOfferActive,
			DiscountPercent: v.OfferDiscountPercent,
		})
		if err != nil {
			t.Fatalf("recompute %s: %v", v.SKUCode, err)
		}
		if !v.CalculatedPrice.Valid || !v.CalculatedPrice.Decimal.Equal(prices.Calculated) {
			t.Errorf("%s calculated_price %v, want %s", v.SKUCode, v.CalculatedPrice.Decimal, prices.Calculated)
		}
		if !v.FinalPrice.Valid || !v.FinalPrice.Decimal.Equal(prices.Final) {
			t.Errorf("%s final_price %v, want %s", v.SKUCode, v.FinalPrice.Decimal, prices.Final)
		}
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
