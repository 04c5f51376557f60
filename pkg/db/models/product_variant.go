package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductVariant is one purchasable SKU and its engine-owned pricing state.
// Cost is written by the catalog feed only; the price columns are always derived.
type ProductVariant struct {
	ID                   uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SKUCode              string              `gorm:"column:sku_code;not null;uniqueIndex"`
	StyleCode            string              `gorm:"column:style_code;not null"`
	Brand                string              `gorm:"column:brand;not null"`
	ProductType          string              `gorm:"column:product_type;not null"`
	Category             string              `gorm:"column:category;not null;default:''"`
	Name                 string              `gorm:"column:name;not null;default:''"`
	Colour               *string             `gorm:"column:colour"`
	Size                 *string             `gorm:"column:size"`
	Cost                 decimal.NullDecimal `gorm:"column:cost;type:numeric(12,2)"`
	MarginPercent        decimal.Decimal     `gorm:"column:margin_percent;type:numeric(7,2);not null;default:0"`
	CalculatedPrice      decimal.NullDecimal `gorm:"column:calculated_price;type:numeric(12,2)"`
	IsOfferActive        bool                `gorm:"column:is_offer_active;not null;default:false"`
	OfferDiscountPercent decimal.NullDecimal `gorm:"column:offer_discount_percent;type:numeric(5,2)"`
	FinalPrice           decimal.NullDecimal `gorm:"column:final_price;type:numeric(12,2)"`
	AppliedRuleID        *uuid.UUID          `gorm:"column:applied_rule_id;type:uuid"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (ProductVariant) TableName() string { return "product_variants" }

func (v *ProductVariant) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
