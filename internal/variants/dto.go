package variants

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
)

// VariantDTO is the API view of a variant. Money and percentages are fixed
// two-decimal strings; unpriced variants carry null prices.
type VariantDTO struct {
	ID                   uuid.UUID  `json:"id"`
	SKUCode              string     `json:"sku_code"`
	StyleCode            string     `json:"style_code"`
	Brand                string     `json:"brand"`
	ProductType          string     `json:"product_type"`
	Category             string     `json:"category"`
	Name                 string     `json:"name"`
	Colour               *string    `json:"colour,omitempty"`
	Size                 *string    `json:"size,omitempty"`
	Cost                 *string    `json:"cost"`
	MarginPercent        string     `json:"margin_percent"`
	CalculatedPrice      *string    `json:"calculated_price"`
	IsOfferActive        bool       `json:"is_offer_active"`
	OfferDiscountPercent *string    `json:"offer_discount_percent"`
	FinalPrice           *string    `json:"final_price"`
	AppliedRuleID        *uuid.UUID `json:"applied_rule_id"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// NewVariantDTO maps a stored variant.
func NewVariantDTO(v models.ProductVariant) VariantDTO {
	return VariantDTO{
		ID:                   v.ID,
		SKUCode:              v.SKUCode,
		StyleCode:            v.StyleCode,
		Brand:                v.Brand,
		ProductType:          v.ProductType,
		Category:             v.Category,
		Name:                 v.Name,
		Colour:               v.Colour,
		Size:                 v.Size,
		Cost:                 Fixed(v.Cost),
		MarginPercent:        v.MarginPercent.StringFixed(2),
		CalculatedPrice:      Fixed(v.CalculatedPrice),
		IsOfferActive:        v.IsOfferActive,
		OfferDiscountPercent: Fixed(v.OfferDiscountPercent),
		FinalPrice:           Fixed(v.FinalPrice),
		AppliedRuleID:        v.AppliedRuleID,
		UpdatedAt:            v.UpdatedAt,
	}
}

// Fixed renders a nullable decimal with two places.
func Fixed(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(2)
	return &s
}
