package controllers

import (
	"bytes"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-pricing/internal/bulk"
	"github.com/angelmondragon/catalog-pricing/internal/offers"
	"github.com/angelmondragon/catalog-pricing/internal/rules"
	"github.com/angelmondragon/catalog-pricing/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
)

// optionalDecimal tells an absent field apart from an explicit null.
type optionalDecimal struct {
	Set   bool
	Value decimal.NullDecimal
}

func (o *optionalDecimal) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = decimal.NullDecimal{}
		return nil
	}
	return o.Value.UnmarshalJSON(data)
}

type previewOfferRequest struct {
	RuleType        string           `json:"rule_type" validate:"required"`
	ScopeValue      string           `json:"scope_value" validate:"required,max=255"`
	DiscountPercent *decimal.Decimal `json:"discount_percent" validate:"required"`
}

func (p previewOfferRequest) scope() (rules.Scope, error) {
	ruleType, err := enums.ParseOfferRuleType(p.RuleType)
	if err != nil {
		return rules.Scope{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rule type").
			WithDetails(map[string]any{"rule_type": p.RuleType})
	}
	return rules.Scope{RuleType: ruleType, Value: p.ScopeValue}, nil
}

type createOfferRequest struct {
	Name            string           `json:"name" validate:"required,max=255"`
	DiscountPercent *decimal.Decimal `json:"discount_percent" validate:"required"`
	RuleType        string           `json:"rule_type" validate:"required"`
	ScopeValue      string           `json:"scope_value" validate:"required,max=255"`
	StartDate       *time.Time       `json:"start_date"`
	EndDate         *time.Time       `json:"end_date"`
}

func (p createOfferRequest) toInput() (offers.CreateOfferInput, error) {
	ruleType, err := enums.ParseOfferRuleType(p.RuleType)
	if err != nil {
		return offers.CreateOfferInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rule type").
			WithDetails(map[string]any{"rule_type": p.RuleType})
	}
	return offers.CreateOfferInput{
		Name:            p.Name,
		DiscountPercent: *p.DiscountPercent,
		RuleType:        ruleType,
		ScopeValue:      p.ScopeValue,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
	}, nil
}

type updateOfferRequest struct {
	Name            *string          `json:"name" validate:"omitempty,max=255"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	RuleType        *string          `json:"rule_type"`
	ScopeValue      *string          `json:"scope_value" validate:"omitempty,max=255"`
	StartDate       *time.Time       `json:"start_date"`
	EndDate         *time.Time       `json:"end_date"`
	ClearWindow     bool             `json:"clear_window"`
	Active          *bool            `json:"active"`
}

func (p updateOfferRequest) toInput() (offers.UpdateOfferInput, error) {
	input := offers.UpdateOfferInput{
		Name:            p.Name,
		DiscountPercent: p.DiscountPercent,
		ScopeValue:      p.ScopeValue,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		ClearWindow:     p.ClearWindow,
		Active:          p.Active,
	}
	if p.RuleType != nil {
		ruleType, err := enums.ParseOfferRuleType(*p.RuleType)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rule type").
				WithDetails(map[string]any{"rule_type": *p.RuleType})
		}
		input.RuleType = &ruleType
	}
	return input, nil
}

type bulkMarginRequest struct {
	SKUs          []string         `json:"skus" validate:"required,min=1"`
	MarginPercent *decimal.Decimal `json:"margin_percent" validate:"required"`
}

// bulkOfferRequest switches an ad-hoc offer on (active with a discount) or off.
type bulkOfferRequest struct {
	SKUs            []string         `json:"skus" validate:"required,min=1"`
	Active          *bool            `json:"active" validate:"required"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
}

func (p bulkOfferRequest) discount() (*decimal.Decimal, error) {
	if !*p.Active {
		return nil, nil
	}
	if p.DiscountPercent == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount_percent is required when active")
	}
	return p.DiscountPercent, nil
}

type selectRequest struct {
	Brand       *string `json:"brand" validate:"omitempty,max=255"`
	ProductType *string `json:"product_type" validate:"omitempty,max=255"`
	StyleCode   *string `json:"style_code" validate:"omitempty,max=255"`
	HasOffer    *bool   `json:"has_offer"`
}

func (p selectRequest) selection() rules.Selection {
	return rules.Selection{
		Brand:       p.Brand,
		ProductType: p.ProductType,
		StyleCode:   p.StyleCode,
		HasOffer:    p.HasOffer,
	}
}

type updateVariantRequest struct {
	MarginPercent        *decimal.Decimal `json:"margin_percent"`
	IsOfferActive        *bool            `json:"is_offer_active"`
	OfferDiscountPercent optionalDecimal  `json:"offer_discount_percent"`
}

func (p updateVariantRequest) toUpdate() bulk.VariantUpdate {
	update := bulk.VariantUpdate{
		MarginPercent: p.MarginPercent,
		IsOfferActive: p.IsOfferActive,
	}
	if p.OfferDiscountPercent.Set {
		value := p.OfferDiscountPercent.Value
		update.OfferDiscountPercent = &value
	}
	return update
}

type createMarginRuleRequest struct {
	Name          string           `json:"name" validate:"required,max=255"`
	MarginPercent *decimal.Decimal `json:"margin_percent" validate:"required"`
}

type applyMarginRuleRequest struct {
	SKUs []string `json:"skus" validate:"required,min=1"`
}
