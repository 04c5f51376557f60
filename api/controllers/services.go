package controllers

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-pricing/internal/audit"
	"github.com/angelmondragon/catalog-pricing/internal/browse"
	"github.com/angelmondragon/catalog-pricing/internal/bulk"
	"github.com/angelmondragon/catalog-pricing/internal/margins"
	"github.com/angelmondragon/catalog-pricing/internal/offers"
	"github.com/angelmondragon/catalog-pricing/internal/rules"
	"github.com/angelmondragon/catalog-pricing/internal/variants"
)

// OfferService is the offer surface the handlers depend on.
type OfferService interface {
	CreateOffer(ctx context.Context, input offers.CreateOfferInput) (*offers.OfferDTO, error)
	GetOffer(ctx context.Context, id uuid.UUID) (*offers.OfferDTO, error)
	ListOffers(ctx context.Context, input offers.ListOffersInput) (*offers.OfferListResult, error)
	UpdateOffer(ctx context.Context, id uuid.UUID, input offers.UpdateOfferInput) (*offers.OfferDTO, error)
	DeactivateOffer(ctx context.Context, id uuid.UUID) (*offers.OfferDTO, error)
	PreviewOffer(ctx context.Context, scope rules.Scope, discountPercent decimal.Decimal) (*offers.PreviewResult, error)
	ApplyOffer(ctx context.Context, operator string, id uuid.UUID) (*bulk.Result, error)
	RemoveOffer(ctx context.Context, operator string, id uuid.UUID) (*bulk.Result, error)
}

// VariantReader looks variants up without mutating them.
type VariantReader interface {
	GetVariant(ctx context.Context, sku string) (*variants.VariantDTO, error)
	SelectByFilter(ctx context.Context, filter rules.Selection) (*variants.SelectResult, error)
}

// BulkMutator runs the audited variant mutations.
type BulkMutator interface {
	ApplyMarginOverride(ctx context.Context, operator string, skus []string, marginPercent decimal.Decimal) (*bulk.Result, error)
	BulkSetOffer(ctx context.Context, operator string, skus []string, discountPercent *decimal.Decimal) (*bulk.Result, error)
	UpdateSingleVariant(ctx context.Context, operator, sku string, update bulk.VariantUpdate) (*bulk.VariantResult, error)
}

type MarginRuleService interface {
	CreateRule(ctx context.Context, input margins.CreateRuleInput) (*margins.RuleDTO, error)
	GetRule(ctx context.Context, id uuid.UUID) (*margins.RuleDTO, error)
	ListRules(ctx context.Context, input margins.ListRulesInput) (*margins.RuleListResult, error)
	DeactivateRule(ctx context.Context, id uuid.UUID) (*margins.RuleDTO, error)
	ApplyRule(ctx context.Context, operator string, id uuid.UUID, skus []string) (*bulk.Result, error)
}

type CatalogBrowser interface {
	ListAggregates(ctx context.Context, q browse.Query) (*browse.Page, error)
}

type AuditReader interface {
	Get(ctx context.Context, id uuid.UUID) (*audit.EntryDTO, error)
	List(ctx context.Context, input audit.ListInput) (*audit.ListResult, error)
}
