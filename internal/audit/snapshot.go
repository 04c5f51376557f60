package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/angelmondragon/catalog-pricing/pkg/db/types"
	"github.com/angelmondragon/catalog-pricing/pkg/enums"
)

// Snapshot is the full input of one pricing mutation. Each audit action has
// exactly one concrete snapshot type.
type Snapshot interface {
	Action() enums.AuditAction
}

// MarginOverrideSnapshot records a manual bulk margin override.
type MarginOverrideSnapshot struct {
	SKUs          []string        `json:"skus"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
}

func (MarginOverrideSnapshot) Action() enums.AuditAction { return enums.AuditBulkMarginOverride }

// OfferState is the offer as it was when applied or removed.
type OfferState struct {
	ID              uuid.UUID           `json:"id"`
	Name            string              `json:"name"`
	DiscountPercent decimal.Decimal     `json:"discount_percent"`
	RuleType        enums.OfferRuleType `json:"rule_type"`
	ScopeValue      string              `json:"scope_value"`
	StartDate       *time.Time          `json:"start_date,omitempty"`
	EndDate         *time.Time          `json:"end_date,omitempty"`
	Active          bool                `json:"active"`
}

// OfferAppliedSnapshot records an offer application.
type OfferAppliedSnapshot struct {
	Offer OfferState `json:"offer"`
}

func (OfferAppliedSnapshot) Action() enums.AuditAction { return enums.AuditSpecialOfferApplied }

// OfferRemovedSnapshot records an offer removal.
type OfferRemovedSnapshot struct {
	Offer OfferState `json:"offer"`
}

func (OfferRemovedSnapshot) Action() enums.AuditAction { return enums.AuditSpecialOfferRemoved }

// BulkOfferSnapshot records a manual offer toggle over a selection.
type BulkOfferSnapshot struct {
	SKUs            []string         `json:"skus"`
	Active          bool             `json:"active"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
}

func (BulkOfferSnapshot) Action() enums.AuditAction { return enums.AuditBulkSpecialOffer }

// MarginRuleSnapshot records a margin rule applied to a selection.
type MarginRuleSnapshot struct {
	RuleID        uuid.UUID       `json:"rule_id"`
	RuleName      string          `json:"rule_name"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
	SKUs          []string        `json:"skus"`
}

func (MarginRuleSnapshot) Action() enums.AuditAction { return enums.AuditMarginRuleApplied }

// VariantUpdateSnapshot records a single-variant edit with the prices on both sides.
type VariantUpdateSnapshot struct {
	SKU                  string           `json:"sku"`
	MarginPercent        *decimal.Decimal `json:"margin_percent,omitempty"`
	IsOfferActive        *bool            `json:"is_offer_active,omitempty"`
	OfferDiscountPercent *decimal.Decimal `json:"offer_discount_percent,omitempty"`
	ClearDiscount        bool             `json:"clear_discount,omitempty"`
	Before               PriceState       `json:"before"`
	After                PriceState       `json:"after"`
}

func (VariantUpdateSnapshot) Action() enums.AuditAction { return enums.AuditVariantUpdated }

// PriceState is the engine-owned price columns of one variant.
type PriceState struct {
	MarginPercent        decimal.Decimal     `json:"margin_percent"`
	CalculatedPrice      decimal.NullDecimal `json:"calculated_price"`
	IsOfferActive        bool                `json:"is_offer_active"`
	OfferDiscountPercent decimal.NullDecimal `json:"offer_discount_percent"`
	FinalPrice           decimal.NullDecimal `json:"final_price"`
	AppliedRuleID        *uuid.UUID          `json:"applied_rule_id"`
}

type envelope struct {
	Kind    enums.AuditAction `json:"kind"`
	Payload json.RawMessage   `json:"payload"`
}

// Encode serializes a snapshot into the tagged envelope stored in rule_snapshot.
func Encode(s Snapshot) (dbtypes.JSON, error) {
	if s == nil {
		return nil, fmt.Errorf("snapshot is required")
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode %s snapshot: %w", s.Action(), err)
	}
	out, err := json.Marshal(envelope{Kind: s.Action(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot envelope: %w", err)
	}
	return dbtypes.JSON(out), nil
}

// Decode restores the concrete snapshot from a stored envelope.
func Decode(raw dbtypes.JSON) (Snapshot, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode snapshot envelope: %w", err)
	}

	var target Snapshot
	switch env.Kind {
	case enums.AuditBulkMarginOverride:
		target = &MarginOverrideSnapshot{}
	case enums.AuditSpecialOfferApplied:
		target = &OfferAppliedSnapshot{}
	case enums.AuditSpecialOfferRemoved:
		target = &OfferRemovedSnapshot{}
	case enums.AuditBulkSpecialOffer:
		target = &BulkOfferSnapshot{}
	case enums.AuditMarginRuleApplied:
		target = &MarginRuleSnapshot{}
	case enums.AuditVariantUpdated:
		target = &VariantUpdateSnapshot{}
	default:
		return nil, fmt.Errorf("unknown snapshot kind %q", env.Kind)
	}
	if err := json.Unmarshal(env.Payload, target); err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", env.Kind, err)
	}
	return target, nil
}
