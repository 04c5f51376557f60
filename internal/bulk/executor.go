package bulk

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-pricing/internal/audit"
	"github.com/angelmondragon/catalog-pricing/internal/pricing"
	"github.com/angelmondragon/catalog-pricing/internal/rules"
	"github.com/angelmondragon/catalog-pricing/internal/variants"
	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
	"github.com/angelmondragon/catalog-pricing/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
	"github.com/angelmondragon/catalog-pricing/pkg/logger"
	"github.com/angelmondragon/catalog-pricing/pkg/metrics"
)

// DefaultTimeout bounds a bulk statement when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// AuditRecorder appends the audit entry for a committed mutation.
type AuditRecorder interface {
	Record(ctx context.Context, performedBy string, affected int64, snapshot audit.Snapshot) (*models.AuditLogEntry, error)
}

// Result is returned by every mutation.
type Result struct {
	Action        enums.AuditAction `json:"action"`
	AffectedCount int64             `json:"affected_count"`
	Audit         audit.Receipt     `json:"audit"`
}

// Executor issues one multi-row UPDATE per operation and audits it after commit.
// Overlapping operations are not serialized: the later commit wins.
type Executor struct {
	variants *variants.Repository
	audit    AuditRecorder
	metrics  *metrics.PricingMetrics
	logg     *logger.Logger
	timeout  time.Duration
	now      func() time.Time
}

// Options wires the executor.
type Options struct {
	DB      *gorm.DB
	Audit   AuditRecorder
	Metrics *metrics.PricingMetrics
	Logger  *logger.Logger
	Timeout time.Duration
}

// NewExecutor builds the executor.
func NewExecutor(opts Options) *Executor {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		variants: variants.NewRepository(opts.DB),
		audit:    opts.Audit,
		metrics:  opts.Metrics,
		logg:     opts.Logger,
		timeout:  timeout,
		now:      time.Now,
	}
}

// ApplyMarginOverride sets margin_percent on the listed priced variants,
// recomputes both prices and clears rule provenance.
func (e *Executor) ApplyMarginOverride(ctx context.Context, operator string, skus []string, marginPercent decimal.Decimal) (*Result, error) {
	if err := requireOperator(operator); err != nil {
		return nil, err
	}
	normalized, err := rules.NormalizeSKUs(skus)
	if err != nil {
		return nil, err
	}
	if err := pricing.ValidateMargin(marginPercent); err != nil {
		return nil, err
	}

	snapshot := audit.MarginOverrideSnapshot{SKUs: normalized, MarginPercent: marginPercent}
	assignments := pricing.Assignments{MarginPercent: &marginPercent, ClearRule: true}
	return e.run(ctx, operator, snapshot, rules.SKUList(normalized).Query(), assignments)
}

// ApplySpecialOffer activates the offer's discount on every priced variant its
// scope matches. Margin is untouched.
func (e *Executor) ApplySpecialOffer(ctx context.Context, operator string, offer models.SpecialOffer) (*Result, error) {
	if err := requireOperator(operator); err != nil {
		return nil, err
	}
	scope := rules.ScopeForOffer(offer)
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if err := pricing.ValidateDiscount(offer.DiscountPercent); err != nil {
		return nil, err
	}
	if !offer.Active {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer is inactive").
			WithDetails(map[string]any{"offerId": offer.ID.String()})
	}
	if !offer.InWindow(e.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer is outside its date window").
			WithDetails(map[string]any{"offerId": offer.ID.String()})
	}

	active := true
	discount := decimal.NewNullDecimal(offer.DiscountPercent)
	assignments := pricing.Assignments{OfferActive: &active, DiscountPercent: &discount}
	snapshot := audit.OfferAppliedSnapshot{Offer: offerState(offer)}
	return e.run(ctx, operator, snapshot, scope.Query(), assignments)
}

// RemoveSpecialOffer reverts variants that carry an active offer and still
// match the offer's scope.
func (e *Executor) RemoveSpecialOffer(ctx context.Context, operator string, offer models.SpecialOffer) (*Result, error) {
	if err := requireOperator(operator); err != nil {
		return nil, err
	}
	scope := rules.ScopeForOffer(offer)
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	inactive := false
	cleared := decimal.NullDecimal{}
	assignments := pricing.Assignments{OfferActive: &inactive, DiscountPercent: &cleared}
	query := func(db *gorm.DB) *gorm.DB {
		return rules.OfferActive(scope.Query()(db))
	}
	snapshot := audit.OfferRemovedSnapshot{Offer: offerState(offer)}
	return e.run(ctx, operator, snapshot, query, assignments)
}

// ApplyMarginRule sets the rule's margin on the listed priced variants and
// records the rule as their provenance.
func (e *Executor) ApplyMarginRule(ctx context.Context, operator string, rule models.MarginRule, skus []string) (*Result, error) {
	if err := requireOperator(operator); err != nil {
		return nil, err
	}
	if !rule.Active {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "margin rule is inactive").
			WithDetails(map[string]any{"ruleId": rule.ID.String()})
	}
	normalized, err := rules.NormalizeSKUs(skus)
	if err != nil {
		return nil, err
	}
	if err := pricing.ValidateMargin(rule.MarginPercent); err != nil {
		return nil, err
	}

	margin := rule.MarginPercent
	ruleID := rule.ID.String()
	assignments := pricing.Assignments{MarginPercent: &margin, SetRule: &ruleID}
	snapshot := audit.MarginRuleSnapshot{
		RuleID:        rule.ID,
		RuleName:      rule.Name,
		MarginPercent: margin,
		SKUs:          normalized,
	}
	return e.run(ctx, operator, snapshot, rules.SKUList(normalized).Query(), assignments)
}

// BulkSetOffer switches an ad-hoc offer on (discount set) or off (discount nil)
// for the listed priced variants.
func (e *Executor) BulkSetOffer(ctx context.Context, operator string, skus []string, discountPercent *decimal.Decimal) (*Result, error) {
	if err := requireOperator(operator); err != nil {
		return nil, err
	}
	normalized, err := rules.NormalizeSKUs(skus)
	if err != nil {
		return nil, err
	}

	active := discountPercent != nil
	discount := decimal.NullDecimal{}
	if active {
		if err := pricing.ValidateDiscount(*discountPercent); err != nil {
			return nil, err
		}
		discount = decimal.NewNullDecimal(*discountPercent)
	}
	assignments := pricing.Assignments{OfferActive: &active, DiscountPercent: &discount}
	snapshot := audit.BulkOfferSnapshot{SKUs: normalized, Active: active, DiscountPercent: discountPercent}
	return e.run(ctx, operator, snapshot, rules.SKUList(normalized).Query(), assignments)
}

func (e *Executor) run(ctx context.Context, operator string, snapshot audit.Snapshot, scope rules.ScopeFunc, assignments pricing.Assignments) (*Result, error) {
	action := snapshot.Action()
	started := e.now()

	affected, err := e.execute(ctx, func(ctx context.Context) (int64, error) {
		return e.variants.Recompute(ctx, scope, assignments)
	})
	if err != nil {
		e.observe(action, err, 0, started)
		return nil, err
	}
	e.observe(action, nil, affected, started)

	result := &Result{Action: action, AffectedCount: affected}
	if affected == 0 {
		// nothing was written, so there is nothing to audit
		result.Audit = audit.Receipt{Status: audit.StatusSkipped}
	} else {
		result.Audit = e.record(ctx, operator, affected, snapshot)
	}
	e.logCompleted(ctx, result)
	return result, nil
}

// execute runs one statement under the bulk timeout. A deadline hit leaves the
// outcome unknown to the caller, who must re-read state before retrying.
func (e *Executor) execute(ctx context.Context, fn func(context.Context) (int64, error)) (int64, error) {
	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	affected, err := fn(runCtx)
	if err == nil {
		return affected, nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bulk mutation timed out").
			WithDetails(map[string]any{"effect": "unknown"})
	}
	if typed := pkgerrors.As(err); typed != nil {
		return 0, typed
	}
	return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bulk mutation failed")
}

func (e *Executor) record(ctx context.Context, operator string, affected int64, snapshot audit.Snapshot) audit.Receipt {
	action := snapshot.Action()
	entry, err := e.audit.Record(ctx, operator, affected, snapshot)
	if err != nil {
		e.metrics.IncAuditFailure(string(action))
		if e.logg != nil {
			logCtx := e.logg.WithFields(ctx, map[string]any{
				"action":         string(action),
				"affected_count": affected,
			})
			e.logg.Error(logCtx, "audit.write.failed", err)
		}
		return audit.Receipt{Status: audit.StatusFailed, Error: err.Error()}
	}
	id := entry.ID
	return audit.Receipt{Status: audit.StatusRecorded, EntryID: &id}
}

func (e *Executor) observe(action enums.AuditAction, err error, affected int64, started time.Time) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeDependency && isUnknownEffect(typed) {
			outcome = metrics.OutcomeTimeout
		}
	}
	e.metrics.ObserveMutation(string(action), outcome, affected, e.now().Sub(started))
}

func (e *Executor) logCompleted(ctx context.Context, result *Result) {
	if e.logg == nil {
		return
	}
	ctx = e.logg.WithFields(ctx, map[string]any{
		"action":         string(result.Action),
		"affected_count": result.AffectedCount,
		"audit_status":   string(result.Audit.Status),
	})
	e.logg.Info(ctx, "bulk."+string(result.Action)+".completed")
}

func isUnknownEffect(err *pkgerrors.Error) bool {
	details, ok := err.Details().(map[string]any)
	return ok && details["effect"] == "unknown"
}

func requireOperator(operator string) error {
	if operator == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "operator identity required")
	}
	return nil
}

func offerState(offer models.SpecialOffer) audit.OfferState {
	return audit.OfferState{
		ID:              offer.ID,
		Name:            offer.Name,
		DiscountPercent: offer.DiscountPercent,
		RuleType:        offer.RuleType,
		ScopeValue:      offer.ScopeValue,
		StartDate:       offer.StartDate,
		EndDate:         offer.EndDate,
		Active:          offer.Active,
	}
}
