package margins

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-pricing/internal/bulk"
	"github.com/angelmondragon/catalog-pricing/internal/pricing"
	"github.com/angelmondragon/catalog-pricing/pkg/db"
	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
	"github.com/angelmondragon/catalog-pricing/pkg/pagination"
)

// Applier writes a rule's margin onto variants.
type Applier interface {
	ApplyMarginRule(ctx context.Context, operator string, rule models.MarginRule, skus []string) (*bulk.Result, error)
}

// Service manages named margin rules.
type Service struct {
	repo    *Repository
	applier Applier
}

func NewService(db *gorm.DB, applier Applier) *Service {
	return &Service{repo: NewRepository(db), applier: applier}
}

// RuleDTO is the API view of a margin rule.
type RuleDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	MarginPercent string    `json:"margin_percent"`
	Active        bool      `json:"active"`
	VariantCount  *int64    `json:"variant_count,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newRuleDTO(rule models.MarginRule) RuleDTO {
	return RuleDTO{
		ID:            rule.ID,
		Name:          rule.Name,
		MarginPercent: rule.MarginPercent.StringFixed(2),
		Active:        rule.Active,
		CreatedAt:     rule.CreatedAt,
		UpdatedAt:     rule.UpdatedAt,
	}
}

// RuleListResult is one page of rules.
type RuleListResult struct {
	Rules      []RuleDTO `json:"rules"`
	NextCursor string    `json:"next_cursor,omitempty"`
	HasMore    bool      `json:"has_more"`
}

type CreateRuleInput struct {
	Name          string
	MarginPercent decimal.Decimal
}

type ListRulesInput struct {
	Active     *bool
	Pagination pagination.Params
}

func (s *Service) CreateRule(ctx context.Context, input CreateRuleInput) (*RuleDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule name is required")
	}
	if err := pricing.ValidateMargin(input.MarginPercent); err != nil {
		return nil, err
	}

	rule := &models.MarginRule{Name: name, MarginPercent: input.MarginPercent, Active: true}
	if err := s.repo.Create(ctx, rule); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "margin rule name already exists").
				WithDetails(map[string]any{"name": name})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create margin rule")
	}
	dto := newRuleDTO(*rule)
	return &dto, nil
}

// GetRule loads a rule with the number of variants currently carrying it.
func (s *Service) GetRule(ctx context.Context, id uuid.UUID) (*RuleDTO, error) {
	rule, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountVariants(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count rule variants")
	}
	dto := newRuleDTO(*rule)
	dto.VariantCount = &count
	return &dto, nil
}

func (s *Service) ListRules(ctx context.Context, input ListRulesInput) (*RuleListResult, error) {
	if _, err := pagination.ParseCursor(input.Pagination.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.List(ctx, listQuery(input))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list margin rules")
	}
	out := make([]RuleDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, newRuleDTO(row))
	}
	return &RuleListResult{Rules: out, NextCursor: next, HasMore: next != ""}, nil
}

// DeactivateRule soft-deletes a rule. Variants keep their margin and provenance.
func (s *Service) DeactivateRule(ctx context.Context, id uuid.UUID) (*RuleDTO, error) {
	rule, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, rule, false); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate margin rule")
	}
	dto := newRuleDTO(*rule)
	return &dto, nil
}

// ApplyRule copies the rule's margin onto the listed variants.
func (s *Service) ApplyRule(ctx context.Context, operator string, id uuid.UUID, skus []string) (*bulk.Result, error) {
	rule, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.applier.ApplyMarginRule(ctx, operator, *rule, skus)
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*models.MarginRule, error) {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("margin rule", id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load margin rule")
	}
	return rule, nil
}
