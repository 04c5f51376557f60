package offers

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
	"github.com/angelmondragon/catalog-pricing/internal/rules"
	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
	"github.com/angelmondragon/catalog-pricing/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
	"github.com/angelmondragon/catalog-pricing/pkg/pagination"
)

// DefaultSampleSize is the number of preview rows returned when unset.
const DefaultSampleSize = 10

// Mutator applies and removes offers against the variant table.
type Mutator interface {
	ApplySpecialOffer(ctx context.Context, operator string, offer models.SpecialOffer) (*bulk.Result, error)
	RemoveSpecialOffer(ctx context.Context, operator string, offer models.SpecialOffer) (*bulk.Result, error)
}

// Service manages the special offer lifecycle: create, preview, apply,
// remove, soft-deactivate.
type Service struct {
	db         *gorm.DB
	repo       *Repository
	mutator    Mutator
	sampleSize int
}

// NewService builds the offer service.
func NewService(db *gorm.DB, mutator Mutator, sampleSize int) *Service {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return &Service{
		db:         db,
		repo:       NewRepository(db),
		mutator:    mutator,
		sampleSize: sampleSize,
	}
}

// CreateOfferInput holds the validated payload to create an offer.
type CreateOfferInput struct {
	Name            string
	DiscountPercent decimal.Decimal
	RuleType        enums.OfferRuleType
	ScopeValue      string
	StartDate       *time.Time
	EndDate         *time.Time
}

// UpdateOfferInput holds optional mutations. Updating never re-applies the
// offer to variants; that is an explicit apply.
type UpdateOfferInput struct {
	Name            *string
	DiscountPercent *decimal.Decimal
	RuleType        *enums.OfferRuleType
	ScopeValue      *string
	StartDate       *time.Time
	EndDate         *time.Time
	ClearWindow     bool
	Active          *bool
}

// ListOffersInput filters the offer listing.
type ListOffersInput struct {
	Active     *bool
	Pagination pagination.Params
}

// CreateOffer validates and stores a new active offer.
func (s *Service) CreateOffer(ctx context.Context, input CreateOfferInput) (*OfferDTO, error) {
	offer := &models.SpecialOffer{
		Name:            strings.TrimSpace(input.Name),
		DiscountPercent: input.DiscountPercent,
		RuleType:        input.RuleType,
		ScopeValue:      strings.TrimSpace(input.ScopeValue),
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Active:          true,
	}
	if err := validateOffer(*offer); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, offer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create offer")
	}
	dto := NewOfferDTO(*offer)
	return &dto, nil
}

// GetOffer loads one offer.
func (s *Service) GetOffer(ctx context.Context, id uuid.UUID) (*OfferDTO, error) {
	offer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewOfferDTO(*offer)
	return &dto, nil
}

// ListOffers pages through offers newest first.
func (s *Service) ListOffers(ctx context.Context, input ListOffersInput) (*OfferListResult, error) {
	if _, err := pagination.ParseCursor(input.Pagination.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.List(ctx, listQuery(input))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}
	out := make([]OfferDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewOfferDTO(row))
	}
	return &OfferListResult{Offers: out, NextCursor: next, HasMore: next != ""}, nil
}

// UpdateOffer edits the stored offer without touching variants.
func (s *Service) UpdateOffer(ctx context.Context, id uuid.UUID, input UpdateOfferInput) (*OfferDTO, error) {
	offer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		offer.Name = strings.TrimSpace(*input.Name)
	}
	if input.DiscountPercent != nil {
		offer.DiscountPercent = *input.DiscountPercent
	}
	if input.RuleType != nil {
		offer.RuleType = *input.RuleType
	}
	if input.ScopeValue != nil {
		offer.ScopeValue = strings.TrimSpace(*input.ScopeValue)
	}
	if input.ClearWindow {
		offer.StartDate = nil
		offer.EndDate = nil
	}
	if input.StartDate != nil {
		offer.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		offer.EndDate = input.EndDate
	}
	if input.Active != nil {
		offer.Active = *input.Active
	}
	if err := validateOffer(*offer); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, offer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update offer")
	}
	dto := NewOfferDTO(*offer)
	return &dto, nil
}

// DeactivateOffer soft-deletes the offer. Variants already carrying its
// discount keep it until the offer is explicitly removed.
func (s *Service) DeactivateOffer(ctx context.Context, id uuid.UUID) (*OfferDTO, error) {
	inactive := false
	return s.UpdateOffer(ctx, id, UpdateOfferInput{Active: &inactive})
}

// PreviewOffer projects a scope/discount over the current catalog without writing.
func (s *Service) PreviewOffer(ctx context.Context, scope rules.Scope, discountPercent decimal.Decimal) (*PreviewResult, error) {
	scope.Value = strings.TrimSpace(scope.Value)
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if err := pricing.ValidateDiscount(discountPercent); err != nil {
		return nil, err
	}
	result, err := preview(ctx, s.db, scope, discountPercent, s.sampleSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "preview offer")
	}
	return result, nil
}

// ApplyOffer loads the offer and applies it to every variant its scope matches.
func (s *Service) ApplyOffer(ctx context.Context, operator string, id uuid.UUID) (*bulk.Result, error) {
	offer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.mutator.ApplySpecialOffer(ctx, operator, *offer)
}

// RemoveOffer reverts the offer on every variant it currently covers.
func (s *Service) RemoveOffer(ctx context.Context, operator string, id uuid.UUID) (*bulk.Result, error) {
	offer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.mutator.RemoveSpecialOffer(ctx, operator, *offer)
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*models.SpecialOffer, error) {
	offer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("offer", id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	return offer, nil
}

func validateOffer(offer models.SpecialOffer) error {
	if offer.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer name is required")
	}
	if err := rules.ScopeForOffer(offer).Validate(); err != nil {
		return err
	}
	if err := pricing.ValidateDiscount(offer.DiscountPercent); err != nil {
		return err
	}
	if offer.StartDate != nil && offer.EndDate != nil && offer.EndDate.Before(*offer.StartDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}
	return nil
}
