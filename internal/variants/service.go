package variants

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-pricing/internal/rules"
	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
)

// SelectResult is the SKU set a filter currently matches.
type SelectResult struct {
	SKUs  []string `json:"skus"`
	Count int      `json:"count"`
}

// Service exposes read access to variants and filter-based selection.
type Service struct {
	repo     *Repository
	resolver *rules.Resolver
}

// NewService builds the variant read service.
func NewService(db *gorm.DB) *Service {
	return &Service{
		repo:     NewRepository(db),
		resolver: rules.NewResolver(db),
	}
}

// GetVariant loads one variant by sku.
func (s *Service) GetVariant(ctx context.Context, sku string) (*VariantDTO, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	variant, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("variant", sku)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	dto := NewVariantDTO(*variant)
	return &dto, nil
}

// SelectByFilter resolves the priced variants matching every set field,
// ordered by sku. The explicit SKU list of the selection is ignored here.
func (s *Service) SelectByFilter(ctx context.Context, filter rules.Selection) (*SelectResult, error) {
	filter.SKUs = nil
	filter.Brand = trimmed(filter.Brand)
	filter.ProductType = trimmed(filter.ProductType)
	filter.StyleCode = trimmed(filter.StyleCode)

	skus, err := s.resolver.ResolveSKUs(ctx, filter.Query())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "select variants")
	}
	return &SelectResult{SKUs: skus, Count: len(skus)}, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
