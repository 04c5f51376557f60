package rules

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
)

// Resolver turns scopes and selections into the concrete matched SKU set.
type Resolver struct {
	db *gorm.DB
}

// NewResolver builds a resolver reading through the provided connection.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// WithTx returns a resolver bound to the provided transaction.
func (r *Resolver) WithTx(tx *gorm.DB) *Resolver {
	return &Resolver{db: tx}
}

// ResolveSKUs returns the matching sku codes ordered by sku_code.
func (r *Resolver) ResolveSKUs(ctx context.Context, scopes ...ScopeFunc) ([]string, error) {
	var skus []string
	err := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Scopes(scopes...).
		Order("sku_code ASC").
		Pluck("sku_code", &skus).Error
	if err != nil {
		return nil, err
	}
	if skus == nil {
		skus = []string{}
	}
	return skus, nil
}

// Count returns how many variants currently match.
func (r *Resolver) Count(ctx context.Context, scopes ...ScopeFunc) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Scopes(scopes...).
		Count(&total).Error
	return total, err
}
