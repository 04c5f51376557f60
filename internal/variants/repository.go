package variants

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-pricing/internal/pricing"
	"github.com/angelmondragon/catalog-pricing/internal/rules"
	"github.com/angelmondragon/catalog-pricing/internal/repo"
	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
)

// Repository reads variants and applies set-based price recomputes. It never
// writes cost: that column belongs to the catalog feed.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindBySKU loads one variant.
func (r *Repository) FindBySKU(ctx context.Context, sku string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.DB(ctx).Where("sku_code = ?", sku).First(&variant).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// ListBySKUs loads variants ordered by sku_code.
func (r *Repository) ListBySKUs(ctx context.Context, skus []string) ([]models.ProductVariant, error) {
	var out []models.ProductVariant
	err := r.DB(ctx).
		Where("sku_code IN ?", skus).
		Order("sku_code ASC").
		Find(&out).Error
	return out, err
}

// Recompute applies the assignments to every variant the scope selects in
// one UPDATE statement and returns the affected row count.
func (r *Repository) Recompute(ctx context.Context, scope rules.ScopeFunc, assignments pricing.Assignments) (int64, error) {
	conn := r.DB(ctx)
	result := conn.
		Model(&models.ProductVariant{}).
		Scopes(scope).
		Updates(assignments.Updates(conn.Dialector.Name()))
	return result.RowsAffected, result.Error
}
