package offers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-pricing/internal/repo"
	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
	"github.com/angelmondragon/catalog-pricing/pkg/pagination"
)

// Repository persists special offers. Offers are soft-deactivated, never deleted.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new offer.
func (r *Repository) Create(ctx context.Context, offer *models.SpecialOffer) error {
	return r.DB(ctx).Create(offer).Error
}

// FindByID loads one offer.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SpecialOffer, error) {
	var offer models.SpecialOffer
	if err := r.DB(ctx).First(&offer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

// Update writes every mutable column of the offer.
func (r *Repository) Update(ctx context.Context, offer *models.SpecialOffer) error {
	return r.DB(ctx).
		Model(offer).
		Select("name", "discount_percent", "rule_type", "scope_value", "start_date", "end_date", "active", "updated_at").
		Updates(offer).Error
}

// listQuery filters the offer listing.
type listQuery struct {
	Active     *bool
	Pagination pagination.Params
}

// List returns one page of offers ordered by created_at DESC, id DESC.
func (r *Repository) List(ctx context.Context, query listQuery) ([]models.SpecialOffer, string, error) {
	qb := r.DB(ctx).Model(&models.SpecialOffer{})
	if query.Active != nil {
		qb = qb.Where("active = ?", *query.Active)
	}
	return repo.PageNewestFirst(qb, query.Pagination, func(row models.SpecialOffer) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})
}
