package margins

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-pricing/internal/repo"
	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
	"github.com/angelmondragon/catalog-pricing/pkg/pagination"
)

// Repository persists margin rules. Rules are never deleted so variants can
// keep pointing at them through applied_rule_id.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, rule *models.MarginRule) error {
	return r.DB(ctx).Create(rule).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MarginRule, error) {
	var rule models.MarginRule
	if err := r.DB(ctx).First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

// SetActive flips the soft-delete flag.
func (r *Repository) SetActive(ctx context.Context, rule *models.MarginRule, active bool) error {
	rule.Active = active
	return r.DB(ctx).
		Model(rule).
		Select("active", "updated_at").
		Updates(rule).Error
}

// CountVariants returns how many variants currently carry the rule.
func (r *Repository) CountVariants(ctx context.Context, id uuid.UUID) (int64, error) {
	var total int64
	err := r.DB(ctx).
		Model(&models.ProductVariant{}).
		Where("applied_rule_id = ?", id).
		Count(&total).Error
	return total, err
}

type listQuery struct {
	Active     *bool
	Pagination pagination.Params
}

// List returns one page of rules ordered by created_at DESC, id DESC.
func (r *Repository) List(ctx context.Context, query listQuery) ([]models.MarginRule, string, error) {
	qb := r.DB(ctx).Model(&models.MarginRule{})
	if query.Active != nil {
		qb = qb.Where("active = ?", *query.Active)
	}
	return repo.PageNewestFirst(qb, query.Pagination, func(row models.MarginRule) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})
}
