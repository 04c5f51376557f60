package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-pricing/internal/repo"
	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
	"github.com/angelmondragon/catalog-pricing/pkg/enums"
	"github.com/angelmondragon/catalog-pricing/pkg/pagination"
)

// Repository is append-only: it can insert and read entries, never update or delete them.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Insert appends one entry.
func (r *Repository) Insert(ctx context.Context, entry *models.AuditLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return r.DB(ctx).Create(entry).Error
}

// FindByID loads one entry.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AuditLogEntry, error) {
	var entry models.AuditLogEntry
	if err := r.DB(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListQuery filters the newest-first audit listing.
type ListQuery struct {
	Action      *enums.AuditAction
	PerformedBy *string
	Pagination  pagination.Params
}

// List returns one page of entries ordered by created_at DESC, id DESC.
func (r *Repository) List(ctx context.Context, query ListQuery) ([]models.AuditLogEntry, string, error) {
	qb := r.DB(ctx).Model(&models.AuditLogEntry{})
	if query.Action != nil {
		qb = qb.Where("action = ?", *query.Action)
	}
	if query.PerformedBy != nil {
		qb = qb.Where("performed_by = ?", *query.PerformedBy)
	}
	return repo.PageNewestFirst(qb, query.Pagination, func(row models.AuditLogEntry) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})
}
