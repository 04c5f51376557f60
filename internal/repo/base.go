package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-pricing/pkg/pagination"
)

// Base provides a shared foundation for the pricing repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// PageNewestFirst pages qb by (created_at DESC, id DESC). position extracts the
// cursor of a row; the returned cursor is empty on the last page.
func PageNewestFirst[T any](qb *gorm.DB, params pagination.Params, position func(T) pagination.Cursor) ([]T, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []T
	err = qb.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&records).Error
	if err != nil {
		return nil, "", err
	}

	page, more := pagination.Trim(records, params.Limit)
	next := ""
	if more {
		next = pagination.EncodeCursor(position(page[len(page)-1]))
	}
	return page, next, nil
}
