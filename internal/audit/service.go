package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
	"github.com/angelmondragon/catalog-pricing/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
	"github.com/angelmondragon/catalog-pricing/pkg/pagination"
)

// Status reports whether a mutation's audit entry was persisted.
type Status string

const (
	StatusRecorded Status = "recorded"
	StatusFailed   Status = "failed"
	// StatusSkipped marks a zero-match mutation: nothing was written or audited.
	StatusSkipped  Status = "skipped"
)

// Receipt is attached to every mutation result so callers can tell an
// unaudited success apart from a normal one.
type Receipt struct {
	Status  Status     `json:"status"`
	EntryID *uuid.UUID `json:"entry_id,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// Recorded reports whether the entry was written.
func (r Receipt) Recorded() bool {
	return r.Status == StatusRecorded
}

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, entry *models.AuditLogEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.AuditLogEntry, error)
	List(ctx context.Context, query ListQuery) ([]models.AuditLogEntry, string, error)
}

// Service appends and reads the pricing audit log.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService builds the audit service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Record appends one entry for a committed mutation.
func (s *Service) Record(ctx context.Context, performedBy string, affected int64, snapshot Snapshot) (*models.AuditLogEntry, error) {
	if performedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "performed_by is required")
	}
	encoded, err := Encode(snapshot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode audit snapshot")
	}
	entry := &models.AuditLogEntry{
		Action:        snapshot.Action(),
		AffectedCount: affected,
		PerformedBy:   performedBy,
		RuleSnapshot:  encoded,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.Insert(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit entry")
	}
	return entry, nil
}

// Get loads one entry with its decoded snapshot.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*EntryDTO, error) {
	entry, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("audit entry", id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load audit entry")
	}
	dto := NewEntryDTO(*entry)
	return &dto, nil
}

// ListInput is the validated listing request.
type ListInput struct {
	Action      *enums.AuditAction
	PerformedBy *string
	Pagination  pagination.Params
}

// List pages through entries newest first.
func (s *Service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if _, err := pagination.ParseCursor(input.Pagination.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.store.List(ctx, ListQuery(input))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit entries")
	}
	entries := make([]EntryDTO, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, NewEntryDTO(row))
	}
	return &ListResult{Entries: entries, NextCursor: next, HasMore: next != ""}, nil
}
