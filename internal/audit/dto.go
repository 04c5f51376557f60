package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
	dbtypes "github.com/angelmondragon/catalog-pricing/pkg/db/types"
	"github.com/angelmondragon/catalog-pricing/pkg/enums"
)

// EntryDTO is the API view of an audit entry. Snapshot is the stored
// {"kind","payload"} document verbatim.
type EntryDTO struct {
	ID            uuid.UUID         `json:"id"`
	Action        enums.AuditAction `json:"action"`
	AffectedCount int64             `json:"affected_count"`
	PerformedBy   string            `json:"performed_by"`
	Snapshot      dbtypes.JSON      `json:"rule_snapshot"`
	CreatedAt     time.Time         `json:"created_at"`
}

// NewEntryDTO maps a stored entry.
func NewEntryDTO(entry models.AuditLogEntry) EntryDTO {
	return EntryDTO{
		ID:            entry.ID,
		Action:        entry.Action,
		AffectedCount: entry.AffectedCount,
		PerformedBy:   entry.PerformedBy,
		Snapshot:      entry.RuleSnapshot,
		CreatedAt:     entry.CreatedAt,
	}
}

// ListResult is one page of the audit listing.
type ListResult struct {
	Entries    []EntryDTO `json:"entries"`
	NextCursor string     `json:"next_cursor,omitempty"`
	HasMore    bool       `json:"has_more"`
}
