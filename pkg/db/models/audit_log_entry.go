package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/angelmondragon/catalog-pricing/pkg/db/types"
	"github.com/angelmondragon/catalog-pricing/pkg/enums"
)

// AuditLogEntry is an append-only record of one pricing mutation.
type AuditLogEntry struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Action        enums.AuditAction `gorm:"column:action;not null"`
	AffectedCount int64             `gorm:"column:affected_count;not null"`
	PerformedBy   string            `gorm:"column:performed_by;not null"`
	RuleSnapshot  dbtypes.JSON      `gorm:"column:rule_snapshot;type:jsonb;not null"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (AuditLogEntry) TableName() string { return "pricing_audit_log" }

func (e *AuditLogEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
