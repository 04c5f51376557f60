package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MarginRule is a named markup; rows are soft-deactivated, never deleted, so
// product_variants.applied_rule_id stays resolvable.
type MarginRule struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name          string          `gorm:"column:name;not null;uniqueIndex:ux_margin_rules_name"`
	MarginPercent decimal.Decimal `gorm:"column:margin_percent;type:numeric(7,2);not null"`
	Active        bool            `gorm:"column:active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (MarginRule) TableName() string { return "margin_rules" }

func (r *MarginRule) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
