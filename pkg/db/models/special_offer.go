package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-pricing/pkg/enums"
)

// SpecialOffer is a scoped, optionally time-boxed discount layered over calculated prices.
type SpecialOffer struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name            string              `gorm:"column:name;not null"`
	DiscountPercent decimal.Decimal     `gorm:"column:discount_percent;type:numeric(5,2);not null"`
	RuleType        enums.OfferRuleType `gorm:"column:rule_type;not null"`
	ScopeValue      string              `gorm:"column:scope_value;not null"`
	StartDate       *time.Time          `gorm:"column:start_date"`
	EndDate         *time.Time          `gorm:"column:end_date"`
	Active          bool                `gorm:"column:active;not null;default:true"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (SpecialOffer) TableName() string { return "special_offers" }

func (o *SpecialOffer) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// InWindow reports whether at falls inside the optional start/end dates.
func (o SpecialOffer) InWindow(at time.Time) bool {
	if o.StartDate != nil && at.Before(*o.StartDate) {
		return false
	}
	if o.EndDate != nil && at.After(*o.EndDate) {
		return false
	}
	return true
}
