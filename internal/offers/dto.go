package offers

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
	"github.com/angelmondragon/catalog-pricing/pkg/enums"
)

// OfferDTO is the API view of a special offer.
type OfferDTO struct {
	ID              uuid.UUID           `json:"id"`
	Name            string              `json:"name"`
	DiscountPercent string              `json:"discount_percent"`
	RuleType        enums.OfferRuleType `json:"rule_type"`
	ScopeValue      string              `json:"scope_value"`
	StartDate       *time.Time          `json:"start_date,omitempty"`
	EndDate         *time.Time          `json:"end_date,omitempty"`
	Active          bool                `json:"active"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// NewOfferDTO maps a stored offer.
func NewOfferDTO(offer models.SpecialOffer) OfferDTO {
	return OfferDTO{
		ID:              offer.ID,
		Name:            offer.Name,
		DiscountPercent: offer.DiscountPercent.StringFixed(2),
		RuleType:        offer.RuleType,
		ScopeValue:      offer.ScopeValue,
		StartDate:       offer.StartDate,
		EndDate:         offer.EndDate,
		Active:          offer.Active,
		CreatedAt:       offer.CreatedAt,
		UpdatedAt:       offer.UpdatedAt,
	}
}

// OfferListResult is one page of offers.
type OfferListResult struct {
	Offers     []OfferDTO `json:"offers"`
	NextCursor string     `json:"next_cursor,omitempty"`
	HasMore    bool       `json:"has_more"`
}
