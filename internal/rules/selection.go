package rules

import (
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
)

// MaxSKUs bounds explicit SKU lists accepted by bulk operations.
const MaxSKUs = 20000

// Selection is a manual bulk-selection filter. Nil fields are ignored.
type Selection struct {
	Brand       *string  `json:"brand,omitempty"`
	ProductType *string  `json:"product_type,omitempty"`
	StyleCode   *string  `json:"style_code,omitempty"`
	HasOffer    *bool    `json:"has_offer,omitempty"`
	SKUs        []string `json:"skus,omitempty"`
}

// Query returns the predicate for priced variants matching every set field.
func (s Selection) Query() ScopeFunc {
	return func(db *gorm.DB) *gorm.DB {
		db = Priced(db)
		if s.Brand != nil {
			db = db.Where("brand = ?", *s.Brand)
		}
		if s.ProductType != nil {
			db = db.Where("product_type = ?", *s.ProductType)
		}
		if s.StyleCode != nil {
			db = db.Where("style_code = ?", *s.StyleCode)
		}
		if s.HasOffer != nil {
			db = db.Where("is_offer_active = ?", *s.HasOffer)
		}
		if s.SKUs != nil {
			db = db.Where("sku_code IN ?", s.SKUs)
		}
		return db
	}
}

// Matches mirrors Query for a loaded variant.
func (s Selection) Matches(v models.ProductVariant) bool {
	if !v.Cost.Valid {
		return false
	}
	if s.Brand != nil && v.Brand != *s.Brand {
		return false
	}
	if s.ProductType != nil && v.ProductType != *s.ProductType {
		return false
	}
	if s.StyleCode != nil && v.StyleCode != *s.StyleCode {
		return false
	}
	if s.HasOffer != nil && v.IsOfferActive != *s.HasOffer {
		return false
	}
	if s.SKUs != nil {
		for _, sku := range s.SKUs {
			if sku == v.SKUCode {
				return true
			}
		}
		return false
	}
	return true
}

// NormalizeSKUs trims, de-duplicates and bounds an explicit SKU list. An empty
// list is a validation error: bulk operations never run against "nothing selected".
func NormalizeSKUs(skus []string) ([]string, error) {
	seen := make(map[string]struct{}, len(skus))
	out := make([]string, 0, len(skus))
	for _, raw := range skus {
		sku := strings.TrimSpace(raw)
		if sku == "" {
			continue
		}
		if _, ok := seen[sku]; ok {
			continue
		}
		seen[sku] = struct{}{}
		out = append(out, sku)
	}
	if len(out) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one sku is required")
	}
	if len(out) > MaxSKUs {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "too many skus in one request").
			WithDetails(map[string]any{"max": MaxSKUs, "received": len(out)})
	}
	return out, nil
}

// SKUList is a Selection over an explicit, already normalized SKU list.
func SKUList(skus []string) Selection {
	return Selection{SKUs: skus}
}
