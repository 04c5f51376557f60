package enums

import "fmt"

// OfferRuleType selects which variant attribute a special offer's scope value matches.
type OfferRuleType string

const (
	OfferRuleSKUOverride OfferRuleType = "sku_override"
	OfferRuleBrand       OfferRuleType = "brand"
	OfferRuleProductType OfferRuleType = "product_type"
	OfferRuleCategory    OfferRuleType = "category"
)

var validOfferRuleTypes = []OfferRuleType{
	OfferRuleSKUOverride,
	OfferRuleBrand,
	OfferRuleProductType,
	OfferRuleCategory,
}

// IsValid reports whether the rule type is recognized.
func (t OfferRuleType) IsValid() bool {
	for _, candidate := range validOfferRuleTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOfferRuleType converts a raw string into an OfferRuleType.
func ParseOfferRuleType(value string) (OfferRuleType, error) {
	for _, candidate := range validOfferRuleTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer rule type %q", value)
}
