package enums

import "fmt"

// AuditAction maps to the pricing_audit_log.action column.
type AuditAction string

const (
	AuditBulkMarginOverride  AuditAction = "bulk_margin_override"
	AuditBulkSpecialOffer    AuditAction = "bulk_special_offer"
	AuditSpecialOfferApplied AuditAction = "special_offer_applied"
	AuditSpecialOfferRemoved AuditAction = "special_offer_removed"
	AuditMarginRuleApplied   AuditAction = "margin_rule_applied"
	AuditVariantUpdated      AuditAction = "variant_updated"
)

var validAuditActions = []AuditAction{
	AuditBulkMarginOverride,
	AuditBulkSpecialOffer,
	AuditSpecialOfferApplied,
	AuditSpecialOfferRemoved,
	AuditMarginRuleApplied,
	AuditVariantUpdated,
}

// IsValid reports whether the action is recognized.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts a raw string into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
