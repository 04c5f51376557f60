package rules

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	pkgdb "github.com/angelmondragon/catalog-pricing/pkg/db"
	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
	"github.com/angelmondragon/catalog-pricing/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
)

// ScopeFunc narrows a product_variants query. Values are always bound as parameters.
type ScopeFunc = func(*gorm.DB) *gorm.DB

// Scope is the matching half of a special offer.
type Scope struct {
	RuleType enums.OfferRuleType `json:"rule_type"`
	Value    string              `json:"scope_value"`
}

// ScopeForOffer extracts the offer's scope.
func ScopeForOffer(offer models.SpecialOffer) Scope {
	return Scope{RuleType: offer.RuleType, Value: offer.ScopeValue}
}

// Validate rejects unknown rule types and blank scope values.
func (s Scope) Validate() error {
	if !s.RuleType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid rule type").
			WithDetails(map[string]any{"rule_type": string(s.RuleType)})
	}
	if strings.TrimSpace(s.Value) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "scope value is required for rule type").
			WithDetails(map[string]any{"rule_type": string(s.RuleType)})
	}
	return nil
}

// Query returns the predicate selecting priced variants the scope matches.
// Call Validate first; an invalid scope matches nothing.
func (s Scope) Query() ScopeFunc {
	return func(db *gorm.DB) *gorm.DB {
		db = Priced(db)
		switch s.RuleType {
		case enums.OfferRuleSKUOverride:
			return db.Where("sku_code = ?", s.Value)
		case enums.OfferRuleBrand:
			return db.Where("brand = ?", s.Value)
		case enums.OfferRuleProductType:
			return db.Where("product_type = ?", s.Value)
		case enums.OfferRuleCategory:
			return db.Where(lowerASCII(db, "category")+` LIKE ? ESCAPE '\'`, containsPattern(s.Value))
		default:
			return db.Where("1 = 0")
		}
	}
}

// Matches evaluates the scope against a loaded variant with the same semantics as Query.
func (s Scope) Matches(v models.ProductVariant) bool {
	if !v.Cost.Valid {
		return false
	}
	switch s.RuleType {
	case enums.OfferRuleSKUOverride:
		return v.SKUCode == s.Value
	case enums.OfferRuleBrand:
		return v.Brand == s.Value
	case enums.OfferRuleProductType:
		return v.ProductType == s.Value
	case enums.OfferRuleCategory:
		return strings.Contains(foldASCII(v.Category), foldASCII(s.Value))
	}
	return false
}

// Priced excludes variants without a cost basis; they never participate in rules.
func Priced(db *gorm.DB) *gorm.DB {
	return db.Where("cost IS NOT NULL")
}

// OfferActive restricts a query to variants currently carrying an offer.
func OfferActive(db *gorm.DB) *gorm.DB {
	return db.Where("is_offer_active = ?", true)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(foldASCII(value)) + "%"
}

// Category matching folds ASCII letters only, which is all SQLite's LOWER
// folds. Postgres uses TRANSLATE to fold the same set.
const upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func lowerASCII(db *gorm.DB, column string) string {
	if db.Dialector != nil && db.Dialector.Name() == pkgdb.DialectPostgres {
		return fmt.Sprintf("TRANSLATE(%s, '%s', '%s')", column, upperLetters, strings.ToLower(upperLetters))
	}
	return "LOWER(" + column + ")"
}

func foldASCII(value string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, value)
}
