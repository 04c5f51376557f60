package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-pricing/internal/testdb"
	"github.com/angelmondragon/catalog-pricing/pkg/db/models"
	"github.com/angelmondragon/catalog-pricing/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
)

func seedCatalog(t *testing.T) ([]models.ProductVariant, *Resolver) {
	t.Helper()
	conn := testdb.Open(t)
	variants := testdb.MustVariants(t, conn,
		testdb.Variant{SKU: "SKU-1", Brand: "Acme", ProductType: "Tee", Style: "ST-1", Category: "Summer|Cotton", Cost: "10.00", Margin: "30"},
		testdb.Variant{SKU: "SKU-2", Brand: "Acme", ProductType: "Hoodie", Style: "ST-2", Category: "Winter|Fleece", Cost: "20.00", Margin: "30", Discount: "10"},
		testdb.Variant{SKU: "SKU-3", Brand: "Globex", ProductType: "Tee", Style: "ST-3", Category: "summer sale", Cost: "15.00", Margin: "40"},
		testdb.Variant{SKU: "SKU-4", Brand: "Acme", ProductType: "Tee", Style: "ST-1", Category: "Summer", Margin: "30"},
		testdb.Variant{SKU: "SKU-5", Brand: "Initech", ProductType: "Cap", Style: "ST-5", Category: "100%_cotton", Cost: "5.00"},
	)
	return variants, NewResolver(conn)
}

func assertQueryMatchesInMemory(t *testing.T, r *Resolver, variants []models.ProductVariant, query ScopeFunc, matches func(models.ProductVariant) bool) []string {
	t.Helper()
	got, err := r.ResolveSKUs(context.Background(), query)
	require.NoError(t, err)

	want := []string{}
	for _, v := range variants {
		if matches(v) {
			want = append(want, v.SKUCode)
		}
	}
	require.Equal(t, want, got)
	return got
}

func TestScopeMatching(t *testing.T) {
	variants, resolver := seedCatalog(t)

	cases := []struct {
		scope Scope
		want  []string
	}{
		{Scope{RuleType: enums.OfferRuleSKUOverride, Value: "SKU-3"}, []string{"SKU-3"}},
		{Scope{RuleType: enums.OfferRuleBrand, Value: "Acme"}, []string{"SKU-1", "SKU-2"}},
		{Scope{RuleType: enums.OfferRuleBrand, Value: "acme"}, []string{}},
		{Scope{RuleType: enums.OfferRuleProductType, Value: "Tee"}, []string{"SKU-1", "SKU-3"}},
		{Scope{RuleType: enums.OfferRuleCategory, Value: "SUMMER"}, []string{"SKU-1", "SKU-3"}},
		{Scope{RuleType: enums.OfferRuleCategory, Value: "%_cot"}, []string{"SKU-5"}},
		{Scope{RuleType: enums.OfferRuleCategory, Value: "_"}, []string{"SKU-5"}},
		{Scope{RuleType: enums.OfferRuleBrand, Value: "Nobody"}, []string{}},
	}
	for _, tc := range cases {
		require.NoError(t, tc.scope.Validate())
		got := assertQueryMatchesInMemory(t, resolver, variants, tc.scope.Query(), tc.scope.Matches)
		require.Equal(t, tc.want, got, "%+v", tc.scope)
	}
}

func TestCategoryFoldsASCIIOnly(t *testing.T) {
	conn := testdb.Open(t)
	variants := testdb.MustVariants(t, conn,
		testdb.Variant{SKU: "SKU-1", Category: "Été|Linen", Cost: "10.00"},
		testdb.Variant{SKU: "SKU-2", Category: "ÉTÉ", Cost: "10.00"},
		testdb.Variant{SKU: "SKU-3", Category: "straße", Cost: "10.00"},
	)
	resolver := NewResolver(conn)

	cases := []struct {
		value string
		want  []string
	}{
		{"linen", []string{"SKU-1"}},
		{"Été", []string{"SKU-1"}},
		{"été", []string{}},
		{"ÉTÉ", []string{"SKU-2"}},
		{"Ét", []string{"SKU-1", "SKU-2"}},
		{"STRASSE", []string{}},
		{"STRAßE", []string{"SKU-3"}},
	}
	for _, tc := range cases {
		scope := Scope{RuleType: enums.OfferRuleCategory, Value: tc.value}
		got := assertQueryMatchesInMemory(t, resolver, variants, scope.Query(), scope.Matches)
		require.Equal(t, tc.want, got, "category %q", tc.value)
	}
}

func TestUnpricedVariantsNeverMatch(t *testing.T) {
	variants, resolver := seedCatalog(t)
	scope := Scope{RuleType: enums.OfferRuleSKUOverride, Value: "SKU-4"}
	got := assertQueryMatchesInMemory(t, resolver, variants, scope.Query(), scope.Matches)
	require.Empty(t, got)
}

func TestScopeValidate(t *testing.T) {
	err := Scope{RuleType: enums.OfferRuleBrand, Value: "  "}.Validate()
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	err = Scope{RuleType: "style", Value: "ST-1"}.Validate()
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestSelectionMatching(t *testing.T) {
	variants, resolver := seedCatalog(t)
	acme := "Acme"
	tee := "Tee"
	yes := true
	no := false

	cases := []struct {
		sel  Selection
		want []string
	}{
		{Selection{}, []string{"SKU-1", "SKU-2", "SKU-3", "SKU-5"}},
		{Selection{Brand: &acme}, []string{"SKU-1", "SKU-2"}},
		{Selection{Brand: &acme, ProductType: &tee}, []string{"SKU-1"}},
		{Selection{HasOffer: &yes}, []string{"SKU-2"}},
		{Selection{Brand: &acme, HasOffer: &no}, []string{"SKU-1"}},
		{Selection{SKUs: []string{"SKU-5", "SKU-4", "SKU-1"}}, []string{"SKU-1", "SKU-5"}},
	}
	for _, tc := range cases {
		got := assertQueryMatchesInMemory(t, resolver, variants, tc.sel.Query(), tc.sel.Matches)
		require.Equal(t, tc.want, got, "%+v", tc.sel)
	}

	count, err := resolver.Count(context.Background(), Selection{Brand: &acme}.Query())
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
}

func TestNormalizeSKUs(t *testing.T) {
	out, err := NormalizeSKUs([]string{" SKU-A ", "SKU-B", "SKU-A", ""})
	require.NoError(t, err)
	require.Equal(t, []string{"SKU-A", "SKU-B"}, out)

	_, err = NormalizeSKUs([]string{" ", ""})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = NormalizeSKUs(nil)
	require.Error(t, err)
}
