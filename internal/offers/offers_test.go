package offers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-pricing/internal/audit"
	"github.com/angelmondragon/catalog-pricing/internal/bulk"
	"github.com/angelmondragon/catalog-pricing/internal/rules"
	"github.com/angelmondragon/catalog-pricing/internal/testdb"
	"github.com/angelmondragon/catalog-pricing/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
	"github.com/angelmondragon/catalog-pricing/pkg/metrics"
	"github.com/angelmondragon/catalog-pricing/pkg/pagination"
)

const operator = "operator-1"

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	conn := testdb.Open(t)
	exec := bulk.NewExecutor(bulk.Options{
		DB:      conn,
		Audit:   audit.NewService(audit.NewRepository(conn)),
		Metrics: metrics.NewPricingMetrics(prometheus.NewRegistry()),
	})
	return NewService(conn, exec, 2), conn
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func brandOffer(name, brand, discount string) CreateOfferInput {
	return CreateOfferInput{
		Name:            name,
		DiscountPercent: dec(discount),
		RuleType:        enums.OfferRuleBrand,
		ScopeValue:      brand,
	}
}

func TestPreviewWithNoMatchesReturnsZeroes(t *testing.T) {
	svc, conn := newService(t)
	testdb.MustVariant(t, conn, testdb.Variant{SKU: "SKU-1", Brand: "Other", Cost: "10.00", Margin: "30"})

	res, err := svc.PreviewOffer(context.Background(), rules.Scope{RuleType: enums.OfferRuleBrand, Value: "Acme"}, dec("20"))
	require.NoError(t, err)
	require.EqualValues(t, 0, res.AffectedCount)
	require.Equal(t, "0.00", res.AvgCurrentPrice)
	require.Equal(t, "0.00", res.AvgProjectedPrice)
	require.Empty(t, res.Samples)
}

func TestPreviewProjectsFromCalculatedPrice(t *testing.T) {
	svc, conn := newService(t)
	testdb.MustVariants(t, conn,
		testdb.Variant{SKU: "SKU-1", Brand: "Acme", Cost: "10.00", Margin: "30"},
		testdb.Variant{SKU: "SKU-2", Brand: "Acme", Cost: "20.00", Margin: "50", Discount: "10"},
		testdb.Variant{SKU: "SKU-3", Brand: "Acme", Cost: "5.00", Margin: "0"},
		testdb.Variant{SKU: "SKU-4", Brand: "Acme"},
		testdb.Variant{SKU: "SKU-5", Brand: "Other", Cost: "10.00", Margin: "30"},
	)

	res, err := svc.PreviewOffer(context.Background(), rules.Scope{RuleType: enums.OfferRuleBrand, Value: " Acme "}, dec("20"))
	require.NoError(t, err)

	// calculated 13.00, 30.00, 5.00; current final 13.00, 27.00, 5.00
	require.EqualValues(t, 3, res.AffectedCount)
	require.Equal(t, "15.00", res.AvgCurrentPrice)
	require.Equal(t, "12.80", res.AvgProjectedPrice)
	require.Equal(t, "4.00", res.MinProjectedPrice)
	require.Equal(t, "24.00", res.MaxProjectedPrice)

	require.Len(t, res.Samples, 2)
	require.Equal(t, "SKU-1", res.Samples[0].SKUCode)
	require.Equal(t, "10.40", res.Samples[0].ProjectedPrice)
	require.NotNil(t, res.Samples[0].CurrentPrice)
	require.Equal(t, "13.00", *res.Samples[0].CurrentPrice)
	require.Equal(t, "SKU-2", res.Samples[1].SKUCode)
	require.Equal(t, "24.00", res.Samples[1].ProjectedPrice)

	// preview never writes
	v := testdb.LoadVariant(t, conn, "SKU-1")
	require.False(t, v.IsOfferActive)
	require.Equal(t, "13.00", v.FinalPrice.Decimal.StringFixed(2))
}

func TestPreviewValidatesInput(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.PreviewOffer(ctx, rules.Scope{RuleType: enums.OfferRuleBrand, Value: "  "}, dec("20"))
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.PreviewOffer(ctx, rules.Scope{RuleType: "colour", Value: "red"}, dec("20"))
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.PreviewOffer(ctx, rules.Scope{RuleType: enums.OfferRuleBrand, Value: "Acme"}, dec("100.5"))
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestCreateOfferValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	in := brandOffer("", "Acme", "10")
	_, err := svc.CreateOffer(ctx, in)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	in = brandOffer("spring", "Acme", "-1")
	_, err = svc.CreateOffer(ctx, in)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	in = brandOffer("spring", "Acme", "10")
	in.StartDate, in.EndDate = &start, &end
	_, err = svc.CreateOffer(ctx, in)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestOfferLifecycle(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.CreateOffer(ctx, brandOffer(" spring ", "Acme", "15"))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	require.Equal(t, "spring", created.Name)
	require.Equal(t, "15.00", created.DiscountPercent)
	require.True(t, created.Active)

	got, err := svc.GetOffer(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	discount := dec("25")
	scope := "Bolt"
	updated, err := svc.UpdateOffer(ctx, created.ID, UpdateOfferInput{DiscountPercent: &discount, ScopeValue: &scope})
	require.NoError(t, err)
	require.Equal(t, "25.00", updated.DiscountPercent)
	require.Equal(t, "Bolt", updated.ScopeValue)
	require.Equal(t, "spring", updated.Name)

	deactivated, err := svc.DeactivateOffer(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, deactivated.Active)

	got, err = svc.GetOffer(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, got.Active)
	require.Equal(t, "25.00", got.DiscountPercent)

	_, err = svc.GetOffer(ctx, uuid.New())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestListOffersPaginates(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.CreateOffer(ctx, brandOffer(name, "Acme", "10"))
		require.NoError(t, err)
	}
	last, err := svc.CreateOffer(ctx, brandOffer("d", "Acme", "10"))
	require.NoError(t, err)
	_, err = svc.DeactivateOffer(ctx, last.ID)
	require.NoError(t, err)

	seen := map[uuid.UUID]bool{}
	cursor := ""
	for {
		page, err := svc.ListOffers(ctx, ListOffersInput{Pagination: pagination.Params{Limit: 3, Cursor: cursor}})
		require.NoError(t, err)
		for _, o := range page.Offers {
			require.False(t, seen[o.ID])
			seen[o.ID] = true
		}
		if !page.HasMore {
			require.Empty(t, page.NextCursor)
			break
		}
		cursor = page.NextCursor
	}
	require.Len(t, seen, 4)

	active := true
	page, err := svc.ListOffers(ctx, ListOffersInput{Active: &active})
	require.NoError(t, err)
	require.Len(t, page.Offers, 3)

	_, err = svc.ListOffers(ctx, ListOffersInput{Pagination: pagination.Params{Cursor: "%%%"}})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestApplyAndRemoveOfferThroughService(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()
	testdb.MustVariants(t, conn,
		testdb.Variant{SKU: "SKU-1", Brand: "Acme", Cost: "10.00", Margin: "30"},
		testdb.Variant{SKU: "SKU-2", Brand: "Other", Cost: "10.00", Margin: "30"},
	)

	offer, err := svc.CreateOffer(ctx, brandOffer("spring", "Acme", "20"))
	require.NoError(t, err)

	res, err := svc.ApplyOffer(ctx, operator, offer.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, res.AffectedCount)
	require.Equal(t, enums.AuditSpecialOfferApplied, res.Action)
	require.Equal(t, "10.40", testdb.LoadVariant(t, conn, "SKU-1").FinalPrice.Decimal.StringFixed(2))
	require.False(t, testdb.LoadVariant(t, conn, "SKU-2").IsOfferActive)

	res, err = svc.RemoveOffer(ctx, operator, offer.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, res.AffectedCount)
	v := testdb.LoadVariant(t, conn, "SKU-1")
	require.False(t, v.IsOfferActive)
	require.Equal(t, "13.00", v.FinalPrice.Decimal.StringFixed(2))
	testdb.AssertPriceInvariant(t, conn)

	_, err = svc.ApplyOffer(ctx, operator, uuid.New())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestApplyDeactivatedOfferConflicts(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()
	testdb.MustVariant(t, conn, testdb.Variant{SKU: "SKU-1", Brand: "Acme", Cost: "10.00", Margin: "30"})

	offer, err := svc.CreateOffer(ctx, brandOffer("spring", "Acme", "20"))
	require.NoError(t, err)
	_, err = svc.DeactivateOffer(ctx, offer.ID)
	require.NoError(t, err)

	_, err = svc.ApplyOffer(ctx, operator, offer.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
	require.False(t, testdb.LoadVariant(t, conn, "SKU-1").IsOfferActive)
}
