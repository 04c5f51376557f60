package variants

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-pricing/internal/rules"
	"github.com/angelmondragon/catalog-pricing/internal/testdb"
	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
)

func strPtr(v string) *string { return &v }

func TestSelectByFilter(t *testing.T) {
	conn := testdb.Open(t)
	svc := NewService(conn)
	ctx := context.Background()

	testdb.MustVariants(t, conn,
		testdb.Variant{SKU: "A-2", Style: "A", Brand: "Acme", Cost: "10.00"},
		testdb.Variant{SKU: "A-1", Style: "A", Brand: "Acme", Cost: "10.00", Discount: "10"},
		testdb.Variant{SKU: "B-1", Style: "B", Brand: "Acme", ProductType: "Hoodie", Cost: "10.00"},
		testdb.Variant{SKU: "C-1", Style: "C", Brand: "Bolt", Cost: "10.00"},
		testdb.Variant{SKU: "A-3", Style: "A", Brand: "Acme"},
	)

	res, err := svc.SelectByFilter(ctx, rules.Selection{Brand: strPtr(" Acme ")})
	require.NoError(t, err)
	require.Equal(t, []string{"A-1", "A-2", "B-1"}, res.SKUs)
	require.Equal(t, 3, res.Count)

	noOffer := false
	res, err = svc.SelectByFilter(ctx, rules.Selection{Brand: strPtr("Acme"), StyleCode: strPtr("A"), HasOffer: &noOffer})
	require.NoError(t, err)
	require.Equal(t, []string{"A-2"}, res.SKUs)

	res, err = svc.SelectByFilter(ctx, rules.Selection{ProductType: strPtr("Jacket")})
	require.NoError(t, err)
	require.Empty(t, res.SKUs)
	require.Zero(t, res.Count)

	res, err = svc.SelectByFilter(ctx, rules.Selection{Brand: strPtr("  ")})
	require.NoError(t, err)
	require.Len(t, res.SKUs, 4)
}

func TestGetVariant(t *testing.T) {
	conn := testdb.Open(t)
	svc := NewService(conn)
	ctx := context.Background()
	testdb.MustVariants(t, conn,
		testdb.Variant{SKU: "SKU-1", Cost: "10.00", Margin: "30", Discount: "20"},
		testdb.Variant{SKU: "SKU-2"},
	)

	dto, err := svc.GetVariant(ctx, "SKU-1")
	require.NoError(t, err)
	require.Equal(t, "30.00", dto.MarginPercent)
	require.Equal(t, "13.00", *dto.CalculatedPrice)
	require.Equal(t, "10.40", *dto.FinalPrice)
	require.Equal(t, "20.00", *dto.OfferDiscountPercent)
	require.True(t, dto.IsOfferActive)

	dto, err = svc.GetVariant(ctx, "SKU-2")
	require.NoError(t, err)
	require.Nil(t, dto.Cost)
	require.Nil(t, dto.FinalPrice)

	_, err = svc.GetVariant(ctx, "missing")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = svc.GetVariant(ctx, " ")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
