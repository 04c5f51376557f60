package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
)

type samplePayload struct {
	Name     string          `json:"name" validate:"required"`
	Discount *decimal.Decimal `json:"discount" validate:"required"`
	SKUs     []string        `json:"skus" validate:"omitempty,max=3"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"spring","discount":"12.50","skus":["A"]}`))
	var payload samplePayload
	require.NoError(t, DecodeJSONBody(req, &payload))
	require.Equal(t, "12.5", payload.Discount.String())

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"spring","discount":12.5}`))
	payload = samplePayload{}
	require.NoError(t, DecodeJSONBody(req, &payload))
	require.Equal(t, "12.5", payload.Discount.String())
}

func TestDecodeJSONBodyRejects(t *testing.T) {
	cases := map[string]string{
		"unknown field":   `{"name":"spring","discount":"1","extra":true}`,
		"missing name":    `{"discount":"1"}`,
		"missing decimal": `{"name":"spring"}`,
		"bad decimal":     `{"name":"spring","discount":"ten"}`,
		"too many skus":   `{"name":"spring","discount":"1","skus":["a","b","c","d"]}`,
		"not json":        `name=spring`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			var payload samplePayload
			err := DecodeJSONBody(req, &payload)
			require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestQueryParsers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=20&active=true&brand=%20Acme%20&bad=maybe", nil)

	limit, err := ParseQueryInt(req, "limit", 25, 1, 200)
	require.NoError(t, err)
	require.Equal(t, 20, limit)

	_, err = ParseQueryInt(httptest.NewRequest(http.MethodGet, "/?limit=500", nil), "limit", 25, 1, 200)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	active, err := ParseQueryBool(req, "active")
	require.NoError(t, err)
	require.True(t, *active)

	_, err = ParseQueryBool(req, "bad")
	require.Error(t, err)

	missing, err := ParseQueryBool(req, "missing")
	require.NoError(t, err)
	require.Nil(t, missing)

	require.Equal(t, "Acme", *ParseQueryString(req, "brand", 64))
	require.Nil(t, ParseQueryString(req, "style", 64))

	_, err = ParseUUID("nope", "offerId")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestParseQueryTokenKeepsValueIntact(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?cursor=%20Zy1B%20", nil)

	token, err := ParseQueryToken(req, "cursor", 16)
	require.NoError(t, err)
	require.Equal(t, " Zy1B ", token)

	token, err = ParseQueryToken(req, "missing", 16)
	require.NoError(t, err)
	require.Empty(t, token)

	_, err = ParseQueryToken(req, "cursor", 4)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestSanitizeStringKeepsRunesWhole(t *testing.T) {
	require.Equal(t, "Acme", SanitizeString("  Acme  ", 0))
	require.Equal(t, "Caf", SanitizeString("Café", 4))
	require.Equal(t, "Café", SanitizeString("Café", 5))
}
