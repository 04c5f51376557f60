package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/catalog-pricing/api/responses"
	"github.com/angelmondragon/catalog-pricing/api/validators"
	"github.com/angelmondragon/catalog-pricing/internal/browse"
	"github.com/angelmondragon/catalog-pricing/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
	"github.com/angelmondragon/catalog-pricing/pkg/logger"
)

const maxFilterLength = 255

// ListCatalog pages through brand, product_type, style or variant rows.
func ListCatalog(svc CatalogBrowser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog browser unavailable"))
			return
		}

		query, err := parseCatalogQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListAggregates(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func parseCatalogQuery(r *http.Request) (browse.Query, error) {
	rawLevel := chi.URLParam(r, "level")
	level, err := enums.ParseBrowseLevel(rawLevel)
	if err != nil {
		return browse.Query{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid browse level").
			WithDetails(map[string]any{"level": rawLevel})
	}

	hasOffer, err := validators.ParseQueryBool(r, "has_offer")
	if err != nil {
		return browse.Query{}, err
	}

	page, err := pageParams(r)
	if err != nil {
		return browse.Query{}, err
	}

	direction := enums.SortAsc
	if raw := validators.ParseQueryString(r, "direction", 8); raw != nil {
		direction, err = enums.ParseSortDirection(*raw)
		if err != nil {
			return browse.Query{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort direction").
				WithDetails(map[string]any{"direction": *raw})
		}
	}

	sort := ""
	if raw := validators.ParseQueryString(r, "sort", 64); raw != nil {
		sort = *raw
	}

	return browse.Query{
		Level: level,
		Filters: browse.Filters{
			Brand:       validators.ParseQueryString(r, "brand", maxFilterLength),
			ProductType: validators.ParseQueryString(r, "product_type", maxFilterLength),
			StyleCode:   validators.ParseQueryString(r, "style_code", maxFilterLength),
			HasOffer:    hasOffer,
		},
		Cursor:    page.Cursor,
		Limit:     page.Limit,
		Sort:      sort,
		Direction: direction,
	}, nil
}
