package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/catalog-pricing/api/middleware"
	"github.com/angelmondragon/catalog-pricing/api/responses"
	"github.com/angelmondragon/catalog-pricing/api/validators"
	"github.com/angelmondragon/catalog-pricing/internal/audit"
	"github.com/angelmondragon/catalog-pricing/internal/variants"
	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
	"github.com/angelmondragon/catalog-pricing/pkg/logger"
)

func variantServiceUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "variant service unavailable")
}

// BulkOverrideMargin sets one margin on every listed sku and clears rule provenance.
func BulkOverrideMargin(svc BulkMutator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, variantServiceUnavailable())
			return
		}

		var payload bulkMarginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ApplyMarginOverride(r.Context(), middleware.OperatorIDFromContext(r.Context()), payload.SKUs, *payload.MarginPercent)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, string(result.Audit.Status), result)
	}
}

func BulkSetOffer(svc BulkMutator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, variantServiceUnavailable())
			return
		}

		var payload bulkOfferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		discount, err := payload.discount()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BulkSetOffer(r.Context(), middleware.OperatorIDFromContext(r.Context()), payload.SKUs, discount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, string(result.Audit.Status), result)
	}
}

// SelectVariants resolves a filter to sku codes for a later bulk call.
func SelectVariants(svc VariantReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, variantServiceUnavailable())
			return
		}

		var payload selectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SelectByFilter(r.Context(), payload.selection())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetVariant(svc VariantReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, variantServiceUnavailable())
			return
		}

		variant, err := svc.GetVariant(r.Context(), strings.TrimSpace(chi.URLParam(r, "sku")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, variant)
	}
}

type variantUpdateResponse struct {
	Variant variants.VariantDTO `json:"variant"`
	Audit   audit.Receipt       `json:"audit"`
}

func UpdateVariant(svc BulkMutator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, variantServiceUnavailable())
			return
		}

		sku := strings.TrimSpace(chi.URLParam(r, "sku"))
		var payload updateVariantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.UpdateSingleVariant(r.Context(), middleware.OperatorIDFromContext(r.Context()), sku, payload.toUpdate())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, string(result.Audit.Status), variantUpdateResponse{
			Variant: variants.NewVariantDTO(result.Variant),
			Audit:   result.Audit,
		})
	}
}
