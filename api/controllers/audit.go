package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/catalog-pricing/api/responses"
	"github.com/angelmondragon/catalog-pricing/api/validators"
	"github.com/angelmondragon/catalog-pricing/internal/audit"
	"github.com/angelmondragon/catalog-pricing/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
	"github.com/angelmondragon/catalog-pricing/pkg/logger"
)

func auditServiceUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable")
}

// ListAuditEntries pages the audit log newest first, optionally filtered by
// action and operator.
func ListAuditEntries(svc AuditReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, auditServiceUnavailable())
			return
		}

		input := audit.ListInput{
			PerformedBy: validators.ParseQueryString(r, "performed_by", 128),
		}
		if raw := validators.ParseQueryString(r, "action", 64); raw != nil {
			action, err := enums.ParseAuditAction(*raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid audit action").
					WithDetails(map[string]any{"action": *raw}))
				return
			}
			input.Action = &action
		}

		page, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Pagination = page

		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetAuditEntry(svc AuditReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, auditServiceUnavailable())
			return
		}

		id, err := validators.ParseUUID(chi.URLParam(r, "entryId"), "entry_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}
