package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/catalog-pricing/api/responses"
	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
	"github.com/angelmondragon/catalog-pricing/pkg/logger"
)

// OperatorHeader carries the operator identity resolved by the upstream auth gateway.
const OperatorHeader = "X-Operator-Id"

const maxOperatorIDLen = 128

// Operator requires the gateway-supplied operator identity and attaches it to
// the request context and log fields.
func Operator(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			operatorID := strings.TrimSpace(r.Header.Get(OperatorHeader))
			if operatorID == "" || len(operatorID) > maxOperatorIDLen {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "operator identity required"))
				return
			}

			ctx := WithOperatorID(r.Context(), operatorID)
			if logg != nil {
				ctx = logg.WithOperatorID(ctx, operatorID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
