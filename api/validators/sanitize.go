package validators

import (
	"net/http"
	"strings"
	"unicode/utf8"

	pkgerrors "github.com/angelmondragon/catalog-pricing/pkg/errors"
)

// SanitizeString trims free-text filter input and caps it at maxLen bytes
// without splitting a UTF-8 sequence.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 || len(trimmed) <= maxLen {
		return trimmed
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
		cut--
	}
	return trimmed[:cut]
}

// ParseQueryToken returns an opaque token such as a page cursor exactly as the
// client sent it. Tokens are never trimmed or cut; an oversized one is a
// validation error.
func ParseQueryToken(r *http.Request, key string, maxLen int) (string, error) {
	raw := r.URL.Query().Get(key)
	if maxLen > 0 && len(raw) > maxLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter too long").
			WithDetails(map[string]any{"field": key, "max": maxLen})
	}
	return raw, nil
}
