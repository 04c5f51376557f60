package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any cursor query can request.
	MaxLimit = 200
)

// Params holds cursor pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the (created_at, id) position used by time-ordered listings such as the audit log.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// KeyCursor is the position of a variant page: the sort column value plus the sku tie-breaker.
type KeyCursor struct {
	Value string
	SKU   string
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer returns the normalization result plus one to detect the next page.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// Trim drops the buffered extra row and reports whether another page exists.
func Trim[T any](rows []T, limit int) ([]T, bool) {
	limit = NormalizeLimit(limit)
	if len(rows) > limit {
		return rows[:limit], true
	}
	return rows, false
}

// EncodeCursor builds a base64 cursor string from the provided values.
func EncodeCursor(cursor Cursor) string {
	payload := fmt.Sprintf("%s|%s", cursor.CreatedAt.UTC().Format(time.RFC3339Nano), cursor.ID.String())
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes the cursor string back into its components.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid cursor format")
	}

	t, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &Cursor{
		CreatedAt: t,
		ID:        id,
	}, nil
}

// EncodeKeyCursor builds an opaque cursor for a (sort value, sku) position.
// The value is length-prefixed so it may itself contain the separator.
func EncodeKeyCursor(cursor KeyCursor) string {
	payload := fmt.Sprintf("%d|%s%s", len(cursor.Value), cursor.Value, cursor.SKU)
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseKeyCursor decodes a cursor produced by EncodeKeyCursor.
func ParseKeyCursor(value string) (*KeyCursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	raw := string(decoded)
	sep := strings.IndexByte(raw, '|')
	if sep <= 0 {
		return nil, fmt.Errorf("invalid cursor format")
	}
	var size int
	if _, err := fmt.Sscanf(raw[:sep], "%d", &size); err != nil || size < 0 {
		return nil, fmt.Errorf("invalid cursor length")
	}
	rest := raw[sep+1:]
	if size > len(rest) {
		return nil, fmt.Errorf("invalid cursor length")
	}
	cursor := &KeyCursor{Value: rest[:size], SKU: rest[size:]}
	if cursor.SKU == "" {
		return nil, fmt.Errorf("invalid cursor sku")
	}
	return cursor, nil
}

const groupCursorPrefix = "g|"

// EncodeGroupCursor builds an opaque cursor for an aggregate group key. The
// prefix keeps an empty key distinct from "no cursor".
func EncodeGroupCursor(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(groupCursorPrefix + key))
}

// ParseGroupCursor decodes a cursor produced by EncodeGroupCursor. A nil key
// means the first page.
func ParseGroupCursor(value string) (*string, error) {
	if value == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	raw := string(decoded)
	if !strings.HasPrefix(raw, groupCursorPrefix) {
		return nil, fmt.Errorf("invalid cursor format")
	}
	key := raw[len(groupCursorPrefix):]
	return &key, nil
}
