// Package pagination implements keyset cursors for newest-first listings of
// snapshots, saved searches and API keys.
package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var ErrInvalidCursor = errors.New("invalid cursor format")

// Cursor points at the last row of the previous page. Listings are ordered
// by (created_at, id) descending, so the next page starts strictly below it.
type Cursor struct {
	LastID    string
	CreatedAt time.Time
}

// Page is one page of a keyset listing
type Page[T any] struct {
	Items      []T
	NextCursor string
	HasMore    bool
}

// ClampLimit maps non-positive limits to DefaultLimit and caps at MaxLimit
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// EncodeCursor returns a URL-safe cursor, or "" for an empty id
func EncodeCursor(lastID string, createdAt time.Time) string {
	if lastID == "" {
		return ""
	}
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "|" + lastID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor from EncodeCursor. An empty string yields a
// nil cursor, meaning the first page.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	ts, id, ok := strings.Cut(string(decoded), "|")
	if !ok || id == "" {
		return nil, ErrInvalidCursor
	}

	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{LastID: id, CreatedAt: createdAt}, nil
}

// Paginate builds a page from rows fetched with LIMIT limit+1. The extra row
// only signals that another page exists and is dropped.
func Paginate[T any](rows []T, limit int, key func(T) (string, time.Time)) Page[T] {
	if len(rows) <= limit {
		return Page[T]{Items: rows}
	}
	items := rows[:limit]
	id, createdAt := key(items[limit-1])
	return Page[T]{
		Items:      items,
		NextCursor: EncodeCursor(id, createdAt),
		HasMore:    true,
	}
}
