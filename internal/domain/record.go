package domain

import (
	"strings"
	"time"
)

// StoreKind identifies the browser storage area a record was read from
type StoreKind string

const (
	StoreKindLocal   StoreKind = "local"
	StoreKindSession StoreKind = "session"
	StoreKindCookie  StoreKind = "cookie"
)

// ParseStoreKind accepts both the short names and the DevTools panel names
// (localStorage, sessionStorage, cookies).
func ParseStoreKind(s string) (StoreKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local", "localstorage":
		return StoreKindLocal, nil
	case "session", "sessionstorage":
		return StoreKindSession, nil
	case "cookie", "cookies":
		return StoreKindCookie, nil
	}
	return "", Validationf("invalid store kind: %q", s)
}

// StorageRecord is one key/value entry of a storage snapshot
type StorageRecord struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	StoreKind StoreKind `json:"storeKind"`
	// LastModifiedAt is epoch milliseconds, nil when unknown
	LastModifiedAt *int64 `json:"lastModifiedAt,omitempty"`
}

// NewStorageRecord creates a StorageRecord without modification time
func NewStorageRecord(key, value string, kind StoreKind) StorageRecord {
	return StorageRecord{
		Key:       key,
		Value:     value,
		StoreKind: kind,
	}
}

// WithLastModified returns a copy of the record stamped with t
func (r StorageRecord) WithLastModified(t time.Time) StorageRecord {
	ms := t.UnixMilli()
	r.LastModifiedAt = &ms
	return r
}

// ValidateStorageRecords checks that every record has a key and a known
// store kind, and that keys are unique within one store kind.
func ValidateStorageRecords(records []StorageRecord) error {
	seen := make(map[StoreKind]map[string]struct{}, 3)
	for i, r := range records {
		if r.Key == "" {
			return Validationf("record %d: key is required", i)
		}
		if !isValidStoreKind(r.StoreKind) {
			return Validationf("record %d: invalid store kind: %q", i, r.StoreKind)
		}
		keys, ok := seen[r.StoreKind]
		if !ok {
			keys = make(map[string]struct{})
			seen[r.StoreKind] = keys
		}
		if _, dup := keys[r.Key]; dup {
			return Validationf("record %d: duplicate key %q in %s storage", i, r.Key, r.StoreKind)
		}
		keys[r.Key] = struct{}{}
	}
	return nil
}

func isValidStoreKind(k StoreKind) bool {
	switch k {
	case StoreKindLocal, StoreKindSession, StoreKindCookie:
		return true
	}
	return false
}
