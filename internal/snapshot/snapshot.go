// Package snapshot decodes storage record sources: plain JSON record arrays
// and DevTools-style storage dumps.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cloo-solutions/storelens/internal/domain"
)

// Stdin is the path Load treats as standard input
const Stdin = "-"

type recordJSON struct {
	Key            string          `json:"key"`
	Value          json.RawMessage `json:"value"`
	StoreKind      string          `json:"storeKind"`
	LastModifiedAt *int64          `json:"lastModifiedAt"`
}

type cookieJSON struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

type dumpJSON struct {
	LocalStorage   map[string]json.RawMessage `json:"localStorage"`
	SessionStorage map[string]json.RawMessage `json:"sessionStorage"`
	Cookies        []cookieJSON               `json:"cookies"`
}

// Load reads and decodes the record source at path
func Load(path string) ([]domain.StorageRecord, error) {
	if path == Stdin {
		return Decode(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Decode reads a record array or a DevTools dump from r. The format is chosen
// from the first non-space byte. Decoded records are validated.
func Decode(r io.Reader) ([]domain.StorageRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "snapshot is empty")
	}

	var records []domain.StorageRecord
	switch trimmed[0] {
	case '[':
		records, err = decodeArray(trimmed)
	case '{':
		records, err = decodeDump(trimmed)
	default:
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "snapshot must be a JSON array or object")
	}
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateStorageRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

func decodeArray(data []byte) ([]domain.StorageRecord, error) {
	var raw []recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid record array", err)
	}

	records := make([]domain.StorageRecord, 0, len(raw))
	for i, r := range raw {
		kind, err := domain.ParseStoreKind(r.StoreKind)
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, fmt.Sprintf("record %d", i), err)
		}
		records = append(records, domain.StorageRecord{
			Key:            r.Key,
			Value:          rawValue(r.Value),
			StoreKind:      kind,
			LastModifiedAt: r.LastModifiedAt,
		})
	}
	return records, nil
}

func decodeDump(data []byte) ([]domain.StorageRecord, error) {
	var dump dumpJSON
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid storage dump", err)
	}

	records := make([]domain.StorageRecord, 0, len(dump.LocalStorage)+len(dump.SessionStorage)+len(dump.Cookies))
	records = appendArea(records, dump.LocalStorage, domain.StoreKindLocal)
	records = appendArea(records, dump.SessionStorage, domain.StoreKindSession)

	cookies := make([]domain.StorageRecord, 0, len(dump.Cookies))
	for _, c := range dump.Cookies {
		cookies = append(cookies, domain.NewStorageRecord(c.Name, rawValue(c.Value), domain.StoreKindCookie))
	}
	sort.SliceStable(cookies, func(i, j int) bool { return cookies[i].Key < cookies[j].Key })

	return append(records, cookies...), nil
}

func appendArea(records []domain.StorageRecord, area map[string]json.RawMessage, kind domain.StoreKind) []domain.StorageRecord {
	keys := make([]string, 0, len(area))
	for k := range area {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		records = append(records, domain.NewStorageRecord(k, rawValue(area[k]), kind))
	}
	return records
}

// rawValue unquotes JSON strings and keeps any other JSON value as its text.
// Storage areas only hold strings, but hand-written dumps often inline numbers
// or objects.
func rawValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// Encode writes records as an indented JSON record array
func Encode(w io.Writer, records []domain.StorageRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
