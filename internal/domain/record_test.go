package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStoreKind(t *testing.T) {
	tests := []struct {
		input string
		want  StoreKind
	}{
		{"local", StoreKindLocal},
		{"localStorage", StoreKindLocal},
		{" SESSION ", StoreKindSession},
		{"sessionStorage", StoreKindSession},
		{"cookie", StoreKindCookie},
		{"cookies", StoreKindCookie},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStoreKind(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseStoreKind("indexeddb")
	assert.Equal(t, ErrCodeValidation, CodeOf(err))
}

func TestStorageRecord_WithLastModified(t *testing.T) {
	base := NewStorageRecord("theme", "dark", StoreKindLocal)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	stamped := base.WithLastModified(at)

	assert.Nil(t, base.LastModifiedAt)
	require.NotNil(t, stamped.LastModifiedAt)
	assert.Equal(t, at.UnixMilli(), *stamped.LastModifiedAt)
}

func TestValidateStorageRecords(t *testing.T) {
	tests := []struct {
		name    string
		records []StorageRecord
		errMsg  string
	}{
		{"empty", nil, ""},
		{"same key in different stores", []StorageRecord{
			NewStorageRecord("token", "a", StoreKindLocal),
			NewStorageRecord("token", "b", StoreKindSession),
			NewStorageRecord("token", "c", StoreKindCookie),
		}, ""},
		{"missing key", []StorageRecord{NewStorageRecord("", "a", StoreKindLocal)}, "key is required"},
		{"unknown kind", []StorageRecord{NewStorageRecord("k", "a", "indexeddb")}, "invalid store kind"},
		{"duplicate key", []StorageRecord{
			NewStorageRecord("token", "a", StoreKindLocal),
			NewStorageRecord("token", "b", StoreKindLocal),
		}, "record 1: duplicate key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStorageRecords(tt.records)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
