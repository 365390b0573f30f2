package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshot(t *testing.T) {
	now := time.Now()
	records := []StorageRecord{
		NewStorageRecord("theme", "dark", StoreKindLocal),
		NewStorageRecord("sid", "42", StoreKindCookie),
	}

	snap := NewSnapshot("snap1", "ws1", "checkout", "https://shop.example/cart", records, now)

	assert.Equal(t, "snap1", snap.ID)
	assert.Equal(t, "ws1", snap.WorkspaceID)
	assert.Equal(t, "checkout", snap.Name)
	assert.Equal(t, "https://shop.example/cart", snap.SourceURL)
	assert.Equal(t, 2, snap.RecordCount)
	assert.Equal(t, now, snap.CreatedAt)
}

func TestValidateSnapshot(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Snapshot)
		errMsg string
	}{
		{"valid", func(s *Snapshot) {}, ""},
		{"no records", func(s *Snapshot) { s.Records = nil }, ""},
		{"missing ID", func(s *Snapshot) { s.ID = "" }, "ID"},
		{"missing WorkspaceID", func(s *Snapshot) { s.WorkspaceID = "" }, "WorkspaceID"},
		{"missing Name", func(s *Snapshot) { s.Name = "" }, "Name"},
		{"duplicate record", func(s *Snapshot) {
			s.Records = append(s.Records, NewStorageRecord("theme", "light", StoreKindLocal))
		}, "duplicate key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := NewSnapshot("snap1", "ws1", "checkout", "", []StorageRecord{
				NewStorageRecord("theme", "dark", StoreKindLocal),
			}, time.Now())
			tt.mutate(snap)
			err := ValidateSnapshot(snap)
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	assert.Error(t, ValidateSnapshot(nil))
}
