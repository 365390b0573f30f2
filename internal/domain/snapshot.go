package domain

import (
	"fmt"
	"time"
)

// Snapshot is a stored, immutable set of records captured from one page
type Snapshot struct {
	ID          string
	WorkspaceID string
	Name        string
	SourceURL   string
	Records     []StorageRecord
	// RecordCount is set by listings that do not load Records
	RecordCount int
	CreatedAt   time.Time
}

// NewSnapshot creates a new Snapshot instance
func NewSnapshot(id, workspaceID, name, sourceURL string, records []StorageRecord, createdAt time.Time) *Snapshot {
	return &Snapshot{
		ID:          id,
		WorkspaceID: workspaceID,
		Name:        name,
		SourceURL:   sourceURL,
		Records:     records,
		RecordCount: len(records),
		CreatedAt:   createdAt,
	}
}

// ValidateSnapshot validates a Snapshot instance and its records
func ValidateSnapshot(s *Snapshot) error {
	if s == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	if s.ID == "" {
		return fmt.Errorf("snapshot ID is required")
	}

	if s.WorkspaceID == "" {
		return fmt.Errorf("snapshot WorkspaceID is required")
	}

	if s.Name == "" {
		return fmt.Errorf("snapshot Name is required")
	}

	return ValidateStorageRecords(s.Records)
}
