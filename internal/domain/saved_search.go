package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxHistoryEntries caps the per-workspace search history
const MaxHistoryEntries = 10

// SavedSearch is a named filter kept for later reuse
type SavedSearch struct {
	ID          string
	WorkspaceID string
	Name        string
	Filter      SearchFilter
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HistoryEntry is one recently used search text
type HistoryEntry struct {
	WorkspaceID string
	Text        string
	UsedAt      time.Time
}

// ValidateSavedSearch validates a SavedSearch instance
func ValidateSavedSearch(s *SavedSearch) error {
	if s == nil {
		return fmt.Errorf("saved search cannot be nil")
	}

	if s.ID == "" {
		return fmt.Errorf("saved search ID is required")
	}

	if s.WorkspaceID == "" {
		return fmt.Errorf("saved search WorkspaceID is required")
	}

	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("saved search Name is required")
	}

	return ValidateSearchFilter(&s.Filter)
}
