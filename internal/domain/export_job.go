package domain

import (
	"fmt"
	"time"
)

// ExportFormat is the serialization used for exported results
type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
)

// ParseExportFormat validates a format name
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case ExportFormatJSON, ExportFormatCSV:
		return ExportFormat(s), nil
	}
	return "", ErrInvalidExportFormat
}

// ExportJobStatus represents the status of an export job
type ExportJobStatus string

const (
	ExportJobStatusPending    ExportJobStatus = "pending"
	ExportJobStatusProcessing ExportJobStatus = "processing"
	ExportJobStatusCompleted  ExportJobStatus = "completed"
	ExportJobStatusFailed     ExportJobStatus = "failed"
)

// ExportJob renders the results of a filter over a snapshot into object storage
type ExportJob struct {
	ID          string
	WorkspaceID string
	SnapshotID  string
	Filter      SearchFilter
	Format      ExportFormat
	Status      ExportJobStatus
	Retries     int32
	Error       string
	ObjectKey   string
	ResultCount int
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// NewExportJob creates a pending ExportJob
func NewExportJob(id, workspaceID, snapshotID string, filter SearchFilter, format ExportFormat, createdAt time.Time) *ExportJob {
	return &ExportJob{
		ID:          id,
		WorkspaceID: workspaceID,
		SnapshotID:  snapshotID,
		Filter:      filter,
		Format:      format,
		Status:      ExportJobStatusPending,
		CreatedAt:   createdAt,
	}
}

// ObjectKeyFor returns the storage key an export job writes to
func ObjectKeyFor(job *ExportJob) string {
	return fmt.Sprintf("exports/%s/%s.%s", job.WorkspaceID, job.ID, job.Format)
}

// DownloadFilename is the name a finished export is saved under, e.g.
// storage-search-results-1700000000000.csv
func DownloadFilename(job *ExportJob) string {
	return fmt.Sprintf("storage-search-results-%d.%s", job.CreatedAt.UnixMilli(), job.Format)
}

// ValidateExportJob validates an ExportJob instance
func ValidateExportJob(j *ExportJob) error {
	if j == nil {
		return fmt.Errorf("export job cannot be nil")
	}

	if j.ID == "" {
		return fmt.Errorf("export job ID is required")
	}

	if j.WorkspaceID == "" {
		return fmt.Errorf("export job WorkspaceID is required")
	}

	if j.SnapshotID == "" {
		return fmt.Errorf("export job SnapshotID is required")
	}

	if _, err := ParseExportFormat(string(j.Format)); err != nil {
		return err
	}

	if !isValidExportJobStatus(j.Status) {
		return fmt.Errorf("export job Status is invalid: %s", j.Status)
	}

	if j.Retries < 0 {
		return fmt.Errorf("export job Retries cannot be negative")
	}

	return ValidateSearchFilter(&j.Filter)
}

func isValidExportJobStatus(s ExportJobStatus) bool {
	switch s {
	case ExportJobStatusPending, ExportJobStatusProcessing,
		ExportJobStatusCompleted, ExportJobStatusFailed:
		return true
	}
	return false
}
