package domain

import (
	"time"

	"github.com/google/uuid"
)

// IngestionLogEntry captures row level issues that occur during ingestion.
type IngestionLogEntry struct {
	ID           int64     `json:"id"`
	BatchID      uuid.UUID `json:"batch_id"`
	FileName     string    `json:"file_name"`
	UploadedBy   string    `json:"uploaded_by,omitempty"`
	LineNumber   *int      `json:"line_number,omitempty"`
	ErrorMessage string    `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
}

// IngestionLogFilter selects log entries for listing.
type IngestionLogFilter struct {
	BatchID  *uuid.UUID
	FileName string
	Limit    int
	Offset   int
}
