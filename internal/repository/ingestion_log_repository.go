package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rpattn/leadcrm/internal/domain"
)

type ingestionLogRepository struct {
	pool *pgxpool.Pool
}

// NewIngestionLogRepository wires a repository backed by pgxpool.
func NewIngestionLogRepository(pool *pgxpool.Pool) IngestionLogRepository {
	return &ingestionLogRepository{pool: pool}
}

func (r *ingestionLogRepository) Record(ctx context.Context, entry domain.IngestionLogEntry) error {
	if r.pool == nil {
		return fmt.Errorf("ingestion log repository not initialized")
	}

	var lineNumber any
	if entry.LineNumber != nil {
		lineNumber = *entry.LineNumber
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO ingestion_logs (batch_id, file_name, uploaded_by, line_number, error_message)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.BatchID,
		entry.FileName,
		entry.UploadedBy,
		lineNumber,
		entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record ingestion log: %w", err)
	}

	return nil
}

func (r *ingestionLogRepository) List(ctx context.Context, filter domain.IngestionLogFilter) ([]domain.IngestionLogEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("ingestion log repository not initialized")
	}

	query, args := buildIngestionLogQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingestion logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.IngestionLogEntry{}
	for rows.Next() {
		var (
			entry      domain.IngestionLogEntry
			lineNumber pgtype.Int4
			createdAt  pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.BatchID,
			&entry.FileName,
			&entry.UploadedBy,
			&lineNumber,
			&entry.ErrorMessage,
			&createdAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan ingestion log: %w", scanErr)
		}

		if lineNumber.Valid {
			value := int(lineNumber.Int32)
			entry.LineNumber = &value
		}
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}

		logs = append(logs, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate ingestion logs: %w", rowsErr)
	}

	return logs, nil
}

func buildIngestionLogQuery(filter domain.IngestionLogFilter) (string, []any) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var (
		clauses []string
		args    []any
	)
	if filter.BatchID != nil {
		args = append(args, *filter.BatchID)
		clauses = append(clauses, fmt.Sprintf("batch_id = $%d", len(args)))
	}
	if name := strings.TrimSpace(filter.FileName); name != "" {
		args = append(args, name)
		clauses = append(clauses, fmt.Sprintf("file_name = $%d", len(args)))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, batch_id, file_name, uploaded_by, line_number, error_message, created_at
		 FROM ingestion_logs`)
	if len(clauses) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(clauses, " AND "))
	}
	args = append(args, limit, offset)
	fmt.Fprintf(&sb, " ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return sb.String(), args
}
