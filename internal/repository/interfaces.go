package repository

import (
	"context"

	"github.com/rpattn/leadcrm/internal/domain"
)

// LeadRepository defines the interface for lead operations
type LeadRepository interface {
	Create(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	GetByID(ctx context.Context, id int64) (domain.Lead, error)
	List(ctx context.Context, filter domain.LeadFilter, limit int, offset int) ([]domain.Lead, int, error)
	UpdateStatus(ctx context.Context, id int64, status domain.LeadStatus) (domain.Lead, error)
	Reassign(ctx context.Context, id int64, employeeID string) (domain.Lead, error)
	AssignMany(ctx context.Context, ids []int64, employeeID string) (int64, error)
}

// LeadStore hands out one session per ingestion batch. The session pins a
// single pooled connection until it is released.
type LeadStore interface {
	Acquire(ctx context.Context) (LeadSession, error)
}

// LeadSession inserts leads over one checked-out connection.
type LeadSession interface {
	InsertLead(ctx context.Context, lead domain.Lead) (int64, error)
	Release() error
}

// EmployeeRepository defines the interface for employee operations
type EmployeeRepository interface {
	List(ctx context.Context) ([]domain.Employee, error)
	GetByEmployeeIDs(ctx context.Context, employeeIDs []string) ([]domain.Employee, error)
	Upsert(ctx context.Context, employees []domain.Employee) (int, error)
}

// IngestionLogRepository stores ingestion errors for observability.
type IngestionLogRepository interface {
	Record(ctx context.Context, entry domain.IngestionLogEntry) error
	List(ctx context.Context, filter domain.IngestionLogFilter) ([]domain.IngestionLogEntry, error)
}
