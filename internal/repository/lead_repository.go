package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rpattn/leadcrm/internal/db"
	"github.com/rpattn/leadcrm/internal/domain"
)

const leadColumns = `id, customer_name, mobile_number, email, product, city, location, lead_type,
	assigned_to, status, lead_date, loan_amount, created_at, updated_at`

const insertLeadSQL = `INSERT INTO leads
	(customer_name, mobile_number, email, product, city, location, lead_type,
	 assigned_to, status, lead_date, loan_amount, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	RETURNING id, created_at, updated_at`

// querier is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type leadRepository struct {
	pool *pgxpool.Pool
}

// NewLeadRepository wires a lead repository backed by pgxpool.
func NewLeadRepository(pool *pgxpool.Pool) LeadRepository {
	return &leadRepository{pool: pool}
}

// NewLeadStore wires the batch-oriented store used by bulk ingestion.
func NewLeadStore(pool *pgxpool.Pool) LeadStore {
	return &leadRepository{pool: pool}
}

var (
	_ LeadRepository = (*leadRepository)(nil)
	_ LeadStore      = (*leadRepository)(nil)
)

// Create inserts one lead outside of any ingestion batch.
func (r *leadRepository) Create(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	created, err := insertLead(ctx, r.pool, lead)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("failed to create lead: %w", err)
	}
	return created, nil
}

// GetByID retrieves a lead by ID
func (r *leadRepository) GetByID(ctx context.Context, id int64) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("failed to get lead %d: %w", id, translateError(err))
	}
	return lead, nil
}

// List returns one page of leads, newest first, plus the filtered total.
func (r *leadRepository) List(ctx context.Context, filter domain.LeadFilter, limit int, offset int) ([]domain.Lead, int, error) {
	query, args := buildLeadListQuery(filter, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	leads := []domain.Lead{}
	total := 0
	for rows.Next() {
		var lead domain.Lead
		if err := rows.Scan(append(leadScanTargets(&lead), &total)...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate leads: %w", err)
	}
	return leads, total, nil
}

// UpdateStatus moves a lead to the given status.
func (r *leadRepository) UpdateStatus(ctx context.Context, id int64, status domain.LeadStatus) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE leads SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING `+leadColumns,
		string(status), id,
	)
	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("failed to update lead %d status: %w", id, translateError(err))
	}
	return lead, nil
}

// Reassign hands a single lead to another employee.
func (r *leadRepository) Reassign(ctx context.Context, id int64, employeeID string) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE leads SET assigned_to = $1, updated_at = NOW() WHERE id = $2 RETURNING `+leadColumns,
		nullableText(employeeID), id,
	)
	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("failed to reassign lead %d: %w", id, translateError(err))
	}
	return lead, nil
}

// AssignMany assigns every listed lead or none of them.
func (r *leadRepository) AssignMany(ctx context.Context, ids []int64, employeeID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var updated int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE leads SET assigned_to = $1, updated_at = NOW() WHERE id = ANY($2)`,
			nullableText(employeeID), ids,
		)
		if err != nil {
			return translateError(err)
		}
		updated = tag.RowsAffected()
		if updated != int64(len(uniqueIDs(ids))) {
			return fmt.Errorf("%w: %d of %d leads exist", ErrNotFound, updated, len(uniqueIDs(ids)))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to assign leads: %w", err)
	}
	return updated, nil
}

// Acquire checks out one pooled connection for an ingestion batch.
func (r *leadRepository) Acquire(ctx context.Context) (LeadSession, error) {
	if r.pool == nil {
		return nil, errors.New("lead repository not initialized")
	}
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &leadSession{conn: conn}, nil
}

type leadSession struct {
	conn *pgxpool.Conn
}

func (s *leadSession) InsertLead(ctx context.Context, lead domain.Lead) (int64, error) {
	if s.conn == nil {
		return 0, errors.New("lead session already released")
	}
	created, err := insertLead(ctx, s.conn, lead)
	if err != nil {
		return 0, err
	}
	return created.ID, nil
}

// Release returns the connection to the pool. A connection that died during
// the batch is still handed back (the pool discards it) but reported.
func (s *leadSession) Release() error {
	if s.conn == nil {
		return errors.New("lead session already released")
	}
	closed := s.conn.Conn().IsClosed()
	s.conn.Release()
	s.conn = nil
	if closed {
		return errors.New("connection closed before release")
	}
	return nil
}

func insertLead(ctx context.Context, q querier, lead domain.Lead) (domain.Lead, error) {
	err := q.QueryRow(ctx, insertLeadSQL,
		lead.CustomerName,
		lead.MobileNumber,
		lead.Email,
		lead.Product,
		lead.City,
		lead.Location,
		lead.LeadType,
		lead.AssignedTo,
		string(lead.Status),
		lead.LeadDate,
		lead.LoanAmount,
		lead.CreatedAt,
		lead.UpdatedAt,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return domain.Lead{}, translateError(err)
	}
	return lead, nil
}

func leadScanTargets(lead *domain.Lead) []any {
	return []any{
		&lead.ID,
		&lead.CustomerName,
		&lead.MobileNumber,
		&lead.Email,
		&lead.Product,
		&lead.City,
		&lead.Location,
		&lead.LeadType,
		&lead.AssignedTo,
		&lead.Status,
		&lead.LeadDate,
		&lead.LoanAmount,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	}
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	if err := row.Scan(leadScanTargets(&lead)...); err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

func buildLeadListQuery(filter domain.LeadFilter, limit int, offset int) (string, []any) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var (
		clauses []string
		args    []any
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to = $%d", len(args)))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + leadColumns + `, COUNT(*) OVER() AS total FROM leads`)
	if len(clauses) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(clauses, " AND "))
	}
	args = append(args, limit, offset)
	fmt.Fprintf(&sb, " ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return sb.String(), args
}

func nullableText(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
