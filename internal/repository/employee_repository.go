package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rpattn/leadcrm/internal/db"
	"github.com/rpattn/leadcrm/internal/domain"
)

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository wires a repository backed by pgxpool.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

func (r *employeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, employee_id, name, email, created_at, updated_at
		 FROM employees
		 ORDER BY employee_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return collectEmployees(rows)
}

func (r *employeeRepository) GetByEmployeeIDs(ctx context.Context, employeeIDs []string) ([]domain.Employee, error) {
	if len(employeeIDs) == 0 {
		return []domain.Employee{}, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, employee_id, name, email, created_at, updated_at
		 FROM employees
		 WHERE employee_id = ANY($1)`,
		employeeIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	return collectEmployees(rows)
}

// Upsert inserts or refreshes employees keyed by employee_id.
func (r *employeeRepository) Upsert(ctx context.Context, employees []domain.Employee) (int, error) {
	if len(employees) == 0 {
		return 0, nil
	}
	now := time.Now()
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, employee := range employees {
			batch.Queue(
				`INSERT INTO employees (employee_id, name, email, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $4)
				 ON CONFLICT (employee_id)
				 DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, updated_at = EXCLUDED.updated_at`,
				employee.EmployeeID, employee.Name, employee.Email, now,
			)
		}
		results := tx.SendBatch(ctx, batch)
		for range employees {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return translateError(err)
			}
		}
		return results.Close()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert employees: %w", err)
	}
	return len(employees), nil
}

func collectEmployees(rows pgx.Rows) ([]domain.Employee, error) {
	defer rows.Close()

	employees := []domain.Employee{}
	for rows.Next() {
		var employee domain.Employee
		if err := rows.Scan(
			&employee.ID,
			&employee.EmployeeID,
			&employee.Name,
			&employee.Email,
			&employee.CreatedAt,
			&employee.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return employees, nil
}
