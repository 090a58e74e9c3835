package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/leadcrm/internal/domain"
)

func TestTranslateErrorMapsPostgresCodes(t *testing.T) {
	dup := translateError(&pgconn.PgError{
		Code:    "23505",
		Message: "duplicate key value violates unique constraint",
		Detail:  "Key (mobile_number, lower(customer_name))=(9876543210, asha) already exists.",
	})
	require.ErrorIs(t, dup, ErrDuplicate)
	assert.Contains(t, dup.Error(), "already exists")

	check := translateError(&pgconn.PgError{
		Code:           "23514",
		Message:        "new row violates check constraint",
		ConstraintName: "leads_status_check",
	})
	require.ErrorIs(t, check, ErrRejected)
	assert.Contains(t, check.Error(), "leads_status_check")

	fk := translateError(&pgconn.PgError{
		Code:           "23503",
		Message:        "insert or update on table \"leads\" violates foreign key constraint",
		ConstraintName: "leads_assigned_to_fkey",
	})
	require.ErrorIs(t, fk, ErrRejected)
	assert.Contains(t, fk.Error(), "leads_assigned_to_fkey")

	data := translateError(&pgconn.PgError{Code: "22001", Message: "value too long"})
	require.ErrorIs(t, data, ErrRejected)

	other := &pgconn.PgError{Code: "08006", Message: "connection failure"}
	assert.Same(t, other, translateError(other))
}

func TestTranslateErrorNoRows(t *testing.T) {
	err := translateError(fmt.Errorf("scan: %w", pgx.ErrNoRows))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, translateError(nil))
}

func TestBuildLeadListQueryWithoutFilters(t *testing.T) {
	query, args := buildLeadListQuery(domain.LeadFilter{}, 0, -5)
	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "LIMIT $1 OFFSET $2")
	assert.Equal(t, []any{50, 0}, args)
}

func TestBuildLeadListQueryWithFilters(t *testing.T) {
	status := domain.LeadStatusClosed
	employee := "EMP002"
	query, args := buildLeadListQuery(domain.LeadFilter{Status: &status, AssignedTo: &employee}, 10, 20)
	assert.Contains(t, query, "WHERE status = $1 AND assigned_to = $2")
	assert.Contains(t, query, "LIMIT $3 OFFSET $4")
	assert.Equal(t, []any{"closed", "EMP002", 10, 20}, args)
}

func TestBuildIngestionLogQuery(t *testing.T) {
	batchID := uuid.New()
	query, args := buildIngestionLogQuery(domain.IngestionLogFilter{BatchID: &batchID, FileName: " leads.csv "})
	assert.Contains(t, query, "WHERE batch_id = $1 AND file_name = $2")
	assert.Equal(t, []any{batchID, "leads.csv", 200, 0}, args)
}

func TestUniqueIDsAndNullableText(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, uniqueIDs([]int64{3, 1, 3, 2, 1}))
	assert.Nil(t, nullableText("   "))
	require.NotNil(t, nullableText(" EMP001 "))
	assert.Equal(t, "EMP001", *nullableText(" EMP001 "))
}

func TestLeadSessionReleaseTwice(t *testing.T) {
	session := &leadSession{}
	assert.Error(t, session.Release())
}
