package employeeloader

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/leadcrm/internal/domain"
)

type stubEmployeeRepo struct {
	mu        sync.Mutex
	employees map[string]domain.Employee
	calls     [][]string
	err       error
}

func (s *stubEmployeeRepo) List(ctx context.Context) ([]domain.Employee, error) {
	return nil, nil
}

func (s *stubEmployeeRepo) GetByEmployeeIDs(ctx context.Context, ids []string) ([]domain.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, append([]string(nil), ids...))
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Employee
	for _, id := range ids {
		if e, ok := s.employees[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubEmployeeRepo) Upsert(ctx context.Context, employees []domain.Employee) (int, error) {
	return 0, nil
}

func newRepo() *stubEmployeeRepo {
	return &stubEmployeeRepo{employees: map[string]domain.Employee{
		"EMP001": {EmployeeID: "EMP001", Name: "Priya Sharma"},
		"EMP002": {EmployeeID: "EMP002", Name: "Arjun Mehta"},
	}}
}

func TestNamesResolvesDistinctIDs(t *testing.T) {
	repo := newRepo()
	loader := NewEmployeeLoader(repo)

	names, err := loader.Names(context.Background(), []string{"EMP001", "EMP002", "EMP001", "", "EMP999"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"EMP001": "Priya Sharma", "EMP002": "Arjun Mehta"}, names)
	var ids []string
	for _, call := range repo.calls {
		ids = append(ids, call...)
	}
	sort.Strings(ids)
	assert.Equal(t, []string{"EMP001", "EMP002", "EMP999"}, ids)
}

func TestLoadReturnsNilForUnknownEmployee(t *testing.T) {
	loader := NewEmployeeLoader(newRepo())

	employee, err := loader.Load(context.Background(), "EMP999")
	require.NoError(t, err)
	assert.Nil(t, employee)

	employee, err = loader.Load(context.Background(), "EMP002")
	require.NoError(t, err)
	require.NotNil(t, employee)
	assert.Equal(t, "Arjun Mehta", employee.Name)

	employee, err = loader.Load(context.Background(), " ")
	require.NoError(t, err)
	assert.Nil(t, employee)
}

func TestLoaderPropagatesRepositoryErrors(t *testing.T) {
	repo := newRepo()
	repo.err = errors.New("db down")
	loader := NewEmployeeLoader(repo)

	_, err := loader.Names(context.Background(), []string{"EMP001"})
	assert.ErrorContains(t, err, "db down")
}
