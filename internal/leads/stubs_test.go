package leads

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rpattn/leadcrm/internal/domain"
	"github.com/rpattn/leadcrm/internal/repository"
)

type stubLeadRepo struct {
	mu     sync.Mutex
	leads  map[int64]domain.Lead
	nextID int64
	err    error
}

func newStubLeadRepo(leads ...domain.Lead) *stubLeadRepo {
	repo := &stubLeadRepo{leads: map[int64]domain.Lead{}}
	for _, lead := range leads {
		repo.nextID++
		lead.ID = repo.nextID
		repo.leads[lead.ID] = lead
	}
	return repo
}

func (s *stubLeadRepo) Create(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.Lead{}, s.err
	}
	for _, existing := range s.leads {
		if existing.MobileNumber == lead.MobileNumber && strings.EqualFold(existing.CustomerName, lead.CustomerName) {
			return domain.Lead{}, fmt.Errorf("failed to create lead: %w: Key already exists.", repository.ErrDuplicate)
		}
	}
	s.nextID++
	lead.ID = s.nextID
	s.leads[lead.ID] = lead
	return lead, nil
}

func (s *stubLeadRepo) GetByID(ctx context.Context, id int64) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[id]
	if !ok {
		return domain.Lead{}, fmt.Errorf("failed to get lead %d: %w", id, repository.ErrNotFound)
	}
	return lead, nil
}

func (s *stubLeadRepo) List(ctx context.Context, filter domain.LeadFilter, limit int, offset int) ([]domain.Lead, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, 0, s.err
	}
	var matched []domain.Lead
	for _, lead := range s.leads {
		if filter.Status != nil && lead.Status != *filter.Status {
			continue
		}
		if filter.AssignedTo != nil && (lead.AssignedTo == nil || *lead.AssignedTo != *filter.AssignedTo) {
			continue
		}
		matched = append(matched, lead)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	total := len(matched)
	if offset >= total {
		return []domain.Lead{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (s *stubLeadRepo) UpdateStatus(ctx context.Context, id int64, status domain.LeadStatus) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	lead.Status = status
	s.leads[id] = lead
	return lead, nil
}

func (s *stubLeadRepo) Reassign(ctx context.Context, id int64, employeeID string) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	lead = lead.WithAssignee(employeeID)
	s.leads[id] = lead
	return lead, nil
}

func (s *stubLeadRepo) AssignMany(ctx context.Context, ids []int64, employeeID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.leads[id]; !ok {
			return 0, fmt.Errorf("failed to assign leads: %w", repository.ErrNotFound)
		}
	}
	for _, id := range ids {
		s.leads[id] = s.leads[id].WithAssignee(employeeID)
	}
	return int64(len(ids)), nil
}

type stubEmployeeRepo struct {
	employees []domain.Employee
}

func newStubEmployeeRepo() *stubEmployeeRepo {
	return &stubEmployeeRepo{employees: []domain.Employee{
		{ID: 1, EmployeeID: "EMP001", Name: "Priya Sharma"},
		{ID: 2, EmployeeID: "EMP002", Name: "Arjun Mehta"},
	}}
}

func (s *stubEmployeeRepo) List(ctx context.Context) ([]domain.Employee, error) {
	return s.employees, nil
}

func (s *stubEmployeeRepo) GetByEmployeeIDs(ctx context.Context, ids []string) ([]domain.Employee, error) {
	var out []domain.Employee
	for _, e := range s.employees {
		for _, id := range ids {
			if e.EmployeeID == id {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (s *stubEmployeeRepo) Upsert(ctx context.Context, employees []domain.Employee) (int, error) {
	s.employees = append(s.employees, employees...)
	return len(employees), nil
}
