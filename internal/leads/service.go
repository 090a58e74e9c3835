package leads

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rpattn/leadcrm/internal/domain"
	"github.com/rpattn/leadcrm/internal/employeeloader"
	"github.com/rpattn/leadcrm/internal/ingestion"
	"github.com/rpattn/leadcrm/internal/middleware"
	"github.com/rpattn/leadcrm/internal/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
	exportPageSize  = 500
)

// Page is one slice of a lead listing.
type Page struct {
	Leads  []domain.LeadWithAssignee `json:"leads"`
	Total  int                       `json:"total"`
	Limit  int                       `json:"limit"`
	Offset int                       `json:"offset"`
}

// Service implements lead management outside of bulk upload.
type Service struct {
	leads     repository.LeadRepository
	employees repository.EmployeeRepository
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewService(leads repository.LeadRepository, employees repository.EmployeeRepository, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{leads: leads, employees: employees, log: log, now: time.Now}
}

// List returns a page of leads, newest first, with assignee names.
func (s *Service) List(ctx context.Context, filter domain.LeadFilter, limit, offset int) (Page, error) {
	limit, offset = clampPage(limit, offset)
	leads, total, err := s.leads.List(ctx, filter, limit, offset)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Leads:  s.withAssignees(ctx, leads),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// Get returns one lead with its assignee name.
func (s *Service) Get(ctx context.Context, id int64) (domain.LeadWithAssignee, error) {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return domain.LeadWithAssignee{}, err
	}
	return s.withAssignees(ctx, []domain.Lead{lead})[0], nil
}

// Create validates and stores a single generated lead.
func (s *Service) Create(ctx context.Context, dto CreateLeadDTO) (domain.Lead, error) {
	if result := dto.Ok(); !result.IsValid {
		return domain.Lead{}, &ValidationFailedError{Result: result}
	}
	if err := s.ensureEmployee(ctx, dto.AssignedTo); err != nil {
		return domain.Lead{}, err
	}
	return s.leads.Create(ctx, dto.ToLead(s.now()))
}

// UpdateStatus moves a lead to a canonical status.
func (s *Service) UpdateStatus(ctx context.Context, id int64, raw string) (domain.Lead, error) {
	status, err := domain.ParseLeadStatus(raw)
	if err != nil || strings.TrimSpace(raw) == "" {
		return domain.Lead{}, fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s.leads.UpdateStatus(ctx, id, status)
}

// Reassign hands one lead to an employee; a blank id unassigns it.
func (s *Service) Reassign(ctx context.Context, id int64, employeeID string) (domain.Lead, error) {
	employeeID = strings.TrimSpace(employeeID)
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return domain.Lead{}, err
	}
	return s.leads.Reassign(ctx, id, employeeID)
}

// AssignMany assigns every listed lead to one employee, atomically.
func (s *Service) AssignMany(ctx context.Context, dto AssignLeadsDTO) (int64, error) {
	if result := dto.Ok(); !result.IsValid {
		return 0, &ValidationFailedError{Result: result}
	}
	if err := s.ensureEmployee(ctx, dto.EmployeeID); err != nil {
		return 0, err
	}
	return s.leads.AssignMany(ctx, dto.LeadIDs, dto.EmployeeID)
}

// Employees lists every employee.
func (s *Service) Employees(ctx context.Context) ([]domain.Employee, error) {
	return s.employees.List(ctx)
}

// Export writes every lead matching filter in the upload template layout.
// The first page is read before anything reaches w, so a store failure at
// that point leaves w untouched.
func (s *Service) Export(ctx context.Context, filter domain.LeadFilter, format ExportFormat, w io.Writer) (int, error) {
	leads, total, err := s.leads.List(ctx, filter, exportPageSize, 0)
	if err != nil {
		return 0, err
	}

	writer, err := newExportWriter(format, w)
	if err != nil {
		return 0, err
	}
	defer func() { _ = writer.Close() }()

	if err := writer.WriteRow(ingestion.LeadTemplate.Headers()); err != nil {
		return 0, fmt.Errorf("write export header: %w", err)
	}

	exported := 0
	for offset := 0; ; {
		for _, lead := range leads {
			if err := writer.WriteRow(exportRow(lead)); err != nil {
				return exported, fmt.Errorf("write export row: %w", err)
			}
			exported++
		}
		if len(leads) < exportPageSize || exported >= total {
			break
		}
		offset += exportPageSize
		if leads, total, err = s.leads.List(ctx, filter, exportPageSize, offset); err != nil {
			return exported, err
		}
	}

	if err := writer.Finish(); err != nil {
		return exported, err
	}
	s.log.WithFields(logrus.Fields{"rows": exported, "format": string(format)}).Info("leads exported")
	return exported, nil
}

func (s *Service) ensureEmployee(ctx context.Context, employeeID string) error {
	if employeeID == "" {
		return nil
	}
	employee, err := s.loader(ctx).Load(ctx, employeeID)
	if err != nil {
		return err
	}
	if employee == nil {
		return fmt.Errorf("%w: %s", ErrUnknownEmployee, employeeID)
	}
	return nil
}

func (s *Service) withAssignees(ctx context.Context, leads []domain.Lead) []domain.LeadWithAssignee {
	ids := make([]string, 0, len(leads))
	for _, lead := range leads {
		if lead.IsAssigned() {
			ids = append(ids, *lead.AssignedTo)
		}
	}

	names, err := s.loader(ctx).Names(ctx, ids)
	if err != nil {
		s.log.WithError(err).Warn("failed to resolve assignee names")
		names = map[string]string{}
	}

	out := make([]domain.LeadWithAssignee, len(leads))
	for i, lead := range leads {
		out[i] = domain.LeadWithAssignee{Lead: lead}
		if lead.IsAssigned() {
			out[i].AssigneeName = names[*lead.AssignedTo]
		}
	}
	return out
}

func (s *Service) loader(ctx context.Context) *employeeloader.EmployeeLoader {
	if loader := middleware.EmployeeLoaderFromContext(ctx); loader != nil {
		return loader
	}
	return employeeloader.NewEmployeeLoader(s.employees)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
