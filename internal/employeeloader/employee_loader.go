package employeeloader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/graph-gophers/dataloader"

	"github.com/rpattn/leadcrm/internal/domain"
	"github.com/rpattn/leadcrm/internal/repository"
)

// EmployeeLoader batches employee lookups by business id within one request.
type EmployeeLoader struct {
	Loader *dataloader.Loader
}

func NewEmployeeLoader(repo repository.EmployeeRepository) *EmployeeLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := keys.Keys()

		// Fetch employees in batch
		employees, err := repo.GetByEmployeeIDs(ctx, ids)
		if err != nil {
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		byID := make(map[string]domain.Employee, len(employees))
		for _, e := range employees {
			byID[e.EmployeeID] = e
		}

		// Build results in the same order as keys
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if e, ok := byID[id]; ok {
				results[i] = &dataloader.Result{Data: e}
			} else {
				results[i] = &dataloader.Result{Data: nil}
			}
		}
		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond))
	return &EmployeeLoader{Loader: loader}
}

// Load returns the employee with the business id, or nil when none exists.
func (l *EmployeeLoader) Load(ctx context.Context, employeeID string) (*domain.Employee, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, nil
	}
	value, err := l.Loader.Load(ctx, dataloader.StringKey(employeeID))()
	if err != nil {
		return nil, fmt.Errorf("failed to load employee %s: %w", employeeID, err)
	}
	if value == nil {
		return nil, nil
	}
	employee, ok := value.(domain.Employee)
	if !ok {
		return nil, fmt.Errorf("unexpected employee loader value %T", value)
	}
	return &employee, nil
}

// Names resolves display names for the given ids in a single batch. Unknown
// ids are omitted from the result.
func (l *EmployeeLoader) Names(ctx context.Context, employeeIDs []string) (map[string]string, error) {
	keys := make(dataloader.Keys, 0, len(employeeIDs))
	seen := make(map[string]struct{}, len(employeeIDs))
	for _, id := range employeeIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, dataloader.StringKey(id))
	}

	names := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return names, nil
	}

	values, errs := l.Loader.LoadMany(ctx, keys)()
	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to load employees: %w", err)
		}
	}
	for _, value := range values {
		if employee, ok := value.(domain.Employee); ok {
			names[employee.EmployeeID] = employee.Name
		}
	}
	return names, nil
}
