package middleware

import (
	"context"
	"net/http"

	"github.com/rpattn/leadcrm/internal/employeeloader"
	"github.com/rpattn/leadcrm/internal/repository"
)

type ctxKey string

const (
	employeeLoaderKey ctxKey = "employeeLoader"
	requestIDKey      ctxKey = "requestID"
)

// DataLoaderMiddleware attaches a per-request employee loader to the context
func DataLoaderMiddleware(repo repository.EmployeeRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loader := employeeloader.NewEmployeeLoader(repo)
			ctx := context.WithValue(r.Context(), employeeLoaderKey, loader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmployeeLoaderFromContext retrieves the employee loader from context
func EmployeeLoaderFromContext(ctx context.Context) *employeeloader.EmployeeLoader {
	if l, ok := ctx.Value(employeeLoaderKey).(*employeeloader.EmployeeLoader); ok {
		return l
	}
	return nil
}
