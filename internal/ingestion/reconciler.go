package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rpattn/leadcrm/internal/repository"
)

// ErrStoreUnavailable is returned when no store session could be opened for
// a batch. No rows are attempted in that case.
var ErrStoreUnavailable = errors.New("lead store unavailable")

// FailedRow describes one row that was not stored. On the wire the row's
// original fields sit at the top level next to row, line and reason; those
// three keys win over a column with the same name.
type FailedRow struct {
	Row    int
	Line   int
	Reason string
	Data   map[string]string
}

const (
	failedRowKeyRow    = "row"
	failedRowKeyLine   = "line"
	failedRowKeyReason = "reason"
)

// MarshalJSON flattens the original fields into the failure object.
func (f FailedRow) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(f.Data)+3)
	for name, value := range f.Data {
		out[name] = value
	}
	out[failedRowKeyRow] = f.Row
	out[failedRowKeyLine] = f.Line
	out[failedRowKeyReason] = f.Reason
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON; every other string key becomes Data.
func (f *FailedRow) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*f = FailedRow{Data: make(map[string]string, len(raw))}
	for key, value := range raw {
		var err error
		switch key {
		case failedRowKeyRow:
			err = json.Unmarshal(value, &f.Row)
		case failedRowKeyLine:
			err = json.Unmarshal(value, &f.Line)
		case failedRowKeyReason:
			err = json.Unmarshal(value, &f.Reason)
		default:
			var text string
			err = json.Unmarshal(value, &text)
			f.Data[key] = text
		}
		if err != nil {
			return fmt.Errorf("failed row field %q: %w", key, err)
		}
	}
	return nil
}

// Report is the per-batch outcome returned to the uploader.
type Report struct {
	ProcessedCount int         `json:"processedCount"`
	FailedCount    int         `json:"failedCount"`
	FailedRows     []FailedRow `json:"failedRows"`
}

// NewReport returns an empty report whose failures encode as [] rather
// than null.
func NewReport() Report {
	return Report{FailedRows: []FailedRow{}}
}

// Total is the number of data rows accounted for.
func (r Report) Total() int {
	return r.ProcessedCount + r.FailedCount
}

// Outcome is the result of one row's insert attempt.
type Outcome struct {
	Row    RawRow
	LeadID int64
	Reason string
}

// Failed reports whether the row was not stored.
func (o Outcome) Failed() bool {
	return o.Reason != ""
}

// Add folds one outcome into the report, preserving arrival order.
func (r *Report) Add(o Outcome) {
	if !o.Failed() {
		r.ProcessedCount++
		return
	}
	r.FailedCount++
	r.FailedRows = append(r.FailedRows, FailedRow{
		Row:    o.Row.Index,
		Line:   o.Row.Line,
		Reason: o.Reason,
		Data:   o.Row.Values,
	})
}

// Reconciler writes normalized candidates to the lead store, one insert per
// row, over a single session.
type Reconciler struct {
	store repository.LeadStore
	log   logrus.FieldLogger
}

// NewReconciler wires a reconciler to its store.
func NewReconciler(store repository.LeadStore, log logrus.FieldLogger) *Reconciler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reconciler{store: store, log: log}
}

// Reconcile attempts every candidate in order. A row failure never stops the
// batch; only failing to open the session is fatal. Once the session is open
// the batch runs to completion even if ctx is cancelled.
func (r *Reconciler) Reconcile(ctx context.Context, candidates []Candidate) (Report, error) {
	session, err := r.store.Acquire(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer func() {
		if releaseErr := session.Release(); releaseErr != nil {
			r.log.WithError(releaseErr).Warn("failed to release lead store session")
		}
	}()

	batchCtx := context.WithoutCancel(ctx)
	report := NewReport()
	for _, candidate := range candidates {
		outcome := insertRow(batchCtx, session, candidate)
		if outcome.Failed() {
			r.log.WithFields(logrus.Fields{
				"row":    outcome.Row.Index,
				"line":   outcome.Row.Line,
				"reason": outcome.Reason,
			}).Warn("lead row rejected")
		}
		report.Add(outcome)
	}
	return report, nil
}

// insertRow makes exactly one store attempt for a valid candidate and none
// for a rejected one.
func insertRow(ctx context.Context, session repository.LeadSession, candidate Candidate) Outcome {
	if candidate.Rejected() {
		return Outcome{Row: candidate.Row, Reason: candidate.Reason}
	}
	id, err := session.InsertLead(ctx, candidate.Lead)
	if err != nil {
		return Outcome{Row: candidate.Row, Reason: failureReason(err)}
	}
	return Outcome{Row: candidate.Row, LeadID: id}
}

// failureReason keeps the store's message; repository errors already carry a
// "duplicate lead" or "rejected by store" prefix.
func failureReason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
