package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rpattn/leadcrm/internal/domain"
	"github.com/rpattn/leadcrm/internal/repository"
)

// Request describes one uploaded file.
type Request struct {
	BatchID    uuid.UUID
	FileName   string
	UploadedBy string
	Template   Template
	Data       io.Reader
}

// Service turns uploaded lead spreadsheets into stored leads.
type Service struct {
	reconciler *Reconciler
	logRepo    repository.IngestionLogRepository
	metrics    *Metrics
	log        logrus.FieldLogger
	now        func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the logger used for batch summaries and row warnings.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics records batch outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the ingestion timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new ingestion service. logRepo may be nil, in which
// case row failures are only reported back to the caller.
func NewService(store repository.LeadStore, logRepo repository.IngestionLogRepository, opts ...Option) *Service {
	s := &Service{
		logRepo: logRepo,
		log:     logrus.StandardLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reconciler = NewReconciler(store, s.log)
	return s
}

// Ingest parses the whole file, then reconciles every row against the store.
// Errors are returned only when the file cannot be read or the store cannot
// be reached; row problems land in the report.
func (s *Service) Ingest(ctx context.Context, req Request) (Report, error) {
	if req.Data == nil {
		return Report{}, ErrNoUpload
	}
	if len(req.Template.Columns) == 0 {
		req.Template = LeadTemplate
	}
	if req.BatchID == uuid.Nil {
		req.BatchID = uuid.New()
	}

	log := s.log.WithFields(logrus.Fields{
		"batch_id": req.BatchID.String(),
		"file":     req.FileName,
		"template": req.Template.Name,
	})

	candidates, err := s.parse(req, log)
	if err != nil {
		s.metrics.observeFailure(req.Template.Name, batchResultRejected)
		log.WithError(err).Warn("lead upload rejected")
		return Report{}, err
	}

	started := time.Now()
	report, err := s.reconciler.Reconcile(ctx, candidates)
	if err != nil {
		s.metrics.observeFailure(req.Template.Name, batchResultError)
		log.WithError(err).Error("lead upload failed")
		return Report{}, err
	}
	elapsed := time.Since(started)

	s.recordFailures(context.WithoutCancel(ctx), req, report)
	s.metrics.observeBatch(req.Template.Name, report, elapsed)

	log.WithFields(logrus.Fields{
		"processed": report.ProcessedCount,
		"failed":    report.FailedCount,
		"duration":  elapsed.String(),
	}).Info("lead upload reconciled")

	return report, nil
}

// ListLogs returns durable ingestion failures.
func (s *Service) ListLogs(ctx context.Context, filter domain.IngestionLogFilter) ([]domain.IngestionLogEntry, error) {
	if s.logRepo == nil {
		return []domain.IngestionLogEntry{}, nil
	}
	return s.logRepo.List(ctx, filter)
}

func (s *Service) parse(req Request, log logrus.FieldLogger) ([]Candidate, error) {
	format, err := FormatFromFileName(req.FileName)
	if err != nil {
		return nil, err
	}

	reader, err := NewReader(req.Data, format)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	if missing := req.Template.MissingRequired(reader.Header()); len(missing) > 0 {
		log.WithField("missing_columns", missing).Warn("upload header lacks required columns")
	}

	now := s.now()
	candidates := []Candidate{}
	for {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(candidates)+1, err)
		}
		candidates = append(candidates, Normalize(row, req.Template, now))
	}
	return candidates, nil
}

func (s *Service) recordFailures(ctx context.Context, req Request, report Report) {
	if s.logRepo == nil {
		return
	}
	for _, failed := range report.FailedRows {
		line := failed.Line
		entry := domain.IngestionLogEntry{
			BatchID:      req.BatchID,
			FileName:     req.FileName,
			UploadedBy:   req.UploadedBy,
			LineNumber:   &line,
			ErrorMessage: failed.Reason,
		}
		if err := s.logRepo.Record(ctx, entry); err != nil {
			s.log.WithError(err).WithField("line", line).Warn("failed to record ingestion log")
		}
	}
}
