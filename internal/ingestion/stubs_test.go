package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rpattn/leadcrm/internal/domain"
	"github.com/rpattn/leadcrm/internal/repository"
)

type stubStore struct {
	acquireErr error
	session    *stubSession
	acquired   int
}

func newStubStore() *stubStore {
	return &stubStore{session: newStubSession()}
}

func (s *stubStore) Acquire(ctx context.Context) (repository.LeadSession, error) {
	if s.acquireErr != nil {
		return nil, s.acquireErr
	}
	s.acquired++
	return s.session, nil
}

type stubSession struct {
	mu         sync.Mutex
	inserted   []domain.Lead
	keys       map[string]struct{}
	failOn     map[string]error
	panicOn    string
	attempts   int
	releases   int
	releaseErr error
}

func newStubSession() *stubSession {
	return &stubSession{keys: map[string]struct{}{}, failOn: map[string]error{}}
}

func (s *stubSession) InsertLead(ctx context.Context, lead domain.Lead) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts++
	if s.panicOn != "" && lead.MobileNumber == s.panicOn {
		panic("driver exploded")
	}
	if err, ok := s.failOn[lead.MobileNumber]; ok {
		return 0, err
	}
	if !lead.Status.Valid() {
		return 0, fmt.Errorf("%w: new row violates check constraint (leads_status_check)", repository.ErrRejected)
	}
	key := lead.MobileNumber + "|" + strings.ToLower(lead.CustomerName)
	if _, exists := s.keys[key]; exists {
		return 0, fmt.Errorf("%w: Key (mobile_number)=(%s) already exists.", repository.ErrDuplicate, lead.MobileNumber)
	}
	s.keys[key] = struct{}{}
	s.inserted = append(s.inserted, lead)
	return int64(len(s.inserted)), nil
}

func (s *stubSession) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases++
	return s.releaseErr
}

type stubLogRepo struct {
	entries   []domain.IngestionLogEntry
	recordErr error
	listErr   error
	lastQuery domain.IngestionLogFilter
}

func (s *stubLogRepo) Record(ctx context.Context, entry domain.IngestionLogEntry) error {
	if s.recordErr != nil {
		return s.recordErr
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubLogRepo) List(ctx context.Context, filter domain.IngestionLogFilter) ([]domain.IngestionLogEntry, error) {
	s.lastQuery = filter
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.entries, nil
}

var errConnectionReset = errors.New("connection reset by peer")
