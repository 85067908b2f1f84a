// Package audit records security-relevant actions the gateway performs on a
// student's behalf: failed logins, temp-token password resets and forced
// password changes. Events flow through a buffered channel into a worker so
// domain code never blocks on the trail.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Action identifies what happened.
type Action string

const (
	ActionLoginFailed          Action = "login_failed"
	ActionPasswordReset        Action = "password_reset"
	ActionPasswordChangeForced Action = "password_change_forced"
	ActionCareerSwitchFailed   Action = "career_switch_failed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Subject   string // document number
	Action    Action
	Reason    string
	RequestID string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}

// InMemoryStore keeps events per subject. Operational visibility only; the
// gateway persists nothing beyond its TTL cache.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Subject] = append(s.events[event.Subject], event)
	return nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subject string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[subject]...), nil
}

// Recorder is the emitting side handed to domain services. Emit never
// blocks; when the inbox is full the event is dropped and counted in logs.
type Recorder struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewRecorder(buffer int, logger *slog.Logger) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{inbox: make(chan Event, buffer), logger: logger}
}

// Emit queues an event, stamping the time when unset.
func (r *Recorder) Emit(event Event) {
	if r == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case r.inbox <- event:
	default:
		r.logger.Warn("audit inbox full, dropping event",
			"action", string(event.Action), "subject", event.Subject)
	}
}

// Inbox exposes the channel for the worker.
func (r *Recorder) Inbox() <-chan Event { return r.inbox }

// Worker consumes audit events from a recorder and persists them.
type Worker struct {
	store Store
	inbox <-chan Event
}

func NewWorker(store Store, inbox <-chan Event) *Worker {
	return &Worker{store: store, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}
