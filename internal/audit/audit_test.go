package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type AuditSuite struct {
	suite.Suite
}

func TestAuditSuite(t *testing.T) {
	suite.Run(t, new(AuditSuite))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *AuditSuite) TestRecorderAndWorker() {
	store := NewInMemoryStore()
	recorder := NewRecorder(8, discardLogger())
	worker := NewWorker(store, recorder.Inbox())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()

	recorder.Emit(Event{Subject: "0912345678", Action: ActionLoginFailed, Reason: "invalid credentials"})
	recorder.Emit(Event{Subject: "0912345678", Action: ActionPasswordReset})
	recorder.Emit(Event{Subject: "0999999999", Action: ActionCareerSwitchFailed, Reason: "perfil 2"})

	s.Require().Eventually(func() bool {
		events, err := store.ListBySubject(context.Background(), "0912345678")
		return err == nil && len(events) == 2
	}, time.Second, 10*time.Millisecond)

	events, err := store.ListBySubject(context.Background(), "0912345678")
	s.Require().NoError(err)
	s.Equal(ActionLoginFailed, events[0].Action)
	s.Equal(ActionPasswordReset, events[1].Action)
	s.False(events[0].Timestamp.IsZero())

	other, err := store.ListBySubject(context.Background(), "0999999999")
	s.Require().NoError(err)
	s.Len(other, 1)

	cancel()
	<-done
}

func (s *AuditSuite) TestEmitNeverBlocks() {
	recorder := NewRecorder(1, discardLogger())

	// No worker draining: the second emit overflows and must return anyway.
	recorder.Emit(Event{Subject: "a", Action: ActionLoginFailed})
	recorder.Emit(Event{Subject: "b", Action: ActionLoginFailed})

	s.Len(recorder.Inbox(), 1)
}

func (s *AuditSuite) TestNilRecorderIsSafe() {
	var recorder *Recorder
	recorder.Emit(Event{Subject: "a", Action: ActionLoginFailed})
}

func (s *AuditSuite) TestUnknownSubjectIsEmpty() {
	store := NewInMemoryStore()
	events, err := store.ListBySubject(context.Background(), "nobody")
	s.Require().NoError(err)
	s.Empty(events)
}
