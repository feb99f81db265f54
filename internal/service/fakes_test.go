package service_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/jnst/pgq-consumer/internal/model"
)

// callLog collects store and handler calls in the order they happen.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.calls...)
}

type pendingBatch struct {
	id     model.BatchID
	events []*model.Event
}

// fakeStore emulates PgQ semantics: idempotent registration, one open batch at a time.
type fakeStore struct {
	log *callLog

	mu         sync.Mutex
	queues     map[string]bool
	consumers  map[string]bool
	pending    []pendingBatch
	open       map[model.BatchID][]*model.Event
	inserted   []*model.PublishEventParams
	nextEvent  int64
	retryReply bool
	finishOK   bool

	createErr   error
	registerErr error
	nextErr     error
	eventsErr   error
	finishErr   error
	retryErr    error
	insertErr   error
}

func newFakeStore(log *callLog, batches ...pendingBatch) *fakeStore {
	return &fakeStore{
		log:        log,
		queues:     map[string]bool{},
		consumers:  map[string]bool{},
		pending:    batches,
		open:       map[model.BatchID][]*model.Event{},
		retryReply: true,
		finishOK:   true,
	}
}

func (s *fakeStore) CreateQueue(_ context.Context, queue string) (bool, error) {
	s.log.add("create_queue(%s)", queue)

	if s.createErr != nil {
		return false, s.createErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queues[queue] {
		return false, nil
	}

	s.queues[queue] = true

	return true, nil
}

func (s *fakeStore) RegisterConsumer(_ context.Context, queue, consumer string) (bool, error) {
	s.log.add("register_consumer(%s,%s)", queue, consumer)

	if s.registerErr != nil {
		return false, s.registerErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := queue + "/" + consumer
	if s.consumers[key] {
		return false, nil
	}

	s.consumers[key] = true

	return true, nil
}

func (s *fakeStore) NextBatch(_ context.Context, _, _ string) (model.BatchID, bool, error) {
	if s.nextErr != nil {
		s.log.add("next_batch->error")
		return 0, false, s.nextErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		s.log.add("next_batch->empty")
		return 0, false, nil
	}

	b := s.pending[0]
	s.pending = s.pending[1:]
	s.open[b.id] = b.events
	s.log.add("next_batch->%d", b.id)

	return b.id, true, nil
}

func (s *fakeStore) GetBatchEvents(_ context.Context, batchID model.BatchID) ([]*model.Event, error) {
	s.log.add("get_batch_events(%d)", batchID)

	if s.eventsErr != nil {
		return nil, s.eventsErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.open[batchID], nil
}

func (s *fakeStore) FinishBatch(_ context.Context, batchID model.BatchID) (bool, error) {
	s.log.add("finish_batch(%d)", batchID)

	if s.finishErr != nil {
		return false, s.finishErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.open, batchID)

	return s.finishOK, nil
}

func (s *fakeStore) RetryEvent(_ context.Context, batchID model.BatchID, eventID int64, delay int) (bool, error) {
	s.log.add("event_retry(%d,%d,%d)", batchID, eventID, delay)

	if s.retryErr != nil {
		return false, s.retryErr
	}

	return s.retryReply, nil
}

func (s *fakeStore) InsertEvent(_ context.Context, queue string, params *model.PublishEventParams) (int64, error) {
	s.log.add("insert_event(%s,%s)", queue, params.Type)

	if s.insertErr != nil {
		return 0, s.insertErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEvent++
	s.inserted = append(s.inserted, params)

	return s.nextEvent, nil
}

// fakeTM runs fn directly and records whether it committed.
type fakeTM struct {
	committed  int
	rolledBack int
}

func (tm *fakeTM) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		tm.rolledBack++
		return err
	}

	tm.committed++

	return nil
}
