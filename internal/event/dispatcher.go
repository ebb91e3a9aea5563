package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/entity"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/target"
)

// Dispatcher is the downstream event-dispatch boundary. Implementations own
// any retry policy; this subsystem only reports failure.
type Dispatcher interface {
	Dispatch(ctx context.Context, payload *AttemptAction) error
}

// MemoryDispatcher collects payloads in memory. Used by tests and the CLI's
// dry-run mode.
type MemoryDispatcher struct {
	mu     sync.Mutex
	events []*AttemptAction
}

func NewMemoryDispatcher() *MemoryDispatcher {
	return &MemoryDispatcher{}
}

func (d *MemoryDispatcher) Dispatch(ctx context.Context, payload *AttemptAction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, payload)
	return nil
}

// Events returns the dispatched payloads in order.
func (d *MemoryDispatcher) Events() []*AttemptAction {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*AttemptAction(nil), d.events...)
}

// Service couples the builder to a dispatch boundary for one wiring of the
// engine. Attempts for different actors may run concurrently; the strict
// resolve-extract-build-dispatch sequence holds within a single attempt.
type Service struct {
	builder    *Builder
	dispatcher Dispatcher
	log        *zap.Logger
}

func NewService(builder *Builder, dispatcher Dispatcher, log *zap.Logger) *Service {
	if builder == nil {
		panic("event: nil builder")
	}
	if dispatcher == nil {
		panic("event: nil dispatcher")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{builder: builder, dispatcher: dispatcher, log: log}
}

// Attempt builds the payload and hands it to the dispatch boundary. The
// returned bool reports dispatch success; failures are logged, not retried.
func (s *Service) Attempt(ctx context.Context, actorID entity.ID, actionID, originalInput string, raw []target.RawCategory) (*AttemptAction, bool) {
	payload := s.builder.Build(actorID, actionID, originalInput, raw)
	if err := s.dispatcher.Dispatch(ctx, payload); err != nil {
		s.log.Error("event dispatch failed",
			zap.String("actor", string(actorID)),
			zap.String("action", actionID),
			zap.Error(err))
		return payload, false
	}
	return payload, true
}
