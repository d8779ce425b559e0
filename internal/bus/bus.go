// Package bus implements the synchronous publish/subscribe channel that keeps
// the dashboard's views coordinated.
//
// Delivery is ordered and runs to completion on the publishing goroutine:
// Publish calls every callback registered for the event's kind, in
// registration order, before it returns. A failing callback is reported to
// the error sink and never stops delivery to the callbacks after it.
package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domainerrors "github.com/listenupapp/moviescope/internal/errors"
)

// Handler receives one event.
type Handler func(ctx context.Context, evt Event) error

// ErrorSink receives subscriber failures.
type ErrorSink func(ctx context.Context, err *SubscriberError)

// SubscriberError reports a callback that returned an error or panicked.
type SubscriberError struct {
	Kind      Kind
	HandlerID string
	Err       error
	Panicked  bool
}

// Error implements error.
func (e *SubscriberError) Error() string {
	return fmt.Sprintf("subscriber %s on %s: %v", e.HandlerID, e.Kind, e.Err)
}

// Unwrap returns the callback's error.
func (e *SubscriberError) Unwrap() error {
	return e.Err
}

// Is matches the SUBSCRIBER domain error.
func (e *SubscriberError) Is(target error) bool {
	return errors.Is(domainerrors.ErrSubscriber, target)
}

type subscription struct {
	id string
	fn Handler
}

// Bus is an in-process event bus. The zero value is not usable; call New.
type Bus struct {
	logger *slog.Logger
	tracer trace.Tracer

	mu   sync.RWMutex
	subs map[Kind][]subscription
	sink ErrorSink
}

// New creates a bus that logs subscriber failures to logger.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bus{
		logger: logger,
		tracer: otel.Tracer("github.com/listenupapp/moviescope/internal/bus"),
		subs:   make(map[Kind][]subscription),
	}
	b.sink = b.logSubscriberError
	return b
}

// SetErrorSink replaces the sink subscriber failures are reported to.
// A nil sink restores logging.
func (b *Bus) SetErrorSink(sink ErrorSink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sink == nil {
		sink = b.logSubscriberError
	}
	b.sink = sink
}

// Subscribe registers fn for kind under handlerID. There is at most one
// callback per (kind, handlerID): subscribing again replaces the previous
// callback, and the replacement is delivered after callbacks registered
// before it. A nil fn removes the subscription.
func (b *Bus) Subscribe(kind Kind, handlerID string, fn Handler) error {
	if !kind.Valid() {
		return domainerrors.Validationf("unknown event kind %q", kind)
	}
	if handlerID == "" {
		return domainerrors.Validation("handler id is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	before := len(b.subs[kind])
	subs := slices.DeleteFunc(slices.Clone(b.subs[kind]), func(s subscription) bool {
		return s.id == handlerID
	})
	if fn != nil {
		subs = append(subs, subscription{id: handlerID, fn: fn})
	}
	b.subs[kind] = subs

	if fn != nil && len(subs) == before {
		b.logger.Debug("subscription replaced",
			slog.String("event", string(kind)),
			slog.String("handler_id", handlerID))
	}
	return nil
}

// Unsubscribe removes the callback registered for (kind, handlerID).
// It reports whether a callback was removed.
func (b *Bus) Unsubscribe(kind Kind, handlerID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	before := len(b.subs[kind])
	b.subs[kind] = slices.DeleteFunc(slices.Clone(b.subs[kind]), func(s subscription) bool {
		return s.id == handlerID
	})
	return len(b.subs[kind]) < before
}

// UnsubscribeAll removes every subscription held by handlerID.
func (b *Bus) UnsubscribeAll(handlerID string) {
	for _, kind := range Kinds() {
		b.Unsubscribe(kind, handlerID)
	}
}

// Subscribers returns the handler ids registered for kind, in delivery order.
func (b *Bus) Subscribers(kind Kind) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]string, len(b.subs[kind]))
	for i, s := range b.subs[kind] {
		ids[i] = s.id
	}
	return ids
}

// Publish delivers evt synchronously to every callback registered for its
// kind at the time of the call. Subscriptions made during delivery take
// effect for the next Publish. Subscriber failures go to the error sink and
// are never returned to the caller.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	b.mu.RLock()
	subs := b.subs[evt.Kind()]
	sink := b.sink
	b.mu.RUnlock()

	ctx, span := b.tracer.Start(ctx, "bus.publish",
		trace.WithAttributes(
			attribute.String("event.kind", string(evt.Kind())),
			attribute.Int("event.subscribers", len(subs)),
		))
	defer span.End()

	failed := 0
	for _, s := range subs {
		if err := deliver(ctx, s, evt); err != nil {
			failed++
			span.RecordError(err)
			sink(ctx, err)
		}
	}

	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d subscriber(s) failed", failed))
	}
}

// deliver runs one callback, converting errors and panics.
func deliver(ctx context.Context, s subscription, evt Event) (subErr *SubscriberError) {
	defer func() {
		if r := recover(); r != nil {
			subErr = &SubscriberError{
				Kind:      evt.Kind(),
				HandlerID: s.id,
				Err:       fmt.Errorf("panic: %v", r),
				Panicked:  true,
			}
		}
	}()

	if err := s.fn(ctx, evt); err != nil {
		return &SubscriberError{Kind: evt.Kind(), HandlerID: s.id, Err: err}
	}
	return nil
}

func (b *Bus) logSubscriberError(_ context.Context, err *SubscriberError) {
	b.logger.Error("subscriber failed",
		slog.String("event", string(err.Kind)),
		slog.String("handler_id", err.HandlerID),
		slog.Bool("panicked", err.Panicked),
		slog.String("error", err.Err.Error()))
}
