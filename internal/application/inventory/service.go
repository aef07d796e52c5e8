package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/erp/stockcore/internal/infrastructure/logger"
	"github.com/erp/stockcore/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Metrics receives measurements from the stock services
type Metrics interface {
	// RecordOperation observes one write operation including its retries
	RecordOperation(ctx context.Context, operation string, elapsed time.Duration, err error)
	// RecordRetry counts a retry after a lock timeout
	RecordRetry(ctx context.Context, operation string)
	// RecordAnomaly counts an inconsistent reservation or negative availability
	RecordAnomaly(ctx context.Context, itemID uuid.UUID, kind string)
}

// NoopMetrics discards all measurements
type NoopMetrics struct{}

func (NoopMetrics) RecordOperation(context.Context, string, time.Duration, error) {}
func (NoopMetrics) RecordRetry(context.Context, string)                          {}
func (NoopMetrics) RecordAnomaly(context.Context, uuid.UUID, string)             {}

// RetryPolicy bounds the retries of operations that failed with shared.ErrLockTimeout
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second}
}

// Options carries the collaborators shared by all stock services
type Options struct {
	Publisher shared.EventPublisher
	Logger    *zap.Logger
	Metrics   Metrics
	Retry     RetryPolicy
}

// runner executes write operations: one transaction per attempt, retries on
// lock timeouts, and domain events published only after commit.
type runner struct {
	scope     TransactionScope
	publisher shared.EventPublisher
	logger    *zap.Logger
	metrics   Metrics
	retry     RetryPolicy
}

func newRunner(scope TransactionScope, opts Options) runner {
	r := runner{
		scope:     scope,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		retry:     opts.Retry,
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.metrics == nil {
		r.metrics = NoopMetrics{}
	}
	if r.retry.BaseDelay <= 0 {
		r.retry = DefaultRetryPolicy()
	}
	return r
}

// eventSink collects the events raised inside one transaction attempt
type eventSink struct {
	events []shared.DomainEvent
}

func (s *eventSink) collect(aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		s.events = append(s.events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
}

type txFunc func(repos TransactionalRepositories, events *eventSink) error

// execute runs fn in a transaction and retries it with exponential backoff
// while it fails with shared.ErrLockTimeout. Any other error is returned as is.
func (r runner) execute(ctx context.Context, op string, fn txFunc) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", op)
	defer func() { telemetry.EndSpan(span, err) }()

	start := time.Now()
	var sink *eventSink
	attempt := 0

	operation := func() (struct{}, error) {
		attempt++
		if attempt > 1 {
			r.metrics.RecordRetry(ctx, op)
			logger.Enrich(ctx, r.logger).Debug("Retrying after lock timeout",
				zap.String("operation", op),
				zap.Int("attempt", attempt),
			)
		}
		sink = &eventSink{}
		err := r.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			return fn(repos, sink)
		})
		if err != nil && !errors.Is(err, shared.ErrLockTimeout) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	_, err = backoff.Retry(ctx, operation,
		backoff.WithBackOff(r.backOff()),
		backoff.WithMaxTries(uint(r.retry.Attempts+1)),
	)
	telemetry.SetAttributes(span, telemetry.SpanAttrAttempts, attempt)
	r.metrics.RecordOperation(ctx, op, time.Since(start), err)
	if err != nil {
		return err
	}
	r.publish(ctx, sink.events)
	return nil
}

func (r runner) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.retry.BaseDelay
	b.MaxInterval = r.retry.MaxDelay
	b.Multiplier = 2
	return b
}

// publish hands committed events to the publisher. Failures are logged;
// the stock change has already been committed.
func (r runner) publish(ctx context.Context, events []shared.DomainEvent) {
	if r.publisher == nil || len(events) == 0 {
		return
	}
	if err := r.publisher.Publish(ctx, events...); err != nil {
		logger.Enrich(ctx, r.logger).Warn("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}
