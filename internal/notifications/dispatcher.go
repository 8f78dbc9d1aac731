package notifications

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/lifecycle"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/metrics"
)

// Publisher accepts domain events for asynchronous delivery.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Options tunes delivery.
type Options struct {
	// Timeout bounds the delivery of a single event.
	Timeout time.Duration
	// Concurrency bounds parallel sends per event.
	Concurrency int
}

// Dispatcher resolves recipients and fans an event out to every sender.
// Publish never blocks on delivery.
type Dispatcher struct {
	resolver RecipientResolver
	senders  []Sender
	logger   *slog.Logger
	opts     Options
	now      func() time.Time

	inflight  sync.WaitGroup
	delivered metric.Int64Counter
	failed    metric.Int64Counter
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(resolver RecipientResolver, logger *slog.Logger, opts Options, senders ...Sender) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}

	meter := metrics.Meter("notifications")
	return &Dispatcher{
		resolver:  resolver,
		senders:   senders,
		logger:    logger.With("system", "notifications"),
		opts:      opts,
		now:       time.Now,
		delivered: metrics.Counter(meter, "notifications.delivered", "Notifications delivered", "{notification}"),
		failed:    metrics.Counter(meter, "notifications.failed", "Notification deliveries that failed", "{notification}"),
	}
}

// Start registers a shutdown hook that drains in-flight deliveries.
func (d *Dispatcher) Start(lc *lifecycle.Coordinator) {
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.Wait()
		d.logger.Info("notification dispatcher drained")
	})
}

// Publish delivers e in the background. The caller's cancellation does not
// abort delivery; Options.Timeout does.
func (d *Dispatcher) Publish(ctx context.Context, e Event) {
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.Timeout)
		defer cancel()

		d.deliver(ctx, e)
	}()
}

// Notify delivers a single notification to one user on every sender.
func (d *Dispatcher) Notify(ctx context.Context, user uuid.UUID, e Event) {
	e.Users = []uuid.UUID{user}
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.Timeout)
		defer cancel()

		d.fanOut(ctx, e, e.Users)
	}()
}

// Wait blocks until every published event has been processed.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, e Event) {
	recipients, err := d.resolver.Resolve(ctx, e)
	if err != nil {
		d.logger.Warn("recipient resolution incomplete", "event", e.Type, "error", err)
	}
	if len(recipients) == 0 {
		d.logger.Debug("event has no recipients", "event", e.Type)
		return
	}
	d.fanOut(ctx, e, recipients)
}

func (d *Dispatcher) fanOut(ctx context.Context, e Event, recipients []uuid.UUID) {
	now := d.now()
	attrs := metric.WithAttributes(attribute.String("event", string(e.Type)))

	var failures atomic.Int64
	var g errgroup.Group
	g.SetLimit(d.opts.Concurrency)

	for _, user := range recipients {
		n := e.For(user, now)
		for _, s := range d.senders {
			g.Go(func() error {
				if err := s.Send(ctx, n); err != nil {
					failures.Add(1)
					d.failed.Add(ctx, 1, attrs)
					d.logger.Warn("notification delivery failed",
						"event", e.Type,
						"user_id", user,
						"sender", s.Name(),
						"error", err,
					)
					return err
				}
				d.delivered.Add(ctx, 1, attrs)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		d.logger.Error("event delivered partially",
			"event", e.Type,
			"recipients", len(recipients),
			"failures", failures.Load(),
		)
		return
	}

	d.logger.Info("event delivered", "event", e.Type, "recipients", len(recipients))
}
