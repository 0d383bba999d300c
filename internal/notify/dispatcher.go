// Package notify fans committed domain events out to side effects: in-app
// notifications, WhatsApp reminders and metrics. Handler failures are logged
// and counted, never returned to the use case that produced the event.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"merry/internal/domain/event"
	"merry/internal/infrastructure/metrics"
)

var _ event.Publisher = (*Dispatcher)(nil)

type registered struct {
	name string
	h    event.Handler
}

type Dispatcher struct {
	handlers []registered
	async    bool
	wg       sync.WaitGroup
}

// NewDispatcher returns an empty dispatcher. With async set, handlers run in
// their own goroutines detached from the caller's cancellation; call Wait on
// shutdown.
func NewDispatcher(async bool) *Dispatcher {
	return &Dispatcher{async: async}
}

func (d *Dispatcher) Register(name string, h event.Handler) *Dispatcher {
	d.handlers = append(d.handlers, registered{name: name, h: h})
	return d
}

func (d *Dispatcher) Publish(ctx context.Context, events ...event.Event) {
	for _, e := range events {
		metrics.EventsPublished.WithLabelValues(string(e.Type)).Inc()
		for _, r := range d.handlers {
			if !d.async {
				d.run(ctx, r, e)
				continue
			}
			d.wg.Add(1)
			go func() {
				defer d.wg.Done()
				d.run(context.WithoutCancel(ctx), r, e)
			}()
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, r registered, e event.Event) {
	defer func() {
		if p := recover(); p != nil {
			d.fail(ctx, r, e, fmt.Errorf("panic: %v", p))
		}
	}()
	if err := r.h.Handle(ctx, e); err != nil {
		d.fail(ctx, r, e, err)
	}
}

func (d *Dispatcher) fail(ctx context.Context, r registered, e event.Event, err error) {
	metrics.HandlerFailures.WithLabelValues(r.name, string(e.Type)).Inc()
	slog.ErrorContext(ctx, "event handler failed",
		"handler", r.name, "type", e.Type, "cycle_id", e.CycleID, "ref_id", e.RefID, "err", err)
}

// Wait blocks until in-flight async handlers finish.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Metrics counts committed cycle transitions.
func Metrics() event.Handler {
	return event.HandlerFunc(func(_ context.Context, e event.Event) error {
		switch e.Type {
		case event.CycleStarted, event.CyclePeriodAdvanced, event.CycleEnded,
			event.CyclePaused, event.CycleResumed, event.CycleCancelled:
			metrics.CycleTransitions.WithLabelValues(string(e.Type)).Inc()
		}
		return nil
	})
}
