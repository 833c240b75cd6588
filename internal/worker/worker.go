package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/storefront/internal/notifications"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/nats-io/nats.go"
)

type Config struct {
	WorkerID      string
	Concurrency   int
	MaxAttempts   int
	ShutdownGrace time.Duration
	Backoff       func(attempt int) time.Duration
}

// Worker delivers order confirmations for messages received on orders.placed.
type Worker struct {
	cfg      Config
	notifier notifications.Notifier
	metrics  *observability.DeliveryMetrics
	log      *slog.Logger

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, notifier notifications.Notifier, metrics *observability.DeliveryMetrics, log *slog.Logger) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}
	if cfg.Backoff == nil {
		cfg.Backoff = ExponentialBackoff
	}
	if metrics == nil {
		metrics = observability.NewDeliveryMetrics()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Worker{cfg: cfg, notifier: notifier, metrics: metrics, log: log}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}

func (w *Worker) Ready() bool {
	w.readyMu.RLock()
	defer w.readyMu.RUnlock()
	return w.ready
}

func (w *Worker) Metrics() *observability.DeliveryMetrics { return w.metrics }

// Run consumes msgs with cfg.Concurrency goroutines until ctx is done or msgs is
// closed. In-flight deliveries get cfg.ShutdownGrace to finish after ctx ends.
func (w *Worker) Run(ctx context.Context, msgs <-chan *nats.Msg) error {
	w.setReady(true)
	defer w.setReady(false)

	// deliveries keep running briefly after shutdown starts
	deliverCtx, cancelDeliver := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelDeliver()

	var wg sync.WaitGroup
	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case m, ok := <-msgs:
					if !ok {
						return
					}
					_ = w.Handle(deliverCtx, m.Data)
				}
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
	}

	w.log.Info("worker_shutdown", "worker_id", w.cfg.WorkerID)
	w.setReady(false)

	select {
	case <-done:
	case <-time.After(w.cfg.ShutdownGrace):
		w.log.Warn("worker_shutdown_grace_exceeded", "worker_id", w.cfg.WorkerID)
		cancelDeliver()
		<-done
	}
	return nil
}

// Handle decodes one message and delivers it, retrying with backoff. Undecodable
// payloads are dropped.
func (w *Worker) Handle(ctx context.Context, data []byte) error {
	w.metrics.IncReceived()

	ev, err := notifications.DecodeOrderPlaced(data)
	if err != nil {
		w.metrics.IncDropped()
		w.log.Warn("order_event_dropped", "worker_id", w.cfg.WorkerID, "err", err)
		return nil
	}

	start := time.Now()
	for attempt := 0; attempt < w.cfg.MaxAttempts; attempt++ {
		err = w.notifier.NotifyOrderPlaced(ctx, ev)
		if err == nil {
			w.metrics.IncDelivered()
			w.metrics.ObserveDuration(time.Since(start))
			return nil
		}

		if attempt == w.cfg.MaxAttempts-1 {
			break
		}

		w.metrics.IncRetried()
		delay := w.cfg.Backoff(attempt)
		w.log.Warn("order_confirmation_retry",
			"order_id", ev.OrderID,
			"attempt", attempt+1,
			"delay_ms", delay.Milliseconds(),
			"err", err,
		)

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			w.metrics.IncFailed()
			return ctx.Err()
		case <-t.C:
		}
	}

	w.metrics.IncFailed()
	w.log.Error("order_confirmation_failed", "order_id", ev.OrderID, "err", err)
	return err
}
