package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/notifications"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/geocoder89/storefront/internal/worker"
	"github.com/nats-io/nats.go"
)

const queueGroup = "order-confirmations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if cfg.NATSURL == "" {
		log.Error("NATS_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	nc, err := notifications.Connect(cfg.NATSURL, "storefront-worker", log)
	if err != nil {
		log.Error("nats connect failed", "err", err)
		os.Exit(1)
	}
	defer nc.Close()

	msgs := make(chan *nats.Msg, 64)
	sub, err := nc.ChanQueueSubscribe(notifications.SubjectOrderPlaced, queueGroup, msgs)
	if err != nil {
		log.Error("subscribe failed", "subject", notifications.SubjectOrderPlaced, "err", err)
		os.Exit(1)
	}

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	w := worker.New(worker.Config{
		WorkerID:      workerID,
		Concurrency:   4,
		MaxAttempts:   5,
		ShutdownGrace: 10 * time.Second,
	}, notifications.NewLogNotifier(log), nil, log)

	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerHealthPort),
		Handler:           w.HealthHandler(worker.NATSPinger{Conn: nc}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("worker health server failed", "err", err)
		}
	}()

	log.Info("worker has started", "worker_id", workerID, "subject", notifications.SubjectOrderPlaced)

	if err := w.Run(ctx, msgs); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	if err := sub.Unsubscribe(); err != nil {
		log.Warn("unsubscribe failed", "err", err)
	}

	sctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(sctx)

	log.Info("worker shutdown complete")
}
