package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/storefront/internal/observability"
	"github.com/nats-io/nats.go"
)

// Connect dials NATS with reconnects enabled and connection state logged.
func Connect(url, name string, log *slog.Logger) (*nats.Conn, error) {
	if log == nil {
		log = slog.Default()
	}
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(5 * time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats_disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info("nats_closed")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}

type msgPublisher interface {
	Publish(subject string, data []byte) error
}

type NATSPublisher struct {
	conn    msgPublisher
	subject string
	prom    *observability.Prom
}

func NewNATSPublisher(conn msgPublisher, prom *observability.Prom) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: SubjectOrderPlaced, prom: prom}
}

func (p *NATSPublisher) NotifyOrderPlaced(ctx context.Context, ev OrderPlaced) error {
	if err := ctx.Err(); err != nil {
		p.prom.ObservePublish(p.subject, "canceled")
		return err
	}

	data, err := EncodeOrderPlaced(ev)
	if err != nil {
		p.prom.ObservePublish(p.subject, "invalid")
		return fmt.Errorf("encode %s: %w", p.subject, err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		p.prom.ObservePublish(p.subject, "error")
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}

	p.prom.ObservePublish(p.subject, "ok")
	return nil
}
