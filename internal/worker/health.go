package worker

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
)

type ReadinessDeps interface {
	Ping(ctx context.Context) error
}

// NATSPinger reports the broker connection as a readiness dependency.
type NATSPinger struct {
	Conn *nats.Conn
}

func (p NATSPinger) Ping(ctx context.Context) error {
	if !p.Conn.IsConnected() {
		return nats.ErrConnectionClosed
	}
	return p.Conn.FlushWithContext(ctx)
}

func (w *Worker) HealthHandler(deps ReadinessDeps) http.Handler {
	r := gin.New()

	r.Use(gin.Recovery())

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"ok": true,
		})
	})

	// ready while consuming and the broker answers
	r.GET("/readyz", func(c *gin.Context) {
		if !w.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}

		if deps != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "broker_unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, w.metrics.Snapshot())
	})

	return r
}
