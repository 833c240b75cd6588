package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier delivers order confirmations to the structured log.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyOrderPlaced(ctx context.Context, ev OrderPlaced) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.InfoContext(ctx, "notification.order_confirmation",
		"user_id", ev.UserID,
		"order_id", ev.OrderID,
		"email", ev.Email,
		"total", ev.Total,
		"item_count", ev.ItemCount,
	)
	return nil
}
