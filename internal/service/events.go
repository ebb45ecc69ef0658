package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/raffle-ticket-sales/internal/queue"
)

// EventPublisher delivers ledger events after a change commits.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.LedgerEvent) error
}

const publishTimeout = 5 * time.Second

// emit publishes ev in the background.  Failures are logged and never
// reach the caller: the database change has already committed.
func emit(ctx context.Context, p EventPublisher, ev queue.LedgerEvent) {
	if p == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		if err := p.Publish(ctx, ev); err != nil {
			zap.L().Warn("ledger event not published",
				zap.String("kind", string(ev.Kind)),
				zap.Error(err))
		}
	}()
}
