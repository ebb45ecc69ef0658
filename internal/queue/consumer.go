package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const auditFileName = "ledger.log"

// Consumer reads ledger events and appends one line per event to
// <logDir>/ledger.log.
type Consumer struct {
	url    string
	logDir string
}

func NewConsumer(url, logDir string) *Consumer {
	if logDir == "" {
		logDir = "logs"
	}
	return &Consumer{url: url, logDir: logDir}
}

// Run connects, consumes and reconnects with exponential backoff until ctx
// is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("ledger consumer panicked", zap.Any("panic", r))
		}
	}()

	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			zap.L().Warn("ledger consumer: dial failed",
				zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		zap.L().Warn("ledger consumer: loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		zap.L().Warn("ledger consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(LedgerQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(LedgerQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handleMessage(d.Body); err != nil {
				zap.L().Warn("ledger consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false) // drop, requeueing would spin
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleMessage(body []byte) error {
	var ev LedgerEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Kind == "" {
		return errors.New("event without kind")
	}
	if err := os.MkdirAll(c.logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.logDir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.logDir, auditFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatAuditLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatAuditLine renders one event as a single log line.
func FormatAuditLine(ev LedgerEvent) string {
	at := ev.At.UTC().Format(time.RFC3339)
	switch ev.Kind {
	case EventPurchased:
		return fmt.Sprintf("[%s] Ticket purchased | numero=%02d | numero_id=%d | comprador_id=%d\n",
			at, ev.Number, ev.TicketID, ev.BuyerID)
	case EventPayment:
		paid := ev.Paid != nil && *ev.Paid
		return fmt.Sprintf("[%s] Payment updated | comprador_id=%d | pagado=%t\n", at, ev.BuyerID, paid)
	case EventReleased:
		return fmt.Sprintf("[%s] Ticket released | numero=%02d | numero_id=%d\n", at, ev.Number, ev.TicketID)
	case EventBuyerDeleted:
		return fmt.Sprintf("[%s] Buyer deleted | comprador_id=%d | numero=%02d\n", at, ev.BuyerID, ev.Number)
	case EventReset:
		return fmt.Sprintf("[%s] Raffle reset\n", at)
	default:
		return fmt.Sprintf("[%s] %s\n", at, ev.Kind)
	}
}
