package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAuditLine(t *testing.T) {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	paid := true

	assert.Equal(t,
		"[2026-05-01T12:00:00Z] Ticket purchased | numero=07 | numero_id=8 | comprador_id=3\n",
		FormatAuditLine(LedgerEvent{Kind: EventPurchased, Number: 7, TicketID: 8, BuyerID: 3, At: at}))
	assert.Equal(t,
		"[2026-05-01T12:00:00Z] Payment updated | comprador_id=3 | pagado=true\n",
		FormatAuditLine(LedgerEvent{Kind: EventPayment, BuyerID: 3, Paid: &paid, At: at}))
	assert.Equal(t, "[2026-05-01T12:00:00Z] Raffle reset\n",
		FormatAuditLine(LedgerEvent{Kind: EventReset, At: at}))
}

func TestHandleMessageAppendsToAuditLog(t *testing.T) {
	dir := t.TempDir()
	c := NewConsumer("amqp://unused", filepath.Join(dir, "logs"))

	for _, ev := range []LedgerEvent{
		{Kind: EventPurchased, Number: 1, TicketID: 2, BuyerID: 9, At: time.Now()},
		{Kind: EventReleased, Number: 1, TicketID: 2, At: time.Now()},
	} {
		body, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, c.handleMessage(body))
	}

	raw, err := os.ReadFile(filepath.Join(dir, "logs", auditFileName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Ticket purchased")
	assert.Contains(t, lines[1], "Ticket released")
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	c := NewConsumer("amqp://unused", t.TempDir())

	assert.Error(t, c.handleMessage([]byte("{not json")))
	assert.Error(t, c.handleMessage([]byte(`{"numero":1}`)))
}
