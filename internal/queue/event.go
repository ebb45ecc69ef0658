// Package queue defines the ledger events exchanged over RabbitMQ, the
// publisher used by the services and the consumer that keeps an audit log.
package queue

import "time"

// LedgerQueueName is the durable queue carrying ledger events.
const LedgerQueueName = "raffle.ledger"

// EventKind names what happened to the ledger.
type EventKind string

const (
	EventPurchased    EventKind = "purchased"
	EventPayment      EventKind = "payment"
	EventReleased     EventKind = "released"
	EventBuyerDeleted EventKind = "buyer_deleted"
	EventReset        EventKind = "reset"
)

// LedgerEvent is published after a ledger change commits.  It carries enough
// to write an audit line without reading the database.
type LedgerEvent struct {
	Kind     EventKind `json:"kind"`
	TicketID uint64    `json:"numero_id,omitempty"`
	Number   int       `json:"numero"`
	BuyerID  uint64    `json:"comprador_id,omitempty"`
	Paid     *bool     `json:"pagado,omitempty"`
	At       time.Time `json:"at"`
}
