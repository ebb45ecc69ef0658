package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// TicketCount is the size of the ledger; tickets are numbered 0..TicketCount-1.
const TicketCount = 100

// Ticket is one row of the `numeros` table.
type Ticket struct {
	ID     uint64 `json:"id"`      // numeros.id
	Number int    `json:"numero"`  // numeros.numero (0..99, unique)
	Sold   bool   `json:"vendido"` // numeros.vendido
}

// TicketView is a ticket joined with its buyer.  Buyer columns are nil when
// the ticket is still available.
type TicketView struct {
	ID          uint64     `json:"id"`
	Number      int        `json:"numero"`
	Sold        bool       `json:"vendido"`
	BuyerID     *uint64    `json:"comprador_id"`
	Document    *string    `json:"numero_documento"`
	GivenNames  *string    `json:"nombres"`
	Surnames    *string    `json:"apellidos"`
	Phone       *string    `json:"telefono"`
	Email       *string    `json:"correo"`
	Paid        *bool      `json:"pagado"`
	PurchasedAt *time.Time `json:"fecha_compra"`
	PaidAt      *time.Time `json:"fecha_pago"`
}

// TicketStats summarises the ledger.
type TicketStats struct {
	Total     int `json:"total"`
	Sold      int `json:"vendidos"`
	Available int `json:"disponibles"`
}

// BuyerData is the personal information submitted with a purchase.
type BuyerData struct {
	Document   string `json:"numero_documento"`
	GivenNames string `json:"nombres"`
	Surnames   string `json:"apellidos"`
	Phone      string `json:"telefono"`
	Email      string `json:"correo"`
}

// Normalize trims surrounding whitespace from every field.
func (d BuyerData) Normalize() BuyerData {
	return BuyerData{
		Document:   strings.TrimSpace(d.Document),
		GivenNames: strings.TrimSpace(d.GivenNames),
		Surnames:   strings.TrimSpace(d.Surnames),
		Phone:      strings.TrimSpace(d.Phone),
		Email:      strings.TrimSpace(d.Email),
	}
}

// Validate requires all five fields and bounds them to their column sizes.
// Content is not checked beyond presence: a purchase is never refused over
// an unusual email or phone format.
func (d BuyerData) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Document, validation.Required, validation.Length(1, 50)),
		validation.Field(&d.GivenNames, validation.Required, validation.Length(1, 100)),
		validation.Field(&d.Surnames, validation.Required, validation.Length(1, 100)),
		validation.Field(&d.Phone, validation.Required, validation.Length(1, 30)),
		validation.Field(&d.Email, validation.Required, validation.Length(1, 150)),
	)
}

// Buyer is one row of the `compradores` table joined with its ticket number.
//
// Fields:
//
//	ID          – primary key identifier.
//	TicketID    – the ticket this buyer owns (unique).
//	Number      – the ticket's raffle number, for display.
//	Paid        – manually toggled payment flag.
//	PurchasedAt – set when the purchase committed.
//	PaidAt      – non-nil exactly when Paid is true.
type Buyer struct {
	ID       uint64 `json:"id"`
	TicketID uint64 `json:"numero_id"`
	Number   int    `json:"numero"`
	BuyerData
	Paid        bool       `json:"pagado"`
	PurchasedAt time.Time  `json:"fecha_compra"`
	PaidAt      *time.Time `json:"fecha_pago"`
}

// PaymentState is the result of toggling a buyer's payment flag.
type PaymentState struct {
	BuyerID uint64     `json:"compradorId"`
	Paid    bool       `json:"pagado"`
	PaidAt  *time.Time `json:"fecha_pago"`
}

// PaymentStats summarises payment progress over all buyers.
type PaymentStats struct {
	TotalBuyers    int     `json:"total_compradores"`
	Paid           int     `json:"pagados"`
	Pending        int     `json:"pendientes"`
	PaidPercentage float64 `json:"porcentaje_pagado"`
}
