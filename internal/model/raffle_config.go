package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// RaffleConfig is the singleton row of `config_rifa` (id = 1).  Every column
// is nullable because the row is seeded empty.
type RaffleConfig struct {
	ID            uint64     `json:"id"`
	DrawDate      *time.Time `json:"fecha_rifa"`
	Lottery       *string    `json:"loteria"`
	TicketPrice   *float64   `json:"valor_rifa"`
	Prize         *string    `json:"premio"`
	PaymentMethod *string    `json:"medio_pago"`
	Responsible   *string    `json:"responsable"`
}

// ConfigField names one updatable column of the raffle configuration.
type ConfigField string

const (
	FieldDrawDate      ConfigField = "fecha_rifa"
	FieldLottery       ConfigField = "loteria"
	FieldTicketPrice   ConfigField = "valor_rifa"
	FieldPrize         ConfigField = "premio"
	FieldPaymentMethod ConfigField = "medio_pago"
	FieldResponsible   ConfigField = "responsable"
)

// ConfigFields lists the updatable fields in the order their assignments are
// emitted.  The column name of each field equals its string value.
var ConfigFields = []ConfigField{
	FieldDrawDate, FieldLottery, FieldTicketPrice, FieldPrize, FieldPaymentMethod, FieldResponsible,
}

// ErrUnknownConfigField is returned for a field name outside ConfigFields.
var ErrUnknownConfigField = errors.New("unknown config field")

// ErrEmptyPatch is returned when a patch sets no field at all.
var ErrEmptyPatch = errors.New("at least one field must be provided")

// ParseConfigField maps a client supplied name to a ConfigField.
func ParseConfigField(name string) (ConfigField, error) {
	f := ConfigField(strings.TrimSpace(name))
	for _, known := range ConfigFields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid: %s)", ErrUnknownConfigField, name, joinFields())
}

func joinFields() string {
	names := make([]string, len(ConfigFields))
	for i, f := range ConfigFields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// RaffleConfigPatch is a partial update of the configuration.  Nil fields are
// left untouched.
type RaffleConfigPatch struct {
	DrawDate      *string  `json:"fecha_rifa"`
	Lottery       *string  `json:"loteria"`
	TicketPrice   *float64 `json:"valor_rifa"`
	Prize         *string  `json:"premio"`
	PaymentMethod *string  `json:"medio_pago"`
	Responsible   *string  `json:"responsable"`
}

// Assignment is one column = value pair of an UPDATE.
type Assignment struct {
	Column string
	Value  any
}

// IsEmpty reports whether the patch sets nothing.
func (p RaffleConfigPatch) IsEmpty() bool {
	return len(p.Assignments()) == 0
}

// Assignments returns the set fields as column/value pairs in ConfigFields
// order.  Column names come from the fixed ConfigField constants, never from
// input.
func (p RaffleConfigPatch) Assignments() []Assignment {
	var out []Assignment
	add := func(f ConfigField, v any) { out = append(out, Assignment{Column: string(f), Value: v}) }
	if p.DrawDate != nil {
		add(FieldDrawDate, strings.TrimSpace(*p.DrawDate))
	}
	if p.Lottery != nil {
		add(FieldLottery, strings.TrimSpace(*p.Lottery))
	}
	if p.TicketPrice != nil {
		add(FieldTicketPrice, *p.TicketPrice)
	}
	if p.Prize != nil {
		add(FieldPrize, strings.TrimSpace(*p.Prize))
	}
	if p.PaymentMethod != nil {
		add(FieldPaymentMethod, strings.TrimSpace(*p.PaymentMethod))
	}
	if p.Responsible != nil {
		add(FieldResponsible, strings.TrimSpace(*p.Responsible))
	}
	return out
}

// Validate checks the set fields.  Dates use the YYYY-MM-DD layout.
func (p RaffleConfigPatch) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	return validation.ValidateStruct(&p,
		validation.Field(&p.DrawDate, validation.NilOrNotEmpty, validation.Date("2006-01-02")),
		validation.Field(&p.Lottery, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&p.TicketPrice, validation.Min(0.0)),
		validation.Field(&p.Prize, validation.NilOrNotEmpty, validation.Length(1, 500)),
		validation.Field(&p.PaymentMethod, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&p.Responsible, validation.NilOrNotEmpty, validation.Length(1, 100)),
	)
}

// PatchForField builds a single-field patch from a raw JSON value.  The
// ticket price accepts a JSON number or a numeric string; every other field
// accepts a JSON string.
func PatchForField(f ConfigField, raw json.RawMessage) (RaffleConfigPatch, error) {
	var p RaffleConfigPatch
	if len(raw) == 0 || string(raw) == "null" {
		return p, ErrEmptyPatch
	}
	if f == FieldTicketPrice {
		price, err := decodePrice(raw)
		if err != nil {
			return p, err
		}
		p.TicketPrice = &price
		return p, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return p, fmt.Errorf("%s must be a string", f)
	}
	switch f {
	case FieldDrawDate:
		p.DrawDate = &s
	case FieldLottery:
		p.Lottery = &s
	case FieldPrize:
		p.Prize = &s
	case FieldPaymentMethod:
		p.PaymentMethod = &s
	case FieldResponsible:
		p.Responsible = &s
	default:
		return p, ErrUnknownConfigField
	}
	return p, nil
}

func decodePrice(raw json.RawMessage) (float64, error) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("%s must be a number", FieldTicketPrice)
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", FieldTicketPrice)
	}
	return n, nil
}
