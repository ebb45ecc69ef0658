package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestBuyerDataValidate(t *testing.T) {
	ok := BuyerData{Document: "123", GivenNames: "Ana", Surnames: "Ruiz", Phone: "555", Email: "a@b.com"}
	assert.NoError(t, ok.Validate())

	missing := ok
	missing.Surnames = ""
	assert.Error(t, missing.Validate())

	oddEmail := ok
	oddEmail.Email = "ana at home"
	assert.NoError(t, oddEmail.Validate())

	blank := ok
	blank.Phone = ""
	assert.Error(t, blank.Validate())
}

func TestBuyerDataNormalize(t *testing.T) {
	d := BuyerData{Document: " 1 ", GivenNames: "Ana ", Surnames: " Ruiz", Phone: "555", Email: " a@b.com "}.Normalize()
	assert.Equal(t, BuyerData{Document: "1", GivenNames: "Ana", Surnames: "Ruiz", Phone: "555", Email: "a@b.com"}, d)
}

func TestRaffleConfigPatchAssignments(t *testing.T) {
	price := 5000.0
	p := RaffleConfigPatch{Responsible: strPtr(" Eva "), TicketPrice: &price, DrawDate: strPtr("2026-12-24")}

	require.NoError(t, p.Validate())
	assert.Equal(t, []Assignment{
		{Column: "fecha_rifa", Value: "2026-12-24"},
		{Column: "valor_rifa", Value: 5000.0},
		{Column: "responsable", Value: "Eva"},
	}, p.Assignments())
}

func TestRaffleConfigPatchValidate(t *testing.T) {
	assert.ErrorIs(t, RaffleConfigPatch{}.Validate(), ErrEmptyPatch)
	assert.Error(t, RaffleConfigPatch{DrawDate: strPtr("24/12/2026")}.Validate())
	assert.Error(t, RaffleConfigPatch{Lottery: strPtr("")}.Validate())

	negative := -1.0
	assert.Error(t, RaffleConfigPatch{TicketPrice: &negative}.Validate())
}

func TestParseConfigField(t *testing.T) {
	f, err := ParseConfigField("premio")
	require.NoError(t, err)
	assert.Equal(t, FieldPrize, f)

	_, err = ParseConfigField("id = 2; DROP TABLE users")
	assert.ErrorIs(t, err, ErrUnknownConfigField)
}

func TestPatchForField(t *testing.T) {
	p, err := PatchForField(FieldTicketPrice, json.RawMessage(`"2500.5"`))
	require.NoError(t, err)
	require.NotNil(t, p.TicketPrice)
	assert.Equal(t, 2500.5, *p.TicketPrice)

	p, err = PatchForField(FieldTicketPrice, json.RawMessage(`3000`))
	require.NoError(t, err)
	assert.Equal(t, 3000.0, *p.TicketPrice)

	p, err = PatchForField(FieldLottery, json.RawMessage(`"Lotería de Bogotá"`))
	require.NoError(t, err)
	assert.Equal(t, "Lotería de Bogotá", *p.Lottery)

	_, err = PatchForField(FieldLottery, json.RawMessage(`12`))
	assert.Error(t, err)

	_, err = PatchForField(FieldPrize, nil)
	assert.ErrorIs(t, err, ErrEmptyPatch)
}
