package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/raffle-ticket-sales/internal/model"
)

// raffleConfigID is the id of the singleton configuration row.
const raffleConfigID = 1

// RaffleConfigRepo reads and updates the `config_rifa` singleton.
type RaffleConfigRepo struct {
	db *sql.DB
}

func NewRaffleConfigRepo(db *sql.DB) *RaffleConfigRepo {
	return &RaffleConfigRepo{db: db}
}

// Get returns the configuration row.
func (r *RaffleConfigRepo) Get(ctx context.Context) (model.RaffleConfig, error) {
	const q = `SELECT id, fecha_rifa, loteria, valor_rifa, premio, medio_pago, responsable
	           FROM config_rifa WHERE id = ?`
	var c model.RaffleConfig
	err := r.db.QueryRowContext(ctx, q, raffleConfigID).
		Scan(&c.ID, &c.DrawDate, &c.Lottery, &c.TicketPrice, &c.Prize, &c.PaymentMethod, &c.Responsible)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrConfigNotFound
	}
	return c, err
}

// Update applies a validated patch.  Column names come from the patch's fixed
// field table, so only values are bound as parameters.
func (r *RaffleConfigRepo) Update(ctx context.Context, p model.RaffleConfigPatch) error {
	assigns := p.Assignments()
	if len(assigns) == 0 {
		return model.ErrEmptyPatch
	}
	sets := make([]string, 0, len(assigns))
	args := make([]interface{}, 0, len(assigns)+1)
	for _, a := range assigns {
		sets = append(sets, a.Column+" = ?")
		args = append(args, a.Value)
	}
	args = append(args, raffleConfigID)
	q := "UPDATE config_rifa SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM config_rifa WHERE id = ?`, raffleConfigID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrConfigNotFound
		}
		return err
	}
	return nil
}
