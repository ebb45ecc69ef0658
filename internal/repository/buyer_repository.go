package repository

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/iliyamo/raffle-ticket-sales/internal/model"
)

// BuyerRepo provides access to the `compradores` table.  A buyer row exists
// exactly while its ticket is sold; the unique key on numero_id backs the
// at-most-one-buyer rule.
type BuyerRepo struct {
	db *sql.DB
}

// NewBuyerRepo constructs a BuyerRepo with the given DB handle.
func NewBuyerRepo(db *sql.DB) *BuyerRepo {
	return &BuyerRepo{db: db}
}

// InsertTx records the buyer of a ticket and returns the new buyer id.  A
// unique key violation on numero_id maps to ErrAlreadySold.
func (r *BuyerRepo) InsertTx(ctx context.Context, tx *sql.Tx, ticketID uint64, d model.BuyerData) (uint64, error) {
	const q = `INSERT INTO compradores (numero_id, numero_documento, nombres, apellidos, telefono, correo)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, ticketID, d.Document, d.GivenNames, d.Surnames, d.Phone, d.Email)
	if err != nil {
		if isDuplicate(err) { // MySQL 1062 on the numero_id unique key
			return 0, ErrAlreadySold
		}
		return 0, err
	}
	id, err := res.LastInsertId() // auto-increment buyer id
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns all buyers with their ticket number, newest purchase first.
func (r *BuyerRepo) List(ctx context.Context) ([]model.Buyer, error) {
	const q = `SELECT c.id, c.numero_id, n.numero, c.numero_documento, c.nombres, c.apellidos,
	                  c.telefono, c.correo, c.pagado, c.fecha_compra, c.fecha_pago
	           FROM compradores c
	           INNER JOIN numeros n ON n.id = c.numero_id
	           ORDER BY c.fecha_compra DESC, c.id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Buyer, 0)
	for rows.Next() {
		var b model.Buyer // PaidAt stays nil for unpaid rows
		if err := rows.Scan(&b.ID, &b.TicketID, &b.Number, &b.Document, &b.GivenNames, &b.Surnames,
			&b.Phone, &b.Email, &b.Paid, &b.PurchasedAt, &b.PaidAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetPaid updates pagado and fecha_pago together.  paidAt must be non-nil
// exactly when paid is true.
func (r *BuyerRepo) SetPaid(ctx context.Context, id uint64, paid bool, paidAt *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE compradores SET pagado = ?, fecha_pago = ? WHERE id = ?`,
		paid, paidAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	// Zero affected rows also happens when nothing changed.
	var one int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM compradores WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBuyerNotFound
	}
	return err
}

// PaymentStats counts buyers by payment state.  The percentage is rounded to
// two decimals and is 0 when there are no buyers.
func (r *BuyerRepo) PaymentStats(ctx context.Context) (model.PaymentStats, error) {
	const q = `SELECT COUNT(*),
	                  COALESCE(SUM(CASE WHEN pagado = TRUE THEN 1 ELSE 0 END), 0)
	           FROM compradores`
	var s model.PaymentStats
	if err := r.db.QueryRowContext(ctx, q).Scan(&s.TotalBuyers, &s.Paid); err != nil {
		return s, err
	}
	s.Pending = s.TotalBuyers - s.Paid
	if s.TotalBuyers > 0 {
		s.PaidPercentage = math.Round(float64(s.Paid)/float64(s.TotalBuyers)*10000) / 100
	}
	return s, nil
}

// LockBuyerTx locks a buyer row and returns the id and number of its ticket.
func (r *BuyerRepo) LockBuyerTx(ctx context.Context, tx *sql.Tx, id uint64) (ticketID uint64, number int, err error) {
	const q = `SELECT c.numero_id, n.numero
	           FROM compradores c
	           INNER JOIN numeros n ON n.id = c.numero_id
	           WHERE c.id = ?
	           FOR UPDATE`
	err = tx.QueryRowContext(ctx, q, id).Scan(&ticketID, &number)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, ErrBuyerNotFound
	}
	return ticketID, number, err
}

// DeleteTx removes one buyer.
func (r *BuyerRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM compradores WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBuyerNotFound
	}
	return nil
}

// DeleteByTicketTx removes the buyer of a ticket, if any.
func (r *BuyerRepo) DeleteByTicketTx(ctx context.Context, tx *sql.Tx, ticketID uint64) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM compradores WHERE numero_id = ?`, ticketID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteAllTx removes every buyer.
func (r *BuyerRepo) DeleteAllTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM compradores`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
