package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/raffle-ticket-sales/internal/model"
)

// TicketRepo provides access to the `numeros` ledger.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the given DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

// DB exposes the underlying handle so services can open transactions that
// span several repositories.
func (r *TicketRepo) DB() *sql.DB { return r.db }

const ticketViewColumns = `n.id, n.numero, n.vendido,
	       c.id, c.numero_documento, c.nombres, c.apellidos,
	       c.telefono, c.correo, c.pagado, c.fecha_compra, c.fecha_pago`

// Initialize seeds the ledger with TicketCount unsold tickets when it is
// empty.  It reports whether rows were inserted.  INSERT IGNORE makes a
// concurrent initializer that loses the race on the unique number a no-op.
func (r *TicketRepo) Initialize(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM numeros`).Scan(&count); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	var b strings.Builder
	b.WriteString(`INSERT IGNORE INTO numeros (numero, vendido) VALUES `)
	args := make([]interface{}, 0, model.TicketCount)
	for i := 0; i < model.TicketCount; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, FALSE)")
		args = append(args, i)
	}
	res, err := r.db.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// List returns every ticket joined with its buyer, ordered by number.
func (r *TicketRepo) List(ctx context.Context) ([]model.TicketView, error) {
	q := `SELECT ` + ticketViewColumns + `
	      FROM numeros n
	      LEFT JOIN compradores c ON c.numero_id = n.id
	      ORDER BY n.numero`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.TicketView, 0, model.TicketCount)
	for rows.Next() {
		v, err := scanTicketView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns one ticket with its buyer, or ErrTicketNotFound.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (model.TicketView, error) {
	q := `SELECT ` + ticketViewColumns + `
	      FROM numeros n
	      LEFT JOIN compradores c ON c.numero_id = n.id
	      WHERE n.id = ?`
	v, err := scanTicketView(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrTicketNotFound
	}
	return v, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicketView(s rowScanner) (model.TicketView, error) {
	var v model.TicketView
	err := s.Scan(&v.ID, &v.Number, &v.Sold,
		&v.BuyerID, &v.Document, &v.GivenNames, &v.Surnames,
		&v.Phone, &v.Email, &v.Paid, &v.PurchasedAt, &v.PaidAt)
	return v, err
}

// Stats counts total, sold and available tickets.
func (r *TicketRepo) Stats(ctx context.Context) (model.TicketStats, error) {
	const q = `SELECT COUNT(*),
	                  COALESCE(SUM(CASE WHEN vendido = TRUE THEN 1 ELSE 0 END), 0)
	           FROM numeros`
	var s model.TicketStats
	if err := r.db.QueryRowContext(ctx, q).Scan(&s.Total, &s.Sold); err != nil {
		return s, err
	}
	s.Available = s.Total - s.Sold
	return s, nil
}

// LockTicketTx reads a ticket and takes an exclusive row lock on it until the
// transaction ends.  Concurrent purchases of the same ticket serialize here.
func (r *TicketRepo) LockTicketTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Ticket, error) {
	const q = `SELECT id, numero, vendido FROM numeros WHERE id = ? FOR UPDATE`
	var t model.Ticket
	err := tx.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Number, &t.Sold)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrTicketNotFound
	}
	return t, err
}

// MarkSoldTx sets the sold flag of one ticket.
func (r *TicketRepo) MarkSoldTx(ctx context.Context, tx *sql.Tx, id uint64, sold bool) error {
	res, err := tx.ExecContext(ctx, `UPDATE numeros SET vendido = ? WHERE id = ?`, sold, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 for an unchanged row; only fail when the row is gone.
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM numeros WHERE id = ?`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTicketNotFound
			}
			return err
		}
	}
	return nil
}

// ReleaseAllTx marks every ticket unsold and returns how many changed.
func (r *TicketRepo) ReleaseAllTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	res, err := tx.ExecContext(ctx, `UPDATE numeros SET vendido = FALSE`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
