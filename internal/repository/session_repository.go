package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/raffle-ticket-sales/internal/model"
)

// SessionRepo persists login sessions (single 'session_token' column).
type SessionRepo struct{ db *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// Create inserts a session row for the user.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, token string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (user_id, session_token) VALUES (?,?)", // created_at defaults to now
		userID, token)
	return err
}

// Delete removes the session matching both user and token.
func (r *SessionRepo) Delete(ctx context.Context, userID uint64, token string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id=? AND session_token=?",
		userID, token)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 { // unknown token or someone else's
		return ErrSessionNotFound
	}
	return nil
}

// DeleteAllForUser removes every session of the user and returns how many
// rows were deleted.
func (r *SessionRepo) DeleteAllForUser(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE user_id=?", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListByUser returns the user's sessions, newest first.
func (r *SessionRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, session_token, created_at FROM sessions WHERE user_id=? ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()              // release the connection
	out := make([]model.Session, 0) // empty list, not null, in JSON
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.Token, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err() // iteration error, if any
}
