package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/adamwrona/airport-ops/internal/loyalty"
	"github.com/adamwrona/airport-ops/internal/model"
)

// ClientRepo persists passenger accounts in the `clients` table.
type ClientRepo struct{ DB *sql.DB }

func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{DB: db} }

const clientCols = "id,user_id,birth_date,loyalty_tier,points,registered_at,created_at,updated_at"

func scanClient(row *sql.Row) (model.Client, error) {
	var c model.Client
	err := row.Scan(&c.ID, &c.UserID, &c.BirthDate, &c.LoyaltyTier, &c.Points,
		&c.RegisteredAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts a client row for a freshly registered user.
func (r *ClientRepo) Create(ctx context.Context, userID uint64, birthDate time.Time) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO clients (user_id, birth_date, loyalty_tier, points, registered_at) VALUES (?,?,?,0,NOW())",
		userID, birthDate, loyalty.TierBronze)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a client by id.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (model.Client, error) {
	return scanClient(r.DB.QueryRowContext(ctx,
		"SELECT "+clientCols+" FROM clients WHERE id=? LIMIT 1", id))
}

// GetByUserID fetches the client owned by a user account.
func (r *ClientRepo) GetByUserID(ctx context.Context, userID uint64) (model.Client, error) {
	return scanClient(r.DB.QueryRowContext(ctx,
		"SELECT "+clientCols+" FROM clients WHERE user_id=? LIMIT 1", userID))
}

// List returns all clients ordered by id.
func (r *ClientRepo) List(ctx context.Context) ([]model.Client, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+clientCols+" FROM clients ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Client{}
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.UserID, &c.BirthDate, &c.LoyaltyTier, &c.Points,
			&c.RegisteredAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateMe overwrites a client's own mutable fields.
func (r *ClientRepo) UpdateMe(ctx context.Context, clientID uint64, birthDate time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE clients SET birth_date=?, updated_at=NOW() WHERE id=?",
		birthDate, clientID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateTier stores the tier label last computed for the client.  The
// label is display state only; every ranking request recomputes from
// the standings.
func (r *ClientRepo) UpdateTier(ctx context.Context, clientID uint64, tier string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE clients SET loyalty_tier=?, updated_at=NOW() WHERE id=?", tier, clientID)
	return err
}

// Delete hard-deletes a client.  Service orders and baggage cascade at
// the database level.
func (r *ClientRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM clients WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Standings loads the full scoring input for the loyalty ranking: every
// client's points together with its service-order count.  LEFT JOIN so
// clients without orders still rank.
func (r *ClientRepo) Standings(ctx context.Context) ([]loyalty.Standing, error) {
	const q = `SELECT c.id, c.points, COUNT(o.id)
	             FROM clients c
	        LEFT JOIN service_orders o ON o.client_id = c.id
	         GROUP BY c.id, c.points
	         ORDER BY c.id`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []loyalty.Standing{}
	for rows.Next() {
		var s loyalty.Standing
		if err := rows.Scan(&s.ClientID, &s.Points, &s.OrderCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
