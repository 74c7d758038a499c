package repository

import (
	"context"
	"database/sql"

	"github.com/adamwrona/airport-ops/internal/model"
)

// ServiceRepo persists purchasable services and client orders.
type ServiceRepo struct{ DB *sql.DB }

func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{DB: db} }

const serviceCols = "id,name,description,price_cents,created_at,updated_at"

// Create inserts a service and returns its ID.
func (r *ServiceRepo) Create(ctx context.Context, s model.Service) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO services (name, description, price_cents) VALUES (?,?,?)",
		s.Name, s.Description, s.PriceCents)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a service by id.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (model.Service, error) {
	var s model.Service
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+serviceCols+" FROM services WHERE id=? LIMIT 1", id).
		Scan(&s.ID, &s.Name, &s.Description, &s.PriceCents, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// List returns all services ordered by id.
func (r *ServiceRepo) List(ctx context.Context) ([]model.Service, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+serviceCols+" FROM services ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Service{}
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.PriceCents,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update overwrites the mutable fields of a service.
func (r *ServiceRepo) Update(ctx context.Context, s model.Service) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE services SET name=?, description=?, price_cents=?, updated_at=NOW() WHERE id=?",
		s.Name, s.Description, s.PriceCents, s.ID)
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

// Delete removes a service.  ErrConflict is returned while orders still
// reference it.
func (r *ServiceRepo) Delete(ctx context.Context, id uint64) error {
	var orders int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM service_orders WHERE service_id=?", id).Scan(&orders)
	if err != nil {
		return err
	}
	if orders > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM services WHERE id=?", id)
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

// CreateOrder inserts an order for a client.  The total is quantity
// times the current unit price, read inside the same transaction.
func (r *ServiceRepo) CreateOrder(ctx context.Context, clientID, serviceID uint64, quantity uint32) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var price uint32
	err = tx.QueryRowContext(ctx,
		"SELECT price_cents FROM services WHERE id=? LIMIT 1", serviceID).Scan(&price)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO service_orders (client_id, service_id, quantity, total_price_cents) VALUES (?,?,?,?)",
		clientID, serviceID, quantity, price*quantity)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// OrderHistoryItem is one row of a client's purchase history with the
// service name joined in for display.
type OrderHistoryItem struct {
	Order       model.ServiceOrder
	ServiceName string
}

// OrdersByClient returns a client's order history, newest first.
func (r *ServiceRepo) OrdersByClient(ctx context.Context, clientID uint64) ([]OrderHistoryItem, error) {
	const q = `SELECT o.id, o.client_id, o.service_id, o.quantity, o.total_price_cents, o.created_at, s.name
	             FROM service_orders o
	             JOIN services s ON s.id = o.service_id
	            WHERE o.client_id = ?
	            ORDER BY o.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []OrderHistoryItem{}
	for rows.Next() {
		var it OrderHistoryItem
		if err := rows.Scan(&it.Order.ID, &it.Order.ClientID, &it.Order.ServiceID,
			&it.Order.Quantity, &it.Order.TotalPriceCents, &it.Order.CreatedAt,
			&it.ServiceName); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
