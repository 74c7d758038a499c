package repository

import (
	"context"
	"database/sql"

	"github.com/adamwrona/airport-ops/internal/model"
)

// EmployeeRepo persists back-office staff records.
type EmployeeRepo struct{ DB *sql.DB }

func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{DB: db} }

// Create inserts an employee row for a freshly registered user.
func (r *EmployeeRepo) Create(ctx context.Context, userID uint64, position string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO employees (user_id, position, hired_at) VALUES (?,?,NOW())",
		userID, position)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUserID fetches the employee owned by a user account.
func (r *EmployeeRepo) GetByUserID(ctx context.Context, userID uint64) (model.Employee, error) {
	var e model.Employee
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,position,hired_at,created_at FROM employees WHERE user_id=? LIMIT 1",
		userID).Scan(&e.ID, &e.UserID, &e.Position, &e.HiredAt, &e.CreatedAt)
	return e, err
}
