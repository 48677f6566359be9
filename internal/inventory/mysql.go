package inventory

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so the store can run inside
// a caller-managed transaction when one is available.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// MySQLStore implements StockStore over the 'products' table.
type MySQLStore struct {
	DB DBTX
}

func NewMySQLStore(db DBTX) *MySQLStore {
	return &MySQLStore{DB: db}
}

// TryDeduct is the single conditional write that guards the non-negative
// stock invariant. The WHERE clause re-checks the stock at write time, so a
// concurrent checkout that got there first simply makes this one miss.
func (s *MySQLStore) TryDeduct(ctx context.Context, productID int64, qtyKg float64) (bool, float64, error) {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE products
		SET stock_kg = stock_kg - ?, updated_at = NOW()
		WHERE id = ? AND stock_kg >= ?`,
		qtyKg, productID, qtyKg)
	if err != nil {
		return false, 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}
	if affected == 1 {
		return true, 0, nil
	}

	// The guard failed: either the product is gone or the stock is short.
	var available float64
	err = s.DB.QueryRowContext(ctx, "SELECT stock_kg FROM products WHERE id = ?", productID).Scan(&available)
	if err == sql.ErrNoRows {
		return false, 0, ErrProductNotFound
	}
	if err != nil {
		return false, 0, err
	}
	return false, available, nil
}

func (s *MySQLStore) AddBack(ctx context.Context, productID int64, qtyKg float64) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE products
		SET stock_kg = stock_kg + ?, updated_at = NOW()
		WHERE id = ?`,
		qtyKg, productID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
