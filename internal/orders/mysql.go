package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/sajanbk/meatshop-golang/internal/models"
)

const mysqlDuplicateEntry = 1062

// MySQLStore implements OrderStore over the orders / order_items /
// order_audit_log tables.
type MySQLStore struct {
	DB *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{DB: db}
}

func (s *MySQLStore) Insert(ctx context.Context, o *models.Order) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO orders
			(order_number, user_id, status, payment_method, payment_status,
			 subtotal, delivery_charge, total_amount,
			 delivery_address, delivery_phone, special_instructions,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OrderNumber, o.UserID, o.Status, o.PaymentMethod, o.PaymentStatus,
		o.Subtotal, o.DeliveryCharge, o.TotalAmount,
		o.DeliveryAddress, o.DeliveryPhone, o.SpecialInstructions,
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrDuplicateOrderNumber
		}
		return err
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for i := range o.Items {
		it := &o.Items[i]
		itemRes, err := tx.ExecContext(ctx, `
			INSERT INTO order_items
				(order_id, product_id, quantity_kg, price_per_kg, total_price)
			VALUES (?, ?, ?, ?, ?)`,
			orderID, it.ProductID, it.QuantityKg, it.PricePerKg, it.TotalPrice)
		if err != nil {
			return err
		}
		it.OrderID = orderID
		if it.ID, err = itemRes.LastInsertId(); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	o.ID = orderID
	return nil
}

func (s *MySQLStore) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	return s.getOne(ctx, "id = ?", id)
}

func (s *MySQLStore) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	return s.getOne(ctx, "order_number = ?", number)
}

func (s *MySQLStore) getOne(ctx context.Context, where string, arg any) (*models.Order, error) {
	var o models.Order
	query := `
		SELECT id, order_number, user_id, status, payment_method, payment_status,
		       transaction_id, subtotal, delivery_charge, total_amount,
		       delivery_address, delivery_phone, special_instructions,
		       created_at, updated_at
		FROM orders WHERE ` + where
	err := s.DB.QueryRowContext(ctx, query, arg).Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.PaymentMethod, &o.PaymentStatus,
		&o.TransactionID, &o.Subtotal, &o.DeliveryCharge, &o.TotalAmount,
		&o.DeliveryAddress, &o.DeliveryPhone, &o.SpecialInstructions,
		&o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity_kg, oi.price_per_kg, oi.total_price,
		       p.name
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = ?`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.QuantityKg,
			&it.PricePerKg, &it.TotalPrice, &it.ProductName); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus is a guarded write: the WHERE clause pins the expected current
// status so two concurrent transitions cannot both win.
func (s *MySQLStore) UpdateStatus(ctx context.Context, orderID int64, from, to models.OrderStatus, payment *models.PaymentStatus) error {
	var (
		res sql.Result
		err error
	)
	if payment != nil {
		res, err = s.DB.ExecContext(ctx, `
			UPDATE orders SET status = ?, payment_status = ?, updated_at = NOW()
			WHERE id = ? AND status = ?`,
			to, *payment, orderID, from)
	} else {
		res, err = s.DB.ExecContext(ctx, `
			UPDATE orders SET status = ?, updated_at = NOW()
			WHERE id = ? AND status = ?`,
			to, orderID, from)
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQLStore) SetPaymentStatus(ctx context.Context, orderID int64, status models.PaymentStatus, transactionID *string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE orders SET payment_status = ?, transaction_id = COALESCE(?, transaction_id), updated_at = NOW()
		WHERE id = ?`,
		status, transactionID, orderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQLStore) AppendAudit(ctx context.Context, e *models.OrderAuditEntry) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO order_audit_log (order_id, actor, from_status, to_status, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.OrderID, e.Actor, e.FromStatus, e.ToStatus, e.Reason, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append order audit entry: %w", err)
	}
	return nil
}

// ListByUser returns a user's orders, newest first, without items.
func (s *MySQLStore) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, order_number, user_id, status, payment_method, payment_status,
		       transaction_id, subtotal, delivery_charge, total_amount,
		       delivery_address, delivery_phone, special_instructions,
		       created_at, updated_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

// ListAll returns every order, newest first, optionally filtered by status.
func (s *MySQLStore) ListAll(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	query := `
		SELECT id, order_number, user_id, status, payment_method, payment_status,
		       transaction_id, subtotal, delivery_charge, total_amount,
		       delivery_address, delivery_phone, special_instructions,
		       created_at, updated_at
		FROM orders`
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func scanOrders(rows *sql.Rows) ([]models.Order, error) {
	var out []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.PaymentMethod, &o.PaymentStatus,
			&o.TransactionID, &o.Subtotal, &o.DeliveryCharge, &o.TotalAmount,
			&o.DeliveryAddress, &o.DeliveryPhone, &o.SpecialInstructions,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
