package handlers

import (
	"context"
	"log"
	"time"

	"github.com/sajanbk/meatshop-golang/internal/models"
)

// unpaidOrderCutoff is how long a digital-payment order may sit without a
// confirmed payment before the sweeper cancels it and returns its stock.
const unpaidOrderCutoff = 24 * time.Hour

// ProcessOverdueOrders is called from the background ticker in main. It
// cancels pending orders whose online payment never arrived, which releases
// the reserved stock back to the shelf. COD orders are exempt; those are
// settled at the door.
func (h *Handlers) ProcessOverdueOrders() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rows, err := h.DB.Query(`
		SELECT id, order_number FROM orders
		WHERE status = ?
		  AND payment_status = ?
		  AND payment_method <> ?
		  AND created_at < ?`,
		models.OrderStatusPending, models.PaymentStatusPending,
		models.PaymentCOD, time.Now().Add(-unpaidOrderCutoff))
	if err != nil {
		log.Printf("overdue sweep: query failed: %v", err)
		return
	}
	defer rows.Close()

	type overdue struct {
		id     int64
		number string
	}
	var batch []overdue
	for rows.Next() {
		var o overdue
		if err := rows.Scan(&o.id, &o.number); err != nil {
			log.Printf("overdue sweep: scan failed: %v", err)
			return
		}
		batch = append(batch, o)
	}

	for _, o := range batch {
		if _, err := h.Ledger.Transition(ctx, o.id, models.OrderStatusCancelled, "system"); err != nil {
			// Someone may have confirmed or cancelled it since the query ran.
			log.Printf("overdue sweep: could not cancel %s: %v", o.number, err)
			continue
		}
		log.Printf("overdue sweep: cancelled unpaid order %s", o.number)
	}
}
