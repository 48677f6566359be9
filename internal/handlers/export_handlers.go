package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
)

// ExportOrdersExcel is the handler for GET /v1/admin/orders/export
// Optional ?from=YYYY-MM-DD&to=YYYY-MM-DD narrows the range.
func (h *Handlers) ExportOrdersExcel(c *gin.Context) {
	query := `
		SELECT o.order_number, u.full_name, o.status, o.payment_method, o.payment_status,
		       o.subtotal, o.delivery_charge, o.total_amount, o.delivery_address,
		       o.delivery_phone, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id`
	var args []any
	if from := c.Query("from"); from != "" {
		query += " WHERE DATE(o.created_at) >= ?"
		args = append(args, from)
		if to := c.Query("to"); to != "" {
			query += " AND DATE(o.created_at) <= ?"
			args = append(args, to)
		}
	}
	query += " ORDER BY o.created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
		return
	}

	// Header row
	headers := []string{
		"OrderNumber", "Customer", "Status", "PaymentMethod", "PaymentStatus",
		"Subtotal", "DeliveryCharge", "Total", "DeliveryAddress", "DeliveryPhone", "PlacedAt",
	}
	headerRow := sheet.AddRow()
	for _, name := range headers {
		headerRow.AddCell().SetValue(name)
	}

	// Data rows
	for rows.Next() {
		var (
			orderNumber, customer, status, method, payStatus string
			address, phone                                   string
			subtotal, deliveryCharge, total                  float64
			createdAt                                        time.Time
		)
		if err := rows.Scan(&orderNumber, &customer, &status, &method, &payStatus,
			&subtotal, &deliveryCharge, &total, &address, &phone, &createdAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order row"})
			return
		}

		row := sheet.AddRow()
		row.AddCell().SetValue(orderNumber)
		row.AddCell().SetValue(customer)
		row.AddCell().SetValue(status)
		row.AddCell().SetValue(method)
		row.AddCell().SetValue(payStatus)
		row.AddCell().SetValue(subtotal)
		row.AddCell().SetValue(deliveryCharge)
		row.AddCell().SetValue(total)
		row.AddCell().SetValue(address)
		row.AddCell().SetValue(phone)
		row.AddCell().SetValue(createdAt.Format("2006-01-02 15:04:05"))
	}

	// Set response headers for download
	c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")

	if err := file.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
		return
	}
}
