package orders

import (
	"testing"

	"github.com/sajanbk/meatshop-golang/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDeliveryCharge(t *testing.T) {
	area := 80.0

	tests := []struct {
		name       string
		subtotal   float64
		areaCharge *float64
		want       float64
	}{
		{"free at threshold", 2000, nil, 0},
		{"free above threshold", 3500, nil, 0},
		{"reduced at threshold", 1000, nil, 25},
		{"reduced below free", 1999.99, nil, 25},
		{"flat default", 999.99, nil, 50},
		{"flat default small order", 200, nil, 50},
		{"area override on small order", 800, &area, 80},
		{"area override ignored at reduced tier", 1500, &area, 25},
		{"area override ignored at free tier", 2500, &area, 0},
		{"zero subtotal", 0, nil, 50},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeliveryCharge(tc.subtotal, tc.areaCharge))
		})
	}
}

func TestSubtotal(t *testing.T) {
	items := []models.OrderItem{
		{QuantityKg: 2, PricePerKg: 450, TotalPrice: 900},
		{QuantityKg: 0.5, PricePerKg: 1200, TotalPrice: 600},
	}
	assert.Equal(t, 1500.0, Subtotal(items))
	assert.Equal(t, 0.0, Subtotal(nil))
}
