package orders

import "github.com/sajanbk/meatshop-golang/internal/models"

// Delivery charge tiers, in NPR.
const (
	FreeDeliveryThreshold    = 2000.0
	ReducedDeliveryThreshold = 1000.0
	ReducedDeliveryCharge    = 25.0
	DefaultDeliveryCharge    = 50.0
)

// DeliveryCharge computes the delivery charge for a subtotal. Orders of
// NPR 2000 and up ship free, orders of NPR 1000 and up ship reduced.
// Below that the area's own charge applies when one is configured,
// otherwise the flat default.
func DeliveryCharge(subtotal float64, areaCharge *float64) float64 {
	if subtotal >= FreeDeliveryThreshold {
		return 0
	}
	if subtotal >= ReducedDeliveryThreshold {
		return ReducedDeliveryCharge
	}
	if areaCharge != nil {
		return *areaCharge
	}
	return DefaultDeliveryCharge
}

// Subtotal sums the line totals of the snapshot items.
func Subtotal(items []models.OrderItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.TotalPrice
	}
	return sum
}
