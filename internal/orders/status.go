package orders

import "github.com/sajanbk/meatshop-golang/internal/models"

// validNext is the full order status machine. Anything not listed here is an
// invalid transition. Cancellation is only reachable from pending/confirmed;
// once an order is preparing, the stock and logistics commitment is treated
// as irreversible.
var validNext = map[models.OrderStatus]map[models.OrderStatus]bool{
	models.OrderStatusPending: {
		models.OrderStatusConfirmed: true,
		models.OrderStatusCancelled: true,
	},
	models.OrderStatusConfirmed: {
		models.OrderStatusPreparing: true,
		models.OrderStatusCancelled: true,
	},
	models.OrderStatusPreparing: {
		models.OrderStatusOutForDelivery: true,
	},
	models.OrderStatusOutForDelivery: {
		models.OrderStatusDelivered: true,
	},
	models.OrderStatusDelivered: {},
	models.OrderStatusCancelled: {},
}

// CanTransition reports whether from -> to is a defined transition.
func CanTransition(from, to models.OrderStatus) bool {
	return validNext[from][to]
}

// IsTerminal reports whether no further transition is defined from s.
func IsTerminal(s models.OrderStatus) bool {
	return len(validNext[s]) == 0
}
