package models

// CartItem is one line of a shopping cart: a product and how many kilograms.
type CartItem struct {
	ProductID  int64   `json:"productId"`
	QuantityKg float64 `json:"quantityKg"`
}

// Cart is the value object handed to checkout. The web layer loads it from
// the session store; the order core only ever sees this snapshot.
type Cart struct {
	Items []CartItem `json:"items"`
}

// IsEmpty reports whether the cart has no lines with a positive quantity.
func (c Cart) IsEmpty() bool {
	for _, it := range c.Items {
		if it.QuantityKg > 0 {
			return false
		}
	}
	return true
}

// Quantity returns the current quantity for a product, or 0.
func (c Cart) Quantity(productID int64) float64 {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it.QuantityKg
		}
	}
	return 0
}
