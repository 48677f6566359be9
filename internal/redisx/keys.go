package redisx

import "time"

const (
	// Session cart hash: cart:{user_id}, field = product id, value = quantity kg
	KeyCart = "cart:%d"

	// Payment callback dedup: dedup:payment:{order_number}:{status}
	KeyPaymentDedup = "dedup:payment:%s:%s"
)

var (
	TTLCart         = 7 * 24 * time.Hour
	TTLPaymentDedup = 48 * time.Hour
)
