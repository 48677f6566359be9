package cartstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/sajanbk/meatshop-golang/internal/models"
	"github.com/sajanbk/meatshop-golang/internal/redisx"
)

// Carts holds session carts in Redis, one hash per user: field = product id,
// value = quantity in kg. Checkout reads the hash into a models.Cart value;
// the order core never touches this store.
type Carts struct {
	RDB *redis.Client
}

func New(rdb *redis.Client) *Carts {
	return &Carts{RDB: rdb}
}

func key(userID int64) string {
	return fmt.Sprintf(redisx.KeyCart, userID)
}

// Get loads the whole cart. A missing hash is an empty cart, not an error.
func (c *Carts) Get(ctx context.Context, userID int64) (models.Cart, error) {
	fields, err := c.RDB.HGetAll(ctx, key(userID)).Result()
	if err != nil {
		return models.Cart{}, err
	}

	cart := models.Cart{}
	for pid, qty := range fields {
		productID, err := strconv.ParseInt(pid, 10, 64)
		if err != nil {
			continue
		}
		quantity, err := strconv.ParseFloat(qty, 64)
		if err != nil || quantity <= 0 {
			continue
		}
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, QuantityKg: quantity})
	}
	return cart, nil
}

// AddItem increments the stored quantity for a product and refreshes the TTL.
// Returns the new quantity.
func (c *Carts) AddItem(ctx context.Context, userID, productID int64, qtyKg float64) (float64, error) {
	k := key(userID)
	newQty, err := c.RDB.HIncrByFloat(ctx, k, strconv.FormatInt(productID, 10), qtyKg).Result()
	if err != nil {
		return 0, err
	}
	_ = c.RDB.Expire(ctx, k, redisx.TTLCart).Err()
	return newQty, nil
}

// SetItem overwrites the quantity for a product. Zero removes the line.
func (c *Carts) SetItem(ctx context.Context, userID, productID int64, qtyKg float64) error {
	k := key(userID)
	if qtyKg <= 0 {
		return c.RDB.HDel(ctx, k, strconv.FormatInt(productID, 10)).Err()
	}
	if err := c.RDB.HSet(ctx, k, strconv.FormatInt(productID, 10), qtyKg).Err(); err != nil {
		return err
	}
	return c.RDB.Expire(ctx, k, redisx.TTLCart).Err()
}

// RemoveItem deletes one line from the cart.
func (c *Carts) RemoveItem(ctx context.Context, userID, productID int64) error {
	return c.RDB.HDel(ctx, key(userID), strconv.FormatInt(productID, 10)).Err()
}

// Clear drops the whole cart, called after a successful checkout.
func (c *Carts) Clear(ctx context.Context, userID int64) error {
	return c.RDB.Del(ctx, key(userID)).Err()
}
