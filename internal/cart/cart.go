// Package cart keeps a shopper's selected market meals.
package cart

import (
	"fmt"
	"math"
	"sync"

	"calorina/internal/catalog"
	"calorina/internal/shared"
)

// Item is a meal in the cart with its quantity.
type Item struct {
	catalog.Meal
	Quantity int `json:"quantity"`
}

// Cart is safe for concurrent use. The zero value is an empty cart.
type Cart struct {
	mu    sync.Mutex
	items []Item
}

// Add puts one more unit of meal in the cart.
func (c *Cart) Add(meal catalog.Meal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == meal.ID {
			c.items[i].Quantity++
			return
		}
	}
	c.items = append(c.items, Item{Meal: meal, Quantity: 1})
}

// Remove drops a meal from the cart.
func (c *Cart) Remove(mealID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(mealID)
}

func (c *Cart) remove(mealID int64) {
	for i := range c.items {
		if c.items[i].ID == mealID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the quantity of a meal already in the cart. A quantity
// of zero or less removes it.
func (c *Cart) UpdateQuantity(mealID int64, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.remove(mealID)
		return nil
	}
	for i := range c.items {
		if c.items[i].ID == mealID {
			c.items[i].Quantity = quantity
			return nil
		}
	}
	return fmt.Errorf("cart item %d: %w", mealID, shared.ErrNotFound)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Items returns a copy of the cart contents in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Item(nil), c.items...)
}

// TotalItems is the sum of all quantities.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// TotalPrice is the sum of price times quantity, rounded to cents.
func (c *Cart) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, it := range c.items {
		total += it.Price * float64(it.Quantity)
	}
	return math.Round(total*100) / 100
}

// Summary is a point-in-time view of the cart.
type Summary struct {
	Items      []Item  `json:"items"`
	TotalItems int     `json:"totalItems"`
	TotalPrice float64 `json:"totalPrice"`
}

// Summary returns the cart contents with totals.
func (c *Cart) Summary() Summary {
	return Summary{Items: c.Items(), TotalItems: c.TotalItems(), TotalPrice: c.TotalPrice()}
}
