package client

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

const cartStorageKey = "cart"

// CartItem is one cart line. Lines are keyed by product id plus the
// sort-normalized size selection: the same product with different size
// sets makes distinct lines.
type CartItem struct {
	ProductID int      `json:"id"`
	Title     string   `json:"title"`
	Price     float64  `json:"price"`
	Image     string   `json:"image,omitempty"`
	SellerID  int      `json:"seller_id,omitempty"`
	Sizes     []string `json:"sizes,omitempty"`
	Quantity  int      `json:"quantity"`
}

// Cart holds the locally persisted, non-authoritative cart state.
// Not safe for concurrent use.
type Cart struct {
	storage Storage
	items   []CartItem
}

// NewCart rehydrates the cart from storage. Missing or malformed state
// starts an empty cart.
func NewCart(storage Storage) *Cart {
	c := &Cart{storage: storage}
	if data, err := storage.Load(cartStorageKey); err == nil && len(data) > 0 {
		var items []CartItem
		if err := json.Unmarshal(data, &items); err == nil {
			c.items = items
		}
	}
	return c
}

func lineKey(productID int, sizes []string) string {
	normalized := append([]string{}, sizes...)
	sort.Strings(normalized)
	return strconv.Itoa(productID) + "|" + strings.Join(normalized, ",")
}

func (c *Cart) save() {
	data, err := json.Marshal(c.items)
	if err != nil {
		return
	}
	c.storage.Save(cartStorageKey, data)
}

// Add puts one unit of the product in the cart. A line matching the
// product and size selection is incremented, otherwise a new line with
// quantity 1 is appended.
func (c *Cart) Add(item CartItem) {
	key := lineKey(item.ProductID, item.Sizes)
	for i := range c.items {
		if lineKey(c.items[i].ProductID, c.items[i].Sizes) == key {
			c.items[i].Quantity++
			c.save()
			return
		}
	}
	item.Quantity = 1
	c.items = append(c.items, item)
	c.save()
}

// Remove drops the line matching the product and size selection.
func (c *Cart) Remove(productID int, sizes []string) {
	key := lineKey(productID, sizes)
	for i := range c.items {
		if lineKey(c.items[i].ProductID, c.items[i].Sizes) == key {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.save()
			return
		}
	}
}

func (c *Cart) Clear() {
	c.items = nil
	c.save()
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []CartItem {
	return append([]CartItem{}, c.items...)
}

func (c *Cart) TotalPrice() float64 {
	var total float64
	for _, item := range c.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// ProductLister resolves seller ids for cart lines that don't carry one.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]ProductSummary, error)
}

// RemoveOwned drops cart lines whose product belongs to the newly
// authenticated user. A line's own seller id is consulted when present;
// missing seller ids are resolved with a single product-list fetch. If
// that fetch fails the cart is left unchanged.
func (c *Cart) RemoveOwned(ctx context.Context, userID int, api ProductLister) error {
	needFetch := false
	for _, item := range c.items {
		if item.SellerID == 0 {
			needFetch = true
			break
		}
	}

	sellers := map[int]int{}
	if needFetch {
		products, err := api.ListProducts(ctx)
		if err != nil {
			return err
		}
		for _, p := range products {
			sellers[p.ID] = p.SellerID
		}
	}

	kept := c.items[:0]
	changed := false
	for _, item := range c.items {
		sellerID := item.SellerID
		if sellerID == 0 {
			sellerID = sellers[item.ProductID]
		}
		if sellerID == userID {
			changed = true
			continue
		}
		kept = append(kept, item)
	}
	c.items = kept

	if changed {
		c.save()
	}
	return nil
}
