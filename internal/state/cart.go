// Package state holds the in-memory resource containers: optimistic cart
// and wishlist state, and the read-only admin dashboard aggregation.
//
// A container owns its resource once loaded. Every mutation goes snapshot →
// optimistic apply → network call → reconcile-or-rollback. Mutations on one
// container are serialized by its mutex so two calls can never interleave
// their snapshots, while reads go through a separate data lock and observe
// the optimistic state even while the network call is in flight.
package state

import (
	"context"

	"go.uber.org/zap"

	"github.com/jeanogram/storefront-cli/internal/api"
	"github.com/jeanogram/storefront-cli/internal/model"
	"github.com/jeanogram/storefront-cli/internal/service"
)

// Cart is the optimistic container for the shopping cart.
type Cart struct {
	guard

	svc   service.CartService
	creds api.TokenSource
	log   *zap.Logger

	items []model.CartItem // guarded by guard.data
}

// NewCart constructs the cart container.
func NewCart(svc service.CartService, creds api.TokenSource, log *zap.Logger) *Cart {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cart{svc: svc, creds: creds, log: log}
}

// Items returns a copy of the current best-known cart.
func (c *Cart) Items() []model.CartItem {
	c.data.RLock()
	defer c.data.RUnlock()
	return append([]model.CartItem(nil), c.items...)
}

func (c *Cart) setItems(items []model.CartItem) {
	c.data.Lock()
	c.items = items
	c.data.Unlock()
}

// Load replaces the cart wholesale from the server. Without a credential it
// resets to empty and reports no error; that is the authenticated-resource
// convention throughout the client.
func (c *Cart) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.creds.Credential() == "" {
		c.setItems(nil)
		return nil
	}

	c.setLoading(true)
	defer c.setLoading(false)

	items, err := c.svc.Get(ctx)
	if err != nil {
		c.setErr(err)
		return err
	}
	c.setItems(items)
	c.setErr(nil)
	return nil
}

// Add appends the product optimistically, then reconciles with the server's
// canonical cart. The optimistic line has no ItemID yet; the reconcile
// supplies it.
func (c *Cart) Add(ctx context.Context, productID int64, quantity int) error {
	return c.mutate(ctx, func(items []model.CartItem) []model.CartItem {
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity += quantity
				return items
			}
		}
		return append(items, model.CartItem{ProductID: productID, Quantity: quantity})
	}, func(ctx context.Context) ([]model.CartItem, error) {
		return c.svc.Add(ctx, productID, quantity)
	})
}

// UpdateQuantity sets a line's quantity.
func (c *Cart) UpdateQuantity(ctx context.Context, itemID int64, quantity int) error {
	return c.mutate(ctx, func(items []model.CartItem) []model.CartItem {
		for i := range items {
			if items[i].ItemID == itemID {
				items[i].Quantity = quantity
			}
		}
		return items
	}, func(ctx context.Context) ([]model.CartItem, error) {
		return c.svc.UpdateQuantity(ctx, itemID, quantity)
	})
}

// Remove drops a line.
func (c *Cart) Remove(ctx context.Context, itemID int64) error {
	return c.mutate(ctx, func(items []model.CartItem) []model.CartItem {
		out := items[:0]
		for _, it := range items {
			if it.ItemID != itemID {
				out = append(out, it)
			}
		}
		return out
	}, func(ctx context.Context) ([]model.CartItem, error) {
		return c.svc.Remove(ctx, itemID)
	})
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) error {
	return c.mutate(ctx, func([]model.CartItem) []model.CartItem {
		return []model.CartItem{}
	}, func(ctx context.Context) ([]model.CartItem, error) {
		return c.svc.Clear(ctx)
	})
}

// mutate runs one serialized optimistic mutation: snapshot, apply locally,
// call the server, then either adopt the server's canonical cart (when it
// returned one) or keep the optimistic result; on failure restore the
// snapshot, record the error and re-raise it so the caller can notify.
func (c *Cart) mutate(ctx context.Context, apply func([]model.CartItem) []model.CartItem, call func(context.Context) ([]model.CartItem, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.Items()
	c.setItems(apply(c.Items()))

	c.setLoading(true)
	defer c.setLoading(false)

	canonical, err := call(ctx)
	if err != nil {
		c.setItems(snapshot)
		c.setErr(err)
		c.log.Warn("cart mutation rolled back", zap.Error(err))
		return err
	}
	if canonical != nil {
		c.setItems(canonical)
	}
	c.setErr(nil)
	return nil
}
