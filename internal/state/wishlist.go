package state

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeanogram/storefront-cli/internal/api"
	"github.com/jeanogram/storefront-cli/internal/model"
	"github.com/jeanogram/storefront-cli/internal/service"
)

// clearConcurrency bounds the fan-out of ClearAll toggle calls.
const clearConcurrency = 4

// Wishlist is the optimistic container for wishlist membership. Members are
// keyed by product id; membership is toggled, never counted.
type Wishlist struct {
	guard

	svc   service.WishlistService
	creds api.TokenSource
	log   *zap.Logger

	items []model.WishlistItem // guarded by guard.data
}

// NewWishlist constructs the wishlist container.
func NewWishlist(svc service.WishlistService, creds api.TokenSource, log *zap.Logger) *Wishlist {
	if log == nil {
		log = zap.NewNop()
	}
	return &Wishlist{svc: svc, creds: creds, log: log}
}

// Items returns a copy of the current membership.
func (w *Wishlist) Items() []model.WishlistItem {
	w.data.RLock()
	defer w.data.RUnlock()
	return append([]model.WishlistItem(nil), w.items...)
}

func (w *Wishlist) setItems(items []model.WishlistItem) {
	w.data.Lock()
	w.items = items
	w.data.Unlock()
}

// Contains reports membership of productID in the current local state.
func (w *Wishlist) Contains(productID int64) bool {
	w.data.RLock()
	defer w.data.RUnlock()
	return indexOf(w.items, productID) >= 0
}

func indexOf(items []model.WishlistItem, productID int64) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Load replaces the membership wholesale from the server; empty without a
// credential, per the authenticated-resource convention.
func (w *Wishlist) Load(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.creds.Credential() == "" {
		w.setItems(nil)
		return nil
	}

	w.setLoading(true)
	defer w.setLoading(false)

	items, err := w.svc.Get(ctx)
	if err != nil {
		w.setErr(err)
		return err
	}
	w.setItems(items)
	w.setErr(nil)
	return nil
}

// Toggle flips membership optimistically and rolls back on failure. Toggling
// the same product twice returns membership to its original state.
func (w *Wishlist) Toggle(ctx context.Context, productID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	snapshot := w.Items()
	if i := indexOf(snapshot, productID); i >= 0 {
		next := append([]model.WishlistItem(nil), snapshot[:i]...)
		w.setItems(append(next, snapshot[i+1:]...))
	} else {
		// Placeholder member; a later Load fills in name/price/image.
		next := append([]model.WishlistItem(nil), snapshot...)
		w.setItems(append(next, model.WishlistItem{ProductID: productID}))
	}

	w.setLoading(true)
	defer w.setLoading(false)

	if err := w.svc.Toggle(ctx, productID); err != nil {
		w.setItems(snapshot)
		w.setErr(err)
		w.log.Warn("wishlist toggle rolled back",
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
		return err
	}
	w.setErr(nil)
	return nil
}

// ClearAll toggles every current member off, a few at a time. An individual
// failure is logged and the member kept; the rest proceed. It succeeds only
// if the local list is empty afterward; partial failures are an error, not
// a silent success.
func (w *Wishlist) ClearAll(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	members := w.Items()
	if len(members) == 0 {
		return nil
	}

	w.setLoading(true)
	defer w.setLoading(false)

	removed := make([]bool, len(members))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(clearConcurrency)
	for i, it := range members {
		i, it := i, it
		g.Go(func() error {
			if err := w.svc.Toggle(ctx, it.ProductID); err != nil {
				w.log.Warn("wishlist clear: member kept",
					zap.Int64("product_id", it.ProductID),
					zap.Error(err),
				)
				return nil // keep going; the member stays
			}
			removed[i] = true
			return nil
		})
	}
	_ = g.Wait()

	kept := []model.WishlistItem{}
	for i, it := range members {
		if !removed[i] {
			kept = append(kept, it)
		}
	}
	w.setItems(kept)

	if len(kept) > 0 {
		err := fmt.Errorf("wishlist clear incomplete: %d of %d left", len(kept), len(members))
		w.setErr(err)
		return err
	}
	w.setErr(nil)
	return nil
}
