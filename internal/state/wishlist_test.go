package state

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jeanogram/storefront-cli/internal/model"
	"github.com/jeanogram/storefront-cli/internal/service"
)

type fakeWishSvc struct {
	mu sync.Mutex

	items   []model.WishlistItem
	err     error
	failFor map[int64]bool

	toggled []int64
}

var _ service.WishlistService = (*fakeWishSvc)(nil)

func (f *fakeWishSvc) Get(context.Context) ([]model.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.WishlistItem(nil), f.items...), nil
}

func (f *fakeWishSvc) Toggle(_ context.Context, productID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.failFor[productID] {
		return errors.New("toggle refused")
	}
	f.toggled = append(f.toggled, productID)
	return nil
}

func TestWishlist_LoadWithoutCredential(t *testing.T) {
	t.Parallel()

	svc := &fakeWishSvc{items: []model.WishlistItem{{ProductID: 8}}}
	w := NewWishlist(svc, staticCreds(""), nil)

	if err := w.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(w.Items()) != 0 {
		t.Fatalf("signed-out wishlist must be empty, got %v", w.Items())
	}
}

func TestWishlist_ToggleIsItsOwnInverse(t *testing.T) {
	t.Parallel()

	svc := &fakeWishSvc{items: []model.WishlistItem{{ProductID: 8, Name: "Jacket"}}}
	w := NewWishlist(svc, staticCreds("tok"), nil)
	if err := w.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := w.Toggle(context.Background(), 8); err != nil {
		t.Fatalf("Toggle off: %v", err)
	}
	if w.Contains(8) {
		t.Fatalf("member must be gone after the first toggle")
	}

	if err := w.Toggle(context.Background(), 8); err != nil {
		t.Fatalf("Toggle on: %v", err)
	}
	if !w.Contains(8) {
		t.Fatalf("member must be back after the second toggle")
	}
	if len(w.Items()) != 1 {
		t.Fatalf("items=%+v", w.Items())
	}
}

func TestWishlist_ToggleRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	svc := &fakeWishSvc{
		items:   []model.WishlistItem{{ProductID: 8}},
		failFor: map[int64]bool{9: true},
	}
	w := NewWishlist(svc, staticCreds("tok"), nil)
	if err := w.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := w.Toggle(context.Background(), 9); err == nil {
		t.Fatalf("want toggle failure")
	}
	if w.Contains(9) {
		t.Fatalf("failed add must roll back")
	}
	if !w.Contains(8) {
		t.Fatalf("unrelated member lost in rollback")
	}
	if w.Err() == nil {
		t.Fatalf("failure must be recorded")
	}
}

func TestWishlist_ClearAll(t *testing.T) {
	t.Parallel()

	svc := &fakeWishSvc{items: []model.WishlistItem{
		{ProductID: 1}, {ProductID: 2}, {ProductID: 3},
	}}
	w := NewWishlist(svc, staticCreds("tok"), nil)
	if err := w.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := w.ClearAll(context.Background()); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if len(w.Items()) != 0 {
		t.Fatalf("items left: %+v", w.Items())
	}
	if len(svc.toggled) != 3 {
		t.Fatalf("toggled=%v", svc.toggled)
	}
	if w.Err() != nil {
		t.Fatalf("Err=%v", w.Err())
	}

	// Clearing an empty list is a no-op.
	if err := w.ClearAll(context.Background()); err != nil {
		t.Fatalf("ClearAll on empty: %v", err)
	}
}

func TestWishlist_ClearAllPartialFailure(t *testing.T) {
	t.Parallel()

	svc := &fakeWishSvc{
		items:   []model.WishlistItem{{ProductID: 1}, {ProductID: 2}},
		failFor: map[int64]bool{2: true},
	}
	w := NewWishlist(svc, staticCreds("tok"), nil)
	if err := w.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	err := w.ClearAll(context.Background())
	if err == nil {
		t.Fatalf("partial failure must surface as an error")
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("err=%v", err)
	}
	items := w.Items()
	if len(items) != 1 || items[0].ProductID != 2 {
		t.Fatalf("kept members: %+v", items)
	}
	if w.Err() == nil {
		t.Fatalf("failure must be recorded")
	}
}
