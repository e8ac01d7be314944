package state

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jeanogram/storefront-cli/internal/model"
	"github.com/jeanogram/storefront-cli/internal/service"
)

type staticCreds string

func (s staticCreds) Credential() string { return string(s) }

type fakeCartSvc struct {
	mu sync.Mutex

	items     []model.CartItem
	canonical []model.CartItem
	err       error

	// When set, a mutator signals entered and then blocks until release is
	// closed, so a test can observe the optimistic state mid-flight.
	entered chan struct{}
	release chan struct{}

	getCalls int
}

var _ service.CartService = (*fakeCartSvc)(nil)

func (f *fakeCartSvc) Get(context.Context) ([]model.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.CartItem(nil), f.items...), nil
}

func (f *fakeCartSvc) mutate() ([]model.CartItem, error) {
	f.mu.Lock()
	entered, release := f.entered, f.release
	f.mu.Unlock()
	if entered != nil {
		close(entered)
		<-release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.canonical, nil
}

func (f *fakeCartSvc) Add(context.Context, int64, int) ([]model.CartItem, error) {
	return f.mutate()
}
func (f *fakeCartSvc) UpdateQuantity(context.Context, int64, int) ([]model.CartItem, error) {
	return f.mutate()
}
func (f *fakeCartSvc) Remove(context.Context, int64) ([]model.CartItem, error) { return f.mutate() }
func (f *fakeCartSvc) Clear(context.Context) ([]model.CartItem, error)         { return f.mutate() }

func TestCart_LoadWithoutCredential(t *testing.T) {
	t.Parallel()

	svc := &fakeCartSvc{items: []model.CartItem{{ItemID: 1}}}
	c := NewCart(svc, staticCreds(""), nil)

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Items()) != 0 {
		t.Fatalf("signed-out cart must be empty, got %v", c.Items())
	}
	if svc.getCalls != 0 {
		t.Fatalf("no request may be issued without a credential")
	}
}

func TestCart_Load(t *testing.T) {
	t.Parallel()

	svc := &fakeCartSvc{items: []model.CartItem{{ItemID: 1, ProductID: 3, Quantity: 1}}}
	c := NewCart(svc, staticCreds("tok"), nil)

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	items := c.Items()
	if len(items) != 1 || items[0].ItemID != 1 {
		t.Fatalf("items=%+v", items)
	}
}

func TestCart_OptimisticUpdateVisibleMidFlight(t *testing.T) {
	t.Parallel()

	svc := &fakeCartSvc{
		items:   []model.CartItem{{ItemID: 1, ProductID: 3, Quantity: 1}},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := NewCart(svc, staticCreds("tok"), nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- c.UpdateQuantity(context.Background(), 1, 2) }()

	<-svc.entered
	items := c.Items()
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("optimistic quantity not visible mid-flight: %+v", items)
	}
	if !c.Loading() {
		t.Fatalf("Loading must report the in-flight mutation")
	}

	close(svc.release)
	if err := <-done; err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if got := c.Items()[0].Quantity; got != 2 {
		t.Fatalf("final quantity=%d, want 2", got)
	}
	if c.Err() != nil {
		t.Fatalf("Err=%v", c.Err())
	}
}

func TestCart_RollbackOnFailure(t *testing.T) {
	t.Parallel()

	svc := &fakeCartSvc{items: []model.CartItem{{ItemID: 1, ProductID: 3, Quantity: 1}}}
	c := NewCart(svc, staticCreds("tok"), nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	boom := errors.New("boom")
	svc.mu.Lock()
	svc.err = boom
	svc.mu.Unlock()

	if err := c.UpdateQuantity(context.Background(), 1, 2); !errors.Is(err, boom) {
		t.Fatalf("want propagated failure, got %v", err)
	}
	if got := c.Items()[0].Quantity; got != 1 {
		t.Fatalf("quantity=%d after rollback, want 1", got)
	}
	if !errors.Is(c.Err(), boom) {
		t.Fatalf("Err=%v, want recorded failure", c.Err())
	}
}

func TestCart_AddReconcilesWithCanonical(t *testing.T) {
	t.Parallel()

	svc := &fakeCartSvc{
		canonical: []model.CartItem{{ItemID: 42, ProductID: 3, Name: "Jeans", Quantity: 1}},
	}
	c := NewCart(svc, staticCreds("tok"), nil)

	if err := c.Add(context.Background(), 3, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	items := c.Items()
	if len(items) != 1 || items[0].ItemID != 42 || items[0].Name != "Jeans" {
		t.Fatalf("canonical reconcile: %+v", items)
	}
}

func TestCart_AddMergesExistingLine(t *testing.T) {
	t.Parallel()

	svc := &fakeCartSvc{items: []model.CartItem{{ItemID: 1, ProductID: 3, Quantity: 1}}}
	c := NewCart(svc, staticCreds("tok"), nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// No canonical response: the optimistic merge is the final state.
	if err := c.Add(context.Background(), 3, 2); err != nil {
		t.Fatalf("Add: %v", err)
	}
	items := c.Items()
	if len(items) != 1 || items[0].Quantity != 3 {
		t.Fatalf("merged line: %+v", items)
	}
}

func TestCart_RemoveAndClear(t *testing.T) {
	t.Parallel()

	svc := &fakeCartSvc{items: []model.CartItem{
		{ItemID: 1, ProductID: 3, Quantity: 1},
		{ItemID: 2, ProductID: 4, Quantity: 2},
	}}
	c := NewCart(svc, staticCreds("tok"), nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := c.Remove(context.Background(), 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	items := c.Items()
	if len(items) != 1 || items[0].ItemID != 2 {
		t.Fatalf("after remove: %+v", items)
	}

	if err := c.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(c.Items()) != 0 {
		t.Fatalf("after clear: %+v", c.Items())
	}
}

func TestCart_MutationsSerialized(t *testing.T) {
	t.Parallel()

	svc := &fakeCartSvc{items: []model.CartItem{{ItemID: 1, ProductID: 3, Quantity: 0}}}
	c := NewCart(svc, staticCreds("tok"), nil)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Add(context.Background(), 3, 1)
		}()
	}
	wg.Wait()

	if got := c.Items()[0].Quantity; got != 10 {
		t.Fatalf("quantity=%d after 10 serialized adds, want 10", got)
	}
}

func TestCart_LoadFailureRecorded(t *testing.T) {
	t.Parallel()

	boom := errors.New("down")
	svc := &fakeCartSvc{err: boom}
	c := NewCart(svc, staticCreds("tok"), nil)

	if err := c.Load(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("want load failure, got %v", err)
	}
	if !errors.Is(c.Err(), boom) {
		t.Fatalf("Err=%v", c.Err())
	}
	// The next successful load clears the recorded failure.
	svc.mu.Lock()
	svc.err = nil
	svc.mu.Unlock()
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Err() != nil {
		t.Fatalf("Err must clear on success, got %v", c.Err())
	}
}
