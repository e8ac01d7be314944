package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jeanogram/storefront-cli/internal/bus"
	"github.com/jeanogram/storefront-cli/internal/model"
	"github.com/jeanogram/storefront-cli/internal/service"
	"github.com/jeanogram/storefront-cli/internal/session"
)

// Dashboard is the read-only admin aggregation container. It is not
// optimistic: it fetches a page of orders (with the admin→user endpoint
// fallback handled by the order service) and recomputes revenue statistics
// from the normalized list.
type Dashboard struct {
	guard

	svc service.OrderService
	log *zap.Logger

	// now is injectable for wall-clock dependent statistics.
	now func() time.Time

	pageNumber int
	limit      int

	orders []model.Order // guarded by guard.data
}

// NewDashboard constructs the dashboard container fetching the first
// `limit` orders per refresh.
func NewDashboard(svc service.OrderService, limit int, log *zap.Logger) *Dashboard {
	if log == nil {
		log = zap.NewNop()
	}
	if limit <= 0 {
		limit = 10
	}
	return &Dashboard{svc: svc, log: log, now: time.Now, pageNumber: 1, limit: limit}
}

// Watch re-fetches whenever the orders-changed notification fires or the
// session credential changes. The returned cancel detaches both.
func (d *Dashboard) Watch(b *bus.Bus, sess *session.Store) (cancel func()) {
	refresh := func() {
		go func() {
			if err := d.Refresh(context.Background()); err != nil {
				d.log.Warn("dashboard refresh failed", zap.Error(err))
			}
		}()
	}
	unsubBus := b.Subscribe(refresh)
	unsubSess := sess.OnChange(refresh)
	return func() {
		unsubBus()
		unsubSess()
	}
}

// Refresh replaces the underlying order list.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.setLoading(true)
	defer d.setLoading(false)

	orders, err := d.svc.ListAll(ctx, d.pageNumber, d.limit)
	if err != nil {
		d.setErr(err)
		return err
	}
	d.data.Lock()
	d.orders = orders
	d.data.Unlock()
	d.setErr(nil)
	return nil
}

// Orders returns a copy of the underlying normalized order list.
func (d *Dashboard) Orders() []model.Order {
	d.data.RLock()
	defer d.data.RUnlock()
	return append([]model.Order(nil), d.orders...)
}

// Stats recomputes the revenue aggregation from the current order list.
// Today/this-week/this-month compare wall-clock local time; the week starts
// on Sunday regardless of locale. An order without a creation timestamp
// counts as current.
func (d *Dashboard) Stats() model.RevenueStats {
	orders := d.Orders()

	now := d.now()
	weekStart := startOfDay(now).AddDate(0, 0, -int(now.Weekday()))

	var stats model.RevenueStats
	stats.OrderCount = len(orders)

	for _, o := range orders {
		created := o.CreatedOn
		if created.IsZero() {
			created = now
		}
		units := o.Units()

		stats.TotalRevenue += o.TotalAmount
		stats.TotalUnitsSold += units

		if sameDay(created, now) {
			stats.TodayRevenue += o.TotalAmount
			stats.TodayOrderCount++
			stats.TodayUnitsSold += units
		}
		if !created.Before(weekStart) && !created.After(now) {
			stats.WeekRevenue += o.TotalAmount
		}
		if created.Year() == now.Year() && created.Month() == now.Month() {
			stats.MonthRevenue += o.TotalAmount
		}
	}
	return stats
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
