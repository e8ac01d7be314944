// cmd/jg/admin.go
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/jeanogram/storefront-cli/internal/model"
	"github.com/jeanogram/storefront-cli/internal/state"
)

// cmdAdmin dispatches the admin console commands. Every one of them is
// role-gated before any request leaves the process.
func (a *app) cmdAdmin(ctx context.Context, args []string) {
	a.requireRole(model.RoleAdmin)
	if len(args) < 1 {
		fail(fmt.Errorf("need admin subcommand: dashboard|orders|status|clients|block|product"))
	}

	switch args[0] {
	case "dashboard":
		a.cmdAdminDashboard(ctx, args[1:])
	case "orders":
		a.cmdAdminOrders(ctx, args[1:])
	case "status":
		a.cmdAdminStatus(ctx, args[1:])
	case "clients":
		clients, err := a.clients.List(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(clients)
	case "block":
		fs := flag.NewFlagSet("admin block", flag.ExitOnError)
		id := fs.String("id", "", "user id")
		_ = fs.Parse(args[1:])
		if *id == "" {
			fail(fmt.Errorf("need -id"))
		}
		if err := a.clients.ToggleBlock(ctx, *id); err != nil {
			fail(err)
		}
		fmt.Println("ok")
	case "product":
		a.cmdAdminProduct(ctx, args[1:])
	default:
		fail(fmt.Errorf("unknown admin command %q", args[0]))
	}
}

func (a *app) cmdAdminDashboard(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("admin dashboard", flag.ExitOnError)
	limit := fs.Int("limit", 50, "orders to aggregate")
	_ = fs.Parse(args)

	dash := state.NewDashboard(a.orders, *limit, a.log)
	stop := dash.Watch(a.bus, a.sess)
	defer stop()

	if err := dash.Refresh(ctx); err != nil {
		fail(err)
	}
	printJSON(dash.Stats())
}

func (a *app) cmdAdminOrders(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("admin orders", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 10, "page size")
	_ = fs.Parse(args)

	orders, err := a.orders.ListAll(ctx, *page, *limit)
	if err != nil {
		fail(err)
	}
	printJSON(orders)
}

func (a *app) cmdAdminStatus(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("admin status", flag.ExitOnError)
	id := fs.Int64("id", 0, "order id")
	status := fs.String("status", "", "target status (pending|processing|paid|shipped|delivered|cancelled)")
	_ = fs.Parse(args)
	if *id == 0 || *status == "" {
		fail(fmt.Errorf("need -id and -status"))
	}

	target := model.OrderStatus(strings.ToLower(*status))
	if err := a.orders.UpdateStatus(ctx, *id, target); err != nil {
		fail(err)
	}
	a.bus.Publish()
	fmt.Println("ok")
}

func (a *app) cmdAdminProduct(ctx context.Context, args []string) {
	if len(args) < 1 {
		fail(fmt.Errorf("need product subcommand: add|update|rm"))
	}

	switch args[0] {
	case "add", "update":
		fs := flag.NewFlagSet("admin product "+args[0], flag.ExitOnError)
		id := fs.Int64("id", 0, "product id (update only)")
		name := fs.String("name", "", "product name")
		desc := fs.String("desc", "", "description")
		price := fs.Float64("price", 0, "price")
		stock := fs.Int("stock", 0, "stock count")
		category := fs.String("category", "", "category name")
		images := fs.String("images", "", "comma-separated image URLs")
		inactive := fs.Bool("inactive", false, "hide from the storefront")
		_ = fs.Parse(args[1:])

		in := model.ProductInput{
			Name:         *name,
			Description:  *desc,
			Price:        *price,
			StockCount:   *stock,
			CategoryName: *category,
			IsActive:     !*inactive,
		}
		if *images != "" {
			in.Images = strings.Split(*images, ",")
		}

		var (
			p   model.Product
			err error
		)
		if args[0] == "add" {
			p, err = a.products.Create(ctx, in)
		} else {
			if *id == 0 {
				fail(fmt.Errorf("need -id"))
			}
			p, err = a.products.Update(ctx, *id, in)
		}
		if err != nil {
			fail(err)
		}
		printJSON(p)
	case "rm":
		fs := flag.NewFlagSet("admin product rm", flag.ExitOnError)
		id := fs.Int64("id", 0, "product id")
		_ = fs.Parse(args[1:])
		if *id == 0 {
			fail(fmt.Errorf("need -id"))
		}
		if err := a.products.Delete(ctx, *id); err != nil {
			fail(err)
		}
		fmt.Println("deleted")
	default:
		fail(fmt.Errorf("unknown product command %q", args[0]))
	}
}
