// Command jg is a CLI client for the JEANOGRAM storefront and admin console.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/jeanogram/storefront-cli/internal/api"
	"github.com/jeanogram/storefront-cli/internal/bus"
	"github.com/jeanogram/storefront-cli/internal/config"
	"github.com/jeanogram/storefront-cli/internal/gate"
	"github.com/jeanogram/storefront-cli/internal/model"
	"github.com/jeanogram/storefront-cli/internal/service"
	"github.com/jeanogram/storefront-cli/internal/session"
	"github.com/jeanogram/storefront-cli/internal/state"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// app wires the session, API client and services for one invocation.
type app struct {
	log  *zap.Logger
	sess *session.Store
	bus  *bus.Bus

	auth     service.AuthService
	products service.ProductService
	cart     *state.Cart
	wishlist *state.Wishlist
	orders   service.OrderService
	clients  service.ClientService
}

func usage() {
	fmt.Fprintf(os.Stderr, `jg CLI
Usage:
  jg [-api URL] [-timeout dur] [-debug] <cmd> [args]

Commands:
  version
  register  -name <name> -email <email> -password <pw>
  login     -email <email> -password <pw>        (saves session)
  logout
  whoami
  products  [-page N] [-size N] [-desc] [-category name]
  product   -id <id>
  cart      [list] | add -product <id> [-qty N] | update -item <id> -qty N | rm -item <id> | clear
  wish      [list] | toggle -product <id> | clear
  orders
  order     create|cancel ...
  profile   [-id <id>] | update [-id <id>] [-name n] [-email e]
  admin     dashboard|orders|status|clients|block|product ...
`)
	os.Exit(2)
}

// main dispatches subcommands against the remote storefront API.
func main() {
	apiURL := flag.String("api", "", "API base URL (overrides JEANOGRAM_API_URL)")
	timeout := flag.Duration("timeout", 0, "per-request timeout (overrides JEANOGRAM_TIMEOUT)")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	if *apiURL != "" {
		cfg.BaseURL = *apiURL
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *debug {
		cfg.Debug = true
	}

	logger := newLogger(cfg.Debug)
	defer func() { _ = logger.Sync() }()

	a := newApp(cfg, logger)
	a.sess.Rehydrate()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {
	case "version":
		fmt.Printf("jg %s (%s)\n", version, buildDate)
	case "register":
		a.cmdRegister(ctx, args)
	case "login":
		a.cmdLogin(ctx, args)
	case "logout":
		if err := a.auth.Logout(); err != nil {
			fail(err)
		}
		fmt.Println("ok")
	case "whoami":
		a.cmdWhoami()
	case "products":
		a.cmdProducts(ctx, args)
	case "product":
		a.cmdProduct(ctx, args)
	case "cart":
		a.cmdCart(ctx, args)
	case "wish":
		a.cmdWish(ctx, args)
	case "orders":
		a.cmdOrders(ctx)
	case "order":
		a.cmdOrder(ctx, args)
	case "profile":
		a.cmdProfile(ctx, args)
	case "admin":
		a.cmdAdmin(ctx, args)
	default:
		usage()
	}
}

func newApp(cfg *config.Config, logger *zap.Logger) *app {
	if logger == nil {
		logger = zap.NewNop()
	}
	sess := session.New(cfg.ConfigDir, logger)
	client := api.New(cfg.BaseURL, cfg.Timeout, sess, logger)
	cartSvc := service.NewCartService(client)
	wishSvc := service.NewWishlistService(client)
	return &app{
		log:      logger,
		sess:     sess,
		bus:      bus.New(),
		auth:     service.NewAuthService(client, sess, logger),
		products: service.NewProductService(client, logger),
		cart:     state.NewCart(cartSvc, sess, logger),
		wishlist: state.NewWishlist(wishSvc, sess, logger),
		orders:   service.NewOrderService(client, logger),
		clients:  service.NewClientService(client),
	}
}

func newLogger(debug bool) *zap.Logger {
	if debug {
		l, _ := zap.NewDevelopment()
		return l
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	l, _ := cfg.Build()
	return l
}

// requireGuest blocks commands reserved for signed-out visitors.
func (a *app) requireGuest() {
	switch gate.Evaluate(false, a.sess.User(), []model.Role{model.RoleGuest}) {
	case gate.Render:
	case gate.RedirectAdminHome:
		fail(fmt.Errorf("already signed in as admin; run 'jg logout' first"))
	default:
		fail(fmt.Errorf("already signed in; run 'jg logout' first"))
	}
}

// requireRole blocks commands the current session may not use.
func (a *app) requireRole(roles ...model.Role) {
	switch gate.Evaluate(false, a.sess.User(), roles) {
	case gate.Render:
	case gate.RedirectLogin:
		fail(fmt.Errorf("not signed in; run 'jg login' first"))
	default:
		fail(fmt.Errorf("signed-in role %q may not use this command", a.sess.User().Role))
	}
}

func (a *app) cmdRegister(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	_ = fs.Parse(args)
	a.requireGuest()

	msg, err := a.auth.Register(ctx, model.Registration{
		Name:     *name,
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		fail(err)
	}
	// Registration never auto-authenticates; sign in explicitly.
	fmt.Println(msg)
}

func (a *app) cmdLogin(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	_ = fs.Parse(args)
	a.requireGuest()

	user, err := a.auth.Login(ctx, *email, *password)
	if err != nil {
		fail(err)
	}
	printJSON(user)
}

func (a *app) cmdWhoami() {
	sess := a.sess.Current()
	if !sess.Active() {
		fmt.Println("not signed in")
		return
	}
	printJSON(sess.User)
}

func (a *app) cmdProducts(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", 20, "page size")
	desc := fs.Bool("desc", false, "descending order")
	category := fs.String("category", "", "filter by category name")
	_ = fs.Parse(args)

	products, err := a.products.List(ctx, service.ListOptions{
		Page:       *page,
		PageSize:   *size,
		Descending: *desc,
		Category:   *category,
	})
	if err != nil {
		fail(err)
	}
	printJSON(struct {
		Products   []model.Product `json:"products"`
		Categories []string        `json:"categories"`
	}{products, service.Categories(products)})
}

func (a *app) cmdProduct(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("product", flag.ExitOnError)
	id := fs.Int64("id", 0, "product id")
	_ = fs.Parse(args)
	if *id == 0 {
		fail(fmt.Errorf("need -id"))
	}
	p, err := a.products.Get(ctx, *id)
	if err != nil {
		fail(err)
	}
	printJSON(p)
}

func (a *app) cmdCart(ctx context.Context, args []string) {
	a.requireRole(model.RoleUser, model.RoleAdmin)

	sub := "list"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	switch sub {
	case "list":
		if err := a.cart.Load(ctx); err != nil {
			fail(err)
		}
	case "add":
		fs := flag.NewFlagSet("cart add", flag.ExitOnError)
		product := fs.Int64("product", 0, "product id")
		qty := fs.Int("qty", 1, "quantity")
		_ = fs.Parse(args)
		if *product == 0 {
			fail(fmt.Errorf("need -product"))
		}
		a.loadCartOrFail(ctx)
		if err := a.cart.Add(ctx, *product, *qty); err != nil {
			fail(err)
		}
	case "update":
		fs := flag.NewFlagSet("cart update", flag.ExitOnError)
		item := fs.Int64("item", 0, "cart item id")
		qty := fs.Int("qty", 0, "quantity")
		_ = fs.Parse(args)
		if *item == 0 || *qty <= 0 {
			fail(fmt.Errorf("need -item and positive -qty"))
		}
		a.loadCartOrFail(ctx)
		if err := a.cart.UpdateQuantity(ctx, *item, *qty); err != nil {
			fail(err)
		}
	case "rm":
		fs := flag.NewFlagSet("cart rm", flag.ExitOnError)
		item := fs.Int64("item", 0, "cart item id")
		_ = fs.Parse(args)
		if *item == 0 {
			fail(fmt.Errorf("need -item"))
		}
		a.loadCartOrFail(ctx)
		if err := a.cart.Remove(ctx, *item); err != nil {
			fail(err)
		}
	case "clear":
		a.loadCartOrFail(ctx)
		if err := a.cart.Clear(ctx); err != nil {
			fail(err)
		}
	default:
		fail(fmt.Errorf("unknown cart command %q", sub))
	}
	printJSON(a.cart.Items())
}

func (a *app) loadCartOrFail(ctx context.Context) {
	if err := a.cart.Load(ctx); err != nil {
		fail(err)
	}
}

func (a *app) cmdWish(ctx context.Context, args []string) {
	a.requireRole(model.RoleUser, model.RoleAdmin)

	sub := "list"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	switch sub {
	case "list":
		if err := a.wishlist.Load(ctx); err != nil {
			fail(err)
		}
	case "toggle":
		fs := flag.NewFlagSet("wish toggle", flag.ExitOnError)
		product := fs.Int64("product", 0, "product id")
		_ = fs.Parse(args)
		if *product == 0 {
			fail(fmt.Errorf("need -product"))
		}
		if err := a.wishlist.Load(ctx); err != nil {
			fail(err)
		}
		if err := a.wishlist.Toggle(ctx, *product); err != nil {
			fail(err)
		}
	case "clear":
		if err := a.wishlist.Load(ctx); err != nil {
			fail(err)
		}
		if err := a.wishlist.ClearAll(ctx); err != nil {
			fail(err)
		}
	default:
		fail(fmt.Errorf("unknown wish command %q", sub))
	}
	printJSON(a.wishlist.Items())
}

func (a *app) cmdOrders(ctx context.Context) {
	a.requireRole(model.RoleUser, model.RoleAdmin)
	orders, err := a.orders.ListMine(ctx)
	if err != nil {
		fail(err)
	}
	printJSON(orders)
}

func (a *app) cmdOrder(ctx context.Context, args []string) {
	a.requireRole(model.RoleUser, model.RoleAdmin)
	if len(args) < 1 {
		fail(fmt.Errorf("need order subcommand: create|cancel"))
	}

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("order create", flag.ExitOnError)
		name := fs.String("name", "", "full name")
		address := fs.String("address", "", "address line")
		city := fs.String("city", "", "city")
		region := fs.String("state", "", "state/region")
		zip := fs.String("zip", "", "postal code")
		country := fs.String("country", "", "country")
		phone := fs.String("phone", "", "phone number")
		payment := fs.String("payment", "cod", "payment method")
		product := fs.Int64("product", 0, "buy-now product id (skips cart)")
		qty := fs.Int("qty", 1, "buy-now quantity")
		_ = fs.Parse(args[1:])

		in := model.CheckoutInput{
			Address: model.Address{
				FullName:     *name,
				AddressLine1: *address,
				City:         *city,
				State:        *region,
				PostalCode:   *zip,
				Country:      *country,
				PhoneNumber:  *phone,
			},
			PaymentMethod: *payment,
		}
		var buyNow *service.BuyNow
		if *product != 0 {
			buyNow = &service.BuyNow{ProductID: *product, Quantity: *qty}
		}

		order, err := a.orders.Create(ctx, in, buyNow)
		if err != nil {
			fail(err)
		}
		a.bus.Publish()

		// Best-effort: a cart order empties the cart afterwards. The two
		// steps are independent; a failed clear leaves the order placed.
		if buyNow == nil {
			if err := a.cart.Clear(ctx); err != nil {
				a.log.Warn("order placed but cart clear failed", zap.Error(err))
			}
		}
		printJSON(order)
	case "cancel":
		fs := flag.NewFlagSet("order cancel", flag.ExitOnError)
		id := fs.Int64("id", 0, "order id")
		_ = fs.Parse(args[1:])
		if *id == 0 {
			fail(fmt.Errorf("need -id"))
		}
		// Refuse locally when the order is known to be past cancelling; the
		// server still has the final say.
		if orders, err := a.orders.ListMine(ctx); err == nil {
			for _, o := range orders {
				if o.ID == *id && !o.Status.Cancellable() {
					fail(fmt.Errorf("order %d is %s and can no longer be cancelled", *id, o.Status))
				}
			}
		}
		if err := a.orders.Cancel(ctx, *id); err != nil {
			fail(err)
		}
		a.bus.Publish()
		fmt.Println("cancelled")
	default:
		fail(fmt.Errorf("unknown order command %q", args[0]))
	}
}

func (a *app) cmdProfile(ctx context.Context, args []string) {
	sub := "show"
	if len(args) > 0 && args[0] == "update" {
		sub = "update"
		args = args[1:]
	}

	switch sub {
	case "show":
		fs := flag.NewFlagSet("profile", flag.ExitOnError)
		id := fs.String("id", "", "user id (defaults to the signed-in user)")
		_ = fs.Parse(args)
		if *id == "" {
			a.requireRole(model.RoleUser, model.RoleAdmin)
			*id = a.sess.User().ID
		}
		c, err := a.clients.Get(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(c)
	case "update":
		a.requireRole(model.RoleUser, model.RoleAdmin)
		fs := flag.NewFlagSet("profile update", flag.ExitOnError)
		id := fs.String("id", "", "user id (defaults to the signed-in user)")
		name := fs.String("name", "", "new display name")
		email := fs.String("email", "", "new email")
		_ = fs.Parse(args)
		if *id == "" {
			*id = a.sess.User().ID
		}

		fields := map[string]any{}
		if *name != "" {
			fields["name"] = *name
		}
		if *email != "" {
			fields["email"] = *email
		}
		if err := a.clients.Update(ctx, *id, fields); err != nil {
			fail(err)
		}
		c, err := a.clients.Get(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(c)
	}
}

// ---- helpers ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
