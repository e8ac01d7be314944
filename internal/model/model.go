// Package model defines domain entities used by services and state containers.
package model

import (
	"strings"
	"time"
)

// Role is the normalized lowercase role tag decoded from the credential.
// RoleNone means no recognized role claim was present.
type Role string

const (
	RoleNone  Role = ""
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	// RoleGuest is a gate sentinel for views reserved for unauthenticated
	// visitors. It never appears on a decoded user.
	RoleGuest Role = "guest"
)

// NormalizeRole lowercases a raw role claim into a Role tag.
func NormalizeRole(raw string) Role {
	switch {
	case raw == "":
		return RoleNone
	case strings.EqualFold(raw, "admin"):
		return RoleAdmin
	default:
		return RoleUser
	}
}

// User is the normalized identity decoded from the credential claims.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Session pairs the opaque bearer credential with its decoded user.
// An empty Credential means "no session".
type Session struct {
	Credential string `json:"token"`
	User       *User  `json:"user"`
	// ExpiresAt is the credential's exp claim, recorded for diagnostics only.
	// The client never enforces expiry locally; the server is the authority.
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Active reports whether a credential is present.
func (s Session) Active() bool { return s.Credential != "" }

// Registration is the profile posted to the registration endpoint.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Product is the canonical product record normalized from heterogeneous
// backend field-naming conventions.
type Product struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	StockCount   int      `json:"stockCount"`
	Images       []string `json:"images"`
	CategoryName string   `json:"categoryName"`
	IsActive     bool     `json:"isActive"`
}

// ProductInput is the admin create/update payload for a product.
type ProductInput struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	StockCount   int      `json:"stockCount"`
	Images       []string `json:"images,omitempty"`
	CategoryName string   `json:"categoryName,omitempty"`
	IsActive     bool     `json:"isActive"`
}

// CartItem is one cart line. ItemID identifies the line, ProductID the product.
type CartItem struct {
	ItemID    int64   `json:"itemId"`
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// WishlistItem is a wishlist member keyed by ProductID (set semantics).
type WishlistItem struct {
	ProductID int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"imageUrl"`
}

// OrderStatus is the canonical lowercase lifecycle tag. Upstream represents
// it inconsistently as strings, integers or wrapper objects.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusPaid       OrderStatus = "paid"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusUnknown    OrderStatus = "unknown"
)

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	ProductID int64    `json:"productId"`
	Name      string   `json:"name"`
	Images    []string `json:"images,omitempty"`
	Quantity  int      `json:"quantity"`
	Price     float64  `json:"price"`
}

// Address is the shipping address attached to an order.
type Address struct {
	FullName     string `json:"fullName"`
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	PhoneNumber  string `json:"phoneNumber"`
}

// Order is the canonical order record.
type Order struct {
	ID           int64       `json:"id"`
	UserID       string      `json:"userId"`
	CustomerName string      `json:"customerName"`
	TotalAmount  float64     `json:"totalAmount"`
	Status       OrderStatus `json:"status"`
	CreatedOn    time.Time   `json:"createdOn"`
	Items        []OrderItem `json:"items"`
	Address      *Address    `json:"address,omitempty"`
}

// Units sums the quantities across the order's lines.
func (o Order) Units() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// CheckoutInput is the payload for placing an order.
type CheckoutInput struct {
	Address       Address `json:"address"`
	PaymentMethod string  `json:"paymentMethod"`
}

// Client is an account as seen by the admin console.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Blocked   bool      `json:"blocked"`
	CreatedOn time.Time `json:"createdOn,omitzero"`
}

// RevenueStats is the derived read-only dashboard aggregation.
type RevenueStats struct {
	TotalRevenue    float64 `json:"totalRevenue"`
	TodayRevenue    float64 `json:"todayRevenue"`
	WeekRevenue     float64 `json:"weekRevenue"`
	MonthRevenue    float64 `json:"monthRevenue"`
	OrderCount      int     `json:"orderCount"`
	TodayOrderCount int     `json:"todayOrderCount"`
	TodayUnitsSold  int     `json:"todayUnitsSold"`
	TotalUnitsSold  int     `json:"totalUnitsSold"`
}
