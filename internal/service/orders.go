package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/jeanogram/storefront-cli/internal/api"
	"github.com/jeanogram/storefront-cli/internal/convert"
	"github.com/jeanogram/storefront-cli/internal/errs"
	"github.com/jeanogram/storefront-cli/internal/model"
)

// BuyNow orders a single product directly, bypassing the cart.
type BuyNow struct {
	ProductID int64
	Quantity  int
}

// OrderService wraps the order endpoints for both customers and admins.
type OrderService interface {
	// ListMine returns the caller's own orders.
	ListMine(ctx context.Context) ([]model.Order, error)
	// ListAll returns a page of every order. The admin endpoint is tried
	// first; on an authorization failure the less-privileged own-orders
	// endpoint serves as fallback.
	ListAll(ctx context.Context, pageNumber, limit int) ([]model.Order, error)
	// Create places an order from the cart, or from a single product when
	// buyNow is set.
	Create(ctx context.Context, in model.CheckoutInput, buyNow *BuyNow) (model.Order, error)
	// Cancel cancels a pending or processing order.
	Cancel(ctx context.Context, orderID int64) error
	// UpdateStatus moves an order to the named status (admin). The target
	// status travels as a query parameter.
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
}

type OrderServiceImpl struct {
	api *api.Client
	log *zap.Logger
}

// NewOrderService constructs OrderService.
func NewOrderService(apiClient *api.Client, log *zap.Logger) *OrderServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderServiceImpl{api: apiClient, log: log}
}

func (s *OrderServiceImpl) ListMine(ctx context.Context) ([]model.Order, error) {
	resp, err := s.api.Do(ctx, api.Request{Method: "GET", Path: "/Order"})
	if err != nil {
		return nil, err
	}
	orders := convert.Orders(resp.Body)
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (s *OrderServiceImpl) ListAll(ctx context.Context, pageNumber, limit int) ([]model.Order, error) {
	if pageNumber <= 0 {
		pageNumber = 1
	}
	if limit <= 0 {
		limit = 10
	}
	q := url.Values{}
	q.Set("pageNumber", strconv.Itoa(pageNumber))
	q.Set("limit", strconv.Itoa(limit))

	// Explicit ordered candidate list: admin endpoint, then own orders.
	resp, err := s.api.DoFirst(ctx,
		api.Request{Method: "GET", Path: "/Order/all", Query: q},
		api.Request{Method: "GET", Path: "/Order"},
	)
	if err != nil {
		return nil, err
	}
	orders := convert.Orders(resp.Body)
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (s *OrderServiceImpl) Create(ctx context.Context, in model.CheckoutInput, buyNow *BuyNow) (model.Order, error) {
	if err := validateCheckout(in); err != nil {
		return model.Order{}, err
	}

	var q url.Values
	if buyNow != nil {
		if buyNow.ProductID <= 0 || buyNow.Quantity <= 0 {
			return model.Order{}, fmt.Errorf("%w: buy-now needs a product and a positive quantity", errs.ErrValidation)
		}
		q = url.Values{}
		q.Set("productId", strconv.FormatInt(buyNow.ProductID, 10))
		q.Set("quantity", strconv.Itoa(buyNow.Quantity))
	}

	resp, err := s.api.Do(ctx, api.Request{
		Method: "POST",
		Path:   "/Order/create",
		Query:  q,
		Body:   in,
	})
	if err != nil {
		return model.Order{}, err
	}
	return convert.Order(convert.Record(resp.Body)), nil
}

func (s *OrderServiceImpl) Cancel(ctx context.Context, orderID int64) error {
	resp, err := s.api.Do(ctx, api.Request{
		Method: "POST",
		Path:   fmt.Sprintf("/Order/cancel/%d", orderID),
		Body:   map[string]any{},
	})
	if err != nil {
		return err
	}
	// A 2xx with {"data": false} still means the cancel was refused.
	var envelope struct {
		Data *bool `json:"data"`
	}
	if json.Unmarshal(resp.Body, &envelope) == nil && envelope.Data != nil && !*envelope.Data {
		msg := convert.Message(resp.Body)
		if msg == "" {
			msg = "cancel refused"
		}
		return fmt.Errorf("cancel order %d: %s", orderID, msg)
	}
	return nil
}

func (s *OrderServiceImpl) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	if convert.Status(string(status)) == model.StatusUnknown {
		return fmt.Errorf("%w: unknown status %q", errs.ErrValidation, status)
	}
	q := url.Values{}
	q.Set("newStatus", string(status))
	_, err := s.api.Do(ctx, api.Request{
		Method: "POST",
		Path:   fmt.Sprintf("/Order/admin/update-status/%d", orderID),
		Query:  q,
	})
	return err
}

func validateCheckout(in model.CheckoutInput) error {
	a := in.Address
	switch {
	case a.FullName == "":
		return fmt.Errorf("%w: full name is required", errs.ErrValidation)
	case a.AddressLine1 == "":
		return fmt.Errorf("%w: address line is required", errs.ErrValidation)
	case a.City == "" || a.PostalCode == "":
		return fmt.Errorf("%w: city and postal code are required", errs.ErrValidation)
	case a.PhoneNumber == "":
		return fmt.Errorf("%w: phone number is required", errs.ErrValidation)
	case in.PaymentMethod == "":
		return fmt.Errorf("%w: payment method is required", errs.ErrValidation)
	}
	return nil
}
