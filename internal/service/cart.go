package service

import (
	"context"
	"fmt"

	"github.com/jeanogram/storefront-cli/internal/api"
	"github.com/jeanogram/storefront-cli/internal/convert"
	"github.com/jeanogram/storefront-cli/internal/errs"
	"github.com/jeanogram/storefront-cli/internal/model"
)

// CartService wraps the bearer-authenticated cart endpoints. Mutating calls
// return the server's canonical cart when the response carries one, or nil
// when it does not; the caller decides how to reconcile.
type CartService interface {
	Get(ctx context.Context) ([]model.CartItem, error)
	Add(ctx context.Context, productID int64, quantity int) ([]model.CartItem, error)
	UpdateQuantity(ctx context.Context, itemID int64, quantity int) ([]model.CartItem, error)
	Remove(ctx context.Context, itemID int64) ([]model.CartItem, error)
	Clear(ctx context.Context) ([]model.CartItem, error)
}

type CartServiceImpl struct {
	api *api.Client
}

// NewCartService constructs CartService.
func NewCartService(apiClient *api.Client) *CartServiceImpl {
	return &CartServiceImpl{api: apiClient}
}

func (s *CartServiceImpl) Get(ctx context.Context) ([]model.CartItem, error) {
	resp, err := s.api.Do(ctx, api.Request{Method: "GET", Path: "/Cart"})
	if err != nil {
		return nil, err
	}
	items := convert.Cart(resp.Body)
	if items == nil {
		items = []model.CartItem{}
	}
	return items, nil
}

func (s *CartServiceImpl) Add(ctx context.Context, productID int64, quantity int) ([]model.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", errs.ErrValidation)
	}
	resp, err := s.api.Do(ctx, api.Request{
		Method: "POST",
		Path:   "/Cart",
		Body:   map[string]any{"productId": productID, "quantity": quantity},
	})
	if err != nil {
		return nil, err
	}
	return convert.Cart(resp.Body), nil
}

func (s *CartServiceImpl) UpdateQuantity(ctx context.Context, itemID int64, quantity int) ([]model.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", errs.ErrValidation)
	}
	resp, err := s.api.Do(ctx, api.Request{
		Method: "PUT",
		Path:   fmt.Sprintf("/Cart/%d", itemID),
		Body:   map[string]any{"quantity": quantity},
	})
	if err != nil {
		return nil, err
	}
	return convert.Cart(resp.Body), nil
}

func (s *CartServiceImpl) Remove(ctx context.Context, itemID int64) ([]model.CartItem, error) {
	resp, err := s.api.Do(ctx, api.Request{
		Method: "DELETE",
		Path:   fmt.Sprintf("/Cart/%d", itemID),
	})
	if err != nil {
		return nil, err
	}
	return convert.Cart(resp.Body), nil
}

func (s *CartServiceImpl) Clear(ctx context.Context) ([]model.CartItem, error) {
	resp, err := s.api.Do(ctx, api.Request{Method: "DELETE", Path: "/Cart"})
	if err != nil {
		return nil, err
	}
	return convert.Cart(resp.Body), nil
}
