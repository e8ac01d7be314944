package service

import (
	"context"
	"fmt"

	"github.com/jeanogram/storefront-cli/internal/api"
	"github.com/jeanogram/storefront-cli/internal/convert"
	"github.com/jeanogram/storefront-cli/internal/model"
)

// WishlistService wraps the bearer-authenticated wishlist endpoints.
// Membership is toggled, not incrementally counted.
type WishlistService interface {
	Get(ctx context.Context) ([]model.WishlistItem, error)
	// Toggle flips membership of productID: present becomes absent and
	// vice versa. It is its own inverse.
	Toggle(ctx context.Context, productID int64) error
}

type WishlistServiceImpl struct {
	api *api.Client
}

// NewWishlistService constructs WishlistService.
func NewWishlistService(apiClient *api.Client) *WishlistServiceImpl {
	return &WishlistServiceImpl{api: apiClient}
}

func (s *WishlistServiceImpl) Get(ctx context.Context) ([]model.WishlistItem, error) {
	resp, err := s.api.Do(ctx, api.Request{Method: "GET", Path: "/wishlist"})
	if err != nil {
		return nil, err
	}
	items := convert.Wishlist(resp.Body)
	if items == nil {
		items = []model.WishlistItem{}
	}
	return items, nil
}

func (s *WishlistServiceImpl) Toggle(ctx context.Context, productID int64) error {
	_, err := s.api.Do(ctx, api.Request{
		Method: "POST",
		Path:   fmt.Sprintf("/wishlist/%d", productID),
		Body:   map[string]any{},
	})
	return err
}
