package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jeanogram/storefront-cli/internal/api"
	"github.com/jeanogram/storefront-cli/internal/convert"
	"github.com/jeanogram/storefront-cli/internal/errs"
	"github.com/jeanogram/storefront-cli/internal/model"
)

// ClientService wraps the account endpoints used by the admin console plus
// the public profile lookup.
type ClientService interface {
	// List returns every account (admin).
	List(ctx context.Context) ([]model.Client, error)
	// Get returns one profile. The endpoint is public by contract.
	Get(ctx context.Context, id string) (model.Client, error)
	// Update patches profile fields.
	Update(ctx context.Context, id string, fields map[string]any) error
	// ToggleBlock flips the blocked flag on an account (admin).
	ToggleBlock(ctx context.Context, id string) error
}

type ClientServiceImpl struct {
	api *api.Client
}

// NewClientService constructs ClientService.
func NewClientService(apiClient *api.Client) *ClientServiceImpl {
	return &ClientServiceImpl{api: apiClient}
}

func (s *ClientServiceImpl) List(ctx context.Context) ([]model.Client, error) {
	resp, err := s.api.Do(ctx, api.Request{Method: "GET", Path: "/user"})
	if err != nil {
		return nil, err
	}
	clients := convert.Clients(resp.Body)
	if clients == nil {
		clients = []model.Client{}
	}
	return clients, nil
}

func (s *ClientServiceImpl) Get(ctx context.Context, id string) (model.Client, error) {
	if id == "" {
		return model.Client{}, fmt.Errorf("%w: user id is required", errs.ErrValidation)
	}
	resp, err := s.api.Do(ctx, api.Request{
		Method:    "GET",
		Path:      "/user/" + url.PathEscape(id),
		Anonymous: true,
	})
	if err != nil {
		return model.Client{}, err
	}
	return convert.Client(convert.Record(resp.Body)), nil
}

func (s *ClientServiceImpl) Update(ctx context.Context, id string, fields map[string]any) error {
	if id == "" {
		return fmt.Errorf("%w: user id is required", errs.ErrValidation)
	}
	if len(fields) == 0 {
		return fmt.Errorf("%w: nothing to update", errs.ErrValidation)
	}
	_, err := s.api.Do(ctx, api.Request{
		Method: "PATCH",
		Path:   "/user/" + url.PathEscape(id),
		Body:   fields,
	})
	return err
}

func (s *ClientServiceImpl) ToggleBlock(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: user id is required", errs.ErrValidation)
	}
	_, err := s.api.Do(ctx, api.Request{
		Method: "PUT",
		Path:   "/User/block-unblock/" + url.PathEscape(id),
	})
	return err
}
