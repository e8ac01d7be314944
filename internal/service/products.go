package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/jeanogram/storefront-cli/internal/api"
	"github.com/jeanogram/storefront-cli/internal/convert"
	"github.com/jeanogram/storefront-cli/internal/errs"
	"github.com/jeanogram/storefront-cli/internal/model"
)

// ListOptions selects a product page.
type ListOptions struct {
	Page       int
	PageSize   int
	Descending bool
	// Category filters client-side on the normalized categoryName.
	Category string
}

// ProductService defines catalog browsing plus the admin collection
// operations.
type ProductService interface {
	// List fetches one catalog page. A newer List supersedes an in-flight
	// older one: the older request is cancelled and its response discarded
	// (last-request-wins).
	List(ctx context.Context, opts ListOptions) ([]model.Product, error)
	Get(ctx context.Context, id int64) (model.Product, error)
	Create(ctx context.Context, in model.ProductInput) (model.Product, error)
	Update(ctx context.Context, id int64, in model.ProductInput) (model.Product, error)
	Delete(ctx context.Context, id int64) error
}

type ProductServiceImpl struct {
	api *api.Client
	log *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc // cancels the previous in-flight List
}

// NewProductService constructs ProductService.
func NewProductService(apiClient *api.Client, log *zap.Logger) *ProductServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductServiceImpl{api: apiClient, log: log}
}

// List fetches a page of the catalog. The endpoint is public; no credential
// is attached.
func (s *ProductServiceImpl) List(ctx context.Context, opts ListOptions) ([]model.Product, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	q := url.Values{}
	q.Set("page", strconv.Itoa(opts.Page))
	q.Set("pageSize", strconv.Itoa(opts.PageSize))
	q.Set("descending", strconv.FormatBool(opts.Descending))

	resp, err := s.api.Do(ctx, api.Request{
		Method:    "GET",
		Path:      "/Product/filter",
		Query:     q,
		Anonymous: true,
	})
	if err != nil {
		return nil, err
	}

	products := convert.Products(resp.Body)
	if opts.Category != "" {
		filtered := products[:0]
		for _, p := range products {
			if p.CategoryName == opts.Category {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	return products, nil
}

// Get fetches one product's details. Public endpoint.
func (s *ProductServiceImpl) Get(ctx context.Context, id int64) (model.Product, error) {
	resp, err := s.api.Do(ctx, api.Request{
		Method:    "GET",
		Path:      fmt.Sprintf("/Product/%d", id),
		Anonymous: true,
	})
	if err != nil {
		return model.Product{}, err
	}
	return convert.Product(convert.Record(resp.Body)), nil
}

// Create adds a product to the collection (admin).
func (s *ProductServiceImpl) Create(ctx context.Context, in model.ProductInput) (model.Product, error) {
	if err := validateProduct(in); err != nil {
		return model.Product{}, err
	}
	resp, err := s.api.Do(ctx, api.Request{Method: "POST", Path: "/Product", Body: in})
	if err != nil {
		return model.Product{}, err
	}
	return convert.Product(convert.Record(resp.Body)), nil
}

// Update replaces a product (admin).
func (s *ProductServiceImpl) Update(ctx context.Context, id int64, in model.ProductInput) (model.Product, error) {
	if err := validateProduct(in); err != nil {
		return model.Product{}, err
	}
	resp, err := s.api.Do(ctx, api.Request{
		Method: "PUT",
		Path:   fmt.Sprintf("/Product/%d", id),
		Body:   in,
	})
	if err != nil {
		return model.Product{}, err
	}
	return convert.Product(convert.Record(resp.Body)), nil
}

// Delete removes a product from the collection (admin).
func (s *ProductServiceImpl) Delete(ctx context.Context, id int64) error {
	_, err := s.api.Do(ctx, api.Request{
		Method: "DELETE",
		Path:   fmt.Sprintf("/Product/%d", id),
	})
	return err
}

// Categories derives the distinct non-empty category names from a page of
// products, in first-seen order.
func Categories(products []model.Product) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range products {
		if p.CategoryName == "" || seen[p.CategoryName] {
			continue
		}
		seen[p.CategoryName] = true
		out = append(out, p.CategoryName)
	}
	return out
}

func validateProduct(in model.ProductInput) error {
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: product name is required", errs.ErrValidation)
	case in.Price < 0:
		return fmt.Errorf("%w: price must not be negative", errs.ErrValidation)
	case in.StockCount < 0:
		return fmt.Errorf("%w: stock count must not be negative", errs.ErrValidation)
	}
	return nil
}
