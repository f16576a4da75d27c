// Package catalog reads the externally owned catalog: categories, products,
// home page content and the cached recommendation/deal widgets.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/angelmondragon/storefront/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/pagination"
)

// Service exposes read-only catalog operations.
type Service interface {
	Categories(ctx context.Context) ([]Category, error)
	Subcategories(ctx context.Context, categoryID string) ([]Subcategory, error)
	Products(ctx context.Context, query ListQuery) (*ProductPage, error)
	Search(ctx context.Context, term string, page pagination.Params) (*ProductPage, error)
	Product(ctx context.Context, id string) (*Product, error)
	Banners(ctx context.Context) ([]Banner, error)
	MobileBanners(ctx context.Context) ([]Banner, error)
	Blogs(ctx context.Context, page pagination.Params) (*BlogPage, error)
	Blog(ctx context.Context, slug string) (*Blog, error)
	Recommendations(ctx context.Context, productID string) ([]Product, error)
	Deals(ctx context.Context) ([]Product, error)
}

// Requester is the subset of the API client the catalog depends on.
type Requester interface {
	Get(ctx context.Context, endpoint string, out any) error
}

var _ Requester = (*apiclient.Client)(nil)

type service struct {
	api     Requester
	widgets *WidgetCache
	logg    *logger.Logger
}

// NewService builds the catalog service. A nil widget cache disables caching.
func NewService(api Requester, widgets *WidgetCache, logg *logger.Logger) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("api client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{api: api, widgets: widgets, logg: logg}, nil
}

func (s *service) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := s.api.Get(ctx, endpointCategories, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Subcategories(ctx context.Context, categoryID string) ([]Subcategory, error) {
	if strings.TrimSpace(categoryID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	var out []Subcategory
	if err := s.api.Get(ctx, fmt.Sprintf(endpointSubcategories, escape(categoryID)), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Products(ctx context.Context, query ListQuery) (*ProductPage, error) {
	q := url.Values{}
	query.Page.Apply(q)
	setIf(q, "category", query.Category)
	setIf(q, "subcategory", query.Subcategory)
	setIf(q, "sort", query.Sort)
	if query.MinPrice != nil {
		q.Set("minPrice", query.MinPrice.String())
	}
	if query.MaxPrice != nil {
		q.Set("maxPrice", query.MaxPrice.String())
	}
	if query.MinPrice != nil && query.MaxPrice != nil && query.MinPrice.GreaterThan(*query.MaxPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minPrice must not exceed maxPrice")
	}
	return s.page(ctx, withQuery(endpointProducts, q), query.Page)
}

func (s *service) Search(ctx context.Context, term string, page pagination.Params) (*ProductPage, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search term is required")
	}
	q := url.Values{}
	page.Apply(q)
	q.Set("q", term)
	return s.page(ctx, withQuery(endpointSearch, q), page)
}

func (s *service) Product(ctx context.Context, id string) (*Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var out Product
	if err := s.api.Get(ctx, fmt.Sprintf(endpointProduct, escape(id)), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) Banners(ctx context.Context) ([]Banner, error) {
	var out []Banner
	if err := s.api.Get(ctx, endpointBanners, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) MobileBanners(ctx context.Context) ([]Banner, error) {
	var out []Banner
	if err := s.api.Get(ctx, endpointMobileBanners, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Blogs(ctx context.Context, page pagination.Params) (*BlogPage, error) {
	q := url.Values{}
	page.Apply(q)
	var out BlogPage
	if err := s.api.Get(ctx, withQuery(endpointBlogs, q), &out); err != nil {
		return nil, err
	}
	if out.Pagination.Limit == 0 {
		out.Pagination = pagination.MetaFor(page, len(out.Blogs))
	}
	return &out, nil
}

func (s *service) Blog(ctx context.Context, slug string) (*Blog, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "blog slug is required")
	}
	var out Blog
	if err := s.api.Get(ctx, fmt.Sprintf(endpointBlog, escape(slug)), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) Recommendations(ctx context.Context, productID string) ([]Product, error) {
	endpoint := endpointRecommendations
	key := "recommendations"
	if id := strings.TrimSpace(productID); id != "" {
		endpoint = withQuery(endpoint, url.Values{"productId": {id}})
		key += ":" + id
	}
	return s.widget(ctx, key, endpoint)
}

func (s *service) Deals(ctx context.Context) ([]Product, error) {
	return s.widget(ctx, "deals", endpointDeals)
}

func (s *service) widget(ctx context.Context, key, endpoint string) ([]Product, error) {
	if cached, ok := s.widgets.Load(ctx, key); ok {
		return cached, nil
	}
	var out []Product
	if err := s.api.Get(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	s.widgets.Store(ctx, key, out)
	return out, nil
}

func (s *service) page(ctx context.Context, endpoint string, params pagination.Params) (*ProductPage, error) {
	var out ProductPage
	if err := s.api.Get(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	if out.Pagination.Limit == 0 {
		out.Pagination = pagination.MetaFor(params, len(out.Products))
	}
	return &out, nil
}

func setIf(q url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		q.Set(key, value)
	}
}
