package catalog

import (
	"net/url"
	"strings"
)

const (
	endpointCategories      = "/categories"
	endpointSubcategories   = "/categories/%s/subcategories"
	endpointProducts        = "/products"
	endpointSearch          = "/products/search"
	endpointProduct         = "/products/%s"
	endpointRecommendations = "/products/recommendations"
	endpointDeals           = "/products/deals"
	endpointBanners         = "/banners"
	endpointMobileBanners   = "/mobile-banners"
	endpointBlogs           = "/blogs"
	endpointBlog            = "/blogs/%s"
)

func withQuery(endpoint string, q url.Values) string {
	if len(q) == 0 {
		return endpoint
	}
	return endpoint + "?" + q.Encode()
}

func escape(segment string) string {
	return url.PathEscape(strings.TrimSpace(segment))
}
