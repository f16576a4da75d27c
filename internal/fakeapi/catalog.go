package fakeapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, append([]Category{}, s.categories...))
}

func (s *Server) listSubcategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, append([]Category{}, s.subcategories[chi.URLParam(r, "id")]...))
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	s.writeProductPage(w, r, func(p Product) bool {
		return category == "" || strings.EqualFold(p.Category, category)
	})
}

func (s *Server) searchProducts(w http.ResponseWriter, r *http.Request) {
	term := strings.ToLower(r.URL.Query().Get("q"))
	s.writeProductPage(w, r, func(p Product) bool {
		return strings.Contains(strings.ToLower(p.Name), term)
	})
}

func (s *Server) writeProductPage(w http.ResponseWriter, r *http.Request, keep func(Product) bool) {
	page, limit := pageParams(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []Product{}
	for _, id := range s.productOrder {
		if p := s.products[id]; keep(p) {
			matched = append(matched, p)
		}
	}
	total := len(matched)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	pages := (total + limit - 1) / limit
	writeData(w, http.StatusOK, map[string]any{
		"products": matched[start:end],
		"pagination": map[string]any{
			"page": page, "limit": limit, "total": total, "totalPages": pages,
			"hasNextPage": page < pages, "hasPrevPage": page > 1,
		},
	})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) recommendations(w http.ResponseWriter, r *http.Request) {
	exclude := r.URL.Query().Get("productId")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Product{}
	for _, id := range s.productOrder {
		if id != exclude && len(out) < 4 {
			out = append(out, s.products[id])
		}
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) listDeals(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Product{}
	for _, id := range s.deals {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) listBanners(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, append([]Banner{}, s.banners...))
}

func (s *Server) listMobileBanners(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, append([]Banner{}, s.mobileBanners...))
}

func (s *Server) listBlogs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, map[string]any{"blogs": append([]Blog{}, s.blogs...)})
}

func (s *Server) getBlog(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.blogs {
		if b.Slug == slug {
			writeData(w, http.StatusOK, b)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Blog not found")
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}
	return page, limit
}
