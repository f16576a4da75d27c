package fakeapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type wishlistRequest struct {
	ProductID string          `json:"productId"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Selection
}

func (s *Server) wishlistLocked(userID string) *wishlist {
	w, ok := s.wishlists[userID]
	if !ok {
		w = &wishlist{id: s.nextID("wl_")}
		s.wishlists[userID] = w
	}
	return w
}

func (w *wishlist) find(productID string) int {
	for i, item := range w.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (w *wishlist) render() map[string]any {
	items := append([]WishlistItem{}, w.items...)
	return map[string]any{"_id": w.id, "items": items, "count": len(items)}
}

func (s *Server) createWishlist(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusCreated, s.wishlistLocked(userID(r)).render())
}

func (s *Server) getWishlist(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, s.wishlistLocked(userID(r)).render())
}

func (s *Server) addToWishlist(w http.ResponseWriter, r *http.Request) {
	var req wishlistRequest
	if err := decode(r, &req); err != nil || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "Product id is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[req.ProductID]; !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	list := s.wishlistLocked(userID(r))
	if list.find(req.ProductID) >= 0 {
		writeError(w, http.StatusConflict, "Product already in wishlist")
		return
	}
	list.items = append(list.items, WishlistItem{ProductID: req.ProductID, Price: req.Price, AddedAt: s.now(), Selection: req.Selection})
	writeData(w, http.StatusOK, list.render())
}

func (s *Server) removeFromWishlist(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.wishlistLocked(userID(r))
	idx := list.find(productID)
	if idx < 0 {
		writeError(w, http.StatusNotFound, "Product not in wishlist")
		return
	}
	list.items = append(list.items[:idx], list.items[idx+1:]...)
	writeData(w, http.StatusOK, list.render())
}

func (s *Server) toggleWishlist(w http.ResponseWriter, r *http.Request) {
	var req wishlistRequest
	if err := decode(r, &req); err != nil || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "Product id is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.wishlistLocked(userID(r))
	if idx := list.find(req.ProductID); idx >= 0 {
		list.items = append(list.items[:idx], list.items[idx+1:]...)
		writeData(w, http.StatusOK, map[string]any{"action": "removed", "inWishlist": false})
		return
	}
	if _, ok := s.products[req.ProductID]; !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	list.items = append(list.items, WishlistItem{ProductID: req.ProductID, Price: req.Price, AddedAt: s.now(), Selection: req.Selection})
	writeData(w, http.StatusOK, map[string]any{"action": "added", "inWishlist": true})
}

func (s *Server) wishlistCount(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, map[string]any{"count": len(s.wishlistLocked(userID(r)).items)})
}

func (s *Server) moveToCart(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	var req wishlistRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.wishlistLocked(userID(r))
	idx := list.find(productID)
	if idx < 0 {
		writeError(w, http.StatusNotFound, "Product not in wishlist")
		return
	}
	p, ok := s.products[productID]
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	item := list.items[idx]
	sel := req.Selection
	if sel == (Selection{}) {
		sel = item.Selection
	}
	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}
	s.cartLocked("user:"+userID(r)).add(CartLine{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: qty, Selection: sel})
	list.items = append(list.items[:idx], list.items[idx+1:]...)
	writeData(w, http.StatusOK, list.render())
}

func (s *Server) clearWishlist(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.wishlistLocked(userID(r))
	list.items = nil
	writeData(w, http.StatusOK, list.render())
}
