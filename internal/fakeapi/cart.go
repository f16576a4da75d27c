package fakeapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type lineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Selection
}

func cartKey(r *http.Request) string {
	if sid := chi.URLParam(r, "sid"); sid != "" {
		return "guest:" + sid
	}
	return "user:" + userID(r)
}

func (s *Server) cartLocked(key string) *cartState {
	c, ok := s.carts[key]
	if !ok {
		c = &cartState{}
		s.carts[key] = c
	}
	return c
}

func (c *cartState) render() map[string]any {
	subtotal := decimal.Zero
	count := 0
	items := make([]CartLine, 0, len(c.lines))
	for _, line := range c.lines {
		line.LineTotal = line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(line.LineTotal)
		count += line.Quantity
		items = append(items, line)
	}
	discount := decimal.Zero
	if c.discount != nil {
		discount = decimal.Min(c.discount.Amount, subtotal)
	}
	return map[string]any{
		"items":           items,
		"subtotal":        subtotal,
		"discountAmount":  discount,
		"total":           subtotal.Sub(discount),
		"itemCount":       count,
		"appliedDiscount": c.discount,
	}
}

func (c *cartState) find(key string) int {
	for i, line := range c.lines {
		if line.Selection.key(line.ProductID) == key {
			return i
		}
	}
	return -1
}

func (c *cartState) add(line CartLine) {
	if idx := c.find(line.Selection.key(line.ProductID)); idx >= 0 {
		c.lines[idx].Quantity += line.Quantity
		return
	}
	c.lines = append(c.lines, line)
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, s.cartLocked(cartKey(r)).render())
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[req.ProductID]
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	c := s.cartLocked(cartKey(r))
	c.add(CartLine{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: req.Quantity, Selection: req.Selection})
	writeData(w, http.StatusOK, c.render())
}

func (s *Server) updateCart(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartLocked(cartKey(r))
	idx := c.find(req.Selection.key(req.ProductID))
	if idx < 0 {
		writeError(w, http.StatusNotFound, "Item not found in cart")
		return
	}
	c.lines[idx].Quantity = req.Quantity
	writeData(w, http.StatusOK, c.render())
}

func (s *Server) removeFromCart(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartLocked(cartKey(r))
	idx := c.find(req.Selection.key(req.ProductID))
	if idx < 0 {
		writeError(w, http.StatusNotFound, "Item not found in cart")
		return
	}
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	writeData(w, http.StatusOK, c.render())
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartLocked(cartKey(r))
	c.lines = nil
	c.discount = nil
	writeData(w, http.StatusOK, c.render())
}

func (s *Server) mergeCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GuestSessionID string `json:"guestSessionId"`
	}
	if err := decode(r, &req); err != nil || strings.TrimSpace(req.GuestSessionID) == "" {
		writeError(w, http.StatusBadRequest, "Guest session id is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	target := s.cartLocked(cartKey(r))
	if guest, ok := s.carts["guest:"+req.GuestSessionID]; ok {
		for _, line := range guest.lines {
			target.add(line)
		}
		if target.discount == nil {
			target.discount = guest.discount
		}
		delete(s.carts, "guest:"+req.GuestSessionID)
	}
	writeData(w, http.StatusOK, target.render())
}

func (s *Server) applyDiscount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	s.mu.Lock()
	defer s.mu.Unlock()
	amount, ok := s.discounts[code]
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid or expired discount code")
		return
	}
	c := s.cartLocked(cartKey(r))
	if len(c.lines) == 0 {
		writeError(w, http.StatusBadRequest, "Cart is empty")
		return
	}
	c.discount = &appliedDiscount{Code: code, Type: "coupon", Amount: amount}
	writeData(w, http.StatusOK, c.render())
}

func (s *Server) removeDiscount(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartLocked(cartKey(r))
	c.discount = nil
	writeData(w, http.StatusOK, c.render())
}

func (s *Server) validateDiscount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code     string          `json:"code"`
		Subtotal decimal.Decimal `json:"subtotal"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	s.mu.Lock()
	defer s.mu.Unlock()
	amount, ok := s.discounts[code]
	if !ok {
		writeData(w, http.StatusOK, map[string]any{"valid": false, "code": code, "message": "Invalid or expired discount code"})
		return
	}
	writeData(w, http.StatusOK, map[string]any{"valid": true, "code": code, "discountAmount": decimal.Min(amount, req.Subtotal)})
}
