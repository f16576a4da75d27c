package fakeapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

var (
	cancellable = map[string]bool{"pending": true, "confirmed": true, "processing": true}
	returnable  = map[string]bool{"delivered": true}
)

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShippingAddress Address `json:"shippingAddress"`
		PaymentMethod   string  `json:"paymentMethod"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(r)
	c := s.cartLocked("user:" + uid)
	if len(c.lines) == 0 {
		writeError(w, http.StatusBadRequest, "Cart is empty")
		return
	}
	totals := c.render()
	items := append([]CartLine(nil), totals["items"].([]CartLine)...)
	id := s.nextID("order_")
	o := &Order{
		ID:              id,
		OrderNumber:     fmt.Sprintf("ORD-%04d", len(s.orderSeq)+1),
		UserID:          uid,
		Status:          "pending",
		PaymentStatus:   "pending",
		PaymentMethod:   req.PaymentMethod,
		Items:           items,
		Subtotal:        totals["subtotal"].(decimal.Decimal),
		DiscountAmount:  totals["discountAmount"].(decimal.Decimal),
		Total:           totals["total"].(decimal.Decimal),
		ShippingAddress: req.ShippingAddress,
		CreatedAt:       s.now(),
	}
	s.orders[id] = o
	s.orderSeq = append(s.orderSeq, id)
	writeData(w, http.StatusCreated, o)
}

func (s *Server) userOrdersLocked(uid string, keep func(*Order) bool) []Order {
	out := []Order{}
	for i := len(s.orderSeq) - 1; i >= 0; i-- {
		o := s.orders[s.orderSeq[i]]
		if o.UserID == uid && keep(o) {
			out = append(out, *o)
		}
	}
	return out
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	page, limit := pageParams(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.userOrdersLocked(userID(r), func(o *Order) bool { return status == "" || o.Status == status })
	total := len(all)
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
		"orders": all[start:end],
		"pagination": map[string]any{
			"page": page, "limit": limit, "total": total, "totalPages": pages,
			"hasNextPage": page < pages, "hasPrevPage": page > 1,
		},
	})
}

func (s *Server) searchOrders(w http.ResponseWriter, r *http.Request) {
	term := strings.ToLower(r.URL.Query().Get("q"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.userOrdersLocked(userID(r), func(o *Order) bool {
		if strings.Contains(strings.ToLower(o.OrderNumber), term) {
			return true
		}
		for _, item := range o.Items {
			if strings.Contains(strings.ToLower(item.Name), term) {
				return true
			}
		}
		return false
	})
	writeData(w, http.StatusOK, map[string]any{"orders": out})
}

func (s *Server) orderStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byStatus := map[string]int{}
	spent := decimal.Zero
	all := s.userOrdersLocked(userID(r), func(*Order) bool { return true })
	for _, o := range all {
		byStatus[o.Status]++
		if o.Status != "cancelled" {
			spent = spent.Add(o.Total)
		}
	}
	writeData(w, http.StatusOK, map[string]any{"totalOrders": len(all), "byStatus": byStatus, "totalSpent": spent})
}

func (s *Server) orderForUserLocked(r *http.Request) (*Order, bool) {
	o, ok := s.orders[chi.URLParam(r, "id")]
	if !ok || o.UserID != userID(r) {
		return nil, false
	}
	return o, true
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orderForUserLocked(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	writeData(w, http.StatusOK, o)
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = decode(r, &req)
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orderForUserLocked(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if !cancellable[o.Status] {
		writeError(w, http.StatusBadRequest, "Order cannot be cancelled")
		return
	}
	o.Status = "cancelled"
	o.CancelReason = req.Reason
	writeData(w, http.StatusOK, o)
}

func (s *Server) returnOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = decode(r, &req)
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orderForUserLocked(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if !returnable[o.Status] {
		writeError(w, http.StatusBadRequest, "Only delivered orders can be returned")
		return
	}
	o.Status = "return_requested"
	o.ReturnReason = req.Reason
	writeData(w, http.StatusOK, o)
}
