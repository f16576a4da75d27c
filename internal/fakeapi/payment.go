package fakeapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type paymentRequest struct {
	OrderID           string `json:"orderId"`
	ProviderOrderID   string `json:"providerOrderId"`
	ProviderPaymentID string `json:"providerPaymentId"`
	Signature         string `json:"signature"`
	Reason            string `json:"reason"`
}

func (s *Server) initiatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decode(r, &req); err != nil || req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "Order id is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[req.OrderID]
	if !ok || o.UserID != userID(r) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	p := &Payment{
		OrderID:         o.ID,
		ProviderOrderID: s.nextID("prov_order_"),
		Amount:          o.Total,
		Currency:        "INR",
		Status:          "created",
	}
	s.payments[o.ID] = p
	writeData(w, http.StatusOK, p)
}

func (s *Server) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[req.OrderID]
	if !ok || p.ProviderOrderID != req.ProviderOrderID || req.Signature == "" {
		writeError(w, http.StatusBadRequest, "Payment verification failed")
		return
	}
	p.ProviderPaymentID = req.ProviderPaymentID
	p.Status = "verified"
	writeData(w, http.StatusOK, map[string]any{"verified": true})
}

func (s *Server) paymentSuccess(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[req.OrderID]
	if !ok {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	o.PaymentStatus = "paid"
	o.Status = "confirmed"
	if p, ok := s.payments[req.OrderID]; ok {
		p.Status = "captured"
		p.ProviderPaymentID = req.ProviderPaymentID
	}
	writeData(w, http.StatusOK, o)
}

func (s *Server) paymentFailure(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[req.OrderID]; ok {
		o.PaymentStatus = "failed"
	}
	if p, ok := s.payments[req.OrderID]; ok {
		p.Status = "failed"
		p.FailureReason = req.Reason
	}
	writeData(w, http.StatusOK, map[string]any{"recorded": true})
}

func (s *Server) paymentDetails(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[chi.URLParam(r, "orderId")]
	if !ok {
		writeError(w, http.StatusNotFound, "Payment not found")
		return
	}
	writeData(w, http.StatusOK, p)
}
