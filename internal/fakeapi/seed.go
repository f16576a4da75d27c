package fakeapi

import (
	"strings"

	"github.com/shopspring/decimal"
)

func (s *Server) AddProduct(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		s.productOrder = append(s.productOrder, p.ID)
	}
	s.products[p.ID] = p
}

// AddDeal marks an existing product as a deal.
func (s *Server) AddDeal(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deals = append(s.deals, productID)
}

func (s *Server) AddCategory(c Category, subcategories ...Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, c)
	s.subcategories[c.ID] = append(s.subcategories[c.ID], subcategories...)
}

func (s *Server) AddBanner(b Banner, mobile bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mobile {
		s.mobileBanners = append(s.mobileBanners, b)
		return
	}
	s.banners = append(s.banners, b)
}

func (s *Server) AddBlog(b Blog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blogs = append(s.blogs, b)
}

// AddDiscount registers a fixed-amount coupon.
func (s *Server) AddDiscount(code string, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discounts[strings.ToUpper(code)] = amount
}

// AddUser registers an account and returns its id.
func (s *Server) AddUser(name, email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.addUserLocked(name, email, password)
	if err != nil {
		s.t.Fatalf("add user %s: %v", email, err)
	}
	return u.ID
}

func (s *Server) addUserLocked(name, email, password string) (*user, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &user{ID: s.nextID("user_"), Name: name, Email: strings.ToLower(email), passwordHash: hash}
	s.users[u.Email] = u
	return u, nil
}

// SetOrderStatus forces an order into status, e.g. "delivered" before a return.
func (s *Server) SetOrderStatus(orderID, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[orderID]; ok {
		o.Status = status
	}
}

// CartLines returns a copy of the server cart for a user id or guest session id.
func (s *Server) CartLines(owner string) []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range []string{"user:" + owner, "guest:" + owner} {
		if c, ok := s.carts[key]; ok {
			return append([]CartLine(nil), c.lines...)
		}
	}
	return nil
}

// WishlistProducts lists the product ids in a user's wishlist.
func (s *Server) WishlistProducts(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wishlists[userID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(w.items))
	for _, item := range w.items {
		out = append(out, item.ProductID)
	}
	return out
}

// AddWishlistEntry writes straight into a wishlist, like another device would.
func (s *Server) AddWishlistEntry(userID string, item WishlistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.wishlistLocked(userID)
	item.AddedAt = s.now()
	w.items = append(w.items, item)
}

func (s *Server) Order(orderID string) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

func (s *Server) Payment(orderID string) (Payment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[orderID]
	if !ok {
		return Payment{}, false
	}
	return *p, true
}
