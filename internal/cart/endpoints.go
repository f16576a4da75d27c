package cart

import (
	"fmt"
	"net/url"
)

// scope picks the authenticated or guest variant of every cart endpoint.
type scope struct {
	base        string
	discountURL string
	guest       bool
}

func userScope() scope {
	return scope{base: "/cart", discountURL: "/discount"}
}

func guestScope(sessionID string) scope {
	base := fmt.Sprintf("/guest-cart/%s", url.PathEscape(sessionID))
	return scope{base: base, discountURL: base + "/discount", guest: true}
}

func (s scope) cart() string           { return s.base }
func (s scope) add() string            { return s.base + "/add" }
func (s scope) update() string         { return s.base + "/update" }
func (s scope) remove() string         { return s.base + "/remove" }
func (s scope) clear() string          { return s.base + "/clear" }
func (s scope) applyDiscount() string  { return s.discountURL + "/apply" }
func (s scope) removeDiscount() string { return s.discountURL + "/remove" }

const (
	endpointMerge            = "/cart/merge"
	endpointValidateDiscount = "/discount/validate"
)
