package types

import "strings"

// Address is a shipping address collected at checkout.
type Address struct {
	FullName   string `json:"fullName" validate:"notblank,max=120"`
	Phone      string `json:"phone" validate:"phone"`
	Line1      string `json:"addressLine1" validate:"notblank,max=200"`
	Line2      string `json:"addressLine2,omitempty" validate:"max=200"`
	City       string `json:"city" validate:"notblank"`
	State      string `json:"state" validate:"notblank"`
	PostalCode string `json:"pincode" validate:"notblank,min=4,max=10"`
	Country    string `json:"country"`
}

// Normalized trims every field and defaults the country.
func (a Address) Normalized() Address {
	out := Address{
		FullName:   strings.TrimSpace(a.FullName),
		Phone:      strings.ReplaceAll(strings.TrimSpace(a.Phone), " ", ""),
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
	if out.Country == "" {
		out.Country = "India"
	}
	return out
}
