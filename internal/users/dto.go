package users

import "github.com/angelmondragon/storefront/pkg/types"

// Profile is the signed-in shopper as the API reports it.
type Profile struct {
	ID        string          `json:"_id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone,omitempty"`
	Addresses []types.Address `json:"addresses,omitempty"`
}

// DefaultAddress is the first saved address, used to prefill checkout.
func (p Profile) DefaultAddress() (types.Address, bool) {
	if len(p.Addresses) == 0 {
		return types.Address{}, false
	}
	return p.Addresses[0], true
}

// UpdateInput changes the profile. Nil fields are left untouched.
type UpdateInput struct {
	Name      *string          `json:"name,omitempty" validate:"omitnil,notblank,max=120"`
	Email     *string          `json:"email,omitempty" validate:"omitnil,email"`
	Phone     *string          `json:"phone,omitempty" validate:"omitnil,phone"`
	Addresses []types.Address `json:"addresses,omitempty" validate:"omitempty,dive"`
}

func (in UpdateInput) empty() bool {
	return in.Name == nil && in.Email == nil && in.Phone == nil && in.Addresses == nil
}
