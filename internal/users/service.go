// Package users reads and updates the signed-in shopper's profile.
package users

import (
	"context"
	"net/http"
	"strings"
	"sync"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/angelmondragon/storefront/pkg/validate"
)

const endpointProfile = "/user/profile"

type Requester interface {
	Do(ctx context.Context, method, endpoint string, body, out any) error
}

// Service keeps the last profile it saw so views can render without a call.
type Service struct {
	api  Requester
	logg *logger.Logger

	mu     sync.RWMutex
	cached *Profile
}

func NewService(api Requester, logg *logger.Logger) (*Service, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users require an api client")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{api: api, logg: logg}, nil
}

func (s *Service) Profile(ctx context.Context) pkgerrors.Result[Profile] {
	var out Profile
	if err := s.api.Do(ctx, http.MethodGet, endpointProfile, nil, &out); err != nil {
		return pkgerrors.Fail[Profile](err)
	}
	s.remember(&out)
	return pkgerrors.Ok(out)
}

// UpdateProfile validates input before sending only the fields that changed.
func (s *Service) UpdateProfile(ctx context.Context, input UpdateInput) pkgerrors.Result[Profile] {
	input = normalize(input)
	if input.empty() {
		return pkgerrors.Fail[Profile](pkgerrors.New(pkgerrors.CodeValidation, "nothing to update"))
	}
	if err := validate.Struct(input); err != nil {
		return pkgerrors.Fail[Profile](err)
	}
	var out Profile
	if err := s.api.Do(ctx, http.MethodPut, endpointProfile, input, &out); err != nil {
		return pkgerrors.Fail[Profile](err)
	}
	s.remember(&out)
	s.logg.Info(s.logg.WithUserID(ctx, out.ID), "users.profile_updated")
	return pkgerrors.Ok(out)
}

// Cached returns the last fetched profile, if any.
func (s *Service) Cached() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cached == nil {
		return Profile{}, false
	}
	return *s.cached, true
}

// Reset drops the cached profile on sign-out.
func (s *Service) Reset() {
	s.remember(nil)
}

func (s *Service) remember(p *Profile) {
	s.mu.Lock()
	s.cached = p
	s.mu.Unlock()
}

func normalize(in UpdateInput) UpdateInput {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		out := strings.TrimSpace(*v)
		return &out
	}
	in.Name = trim(in.Name)
	in.Email = trim(in.Email)
	if in.Email != nil {
		lower := strings.ToLower(*in.Email)
		in.Email = &lower
	}
	if in.Phone != nil {
		phone := strings.ReplaceAll(strings.TrimSpace(*in.Phone), " ", "")
		in.Phone = &phone
	}
	if len(in.Addresses) > 0 {
		addrs := make([]types.Address, 0, len(in.Addresses))
		for _, a := range in.Addresses {
			addrs = append(addrs, a.Normalized())
		}
		in.Addresses = addrs
	}
	return in
}
