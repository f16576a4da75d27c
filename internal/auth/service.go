// Package auth owns the client's sign-in state: the bearer token in local
// storage, the guest to account transition, and re-sync when another client
// instance signs in or out.
package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/session"
	pkgauth "github.com/angelmondragon/storefront/pkg/auth"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/storage"
	"github.com/angelmondragon/storefront/pkg/validate"
)

const (
	endpointLogin    = "/auth/login"
	endpointRegister = "/auth/register"
)

type Requester interface {
	Do(ctx context.Context, method, endpoint string, body, out any) error
}

// CartSession is the part of the cart store that follows sign-in changes.
type CartSession interface {
	Merge(ctx context.Context, guestSessionID string) pkgerrors.Result[cart.State]
	Fetch(ctx context.Context) pkgerrors.Result[cart.State]
	Reset()
}

// Resetter drops per-user client state on sign-out.
type Resetter interface {
	Reset()
}

type Params struct {
	API    Requester
	Tokens storage.Store
	Guest  *session.Guest
	Cart   CartSession
	// Resetters are cleared on sign-out, e.g. the wishlist store.
	Resetters []Resetter
	Logger    *logger.Logger
	Now       func() time.Time
}

type Service struct {
	api       Requester
	tokens    storage.Store
	guest     *session.Guest
	cart      CartSession
	resetters []Resetter
	logg      *logger.Logger
	now       func() time.Time

	mu      sync.RWMutex
	current Session
}

func NewService(p Params) (*Service, error) {
	if p.API == nil || p.Tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth requires an api client and token storage")
	}
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		api:       p.API,
		tokens:    p.Tokens,
		guest:     p.Guest,
		cart:      p.Cart,
		resetters: p.Resetters,
		logg:      logg,
		now:       now,
	}, nil
}

func (s *Service) Login(ctx context.Context, input LoginInput) pkgerrors.Result[SignIn] {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validate.Struct(input); err != nil {
		return pkgerrors.Fail[SignIn](err)
	}
	return s.exchange(ctx, endpointLogin, input)
}

func (s *Service) Register(ctx context.Context, input RegisterInput) pkgerrors.Result[SignIn] {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Phone = strings.ReplaceAll(strings.TrimSpace(input.Phone), " ", "")
	if err := validate.Struct(input); err != nil {
		return pkgerrors.Fail[SignIn](err)
	}
	return s.exchange(ctx, endpointRegister, input)
}

// CompleteOAuth accepts the token handed back by the OAuth callback.
func (s *Service) CompleteOAuth(ctx context.Context, token string) pkgerrors.Result[SignIn] {
	token = strings.TrimSpace(token)
	if token == "" {
		return pkgerrors.Fail[SignIn](pkgerrors.New(pkgerrors.CodeValidation, "missing sign-in token"))
	}
	claims, err := pkgauth.DecodeToken(token)
	if err != nil {
		return pkgerrors.Fail[SignIn](pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "sign-in link is invalid"))
	}
	if pkgauth.Expired(claims, s.now()) {
		return pkgerrors.Fail[SignIn](pkgerrors.New(pkgerrors.CodeUnauthorized, "sign-in link has expired"))
	}
	return s.signIn(ctx, token, sessionFrom(claims))
}

// Logout forgets the token and every per-user store.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.tokens.Remove(ctx, storage.KeyToken); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sign-out failed")
	}
	s.signedOut(ctx)
	s.logg.Info(ctx, "auth.logged_out")
	return nil
}

// Current reads the stored token. A JWT whose exp has passed is removed and
// the shopper is treated as a guest. Tokens that are not JWTs are kept.
func (s *Service) Current(ctx context.Context) Session {
	token, ok, err := s.tokens.Get(ctx, storage.KeyToken)
	if err != nil {
		s.logg.WarnErr(ctx, "auth.token_read_failed", err)
		return s.snapshot()
	}
	if !ok || strings.TrimSpace(token) == "" {
		s.set(Session{})
		return Session{}
	}
	claims, err := pkgauth.DecodeToken(token)
	if err != nil {
		// Opaque token: only the API can judge it, so keep it and any
		// identity learned at sign-in.
		sess := s.snapshot()
		sess.Authenticated = true
		sess.ExpiresAt = nil
		s.set(sess)
		return sess
	}
	if pkgauth.Expired(claims, s.now()) {
		s.logg.Warn(ctx, "auth.token_discarded")
		if rmErr := s.tokens.Remove(ctx, storage.KeyToken); rmErr != nil {
			s.logg.WarnErr(ctx, "auth.token_remove_failed", rmErr)
		}
		s.signedOut(ctx)
		return Session{}
	}
	sess := sessionFrom(claims)
	s.set(sess)
	return sess
}

// Sync applies a token change made by another client instance. Other keys
// are ignored.
func (s *Service) Sync(ctx context.Context, ev storage.Event) {
	if ev.Key != storage.KeyToken || (ev.OldValue == ev.NewValue && !ev.Removed) {
		return
	}
	if ev.Removed || strings.TrimSpace(ev.NewValue) == "" {
		s.signedOut(ctx)
		s.logg.Info(ctx, "auth.synced_logout")
		return
	}
	sess := s.Current(ctx)
	if !sess.Authenticated {
		return
	}
	s.logg.Info(s.logg.WithUserID(ctx, sess.UserID), "auth.synced_login")
	if s.cart != nil {
		if res := s.cart.Fetch(ctx); !res.OK {
			s.logg.WarnErr(ctx, "auth.sync_cart_failed", res.Err)
		}
	}
}

// Listen subscribes Sync to store events until the returned func is called.
func (s *Service) Listen(ctx context.Context, store storage.Store) func() {
	return store.Subscribe(func(ev storage.Event) {
		s.Sync(ctx, ev)
	})
}

func (s *Service) exchange(ctx context.Context, endpoint string, body any) pkgerrors.Result[SignIn] {
	var out tokenResponse
	if err := s.api.Do(ctx, http.MethodPost, endpoint, body, &out); err != nil {
		return pkgerrors.Fail[SignIn](err)
	}
	if strings.TrimSpace(out.Token) == "" {
		return pkgerrors.Fail[SignIn](pkgerrors.New(pkgerrors.CodeUpstream, "sign-in did not return a token"))
	}
	sess := Session{Authenticated: true, UserID: out.User.ID, Email: out.User.Email, Name: out.User.Name}
	if claims, err := pkgauth.DecodeToken(out.Token); err == nil {
		decoded := sessionFrom(claims)
		sess.ExpiresAt = decoded.ExpiresAt
		if sess.UserID == "" {
			sess.UserID = decoded.UserID
		}
	}
	return s.signIn(ctx, out.Token, sess)
}

func (s *Service) signIn(ctx context.Context, token string, sess Session) pkgerrors.Result[SignIn] {
	if err := s.tokens.Set(ctx, storage.KeyToken, token); err != nil {
		return pkgerrors.Fail[SignIn](pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not store sign-in"))
	}
	s.set(sess)
	ctx = s.logg.WithUserID(ctx, sess.UserID)
	s.logg.Info(ctx, "auth.signed_in")
	return pkgerrors.Ok(s.promoteGuest(ctx, sess))
}

// promoteGuest is the guest to account transition: a pending guest cart is
// merged exactly once, then the account cart is loaded. A failed merge is
// reported but does not undo the sign-in.
func (s *Service) promoteGuest(ctx context.Context, sess Session) SignIn {
	out := SignIn{Session: sess}
	if s.cart == nil {
		return out
	}
	guestID := ""
	if s.guest != nil {
		id, err := s.guest.Current(ctx)
		if err != nil {
			s.logg.WarnErr(ctx, "auth.guest_read_failed", err)
		}
		guestID = id
	}
	if guestID != "" {
		res := s.cart.Merge(s.logg.WithSessionID(ctx, guestID), guestID)
		if res.OK {
			out.Merged = true
			return out
		}
		out.MergeError = pkgerrors.UserMessage(res.Err)
		s.logg.WarnErr(ctx, "auth.guest_merge_failed", res.Err)
	}
	if res := s.cart.Fetch(ctx); !res.OK {
		s.logg.WarnErr(ctx, "auth.cart_fetch_failed", res.Err)
	}
	return out
}

func (s *Service) signedOut(ctx context.Context) {
	s.set(Session{})
	if s.cart != nil {
		s.cart.Reset()
	}
	for _, r := range s.resetters {
		r.Reset()
	}
	s.logg.Debug(ctx, "auth.state_cleared")
}

func (s *Service) snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Service) set(sess Session) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
}

func sessionFrom(claims *pkgauth.TokenClaims) Session {
	sess := Session{
		Authenticated: true,
		UserID:        claims.Identity(),
		Email:         claims.Email,
		Name:          claims.Name,
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		sess.ExpiresAt = &exp
	}
	return sess
}
