package fakeapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/pkg/auth"
	"github.com/golang-jwt/jwt/v5"
)

type ctxKey struct{}

// Token mints a signed access token for an existing user, for tests that
// skip the login call.
func (s *Server) Token(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == userID {
			token, _ := s.signLocked(u)
			return token
		}
	}
	return ""
}

func (s *Server) signLocked(u *user) (string, error) {
	now := s.now()
	claims := auth.TokenClaims{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}
		claims := &auth.TokenClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return s.secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims.Identity())))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

type loginRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type authResponse struct {
	Token string `json:"token"`
	User  *user  `json:"user"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(strings.TrimSpace(req.Email))]
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if match, err := checkPassword(req.Password, u.passwordHash); err != nil || !match {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token, err := s.signLocked(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	writeData(w, http.StatusOK, authResponse{Token: token, User: u})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[strings.ToLower(req.Email)]; exists {
		writeError(w, http.StatusConflict, "User already exists")
		return
	}
	u, err := s.addUserLocked(req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	u.Phone = req.Phone
	token, err := s.signLocked(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	writeData(w, http.StatusCreated, authResponse{Token: token, User: u})
}

func (s *Server) userByIDLocked(id string) *user {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

type profileRequest struct {
	Name      *string   `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Addresses []Address `json:"addresses"`
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userByIDLocked(userID(r))
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeData(w, http.StatusOK, u)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userByIDLocked(userID(r))
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil && !strings.EqualFold(*req.Email, u.Email) {
		email := strings.ToLower(*req.Email)
		if _, taken := s.users[email]; taken {
			writeError(w, http.StatusConflict, "Email already in use")
			return
		}
		delete(s.users, u.Email)
		u.Email = email
		s.users[email] = u
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Addresses != nil {
		u.Addresses = req.Addresses
	}
	writeData(w, http.StatusOK, u)
}
