package auth

import "time"

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterInput struct {
	Name     string `json:"name" validate:"notblank,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,phone"`
}

// Session is what the client knows about the signed-in shopper. Claims come
// from an unverified token decode and are for display only.
type Session struct {
	Authenticated bool       `json:"authenticated"`
	UserID        string     `json:"userId,omitempty"`
	Email         string     `json:"email,omitempty"`
	Name          string     `json:"name,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

// SignIn is the result of a login, registration or OAuth completion.
type SignIn struct {
	Session Session `json:"session"`
	// Merged is true when a guest cart was folded into the account.
	Merged bool `json:"merged"`
	// MergeError is set when the guest cart could not be merged. The
	// sign-in itself still succeeded.
	MergeError string `json:"mergeError,omitempty"`
}

type tokenResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"_id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}
