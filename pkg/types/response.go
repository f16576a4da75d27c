package types

type SuccessEnvelope struct {
	Data   any     `json:"data"`
	Notice *Notice `json:"notice,omitempty"`
}

// Notice is a user-facing notification attached to a view or action response.
// Blocking notices are rendered as alerts; the rest as transient toasts.
type Notice struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Blocking bool   `json:"blocking,omitempty"`
}

const (
	NoticeSuccess = "success"
	NoticeError   = "error"
	NoticeInfo    = "info"
)

type APIError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Details  any    `json:"details,omitempty"`
	Blocking bool   `json:"blocking,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
