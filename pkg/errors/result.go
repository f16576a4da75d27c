package errors

// Result is the uniform outcome returned by store operations. Callers branch on
// OK instead of inspecting error types, and show Message() to the user.
type Result[T any] struct {
	OK   bool
	Data T
	Err  error
}

func Ok[T any](data T) Result[T] {
	return Result[T]{OK: true, Data: data}
}

func Fail[T any](err error) Result[T] {
	if err == nil {
		err = New(CodeInternal, "operation failed")
	}
	return Result[T]{Err: err}
}

// Message is empty for successful results.
func (r Result[T]) Message() string {
	if r.OK {
		return ""
	}
	return UserMessage(r.Err)
}

// Unwrap returns the data and error pair for callers that prefer Go's error idiom.
func (r Result[T]) Unwrap() (T, error) {
	return r.Data, r.Err
}
