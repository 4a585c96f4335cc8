package services

// Result holds the outcome of a non-critical collaborator call
type Result[T any] struct {
	Value T
	Err   error
}

// Attempt runs fn and captures its value and error
func Attempt[T any](fn func() (T, error)) Result[T] {
	v, err := fn()
	return Result[T]{Value: v, Err: err}
}

// OK reports whether the call succeeded
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// OrElse returns the value, or fallback when the call failed
func (r Result[T]) OrElse(fallback T) T {
	if r.Err != nil {
		return fallback
	}
	return r.Value
}
