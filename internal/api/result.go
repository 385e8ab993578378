package api

import "fmt"

// genericErrorMessage is surfaced when a failure carries no usable message.
const genericErrorMessage = "Unknown error"

// State enumerates the three outcomes of a remote operation.
type State int

const (
	StateLoading State = iota
	StateSuccess
	StateError
)

// Result is the tri-state outcome every remote call produces. A remote
// operation never propagates an unhandled failure: backend-reported logical
// failures and transport/decode failures both collapse into the error state
// with a human-readable message.
type Result[T any] struct {
	state   State
	value   T
	message string
}

// Loading returns a result representing an in-flight operation.
func Loading[T any]() Result[T] {
	return Result[T]{state: StateLoading}
}

// Ok returns a successful result carrying the payload.
func Ok[T any](value T) Result[T] {
	return Result[T]{state: StateSuccess, value: value}
}

// OkMsg returns a successful result carrying the payload and the
// backend-supplied message.
func OkMsg[T any](value T, message string) Result[T] {
	return Result[T]{state: StateSuccess, value: value, message: message}
}

// Err returns an error result. An empty message falls back to a generic one.
func Err[T any](message string) Result[T] {
	if message == "" {
		message = genericErrorMessage
	}
	return Result[T]{state: StateError, message: message}
}

// Errf returns an error result with a formatted message.
func Errf[T any](format string, args ...any) Result[T] {
	return Err[T](fmt.Sprintf(format, args...))
}

// State returns the result state.
func (r Result[T]) State() State { return r.state }

// IsLoading reports whether the operation is still in flight.
func (r Result[T]) IsLoading() bool { return r.state == StateLoading }

// IsSuccess reports whether the operation completed with a logical success.
func (r Result[T]) IsSuccess() bool { return r.state == StateSuccess }

// IsError reports whether the operation failed.
func (r Result[T]) IsError() bool { return r.state == StateError }

// Value returns the payload. Only meaningful for successful results.
func (r Result[T]) Value() T { return r.value }

// Message returns the backend or failure message attached to the result.
func (r Result[T]) Message() string { return r.message }
