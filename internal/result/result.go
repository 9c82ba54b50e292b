// Package result carries success-or-error values across the API boundary
// without panics. Backend failures travel as data; callers unwrap with Match.
package result

// Result holds either a success value of type T or an error value of type E.
// The zero value is a success carrying T's zero value; construct with Ok or
// Err in practice.
type Result[T, E any] struct {
	failed bool
	data   T
	err    E
}

func Ok[T, E any](data T) Result[T, E] {
	return Result[T, E]{data: data}
}

func Err[T, E any](err E) Result[T, E] {
	return Result[T, E]{failed: true, err: err}
}

func (r Result[T, E]) Success() bool { return !r.failed }

// Data returns the success value and whether the result is a success.
func (r Result[T, E]) Data() (T, bool) {
	return r.data, !r.failed
}

// Error returns the error value and whether the result is a failure.
func (r Result[T, E]) Error() (E, bool) {
	return r.err, r.failed
}

// Map applies f to the success value; errors pass through unchanged.
func Map[T, U, E any](r Result[T, E], f func(T) U) Result[U, E] {
	if r.failed {
		return Result[U, E]{failed: true, err: r.err}
	}
	return Ok[U, E](f(r.data))
}

// FlatMap chains a result-producing f onto a success; errors short-circuit
// and f is never invoked.
func FlatMap[T, U, E any](r Result[T, E], f func(T) Result[U, E]) Result[U, E] {
	if r.failed {
		return Result[U, E]{failed: true, err: r.err}
	}
	return f(r.data)
}

// Match invokes exactly one of the two handlers and returns its value.
func Match[T, E, R any](r Result[T, E], onSuccess func(T) R, onError func(E) R) R {
	if r.failed {
		return onError(r.err)
	}
	return onSuccess(r.data)
}
