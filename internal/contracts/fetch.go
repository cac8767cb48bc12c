package contracts

// Fetch is the outcome of one external lookup: either a value or the
// reason it could not be obtained. Callers map an unavailable result to
// an all-unknown record.
type Fetch[T any] struct {
	Value     T
	Available bool
	Reason    string
}

// Ok wraps a fetched value
func Ok[T any](v T) Fetch[T] {
	return Fetch[T]{Value: v, Available: true}
}

// Failed records why a value could not be fetched
func Failed[T any](reason string) Fetch[T] {
	return Fetch[T]{Reason: reason}
}

// FailedErr records an error as the reason
func FailedErr[T any](err error) Fetch[T] {
	if err == nil {
		return Fetch[T]{Reason: "unknown error"}
	}
	return Fetch[T]{Reason: err.Error()}
}

// OrZero returns the value, or T's zero value when unavailable.
// Snapshot zero values are all-unknown.
func (f Fetch[T]) OrZero() T {
	if !f.Available {
		var zero T
		return zero
	}
	return f.Value
}
