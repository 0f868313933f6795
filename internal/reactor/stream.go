package reactor

// Stream is the finite sequence of mutations produced for one action.
// Values given to Just are applied immediately, in order. A channel given to
// From is drained in the background and each value is applied on the loop
// as it arrives.
type Stream[M any] struct {
	values []M
	async  <-chan M
}

// Just returns a stream of the given mutations.
func Just[M any](values ...M) Stream[M] {
	return Stream[M]{values: values}
}

// Empty returns a stream with no mutations.
func Empty[M any]() Stream[M] {
	return Stream[M]{}
}

// From returns a stream fed by ch. The stream ends when ch is closed.
func From[M any](ch <-chan M) Stream[M] {
	return Stream[M]{async: ch}
}

// IsEmpty reports whether the stream carries no mutations at all.
func (s Stream[M]) IsEmpty() bool {
	return len(s.values) == 0 && s.async == nil
}
