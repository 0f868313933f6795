package reactor

import "context"

// Reactor is a state machine parameterized by its action, mutation and
// state types.
type Reactor[A, M, S any] interface {
	// InitialState returns the state a new store starts with.
	InitialState() S
	// Mutate resolves an action against the current state.
	Mutate(ctx context.Context, state S, action A) Stream[M]
	// Reduce folds one mutation into a new state. It must not modify state
	// in place.
	Reduce(state S, mutation M) S
}

// Deferred computes mutations against the state current at the moment it
// runs on the loop. ctx is the store's context and is done once the store
// is closed.
type Deferred[M, S any] func(ctx context.Context, state S) []M

// Transformer is implemented by reactors that merge mutation sources other
// than their own actions. Transform is called once, when the store is
// created; every call to emit schedules a Deferred on the store's loop. The
// returned function detaches the sources and is called on Close.
type Transformer[M, S any] interface {
	Transform(emit func(Deferred[M, S])) (detach func())
}
