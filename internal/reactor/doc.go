// Package reactor implements a unidirectional state container.
//
// A Reactor turns actions into mutations (Mutate) and folds mutations into
// a new state snapshot (Reduce). Reactors that also react to outside events
// implement Transformer, which lets them attach extra mutation sources whose
// output is merged with the action-driven mutations.
//
// # Timeline
//
// All work of a Store runs on a Loop: a serial executor that runs scheduled
// functions one at a time, in submission order, on a single goroutine.
// Several stores may share a Loop; a list screen and all of its row stores
// do, so that a row update requested while handling a list event is applied
// right after that event, never concurrently with it.
//
// Mutations are applied in the order they arrive on the loop, regardless of
// whether they came from an action or from a transform source.
//
// # Teardown
//
// Store.Close sets a cancellation flag that every scheduled continuation
// checks before touching state, detaches transform sources and stops
// asynchronous mutation streams.
package reactor
