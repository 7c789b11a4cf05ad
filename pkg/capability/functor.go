package capability

import (
	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/types"
)

// Cell pairs a value with the Capability and Digest that authorize
// access to it. It is the Go analog of a capability functor: F(Cap ▷
// X) = Cap ▷ F(X).
type Cell[T any] struct {
	Cap    types.Capability
	Digest digest.Digest
	Value  T
}

// NewCell wraps value under cap, identified by d.
func NewCell[T any](value T, cap types.Capability, d digest.Digest) Cell[T] {
	return Cell[T]{Cap: cap, Digest: d, Value: value}
}

// Map transforms the cell's value while leaving its capability and
// digest untouched — the functor law that a pure transform of the
// payload never changes the authority that guards it.
func Map[T, U any](c Cell[T], f func(T) U) Cell[U] {
	return Cell[U]{Cap: c.Cap, Digest: c.Digest, Value: f(c.Value)}
}

// FlatMap transforms the cell's value into a new cell that may carry
// its own capability and digest, then composes the two capabilities by
// Meet — the result can never hold more authority than either input,
// matching the meet-only composition rule.
func FlatMap[T, U any](c Cell[T], f func(T) Cell[U]) Cell[U] {
	next := f(c.Value)
	return Cell[U]{
		Cap:    Meet(c.Cap, next.Cap),
		Digest: next.Digest,
		Value:  next.Value,
	}
}
