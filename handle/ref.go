package handle

import (
	intfbus "github.com/wippyai/intf-bus"
	"github.com/wippyai/intf-bus/errors"
	"github.com/wippyai/intf-bus/iid"
)

// Ref is an owning handle over a reference-counted object: it holds
// exactly one reference on the wrapped value until Clear (or Release)
// gives it up. Pair construction with a deferred Clear for scoped
// ownership:
//
//	r := handle.New(obj)
//	defer r.Clear()
//
// The zero Ref is valid and empty. Ref is not safe for concurrent
// mutation; share the underlying object, not the handle.
type Ref[T intfbus.Interface] struct {
	v  T
	ok bool
}

// New wraps v, taking one reference.
func New[T intfbus.Interface](v T) Ref[T] {
	v.Ref()
	return Ref[T]{v: v, ok: true}
}

// Adopt wraps v without taking a reference, assuming ownership of one
// the caller already holds — typically the reference returned by a
// query.
func Adopt[T intfbus.Interface](v T) Ref[T] {
	return Ref[T]{v: v, ok: true}
}

// Query resolves id on from and returns an owning handle on the result,
// adopting the query reference. The error is the query's resolution
// failure, or an invalid-argument error when the resolved object does
// not implement T (the reference is balanced before returning).
func Query[T intfbus.Interface](from intfbus.Interface, id iid.ID) (Ref[T], error) {
	got, err := from.QueryInterface(id)
	if err != nil {
		return Ref[T]{}, err
	}
	t, ok := got.(T)
	if !ok {
		got.Unref()
		return Ref[T]{}, errors.InvalidArgument(errors.PhaseQuery, "resolved object does not implement the requested type")
	}
	return Ref[T]{v: t, ok: true}, nil
}

// Valid reports whether the handle owns a value.
func (r *Ref[T]) Valid() bool {
	return r.ok
}

// Get borrows the wrapped value without transferring ownership. The
// zero value is returned from an empty handle.
func (r *Ref[T]) Get() T {
	return r.v
}

// GetRef returns the wrapped value with an extra reference the caller
// must release. Panics on an empty handle: handing out a reference to
// nothing is a contract violation.
func (r *Ref[T]) GetRef() T {
	if !r.ok {
		panic(errors.InvalidArgument(errors.PhaseRefcount, "GetRef on empty handle"))
	}
	r.v.Ref()
	return r.v
}

// Set replaces the wrapped value, releasing the old one and taking a
// reference on the new. The new reference is taken first, so setting a
// handle to the value it already holds is safe even on the last
// reference.
func (r *Ref[T]) Set(v T) {
	v.Ref()
	if r.ok {
		old := r.v
		r.reset()
		old.Unref()
	}
	r.v = v
	r.ok = true
}

// Release surrenders ownership and returns the raw value. The handle's
// reference is given back with UnrefNoDelete, so the object survives
// even when this was the last counted claim; keeping it alive is now
// the caller's convention to uphold.
func (r *Ref[T]) Release() T {
	v := r.v
	if r.ok {
		r.reset()
		v.UnrefNoDelete()
	}
	return v
}

// Clear releases the handle's reference, destroying the object if it
// was the last one. Safe on an empty handle, and the handle is empty
// afterwards.
func (r *Ref[T]) Clear() {
	if !r.ok {
		return
	}
	v := r.v
	r.reset()
	v.Unref()
}

func (r *Ref[T]) reset() {
	var zero T
	r.v = zero
	r.ok = false
}
