// Package object provides the reference-counted implementation bases
// for the interface bus object model.
//
// # Bases
//
//   - Base: manual reference counting with an injected monitor and
//     ordered destruction callbacks. Embed it for bare ref-counted
//     values.
//   - Intf: Base plus a capability table answering QueryInterface for
//     plain interfaces.
//   - ExIntf: Base plus the bus-aware contract — host back-reference,
//     query delegation, and the two-phase finish lifetime.
//
// # Capability Table
//
// An object declares the identities it answers as an ordered export
// table at Init. Casting is a table scan rather than compiler-assisted
// pointer adjustment, so one object can publish several identities that
// all share a single reference count:
//
//	type FooBar struct {
//	    object.ExIntf
//	}
//
//	func NewFooBar() *FooBar {
//	    fb := &FooBar{}
//	    fb.Init(fb, []object.Export{
//	        {ID: FooID, Value: fb},
//	        {ID: BarID, Value: fb},
//	    })
//	    return fb
//	}
//
// # Lifetime
//
// Objects start at count zero. Destruction callbacks registered with
// WithDestroy or OnDestroy run the instant Unref takes the count from 1
// to 0, after the count lock is released. UnrefNoDelete decrements
// without ever destroying; it balances query references the caller does
// not keep.
package object
