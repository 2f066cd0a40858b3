// Package intfbus implements a dynamic-interface object model:
// reference-counted objects exposing typed interfaces, discoverable at
// runtime by stable identifiers and composable across independently
// built components through an interconnection graph (the "bus").
//
// # Architecture Overview
//
// The module is organized into several packages with distinct
// responsibilities:
//
//	intfbus/        Root package with the core contracts (RefCounted,
//	                Interface, InterfaceEx, Bus) and query state
//	├── iid/        Stable interface identifiers hashed from names
//	├── object/     Reference-counted implementation bases with a
//	                capability table for multi-identity objects
//	├── bus/        The leveled bus graph: connection, traversal,
//	                ordered multi-pass teardown
//	├── handle/     Ref[T], the owning smart handle over ref/unref
//	├── errors/     Structured errors (resolution vs contract classes)
//	└── cmd/busctl  Topology inspector CLI with an interactive TUI
//
// # Quick Start
//
// Declare an interface identity, implement it on an extended object,
// publish it on a bus and discover it from anywhere in the graph:
//
//	var GreeterID = iid.New("example.Greeter")
//
//	type Greeter struct {
//	    object.ExIntf
//	}
//
//	func NewGreeter() *Greeter {
//	    g := &Greeter{}
//	    g.Init(g, []object.Export{{ID: GreeterID, Value: g}})
//	    return g
//	}
//
//	b := bus.New(0)
//	defer b.Unref()
//	if err := b.Connect(NewGreeter()); err != nil {
//	    log.Fatal(err)
//	}
//
//	g, ok := intfbus.Cast[*Greeter](b, GreeterID)
//
// # Lifetime
//
// Objects are reference counted by hand: Ref to share, Unref to
// release, destruction the instant the count reaches zero. Queries
// return referenced pointers; Supports and Cast balance the query
// reference immediately and hand back a borrow. Buses hold strong
// references to hosted interfaces and owned child buses, and weak,
// mutually registered links to same-level siblings.
//
// # Security Levels
//
// Every bus carries an integer level, 0 being the most trusted.
// Discovery flows outward only: a query entering a level-0 bus can
// reach interfaces hosted on less secure (higher level) buses, never
// the reverse.
package intfbus
