// Package bus implements the interconnection graph of the object
// model: a Bus aggregates interfaces and other buses into a
// security-leveled discovery graph and answers identifier queries by
// traversal.
//
// # Graph Shape
//
// Every bus carries an integer level; 0 is the most trusted tier. Three
// link kinds exist:
//
//   - hosted interfaces: strong references with a teardown order tag
//   - owned child buses: strong references to strictly less secure
//     (higher level) buses, kept sorted ascending by level
//   - siblings: weak, mutually registered links between equal-level
//     buses
//
// Queries flow outward only: an interface hosted on a less secure bus
// is discoverable from a more secure one, never the reverse.
//
// # Resolution Order
//
// A query first self-matches the universal identities, then scans
// hosted interfaces, then siblings, then owned children, returning the
// first match with one reference taken for the caller. A per-query
// visited set keyed by object serials makes cyclic topologies safe.
//
// # Teardown
//
// Finish (or destruction of the last reference) removes the bus from
// every sibling, finishes hosted interfaces in three ordered passes —
// within a pass, later-installed interfaces first — releases them, and
// finally finishes and releases owned child buses in reverse connection
// order.
//
// # Thread Safety
//
// All bus operations are safe for concurrent use. Structural state is
// guarded by a per-bus mutex; traversal snapshots the adjacency lists
// and delegates with the lock released. Establishing sibling links
// between two buses from two goroutines simultaneously (each
// connecting the other) is the caller's to serialize.
package bus
