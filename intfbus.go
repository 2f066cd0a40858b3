package intfbus

import (
	"github.com/wippyai/intf-bus/iid"
)

// Well-known identities. Every object answers BaseID; every bus-aware
// object additionally answers ExID; buses answer BusID.
var (
	BaseID = iid.New("intfbus.Interface")
	ExID   = iid.New("intfbus.InterfaceEx")
	BusID  = iid.New("intfbus.Bus")
)

// Op is the kind of reference-count operation reported to a Monitor.
type Op uint8

const (
	OpRef Op = iota
	OpUnref
	OpUnrefNoDelete
)

// String returns the operation name.
func (op Op) String() string {
	switch op {
	case OpRef:
		return "ref"
	case OpUnref:
		return "unref"
	case OpUnrefNoDelete:
		return "unref_no_delete"
	default:
		return "unknown"
	}
}

// Monitor observes reference-count operations. It is invoked before
// the count changes, with the count as it was at that moment. Monitors
// are a test and debug hook: correctness never depends on one being
// installed.
type Monitor func(obj RefCounted, before int, op Op)

// RefCounted is the manual lifetime contract every object implements.
//
// An object is created with a count of zero and destroyed the instant
// Unref takes the count from 1 to 0. Unref and UnrefNoDelete on a count
// that is already zero are contract violations and panic.
type RefCounted interface {
	// Ref increments the reference count.
	Ref()
	// Unref decrements the reference count and destroys the object
	// when the count reaches zero.
	Unref()
	// UnrefNoDelete decrements the reference count without ever
	// destroying the object. It balances a reference returned by a
	// query that the caller does not intend to keep.
	UnrefNoDelete()
	// Count returns the current reference count.
	Count() int
}

// Interface is a queryable object: a capability identified by a stable
// identifier, discoverable at runtime.
type Interface interface {
	RefCounted

	// QueryInterface resolves id to a referenced Interface. On success
	// the returned object carries one additional reference the caller
	// must release. On failure it returns a not-resolved error.
	QueryInterface(id iid.ID) (Interface, error)
}

// InterfaceEx is a bus-aware Interface. It may be hosted by at most one
// Bus at a time and supports an explicit two-phase shutdown: Finish
// releases internal resources once, ahead of the final Unref that
// destroys the object.
type InterfaceEx interface {
	Interface

	// Serial returns the object's process-unique serial number, used
	// as the stable key in query visited sets and sibling registries.
	Serial() uint64

	// QueryInterfaceEx resolves id, delegating to the hosting bus when
	// the object cannot satisfy the query itself. qs guards the
	// traversal against cycles; pass the state received from the
	// caller, or a fresh one at the top level.
	QueryInterfaceEx(id iid.ID, qs *QueryState) (Interface, error)

	// SetHost attaches or detaches the hosting bus. Attaching a second
	// host while one is set is a contract violation and panics;
	// detaching (nil) always succeeds.
	SetHost(bus Bus)

	// Host returns the hosting bus, or nil.
	Host() Bus

	// Finish performs the one-time internal resource release. It is
	// idempotent; all other operations on a finished object panic.
	Finish()

	// Finished reports whether Finish has run.
	Finished() bool
}

// Bus aggregates interfaces and other buses into a security-leveled
// discovery graph and answers queries by traversal. Level 0 is the most
// trusted tier; a bus only accepts connections from buses of its own
// level (as siblings) or less secure levels (as owned children).
type Bus interface {
	InterfaceEx

	// Connect attaches a candidate with teardown order 0. See
	// ConnectWithOrder.
	Connect(intf InterfaceEx) error

	// ConnectWithOrder attaches a candidate to this bus. A candidate
	// that is itself a bus becomes an owned child (higher level) or a
	// mutual sibling (equal level); a plain interface becomes hosted,
	// with order selecting which teardown pass finishes it. A non-nil
	// error reports why the connection was rejected.
	ConnectWithOrder(intf InterfaceEx, order int) error

	// Disconnect detaches a hosted interface, an owned child bus, or a
	// sibling link. Unknown candidates are ignored.
	Disconnect(intf InterfaceEx)

	// Level returns the bus security level.
	Level() int

	// FindFirstBusByLevel returns the first reachable bus with exactly
	// the given level, searching self, owned children, then siblings.
	// It returns nil when the level is more secure than this bus or no
	// such bus is reachable. The result is not referenced.
	FindFirstBusByLevel(level int) Bus

	// AddSibling registers a same-level bus as a weak, non-owning
	// link. Called by the sibling protocol; prefer Connect.
	AddSibling(bus Bus)

	// RemoveSibling drops the weak link to bus. Called by a sibling on
	// its own teardown.
	RemoveSibling(bus Bus)

	// Interfaces returns the number of directly hosted interfaces.
	Interfaces() int

	// ConnectedBuses returns the number of owned child buses.
	ConnectedBuses() int

	// Siblings returns the number of sibling links.
	Siblings() int
}

// Supports reports whether obj can resolve id. The probing reference is
// balanced immediately with UnrefNoDelete, so the observable count is
// unchanged and the object survives even if the caller held the last
// reference.
func Supports(obj Interface, id iid.ID) bool {
	got, err := obj.QueryInterface(id)
	if err != nil {
		return false
	}
	got.UnrefNoDelete()
	return true
}

// Cast resolves id on obj and returns the result as T. Like Supports it
// balances the query reference, so the returned value is borrowed: the
// caller must not Unref it and must not use it past the lifetime of the
// reference it already holds on obj's cluster.
func Cast[T any](obj Interface, id iid.ID) (T, bool) {
	var zero T
	got, err := obj.QueryInterface(id)
	if err != nil {
		return zero, false
	}
	got.UnrefNoDelete()
	t, ok := got.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
