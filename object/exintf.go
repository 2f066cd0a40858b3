package object

import (
	"sync"

	intfbus "github.com/wippyai/intf-bus"
	"github.com/wippyai/intf-bus/errors"
	"github.com/wippyai/intf-bus/iid"
)

// ExIntf implements a bus-aware extended interface over Base: it knows
// its hosting bus, delegates unresolved queries to it, and supports the
// two-phase ACTIVE -> FINISHED lifetime.
type ExIntf struct {
	Base

	self    intfbus.InterfaceEx
	exports []Export

	stateMu  sync.Mutex
	host     intfbus.Bus
	finished bool
	onClear  func()
}

// Init prepares the object. self must be the outermost object; exports
// list the identities it answers, in match order.
func (x *ExIntf) Init(self intfbus.InterfaceEx, exports []Export, opts ...Option) {
	x.self = self
	x.exports = exports
	x.Base.Init(self, opts...)
}

// OnClear installs the extension point invoked exactly once, the first
// time Finish is called, before the object can be torn down.
func (x *ExIntf) OnClear(fn func()) {
	x.stateMu.Lock()
	defer x.stateMu.Unlock()
	x.onClear = fn
}

// QueryInterface resolves id with a fresh query state. It dispatches
// through the outermost object so embedding types that redeclare
// QueryInterfaceEx stay in control of the traversal.
func (x *ExIntf) QueryInterface(id iid.ID) (intfbus.Interface, error) {
	return x.self.QueryInterfaceEx(id, intfbus.NewQueryState())
}

// QueryInterfaceEx resolves id: first against the export table and the
// universal identities, then by delegating to the hosting bus unless
// the bus was already visited in this query.
func (x *ExIntf) QueryInterfaceEx(id iid.ID, qs *intfbus.QueryState) (intfbus.Interface, error) {
	for _, e := range x.exports {
		if e.ID.Equal(id) {
			x.Ref()
			return e.Value, nil
		}
	}
	if id.Equal(intfbus.ExID) || id.Equal(intfbus.BaseID) {
		x.Ref()
		return x.self, nil
	}

	if x.Finished() {
		panic(errors.Finished(errors.PhaseQuery, "QueryInterfaceEx"))
	}

	qs.MarkVisited(x.Serial())

	if host := x.Host(); host != nil && !qs.Visited(host.Serial()) {
		return host.QueryInterfaceEx(id, qs)
	}
	return nil, errors.NotResolved(id.String())
}

// SetHost attaches or detaches the hosting bus. A second non-nil host
// while one is attached is a contract violation.
func (x *ExIntf) SetHost(bus intfbus.Bus) {
	x.stateMu.Lock()
	defer x.stateMu.Unlock()
	if bus != nil && x.host != nil {
		panic(errors.HostConflict())
	}
	x.host = bus
}

// Host returns the hosting bus, or nil.
func (x *ExIntf) Host() intfbus.Bus {
	x.stateMu.Lock()
	defer x.stateMu.Unlock()
	return x.host
}

// Finish runs the one-time internal resource release. Subsequent calls
// are no-ops.
func (x *ExIntf) Finish() {
	x.stateMu.Lock()
	if x.finished {
		x.stateMu.Unlock()
		return
	}
	x.finished = true
	fn := x.onClear
	x.stateMu.Unlock()

	if fn != nil {
		fn()
	}
}

// Finished reports whether Finish has run.
func (x *ExIntf) Finished() bool {
	x.stateMu.Lock()
	defer x.stateMu.Unlock()
	return x.finished
}
