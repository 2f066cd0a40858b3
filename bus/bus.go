package bus

import (
	"cmp"
	"slices"
	"sync"

	"go.uber.org/zap"

	intfbus "github.com/wippyai/intf-bus"
	"github.com/wippyai/intf-bus/errors"
	"github.com/wippyai/intf-bus/iid"
	"github.com/wippyai/intf-bus/object"
)

// maxFinishPasses is the number of ordered teardown passes. The order
// tag recorded at connect time selects the pass that finishes a hosted
// interface.
const maxFinishPasses = 3

type status int

const (
	statusActive status = iota
	statusClearing
	statusCleared
)

// hosted pairs a directly hosted interface with its teardown order tag.
type hosted struct {
	intf  intfbus.InterfaceEx
	order int
}

// Bus aggregates interfaces and other buses into a security-leveled
// discovery graph. Hosted interfaces and owned child buses are strong
// references; same-level siblings are weak, mutually registered links.
//
// Structural state is serialized by a per-bus mutex. Traversal and
// teardown snapshot the adjacency lists under the lock and delegate
// with the lock released; the query state guarantees an already-visited
// bus is never re-entered within one query.
type Bus struct {
	object.Base

	level int

	mu       sync.Mutex
	status   status
	finished bool
	host     intfbus.Bus
	intfs    []hosted
	buses    []intfbus.Bus
	siblings []intfbus.Bus
}

var _ intfbus.Bus = (*Bus)(nil)

// New creates a bus with the given security level. Level 0 is the most
// trusted tier.
func New(level int, opts ...object.Option) *Bus {
	b := &Bus{level: level}
	b.Base.Init(b, opts...)
	// Destruction performs the same teardown as Finish when the bus
	// was never explicitly finished.
	b.OnDestroy(b.reset)
	return b
}

// Level returns the bus security level.
func (b *Bus) Level() int {
	return b.level
}

// Interfaces returns the number of directly hosted interfaces.
func (b *Bus) Interfaces() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.intfs)
}

// ConnectedBuses returns the number of owned child buses.
func (b *Bus) ConnectedBuses() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buses)
}

// Siblings returns the number of sibling links.
func (b *Bus) Siblings() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.siblings)
}

// QueryInterface resolves id with a fresh query state.
func (b *Bus) QueryInterface(id iid.ID) (intfbus.Interface, error) {
	return b.QueryInterfaceEx(id, intfbus.NewQueryState())
}

// QueryInterfaceEx answers the universal bus identities itself, then
// resolves id by scanning, in order: directly hosted interfaces,
// sibling buses, and owned (less secure) child buses. Local interfaces
// win over lateral and outward delegation, giving shallow, predictable
// resolution for the common case.
func (b *Bus) QueryInterfaceEx(id iid.ID, qs *intfbus.QueryState) (intfbus.Interface, error) {
	if id.Equal(intfbus.BusID) || id.Equal(intfbus.ExID) || id.Equal(intfbus.BaseID) {
		b.Ref()
		return b, nil
	}

	b.mu.Lock()
	if b.status == statusCleared {
		b.mu.Unlock()
		panic(errors.Finished(errors.PhaseQuery, "QueryInterfaceEx"))
	}
	qs.MarkVisited(b.Serial())
	intfs := make([]intfbus.InterfaceEx, len(b.intfs))
	for i, h := range b.intfs {
		intfs[i] = h.intf
	}
	siblings := slices.Clone(b.siblings)
	buses := slices.Clone(b.buses)
	b.mu.Unlock()

	for _, intf := range intfs {
		if got, err := resolve(intf, id, qs); err == nil {
			return got, nil
		}
	}
	for _, sib := range siblings {
		if got, err := resolve(sib, id, qs); err == nil {
			return got, nil
		}
	}
	for _, child := range buses {
		if got, err := resolve(child, id, qs); err == nil {
			return got, nil
		}
	}
	return nil, errors.NotResolved(id.String())
}

// resolve delegates a query to target unless the traversal has already
// visited it.
func resolve(target intfbus.InterfaceEx, id iid.ID, qs *intfbus.QueryState) (intfbus.Interface, error) {
	if qs.Visited(target.Serial()) {
		return nil, errors.NotResolved(id.String())
	}
	return target.QueryInterfaceEx(id, qs)
}

// Connect attaches a candidate with teardown order 0.
func (b *Bus) Connect(intf intfbus.InterfaceEx) error {
	return b.ConnectWithOrder(intf, 0)
}

// ConnectWithOrder attaches a candidate to this bus.
//
// A candidate that answers the bus identity is connected as a bus: an
// owned child when its level is less secure than this bus's, a mutual
// sibling when the levels are equal. A plain interface is hosted with a
// strong reference and its host set to this bus; order selects the
// teardown pass that finishes it. A candidate that is already hosted is
// rejected outright: duplicate for its own host, host conflict for any
// other bus.
func (b *Bus) ConnectWithOrder(intf intfbus.InterfaceEx, order int) error {
	if intf == nil {
		return errors.InvalidArgument(errors.PhaseConnect, "nil candidate")
	}
	if order < 0 || order >= maxFinishPasses {
		return errors.InvalidArgument(errors.PhaseConnect, "order out of range")
	}
	b.assertOpen("Connect")
	if intf.Serial() == b.Serial() {
		return errors.SelfConnect()
	}

	// A hosted candidate is settled before the bus probe: probing it
	// would delegate the query to its host and resolve to that bus
	// instead of the candidate.
	if host := intf.Host(); host != nil {
		if host.Serial() == b.Serial() {
			return errors.Duplicate("interface")
		}
		return errors.HostConflict()
	}

	// Probe whether the candidate is itself a bus. The probing
	// reference is balanced on every exit path below.
	if got, err := intf.QueryInterfaceEx(intfbus.BusID, intfbus.NewQueryState()); err == nil {
		defer got.Unref()
		other, ok := got.(intfbus.Bus)
		if !ok {
			return errors.InvalidArgument(errors.PhaseConnect, "candidate answers the bus identity but does not implement Bus")
		}
		return b.connectBus(other)
	}

	return b.connectInterface(intf, order)
}

func (b *Bus) connectBus(other intfbus.Bus) error {
	switch {
	case other.Level() > b.level:
		b.mu.Lock()
		for _, c := range b.buses {
			if c.Serial() == other.Serial() {
				b.mu.Unlock()
				return errors.Duplicate("bus")
			}
		}
		other.Ref()
		b.buses = append(b.buses, other)
		slices.SortStableFunc(b.buses, func(x, y intfbus.Bus) int {
			return cmp.Compare(x.Level(), y.Level())
		})
		b.mu.Unlock()
		debugf("bus connected", zap.Int("level", b.level), zap.Int("child_level", other.Level()))
		return nil

	case other.Level() == b.level:
		// Only the probing reference is held: the caller keeps no lock
		// on the candidate, so a weak sibling link would dangle the
		// moment this call returns.
		if other.Count() == 1 {
			return errors.Unanchored()
		}
		if other.Serial() == b.Serial() {
			return errors.SelfConnect()
		}
		b.mu.Lock()
		for _, s := range b.siblings {
			if s.Serial() == other.Serial() {
				b.mu.Unlock()
				return errors.Duplicate("sibling")
			}
		}
		b.siblings = append(b.siblings, other)
		b.mu.Unlock()
		// Mutual registration, outside our lock.
		other.AddSibling(b)
		debugf("sibling connected", zap.Int("level", b.level))
		return nil

	default:
		return errors.LevelDenied(b.level, other.Level())
	}
}

func (b *Bus) connectInterface(intf intfbus.InterfaceEx, order int) error {
	if intf.Host() != nil {
		return errors.HostConflict()
	}

	b.mu.Lock()
	for _, h := range b.intfs {
		if h.intf.Serial() == intf.Serial() {
			b.mu.Unlock()
			return errors.Duplicate("interface")
		}
	}
	intf.Ref()
	intf.SetHost(b)
	b.intfs = append(b.intfs, hosted{intf: intf, order: order})
	b.mu.Unlock()

	debugf("interface hosted", zap.Int("level", b.level), zap.Int("order", order))
	return nil
}

// Disconnect detaches a hosted interface, an owned child bus, or a
// sibling link, releasing the reference held for it. Sibling links are
// removed from both sides. Unknown candidates are ignored.
func (b *Bus) Disconnect(intf intfbus.InterfaceEx) {
	b.assertOpen("Disconnect")
	if intf == nil {
		return
	}

	b.mu.Lock()
	for i, h := range b.intfs {
		if h.intf.Serial() == intf.Serial() {
			b.intfs = slices.Delete(b.intfs, i, i+1)
			b.mu.Unlock()
			h.intf.SetHost(nil)
			h.intf.Unref()
			debugf("interface disconnected", zap.Int("level", b.level))
			return
		}
	}
	for i, c := range b.buses {
		if c.Serial() == intf.Serial() {
			b.buses = slices.Delete(b.buses, i, i+1)
			b.mu.Unlock()
			c.Unref()
			debugf("bus disconnected", zap.Int("level", b.level))
			return
		}
	}
	b.mu.Unlock()

	if other, ok := intf.(intfbus.Bus); ok {
		b.RemoveSibling(other)
		other.RemoveSibling(b)
	}
}

// AddSibling registers a same-level bus as a weak link. Part of the
// mutual sibling protocol; prefer Connect for establishing siblings.
func (b *Bus) AddSibling(other intfbus.Bus) {
	b.assertOpen("AddSibling")
	if other == nil || other.Serial() == b.Serial() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.siblings {
		if s.Serial() == other.Serial() {
			return
		}
	}
	b.siblings = append(b.siblings, other)
}

// RemoveSibling drops the weak link to other, if present. Called by a
// sibling on its own teardown.
func (b *Bus) RemoveSibling(other intfbus.Bus) {
	if other == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.siblings {
		if s.Serial() == other.Serial() {
			b.siblings = slices.Delete(b.siblings, i, i+1)
			return
		}
	}
}

// FindFirstBusByLevel returns the first reachable bus with exactly the
// given level: self when the level matches, otherwise depth-first
// through owned child buses, then siblings. Levels more secure than
// this bus's are not reachable and yield nil. The result is not
// referenced; callers that keep it must Ref it while still holding a
// reference that pins the graph.
func (b *Bus) FindFirstBusByLevel(level int) intfbus.Bus {
	return b.findFirstBusByLevel(level, intfbus.NewQueryState())
}

func (b *Bus) findFirstBusByLevel(level int, qs *intfbus.QueryState) intfbus.Bus {
	b.assertOpen("FindFirstBusByLevel")
	if level < b.level {
		return nil
	}
	if level == b.level {
		return b
	}

	b.mu.Lock()
	qs.MarkVisited(b.Serial())
	buses := slices.Clone(b.buses)
	siblings := slices.Clone(b.siblings)
	b.mu.Unlock()

	for _, set := range [][]intfbus.Bus{buses, siblings} {
		for _, c := range set {
			if qs.Visited(c.Serial()) {
				continue
			}
			var found intfbus.Bus
			if cb, ok := c.(*Bus); ok {
				found = cb.findFirstBusByLevel(level, qs)
			} else {
				// Foreign bus implementation: it guards its own
				// traversal.
				qs.MarkVisited(c.Serial())
				found = c.FindFirstBusByLevel(level)
			}
			if found != nil {
				return found
			}
		}
	}
	return nil
}

// SetHost attaches or detaches a hosting bus. Owned child buses keep a
// nil host (a bus may sit under several parents); the detach path is
// still exercised on teardown.
func (b *Bus) SetHost(bus intfbus.Bus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if bus != nil && b.host != nil {
		panic(errors.HostConflict())
	}
	b.host = bus
}

// Host returns the hosting bus, or nil.
func (b *Bus) Host() intfbus.Bus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.host
}

// Finish tears the bus down: siblings are mutually deregistered, hosted
// interfaces are finished in ordered passes and released, owned child
// buses are finished and released in reverse connection order. Finish
// is idempotent.
func (b *Bus) Finish() {
	b.mu.Lock()
	if b.finished {
		b.mu.Unlock()
		return
	}
	b.finished = true
	b.mu.Unlock()

	b.reset()
}

// Finished reports whether Finish has run.
func (b *Bus) Finished() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.finished
}

// reset is the teardown routine shared by Finish and destruction. After
// it completes the bus holds no strong references to collaborators it
// owned and all further structural operations panic.
func (b *Bus) reset() {
	b.mu.Lock()
	if b.status != statusActive {
		b.mu.Unlock()
		return
	}
	b.status = statusClearing
	b.finished = true
	siblings := b.siblings
	intfs := b.intfs
	buses := b.buses
	b.siblings = nil
	b.intfs = nil
	b.buses = nil
	b.mu.Unlock()

	debugf("bus teardown", zap.Int("level", b.level),
		zap.Int("interfaces", len(intfs)),
		zap.Int("buses", len(buses)),
		zap.Int("siblings", len(siblings)))

	// Mutual deregistration only; siblings are not otherwise affected
	// by this bus's teardown.
	for _, sib := range siblings {
		sib.RemoveSibling(b)
	}

	// Ordered finish passes. Within a pass, the later-installed
	// interface is finished first, so callers control cross-interface
	// shutdown dependencies with the order tag.
	for pass := 0; pass < maxFinishPasses; pass++ {
		for i := len(intfs) - 1; i >= 0; i-- {
			if intfs[i].order == pass {
				intfs[i].intf.Finish()
			}
		}
	}
	for _, h := range intfs {
		h.intf.SetHost(nil)
		h.intf.Unref()
	}

	for i := len(buses) - 1; i >= 0; i-- {
		child := buses[i]
		child.Finish()
		child.SetHost(nil)
		child.Unref()
	}

	b.mu.Lock()
	b.status = statusCleared
	b.mu.Unlock()
}

// assertOpen panics when the bus has completed teardown. Operations
// during teardown itself (status clearing) remain valid so finish
// callbacks can still reach the bus.
func (b *Bus) assertOpen(op string) {
	b.mu.Lock()
	cleared := b.status == statusCleared
	b.mu.Unlock()
	if cleared {
		panic(errors.Finished(errors.PhaseConnect, op))
	}
}
