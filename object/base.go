package object

import (
	"sync"
	"sync/atomic"

	intfbus "github.com/wippyai/intf-bus"
	"github.com/wippyai/intf-bus/errors"
)

// serialCounter hands out process-unique object serials. Serial 0 is
// never assigned, so it can mean "no object" in registries.
var serialCounter atomic.Uint64

// Option configures an object base at Init time.
type Option func(*Base)

// WithMonitor installs a reference-count observer. The monitor is fixed
// at construction and invoked, under the count lock, before every
// Ref/Unref/UnrefNoDelete with the pre-operation count.
func WithMonitor(m intfbus.Monitor) Option {
	return func(b *Base) { b.monitor = m }
}

// WithDestroy appends a destruction callback. Callbacks run in the
// order added, after the count lock is released, the instant the count
// transitions from 1 to 0.
func WithDestroy(fn func()) Option {
	return func(b *Base) { b.destroy = append(b.destroy, fn) }
}

// Base is the reference-counted core embedded by every object in the
// model. It serializes count mutation with a per-object lock and runs
// destruction callbacks outside that lock, so destructor-triggered
// unref chains cannot self-deadlock.
//
// A Base starts with a count of zero; the first holder claims it with
// Ref (or by wrapping it in a handle.Ref).
type Base struct {
	mu      sync.Mutex
	count   int
	serial  uint64
	self    intfbus.RefCounted
	monitor intfbus.Monitor
	destroy []func()
}

// Init prepares the base. self must be the outermost object so that
// monitors observe the real identity rather than the embedded Base.
func (b *Base) Init(self intfbus.RefCounted, opts ...Option) {
	b.self = self
	b.serial = serialCounter.Add(1)
	for _, opt := range opts {
		opt(b)
	}
}

// Serial returns the process-unique serial assigned at Init.
func (b *Base) Serial() uint64 {
	return b.serial
}

// OnDestroy appends a destruction callback after Init. Used by types
// that must release owned structures when their last reference drops.
func (b *Base) OnDestroy(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroy = append(b.destroy, fn)
}

// Ref increments the reference count.
func (b *Base) Ref() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.monitor != nil {
		b.monitor(b.self, b.count, intfbus.OpRef)
	}
	b.count++
}

// Unref decrements the reference count and destroys the object when the
// count reaches zero. Unref on a zero count is a contract violation.
func (b *Base) Unref() {
	b.mu.Lock()
	if b.monitor != nil {
		b.monitor(b.self, b.count, intfbus.OpUnref)
	}
	if b.count == 0 {
		b.mu.Unlock()
		panic(errors.Underflow("Unref"))
	}
	b.count--
	destroyed := b.count == 0
	b.mu.Unlock()

	if destroyed {
		for _, fn := range b.destroy {
			fn()
		}
	}
}

// UnrefNoDelete decrements the reference count without destroying the
// object, giving back one logical owner's claim while other claims keep
// it alive by convention. UnrefNoDelete on a zero count is a contract
// violation.
func (b *Base) UnrefNoDelete() {
	b.mu.Lock()
	if b.monitor != nil {
		b.monitor(b.self, b.count, intfbus.OpUnrefNoDelete)
	}
	if b.count == 0 {
		b.mu.Unlock()
		panic(errors.Underflow("UnrefNoDelete"))
	}
	b.count--
	b.mu.Unlock()
}

// Count returns the current reference count.
func (b *Base) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
