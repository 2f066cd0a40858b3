package bus

import (
	"sync"
	"testing"

	intfbus "github.com/wippyai/intf-bus"
	"github.com/wippyai/intf-bus/errors"
	"github.com/wippyai/intf-bus/handle"
	"github.com/wippyai/intf-bus/iid"
	"github.com/wippyai/intf-bus/object"
)

var (
	fooID = iid.New("bustest.Foo")
	barID = iid.New("bustest.Bar")
	bazID = iid.New("bustest.Baz")
)

// service is the hosted-interface test double: one identity, a tag for
// assertions, and hooks observing finish and destruction.
type service struct {
	object.ExIntf
	tag string
}

type serviceHooks struct {
	alive     int
	finishLog []string
}

func (h *serviceHooks) newService(id iid.ID, tag string) *service {
	s := &service{tag: tag}
	s.Init(s, []object.Export{{ID: id, Value: s}},
		object.WithDestroy(func() { h.alive-- }))
	s.OnClear(func() { h.finishLog = append(h.finishLog, tag) })
	h.alive++
	return s
}

func errKind(t *testing.T, err error, kind errors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	e, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("expected *errors.Error, got %T: %v", err, err)
	}
	if e.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%v)", kind, e.Kind, err)
	}
}

func TestBus_SelfIdentities(t *testing.T) {
	b := handle.New(New(0))
	defer b.Clear()

	if b.Get().Level() != 0 {
		t.Fatalf("expected level 0, got %d", b.Get().Level())
	}
	if b.Get().Finished() {
		t.Fatal("fresh bus must not be finished")
	}

	before := b.Get().Count()
	for _, id := range []iid.ID{intfbus.BusID, intfbus.ExID, intfbus.BaseID} {
		got, ok := intfbus.Cast[*Bus](b.Get(), id)
		if !ok {
			t.Fatalf("bus must answer %s", id)
		}
		if got != b.Get() {
			t.Fatal("self identities must resolve to the bus itself")
		}
	}
	if b.Get().Count() != before {
		t.Fatalf("casts must balance, count %d != %d", b.Get().Count(), before)
	}
}

func TestBus_ConnectDuplicateInterface(t *testing.T) {
	hooks := &serviceHooks{}
	b := handle.New(New(0))
	defer b.Clear()

	svc := handle.New(hooks.newService(fooID, "foo"))
	defer svc.Clear()

	if err := b.Get().Connect(svc.Get()); err != nil {
		t.Fatalf("first connect: %v", err)
	}
	errKind(t, b.Get().Connect(svc.Get()), errors.KindDuplicate)
}

func TestBus_InterfaceSingleHost(t *testing.T) {
	hooks := &serviceHooks{}
	b0 := handle.New(New(0))
	defer b0.Clear()
	b1 := handle.New(New(1))
	defer b1.Clear()

	svc := handle.New(hooks.newService(fooID, "foo"))
	defer svc.Clear()

	if err := b0.Get().Connect(svc.Get()); err != nil {
		t.Fatalf("first host: %v", err)
	}
	errKind(t, b1.Get().Connect(svc.Get()), errors.KindHostConflict)
}

func TestBus_ConnectHostedInterfaceEqualLevel(t *testing.T) {
	hooks := &serviceHooks{}
	b0 := handle.New(New(0))
	defer b0.Clear()
	b1 := handle.New(New(0))
	defer b1.Clear()

	svc := handle.New(hooks.newService(fooID, "foo"))
	defer svc.Clear()

	if err := b0.Get().Connect(svc.Get()); err != nil {
		t.Fatalf("host: %v", err)
	}

	// A hosted interface resolves the bus identity to its host, so an
	// unchecked probe would read this connect as bus-to-bus and link the
	// two buses as siblings. The candidate's hosting is settled first:
	// the connect is rejected and no sibling link appears.
	if got, ok := intfbus.Cast[*Bus](svc.Get(), intfbus.BusID); !ok || got != b0.Get() {
		t.Fatal("hosted interface must resolve the bus identity to its host")
	}
	errKind(t, b1.Get().Connect(svc.Get()), errors.KindHostConflict)
	if b0.Get().Siblings() != 0 || b1.Get().Siblings() != 0 {
		t.Fatal("rejected connect must not create sibling links")
	}
	if svc.Get().Host() != b0.Get() {
		t.Fatal("rejected connect must not disturb the hosting")
	}
}

func TestBus_NoLoopback(t *testing.T) {
	b := handle.New(New(0))
	defer b.Clear()
	errKind(t, b.Get().Connect(b.Get()), errors.KindSelfConnect)
}

func TestBus_ConnectNil(t *testing.T) {
	b := handle.New(New(0))
	defer b.Clear()
	errKind(t, b.Get().Connect(nil), errors.KindInvalidArgument)
}

func TestBus_ConnectOrderRange(t *testing.T) {
	hooks := &serviceHooks{}
	b := handle.New(New(0))
	defer b.Clear()

	svc := handle.New(hooks.newService(fooID, "foo"))
	defer svc.Clear()

	errKind(t, b.Get().ConnectWithOrder(svc.Get(), -1), errors.KindInvalidArgument)
	errKind(t, b.Get().ConnectWithOrder(svc.Get(), maxFinishPasses), errors.KindInvalidArgument)
	if err := b.Get().ConnectWithOrder(svc.Get(), maxFinishPasses-1); err != nil {
		t.Fatalf("max valid order: %v", err)
	}
}

func TestBus_DisconnectInterface(t *testing.T) {
	hooks := &serviceHooks{}
	b := handle.New(New(0))
	defer b.Clear()

	svc := handle.New(hooks.newService(fooID, "foo"))
	defer svc.Clear()

	if err := b.Get().Connect(svc.Get()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if b.Get().Interfaces() != 1 {
		t.Fatalf("expected 1 hosted interface, got %d", b.Get().Interfaces())
	}

	b.Get().Disconnect(svc.Get())
	if b.Get().Interfaces() != 0 {
		t.Fatalf("expected 0 hosted interfaces, got %d", b.Get().Interfaces())
	}
	if svc.Get().Host() != nil {
		t.Fatal("disconnect must clear the host")
	}

	// Detached, it can be hosted elsewhere.
	b1 := handle.New(New(1))
	defer b1.Clear()
	if err := b1.Get().Connect(svc.Get()); err != nil {
		t.Fatalf("reconnect after disconnect: %v", err)
	}
}

func TestBus_DisconnectChildBus(t *testing.T) {
	b0 := handle.New(New(0))
	defer b0.Clear()
	b1 := handle.New(New(1))
	defer b1.Clear()

	if err := b0.Get().Connect(b1.Get()); err != nil {
		t.Fatalf("connect child: %v", err)
	}
	if b0.Get().ConnectedBuses() != 1 {
		t.Fatalf("expected 1 child, got %d", b0.Get().ConnectedBuses())
	}

	b0.Get().Disconnect(b1.Get())
	if b0.Get().ConnectedBuses() != 0 {
		t.Fatalf("expected 0 children, got %d", b0.Get().ConnectedBuses())
	}
	if b1.Get().Count() != 1 {
		t.Fatalf("disconnect must release the child, count %d", b1.Get().Count())
	}
}

func TestBus_TwoInterfaceNavigation(t *testing.T) {
	hooks := &serviceHooks{}
	b := handle.New(New(0))
	defer b.Clear()

	if err := b.Get().Connect(hooks.newService(fooID, "foo")); err != nil {
		t.Fatalf("connect foo: %v", err)
	}
	if err := b.Get().Connect(hooks.newService(barID, "bar")); err != nil {
		t.Fatalf("connect bar: %v", err)
	}

	foo, ok := intfbus.Cast[*service](b.Get(), fooID)
	if !ok || foo.tag != "foo" {
		t.Fatal("bus must resolve foo")
	}

	// Lateral navigation: foo -> bar through the hosting bus.
	bar, ok := intfbus.Cast[*service](foo, barID)
	if !ok || bar.tag != "bar" {
		t.Fatal("foo must navigate to bar via the bus")
	}

	// And back up to the bus itself.
	myBus, ok := intfbus.Cast[*Bus](bar, intfbus.BusID)
	if !ok || myBus != b.Get() {
		t.Fatal("bar must navigate to its hosting bus")
	}

	if b.Get().Count() != 1 {
		t.Fatalf("navigation must not leak bus references, count %d", b.Get().Count())
	}
	if b.Get().Interfaces() != 2 || b.Get().ConnectedBuses() != 0 {
		t.Fatal("unexpected bus shape")
	}
}

func TestBus_FinishReleasesInterfaces(t *testing.T) {
	hooks := &serviceHooks{}
	b := handle.New(New(0))
	defer b.Clear()

	if err := b.Get().Connect(hooks.newService(fooID, "foo")); err != nil {
		t.Fatalf("connect foo: %v", err)
	}
	if err := b.Get().Connect(hooks.newService(barID, "bar")); err != nil {
		t.Fatalf("connect bar: %v", err)
	}
	if hooks.alive != 2 {
		t.Fatalf("expected 2 live services, got %d", hooks.alive)
	}

	b.Get().Finish()

	if !b.Get().Finished() {
		t.Fatal("expected finished")
	}
	if b.Get().Interfaces() != 0 {
		t.Fatalf("finish must release hosted interfaces, %d left", b.Get().Interfaces())
	}
	if b.Get().Count() != 1 {
		t.Fatalf("finish must not touch the bus's own count, got %d", b.Get().Count())
	}
	if hooks.alive != 0 {
		t.Fatalf("bus held the only references; services must be destroyed, %d alive", hooks.alive)
	}
}

func TestBus_FinishPassOrdering(t *testing.T) {
	hooks := &serviceHooks{}
	b := handle.New(New(0))
	defer b.Clear()

	// Same pass: later-installed finishes first. Different pass:
	// lower pass finishes first regardless of installation order.
	if err := b.Get().ConnectWithOrder(hooks.newService(fooID, "first-pass1"), 1); err != nil {
		t.Fatal(err)
	}
	if err := b.Get().ConnectWithOrder(hooks.newService(barID, "second-pass0"), 0); err != nil {
		t.Fatal(err)
	}
	if err := b.Get().ConnectWithOrder(hooks.newService(bazID, "third-pass1"), 1); err != nil {
		t.Fatal(err)
	}

	b.Get().Finish()

	want := []string{"second-pass0", "third-pass1", "first-pass1"}
	if len(hooks.finishLog) != len(want) {
		t.Fatalf("expected %d finishes, got %v", len(want), hooks.finishLog)
	}
	for i, tag := range want {
		if hooks.finishLog[i] != tag {
			t.Fatalf("finish order: expected %v, got %v", want, hooks.finishLog)
		}
	}
}

func TestBus_CascadeVisibility(t *testing.T) {
	hooks := &serviceHooks{}
	b0 := handle.New(New(0))
	defer b0.Clear()
	b1 := handle.New(New(1))
	defer b1.Clear()

	foo := handle.New(hooks.newService(fooID, "foo"))
	defer foo.Clear()
	bar := handle.New(hooks.newService(barID, "bar"))
	defer bar.Clear()

	if err := b0.Get().Connect(foo.Get()); err != nil {
		t.Fatal(err)
	}
	if err := b1.Get().Connect(bar.Get()); err != nil {
		t.Fatal(err)
	}

	// A less secure bus cannot adopt a more secure one.
	errKind(t, b1.Get().Connect(b0.Get()), errors.KindLevelDenied)

	if err := b0.Get().Connect(b1.Get()); err != nil {
		t.Fatalf("secure bus must adopt the less secure one: %v", err)
	}
	if b0.Get().ConnectedBuses() != 1 || b1.Get().ConnectedBuses() != 0 {
		t.Fatal("unexpected graph shape")
	}
	if b1.Get().Count() != 2 {
		t.Fatalf("child bus must be strongly held by parent and handle, count %d", b1.Get().Count())
	}

	// Outward: foo (secure side) sees bar (less secure side).
	if got, ok := intfbus.Cast[*service](foo.Get(), barID); !ok || got != bar.Get() {
		t.Fatal("outward resolution must reach the less secure bus")
	}
	// Inward: bar must not see foo.
	if _, ok := intfbus.Cast[*service](bar.Get(), fooID); ok {
		t.Fatal("a less secure bus must never expose more secure interfaces")
	}
}

func TestBus_SiblingPair(t *testing.T) {
	hooks := &serviceHooks{}
	b0 := handle.New(New(0))
	defer b0.Clear()
	b1 := handle.New(New(0))
	defer b1.Clear()

	foo := handle.New(hooks.newService(fooID, "foo"))
	defer foo.Clear()
	bar := handle.New(hooks.newService(barID, "bar"))
	defer bar.Clear()

	if err := b0.Get().Connect(foo.Get()); err != nil {
		t.Fatal(err)
	}
	if err := b1.Get().Connect(bar.Get()); err != nil {
		t.Fatal(err)
	}

	if err := b1.Get().Connect(b0.Get()); err != nil {
		t.Fatalf("equal-level connect must become a sibling link: %v", err)
	}
	if b0.Get().ConnectedBuses() != 0 || b1.Get().ConnectedBuses() != 0 {
		t.Fatal("siblings are not owned children")
	}
	if b0.Get().Siblings() != 1 || b1.Get().Siblings() != 1 {
		t.Fatal("sibling link must be mutual")
	}
	errKind(t, b1.Get().Connect(b0.Get()), errors.KindDuplicate)

	// Both directions resolve across the sibling link.
	if _, ok := intfbus.Cast[*service](foo.Get(), barID); !ok {
		t.Fatal("foo must reach bar across siblings")
	}
	if _, ok := intfbus.Cast[*service](bar.Get(), fooID); !ok {
		t.Fatal("bar must reach foo across siblings")
	}

	// Weak links: no count contribution.
	if b0.Get().Count() != 1 || b1.Get().Count() != 1 {
		t.Fatal("sibling links must not hold references")
	}

	// Finishing one sibling detaches it from the other and leaves the
	// other untouched.
	b1.Get().Finish()
	if !b1.Get().Finished() {
		t.Fatal("expected b1 finished")
	}
	if b0.Get().Finished() {
		t.Fatal("sibling teardown must not finish the other side")
	}
	if b0.Get().Siblings() != 0 {
		t.Fatal("teardown must deregister from the sibling")
	}
}

func TestBus_SiblingDisconnectMutual(t *testing.T) {
	b0 := handle.New(New(0))
	defer b0.Clear()
	b1 := handle.New(New(0))
	defer b1.Clear()

	if err := b0.Get().Connect(b1.Get()); err != nil {
		t.Fatal(err)
	}
	if b0.Get().Siblings() != 1 || b1.Get().Siblings() != 1 {
		t.Fatal("expected mutual sibling link")
	}

	b0.Get().Disconnect(b1.Get())
	if b0.Get().Siblings() != 0 || b1.Get().Siblings() != 0 {
		t.Fatal("disconnect must remove the link from both sides")
	}
}

func TestBus_SiblingMustBeAnchored(t *testing.T) {
	b0 := handle.New(New(0))
	defer b0.Clear()

	// An equal-level candidate nobody references would dangle behind a
	// weak link; a less secure one is strongly adopted and fine.
	errKind(t, b0.Get().Connect(New(0)), errors.KindUnanchored)
	if err := b0.Get().Connect(New(1)); err != nil {
		t.Fatalf("unanchored child bus is adopted, not rejected: %v", err)
	}
	if b0.Get().ConnectedBuses() != 1 {
		t.Fatal("expected adopted child")
	}
}

func TestBus_MixedLevelsScenario(t *testing.T) {
	// Spec scenario: one less-secure child plus one equal-level
	// sibling on the same level-0 bus.
	b0 := handle.New(New(0))
	defer b0.Clear()
	b1 := handle.New(New(1))
	defer b1.Clear()
	sib := handle.New(New(0))
	defer sib.Clear()

	if err := b0.Get().Connect(b1.Get()); err != nil {
		t.Fatal(err)
	}
	if b0.Get().ConnectedBuses() != 1 {
		t.Fatalf("expected 1 connected bus, got %d", b0.Get().ConnectedBuses())
	}

	if err := b0.Get().Connect(sib.Get()); err != nil {
		t.Fatal(err)
	}
	if b0.Get().Siblings() != 1 {
		t.Fatalf("expected 1 sibling, got %d", b0.Get().Siblings())
	}
}

func TestBus_ThreeLevelCascade(t *testing.T) {
	hooks := &serviceHooks{}

	b0 := handle.New(New(0))
	defer b0.Clear()
	b1 := handle.New(New(1))
	defer b1.Clear()
	b2 := handle.New(New(2))
	defer b2.Clear()

	baz := handle.New(hooks.newService(bazID, "baz"))
	defer baz.Clear()
	foo := handle.New(hooks.newService(fooID, "foo"))
	defer foo.Clear()
	bar := handle.New(hooks.newService(barID, "bar"))
	defer bar.Clear()

	if err := b0.Get().Connect(baz.Get()); err != nil {
		t.Fatal(err)
	}
	if err := b1.Get().Connect(foo.Get()); err != nil {
		t.Fatal(err)
	}
	if err := b2.Get().Connect(bar.Get()); err != nil {
		t.Fatal(err)
	}
	if err := b0.Get().Connect(b1.Get()); err != nil {
		t.Fatal(err)
	}
	if err := b1.Get().Connect(b2.Get()); err != nil {
		t.Fatal(err)
	}

	// Outward casts resolve transitively.
	if _, ok := intfbus.Cast[*service](baz.Get(), fooID); !ok {
		t.Fatal("level 0 must see level 1")
	}
	if _, ok := intfbus.Cast[*service](baz.Get(), barID); !ok {
		t.Fatal("level 0 must see level 2 transitively")
	}
	if _, ok := intfbus.Cast[*service](foo.Get(), barID); !ok {
		t.Fatal("level 1 must see level 2")
	}

	// Inward casts never resolve.
	if _, ok := intfbus.Cast[*service](bar.Get(), fooID); ok {
		t.Fatal("level 2 must not see level 1")
	}
	if _, ok := intfbus.Cast[*service](bar.Get(), bazID); ok {
		t.Fatal("level 2 must not see level 0")
	}
	if _, ok := intfbus.Cast[*service](foo.Get(), bazID); ok {
		t.Fatal("level 1 must not see level 0")
	}

	// Interfaces navigate to their own hosting bus.
	if got, ok := intfbus.Cast[*Bus](baz.Get(), intfbus.BusID); !ok || got != b0.Get() {
		t.Fatal("baz must navigate to bus 0")
	}
	if got, ok := intfbus.Cast[*Bus](bar.Get(), intfbus.BusID); !ok || got != b2.Get() {
		t.Fatal("bar must navigate to bus 2")
	}

	// Level search matrix.
	type find struct {
		from *Bus
		ask  int
		want intfbus.Bus
	}
	cases := []find{
		{b0.Get(), 0, b0.Get()},
		{b0.Get(), 1, b1.Get()},
		{b0.Get(), 2, b2.Get()},
		{b0.Get(), 3, nil},
		{b1.Get(), 0, nil},
		{b1.Get(), 1, b1.Get()},
		{b1.Get(), 2, b2.Get()},
		{b2.Get(), 1, nil},
		{b2.Get(), 2, b2.Get()},
		{b2.Get(), 3, nil},
	}
	for _, c := range cases {
		if got := c.from.FindFirstBusByLevel(c.ask); got != c.want {
			t.Fatalf("find level %d from level %d: got %v, want %v", c.ask, c.from.Level(), got, c.want)
		}
	}
}

func TestBus_SiblingCascadeTopology(t *testing.T) {
	// [b0 ~ b01] with b01 -> b1: the sibling can search through its
	// sibling's children.
	b0 := handle.New(New(0))
	defer b0.Clear()
	b01 := handle.New(New(0))
	defer b01.Clear()
	b1 := handle.New(New(1))
	defer b1.Clear()

	if err := b01.Get().Connect(b1.Get()); err != nil {
		t.Fatal(err)
	}
	if err := b0.Get().Connect(b01.Get()); err != nil {
		t.Fatal(err)
	}

	if b0.Get().Siblings() != 1 || b0.Get().ConnectedBuses() != 0 {
		t.Fatal("b0 shape")
	}
	if b01.Get().Siblings() != 1 || b01.Get().ConnectedBuses() != 1 {
		t.Fatal("b01 shape")
	}
	if b1.Get().Siblings() != 0 || b1.Get().ConnectedBuses() != 0 {
		t.Fatal("b1 shape")
	}

	if got := b0.Get().FindFirstBusByLevel(0); got != b0.Get() {
		t.Fatal("own level resolves to self")
	}
	if got := b0.Get().FindFirstBusByLevel(1); got != b1.Get() {
		t.Fatal("level 1 must be reachable through the sibling")
	}
	if got := b01.Get().FindFirstBusByLevel(1); got != b1.Get() {
		t.Fatal("level 1 must be reachable from b01")
	}
	if got := b1.Get().FindFirstBusByLevel(0); got != nil {
		t.Fatal("more secure levels are not reachable")
	}
}

func TestBus_SiblingCycleQueryTerminates(t *testing.T) {
	b0 := handle.New(New(0))
	defer b0.Clear()
	b1 := handle.New(New(0))
	defer b1.Clear()

	if err := b0.Get().Connect(b1.Get()); err != nil {
		t.Fatal(err)
	}

	// Unknown identity traverses the full cyclic graph exactly once.
	if _, err := b0.Get().QueryInterface(bazID); !errors.IsNotResolved(err) {
		t.Fatalf("expected not-resolved, got %v", err)
	}
	if b1.Get().FindFirstBusByLevel(7) != nil {
		t.Fatal("level search must terminate on sibling cycles")
	}
}

func TestBus_OperationsAfterFinishPanic(t *testing.T) {
	hooks := &serviceHooks{}
	b := handle.New(New(0))
	defer b.Clear()
	b.Get().Finish()

	svc := handle.New(hooks.newService(fooID, "foo"))
	defer svc.Clear()

	mustPanicKind(t, errors.KindFinished, func() {
		_ = b.Get().Connect(svc.Get())
	})
	mustPanicKind(t, errors.KindFinished, func() {
		b.Get().Disconnect(svc.Get())
	})
	mustPanicKind(t, errors.KindFinished, func() {
		_, _ = b.Get().QueryInterface(fooID)
	})
	mustPanicKind(t, errors.KindFinished, func() {
		b.Get().FindFirstBusByLevel(0)
	})

	// Finish itself stays idempotent-safe, and self identities still
	// answer.
	b.Get().Finish()
	if !intfbus.Supports(b.Get(), intfbus.BusID) {
		t.Fatal("self identity must survive finish")
	}
}

func TestBus_DestructionRunsTeardown(t *testing.T) {
	hooks := &serviceHooks{}

	b := handle.New(New(0))
	svc := handle.New(hooks.newService(fooID, "foo"))

	if err := b.Get().Connect(svc.Get()); err != nil {
		t.Fatal(err)
	}
	svc.Clear() // bus now holds the only reference

	if hooks.alive != 1 {
		t.Fatalf("service must stay alive under the bus, alive=%d", hooks.alive)
	}

	b.Clear() // destroys the bus, which must release the service

	if hooks.alive != 0 {
		t.Fatalf("bus destruction must release hosted services, alive=%d", hooks.alive)
	}
	if len(hooks.finishLog) != 1 {
		t.Fatalf("service must be finished during teardown, log=%v", hooks.finishLog)
	}
}

func TestBus_ConcurrentQueries(t *testing.T) {
	hooks := &serviceHooks{}
	b0 := handle.New(New(0))
	defer b0.Clear()
	b1 := handle.New(New(1))
	defer b1.Clear()

	if err := b0.Get().Connect(hooks.newService(fooID, "foo")); err != nil {
		t.Fatal(err)
	}
	if err := b1.Get().Connect(hooks.newService(barID, "bar")); err != nil {
		t.Fatal(err)
	}
	if err := b0.Get().Connect(b1.Get()); err != nil {
		t.Fatal(err)
	}

	const workers = 8
	const rounds = 200

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				if _, ok := intfbus.Cast[*service](b0.Get(), barID); !ok {
					t.Error("transitive resolution failed under concurrency")
					return
				}
				if !intfbus.Supports(b0.Get(), fooID) {
					t.Error("local resolution failed under concurrency")
					return
				}
			}
		}()
	}
	wg.Wait()

	if b0.Get().Count() != 1 {
		t.Fatalf("queries must balance references, bus count %d", b0.Get().Count())
	}
}

func mustPanicKind(t *testing.T, kind errors.Kind, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic with kind %s", kind)
		}
		err, ok := r.(*errors.Error)
		if !ok {
			t.Fatalf("expected *errors.Error panic, got %T", r)
		}
		if err.Kind != kind {
			t.Fatalf("expected kind %s, got %s", kind, err.Kind)
		}
	}()
	fn()
}
