package object

import (
	intfbus "github.com/wippyai/intf-bus"
	"github.com/wippyai/intf-bus/errors"
	"github.com/wippyai/intf-bus/iid"
)

// Export is one entry of an object's capability table: the identity a
// query may ask for, and the value handed back when it matches. The
// value is usually the object itself, asserted to the Go interface the
// identity stands for; all exports of one object share the same
// reference count.
type Export struct {
	ID    iid.ID
	Value intfbus.Interface
}

// Intf implements a plain queryable interface over Base. An embedding
// type declares its identities as an ordered export table at Init;
// QueryInterface scans the table in declared order, so for
// multi-identity objects the first declared match wins.
type Intf struct {
	Base

	self    intfbus.Interface
	exports []Export
}

// Init prepares the object. self must be the outermost object; exports
// list the identities it answers, in match order.
func (i *Intf) Init(self intfbus.Interface, exports []Export, opts ...Option) {
	i.self = self
	i.exports = exports
	i.Base.Init(self, opts...)
}

// QueryInterface resolves id against the export table or the universal
// base identity. A match takes one reference on behalf of the caller.
func (i *Intf) QueryInterface(id iid.ID) (intfbus.Interface, error) {
	for _, e := range i.exports {
		if e.ID.Equal(id) {
			i.Ref()
			return e.Value, nil
		}
	}
	if id.Equal(intfbus.BaseID) {
		i.Ref()
		return i.self, nil
	}
	return nil, errors.NotResolved(id.String())
}
