// Package handle provides Ref, a generic owning handle that automates
// the ref/unref discipline of the object model.
//
// A Ref holds exactly one reference for its lifetime. Construct with
// New (takes a reference), Adopt (assumes one the caller owns, e.g.
// from a raw query) or Query (casting construction from any object in
// a bus graph), and end the scope with Clear:
//
//	r, err := handle.Query[*Storage](busRoot, StorageID)
//	if err != nil {
//	    return err
//	}
//	defer r.Clear()
//	r.Get().Put(key, value)
package handle
