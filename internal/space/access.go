package space

import (
	"sigil/internal/data"
)

// Access is the capability surface shared by Space and Transaction. The
// runtime and the system facade are written against this interface so a rule
// firing works identically on a bare space and inside a nested transaction.
type Access interface {
	// CreateId allocates a fresh object id. The id is process-unique and is
	// never reused, even when the surrounding transaction rolls back.
	CreateId() data.Id

	// CreateRootId allocates a fresh id and registers it as a root.
	CreateRootId() data.Id

	// RegisterRoot pins an object as a garbage collection root. Returns false
	// if it already was one.
	RegisterRoot(object data.Id) bool

	// UnregisterRoot removes an object from the root set. Returns false if it
	// was not a root.
	UnregisterRoot(object data.Id) bool

	// Roots returns the root objects in registration order. The slice must
	// not be mutated.
	Roots() []data.Id

	// Attributes returns a read view of an object's attributes. An object
	// with no entry reads as having none.
	Attributes(object data.Id) Attributes

	// AttributesMut returns a write view of an object's attributes, creating
	// the entry if needed.
	AttributesMut(object data.Id) *AttributesMut

	// Transaction runs body inside a nested copy-on-write overlay. The
	// overlay commits when body returns true and is discarded otherwise;
	// Transaction reports whether it committed.
	Transaction(body func(tx *Transaction) bool) bool
}

// attrGroup is one named attribute holding its values in insertion order.
type attrGroup struct {
	name   data.Symbol
	values []data.Value
}

// attrList is the ordered attribute groups of one object.
type attrList []attrGroup

func (l attrList) clone() attrList {
	cloned := make(attrList, len(l))
	for i, group := range l {
		values := make([]data.Value, len(group.values))
		copy(values, group.values)
		cloned[i] = attrGroup{name: group.name, values: values}
	}
	return cloned
}

func (l attrList) valueCount() int {
	count := 0
	for _, group := range l {
		count += len(group.values)
	}
	return count
}

// Attributes is a read-only view of one object's attributes.
type Attributes struct {
	object data.Id
	attrs  attrList
}

func (a Attributes) Object() data.Id { return a.object }

// Len counts the values over all attribute groups.
func (a Attributes) Len() int { return a.attrs.valueCount() }

func (a Attributes) IsEmpty() bool { return a.Len() == 0 }

// Has reports whether the attribute holds a value equal to the given one.
func (a Attributes) Has(name data.Symbol, value data.Value) bool {
	for _, group := range a.attrs {
		if group.name == name {
			for _, existing := range group.values {
				if existing.Equal(value) {
					return true
				}
			}
			return false
		}
	}
	return false
}

// HasNamed reports whether the attribute holds at least one value.
func (a Attributes) HasNamed(name data.Symbol) bool {
	for _, group := range a.attrs {
		if group.name == name {
			return len(group.values) > 0
		}
	}
	return false
}

// FirstNamed returns the first value of the named attribute.
func (a Attributes) FirstNamed(name data.Symbol) (data.Value, bool) {
	iter := a.IterNamed(name)
	return iter.Next()
}

// Iter visits every (name, value) pair in group order, then value insertion
// order within each group.
func (a Attributes) Iter() *AttrIter {
	return &AttrIter{attrs: a.attrs}
}

// IterNamed iterates the values of the first group with the given name; the
// iterator is empty when there is none.
func (a Attributes) IterNamed(name data.Symbol) *ValuesIter {
	for _, group := range a.attrs {
		if group.name == name {
			return &ValuesIter{values: group.values}
		}
	}
	return &ValuesIter{}
}

// AttrIter walks all (name, value) pairs of an attribute view.
type AttrIter struct {
	attrs attrList
	group int
	value int
}

func (it *AttrIter) Next() (data.Symbol, data.Value, bool) {
	for it.group < len(it.attrs) {
		group := it.attrs[it.group]
		if it.value < len(group.values) {
			value := group.values[it.value]
			it.value++
			return group.name, value, true
		}
		it.group++
		it.value = 0
	}
	return "", data.Value{}, false
}

// ValuesIter walks the values of a single attribute group.
type ValuesIter struct {
	values []data.Value
	pos    int
}

func (it *ValuesIter) Next() (data.Value, bool) {
	if it.pos < len(it.values) {
		value := it.values[it.pos]
		it.pos++
		return value, true
	}
	return data.Value{}, false
}

// AttributesMut is a write view of one object's attributes. Mutations write
// through to the owning space or transaction overlay.
type AttributesMut struct {
	object data.Id
	attrs  *attrList
}

func (a *AttributesMut) Object() data.Id { return a.object }

// Inspect returns a read view over the current state.
func (a *AttributesMut) Inspect() Attributes {
	return Attributes{object: a.object, attrs: *a.attrs}
}

// Add appends a value to the named attribute group, creating the group at the
// end of the list if it does not exist yet.
func (a *AttributesMut) Add(name data.Symbol, value data.Value) {
	for i := range *a.attrs {
		if (*a.attrs)[i].name == name {
			(*a.attrs)[i].values = append((*a.attrs)[i].values, value)
			return
		}
	}
	*a.attrs = append(*a.attrs, attrGroup{name: name, values: []data.Value{value}})
}

// RemoveFirst removes the first value equal to the given one from the named
// attribute and returns it.
func (a *AttributesMut) RemoveFirst(name data.Symbol, value data.Value) (data.Value, bool) {
	for i := range *a.attrs {
		if (*a.attrs)[i].name != name {
			continue
		}
		values := (*a.attrs)[i].values
		for j, existing := range values {
			if existing.Equal(value) {
				(*a.attrs)[i].values = append(values[:j:j], values[j+1:]...)
				return existing, true
			}
		}
		return data.Value{}, false
	}
	return data.Value{}, false
}

// RemoveFirstNamed removes and returns the first value of the named
// attribute.
func (a *AttributesMut) RemoveFirstNamed(name data.Symbol) (data.Value, bool) {
	for i := range *a.attrs {
		if (*a.attrs)[i].name != name {
			continue
		}
		values := (*a.attrs)[i].values
		if len(values) == 0 {
			return data.Value{}, false
		}
		first := values[0]
		(*a.attrs)[i].values = append([]data.Value(nil), values[1:]...)
		return first, true
	}
	return data.Value{}, false
}

// RemoveAllNamed removes and returns all values of the named attribute.
func (a *AttributesMut) RemoveAllNamed(name data.Symbol) []data.Value {
	for i := range *a.attrs {
		if (*a.attrs)[i].name == name {
			removed := (*a.attrs)[i].values
			(*a.attrs)[i].values = nil
			return removed
		}
	}
	return nil
}

// Retain keeps only the values for which shouldRetain returns true and
// reports how many were dropped.
func (a *AttributesMut) Retain(shouldRetain func(name data.Symbol, value data.Value) bool) int {
	removed := 0
	for i := range *a.attrs {
		group := &(*a.attrs)[i]
		kept := group.values[:0:len(group.values)]
		for _, value := range group.values {
			if shouldRetain(group.name, value) {
				kept = append(kept, value)
			} else {
				removed++
			}
		}
		group.values = kept
	}
	return removed
}

// RetainNamed drops every value outside the named attribute.
func (a *AttributesMut) RetainNamed(name data.Symbol) int {
	return a.Retain(func(existing data.Symbol, _ data.Value) bool {
		return existing == name
	})
}

// ClearNamed drops every value of the named attribute.
func (a *AttributesMut) ClearNamed(name data.Symbol) int {
	return a.Retain(func(existing data.Symbol, _ data.Value) bool {
		return existing != name
	})
}

// ClearAll drops every attribute value.
func (a *AttributesMut) ClearAll() int {
	removed := a.Inspect().Len()
	*a.attrs = (*a.attrs)[:0]
	return removed
}
