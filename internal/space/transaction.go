package space

import (
	"sigil/internal/data"
)

// Transaction is a copy-on-write overlay over a parent Access. Reads consult
// the overlay first and fall through to the parent; the first write to an
// object copies its attribute list into the overlay. The overlay merges back
// into the parent only when the enclosing Transaction call's body commits.
type Transaction struct {
	parent       Access
	localRoots   rootSet
	localObjects map[data.Id]*attrList
}

func newTransaction(parent Access, roots rootSet) *Transaction {
	return &Transaction{
		parent:       parent,
		localRoots:   roots,
		localObjects: make(map[data.Id]*attrList),
	}
}

func (t *Transaction) CreateId() data.Id {
	return t.parent.CreateId()
}

func (t *Transaction) CreateRootId() data.Id {
	id := t.CreateId()
	t.RegisterRoot(id)
	return id
}

func (t *Transaction) RegisterRoot(object data.Id) bool {
	return t.localRoots.add(object)
}

func (t *Transaction) UnregisterRoot(object data.Id) bool {
	return t.localRoots.remove(object)
}

func (t *Transaction) Roots() []data.Id {
	return t.localRoots.ids
}

func (t *Transaction) Attributes(object data.Id) Attributes {
	if attrs, ok := t.localObjects[object]; ok {
		return Attributes{object: object, attrs: *attrs}
	}
	return t.parent.Attributes(object)
}

func (t *Transaction) AttributesMut(object data.Id) *AttributesMut {
	attrs, ok := t.localObjects[object]
	if !ok {
		copied := t.parent.Attributes(object).attrs.clone()
		attrs = &copied
		t.localObjects[object] = attrs
	}
	return &AttributesMut{object: object, attrs: attrs}
}

// Clone copies the overlay so an alternative set of writes can be explored
// against the same parent without disturbing this transaction.
func (t *Transaction) Clone() *Transaction {
	localObjects := make(map[data.Id]*attrList, len(t.localObjects))
	for id, attrs := range t.localObjects {
		copied := attrs.clone()
		localObjects[id] = &copied
	}
	return &Transaction{
		parent:       t.parent,
		localRoots:   t.localRoots.clone(),
		localObjects: localObjects,
	}
}

func (t *Transaction) Transaction(body func(tx *Transaction) bool) bool {
	tx := newTransaction(t, t.localRoots.clone())
	if !body(tx) {
		return false
	}
	t.localRoots = tx.localRoots
	for id, attrs := range tx.localObjects {
		t.localObjects[id] = attrs
	}
	return true
}
