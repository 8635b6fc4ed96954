// Package space provides the mutable object store the rule engine reads and
// writes: objects keyed by id, ordered attribute groups, a registered root
// set, nested copy-on-write transactions, and a mark-and-sweep collector.
package space

import (
	"sort"
	"sync/atomic"

	"sigil/internal/data"
)

// idSequence hands out object ids across all spaces of the process, so an id
// observed anywhere is never reissued, not even for rolled-back transactions.
var idSequence atomic.Uint64

func nextId() data.Id {
	return data.Id(idSequence.Add(1))
}

// rootSet keeps root ids unique while preserving registration order.
type rootSet struct {
	ids []data.Id
}

func (r *rootSet) add(object data.Id) bool {
	if r.contains(object) {
		return false
	}
	r.ids = append(r.ids, object)
	return true
}

func (r *rootSet) remove(object data.Id) bool {
	for i, existing := range r.ids {
		if existing == object {
			r.ids = append(r.ids[:i:i], r.ids[i+1:]...)
			return true
		}
	}
	return false
}

func (r *rootSet) contains(object data.Id) bool {
	for _, existing := range r.ids {
		if existing == object {
			return true
		}
	}
	return false
}

func (r *rootSet) clone() rootSet {
	return rootSet{ids: append([]data.Id(nil), r.ids...)}
}

// Space is the base object store.
type Space struct {
	roots   rootSet
	objects map[data.Id]*attrList
}

func New() *Space {
	return &Space{
		objects: make(map[data.Id]*attrList),
	}
}

func (s *Space) CreateId() data.Id {
	return nextId()
}

func (s *Space) CreateRootId() data.Id {
	id := s.CreateId()
	s.RegisterRoot(id)
	return id
}

func (s *Space) RegisterRoot(object data.Id) bool {
	return s.roots.add(object)
}

func (s *Space) UnregisterRoot(object data.Id) bool {
	return s.roots.remove(object)
}

func (s *Space) Roots() []data.Id {
	return s.roots.ids
}

func (s *Space) Attributes(object data.Id) Attributes {
	if attrs, ok := s.objects[object]; ok {
		return Attributes{object: object, attrs: *attrs}
	}
	return Attributes{object: object}
}

func (s *Space) AttributesMut(object data.Id) *AttributesMut {
	attrs, ok := s.objects[object]
	if !ok {
		attrs = &attrList{}
		s.objects[object] = attrs
	}
	return &AttributesMut{object: object, attrs: attrs}
}

func (s *Space) Transaction(body func(tx *Transaction) bool) bool {
	tx := newTransaction(s, s.roots.clone())
	if !body(tx) {
		return false
	}
	s.roots = tx.localRoots
	for id, attrs := range tx.localObjects {
		s.objects[id] = attrs
	}
	return true
}

// Compact drops object entries with no values left. An absent entry is
// semantically identical to an empty one, so this only reclaims memory.
func (s *Space) Compact() {
	for id, attrs := range s.objects {
		if attrs.valueCount() == 0 {
			delete(s.objects, id)
		}
	}
}

// CollectGarbage removes every object unreachable from the registered roots
// through any chain of attribute values, tracing tuples recursively. Returns
// the number of removed objects.
func (s *Space) CollectGarbage() int {
	var marked []data.Id
	trace := make([]data.Value, 0, len(s.roots.ids))
	for _, id := range s.roots.ids {
		trace = append(trace, data.Obj(id))
	}

	for len(trace) > 0 {
		value := trace[len(trace)-1]
		trace = trace[:len(trace)-1]

		if tuple, ok := value.AsTuple(); ok {
			trace = append(trace, tuple...)
			continue
		}
		id, ok := value.AsObject()
		if !ok {
			continue
		}
		index := sort.Search(len(marked), func(i int) bool { return marked[i] >= id })
		if index < len(marked) && marked[index] == id {
			continue
		}
		marked = append(marked, 0)
		copy(marked[index+1:], marked[index:])
		marked[index] = id

		if attrs, ok := s.objects[id]; ok {
			for _, group := range *attrs {
				trace = append(trace, group.values...)
			}
		}
	}

	removed := 0
	for id := range s.objects {
		index := sort.Search(len(marked), func(i int) bool { return marked[i] >= id })
		if index >= len(marked) || marked[index] != id {
			delete(s.objects, id)
			removed++
		}
	}
	return removed
}
