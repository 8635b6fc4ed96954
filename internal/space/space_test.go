package space

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sigil/internal/data"
)

func TestRoots(t *testing.T) {
	sp := New()
	objA := sp.CreateId()
	objB := sp.CreateId()

	assert.True(t, sp.RegisterRoot(objA))
	assert.False(t, sp.RegisterRoot(objA))
	assert.Contains(t, sp.Roots(), objA)
	assert.NotContains(t, sp.Roots(), objB)

	objC := sp.CreateRootId()
	assert.Contains(t, sp.Roots(), objC)

	assert.True(t, sp.UnregisterRoot(objA))
	assert.False(t, sp.UnregisterRoot(objA))
	assert.NotContains(t, sp.Roots(), objA)
}

func TestIdsAreUniqueAndNonZero(t *testing.T) {
	sp := New()
	seen := make(map[data.Id]bool)
	for i := 0; i < 100; i++ {
		id := sp.CreateId()
		assert.NotZero(t, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestGarbageCollection(t *testing.T) {
	sp := New()

	mark := func(id data.Id) data.Id {
		sp.AttributesMut(id).Add("mark", data.Sym("ex"))
		return id
	}

	objRoot := mark(sp.CreateRootId())
	objDirect := mark(sp.CreateId())
	objTupleA := mark(sp.CreateId())
	objTupleB := mark(sp.CreateId())
	objDangleA := mark(sp.CreateId())
	objDangleB := mark(sp.CreateId())

	sp.AttributesMut(objDirect).Add("tuple", data.Tup(data.Obj(objTupleA), data.Obj(objTupleB)))
	sp.AttributesMut(objRoot).Add("direct", data.Obj(objDirect))
	sp.AttributesMut(objTupleA).Add("backlink", data.Obj(objRoot))
	sp.AttributesMut(objDangleA).Add("b", data.Obj(objDangleB))

	assert.True(t, sp.Attributes(objDangleA).Has("mark", data.Sym("ex")))
	assert.True(t, sp.Attributes(objDangleB).Has("mark", data.Sym("ex")))

	assert.Equal(t, 2, sp.CollectGarbage())

	assert.False(t, sp.Attributes(objDangleA).Has("mark", data.Sym("ex")))
	assert.False(t, sp.Attributes(objDangleB).Has("mark", data.Sym("ex")))

	assert.True(t, sp.Attributes(objRoot).Has("mark", data.Sym("ex")))
	assert.True(t, sp.Attributes(objDirect).Has("mark", data.Sym("ex")))
	assert.True(t, sp.Attributes(objTupleA).Has("mark", data.Sym("ex")))
	assert.True(t, sp.Attributes(objTupleB).Has("mark", data.Sym("ex")))
}

func TestCompactDropsEmptyEntries(t *testing.T) {
	sp := New()
	obj := sp.CreateId()
	sp.AttributesMut(obj).Add("foo", data.Int(23))
	sp.AttributesMut(obj).ClearAll()

	sp.Compact()
	assert.True(t, sp.Attributes(obj).IsEmpty())
}

func TestAttributesAdd(t *testing.T) {
	sp := New()
	obj := sp.CreateId()
	assert.True(t, sp.Attributes(obj).IsEmpty())

	attrs := sp.AttributesMut(obj)
	attrs.Add("foo", data.Int(23))
	attrs.Add("bar", data.Int(2))
	attrs.Add("bar", data.Int(3))

	assert.True(t, sp.Attributes(obj).Has("foo", data.Int(23)))
	assert.False(t, sp.Attributes(obj).Has("foo", data.Int(2)))
	assert.True(t, sp.Attributes(obj).HasNamed("bar"))
	assert.Equal(t, 3, sp.Attributes(obj).Len())
}

func TestAttributesInspect(t *testing.T) {
	sp := New()
	obj := sp.CreateId()
	attrs := sp.AttributesMut(obj)
	attrs.Add("foo", data.Int(23))
	assert.True(t, attrs.Inspect().Has("foo", data.Int(23)))
}

func TestRemoveFirst(t *testing.T) {
	sp := New()
	obj := sp.CreateId()
	attrs := sp.AttributesMut(obj)
	attrs.Add("foo", data.Int(23))
	attrs.Add("foo", data.Int(23))

	assert.Equal(t, 2, sp.Attributes(obj).Len())
	value, ok := sp.AttributesMut(obj).RemoveFirst("foo", data.Int(23))
	assert.True(t, ok)
	assert.True(t, value.Equal(data.Int(23)))
	assert.Equal(t, 1, sp.Attributes(obj).Len())
	assert.True(t, sp.Attributes(obj).Has("foo", data.Int(23)))

	_, ok = sp.AttributesMut(obj).RemoveFirst("foo", data.Int(99))
	assert.False(t, ok)
}

func TestRemoveFirstNamed(t *testing.T) {
	sp := New()
	obj := sp.CreateId()
	attrs := sp.AttributesMut(obj)
	attrs.Add("foo", data.Int(23))
	attrs.Add("foo", data.Int(42))

	value, ok := sp.AttributesMut(obj).RemoveFirstNamed("foo")
	assert.True(t, ok)
	assert.True(t, value.Equal(data.Int(23)))
	assert.Equal(t, 1, sp.Attributes(obj).Len())

	_, ok = sp.AttributesMut(obj).RemoveFirstNamed("missing")
	assert.False(t, ok)
}

func TestRemoveAllNamed(t *testing.T) {
	sp := New()
	obj := sp.CreateId()
	attrs := sp.AttributesMut(obj)
	attrs.Add("foo", data.Int(23))
	attrs.Add("foo", data.Int(42))

	values := sp.AttributesMut(obj).RemoveAllNamed("foo")
	assert.Len(t, values, 2)
	assert.True(t, values[0].Equal(data.Int(23)))
	assert.True(t, values[1].Equal(data.Int(42)))
	assert.True(t, sp.Attributes(obj).IsEmpty())
}

func TestRetain(t *testing.T) {
	sp := New()
	obj := sp.CreateId()
	attrs := sp.AttributesMut(obj)
	attrs.Add("foo", data.Int(23))
	attrs.Add("bar", data.Int(42))
	attrs.Add("qux", data.Int(99))

	removed := sp.AttributesMut(obj).Retain(func(_ data.Symbol, value data.Value) bool {
		return !value.Equal(data.Int(42))
	})
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, sp.Attributes(obj).Len())
	assert.True(t, sp.Attributes(obj).Has("foo", data.Int(23)))
	assert.True(t, sp.Attributes(obj).Has("qux", data.Int(99)))
}

func TestRetainNamed(t *testing.T) {
	sp := New()
	obj := sp.CreateId()
	attrs := sp.AttributesMut(obj)
	attrs.Add("foo", data.Int(23))
	attrs.Add("bar", data.Int(42))
	attrs.Add("qux", data.Int(99))

	assert.Equal(t, 2, sp.AttributesMut(obj).RetainNamed("bar"))
	assert.Equal(t, 1, sp.Attributes(obj).Len())
	assert.True(t, sp.Attributes(obj).Has("bar", data.Int(42)))
}

func TestClearAll(t *testing.T) {
	sp := New()
	obj := sp.CreateId()
	attrs := sp.AttributesMut(obj)
	attrs.Add("foo", data.Int(23))
	attrs.Add("bar", data.Int(42))

	assert.Equal(t, 2, sp.AttributesMut(obj).ClearAll())
	assert.Equal(t, 0, sp.Attributes(obj).Len())
}

func TestClearNamed(t *testing.T) {
	sp := New()
	obj := sp.CreateId()
	attrs := sp.AttributesMut(obj)
	attrs.Add("foo", data.Int(23))
	attrs.Add("bar", data.Int(42))
	attrs.Add("qux", data.Int(99))

	assert.Equal(t, 1, sp.AttributesMut(obj).ClearNamed("bar"))
	assert.Equal(t, 2, sp.Attributes(obj).Len())
	assert.True(t, sp.Attributes(obj).Has("foo", data.Int(23)))
	assert.True(t, sp.Attributes(obj).Has("qux", data.Int(99)))
}

func TestIter(t *testing.T) {
	sp := New()
	obj := sp.CreateId()
	attrs := sp.AttributesMut(obj)
	attrs.Add("foo", data.Int(23))
	attrs.Add("bar", data.Int(42))
	attrs.Add("foo", data.Int(99))

	iter := sp.Attributes(obj).Iter()

	name, value, ok := iter.Next()
	assert.True(t, ok)
	assert.Equal(t, "foo", name)
	assert.True(t, value.Equal(data.Int(23)))

	name, value, ok = iter.Next()
	assert.True(t, ok)
	assert.Equal(t, "foo", name)
	assert.True(t, value.Equal(data.Int(99)))

	name, value, ok = iter.Next()
	assert.True(t, ok)
	assert.Equal(t, "bar", name)
	assert.True(t, value.Equal(data.Int(42)))

	_, _, ok = iter.Next()
	assert.False(t, ok)
}

func TestIterNamed(t *testing.T) {
	sp := New()
	obj := sp.CreateId()
	attrs := sp.AttributesMut(obj)
	attrs.Add("foo", data.Int(23))
	attrs.Add("bar", data.Int(42))
	attrs.Add("foo", data.Int(99))

	iter := sp.Attributes(obj).IterNamed("foo")

	value, ok := iter.Next()
	assert.True(t, ok)
	assert.True(t, value.Equal(data.Int(23)))

	value, ok = iter.Next()
	assert.True(t, ok)
	assert.True(t, value.Equal(data.Int(99)))

	_, ok = iter.Next()
	assert.False(t, ok)
}

func TestFirstNamed(t *testing.T) {
	sp := New()
	obj := sp.CreateId()
	attrs := sp.AttributesMut(obj)
	attrs.Add("bar", data.Int(42))
	attrs.Add("foo", data.Int(23))
	attrs.Add("foo", data.Int(99))

	value, ok := sp.Attributes(obj).FirstNamed("foo")
	assert.True(t, ok)
	assert.True(t, value.Equal(data.Int(23)))

	_, ok = sp.Attributes(obj).FirstNamed("qux")
	assert.False(t, ok)
}
