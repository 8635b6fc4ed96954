package data

import (
	"fmt"
	"math"
	"strings"
)

// Id identifies an object in a space. Ids are non-zero and allocated from a
// process-wide counter, so an Id never refers to two different objects during
// one process lifetime.
type Id uint64

func (id Id) String() string {
	return fmt.Sprintf("<%d>", uint64(id))
}

// Symbol is an interned attribute or symbol name, compared by content.
type Symbol = string

// Tuple is an immutable sequence of values. Tuples are shared freely between
// bindings and attribute lists and must never be mutated after construction.
type Tuple = []Value

// Kind tags the variant held by a Value. KindInt is the zero Kind; the
// cross-variant ordering is given by kindRank.
type Kind uint8

const (
	KindInt Kind = iota
	KindObject
	KindSymbol
	KindFloat
	KindTuple
)

// kindRank is the cross-variant ordering: Object sorts above Symbol, Symbol
// above Int, and so on down to Tuple.
var kindRank = [...]int64{KindObject: 4, KindSymbol: 3, KindInt: 2, KindFloat: 1, KindTuple: 0}

// Value is the dynamically typed unit of the engine: an object reference, a
// symbol, a signed integer, a float, or a tuple of values. The zero Value is
// Int(0).
type Value struct {
	kind  Kind
	id    Id
	sym   Symbol
	num   int64
	fnum  float64
	tuple Tuple
}

func Obj(id Id) Value       { return Value{kind: KindObject, id: id} }
func Sym(s string) Value    { return Value{kind: KindSymbol, sym: s} }
func Float(f float64) Value { return Value{kind: KindFloat, fnum: f} }

func Int(i int64) Value { return Value{kind: KindInt, num: i} }

// Tup builds a tuple value. The item slice is captured as-is and must not be
// mutated afterwards.
func Tup(items ...Value) Value {
	return Value{kind: KindTuple, tuple: items}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsObject() bool { return v.kind == KindObject }
func (v Value) IsSymbol() bool { return v.kind == KindSymbol }
func (v Value) IsInt() bool    { return v.kind == KindInt }
func (v Value) IsFloat() bool  { return v.kind == KindFloat }
func (v Value) IsTuple() bool  { return v.kind == KindTuple }

func (v Value) AsObject() (Id, bool) {
	if v.kind == KindObject {
		return v.id, true
	}
	return 0, false
}

func (v Value) AsSymbol() (Symbol, bool) {
	if v.kind == KindSymbol {
		return v.sym, true
	}
	return "", false
}

func (v Value) AsInt() (int64, bool) {
	if v.kind == KindInt {
		return v.num, true
	}
	return 0, false
}

func (v Value) AsFloat() (float64, bool) {
	if v.kind == KindFloat {
		return v.fnum, true
	}
	return 0, false
}

func (v Value) AsTuple() (Tuple, bool) {
	if v.kind == KindTuple {
		return v.tuple, true
	}
	return nil, false
}

// IsNumeric reports whether the value takes part in arithmetic and numeric
// comparison coercion.
func (v Value) IsNumeric() bool {
	return v.kind == KindInt || v.kind == KindFloat
}

// Equal reports componentwise equality. An Int and a Float are equal when
// they are equal once both are converted to float.
func (v Value) Equal(other Value) bool {
	if v.IsNumeric() && other.IsNumeric() && v.kind != other.kind {
		return v.toFloat() == other.toFloat()
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindObject:
		return v.id == other.id
	case KindSymbol:
		return v.sym == other.sym
	case KindInt:
		return v.num == other.num
	case KindFloat:
		return v.fnum == other.fnum
	case KindTuple:
		if len(v.tuple) != len(other.tuple) {
			return false
		}
		for i := range v.tuple {
			if !v.tuple[i].Equal(other.tuple[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare imposes a total order over all values: same-variant values compare
// componentwise (tuples lexicographically), Int and Float cross-compare as
// floats with NaN ordered above every non-NaN, and remaining cross-variant
// pairs follow the fixed Kind order. Returns -1, 0, or 1.
func (v Value) Compare(other Value) int {
	if v.IsNumeric() && other.IsNumeric() && v.kind != other.kind {
		return compareFloats(v.toFloat(), other.toFloat())
	}
	if v.kind != other.kind {
		return compareInt64(kindRank[v.kind], kindRank[other.kind])
	}
	switch v.kind {
	case KindObject:
		return compareUint64(uint64(v.id), uint64(other.id))
	case KindSymbol:
		return strings.Compare(v.sym, other.sym)
	case KindInt:
		return compareInt64(v.num, other.num)
	case KindFloat:
		return compareFloats(v.fnum, other.fnum)
	case KindTuple:
		for i := 0; i < len(v.tuple) && i < len(other.tuple); i++ {
			if cmp := v.tuple[i].Compare(other.tuple[i]); cmp != 0 {
				return cmp
			}
		}
		return compareInt64(int64(len(v.tuple)), int64(len(other.tuple)))
	}
	return 0
}

func (v Value) toFloat() float64 {
	if v.kind == KindInt {
		return float64(v.num)
	}
	return v.fnum
}

func compareFloats(a, b float64) int {
	// NaN sorts above every non-NaN so the order stays total.
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (v Value) String() string {
	switch v.kind {
	case KindObject:
		return v.id.String()
	case KindSymbol:
		return v.sym
	case KindInt:
		return fmt.Sprintf("%d", v.num)
	case KindFloat:
		return fmt.Sprintf("%v", v.fnum)
	case KindTuple:
		var b strings.Builder
		b.WriteByte('[')
		for i, item := range v.tuple {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(item.String())
		}
		b.WriteByte(']')
		return b.String()
	}
	return "?"
}
