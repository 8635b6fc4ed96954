package system_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigil/internal/data"
	"sigil/internal/space"
	"sigil/internal/system"
)

// testRun loads the rules into a one-input system, runs to the first firing,
// and pops the root's `result` attribute.
func testRun(t *testing.T, sp *space.Space, root data.Id, rules string) (data.Value, bool) {
	t.Helper()
	sys, err := system.New("test", "ROOT")
	require.NoError(t, err)
	loader := system.NewLoader(sys)
	_, err = loader.LoadString(rules)
	require.NoError(t, err)
	_, _, err = sys.RunToFirst(sp, root)
	require.NoError(t, err)
	return sp.AttributesMut(root).RemoveFirstNamed("result")
}

func loadError(t *testing.T, rules string) error {
	t.Helper()
	sys, err := system.New("test", "ROOT")
	require.NoError(t, err)
	loader := system.NewLoader(sys)
	_, err = loader.LoadString(rules)
	require.Error(t, err)
	return err
}

func requireResult(t *testing.T, value data.Value, ok bool, expected data.Value) {
	t.Helper()
	require.True(t, ok, "expected a result value")
	assert.True(t, value.Equal(expected), "expected %s, got %s", expected, value)
}

func TestSelectVariableAttribute(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()
	sp.AttributesMut(root).Add("value", data.Int(23))

	value, ok := testRun(t, sp, root, `
		rule test:no { $ROOT.other: $ } do { + $ROOT.result: wrong }
		rule test:ok { $ROOT.value: $v } do { + $ROOT.result: $v }
	`)
	requireResult(t, value, ok, data.Int(23))
}

func TestSelectLiteralAttribute(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()
	sp.AttributesMut(root).Add("value", data.Int(23))

	value, ok := testRun(t, sp, root, `
		rule test:no { $ROOT.value: 42 } do { + $ROOT.result: wrong }
		rule test:ok { $ROOT.value: 23 } do { + $ROOT.result: 42 }
	`)
	requireResult(t, value, ok, data.Int(42))
}

func nestedSpace(t *testing.T) (*space.Space, data.Id, data.Id) {
	t.Helper()
	sp := space.New()
	deep := sp.CreateId()
	sp.AttributesMut(deep).Add("deep_value", data.Int(42))
	deepWrong := sp.CreateId()
	sp.AttributesMut(deepWrong).Add("wrong", data.Int(99))
	root := sp.CreateId()
	sp.AttributesMut(root).Add("value", data.Int(23))
	sp.AttributesMut(root).Add("deep", data.Obj(deepWrong))
	sp.AttributesMut(root).Add("deep", data.Obj(deep))
	return sp, root, deep
}

func TestSelectNestedObject(t *testing.T) {
	sp, root, _ := nestedSpace(t)

	value, ok := testRun(t, sp, root, `
		rule test:err {
			$ROOT.deep: { unknown: $ },
		} do {
			+ $ROOT.result: wrong,
		}
		rule test:ok {
			$ROOT.deep: { deep_value: $val },
		} do {
			+ $ROOT.result: $val,
		}
	`)
	requireResult(t, value, ok, data.Int(42))
}

func TestSelectNestedLiteral(t *testing.T) {
	sp, root, _ := nestedSpace(t)

	value, ok := testRun(t, sp, root, `
		rule test:err {
			$ROOT.deep: { deep_value: 77 },
		} do {
			+ $ROOT.result: wrong,
		}
		rule test:ok {
			$ROOT.deep: { deep_value: 42 },
		} do {
			+ $ROOT.result: 42,
		}
	`)
	requireResult(t, value, ok, data.Int(42))
}

func TestCaptureObject(t *testing.T) {
	sp, root, deep := nestedSpace(t)

	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.deep: $obj @ { deep_value: 42 },
		} do {
			+ $ROOT.result: $obj,
		}
	`)
	requireResult(t, value, ok, data.Obj(deep))
}

func TestIndirectNestedAttributes(t *testing.T) {
	sp, root, _ := nestedSpace(t)

	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.deep: $obj,
			$obj.deep_value: $value,
		} do {
			+ $ROOT.result: $value,
		}
	`)
	requireResult(t, value, ok, data.Int(42))
}

func TestToplevelBindingObject(t *testing.T) {
	sp, root, _ := nestedSpace(t)

	value, ok := testRun(t, sp, root, `
		rule test:err {
			$ROOT.deep: $obj,
			$obj: { unknown: $ },
		} do {
			+ $ROOT.result: wrong,
		}
		rule test:ok {
			$ROOT.deep: $obj,
			$obj: { deep_value: $value },
		} do {
			+ $ROOT.result: $value,
		}
	`)
	requireResult(t, value, ok, data.Int(42))
}

func TestApplyRemoveVariable(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()
	sp.AttributesMut(root).Add("value", data.Int(23))

	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.value: $value,
		} do {
			+ $ROOT.result: $value,
			- $ROOT.value: $value,
		}
	`)
	requireResult(t, value, ok, data.Int(23))
	assert.False(t, sp.Attributes(root).HasNamed("value"))
}

func TestApplyRemoveLiteral(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()
	sp.AttributesMut(root).Add("value", data.Int(23))

	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.value: 23,
		} do {
			+ $ROOT.result: 99,
			- $ROOT.value: 23,
		}
	`)
	requireResult(t, value, ok, data.Int(99))
	assert.False(t, sp.Attributes(root).HasNamed("value"))
}

func TestFailedRemovalInhibitsApplication(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()
	sp.AttributesMut(root).Add("target", data.Int(23))

	_, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.target: 23,
		} do {
			+ $ROOT.result: 99,
			- $ROOT.target: 123,
		}
	`)
	assert.False(t, ok)
	assert.True(t, sp.Attributes(root).Has("target", data.Int(23)))
}

func TestOptionalRemoval(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()
	sp.AttributesMut(root).Add("target", data.Int(23))

	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.target: 23,
		} do {
			+ $ROOT.result: 99,
			-? $ROOT.target: 123,
		}
	`)
	requireResult(t, value, ok, data.Int(99))
	assert.True(t, sp.Attributes(root).Has("target", data.Int(23)))
}

func TestApplyAddLiterals(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()

	value, ok := testRun(t, sp, root, `
		rule test:ok {} do {
			+ $ROOT.value: 23,
			+ $ROOT.result: 99,
		}
	`)
	requireResult(t, value, ok, data.Int(99))
	removed, ok := sp.AttributesMut(root).RemoveFirstNamed("value")
	require.True(t, ok)
	assert.True(t, removed.Equal(data.Int(23)))
	assert.False(t, sp.Attributes(root).HasNamed("value"))
}

func TestApplyAddNestedObject(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()

	value, ok := testRun(t, sp, root, `
		rule test:ok {} do {
			+ $ROOT.result: 23,
			+ $ROOT.nested: { x: 2, x: 3 },
		}
	`)
	requireResult(t, value, ok, data.Int(23))

	nestedValue, ok := sp.AttributesMut(root).RemoveFirstNamed("nested")
	require.True(t, ok)
	nested, ok := nestedValue.AsObject()
	require.True(t, ok)
	assert.True(t, sp.Attributes(nested).Has("x", data.Int(2)))
	assert.True(t, sp.Attributes(nested).Has("x", data.Int(3)))
}

func TestApplyAddNestedObjectWithCapture(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()

	value, ok := testRun(t, sp, root, `
		rule test:ok {} do {
			+ $ROOT.result: 23,
			+ $ROOT.nested: $new @ { x: 2, x: 3 },
			+ $ROOT.new: $new,
		}
	`)
	requireResult(t, value, ok, data.Int(23))

	nestedValue, ok := sp.AttributesMut(root).RemoveFirstNamed("nested")
	require.True(t, ok)
	nested, _ := nestedValue.AsObject()
	newValue, ok := sp.AttributesMut(root).RemoveFirstNamed("new")
	require.True(t, ok)
	captured, _ := newValue.AsObject()
	assert.Equal(t, nested, captured)
}

func TestSelectBindingLiteral(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()
	sp.AttributesMut(root).Add("value", data.Sym("foo"))

	value, ok := testRun(t, sp, root, `
		rule test:err {
			$ROOT.value: $value,
			$value: bar,
		} do {
			+ $ROOT.result: wrong,
		}
		rule test:ok {
			$ROOT.value: $value,
			$value: foo,
		} do {
			+ $ROOT.result: found,
		}
	`)
	requireResult(t, value, ok, data.Sym("found"))
}

func enumSpace(t *testing.T) (*space.Space, data.Id) {
	t.Helper()
	sp := space.New()
	deep := sp.CreateId()
	sp.AttributesMut(deep).Add("deep_value", data.Int(42))
	root := sp.CreateId()
	sp.AttributesMut(root).Add("value", data.Int(23))
	sp.AttributesMut(root).Add("spec", data.Int(23))
	sp.AttributesMut(root).Add("deep", data.Obj(deep))
	return sp, root
}

func TestEnumCapture(t *testing.T) {
	sp, root := enumSpace(t)
	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.value: $value @ x | 42 | 23 | 99,
		} do {
			+ $ROOT.result: $value,
		}
	`)
	requireResult(t, value, ok, data.Int(23))
}

func TestEnumCaptureToplevel(t *testing.T) {
	sp, root := enumSpace(t)
	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.value: $value,
			$value: x | 23 | y,
		} do {
			+ $ROOT.result: $value,
		}
	`)
	requireResult(t, value, ok, data.Int(23))
}

func TestEnumWithBindingOption(t *testing.T) {
	sp, root := enumSpace(t)
	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.spec: $spec,
			$ROOT.value: $value @ x | 42 | $spec | 99,
		} do {
			+ $ROOT.result: $value,
		}
	`)
	requireResult(t, value, ok, data.Int(23))
}

func TestEnumInNestedAttribute(t *testing.T) {
	sp, root := enumSpace(t)
	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.deep: {
				deep_value: $value @ x | 42 | 23 | y,
			},
		} do {
			+ $ROOT.result: $value,
		}
	`)
	requireResult(t, value, ok, data.Int(42))
}

func TestEnumWithoutCapture(t *testing.T) {
	sp, root := enumSpace(t)
	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.value: x | 23 | y,
		} do {
			+ $ROOT.result: 99,
		}
	`)
	requireResult(t, value, ok, data.Int(99))
}

func TestEnumNoMatch(t *testing.T) {
	sp, root := enumSpace(t)
	_, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.value: x | 123 | y,
		} do {
			+ $ROOT.result: 99,
		}
	`)
	assert.False(t, ok)
}

func TestWildcardsSkipToMatchingObject(t *testing.T) {
	sp := space.New()
	attrOk := sp.CreateId()
	sp.AttributesMut(attrOk).Add("value", data.Int(23))
	sp.AttributesMut(attrOk).Add("mark", data.Int(99))
	attrErr := sp.CreateId()
	sp.AttributesMut(attrErr).Add("value", data.Int(42))
	root := sp.CreateId()
	sp.AttributesMut(root).Add("attr", data.Obj(attrErr))
	sp.AttributesMut(root).Add("attr", data.Obj(attrOk))

	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.attr: {
				value: $value,
				mark: $,
			},
		} do {
			+ $ROOT.result: $value,
		}
	`)
	requireResult(t, value, ok, data.Int(23))
}

func tupleSpace(t *testing.T) (*space.Space, data.Id) {
	t.Helper()
	sp := space.New()
	tupleA := data.Tup(data.Sym("foo"), data.Int(13))
	tupleB := data.Tup(data.Sym("foo"), data.Int(23), data.Int(42))
	tupleC := data.Tup(data.Sym("bar"), data.Int(42))
	nest := data.Tup(tupleA, tupleC)
	inner := sp.CreateId()
	sp.AttributesMut(inner).Add("inner", data.Int(23))
	root := sp.CreateId()
	sp.AttributesMut(root).Add("tuple", tupleA)
	sp.AttributesMut(root).Add("tuple", tupleB)
	sp.AttributesMut(root).Add("tuple", tupleC)
	sp.AttributesMut(root).Add("nested", nest)
	sp.AttributesMut(root).Add("with_inner", data.Tup(data.Obj(inner)))
	return sp, root
}

func TestSelectTupleByLength(t *testing.T) {
	sp, root := tupleSpace(t)
	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.tuple: [foo, $value, 42],
		} do {
			+ $ROOT.result: $value,
		}
	`)
	requireResult(t, value, ok, data.Int(23))
}

func TestSelectTupleSkipsToMatch(t *testing.T) {
	sp, root := tupleSpace(t)
	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.tuple: [bar, $value],
		} do {
			+ $ROOT.result: $value,
		}
	`)
	requireResult(t, value, ok, data.Int(42))
}

func TestSelectTupleWildcard(t *testing.T) {
	sp, root := tupleSpace(t)
	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.tuple: [$, $value],
		} do {
			+ $ROOT.result: $value,
		}
	`)
	requireResult(t, value, ok, data.Int(13))
}

func TestSelectNestedTuples(t *testing.T) {
	sp, root := tupleSpace(t)
	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.nested: [[foo, $], [$, $value]],
		} do {
			+ $ROOT.result: $value,
		}
	`)
	requireResult(t, value, ok, data.Int(42))
}

func TestSelectTupleInnerObject(t *testing.T) {
	sp, root := tupleSpace(t)
	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.with_inner: [{ inner: $value }],
		} do {
			+ $ROOT.result: $value,
		}
	`)
	requireResult(t, value, ok, data.Int(23))
}

func TestApplyRemoveTupleByStructure(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()
	sp.AttributesMut(root).Add("tuple", data.Tup(data.Sym("foo"), data.Int(23)))

	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.tuple: [foo, $value],
		} do {
			+ $ROOT.result: $value,
			- $ROOT.tuple: [foo, $value],
		}
	`)
	requireResult(t, value, ok, data.Int(23))
	assert.False(t, sp.Attributes(root).HasNamed("tuple"))
}

func TestApplyRemoveTupleByCapture(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()
	sp.AttributesMut(root).Add("tuple", data.Tup(data.Sym("foo"), data.Int(23)))

	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.tuple: $found @ [foo, $value],
		} do {
			+ $ROOT.result: $value,
			- $ROOT.tuple: $found,
		}
	`)
	requireResult(t, value, ok, data.Int(23))
	assert.False(t, sp.Attributes(root).HasNamed("tuple"))
}

func TestApplyAddTuple(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()
	sp.AttributesMut(root).Add("value", data.Int(23))

	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.value: $value,
		} do {
			+ $ROOT.result: [foo, $value],
		}
	`)
	requireResult(t, value, ok, data.Tup(data.Sym("foo"), data.Int(23)))
}

func TestApplyAddNestedTuple(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()

	value, ok := testRun(t, sp, root, `
		rule test:ok {} do {
			+ $ROOT.result: [foo, [bar, 23]],
		}
	`)
	expected := data.Tup(data.Sym("foo"), data.Tup(data.Sym("bar"), data.Int(23)))
	requireResult(t, value, ok, expected)
}

func TestApplyAddTupleWithObject(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()

	value, ok := testRun(t, sp, root, `
		rule test:ok {} do {
			+ $ROOT.result: [{ value: 23 }],
		}
	`)
	require.True(t, ok)
	tuple, isTuple := value.AsTuple()
	require.True(t, isTuple)
	require.Len(t, tuple, 1)
	inner, isObject := tuple[0].AsObject()
	require.True(t, isObject)
	assert.True(t, sp.Attributes(inner).Has("value", data.Int(23)))
}

func TestNotOuterBinding(t *testing.T) {
	sp := space.New()
	withValue := sp.CreateId()
	sp.AttributesMut(withValue).Add("value", data.Int(23))
	withoutValue := sp.CreateId()
	sp.AttributesMut(withoutValue).Add("other", data.Int(42))
	root := sp.CreateId()
	sp.AttributesMut(root).Add("valued", data.Obj(withValue))
	sp.AttributesMut(root).Add("valued", data.Obj(withoutValue))

	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.valued: $obj,
			not { $obj.value: 23 },
		} do {
			+ $ROOT.result: $obj,
		}
	`)
	requireResult(t, value, ok, data.Obj(withoutValue))
}

func TestNotInnerBindings(t *testing.T) {
	sp := space.New()
	withValue := sp.CreateId()
	sp.AttributesMut(withValue).Add("value", data.Int(23))
	root := sp.CreateId()
	sp.AttributesMut(root).Add("valued", data.Obj(withValue))
	sp.AttributesMut(root).Add("other", data.Int(23))
	sp.AttributesMut(root).Add("other", data.Int(33))

	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.other: $value,
			not {
				$ROOT.valued: { value: $value },
			},
		} do {
			+ $ROOT.result: $value,
		}
	`)
	requireResult(t, value, ok, data.Int(33))
}

func TestNotBlocksMatch(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()
	sp.AttributesMut(root).Add("search", data.Int(23))

	_, ok := testRun(t, sp, root, `
		rule test:ok {
			not { $ROOT.search: $ },
		} do {
			+ $ROOT.result: wrong,
		}
	`)
	assert.False(t, ok)
}

func TestNotFiresOnAbsence(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()

	value, ok := testRun(t, sp, root, `
		rule test:ok {
			not { $ROOT.x: $ },
		} do {
			+ $ROOT.result: ok,
		}
	`)
	requireResult(t, value, ok, data.Sym("ok"))
}

func TestMathOperations(t *testing.T) {
	cases := []struct {
		name     string
		calc     string
		expected int64
	}{
		{"add", "$value + 10", 33},
		{"subtract", "$value - 10", 13},
		{"multiply", "$value * 10", 230},
		{"divide", "46 / $value", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sp := space.New()
			root := sp.CreateId()
			sp.AttributesMut(root).Add("value", data.Int(23))

			value, ok := testRun(t, sp, root, `
				rule test:ok {
					$ROOT.value: $value,
					$out is `+tc.calc+`,
				} do {
					+ $ROOT.result: $out,
				}
			`)
			requireResult(t, value, ok, data.Int(tc.expected))
		})
	}
}

func TestMathPrecedence(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()

	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$out is 2*3+4*5,
		} do {
			+ $ROOT.result: $out,
		}
	`)
	requireResult(t, value, ok, data.Int(26))
}

func TestMathGrouping(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()

	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$out is 2*(3+4)*5,
		} do {
			+ $ROOT.result: $out,
		}
	`)
	requireResult(t, value, ok, data.Int(70))
}

func TestComparisons(t *testing.T) {
	cases := []struct {
		comparison string
		expected   int64
	}{
		{"$value == 10", 10},
		{"$value != 5", 10},
		{"$value < 15", 5},
		{"$value > 5", 10},
		{"$value <= 5", 5},
		{"$value <= 10", 5},
		{"$value >= 5", 5},
		{"$value >= 10", 10},
	}
	for _, tc := range cases {
		t.Run(tc.comparison, func(t *testing.T) {
			sp := space.New()
			root := sp.CreateId()
			sp.AttributesMut(root).Add("value", data.Int(5))
			sp.AttributesMut(root).Add("value", data.Int(10))
			sp.AttributesMut(root).Add("value", data.Int(15))

			value, ok := testRun(t, sp, root, `
				rule test:ok {
					$ROOT.value: $value,
					`+tc.comparison+`,
				} do {
					+ $ROOT.result: $value,
				}
			`)
			requireResult(t, value, ok, data.Int(tc.expected))
		})
	}
}

func TestMixedNumericComparison(t *testing.T) {
	sp := space.New()
	root := sp.CreateId()
	sp.AttributesMut(root).Add("value", data.Float(9.5))

	value, ok := testRun(t, sp, root, `
		rule test:ok {
			$ROOT.value: $value,
			$value < 10,
		} do {
			+ $ROOT.result: found,
		}
	`)
	requireResult(t, value, ok, data.Sym("found"))
}
