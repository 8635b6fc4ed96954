package compiler

import (
	"sigil/internal/data"
)

// CfgSelect is a selection clause in scheduling-agnostic form. The optimizer
// decides execution order; a CfgSelect only states what must hold.
type CfgSelect interface {
	isCfgSelect()
}

// CfgAssertObject requires the binding to hold an object.
type CfgAssertObject struct {
	Binding Binding
}

// CfgCompareBinding requires the binding to equal a literal value.
type CfgCompareBinding struct {
	Binding Binding
	Value   data.Value
}

// CfgTupleBinding requires the binding to be a tuple matching the items
// positionally.
type CfgTupleBinding struct {
	Binding Binding
	Items   []CfgTupleItem
}

// CfgEnumBinding requires the binding to equal at least one option.
type CfgEnumBinding struct {
	Binding Binding
	Options []Operand
}

// CfgRequireValueAttribute requires the object to carry the attribute with
// the given value.
type CfgRequireValueAttribute struct {
	Binding   Binding
	Attribute data.Symbol
	Value     data.Value
}

// CfgAttributeBinding relates an object's attribute value to a binding: it
// searches when the binding is still free and compares when it is bound.
type CfgAttributeBinding struct {
	Binding      Binding
	Attribute    data.Symbol
	ValueBinding Binding
}

// CfgRequireAttribute requires at least one value under the attribute.
type CfgRequireAttribute struct {
	Binding   Binding
	Attribute data.Symbol
}

// CfgNot requires that no assignment satisfies the body.
type CfgNot struct {
	Body []CfgSelect
}

// CfgCompare is a numeric comparison between two operands.
type CfgCompare struct {
	Operator data.CompareOp
	Left     Operand
	Right    Operand
}

// CfgCalculation computes an expression into the result binding.
type CfgCalculation struct {
	Result    Binding
	Operation Calculation
}

func (CfgAssertObject) isCfgSelect() {}
func (CfgCompareBinding) isCfgSelect() {}
func (CfgTupleBinding) isCfgSelect() {}
func (CfgEnumBinding) isCfgSelect() {}
func (CfgRequireValueAttribute) isCfgSelect() {}
func (CfgAttributeBinding) isCfgSelect() {}
func (CfgRequireAttribute) isCfgSelect() {}
func (CfgNot) isCfgSelect() {}
func (CfgCompare) isCfgSelect() {}
func (CfgCalculation) isCfgSelect() {}

// CfgTupleItemKind tags a tuple item in cfg form. Whether a Binding item
// introduces or compares its binding is the optimizer's decision.
type CfgTupleItemKind uint8

const (
	CfgTupleIgnore CfgTupleItemKind = iota
	CfgTupleBindingItem
	CfgTupleCompare
)

type CfgTupleItem struct {
	Kind    CfgTupleItemKind
	Binding Binding
	Value   data.Value
}

// CfgApply is an application clause in configuration form.
type CfgApply interface {
	isCfgApply()
}

// CfgCreateObject allocates a fresh object id into the binding.
type CfgCreateObject struct {
	Binding Binding
}

// CfgCreateTuple builds a tuple from the items into the binding.
type CfgCreateTuple struct {
	Binding Binding
	Items   []Operand
}

type CfgAddBindingAttribute struct {
	Binding      Binding
	Attribute    data.Symbol
	ValueBinding Binding
}

type CfgRemoveBindingAttribute struct {
	Binding      Binding
	Attribute    data.Symbol
	ValueBinding Binding
	Mode         data.RemovalMode
}

type CfgAddValueAttribute struct {
	Binding   Binding
	Attribute data.Symbol
	Value     data.Value
}

type CfgRemoveValueAttribute struct {
	Binding   Binding
	Attribute data.Symbol
	Value     data.Value
	Mode      data.RemovalMode
}

// CfgConditional applies Then when the condition has a satisfying assignment
// and Otherwise when it has none. It has no surface syntax; the rule builder
// produces it.
type CfgConditional struct {
	Condition []CfgSelect
	Then      []CfgApply
	Otherwise []CfgApply
}

func (CfgCreateObject) isCfgApply() {}
func (CfgCreateTuple) isCfgApply() {}
func (CfgAddBindingAttribute) isCfgApply() {}
func (CfgRemoveBindingAttribute) isCfgApply() {}
func (CfgAddValueAttribute) isCfgApply() {}
func (CfgRemoveValueAttribute) isCfgApply() {}
func (CfgConditional) isCfgApply() {}
