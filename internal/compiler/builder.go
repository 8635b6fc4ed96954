package compiler

import (
	"sigil/internal/data"
)

// Build constructs a compiled rule programmatically, without surface syntax.
// The callback receives a RuleBuilder whose select and apply sides append
// configuration ops; the result runs through the same optimizer as parsed
// rules. Unlike the parser path, the builder performs no binding-discipline
// checking: the caller wires bindings explicitly and is trusted to wire them
// sensibly.
func Build(name string, inputCount int, build func(rule *RuleBuilder)) *CompiledRule {
	seq := &bindingSequence{}
	rule := &RuleBuilder{
		seq:    seq,
		Select: &SelectBuilder{seq: seq},
		Apply:  &ApplyBuilder{seq: seq},
	}
	for i := 0; i < inputCount; i++ {
		rule.inputs = append(rule.inputs, seq.alloc())
	}
	build(rule)

	cfg := &CfgRule{
		Name:        name,
		Select:      rule.Select.ops,
		Apply:       rule.Apply.ops,
		BindingsLen: seq.len(),
	}
	return compileCfg(cfg, inputCount)
}

type RuleBuilder struct {
	seq    *bindingSequence
	inputs []Binding
	Select *SelectBuilder
	Apply  *ApplyBuilder
}

// Inputs returns the pre-allocated input bindings.
func (b *RuleBuilder) Inputs() []Binding {
	return b.inputs
}

// SelectBuilder accumulates selection clauses.
type SelectBuilder struct {
	seq *bindingSequence
	ops []CfgSelect
}

func (b *SelectBuilder) AssertObject(binding Binding) {
	b.ops = append(b.ops, CfgAssertObject{Binding: binding})
}

func (b *SelectBuilder) CompareValue(binding Binding, value data.Value) {
	b.ops = append(b.ops, CfgCompareBinding{Binding: binding, Value: value})
}

// Tuple adds a tuple unpacking clause over the binding.
func (b *SelectBuilder) Tuple(binding Binding, items func(tuple *TupleBuilder)) {
	tuple := &TupleBuilder{seq: b.seq}
	items(tuple)
	b.ops = append(b.ops, CfgTupleBinding{Binding: binding, Items: tuple.items})
}

// Enum adds an enum match clause over the binding.
func (b *SelectBuilder) Enum(binding Binding, options func(enum *EnumBuilder)) {
	enum := &EnumBuilder{}
	options(enum)
	b.ops = append(b.ops, CfgEnumBinding{Binding: binding, Options: enum.options})
}

func (b *SelectBuilder) RequireAttributeValue(binding Binding, attribute data.Symbol, value data.Value) {
	b.ops = append(b.ops, CfgRequireValueAttribute{
		Binding:   binding,
		Attribute: attribute,
		Value:     value,
	})
}

// AttributeBinding relates the object's attribute to a fresh binding and
// returns it.
func (b *SelectBuilder) AttributeBinding(binding Binding, attribute data.Symbol) Binding {
	valueBinding := b.seq.alloc()
	b.RequireAttributeBinding(binding, attribute, valueBinding)
	return valueBinding
}

func (b *SelectBuilder) RequireAttributeBinding(binding Binding, attribute data.Symbol, valueBinding Binding) {
	b.ops = append(b.ops, CfgAttributeBinding{
		Binding:      binding,
		Attribute:    attribute,
		ValueBinding: valueBinding,
	})
}

func (b *SelectBuilder) RequireAttribute(binding Binding, attribute data.Symbol) {
	b.ops = append(b.ops, CfgRequireAttribute{Binding: binding, Attribute: attribute})
}

// Not adds a negation clause over the body built by the callback.
func (b *SelectBuilder) Not(body func(not *SelectBuilder)) {
	sub := &SelectBuilder{seq: b.seq}
	body(sub)
	b.ops = append(b.ops, CfgNot{Body: sub.ops})
}

func (b *SelectBuilder) Compare(operator data.CompareOp, left, right Operand) {
	b.ops = append(b.ops, CfgCompare{Operator: operator, Left: left, Right: right})
}

// Calculate adds a calculation clause and returns its result binding.
func (b *SelectBuilder) Calculate(operation Calculation) Binding {
	result := b.seq.alloc()
	b.ops = append(b.ops, CfgCalculation{Result: result, Operation: operation})
	return result
}

// TupleBuilder accumulates the items of one tuple unpacking clause.
type TupleBuilder struct {
	seq   *bindingSequence
	items []CfgTupleItem
}

func (b *TupleBuilder) Ignore() {
	b.items = append(b.items, CfgTupleItem{Kind: CfgTupleIgnore})
}

func (b *TupleBuilder) Value(value data.Value) {
	b.items = append(b.items, CfgTupleItem{Kind: CfgTupleCompare, Value: value})
}

// Bind adds a fresh binding item and returns the binding.
func (b *TupleBuilder) Bind() Binding {
	binding := b.seq.alloc()
	b.items = append(b.items, CfgTupleItem{Kind: CfgTupleBindingItem, Binding: binding})
	return binding
}

// Binding adds an item over an existing binding.
func (b *TupleBuilder) Binding(binding Binding) {
	b.items = append(b.items, CfgTupleItem{Kind: CfgTupleBindingItem, Binding: binding})
}

// EnumBuilder accumulates the options of one enum match clause.
type EnumBuilder struct {
	options []Operand
}

func (b *EnumBuilder) Value(value data.Value) {
	b.options = append(b.options, ValueOperand(value))
}

func (b *EnumBuilder) Binding(binding Binding) {
	b.options = append(b.options, BindingOperand(binding))
}

// ApplyBuilder accumulates application clauses.
type ApplyBuilder struct {
	seq *bindingSequence
	ops []CfgApply
}

// CreateObject allocates a fresh object at apply time and returns the
// binding that will hold it.
func (b *ApplyBuilder) CreateObject() Binding {
	binding := b.seq.alloc()
	b.ops = append(b.ops, CfgCreateObject{Binding: binding})
	return binding
}

// CreateTuple builds a tuple at apply time and returns the binding that will
// hold it.
func (b *ApplyBuilder) CreateTuple(items func(tuple *ApplyTupleBuilder)) Binding {
	binding := b.seq.alloc()
	tuple := &ApplyTupleBuilder{}
	items(tuple)
	b.ops = append(b.ops, CfgCreateTuple{Binding: binding, Items: tuple.items})
	return binding
}

func (b *ApplyBuilder) AddBindingAttribute(binding Binding, attribute data.Symbol, valueBinding Binding) {
	b.ops = append(b.ops, CfgAddBindingAttribute{
		Binding:      binding,
		Attribute:    attribute,
		ValueBinding: valueBinding,
	})
}

func (b *ApplyBuilder) RemoveBindingAttribute(binding Binding, attribute data.Symbol, valueBinding Binding, mode data.RemovalMode) {
	b.ops = append(b.ops, CfgRemoveBindingAttribute{
		Binding:      binding,
		Attribute:    attribute,
		ValueBinding: valueBinding,
		Mode:         mode,
	})
}

func (b *ApplyBuilder) AddValueAttribute(binding Binding, attribute data.Symbol, value data.Value) {
	b.ops = append(b.ops, CfgAddValueAttribute{
		Binding:   binding,
		Attribute: attribute,
		Value:     value,
	})
}

func (b *ApplyBuilder) RemoveValueAttribute(binding Binding, attribute data.Symbol, value data.Value, mode data.RemovalMode) {
	b.ops = append(b.ops, CfgRemoveValueAttribute{
		Binding:   binding,
		Attribute: attribute,
		Value:     value,
		Mode:      mode,
	})
}

// Conditional applies the then side when the condition clauses find a
// satisfying assignment and the otherwise side when they do not.
func (b *ApplyBuilder) Conditional(condition func(cond *SelectBuilder), then func(apply *ApplyBuilder), otherwise func(apply *ApplyBuilder)) {
	condBuilder := &SelectBuilder{seq: b.seq}
	condition(condBuilder)
	thenBuilder := &ApplyBuilder{seq: b.seq}
	if then != nil {
		then(thenBuilder)
	}
	otherwiseBuilder := &ApplyBuilder{seq: b.seq}
	if otherwise != nil {
		otherwise(otherwiseBuilder)
	}
	b.ops = append(b.ops, CfgConditional{
		Condition: condBuilder.ops,
		Then:      thenBuilder.ops,
		Otherwise: otherwiseBuilder.ops,
	})
}

// ApplyTupleBuilder accumulates the items of one tuple construction.
type ApplyTupleBuilder struct {
	items []Operand
}

func (b *ApplyTupleBuilder) Value(value data.Value) {
	b.items = append(b.items, ValueOperand(value))
}

func (b *ApplyTupleBuilder) Binding(binding Binding) {
	b.items = append(b.items, BindingOperand(binding))
}

// Calculation expression helpers for the builder.

func CalcV(value data.Value) Calculation {
	return CalcValue{Value: value}
}

func CalcB(binding Binding) Calculation {
	return CalcBinding{Binding: binding}
}

func CalcAdd(left, right Calculation) Calculation {
	return CalcBinOp{Op: data.OpAdd, Left: left, Right: right}
}

func CalcSub(left, right Calculation) Calculation {
	return CalcBinOp{Op: data.OpSub, Left: left, Right: right}
}

func CalcMul(left, right Calculation) Calculation {
	return CalcBinOp{Op: data.OpMul, Left: left, Right: right}
}

func CalcDiv(left, right Calculation) Calculation {
	return CalcBinOp{Op: data.OpDiv, Left: left, Right: right}
}
