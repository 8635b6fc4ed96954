// Package compiler lowers parsed rules into executable op lists. Lowering
// happens in two stages: the cfg stage translates AST clauses into
// scheduling-agnostic configuration ops while enforcing the binding
// discipline, and the optimizer schedules those ops into a linear, executable
// order.
package compiler

import (
	"math"

	"sigil/internal/ast"
	"sigil/internal/data"
)

// Binding indexes a slot in a firing's value array. Indices 0..k-1 are the
// firing's k input arguments; the compiler allocates the rest.
type Binding uint16

func (b Binding) Index() int { return int(b) }

// bindingSequence allocates binding indices for one rule.
type bindingSequence struct {
	next uint32
}

func (s *bindingSequence) alloc() Binding {
	if s.next > math.MaxUint16 {
		panic("exceeded maximum binding count")
	}
	binding := Binding(s.next)
	s.next++
	return binding
}

func (s *bindingSequence) len() int {
	return int(s.next)
}

// Operand is either a binding reference or a literal value. It serves as a
// comparison side, an enum option, and an apply tuple item.
type Operand struct {
	IsBinding bool
	Binding   Binding
	Value     data.Value
}

func BindingOperand(binding Binding) Operand {
	return Operand{IsBinding: true, Binding: binding}
}

func ValueOperand(value data.Value) Operand {
	return Operand{Value: value}
}

// Resolve returns the operand's value under the given bindings.
func (o Operand) Resolve(bindings []data.Value) data.Value {
	if o.IsBinding {
		return bindings[o.Binding.Index()]
	}
	return o.Value
}

// Calculation is an arithmetic expression tree over binding slots and
// literal values.
type Calculation interface {
	isCalculation()
	forEachBinding(fn func(Binding))
}

type CalcValue struct {
	Value data.Value
}

type CalcBinding struct {
	Binding Binding
}

type CalcBinOp struct {
	Op    data.ArithBinOp
	Left  Calculation
	Right Calculation
}

func (CalcValue) isCalculation() {}
func (CalcBinding) isCalculation() {}
func (CalcBinOp) isCalculation() {}

func (CalcValue) forEachBinding(func(Binding)) {}

func (c CalcBinding) forEachBinding(fn func(Binding)) {
	fn(c.Binding)
}

func (c CalcBinOp) forEachBinding(fn func(Binding)) {
	c.Left.forEachBinding(fn)
	c.Right.forEachBinding(fn)
}

// CalculationBindings collects the binding slots the expression reads.
func CalculationBindings(calc Calculation) []Binding {
	var bindings []Binding
	calc.forEachBinding(func(binding Binding) {
		bindings = append(bindings, binding)
	})
	return bindings
}

// Comparison is a scheduled comparison clause.
type Comparison struct {
	Operator data.CompareOp
	Left     Operand
	Right    Operand
}

// CfgRule is the scheduling-agnostic form of one compiled rule.
type CfgRule struct {
	Name        string
	Select      []CfgSelect
	Apply       []CfgApply
	BindingsLen int
}

// CompiledRule is the executable form: a scheduled selection op list and an
// apply op list over a flat binding array.
type CompiledRule struct {
	name        string
	bindingsLen int
	ops         []Op
	applyOps    []OpApply
}

func (r *CompiledRule) Name() string        { return r.name }
func (r *CompiledRule) BindingsLen() int    { return r.bindingsLen }
func (r *CompiledRule) Ops() []Op           { return r.ops }
func (r *CompiledRule) ApplyOps() []OpApply { return r.applyOps }

// Compile lowers one AST rule against the system's input variables.
func Compile(rule *ast.Rule, inputVariables []string) (*CompiledRule, error) {
	cfg, err := astToCfg(rule, inputVariables)
	if err != nil {
		return nil, err
	}
	return compileCfg(cfg, len(inputVariables)), nil
}

func compileCfg(cfg *CfgRule, inputVariablesLen int) *CompiledRule {
	ops, applyOps := Optimize(cfg, inputVariablesLen)
	return &CompiledRule{
		name:        cfg.Name,
		bindingsLen: cfg.BindingsLen,
		ops:         ops,
		applyOps:    applyOps,
	}
}
