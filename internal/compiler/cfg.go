package compiler

import (
	"sort"

	"sigil/internal/ast"
	"sigil/internal/data"
)

// env tracks variable bindings while lowering one rule. Clones share the
// rule-wide bookkeeping (instance counts, access counts, names) but carry
// their own visibility map, so a `not` body sees the outer bindings without
// leaking its own into the outer scope.
type env struct {
	sequence       *bindingSequence
	visible        map[string]Binding
	instanceCounts map[string]int
	accessCounts   map[Binding]int
	bindingNames   map[Binding]string
}

func newEnv() *env {
	return &env{
		sequence:       &bindingSequence{},
		visible:        make(map[string]Binding),
		instanceCounts: make(map[string]int),
		accessCounts:   make(map[Binding]int),
		bindingNames:   make(map[Binding]string),
	}
}

func (e *env) clone() *env {
	visible := make(map[string]Binding, len(e.visible))
	for name, binding := range e.visible {
		visible[name] = binding
	}
	return &env{
		sequence:       e.sequence,
		visible:        visible,
		instanceCounts: e.instanceCounts,
		accessCounts:   e.accessCounts,
		bindingNames:   e.bindingNames,
	}
}

// bind introduces the name if unseen and counts an access either way.
func (e *env) bind(name string) Binding {
	if binding, ok := e.visible[name]; ok {
		e.accessCounts[binding]++
		return binding
	}
	binding := e.sequence.alloc()
	e.visible[name] = binding
	e.instanceCounts[name]++
	e.accessCounts[binding] = 1
	e.bindingNames[binding] = name
	return binding
}

func (e *env) bindNew(name string) (Binding, bool) {
	if _, ok := e.visible[name]; ok {
		return 0, false
	}
	return e.bind(name), true
}

func (e *env) find(name string) (Binding, bool) {
	if _, ok := e.visible[name]; ok {
		return e.bind(name), true
	}
	return 0, false
}

// anon allocates an unnamed scratch binding; it takes no part in the usage
// checks.
func (e *env) anon() Binding {
	return e.sequence.alloc()
}

func astToCfg(rule *ast.Rule, inputVariables []string) (*CfgRule, error) {
	e := newEnv()
	for _, variable := range inputVariables {
		e.bind(variable)
	}

	var selectOps []CfgSelect
	if err := compileSelects(e, rule.Select, &selectOps); err != nil {
		return nil, err
	}

	var applyOps []CfgApply
	for _, apply := range rule.Apply {
		if err := compileApply(e, apply, &applyOps); err != nil {
			return nil, err
		}
	}

	if err := verifyDistinctBindings(e); err != nil {
		return nil, err
	}
	if err := verifyMultiUsage(e, len(inputVariables)); err != nil {
		return nil, err
	}

	return &CfgRule{
		Name:        rule.Name,
		Select:      selectOps,
		Apply:       applyOps,
		BindingsLen: e.sequence.len(),
	}, nil
}

func verifyDistinctBindings(e *env) error {
	var repeated []string
	for name, count := range e.instanceCounts {
		if count > 1 {
			repeated = append(repeated, name)
		}
	}
	if len(repeated) > 0 {
		sort.Strings(repeated)
		return &CompileError{Kind: ErrRepeatBindings, Names: repeated}
	}
	return nil
}

func verifyMultiUsage(e *env, inputLen int) error {
	var singleUse []string
	for binding, count := range e.accessCounts {
		if count == 1 && binding.Index() >= inputLen {
			if name, ok := e.bindingNames[binding]; ok {
				singleUse = append(singleUse, name)
			}
		}
	}
	if len(singleUse) > 0 {
		sort.Strings(singleUse)
		return &CompileError{Kind: ErrSingleBindingUse, Names: singleUse}
	}
	return nil
}

// binding position helpers

func existingNamedBinding(e *env, variable ast.Variable, pos ast.Position) (Binding, error) {
	if variable.IsWildcard() {
		return 0, &CompileError{Kind: ErrIllegalWildcard, Line: pos.Line}
	}
	binding, ok := e.find(variable.Name)
	if !ok {
		return 0, &CompileError{Kind: ErrIllegalNewBinding, Line: pos.Line, Name: variable.Name}
	}
	return binding, nil
}

func newNamedBinding(e *env, variable ast.Variable, pos ast.Position) (Binding, error) {
	if variable.IsWildcard() {
		return 0, &CompileError{Kind: ErrIllegalWildcard, Line: pos.Line}
	}
	binding, ok := e.bindNew(variable.Name)
	if !ok {
		return 0, &CompileError{Kind: ErrIllegalReuse, Line: pos.Line, Name: variable.Name}
	}
	return binding, nil
}

func nameableNewBinding(e *env, variable ast.Variable, pos ast.Position) (Binding, error) {
	if variable.IsWildcard() {
		return e.anon(), nil
	}
	binding, ok := e.bindNew(variable.Name)
	if !ok {
		return 0, &CompileError{Kind: ErrIllegalReuse, Line: pos.Line, Name: variable.Name}
	}
	return binding, nil
}

func optionalBinding(e *env, variable ast.Variable) (Binding, bool) {
	if variable.IsWildcard() {
		return 0, false
	}
	return e.bind(variable.Name), true
}

func nameableBinding(e *env, variable ast.Variable) Binding {
	if variable.IsWildcard() {
		return e.anon()
	}
	return e.bind(variable.Name)
}

func noBinding(variable ast.Variable, pos ast.Position) error {
	if !variable.IsWildcard() {
		return &CompileError{Kind: ErrIllegalNamedBinding, Line: pos.Line, Name: variable.Name}
	}
	return nil
}

// selection lowering

func compileSelects(e *env, selects []ast.Select, ops *[]CfgSelect) error {
	for _, sel := range selects {
		if err := compileSelect(e, sel, ops); err != nil {
			return err
		}
	}
	return nil
}

func compileSelect(e *env, sel ast.Select, ops *[]CfgSelect) error {
	switch node := sel.(type) {
	case ast.SelectBinding:
		return compileToplevelBinding(e, node.Spec, ops)
	case ast.SelectBindingAttribute:
		binding, err := existingNamedBinding(e, node.Spec.Variable, node.Spec.Pos)
		if err != nil {
			return err
		}
		return compileSelectAttribute(e, binding, node.Spec.Attribute, ops)
	case ast.SelectNot:
		subEnv := e.clone()
		var body []CfgSelect
		if err := compileSelects(subEnv, node.Body, &body); err != nil {
			return err
		}
		*ops = append(*ops, CfgNot{Body: body})
		return nil
	case ast.SelectComparison:
		return compileComparison(e, node.Comparison, ops)
	case ast.SelectCalculation:
		result, err := newNamedBinding(e, node.Variable, node.Pos)
		if err != nil {
			return err
		}
		operation, err := compileCalculation(e, node.Expr, node.Pos)
		if err != nil {
			return err
		}
		*ops = append(*ops, CfgCalculation{Result: result, Operation: operation})
		return nil
	}
	return nil
}

func compileToplevelBinding(e *env, spec ast.BindingSpec, ops *[]CfgSelect) error {
	binding, err := existingNamedBinding(e, spec.Variable, spec.Pos)
	if err != nil {
		return err
	}
	switch spec.Value.Kind {
	case ast.SpecLiteral:
		*ops = append(*ops, CfgCompareBinding{Binding: binding, Value: spec.Value.Literal.Value()})
		return nil
	case ast.SpecEnum:
		if err := noBinding(spec.Value.Binder, spec.Pos); err != nil {
			return err
		}
		return compileSelectEnum(e, binding, spec.Value.Options, spec.Pos, ops)
	case ast.SpecTuple:
		if err := noBinding(spec.Value.Binder, spec.Pos); err != nil {
			return err
		}
		return compileSelectTuple(e, binding, spec.Value.Items, ops)
	case ast.SpecObject:
		if err := noBinding(spec.Value.Binder, spec.Pos); err != nil {
			return err
		}
		*ops = append(*ops, CfgAssertObject{Binding: binding})
		return compileSelectAttributes(e, binding, spec.Value.Attrs, ops)
	default:
		return &CompileError{Kind: ErrIllegalBindingMatch, Line: spec.Pos.Line, Name: spec.Variable.Name}
	}
}

func compileSelectAttributes(e *env, binding Binding, attrs []ast.AttributeSpec, ops *[]CfgSelect) error {
	for _, attr := range attrs {
		if err := compileSelectAttribute(e, binding, attr, ops); err != nil {
			return err
		}
	}
	return nil
}

func compileSelectAttribute(e *env, binding Binding, attr ast.AttributeSpec, ops *[]CfgSelect) error {
	name := attr.Attribute
	value := attr.Value
	switch value.Kind {
	case ast.SpecLiteral:
		*ops = append(*ops, CfgRequireValueAttribute{
			Binding:   binding,
			Attribute: name,
			Value:     value.Literal.Value(),
		})
		return nil
	case ast.SpecVariable:
		if valueBinding, ok := optionalBinding(e, value.Variable); ok {
			*ops = append(*ops, CfgAttributeBinding{
				Binding:      binding,
				Attribute:    name,
				ValueBinding: valueBinding,
			})
		} else {
			*ops = append(*ops, CfgRequireAttribute{Binding: binding, Attribute: name})
		}
		return nil
	case ast.SpecTuple:
		valueBinding := nameableBinding(e, value.Binder)
		*ops = append(*ops, CfgAttributeBinding{
			Binding:      binding,
			Attribute:    name,
			ValueBinding: valueBinding,
		})
		return compileSelectTuple(e, valueBinding, value.Items, ops)
	case ast.SpecEnum:
		valueBinding := nameableBinding(e, value.Binder)
		*ops = append(*ops, CfgAttributeBinding{
			Binding:      binding,
			Attribute:    name,
			ValueBinding: valueBinding,
		})
		return compileSelectEnum(e, valueBinding, value.Options, value.Pos, ops)
	case ast.SpecObject:
		valueBinding := nameableBinding(e, value.Binder)
		*ops = append(*ops, CfgAttributeBinding{
			Binding:      binding,
			Attribute:    name,
			ValueBinding: valueBinding,
		})
		*ops = append(*ops, CfgAssertObject{Binding: valueBinding})
		return compileSelectAttributes(e, valueBinding, value.Attrs, ops)
	}
	return nil
}

func compileSelectTuple(e *env, binding Binding, items []ast.ValueSpec, ops *[]CfgSelect) error {
	tupleItems := make([]CfgTupleItem, 0, len(items))
	for _, item := range items {
		switch item.Kind {
		case ast.SpecLiteral:
			tupleItems = append(tupleItems, CfgTupleItem{
				Kind:  CfgTupleCompare,
				Value: item.Literal.Value(),
			})
		case ast.SpecVariable:
			if itemBinding, ok := optionalBinding(e, item.Variable); ok {
				tupleItems = append(tupleItems, CfgTupleItem{
					Kind:    CfgTupleBindingItem,
					Binding: itemBinding,
				})
			} else {
				tupleItems = append(tupleItems, CfgTupleItem{Kind: CfgTupleIgnore})
			}
		case ast.SpecEnum:
			itemBinding := nameableBinding(e, item.Binder)
			if err := compileSelectEnum(e, itemBinding, item.Options, item.Pos, ops); err != nil {
				return err
			}
			tupleItems = append(tupleItems, CfgTupleItem{Kind: CfgTupleBindingItem, Binding: itemBinding})
		case ast.SpecTuple:
			itemBinding := nameableBinding(e, item.Binder)
			if err := compileSelectTuple(e, itemBinding, item.Items, ops); err != nil {
				return err
			}
			tupleItems = append(tupleItems, CfgTupleItem{Kind: CfgTupleBindingItem, Binding: itemBinding})
		case ast.SpecObject:
			itemBinding := nameableBinding(e, item.Binder)
			*ops = append(*ops, CfgAssertObject{Binding: itemBinding})
			if err := compileSelectAttributes(e, itemBinding, item.Attrs, ops); err != nil {
				return err
			}
			tupleItems = append(tupleItems, CfgTupleItem{Kind: CfgTupleBindingItem, Binding: itemBinding})
		}
	}
	*ops = append(*ops, CfgTupleBinding{Binding: binding, Items: tupleItems})
	return nil
}

func compileSelectEnum(e *env, binding Binding, options []ast.Enumerable, pos ast.Position, ops *[]CfgSelect) error {
	enumOptions := make([]Operand, 0, len(options))
	for _, option := range options {
		switch {
		case option.Literal != nil:
			enumOptions = append(enumOptions, ValueOperand(option.Literal.Value()))
		default:
			optionBinding, err := existingNamedBinding(e, *option.Variable, option.Pos)
			if err != nil {
				return err
			}
			enumOptions = append(enumOptions, BindingOperand(optionBinding))
		}
	}
	*ops = append(*ops, CfgEnumBinding{Binding: binding, Options: enumOptions})
	return nil
}

func compileComparison(e *env, comparison ast.Comparison, ops *[]CfgSelect) error {
	left, err := compileComparable(e, comparison.Left, comparison.Pos)
	if err != nil {
		return err
	}
	right, err := compileComparable(e, comparison.Right, comparison.Pos)
	if err != nil {
		return err
	}
	*ops = append(*ops, CfgCompare{Operator: comparison.Operator, Left: left, Right: right})
	return nil
}

func compileComparable(e *env, comparable ast.Comparable, pos ast.Position) (Operand, error) {
	if comparable.Variable == nil {
		return ValueOperand(comparable.Value), nil
	}
	binding, err := existingNamedBinding(e, *comparable.Variable, pos)
	if err != nil {
		return Operand{}, err
	}
	return BindingOperand(binding), nil
}

func compileCalculation(e *env, expr ast.CalcExpr, pos ast.Position) (Calculation, error) {
	switch node := expr.(type) {
	case ast.CalcValue:
		return CalcValue{Value: node.Value}, nil
	case ast.CalcVariable:
		binding, err := existingNamedBinding(e, node.Variable, pos)
		if err != nil {
			return nil, err
		}
		return CalcBinding{Binding: binding}, nil
	case ast.CalcBinOp:
		left, err := compileCalculation(e, node.Left, pos)
		if err != nil {
			return nil, err
		}
		right, err := compileCalculation(e, node.Right, pos)
		if err != nil {
			return nil, err
		}
		return CalcBinOp{Op: node.Op, Left: left, Right: right}, nil
	}
	return nil, &CompileError{Kind: ErrIllegalWildcard, Line: pos.Line}
}

// application lowering

func compileApply(e *env, apply ast.Apply, ops *[]CfgApply) error {
	switch node := apply.(type) {
	case ast.ApplyAdd:
		return compileApplyAdd(e, node.Spec, ops)
	case ast.ApplyRemove:
		return compileApplyRemove(e, node.Spec, node.Mode, ops)
	}
	return nil
}

func compileApplyAdd(e *env, spec ast.BindingAttributeSpec, ops *[]CfgApply) error {
	binding, err := existingNamedBinding(e, spec.Variable, spec.Pos)
	if err != nil {
		return err
	}
	return compileApplyAddAttribute(e, binding, spec.Attribute, ops)
}

func compileApplyAddAttribute(e *env, binding Binding, attr ast.AttributeSpec, ops *[]CfgApply) error {
	name := attr.Attribute
	value := attr.Value
	switch value.Kind {
	case ast.SpecLiteral:
		*ops = append(*ops, CfgAddValueAttribute{
			Binding:   binding,
			Attribute: name,
			Value:     value.Literal.Value(),
		})
		return nil
	case ast.SpecVariable:
		valueBinding, err := existingNamedBinding(e, value.Variable, value.Pos)
		if err != nil {
			return err
		}
		*ops = append(*ops, CfgAddBindingAttribute{
			Binding:      binding,
			Attribute:    name,
			ValueBinding: valueBinding,
		})
		return nil
	case ast.SpecTuple:
		valueBinding, err := nameableNewBinding(e, value.Binder, value.Pos)
		if err != nil {
			return err
		}
		if err := compileApplyTuple(e, valueBinding, value.Items, true, ops); err != nil {
			return err
		}
		*ops = append(*ops, CfgAddBindingAttribute{
			Binding:      binding,
			Attribute:    name,
			ValueBinding: valueBinding,
		})
		return nil
	case ast.SpecEnum:
		return &CompileError{Kind: ErrIllegalEnumSpecification, Line: value.Pos.Line}
	case ast.SpecObject:
		valueBinding, err := nameableNewBinding(e, value.Binder, value.Pos)
		if err != nil {
			return err
		}
		if err := compileApplyObject(e, valueBinding, value.Attrs, ops); err != nil {
			return err
		}
		*ops = append(*ops, CfgAddBindingAttribute{
			Binding:      binding,
			Attribute:    name,
			ValueBinding: valueBinding,
		})
		return nil
	}
	return nil
}

func compileApplyRemove(e *env, spec ast.BindingAttributeSpec, mode data.RemovalMode, ops *[]CfgApply) error {
	binding, err := existingNamedBinding(e, spec.Variable, spec.Pos)
	if err != nil {
		return err
	}
	name := spec.Attribute.Attribute
	value := spec.Attribute.Value
	switch value.Kind {
	case ast.SpecLiteral:
		*ops = append(*ops, CfgRemoveValueAttribute{
			Binding:   binding,
			Attribute: name,
			Value:     value.Literal.Value(),
			Mode:      mode,
		})
		return nil
	case ast.SpecVariable:
		valueBinding, err := existingNamedBinding(e, value.Variable, value.Pos)
		if err != nil {
			return err
		}
		*ops = append(*ops, CfgRemoveBindingAttribute{
			Binding:      binding,
			Attribute:    name,
			ValueBinding: valueBinding,
			Mode:         mode,
		})
		return nil
	case ast.SpecTuple:
		valueBinding, err := nameableNewBinding(e, value.Binder, value.Pos)
		if err != nil {
			return err
		}
		if err := compileApplyTuple(e, valueBinding, value.Items, false, ops); err != nil {
			return err
		}
		*ops = append(*ops, CfgRemoveBindingAttribute{
			Binding:      binding,
			Attribute:    name,
			ValueBinding: valueBinding,
			Mode:         mode,
		})
		return nil
	case ast.SpecEnum:
		return &CompileError{Kind: ErrIllegalEnumSpecification, Line: value.Pos.Line}
	default:
		return &CompileError{Kind: ErrIllegalObjectSpecification, Line: value.Pos.Line}
	}
}

func compileApplyObject(e *env, binding Binding, attrs []ast.AttributeSpec, ops *[]CfgApply) error {
	*ops = append(*ops, CfgCreateObject{Binding: binding})
	for _, attr := range attrs {
		if err := compileApplyAddAttribute(e, binding, attr, ops); err != nil {
			return err
		}
	}
	return nil
}

func compileApplyTuple(e *env, binding Binding, items []ast.ValueSpec, allowObjectConstruction bool, ops *[]CfgApply) error {
	tupleItems := make([]Operand, 0, len(items))
	for _, item := range items {
		switch item.Kind {
		case ast.SpecLiteral:
			tupleItems = append(tupleItems, ValueOperand(item.Literal.Value()))
		case ast.SpecVariable:
			itemBinding, err := existingNamedBinding(e, item.Variable, item.Pos)
			if err != nil {
				return err
			}
			tupleItems = append(tupleItems, BindingOperand(itemBinding))
		case ast.SpecTuple:
			itemBinding, err := nameableNewBinding(e, item.Binder, item.Pos)
			if err != nil {
				return err
			}
			if err := compileApplyTuple(e, itemBinding, item.Items, allowObjectConstruction, ops); err != nil {
				return err
			}
			tupleItems = append(tupleItems, BindingOperand(itemBinding))
		case ast.SpecObject:
			if !allowObjectConstruction {
				return &CompileError{Kind: ErrIllegalObjectSpecification, Line: item.Pos.Line}
			}
			itemBinding, err := nameableNewBinding(e, item.Binder, item.Pos)
			if err != nil {
				return err
			}
			if err := compileApplyObject(e, itemBinding, item.Attrs, ops); err != nil {
				return err
			}
			tupleItems = append(tupleItems, BindingOperand(itemBinding))
		case ast.SpecEnum:
			return &CompileError{Kind: ErrIllegalEnumSpecification, Line: item.Pos.Line}
		}
	}
	*ops = append(*ops, CfgCreateTuple{Binding: binding, Items: tupleItems})
	return nil
}
