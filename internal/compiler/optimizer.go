package compiler

import (
	"fmt"
	"sort"
)

const beamWidth = 16

// eliminateObjectAssertions drops object assertions made redundant by clauses
// that already use the binding as an object in the same scope, and
// deduplicates the assertions that remain. Not bodies are scoped on their
// own.
func eliminateObjectAssertions(selectOps []CfgSelect) []CfgSelect {
	knownObjectBindings := make(map[Binding]bool)
	for _, op := range selectOps {
		switch node := op.(type) {
		case CfgAttributeBinding:
			knownObjectBindings[node.Binding] = true
		case CfgRequireAttribute:
			knownObjectBindings[node.Binding] = true
		case CfgRequireValueAttribute:
			knownObjectBindings[node.Binding] = true
		}
	}

	asserted := make(map[Binding]bool)
	kept := make([]CfgSelect, 0, len(selectOps))
	for _, op := range selectOps {
		switch node := op.(type) {
		case CfgAssertObject:
			if knownObjectBindings[node.Binding] || asserted[node.Binding] {
				continue
			}
			asserted[node.Binding] = true
			kept = append(kept, op)
		case CfgNot:
			kept = append(kept, CfgNot{Body: eliminateObjectAssertions(node.Body)})
		default:
			kept = append(kept, op)
		}
	}
	return kept
}

// sequence issues negation scope indices.
type sequence struct {
	index int
}

func (s *sequence) next() int {
	index := s.index
	s.index++
	return index
}

// Optimize schedules a cfg rule into an executable selection op list and an
// apply op list.
func Optimize(rule *CfgRule, inputBindingsLen int) ([]Op, []OpApply) {
	seq := &sequence{}
	provided := make([]Binding, inputBindingsLen)
	for i := range provided {
		provided[i] = Binding(i)
	}

	state, selectOps := optimizeSelect(seq, rule.Select, provided)
	applyOps := optimizeApply(seq, rule.Apply, state.provided)
	return selectOps, applyOps
}

func optimizeSelect(seq *sequence, cfgOps []CfgSelect, provided []Binding) (*opState, []Op) {
	cfgOps = eliminateObjectAssertions(cfgOps)

	state := assembleOps(cfgOps, newOpState(provided), seq)
	if state == nil {
		// The binding discipline rules out clause sets with no valid
		// linearization, so reaching this point is a compiler defect.
		panic(fmt.Sprintf("no executable schedule for %d select clauses", len(cfgOps)))
	}
	state.ops = append(state.ops, OpEnd{})
	return state, state.ops
}

func optimizeApply(seq *sequence, cfgOps []CfgApply, provided []Binding) []OpApply {
	ops := make([]OpApply, 0, len(cfgOps))
	for _, cfgOp := range cfgOps {
		switch node := cfgOp.(type) {
		case CfgCreateObject:
			ops = append(ops, ApplyCreateObject{Binding: node.Binding})
		case CfgCreateTuple:
			ops = append(ops, ApplyCreateTuple{Binding: node.Binding, Items: node.Items})
		case CfgAddBindingAttribute:
			ops = append(ops, ApplyAddBindingAttribute{
				Binding:      node.Binding,
				Attribute:    node.Attribute,
				ValueBinding: node.ValueBinding,
			})
		case CfgRemoveBindingAttribute:
			ops = append(ops, ApplyRemoveBindingAttribute{
				Binding:      node.Binding,
				Attribute:    node.Attribute,
				ValueBinding: node.ValueBinding,
				Mode:         node.Mode,
			})
		case CfgAddValueAttribute:
			ops = append(ops, ApplyAddValueAttribute{
				Binding:   node.Binding,
				Attribute: node.Attribute,
				Value:     node.Value,
			})
		case CfgRemoveValueAttribute:
			ops = append(ops, ApplyRemoveValueAttribute{
				Binding:   node.Binding,
				Attribute: node.Attribute,
				Value:     node.Value,
				Mode:      node.Mode,
			})
		case CfgConditional:
			_, condition := optimizeSelect(seq, node.Condition, provided)
			ops = append(ops, ApplyConditional{
				Condition: condition,
				Then:      optimizeApply(seq, node.Then, provided),
				Otherwise: optimizeApply(seq, node.Otherwise, provided),
			})
		}
	}
	return ops
}

type beamBranch struct {
	state *opState
	rest  []CfgSelect
}

// assembleOps consumes all cfg ops in some admissible order, keeping the 16
// cheapest partial schedules per step. Returns nil when no order works.
func assembleOps(selectOps []CfgSelect, prev *opState, seq *sequence) *opState {
	branches := []beamBranch{{state: prev, rest: selectOps}}

	for step := 0; step < len(selectOps); step++ {
		if len(branches) == 0 {
			return nil
		}
		var next []beamBranch
		for _, branch := range branches {
			for i, cfgOp := range branch.rest {
				nextState := transformOp(cfgOp, branch.state, seq)
				if nextState == nil {
					continue
				}
				rest := make([]CfgSelect, 0, len(branch.rest)-1)
				rest = append(rest, branch.rest[:i]...)
				rest = append(rest, branch.rest[i+1:]...)
				next = append(next, beamBranch{state: nextState, rest: rest})
			}
		}
		sort.SliceStable(next, func(a, b int) bool {
			return next[a].state.cost < next[b].state.cost
		})
		if len(next) > beamWidth {
			next = next[:beamWidth]
		}
		branches = next
	}

	if len(branches) == 0 {
		return nil
	}
	return branches[0].state
}

// transformOp produces the successor state for scheduling one cfg op, or nil
// when the op's data prerequisites are not yet provided.
func transformOp(cfgOp CfgSelect, prev *opState, seq *sequence) *opState {
	switch node := cfgOp.(type) {
	case CfgAssertObject:
		if !prev.bound(node.Binding) {
			return nil
		}
		return prev.advance(
			OpAssertObjectBinding{Binding: node.Binding},
			prev.cost-1.0,
		)
	case CfgCompareBinding:
		if !prev.bound(node.Binding) {
			return nil
		}
		return prev.advance(
			OpCompareBinding{Binding: node.Binding, Value: node.Value},
			prev.cost-1.2,
		)
	case CfgTupleBinding:
		if !prev.bound(node.Binding) {
			return nil
		}
		var newBindings []Binding
		items := make([]TupleItem, 0, len(node.Items))
		for _, item := range node.Items {
			switch item.Kind {
			case CfgTupleIgnore:
				items = append(items, TupleItem{Kind: TupleIgnore})
			case CfgTupleCompare:
				items = append(items, TupleItem{Kind: TupleCompareValue, Value: item.Value})
			case CfgTupleBindingItem:
				if prev.bound(item.Binding) || containsBinding(newBindings, item.Binding) {
					items = append(items, TupleItem{Kind: TupleCompareBinding, Binding: item.Binding})
				} else {
					newBindings = append(newBindings, item.Binding)
					items = append(items, TupleItem{Kind: TupleBind, Binding: item.Binding})
				}
			}
		}
		cost := prev.cost - 1.0
		if len(newBindings) == 0 {
			cost = prev.cost - 1.2
		}
		return prev.advance(
			OpUnpackTupleBinding{Binding: node.Binding, Items: items},
			cost,
			newBindings...,
		)
	case CfgEnumBinding:
		if !prev.bound(node.Binding) {
			return nil
		}
		for _, option := range node.Options {
			if option.IsBinding && !prev.bound(option.Binding) {
				return nil
			}
		}
		return prev.advance(
			OpMatchEnumBinding{Binding: node.Binding, Options: node.Options},
			prev.cost-1.2,
		)
	case CfgRequireValueAttribute:
		if !prev.bound(node.Binding) {
			return nil
		}
		return prev.advance(
			OpRequireAttributeValue{
				Binding:   node.Binding,
				Attribute: node.Attribute,
				Value:     node.Value,
			},
			prev.cost-1.3,
		)
	case CfgRequireAttribute:
		if !prev.bound(node.Binding) {
			return nil
		}
		return prev.advance(
			OpRequireAttribute{Binding: node.Binding, Attribute: node.Attribute},
			prev.cost-2.0,
		)
	case CfgAttributeBinding:
		if !prev.bound(node.Binding) {
			return nil
		}
		if prev.bound(node.ValueBinding) {
			return prev.advance(
				OpRequireAttributeBinding{
					Binding:      node.Binding,
					Attribute:    node.Attribute,
					ValueBinding: node.ValueBinding,
				},
				prev.cost-1.2,
			)
		}
		return prev.advance(
			OpSearchAttributeBinding{
				Binding:      node.Binding,
				Attribute:    node.Attribute,
				ValueBinding: node.ValueBinding,
			},
			prev.cost*1.4,
			node.ValueBinding,
		)
	case CfgCompare:
		if node.Left.IsBinding && !prev.bound(node.Left.Binding) {
			return nil
		}
		if node.Right.IsBinding && !prev.bound(node.Right.Binding) {
			return nil
		}
		return prev.advance(
			OpCompare{Comparison: Comparison{
				Operator: node.Operator,
				Left:     node.Left,
				Right:    node.Right,
			}},
			prev.cost-2.0,
		)
	case CfgCalculation:
		for _, binding := range CalculationBindings(node.Operation) {
			if !prev.bound(binding) {
				return nil
			}
		}
		return prev.advance(
			OpCalculation{Binding: node.Result, Operation: node.Operation},
			prev.cost,
			node.Result,
		)
	case CfgNot:
		bodyState := assembleOps(node.Body, prev, seq)
		if bodyState == nil {
			return nil
		}
		index := seq.next()
		bodyState.ops = append(bodyState.ops, OpEndNot{Index: index})
		sequenceLen := len(bodyState.ops) - len(prev.ops)
		ops := make([]Op, 0, len(bodyState.ops)+1)
		ops = append(ops, bodyState.ops[:len(prev.ops)]...)
		ops = append(ops, OpBeginNot{Index: index, SequenceLen: sequenceLen})
		ops = append(ops, bodyState.ops[len(prev.ops):]...)
		// Bindings introduced inside the negation stay local to it.
		return &opState{
			ops:      ops,
			cost:     bodyState.cost,
			provided: prev.provided,
		}
	}
	return nil
}

type opState struct {
	ops      []Op
	cost     float64
	provided []Binding
}

func newOpState(provided []Binding) *opState {
	return &opState{cost: 1000.0, provided: provided}
}

func (s *opState) advance(op Op, cost float64, newBindings ...Binding) *opState {
	ops := make([]Op, 0, len(s.ops)+1)
	ops = append(ops, s.ops...)
	ops = append(ops, op)

	provided := s.provided
	if len(newBindings) > 0 {
		provided = append([]Binding(nil), s.provided...)
		for _, binding := range newBindings {
			if !containsBinding(provided, binding) {
				provided = append(provided, binding)
			}
		}
	}
	return &opState{ops: ops, cost: cost, provided: provided}
}

func (s *opState) bound(binding Binding) bool {
	return containsBinding(s.provided, binding)
}

func containsBinding(bindings []Binding, binding Binding) bool {
	for _, existing := range bindings {
		if existing == binding {
			return true
		}
	}
	return false
}
