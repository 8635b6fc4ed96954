// Package runtime interprets compiled rule programs against an object space:
// it searches for variable assignments satisfying a selection op list,
// backtracking over attribute iteration and negation scopes, and executes the
// apply op list inside a transaction.
package runtime

import (
	"sigil/internal/compiler"
	"sigil/internal/data"
	"sigil/internal/space"
)

// Control tells a streaming search whether to keep producing assignments.
type Control uint8

const (
	Continue Control = iota
	Stop
)

// AttemptRuleFiring runs one firing attempt: a nested transaction in which
// the first satisfying assignment has the apply ops executed. The
// transaction commits only when both search and application succeed.
func AttemptRuleFiring(rule *compiler.CompiledRule, acc space.Access, bindings []data.Value) bool {
	return acc.Transaction(func(tx *space.Transaction) bool {
		if !FindFirstBindings(rule.Ops(), tx, bindings) {
			return false
		}
		return ApplyChanges(rule.ApplyOps(), tx, bindings)
	})
}

// SplinterRule produces one successor transaction per satisfying assignment
// whose application succeeds, handing each to collect until it returns Stop.
// The handed transactions are clones layered over the same parent as tx;
// none of them is committed here. Returns the number of produced
// transactions.
func SplinterRule(rule *compiler.CompiledRule, tx *space.Transaction, bindings []data.Value, collect func(*space.Transaction) Control) int {
	count := 0
	searchBindings(rule.Ops(), tx, bindings, func(assigned []data.Value) Control {
		splinter := tx.Clone()
		if !ApplyChanges(rule.ApplyOps(), splinter, assigned) {
			return Continue
		}
		count++
		return collect(splinter)
	})
	return count
}

// FindFirstBindings searches for the first satisfying assignment, leaving it
// in the bindings array.
func FindFirstBindings(ops []compiler.Op, acc space.Access, bindings []data.Value) bool {
	return searchBindings(ops, acc, bindings, func([]data.Value) Control {
		return Stop
	})
}

type frameKind uint8

const (
	frameIter frameKind = iota
	frameNotScope
)

// frame is a search stack entry: either an attribute value iterator or a
// negation scope boundary.
type frame struct {
	kind       frameKind
	iter       *space.ValuesIter
	binding    int
	continuePC int
	index      int
	continueOK int
}

type flow uint8

const (
	nextOp flow = iota
	nextBranch
)

func searchBindings(ops []compiler.Op, acc space.Access, bindings []data.Value, control func([]data.Value) Control) bool {
	pc := 0
	var frames []frame

	for {
		step := nextBranch
		switch op := ops[pc].(type) {
		case compiler.OpAssertObjectBinding:
			if bindings[op.Binding.Index()].IsObject() {
				step = nextOp
			}
		case compiler.OpRequireAttributeBinding:
			if id, ok := bindings[op.Binding.Index()].AsObject(); ok {
				if acc.Attributes(id).Has(op.Attribute, bindings[op.ValueBinding.Index()]) {
					step = nextOp
				}
			}
		case compiler.OpRequireAttributeValue:
			if id, ok := bindings[op.Binding.Index()].AsObject(); ok {
				if acc.Attributes(id).Has(op.Attribute, op.Value) {
					step = nextOp
				}
			}
		case compiler.OpRequireAttribute:
			if id, ok := bindings[op.Binding.Index()].AsObject(); ok {
				if acc.Attributes(id).HasNamed(op.Attribute) {
					step = nextOp
				}
			}
		case compiler.OpCompareBinding:
			if bindings[op.Binding.Index()].Equal(op.Value) {
				step = nextOp
			}
		case compiler.OpSearchAttributeBinding:
			if id, ok := bindings[op.Binding.Index()].AsObject(); ok {
				// The frame's first candidate is pulled by the NextBranch
				// transition below, like every later one.
				frames = append(frames, frame{
					kind:       frameIter,
					iter:       acc.Attributes(id).IterNamed(op.Attribute),
					binding:    op.ValueBinding.Index(),
					continuePC: pc + 1,
				})
			}
		case compiler.OpUnpackTupleBinding:
			if tuple, ok := bindings[op.Binding.Index()].AsTuple(); ok {
				if len(tuple) == len(op.Items) {
					if unpackTuple(tuple, op.Items, bindings) {
						step = nextOp
					}
				}
			}
		case compiler.OpMatchEnumBinding:
			value := bindings[op.Binding.Index()]
			for _, option := range op.Options {
				if value.Equal(option.Resolve(bindings)) {
					step = nextOp
					break
				}
			}
		case compiler.OpCompare:
			if evalComparison(op.Comparison, bindings) {
				step = nextOp
			}
		case compiler.OpCalculation:
			if value, ok := performCalculation(bindings, op.Operation); ok {
				bindings[op.Binding.Index()] = value
				step = nextOp
			}
		case compiler.OpBeginNot:
			frames = append(frames, frame{
				kind:       frameNotScope,
				index:      op.Index,
				continueOK: pc + op.SequenceLen + 1,
			})
			step = nextOp
		case compiler.OpEndNot:
			// The body found an assignment, so the negation fails: drop
			// the scope and every frame above it, then backtrack into the
			// frames outside the negation.
			truncateAtNotScope(&frames, op.Index)
		case compiler.OpEnd:
			if control(bindings) == Stop {
				return true
			}
		}

		if step == nextOp {
			pc++
			continue
		}

		// NextBranch: unwind the frame stack for the next candidate.
		resumed := false
		for len(frames) > 0 {
			top := &frames[len(frames)-1]
			if top.kind == frameNotScope {
				pc = top.continueOK
				frames = frames[:len(frames)-1]
				resumed = true
				break
			}
			if value, ok := top.iter.Next(); ok {
				bindings[top.binding] = value
				pc = top.continuePC
				resumed = true
				break
			}
			frames = frames[:len(frames)-1]
		}
		if !resumed {
			return false
		}
	}
}

func truncateAtNotScope(frames *[]frame, index int) {
	for i, fr := range *frames {
		if fr.kind == frameNotScope && fr.index == index {
			*frames = (*frames)[:i]
			return
		}
	}
	panic("no matching negation scope frame")
}

func unpackTuple(tuple data.Tuple, items []compiler.TupleItem, bindings []data.Value) bool {
	for i, item := range items {
		switch item.Kind {
		case compiler.TupleIgnore:
		case compiler.TupleBind:
			// Freshly bound items are scratch until the op succeeds; a later
			// mismatch backtracks before anything reads them.
			bindings[item.Binding.Index()] = tuple[i]
		case compiler.TupleCompareBinding:
			if !bindings[item.Binding.Index()].Equal(tuple[i]) {
				return false
			}
		case compiler.TupleCompareValue:
			if !item.Value.Equal(tuple[i]) {
				return false
			}
		}
	}
	return true
}

func evalComparison(comparison compiler.Comparison, bindings []data.Value) bool {
	left := comparison.Left.Resolve(bindings)
	right := comparison.Right.Resolve(bindings)
	return comparison.Operator.Holds(left.Compare(right))
}

// performCalculation evaluates the expression tree. Int arithmetic is
// checked: overflow, division by zero, and non-numeric operands fail the op
// instead of erroring the firing.
func performCalculation(bindings []data.Value, calc compiler.Calculation) (data.Value, bool) {
	switch node := calc.(type) {
	case compiler.CalcValue:
		return node.Value, true
	case compiler.CalcBinding:
		return bindings[node.Binding.Index()], true
	case compiler.CalcBinOp:
		left, ok := performCalculation(bindings, node.Left)
		if !ok {
			return data.Value{}, false
		}
		right, ok := performCalculation(bindings, node.Right)
		if !ok {
			return data.Value{}, false
		}
		return applyBinOp(node.Op, left, right)
	}
	return data.Value{}, false
}

func applyBinOp(op data.ArithBinOp, left, right data.Value) (data.Value, bool) {
	if li, lok := left.AsInt(); lok {
		if ri, rok := right.AsInt(); rok {
			return applyIntBinOp(op, li, ri)
		}
	}
	lf, lok := asNumericFloat(left)
	rf, rok := asNumericFloat(right)
	if !lok || !rok {
		return data.Value{}, false
	}
	switch op {
	case data.OpAdd:
		return data.Float(lf + rf), true
	case data.OpSub:
		return data.Float(lf - rf), true
	case data.OpMul:
		return data.Float(lf * rf), true
	case data.OpDiv:
		if rf == 0.0 {
			return data.Value{}, false
		}
		return data.Float(lf / rf), true
	}
	return data.Value{}, false
}

func applyIntBinOp(op data.ArithBinOp, left, right int64) (data.Value, bool) {
	switch op {
	case data.OpAdd:
		result := left + right
		if (result > left) != (right > 0) {
			return data.Value{}, false
		}
		return data.Int(result), true
	case data.OpSub:
		result := left - right
		if (result < left) != (right > 0) {
			return data.Value{}, false
		}
		return data.Int(result), true
	case data.OpMul:
		result := left * right
		if left != 0 && (result/left != right || (left == -1 && right == minInt64)) {
			return data.Value{}, false
		}
		return data.Int(result), true
	case data.OpDiv:
		if right == 0 || (left == minInt64 && right == -1) {
			return data.Value{}, false
		}
		return data.Int(left / right), true
	}
	return data.Value{}, false
}

const minInt64 = -1 << 63

func asNumericFloat(value data.Value) (float64, bool) {
	if f, ok := value.AsFloat(); ok {
		return f, true
	}
	if i, ok := value.AsInt(); ok {
		return float64(i), true
	}
	return 0, false
}
