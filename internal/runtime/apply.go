package runtime

import (
	"sigil/internal/compiler"
	"sigil/internal/data"
	"sigil/internal/space"
)

// ApplyChanges executes the apply ops against the given access in order.
// Returns false when the firing must fail: a write through a non-object
// binding, or a required removal that matched nothing.
func ApplyChanges(applyOps []compiler.OpApply, acc space.Access, bindings []data.Value) bool {
	for _, applyOp := range applyOps {
		switch op := applyOp.(type) {
		case compiler.ApplyCreateObject:
			bindings[op.Binding.Index()] = data.Obj(acc.CreateId())
		case compiler.ApplyCreateTuple:
			items := make([]data.Value, len(op.Items))
			for i, item := range op.Items {
				items[i] = item.Resolve(bindings)
			}
			bindings[op.Binding.Index()] = data.Tup(items...)
		case compiler.ApplyAddBindingAttribute:
			id, ok := bindings[op.Binding.Index()].AsObject()
			if !ok {
				return false
			}
			acc.AttributesMut(id).Add(op.Attribute, bindings[op.ValueBinding.Index()])
		case compiler.ApplyRemoveBindingAttribute:
			id, ok := bindings[op.Binding.Index()].AsObject()
			if !ok {
				return false
			}
			_, removed := acc.AttributesMut(id).RemoveFirst(op.Attribute, bindings[op.ValueBinding.Index()])
			if !removed && op.Mode == data.RemovalRequired {
				return false
			}
		case compiler.ApplyAddValueAttribute:
			id, ok := bindings[op.Binding.Index()].AsObject()
			if !ok {
				return false
			}
			acc.AttributesMut(id).Add(op.Attribute, op.Value)
		case compiler.ApplyRemoveValueAttribute:
			id, ok := bindings[op.Binding.Index()].AsObject()
			if !ok {
				return false
			}
			_, removed := acc.AttributesMut(id).RemoveFirst(op.Attribute, op.Value)
			if !removed && op.Mode == data.RemovalRequired {
				return false
			}
		case compiler.ApplyConditional:
			// The condition searches over a scratch copy so its bindings do
			// not leak into the branch application.
			scratch := append([]data.Value(nil), bindings...)
			var branch []compiler.OpApply
			if FindFirstBindings(op.Condition, acc, scratch) {
				branch = op.Then
			} else {
				branch = op.Otherwise
			}
			if !ApplyChanges(branch, acc, bindings) {
				return false
			}
		}
	}
	return true
}
