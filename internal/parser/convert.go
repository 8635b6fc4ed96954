package parser

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"

	"sigil/grammar"
	"sigil/internal/ast"
	"sigil/internal/data"
)

func position(pos lexer.Position) ast.Position {
	return ast.Position{File: pos.Filename, Line: pos.Line, Column: pos.Column}
}

func convertDocument(document *grammar.Document) ([]*ast.Rule, error) {
	rules := make([]*ast.Rule, 0, len(document.Rules))
	for _, rule := range document.Rules {
		converted, err := convertRule(rule)
		if err != nil {
			return nil, err
		}
		rules = append(rules, converted)
	}
	return rules, nil
}

func convertRule(rule *grammar.Rule) (*ast.Rule, error) {
	selects, err := convertSelects(rule.Select)
	if err != nil {
		return nil, err
	}
	applies := make([]ast.Apply, 0, len(rule.Apply))
	for _, apply := range rule.Apply {
		converted, err := convertApply(apply)
		if err != nil {
			return nil, err
		}
		applies = append(applies, converted)
	}
	return &ast.Rule{
		Pos:        position(rule.Pos),
		SystemName: rule.System,
		Name:       rule.Name,
		Select:     selects,
		Apply:      applies,
	}, nil
}

func convertSelects(selects []*grammar.Select) ([]ast.Select, error) {
	converted := make([]ast.Select, 0, len(selects))
	for _, sel := range selects {
		node, err := convertSelect(sel)
		if err != nil {
			return nil, err
		}
		converted = append(converted, node)
	}
	return converted, nil
}

func convertSelect(sel *grammar.Select) (ast.Select, error) {
	switch {
	case sel.Not != nil:
		body, err := convertSelects(sel.Not.Body)
		if err != nil {
			return nil, err
		}
		return ast.SelectNot{Pos: position(sel.Not.Pos), Body: body}, nil
	case sel.Calculation != nil:
		expr, err := convertExpr(sel.Calculation.Expr)
		if err != nil {
			return nil, err
		}
		return ast.SelectCalculation{
			Pos:      position(sel.Calculation.Pos),
			Variable: convertVariable(sel.Calculation.Target),
			Expr:     expr,
		}, nil
	case sel.Comparison != nil:
		comparison, err := convertComparison(sel.Comparison)
		if err != nil {
			return nil, err
		}
		return ast.SelectComparison{Comparison: comparison}, nil
	case sel.BindingAttr != nil:
		spec, err := convertBindingAttribute(sel.BindingAttr)
		if err != nil {
			return nil, err
		}
		return ast.SelectBindingAttribute{Spec: spec}, nil
	case sel.Binding != nil:
		value, err := convertValueSpec(sel.Binding.Value)
		if err != nil {
			return nil, err
		}
		return ast.SelectBinding{Spec: ast.BindingSpec{
			Pos:      position(sel.Binding.Pos),
			Variable: convertVariable(sel.Binding.Variable),
			Value:    value,
		}}, nil
	}
	return nil, fmt.Errorf("empty select clause")
}

func convertApply(apply *grammar.Apply) (ast.Apply, error) {
	spec, err := convertBindingAttribute(apply.Spec)
	if err != nil {
		return nil, err
	}
	switch apply.Op {
	case "+":
		return ast.ApplyAdd{Spec: spec}, nil
	case "-":
		return ast.ApplyRemove{Spec: spec, Mode: data.RemovalRequired}, nil
	default:
		return ast.ApplyRemove{Spec: spec, Mode: data.RemovalOptional}, nil
	}
}

func convertBindingAttribute(spec *grammar.BindingAttribute) (ast.BindingAttributeSpec, error) {
	value, err := convertValueSpec(spec.Value)
	if err != nil {
		return ast.BindingAttributeSpec{}, err
	}
	return ast.BindingAttributeSpec{
		Pos:      position(spec.Pos),
		Variable: convertVariable(spec.Variable),
		Attribute: ast.AttributeSpec{
			Pos:       position(spec.Pos),
			Attribute: spec.Attribute,
			Value:     value,
		},
	}, nil
}

func convertVariable(variable *grammar.Variable) ast.Variable {
	return ast.Variable{Name: variable.Ident(), Pos: position(variable.Pos)}
}

func convertComparison(comparison *grammar.Comparison) (ast.Comparison, error) {
	left, err := convertComparable(comparison.Left)
	if err != nil {
		return ast.Comparison{}, err
	}
	right, err := convertComparable(comparison.Right)
	if err != nil {
		return ast.Comparison{}, err
	}
	var op data.CompareOp
	switch comparison.Op {
	case "==":
		op = data.CmpEqual
	case "!=":
		op = data.CmpNotEqual
	case "<":
		op = data.CmpLess
	case "<=":
		op = data.CmpLessOrEqual
	case ">":
		op = data.CmpGreater
	default:
		op = data.CmpGreaterOrEqual
	}
	return ast.Comparison{
		Pos:      position(comparison.Pos),
		Operator: op,
		Left:     left,
		Right:    right,
	}, nil
}

func convertComparable(comparable *grammar.Comparable) (ast.Comparable, error) {
	switch {
	case comparable.Float != nil:
		value, err := parseFloat(comparable.Float)
		if err != nil {
			return ast.Comparable{}, err
		}
		return ast.Comparable{Value: data.Float(value)}, nil
	case comparable.Int != nil:
		value, err := parseInt(comparable.Int)
		if err != nil {
			return ast.Comparable{}, err
		}
		return ast.Comparable{Value: data.Int(value)}, nil
	default:
		variable := convertVariable(comparable.Variable)
		return ast.Comparable{Variable: &variable}, nil
	}
}

func convertValueSpec(spec *grammar.ValueSpec) (ast.ValueSpec, error) {
	pos := position(spec.Pos)
	switch {
	case spec.Compound != nil:
		return convertCompound(spec.Compound, pos)
	case spec.Float != nil:
		value, err := parseFloat(spec.Float)
		if err != nil {
			return ast.ValueSpec{}, err
		}
		return ast.ValueSpec{
			Pos:     pos,
			Kind:    ast.SpecLiteral,
			Literal: ast.Literal{Kind: ast.LitFloat, Float: value},
		}, nil
	case spec.Int != nil:
		value, err := parseInt(spec.Int)
		if err != nil {
			return ast.ValueSpec{}, err
		}
		return ast.ValueSpec{
			Pos:     pos,
			Kind:    ast.SpecLiteral,
			Literal: ast.Literal{Kind: ast.LitInt, Int: value},
		}, nil
	case spec.Variable != nil:
		return ast.ValueSpec{
			Pos:      pos,
			Kind:     ast.SpecVariable,
			Variable: convertVariable(spec.Variable),
		}, nil
	case spec.Symbol != nil:
		return ast.ValueSpec{
			Pos:     pos,
			Kind:    ast.SpecLiteral,
			Literal: ast.Literal{Kind: ast.LitSymbol, Symbol: *spec.Symbol},
		}, nil
	}
	return ast.ValueSpec{}, fmt.Errorf("empty value specification")
}

func convertCompound(compound *grammar.CompoundSpec, pos ast.Position) (ast.ValueSpec, error) {
	binder := ast.Variable{Pos: pos}
	if compound.Binder != nil {
		binder = convertVariable(compound.Binder)
	}
	switch {
	case compound.Tuple != nil:
		items := make([]ast.ValueSpec, 0, len(compound.Tuple.Items))
		for _, item := range compound.Tuple.Items {
			converted, err := convertValueSpec(item)
			if err != nil {
				return ast.ValueSpec{}, err
			}
			items = append(items, converted)
		}
		return ast.ValueSpec{Pos: pos, Kind: ast.SpecTuple, Binder: binder, Items: items}, nil
	case compound.Object != nil:
		attrs := make([]ast.AttributeSpec, 0, len(compound.Object.Attrs))
		for _, attr := range compound.Object.Attrs {
			value, err := convertValueSpec(attr.Value)
			if err != nil {
				return ast.ValueSpec{}, err
			}
			attrs = append(attrs, ast.AttributeSpec{
				Pos:       position(attr.Pos),
				Attribute: attr.Name,
				Value:     value,
			})
		}
		return ast.ValueSpec{Pos: pos, Kind: ast.SpecObject, Binder: binder, Attrs: attrs}, nil
	default:
		options := make([]ast.Enumerable, 0, len(compound.Enum.Rest)+1)
		first, err := convertEnumerable(compound.Enum.First)
		if err != nil {
			return ast.ValueSpec{}, err
		}
		options = append(options, first)
		for _, option := range compound.Enum.Rest {
			converted, err := convertEnumerable(option)
			if err != nil {
				return ast.ValueSpec{}, err
			}
			options = append(options, converted)
		}
		return ast.ValueSpec{Pos: pos, Kind: ast.SpecEnum, Binder: binder, Options: options}, nil
	}
}

func convertEnumerable(option *grammar.Enumerable) (ast.Enumerable, error) {
	pos := position(option.Pos)
	switch {
	case option.Float != nil:
		value, err := parseFloat(option.Float)
		if err != nil {
			return ast.Enumerable{}, err
		}
		return ast.Enumerable{Literal: &ast.Literal{Kind: ast.LitFloat, Float: value}, Pos: pos}, nil
	case option.Int != nil:
		value, err := parseInt(option.Int)
		if err != nil {
			return ast.Enumerable{}, err
		}
		return ast.Enumerable{Literal: &ast.Literal{Kind: ast.LitInt, Int: value}, Pos: pos}, nil
	case option.Variable != nil:
		variable := convertVariable(option.Variable)
		return ast.Enumerable{Variable: &variable, Pos: pos}, nil
	default:
		return ast.Enumerable{Literal: &ast.Literal{Kind: ast.LitSymbol, Symbol: *option.Symbol}, Pos: pos}, nil
	}
}

func convertExpr(expr *grammar.Expr) (ast.CalcExpr, error) {
	left, err := convertTerm(expr.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range expr.Ops {
		right, err := convertTerm(op.Term)
		if err != nil {
			return nil, err
		}
		binOp := data.OpAdd
		if op.Op == "-" {
			binOp = data.OpSub
		}
		left = ast.CalcBinOp{Op: binOp, Left: left, Right: right}
	}
	return left, nil
}

func convertTerm(term *grammar.Term) (ast.CalcExpr, error) {
	left, err := convertFactor(term.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range term.Ops {
		right, err := convertFactor(op.Factor)
		if err != nil {
			return nil, err
		}
		binOp := data.OpMul
		if op.Op == "/" {
			binOp = data.OpDiv
		}
		left = ast.CalcBinOp{Op: binOp, Left: left, Right: right}
	}
	return left, nil
}

func convertFactor(factor *grammar.Factor) (ast.CalcExpr, error) {
	switch {
	case factor.Float != nil:
		value, err := parseFloat(factor.Float)
		if err != nil {
			return nil, err
		}
		return ast.CalcValue{Value: data.Float(value)}, nil
	case factor.Int != nil:
		value, err := parseInt(factor.Int)
		if err != nil {
			return nil, err
		}
		return ast.CalcValue{Value: data.Int(value)}, nil
	case factor.Variable != nil:
		return ast.CalcVariable{Variable: convertVariable(factor.Variable)}, nil
	default:
		return convertExpr(factor.Paren)
	}
}

func parseInt(lit *grammar.IntLit) (int64, error) {
	value, err := strconv.ParseInt(lit.Digits(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer literal %q: %w", lit.Text, err)
	}
	return value, nil
}

func parseFloat(lit *grammar.FloatLit) (float64, error) {
	value, err := strconv.ParseFloat(lit.Digits(), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float literal %q: %w", lit.Text, err)
	}
	return value, nil
}
