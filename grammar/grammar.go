package grammar

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

type Document struct {
	Rules []*Rule `@@*`
}

type Rule struct {
	Pos    lexer.Position
	System string    `"rule" @(Ident ("." Ident)*)`
	Name   string    `":" @(Ident ("." Ident)*)`
	Select []*Select `"{" ( @@ ( "," @@ )* ( "," )? )? "}"`
	Apply  []*Apply  `"do" "{" ( @@ ( "," @@ )* ( "," )? )? "}"`
}

type Select struct {
	Not         *NotBlock         `  @@`
	Calculation *Calculation      `| @@`
	Comparison  *Comparison       `| @@`
	BindingAttr *BindingAttribute `| @@`
	Binding     *BindingSpec      `| @@`
}

type NotBlock struct {
	Pos  lexer.Position
	Body []*Select `"not" "{" ( @@ ( "," @@ )* ( "," )? )? "}"`
}

type Calculation struct {
	Pos    lexer.Position
	Target *Variable `@@ "is"`
	Expr   *Expr     `@@`
}

type Comparison struct {
	Pos   lexer.Position
	Left  *Comparable `@@`
	Op    string      `@("==" | "!=" | "<=" | ">=" | "<" | ">")`
	Right *Comparable `@@`
}

type Comparable struct {
	Pos      lexer.Position
	Float    *FloatLit `  @@`
	Int      *IntLit   `| @@`
	Variable *Variable `| @@`
}

type BindingAttribute struct {
	Pos       lexer.Position
	Variable  *Variable  `@@`
	Attribute string     `"." @Ident`
	Value     *ValueSpec `":" @@`
}

type BindingSpec struct {
	Pos      lexer.Position
	Variable *Variable  `@@`
	Value    *ValueSpec `":" @@`
}

// ValueSpec alternatives are ordered so that compound specs (tuple, object,
// enum, optionally captured with `$v @`) win over a plain variable or
// literal prefix.
type ValueSpec struct {
	Pos      lexer.Position
	Compound *CompoundSpec `  @@`
	Float    *FloatLit     `| @@`
	Int      *IntLit       `| @@`
	Variable *Variable     `| @@`
	Symbol   *string       `| @Ident`
}

type CompoundSpec struct {
	Pos    lexer.Position
	Binder *Variable   `( @@ "@" )?`
	Tuple  *TupleSpec  `( @@`
	Object *ObjectSpec `| @@`
	Enum   *EnumSpec   `| @@ )`
}

type TupleSpec struct {
	Items []*ValueSpec `"[" ( @@ ( "," @@ )* ( "," )? )? "]"`
}

type ObjectSpec struct {
	Attrs []*AttrSpec `"{" ( @@ ( "," @@ )* ( "," )? )? "}"`
}

type AttrSpec struct {
	Pos   lexer.Position
	Name  string     `@Ident`
	Value *ValueSpec `":" @@`
}

type EnumSpec struct {
	First *Enumerable   `@@`
	Rest  []*Enumerable `( "|" @@ )+`
}

type Enumerable struct {
	Pos      lexer.Position
	Float    *FloatLit `  @@`
	Int      *IntLit   `| @@`
	Variable *Variable `| @@`
	Symbol   *string   `| @Ident`
}

type Variable struct {
	Pos  lexer.Position
	Text string `@Variable`
}

// Ident returns the variable name without its `$` sigil; empty for the bare
// wildcard.
func (v Variable) Ident() string { return strings.TrimPrefix(v.Text, "$") }

type IntLit struct {
	Text string `@( ( "-" )? Int )`
}

type FloatLit struct {
	Text string `@( ( "-" )? Float )`
}

// Digits returns the literal text with underscore separators removed.
func (l IntLit) Digits() string { return strings.ReplaceAll(l.Text, "_", "") }

func (l FloatLit) Digits() string { return strings.ReplaceAll(l.Text, "_", "") }

type Expr struct {
	Left *Term     `@@`
	Ops  []*ExprOp `@@*`
}

type ExprOp struct {
	Op   string `@("+" | "-")`
	Term *Term  `@@`
}

type Term struct {
	Left *Factor    `@@`
	Ops  []*TermOp  `@@*`
}

type TermOp struct {
	Op     string  `@("*" | "/")`
	Factor *Factor `@@`
}

type Factor struct {
	Pos      lexer.Position
	Float    *FloatLit `  @@`
	Int      *IntLit   `| @@`
	Variable *Variable `| @@`
	Paren    *Expr     `| "(" @@ ")"`
}

type Apply struct {
	Pos  lexer.Position
	Op   string            `@("+" | "-?" | "-")`
	Spec *BindingAttribute `@@`
}
