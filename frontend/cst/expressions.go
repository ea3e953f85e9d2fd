package cst

import (
	"iter"
	"strings"
)

var (
	_ Expr = (*ReferenceExpression)(nil)
	_ Expr = (*ConstantExpression)(nil)
	_ Expr = (*CallExpression)(nil)
	_ Expr = (*MemberExpression)(nil)
	_ Expr = (*TupleExpression)(nil)
	_ Expr = (*StructExpression)(nil)
	_ Expr = (*NestedExpression)(nil)
	_ Expr = (*BinaryExpression)(nil)
	_ Expr = (*MatchExpression)(nil)
)

// ReferenceExpression is a use of a name, optionally qualified
// by a module path as in `M.N.name`.
type ReferenceExpression struct {
	nodeBase
	ModulePath []string
	Name       string
}

func (n *ReferenceExpression) Kind() NodeKind           { return KindReferenceExpression }
func (n *ReferenceExpression) Children() iter.Seq[Node] { return seqOf() }
func (n *ReferenceExpression) exprNode()                {}

// Qualified reports whether the reference has a module path.
func (n *ReferenceExpression) Qualified() bool { return len(n.ModulePath) > 0 }

func (n *ReferenceExpression) String() string {
	if !n.Qualified() {
		return n.Name
	}
	return strings.Join(n.ModulePath, ".") + "." + n.Name
}

type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstString
	ConstBool
)

func (k ConstKind) String() string {
	switch k {
	case ConstInt:
		return "Int"
	case ConstString:
		return "String"
	case ConstBool:
		return "Bool"
	}
	return "unknown"
}

// ConstantExpression is a literal. Value keeps the literal's source text.
type ConstantExpression struct {
	nodeBase
	Const ConstKind
	Value string
}

func (n *ConstantExpression) Kind() NodeKind           { return KindConstantExpression }
func (n *ConstantExpression) Children() iter.Seq[Node] { return seqOf() }
func (n *ConstantExpression) exprNode()                {}

type CallExpression struct {
	nodeBase
	Func Expr
	Args []Expr
}

func (n *CallExpression) Kind() NodeKind { return KindCallExpression }
func (n *CallExpression) Children() iter.Seq[Node] {
	return concat(seqOf(n.Func), each(n.Args))
}
func (n *CallExpression) exprNode() {}

// MemberExpression is a field access `expr.field`. A dotted name that is a module
// path is represented as a qualified ReferenceExpression instead.
type MemberExpression struct {
	nodeBase
	Expr  Expr
	Field string
}

func (n *MemberExpression) Kind() NodeKind           { return KindMemberExpression }
func (n *MemberExpression) Children() iter.Seq[Node] { return seqOf(n.Expr) }
func (n *MemberExpression) exprNode()                {}

type TupleExpression struct {
	nodeBase
	Elements []Expr
}

func (n *TupleExpression) Kind() NodeKind           { return KindTupleExpression }
func (n *TupleExpression) Children() iter.Seq[Node] { return each(n.Elements) }
func (n *TupleExpression) exprNode()                {}

type StructExpression struct {
	nodeBase
	Fields []*StructField
}

func (n *StructExpression) Kind() NodeKind           { return KindStructExpression }
func (n *StructExpression) Children() iter.Seq[Node] { return each(n.Fields) }
func (n *StructExpression) exprNode()                {}

// StructField is `name: value`, or just `name` when punned, in which case
// Value is nil and the field reads the variable of the same name.
type StructField struct {
	nodeBase
	Name  string
	Value Expr
}

func (n *StructField) Kind() NodeKind           { return KindStructField }
func (n *StructField) Children() iter.Seq[Node] { return seqOf(n.Value) }

func (n *StructField) Punned() bool { return n.Value == nil }

type NestedExpression struct {
	nodeBase
	Expr Expr
}

func (n *NestedExpression) Kind() NodeKind           { return KindNestedExpression }
func (n *NestedExpression) Children() iter.Seq[Node] { return seqOf(n.Expr) }
func (n *NestedExpression) exprNode()                {}

// BinaryExpression applies the operator bound under the name Operator
// (like "+") to Left and Right.
type BinaryExpression struct {
	nodeBase
	Left     Expr
	Operator string
	Right    Expr
}

func (n *BinaryExpression) Kind() NodeKind           { return KindBinaryExpression }
func (n *BinaryExpression) Children() iter.Seq[Node] { return seqOf(n.Left, n.Right) }
func (n *BinaryExpression) exprNode()                {}

type MatchExpression struct {
	nodeBase
	Value Expr
	Arms  []*MatchArm
}

func (n *MatchExpression) Kind() NodeKind { return KindMatchExpression }
func (n *MatchExpression) Children() iter.Seq[Node] {
	return concat(seqOf(n.Value), each(n.Arms))
}
func (n *MatchExpression) exprNode() {}

// MatchArm is `pattern => expr`. Names bound by the pattern are
// only visible within the arm.
type MatchArm struct {
	nodeBase
	Pattern Pattern
	Expr    Expr
}

func (n *MatchArm) Kind() NodeKind           { return KindMatchArm }
func (n *MatchArm) Children() iter.Seq[Node] { return seqOf(n.Pattern, n.Expr) }
