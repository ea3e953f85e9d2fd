package cst

import (
	"iter"
	"strings"
)

var (
	_ Pattern = (*BindPattern)(nil)
	_ Pattern = (*LiteralPattern)(nil)
	_ Pattern = (*NestedPattern)(nil)

	_ TypeExpr = (*ReferenceTypeExpression)(nil)
	_ TypeExpr = (*VarTypeExpression)(nil)
	_ TypeExpr = (*ArrowTypeExpression)(nil)
)

// BindPattern binds the matched value to Name.
type BindPattern struct {
	nodeBase
	Name string
}

func (n *BindPattern) Kind() NodeKind           { return KindBindPattern }
func (n *BindPattern) Children() iter.Seq[Node] { return seqOf() }
func (n *BindPattern) patternNode()             {}

// LiteralPattern matches when the value equals a constant.
type LiteralPattern struct {
	nodeBase
	Value *ConstantExpression
}

func (n *LiteralPattern) Kind() NodeKind           { return KindLiteralPattern }
func (n *LiteralPattern) Children() iter.Seq[Node] { return seqOf(n.Value) }
func (n *LiteralPattern) patternNode()             {}

type NestedPattern struct {
	nodeBase
	Pattern Pattern
}

func (n *NestedPattern) Kind() NodeKind           { return KindNestedPattern }
func (n *NestedPattern) Children() iter.Seq[Node] { return seqOf(n.Pattern) }
func (n *NestedPattern) patternNode()             {}

// BoundNames returns the bind patterns introduced by p, in source order.
func BoundNames(p Pattern) []*BindPattern {
	var binds []*BindPattern
	Walk(p, func(n Node) bool {
		if bind, ok := n.(*BindPattern); ok {
			binds = append(binds, bind)
		}
		return true
	})
	return binds
}

// ReferenceTypeExpression names a type, like `Int` or `M.T`.
type ReferenceTypeExpression struct {
	nodeBase
	ModulePath []string
	Name       string
}

func (n *ReferenceTypeExpression) Kind() NodeKind           { return KindReferenceTypeExpression }
func (n *ReferenceTypeExpression) Children() iter.Seq[Node] { return seqOf() }
func (n *ReferenceTypeExpression) typeExprNode()            {}

func (n *ReferenceTypeExpression) String() string {
	if len(n.ModulePath) == 0 {
		return n.Name
	}
	return strings.Join(n.ModulePath, ".") + "." + n.Name
}

// VarTypeExpression is a type variable in an annotation. Occurrences of the same
// name within one declaration refer to the same variable.
type VarTypeExpression struct {
	nodeBase
	Name string
}

func (n *VarTypeExpression) Kind() NodeKind           { return KindVarTypeExpression }
func (n *VarTypeExpression) Children() iter.Seq[Node] { return seqOf() }
func (n *VarTypeExpression) typeExprNode()            {}

// ArrowTypeExpression is a function type, `(A, B) -> C`.
type ArrowTypeExpression struct {
	nodeBase
	Params []TypeExpr
	Return TypeExpr
}

func (n *ArrowTypeExpression) Kind() NodeKind { return KindArrowTypeExpression }
func (n *ArrowTypeExpression) Children() iter.Seq[Node] {
	return concat(each(n.Params), seqOf(n.Return))
}
func (n *ArrowTypeExpression) typeExprNode() {}
