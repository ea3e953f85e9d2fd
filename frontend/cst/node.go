// Package cst is the concrete syntax tree consumed by the analysis and inference
// phases. Nodes are built by a front end (or by the fixture decoder), then parented and
// scoped with Finish before anything else looks at them.
package cst

import (
	"fmt"
	"go/token"
	"iter"
)

// Positioner allows finding the location in the original source file.
type Positioner interface {
	Pos() token.Pos // position of first character belonging to the node
	End() token.Pos // position of first character immediately after the node
}

// Range represents a range of positions in the source code.
type Range struct {
	PosStart token.Pos
	PosEnd   token.Pos
}

// Pos returns the starting position of the range.
func (r Range) Pos() token.Pos { return r.PosStart }

// End returns the ending position of the range.
func (r Range) End() token.Pos { return r.PosEnd }

func (r Range) String() string {
	if r.PosStart == r.PosEnd {
		return fmt.Sprintf("%v", r.PosStart)
	}
	return fmt.Sprintf("%v-%v", r.PosStart, r.PosEnd)
}

// RangeOf creates a Range from a Positioner.
func RangeOf(p Positioner) Range {
	if p == nil {
		return Range{}
	}
	if asRange, ok := p.(Range); ok {
		return asRange
	}
	return Range{p.Pos(), p.End()}
}

type NodeKind int

const (
	KindSourceFile NodeKind = iota
	KindModuleDeclaration
	KindLetDeclaration
	KindParam
	KindExprBody
	KindBlockBody
	KindExpressionStatement
	KindReturnStatement
	KindIfStatement
	KindIfCase
	KindReferenceExpression
	KindConstantExpression
	KindCallExpression
	KindMemberExpression
	KindTupleExpression
	KindStructExpression
	KindStructField
	KindNestedExpression
	KindBinaryExpression
	KindMatchExpression
	KindMatchArm
	KindBindPattern
	KindLiteralPattern
	KindNestedPattern
	KindReferenceTypeExpression
	KindVarTypeExpression
	KindArrowTypeExpression
)

var kindNames = [...]string{
	KindSourceFile:              "source file",
	KindModuleDeclaration:       "module declaration",
	KindLetDeclaration:          "let declaration",
	KindParam:                   "parameter",
	KindExprBody:                "expression body",
	KindBlockBody:               "block body",
	KindExpressionStatement:     "expression statement",
	KindReturnStatement:         "return statement",
	KindIfStatement:             "if statement",
	KindIfCase:                  "if case",
	KindReferenceExpression:     "reference",
	KindConstantExpression:      "constant",
	KindCallExpression:          "function call",
	KindMemberExpression:        "member access",
	KindTupleExpression:         "tuple",
	KindStructExpression:        "struct literal",
	KindStructField:             "struct field",
	KindNestedExpression:        "parenthesized expression",
	KindBinaryExpression:        "binary expression",
	KindMatchExpression:         "match expression",
	KindMatchArm:                "match arm",
	KindBindPattern:             "bind pattern",
	KindLiteralPattern:          "literal pattern",
	KindNestedPattern:           "parenthesized pattern",
	KindReferenceTypeExpression: "type reference",
	KindVarTypeExpression:       "type variable",
	KindArrowTypeExpression:     "function type",
}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
	return kindNames[k]
}

// Node is the base interface for all CST nodes.
type Node interface {
	Positioner
	Kind() NodeKind
	// Parent is nil for a SourceFile, and for any node before Finish ran
	Parent() Node
	// Scope is the innermost scope the node lives in. For nodes introducing
	// a scope, that is their own scope.
	Scope() *Scope
	// Children iterates the direct child nodes in source order
	Children() iter.Seq[Node]

	base() *nodeBase
}

// Stmt is anything that can appear as an element of a file, module or block.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Pattern is the interface for all pattern nodes.
type Pattern interface {
	Node
	patternNode()
}

// TypeExpr is the interface for type annotations.
type TypeExpr interface {
	Node
	typeExprNode()
}

// Body is the body of a LetDeclaration.
type Body interface {
	Node
	bodyNode()
}

type nodeBase struct {
	Range
	parent Node
	scope  *Scope
}

func (b *nodeBase) Parent() Node     { return b.parent }
func (b *nodeBase) Scope() *Scope    { return b.scope }
func (b *nodeBase) base() *nodeBase  { return b }
func (b *nodeBase) SetRange(r Range) { b.Range = r }

// Ancestors iterates the parents of n, innermost first.
func Ancestors(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for p := n.Parent(); p != nil; p = p.Parent() {
			if !yield(p) {
				return
			}
		}
	}
}

// Depth is the number of scope-introducing ancestors of n.
func Depth(n Node) int {
	depth := 0
	for p := range Ancestors(n) {
		if IntroducesScope(p) {
			depth++
		}
	}
	return depth
}

// IntroducesScope reports whether n owns a Scope of its own.
func IntroducesScope(n Node) bool {
	switch n := n.(type) {
	case *SourceFile, *ModuleDeclaration, *MatchArm:
		return true
	case *LetDeclaration:
		return n.Function
	}
	return false
}

// Walk calls f for n and all its descendants, depth-first. Returning false
// from f skips the children of that node.
func Walk(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for child := range n.Children() {
		Walk(child, f)
	}
}

func seqOf(nodes ...Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, n := range nodes {
			if isNil(n) {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

func concat(seqs ...iter.Seq[Node]) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, seq := range seqs {
			for n := range seq {
				if !yield(n) {
					return
				}
			}
		}
	}
}

func each[N Node](nodes []N) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, n := range nodes {
			if isNil(n) {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

// isNil catches typed nils stored in interface fields, like a nil *ExprBody as Body
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch n := n.(type) {
	case *ExprBody:
		return n == nil
	case *BlockBody:
		return n == nil
	case *ConstantExpression:
		return n == nil
	}
	return false
}
