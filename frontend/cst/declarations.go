package cst

import (
	"iter"
)

var (
	_ Stmt = (*ModuleDeclaration)(nil)
	_ Stmt = (*LetDeclaration)(nil)
	_ Stmt = (*ExpressionStatement)(nil)
	_ Stmt = (*ReturnStatement)(nil)
	_ Stmt = (*IfStatement)(nil)

	_ Body = (*ExprBody)(nil)
	_ Body = (*BlockBody)(nil)
)

// SourceFile is the top-level unit of checking.
type SourceFile struct {
	nodeBase
	Name     string
	Elements []Stmt
}

func (n *SourceFile) Kind() NodeKind           { return KindSourceFile }
func (n *SourceFile) Children() iter.Seq[Node] { return each(n.Elements) }

// ModuleDeclaration groups declarations under a name, which other
// code in the same file can use as a qualifier: `M.name`.
type ModuleDeclaration struct {
	nodeBase
	Name     string
	Elements []Stmt
}

func (n *ModuleDeclaration) Kind() NodeKind           { return KindModuleDeclaration }
func (n *ModuleDeclaration) Children() iter.Seq[Node] { return each(n.Elements) }
func (n *ModuleDeclaration) stmtNode()                {}

// LetDeclaration is either a function definition (Function is set, even
// when Params is empty) or a variable definition binding Pattern to the
// value of an ExprBody.
//
// For functions, TypeAssert annotates the return type; for variables,
// the type of the variable.
type LetDeclaration struct {
	nodeBase
	Pattern    Pattern
	Function   bool
	Params     []*Param
	TypeAssert TypeExpr // may be nil
	Body       Body     // may be nil
}

func (n *LetDeclaration) Kind() NodeKind { return KindLetDeclaration }
func (n *LetDeclaration) Children() iter.Seq[Node] {
	return concat(seqOf(n.Pattern), each(n.Params), seqOf(n.TypeAssert, n.Body))
}
func (n *LetDeclaration) stmtNode() {}

// Name is the name the declaration binds, or "" when its
// pattern is not a plain name.
func (n *LetDeclaration) Name() string {
	if bind, ok := n.Pattern.(*BindPattern); ok {
		return bind.Name
	}
	return ""
}

// Param is a parameter group: every pattern in Patterns shares a single type
// slot, and the optional annotation, as in `(a, b: Int)`.
type Param struct {
	nodeBase
	Patterns   []Pattern
	TypeAssert TypeExpr // may be nil
}

func (n *Param) Kind() NodeKind { return KindParam }
func (n *Param) Children() iter.Seq[Node] {
	return concat(each(n.Patterns), seqOf(n.TypeAssert))
}

// NewParam is a parameter group of a single pattern.
func NewParam(p Pattern, typeAssert TypeExpr) *Param {
	return &Param{Patterns: []Pattern{p}, TypeAssert: typeAssert}
}

// ExprBody is the body of `let f x = expr`.
type ExprBody struct {
	nodeBase
	Expr Expr
}

func (n *ExprBody) Kind() NodeKind           { return KindExprBody }
func (n *ExprBody) Children() iter.Seq[Node] { return seqOf(n.Expr) }
func (n *ExprBody) bodyNode()                {}

// BlockBody is a sequence of statements, as in `let f x { ... }`.
type BlockBody struct {
	nodeBase
	Elements []Stmt
}

func (n *BlockBody) Kind() NodeKind           { return KindBlockBody }
func (n *BlockBody) Children() iter.Seq[Node] { return each(n.Elements) }
func (n *BlockBody) bodyNode()                {}

type ExpressionStatement struct {
	nodeBase
	Expr Expr
}

func (n *ExpressionStatement) Kind() NodeKind           { return KindExpressionStatement }
func (n *ExpressionStatement) Children() iter.Seq[Node] { return seqOf(n.Expr) }
func (n *ExpressionStatement) stmtNode()                {}

type ReturnStatement struct {
	nodeBase
	Expr Expr // may be nil
}

func (n *ReturnStatement) Kind() NodeKind           { return KindReturnStatement }
func (n *ReturnStatement) Children() iter.Seq[Node] { return seqOf(n.Expr) }
func (n *ReturnStatement) stmtNode()                {}

type IfStatement struct {
	nodeBase
	Cases []*IfCase
}

func (n *IfStatement) Kind() NodeKind           { return KindIfStatement }
func (n *IfStatement) Children() iter.Seq[Node] { return each(n.Cases) }
func (n *IfStatement) stmtNode()                {}

// IfCase is one branch of an IfStatement. The final `else` has a nil Test.
type IfCase struct {
	nodeBase
	Test     Expr
	Elements []Stmt
}

func (n *IfCase) Kind() NodeKind { return KindIfCase }
func (n *IfCase) Children() iter.Seq[Node] {
	return concat(seqOf(n.Test), each(n.Elements))
}
