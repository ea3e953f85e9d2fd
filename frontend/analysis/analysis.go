// Package analysis finds which declarations reference which, and the order
// in which groups of mutually recursive declarations must be checked.
package analysis

import (
	"log/slog"

	"github.com/cottand/tyck/frontend/cst"
	"github.com/cottand/tyck/frontend/ilerr"
	"github.com/cottand/tyck/frontend/internal/graph"
	"github.com/cottand/tyck/internal/log"
)

// Group is a set of declarations that reference each other, directly or
// transitively, in source order. Declarations are *cst.LetDeclaration or
// *cst.SourceFile.
type Group []cst.Node

// Analyzer holds the reference graph of the source files added to it.
type Analyzer struct {
	graph *graph.Graph[cst.Node]

	// sorted, groupIndex and checking are computed lazily, and reset by
	// AddSourceFile
	sorted     []Group
	groupIndex map[cst.Node]int
	checking   []Group

	// qualified holds the references made through a module path, which are
	// only used for CheckingOrder
	qualified []edge

	logger *slog.Logger
}

type edge struct {
	from, to cst.Node
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		graph:  graph.New[cst.Node](),
		logger: log.DefaultLogger.With("section", "analysis"),
	}
}

// AddSourceFile adds the declarations of file, and the references between them,
// to the graph. file must have been through cst.Finish.
func (a *Analyzer) AddSourceFile(file *cst.SourceFile) {
	a.sorted, a.groupIndex, a.checking = nil, nil, nil
	// register declarations up front so that vertices are in source order,
	// rather than in the order they are first referenced
	cst.Walk(file, func(n cst.Node) bool {
		switch n.(type) {
		case *cst.SourceFile, *cst.LetDeclaration:
			a.graph.AddVertex(n)
		}
		return true
	})
	for _, elem := range file.Elements {
		a.visit(elem, file)
	}
}

// visit records the references made by n. source is the innermost declaration
// enclosing n.
func (a *Analyzer) visit(n cst.Node, source cst.Node) {
	switch n := n.(type) {
	case *cst.ModuleDeclaration:
		a.visitAll(source, n.Elements...)
	case *cst.LetDeclaration:
		a.graph.AddVertex(n)
		if n.Body != nil {
			a.visit(n.Body, n)
		}
	case *cst.ExprBody:
		a.visit(n.Expr, source)
	case *cst.BlockBody:
		a.visitAll(source, n.Elements...)
	case *cst.ExpressionStatement:
		a.visit(n.Expr, source)
	case *cst.ReturnStatement:
		if n.Expr != nil {
			a.visit(n.Expr, source)
		}
	case *cst.IfStatement:
		for _, ifCase := range n.Cases {
			if ifCase.Test != nil {
				a.visit(ifCase.Test, source)
			}
			a.visitAll(source, ifCase.Elements...)
		}

	case *cst.ReferenceExpression:
		if n.Qualified() {
			if decl := ResolveQualified(n); decl != nil {
				a.qualified = append(a.qualified, edge{from: source, to: decl})
			}
			return
		}
		a.reference(n, n.Name, source)
	case *cst.ConstantExpression:
	case *cst.CallExpression:
		a.visit(n.Func, source)
		for _, arg := range n.Args {
			a.visit(arg, source)
		}
	case *cst.MemberExpression:
		a.visit(n.Expr, source)
	case *cst.TupleExpression:
		for _, elem := range n.Elements {
			a.visit(elem, source)
		}
	case *cst.StructExpression:
		for _, field := range n.Fields {
			if field.Punned() {
				a.reference(field, field.Name, source)
			} else {
				a.visit(field.Value, source)
			}
		}
	case *cst.NestedExpression:
		a.visit(n.Expr, source)
	case *cst.BinaryExpression:
		a.visit(n.Left, source)
		a.visit(n.Right, source)
	case *cst.MatchExpression:
		a.visit(n.Value, source)
		for _, arm := range n.Arms {
			a.visit(arm.Expr, source)
		}
	default:
		ilerr.Failf("unhandled node kind %v in dependency analysis", n.Kind())
	}
}

func (a *Analyzer) visitAll(source cst.Node, stmts ...cst.Stmt) {
	for _, stmt := range stmts {
		a.visit(stmt, source)
	}
}

func (a *Analyzer) reference(at cst.Node, name string, source cst.Node) {
	if at.Scope() == nil {
		ilerr.Failf("%s has no scope, was the file finished?", cst.Describe(at))
	}
	switch decl := at.Scope().Lookup(name).(type) {
	case *cst.LetDeclaration, *cst.SourceFile:
		a.logger.Debug("adding reference", "from", cst.Slog(source), "to", cst.Slog(decl))
		a.graph.AddEdge(source, decl)
	}
}

// IsReferencedInParentScope reports whether decl is referenced from a declaration
// with fewer enclosing scopes than decl itself.
func (a *Analyzer) IsReferencedInParentScope(decl cst.Node) bool {
	depth := cst.Depth(decl)
	for from, to := range a.graph.Edges() {
		if to == decl && cst.Depth(from) < depth {
			return true
		}
	}
	return false
}

// SortedDeclarations returns every declaration grouped so that a group
// comes after all the groups it references.
func (a *Analyzer) SortedDeclarations() []Group {
	if a.sorted != nil {
		return a.sorted
	}
	sccs := a.graph.SCC()
	a.sorted = make([]Group, len(sccs))
	a.groupIndex = make(map[cst.Node]int, a.graph.Len())
	for i, scc := range sccs {
		a.sorted[i] = scc
		for _, decl := range scc {
			a.groupIndex[decl] = i
		}
	}
	a.logger.Debug("sorted declarations", "groups", len(a.sorted))
	return a.sorted
}

// GroupOf returns the index in SortedDeclarations of the group decl belongs
// to, or -1 if decl is not in the graph.
func (a *Analyzer) GroupOf(decl cst.Node) int {
	a.SortedDeclarations()
	if i, ok := a.groupIndex[decl]; ok {
		return i
	}
	return -1
}

// References returns the declarations directly referenced by decl.
func (a *Analyzer) References(decl cst.Node) []cst.Node {
	var refs []cst.Node
	for from, to := range a.graph.Edges() {
		if from == decl {
			refs = append(refs, to)
		}
	}
	return refs
}

// CheckingOrder is like SortedDeclarations, except that a function also depends on
// the declarations in its body, and references through a module path count too.
// The groups of a function's declarations then come before the function's, or
// are merged with it when they reference it.
func (a *Analyzer) CheckingOrder() []Group {
	if a.checking != nil {
		return a.checking
	}
	g := graph.New[cst.Node]()
	for decl := range a.graph.Vertices() {
		g.AddVertex(decl)
	}
	for from, to := range a.graph.Edges() {
		g.AddEdge(from, to)
	}
	for _, ref := range a.qualified {
		g.AddEdge(ref.from, ref.to)
	}
	for decl := range a.graph.Vertices() {
		if owner := EnclosingFunction(decl); owner != nil {
			g.AddEdge(owner, decl)
		}
	}
	for _, scc := range g.SCC() {
		a.checking = append(a.checking, scc)
	}
	return a.checking
}

// EnclosingFunction returns the innermost function whose body contains n, or nil
// when n is not inside a function.
func EnclosingFunction(n cst.Node) *cst.LetDeclaration {
	for p := range cst.Ancestors(n) {
		if let, ok := p.(*cst.LetDeclaration); ok && let.Function {
			return let
		}
	}
	return nil
}

// ResolveQualified returns the let declaration ref names through its module
// path, or nil if there is none. The first module is looked up from the scope
// of ref outwards, the rest within the module before them.
func ResolveQualified(ref *cst.ReferenceExpression) *cst.LetDeclaration {
	scope := ref.Scope()
	for i, name := range ref.ModulePath {
		var found cst.Node
		if i == 0 {
			found = scope.Lookup(name)
		} else {
			found = scope.LookupLocal(name)
		}
		module, ok := found.(*cst.ModuleDeclaration)
		if !ok {
			return nil
		}
		scope = module.Scope()
	}
	decl, _ := scope.LookupLocal(ref.Name).(*cst.LetDeclaration)
	return decl
}
