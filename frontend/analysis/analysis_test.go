package analysis

import (
	"testing"

	"github.com/cottand/tyck/frontend/cst"
	"github.com/cottand/tyck/frontend/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, src string) (*Analyzer, *cst.SourceFile) {
	t.Helper()
	file := fixture.MustDecode(t.Name()+".yaml", src)
	a := NewAnalyzer()
	a.AddSourceFile(file)
	return a, file
}

func names(groups []Group) [][]string {
	out := make([][]string, 0, len(groups))
	for _, group := range groups {
		var g []string
		for _, decl := range group {
			switch decl := decl.(type) {
			case *cst.LetDeclaration:
				g = append(g, decl.Name())
			case *cst.SourceFile:
				g = append(g, "<file>")
			}
		}
		out = append(out, g)
	}
	return out
}

func TestAcyclicGroupsAreTopological(t *testing.T) {
	a, _ := analyze(t, `
- let: main
  params: []
  body: {call: b, args: []}
- let: b
  params: []
  body: {call: a, args: []}
- let: a
  params: []
  body: 1
- let: unused
  body: 2
`)
	assert.Equal(t, [][]string{{"<file>"}, {"a"}, {"b"}, {"main"}, {"unused"}}, names(a.SortedDeclarations()))
}

func TestCyclesAreGrouped(t *testing.T) {
	a, file := analyze(t, `
- let: top
  params: []
  body: {call: f, args: []}
- let: f
  params: []
  body: {call: g, args: []}
- let: h
  params: []
  body: {call: f, args: [leaf]}
- let: g
  params: []
  body: {call: h, args: []}
- let: leaf
  body: 1
- expr: {call: top, args: []}
`)
	groups := a.SortedDeclarations()
	assert.Equal(t, [][]string{{"leaf"}, {"f", "h", "g"}, {"top"}, {"<file>"}}, names(groups))

	f := file.Elements[1]
	g := file.Elements[3]
	assert.Equal(t, a.GroupOf(f), a.GroupOf(g))
	assert.Equal(t, 1, a.GroupOf(f))
	assert.Equal(t, -1, a.GroupOf(&cst.LetDeclaration{}))
}

func TestSelfRecursion(t *testing.T) {
	a, _ := analyze(t, `
- let: loop
  params: [n]
  body: {call: loop, args: [n]}
`)
	assert.Equal(t, [][]string{{"<file>"}, {"loop"}}, names(a.SortedDeclarations()))
}

func TestParametersAndQualifiedReferencesAddNoEdges(t *testing.T) {
	a, file := analyze(t, `
- let: x
  body: 1
- module: M
  elements:
    - let: y
      body: 2
- let: f
  params: [x]
  body: {tuple: [x, M.y, {match: 1, arms: [{pattern: z, body: z}]}]}
`)
	f := file.Elements[2]
	assert.Empty(t, a.References(f))
}

func TestReferencesThroughEveryExpression(t *testing.T) {
	a, file := analyze(t, `
- let: a
  body: 1
- let: b
  body: 2
- let: c
  body: 3
- let: d
  body: 4
- let: e
  body: 5
- let: user
  params: []
  block:
    - expr: {member: {nested: a}, field: size}
    - if:
        - {cond: b, then: [{return: {struct: [c, {name: k, value: d}]}}]}
        - else: [{expr: {binary: +, left: 1, right: e}}]
`)
	user := file.Elements[5]
	refs := a.References(user)
	require.Len(t, refs, 5)
	for i, ref := range refs {
		assert.Same(t, file.Elements[i], ref)
	}
}

func TestNestedDeclarations(t *testing.T) {
	a, file := analyze(t, `
- let: outer
  params: [p]
  block:
    - let: helper
      params: []
      body: p
    - let: sibling
      params: []
      body: {call: helper, args: []}
    - return: {call: helper, args: []}
- let: other
  params: []
  body: 1
`)
	outer := file.Elements[0].(*cst.LetDeclaration)
	block := outer.Body.(*cst.BlockBody)
	helper := block.Elements[0]
	sibling := block.Elements[1]

	assert.Equal(t, [][]string{{"<file>"}, {"helper"}, {"outer"}, {"sibling"}, {"other"}}, names(a.SortedDeclarations()))
	assert.True(t, a.IsReferencedInParentScope(helper), "referenced by outer")
	assert.False(t, a.IsReferencedInParentScope(sibling))
	assert.False(t, a.IsReferencedInParentScope(file.Elements[1]))
}

func TestCheckingOrderPutsBodiesFirst(t *testing.T) {
	a, file := analyze(t, `
- let: f
  params: [p]
  block:
    - let: unused
      body: {call: late, args: []}
    - let: again
      body: {call: f, args: [p]}
    - return: p
- let: late
  params: []
  body: 1
`)
	f := file.Elements[0].(*cst.LetDeclaration)
	unused := f.Body.(*cst.BlockBody).Elements[0]
	assert.Same(t, f, EnclosingFunction(unused))
	assert.Nil(t, EnclosingFunction(f))

	assert.Equal(t, [][]string{{"<file>"}, {"f"}, {"late"}, {"unused"}, {"again"}}, names(a.SortedDeclarations()))
	assert.Equal(t, [][]string{{"<file>"}, {"late"}, {"unused"}, {"f", "again"}}, names(a.CheckingOrder()))
}

func TestCheckingOrderFollowsModulePaths(t *testing.T) {
	a, file := analyze(t, `
- let: a
  body: {call: M.f, args: [M.N.one]}
- let: b
  body: {call: M.nope, args: [N.one]}
- module: M
  elements:
    - let: f
      params: [x]
      body: x
    - module: N
      elements:
        - let: one
          body: 1
`)
	ref := file.Elements[0].(*cst.LetDeclaration).Body.(*cst.ExprBody).Expr.(*cst.CallExpression)
	module := file.Elements[2].(*cst.ModuleDeclaration)
	assert.Same(t, module.Elements[0], ResolveQualified(ref.Func.(*cst.ReferenceExpression)))
	assert.Nil(t, ResolveQualified(file.Elements[1].(*cst.LetDeclaration).Body.(*cst.ExprBody).Expr.(*cst.CallExpression).Func.(*cst.ReferenceExpression)))

	assert.Equal(t, [][]string{{"<file>"}, {"a"}, {"b"}, {"f"}, {"one"}}, names(a.SortedDeclarations()))
	assert.Equal(t, [][]string{{"<file>"}, {"f"}, {"one"}, {"a"}, {"b"}}, names(a.CheckingOrder()))
}

func TestUnhandledNodePanics(t *testing.T) {
	file := &cst.SourceFile{Elements: []cst.Stmt{&cst.ExpressionStatement{Expr: &badExpr{}}}}
	assert.Panics(t, func() { NewAnalyzer().AddSourceFile(file) })
}

type badExpr struct{ cst.ConstantExpression }

func (badExpr) Kind() cst.NodeKind { return cst.KindMatchArm }
