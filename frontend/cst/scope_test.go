package cst

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(name string) *ReferenceExpression { return &ReferenceExpression{Name: name} }

func TestFinishScopes(t *testing.T) {
	x := &BindPattern{Name: "x"}
	armBind := &BindPattern{Name: "y"}
	useY := ref("y")
	useX := ref("x")
	useF := ref("f")
	arm := &MatchArm{Pattern: armBind, Expr: useY}
	f := &LetDeclaration{
		Pattern:  &BindPattern{Name: "f"},
		Function: true,
		Params:   []*Param{NewParam(x, nil)},
		Body: &ExprBody{Expr: &MatchExpression{
			Value: useX,
			Arms:  []*MatchArm{arm},
		}},
	}
	v := &LetDeclaration{
		Pattern: &BindPattern{Name: "v"},
		Body:    &ExprBody{Expr: &CallExpression{Func: useF, Args: []Expr{&ConstantExpression{Const: ConstInt, Value: "1"}}}},
	}
	file := &SourceFile{Name: "test", Elements: []Stmt{f, v}}
	Finish(file)

	assert.Same(t, f, file.Scope().LookupLocal("f"))
	assert.Same(t, v, file.Scope().LookupLocal("v"))
	assert.Nil(t, file.Scope().LookupLocal("x"))

	require.NotNil(t, useX.Scope())
	assert.Same(t, f.Params[0], useX.Scope().Lookup("x"))
	assert.Same(t, armBind, useY.Scope().Lookup("y"))
	assert.Same(t, f, useF.Scope().Lookup("f"))
	assert.Nil(t, useF.Scope().Lookup("y"))

	assert.Equal(t, 0, Depth(file))
	assert.Equal(t, 1, Depth(f))
	assert.Equal(t, 2, Depth(useX))
	assert.Equal(t, 3, Depth(useY))
	assert.Equal(t, 1, Depth(useF))

	assert.Same(t, arm, armBind.Parent())
	assert.Equal(t, []string{"f", "v"}, collect(file.Scope().Names()))
}

func TestFinishModuleAndShadowing(t *testing.T) {
	inner := &LetDeclaration{Pattern: &BindPattern{Name: "a"}, Body: &ExprBody{Expr: ref("a")}}
	mod := &ModuleDeclaration{Name: "M", Elements: []Stmt{inner}}
	first := &LetDeclaration{Pattern: &BindPattern{Name: "a"}}
	second := &LetDeclaration{Pattern: &BindPattern{Name: "a"}}
	file := &SourceFile{Elements: []Stmt{first, mod, second}}
	Finish(file)

	assert.Same(t, mod, file.Scope().Lookup("M"))
	assert.Same(t, second, file.Scope().Lookup("a"), "last declaration wins")
	assert.Same(t, inner, mod.Scope().Lookup("a"))
	assert.Same(t, file.Scope(), mod.Scope().Parent())
}

func TestChildrenSkipsAbsentNodes(t *testing.T) {
	let := &LetDeclaration{Pattern: &BindPattern{Name: "a"}}
	var kinds []NodeKind
	for child := range let.Children() {
		kinds = append(kinds, child.Kind())
	}
	assert.Equal(t, []NodeKind{KindBindPattern}, kinds)

	ret := &ReturnStatement{}
	assert.Empty(t, collect(ret.Children()))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "let declaration f", Describe(&LetDeclaration{Pattern: &BindPattern{Name: "f"}}))
	assert.Equal(t, "reference M.x", Describe(&ReferenceExpression{ModulePath: []string{"M"}, Name: "x"}))
	assert.Equal(t, "tuple", Describe(&TupleExpression{}))
}

func collect[V any](seq iter.Seq[V]) []V {
	var out []V
	for v := range seq {
		out = append(out, v)
	}
	return out
}
