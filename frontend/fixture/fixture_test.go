package fixture

import (
	"go/token"
	"testing"

	"github.com/cottand/tyck/frontend/cst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
- let: id
  params: [x]
  body: x
- let: add
  params:
    - {names: [a, b], type: Int}
  returns: Int
  block:
    - let: sum
      body: {binary: +, left: a, right: b}
    - return: sum
- module: M
  elements:
    - let: one
      type: Int
      body: 1
- expr: {call: id, args: [{string: hello}, M.one, true]}
`

func TestDecode(t *testing.T) {
	fset := token.NewFileSet()
	file, err := Decode(fset, "sample.yaml", []byte(sample))
	require.NoError(t, err)
	require.Len(t, file.Elements, 4)

	id := file.Elements[0].(*cst.LetDeclaration)
	assert.True(t, id.Function)
	assert.Equal(t, "id", id.Name())
	require.Len(t, id.Params, 1)
	body := id.Body.(*cst.ExprBody).Expr.(*cst.ReferenceExpression)
	assert.Same(t, id.Params[0], body.Scope().Lookup("x"))
	assert.Equal(t, "sample.yaml:4:9", fset.Position(body.Pos()).String())

	add := file.Elements[1].(*cst.LetDeclaration)
	require.Len(t, add.Params, 1)
	assert.Len(t, add.Params[0].Patterns, 2)
	assert.IsType(t, &cst.ReferenceTypeExpression{}, add.Params[0].TypeAssert)
	assert.IsType(t, &cst.ReferenceTypeExpression{}, add.TypeAssert)
	block := add.Body.(*cst.BlockBody)
	require.Len(t, block.Elements, 2)
	sum := block.Elements[0].(*cst.LetDeclaration)
	assert.False(t, sum.Function)
	ret := block.Elements[1].(*cst.ReturnStatement)
	assert.Same(t, sum, ret.Scope().Lookup("sum"))

	mod := file.Elements[2].(*cst.ModuleDeclaration)
	assert.Equal(t, "M", mod.Name)
	assert.Same(t, mod, file.Scope().Lookup("M"))

	call := file.Elements[3].(*cst.ExpressionStatement).Expr.(*cst.CallExpression)
	require.Len(t, call.Args, 3)
	assert.Equal(t, cst.ConstString, call.Args[0].(*cst.ConstantExpression).Const)
	qualified := call.Args[1].(*cst.ReferenceExpression)
	assert.Equal(t, []string{"M"}, qualified.ModulePath)
	assert.Equal(t, "one", qualified.Name)
	assert.Equal(t, cst.ConstBool, call.Args[2].(*cst.ConstantExpression).Const)
}

func TestDecodePatternsAndTypes(t *testing.T) {
	file := MustDecode("patterns.yaml", `
- let: f
  params:
    - {name: g, type: {params: [a], returns: Bool}}
  body:
    match: {call: g, args: [1]}
    arms:
      - {pattern: true, body: {string: yes}}
      - {pattern: {nested: other}, body: {string: no}}
- if:
    - {cond: true, then: [{expr: 1}]}
    - else: [{return: }]
`)
	f := file.Elements[0].(*cst.LetDeclaration)
	arrow := f.Params[0].TypeAssert.(*cst.ArrowTypeExpression)
	assert.IsType(t, &cst.VarTypeExpression{}, arrow.Params[0])
	assert.Equal(t, "Bool", arrow.Return.(*cst.ReferenceTypeExpression).Name)

	match := f.Body.(*cst.ExprBody).Expr.(*cst.MatchExpression)
	require.Len(t, match.Arms, 2)
	assert.IsType(t, &cst.LiteralPattern{}, match.Arms[0].Pattern)
	nested := match.Arms[1].Pattern.(*cst.NestedPattern)
	bind := nested.Pattern.(*cst.BindPattern)
	assert.Same(t, bind, match.Arms[1].Scope().LookupLocal("other"))

	ifStmt := file.Elements[1].(*cst.IfStatement)
	require.Len(t, ifStmt.Cases, 2)
	assert.NotNil(t, ifStmt.Cases[0].Test)
	assert.Nil(t, ifStmt.Cases[1].Test)
	assert.Nil(t, ifStmt.Cases[1].Elements[0].(*cst.ReturnStatement).Expr)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name, src, err string
	}{
		{"unknown statement", "- loop: 1", "bad.yaml:1:3: unknown statement"},
		{"unknown expression", "- expr: {lambda: x}", `bad.yaml:1:10: unknown expression "lambda"`},
		{"block without params", "- let: x\n  block: []", "only functions can have a block"},
		{"wrong annotation key", "- let: x\n  returns: Int", `"returns" is not allowed here, use "type"`},
		{"not a sequence", "let: x", "expected a sequence"},
		{"bad int", "- expr: {int: abc}", `"abc" is not an integer`},
		{"invalid yaml", "- [", "parsing bad.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(token.NewFileSet(), "bad.yaml", []byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}
