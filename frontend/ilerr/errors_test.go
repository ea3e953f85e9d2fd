package ilerr

import (
	"go/token"
	"testing"

	"github.com/cottand/tyck/frontend/cst"
	"github.com/cottand/tyck/frontend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	fset := token.NewFileSet()
	file := fset.AddFile("a.yaml", -1, 20)
	file.SetLinesForContent([]byte("first\nsecond line\n"))
	node := &cst.ReferenceExpression{Name: "x"}
	node.SetRange(cst.Range{PosStart: file.Pos(8), PosEnd: file.Pos(9)})

	err := New(NewBindingNotFound{Positioner: node, Name: "x"})
	assert.Equal(t, "(E001) binding 'x' not found", FormatWithCode(err))
	assert.Equal(t, "a.yaml:2:3: (E001) binding 'x' not found", FormatAt(fset, err))

	noPos := New(NewTypeNotFound{Positioner: cst.Range{}, Name: "Foo"})
	assert.Equal(t, "(E005) type 'Foo' not found", FormatAt(fset, noPos))
}

func TestErrorsSink(t *testing.T) {
	var errs *Errors
	assert.False(t, errs.HasError())
	assert.Empty(t, errs.Errors())

	intType := types.NewBuiltin(types.Int, nil)
	strNode := &cst.ConstantExpression{Const: cst.ConstString, Value: `"a"`}
	strType := types.NewBuiltin(types.String, strNode)

	errs = errs.With()
	var sink Sink = errs
	sink.Add(New(NewTypeMismatch{Positioner: PositionOf(intType, strType), First: intType, Second: strType}))
	require.True(t, errs.HasError())
	require.Len(t, errs.Errors(), 1)
	assert.Equal(t, TypeMismatch, errs.Errors()[0].Code())
	assert.Same(t, strNode, errs.Errors()[0].(NewTypeMismatch).Positioner)

	merged := (&Errors{}).Merge(errs)
	assert.Len(t, merged.Errors(), 1)
}

func TestAsFailure(t *testing.T) {
	failure := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = AsFailure(r)
			}
		}()
		Failf("unhandled node %s", "tuple")
		return nil
	}()
	require.Error(t, failure)
	assert.Equal(t, "internal error: unhandled node tuple", failure.Error())
}
