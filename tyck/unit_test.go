package tyck

import (
	"context"
	"os"
	"testing"

	"github.com/cottand/tyck/frontend/cst"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summary(u *Unit) []string {
	var lines []string
	for _, decl := range u.Declarations() {
		lines = append(lines, decl.Name+" :: "+u.TypeOf(decl.Decl))
	}
	return lines
}

func TestLoadUnit(t *testing.T) {
	data, err := os.ReadFile("testdata/poly.yaml")
	require.NoError(t, err)
	u, err := NewUnitFromBytes("poly.yaml", data)
	require.NoError(t, err)

	assert.Equal(t, "poly.yaml", u.Name())
	assert.Empty(t, u.Diagnostics())
	require.NotNil(t, u.Checker())
	assert.Same(t, u.File(), u.Checker().Analyzer().SortedDeclarations()[0][0])
	want := []string{
		"id :: (a) -> a",
		"n :: Int",
		"s :: String",
		"M.twice :: ((a) -> a, a) -> a",
	}
	got := summary(u)
	assert.Equal(t, want, got, pretty.Diff(want, got))
}

func TestCheckAllKeepsOrder(t *testing.T) {
	names := []string{"recursion.yaml", "errors.yaml", "poly.yaml"}
	units, err := CheckAll(context.Background(), os.DirFS("testdata"), names, 2)
	require.NoError(t, err)
	require.Len(t, units, 3)
	for i, u := range units {
		assert.Equal(t, names[i], u.Name())
	}

	assert.False(t, units[0].Errors().HasError())
	assert.True(t, units[1].Errors().HasError())
	want := []string{
		"errors.yaml:4:10: (E003) function '(Int) -> Int' takes 1 parameters, but '(Int, Int) -> Int' has 2",
		"errors.yaml:5:16: (E001) binding 'missing' not found",
		"errors.yaml:8:18: (E002) type mismatch: expected type 'Int', but found a different type 'String'",
	}
	got := units[1].Diagnostics()
	assert.Equal(t, want, got, pretty.Diff(want, got))
}

func TestCheckAllWithoutLimit(t *testing.T) {
	names := []string{"poly.yaml", "poly.yaml", "recursion.yaml", "poly.yaml"}
	units, err := CheckAll(context.Background(), os.DirFS("testdata"), names, 0)
	require.NoError(t, err)
	for _, u := range units[1:] {
		if u.Name() == "poly.yaml" {
			assert.Equal(t, summary(units[0]), summary(u))
		}
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := CheckAll(context.Background(), os.DirFS("testdata"), []string{"poly.yaml", "missing.yaml"}, 1)
	assert.ErrorContains(t, err, "read missing.yaml")

	_, err = NewUnitFromBytes("bad.yaml", []byte("- loop: 1"))
	assert.ErrorContains(t, err, "decode: bad.yaml:1:3")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = CheckAll(ctx, os.DirFS("testdata"), []string{"poly.yaml"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGroupsAndNames(t *testing.T) {
	data, err := os.ReadFile("testdata/recursion.yaml")
	require.NoError(t, err)
	u, err := NewUnitFromBytes("recursion.yaml", data)
	require.NoError(t, err)

	var groups [][]string
	for _, group := range u.Groups() {
		var names []string
		for _, decl := range group {
			names = append(names, DeclName(decl))
		}
		groups = append(groups, names)
	}
	want := [][]string{{"<recursion.yaml>"}, {"isEven", "isOdd"}, {"main.helper"}, {"main"}}
	assert.Equal(t, want, groups, pretty.Diff(want, groups))

	assert.Equal(t, "tuple", DeclName(&cst.TupleExpression{}))
	assert.Equal(t, []string{
		"isEven :: (a) -> b",
		"isOdd :: (a) -> b",
		"main :: () -> a",
	}, summary(u))
}
