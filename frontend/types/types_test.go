package types

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFresherNames(t *testing.T) {
	ctx := NewTypingContext()
	a1 := ctx.NewTypeVar("a", nil)
	a2 := ctx.NewTypeVar("a", nil)
	b1 := ctx.NewTypeVar("b", nil)
	t1 := ctx.NewTypeVar("", nil)

	assert.Equal(t, []string{"a1", "a2", "b1", "t1"}, []string{a1.Name, a2.Name, b1.Name, t1.Name})
	assert.NotEqual(t, a1.ID, a2.ID)
	assert.NotEqual(t, a2.ID, b1.ID)
}

func TestSetIsOneShot(t *testing.T) {
	ctx := NewTypingContext()
	v := ctx.NewTypeVar("a", nil)
	v.Set(NewBuiltin(Int, nil))

	assert.Panics(t, func() { v.Set(NewBuiltin(String, nil)) })
	assert.Equal(t, "Int", v.String(), "the first substitution is kept")
}

func TestResolveCompressesPath(t *testing.T) {
	ctx := NewTypingContext()
	a := ctx.NewTypeVar("a", nil)
	b := ctx.NewTypeVar("b", nil)
	c := ctx.NewTypeVar("c", nil)
	end := NewBuiltin(Bool, nil)
	a.Set(b)
	b.Set(c)

	assert.Same(t, c, a.Resolve(), "unresolved end of the chain")
	assert.Same(t, c, a.subst)

	c.Set(end)
	assert.Same(t, end, a.Resolve())
	assert.Same(t, end, a.subst)
	assert.Same(t, end, Prune(b))
	assert.Same(t, end, b.subst)
}

func TestOccurs(t *testing.T) {
	ctx := NewTypingContext()
	a := ctx.NewTypeVar("a", nil)
	b := ctx.NewTypeVar("b", nil)
	arrow := NewArrow([]Type{a}, NewBuiltin(Int, nil), nil)

	assert.True(t, Occurs(a, arrow))
	assert.False(t, Occurs(b, arrow))

	b.Set(arrow)
	assert.True(t, Occurs(a, NewArrow(nil, b, nil)), "through a substitution")
}

func TestSubstituteSharesUnchangedSubtrees(t *testing.T) {
	ctx := NewTypingContext()
	a := ctx.NewTypeVar("a", nil)
	fixed := NewArrow([]Type{NewBuiltin(Int, nil)}, NewBuiltin(Bool, nil), nil)
	whole := NewArrow([]Type{a, fixed}, a, nil)
	str := NewBuiltin(String, nil)

	substituted := Substitute(whole, Substitution{a.ID: str}).(*ArrowType)
	assert.NotSame(t, whole, substituted)
	assert.Same(t, str, substituted.Params[0])
	assert.Same(t, fixed, substituted.Params[1])
	assert.Same(t, str, substituted.Return)

	assert.Same(t, fixed, Substitute(fixed, Substitution{a.ID: str}))
}

func TestCloneCopiesStructure(t *testing.T) {
	ctx := NewTypingContext()
	a := ctx.NewTypeVar("a", nil)
	b := ctx.NewTypeVar("b", nil)
	intType := NewBuiltin(Int, nil)
	intType.AddFlags(Opaque)
	original := NewArrow([]Type{a, intType}, b, nil)
	fresh := ctx.Freshen(a)

	clone := Clone(original, Substitution{a.ID: fresh}).(*ArrowType)
	assert.Same(t, fresh, clone.Params[0])
	assert.NotSame(t, intType, clone.Params[1])
	assert.True(t, clone.Params[1].HasFlag(Opaque))
	assert.Same(t, b, clone.Return, "unquantified variables are kept")

	clone.Params[1].AddFlags(Fail)
	assert.False(t, intType.HasFlag(Fail))
	assert.True(t, Equivalent(original, NewArrow([]Type{fresh, NewBuiltin(Int, nil)}, b, nil)))
}

func TestEquivalent(t *testing.T) {
	ctx := NewTypingContext()
	a, b, c := ctx.NewTypeVar("a", nil), ctx.NewTypeVar("a", nil), ctx.NewTypeVar("a", nil)

	assert.True(t, Equivalent(NewArrow([]Type{a}, a, nil), NewArrow([]Type{b}, b, nil)))
	assert.False(t, Equivalent(NewArrow([]Type{a}, a, nil), NewArrow([]Type{b}, c, nil)))
	assert.False(t, Equivalent(NewArrow([]Type{a}, b, nil), NewArrow([]Type{c}, c, nil)))
	assert.False(t, Equivalent(NewBuiltin(Int, nil), NewBuiltin(Bool, nil)))
}

func TestResolveDeepAndString(t *testing.T) {
	ctx := NewTypingContext()
	a := ctx.NewTypeVar("a", nil)
	b := ctx.NewTypeVar("b", nil)
	arrow := NewArrow([]Type{a, NewBuiltin(String, nil)}, b, nil)
	a.Set(NewBuiltin(Int, nil))

	resolved := ResolveDeep(arrow).(*ArrowType)
	assert.IsType(t, &BuiltinType{}, resolved.Params[0])
	assert.Same(t, b, resolved.Return)
	assert.Equal(t, "(Int, String) -> b1", arrow.String())
	assert.Equal(t, []*TypeVar{b}, FreeVars(arrow))
}

func TestTVSetOrderedByID(t *testing.T) {
	ctx := NewTypingContext()
	a, b, c := ctx.NewTypeVar("z", nil), ctx.NewTypeVar("y", nil), ctx.NewTypeVar("x", nil)
	set := NewTVSet(c, a)
	require.True(t, set.Add(b))
	assert.False(t, set.Add(a))

	assert.Equal(t, []*TypeVar{a, b, c}, slices.Collect(set.All()))
	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains(b))

	var nilSet *TVSet
	assert.False(t, nilSet.Contains(a))
}

func TestFramesCollectVariablesAndConstraints(t *testing.T) {
	ctx := NewTypingContext()
	outer := ctx.NewTypeVar("o", nil)
	frame := &Frame{Constraints: &ConstraintSet{}, TypeVars: NewTVSet()}
	ctx.PushFrame(frame)
	inner := ctx.NewTypeVar("i", nil)
	ctx.Equal(inner, NewBuiltin(Int, nil))
	assert.Same(t, frame, ctx.PopFrame())

	assert.True(t, frame.TypeVars.Contains(inner))
	assert.False(t, frame.TypeVars.Contains(outer))
	assert.Equal(t, 1, frame.Constraints.Len())
	assert.Equal(t, 0, ctx.Constraints.Len())
	assert.Panics(t, func() { ctx.PopFrame() })
}

func TestSchemeString(t *testing.T) {
	ctx := NewTypingContext()
	frame := &Frame{Constraints: &ConstraintSet{}, TypeVars: NewTVSet()}
	ctx.PushFrame(frame)
	a := ctx.NewTypeVar("a", nil)
	ctx.PopFrame()
	scheme := &Scheme{TypeVars: frame.TypeVars, Constraints: frame.Constraints, Type: NewArrow([]Type{a}, a, nil)}

	assert.Equal(t, "forall a1. (a1) -> a1", scheme.String())
	assert.Equal(t, "Int", NewMonoScheme(NewBuiltin(Int, nil)).String())
	assert.True(t, NewMonoScheme(a).Mono())
}

func TestDisplayRenamesVariables(t *testing.T) {
	ctx := NewTypingContext()
	x := ctx.NewTypeVar("r", nil)
	y := ctx.NewTypeVar("a", nil)
	resolved := ctx.NewTypeVar("a", nil)
	resolved.Set(y)
	fn := NewArrow([]Type{NewArrow([]Type{x}, resolved, nil), y}, x, nil)

	assert.Equal(t, "((r1) -> a1, a1) -> r1", fn.String())
	assert.Equal(t, "((a) -> b, b) -> a", Display(fn))
	assert.Equal(t, "() -> Int", Display(NewArrow(nil, NewBuiltin(Int, nil), nil)))
	assert.Equal(t, "b1", displayName(27))
}
