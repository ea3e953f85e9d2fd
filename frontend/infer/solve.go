package infer

import (
	"github.com/cottand/tyck/frontend/ilerr"
	"github.com/cottand/tyck/frontend/types"
)

// solve unifies the global constraints once, in the order they were added.
// Constraints kept in schemes are only solved through their instances.
func (c *Checker) solve() {
	c.logger.Debug("solving", "constraints", c.ctx.Constraints.Len())
	for constraint := range c.ctx.Constraints.All() {
		switch constraint := constraint.(type) {
		case *types.EqualityConstraint:
			c.unifyEquality(constraint.Left, constraint.Right)
		default:
			ilerr.Failf("unhandled constraint %v", constraint)
		}
	}
}

func (c *Checker) unifyEquality(a, b types.Type) {
	a, b = types.Prune(a), types.Prune(b)
	// types part of a reported error do not get reported again
	if a.HasFlag(types.Fail) || b.HasFlag(types.Fail) {
		return
	}
	if a == b {
		return
	}

	if v, ok := a.(*types.TypeVar); ok {
		if types.Occurs(v, b) {
			c.report(ilerr.New(ilerr.NewOccursCheck{Positioner: ilerr.PositionOf(b, a), Var: v, Type: b}))
			a.AddFlags(types.Fail)
			b.AddFlags(types.Fail)
			return
		}
		c.logger.Debug("binding type variable", "var", v.Name, "to", b)
		v.Set(b)
		if v.Node() != nil && !b.HasFlag(types.Opaque) {
			b.SetNode(v.Node())
		}
		return
	}
	if _, ok := b.(*types.TypeVar); ok {
		c.unifyEquality(b, a)
		return
	}

	_, aAny := a.(*types.AnyType)
	_, bAny := b.(*types.AnyType)
	if aAny || bAny {
		return
	}

	switch a := a.(type) {
	case *types.BuiltinType:
		if bb, ok := b.(*types.BuiltinType); ok && bb.Tag == a.Tag {
			return
		}
	case *types.ArrowType:
		if bb, ok := b.(*types.ArrowType); ok {
			c.unifyArrows(a, bb)
			return
		}
	}
	c.mismatch(a, b)
}

func (c *Checker) unifyArrows(a, b *types.ArrowType) {
	if len(a.Params) != len(b.Params) {
		c.report(ilerr.New(ilerr.NewParamCountMismatch{Positioner: ilerr.PositionOf(b, a), Expected: a, Found: b}))
		a.AddFlags(types.Fail)
		b.AddFlags(types.Fail)
	}
	for i := range min(len(a.Params), len(b.Params)) {
		c.unifyEquality(a.Params[i], b.Params[i])
	}
	c.unifyEquality(a.Return, b.Return)
}

func (c *Checker) mismatch(a, b types.Type) {
	c.report(ilerr.New(ilerr.NewTypeMismatch{Positioner: ilerr.PositionOf(b, a), First: a, Second: b}))
	a.AddFlags(types.Fail)
	b.AddFlags(types.Fail)
}
