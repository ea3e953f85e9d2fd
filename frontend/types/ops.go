package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Prune returns the type t stands for once substitutions are followed.
// Only a top-level variable is dereferenced.
func Prune(t Type) Type {
	if v, ok := t.(*TypeVar); ok {
		return v.Resolve()
	}
	return t
}

// Substitution maps type variables (by identity) to the types replacing them.
type Substitution map[TypeVarID]Type

// Substitute applies s to t. Subtrees without substituted variables
// are shared with t rather than copied.
func Substitute(t Type, s Substitution) Type {
	if len(s) == 0 {
		return t
	}
	switch t := Prune(t).(type) {
	case *TypeVar:
		if replacement, ok := s[t.ID]; ok {
			return replacement
		}
		return t
	case *ArrowType:
		changed := false
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = Substitute(p, s)
			changed = changed || params[i] != p
		}
		ret := Substitute(t.Return, s)
		if !changed && ret == t.Return {
			return t
		}
		arrow := NewArrow(params, ret, t.node)
		arrow.flags = t.flags
		return arrow
	case *BuiltinType, *AnyType:
		return t
	default:
		panic(errors.Errorf("unhandled type %T in Substitute", t))
	}
}

// Clone copies the structure of t, replacing variables in s. Variables not in s
// are kept as they are. Unlike Substitute, every non-variable node is
// new, so flags and nodes set on the clone do not affect t.
func Clone(t Type, s Substitution) Type {
	switch t := Prune(t).(type) {
	case *TypeVar:
		if replacement, ok := s[t.ID]; ok {
			return replacement
		}
		return t
	case *ArrowType:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = Clone(p, s)
		}
		arrow := NewArrow(params, Clone(t.Return, s), t.node)
		arrow.flags = t.flags
		return arrow
	case *BuiltinType:
		builtin := NewBuiltin(t.Tag, t.node)
		builtin.flags = t.flags
		return builtin
	case *AnyType:
		anyType := NewAny(t.node)
		anyType.flags = t.flags
		return anyType
	default:
		panic(errors.Errorf("unhandled type %T in Clone", t))
	}
}

// Occurs reports whether v appears in t once substitutions are followed.
func Occurs(v *TypeVar, t Type) bool {
	switch t := Prune(t).(type) {
	case *TypeVar:
		return t.ID == v.ID
	case *ArrowType:
		for _, p := range t.Params {
			if Occurs(v, p) {
				return true
			}
		}
		return Occurs(v, t.Return)
	}
	return false
}

// FreeVars lists the unresolved variables of t, in order of first appearance.
func FreeVars(t Type) []*TypeVar {
	var vars []*TypeVar
	seen := make(map[TypeVarID]bool)
	var visit func(Type)
	visit = func(t Type) {
		switch t := Prune(t).(type) {
		case *TypeVar:
			if !seen[t.ID] {
				seen[t.ID] = true
				vars = append(vars, t)
			}
		case *ArrowType:
			for _, p := range t.Params {
				visit(p)
			}
			visit(t.Return)
		}
	}
	visit(t)
	return vars
}

// ResolveDeep returns t with every resolved variable replaced by what it resolves
// to, at any depth. It does not modify t.
func ResolveDeep(t Type) Type {
	switch t := Prune(t).(type) {
	case *ArrowType:
		changed := false
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = ResolveDeep(p)
			changed = changed || params[i] != p
		}
		ret := ResolveDeep(t.Return)
		if !changed && ret == t.Return {
			return t
		}
		arrow := NewArrow(params, ret, t.node)
		arrow.flags = t.flags
		return arrow
	default:
		return t
	}
}

// Equivalent reports whether a and b have the same shape, with variables matched
// one-to-one rather than by identity, like `(a1) -> a1` and `(a7) -> a7`.
func Equivalent(a, b Type) bool {
	left := make(map[TypeVarID]TypeVarID)
	right := make(map[TypeVarID]TypeVarID)
	var equiv func(a, b Type) bool
	equiv = func(a, b Type) bool {
		switch a := Prune(a).(type) {
		case *TypeVar:
			bv, ok := Prune(b).(*TypeVar)
			if !ok {
				return false
			}
			if mapped, ok := left[a.ID]; ok {
				return mapped == bv.ID
			}
			if _, ok := right[bv.ID]; ok {
				return false
			}
			left[a.ID], right[bv.ID] = bv.ID, a.ID
			return true
		case *BuiltinType:
			bb, ok := Prune(b).(*BuiltinType)
			return ok && bb.Tag == a.Tag
		case *AnyType:
			_, ok := Prune(b).(*AnyType)
			return ok
		case *ArrowType:
			ba, ok := Prune(b).(*ArrowType)
			if !ok || len(ba.Params) != len(a.Params) {
				return false
			}
			for i := range a.Params {
				if !equiv(a.Params[i], ba.Params[i]) {
					return false
				}
			}
			return equiv(a.Return, ba.Return)
		}
		return false
	}
	return equiv(a, b)
}

// Display renders t like String, but with its unresolved variables renamed a, b, c...
// in order of first appearance, so that equivalent types display the same.
func Display(t Type) string {
	names := make(map[TypeVarID]string)
	for i, v := range FreeVars(t) {
		names[v.ID] = displayName(i)
	}
	var show func(Type) string
	show = func(t Type) string {
		switch t := Prune(t).(type) {
		case *TypeVar:
			return names[t.ID]
		case *ArrowType:
			params := make([]string, len(t.Params))
			for i, p := range t.Params {
				params[i] = show(p)
			}
			return fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), show(t.Return))
		default:
			return t.String()
		}
	}
	return show(t)
}

func displayName(i int) string {
	name := string(rune('a' + i%26))
	if i >= 26 {
		name += strconv.Itoa(i / 26)
	}
	return name
}
