// Package types holds the type representation used by inference: types, type
// variables with their one-shot substitutions, constraints and schemes.
package types

import (
	"fmt"
	"strings"

	"github.com/cottand/tyck/frontend/cst"
	"github.com/pkg/errors"
)

type TypeFlags uint8

const (
	// Fail marks a type already involved in a reported error. Unifying it
	// again is skipped silently.
	Fail TypeFlags = 1 << iota
	// Opaque types keep their origin node when a variable is bound to them.
	Opaque
)

func (f TypeFlags) String() string {
	var flags []string
	if f&Fail != 0 {
		flags = append(flags, "fail")
	}
	if f&Opaque != 0 {
		flags = append(flags, "opaque")
	}
	return strings.Join(flags, "|")
}

// Type is one of *TypeVar, *BuiltinType, *ArrowType or *AnyType.
type Type interface {
	fmt.Stringer
	// Node is the syntax node this type was inferred from, and may be nil
	Node() cst.Node
	SetNode(cst.Node)
	Flags() TypeFlags
	HasFlag(TypeFlags) bool
	AddFlags(TypeFlags)

	base() *typeBase
}

var (
	_ Type = (*TypeVar)(nil)
	_ Type = (*BuiltinType)(nil)
	_ Type = (*ArrowType)(nil)
	_ Type = (*AnyType)(nil)
)

type typeBase struct {
	node  cst.Node
	flags TypeFlags
}

func (b *typeBase) Node() cst.Node           { return b.node }
func (b *typeBase) SetNode(n cst.Node)       { b.node = n }
func (b *typeBase) Flags() TypeFlags         { return b.flags }
func (b *typeBase) HasFlag(f TypeFlags) bool { return b.flags&f != 0 }
func (b *typeBase) AddFlags(f TypeFlags)     { b.flags |= f }
func (b *typeBase) base() *typeBase          { return b }

type TypeVarID uint32

// TypeVar is a placeholder awaiting a substitution. Two variables are the same
// iff their IDs match. Create them through TypingContext.NewTypeVar.
type TypeVar struct {
	typeBase
	ID TypeVarID
	// Name is for display only, like "a3"
	Name   string
	prefix string
	subst  Type
}

// Resolved reports whether a substitution was set on v.
func (v *TypeVar) Resolved() bool { return v.subst != nil }

// Prefix is the display-name hint v was created with.
func (v *TypeVar) Prefix() string { return v.prefix }

// Set substitutes v with t. A variable can only be substituted once, and
// setting it again panics.
func (v *TypeVar) Set(t Type) {
	if v.subst != nil {
		panic(errors.Errorf("type variable %s (#%d) already substituted with %v, cannot substitute with %v", v.Name, v.ID, v.subst, t))
	}
	if t == nil {
		panic(errors.Errorf("cannot substitute type variable %s with nil", v.Name))
	}
	v.subst = t
}

// Resolve follows the substitution chain of v, and returns the first type that is
// not a substituted variable. Every variable on the way is pointed straight
// at the result.
func (v *TypeVar) Resolve() Type {
	if v.subst == nil {
		return v
	}
	var target Type = v
	for {
		tv, ok := target.(*TypeVar)
		if !ok || tv.subst == nil {
			break
		}
		target = tv.subst
	}
	for cur := v; cur != target; {
		next, isVar := cur.subst.(*TypeVar)
		cur.subst = target
		if !isVar {
			break
		}
		cur = next
	}
	return target
}

func (v *TypeVar) String() string {
	if v.subst != nil {
		return v.Resolve().String()
	}
	return v.Name
}

type BuiltinTag int

const (
	Int BuiltinTag = iota
	String
	Bool
)

var builtinNames = [...]string{
	Int:    "Int",
	String: "String",
	Bool:   "Bool",
}

func (t BuiltinTag) String() string {
	if t < 0 || int(t) >= len(builtinNames) {
		return fmt.Sprintf("BuiltinTag(%d)", int(t))
	}
	return builtinNames[t]
}

// BuiltinTags lists every builtin, in declaration order.
func BuiltinTags() []BuiltinTag { return []BuiltinTag{Int, String, Bool} }

type BuiltinType struct {
	typeBase
	Tag BuiltinTag
}

func NewBuiltin(tag BuiltinTag, node cst.Node) *BuiltinType {
	return &BuiltinType{typeBase: typeBase{node: node}, Tag: tag}
}

func (b *BuiltinType) String() string { return b.Tag.String() }

type ArrowType struct {
	typeBase
	Params []Type
	Return Type
}

func NewArrow(params []Type, ret Type, node cst.Node) *ArrowType {
	return &ArrowType{typeBase: typeBase{node: node}, Params: params, Return: ret}
}

func (a *ArrowType) String() string {
	params := make([]string, len(a.Params))
	for i, p := range a.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), a.Return)
}

// AnyType unifies with everything. It stands in for the type of anything
// that already failed to check.
type AnyType struct {
	typeBase
}

func NewAny(node cst.Node) *AnyType {
	return &AnyType{typeBase{node: node}}
}

func (*AnyType) String() string { return "Any" }
