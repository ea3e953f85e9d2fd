package types

import (
	"fmt"
	"iter"
	"slices"

	"github.com/hashicorp/go-set/v3"
)

type Constraint interface {
	fmt.Stringer
	// Substitute returns the constraint with s applied to its types
	Substitute(s Substitution) Constraint
}

var _ Constraint = (*EqualityConstraint)(nil)

// EqualityConstraint asserts that Left and Right unify.
type EqualityConstraint struct {
	Left, Right Type
}

func NewEquality(left, right Type) *EqualityConstraint {
	return &EqualityConstraint{Left: left, Right: right}
}

func (c *EqualityConstraint) Substitute(s Substitution) Constraint {
	left, right := Substitute(c.Left, s), Substitute(c.Right, s)
	if left == c.Left && right == c.Right {
		return c
	}
	return NewEquality(left, right)
}

func (c *EqualityConstraint) String() string {
	return fmt.Sprintf("%v == %v", c.Left, c.Right)
}

// ConstraintSet is an ordered list of constraints. Its zero value is ready to use.
type ConstraintSet struct {
	constraints []Constraint
}

func NewConstraintSet(cs ...Constraint) *ConstraintSet {
	return &ConstraintSet{constraints: cs}
}

func (s *ConstraintSet) Add(c Constraint) {
	s.constraints = append(s.constraints, c)
}

func (s *ConstraintSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.constraints)
}

// All iterates the constraints in insertion order, including constraints
// added while iterating.
func (s *ConstraintSet) All() iter.Seq[Constraint] {
	return func(yield func(Constraint) bool) {
		if s == nil {
			return
		}
		for i := 0; i < len(s.constraints); i++ {
			if !yield(s.constraints[i]) {
				return
			}
		}
	}
}

func (s *ConstraintSet) Slice() []Constraint {
	if s == nil {
		return nil
	}
	return slices.Clone(s.constraints)
}

func compareTypeVars(a, b *TypeVar) int {
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// TVSet is a set of type variables ordered by identity.
type TVSet struct {
	vars *set.TreeSet[*TypeVar]
}

func NewTVSet(vars ...*TypeVar) *TVSet {
	return &TVSet{vars: set.TreeSetFrom(vars, compareTypeVars)}
}

func (s *TVSet) Add(v *TypeVar) bool {
	return s.vars.Insert(v)
}

func (s *TVSet) Contains(v *TypeVar) bool {
	if s == nil {
		return false
	}
	return s.vars.Contains(v)
}

func (s *TVSet) Len() int {
	if s == nil {
		return 0
	}
	return s.vars.Size()
}

// All iterates the variables by increasing ID.
func (s *TVSet) All() iter.Seq[*TypeVar] {
	if s == nil {
		return func(func(*TypeVar) bool) {}
	}
	return s.vars.Items()
}

func (s *TVSet) String() string {
	if s == nil {
		return "{}"
	}
	return fmt.Sprint(s.vars.Slice())
}
