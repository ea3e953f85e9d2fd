package types

import (
	"fmt"
	"strings"
)

// Scheme is a type quantified over TypeVars. Constraints are those gathered
// while inferring the body the scheme was built from, and are copied
// alongside the type every time the scheme is instantiated.
//
// Schemes of mutually recursive functions share their TypeVars and Constraints.
type Scheme struct {
	TypeVars    *TVSet
	Constraints *ConstraintSet
	Type        Type
}

// NewMonoScheme binds t without quantifying anything.
func NewMonoScheme(t Type) *Scheme {
	return &Scheme{TypeVars: NewTVSet(), Constraints: &ConstraintSet{}, Type: t}
}

// Mono reports whether instantiating s is a no-op.
func (s *Scheme) Mono() bool {
	return s.TypeVars.Len() == 0 && s.Constraints.Len() == 0
}

func (s *Scheme) String() string {
	if s.TypeVars.Len() == 0 {
		return s.Type.String()
	}
	var quantified []string
	for _, v := range FreeVars(s.Type) {
		if s.TypeVars.Contains(v) {
			quantified = append(quantified, v.Name)
		}
	}
	if len(quantified) == 0 {
		return s.Type.String()
	}
	return fmt.Sprintf("forall %s. %v", strings.Join(quantified, " "), s.Type)
}
