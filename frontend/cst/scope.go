package cst

import (
	"iter"
	"maps"
	"slices"
)

// Scope is the lexical scope owned by a scope-introducing node.
type Scope struct {
	node   Node
	parent *Scope
	names  map[string]Node
}

func newScope(node Node, parent *Scope) *Scope {
	return &Scope{node: node, parent: parent, names: make(map[string]Node)}
}

// Node is the node owning this scope.
func (s *Scope) Node() Node { return s.node }

// Parent is nil for the scope of a SourceFile.
func (s *Scope) Parent() *Scope { return s.parent }

// Lookup walks outward from s and returns the node declaring name: a
// *LetDeclaration, *Param, *BindPattern (in match arms) or *ModuleDeclaration.
func (s *Scope) Lookup(name string) Node {
	for scope := s; scope != nil; scope = scope.parent {
		if decl, ok := scope.names[name]; ok {
			return decl
		}
	}
	return nil
}

// LookupLocal only looks at names declared directly in s.
func (s *Scope) LookupLocal(name string) Node {
	return s.names[name]
}

// Names iterates the names declared directly in s, sorted.
func (s *Scope) Names() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(s.names)))
}

func (s *Scope) declare(name string, decl Node) {
	if name == "" {
		return
	}
	// last declaration wins
	s.names[name] = decl
}

// Finish sets parent links and scopes on every node of file, and declares
// names in the scope they belong to. It must be called once the tree is
// fully built, and again after any change to it.
func Finish(file *SourceFile) {
	link(file, nil, nil)
}

func link(n Node, parent Node, scope *Scope) {
	b := n.base()
	b.parent = parent
	if IntroducesScope(n) {
		b.scope = newScope(n, scope)
	} else {
		b.scope = scope
	}

	switch n := n.(type) {
	case *LetDeclaration:
		for _, bind := range BoundNames(n.Pattern) {
			scope.declare(bind.Name, n)
		}
	case *ModuleDeclaration:
		scope.declare(n.Name, n)
	case *Param:
		for _, p := range n.Patterns {
			for _, bind := range BoundNames(p) {
				scope.declare(bind.Name, n)
			}
		}
	case *MatchArm:
		for _, bind := range BoundNames(n.Pattern) {
			b.scope.declare(bind.Name, bind)
		}
	}

	for child := range n.Children() {
		link(child, n, b.scope)
	}
}
