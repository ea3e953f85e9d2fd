package infer

import (
	"slices"
	"sync"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/tyck/frontend/ilerr"
	"github.com/cottand/tyck/frontend/types"
)

// TypeEnv is one lexical scope of names to schemes, type names and modules.
// Lookups walk outward through parents, so the innermost binding wins.
type TypeEnv struct {
	parent *TypeEnv
	// ctx mints variables on instantiation. It is nil only for the
	// shared default environment, which is never instantiated from directly.
	ctx *types.TypingContext

	values    *immutable.Map[string, *types.Scheme]
	typeNames *immutable.Map[string, types.Type]
	modules   *immutable.Map[string, *TypeEnv]
}

func NewTypeEnv(ctx *types.TypingContext) *TypeEnv {
	return &TypeEnv{
		ctx:       ctx,
		values:    immutable.NewMap[string, *types.Scheme](nil),
		typeNames: immutable.NewMap[string, types.Type](nil),
		modules:   immutable.NewMap[string, *TypeEnv](nil),
	}
}

// Child returns an empty scope nested in e.
func (e *TypeEnv) Child() *TypeEnv {
	return e.WithContext(e.ctx)
}

// WithContext returns an empty scope nested in e, which instantiates with ctx.
func (e *TypeEnv) WithContext(ctx *types.TypingContext) *TypeEnv {
	child := NewTypeEnv(ctx)
	child.parent = e
	return child
}

func (e *TypeEnv) Parent() *TypeEnv { return e.parent }

// AddType binds name to t without generalizing it.
func (e *TypeEnv) AddType(name string, t types.Type) {
	e.Add(name, types.NewMonoScheme(t))
}

func (e *TypeEnv) Add(name string, scheme *types.Scheme) {
	e.values = e.values.Set(name, scheme)
}

// GetScheme returns the innermost scheme bound to name.
func (e *TypeEnv) GetScheme(name string) (*types.Scheme, bool) {
	for env := e; env != nil; env = env.parent {
		if scheme, ok := env.values.Get(name); ok {
			return scheme, true
		}
	}
	return nil, false
}

// GetLocalScheme only looks at the names bound directly in e.
func (e *TypeEnv) GetLocalScheme(name string) (*types.Scheme, bool) {
	return e.values.Get(name)
}

// Lookup instantiates the scheme bound to name. Not finding it is not an error
// here: callers report it.
func (e *TypeEnv) Lookup(name string) (types.Type, bool) {
	scheme, ok := e.GetScheme(name)
	if !ok {
		return nil, false
	}
	return e.Instantiate(scheme), true
}

// Instantiate replaces the quantified variables of scheme with fresh ones in
// a copy of its type, and adds copies of its constraints to the current frame.
func (e *TypeEnv) Instantiate(scheme *types.Scheme) types.Type {
	return e.InstantiateGroup(scheme)[0]
}

// InstantiateGroup instantiates schemes which share their variables and
// constraints, like the ones of mutually recursive functions, with a single
// substitution. Constraints are copied once.
func (e *TypeEnv) InstantiateGroup(schemes ...*types.Scheme) []types.Type {
	instances, _ := e.instantiate(schemes)
	return instances
}

func (e *TypeEnv) instantiate(schemes []*types.Scheme) ([]types.Type, types.Substitution) {
	if e.ctx == nil {
		ilerr.Failf("cannot instantiate from an environment without a typing context")
	}
	first := schemes[0]
	subst := make(types.Substitution, first.TypeVars.Len())
	// freshening adds to the current frame, which must not be the set iterated
	for _, v := range slices.Collect(first.TypeVars.All()) {
		subst[v.ID] = e.ctx.Freshen(v)
	}
	instances := make([]types.Type, len(schemes))
	for i, scheme := range schemes {
		if scheme.TypeVars != first.TypeVars || scheme.Constraints != first.Constraints {
			ilerr.Failf("cannot instantiate schemes which do not share their variables together")
		}
		instances[i] = types.Clone(scheme.Type, subst)
	}
	// iterate a copy, as the current frame may be collecting into the same set
	for _, c := range first.Constraints.Slice() {
		e.ctx.AddConstraint(c.Substitute(subst))
	}
	return instances, subst
}

// AddTypeName binds name in the namespace of type annotations.
func (e *TypeEnv) AddTypeName(name string, t types.Type) {
	e.typeNames = e.typeNames.Set(name, t)
}

func (e *TypeEnv) LookupTypeName(name string) (types.Type, bool) {
	for env := e; env != nil; env = env.parent {
		if t, ok := env.typeNames.Get(name); ok {
			return t, true
		}
	}
	return nil, false
}

func (e *TypeEnv) AddModule(name string, module *TypeEnv) {
	e.modules = e.modules.Set(name, module)
}

// LookupModule finds the innermost module called name.
func (e *TypeEnv) LookupModule(name string) (*TypeEnv, bool) {
	for env := e; env != nil; env = env.parent {
		if module, ok := env.modules.Get(name); ok {
			return module, true
		}
	}
	return nil, false
}

// LookupPath resolves a module path like [A, B]: A is looked up from e outward,
// and B only inside A.
func (e *TypeEnv) LookupPath(path []string) (*TypeEnv, bool) {
	if len(path) == 0 {
		return e, true
	}
	module, ok := e.LookupModule(path[0])
	for _, name := range path[1:] {
		if !ok {
			break
		}
		module, ok = module.modules.Get(name)
	}
	return module, ok
}

func builtin(tag types.BuiltinTag) *types.BuiltinType {
	t := types.NewBuiltin(tag, nil)
	t.AddFlags(types.Opaque)
	return t
}

func binaryOp(left, right, ret types.BuiltinTag) *types.ArrowType {
	return types.NewArrow([]types.Type{builtin(left), builtin(right)}, builtin(ret), nil)
}

// AddDefault binds the builtin types and operators in e.
func (e *TypeEnv) AddDefault() {
	for _, tag := range types.BuiltinTags() {
		e.AddTypeName(tag.String(), builtin(tag))
	}
	for _, op := range []string{"+", "-", "*", "/", "%"} {
		e.AddType(op, binaryOp(types.Int, types.Int, types.Int))
	}
	for _, op := range []string{"<", ">", "<=", ">=", "==", "!="} {
		e.AddType(op, binaryOp(types.Int, types.Int, types.Bool))
	}
	for _, op := range []string{"&&", "||"} {
		e.AddType(op, binaryOp(types.Bool, types.Bool, types.Bool))
	}
	e.AddType("++", binaryOp(types.String, types.String, types.String))
	e.AddType("not", types.NewArrow([]types.Type{builtin(types.Bool)}, builtin(types.Bool), nil))
}

// DefaultEnv is the environment of builtins. It is shared, so it must
// not be modified: use WithContext to get a scope of its own.
var DefaultEnv = sync.OnceValue(func() *TypeEnv {
	env := NewTypeEnv(nil)
	env.AddDefault()
	return env
})
