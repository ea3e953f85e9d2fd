// Package infer is Hindley-Milner type inference with let-polymorphism. Declarations
// are checked in dependency order, and constraints are solved once all of them
// have been generated.
package infer

import (
	"log/slog"
	"slices"

	"github.com/cottand/tyck/frontend/analysis"
	"github.com/cottand/tyck/frontend/cst"
	"github.com/cottand/tyck/frontend/ilerr"
	"github.com/cottand/tyck/frontend/types"
	"github.com/cottand/tyck/internal/log"
	"github.com/hashicorp/go-set/v3"
)

// declInfo is what Pass 1 finds out about a let declaration, for Pass 2.
type declInfo struct {
	// scheme and frame are only set for functions
	scheme *types.Scheme
	frame  *types.Frame
	// inner is the environment of the body of a function
	inner *TypeEnv
	// outer is the environment the declaration is bound in
	outer *TypeEnv
	// enclosing is the frame of the function (or file) the declaration is in
	enclosing *types.Frame
	// instance is the type of a function at its definition site, once checked,
	// and subst the substitution it was instantiated with
	instance types.Type
	subst    types.Substitution
	// typeVars are the variables named in annotations of this declaration
	typeVars map[string]*types.TypeVar
}

// Checker infers the types of a single source file. Diagnostics go to the sink
// given to NewChecker.
type Checker struct {
	ctx      *types.TypingContext
	env      *TypeEnv
	analyzer *analysis.Analyzer
	sink     ilerr.Sink
	logger   *slog.Logger

	decls     map[*cst.LetDeclaration]*declInfo
	modules   map[*cst.ModuleDeclaration]*TypeEnv
	exprTypes map[cst.Node]types.Type

	// groups is the order declarations are inferred in, and groupIndex
	// the position of each declaration in it
	groups     []analysis.Group
	groupIndex map[cst.Node]int

	// groupSets are the variables and constraints shared by the members of
	// each recursive group, by group index
	groupSets map[int]*types.Frame
	// active holds the declarations of the group being inferred
	active *set.Set[cst.Node]
	// prebound holds the types given to variables before their definition is
	// inferred, when their group references them before that
	prebound map[*cst.BindPattern]types.Type

	checked bool
}

func NewChecker(sink ilerr.Sink) *Checker {
	ctx := types.NewTypingContext()
	return &Checker{
		ctx:        ctx,
		env:        DefaultEnv().WithContext(ctx),
		analyzer:   analysis.NewAnalyzer(),
		sink:       sink,
		logger:     log.DefaultLogger.With("section", "infer"),
		decls:      make(map[*cst.LetDeclaration]*declInfo),
		modules:    make(map[*cst.ModuleDeclaration]*TypeEnv),
		exprTypes:  make(map[cst.Node]types.Type),
		groupIndex: make(map[cst.Node]int),
		groupSets:  make(map[int]*types.Frame),
		active:     set.New[cst.Node](0),
		prebound:   make(map[*cst.BindPattern]types.Type),
	}
}

// Env is the environment top-level declarations are bound in.
func (c *Checker) Env() *TypeEnv { return c.env }

func (c *Checker) Context() *types.TypingContext { return c.ctx }

func (c *Checker) Analyzer() *analysis.Analyzer { return c.analyzer }

// Check infers the types of file, which must have been through cst.Finish. A
// Checker can only check one file. The returned error is not about the file being
// wrong, which is reported to the sink, but about the checker itself failing.
func (c *Checker) Check(file *cst.SourceFile) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ilerr.AsFailure(r)
			c.logger.Error("checking failed", "file", file.Name, "error", err)
		}
	}()
	if c.checked {
		ilerr.Failf("checker already used for another file")
	}
	c.checked = true

	c.analyzer.AddSourceFile(file)
	c.groups = c.analyzer.CheckingOrder()
	for i, group := range c.groups {
		for _, decl := range group {
			c.groupIndex[decl] = i
		}
	}
	for _, stmt := range file.Elements {
		c.forwardDeclare(stmt, c.env)
	}

	// Nothing references the file, so checking its own statements last keeps
	// the order valid, and lets them see every declaration fully checked.
	for i, group := range c.groups {
		if len(group) == 1 && group[0] == cst.Node(file) {
			continue
		}
		c.inferGroup(i, group)
	}
	c.inferStmts(file.Elements, c.env)

	c.solve()
	return nil
}

// TypeOf returns the type inferred for an expression, pattern or let declaration,
// with substitutions applied. Types within the bodies of functions, and of
// variables recursive with functions, are those of the definition site. It returns nil for anything else.
func (c *Checker) TypeOf(n cst.Node) types.Type {
	if let, ok := n.(*cst.LetDeclaration); ok {
		if info := c.decls[let]; info != nil && info.instance != nil {
			return types.ResolveDeep(info.instance)
		}
	}
	t, ok := c.exprTypes[n]
	if !ok {
		return nil
	}
	if let, ok := n.(*cst.LetDeclaration); ok {
		t = c.definitionType(let, t)
	}
	for p := range cst.Ancestors(n) {
		if let, ok := p.(*cst.LetDeclaration); ok {
			t = c.definitionType(let, t)
		}
	}
	return types.ResolveDeep(t)
}

// definitionType applies the substitution decl was checked with to t, if any.
func (c *Checker) definitionType(decl *cst.LetDeclaration, t types.Type) types.Type {
	if info := c.decls[decl]; info != nil && info.subst != nil {
		return types.Substitute(t, info.subst)
	}
	return t
}

// SchemeOf returns the scheme of a function declaration, or nil for variables.
func (c *Checker) SchemeOf(decl *cst.LetDeclaration) *types.Scheme {
	if info := c.decls[decl]; info != nil {
		return info.scheme
	}
	return nil
}

func (c *Checker) report(err ilerr.IleError) {
	c.logger.Debug("reporting diagnostic", "error", ilerr.FormatWithCode(err))
	c.sink.Add(err)
}

// forwardDeclare is Pass 1: it binds the scheme of every function before
// any body is inferred.
func (c *Checker) forwardDeclare(stmt cst.Stmt, env *TypeEnv) {
	switch n := stmt.(type) {
	case *cst.LetDeclaration:
		if n.Function {
			c.declareFunction(n, env)
			return
		}
		c.decls[n] = &declInfo{
			outer:     env,
			enclosing: c.ctx.Frame(),
			typeVars:  make(map[string]*types.TypeVar),
		}
	case *cst.ModuleDeclaration:
		module := env.Child()
		env.AddModule(n.Name, module)
		c.modules[n] = module
		for _, elem := range n.Elements {
			c.forwardDeclare(elem, module)
		}
	case *cst.IfStatement:
		for _, ifCase := range n.Cases {
			for _, elem := range ifCase.Elements {
				c.forwardDeclare(elem, env)
			}
		}
	}
}

// frameFor returns a frame for the body of decl, sharing its constraints and
// variables with the other members of its group.
func (c *Checker) frameFor(decl *cst.LetDeclaration) *types.Frame {
	i, ok := c.groupIndex[decl]
	if !ok {
		ilerr.Failf("%s was not analyzed", cst.Describe(decl))
	}
	if len(c.groups[i]) == 1 {
		return &types.Frame{Constraints: &types.ConstraintSet{}, TypeVars: types.NewTVSet()}
	}
	shared, ok := c.groupSets[i]
	if !ok {
		shared = &types.Frame{Constraints: &types.ConstraintSet{}, TypeVars: types.NewTVSet()}
		c.groupSets[i] = shared
	}
	return &types.Frame{Constraints: shared.Constraints, TypeVars: shared.TypeVars}
}

func (c *Checker) declareFunction(decl *cst.LetDeclaration, env *TypeEnv) {
	frame := c.frameFor(decl)
	info := &declInfo{
		frame:     frame,
		inner:     env.Child(),
		outer:     env,
		enclosing: c.ctx.Frame(),
		typeVars:  make(map[string]*types.TypeVar),
	}
	c.decls[decl] = info

	c.ctx.PushFrame(frame)
	defer c.ctx.PopFrame()

	params := make([]types.Type, 0, len(decl.Params))
	for _, param := range decl.Params {
		var slot types.Type
		for i, pattern := range param.Patterns {
			switch {
			case i == 0 && param.TypeAssert != nil:
				slot = c.inferTypeExpr(param.TypeAssert, env, info.typeVars)
				c.bindPattern(pattern, slot, info.inner)
			case i == 0:
				slot = c.ctx.NewTypeVar("a", pattern)
				c.bindPattern(pattern, slot, info.inner)
			case param.TypeAssert != nil:
				// each further pattern gets its own copy of the annotation,
				// anchored to the first one
				annotated := c.inferTypeExpr(param.TypeAssert, env, info.typeVars)
				c.ctx.Equal(slot, annotated)
				c.bindPattern(pattern, annotated, info.inner)
			default:
				c.bindPattern(pattern, slot, info.inner)
			}
			// every pattern of the group is one parameter
			params = append(params, c.exprTypes[pattern])
		}
	}

	var ret types.Type
	if decl.TypeAssert != nil {
		ret = c.inferTypeExpr(decl.TypeAssert, env, info.typeVars)
	} else {
		ret = c.ctx.NewTypeVar("r", decl)
	}
	frame.ReturnType = ret

	info.scheme = &types.Scheme{
		TypeVars:    frame.TypeVars,
		Constraints: frame.Constraints,
		Type:        types.NewArrow(params, ret, decl),
	}
	for _, bind := range cst.BoundNames(decl.Pattern) {
		env.Add(bind.Name, info.scheme)
	}
	c.logger.Debug("declared function", "decl", cst.Slog(decl), "scheme", info.scheme)

	if block, ok := decl.Body.(*cst.BlockBody); ok {
		for _, elem := range block.Elements {
			c.forwardDeclare(elem, info.inner)
		}
	}
}

// inferGroup is Pass 2 for one group of declarations.
func (c *Checker) inferGroup(index int, group analysis.Group) {
	c.logger.Debug("inferring group", "index", index, "size", len(group))
	c.active = set.From([]cst.Node(group))
	defer func() { c.active = set.New[cst.Node](0) }()

	for _, member := range group {
		let, ok := member.(*cst.LetDeclaration)
		if !ok || let.Function {
			continue
		}
		if len(group) > 1 || slices.Contains(c.analyzer.References(let), member) {
			c.prebind(let)
		}
	}

	var functions []*cst.LetDeclaration
	for _, member := range group {
		switch decl := member.(type) {
		case *cst.LetDeclaration:
			if decl.Function {
				c.inferFunction(decl)
				functions = append(functions, decl)
			} else {
				c.inferVariable(decl, c.variableFrame(index, decl))
			}
		case *cst.SourceFile:
			c.inferStmts(decl.Elements, c.env)
		default:
			ilerr.Failf("unexpected declaration %s", cst.Describe(decl))
		}
	}
	if len(functions) > 0 {
		c.checkDefinitions(group, functions)
	}
}

// variableFrame is where the body of a variable is inferred. A variable in a
// group with functions shares the group's frame, so that its constraints on the
// functions are part of their scheme.
func (c *Checker) variableFrame(index int, decl *cst.LetDeclaration) *types.Frame {
	shared, ok := c.groupSets[index]
	if !ok {
		return c.decls[decl].enclosing
	}
	return &types.Frame{Constraints: shared.Constraints, TypeVars: shared.TypeVars}
}

// checkDefinitions instantiates the schemes of functions once, in the frame they
// are declared in, so that their bodies are checked even when never called. The
// variables of the group get the same substitution.
func (c *Checker) checkDefinitions(group analysis.Group, functions []*cst.LetDeclaration) {
	first := c.decls[functions[0]]
	schemes := make([]*types.Scheme, len(functions))
	for i, decl := range functions {
		info := c.decls[decl]
		if info.scheme.Constraints != first.scheme.Constraints {
			ilerr.Failf("functions of one group do not share their constraints")
		}
		schemes[i] = info.scheme
	}

	c.ctx.PushFrame(first.enclosing)
	defer c.ctx.PopFrame()
	instances, subst := first.outer.instantiate(schemes)
	for i, decl := range functions {
		c.decls[decl].instance = instances[i]
	}
	for _, member := range group {
		if let, ok := member.(*cst.LetDeclaration); ok {
			c.decls[let].subst = subst
		}
	}
}

func (c *Checker) prebind(decl *cst.LetDeclaration) {
	info := c.decls[decl]
	c.ctx.PushFrame(info.enclosing)
	defer c.ctx.PopFrame()
	for _, bind := range cst.BoundNames(decl.Pattern) {
		t := c.ctx.NewTypeVar("v", bind)
		c.prebound[bind] = t
		info.outer.AddType(bind.Name, t)
	}
}

func (c *Checker) inferFunction(decl *cst.LetDeclaration) {
	info := c.decls[decl]
	c.ctx.PushFrame(info.frame)
	defer c.ctx.PopFrame()

	switch body := decl.Body.(type) {
	case *cst.ExprBody:
		t := c.inferExpr(body.Expr, info.inner)
		c.ctx.Equal(info.frame.ReturnType, t)
	case *cst.BlockBody:
		c.inferStmts(body.Elements, info.inner)
	case nil:
	default:
		ilerr.Failf("unhandled body %v", body.Kind())
	}
}

func (c *Checker) inferVariable(decl *cst.LetDeclaration, frame *types.Frame) {
	info := c.decls[decl]
	c.ctx.PushFrame(frame)
	defer c.ctx.PopFrame()

	var t types.Type
	switch body := decl.Body.(type) {
	case *cst.ExprBody:
		t = c.inferExpr(body.Expr, info.outer)
	case nil:
		t = c.ctx.NewTypeVar("v", decl)
	default:
		ilerr.Failf("variable %s cannot have a %v", decl.Name(), body.Kind())
	}
	if decl.TypeAssert != nil {
		annotated := c.inferTypeExpr(decl.TypeAssert, info.outer, info.typeVars)
		c.ctx.Equal(annotated, t)
	}
	c.exprTypes[decl] = t
	c.bindPattern(decl.Pattern, t, info.outer)
}
