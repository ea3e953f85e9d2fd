package infer

import (
	"github.com/cottand/tyck/frontend/cst"
	"github.com/cottand/tyck/frontend/ilerr"
	"github.com/cottand/tyck/frontend/types"
)

var constTags = map[cst.ConstKind]types.BuiltinTag{
	cst.ConstInt:    types.Int,
	cst.ConstString: types.String,
	cst.ConstBool:   types.Bool,
}

func (c *Checker) inferStmts(stmts []cst.Stmt, env *TypeEnv) {
	for _, stmt := range stmts {
		c.inferStmt(stmt, env)
	}
}

func (c *Checker) inferStmt(stmt cst.Stmt, env *TypeEnv) {
	switch n := stmt.(type) {
	case *cst.LetDeclaration:
		// inferred with its group
	case *cst.ExpressionStatement:
		c.inferExpr(n.Expr, env)
	case *cst.ReturnStatement:
		if n.Expr == nil {
			return
		}
		t := c.inferExpr(n.Expr, env)
		if ret := c.ctx.Frame().ReturnType; ret != nil {
			c.ctx.Equal(ret, t)
		}
	case *cst.IfStatement:
		for _, ifCase := range n.Cases {
			if ifCase.Test != nil {
				t := c.inferExpr(ifCase.Test, env)
				c.ctx.Equal(types.NewBuiltin(types.Bool, ifCase.Test), t)
			}
			c.inferStmts(ifCase.Elements, env)
		}
	case *cst.ModuleDeclaration:
		module, ok := c.modules[n]
		if !ok {
			ilerr.Failf("module %s was not declared", n.Name)
		}
		c.inferStmts(n.Elements, module)
	default:
		ilerr.Failf("unhandled statement %v", stmt.Kind())
	}
}

// inferExpr generates the constraints of expr into the current frame, and returns
// its type.
func (c *Checker) inferExpr(expr cst.Expr, env *TypeEnv) types.Type {
	t := c.inferCurrentExpr(expr, env)
	c.exprTypes[expr] = t
	return t
}

func (c *Checker) inferCurrentExpr(expr cst.Expr, env *TypeEnv) types.Type {
	switch e := expr.(type) {
	case *cst.ReferenceExpression:
		return c.inferReference(e, e.ModulePath, e.Name, env)

	case *cst.ConstantExpression:
		tag, ok := constTags[e.Const]
		if !ok {
			ilerr.Failf("unhandled constant kind %v", e.Const)
		}
		return types.NewBuiltin(tag, e)

	case *cst.CallExpression:
		fn := c.inferExpr(e.Func, env)
		args := make([]types.Type, len(e.Args))
		for i, arg := range e.Args {
			args[i] = c.inferExpr(arg, env)
		}
		ret := c.ctx.NewTypeVar("r", e)
		c.ctx.Equal(fn, types.NewArrow(args, ret, e))
		return ret

	case *cst.BinaryExpression:
		left := c.inferExpr(e.Left, env)
		right := c.inferExpr(e.Right, env)
		op, ok := env.Lookup(e.Operator)
		if !ok {
			c.report(ilerr.New(ilerr.NewBindingNotFound{Positioner: e, Name: e.Operator}))
			return types.NewAny(e)
		}
		ret := c.ctx.NewTypeVar("r", e)
		c.ctx.Equal(op, types.NewArrow([]types.Type{left, right}, ret, e))
		return ret

	case *cst.NestedExpression:
		return c.inferExpr(e.Expr, env)

	case *cst.MatchExpression:
		return c.inferMatch(e, env)

	// There are no record or tuple types: the parts are checked, and the whole
	// is left unconstrained.
	case *cst.MemberExpression:
		c.inferExpr(e.Expr, env)
		return types.NewAny(e)
	case *cst.TupleExpression:
		for _, elem := range e.Elements {
			c.inferExpr(elem, env)
		}
		return types.NewAny(e)
	case *cst.StructExpression:
		for _, field := range e.Fields {
			if field.Punned() {
				c.exprTypes[field] = c.inferReference(field, nil, field.Name, env)
			} else {
				c.exprTypes[field] = c.inferExpr(field.Value, env)
			}
		}
		return types.NewAny(e)

	default:
		ilerr.Failf("unhandled expression %v", expr.Kind())
		return nil
	}
}

// inferReference looks up name from at, in the module at path if there is one.
func (c *Checker) inferReference(at cst.Node, path []string, name string, env *TypeEnv) types.Type {
	notFound := func() types.Type {
		display := name
		if ref, ok := at.(*cst.ReferenceExpression); ok {
			display = ref.String()
		}
		c.report(ilerr.New(ilerr.NewBindingNotFound{Positioner: at, Name: display}))
		return types.NewAny(at)
	}

	if len(path) > 0 {
		module, ok := env.LookupPath(path)
		if !ok {
			return notFound()
		}
		scheme, ok := module.GetLocalScheme(name)
		if !ok {
			return notFound()
		}
		return module.Instantiate(scheme)
	}

	scheme, ok := env.GetScheme(name)
	if !ok {
		return notFound()
	}
	if decl := c.activeFunction(at, name); decl != nil && c.decls[decl].scheme == scheme {
		// recursive references within a group are not generalized
		return types.Clone(scheme.Type, nil)
	}
	return env.Instantiate(scheme)
}

// activeFunction returns the function name refers to from at, if it is being
// inferred right now.
func (c *Checker) activeFunction(at cst.Node, name string) *cst.LetDeclaration {
	if at.Scope() == nil {
		return nil
	}
	decl, ok := at.Scope().Lookup(name).(*cst.LetDeclaration)
	if !ok || !decl.Function || !c.active.Contains(decl) {
		return nil
	}
	return decl
}

func (c *Checker) inferMatch(e *cst.MatchExpression, env *TypeEnv) types.Type {
	value := c.inferExpr(e.Value, env)
	result := c.ctx.NewTypeVar("m", e)
	for _, arm := range e.Arms {
		armEnv := env.Child()
		c.bindPattern(arm.Pattern, value, armEnv)
		t := c.inferExpr(arm.Expr, armEnv)
		c.ctx.Equal(result, t)
	}
	return result
}

// bindPattern binds the names in p to parts of t, in env.
func (c *Checker) bindPattern(p cst.Pattern, t types.Type, env *TypeEnv) {
	c.exprTypes[p] = t
	switch p := p.(type) {
	case *cst.BindPattern:
		if prev, ok := c.prebound[p]; ok {
			c.ctx.Equal(prev, t)
			return
		}
		env.AddType(p.Name, t)
	case *cst.LiteralPattern:
		c.ctx.Equal(t, c.inferExpr(p.Value, env))
	case *cst.NestedPattern:
		c.bindPattern(p.Pattern, t, env)
	default:
		ilerr.Failf("unhandled pattern %v", p.Kind())
	}
}

// inferTypeExpr turns an annotation into a type. Variables with the same name
// within one declaration are the same variable.
func (c *Checker) inferTypeExpr(te cst.TypeExpr, env *TypeEnv, vars map[string]*types.TypeVar) types.Type {
	switch te := te.(type) {
	case *cst.ReferenceTypeExpression:
		scope, ok := env.LookupPath(te.ModulePath)
		var found types.Type
		if ok {
			found, ok = scope.LookupTypeName(te.Name)
		}
		if !ok {
			c.report(ilerr.New(ilerr.NewTypeNotFound{Positioner: te, Name: te.String()}))
			return types.NewAny(te)
		}
		t := types.Clone(found, nil)
		t.SetNode(te)
		return t
	case *cst.VarTypeExpression:
		if v, ok := vars[te.Name]; ok {
			return v
		}
		v := c.ctx.NewTypeVar(te.Name, te)
		vars[te.Name] = v
		return v
	case *cst.ArrowTypeExpression:
		params := make([]types.Type, len(te.Params))
		for i, param := range te.Params {
			params[i] = c.inferTypeExpr(param, env, vars)
		}
		return types.NewArrow(params, c.inferTypeExpr(te.Return, env, vars), te)
	default:
		ilerr.Failf("unhandled type expression %v", te.Kind())
		return nil
	}
}
