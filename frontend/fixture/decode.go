package fixture

import (
	"github.com/cottand/tyck/frontend/cst"
	"gopkg.in/yaml.v3"
)

func (d *decoder) stmts(n *yaml.Node) ([]cst.Stmt, error) {
	if isNull(n) {
		return nil, nil
	}
	items, err := d.sequence(n)
	if err != nil {
		return nil, err
	}
	stmts := make([]cst.Stmt, 0, len(items))
	for _, item := range items {
		stmt, err := d.stmt(item)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (d *decoder) stmt(n *yaml.Node) (cst.Stmt, error) {
	m, err := d.mapping(n)
	if err != nil {
		return nil, err
	}
	switch {
	case has(m, "let"):
		return d.let(m)
	case has(m, "expr"):
		if err := d.only(m, "expr"); err != nil {
			return nil, err
		}
		expr, err := d.expr(m.values["expr"])
		if err != nil {
			return nil, err
		}
		return at(d, m.keyNode("expr"), &cst.ExpressionStatement{Expr: expr}), nil
	case has(m, "return"):
		if err := d.only(m, "return"); err != nil {
			return nil, err
		}
		ret := at(d, m.keyNode("return"), &cst.ReturnStatement{})
		if value := m.values["return"]; !isNull(value) {
			if ret.Expr, err = d.expr(value); err != nil {
				return nil, err
			}
		}
		return ret, nil
	case has(m, "if"):
		if err := d.only(m, "if"); err != nil {
			return nil, err
		}
		return d.ifStmt(m)
	case has(m, "module"):
		if err := d.only(m, "module", "elements"); err != nil {
			return nil, err
		}
		name, err := d.scalar(m.values["module"])
		if err != nil {
			return nil, err
		}
		mod := at(d, m.keyNode("module"), &cst.ModuleDeclaration{Name: name})
		if elems, ok := m.get("elements"); ok {
			if mod.Elements, err = d.stmts(elems); err != nil {
				return nil, err
			}
		}
		return mod, nil
	}
	return nil, d.errorf(n, "unknown statement, expected one of let, expr, return, if, module")
}

func has(m *mapping, key string) bool {
	_, ok := m.values[key]
	return ok
}

func (d *decoder) let(m *mapping) (*cst.LetDeclaration, error) {
	if err := d.only(m, "let", "params", "returns", "type", "body", "block"); err != nil {
		return nil, err
	}
	pattern, err := d.pattern(m.values["let"])
	if err != nil {
		return nil, err
	}
	let := at(d, m.keyNode("let"), &cst.LetDeclaration{Pattern: pattern})

	if params, ok := m.get("params"); ok {
		let.Function = true
		if let.Params, err = d.params(params); err != nil {
			return nil, err
		}
	}
	annotationKey := "type"
	if let.Function {
		annotationKey = "returns"
	}
	for _, key := range []string{"type", "returns"} {
		annotation, ok := m.get(key)
		if !ok {
			continue
		}
		if key != annotationKey {
			return nil, d.errorf(m.keyNode(key), "%q is not allowed here, use %q", key, annotationKey)
		}
		if let.TypeAssert, err = d.typeExpr(annotation); err != nil {
			return nil, err
		}
	}

	body, hasBody := m.get("body")
	block, hasBlock := m.get("block")
	switch {
	case hasBody && hasBlock:
		return nil, d.errorf(m.node, "a let cannot have both a body and a block")
	case hasBody:
		expr, err := d.expr(body)
		if err != nil {
			return nil, err
		}
		let.Body = at(d, m.keyNode("body"), &cst.ExprBody{Expr: expr})
	case hasBlock:
		if !let.Function {
			return nil, d.errorf(m.keyNode("block"), "only functions can have a block, add params")
		}
		stmts, err := d.stmts(block)
		if err != nil {
			return nil, err
		}
		let.Body = at(d, m.keyNode("block"), &cst.BlockBody{Elements: stmts})
	}
	return let, nil
}

// params decodes the entries x, {name: x, type: T}, {names: [a, b], type: T}
// and {pattern: P, type: T}.
func (d *decoder) params(n *yaml.Node) ([]*cst.Param, error) {
	if isNull(n) {
		return []*cst.Param{}, nil
	}
	items, err := d.sequence(n)
	if err != nil {
		return nil, err
	}
	params := make([]*cst.Param, 0, len(items))
	for _, item := range items {
		if item.Kind == yaml.ScalarNode {
			pattern, err := d.pattern(item)
			if err != nil {
				return nil, err
			}
			params = append(params, at(d, item, cst.NewParam(pattern, nil)))
			continue
		}
		m, err := d.mapping(item)
		if err != nil {
			return nil, err
		}
		if err := d.only(m, "name", "names", "pattern", "type"); err != nil {
			return nil, err
		}
		param := at(d, item, &cst.Param{})
		for _, key := range []string{"name", "pattern"} {
			if value, ok := m.get(key); ok {
				pattern, err := d.pattern(value)
				if err != nil {
					return nil, err
				}
				param.Patterns = append(param.Patterns, pattern)
			}
		}
		if names, ok := m.get("names"); ok {
			nameItems, err := d.sequence(names)
			if err != nil {
				return nil, err
			}
			for _, nameItem := range nameItems {
				pattern, err := d.pattern(nameItem)
				if err != nil {
					return nil, err
				}
				param.Patterns = append(param.Patterns, pattern)
			}
		}
		if len(param.Patterns) == 0 {
			return nil, d.errorf(item, "parameter without a name")
		}
		if typ, ok := m.get("type"); ok {
			if param.TypeAssert, err = d.typeExpr(typ); err != nil {
				return nil, err
			}
		}
		params = append(params, param)
	}
	return params, nil
}

// ifStmt decodes `if: [{cond: E, then: [...]}, ..., {else: [...]}]`.
func (d *decoder) ifStmt(m *mapping) (*cst.IfStatement, error) {
	items, err := d.sequence(m.values["if"])
	if err != nil {
		return nil, err
	}
	stmt := at(d, m.keyNode("if"), &cst.IfStatement{})
	for i, item := range items {
		cm, err := d.mapping(item)
		if err != nil {
			return nil, err
		}
		ifCase := at(d, item, &cst.IfCase{})
		if elseBody, ok := cm.get("else"); ok {
			if err := d.only(cm, "else"); err != nil {
				return nil, err
			}
			if i != len(items)-1 {
				return nil, d.errorf(item, "else must be the last case")
			}
			if ifCase.Elements, err = d.stmts(elseBody); err != nil {
				return nil, err
			}
		} else {
			if err := d.only(cm, "cond", "then"); err != nil {
				return nil, err
			}
			cond, ok := cm.get("cond")
			if !ok {
				return nil, d.errorf(item, "if case without cond")
			}
			if ifCase.Test, err = d.expr(cond); err != nil {
				return nil, err
			}
			if then, ok := cm.get("then"); ok {
				if ifCase.Elements, err = d.stmts(then); err != nil {
					return nil, err
				}
			}
		}
		stmt.Cases = append(stmt.Cases, ifCase)
	}
	return stmt, nil
}

func (d *decoder) expr(n *yaml.Node) (cst.Expr, error) {
	if n.Kind == yaml.ScalarNode {
		switch {
		case isNull(n):
			return nil, d.errorf(n, "missing expression")
		case n.Tag == "!!int":
			return at(d, n, &cst.ConstantExpression{Const: cst.ConstInt, Value: n.Value}), nil
		case n.Tag == "!!bool":
			return at(d, n, &cst.ConstantExpression{Const: cst.ConstBool, Value: n.Value}), nil
		}
		path, name := splitPath(n.Value)
		return at(d, n, &cst.ReferenceExpression{ModulePath: path, Name: name}), nil
	}

	m, err := d.mapping(n)
	if err != nil {
		return nil, err
	}
	if len(m.keys) == 0 {
		return nil, d.errorf(n, "empty expression")
	}
	key := m.keys[0]
	value := m.values[key]
	pos := m.keyNode(key)
	switch key {
	case "int", "string", "bool":
		if err := d.only(m, key); err != nil {
			return nil, err
		}
		return d.constant(key, value)
	case "ref":
		if err := d.only(m, "ref"); err != nil {
			return nil, err
		}
		dotted, err := d.scalar(value)
		if err != nil {
			return nil, err
		}
		path, name := splitPath(dotted)
		return at(d, value, &cst.ReferenceExpression{ModulePath: path, Name: name}), nil
	case "call":
		if err := d.only(m, "call", "args"); err != nil {
			return nil, err
		}
		fn, err := d.expr(value)
		if err != nil {
			return nil, err
		}
		call := at(d, pos, &cst.CallExpression{Func: fn, Args: []cst.Expr{}})
		if args, ok := m.get("args"); ok {
			if call.Args, err = d.exprs(args); err != nil {
				return nil, err
			}
		}
		return call, nil
	case "binary":
		if err := d.only(m, "binary", "left", "right"); err != nil {
			return nil, err
		}
		op, err := d.scalar(value)
		if err != nil {
			return nil, err
		}
		left, err := d.required(m, "left")
		if err != nil {
			return nil, err
		}
		right, err := d.required(m, "right")
		if err != nil {
			return nil, err
		}
		return at(d, value, &cst.BinaryExpression{Left: left, Operator: op, Right: right}), nil
	case "member":
		if err := d.only(m, "member", "field"); err != nil {
			return nil, err
		}
		target, err := d.expr(value)
		if err != nil {
			return nil, err
		}
		fieldNode, ok := m.get("field")
		if !ok {
			return nil, d.errorf(n, "member without field")
		}
		field, err := d.scalar(fieldNode)
		if err != nil {
			return nil, err
		}
		return at(d, fieldNode, &cst.MemberExpression{Expr: target, Field: field}), nil
	case "tuple":
		if err := d.only(m, "tuple"); err != nil {
			return nil, err
		}
		elems, err := d.exprs(value)
		if err != nil {
			return nil, err
		}
		return at(d, pos, &cst.TupleExpression{Elements: elems}), nil
	case "struct":
		if err := d.only(m, "struct"); err != nil {
			return nil, err
		}
		return d.structExpr(pos, value)
	case "nested":
		if err := d.only(m, "nested"); err != nil {
			return nil, err
		}
		inner, err := d.expr(value)
		if err != nil {
			return nil, err
		}
		return at(d, pos, &cst.NestedExpression{Expr: inner}), nil
	case "match":
		if err := d.only(m, "match", "arms"); err != nil {
			return nil, err
		}
		return d.match(m, pos, value)
	}
	return nil, d.errorf(pos, "unknown expression %q", key)
}

func (d *decoder) required(m *mapping, key string) (cst.Expr, error) {
	value, ok := m.get(key)
	if !ok {
		return nil, d.errorf(m.node, "missing %q", key)
	}
	return d.expr(value)
}

func (d *decoder) exprs(n *yaml.Node) ([]cst.Expr, error) {
	items, err := d.sequence(n)
	if err != nil {
		return nil, err
	}
	exprs := make([]cst.Expr, 0, len(items))
	for _, item := range items {
		expr, err := d.expr(item)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func (d *decoder) constant(kind string, value *yaml.Node) (*cst.ConstantExpression, error) {
	text, err := d.scalar(value)
	if err != nil {
		return nil, err
	}
	constant := at(d, value, &cst.ConstantExpression{Value: text})
	switch kind {
	case "int":
		if value.Tag != "!!int" {
			return nil, d.errorf(value, "%q is not an integer", text)
		}
		constant.Const = cst.ConstInt
	case "bool":
		if value.Tag != "!!bool" {
			return nil, d.errorf(value, "%q is not a boolean", text)
		}
		constant.Const = cst.ConstBool
	default:
		constant.Const = cst.ConstString
	}
	return constant, nil
}

// structExpr decodes `struct: [{name: a, value: E}, b]`, where b is punned.
func (d *decoder) structExpr(pos, n *yaml.Node) (*cst.StructExpression, error) {
	items, err := d.sequence(n)
	if err != nil {
		return nil, err
	}
	expr := at(d, pos, &cst.StructExpression{})
	for _, item := range items {
		if item.Kind == yaml.ScalarNode {
			expr.Fields = append(expr.Fields, at(d, item, &cst.StructField{Name: item.Value}))
			continue
		}
		m, err := d.mapping(item)
		if err != nil {
			return nil, err
		}
		if err := d.only(m, "name", "value"); err != nil {
			return nil, err
		}
		nameNode, ok := m.get("name")
		if !ok {
			return nil, d.errorf(item, "struct field without name")
		}
		field := at(d, nameNode, &cst.StructField{Name: nameNode.Value})
		if value, ok := m.get("value"); ok {
			if field.Value, err = d.expr(value); err != nil {
				return nil, err
			}
		}
		expr.Fields = append(expr.Fields, field)
	}
	return expr, nil
}

// match decodes `match: E, arms: [{pattern: P, body: E}]`.
func (d *decoder) match(m *mapping, pos, value *yaml.Node) (*cst.MatchExpression, error) {
	scrutinee, err := d.expr(value)
	if err != nil {
		return nil, err
	}
	match := at(d, pos, &cst.MatchExpression{Value: scrutinee})
	armsNode, ok := m.get("arms")
	if !ok {
		return match, nil
	}
	arms, err := d.sequence(armsNode)
	if err != nil {
		return nil, err
	}
	for _, armNode := range arms {
		am, err := d.mapping(armNode)
		if err != nil {
			return nil, err
		}
		if err := d.only(am, "pattern", "body"); err != nil {
			return nil, err
		}
		patternNode, ok := am.get("pattern")
		if !ok {
			return nil, d.errorf(armNode, "match arm without pattern")
		}
		pattern, err := d.pattern(patternNode)
		if err != nil {
			return nil, err
		}
		body, err := d.required(am, "body")
		if err != nil {
			return nil, err
		}
		match.Arms = append(match.Arms, at(d, armNode, &cst.MatchArm{Pattern: pattern, Expr: body}))
	}
	return match, nil
}

// pattern decodes a name, a constant ({string: s} for strings), or {nested: P}.
func (d *decoder) pattern(n *yaml.Node) (cst.Pattern, error) {
	if n.Kind == yaml.ScalarNode {
		switch n.Tag {
		case "!!int", "!!bool":
			constant, err := d.constant(n.Tag[2:], n)
			if err != nil {
				return nil, err
			}
			return at(d, n, &cst.LiteralPattern{Value: constant}), nil
		case "!!null":
			return nil, d.errorf(n, "missing pattern")
		}
		return at(d, n, &cst.BindPattern{Name: n.Value}), nil
	}
	m, err := d.mapping(n)
	if err != nil {
		return nil, err
	}
	if len(m.keys) != 1 {
		return nil, d.errorf(n, "a pattern mapping must have exactly one key")
	}
	key := m.keys[0]
	switch key {
	case "int", "string", "bool":
		constant, err := d.constant(key, m.values[key])
		if err != nil {
			return nil, err
		}
		return at(d, m.keyNode(key), &cst.LiteralPattern{Value: constant}), nil
	case "nested":
		inner, err := d.pattern(m.values[key])
		if err != nil {
			return nil, err
		}
		return at(d, m.keyNode(key), &cst.NestedPattern{Pattern: inner}), nil
	}
	return nil, d.errorf(m.keyNode(key), "unknown pattern %q", key)
}

// typeExpr decodes Int and M.T as references, lowercase names as type variables,
// and {params: [...], returns: T} as function types.
func (d *decoder) typeExpr(n *yaml.Node) (cst.TypeExpr, error) {
	if n.Kind == yaml.ScalarNode {
		if isNull(n) {
			return nil, d.errorf(n, "missing type")
		}
		path, name := splitPath(n.Value)
		if len(path) > 0 || isTypeName(name) {
			return at(d, n, &cst.ReferenceTypeExpression{ModulePath: path, Name: name}), nil
		}
		return at(d, n, &cst.VarTypeExpression{Name: name}), nil
	}
	m, err := d.mapping(n)
	if err != nil {
		return nil, err
	}
	if err := d.only(m, "params", "returns"); err != nil {
		return nil, err
	}
	arrow := at(d, n, &cst.ArrowTypeExpression{})
	if params, ok := m.get("params"); ok && !isNull(params) {
		items, err := d.sequence(params)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			param, err := d.typeExpr(item)
			if err != nil {
				return nil, err
			}
			arrow.Params = append(arrow.Params, param)
		}
	}
	ret, ok := m.get("returns")
	if !ok {
		return nil, d.errorf(n, "function type without returns")
	}
	if arrow.Return, err = d.typeExpr(ret); err != nil {
		return nil, err
	}
	return arrow, nil
}
