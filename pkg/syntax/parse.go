package syntax

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// ErrParse is returned when the parser produces no tree at all. Recoverable
// syntax errors do not fail parsing; the affected regions become BadStmt and
// BadExpr nodes.
var ErrParse = errors.New("parse failed")

// ParseFile reads and parses a JavaScript file.
func ParseFile(ctx context.Context, path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return Parse(ctx, path, content)
}

// Parse parses JavaScript source and resolves its bindings.
func Parse(ctx context.Context, path string, src []byte) (*File, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("%w: %s: no tree", ErrParse, path)
	}
	defer tree.Close()

	root := tree.RootNode()
	c := &converter{src: src}
	body := c.stmts(root)

	file := &File{
		Path:   path,
		Source: src,
		Errors: c.errors,
	}
	top := &Function{
		Name: "<program>",
		Body: body,
		Loc:  c.loc(root),
	}
	newResolver(file).resolveFile(top)
	return file, nil
}

type converter struct {
	src    []byte
	errors int
}

func (c *converter) loc(n *sitter.Node) Loc {
	return Loc{Start: c.pos(n.StartPoint(), n.StartByte()), End: c.pos(n.EndPoint(), n.EndByte())}
}

func (c *converter) pos(p sitter.Point, offset uint32) Position {
	return Position{Line: int(p.Row) + 1, Column: int(p.Column) + 1, Offset: int(offset)}
}

func (c *converter) text(n *sitter.Node) string {
	return n.Content(c.src)
}

// named returns the named children of n, comments excluded.
func (c *converter) named(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// token finds the first anonymous child whose type is one of types.
func (c *converter) token(n *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || child.IsNamed() {
			continue
		}
		for _, t := range types {
			if child.Type() == t {
				return child
			}
		}
	}
	return nil
}

func (c *converter) hasChild(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil && child.Type() == typ {
			return true
		}
	}
	return false
}

func (c *converter) stmts(n *sitter.Node) []Stmt {
	var out []Stmt
	for _, child := range c.named(n) {
		if s := c.stmt(child); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (c *converter) block(n *sitter.Node) *BlockStmt {
	if n == nil {
		return nil
	}
	if n.Type() != "statement_block" {
		s := c.stmt(n)
		b := &BlockStmt{Loc: c.loc(n)}
		if s != nil {
			b.List = []Stmt{s}
		}
		return b
	}
	return &BlockStmt{Loc: c.loc(n), List: c.stmts(n)}
}

func (c *converter) stmt(n *sitter.Node) Stmt {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "comment", "hash_bang_line":
		return nil
	case "expression_statement":
		inner := c.named(n)
		if len(inner) == 0 {
			return &EmptyStmt{Loc: c.loc(n)}
		}
		return &ExprStmt{Loc: c.loc(n), X: c.exprList(inner)}
	case "variable_declaration":
		return c.varDecl(n, DeclVar)
	case "lexical_declaration":
		kind := DeclLet
		if c.token(n, "const") != nil {
			kind = DeclConst
		}
		return c.varDecl(n, kind)
	case "statement_block":
		return c.block(n)
	case "if_statement":
		s := &IfStmt{
			Loc:  c.loc(n),
			Test: c.condition(n.ChildByFieldName("condition")),
			Then: c.stmt(n.ChildByFieldName("consequence")),
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			if alt.Type() == "else_clause" {
				if inner := c.named(alt); len(inner) > 0 {
					s.Else = c.stmt(inner[0])
				}
			} else {
				s.Else = c.stmt(alt)
			}
		}
		return s
	case "while_statement":
		return &WhileStmt{
			Loc:  c.loc(n),
			Test: c.condition(n.ChildByFieldName("condition")),
			Body: c.stmt(n.ChildByFieldName("body")),
		}
	case "do_statement":
		return &DoWhileStmt{
			Loc:  c.loc(n),
			Body: c.stmt(n.ChildByFieldName("body")),
			Test: c.condition(n.ChildByFieldName("condition")),
		}
	case "for_statement":
		return c.forStmt(n)
	case "for_in_statement":
		return c.forInStmt(n)
	case "return_statement":
		s := &ReturnStmt{Loc: c.loc(n)}
		if inner := c.named(n); len(inner) > 0 {
			s.Result = c.exprList(inner)
		}
		return s
	case "break_statement":
		return &BreakStmt{Loc: c.loc(n), Label: c.label(n)}
	case "continue_statement":
		return &ContinueStmt{Loc: c.loc(n), Label: c.label(n)}
	case "throw_statement":
		s := &ThrowStmt{Loc: c.loc(n)}
		if inner := c.named(n); len(inner) > 0 {
			s.X = c.exprList(inner)
		}
		return s
	case "try_statement":
		return c.tryStmt(n)
	case "switch_statement":
		return c.switchStmt(n)
	case "labeled_statement":
		s := &LabeledStmt{Loc: c.loc(n), Body: c.stmt(n.ChildByFieldName("body"))}
		if l := n.ChildByFieldName("label"); l != nil {
			s.Label = c.text(l)
		}
		return s
	case "empty_statement", "debugger_statement":
		return &EmptyStmt{Loc: c.loc(n)}
	case "function_declaration", "generator_function_declaration":
		return &FuncDecl{Loc: c.loc(n), Func: c.function(n)}
	case "class_declaration":
		return &ClassDecl{Loc: c.loc(n), Class: c.class(n)}
	case "import_statement":
		return c.importDecl(n)
	case "export_statement":
		if decl := n.ChildByFieldName("declaration"); decl != nil {
			return c.stmt(decl)
		}
		if value := n.ChildByFieldName("value"); value != nil {
			return &ExprStmt{Loc: c.loc(n), X: c.expr(value)}
		}
		return &EmptyStmt{Loc: c.loc(n)}
	}
	return c.bad(n)
}

func (c *converter) bad(n *sitter.Node) *BadStmt {
	if n.Type() == "ERROR" || n.IsMissing() {
		c.errors++
	}
	s := &BadStmt{Loc: c.loc(n), Kind: n.Type()}
	c.collectIdents(n, &s.Idents)
	return s
}

func (c *converter) collectIdents(n *sitter.Node, out *[]*Ident) {
	switch n.Type() {
	case "identifier", "shorthand_property_identifier", "shorthand_property_identifier_pattern":
		*out = append(*out, &Ident{Loc: c.loc(n), Name: c.text(n)})
		return
	}
	for _, child := range c.named(n) {
		c.collectIdents(child, out)
	}
}

func (c *converter) label(n *sitter.Node) string {
	if l := n.ChildByFieldName("label"); l != nil {
		return c.text(l)
	}
	for _, child := range c.named(n) {
		if child.Type() == "statement_identifier" {
			return c.text(child)
		}
	}
	return ""
}

func (c *converter) varDecl(n *sitter.Node, kind DeclKind) *VarDecl {
	d := &VarDecl{Loc: c.loc(n), Kind: kind}
	for _, child := range c.named(n) {
		if child.Type() != "variable_declarator" {
			continue
		}
		decl := &Declarator{Loc: c.loc(child)}
		if name := child.ChildByFieldName("name"); name != nil {
			decl.Target = c.pattern(name)
		}
		if value := child.ChildByFieldName("value"); value != nil {
			decl.Init = c.expr(value)
			if id, ok := decl.Target.(*Ident); ok {
				nameFunction(decl.Init, id.Name)
			}
		}
		d.Decls = append(d.Decls, decl)
	}
	return d
}

// condition converts the test of a branch or loop, dropping the mandatory
// parentheses of the statement syntax.
func (c *converter) condition(n *sitter.Node) Expr {
	if n == nil {
		return nil
	}
	if n.Type() == "parenthesized_expression" {
		inner := c.named(n)
		if len(inner) == 0 {
			return nil
		}
		return c.exprList(inner)
	}
	return c.expr(n)
}

func (c *converter) forStmt(n *sitter.Node) *ForStmt {
	s := &ForStmt{Loc: c.loc(n), Body: c.stmt(n.ChildByFieldName("body"))}
	if init := n.ChildByFieldName("initializer"); init != nil {
		switch init.Type() {
		case "empty_statement", ";":
		case "variable_declaration", "lexical_declaration", "expression_statement":
			s.Init = c.stmt(init)
		default:
			s.Init = &ExprStmt{Loc: c.loc(init), X: c.expr(init)}
		}
	}
	if cond := n.ChildByFieldName("condition"); cond != nil {
		switch cond.Type() {
		case "empty_statement", ";":
		case "expression_statement":
			if inner := c.named(cond); len(inner) > 0 {
				s.Test = c.exprList(inner)
			}
		default:
			s.Test = c.expr(cond)
		}
	}
	if inc := n.ChildByFieldName("increment"); inc != nil {
		s.Update = c.expr(inc)
	}
	return s
}

func (c *converter) forInStmt(n *sitter.Node) *ForInStmt {
	s := &ForInStmt{
		Loc:  c.loc(n),
		Of:   c.token(n, "of") != nil,
		Body: c.stmt(n.ChildByFieldName("body")),
	}
	if right := n.ChildByFieldName("right"); right != nil {
		s.Right = c.expr(right)
	}
	left := n.ChildByFieldName("left")
	if left == nil {
		return s
	}
	kind := DeclKind("")
	if k := n.ChildByFieldName("kind"); k != nil {
		kind = DeclKind(c.text(k))
	} else if t := c.token(n, "var", "let", "const"); t != nil {
		kind = DeclKind(t.Type())
	}
	if kind != "" {
		s.Left = &VarDecl{
			Loc:   c.loc(left),
			Kind:  kind,
			Decls: []*Declarator{{Loc: c.loc(left), Target: c.pattern(left)}},
		}
	} else {
		s.Left = c.pattern(left)
	}
	return s
}

func (c *converter) tryStmt(n *sitter.Node) *TryStmt {
	s := &TryStmt{Loc: c.loc(n), Body: c.block(n.ChildByFieldName("body"))}
	if handler := n.ChildByFieldName("handler"); handler != nil {
		if param := handler.ChildByFieldName("parameter"); param != nil {
			s.Param = c.pattern(param)
		}
		s.Handler = c.block(handler.ChildByFieldName("body"))
		if s.Handler == nil {
			s.Handler = &BlockStmt{Loc: c.loc(handler)}
		}
	}
	if fin := n.ChildByFieldName("finalizer"); fin != nil {
		s.Finally = c.block(fin.ChildByFieldName("body"))
		if s.Finally == nil {
			s.Finally = &BlockStmt{Loc: c.loc(fin)}
		}
	}
	return s
}

func (c *converter) switchStmt(n *sitter.Node) *SwitchStmt {
	s := &SwitchStmt{Loc: c.loc(n), Tag: c.condition(n.ChildByFieldName("value"))}
	body := n.ChildByFieldName("body")
	if body == nil {
		return s
	}
	for _, child := range c.named(body) {
		clause := &CaseClause{Loc: c.loc(child)}
		value := child.ChildByFieldName("value")
		switch child.Type() {
		case "switch_case":
			if value != nil {
				clause.Test = c.expr(value)
			}
		case "switch_default":
		default:
			continue
		}
		for _, st := range c.named(child) {
			if value != nil && st.StartByte() == value.StartByte() && st.EndByte() == value.EndByte() {
				continue
			}
			if conv := c.stmt(st); conv != nil {
				clause.Body = append(clause.Body, conv)
			}
		}
		s.Cases = append(s.Cases, clause)
	}
	return s
}

func (c *converter) importDecl(n *sitter.Node) *ImportDecl {
	d := &ImportDecl{Loc: c.loc(n)}
	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		switch node.Type() {
		case "import_specifier":
			target := node.ChildByFieldName("alias")
			if target == nil {
				target = node.ChildByFieldName("name")
			}
			if target != nil {
				d.Names = append(d.Names, &Ident{Loc: c.loc(target), Name: c.text(target)})
			}
			return
		case "identifier":
			d.Names = append(d.Names, &Ident{Loc: c.loc(node), Name: c.text(node)})
			return
		case "string":
			return
		}
		for _, child := range c.named(node) {
			walk(child)
		}
	}
	for _, child := range c.named(n) {
		if child.Type() == "import_clause" {
			walk(child)
		}
	}
	return d
}

// exprList converts a run of sibling expressions, as found in parenthesized
// and statement positions, into one expression.
func (c *converter) exprList(nodes []*sitter.Node) Expr {
	if len(nodes) == 1 {
		return c.expr(nodes[0])
	}
	seq := &SequenceExpr{}
	for _, n := range nodes {
		seq.List = append(seq.List, c.expr(n))
	}
	seq.Loc = Loc{Start: seq.List[0].Span().Start, End: seq.List[len(seq.List)-1].Span().End}
	return seq
}

func (c *converter) expr(n *sitter.Node) Expr {
	if n == nil {
		return nil
	}
	loc := c.loc(n)
	switch n.Type() {
	case "identifier", "shorthand_property_identifier":
		return &Ident{Loc: loc, Name: c.text(n)}
	case "null":
		return &Literal{Loc: loc, Kind: LitNull, Raw: "null"}
	case "undefined":
		return &Literal{Loc: loc, Kind: LitUndefined, Raw: "undefined"}
	case "true", "false":
		return &Literal{Loc: loc, Kind: LitBool, Raw: n.Type()}
	case "number":
		return &Literal{Loc: loc, Kind: LitNumber, Raw: c.text(n)}
	case "string":
		return &Literal{Loc: loc, Kind: LitString, Raw: c.text(n)}
	case "regex":
		return &Literal{Loc: loc, Kind: LitRegex, Raw: c.text(n)}
	case "template_string":
		lit := &Literal{Loc: loc, Kind: LitTemplate, Raw: c.text(n)}
		for _, part := range c.named(n) {
			if part.Type() == "template_substitution" {
				if inner := c.named(part); len(inner) > 0 {
					lit.Parts = append(lit.Parts, c.exprList(inner))
				}
			}
		}
		return lit
	case "this":
		return &ThisExpr{Loc: loc}
	case "parenthesized_expression":
		inner := c.named(n)
		if len(inner) == 0 {
			return &BadExpr{Loc: loc, Kind: n.Type()}
		}
		return &ParenExpr{Loc: loc, X: c.exprList(inner)}
	case "sequence_expression":
		seq := &SequenceExpr{Loc: loc}
		c.flattenSequence(n, &seq.List)
		return seq
	case "object":
		return c.object(n)
	case "array":
		arr := &ArrayLit{Loc: loc}
		for _, el := range c.named(n) {
			arr.Elems = append(arr.Elems, c.expr(el))
		}
		return arr
	case "function", "function_expression", "arrow_function", "generator_function":
		return c.function(n)
	case "class":
		return c.class(n)
	case "member_expression":
		m := &MemberExpr{
			Loc:      loc,
			Object:   c.expr(n.ChildByFieldName("object")),
			Optional: c.hasChild(n, "optional_chain") || c.hasChild(n, "?."),
		}
		if prop := n.ChildByFieldName("property"); prop != nil {
			m.Property = &Ident{Loc: c.loc(prop), Name: c.text(prop)}
		}
		return m
	case "subscript_expression":
		return &MemberExpr{
			Loc:      loc,
			Object:   c.expr(n.ChildByFieldName("object")),
			Property: c.expr(n.ChildByFieldName("index")),
			Computed: true,
			Optional: c.hasChild(n, "optional_chain") || c.hasChild(n, "?."),
		}
	case "call_expression":
		call := &CallExpr{
			Loc:      loc,
			Callee:   c.expr(n.ChildByFieldName("function")),
			Optional: c.hasChild(n, "optional_chain") || c.hasChild(n, "?."),
		}
		call.Args = c.args(n.ChildByFieldName("arguments"))
		return call
	case "new_expression":
		call := &CallExpr{Loc: loc, Callee: c.expr(n.ChildByFieldName("constructor")), New: true}
		call.Args = c.args(n.ChildByFieldName("arguments"))
		return call
	case "assignment_expression":
		a := &AssignExpr{
			Loc:    loc,
			Op:     "=",
			Target: c.pattern(n.ChildByFieldName("left")),
			Value:  c.expr(n.ChildByFieldName("right")),
		}
		if id, ok := a.Target.(*Ident); ok {
			nameFunction(a.Value, id.Name)
		}
		return a
	case "augmented_assignment_expression":
		a := &AssignExpr{
			Loc:    loc,
			Target: c.expr(n.ChildByFieldName("left")),
			Value:  c.expr(n.ChildByFieldName("right")),
		}
		if op := n.ChildByFieldName("operator"); op != nil {
			a.Op = c.text(op)
		}
		return a
	case "binary_expression":
		op := n.ChildByFieldName("operator")
		if op == nil {
			return c.badExpr(n)
		}
		x, y := c.expr(n.ChildByFieldName("left")), c.expr(n.ChildByFieldName("right"))
		opText := c.text(op)
		opPos := c.pos(op.StartPoint(), op.StartByte())
		switch opText {
		case "&&", "||", "??":
			return &LogicalExpr{Loc: loc, Op: opText, OpPos: opPos, X: x, Y: y}
		}
		return &BinaryExpr{Loc: loc, Op: opText, OpPos: opPos, X: x, Y: y}
	case "ternary_expression":
		t := &ConditionalExpr{
			Loc:  loc,
			Test: c.expr(n.ChildByFieldName("condition")),
			Then: c.expr(n.ChildByFieldName("consequence")),
			Else: c.expr(n.ChildByFieldName("alternative")),
		}
		if q := c.token(n, "?"); q != nil {
			t.QuestionPos = c.pos(q.StartPoint(), q.StartByte())
		} else {
			t.QuestionPos = loc.Start
		}
		return t
	case "unary_expression":
		u := &UnaryExpr{Loc: loc, X: c.expr(n.ChildByFieldName("argument"))}
		if op := n.ChildByFieldName("operator"); op != nil {
			u.Op = c.text(op)
		}
		return u
	case "update_expression":
		u := &UpdateExpr{Loc: loc, X: c.expr(n.ChildByFieldName("argument"))}
		if op := n.ChildByFieldName("operator"); op != nil {
			u.Op = c.text(op)
			u.Prefix = op.StartByte() == n.StartByte()
		}
		return u
	case "await_expression":
		u := &UnaryExpr{Loc: loc, Op: "await"}
		if inner := c.named(n); len(inner) > 0 {
			u.X = c.expr(inner[0])
		}
		if u.X == nil {
			return c.badExpr(n)
		}
		return u
	case "spread_element":
		if inner := c.named(n); len(inner) > 0 {
			return &SpreadExpr{Loc: loc, X: c.expr(inner[0])}
		}
	case "object_pattern", "array_pattern", "assignment_pattern", "rest_pattern":
		return c.pattern(n)
	}
	return c.badExpr(n)
}

func (c *converter) badExpr(n *sitter.Node) *BadExpr {
	if n.Type() == "ERROR" || n.IsMissing() {
		c.errors++
	}
	b := &BadExpr{Loc: c.loc(n), Kind: n.Type()}
	for _, child := range c.named(n) {
		switch child.Type() {
		case "property_identifier", "statement_identifier", "private_property_identifier":
			continue
		}
		if e := c.expr(child); e != nil {
			b.Children = append(b.Children, e)
		}
	}
	return b
}

func (c *converter) flattenSequence(n *sitter.Node, out *[]Expr) {
	for _, child := range c.named(n) {
		if child.Type() == "sequence_expression" {
			c.flattenSequence(child, out)
			continue
		}
		*out = append(*out, c.expr(child))
	}
}

func (c *converter) args(n *sitter.Node) []Expr {
	if n == nil {
		return nil
	}
	if n.Type() != "arguments" {
		// tagged template
		return []Expr{c.expr(n)}
	}
	var out []Expr
	for _, a := range c.named(n) {
		out = append(out, c.expr(a))
	}
	return out
}

func (c *converter) object(n *sitter.Node) *ObjectLit {
	obj := &ObjectLit{Loc: c.loc(n)}
	for _, child := range c.named(n) {
		p := &Property{Loc: c.loc(child)}
		switch child.Type() {
		case "pair":
			p.Key, p.Computed = c.propertyKey(child.ChildByFieldName("key"))
			p.Value = c.expr(child.ChildByFieldName("value"))
			if id, ok := p.Key.(*Ident); ok && !p.Computed {
				nameFunction(p.Value, id.Name)
			}
		case "shorthand_property_identifier":
			p.Key = &Ident{Loc: c.loc(child), Name: c.text(child)}
			p.Value = &Ident{Loc: c.loc(child), Name: c.text(child)}
		case "method_definition":
			p.Key, p.Computed = c.propertyKey(child.ChildByFieldName("name"))
			p.Value = c.function(child)
		case "spread_element":
			p.Spread = true
			if inner := c.named(child); len(inner) > 0 {
				p.Value = c.expr(inner[0])
			}
		default:
			continue
		}
		obj.Props = append(obj.Props, p)
	}
	return obj
}

// propertyKey converts an object key. Plain names become identifiers with
// no binding.
func (c *converter) propertyKey(n *sitter.Node) (Expr, bool) {
	if n == nil {
		return nil, false
	}
	switch n.Type() {
	case "computed_property_name":
		inner := c.named(n)
		if len(inner) == 0 {
			return nil, true
		}
		return c.exprList(inner), true
	case "property_identifier", "private_property_identifier":
		return &Ident{Loc: c.loc(n), Name: c.text(n)}, false
	}
	return c.expr(n), false
}

func (c *converter) function(n *sitter.Node) *FuncLit {
	fn := &FuncLit{
		Loc:    c.loc(n),
		Arrow:  n.Type() == "arrow_function",
		Method: n.Type() == "method_definition",
	}
	if name := n.ChildByFieldName("name"); name != nil {
		if fn.Method {
			fn.hint = c.text(name)
		} else {
			fn.Name = &Ident{Loc: c.loc(name), Name: c.text(name)}
		}
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		for _, p := range c.named(params) {
			fn.Params = append(fn.Params, c.pattern(p))
		}
	} else if param := n.ChildByFieldName("parameter"); param != nil {
		fn.Params = append(fn.Params, c.pattern(param))
	}
	body := n.ChildByFieldName("body")
	switch {
	case body == nil:
		fn.Body = &BlockStmt{Loc: fn.Loc}
	case body.Type() == "statement_block":
		fn.Body = c.block(body)
	default:
		result := c.expr(body)
		fn.ExprBody = true
		fn.Body = &BlockStmt{
			Loc:  c.loc(body),
			List: []Stmt{&ReturnStmt{Loc: c.loc(body), Result: result}},
		}
	}
	return fn
}

func (c *converter) class(n *sitter.Node) *ClassLit {
	cl := &ClassLit{Loc: c.loc(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		cl.Name = &Ident{Loc: c.loc(name), Name: c.text(name)}
	}
	for _, child := range c.named(n) {
		if child.Type() == "class_heritage" {
			if inner := c.named(child); len(inner) > 0 {
				cl.Super = c.expr(inner[0])
			}
		}
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return cl
	}
	for _, member := range c.named(body) {
		switch member.Type() {
		case "method_definition":
			cl.Members = append(cl.Members, c.function(member))
		case "field_definition", "public_field_definition":
			if value := member.ChildByFieldName("value"); value != nil {
				cl.Members = append(cl.Members, c.expr(value))
			}
		case "class_static_block":
			fn := &FuncLit{Loc: c.loc(member), Method: true, hint: "static"}
			fn.Body = c.block(member.ChildByFieldName("body"))
			if fn.Body == nil {
				fn.Body = &BlockStmt{Loc: fn.Loc}
			}
			cl.Members = append(cl.Members, fn)
		}
	}
	return cl
}

// pattern converts a binding or assignment target.
func (c *converter) pattern(n *sitter.Node) Expr {
	if n == nil {
		return nil
	}
	loc := c.loc(n)
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return &Ident{Loc: loc, Name: c.text(n)}
	case "object_pattern":
		p := &Pattern{Loc: loc}
		for _, child := range c.named(n) {
			switch child.Type() {
			case "pair_pattern":
				p.Elems = append(p.Elems, c.pattern(child.ChildByFieldName("value")))
			case "object_assignment_pattern":
				p.Elems = append(p.Elems, &AssignExpr{
					Loc:    c.loc(child),
					Op:     "=",
					Target: c.pattern(child.ChildByFieldName("left")),
					Value:  c.expr(child.ChildByFieldName("right")),
				})
			default:
				p.Elems = append(p.Elems, c.pattern(child))
			}
		}
		return p
	case "array_pattern":
		p := &Pattern{Loc: loc}
		for _, child := range c.named(n) {
			p.Elems = append(p.Elems, c.pattern(child))
		}
		return p
	case "assignment_pattern":
		return &AssignExpr{
			Loc:    loc,
			Op:     "=",
			Target: c.pattern(n.ChildByFieldName("left")),
			Value:  c.expr(n.ChildByFieldName("right")),
		}
	case "rest_pattern":
		if inner := c.named(n); len(inner) > 0 {
			return &SpreadExpr{Loc: loc, X: c.pattern(inner[0])}
		}
		return c.badExpr(n)
	}
	return c.expr(n)
}

// nameFunction records the name a function literal is assigned to, used
// when the literal itself is anonymous.
func nameFunction(e Expr, name string) {
	if fn, ok := e.(*FuncLit); ok && fn.Name == nil && fn.hint == "" {
		fn.hint = name
	}
}

// DisplayName is the name used to refer to fn in reports.
func (fn *FuncLit) DisplayName() string {
	switch {
	case fn.Name != nil:
		return fn.Name.Name
	case fn.hint != "":
		return fn.hint
	}
	return "<anonymous>"
}

// Text returns the source text covered by n.
func (f *File) Text(n Node) string {
	loc := n.Span()
	if loc.Start.Offset < 0 || loc.End.Offset > len(f.Source) || loc.Start.Offset > loc.End.Offset {
		return ""
	}
	return strings.TrimSpace(string(f.Source[loc.Start.Offset:loc.End.Offset]))
}
