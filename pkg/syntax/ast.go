// Package syntax is a read-only view over parsed JavaScript.
//
// Statements and expressions form a closed set of variants: every kind
// implements Stmt or Expr through unexported marker methods, so the set can
// only grow inside this package and consumers handle it with exhaustive type
// switches.
package syntax

import "fmt"

// Position is a location in source. Line and Column are 1-based, Offset is
// the 0-based byte offset.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before reports whether p comes strictly before q in the same file.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

// Loc is the source range of a node. It is embedded in every node.
type Loc struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Span returns the range covered by the node.
func (l Loc) Span() Loc { return l }

// Node is implemented by every statement and expression.
type Node interface {
	Span() Loc
}

// Stmt is a statement.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// DeclKind is the keyword of a variable declaration.
type DeclKind string

const (
	DeclVar   DeclKind = "var"
	DeclLet   DeclKind = "let"
	DeclConst DeclKind = "const"
)

type (
	// VarDecl is a var, let or const declaration.
	VarDecl struct {
		Loc
		Kind  DeclKind
		Decls []*Declarator
	}

	// Declarator is one `target = init` entry of a VarDecl. Target is an
	// *Ident or a *Pattern; Init may be nil.
	Declarator struct {
		Loc
		Target Expr
		Init   Expr
	}

	ExprStmt struct {
		Loc
		X Expr
	}

	BlockStmt struct {
		Loc
		List []Stmt
	}

	IfStmt struct {
		Loc
		Test Expr
		Then Stmt
		Else Stmt // nil when absent
	}

	WhileStmt struct {
		Loc
		Test Expr
		Body Stmt
	}

	DoWhileStmt struct {
		Loc
		Body Stmt
		Test Expr
	}

	// ForStmt is a C-style for loop. Init is a *VarDecl, an *ExprStmt or nil.
	ForStmt struct {
		Loc
		Init   Stmt
		Test   Expr
		Update Expr
		Body   Stmt
	}

	// ForInStmt covers both for-in and for-of. Left is a *VarDecl without
	// initializers or an assignment target expression.
	ForInStmt struct {
		Loc
		Of    bool
		Left  Node
		Right Expr
		Body  Stmt
	}

	ReturnStmt struct {
		Loc
		Result Expr
	}

	BreakStmt struct {
		Loc
		Label string
	}

	ContinueStmt struct {
		Loc
		Label string
	}

	ThrowStmt struct {
		Loc
		X Expr
	}

	// TryStmt has a Handler, a Finally, or both. Param is the catch binding
	// and may be nil.
	TryStmt struct {
		Loc
		Body    *BlockStmt
		Param   Expr
		Handler *BlockStmt
		Finally *BlockStmt
	}

	SwitchStmt struct {
		Loc
		Tag   Expr
		Cases []*CaseClause
	}

	// CaseClause is a case of a switch; Test is nil for default.
	CaseClause struct {
		Loc
		Test Expr
		Body []Stmt
	}

	LabeledStmt struct {
		Loc
		Label string
		Body  Stmt
	}

	EmptyStmt struct {
		Loc
	}

	FuncDecl struct {
		Loc
		Func *FuncLit
	}

	ClassDecl struct {
		Loc
		Class *ClassLit
	}

	// ImportDecl declares the local names bound by an import statement.
	ImportDecl struct {
		Loc
		Names []*Ident
	}

	// BadStmt stands for a construct that is not modeled, such as a with
	// statement or a region the parser could not recover. Idents lists every
	// identifier occurring inside it.
	BadStmt struct {
		Loc
		Kind   string
		Idents []*Ident
	}
)

func (*VarDecl) stmtNode()      {}
func (*ExprStmt) stmtNode()     {}
func (*BlockStmt) stmtNode()    {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*DoWhileStmt) stmtNode()  {}
func (*ForStmt) stmtNode()      {}
func (*ForInStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*ThrowStmt) stmtNode()    {}
func (*TryStmt) stmtNode()      {}
func (*SwitchStmt) stmtNode()   {}
func (*LabeledStmt) stmtNode()  {}
func (*EmptyStmt) stmtNode()    {}
func (*FuncDecl) stmtNode()     {}
func (*ClassDecl) stmtNode()    {}
func (*ImportDecl) stmtNode()   {}
func (*BadStmt) stmtNode()      {}

// LitKind classifies literals.
type LitKind int

const (
	LitNull LitKind = iota
	LitUndefined
	LitBool
	LitNumber
	LitString
	LitTemplate
	LitRegex
)

type (
	// Ident is an identifier reference or declaration. Binding is filled in
	// by the resolver; it is nil only for property names.
	Ident struct {
		Loc
		Name    string
		Binding *Binding
	}

	// Literal is a primitive literal. Raw is the source text; for templates
	// Parts holds the substituted expressions.
	Literal struct {
		Loc
		Kind  LitKind
		Raw   string
		Parts []Expr
	}

	ObjectLit struct {
		Loc
		Props []*Property
	}

	// Property is one entry of an object literal. Key is nil for spreads.
	Property struct {
		Loc
		Key      Expr
		Value    Expr
		Computed bool
		Spread   bool
	}

	ArrayLit struct {
		Loc
		Elems []Expr // nil entries are holes
	}

	// FuncLit is any function: declaration, expression, arrow or method.
	// Arrow functions with an expression body get a synthesized block
	// holding a single return.
	FuncLit struct {
		Loc
		Name     *Ident
		Params   []Expr
		Body     *BlockStmt
		Arrow    bool
		Method   bool
		ExprBody bool

		hint string
	}

	ClassLit struct {
		Loc
		Name    *Ident
		Super   Expr
		Members []Expr // *FuncLit methods and field initializers
	}

	// MemberExpr is `x.p` or `x[k]`. Property is an *Ident with a nil
	// binding when not Computed.
	MemberExpr struct {
		Loc
		Object   Expr
		Property Expr
		Computed bool
		Optional bool
	}

	CallExpr struct {
		Loc
		Callee   Expr
		Args     []Expr
		New      bool
		Optional bool
	}

	// AssignExpr is `=` or a compound assignment; Op holds the operator.
	AssignExpr struct {
		Loc
		Op     string
		Target Expr
		Value  Expr
	}

	BinaryExpr struct {
		Loc
		Op    string
		OpPos Position
		X, Y  Expr
	}

	// LogicalExpr is `&&`, `||` or `??`.
	LogicalExpr struct {
		Loc
		Op    string
		OpPos Position
		X, Y  Expr
	}

	ConditionalExpr struct {
		Loc
		Test        Expr
		Then        Expr
		Else        Expr
		QuestionPos Position
	}

	UnaryExpr struct {
		Loc
		Op string
		X  Expr
	}

	UpdateExpr struct {
		Loc
		Op     string
		Prefix bool
		X      Expr
	}

	ParenExpr struct {
		Loc
		X Expr
	}

	SequenceExpr struct {
		Loc
		List []Expr
	}

	ThisExpr struct {
		Loc
	}

	SpreadExpr struct {
		Loc
		X Expr
	}

	// Pattern is a destructuring target. Elems holds identifiers, nested
	// patterns and default-value assignments.
	Pattern struct {
		Loc
		Elems []Expr
	}

	// BadExpr is an expression kind that is not modeled. Children keeps the
	// sub-expressions that could still be converted.
	BadExpr struct {
		Loc
		Kind     string
		Children []Expr
	}
)

func (*Ident) exprNode()           {}
func (*Literal) exprNode()         {}
func (*ObjectLit) exprNode()       {}
func (*ArrayLit) exprNode()        {}
func (*FuncLit) exprNode()         {}
func (*ClassLit) exprNode()        {}
func (*MemberExpr) exprNode()      {}
func (*CallExpr) exprNode()        {}
func (*AssignExpr) exprNode()      {}
func (*BinaryExpr) exprNode()      {}
func (*LogicalExpr) exprNode()     {}
func (*ConditionalExpr) exprNode() {}
func (*UnaryExpr) exprNode()       {}
func (*UpdateExpr) exprNode()      {}
func (*ParenExpr) exprNode()       {}
func (*SequenceExpr) exprNode()    {}
func (*ThisExpr) exprNode()        {}
func (*SpreadExpr) exprNode()      {}
func (*Pattern) exprNode()         {}
func (*BadExpr) exprNode()         {}

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}

// IsNullish reports whether e is the literal null or undefined.
func IsNullish(e Expr) bool {
	lit, ok := Unparen(e).(*Literal)
	return ok && (lit.Kind == LitNull || lit.Kind == LitUndefined)
}
