package syntax

// BindingKind says how a binding was introduced.
type BindingKind int

const (
	KindVar BindingKind = iota
	KindLet
	KindConst
	KindParam
	KindFunction
	KindClass
	KindCatch
	KindImport
	// KindFree is a name with no declaration in scope.
	KindFree
	// KindBuiltin is an implicit binding of the language such as eval or a
	// function's arguments object.
	KindBuiltin
)

var kindNames = map[BindingKind]string{
	KindVar:      "variable",
	KindLet:      "variable",
	KindConst:    "constant",
	KindParam:    "parameter",
	KindFunction: "function",
	KindClass:    "class",
	KindCatch:    "parameter",
	KindImport:   "import",
	KindFree:     "global",
	KindBuiltin:  "builtin",
}

func (k BindingKind) String() string {
	return kindNames[k]
}

// UsageKind classifies one occurrence of a binding.
type UsageKind int

const (
	UsageDeclaration UsageKind = iota
	UsageRead
	UsageWrite
	UsageReadWrite
)

// Usage is one occurrence of a binding in source.
type Usage struct {
	Ident *Ident
	Kind  UsageKind
}

// IsWrite reports whether the usage may change the binding's value.
func (u Usage) IsWrite() bool {
	return u.Kind == UsageWrite || u.Kind == UsageReadWrite
}

// Binding is the stable identity of a declared (or free) name. Two
// declarations with the same name in different scopes are different
// bindings. IDs are unique within a File and grow in resolution order.
type Binding struct {
	ID     int
	Name   string
	Kind   BindingKind
	Decl   *Ident // nil for free and builtin bindings
	Usages []Usage

	// Owner is the function whose body declares the binding; nil for free
	// and builtin bindings.
	Owner *Function
}

// Builtin reports whether the binding is implicit rather than declared in
// source.
func (b *Binding) Builtin() bool {
	return b.Kind == KindBuiltin
}

// Declared reports whether the binding has a declaration in source.
func (b *Binding) Declared() bool {
	return b.Decl != nil
}

// Declarations returns the declaring usages of the binding.
func (b *Binding) Declarations() []Usage {
	var out []Usage
	for _, u := range b.Usages {
		if u.Kind == UsageDeclaration {
			out = append(out, u)
		}
	}
	return out
}

// Function is one unit of analysis: a function literal or the top level of
// a file.
type Function struct {
	Name string
	Lit  *FuncLit // nil for the top level
	Body []Stmt
	Loc

	// Params are the bindings of the formal parameters in order.
	Params []*Binding
	// Locals are the bindings declared anywhere in Body outside nested
	// functions, in declaration order.
	Locals []*Binding
	// Parent is the enclosing function, nil for the top level.
	Parent *Function
}

// IsTopLevel reports whether f is the script body rather than a function.
func (f *Function) IsTopLevel() bool {
	return f.Lit == nil
}

// File is a parsed source file.
type File struct {
	Path   string
	Source []byte

	// TopLevel holds the script body; Functions lists TopLevel followed by
	// every nested function in source order.
	TopLevel  *Function
	Functions []*Function

	// Bindings lists every binding of the file by ID.
	Bindings []*Binding

	// Errors counts regions the parser had to recover from.
	Errors int

	byLit map[*FuncLit]*Function
}

// Function returns the first function with the given name, or nil.
func (f *File) Function(name string) *Function {
	for _, fn := range f.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// Free returns the free binding named name, or nil if the file never uses
// that name without a declaration.
func (f *File) Free(name string) *Binding {
	for _, b := range f.Bindings {
		if b.Kind == KindFree && b.Name == name {
			return b
		}
	}
	return nil
}
