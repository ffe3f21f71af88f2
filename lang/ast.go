package lang

import "iter"

// Expr is a node of the expression tree produced by the parser.
//
// The set of implementations is closed: [*Number], [*Var], [*Binary],
// [*Let], [*Define], [*Call], [*Return], and [*If]. Nodes are never modified
// after construction and may be shared freely.
type Expr interface {
	// Kind identifies the concrete node type.
	Kind() Kind
	// String renders the node as canonical source text.
	String() string

	expr()
}

// Kind indicates the type of an expression node.
type Kind int

const (
	// KindNumber is a numeric literal.
	KindNumber Kind = iota // number

	// KindVar is a variable reference.
	KindVar // var

	// KindBinary is a binary arithmetic operation.
	KindBinary // binary

	// KindLet binds the value of an expression to a name.
	KindLet // let

	// KindDefine binds a user function to a name.
	KindDefine // define

	// KindCall invokes a user or native function.
	KindCall // call

	// KindReturn completes the enclosing body with a value.
	KindReturn // return

	// KindIf is a chain of guarded branches with a mandatory else.
	KindIf // if
)

// Op is a binary arithmetic operator.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpPow
)

// String returns the operator's source symbol.
func (op Op) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "^"
	default:
		return "?"
	}
}

// Name returns the operator's long name, as used in tree dumps.
func (op Op) Name() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "subtract"
	case OpMul:
		return "multiply"
	case OpDiv:
		return "divide"
	case OpPow:
		return "power"
	default:
		return "unknown"
	}
}

// precedence returns the binding power of op; higher binds tighter.
func (op Op) precedence() int {
	switch op {
	case OpAdd, OpSub:
		return 1
	case OpMul, OpDiv:
		return 2
	default:
		return 3
	}
}

// rightAssoc reports whether op groups from the right.
func (op Op) rightAssoc() bool { return op == OpPow }

type (
	// Number is a numeric literal.
	Number struct {
		Value float64
	}

	// Var is a reference to a variable by name.
	Var struct {
		Name string
	}

	// Binary applies an arithmetic operator to two operands.
	Binary struct {
		Op    Op
		Left  Expr
		Right Expr
	}

	// Let is "let Name = Value".
	Let struct {
		Name  string
		Value Expr
	}

	// Define is "define Name(Params...) { Body... }".
	Define struct {
		Name   string
		Params []string
		Body   []Expr
	}

	// Call is "Name(Args...)".
	Call struct {
		Name string
		Args []Expr
	}

	// Return is "return Value".
	Return struct {
		Value Expr
	}

	// Branch is one guarded arm of a conditional: "(Left == Right) { Body }".
	Branch struct {
		Left  Expr
		Right Expr
		Body  []Expr
	}

	// If selects the first branch whose operands are equal, or Else.
	If struct {
		Branches []Branch
		Else     []Expr
	}
)

func (*Number) Kind() Kind { return KindNumber }
func (*Var) Kind() Kind    { return KindVar }
func (*Binary) Kind() Kind { return KindBinary }
func (*Let) Kind() Kind    { return KindLet }
func (*Define) Kind() Kind { return KindDefine }
func (*Call) Kind() Kind   { return KindCall }
func (*Return) Kind() Kind { return KindReturn }
func (*If) Kind() Kind     { return KindIf }

func (*Number) expr() {}
func (*Var) expr()    {}
func (*Binary) expr() {}
func (*Let) expr()    {}
func (*Define) expr() {}
func (*Call) expr()   {}
func (*Return) expr() {}
func (*If) expr()     {}

// Walk returns an iterator over e and all of its descendants in depth-first
// pre-order.
func Walk(e Expr) iter.Seq[Expr] {
	return func(yield func(Expr) bool) { walk(e, yield) }
}

func walk(e Expr, yield func(Expr) bool) bool {
	if e == nil {
		return true
	}

	if !yield(e) {
		return false
	}

	switch n := e.(type) {
	case *Binary:
		return walk(n.Left, yield) && walk(n.Right, yield)

	case *Let:
		return walk(n.Value, yield)

	case *Return:
		return walk(n.Value, yield)

	case *Define:
		return walkAll(n.Body, yield)

	case *Call:
		return walkAll(n.Args, yield)

	case *If:
		for _, br := range n.Branches {
			if !walk(br.Left, yield) || !walk(br.Right, yield) ||
				!walkAll(br.Body, yield) {
				return false
			}
		}

		return walkAll(n.Else, yield)
	}

	return true
}

func walkAll(list []Expr, yield func(Expr) bool) bool {
	for _, e := range list {
		if !walk(e, yield) {
			return false
		}
	}

	return true
}
