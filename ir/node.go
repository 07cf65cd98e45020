// Package ir holds the AST node type, the symbol table, and the
// name-binding pass for VSL programs. Node and Symbol are kept in one
// package because a Symbol borrows the Node that defines it and a Node
// carries a back-reference to the Symbol it resolves to: splitting them
// into separate packages would make the two types import each other.
package ir

import "fmt"

// Kind tags an AST node. The set is closed; every Node.Kind value must
// be one of these constants.
type Kind int

const (
	List Kind = iota
	GlobalDeclaration
	Function
	Block
	AssignmentStatement
	ReturnStatement
	PrintStatement
	BreakStatement
	IfStatement
	WhileStatement
	Relation
	Expression
	FunctionCall
	ArrayIndexing
	IdentifierData
	NumberData
	StringData
	StringListReference
)

var kindNames = [...]string{
	"LIST",
	"GLOBAL_DECLARATION",
	"FUNCTION",
	"BLOCK",
	"ASSIGNMENT_STATEMENT",
	"RETURN_STATEMENT",
	"PRINT_STATEMENT",
	"BREAK_STATEMENT",
	"IF_STATEMENT",
	"WHILE_STATEMENT",
	"RELATION",
	"EXPRESSION",
	"FUNCTION_CALL",
	"ARRAY_INDEXING",
	"IDENTIFIER_DATA",
	"NUMBER_DATA",
	"STRING_DATA",
	"STRING_LIST_REFERENCE",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// BinOp is the closed set of binary/unary arithmetic operators an
// EXPRESSION node may carry. Replaces the source's string-keyed operator
// dispatch with an exhaustive-switch-friendly sum type.
type BinOp int

const (
	OpNone BinOp = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpShl
	OpShr
)

var binOpNames = [...]string{"", "+", "-", "*", "/", "<<", ">>"}

func (op BinOp) String() string {
	if int(op) < 0 || int(op) >= len(binOpNames) {
		return fmt.Sprintf("BinOp(%d)", int(op))
	}
	return binOpNames[op]
}

// RelOp is the closed set of relational operators a RELATION node may
// carry.
type RelOp int

const (
	RelNone RelOp = iota
	RelEq
	RelNe
	RelLt
	RelGt
	RelLe
	RelGe
)

var relOpNames = [...]string{"", "=", "!=", "<", ">", "<=", ">="}

func (op RelOp) String() string {
	if int(op) < 0 || int(op) >= len(relOpNames) {
		return fmt.Sprintf("RelOp(%d)", int(op))
	}
	return relOpNames[op]
}

// Node is one AST node. Payload fields are discriminated by Kind: only
// the field(s) documented for a given Kind are meaningful, the rest are
// zero values. Sym is set only by Bind, and only on IDENTIFIER_DATA
// nodes that resolve a use (never on the node at a declaration site).
type Node struct {
	Kind     Kind
	Children []*Node

	Ident  string // IDENTIFIER_DATA
	Num    int64  // NUMBER_DATA
	Str    string // STRING_DATA, quotes included
	StrRef int    // STRING_LIST_REFERENCE

	Bin BinOp // EXPRESSION
	Rel RelOp // RELATION

	Sym *Symbol // set by Bind on resolved IDENTIFIER_DATA nodes
}

// New returns a Node of the given kind with the given children.
func New(k Kind, children ...*Node) *Node {
	return &Node{Kind: k, Children: children}
}

// NewIdent returns an IDENTIFIER_DATA leaf node.
func NewIdent(name string) *Node {
	return &Node{Kind: IdentifierData, Ident: name}
}

// NewNumber returns a NUMBER_DATA leaf node.
func NewNumber(v int64) *Node {
	return &Node{Kind: NumberData, Num: v}
}

// NewString returns a STRING_DATA leaf node. s includes its surrounding
// quotes, as it appeared in source.
func NewString(s string) *Node {
	return &Node{Kind: StringData, Str: s}
}

// NewExpr returns a binary or unary EXPRESSION node.
func NewExpr(op BinOp, children ...*Node) *Node {
	return &Node{Kind: Expression, Bin: op, Children: children}
}

// NewRelation returns a RELATION node.
func NewRelation(op RelOp, lhs, rhs *Node) *Node {
	return &Node{Kind: Relation, Rel: op, Children: []*Node{lhs, rhs}}
}

func (n *Node) String() string {
	switch n.Kind {
	case IdentifierData:
		return fmt.Sprintf("IDENTIFIER_DATA(%s)", n.Ident)
	case NumberData:
		return fmt.Sprintf("NUMBER_DATA(%d)", n.Num)
	case StringData:
		return fmt.Sprintf("STRING_DATA(%s)", n.Str)
	case StringListReference:
		return fmt.Sprintf("STRING_LIST_REFERENCE(%d)", n.StrRef)
	case Expression:
		return fmt.Sprintf("EXPRESSION(%s)", n.Bin)
	case Relation:
		return fmt.Sprintf("RELATION(%s)", n.Rel)
	default:
		return n.Kind.String()
	}
}
