package ir

import "github.com/pkg/errors"

// SymKind discriminates the role a Symbol plays.
type SymKind int

const (
	GlobalVar SymKind = iota
	GlobalArray
	FunctionSym
	Parameter
	LocalVar
)

var symKindNames = [...]string{
	"global variable",
	"global array",
	"function",
	"parameter",
	"local variable",
}

func (k SymKind) String() string {
	if int(k) < 0 || int(k) >= len(symKindNames) {
		return "unknown symbol kind"
	}
	return symKindNames[k]
}

// Symbol is one entry in a SymTab. Name is borrowed from the AST node
// that declared it and must not be mutated after insertion. Node is the
// defining node (the declarator, the FUNCTION node, ...), also borrowed.
// FuncTab is populated only for FunctionSym symbols.
type Symbol struct {
	Name    string
	Kind    SymKind
	Node    *Node
	Seq     int
	FuncTab *SymTab
}

// SymTab is one function's (or the program's global) symbol table: an
// insertion-ordered, sequence-numbered list of every symbol ever
// inserted, plus a stack of lexical scopes used for name resolution.
// This realizes spec.md §9's sanctioned rewrite of the source's
// backup-pointer hash-map chain as a stack of maps: scopes are pushed on
// block entry and popped on block exit, but popping a scope never
// removes its symbols from Symbols — their stack homes stay live for the
// rest of the function.
//
// A function-local SymTab keeps a pointer to the global SymTab so that
// Lookup falls back to it once the local scope stack is exhausted,
// mirroring the source's per-function hashmap backup pointer.
type SymTab struct {
	Symbols []*Symbol
	scopes  []map[string]*Symbol
	global  *SymTab
}

// NewGlobalSymTab returns an empty top-level symbol table with no
// fallback.
func NewGlobalSymTab() *SymTab {
	return &SymTab{scopes: []map[string]*Symbol{{}}}
}

// NewFuncSymTab returns an empty symbol table for one function, whose
// lookups fall back to global once its own scopes are exhausted.
func NewFuncSymTab(global *SymTab) *SymTab {
	return &SymTab{scopes: []map[string]*Symbol{{}}, global: global}
}

// PushScope opens a new, empty innermost scope.
func (t *SymTab) PushScope() {
	t.scopes = append(t.scopes, map[string]*Symbol{})
}

// PopScope closes the innermost scope. The symbols it held remain in
// Symbols; only the name→symbol mapping for that scope is discarded.
// Popping the outermost scope is a programming error and panics, since
// it can only happen from a binder bug, never from user input.
func (t *SymTab) PopScope() {
	if len(t.scopes) <= 1 {
		panic("ir: PopScope on outermost scope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Insert assigns the next sequence number and adds sym to the innermost
// scope. It fails iff the innermost scope already holds a symbol with
// this name; the source's COLLISION case.
func (t *SymTab) Insert(name string, kind SymKind, node *Node) (*Symbol, error) {
	top := t.scopes[len(t.scopes)-1]
	if _, dup := top[name]; dup {
		return nil, errors.Errorf("duplicate symbol %q in this scope", name)
	}
	sym := &Symbol{Name: name, Kind: kind, Node: node, Seq: len(t.Symbols)}
	t.Symbols = append(t.Symbols, sym)
	top[name] = sym
	return sym, nil
}

// Lookup resolves name against the scope stack innermost-first, falling
// back to the global table if this table has one and its own scopes
// miss.
func (t *SymTab) Lookup(name string) (*Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i][name]; ok {
			return sym, true
		}
	}
	if t.global != nil {
		return t.global.Lookup(name)
	}
	return nil, false
}

// StringTable is the append-only, deduplication-free list of interned
// string literals. STRING_DATA nodes are rewritten to
// STRING_LIST_REFERENCE nodes whose payload is the index Add returns.
type StringTable struct {
	strings []string
}

// Add appends s (quotes included, as it appeared in source) and returns
// its index.
func (st *StringTable) Add(s string) int {
	st.strings = append(st.strings, s)
	return len(st.strings) - 1
}

// Strings returns the interned strings in insertion order.
func (st *StringTable) Strings() []string {
	return st.strings
}
