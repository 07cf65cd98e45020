package ir

import "github.com/pkg/errors"

// Binder runs the name-binding pass over a program tree: it builds the
// global symbol table and each function's local symbol table, resolves
// every identifier use to a symbol, and interns every string literal.
//
// Mirrors src/symbols/symbols.c's CREATE_AND_INSERT_SYMBOL / bind_names
// split exactly: a Symbol's Node field is set once, at the declaration
// site, by Insert; a Node's own Sym field is set only for IDENTIFIER_DATA
// nodes walked as uses, inside bind. A declaration-site identifier (a
// FUNCTION's name, a parameter, a declarator) is never itself given a
// Sym back-reference.
type Binder struct {
	Global  *SymTab
	Strings StringTable
}

// NewBinder returns a Binder with a fresh, empty global symbol table.
func NewBinder() *Binder {
	return &Binder{Global: NewGlobalSymTab()}
}

// Bind runs the full pass over root, a LIST of top-level
// GLOBAL_DECLARATION and FUNCTION nodes in source order. The first
// error aborts the pass; per spec this is the only propagation policy,
// there is no error accumulation.
func (b *Binder) Bind(root *Node) error {
	if err := b.bindGlobals(root); err != nil {
		return err
	}
	for _, top := range root.Children {
		if top.Kind != Function {
			continue
		}
		name := top.Children[0].Ident
		sym, ok := b.Global.Lookup(name)
		if !ok || sym.FuncTab == nil {
			return errors.Errorf("internal error: function %q missing from global table", name)
		}
		if err := b.bind(sym.FuncTab, top.Children[2]); err != nil {
			return err
		}
	}
	return nil
}

// bindGlobals scans top-level declarations: every identifier in a
// GLOBAL_DECLARATION becomes a GlobalVar, every ARRAY_INDEXING
// declarator becomes a GlobalArray bound to that node (so the generator
// can later recover the declared length from it). Every FUNCTION gets a
// fresh local symbol table whose lookups fall back to Global; its
// parameters are inserted in source order, fixing their sequence
// numbers to 0..N-1, before the function itself is inserted into
// Global.
func (b *Binder) bindGlobals(root *Node) error {
	for _, top := range root.Children {
		switch top.Kind {
		case GlobalDeclaration:
			decls := top.Children[0]
			for _, d := range decls.Children {
				switch d.Kind {
				case IdentifierData:
					if _, err := b.Global.Insert(d.Ident, GlobalVar, d); err != nil {
						return err
					}
				case ArrayIndexing:
					name := d.Children[0]
					if _, err := b.Global.Insert(name.Ident, GlobalArray, d); err != nil {
						return err
					}
				default:
					return errors.Errorf("internal error: unexpected declarator kind %s", d.Kind)
				}
			}
		case Function:
			name, params := top.Children[0], top.Children[1]
			funcTab := NewFuncSymTab(b.Global)
			for _, p := range params.Children {
				if _, err := funcTab.Insert(p.Ident, Parameter, p); err != nil {
					return err
				}
			}
			sym, err := b.Global.Insert(name.Ident, FunctionSym, top)
			if err != nil {
				return err
			}
			sym.FuncTab = funcTab
		default:
			return errors.Errorf("internal error: unexpected top-level node kind %s", top.Kind)
		}
	}
	return nil
}

// bind recursively resolves identifiers and interns strings within a
// function body.
func (b *Binder) bind(tab *SymTab, n *Node) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case Block:
		return b.bindBlock(tab, n)
	case IdentifierData:
		sym, ok := tab.Lookup(n.Ident)
		if !ok {
			return errors.Errorf("undeclared identifier %q", n.Ident)
		}
		n.Sym = sym
		return nil
	case StringData:
		idx := b.Strings.Add(n.Str)
		n.Kind = StringListReference
		n.StrRef = idx
		n.Str = ""
		return nil
	default:
		for _, c := range n.Children {
			if err := b.bind(tab, c); err != nil {
				return err
			}
		}
		return nil
	}
}

// bindBlock implements the BLOCK push/pop rule: a block with a
// declaration list pushes a fresh scope, inserts every declared name as
// a LOCAL_VAR, recurses into the statement list, then pops the scope —
// discarding only the name→symbol mapping, not the symbols themselves,
// which remain in tab.Symbols for the rest of the function's lifetime.
// A block with no declaration list recurses without pushing.
func (b *Binder) bindBlock(tab *SymTab, block *Node) error {
	switch len(block.Children) {
	case 1:
		return b.bind(tab, block.Children[0])
	case 2:
		decls, stmts := block.Children[0], block.Children[1]
		tab.PushScope()
		defer tab.PopScope()
		for _, d := range decls.Children {
			if _, err := tab.Insert(d.Ident, LocalVar, d); err != nil {
				return err
			}
		}
		return b.bind(tab, stmts)
	default:
		return errors.Errorf("internal error: BLOCK with %d children", len(block.Children))
	}
}
