package ir

import "testing"

// program builds: var x
//                 def f(a) begin return a+x end
func sampleProgram() *Node {
	globalDecl := New(GlobalDeclaration, New(List, NewIdent("x")))
	body := New(Block, New(List,
		New(ReturnStatement, NewExpr(OpAdd, NewIdent("a"), NewIdent("x"))),
	))
	fn := New(Function, NewIdent("f"), New(List, NewIdent("a")), body)
	return New(List, globalDecl, fn)
}

func TestBindResolvesGlobalsAndParams(t *testing.T) {
	root := sampleProgram()
	b := NewBinder()
	if err := b.Bind(root); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	fn := root.Children[1]
	retStmt := fn.Children[2].Children[0].Children[0]
	addExpr := retStmt.Children[0]
	aUse, xUse := addExpr.Children[0], addExpr.Children[1]

	if aUse.Sym == nil || aUse.Sym.Kind != Parameter || aUse.Sym.Seq != 0 {
		t.Fatalf("a: Sym = %+v, want Parameter seq 0", aUse.Sym)
	}
	if xUse.Sym == nil || xUse.Sym.Kind != GlobalVar {
		t.Fatalf("x: Sym = %+v, want GlobalVar", xUse.Sym)
	}

	// Declaration-site nodes never get a Sym back-reference.
	globalDeclIdent := root.Children[0].Children[0].Children[0]
	if globalDeclIdent.Sym != nil {
		t.Fatalf("declaration-site node got a Sym back-reference: %+v", globalDeclIdent.Sym)
	}
	paramIdent := fn.Children[1].Children[0]
	if paramIdent.Sym != nil {
		t.Fatalf("parameter declaration node got a Sym back-reference: %+v", paramIdent.Sym)
	}

	fnSym, ok := b.Global.Lookup("f")
	if !ok || fnSym.Kind != FunctionSym || fnSym.FuncTab == nil {
		t.Fatalf("f: Sym = %+v, want a FunctionSym with a FuncTab", fnSym)
	}
}

func TestBindDuplicateGlobalFails(t *testing.T) {
	root := New(List,
		New(GlobalDeclaration, New(List, NewIdent("x"))),
		New(GlobalDeclaration, New(List, NewIdent("x"))),
	)
	if err := NewBinder().Bind(root); err == nil {
		t.Fatal("expected duplicate global declaration to fail")
	}
}

func TestBindUndeclaredIdentifierFails(t *testing.T) {
	body := New(Block, New(List, New(ReturnStatement, NewIdent("nope"))))
	fn := New(Function, NewIdent("f"), New(List), body)
	root := New(List, fn)
	if err := NewBinder().Bind(root); err == nil {
		t.Fatal("expected unresolved identifier to fail")
	}
}

func TestBindLocalShadowsGlobalWithinBlock(t *testing.T) {
	globalDecl := New(GlobalDeclaration, New(List, NewIdent("x")))
	block := New(Block,
		New(List, NewIdent("x")), // local declaration list
		New(List, New(ReturnStatement, NewIdent("x"))),
	)
	fn := New(Function, NewIdent("f"), New(List), block)
	root := New(List, globalDecl, fn)

	b := NewBinder()
	if err := b.Bind(root); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	use := block.Children[1].Children[0].Children[0]
	if use.Sym == nil || use.Sym.Kind != LocalVar {
		t.Fatalf("x inside block: Sym = %+v, want LocalVar", use.Sym)
	}
}

func TestBindStringInterning(t *testing.T) {
	body := New(Block, New(List, New(PrintStatement, New(List, NewString(`"hi"`)))))
	fn := New(Function, NewIdent("f"), New(List), body)
	root := New(List, fn)

	b := NewBinder()
	if err := b.Bind(root); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	item := body.Children[0].Children[0].Children[0]
	if item.Kind != StringListReference {
		t.Fatalf("print item kind = %v, want STRING_LIST_REFERENCE", item.Kind)
	}
	if got := b.Strings.Strings(); len(got) != 1 || got[0] != `"hi"` {
		t.Fatalf("Strings() = %v, want [\"hi\"]", got)
	}
}

func TestBindGlobalArrayBoundToDeclarator(t *testing.T) {
	arrayDecl := New(ArrayIndexing, NewIdent("a"), NewNumber(3))
	globalDecl := New(GlobalDeclaration, New(List, arrayDecl))
	fn := New(Function, NewIdent("f"), New(List), New(Block, New(List)))
	root := New(List, globalDecl, fn)

	b := NewBinder()
	if err := b.Bind(root); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	sym, ok := b.Global.Lookup("a")
	if !ok || sym.Kind != GlobalArray || sym.Node != arrayDecl {
		t.Fatalf("a: Sym = %+v, want GlobalArray bound to the ARRAY_INDEXING declarator", sym)
	}
}
