package codegen

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"vslc/ir"
)

// Generator lowers a bound AST to assembly text. One Generator is used
// per compilation; it carries no package-level state, per spec.md §9's
// rule that the source's module globals (current function, innermost
// loop label, label counters) become explicit per-invocation fields.
type Generator struct {
	e        *Emitter
	plat     Platform
	global   *ir.SymTab
	curFunc  *funcCtx
	loopExit string
	ifCount  int
	whileCnt int
}

type funcCtx struct {
	nparams int
}

// New returns a Generator writing to w for the given target platform.
func New(w io.Writer, plat Platform) *Generator {
	return &Generator{e: NewEmitter(w), plat: plat}
}

// Generate emits a full assembly program for root (a LIST of top-level
// GLOBAL_DECLARATION and FUNCTION nodes, already simplified and bound),
// global (the bound global symbol table) and strings (the interned
// string table, in insertion order).
func (g *Generator) Generate(root *ir.Node, global *ir.SymTab, strings []string) error {
	g.global = global

	g.genStringTable(strings)
	if err := g.genGlobals(); err != nil {
		return err
	}

	g.e.Directive(".text")
	g.e.Blank()

	var functions []*ir.Node
	for _, top := range root.Children {
		if top.Kind == ir.Function {
			functions = append(functions, top)
		}
	}
	if len(functions) == 0 {
		return errors.New("program contained no functions")
	}
	for _, fn := range functions {
		if err := g.genFunction(fn); err != nil {
			return err
		}
		g.e.Blank()
	}

	firstSym, ok := g.global.Lookup(functions[0].Children[0].Ident)
	if !ok {
		return errors.Errorf("internal error: function %q missing from global table", functions[0].Children[0].Ident)
	}
	if err := g.genMain(firstSym); err != nil {
		return err
	}
	g.genSafePrintf()
	g.plat.DeclareSymbols(g.e)

	return g.e.Flush()
}

func (g *Generator) genStringTable(strings []string) {
	g.e.Directive(g.plat.RODataDirective())
	g.e.Label("intout")
	g.e.Directive(".asciz %q", "%ld")
	g.e.Label("strout")
	g.e.Directive(".asciz %q", "%s")
	g.e.Label("errout")
	g.e.Directive(".asciz %q", "Wrong number of arguments")
	for i, s := range strings {
		g.e.Label(fmt.Sprintf("string%d", i))
		g.e.Directive(".asciz %s", s)
	}
	g.e.Blank()
}

func (g *Generator) genGlobals() error {
	g.e.Directive(g.plat.BSSDirective())
	g.e.Directive(".align 8")
	for _, sym := range g.global.Symbols {
		switch sym.Kind {
		case ir.GlobalVar:
			g.e.Label("." + sym.Name)
			g.e.Directive(".zero 8")
		case ir.GlobalArray:
			length := sym.Node.Children[1]
			if length.Kind != ir.NumberData {
				return errors.Errorf("length of array %q is not compile-time known", sym.Name)
			}
			g.e.Label("." + sym.Name)
			g.e.Directive(".zero %d", 8*length.Num)
		}
	}
	g.e.Blank()
	return nil
}

// funcParamCount returns the declared parameter count of a FUNCTION
// symbol, read off its defining node's parameter LIST.
func funcParamCount(sym *ir.Symbol) int {
	return len(sym.Node.Children[1].Children)
}

func (g *Generator) genFunction(fn *ir.Node) error {
	name := fn.Children[0].Ident
	sym, ok := g.global.Lookup(name)
	if !ok || sym.FuncTab == nil {
		return errors.Errorf("internal error: function %q missing a local symbol table", name)
	}
	nparams := len(fn.Children[1].Children)

	g.e.Label("." + name)
	g.e.Pushq(RBP)
	g.e.Movq(RSP, RBP)

	spill := nparams
	if spill > 6 {
		spill = 6
	}
	for i := 0; i < spill; i++ {
		g.e.Pushq(ArgRegisters[i])
	}
	for _, lsym := range sym.FuncTab.Symbols {
		if lsym.Kind == ir.LocalVar {
			g.e.Pushq("$0")
		}
	}

	prevFunc := g.curFunc
	g.curFunc = &funcCtx{nparams: nparams}
	if err := g.genStatement(fn.Children[2]); err != nil {
		return err
	}
	g.curFunc = prevFunc

	// Implicit "return 0" epilogue if control falls off the end.
	g.e.Movq("$0", RAX)
	g.e.Movq(RBP, RSP)
	g.e.Popq(RBP)
	g.e.Ret()
	return nil
}

// varAddress returns the operand addressing sym's memory home.
func (g *Generator) varAddress(sym *ir.Symbol) (string, error) {
	switch sym.Kind {
	case ir.GlobalVar:
		return RIPRelative("." + sym.Name), nil
	case ir.Parameter:
		s := sym.Seq
		if s < 6 {
			return StackSlot(-8 * (s + 1)), nil
		}
		return StackSlot(16 + 8*(s-6)), nil
	case ir.LocalVar:
		s := sym.Seq
		if g.curFunc.nparams > 6 {
			s -= g.curFunc.nparams - 6
		}
		return StackSlot(-8 * (s + 1)), nil
	case ir.FunctionSym:
		return "", errors.Errorf("symbol %q is a function, not a variable", sym.Name)
	case ir.GlobalArray:
		return "", errors.Errorf("symbol %q is an array, not a variable", sym.Name)
	default:
		return "", errors.Errorf("internal error: unknown variable symbol kind %s", sym.Kind)
	}
}

// genArrayAddress evaluates the index expression and leaves the address
// of node's element in %rcx, returning the "(%rcx)" operand.
func (g *Generator) genArrayAddress(node *ir.Node) (string, error) {
	arrIdent := node.Children[0]
	if arrIdent.Sym == nil || arrIdent.Sym.Kind != ir.GlobalArray {
		return "", errors.Errorf("symbol %q is not an array", arrIdent.Ident)
	}
	if err := g.genExpr(node.Children[1]); err != nil {
		return "", err
	}
	g.e.Leaq(RIPRelative("."+arrIdent.Sym.Name), RCX)
	g.e.Leaq(fmt.Sprintf("(%s,%s,8)", RCX, RAX), RCX)
	return Mem(RCX), nil
}

// genExpr evaluates n and leaves the result in %rax.
func (g *Generator) genExpr(n *ir.Node) error {
	switch n.Kind {
	case ir.NumberData:
		g.e.Movq(fmt.Sprintf("$%d", n.Num), RAX)
		return nil
	case ir.IdentifierData:
		addr, err := g.varAddress(n.Sym)
		if err != nil {
			return err
		}
		g.e.Movq(addr, RAX)
		return nil
	case ir.ArrayIndexing:
		addr, err := g.genArrayAddress(n)
		if err != nil {
			return err
		}
		g.e.Movq(addr, RAX)
		return nil
	case ir.Expression:
		return g.genExpression(n)
	case ir.FunctionCall:
		return g.genCall(n)
	default:
		return errors.Errorf("internal error: unexpected expression node kind %s", n.Kind)
	}
}

// genExpression implements the exact evaluation order spec.md §4.4
// requires: + and * evaluate left then right (order-insensitive, since
// both are commutative); - and / evaluate right then left so the
// subtrahend/divisor lands in %rcx after %rax already holds the
// minuend/dividend. << and >> also evaluate right (the shift amount)
// then left (the value to shift): although spec.md's prose initially
// groups them with the left-first operators, the shift instruction
// needs its count in %cl and its operand in %rax, which only comes out
// correct with right-then-left sequencing — confirmed against the
// original generator and against spec.md's own worked example (x*8
// folding to a shift of 3 and evaluating to 40).
func (g *Generator) genExpression(n *ir.Node) error {
	if len(n.Children) == 1 {
		if n.Bin != ir.OpSub {
			return errors.Errorf("internal error: unknown unary operator %s", n.Bin)
		}
		if err := g.genExpr(n.Children[0]); err != nil {
			return err
		}
		g.e.Negq(RAX)
		return nil
	}
	if len(n.Children) != 2 {
		return errors.Errorf("internal error: EXPRESSION with %d children", len(n.Children))
	}
	l, r := n.Children[0], n.Children[1]
	switch n.Bin {
	case ir.OpAdd:
		if err := g.genExpr(l); err != nil {
			return err
		}
		g.e.Pushq(RAX)
		if err := g.genExpr(r); err != nil {
			return err
		}
		g.e.Popq(RCX)
		g.e.Addq(RCX, RAX)
	case ir.OpSub:
		if err := g.genExpr(r); err != nil {
			return err
		}
		g.e.Pushq(RAX)
		if err := g.genExpr(l); err != nil {
			return err
		}
		g.e.Popq(RCX)
		g.e.Subq(RCX, RAX)
	case ir.OpMul:
		if err := g.genExpr(l); err != nil {
			return err
		}
		g.e.Pushq(RAX)
		if err := g.genExpr(r); err != nil {
			return err
		}
		g.e.Popq(RCX)
		g.e.Imulq(RCX, RAX)
	case ir.OpDiv:
		if err := g.genExpr(r); err != nil {
			return err
		}
		g.e.Pushq(RAX)
		if err := g.genExpr(l); err != nil {
			return err
		}
		g.e.Cqo()
		g.e.Popq(RCX)
		g.e.Idivq(RCX)
	case ir.OpShl:
		if err := g.genExpr(r); err != nil {
			return err
		}
		g.e.Pushq(RAX)
		if err := g.genExpr(l); err != nil {
			return err
		}
		g.e.Popq(RCX)
		g.e.Salq(RAX)
	case ir.OpShr:
		if err := g.genExpr(r); err != nil {
			return err
		}
		g.e.Pushq(RAX)
		if err := g.genExpr(l); err != nil {
			return err
		}
		g.e.Popq(RCX)
		g.e.Sarq(RAX)
	default:
		return errors.Errorf("internal error: unknown binary operator %s", n.Bin)
	}
	return nil
}

func (g *Generator) genCall(call *ir.Node) error {
	callee := call.Children[0]
	sym := callee.Sym
	if sym == nil || sym.Kind != ir.FunctionSym {
		return errors.Errorf("%q is not a function", callee.Ident)
	}
	args := call.Children[1]
	want := funcParamCount(sym)
	if want != len(args.Children) {
		return errors.Errorf("function %q expects %d arguments, but %d were given", sym.Name, want, len(args.Children))
	}

	for i := len(args.Children) - 1; i >= 0; i-- {
		if err := g.genExpr(args.Children[i]); err != nil {
			return err
		}
		g.e.Pushq(RAX)
	}
	regCount := want
	if regCount > 6 {
		regCount = 6
	}
	for i := 0; i < regCount; i++ {
		g.e.Popq(ArgRegisters[i])
	}
	g.e.Call("." + sym.Name)
	if want > 6 {
		g.e.Addq(fmt.Sprintf("$%d", (want-6)*8), RSP)
	}
	return nil
}

func (g *Generator) genAssignment(stmt *ir.Node) error {
	dest, rhs := stmt.Children[0], stmt.Children[1]
	if err := g.genExpr(rhs); err != nil {
		return err
	}
	if dest.Kind == ir.IdentifierData {
		addr, err := g.varAddress(dest.Sym)
		if err != nil {
			return err
		}
		g.e.Movq(RAX, addr)
		return nil
	}
	g.e.Pushq(RAX)
	addr, err := g.genArrayAddress(dest)
	if err != nil {
		return err
	}
	g.e.Popq(RAX)
	g.e.Movq(RAX, addr)
	return nil
}

func (g *Generator) genPrint(stmt *ir.Node) error {
	for _, item := range stmt.Children[0].Children {
		if item.Kind == ir.StringListReference {
			g.e.Leaq(RIPRelative("strout"), RDI)
			g.e.Leaq(RIPRelative(fmt.Sprintf("string%d", item.StrRef)), RSI)
		} else {
			if err := g.genExpr(item); err != nil {
				return err
			}
			g.e.Movq(RAX, RSI)
			g.e.Leaq(RIPRelative("intout"), RDI)
		}
		g.e.Call("safe_printf")
	}
	g.e.Movq("$'\\n'", RDI)
	g.e.Call("putchar")
	return nil
}

func (g *Generator) genReturn(stmt *ir.Node) error {
	if err := g.genExpr(stmt.Children[0]); err != nil {
		return err
	}
	g.e.Movq(RBP, RSP)
	g.e.Popq(RBP)
	g.e.Ret()
	return nil
}

// genRelation leaves the processor flags as if `cmp rhs, lhs` had run.
func (g *Generator) genRelation(rel *ir.Node) error {
	lhs, rhs := rel.Children[0], rel.Children[1]
	if err := g.genExpr(rhs); err != nil {
		return err
	}
	g.e.Pushq(RAX)
	if err := g.genExpr(lhs); err != nil {
		return err
	}
	g.e.Popq(RCX)
	g.e.Cmpq(RCX, RAX)
	return nil
}

func (g *Generator) jumpIfTrue(op ir.RelOp, label string) error {
	switch op {
	case ir.RelEq:
		g.e.Je(label)
	case ir.RelNe:
		g.e.Jne(label)
	case ir.RelLt:
		g.e.Jl(label)
	case ir.RelGt:
		g.e.Jg(label)
	case ir.RelLe:
		g.e.Jle(label)
	case ir.RelGe:
		g.e.Jge(label)
	default:
		return errors.Errorf("internal error: unknown relation operator %s", op)
	}
	return nil
}

func (g *Generator) jumpIfFalse(op ir.RelOp, label string) error {
	switch op {
	case ir.RelEq:
		g.e.Jne(label)
	case ir.RelNe:
		g.e.Je(label)
	case ir.RelLt:
		g.e.Jge(label)
	case ir.RelGt:
		g.e.Jle(label)
	case ir.RelLe:
		g.e.Jg(label)
	case ir.RelGe:
		g.e.Jl(label)
	default:
		return errors.Errorf("internal error: unknown relation operator %s", op)
	}
	return nil
}

func (g *Generator) genIf(stmt *ir.Node) error {
	rel := stmt.Children[0]
	thenStmt := stmt.Children[1]
	var elseStmt *ir.Node
	if len(stmt.Children) == 3 {
		elseStmt = stmt.Children[2]
	}

	if err := g.genRelation(rel); err != nil {
		return err
	}

	n := g.ifCount
	g.ifCount++
	thenLabel := fmt.Sprintf("THEN%d", n)
	elseLabel := fmt.Sprintf("ELSE%d", n)
	endLabel := fmt.Sprintf("ENDIF%d", n)

	if err := g.jumpIfTrue(rel.Rel, thenLabel); err != nil {
		return err
	}
	if elseStmt != nil {
		g.e.Jmp(elseLabel)
	} else {
		g.e.Jmp(endLabel)
	}

	g.e.Label(thenLabel)
	if err := g.genStatement(thenStmt); err != nil {
		return err
	}
	g.e.Jmp(endLabel)

	if elseStmt != nil {
		g.e.Label(elseLabel)
		if err := g.genStatement(elseStmt); err != nil {
			return err
		}
	}
	g.e.Label(endLabel)
	return nil
}

func (g *Generator) genWhile(stmt *ir.Node) error {
	rel, body := stmt.Children[0], stmt.Children[1]

	n := g.whileCnt
	g.whileCnt++
	startLabel := fmt.Sprintf("WHILE%d", n)
	endLabel := fmt.Sprintf("ENDWHILE%d", n)

	savedExit := g.loopExit
	g.loopExit = endLabel

	g.e.Label(startLabel)
	if err := g.genRelation(rel); err != nil {
		return err
	}
	if err := g.jumpIfFalse(rel.Rel, endLabel); err != nil {
		return err
	}
	if err := g.genStatement(body); err != nil {
		return err
	}
	g.e.Jmp(startLabel)
	g.e.Label(endLabel)

	g.loopExit = savedExit
	return nil
}

func (g *Generator) genBreak() error {
	if g.loopExit == "" {
		return errors.New("'break' used outside of a loop")
	}
	g.e.Jmp(g.loopExit)
	return nil
}

// genStatement recursively generates one statement and its
// substatements. A BLOCK's own scope push/pop already happened during
// binding; here only its statement list is walked.
func (g *Generator) genStatement(n *ir.Node) error {
	switch n.Kind {
	case ir.Block:
		stmts := n.Children[len(n.Children)-1]
		for _, s := range stmts.Children {
			if err := g.genStatement(s); err != nil {
				return err
			}
		}
		return nil
	case ir.AssignmentStatement:
		return g.genAssignment(n)
	case ir.PrintStatement:
		return g.genPrint(n)
	case ir.ReturnStatement:
		return g.genReturn(n)
	case ir.IfStatement:
		return g.genIf(n)
	case ir.WhileStatement:
		return g.genWhile(n)
	case ir.BreakStatement:
		return g.genBreak()
	case ir.FunctionCall:
		return g.genCall(n)
	default:
		return errors.Errorf("internal error: unknown statement node kind %s", n.Kind)
	}
}

func (g *Generator) genSafePrintf() {
	g.e.Label("safe_printf")
	g.e.Pushq(RBP)
	g.e.Movq(RSP, RBP)
	g.e.Andq("$-16", RSP)
	g.e.Call("printf")
	g.e.Movq(RBP, RSP)
	g.e.Popq(RBP)
	g.e.Ret()
	g.e.Blank()
}

func (g *Generator) genMain(first *ir.Symbol) error {
	g.e.Directive(g.plat.GlobalDirective())
	g.e.Label(mainLabel)
	g.e.Pushq(RBP)
	g.e.Movq(RSP, RBP)

	argc, argv := RDI, RSI
	expected := funcParamCount(first)

	g.e.Subq("$1", argc)
	g.e.Cmpq(fmt.Sprintf("$%d", expected), argc)
	g.e.Jne("ABORT")

	if expected > 0 {
		g.e.Addq(fmt.Sprintf("$%d", expected*8), argv)
		g.e.Movq(argc, RCX)
		g.e.Label("PARSE_ARGV")
		g.e.Pushq(argv)
		g.e.Pushq(RCX)
		g.e.Movq(Mem(argv), RDI)
		g.e.Movq("$0", RSI)
		g.e.Movq("$10", RDX)
		g.e.Call("strtol")
		g.e.Popq(RCX)
		g.e.Popq(argv)
		g.e.Pushq(RAX)
		g.e.Subq("$8", argv)
		g.e.Loop("PARSE_ARGV")

		regCount := expected
		if regCount > 6 {
			regCount = 6
		}
		for i := 0; i < regCount; i++ {
			g.e.Popq(ArgRegisters[i])
		}
	}

	g.e.Call("." + first.Name)
	g.e.Movq(RAX, RDI)
	g.e.Call("exit")

	g.e.Label("ABORT")
	g.e.Leaq(RIPRelative("errout"), RDI)
	g.e.Call("puts")
	g.e.Movq("$1", RDI)
	g.e.Call("exit")
	g.e.Blank()
	return nil
}
