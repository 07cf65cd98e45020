package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"vslc/codegen"
	"vslc/internal/astio"
	"vslc/ir"
)

type platformFlag codegen.Platform

func (p *platformFlag) String() string {
	if codegen.Platform(*p) == codegen.Darwin {
		return "darwin"
	}
	return "linux"
}

func (p *platformFlag) Set(s string) error {
	switch s {
	case "linux":
		*p = platformFlag(codegen.Linux)
	case "darwin":
		*p = platformFlag(codegen.Darwin)
	default:
		return errors.Errorf("unsupported platform %q (want linux or darwin)", s)
	}
	return nil
}

func (p *platformFlag) Get() interface{} { return codegen.Platform(*p) }

var (
	printTree     bool
	printSimpTree bool
	printTables   bool
	emitCode      bool
	debug         bool
	plat          = platformFlag(codegen.Linux)
)

func atExit(err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "vslc: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "vslc: %+v\n", err)
	os.Exit(1)
}

func main() {
	var err error
	defer func() { atExit(err) }()

	flag.BoolVar(&printTree, "t", false, "print the AST before simplification")
	flag.BoolVar(&printSimpTree, "T", false, "print the AST after simplification")
	flag.BoolVar(&printTables, "s", false, "print the symbol and string tables")
	flag.BoolVar(&emitCode, "c", false, "emit assembly")
	flag.BoolVar(&debug, "debug", false, "print diagnostics with a stack trace")
	flag.Var(&plat, "platform", "target platform: linux or darwin")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: vslc [-t] [-T] [-s] [-c] [-platform linux|darwin] < ast.txt\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 0 {
		err = errors.Errorf("unexpected positional argument %q", flag.Arg(0))
		return
	}

	root, rerr := astio.NewReader(os.Stdin).ReadTree()
	if rerr != nil {
		err = errors.Wrap(rerr, "reading AST")
		return
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if printTree {
		dumpTree(out, root)
	}

	root = ir.Simplify(root)

	if printSimpTree {
		dumpTree(out, root)
	}

	binder := ir.NewBinder()
	if berr := binder.Bind(root); berr != nil {
		err = errors.Wrap(berr, "binding names")
		return
	}

	if printTables {
		dumpTables(out, binder)
	}

	if emitCode {
		gen := codegen.New(out, codegen.Platform(plat))
		if gerr := gen.Generate(root, binder.Global, binder.Strings.Strings()); gerr != nil {
			err = errors.Wrap(gerr, "generating assembly")
			return
		}
	}
}

func dumpTree(out *bufio.Writer, root *ir.Node) {
	w := astio.NewWriter(out)
	w.WriteTree(root)
	w.Flush()
}

func dumpTables(out *bufio.Writer, b *ir.Binder) {
	fmt.Fprintf(out, "GLOBAL_TABLE\tnchildren=%d\n", len(b.Global.Symbols))
	for _, sym := range b.Global.Symbols {
		fmt.Fprintf(out, "\t%s\t%s\tseq=%d\n", sym.Name, sym.Kind, sym.Seq)
	}
	strs := b.Strings.Strings()
	fmt.Fprintf(out, "STRING_TABLE\tnchildren=%d\n", len(strs))
	for i, s := range strs {
		fmt.Fprintf(out, "\t%d\t%s\n", i, s)
	}
}
