package astio

import (
	"bytes"
	"testing"

	"vslc/ir"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	tree := ir.New(ir.List,
		ir.New(ir.GlobalDeclaration, ir.New(ir.List, ir.NewIdent("x"))),
		ir.New(ir.Function,
			ir.NewIdent("f"),
			ir.New(ir.List, ir.NewIdent("a")),
			ir.New(ir.Block,
				ir.New(ir.List, ir.NewIdent("y")),
				ir.New(ir.List,
					ir.New(ir.ReturnStatement, ir.NewExpr(ir.OpAdd, ir.NewIdent("a"), ir.NewNumber(8))),
				),
			),
		),
	)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteTree(tree)
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got, err := NewReader(&buf).ReadTree()
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}
	if !treesEqual(tree, got) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", tree, got)
	}
}

func TestReadTreeRejectsUnknownKind(t *testing.T) {
	_, err := NewReader(bytes.NewBufferString("NOT_A_KIND\tnchildren=0\n")).ReadTree()
	if err == nil {
		t.Fatal("expected an error for an unknown node kind")
	}
}

func TestReadTreeRejectsMissingNchildren(t *testing.T) {
	_, err := NewReader(bytes.NewBufferString("NUMBER_DATA\tnum=5\n")).ReadTree()
	if err == nil {
		t.Fatal("expected an error when nchildren is missing")
	}
}

func TestReadTreeRejectsTruncatedChildren(t *testing.T) {
	_, err := NewReader(bytes.NewBufferString("LIST\tnchildren=2\n" + "NUMBER_DATA\tnum=1\tnchildren=0\n")).ReadTree()
	if err == nil {
		t.Fatal("expected an error when a declared child is missing")
	}
}

func treesEqual(a, b *ir.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Ident != b.Ident || a.Num != b.Num || a.Str != b.Str ||
		a.StrRef != b.StrRef || a.Bin != b.Bin || a.Rel != b.Rel {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !treesEqual(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}
