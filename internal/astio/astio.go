// Package astio reads and writes ir.Node trees in a line-oriented text
// wire format: one node per line, children following their parent
// depth-first. It stands in for the output of the out-of-scope parser,
// and also backs the driver's -t/-T tree dump flags, so the wire format
// is both an input and an output concern. Grounded on the indented,
// one-construct-per-line style of
// _examples/gmofishsauce-wut4/lang/yparse/output.go's OutputWriter,
// adapted from AST-dump-only to a round-trippable reader/writer pair.
//
// Line grammar, one node per line:
//
//	KIND\tfield=value\t...\tnchildren=N
//
// Leaf nodes (IDENTIFIER_DATA, NUMBER_DATA, STRING_DATA,
// STRING_LIST_REFERENCE) carry exactly one payload field before
// nchildren=0; EXPRESSION carries op=...; RELATION carries rel=...;
// every other kind carries only nchildren. Children follow immediately,
// depth-first, each on its own line.
package astio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"vslc/ir"
)

var kindByName = func() map[string]ir.Kind {
	m := make(map[string]ir.Kind, 18)
	for k := ir.List; k <= ir.StringListReference; k++ {
		m[k.String()] = k
	}
	return m
}()

var binOpByName = map[string]ir.BinOp{
	"+": ir.OpAdd, "-": ir.OpSub, "*": ir.OpMul, "/": ir.OpDiv, "<<": ir.OpShl, ">>": ir.OpShr,
}

var relOpByName = map[string]ir.RelOp{
	"=": ir.RelEq, "!=": ir.RelNe, "<": ir.RelLt, ">": ir.RelGt, "<=": ir.RelLe, ">=": ir.RelGe,
}

// Reader parses the wire format from an underlying bufio.Scanner.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{sc: sc}
}

// ReadTree parses one full node, including its children, starting at
// the Reader's current position. Call it once at the top level to read
// an entire program (a LIST node).
func (r *Reader) ReadTree() (*ir.Node, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return nil, errors.Wrap(err, "reading AST")
		}
		return nil, errors.New("unexpected end of input while reading AST")
	}
	r.line++
	return r.parseLine(r.sc.Text())
}

func (r *Reader) parseLine(line string) (*ir.Node, error) {
	fields := strings.Split(line, "\t")
	if len(fields) == 0 {
		return nil, errors.Errorf("line %d: empty AST record", r.line)
	}
	kind, ok := kindByName[fields[0]]
	if !ok {
		return nil, errors.Errorf("line %d: unknown node kind %q", r.line, fields[0])
	}
	n := &ir.Node{Kind: kind}
	nchildren := -1
	for _, f := range fields[1:] {
		key, val, found := strings.Cut(f, "=")
		if !found {
			return nil, errors.Errorf("line %d: malformed field %q", r.line, f)
		}
		switch key {
		case "nchildren":
			v, err := strconv.Atoi(val)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: bad nchildren", r.line)
			}
			nchildren = v
		case "ident":
			n.Ident = val
		case "num":
			v, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: bad num", r.line)
			}
			n.Num = v
		case "str":
			n.Str = val
		case "strref":
			v, err := strconv.Atoi(val)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: bad strref", r.line)
			}
			n.StrRef = v
		case "op":
			op, ok := binOpByName[val]
			if !ok {
				return nil, errors.Errorf("line %d: unknown operator %q", r.line, val)
			}
			n.Bin = op
		case "rel":
			op, ok := relOpByName[val]
			if !ok {
				return nil, errors.Errorf("line %d: unknown relation %q", r.line, val)
			}
			n.Rel = op
		default:
			return nil, errors.Errorf("line %d: unknown field %q", r.line, key)
		}
	}
	if nchildren < 0 {
		return nil, errors.Errorf("line %d: missing nchildren", r.line)
	}
	for i := 0; i < nchildren; i++ {
		child, err := r.ReadTree()
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

// Writer emits the wire format, used both for test fixtures and for the
// driver's debug dump flags.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Flush flushes buffered output.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// WriteTree serializes n and its full subtree, depth-first.
func (w *Writer) WriteTree(n *ir.Node) {
	var fields []string
	switch n.Kind {
	case ir.IdentifierData:
		fields = append(fields, "ident="+n.Ident)
	case ir.NumberData:
		fields = append(fields, fmt.Sprintf("num=%d", n.Num))
	case ir.StringData:
		fields = append(fields, "str="+n.Str)
	case ir.StringListReference:
		fields = append(fields, fmt.Sprintf("strref=%d", n.StrRef))
	case ir.Expression:
		fields = append(fields, "op="+n.Bin.String())
	case ir.Relation:
		fields = append(fields, "rel="+n.Rel.String())
	}
	fields = append(fields, fmt.Sprintf("nchildren=%d", len(n.Children)))
	fmt.Fprintf(w.w, "%s\t%s\n", n.Kind, strings.Join(fields, "\t"))
	for _, c := range n.Children {
		w.WriteTree(c)
	}
}
