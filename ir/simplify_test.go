package ir

import "testing"

func TestSimplifyConstantFold(t *testing.T) {
	cases := []struct {
		name string
		in   *Node
		want int64
	}{
		{"add", NewExpr(OpAdd, NewNumber(2), NewNumber(8)), 10},
		{"sub", NewExpr(OpSub, NewNumber(2), NewNumber(8)), -6},
		{"mul-then-div", NewExpr(OpDiv, NewExpr(OpMul, NewNumber(2), NewNumber(8)), NewNumber(4)), 4},
		{"unary-neg", NewExpr(OpSub, NewNumber(5)), -5},
		{"shl", NewExpr(OpShl, NewNumber(1), NewNumber(4)), 16},
		{"shr-arithmetic", NewExpr(OpShr, NewNumber(-8), NewNumber(1)), -4},
		{"wraparound", NewExpr(OpAdd, NewNumber(9223372036854775807), NewNumber(1)), -9223372036854775808},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Simplify(tc.in)
			if got.Kind != NumberData {
				t.Fatalf("Simplify(%v) = %v, want a fully folded NUMBER_DATA", tc.name, got)
			}
			if got.Num != tc.want {
				t.Fatalf("Simplify(%v) = %d, want %d", tc.name, got.Num, tc.want)
			}
		})
	}
}

func TestSimplifyDivisionByZeroNotFolded(t *testing.T) {
	n := NewExpr(OpDiv, NewNumber(8), NewNumber(0))
	got := Simplify(n)
	if got.Kind != Expression || got.Bin != OpDiv {
		t.Fatalf("Simplify(8/0) = %v, want the division left unfolded", got)
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	n := NewExpr(OpMul, NewExpr(OpAdd, NewNumber(1), NewNumber(2)), NewNumber(8))
	once := Simplify(n)
	twice := Simplify(once)
	if once.Kind != twice.Kind || once.Num != twice.Num {
		t.Fatalf("simplify not idempotent: once=%v twice=%v", once, twice)
	}
}

func TestPeepholeByOneRemovesNode(t *testing.T) {
	leaf := NewIdent("x")
	n := NewExpr(OpMul, leaf, NewNumber(1))
	got := Simplify(n)
	if got != leaf {
		t.Fatalf("Simplify(x*1) = %v, want the x subtree unchanged", got)
	}

	n2 := NewExpr(OpDiv, leaf, NewNumber(1))
	got2 := Simplify(n2)
	if got2 != leaf {
		t.Fatalf("Simplify(x/1) = %v, want the x subtree unchanged", got2)
	}
}

func TestPeepholePowerOfTwoRewritesToShift(t *testing.T) {
	cases := []struct {
		name    string
		op      BinOp
		operand int64
		wantOp  BinOp
		wantLog int64
	}{
		{"mul-by-8", OpMul, 8, OpShl, 3},
		{"div-by-8", OpDiv, 8, OpShr, 3},
		{"mul-by-1024", OpMul, 1024, OpShl, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := NewExpr(tc.op, NewIdent("x"), NewNumber(tc.operand))
			got := Simplify(n)
			if got.Kind != Expression || got.Bin != tc.wantOp {
				t.Fatalf("op = %v, want %v", got.Bin, tc.wantOp)
			}
			if got.Children[1].Kind != NumberData || got.Children[1].Num != tc.wantLog {
				t.Fatalf("exponent = %v, want %d", got.Children[1], tc.wantLog)
			}
		})
	}
}

func TestPeepholeNonPowerOfTwoUnchanged(t *testing.T) {
	n := NewExpr(OpMul, NewIdent("x"), NewNumber(3))
	got := Simplify(n)
	if got.Kind != Expression || got.Bin != OpMul {
		t.Fatalf("Simplify(x*3) rewrote a non-power-of-two: %v", got)
	}
}
