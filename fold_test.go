package cc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intLit(v int64) *HIRExpr {
	return &HIRExpr{Kind: EkLiteral, Type: IntType(TLong, true), Lit: Literal{Kind: LitInt, Int: v}}
}

func TestFoldBinaryAdd(t *testing.T) {
	diags := NewDiagnostics(0)
	target := DefaultTarget()
	e := &HIRExpr{Kind: EkBinary, BinOp: BinAdd, LHS: intLit(2), RHS: intLit(3), Type: IntType(TInt, true)}
	got := FoldExpr(nil, diags, &target, e)
	require.Equal(t, EkLiteral, got.Kind)
	require.EqualValues(t, 5, got.Lit.Int)
	require.False(t, diags.HasErrors())
}

func TestFoldBinaryAddOverflow(t *testing.T) {
	diags := NewDiagnostics(0)
	target := DefaultTarget()
	e := &HIRExpr{Kind: EkBinary, BinOp: BinAdd, LHS: intLit(maxInt64), RHS: intLit(1), Type: IntType(TLong, true)}
	got := FoldExpr(nil, diags, &target, e)
	require.True(t, diags.HasErrors())
	se := diags.Errors()[0].Kind.(SemanticError)
	require.Equal(t, SemConstOverflow, se.Code)
	require.True(t, se.IsPositive)
	_ = got
}

func TestFoldUnaryMinusOverflow(t *testing.T) {
	diags := NewDiagnostics(0)
	target := DefaultTarget()
	e := &HIRExpr{Kind: EkUnary, UnaryOp: UnMinus, Operand: intLit(minInt64), Type: IntType(TLong, true)}
	FoldExpr(nil, diags, &target, e)
	require.True(t, diags.HasErrors())
	se := diags.Errors()[0].Kind.(SemanticError)
	require.Equal(t, SemConstOverflow, se.Code)
}

func TestFoldDivideByZero(t *testing.T) {
	diags := NewDiagnostics(0)
	target := DefaultTarget()
	e := &HIRExpr{Kind: EkBinary, BinOp: BinDiv, LHS: intLit(1), RHS: intLit(0), Type: IntType(TInt, true)}
	FoldExpr(nil, diags, &target, e)
	require.True(t, diags.HasErrors())
	se := diags.Errors()[0].Kind.(SemanticError)
	require.Equal(t, SemDivideByZero, se.Code)
}

func TestFoldNegativeShift(t *testing.T) {
	diags := NewDiagnostics(0)
	target := DefaultTarget()
	e := &HIRExpr{Kind: EkBinary, BinOp: BinShl, LHS: intLit(1), RHS: intLit(-1), Type: IntType(TLong, true)}
	FoldExpr(nil, diags, &target, e)
	require.True(t, diags.HasErrors())
	se := diags.Errors()[0].Kind.(SemanticError)
	require.Equal(t, SemNegativeShift, se.Code)
	require.True(t, se.IsLeft)
}

func TestFoldRightShiftAtWidthIsZero(t *testing.T) {
	diags := NewDiagnostics(0)
	target := DefaultTarget()
	e := &HIRExpr{Kind: EkBinary, BinOp: BinShr, LHS: intLit(1), RHS: intLit(64), Type: IntType(TLong, true)}
	got := FoldExpr(nil, diags, &target, e)
	require.False(t, diags.HasErrors())
	require.EqualValues(t, 0, got.Lit.Int)
}

func TestFoldComparisonToInt(t *testing.T) {
	diags := NewDiagnostics(0)
	target := DefaultTarget()
	e := &HIRExpr{Kind: EkBinary, BinOp: BinLt, LHS: intLit(1), RHS: intLit(2)}
	got := FoldExpr(nil, diags, &target, e)
	require.Equal(t, EkLiteral, got.Kind)
	require.EqualValues(t, 1, got.Lit.Int)
}

func TestFoldLogicalAndShortCircuitsToLiteral(t *testing.T) {
	diags := NewDiagnostics(0)
	target := DefaultTarget()
	e := &HIRExpr{Kind: EkBinary, BinOp: BinLogAnd, LHS: intLit(0), RHS: intLit(1)}
	got := FoldExpr(nil, diags, &target, e)
	require.EqualValues(t, 0, got.Lit.Int)
}

func TestFoldLogicalAndShortCircuitsWithNonFoldableRHS(t *testing.T) {
	diags := NewDiagnostics(0)
	target := DefaultTarget()
	ident := &HIRExpr{Kind: EkIdent, Type: IntType(TInt, true)}
	e := &HIRExpr{Kind: EkBinary, BinOp: BinLogAnd, LHS: intLit(0), RHS: ident}
	got := FoldExpr(nil, diags, &target, e)
	require.Equal(t, EkLiteral, got.Kind)
	require.EqualValues(t, 0, got.Lit.Int)
}

func TestFoldLogicalOrShortCircuitsWithNonFoldableRHS(t *testing.T) {
	diags := NewDiagnostics(0)
	target := DefaultTarget()
	ident := &HIRExpr{Kind: EkIdent, Type: IntType(TInt, true)}
	e := &HIRExpr{Kind: EkBinary, BinOp: BinLogOr, LHS: intLit(1), RHS: ident}
	got := FoldExpr(nil, diags, &target, e)
	require.Equal(t, EkLiteral, got.Kind)
	require.EqualValues(t, 1, got.Lit.Int)
}

func TestFoldIsFixpoint(t *testing.T) {
	diags := NewDiagnostics(0)
	target := DefaultTarget()
	e := &HIRExpr{Kind: EkBinary, BinOp: BinMul, LHS: intLit(6), RHS: intLit(7)}
	once := FoldExpr(nil, diags, &target, e)
	twice := FoldExpr(nil, diags, &target, once)
	require.Equal(t, once.Kind, twice.Kind)
	require.Equal(t, once.Lit, twice.Lit)
}

func TestCheckedIntOpOverflow(t *testing.T) {
	_, overflow := checkedIntOp(BinMul, maxInt64, 2)
	require.True(t, overflow)

	v, overflow := checkedIntOp(BinAdd, 2, 3)
	require.False(t, overflow)
	require.EqualValues(t, 5, v)
}

func TestFoldConstIntOnlyArithmetic(t *testing.T) {
	sess := NewSession(nil)
	diags := NewDiagnostics(0)
	e := &Expr{Kind: EkBinary, BinOp: BinAdd,
		LHS: &Expr{Kind: EkLiteral, Lit: Literal{Kind: LitInt, Int: 2}},
		RHS: &Expr{Kind: EkBinary, BinOp: BinMul,
			LHS: &Expr{Kind: EkLiteral, Lit: Literal{Kind: LitInt, Int: 3}},
			RHS: &Expr{Kind: EkLiteral, Lit: Literal{Kind: LitInt, Int: 4}},
		},
	}
	got := foldConstIntOnly(sess, diags, e)
	require.EqualValues(t, 14, got)
	require.False(t, diags.HasErrors())
}

func TestFoldConstIntOnlyDivisionByZero(t *testing.T) {
	sess := NewSession(nil)
	diags := NewDiagnostics(0)
	e := &Expr{Kind: EkBinary, BinOp: BinDiv,
		LHS: &Expr{Kind: EkLiteral, Lit: Literal{Kind: LitInt, Int: 1}},
		RHS: &Expr{Kind: EkLiteral, Lit: Literal{Kind: LitInt, Int: 0}},
	}
	foldConstIntOnly(sess, diags, e)
	require.True(t, diags.HasErrors())
	ce := diags.Errors()[0].Kind.(CppError)
	require.Equal(t, CppUnexpectedToken, ce.Code)
}
