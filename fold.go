package cc

// This file is the constant folder (§4.7), grounded directly on
// original_source/src/fold.rs: per-category binary-op dispatch over
// Int/UnsignedInt/Char/Float literals, the is_positive overflow sign
// convention, and literal-to-literal folding of unary/binary/ternary
// nodes. FoldExpr operates on HIR (used by the semantic analyzer to
// fold constant subexpressions as it builds them); foldConstIntOnly is
// a narrower AST-level evaluator used by the preprocessor, which has
// no HIR to fold (§4.3 "#if/#elif expressions").

// FoldExpr attempts to reduce e to a single literal, recursing into
// operands first. Non-foldable operands (or operators) leave e
// otherwise unchanged. Diagnostics (overflow, divide-by-zero, negative
// or too-large shift amounts) are reported at e's location, matching
// fold.rs's per-operator error sites.
func FoldExpr(sess *Session, diags *Diagnostics, target *Target, e *HIRExpr) *HIRExpr {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case EkLiteral:
		return e
	case EkUnary:
		e.Operand = FoldExpr(sess, diags, target, e.Operand)
		return foldUnary(diags, e)
	case EkBinary:
		e.LHS = FoldExpr(sess, diags, target, e.LHS)
		e.RHS = FoldExpr(sess, diags, target, e.RHS)
		return foldBinary(diags, target, e)
	case EkTernary:
		e.Cond = FoldExpr(sess, diags, target, e.Cond)
		e.Then = FoldExpr(sess, diags, target, e.Then)
		e.Else = FoldExpr(sess, diags, target, e.Else)
		if e.Cond.Kind == EkLiteral {
			if e.Cond.IsZeroLiteral() {
				return e.Else
			}
			return e.Then
		}
		return e
	case EkComma:
		e.LHS = FoldExpr(sess, diags, target, e.LHS)
		e.RHS = FoldExpr(sess, diags, target, e.RHS)
		return e
	default:
		return e
	}
}

func foldUnary(diags *Diagnostics, e *HIRExpr) *HIRExpr {
	if e.Operand.Kind != EkLiteral {
		return e
	}
	lit := e.Operand.Lit
	switch e.UnaryOp {
	case UnMinus:
		switch lit.Kind {
		case LitInt:
			v, overflow := negOverflows(lit.Int)
			if overflow {
				diags.Error(SemanticError{Code: SemConstOverflow, IsPositive: v < 0}, e.Loc, passSemantic)
				return e
			}
			return litInt(e.Loc, e.Type, v)
		case LitUint:
			return litUint(e.Loc, e.Type, -lit.Uint)
		case LitFloat:
			return litFloat(e.Loc, e.Type, -lit.Float)
		case LitChar:
			return litChar(e.Loc, e.Type, byte(-lit.Char))
		}
	case UnPlus:
		return e.Operand
	case UnBitNot:
		switch lit.Kind {
		case LitInt:
			return litInt(e.Loc, e.Type, ^lit.Int)
		case LitUint:
			return litUint(e.Loc, e.Type, ^lit.Uint)
		case LitChar:
			return litChar(e.Loc, e.Type, ^lit.Char)
		}
	case UnNot:
		if lit.Kind == LitInt || lit.Kind == LitUint || lit.Kind == LitChar {
			return litInt(e.Loc, IntType(TInt, true), boolInt(e.Operand.IsZeroLiteral()))
		}
	}
	return e
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func negOverflows(v int64) (int64, bool) {
	if v == minInt64 {
		return v, true
	}
	return -v, false
}

const (
	minInt64 = -1 << 63
	maxInt64 = 1<<63 - 1
)

func litInt(loc Location, t *Type, v int64) *HIRExpr {
	if t == nil {
		t = IntType(TInt, true)
	}
	return &HIRExpr{Kind: EkLiteral, Loc: loc, Type: t, Lit: Literal{Kind: LitInt, Int: v}}
}

func litUint(loc Location, t *Type, v uint64) *HIRExpr {
	if t == nil {
		t = IntType(TInt, false)
	}
	return &HIRExpr{Kind: EkLiteral, Loc: loc, Type: t, Lit: Literal{Kind: LitUint, Uint: v}}
}

func litFloat(loc Location, t *Type, v float64) *HIRExpr {
	if t == nil {
		t = DoubleType()
	}
	return &HIRExpr{Kind: EkLiteral, Loc: loc, Type: t, Lit: Literal{Kind: LitFloat, Float: v}}
}

func litChar(loc Location, t *Type, v byte) *HIRExpr {
	if t == nil {
		t = IntType(TChar, true)
	}
	return &HIRExpr{Kind: EkLiteral, Loc: loc, Type: t, Lit: Literal{Kind: LitChar, Char: v}}
}

func foldBinary(diags *Diagnostics, target *Target, e *HIRExpr) *HIRExpr {
	l, r := e.LHS, e.RHS
	// `&&`/`||` short-circuit as soon as the left literal side determines
	// the result (0 for `&&`, nonzero for `||`), even when the right side
	// is not itself foldable (§4.7). A literal right side alone does not
	// short-circuit.
	if e.BinOp == BinLogAnd && l.Kind == EkLiteral && l.IsZeroLiteral() {
		return litInt(e.Loc, IntType(TInt, true), 0)
	}
	if e.BinOp == BinLogOr && l.Kind == EkLiteral && !l.IsZeroLiteral() {
		return litInt(e.Loc, IntType(TInt, true), 1)
	}
	if l.Kind != EkLiteral || r.Kind != EkLiteral {
		return e
	}
	switch e.BinOp {
	case BinAdd, BinSub, BinMul:
		return foldScalarArith(diags, e)
	case BinDiv:
		if r.IsZeroLiteral() {
			diags.Error(SemanticError{Code: SemDivideByZero}, e.Loc, passSemantic)
			return e
		}
		return foldScalarArith(diags, e)
	case BinMod:
		if r.IsZeroLiteral() {
			diags.Error(SemanticError{Code: SemDivideByZero}, e.Loc, passSemantic)
			return e
		}
		return foldIntArith(diags, e, func(a, b int64) int64 { return a % b }, func(a, b uint64) uint64 { return a % b })
	case BinBitAnd:
		return foldIntArith(diags, e, func(a, b int64) int64 { return a & b }, func(a, b uint64) uint64 { return a & b })
	case BinBitOr:
		return foldIntArith(diags, e, func(a, b int64) int64 { return a | b }, func(a, b uint64) uint64 { return a | b })
	case BinBitXor:
		return foldIntArith(diags, e, func(a, b int64) int64 { return a ^ b }, func(a, b uint64) uint64 { return a ^ b })
	case BinShl:
		return foldShift(diags, target, e, true)
	case BinShr:
		return foldShift(diags, target, e, false)
	case BinLt, BinGt, BinLe, BinGe, BinEq, BinNe:
		return foldCompare(e)
	case BinLogAnd:
		return litInt(e.Loc, IntType(TInt, true), boolInt(!l.IsZeroLiteral() && !r.IsZeroLiteral()))
	case BinLogOr:
		return litInt(e.Loc, IntType(TInt, true), boolInt(!l.IsZeroLiteral() || !r.IsZeroLiteral()))
	}
	return e
}

func foldScalarArith(diags *Diagnostics, e *HIRExpr) *HIRExpr {
	l, r := e.LHS.Lit, e.RHS.Lit
	switch {
	case l.Kind == LitInt && r.Kind == LitInt:
		v, overflow := checkedIntOp(e.BinOp, l.Int, r.Int)
		if overflow {
			// the wrapped value has the opposite sign of the true result
			// for +, - and /; for * the true sign follows the operands.
			positive := v < 0
			if e.BinOp == BinMul {
				positive = (l.Int < 0) == (r.Int < 0)
			}
			diags.Error(SemanticError{Code: SemConstOverflow, IsPositive: positive}, e.Loc, passSemantic)
			return e
		}
		return litInt(e.Loc, e.Type, v)
	case l.Kind == LitUint && r.Kind == LitUint:
		return litUint(e.Loc, e.Type, wrappingUintOp(e.BinOp, l.Uint, r.Uint))
	case l.Kind == LitFloat || r.Kind == LitFloat:
		a, b := toFloat(l), toFloat(r)
		return litFloat(e.Loc, e.Type, floatOp(e.BinOp, a, b))
	default:
		return e
	}
}

func toFloat(l Literal) float64 {
	switch l.Kind {
	case LitFloat:
		return l.Float
	case LitInt:
		return float64(l.Int)
	case LitUint:
		return float64(l.Uint)
	case LitChar:
		return float64(l.Char)
	}
	return 0
}

func floatOp(op BinaryOp, a, b float64) float64 {
	switch op {
	case BinAdd:
		return a + b
	case BinSub:
		return a - b
	case BinMul:
		return a * b
	case BinDiv:
		return a / b
	}
	return 0
}

// checkedIntOp implements fold.rs's overflowing_add/sub/mul/div for
// signed 64-bit arithmetic, reporting overflow the way Rust's checked
// intrinsics do (wraparound value plus a bool). Division by zero is
// rejected by the caller before this is reached.
func checkedIntOp(op BinaryOp, a, b int64) (int64, bool) {
	switch op {
	case BinAdd:
		sum := a + b
		overflow := (b > 0 && sum < a) || (b < 0 && sum > a)
		return sum, overflow
	case BinSub:
		diff := a - b
		overflow := (b < 0 && diff < a) || (b > 0 && diff > a)
		return diff, overflow
	case BinMul:
		if a == 0 || b == 0 {
			return 0, false
		}
		prod := a * b
		overflow := prod/b != a || (a == -1<<63 && b == -1)
		return prod, overflow
	case BinDiv:
		if a == -1<<63 && b == -1 {
			return a, true
		}
		return a / b, false
	}
	return 0, false
}

func wrappingUintOp(op BinaryOp, a, b uint64) uint64 {
	switch op {
	case BinAdd:
		return a + b
	case BinSub:
		return a - b
	case BinMul:
		return a * b
	case BinDiv:
		if b == 0 {
			return 0
		}
		return a / b
	}
	return 0
}

func foldIntArith(diags *Diagnostics, e *HIRExpr, signedOp func(a, b int64) int64, unsignedOp func(a, b uint64) uint64) *HIRExpr {
	l, r := e.LHS.Lit, e.RHS.Lit
	switch {
	case l.Kind == LitInt && r.Kind == LitInt:
		return litInt(e.Loc, e.Type, signedOp(l.Int, r.Int))
	case l.Kind == LitUint && r.Kind == LitUint:
		return litUint(e.Loc, e.Type, unsignedOp(l.Uint, r.Uint))
	case l.Kind == LitChar && r.Kind == LitChar:
		return litChar(e.Loc, e.Type, byte(signedOp(int64(l.Char), int64(r.Char))))
	default:
		return e
	}
}

func foldCompare(e *HIRExpr) *HIRExpr {
	l, r := e.LHS.Lit, e.RHS.Lit
	var a, b float64
	switch {
	case l.Kind == LitInt && r.Kind == LitInt:
		a, b = float64(l.Int), float64(r.Int)
	case l.Kind == LitUint && r.Kind == LitUint:
		a, b = float64(l.Uint), float64(r.Uint)
	case l.Kind == LitFloat || r.Kind == LitFloat:
		a, b = toFloat(l), toFloat(r)
	case l.Kind == LitChar && r.Kind == LitChar:
		a, b = float64(l.Char), float64(r.Char)
	default:
		return e
	}
	var result bool
	switch e.BinOp {
	case BinLt:
		result = a < b
	case BinGt:
		result = a > b
	case BinLe:
		result = a <= b
	case BinGe:
		result = a >= b
	case BinEq:
		result = a == b
	case BinNe:
		result = a != b
	}
	return litInt(e.Loc, IntType(TInt, true), boolInt(result))
}

// foldShift implements fold.rs's shift_left/shift_right: the shift
// amount must be non-negative (else NegativeShift), and a left shift
// on a signed type must not exceed the operand type's bit width (else
// TooManyShiftBits). A right shift amount at or beyond the type's
// width folds to zero rather than erroring, matching the original's
// "Rust panics if the shift is greater than the size of the type" early-out.
func foldShift(diags *Diagnostics, target *Target, e *HIRExpr, isLeft bool) *HIRExpr {
	r := e.RHS.Lit
	var shift int64
	switch r.Kind {
	case LitInt:
		shift = r.Int
	case LitUint:
		shift = int64(r.Uint)
	case LitChar:
		shift = int64(r.Char)
	default:
		return e
	}
	if shift < 0 {
		diags.Error(SemanticError{Code: SemNegativeShift, IsLeft: isLeft}, e.Loc, passSemantic)
		return e
	}
	bits := 64
	if e.LHS.Type != nil {
		if sz, ok := sizeOfOrDefault(target, e.LHS.Type); ok {
			bits = sz * 8
		}
	}
	if isLeft && e.LHS.Type != nil && e.LHS.Type.Signed {
		if shift >= int64(bits) {
			diags.Error(SemanticError{Code: SemTooManyShiftBits, IsLeft: true, Current: int(shift), Maximum: bits}, e.Loc, passSemantic)
			return e
		}
	}
	if !isLeft && shift >= int64(bits) {
		return litInt(e.Loc, e.LHS.Type, 0)
	}
	l := e.LHS.Lit
	switch l.Kind {
	case LitInt:
		v, overflow := shiftInt(l.Int, shift, isLeft)
		if overflow {
			diags.Error(SemanticError{Code: SemConstOverflow, IsPositive: true}, e.Loc, passSemantic)
			return e
		}
		return litInt(e.Loc, e.LHS.Type, v)
	case LitUint:
		if isLeft {
			return litUint(e.Loc, e.LHS.Type, l.Uint<<uint(shift))
		}
		return litUint(e.Loc, e.LHS.Type, l.Uint>>uint(shift))
	}
	return e
}

func sizeOfOrDefault(target *Target, ty *Type) (int, bool) {
	if target == nil {
		t := DefaultTarget()
		target = &t
	}
	arena := NewTypeArena()
	return arena.SizeOf(target, ty)
}

func shiftInt(v, shift int64, isLeft bool) (int64, bool) {
	if isLeft {
		result := v << uint(shift)
		if v != 0 && (result>>uint(shift)) != v {
			return result, true
		}
		return result, false
	}
	return v >> uint(shift), false
}

// ---- AST-level integer-only folder (preprocessor #if/#elif, §4.3) ----

// foldConstIntOnly evaluates a parsed #if/#elif expression to an
// int64. It works directly over the untyped AST (no HIR exists yet
// during preprocessing) and restricts itself to integer arithmetic,
// per §4.3's "the constant-expression grammar accepted by #if is a
// subset: no floats, no casts, no sizeof".
func foldConstIntOnly(sess *Session, diags *Diagnostics, e *Expr) int64 {
	v, ok := evalPPInt(diags, e)
	if !ok {
		return 0
	}
	return v
}

func evalPPInt(diags *Diagnostics, e *Expr) (int64, bool) {
	if e == nil {
		return 0, false
	}
	switch e.Kind {
	case EkLiteral:
		switch e.Lit.Kind {
		case LitInt:
			return e.Lit.Int, true
		case LitUint:
			return int64(e.Lit.Uint), true
		case LitChar:
			return int64(e.Lit.Char), true
		}
		diags.Error(CppError{Code: CppUnexpectedToken, Detail: "non-integer constant"}, e.Loc, passPreprocessor)
		return 0, false
	case EkUnary:
		v, ok := evalPPInt(diags, e.Operand)
		if !ok {
			return 0, false
		}
		switch e.UnaryOp {
		case UnMinus:
			return -v, true
		case UnPlus:
			return v, true
		case UnBitNot:
			return ^v, true
		case UnNot:
			return boolInt(v == 0), true
		}
		return 0, false
	case EkBinary:
		l, lok := evalPPInt(diags, e.LHS)
		r, rok := evalPPInt(diags, e.RHS)
		if !lok || !rok {
			return 0, false
		}
		switch e.BinOp {
		case BinAdd:
			return l + r, true
		case BinSub:
			return l - r, true
		case BinMul:
			return l * r, true
		case BinDiv:
			if r == 0 {
				diags.Error(CppError{Code: CppUnexpectedToken, Detail: "division by zero"}, e.Loc, passPreprocessor)
				return 0, false
			}
			return l / r, true
		case BinMod:
			if r == 0 {
				diags.Error(CppError{Code: CppUnexpectedToken, Detail: "division by zero"}, e.Loc, passPreprocessor)
				return 0, false
			}
			return l % r, true
		case BinShl:
			return l << uint(r), true
		case BinShr:
			return l >> uint(r), true
		case BinLt:
			return boolInt(l < r), true
		case BinGt:
			return boolInt(l > r), true
		case BinLe:
			return boolInt(l <= r), true
		case BinGe:
			return boolInt(l >= r), true
		case BinEq:
			return boolInt(l == r), true
		case BinNe:
			return boolInt(l != r), true
		case BinBitAnd:
			return l & r, true
		case BinBitOr:
			return l | r, true
		case BinBitXor:
			return l ^ r, true
		case BinLogAnd:
			return boolInt(l != 0 && r != 0), true
		case BinLogOr:
			return boolInt(l != 0 || r != 0), true
		}
		return 0, false
	case EkTernary:
		c, ok := evalPPInt(diags, e.Cond)
		if !ok {
			return 0, false
		}
		if c != 0 {
			return evalPPInt(diags, e.Then)
		}
		return evalPPInt(diags, e.Else)
	default:
		diags.Error(CppError{Code: CppUnexpectedToken, Detail: "unsupported #if expression"}, e.Loc, passPreprocessor)
		return 0, false
	}
}
