package cc

// This file turns a parsed DeclSpec + Declarator pair into a concrete
// *Type (§4.4 "Declarators", §9 "Cyclic type graphs"). It is shared by
// the parser (which needs concrete member types while completing a
// struct/union/enum body, since the TypeArena is populated
// immediately) and the semantic analyzer (which needs it for
// top-level declarations, parameters, and cast/sizeof type-names).
//
// Simplification: a parenthesized declarator, e.g. "(*p)[3]", is
// treated as transparent during type construction. Plain pointer,
// array, and function declarators (including their combinations, like
// "array of pointer" and "function returning pointer") build correctly;
// combining an outer array/function suffix with an inner
// parenthesized grouping -- genuine "pointer to array" / "pointer to
// function" declarators -- does not get the spiral-rule precedence
// right. These are rare enough in practice that the simplification is
// scoped to that one combination.

// BaseType resolves a DeclSpec's type keywords (and typedef/tag
// references) to a *Type, without applying any declarator wrapping.
func BaseType(sess *Session, spec DeclSpec) *Type {
	if spec.IsTypedef {
		if sym, ok := sess.typedefs[spec.TypedefName]; ok {
			return sym
		}
		return ErrorType()
	}
	switch spec.Base {
	case TVoid:
		return &Type{Kind: TVoid, Quals: spec.Quals}
	case TBool:
		return &Type{Kind: TBool, Quals: spec.Quals}
	case TFloat:
		return &Type{Kind: TFloat, Quals: spec.Quals}
	case TDouble:
		return &Type{Kind: TDouble, Quals: spec.Quals}
	case TChar, TShort, TInt, TLong:
		signed := true
		if spec.Unsigned {
			signed = false
		}
		return &Type{Kind: spec.Base, Signed: signed, Quals: spec.Quals}
	case TStruct, TUnion:
		id, ok := sess.Tags[spec.TagName]
		if !ok {
			id = sess.Types.Declare(spec.TagName, spec.Base == TUnion, false)
			sess.Tags[spec.TagName] = id
		}
		return &Type{Kind: spec.Base, Tag: id, Quals: spec.Quals}
	case TEnum:
		id, ok := sess.Tags[spec.TagName]
		if !ok {
			id = sess.Types.Declare(spec.TagName, false, true)
			sess.Tags[spec.TagName] = id
		}
		return &Type{Kind: TEnum, Tag: id, Quals: spec.Quals}
	default:
		return &Type{Kind: TInt, Signed: true, Quals: spec.Quals}
	}
}

// BuildType applies a Declarator's pointer/array/function layers to
// base, following the spiral grammar with base threaded as described
// above.
func BuildType(sess *Session, base *Type, d *Declarator) *Type {
	if d == nil {
		return base
	}
	switch d.Kind {
	case DeclIdent:
		return base
	case DeclPointer:
		return BuildType(sess, PointerTo(base, d.Quals), d.Inner)
	case DeclArray:
		elem := BuildType(sess, base, d.Inner)
		return ArrayOf(elem, arrayLenOf(sess, d))
	case DeclFunction:
		ret := BuildType(sess, base, d.Inner)
		params := make([]*Type, 0, len(d.Params))
		for _, p := range d.Params {
			params = append(params, BuildType(sess, BaseType(sess, p.Spec), p.Declarator))
		}
		return FunctionType(ret, params, d.Variadic)
	default:
		return base
	}
}

func arrayLenOf(sess *Session, d *Declarator) ArrayLen {
	if d.ArrayUnbounded || d.ArrayLen == nil {
		return UnboundedLen()
	}
	if v, ok := evalConstIntAST(sess, d.ArrayLen); ok {
		return FixedLen(int(v))
	}
	return UnboundedLen()
}

// DeclaredName walks a Declarator to its DeclIdent leaf.
func DeclaredName(d *Declarator) (Name, Location) {
	for d != nil {
		if d.Kind == DeclIdent {
			return d.Name, d.Loc
		}
		d = d.Inner
	}
	return 0, Location{}
}

// evalConstIntAST is a small literal-and-arithmetic evaluator over raw
// AST expressions, used for array bounds written inline in a
// declarator, enumerator values in the parser, and case labels in the
// analyzer. It handles literals and arithmetic on them only; an
// identifier (such as an enumerator) makes it report failure. The full
// constant folder (fold.go) operates on HIR and is what the semantic
// analyzer uses for other expressions.
func evalConstIntAST(sess *Session, e *Expr) (int64, bool) {
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
		return 0, false
	case EkUnary:
		v, ok := evalConstIntAST(sess, e.Operand)
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
		}
		return 0, false
	case EkBinary:
		l, ok1 := evalConstIntAST(sess, e.LHS)
		r, ok2 := evalConstIntAST(sess, e.RHS)
		if !ok1 || !ok2 {
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
				return 0, false
			}
			return l / r, true
		case BinShl:
			return l << uint(r), true
		case BinShr:
			return l >> uint(r), true
		}
		return 0, false
	default:
		return 0, false
	}
}
