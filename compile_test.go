package cc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func compileString(t *testing.T, src string) (*Session, *Program) {
	t.Helper()
	sess := NewSession(NewConfig())
	prog := sess.CompileSource("test.c", []byte(src))
	return sess, prog
}

func firstSemanticError(sess *Session) (SemanticError, bool) {
	for _, d := range sess.Diags.Sorted() {
		if se, ok := d.Kind.(SemanticError); ok {
			return se, true
		}
	}
	return SemanticError{}, false
}

func firstLexError(sess *Session) (LexError, bool) {
	for _, d := range sess.Diags.Sorted() {
		if le, ok := d.Kind.(LexError); ok {
			return le, true
		}
	}
	return LexError{}, false
}

// Scenario 1: integer overflow folding.
func TestScenarioIntegerOverflowFolding(t *testing.T) {
	sess, _ := compileString(t, "int x = 0x7fffffffffffffffL + 1;")
	se, ok := firstSemanticError(sess)
	require.True(t, ok, "expected a semantic error")
	require.Equal(t, SemConstOverflow, se.Code)
	require.True(t, se.IsPositive)
}

// Scenario 2: divide by zero.
func TestScenarioDivideByZero(t *testing.T) {
	sess, _ := compileString(t, "int x = 1 / (2 - 2);")
	se, ok := firstSemanticError(sess)
	require.True(t, ok)
	require.Equal(t, SemDivideByZero, se.Code)
}

// Scenario 3: shift too large.
func TestScenarioShiftTooLarge(t *testing.T) {
	sess, _ := compileString(t, "int x = 1 << 65;")
	se, ok := firstSemanticError(sess)
	require.True(t, ok)
	require.Equal(t, SemTooManyShiftBits, se.Code)
	require.True(t, se.IsLeft)
	require.Equal(t, 64, se.Maximum)
	require.Equal(t, 65, se.Current)
}

// Scenario 4: unterminated comment.
func TestScenarioUnterminatedComment(t *testing.T) {
	sess, _ := compileString(t, "/* never ends")
	le, ok := firstLexError(sess)
	require.True(t, ok)
	require.Equal(t, LexUnterminatedComment, le.Code)
}

// Scenario 5: array bound inference from an initializer list.
func TestScenarioArrayBoundInference(t *testing.T) {
	sess, prog := compileString(t, "int a[] = {1,2,3};\nint main(void) { return sizeof a / sizeof a[0]; }\n")
	require.False(t, sess.Diags.HasErrors(), "unexpected errors: %v", sess.Diags.Sorted())

	var arrDecl *HIRDecl
	for _, d := range prog.Decls {
		if d.Value.Kind == HDeclVar {
			arrDecl = d.Value
		}
	}
	require.NotNil(t, arrDecl)
	require.Equal(t, TArray, arrDecl.Type.Kind)
	require.True(t, arrDecl.Type.ArrayLen.Fixed)
	require.Equal(t, 3, arrDecl.Type.ArrayLen.Len)
}

// Scenario 6: recursive struct (self-referential pointer member).
func TestScenarioRecursiveStruct(t *testing.T) {
	sess, _ := compileString(t, `
struct p { int i; struct p *q; } s;
int main(void) { s.q = &s; s.q->q->q->i = 1; return s.i; }
`)
	require.False(t, sess.Diags.HasErrors(), "unexpected errors: %v", sess.Diags.Sorted())
}

// Scenario 7: character escapes.
func TestScenarioCharEscapes(t *testing.T) {
	sess, prog := compileString(t, "int x = '\\xff';\n")
	require.False(t, sess.Diags.HasErrors())
	var varDecl *HIRDecl
	for _, d := range prog.Decls {
		varDecl = d.Value
	}
	require.NotNil(t, varDecl)
	require.NotNil(t, varDecl.Init)
	require.Equal(t, LitChar, varDecl.Init.Expr.Lit.Kind)
	require.Equal(t, byte(0xff), varDecl.Init.Expr.Lit.Char)

	sess2, _ := compileString(t, "int y = '\\xfff';")
	le, ok := firstLexError(sess2)
	require.True(t, ok)
	require.Equal(t, LexCharEscapeOutOfRange, le.Code)
	require.Equal(t, EscapeHex, le.Radix)
}

// Scenario 8: conditional compilation.
func TestScenarioConditionalCompilation(t *testing.T) {
	src := "#define A\n#ifdef A\nint x=1;\n#else\nint x=2;\n#endif\n"
	sess, prog := compileString(t, src)
	require.False(t, sess.Diags.HasErrors())
	require.Len(t, prog.Decls, 1)
	decl := prog.Decls[0].Value
	require.Equal(t, "x", sess.String(decl.Name))
	require.Equal(t, LitInt, decl.Init.Expr.Lit.Kind)
	require.EqualValues(t, 1, decl.Init.Expr.Lit.Int)
}

func TestMainSignatureValidation(t *testing.T) {
	sess, _ := compileString(t, "double main(double x) { return x; }")
	se, ok := firstSemanticError(sess)
	require.True(t, ok)
	require.Equal(t, SemInvalidMainSignature, se.Code)
}

func TestMainSignatureAccepted(t *testing.T) {
	sess, _ := compileString(t, "int main(int argc, char **argv) { return argc; }\n")
	require.False(t, sess.Diags.HasErrors(), "unexpected errors: %v", sess.Diags.Sorted())
}

func TestUndeclaredVariable(t *testing.T) {
	sess, _ := compileString(t, "int main(void) { return y; }")
	se, ok := firstSemanticError(sess)
	require.True(t, ok)
	require.Equal(t, SemUndeclaredVar, se.Code)
}

func TestExternThenStaticRedeclarationIsIncompatible(t *testing.T) {
	sess, _ := compileString(t, "extern int x;\nstatic int x;\n")
	se, ok := firstSemanticError(sess)
	require.True(t, ok)
	require.Equal(t, SemIncompatibleRedeclaration, se.Code)
}

func TestExternThenDefinitionMerges(t *testing.T) {
	sess, _ := compileString(t, "extern int x;\nint x = 5;\n")
	require.False(t, sess.Diags.HasErrors(), "unexpected errors: %v", sess.Diags.Sorted())
}

func TestRedefinitionOfInitializedVariable(t *testing.T) {
	sess, _ := compileString(t, "int x = 1;\nint x = 2;\n")
	se, ok := firstSemanticError(sess)
	require.True(t, ok)
	require.Equal(t, SemRedefinition, se.Code)
}

func TestGotoUndeclaredLabel(t *testing.T) {
	sess, _ := compileString(t, "int main(void) { goto nowhere; return 0; }")
	se, ok := firstSemanticError(sess)
	require.True(t, ok)
	require.Equal(t, SemUndeclaredLabel, se.Code)
}

func TestBreakOutsideLoop(t *testing.T) {
	sess, _ := compileString(t, "int main(void) { break; return 0; }")
	se, ok := firstSemanticError(sess)
	require.True(t, ok)
	require.Equal(t, SemBreakOutsideLoop, se.Code)
}

func TestDuplicateCaseValue(t *testing.T) {
	sess, _ := compileString(t, `
int main(void) {
	int x = 0;
	switch (x) {
	case 1: break;
	case 1: break;
	}
	return 0;
}
`)
	se, ok := firstSemanticError(sess)
	require.True(t, ok)
	require.Equal(t, SemDuplicateCase, se.Code)
}

func TestEnumeratorConstantFolds(t *testing.T) {
	sess, prog := compileString(t, "enum color { RED, GREEN, BLUE }; int x = GREEN;\n")
	require.False(t, sess.Diags.HasErrors(), "unexpected errors: %v", sess.Diags.Sorted())
	var x *HIRDecl
	for _, d := range prog.Decls {
		if d.Value.Name != 0 && sess.String(d.Value.Name) == "x" {
			x = d.Value
		}
	}
	require.NotNil(t, x)
	require.Equal(t, LitInt, x.Init.Expr.Lit.Kind)
	require.EqualValues(t, 1, x.Init.Expr.Lit.Int)
}

func TestFoldingIsAFixpoint(t *testing.T) {
	_, prog := compileString(t, "int x = (1 + 2) * 3;")
	var x *HIRDecl
	for _, d := range prog.Decls {
		x = d.Value
	}
	require.NotNil(t, x)
	require.Equal(t, EkLiteral, x.Init.Expr.Kind)
	require.EqualValues(t, 9, x.Init.Expr.Lit.Int)

	sess2 := NewSession(NewConfig())
	target := DefaultTarget()
	refolded := FoldExpr(sess2, sess2.Diags, &target, x.Init.Expr)
	require.Equal(t, x.Init.Expr.Kind, refolded.Kind)
	require.Equal(t, x.Init.Expr.Lit, refolded.Lit)
}

func TestSizeofExpressionFolds(t *testing.T) {
	sess, prog := compileString(t, "int x = sizeof(int);\n")
	require.False(t, sess.Diags.HasErrors())
	var x *HIRDecl
	for _, d := range prog.Decls {
		x = d.Value
	}
	require.NotNil(t, x)
	require.Equal(t, EkLiteral, x.Init.Expr.Kind)
	require.Equal(t, LitUint, x.Init.Expr.Lit.Kind)
	require.EqualValues(t, 4, x.Init.Expr.Lit.Uint)
}

func TestMemberAccessOnIncompleteStructErrors(t *testing.T) {
	sess, _ := compileString(t, "struct s; int main(void) { struct s *p; return p->x; }")
	se, ok := firstSemanticError(sess)
	require.True(t, ok)
	require.Equal(t, SemIncompleteType, se.Code)
}

func TestCallArgumentCountMismatch(t *testing.T) {
	sess, _ := compileString(t, "int add(int a, int b); int main(void) { return add(1); }")
	se, ok := firstSemanticError(sess)
	require.True(t, ok)
	require.Equal(t, SemArgCountMismatch, se.Code)
}

func TestStructLayoutOffsetsAreMonotonicAndAligned(t *testing.T) {
	sess, _ := compileString(t, "struct s { char c; int i; double d; } v;\n")
	require.False(t, sess.Diags.HasErrors(), "unexpected errors: %v", sess.Diags.Sorted())

	var tag TagID
	for name, id := range sess.Tags {
		_ = name
		tag = id
	}
	require.NotZero(t, tag)

	target := DefaultTarget()
	sess.Types.ComputeLayout(&target, tag)
	def := sess.Types.Def(tag)
	require.True(t, def.Complete)
	require.Equal(t, 0, def.Members[0].Offset)
	for i := 1; i < len(def.Members); i++ {
		prevSize, ok := sess.Types.SizeOf(&target, def.Members[i-1].Type)
		require.True(t, ok)
		require.GreaterOrEqual(t, def.Members[i].Offset, def.Members[i-1].Offset+prevSize)
		align, ok := sess.Types.AlignOf(&target, def.Members[i].Type)
		require.True(t, ok)
		require.Equal(t, 0, def.Members[i].Offset%align)
	}
}

func TestPointerSubtractionYieldsSignedInteger(t *testing.T) {
	sess, prog := compileString(t, "int a[4]; int d = &a[3] - &a[0];\n")
	require.False(t, sess.Diags.HasErrors(), "unexpected errors: %v", sess.Diags.Sorted())
	var d *HIRDecl
	for _, decl := range prog.Decls {
		if decl.Value.Name != 0 && sess.String(decl.Value.Name) == "d" {
			d = decl.Value
		}
	}
	require.NotNil(t, d)
	require.Equal(t, TLong, d.Init.Expr.Type.Kind)
	require.True(t, d.Init.Expr.Type.Signed)
}

func TestDebugLexTracesTokenCount(t *testing.T) {
	cfg := NewConfig()
	cfg.SetBool("debug-lex", true)
	sess := NewSession(cfg)
	var got []string
	sess.UseTracer(FuncTracer(func(format string, args ...any) {
		got = append(got, format)
	}))
	sess.CompileSource("t.c", []byte("int x = 1;"))
	require.NotEmpty(t, got)
}

func TestScopeDepthReturnsToGlobalAfterEachDecl(t *testing.T) {
	sess := NewSession(NewConfig())
	an := NewAnalyzer(sess, sess.Diags)
	require.Equal(t, 1, an.scope.Depth())

	d := &Decl{
		Spec:       DeclSpec{Base: TInt},
		Declarator: &Declarator{Kind: DeclIdent, Name: sess.Intern("g")},
	}
	an.AnalyzeDecl(d)
	require.Equal(t, 1, an.scope.Depth(), "top-level declarations never change scope depth")
}
