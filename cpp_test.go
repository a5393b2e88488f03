package cc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func preprocess(t *testing.T, src string) ([]Token, *Diagnostics) {
	t.Helper()
	sess := NewSession(nil)
	file := sess.AddFile("t.c", []byte(src))
	diags := NewDiagnostics(0)
	lx := NewLexer(sess, file, sess.FileSource(file), diags)
	pp := NewPreprocessor(sess, lx, ".", diags)
	return pp.Tokens(), diags
}

func TestPreprocessorObjectMacroExpansion(t *testing.T) {
	toks, diags := preprocess(t, "#define N 42\nint x = N;\n")
	require.False(t, diags.HasErrors())
	var ints []int64
	for _, tok := range toks {
		if tok.Kind == TokIntLiteral {
			ints = append(ints, tok.Lit.Int)
		}
	}
	require.Equal(t, []int64{42}, ints)
}

func TestPreprocessorIfdefTakesThenBranch(t *testing.T) {
	toks, diags := preprocess(t, "#define A\n#ifdef A\nint x=1;\n#else\nint x=2;\n#endif\n")
	require.False(t, diags.HasErrors())
	var saw1, saw2 bool
	for _, tok := range toks {
		if tok.Kind == TokIntLiteral {
			if tok.Lit.Int == 1 {
				saw1 = true
			}
			if tok.Lit.Int == 2 {
				saw2 = true
			}
		}
	}
	require.True(t, saw1)
	require.False(t, saw2)
}

func TestPreprocessorIfdefTakesElseBranch(t *testing.T) {
	toks, diags := preprocess(t, "#ifdef MISSING\nint x=1;\n#else\nint x=2;\n#endif\n")
	require.False(t, diags.HasErrors())
	var saw2 bool
	for _, tok := range toks {
		if tok.Kind == TokIntLiteral && tok.Lit.Int == 2 {
			saw2 = true
		}
	}
	require.True(t, saw2)
}

func TestPreprocessorUndef(t *testing.T) {
	toks, diags := preprocess(t, "#define A 1\n#undef A\n#ifdef A\nint x=1;\n#else\nint x=2;\n#endif\n")
	require.False(t, diags.HasErrors())
	var got int64
	for _, tok := range toks {
		if tok.Kind == TokIntLiteral {
			got = tok.Lit.Int
		}
	}
	require.EqualValues(t, 2, got)
}

// Invariant 2: #if-like opens equal #endif closes in a successful compile.
func TestPreprocessorNestedConditionals(t *testing.T) {
	src := "#define A\n#ifdef A\n#ifdef B\nint x=1;\n#else\nint x=2;\n#endif\n#endif\n"
	toks, diags := preprocess(t, src)
	require.False(t, diags.HasErrors())
	var got int64
	for _, tok := range toks {
		if tok.Kind == TokIntLiteral {
			got = tok.Lit.Int
		}
	}
	require.EqualValues(t, 2, got)
}

func TestPreprocessorErrorInUntakenBranchIsInert(t *testing.T) {
	_, diags := preprocess(t, "#ifdef MISSING\n#error should not fire\n#endif\nint x = 1;\n")
	require.False(t, diags.HasErrors())
}

func TestPreprocessorWarningInUntakenBranchIsInert(t *testing.T) {
	_, diags := preprocess(t, "#ifdef MISSING\n#warning should not fire\n#endif\nint x = 1;\n")
	require.Empty(t, diags.Warnings())
}

func TestPreprocessorErrorInTakenBranchFires(t *testing.T) {
	_, diags := preprocess(t, "#error boom\n")
	require.True(t, diags.HasErrors())
	ce := diags.Errors()[0].Kind.(CppError)
	require.Equal(t, CppUser, ce.Code)
}

func TestPreprocessorSelfReferentialMacroDoesNotLoop(t *testing.T) {
	toks, diags := preprocess(t, "#define A A\nint x = A;\n")
	require.False(t, diags.HasErrors())
	var sawIdent bool
	for _, tok := range toks {
		if tok.Kind == TokIdent {
			sawIdent = true
		}
	}
	require.True(t, sawIdent, "a self-referential macro must not expand forever")
}
