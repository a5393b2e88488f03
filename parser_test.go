package cc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func parseAll(t *testing.T, src string) ([]*Decl, *Diagnostics) {
	t.Helper()
	sess := NewSession(nil)
	file := sess.AddFile("t.c", []byte(src))
	diags := NewDiagnostics(0)
	lx := NewLexer(sess, file, sess.FileSource(file), diags)
	pp := NewPreprocessor(sess, lx, ".", diags)
	toks := pp.Tokens()
	p := NewParser(sess, toks, diags)
	return p.ParseTranslationUnit(), diags
}

func TestParserSimpleVarDecl(t *testing.T) {
	decls, diags := parseAll(t, "int x = 1;\n")
	require.False(t, diags.HasErrors())
	require.Len(t, decls, 1)
	require.Equal(t, TInt, decls[0].Spec.Base)
	require.Equal(t, DeclIdent, decls[0].Declarator.Kind)
}

func TestParserFunctionDefinition(t *testing.T) {
	decls, diags := parseAll(t, "int add(int a, int b) { return a + b; }\n")
	require.False(t, diags.HasErrors())
	require.Len(t, decls, 1)
	require.Equal(t, DeclFunction, decls[0].Declarator.Kind)
	require.Len(t, decls[0].Declarator.Params, 2)
	require.NotNil(t, decls[0].Init)
	require.Equal(t, InitFuncBody, decls[0].Init.Kind)
	require.NotNil(t, decls[0].Init.Body)
}

func TestParserPointerDeclarator(t *testing.T) {
	decls, diags := parseAll(t, "int *p;\n")
	require.False(t, diags.HasErrors())
	require.Equal(t, DeclPointer, decls[0].Declarator.Kind)
	require.Equal(t, DeclIdent, decls[0].Declarator.Inner.Kind)
}

func TestParserArrayDeclarator(t *testing.T) {
	decls, diags := parseAll(t, "int a[10];\n")
	require.False(t, diags.HasErrors())
	require.Equal(t, DeclArray, decls[0].Declarator.Kind)
	v, ok := evalConstIntAST(nil, decls[0].Declarator.ArrayLen)
	require.True(t, ok)
	require.EqualValues(t, 10, v)
}

func TestParserStructDeclaration(t *testing.T) {
	decls, diags := parseAll(t, "struct point { int x; int y; } origin;\n")
	require.False(t, diags.HasErrors())
	require.Equal(t, TStruct, decls[0].Spec.Base)
}

func TestParserRecoversFromMissingSemicolon(t *testing.T) {
	decls, diags := parseAll(t, "int x = 1\nint y = 2;")
	require.True(t, diags.HasErrors())
	require.NotEmpty(t, decls, "panic-mode recovery should still yield later declarations")
}

func TestParserIfElseChain(t *testing.T) {
	decls, diags := parseAll(t, "int f(int x) { if (x) return 1; else return 2; }\n")
	require.False(t, diags.HasErrors())
	body := decls[0].Init.Body
	require.Equal(t, StIf, body.Body[0].Kind)
}

func TestParserDoWhile(t *testing.T) {
	decls, diags := parseAll(t, "int f(void) { int i = 0; do { i = i + 1; } while (i < 10); return i; }\n")
	require.False(t, diags.HasErrors())
	body := decls[0].Init.Body
	require.NotNil(t, body)
}

func TestParserDoWhileMissingWhileReportsError(t *testing.T) {
	_, diags := parseAll(t, "int f(void) { do { ; } until (0); return 0; }")
	require.True(t, diags.HasErrors())
}

func TestParserEnumDeclaration(t *testing.T) {
	decls, diags := parseAll(t, "enum color { RED, GREEN, BLUE } c;\n")
	require.False(t, diags.HasErrors())
	require.Len(t, decls, 1)
	require.Equal(t, TEnum, decls[0].Spec.Base)
}

func TestParserRejectsDeeplyNestedParens(t *testing.T) {
	src := "int x = " + openParens(600) + "1" + closeParens(600) + ";"
	_, diags := parseAll(t, src)
	require.True(t, diags.HasErrors())
	var sawRecursionLimit bool
	for _, d := range diags.Errors() {
		if se, ok := d.Kind.(SyntaxError); ok && se.Code == SyntaxRecursionLimit {
			sawRecursionLimit = true
		}
	}
	require.True(t, sawRecursionLimit)
}

func openParens(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '('
	}
	return string(b)
}

func closeParens(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ')'
	}
	return string(b)
}
