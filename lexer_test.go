package cc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) ([]Token, *Diagnostics) {
	t.Helper()
	sess := NewSession(nil)
	file := sess.AddFile("t.c", []byte(src))
	diags := NewDiagnostics(0)
	lx := NewLexer(sess, file, sess.FileSource(file), diags)
	var toks []Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	return toks, diags
}

// Invariant 1: every emitted token's span is well formed.
func TestLexerTokenSpansAreWellFormed(t *testing.T) {
	toks, diags := lexAll(t, "int x = 42 + y;\n")
	require.False(t, diags.HasErrors())
	for _, tok := range toks {
		if tok.Kind == TokEOF {
			continue
		}
		require.GreaterOrEqual(t, tok.Loc.Span.Start, 0)
		require.Greater(t, tok.Loc.Span.End, tok.Loc.Span.Start)
	}
}

func TestLexerIntegerLiteral(t *testing.T) {
	toks, diags := lexAll(t, "42\n")
	require.False(t, diags.HasErrors())
	require.Equal(t, TokIntLiteral, toks[0].Kind)
	require.EqualValues(t, 42, toks[0].Lit.Int)
}

func TestLexerHexLiteral(t *testing.T) {
	toks, diags := lexAll(t, "0xFF\n")
	require.False(t, diags.HasErrors())
	require.Equal(t, TokIntLiteral, toks[0].Kind)
	require.EqualValues(t, 255, toks[0].Lit.Int)
}

func TestLexerIdentifierAndKeyword(t *testing.T) {
	toks, diags := lexAll(t, "return foo\n")
	require.False(t, diags.HasErrors())
	require.Equal(t, TokKeyword, toks[0].Kind)
	require.Equal(t, KwReturn, toks[0].Keyword)
	require.Equal(t, TokIdent, toks[1].Kind)
}

func TestLexerUnterminatedComment(t *testing.T) {
	_, diags := lexAll(t, "/* never ends")
	require.True(t, diags.HasErrors())
	le := diags.Errors()[0].Kind.(LexError)
	require.Equal(t, LexUnterminatedComment, le.Code)
}

func TestLexerLineCommentSkipped(t *testing.T) {
	toks, diags := lexAll(t, "1 // trailing comment\n+ 2\n")
	require.False(t, diags.HasErrors())
	require.Equal(t, TokIntLiteral, toks[0].Kind)
	require.Equal(t, TokPlus, toks[1].Kind)
}

func TestLexerCharEscapeHex(t *testing.T) {
	toks, diags := lexAll(t, `'\xff'`+"\n")
	require.False(t, diags.HasErrors())
	require.Equal(t, TokCharLiteral, toks[0].Kind)
	require.Equal(t, byte(0xff), toks[0].Lit.Char)
}

func TestLexerCharEscapeHexOutOfRange(t *testing.T) {
	_, diags := lexAll(t, `'\xfff'`)
	require.True(t, diags.HasErrors())
	le := diags.Errors()[0].Kind.(LexError)
	require.Equal(t, LexCharEscapeOutOfRange, le.Code)
	require.Equal(t, EscapeHex, le.Radix)
}

func TestLexerStringLiteral(t *testing.T) {
	toks, diags := lexAll(t, `"hello\n"`+"\n")
	require.False(t, diags.HasErrors())
	require.Equal(t, TokStringLiteral, toks[0].Kind)
	require.Equal(t, "hello\n", string(toks[0].Lit.String[:len(toks[0].Lit.String)-1]))
}
