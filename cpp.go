package cc

import (
	"path/filepath"
)

// condFrame is one entry of the preprocessor's conditional stack
// (§4.3 "a conditional stack whose frames carry
// {currently-taking, has-taken-any-branch, seen-else}").
type condFrame struct {
	taking   bool
	hasTaken bool
	seenElse bool
}

// expansion is one macro replacement currently being rescanned. The
// owning name is marked "hiding" for the expansion's lifetime to
// prevent self-reference (§4.3 "Macro expansion").
type expansion struct {
	name Name
	toks []Token
	idx  int
}

// ppFrame is one open file: its own lexer plus the expansion stack
// active while scanning it. Frames form the include stack (§4.3,
// §5 "scoped acquisition and guaranteed release at #include nesting
// boundaries").
type ppFrame struct {
	lex        *Lexer
	file       FileID
	dir        string
	expansions []expansion
	pending    *Token // next-line token read past a directive's end
}

// Preprocessor wraps a Lexer as a filter: raw tokens in, cooked
// (directive-free, macro-expanded) tokens out (§4.3).
type Preprocessor struct {
	sess       *Session
	diags      *Diagnostics
	frames     []*ppFrame
	macros     map[Name][]Token
	hiding     map[Name]bool
	condStack  []condFrame
	searchPath []string
}

// NewPreprocessor starts a Preprocessor reading from lx, whose file
// lives in dir (used to resolve quoted #include paths relative to the
// including file).
func NewPreprocessor(sess *Session, lx *Lexer, dir string, diags *Diagnostics) *Preprocessor {
	pp := &Preprocessor{
		sess:       sess,
		diags:      diags,
		macros:     map[Name][]Token{},
		hiding:     map[Name]bool{},
		searchPath: sess.Config.SearchPath(),
	}
	pp.frames = []*ppFrame{{lex: lx, file: lx.file, dir: dir}}
	for name, toks := range sess.Config.PredefinedMacros() {
		pp.macros[sess.Intern(name)] = toks
	}
	return pp
}

func (pp *Preprocessor) cur() *ppFrame { return pp.frames[len(pp.frames)-1] }

func (pp *Preprocessor) pushFrame(f *ppFrame) { pp.frames = append(pp.frames, f) }

func (pp *Preprocessor) popFrame() {
	if len(pp.frames) > 1 {
		pp.frames = pp.frames[:len(pp.frames)-1]
	}
}

func (pp *Preprocessor) takingNow() bool {
	for i := len(pp.condStack) - 1; i >= 0; i-- {
		if !pp.condStack[i].taking {
			return false
		}
	}
	return true
}

// nextRaw pulls the next token before macro/directive processing:
// first from the current frame's active expansion (if any), else the
// token pushed back by drainDirectiveBody (if any), else its lexer.
func (pp *Preprocessor) nextRaw() Token {
	for {
		f := pp.cur()
		if len(f.expansions) == 0 {
			if f.pending != nil {
				t := *f.pending
				f.pending = nil
				return t
			}
			return f.lex.Next()
		}
		top := &f.expansions[len(f.expansions)-1]
		if top.idx < len(top.toks) {
			t := top.toks[top.idx]
			top.idx++
			return t
		}
		pp.hiding[top.name] = false
		f.expansions = f.expansions[:len(f.expansions)-1]
	}
}

// Next produces the next cooked token (§4.3 "Output"), handling
// directives, conditional skipping, and macro expansion transparently.
func (pp *Preprocessor) Next() Token {
	for {
		tok := pp.nextRaw()
		atLineStart := pp.cur().lex.LastAtLineStart()

		if tok.Kind == TokEOF {
			if len(pp.frames) > 1 {
				pp.popFrame()
				continue
			}
			if len(pp.condStack) > 0 {
				pp.diags.Error(CppError{Code: CppUnterminatedIf}, tok.Loc, passPreprocessor)
			}
			return tok
		}

		if tok.Kind == tokHash && atLineStart {
			pp.handleDirective()
			continue
		}

		if !pp.takingNow() {
			continue
		}

		if tok.Kind == TokIdent {
			if repl, ok := pp.macros[tok.Name]; ok && !pp.hiding[tok.Name] {
				pp.expandMacro(tok.Name, repl)
				continue
			}
		}

		return tok
	}
}

// Tokens drains the preprocessor to a slice, for a parser that wants
// plain lookahead rather than another pull-based layer.
func (pp *Preprocessor) Tokens() []Token {
	var out []Token
	for {
		t := pp.Next()
		out = append(out, t)
		if t.Kind == TokEOF {
			return out
		}
	}
}

func (pp *Preprocessor) expandMacro(name Name, repl []Token) {
	pp.hiding[name] = true
	pp.cur().expansions = append(pp.cur().expansions, expansion{name: name, toks: repl})
}

// restOfLine drains raw tokens (bypassing macro expansion and cond
// filtering) until end of line, for directive bodies. It relies on the
// lexer boundary: a directive always ends at the next unescaped
// newline, which the lexer surfaces as a following token whose
// location starts on a later line -- but since tokens don't carry
// explicit newline markers, directive parsing instead reads tokens
// until the *next* token would itself be a line start.
func (pp *Preprocessor) restOfLine() []Token {
	var toks []Token
	f := pp.cur()
	for {
		t := f.lex.Next()
		if t.Kind == TokEOF {
			toks = append(toks, t)
			return toks
		}
		if f.lex.LastAtLineStart() {
			// this token belongs to the next line; there is no pushback
			// slot at the preprocessor level, so directives are parsed
			// eagerly enough (see handleDirective) that this only occurs
			// at a directive's natural end, where callers stop reading.
			toks = append(toks, t)
			return toks
		}
		toks = append(toks, t)
	}
}

func (pp *Preprocessor) handleDirective() {
	f := pp.cur()
	kw := f.lex.Next()
	// "if" and "else" lex as keywords, the other directive names as
	// identifiers.
	if kw.Kind != TokIdent && kw.Kind != TokKeyword {
		pp.diags.Error(CppError{Code: CppInvalidDirective}, kw.Loc, passPreprocessor)
		pp.skipToLineEnd()
		return
	}
	name := kw.Text
	switch name {
	case "define":
		pp.doDefine()
	case "undef":
		pp.doUndef()
	case "if":
		pp.doIf()
	case "ifdef":
		pp.doIfdefNdef(true)
	case "ifndef":
		pp.doIfdefNdef(false)
	case "elif":
		pp.doElif(kw.Loc)
	case "else":
		pp.doElse(kw.Loc)
	case "endif":
		pp.doEndif(kw.Loc)
	case "include":
		pp.doInclude(kw.Loc)
	case "error":
		pp.doError(kw.Loc)
	case "warning":
		pp.doWarning(kw.Loc)
	case "line", "pragma":
		pp.diags.Warn(Warning{Code: WarnIgnoredPragma}, kw.Loc, passPreprocessor)
		pp.skipToLineEnd()
	default:
		pp.diags.Error(CppError{Code: CppInvalidDirective, Detail: name}, kw.Loc, passPreprocessor)
		pp.skipToLineEnd()
	}
}

// skipToLineEnd discards the remainder of a directive's line (used
// when a directive is abandoned after an error, per §7 "the current
// directive is abandoned; nesting state is preserved").
func (pp *Preprocessor) skipToLineEnd() {
	pp.drainDirectiveBody()
}

func (pp *Preprocessor) doDefine() {
	f := pp.cur()
	nameTok := f.lex.Next()
	if nameTok.Kind != TokIdent {
		pp.diags.Error(CppError{Code: CppEmptyDefine}, nameTok.Loc, passPreprocessor)
		return
	}
	if f.lex.peek() == '(' {
		// function-like macro: detected, warned, and skipped (resolved
		// Open Question -- the macro name is never registered).
		pp.diags.Warn(Warning{Code: WarnIgnoredVariadic}, nameTok.Loc, passPreprocessor)
		pp.drainDirectiveBody()
		return
	}
	body := pp.drainDirectiveBody()
	if !pp.takingNow() {
		return
	}
	if old, ok := pp.macros[nameTok.Name]; ok && !tokensEqual(old, body) {
		pp.diags.Warn(Warning{Code: WarnMacroRedefinition, Detail: pp.sess.String(nameTok.Name)}, nameTok.Loc, passPreprocessor)
	}
	pp.macros[nameTok.Name] = body
}

// drainDirectiveBody collects the raw tokens of a directive's body up
// to (not including) the next line-start token or EOF. That token is
// pushed back on the frame, so nextRaw returns it next and normal
// scanning resumes with it.
func (pp *Preprocessor) drainDirectiveBody() []Token {
	f := pp.cur()
	var toks []Token
	for {
		t := f.lex.Next()
		if t.Kind == TokEOF || f.lex.LastAtLineStart() {
			f.pending = &t
			return toks
		}
		toks = append(toks, t)
	}
}

func tokensEqual(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Kind != b[i].Kind || a[i].Text != b[i].Text || a[i].Name != b[i].Name {
			return false
		}
	}
	return true
}

func (pp *Preprocessor) doUndef() {
	f := pp.cur()
	nameTok := f.lex.Next()
	pp.drainDirectiveBody()
	if nameTok.Kind != TokIdent {
		pp.diags.Error(CppError{Code: CppEmptyDefine}, nameTok.Loc, passPreprocessor)
		return
	}
	if !pp.takingNow() {
		return
	}
	delete(pp.macros, nameTok.Name)
}

func (pp *Preprocessor) doIfdefNdef(wantDefined bool) {
	f := pp.cur()
	nameTok := f.lex.Next()
	pp.drainDirectiveBody()
	_, defined := pp.macros[nameTok.Name]
	taking := defined == wantDefined
	pp.condStack = append(pp.condStack, condFrame{taking: taking, hasTaken: taking})
}

func (pp *Preprocessor) doIf() {
	body := pp.drainDirectiveBody()
	if len(body) == 0 {
		pp.diags.Error(CppError{Code: CppEmptyExpression}, Location{}, passPreprocessor)
		pp.condStack = append(pp.condStack, condFrame{taking: false, hasTaken: false})
		return
	}
	v := pp.evalConstExpr(body)
	taking := v != 0
	pp.condStack = append(pp.condStack, condFrame{taking: taking, hasTaken: taking})
}

func (pp *Preprocessor) doElif(loc Location) {
	body := pp.drainDirectiveBody()
	if len(pp.condStack) == 0 {
		pp.diags.Error(CppError{Code: CppUnexpectedElif, Early: true}, loc, passPreprocessor)
		return
	}
	top := &pp.condStack[len(pp.condStack)-1]
	if top.seenElse {
		pp.diags.Error(CppError{Code: CppUnexpectedElif, Early: false}, loc, passPreprocessor)
		return
	}
	if top.hasTaken {
		top.taking = false
		return
	}
	v := pp.evalConstExpr(body)
	top.taking = v != 0
	if top.taking {
		top.hasTaken = true
	}
}

func (pp *Preprocessor) doElse(loc Location) {
	pp.drainDirectiveBody()
	if len(pp.condStack) == 0 {
		pp.diags.Error(CppError{Code: CppUnexpectedElse}, loc, passPreprocessor)
		return
	}
	top := &pp.condStack[len(pp.condStack)-1]
	if top.seenElse {
		pp.diags.Error(CppError{Code: CppUnexpectedElse}, loc, passPreprocessor)
		return
	}
	top.seenElse = true
	if !top.hasTaken {
		top.taking = true
		top.hasTaken = true
	} else {
		top.taking = false
	}
}

func (pp *Preprocessor) doEndif(loc Location) {
	pp.drainDirectiveBody()
	if len(pp.condStack) == 0 {
		pp.diags.Error(CppError{Code: CppUnexpectedEndIf}, loc, passPreprocessor)
		return
	}
	pp.condStack = pp.condStack[:len(pp.condStack)-1]
}

func (pp *Preprocessor) doInclude(loc Location) {
	body := pp.drainDirectiveBody()
	if !pp.takingNow() {
		return
	}
	path, quoted, ok := parseIncludeOperand(body)
	if !ok {
		pp.diags.Error(CppError{Code: CppEmptyInclude}, loc, passPreprocessor)
		return
	}
	resolved, src, found := pp.resolveInclude(path, quoted)
	if !found {
		pp.diags.Error(CppError{Code: CppFileNotFound, Detail: path}, loc, passPreprocessor)
		return
	}
	file := pp.sess.AddFile(resolved, src)
	lx := NewLexer(pp.sess, file, pp.sess.FileSource(file), pp.diags)
	pp.pushFrame(&ppFrame{lex: lx, file: file, dir: filepath.Dir(resolved)})
}

// parseIncludeOperand reads either "file" (quoted=true) or <file>
// (quoted=false) from a directive's raw token body. The lexer already
// tokenizes `"..."` as a string literal; `<...>` has to be
// reconstructed from individual punctuator/identifier tokens since the
// lexer has no angle-bracket-literal concept.
func parseIncludeOperand(toks []Token) (path string, quoted bool, ok bool) {
	if len(toks) == 0 {
		return "", false, false
	}
	if toks[0].Kind == TokStringLiteral {
		s := toks[0].Lit.String
		if len(s) > 0 && s[len(s)-1] == 0 {
			s = s[:len(s)-1]
		}
		return string(s), true, len(s) > 0
	}
	if toks[0].Kind == TokLess {
		var b []byte
		for _, t := range toks[1:] {
			if t.Kind == TokGreater {
				return string(b), false, len(b) > 0
			}
			b = append(b, t.Text...)
		}
	}
	return "", false, false
}

func (pp *Preprocessor) resolveInclude(path string, quoted bool) (string, []byte, bool) {
	var dirs []string
	if quoted {
		dirs = append(dirs, pp.cur().dir)
	}
	dirs = append(dirs, pp.searchPath...)
	for _, d := range dirs {
		full := filepath.Join(d, path)
		if src, err := readFileFn(full); err == nil {
			return full, src, true
		}
	}
	return "", nil, false
}

func (pp *Preprocessor) doError(loc Location) {
	body := pp.drainDirectiveBody()
	if !pp.takingNow() {
		return
	}
	pp.diags.Error(CppError{Code: CppUser, Detail: tokensText(pp.sess, body)}, loc, passPreprocessor)
}

func (pp *Preprocessor) doWarning(loc Location) {
	body := pp.drainDirectiveBody()
	if !pp.takingNow() {
		return
	}
	pp.diags.Warn(Warning{Code: WarnUser, Detail: tokensText(pp.sess, body)}, loc, passPreprocessor)
}

func tokensText(sess *Session, toks []Token) string {
	var out string
	for i, t := range toks {
		if i > 0 {
			out += " "
		}
		out += t.String()
	}
	return out
}

// evalConstExpr evaluates a #if/#elif expression using the constant
// folder restricted to integer arithmetic (§4.3): undefined names
// evaluate to 0, `defined(X)`/`defined X` are recognized specially.
func (pp *Preprocessor) evalConstExpr(toks []Token) int64 {
	toks = pp.substituteDefinedAndMacros(toks)
	toks = append(toks, Token{Kind: TokEOF})
	ps := NewParser(pp.sess, toks, pp.diags)
	expr := ps.parseExpr()
	folded := foldConstIntOnly(pp.sess, pp.diags, expr)
	return folded
}

// substituteDefinedAndMacros handles `defined(X)`/`defined X` before
// ordinary macro expansion (which must not touch the `defined`
// operand), then macro-expands everything else and substitutes 0 for
// any identifier still unresolved.
func (pp *Preprocessor) substituteDefinedAndMacros(toks []Token) []Token {
	out := make([]Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind == TokIdent && pp.sess.String(t.Name) == "defined" {
			var name Name
			if i+1 < len(toks) && toks[i+1].Kind == TokLParen && i+2 < len(toks) && toks[i+2].Kind == TokIdent {
				name = toks[i+2].Name
				i += 3
				if i < len(toks) && toks[i].Kind == TokRParen {
					// consumed
				} else {
					i--
				}
			} else if i+1 < len(toks) && toks[i+1].Kind == TokIdent {
				name = toks[i+1].Name
				i++
			}
			v := int64(0)
			if _, ok := pp.macros[name]; ok {
				v = 1
			}
			out = append(out, Token{Kind: TokIntLiteral, Lit: Literal{Kind: LitInt, Int: v}, Loc: t.Loc})
			continue
		}
		if t.Kind == TokIdent {
			if repl, ok := pp.macros[t.Name]; ok {
				out = append(out, pp.substituteDefinedAndMacros(repl)...)
				continue
			}
			out = append(out, Token{Kind: TokIntLiteral, Lit: Literal{Kind: LitInt, Int: 0}, Loc: t.Loc})
			continue
		}
		out = append(out, t)
	}
	return out
}

// readFileFn is a package-level indirection over os.ReadFile so tests
// can stub file resolution without touching the real filesystem.
var readFileFn = defaultReadFile
