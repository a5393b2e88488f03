package cc

// Parser is a top-down recursive-descent parser over a token slice
// (§4.4). Using a slice instead of a genuinely pull-based token source
// turns `unput` into a plain position decrement, and `peek`/`peekAt`
// into plain indexing -- the rest of the parser's shape (expect,
// match_next, panic, recursion_check, Pratt precedence) follows §4.4
// directly.
type Parser struct {
	sess  *Session
	diags *Diagnostics
	toks  []Token
	pos   int

	depth    int
	maxDepth int

	trace TraceStack

	scope *Scope // typedef-name tracking only; the analyzer builds its own Scope for HIR
}

const defaultRecursionLimit = 500

// recursionAbort is panicked by recursionCheck once the guard trips,
// and recovered at ParseTranslationUnit to stop the run early (§9
// "Recursion-depth guard", §7 "Fatal conditions").
type recursionAbort struct{}

func NewParser(sess *Session, toks []Token, diags *Diagnostics) *Parser {
	return &Parser{
		sess:     sess,
		diags:    diags,
		toks:     toks,
		maxDepth: defaultRecursionLimit,
		scope:    NewScope(),
	}
}

func (p *Parser) peek() Token { return p.toks[p.pos] }

func (p *Parser) peekAt(off int) Token {
	i := p.pos + off
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// unput pushes the most recently consumed token back (§4.4 "a
// one-token pushback").
func (p *Parser) unput() {
	if p.pos > 0 {
		p.pos--
	}
}

func (p *Parser) at(k TokenKind) bool { return p.peek().Kind == k }

func (p *Parser) atKeyword(kw Keyword) bool {
	return p.peek().Kind == TokKeyword && p.peek().Keyword == kw
}

// matchNext consumes and returns (token, true) if the current token
// has kind k (§4.4 "match_next(tok)").
func (p *Parser) matchNext(k TokenKind) (Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	return Token{}, false
}

// expect consumes a token of kind k or emits a syntax error (§4.4
// "expect(tok)").
func (p *Parser) expect(k TokenKind, code SyntaxErrorCode) (Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.diags.Error(SyntaxError{Code: code, Detail: p.peek().String()}, p.peek().Loc, passSyntax)
	return Token{}, false
}

// recursionCheck increments the depth counter on entry, pushing a
// TraceSpan so a recursion-limit diagnostic or a debug-ast dump can show
// which productions were active; callers defer the returned function to
// decrement and pop on every exit path (§4.4 "recursion_check()", §9).
func (p *Parser) recursionCheck(name string) func() {
	p.depth++
	p.trace.Push(TraceSpan{Name: name, Loc: p.peek().Loc})
	if p.depth > p.maxDepth {
		p.diags.Error(SyntaxError{Code: SyntaxRecursionLimit, Detail: p.trace.String()}, p.peek().Loc, passSyntax)
		panic(recursionAbort{})
	}
	return func() {
		p.depth--
		p.trace.Pop()
	}
}

// panicMode skips tokens until the next statement-synchronizing token
// (';' or '}') at the current nesting level (§4.4 "Recovery").
func (p *Parser) panicMode() {
	if p.sess.Config.DebugAST() {
		p.sess.Tracer.Trace("panic-mode recovery at byte %s, active productions: %s", p.peek().Loc.Span, p.trace.String())
	}
	depth := 0
	for {
		switch p.peek().Kind {
		case TokEOF:
			return
		case TokLBrace:
			depth++
			p.advance()
		case TokRBrace:
			if depth == 0 {
				return
			}
			depth--
			p.advance()
		case TokSemicolon:
			p.advance()
			if depth == 0 {
				return
			}
		default:
			p.advance()
		}
	}
}

// ParseTranslationUnit parses a whole file: a sequence of external
// declarations (function definitions or top-level declarations).
func (p *Parser) ParseTranslationUnit() (decls []*Decl) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(recursionAbort); !ok {
				panic(r)
			}
		}
	}()
	for !p.at(TokEOF) {
		before := p.pos
		ds := p.parseExternalDecl()
		decls = append(decls, ds...)
		if p.pos == before {
			// guard against an external decl that consumed nothing,
			// which would otherwise loop forever.
			p.diags.Error(SyntaxError{Code: SyntaxGeneric, Detail: "unexpected token " + p.peek().String()}, p.peek().Loc, passSyntax)
			p.advance()
		}
	}
	return decls
}

// parseExternalDecl parses one specifier-list followed by either a
// function definition (one declarator with a compound-statement body)
// or one-or-more declarators terminated by ';' (§4.4).
func (p *Parser) parseExternalDecl() []*Decl {
	defer p.recursionCheck("external-decl")()
	spec, ok := p.parseDeclSpecifiers()
	if !ok {
		p.panicMode()
		return nil
	}
	if p.at(TokSemicolon) {
		p.advance()
		return nil // struct/union/enum/typedef-only declaration with no declarators
	}

	var out []*Decl
	for {
		d := p.parseDeclarator()
		loc := d.Loc
		if spec.Storage == SCTypedef {
			name, _ := DeclaredName(d)
			ty := BuildType(p.sess, BaseType(p.sess, spec), d)
			p.sess.RegisterTypedef(name, ty)
			p.scope.Insert(&Symbol{Name: name, Type: ty, Storage: SCTypedef, Loc: loc})
		}

		if d.Kind == DeclFunction && p.at(TokLBrace) {
			if len(out) > 0 {
				// a function body may only appear on its own declarator
				p.diags.Error(SyntaxError{Code: SyntaxNotAFunction, Detail: "declaration"}, loc, passSyntax)
			}
			body := p.parseCompoundStmt()
			out = append(out, &Decl{Spec: spec, Declarator: d, Init: &Initializer{Kind: InitFuncBody, Body: body, Loc: loc}, Loc: loc})
			return out
		}

		var init *Initializer
		if _, ok := p.matchNext(TokAssign); ok {
			if d.Kind == DeclFunction {
				p.diags.Error(SyntaxError{Code: SyntaxFunctionInitializer}, loc, passSyntax)
			}
			init = p.parseInitializer()
		}
		out = append(out, &Decl{Spec: spec, Declarator: d, Init: init, Loc: loc})

		if _, ok := p.matchNext(TokComma); ok {
			continue
		}
		break
	}
	if !p.at(TokRBrace) {
		p.expect(TokSemicolon, SyntaxExpectedDeclarator)
	}
	return out
}

// ---- declaration specifiers ----

func (p *Parser) parseDeclSpecifiers() (DeclSpec, bool) {
	var spec DeclSpec
	spec.Loc = p.peek().Loc
	sawType := false
	for {
		if p.at(TokKeyword) {
			kw := p.peek().Keyword
			switch kw {
			case KwTypedef:
				spec.Storage = SCTypedef
				p.advance()
				continue
			case KwExtern:
				spec.Storage = SCExtern
				p.advance()
				continue
			case KwStatic:
				spec.Storage = SCStatic
				p.advance()
				continue
			case KwAuto:
				spec.Storage = SCAuto
				p.advance()
				continue
			case KwRegister:
				spec.Storage = SCRegister
				p.advance()
				continue
			case KwConst:
				spec.Quals.Const = true
				p.advance()
				continue
			case KwVolatile:
				spec.Quals.Volatile = true
				p.advance()
				continue
			case KwRestrict:
				p.diags.Warn(Warning{Code: WarnIgnoredQualifier, Detail: "restrict"}, p.peek().Loc, passSyntax)
				p.advance()
				continue
			case KwInline:
				spec.Inline = true
				p.advance()
				continue
			case KwNoreturn, KwAtomic, KwThreadLocal:
				p.diags.Warn(Warning{Code: WarnIgnoredQualifier, Detail: p.peek().String()}, p.peek().Loc, passSyntax)
				p.advance()
				continue
			case KwSigned:
				spec.Signed = true
				spec.SignedSeen = true
				sawType = true
				p.advance()
				continue
			case KwUnsigned:
				spec.Unsigned = true
				sawType = true
				p.advance()
				continue
			case KwLong:
				spec.LongCount++
				if spec.Base != TStruct && spec.Base != TUnion && spec.Base != TEnum {
					spec.Base = TLong
				}
				sawType = true
				p.advance()
				continue
			case KwShort:
				spec.Base = TShort
				sawType = true
				p.advance()
				continue
			case KwChar:
				spec.Base = TChar
				sawType = true
				p.advance()
				continue
			case KwInt:
				if spec.Base != TLong && spec.Base != TShort {
					spec.Base = TInt
				}
				sawType = true
				p.advance()
				continue
			case KwVoid:
				spec.Base = TVoid
				sawType = true
				p.advance()
				continue
			case KwFloat:
				spec.Base = TFloat
				sawType = true
				p.advance()
				continue
			case KwDouble:
				spec.Base = TDouble
				sawType = true
				p.advance()
				continue
			case KwBool:
				spec.Base = TBool
				sawType = true
				p.advance()
				continue
			case KwStruct, KwUnion:
				p.parseStructOrUnionSpecifier(&spec, kw == KwUnion)
				sawType = true
				continue
			case KwEnum:
				p.parseEnumSpecifier(&spec)
				sawType = true
				continue
			default:
				if sawType {
					return spec, true
				}
				p.diags.Error(SyntaxError{Code: SyntaxExpectedDeclSpecifier, Detail: p.peek().String()}, p.peek().Loc, passSyntax)
				return spec, false
			}
		}
		if !sawType && p.at(TokIdent) && p.sess.IsTypedefName(p.peek().Name) {
			spec.IsTypedef = true
			spec.TypedefName = p.peek().Name
			sawType = true
			p.advance()
			continue
		}
		break
	}
	if spec.LongCount > 0 {
		spec.Base = TLong
	}
	if spec.Unsigned && !spec.SignedSeen {
		// unsigned with no explicit base defaults to unsigned int
		if spec.Base == TVoid {
			spec.Base = TInt
		}
	}
	if !sawType {
		p.diags.Error(SyntaxError{Code: SyntaxExpectedDeclSpecifier, Detail: p.peek().String()}, p.peek().Loc, passSyntax)
		return spec, false
	}
	return spec, true
}

func (p *Parser) parseStructOrUnionSpecifier(spec *DeclSpec, isUnion bool) {
	loc := p.advance().Loc // consume 'struct'/'union'
	var tagName Name
	hasTag := false
	if tok, ok := p.matchNext(TokIdent); ok {
		tagName = tok.Name
		hasTag = true
	}
	spec.Base = TStruct
	if isUnion {
		spec.Base = TUnion
	}
	spec.TagName = tagName

	if !p.at(TokLBrace) {
		// reference to a previously (or not yet) declared tag
		if hasTag {
			if id, ok := p.sess.Tags[tagName]; ok {
				spec.TagID = id
				return
			}
			id := p.sess.Types.Declare(tagName, isUnion, false)
			p.sess.Tags[tagName] = id
			spec.TagID = id
			return
		}
		p.diags.Error(SyntaxError{Code: SyntaxExpectedType}, loc, passSyntax)
		return
	}

	var id TagID
	if hasTag {
		if existing, ok := p.sess.Tags[tagName]; ok {
			id = existing
		} else {
			id = p.sess.Types.Declare(tagName, isUnion, false)
			p.sess.Tags[tagName] = id
		}
	} else {
		id = p.sess.Types.Declare(0, isUnion, false)
	}
	spec.TagID = id

	p.advance() // '{'
	var members []Member
	for !p.at(TokRBrace) && !p.at(TokEOF) {
		mSpec, ok := p.parseDeclSpecifiers()
		if !ok {
			p.panicMode()
			continue
		}
		for {
			d := p.parseDeclarator()
			name, nloc := DeclaredName(d)
			ty := BuildType(p.sess, BaseType(p.sess, mSpec), d)
			if _, ok := p.matchNext(TokColon); ok {
				p.parseExpr() // bit-field width, not modeled beyond acceptance
				ty = &Type{Kind: TBitfield, Elem: ty}
			}
			members = append(members, Member{Name: name, Type: ty})
			_ = nloc
			if _, ok := p.matchNext(TokComma); ok {
				continue
			}
			break
		}
		p.expect(TokSemicolon, SyntaxExpectedDeclarator)
	}
	p.expect(TokRBrace, SyntaxUnterminatedBlock)
	p.sess.Types.Complete(id, members)
}

func (p *Parser) parseEnumSpecifier(spec *DeclSpec) {
	loc := p.advance().Loc // 'enum'
	var tagName Name
	hasTag := false
	if tok, ok := p.matchNext(TokIdent); ok {
		tagName = tok.Name
		hasTag = true
	}
	spec.Base = TEnum
	spec.TagName = tagName

	if !p.at(TokLBrace) {
		if hasTag {
			if id, ok := p.sess.Tags[tagName]; ok {
				spec.TagID = id
				return
			}
			id := p.sess.Types.Declare(tagName, false, true)
			p.sess.Tags[tagName] = id
			spec.TagID = id
			return
		}
		p.diags.Error(SyntaxError{Code: SyntaxExpectedType}, loc, passSyntax)
		return
	}

	var id TagID
	if hasTag {
		if existing, ok := p.sess.Tags[tagName]; ok {
			id = existing
		} else {
			id = p.sess.Types.Declare(tagName, false, true)
			p.sess.Tags[tagName] = id
		}
	} else {
		id = p.sess.Types.Declare(0, false, true)
	}
	spec.TagID = id

	p.advance() // '{'
	var enumerators []Enumerator
	next := int64(0)
	for !p.at(TokRBrace) && !p.at(TokEOF) {
		nameTok, ok := p.expect(TokIdent, SyntaxExpectedID)
		if !ok {
			p.panicMode()
			break
		}
		val := next
		if _, ok := p.matchNext(TokAssign); ok {
			e := p.parseAssignExpr()
			if v, ok := evalConstIntAST(p.sess, e); ok {
				val = v
			}
		}
		enumerators = append(enumerators, Enumerator{Name: nameTok.Name, Value: val})
		next = val + 1
		p.sess.RegisterEnumerator(nameTok.Name, val)
		if _, ok := p.matchNext(TokComma); ok {
			continue
		}
		break
	}
	p.expect(TokRBrace, SyntaxUnterminatedBlock)
	p.sess.Types.CompleteEnum(id, enumerators)
}

// ---- declarators ----

func (p *Parser) parseDeclarator() *Declarator {
	if tok, ok := p.matchNext(TokStar); ok {
		var q Qualifiers
		for p.at(TokKeyword) && (p.peek().Keyword == KwConst || p.peek().Keyword == KwVolatile || p.peek().Keyword == KwRestrict) {
			switch p.peek().Keyword {
			case KwConst:
				q.Const = true
			case KwVolatile:
				q.Volatile = true
			}
			p.advance()
		}
		inner := p.parseDeclarator()
		return &Declarator{Kind: DeclPointer, Quals: q, Inner: inner, Loc: tok.Loc}
	}
	return p.parseDirectDeclarator()
}

func (p *Parser) parseDirectDeclarator() *Declarator {
	var base *Declarator
	switch {
	case p.at(TokIdent):
		tok := p.advance()
		base = &Declarator{Kind: DeclIdent, Name: tok.Name, Loc: tok.Loc}
	case p.at(TokLParen) && p.looksLikeDeclaratorStart(p.peekAt(1)):
		p.advance()
		base = p.parseDeclarator()
		p.expect(TokRParen, SyntaxExpectedDeclaratorStart)
	default:
		base = &Declarator{Kind: DeclIdent, Loc: p.peek().Loc} // abstract declarator
	}

	for {
		switch {
		case p.at(TokLBracket):
			loc := p.advance().Loc
			d := &Declarator{Kind: DeclArray, Inner: base, Loc: loc}
			if _, ok := p.matchNext(TokStar); ok {
				d.ArrayUnbounded = true
			} else if !p.at(TokRBracket) {
				d.ArrayLen = p.parseAssignExpr()
			} else {
				d.ArrayUnbounded = true
			}
			p.expect(TokRBracket, SyntaxGeneric)
			base = d
		case p.at(TokLParen):
			loc := p.advance().Loc
			d := &Declarator{Kind: DeclFunction, Inner: base, Loc: loc}
			d.Params, d.Variadic = p.parseParamList()
			p.expect(TokRParen, SyntaxExpectedDeclaratorStart)
			base = d
		default:
			return base
		}
	}
}

func (p *Parser) looksLikeDeclaratorStart(t Token) bool {
	if t.Kind == TokStar || t.Kind == TokLParen {
		return true
	}
	if t.Kind == TokIdent {
		return !p.sess.IsTypedefName(t.Name)
	}
	return false
}

func (p *Parser) parseParamList() ([]*ParamDecl, bool) {
	var params []*ParamDecl
	if p.at(TokRParen) {
		return nil, false
	}
	if p.atKeyword(KwVoid) && p.peekAt(1).Kind == TokRParen {
		p.advance()
		return nil, false
	}
	for {
		if _, ok := p.matchNext(TokEllipsis); ok {
			return params, true
		}
		spec, ok := p.parseDeclSpecifiers()
		if !ok {
			p.panicMode()
			break
		}
		d := p.parseAbstractOrNamedDeclarator()
		params = append(params, &ParamDecl{Spec: spec, Declarator: d, Loc: spec.Loc})
		if _, ok := p.matchNext(TokComma); ok {
			continue
		}
		break
	}
	return params, false
}

func (p *Parser) parseAbstractOrNamedDeclarator() *Declarator {
	if p.at(TokComma) || p.at(TokRParen) {
		return &Declarator{Kind: DeclIdent, Loc: p.peek().Loc}
	}
	return p.parseDeclarator()
}

// ---- initializers ----

func (p *Parser) parseInitializer() *Initializer {
	loc := p.peek().Loc
	if p.at(TokLBrace) {
		p.advance()
		init := &Initializer{Kind: InitList, Loc: loc}
		for !p.at(TokRBrace) && !p.at(TokEOF) {
			init.Items = append(init.Items, p.parseInitializer())
			if _, ok := p.matchNext(TokComma); ok {
				continue
			}
			break
		}
		p.expect(TokRBrace, SyntaxUnterminatedBlock)
		return init
	}
	e := p.parseAssignExpr()
	return &Initializer{Kind: InitScalar, Expr: e, Loc: loc}
}

// ---- statements ----

func (p *Parser) parseCompoundStmt() *Stmt {
	defer p.recursionCheck("compound-stmt")()
	loc := p.peek().Loc
	p.expect(TokLBrace, SyntaxGeneric)
	p.scope.Push()
	defer p.scope.Pop()
	st := &Stmt{Kind: StCompound, Loc: loc}
	for !p.at(TokRBrace) && !p.at(TokEOF) {
		before := p.pos
		s := p.parseBlockItem()
		if s != nil {
			st.Body = append(st.Body, s)
		}
		if p.pos == before {
			p.advance()
		}
	}
	if !p.at(TokRBrace) {
		p.diags.Error(SyntaxError{Code: SyntaxUnterminatedBlock}, p.peek().Loc, passSyntax)
		return st
	}
	p.advance()
	return st
}

func (p *Parser) parseBlockItem() *Stmt {
	if p.startsDeclaration() {
		return p.parseDeclStmt()
	}
	return p.parseStatementRecovering()
}

func (p *Parser) parseStatementRecovering() *Stmt {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(recursionAbort); ok {
				panic(r)
			}
		}
	}()
	before := p.pos
	s := p.parseStatement()
	if s == nil && p.pos == before {
		p.panicMode()
	}
	return s
}

func (p *Parser) startsDeclaration() bool {
	if p.at(TokKeyword) {
		switch p.peek().Keyword {
		case KwTypedef, KwExtern, KwStatic, KwAuto, KwRegister,
			KwConst, KwVolatile, KwRestrict, KwInline,
			KwVoid, KwChar, KwShort, KwInt, KwLong, KwFloat, KwDouble,
			KwSigned, KwUnsigned, KwBool, KwStruct, KwUnion, KwEnum,
			KwNoreturn, KwAtomic, KwThreadLocal:
			return true
		}
		return false
	}
	return p.at(TokIdent) && p.sess.IsTypedefName(p.peek().Name)
}

func (p *Parser) parseDeclStmt() *Stmt {
	loc := p.peek().Loc
	spec, ok := p.parseDeclSpecifiers()
	if !ok {
		p.panicMode()
		return nil
	}
	var decls []*Decl
	if !p.at(TokSemicolon) {
		for {
			d := p.parseDeclarator()
			if spec.Storage == SCTypedef {
				name, _ := DeclaredName(d)
				ty := BuildType(p.sess, BaseType(p.sess, spec), d)
				p.sess.RegisterTypedef(name, ty)
				p.scope.Insert(&Symbol{Name: name, Type: ty, Storage: SCTypedef, Loc: d.Loc})
			}
			var init *Initializer
			if _, ok := p.matchNext(TokAssign); ok {
				init = p.parseInitializer()
			}
			decls = append(decls, &Decl{Spec: spec, Declarator: d, Init: init, Loc: d.Loc})
			if _, ok := p.matchNext(TokComma); ok {
				continue
			}
			break
		}
	}
	p.expect(TokSemicolon, SyntaxExpectedDeclarator)
	return &Stmt{Kind: StDecl, Loc: loc, Decls: decls}
}

func (p *Parser) parseStatement() *Stmt {
	defer p.recursionCheck("statement")()
	loc := p.peek().Loc
	switch {
	case p.at(TokLBrace):
		return p.parseCompoundStmt()
	case p.atKeyword(KwIf):
		return p.parseIf()
	case p.atKeyword(KwWhile):
		return p.parseWhile()
	case p.atKeyword(KwDo):
		return p.parseDoWhile()
	case p.atKeyword(KwFor):
		return p.parseFor()
	case p.atKeyword(KwSwitch):
		return p.parseSwitch()
	case p.atKeyword(KwCase):
		p.advance()
		v := p.parseExpr()
		p.expect(TokColon, SyntaxGeneric)
		return &Stmt{Kind: StCase, Loc: loc, CaseValue: v, Then: p.parseStatementOrNil()}
	case p.atKeyword(KwDefault):
		p.advance()
		p.expect(TokColon, SyntaxGeneric)
		return &Stmt{Kind: StDefault, Loc: loc, Then: p.parseStatementOrNil()}
	case p.atKeyword(KwGoto):
		p.advance()
		name, ok := p.expect(TokIdent, SyntaxExpectedID)
		p.expect(TokSemicolon, SyntaxGeneric)
		if !ok {
			return nil
		}
		return &Stmt{Kind: StGoto, Loc: loc, Label: name.Name}
	case p.atKeyword(KwContinue):
		p.advance()
		p.expect(TokSemicolon, SyntaxGeneric)
		return &Stmt{Kind: StContinue, Loc: loc}
	case p.atKeyword(KwBreak):
		p.advance()
		p.expect(TokSemicolon, SyntaxGeneric)
		return &Stmt{Kind: StBreak, Loc: loc}
	case p.atKeyword(KwReturn):
		p.advance()
		var e *Expr
		if !p.at(TokSemicolon) {
			e = p.parseExpr()
		}
		p.expect(TokSemicolon, SyntaxGeneric)
		return &Stmt{Kind: StReturn, Loc: loc, Expr: e}
	case p.at(TokSemicolon):
		p.advance()
		return &Stmt{Kind: StExpr, Loc: loc}
	case p.at(TokIdent) && p.peekAt(1).Kind == TokColon && !p.sess.IsTypedefName(p.peek().Name):
		name := p.advance().Name
		p.advance() // ':'
		return &Stmt{Kind: StLabel, Loc: loc, Label: name, Then: p.parseStatementOrNil()}
	default:
		e := p.parseExpr()
		p.expect(TokSemicolon, SyntaxNotAStatement)
		return &Stmt{Kind: StExpr, Loc: loc, Expr: e}
	}
}

func (p *Parser) parseStatementOrNil() *Stmt {
	if p.at(TokRBrace) || p.at(TokEOF) {
		return nil
	}
	return p.parseStatement()
}

func (p *Parser) parseIf() *Stmt {
	loc := p.advance().Loc
	p.expect(TokLParen, SyntaxGeneric)
	cond := p.parseExpr()
	p.expect(TokRParen, SyntaxGeneric)
	then := p.parseStatement()
	var els *Stmt
	if p.atKeyword(KwElse) {
		p.advance()
		els = p.parseStatement()
	}
	return &Stmt{Kind: StIf, Loc: loc, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhile() *Stmt {
	loc := p.advance().Loc
	p.expect(TokLParen, SyntaxGeneric)
	cond := p.parseExpr()
	p.expect(TokRParen, SyntaxGeneric)
	body := p.parseStatement()
	return &Stmt{Kind: StWhile, Loc: loc, Cond: cond, Then: body}
}

func (p *Parser) parseDoWhile() *Stmt {
	loc := p.advance().Loc
	body := p.parseStatement()
	if !p.atKeyword(KwWhile) {
		p.diags.Error(SyntaxError{Code: SyntaxGeneric, Detail: "expected 'while' after do-statement body"}, p.peek().Loc, passSyntax)
	} else {
		p.advance()
	}
	p.expect(TokLParen, SyntaxGeneric)
	cond := p.parseExpr()
	p.expect(TokRParen, SyntaxGeneric)
	p.expect(TokSemicolon, SyntaxGeneric)
	return &Stmt{Kind: StDoWhile, Loc: loc, Cond: cond, Then: body}
}

func (p *Parser) parseFor() *Stmt {
	loc := p.advance().Loc
	p.expect(TokLParen, SyntaxGeneric)
	p.scope.Push()
	defer p.scope.Pop()
	var init *Stmt
	if p.startsDeclaration() {
		init = p.parseDeclStmt()
	} else if !p.at(TokSemicolon) {
		e := p.parseExpr()
		p.expect(TokSemicolon, SyntaxGeneric)
		init = &Stmt{Kind: StExpr, Expr: e}
	} else {
		p.advance()
	}
	var cond *Expr
	if !p.at(TokSemicolon) {
		cond = p.parseExpr()
	}
	p.expect(TokSemicolon, SyntaxGeneric)
	var post *Expr
	if !p.at(TokRParen) {
		post = p.parseExpr()
	}
	p.expect(TokRParen, SyntaxGeneric)
	body := p.parseStatement()
	return &Stmt{Kind: StFor, Loc: loc, ForInit: init, Cond: cond, ForPost: post, Then: body}
}

func (p *Parser) parseSwitch() *Stmt {
	loc := p.advance().Loc
	p.expect(TokLParen, SyntaxGeneric)
	cond := p.parseExpr()
	p.expect(TokRParen, SyntaxGeneric)
	body := p.parseStatement()
	return &Stmt{Kind: StSwitch, Loc: loc, Cond: cond, Then: body}
}

// ---- expressions (Pratt-style precedence climbing, §4.4) ----

func (p *Parser) parseExpr() *Expr {
	defer p.recursionCheck("expr")()
	e := p.parseAssignExpr()
	for {
		if _, ok := p.matchNext(TokComma); !ok {
			return e
		}
		rhs := p.parseAssignExpr()
		e = &Expr{Kind: EkComma, Loc: e.Loc, LHS: e, RHS: rhs}
	}
}

var assignOps = map[TokenKind]AssignOp{
	TokAssign: AsgPlain, TokPlusAssign: AsgAdd, TokMinusAssign: AsgSub,
	TokStarAssign: AsgMul, TokSlashAssign: AsgDiv, TokPercentAssign: AsgMod,
	TokLShiftAssign: AsgShl, TokRShiftAssign: AsgShr, TokAmpAssign: AsgAnd,
	TokPipeAssign: AsgOr, TokCaretAssign: AsgXor,
}

func (p *Parser) parseAssignExpr() *Expr {
	defer p.recursionCheck("assign-expr")()
	lhs := p.parseTernary()
	if op, ok := assignOps[p.peek().Kind]; ok {
		p.advance()
		rhs := p.parseAssignExpr()
		return &Expr{Kind: EkAssign, Loc: lhs.Loc, AssignOp: op, LHS: lhs, RHS: rhs}
	}
	return lhs
}

func (p *Parser) parseTernary() *Expr {
	cond := p.parseBinary(0)
	if _, ok := p.matchNext(TokQuestion); ok {
		then := p.parseExpr()
		p.expect(TokColon, SyntaxGeneric)
		els := p.parseAssignExpr()
		return &Expr{Kind: EkTernary, Loc: cond.Loc, Cond: cond, Then: then, Else: els}
	}
	return cond
}

// binPrec gives the precedence level of each binary operator token;
// higher binds tighter. Matches §4.4's level list between unary and
// ternary.
var binPrec = map[TokenKind]int{
	TokPipePipe: 1,
	TokAmpAmp:   2,
	TokPipe:     3,
	TokCaret:    4,
	TokAmp:      5,
	TokEq:       6, TokNotEq: 6,
	TokLess: 7, TokGreater: 7, TokLessEq: 7, TokGreaterEq: 7,
	TokLShift: 8, TokRShift: 8,
	TokPlus: 9, TokMinus: 9,
	TokStar: 10, TokSlash: 10, TokPercent: 10,
}

var binOpOf = map[TokenKind]BinaryOp{
	TokPipePipe: BinLogOr, TokAmpAmp: BinLogAnd,
	TokPipe: BinBitOr, TokCaret: BinBitXor, TokAmp: BinBitAnd,
	TokEq: BinEq, TokNotEq: BinNe,
	TokLess: BinLt, TokGreater: BinGt, TokLessEq: BinLe, TokGreaterEq: BinGe,
	TokLShift: BinShl, TokRShift: BinShr,
	TokPlus: BinAdd, TokMinus: BinSub,
	TokStar: BinMul, TokSlash: BinDiv, TokPercent: BinMod,
}

func (p *Parser) parseBinary(minPrec int) *Expr {
	defer p.recursionCheck("binary-expr")()
	lhs := p.parseUnary()
	for {
		prec, ok := binPrec[p.peek().Kind]
		if !ok || prec < minPrec {
			return lhs
		}
		opTok := p.advance()
		rhs := p.parseBinary(prec + 1)
		lhs = &Expr{Kind: EkBinary, Loc: opTok.Loc, BinOp: binOpOf[opTok.Kind], LHS: lhs, RHS: rhs}
	}
}

func (p *Parser) parseUnary() *Expr {
	defer p.recursionCheck("unary-expr")()
	loc := p.peek().Loc
	switch {
	case p.matchAny(TokPlusPlus):
		return &Expr{Kind: EkUnary, Loc: loc, UnaryOp: UnPreInc, Operand: p.parseUnary()}
	case p.matchAny(TokMinusMinus):
		return &Expr{Kind: EkUnary, Loc: loc, UnaryOp: UnPreDec, Operand: p.parseUnary()}
	case p.matchAny(TokAmp):
		return &Expr{Kind: EkUnary, Loc: loc, UnaryOp: UnAddr, Operand: p.parseCastExpr()}
	case p.matchAny(TokStar):
		return &Expr{Kind: EkUnary, Loc: loc, UnaryOp: UnDeref, Operand: p.parseCastExpr()}
	case p.matchAny(TokPlus):
		return &Expr{Kind: EkUnary, Loc: loc, UnaryOp: UnPlus, Operand: p.parseCastExpr()}
	case p.matchAny(TokMinus):
		return &Expr{Kind: EkUnary, Loc: loc, UnaryOp: UnMinus, Operand: p.parseCastExpr()}
	case p.matchAny(TokTilde):
		return &Expr{Kind: EkUnary, Loc: loc, UnaryOp: UnBitNot, Operand: p.parseCastExpr()}
	case p.matchAny(TokBang):
		return &Expr{Kind: EkUnary, Loc: loc, UnaryOp: UnNot, Operand: p.parseCastExpr()}
	case p.atKeyword(KwSizeof):
		p.advance()
		if p.at(TokLParen) && p.startsTypeName(p.peekAt(1)) {
			p.advance()
			tn := p.parseTypeName()
			p.expect(TokRParen, SyntaxGeneric)
			return &Expr{Kind: EkSizeofType, Loc: loc, SizeofType: tn}
		}
		return &Expr{Kind: EkSizeofExpr, Loc: loc, Operand: p.parseUnary()}
	default:
		return p.parseCastExpr()
	}
}

func (p *Parser) matchAny(k TokenKind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) startsTypeName(t Token) bool {
	if t.Kind == TokKeyword {
		switch t.Keyword {
		case KwVoid, KwChar, KwShort, KwInt, KwLong, KwFloat, KwDouble,
			KwSigned, KwUnsigned, KwBool, KwStruct, KwUnion, KwEnum,
			KwConst, KwVolatile:
			return true
		}
		return false
	}
	return t.Kind == TokIdent && p.sess.IsTypedefName(t.Name)
}

func (p *Parser) parseCastExpr() *Expr {
	defer p.recursionCheck("cast-expr")()
	if p.at(TokLParen) && p.startsTypeName(p.peekAt(1)) {
		loc := p.advance().Loc
		tn := p.parseTypeName()
		p.expect(TokRParen, SyntaxGeneric)
		operand := p.parseCastExpr()
		return &Expr{Kind: EkCast, Loc: loc, CastType: tn, Operand: operand}
	}
	return p.parsePostfix()
}

func (p *Parser) parseTypeName() *TypeName {
	loc := p.peek().Loc
	spec, _ := p.parseDeclSpecifiers()
	d := p.parseAbstractDeclarator()
	return &TypeName{Spec: spec, Declarator: d, Loc: loc}
}

func (p *Parser) parseAbstractDeclarator() *Declarator {
	if p.at(TokStar) || p.at(TokLBracket) || p.at(TokLParen) {
		return p.parseDeclarator()
	}
	return &Declarator{Kind: DeclIdent, Loc: p.peek().Loc}
}

func (p *Parser) parsePostfix() *Expr {
	defer p.recursionCheck("postfix-expr")()
	e := p.parsePrimary()
	for {
		loc := p.peek().Loc
		switch {
		case p.matchAny(TokLBracket):
			idx := p.parseExpr()
			p.expect(TokRBracket, SyntaxGeneric)
			e = &Expr{Kind: EkIndex, Loc: loc, Base: e, Index: idx}
		case p.matchAny(TokLParen):
			var args []*Expr
			if !p.at(TokRParen) {
				for {
					args = append(args, p.parseAssignExpr())
					if _, ok := p.matchNext(TokComma); ok {
						continue
					}
					break
				}
			}
			p.expect(TokRParen, SyntaxGeneric)
			e = &Expr{Kind: EkCall, Loc: loc, Callee: e, Args: args}
		case p.matchAny(TokDot):
			name, _ := p.expect(TokIdent, SyntaxExpectedID)
			e = &Expr{Kind: EkMember, Loc: loc, Base: e, Member: name.Name}
		case p.matchAny(TokArrow):
			name, _ := p.expect(TokIdent, SyntaxExpectedID)
			e = &Expr{Kind: EkMember, Loc: loc, Base: e, Member: name.Name, Arrow: true}
		case p.matchAny(TokPlusPlus):
			e = &Expr{Kind: EkPostfix, Loc: loc, Postfix: PostInc, Operand: e}
		case p.matchAny(TokMinusMinus):
			e = &Expr{Kind: EkPostfix, Loc: loc, Postfix: PostDec, Operand: e}
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() *Expr {
	defer p.recursionCheck("primary-expr")()
	tok := p.peek()
	switch tok.Kind {
	case TokIntLiteral, TokUintLiteral, TokCharLiteral, TokFloatLiteral, TokStringLiteral:
		p.advance()
		return &Expr{Kind: EkLiteral, Loc: tok.Loc, Lit: tok.Lit}
	case TokIdent:
		p.advance()
		return &Expr{Kind: EkIdent, Loc: tok.Loc, Name: tok.Name}
	case TokLParen:
		p.advance()
		e := p.parseExpr()
		p.expect(TokRParen, SyntaxGeneric)
		return e
	default:
		p.diags.Error(SyntaxError{Code: SyntaxMissingPrimary}, tok.Loc, passSyntax)
		if !p.at(TokEOF) {
			p.advance()
		}
		return &Expr{Kind: EkLiteral, Loc: tok.Loc, Lit: Literal{Kind: LitInt, Int: 0}}
	}
}
