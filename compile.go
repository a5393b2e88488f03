package cc

import (
	"fmt"
	"os"
	"path/filepath"
)

// sourceFile is one registered translation unit or included file.
type sourceFile struct {
	name string
	src  []byte
	li   *LineIndex
}

// Session owns every piece of state one compilation shares: the
// interner, the diagnostic queues, the configuration, and the
// per-file line index cache. It is the single explicit context value
// threaded through every pass (§9 "Global mutable state" -- the
// interner and size table are made an explicit value here instead of
// process-wide state). Unlike the teacher's query-cache Database, a
// Session is not revision-tracked: a translation unit compiles once,
// so it is a plain struct rather than a memoizing cache.
type Session struct {
	Interner *Interner
	Diags    *Diagnostics
	Config   *Config
	Types    *TypeArena
	Tracer   Tracer

	Tags        map[Name]TagID // tag namespace (struct/union/enum), flat/file-scope (see DESIGN.md)
	typedefs    map[Name]*Type
	enumerators map[Name]int64

	files []sourceFile
}

// NewSession builds a Session from a Config, seeding the interner,
// diagnostics (capped at Config's max-errors), and type arena.
func NewSession(cfg *Config) *Session {
	if cfg == nil {
		cfg = NewConfig()
	}
	s := &Session{
		Interner: NewInterner(),
		Config:   cfg,
		Types:    NewTypeArena(),
		Tracer:   noopTracer{},
		Tags:        map[Name]TagID{},
		typedefs:    map[Name]*Type{},
		enumerators: map[Name]int64{},
		files:       []sourceFile{{}}, // index 0 reserved, matches the zero FileID
	}
	s.Diags = NewDiagnostics(cfg.MaxErrors())
	return s
}

// UseTracer installs t as the debug-dump sink.
func (s *Session) UseTracer(t Tracer) { s.Tracer = t }

// Intern forwards to the Session's Interner.
func (s *Session) Intern(str string) Name { return s.Interner.Intern(str) }

// String forwards to the Session's Interner.
func (s *Session) String(n Name) string { return s.Interner.String(n) }

// RegisterTypedef records name as a type alias for ty, consulted by
// BaseType and by the parser's typedef-vs-identifier disambiguation
// (§4.4 "Typedef names are recognized by consulting the current
// scope").
func (s *Session) RegisterTypedef(name Name, ty *Type) { s.typedefs[name] = ty }

func (s *Session) IsTypedefName(name Name) bool {
	_, ok := s.typedefs[name]
	return ok
}

// RegisterEnumerator records name as an enumeration constant with
// value v, consulted by the analyzer when resolving identifiers that
// are not ordinary variables (§4.6 "Enumeration constants").
func (s *Session) RegisterEnumerator(name Name, v int64) { s.enumerators[name] = v }

func (s *Session) EnumeratorValue(name Name) (int64, bool) {
	v, ok := s.enumerators[name]
	return v, ok
}

// AddFile registers source text under name and returns its FileID,
// building and caching a LineIndex for later diagnostic rendering.
func (s *Session) AddFile(name string, src []byte) FileID {
	src = normalizeNewlines(src)
	s.files = append(s.files, sourceFile{name: name, src: src, li: NewLineIndex(src)})
	return FileID(len(s.files) - 1)
}

func (s *Session) FileName(id FileID) string {
	if int(id) <= 0 || int(id) >= len(s.files) {
		return "<unknown>"
	}
	return s.files[id].name
}

func (s *Session) FileSource(id FileID) []byte {
	if int(id) <= 0 || int(id) >= len(s.files) {
		return nil
	}
	return s.files[id].src
}

func (s *Session) LineIndexFor(id FileID) *LineIndex {
	if int(id) <= 0 || int(id) >= len(s.files) {
		return nil
	}
	return s.files[id].li
}

// normalizeNewlines maps \r\n to \n (§6 "Source input").
func normalizeNewlines(src []byte) []byte {
	if !containsCR(src) {
		return src
	}
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		if src[i] == '\r' && i+1 < len(src) && src[i+1] == '\n' {
			continue
		}
		out = append(out, src[i])
	}
	return out
}

func defaultReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func containsCR(src []byte) bool {
	for _, b := range src {
		if b == '\r' {
			return true
		}
	}
	return false
}

// Program is the HIR output of a successful-enough compile: a
// sequence of located top-level declarations (§6 "HIR output").
type Program struct {
	Decls []Located[*HIRDecl]
}

// CompileFile reads path, registers it on the Session, and runs the
// full pipeline: lex -> preprocess -> parse -> analyze -> fold. It
// returns the HIR even when diagnostics were raised (callers check
// Diags.HasErrors()), matching §7's "siblings continue" error policy.
func (s *Session) CompileFile(path string) (*Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cc: reading %s: %w", path, err)
	}
	return s.CompileSource(path, src), nil
}

// CompileSource is CompileFile without filesystem I/O, for embedding
// or testing against in-memory source.
func (s *Session) CompileSource(name string, src []byte) *Program {
	file := s.AddFile(name, src)
	dir := filepath.Dir(name)

	lx := NewLexer(s, file, s.FileSource(file), s.Diags)
	pp := NewPreprocessor(s, lx, dir, s.Diags)
	toks := pp.Tokens()
	if s.Config.DebugLex() {
		s.Tracer.Trace("lexed %d tokens from %s", len(toks), name)
	}

	p := NewParser(s, toks, s.Diags)
	decls := p.ParseTranslationUnit()

	an := NewAnalyzer(s, s.Diags)
	hirDecls := make([]Located[*HIRDecl], 0, len(decls))
	for _, d := range decls {
		hirDecls = append(hirDecls, an.AnalyzeDecl(d))
	}

	if s.Config.DebugAST() {
		s.Tracer.Trace("parsed %d top-level declarations from %s", len(decls), name)
	}
	if s.Config.DebugHIR() {
		s.Tracer.Trace("lowered %d HIR declarations from %s", len(hirDecls), name)
	}

	return &Program{Decls: hirDecls}
}
