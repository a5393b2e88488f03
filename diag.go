package cc

import (
	"fmt"
	"sort"
	"strings"
)

// Severity distinguishes an error from a warning. Warnings never
// change control flow (§7).
type Severity int

const (
	SevError Severity = iota
	SevWarning
)

func (s Severity) String() string {
	if s == SevWarning {
		return "warning"
	}
	return "error"
}

// pass numbers the source-pass order used to break ties when two
// diagnostics share a location (§5 "Ordering guarantees": lex before
// parse before semantic).
type pass int

const (
	passLex pass = iota
	passPreprocessor
	passSyntax
	passSemantic
)

// Kind is implemented by every diagnostic payload family. It is
// intentionally a tiny interface: Family distinguishes the four error
// families (plus Warning) for programmatic classification (§6), and
// Message renders the one-line human text.
type Kind interface {
	Family() string
	Message() string
}

// Diagnostic pairs a Kind with where it was found and how severe it is.
type Diagnostic struct {
	Kind     Kind
	Loc      Location
	Severity Severity
	pass     pass
}

// ---- Lex family ----

type LexErrorCode int

const (
	LexUnknownToken LexErrorCode = iota
	LexUnterminatedComment
	LexMissingDigitsAfterRadix
	LexDigitOutOfRange
	LexIntOverflow
	LexExponentNoDigits
	LexFloatUnderflow
	LexFloatParseFailure
	LexCharEscapeOutOfRange
	LexUnknownEscape
	LexNewlineInLiteral
	LexEmptyCharLiteral
	LexMultiByteCharLiteral
	LexNoNewlineAtEOF
)

// EscapeRadix distinguishes hex (\x) from octal (\NNN) escapes for
// LexCharEscapeOutOfRange, matching scenario 7 in spec.md §8.
type EscapeRadix int

const (
	EscapeHex EscapeRadix = iota
	EscapeOctal
)

type LexError struct {
	Code   LexErrorCode
	Radix  EscapeRadix // only meaningful for LexCharEscapeOutOfRange
	Detail string
}

func (LexError) Family() string { return "lex" }

func (e LexError) Message() string {
	switch e.Code {
	case LexUnknownToken:
		return fmt.Sprintf("unknown token %s", e.Detail)
	case LexUnterminatedComment:
		return "unterminated /* comment"
	case LexMissingDigitsAfterRadix:
		return fmt.Sprintf("missing digits after %s prefix", e.Detail)
	case LexDigitOutOfRange:
		return fmt.Sprintf("digit out of range for %s literal", e.Detail)
	case LexIntOverflow:
		return "integer literal overflows"
	case LexExponentNoDigits:
		return "exponent has no digits"
	case LexFloatUnderflow:
		return "float literal underflows to zero"
	case LexFloatParseFailure:
		return fmt.Sprintf("failed to parse float literal: %s", e.Detail)
	case LexCharEscapeOutOfRange:
		if e.Radix == EscapeHex {
			return "hex escape out of range"
		}
		return "octal escape out of range"
	case LexUnknownEscape:
		return fmt.Sprintf("unknown escape sequence '\\%s'", e.Detail)
	case LexNewlineInLiteral:
		return "newline in character or string literal"
	case LexEmptyCharLiteral:
		return "empty character literal"
	case LexMultiByteCharLiteral:
		return "character literal must contain exactly one byte"
	case LexNoNewlineAtEOF:
		return "no newline at end of file"
	default:
		return "lex error"
	}
}

// ---- Preprocessor family ----

type CppErrorCode int

const (
	CppInvalidDirective CppErrorCode = iota
	CppUnexpectedToken
	CppEndOfFile
	CppFileNotFound
	CppUser
	CppUnterminatedIf
	CppEmptyExpression
	CppEmptyDefine
	CppEmptyInclude
	CppUnexpectedEndIf
	CppUnexpectedElse
	CppUnexpectedElif
)

type CppError struct {
	Code    CppErrorCode
	Detail  string
	Early   bool // for CppUnexpectedElif: true if no #if was open at all
}

func (CppError) Family() string { return "preprocessor" }

func (e CppError) Message() string {
	switch e.Code {
	case CppInvalidDirective:
		return "invalid preprocessing directive"
	case CppUnexpectedToken:
		return fmt.Sprintf("unexpected token in directive: %s", e.Detail)
	case CppEndOfFile:
		return fmt.Sprintf("expected %s, got end of file", e.Detail)
	case CppFileNotFound:
		return fmt.Sprintf("file '%s' not found", e.Detail)
	case CppUser:
		return fmt.Sprintf("#error %s", e.Detail)
	case CppUnterminatedIf:
		return "#if is never terminated"
	case CppEmptyExpression:
		return "expected expression for #if"
	case CppEmptyDefine:
		return "macro name missing"
	case CppEmptyInclude:
		return "empty filename"
	case CppUnexpectedEndIf:
		return "#endif without #if"
	case CppUnexpectedElse:
		return "#else after #else or #else without #if"
	case CppUnexpectedElif:
		if e.Early {
			return "#elif without #if"
		}
		return "#elif after #else"
	default:
		return "preprocessor error"
	}
}

// ---- Syntax family ----

type SyntaxErrorCode int

const (
	SyntaxGeneric SyntaxErrorCode = iota
	SyntaxEndOfFile
	SyntaxNotAStatement
	SyntaxMissingPrimary
	SyntaxExpectedID
	SyntaxExpectedDeclSpecifier
	SyntaxExpectedDeclarator
	SyntaxExpectedType
	SyntaxExpectedDeclaratorStart
	SyntaxNotAFunction
	SyntaxFunctionInitializer
	SyntaxRecursionLimit
	SyntaxUnterminatedBlock
)

type SyntaxError struct {
	Code   SyntaxErrorCode
	Detail string
}

func (SyntaxError) Family() string { return "syntax" }

func (e SyntaxError) Message() string {
	switch e.Code {
	case SyntaxGeneric:
		return e.Detail
	case SyntaxEndOfFile:
		return fmt.Sprintf("expected %s, got end of file", e.Detail)
	case SyntaxNotAStatement:
		return fmt.Sprintf("expected statement, got %s", e.Detail)
	case SyntaxMissingPrimary:
		return "expected variable, literal, or '('"
	case SyntaxExpectedID:
		return fmt.Sprintf("expected identifier, got '%s'", e.Detail)
	case SyntaxExpectedDeclSpecifier:
		return fmt.Sprintf("expected declaration specifier, got keyword '%s'", e.Detail)
	case SyntaxExpectedDeclarator:
		return "expected declarator in declaration"
	case SyntaxExpectedType:
		return "empty type name"
	case SyntaxExpectedDeclaratorStart:
		return fmt.Sprintf("expected '(', '*', or variable, got '%s'", e.Detail)
	case SyntaxNotAFunction:
		return fmt.Sprintf("only functions can have a function body (got %s)", e.Detail)
	case SyntaxFunctionInitializer:
		return "functions cannot be initialized"
	case SyntaxRecursionLimit:
		return "expression nested too deeply"
	case SyntaxUnterminatedBlock:
		return "missing '}' at end of file"
	default:
		return "syntax error"
	}
}

// ---- Semantic family ----

type SemanticErrorCode int

const (
	SemUndeclaredVar SemanticErrorCode = iota
	SemTypedefInExpressionContext
	SemIncompatibleRedeclaration
	SemRedefinition
	SemNotAssignable
	SemInvalidAddressOf
	SemDivideByZero
	SemConstOverflow
	SemNegativeShift
	SemTooManyShiftBits
	SemPointerAddUnknownSize
	SemInvalidCast
	SemNotAMember
	SemCaseOutsideSwitch
	SemDuplicateCase
	SemBreakOutsideLoop
	SemContinueOutsideLoop
	SemUndeclaredLabel
	SemUnreachableStatement
	SemInvalidMainSignature
	SemIncompleteType
	SemNotAFunction
	SemArgCountMismatch
	SemEnumOverflow
	SemEmptyInitializer
	SemNotConstant
)

type SemanticError struct {
	Code       SemanticErrorCode
	Name       string
	IsPositive bool // ConstOverflow
	IsLeft     bool // NegativeShift / TooManyShiftBits
	Maximum    int  // TooManyShiftBits
	Current    int  // TooManyShiftBits
	IsDefault  bool // CaseOutsideSwitch / DuplicateCase
	Detail     string
}

func (SemanticError) Family() string { return "semantic" }

func (e SemanticError) Message() string {
	switch e.Code {
	case SemUndeclaredVar:
		return fmt.Sprintf("use of undeclared identifier '%s'", e.Name)
	case SemTypedefInExpressionContext:
		return "expected expression, got typedef"
	case SemIncompatibleRedeclaration:
		return fmt.Sprintf("incompatible redeclaration of '%s': %s", e.Name, e.Detail)
	case SemRedefinition:
		return fmt.Sprintf("redefinition of '%s'", e.Name)
	case SemNotAssignable:
		return fmt.Sprintf("cannot assign to %s", e.Detail)
	case SemInvalidAddressOf:
		return fmt.Sprintf("cannot take address of %s", e.Detail)
	case SemDivideByZero:
		return "cannot divide by zero"
	case SemConstOverflow:
		if e.IsPositive {
			return "positive overflow in expression"
		}
		return "negative overflow in expression"
	case SemNegativeShift:
		if e.IsLeft {
			return "cannot shift left by a negative amount"
		}
		return "cannot shift right by a negative amount"
	case SemTooManyShiftBits:
		return fmt.Sprintf("shift amount %d exceeds maximum of %d bits", e.Current, e.Maximum)
	case SemPointerAddUnknownSize:
		return "cannot perform pointer arithmetic on a type of unknown size"
	case SemInvalidCast:
		return fmt.Sprintf("invalid cast: %s", e.Detail)
	case SemNotAMember:
		return fmt.Sprintf("'%s' is not a member of this struct or union", e.Name)
	case SemCaseOutsideSwitch:
		if e.IsDefault {
			return "default case outside of switch statement"
		}
		return "case outside of switch statement"
	case SemDuplicateCase:
		if e.IsDefault {
			return "cannot have multiple default cases in a switch statement"
		}
		return "cannot have multiple cases with the same value in a switch statement"
	case SemBreakOutsideLoop:
		return "break outside of a loop or switch statement"
	case SemContinueOutsideLoop:
		return "continue outside of a loop"
	case SemUndeclaredLabel:
		return fmt.Sprintf("use of undeclared label '%s'", e.Name)
	case SemUnreachableStatement:
		return "unreachable statement"
	case SemInvalidMainSignature:
		return "'main' must be declared 'int main(void)' or 'int main(int, char**)'"
	case SemIncompleteType:
		return fmt.Sprintf("use of incomplete type: %s", e.Detail)
	case SemNotAFunction:
		return fmt.Sprintf("called object of type '%s' is not a function", e.Detail)
	case SemArgCountMismatch:
		return fmt.Sprintf("wrong number of arguments: %s", e.Detail)
	case SemEnumOverflow:
		return "overflow in enumeration constant"
	case SemEmptyInitializer:
		return "initializers cannot be empty"
	case SemNotConstant:
		return "expression is not a compile-time constant"
	default:
		return "semantic error"
	}
}

// ---- Warning family ----

type WarningCode int

const (
	WarnUser WarningCode = iota
	WarnIgnoredPragma
	WarnIgnoredVariadic
	WarnIgnoredQualifier
	WarnDeprecated
	WarnBinaryLiteralExtension
	WarnMacroRedefinition
	WarnUnknownEscape
)

type Warning struct {
	Code   WarningCode
	Detail string
}

func (Warning) Family() string { return "warning" }

func (e Warning) Message() string {
	switch e.Code {
	case WarnUser:
		return fmt.Sprintf("#warning %s", e.Detail)
	case WarnIgnoredPragma:
		return "ignored #pragma"
	case WarnIgnoredVariadic:
		return "function-like macros are not supported, definition ignored"
	case WarnIgnoredQualifier:
		return fmt.Sprintf("ignored qualifier: %s", e.Detail)
	case WarnDeprecated:
		return fmt.Sprintf("deprecated construct: %s", e.Detail)
	case WarnBinaryLiteralExtension:
		return "binary integer literals are a non-standard extension"
	case WarnMacroRedefinition:
		return fmt.Sprintf("redefinition of macro '%s' with a different body", e.Detail)
	case WarnUnknownEscape:
		return fmt.Sprintf("unknown escape sequence '\\%s', treated literally", e.Detail)
	default:
		return "warning"
	}
}

// Diagnostics holds the two FIFO queues (errors, warnings) that every
// pipeline stage drains into (§4.1). It resolves Location to
// file/line/column for pretty-printing via per-file LineIndex lookups
// supplied by the Session.
type Diagnostics struct {
	errors   []Diagnostic
	warnings []Diagnostic
	maxErrs  int // 0 = unlimited (§6 "max-errors")
	dropped  int
}

func NewDiagnostics(maxErrors int) *Diagnostics {
	return &Diagnostics{maxErrs: maxErrors}
}

// Error queues an error-severity diagnostic. If max-errors has been
// reached, the diagnostic is dropped and counted (§5 "Cancellation").
func (d *Diagnostics) Error(k Kind, loc Location, p pass) {
	if d.maxErrs > 0 && len(d.errors) >= d.maxErrs {
		d.dropped++
		return
	}
	d.errors = append(d.errors, Diagnostic{Kind: k, Loc: loc, Severity: SevError, pass: p})
}

func (d *Diagnostics) Warn(k Kind, loc Location, p pass) {
	d.warnings = append(d.warnings, Diagnostic{Kind: k, Loc: loc, Severity: SevWarning, pass: p})
}

func (d *Diagnostics) HasErrors() bool { return len(d.errors) > 0 }
func (d *Diagnostics) ErrorCount() int { return len(d.errors) }
func (d *Diagnostics) DroppedCount() int { return d.dropped }

func (d *Diagnostics) Errors() []Diagnostic   { return d.errors }
func (d *Diagnostics) Warnings() []Diagnostic { return d.warnings }

// Append moves another Diagnostics' queues into d in order, the way a
// sub-pass' errors and warnings are merged into its caller (§4.1
// "Append semantics").
func (d *Diagnostics) Append(other *Diagnostics) {
	d.errors = append(d.errors, other.errors...)
	d.warnings = append(d.warnings, other.warnings...)
	d.dropped += other.dropped
}

// Sorted returns all diagnostics (errors and warnings together) in
// location order, breaking ties by source-pass order (§5, §8 property
// "ordering guarantees"): lex before preprocessor before syntax before
// semantic.
func (d *Diagnostics) Sorted() []Diagnostic {
	all := make([]Diagnostic, 0, len(d.errors)+len(d.warnings))
	all = append(all, d.errors...)
	all = append(all, d.warnings...)
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Loc.File != b.Loc.File {
			return a.Loc.File < b.Loc.File
		}
		if a.Loc.Span.Start != b.Loc.Span.Start {
			return a.Loc.Span.Start < b.Loc.Span.Start
		}
		return a.pass < b.pass
	})
	return all
}

// Render pretty-prints a single diagnostic as
// "file:line:col severity: message" followed by a caret-underlined
// source line when start/end share a line, resolving file/line/column
// through the Session's file table.
func Render(s *Session, diag Diagnostic) string {
	name := s.FileName(diag.Loc.File)
	li := s.LineIndexFor(diag.Loc.File)
	var b strings.Builder
	if li != nil {
		lc := li.LineCol(diag.Loc.Span.Start)
		fmt.Fprintf(&b, "%s:%d:%d %s: %s", name, lc.Line, lc.Column, diag.Severity, diag.Kind.Message())
		if line, caret, ok := li.Caret(diag.Loc.Span); ok {
			b.WriteByte('\n')
			b.WriteString(line)
			b.WriteByte('\n')
			b.WriteString(caret)
		}
	} else {
		fmt.Fprintf(&b, "%s %s: %s", name, diag.Severity, diag.Kind.Message())
	}
	return b.String()
}

// RenderAll renders every diagnostic in location order, one per
// paragraph.
func RenderAll(s *Session, diags []Diagnostic) string {
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = Render(s, d)
	}
	return strings.Join(parts, "\n\n")
}

// Recoverable is either a success or (error, fallback) pair used for
// multi-error reporting (§9 "Recoverable results", §4.1): callers that
// call Recover push the error into a Diagnostics queue and continue
// with the fallback value instead of unwinding.
type Recoverable[T any] struct {
	ok       bool
	value    T
	err      Kind
	loc      Location
	fallback T
}

func Ok[T any](v T) Recoverable[T] {
	return Recoverable[T]{ok: true, value: v}
}

func Err[T any](err Kind, loc Location, fallback T) Recoverable[T] {
	return Recoverable[T]{ok: false, err: err, loc: loc, fallback: fallback}
}

// Recover pushes the wrapped error (if any) into d at pass p and
// returns the success value or the fallback.
func (r Recoverable[T]) Recover(d *Diagnostics, p pass) T {
	if r.ok {
		return r.value
	}
	d.Error(r.err, r.loc, p)
	return r.fallback
}

func (r Recoverable[T]) IsOk() bool { return r.ok }
