package cc

// This file is the untyped AST data model of §3 "AST": declarations,
// declarators (including abstract ones), initializers, statements,
// and expressions, as produced by the parser before name resolution.

// ---- declaration specifiers ----

// DeclSpec is the specifier-list prefix shared by every declarator in
// one declaration (§4.4 "Declarations split into specifier list and
// one-or-more declarators").
type DeclSpec struct {
	Storage     StorageClass
	Base        TypeKind // TInt/TChar/.../TStruct/TUnion/TEnum/TVoid/TFloat/TDouble/TBool
	Signed      bool
	SignedSeen  bool
	Unsigned    bool
	LongCount   int
	Quals       Qualifiers
	Inline      bool
	TagName     Name
	TagID       TagID // resolved once the tag is declared/looked up
	IsTypedef   bool  // Base is a reference to a prior typedef name
	TypedefName Name
	Loc         Location
}

// ---- declarators (the "spiral" grammar, §4.4) ----

type DeclaratorKind int

const (
	DeclIdent DeclaratorKind = iota
	DeclPointer
	DeclArray
	DeclFunction
)

// Declarator wraps an (possibly absent, for abstract declarators)
// identifier in zero or more pointer/array/function layers, read
// inside-out the way C's declarator grammar requires.
type Declarator struct {
	Kind  DeclaratorKind
	Name  Name // DeclIdent; zero Name for an abstract declarator
	Quals Qualifiers // DeclPointer
	Inner *Declarator

	ArrayLen       *Expr // DeclArray; nil with !ArrayUnbounded means omitted
	ArrayUnbounded bool  // "[*]"

	Params   []*ParamDecl // DeclFunction
	Variadic bool

	Loc Location
}

type ParamDecl struct {
	Spec       DeclSpec
	Declarator *Declarator // may be nil (unnamed) or abstract
	Loc        Location
}

// ---- initializers (§4.4 "Initializers") ----

type InitKind int

const (
	InitScalar InitKind = iota
	InitList
	InitFuncBody
)

type Initializer struct {
	Kind  InitKind
	Expr  *Expr          // InitScalar
	Items []*Initializer // InitList
	Body  *Stmt          // InitFuncBody
	Loc   Location
}

// ---- declarations ----

// Decl is one declarator plus its shared specifier and optional
// initializer -- the unit the parser emits per declarator, and the
// unit the semantic analyzer consumes one at a time (§4.6).
type Decl struct {
	Spec       DeclSpec
	Declarator *Declarator
	Init       *Initializer
	Loc        Location
}

// ---- statements (§3, §4.4 "Statements") ----

type StmtKind int

const (
	StCompound StmtKind = iota
	StIf
	StWhile
	StDoWhile
	StFor
	StSwitch
	StCase
	StDefault
	StLabel
	StGoto
	StContinue
	StBreak
	StReturn
	StExpr
	StDecl
)

type Stmt struct {
	Kind StmtKind
	Loc  Location

	Body []*Stmt // StCompound

	Cond *Expr // If/While/DoWhile/For/Switch
	Then *Stmt // If/While/DoWhile/For body
	Else *Stmt // If

	ForInit *Stmt // StFor: StDecl or StExpr, may be nil
	ForPost *Expr // StFor

	CaseValue *Expr // StCase

	Label Name // StLabel/StGoto

	Expr *Expr // StExpr, StReturn (optional), StCase (redundant alias unused)

	Decls []*Decl // StDecl
}

// ---- expressions (§3, §4.4 "Expression grammar") ----

type ExprKind int

const (
	EkLiteral ExprKind = iota
	EkIdent
	EkCall
	EkIndex
	EkMember
	EkUnary
	EkPostfix
	EkBinary
	EkAssign
	EkTernary
	EkCast
	EkSizeofExpr
	EkSizeofType
	EkComma
)

type UnaryOp int

const (
	UnAddr UnaryOp = iota // &
	UnDeref
	UnPlus
	UnMinus
	UnNot    // !
	UnBitNot // ~
	UnPreInc
	UnPreDec
)

type PostfixOp int

const (
	PostInc PostfixOp = iota
	PostDec
)

type BinaryOp int

const (
	BinMul BinaryOp = iota
	BinDiv
	BinMod
	BinAdd
	BinSub
	BinShl
	BinShr
	BinLt
	BinGt
	BinLe
	BinGe
	BinEq
	BinNe
	BinBitAnd
	BinBitXor
	BinBitOr
	BinLogAnd
	BinLogOr
)

type AssignOp int

const (
	AsgPlain AssignOp = iota
	AsgAdd
	AsgSub
	AsgMul
	AsgDiv
	AsgMod
	AsgShl
	AsgShr
	AsgAnd
	AsgOr
	AsgXor
)

// TypeName is a type-id with no declared identifier: the specifier
// list plus an abstract declarator, used by cast and sizeof(T)
// (§4.4 "Abstract declarators omit the identifier").
type TypeName struct {
	Spec       DeclSpec
	Declarator *Declarator
	Loc        Location
}

// Expr is a flat, tagged-union expression node; only the fields that
// apply to Kind are meaningful. A flat struct (mirroring Type) keeps
// the constant folder's switch-over-Kind style uniform across the
// codebase instead of a Go interface hierarchy.
type Expr struct {
	Kind ExprKind
	Loc  Location

	Lit  Literal // EkLiteral
	Name Name    // EkIdent

	Callee *Expr   // EkCall
	Args   []*Expr // EkCall

	Base      *Expr // EkIndex/EkMember
	Index     *Expr // EkIndex
	Member    Name  // EkMember
	Arrow     bool  // EkMember: -> vs .

	UnaryOp UnaryOp // EkUnary
	Operand *Expr   // EkUnary, EkPostfix, EkCast, EkSizeofExpr

	Postfix PostfixOp // EkPostfix

	BinOp BinaryOp // EkBinary
	LHS   *Expr    // EkBinary, EkAssign, EkComma
	RHS   *Expr    // EkBinary, EkAssign, EkComma

	AssignOp AssignOp // EkAssign

	Cond, Then, Else *Expr // EkTernary

	CastType   *TypeName // EkCast
	SizeofType *TypeName // EkSizeofType
}
