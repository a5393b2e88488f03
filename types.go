package cc

import "fmt"

// TypeKind tags the recursive type union of §3 "Type".
type TypeKind int

const (
	TVoid TypeKind = iota
	TBool
	TChar
	TShort
	TInt
	TLong
	TFloat
	TDouble
	TPointer
	TArray
	TFunction
	TStruct
	TUnion
	TEnum
	TBitfield
	TVaList
	TError // not a real C type; marks a subtree whose type checking failed (§3 invariant 2)
)

// ArrayLen is either a fixed length or the unbounded ("[*]"/omitted)
// variant named in §3.
type ArrayLen struct {
	Fixed bool
	Len   int
}

func FixedLen(n int) ArrayLen { return ArrayLen{Fixed: true, Len: n} }
func UnboundedLen() ArrayLen  { return ArrayLen{Fixed: false} }

// TagID indexes a named struct/union/enum definition in a TypeArena,
// breaking self-referential cycles the way §9 "Cyclic type graphs"
// describes: a pointer-to-self field stores a TagID, not an inline
// Type.
type TagID int32

// Type is a structural, recursive description of a C type. Only the
// fields relevant to Kind are meaningful; this mirrors the tagged
// union in spec.md §3 using a flat Go struct instead of an interface
// hierarchy, so equality can stay a plain (mostly) value comparison.
type Type struct {
	Kind     TypeKind
	Signed   bool // Char/Short/Int/Long
	Elem     *Type
	ArrayLen ArrayLen
	Params   []*Type
	Variadic bool
	Tag      TagID // Struct/Union/Enum
	Quals    Qualifiers
}

// Qualifiers is the (const, volatile) pair of §3.
type Qualifiers struct {
	Const    bool
	Volatile bool
}

var (
	QualNone          = Qualifiers{}
	QualConst         = Qualifiers{Const: true}
	QualVolatile      = Qualifiers{Volatile: true}
	QualConstVolatile = Qualifiers{Const: true, Volatile: true}
)

func VoidType() *Type { return &Type{Kind: TVoid} }
func BoolType() *Type { return &Type{Kind: TBool} }
func ErrorType() *Type { return &Type{Kind: TError} }

func IntType(kind TypeKind, signed bool) *Type { return &Type{Kind: kind, Signed: signed} }
func FloatType() *Type  { return &Type{Kind: TFloat} }
func DoubleType() *Type { return &Type{Kind: TDouble} }

func PointerTo(elem *Type, q Qualifiers) *Type {
	return &Type{Kind: TPointer, Elem: elem, Quals: q}
}

func ArrayOf(elem *Type, length ArrayLen) *Type {
	return &Type{Kind: TArray, Elem: elem, ArrayLen: length}
}

func FunctionType(ret *Type, params []*Type, variadic bool) *Type {
	return &Type{Kind: TFunction, Elem: ret, Params: params, Variadic: variadic}
}

func IsInteger(k TypeKind) bool {
	switch k {
	case TBool, TChar, TShort, TInt, TLong, TEnum:
		return true
	default:
		return false
	}
}

func IsFloating(k TypeKind) bool { return k == TFloat || k == TDouble }
func IsArithmetic(k TypeKind) bool { return IsInteger(k) || IsFloating(k) }
func IsScalar(k TypeKind) bool     { return IsArithmetic(k) || k == TPointer }

// Equal implements the structural equality of §3: same Kind and, for
// composite kinds, recursively equal components. Qualifiers are not
// part of equality (they affect compatibility, not identity).
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TChar, TShort, TInt, TLong:
		return t.Signed == other.Signed
	case TPointer:
		return t.Elem.Equal(other.Elem)
	case TArray:
		if t.ArrayLen.Fixed != other.ArrayLen.Fixed {
			return false
		}
		if t.ArrayLen.Fixed && t.ArrayLen.Len != other.ArrayLen.Len {
			return false
		}
		return t.Elem.Equal(other.Elem)
	case TFunction:
		if len(t.Params) != len(other.Params) || t.Variadic != other.Variadic {
			return false
		}
		if !t.Elem.Equal(other.Elem) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(other.Params[i]) {
				return false
			}
		}
		return true
	case TStruct, TUnion, TEnum:
		return t.Tag == other.Tag
	case TBitfield:
		return t.Elem.Equal(other.Elem)
	default:
		return true
	}
}

// CanRepresent implements §3's can_represent(a,b): a can hold every
// value b can.
func CanRepresent(a, b *Type) bool {
	if a.Equal(b) {
		return true
	}
	if a.Kind == TDouble && b.Kind == TFloat {
		return true
	}
	if IsInteger(a.Kind) && IsInteger(b.Kind) {
		wa, wb := IntRank(a.Kind), IntRank(b.Kind)
		if wa > wb {
			return true
		}
		return wa == wb && a.Signed == b.Signed
	}
	return false
}

// IntRank gives the usual-arithmetic-conversion rank used by
// CanRepresent and the folder's common-type computation.
func IntRank(k TypeKind) int {
	switch k {
	case TBool:
		return 0
	case TChar:
		return 1
	case TShort:
		return 2
	case TInt, TEnum:
		return 3
	case TLong:
		return 4
	default:
		return -1
	}
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case TVoid:
		return "void"
	case TBool:
		return "_Bool"
	case TChar, TShort, TInt, TLong:
		return signPrefix(t.Signed) + baseName(t.Kind)
	case TFloat:
		return "float"
	case TDouble:
		return "double"
	case TPointer:
		return fmt.Sprintf("%s*", t.Elem)
	case TArray:
		if t.ArrayLen.Fixed {
			return fmt.Sprintf("%s[%d]", t.Elem, t.ArrayLen.Len)
		}
		return fmt.Sprintf("%s[]", t.Elem)
	case TFunction:
		return fmt.Sprintf("%s(...)->%s", t.Params, t.Elem)
	case TStruct:
		return fmt.Sprintf("struct#%d", t.Tag)
	case TUnion:
		return fmt.Sprintf("union#%d", t.Tag)
	case TEnum:
		return fmt.Sprintf("enum#%d", t.Tag)
	case TBitfield:
		return fmt.Sprintf("%s:bitfield", t.Elem)
	case TVaList:
		return "va_list"
	case TError:
		return "<error>"
	default:
		return "<?>"
	}
}

func signPrefix(signed bool) string {
	if signed {
		return ""
	}
	return "unsigned "
}

func baseName(k TypeKind) string {
	switch k {
	case TChar:
		return "char"
	case TShort:
		return "short"
	case TInt:
		return "int"
	case TLong:
		return "long"
	default:
		return "?"
	}
}

// Member is one field of a struct or union.
type Member struct {
	Name   Name
	Type   *Type
	Offset int // filled in by ComputeLayout
}

// Enumerator is one named constant of an enum.
type Enumerator struct {
	Name  Name
	Value int64
}

// TagDef is the definition bound to a TagID: a struct/union's member
// list and computed layout, or an enum's enumerator list.
type TagDef struct {
	Name      Name
	IsUnion   bool
	IsEnum    bool
	Complete  bool
	Members   []Member
	Enumerats []Enumerator
	Size      int
	Align     int
	layoutSet bool
}

// TypeArena owns every named struct/union/enum definition, indexed by
// TagID, so a pointer to an incomplete or self-referential tag can be
// formed before the tag's body is known (§9 "Cyclic type graphs").
type TypeArena struct {
	defs []*TagDef
}

func NewTypeArena() *TypeArena {
	return &TypeArena{defs: []*TagDef{nil}} // id 0 reserved
}

// Declare reserves a TagID for name before its body is parsed,
// returning the forward-declared (incomplete) definition.
func (a *TypeArena) Declare(name Name, isUnion, isEnum bool) TagID {
	a.defs = append(a.defs, &TagDef{Name: name, IsUnion: isUnion, IsEnum: isEnum})
	return TagID(len(a.defs) - 1)
}

func (a *TypeArena) Def(id TagID) *TagDef {
	if int(id) <= 0 || int(id) >= len(a.defs) {
		return nil
	}
	return a.defs[id]
}

// Complete fills in a previously-declared tag's members, marking it
// complete.
func (a *TypeArena) Complete(id TagID, members []Member) {
	d := a.Def(id)
	if d == nil {
		return
	}
	d.Members = members
	d.Complete = true
}

func (a *TypeArena) CompleteEnum(id TagID, enumerators []Enumerator) {
	d := a.Def(id)
	if d == nil {
		return
	}
	d.Enumerats = enumerators
	d.Complete = true
}

// ---- sizeof / alignof / struct_offset (§4.5) ----

// Target is the scalar size/alignment table sizeof/alignof consult.
// It is threaded explicitly (via Session) rather than kept as package
// state, per §9 "Global mutable state".
type Target struct {
	CharSize, ShortSize, IntSize, LongSize, PointerSize int
	FloatSize, DoubleSize                               int
}

// DefaultTarget is a typical LP64 target (teacher-grounded default: a
// config, not a spec requirement, so a single sane set of sizes is
// hardcoded rather than made pluggable beyond this struct).
func DefaultTarget() Target {
	return Target{
		CharSize: 1, ShortSize: 2, IntSize: 4, LongSize: 8, PointerSize: 8,
		FloatSize: 4, DoubleSize: 8,
	}
}

// SizeOf implements §4.5's sizeof(T) table. ok is false for function,
// void, va_list, or an unbounded array -- callers report
// SemIncompleteType.
func (a *TypeArena) SizeOf(t *Target, ty *Type) (int, bool) {
	switch ty.Kind {
	case TBool, TChar:
		return t.CharSize, true
	case TShort:
		return t.ShortSize, true
	case TInt:
		return t.IntSize, true
	case TEnum:
		def := a.Def(ty.Tag)
		if def == nil || !def.Complete {
			return 0, false
		}
		return EnumUnderlyingSize(len(def.Enumerats)), true
	case TLong:
		return t.LongSize, true
	case TFloat:
		return t.FloatSize, true
	case TDouble:
		return t.DoubleSize, true
	case TPointer:
		return t.PointerSize, true
	case TArray:
		if !ty.ArrayLen.Fixed {
			return 0, false
		}
		elemSize, ok := a.SizeOf(t, ty.Elem)
		if !ok {
			return 0, false
		}
		return elemSize * ty.ArrayLen.Len, true
	case TStruct, TUnion:
		def := a.Def(ty.Tag)
		if def == nil || !def.Complete {
			return 0, false
		}
		a.ComputeLayout(t, ty.Tag)
		return def.Size, true
	case TBitfield:
		return a.SizeOf(t, ty.Elem)
	default:
		return 0, false
	}
}

// AlignOf implements §4.5's alignof(T).
func (a *TypeArena) AlignOf(t *Target, ty *Type) (int, bool) {
	switch ty.Kind {
	case TArray:
		return a.AlignOf(t, ty.Elem)
	case TEnum:
		// an enum's alignment is that of its underlying integer type.
		return a.SizeOf(t, ty)
	case TStruct, TUnion:
		def := a.Def(ty.Tag)
		if def == nil || !def.Complete {
			return 0, false
		}
		a.ComputeLayout(t, ty.Tag)
		return def.Align, true
	default:
		return a.SizeOf(t, ty)
	}
}

func alignUp(offset, align int) int {
	if align <= 1 {
		return offset
	}
	rem := offset % align
	if rem == 0 {
		return offset
	}
	return offset + (align - rem)
}

// ComputeLayout computes and caches a struct/union's size, alignment,
// and member offsets once per definition (§3 invariant 5, §4.5).
// Unions place every member at offset 0 and take the max member size
// as their own size (treated as alignment too, per §4.5).
func (a *TypeArena) ComputeLayout(t *Target, id TagID) {
	def := a.Def(id)
	if def == nil || def.layoutSet || !def.Complete || def.IsEnum {
		return
	}
	if def.IsUnion {
		maxSize := 0
		for i := range def.Members {
			def.Members[i].Offset = 0
			sz, ok := a.SizeOf(t, def.Members[i].Type)
			if ok && sz > maxSize {
				maxSize = sz
			}
		}
		def.Size = maxSize
		def.Align = maxSize
		def.layoutSet = true
		return
	}
	offset := 0
	maxAlign := 1
	for i := range def.Members {
		align, ok := a.AlignOf(t, def.Members[i].Type)
		if !ok {
			align = 1
		}
		if align > maxAlign {
			maxAlign = align
		}
		offset = alignUp(offset, align)
		def.Members[i].Offset = offset
		sz, ok := a.SizeOf(t, def.Members[i].Type)
		if !ok {
			sz = 0
		}
		offset += sz
	}
	def.Size = alignUp(offset, maxAlign)
	def.Align = maxAlign
	def.layoutSet = true
}

// StructOffset implements §4.5's struct_offset(T, name): a linear scan
// over the (already laid out) member list.
func (a *TypeArena) StructOffset(t *Target, id TagID, name Name) (int, bool) {
	def := a.Def(id)
	if def == nil {
		return 0, false
	}
	a.ComputeLayout(t, id)
	for _, m := range def.Members {
		if m.Name == name {
			return m.Offset, true
		}
	}
	return 0, false
}

func (a *TypeArena) Member(id TagID, name Name) (*Member, bool) {
	def := a.Def(id)
	if def == nil {
		return nil, false
	}
	for i := range def.Members {
		if def.Members[i].Name == name {
			return &def.Members[i], true
		}
	}
	return nil, false
}

// EnumUnderlyingSize picks the smallest power-of-two byte count whose
// bit width covers the number of enumerators, per §4.5's enum sizeof
// rule.
func EnumUnderlyingSize(numEnumerators int) int {
	bits := 1
	for (1 << uint(bits)) < numEnumerators+1 {
		bits++
	}
	switch {
	case bits <= 8:
		return 1
	case bits <= 16:
		return 2
	case bits <= 32:
		return 4
	default:
		return 8
	}
}

// Compatible implements §4.5's type compatibility: structural equality
// modulo array-bound inference (an unbounded array is compatible with
// any fixed array of the same element type, for declaration merging).
func Compatible(a, b *Type) bool {
	if a.Equal(b) {
		return true
	}
	if a.Kind == TArray && b.Kind == TArray && a.Elem.Equal(b.Elem) {
		if !a.ArrayLen.Fixed || !b.ArrayLen.Fixed {
			return true
		}
	}
	return false
}
