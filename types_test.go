package cc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizeOfScalars(t *testing.T) {
	target := DefaultTarget()
	arena := NewTypeArena()

	sz, ok := arena.SizeOf(&target, IntType(TChar, true))
	require.True(t, ok)
	require.Equal(t, 1, sz)

	sz, ok = arena.SizeOf(&target, IntType(TInt, true))
	require.True(t, ok)
	require.Equal(t, 4, sz)

	sz, ok = arena.SizeOf(&target, IntType(TLong, true))
	require.True(t, ok)
	require.Equal(t, 8, sz)

	sz, ok = arena.SizeOf(&target, PointerTo(IntType(TInt, true), QualNone))
	require.True(t, ok)
	require.Equal(t, 8, sz)
}

func TestSizeOfUnboundedArrayIsIncomplete(t *testing.T) {
	target := DefaultTarget()
	arena := NewTypeArena()
	_, ok := arena.SizeOf(&target, ArrayOf(IntType(TInt, true), UnboundedLen()))
	require.False(t, ok)
}

func TestSizeOfFixedArrayMultipliesElementSize(t *testing.T) {
	target := DefaultTarget()
	arena := NewTypeArena()
	sz, ok := arena.SizeOf(&target, ArrayOf(IntType(TInt, true), FixedLen(10)))
	require.True(t, ok)
	require.Equal(t, 40, sz)
}

func TestSizeOfEnumUsesUnderlyingSize(t *testing.T) {
	target := DefaultTarget()
	arena := NewTypeArena()
	id := arena.Declare(0, false, true)
	enumerators := make([]Enumerator, 300)
	arena.CompleteEnum(id, enumerators)

	sz, ok := arena.SizeOf(&target, &Type{Kind: TEnum, Tag: id})
	require.True(t, ok)
	require.Equal(t, 2, sz, "300 enumerators need a 2-byte underlying type")
}

func TestSizeOfIncompleteEnumFails(t *testing.T) {
	target := DefaultTarget()
	arena := NewTypeArena()
	id := arena.Declare(0, false, true)
	_, ok := arena.SizeOf(&target, &Type{Kind: TEnum, Tag: id})
	require.False(t, ok)
}

func TestAlignOfEnumMatchesItsUnderlyingSize(t *testing.T) {
	target := DefaultTarget()
	arena := NewTypeArena()
	id := arena.Declare(0, false, true)
	enumerators := make([]Enumerator, 300)
	arena.CompleteEnum(id, enumerators)

	align, ok := arena.AlignOf(&target, &Type{Kind: TEnum, Tag: id})
	require.True(t, ok)
	require.Equal(t, 2, align, "a 300-enumerator enum aligns like its 2-byte underlying type")
}

func TestSizeOfIncompleteStructFails(t *testing.T) {
	target := DefaultTarget()
	arena := NewTypeArena()
	id := arena.Declare(0, false, false)
	_, ok := arena.SizeOf(&target, &Type{Kind: TStruct, Tag: id})
	require.False(t, ok)
}

func TestComputeLayoutStructPadsForAlignment(t *testing.T) {
	target := DefaultTarget()
	arena := NewTypeArena()
	id := arena.Declare(0, false, false)
	arena.Complete(id, []Member{
		{Name: 1, Type: IntType(TChar, true)},
		{Name: 2, Type: IntType(TInt, true)},
	})
	arena.ComputeLayout(&target, id)
	def := arena.Def(id)
	require.Equal(t, 0, def.Members[0].Offset)
	require.Equal(t, 4, def.Members[1].Offset, "int member must start at a 4-byte-aligned offset")
	require.Equal(t, 8, def.Size, "struct size itself rounds up to its own alignment")
	require.Equal(t, 4, def.Align)
}

func TestComputeLayoutUnionSharesOffsetZero(t *testing.T) {
	target := DefaultTarget()
	arena := NewTypeArena()
	id := arena.Declare(0, true, false)
	arena.Complete(id, []Member{
		{Name: 1, Type: IntType(TChar, true)},
		{Name: 2, Type: IntType(TLong, true)},
	})
	arena.ComputeLayout(&target, id)
	def := arena.Def(id)
	for _, m := range def.Members {
		require.Equal(t, 0, m.Offset)
	}
	require.Equal(t, 8, def.Size, "union size is the size of its largest member")
}

func TestComputeLayoutIsCachedOnce(t *testing.T) {
	target := DefaultTarget()
	arena := NewTypeArena()
	id := arena.Declare(0, false, false)
	arena.Complete(id, []Member{{Name: 1, Type: IntType(TInt, true)}})
	arena.ComputeLayout(&target, id)
	arena.Def(id).Members[0].Offset = 99 // simulate already-laid-out state
	arena.ComputeLayout(&target, id)
	require.Equal(t, 99, arena.Def(id).Members[0].Offset, "a second call must not recompute")
}

func TestStructOffsetLooksUpByName(t *testing.T) {
	target := DefaultTarget()
	arena := NewTypeArena()
	id := arena.Declare(0, false, false)
	arena.Complete(id, []Member{
		{Name: 1, Type: IntType(TChar, true)},
		{Name: 2, Type: IntType(TInt, true)},
	})
	off, ok := arena.StructOffset(&target, id, 2)
	require.True(t, ok)
	require.Equal(t, 4, off)

	_, ok = arena.StructOffset(&target, id, 3)
	require.False(t, ok)
}

func TestEnumUnderlyingSize(t *testing.T) {
	require.Equal(t, 1, EnumUnderlyingSize(3))
	require.Equal(t, 1, EnumUnderlyingSize(255))
	require.Equal(t, 2, EnumUnderlyingSize(256))
	require.Equal(t, 4, EnumUnderlyingSize(70000))
}

func TestCanRepresent(t *testing.T) {
	require.True(t, CanRepresent(IntType(TLong, true), IntType(TInt, true)))
	require.False(t, CanRepresent(IntType(TInt, true), IntType(TLong, true)))
	require.True(t, CanRepresent(DoubleType(), FloatType()))
	require.False(t, CanRepresent(IntType(TInt, true), IntType(TInt, false)), "same rank, different signedness")
}

func TestIntRankOrdering(t *testing.T) {
	require.Less(t, IntRank(TBool), IntRank(TChar))
	require.Less(t, IntRank(TChar), IntRank(TShort))
	require.Less(t, IntRank(TShort), IntRank(TInt))
	require.Less(t, IntRank(TInt), IntRank(TLong))
	require.Equal(t, IntRank(TInt), IntRank(TEnum))
}

func TestTypeEqualIgnoresQualifiers(t *testing.T) {
	a := &Type{Kind: TInt, Signed: true, Quals: QualConst}
	b := &Type{Kind: TInt, Signed: true, Quals: QualNone}
	require.True(t, a.Equal(b))
}

func TestTypeEqualStructComparesByTag(t *testing.T) {
	a := &Type{Kind: TStruct, Tag: 1}
	b := &Type{Kind: TStruct, Tag: 1}
	c := &Type{Kind: TStruct, Tag: 2}
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestCompatibleUnboundedArrayWithFixed(t *testing.T) {
	unbounded := ArrayOf(IntType(TInt, true), UnboundedLen())
	fixed := ArrayOf(IntType(TInt, true), FixedLen(5))
	require.True(t, Compatible(unbounded, fixed))
	require.True(t, Compatible(fixed, unbounded))

	mismatched := ArrayOf(IntType(TChar, true), FixedLen(5))
	require.False(t, Compatible(unbounded, mismatched))
}
