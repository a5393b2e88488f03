package cc

// Name is an opaque handle to an interned identifier string. Names
// compare equal iff the strings they were interned from are equal;
// the zero Name is never issued by Interner.Intern.
type Name int32

// Interner is a bidirectional string <-> Name table. It outlives every
// other component of a compilation (§5): once issued, a Name remains
// valid and stable for the lifetime of the Interner that produced it.
type Interner struct {
	byString map[string]Name
	byName   []string
}

func NewInterner() *Interner {
	return &Interner{
		byString: make(map[string]Name, 256),
		byName:   []string{""}, // index 0 reserved, matches the zero Name
	}
}

// Intern returns the Name for s, assigning a new one if s has not been
// seen before.
func (in *Interner) Intern(s string) Name {
	if n, ok := in.byString[s]; ok {
		return n
	}
	n := Name(len(in.byName))
	in.byName = append(in.byName, s)
	in.byString[s] = n
	return n
}

// String returns the original string for n, or "" if n is out of range.
func (in *Interner) String(n Name) string {
	if int(n) <= 0 || int(n) >= len(in.byName) {
		return ""
	}
	return in.byName[n]
}
