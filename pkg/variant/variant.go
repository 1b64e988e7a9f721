// Package variant implements the typed scalar/array value domain (Variant,
// AtomValue, ValueType) shared by every object attribute in the store, with
// an explicit, documented conversion and comparison table instead of
// exceptions.
package variant

import "fmt"

// AtomKind enumerates the five scalar value shapes a Variant can hold.
type AtomKind int

const (
	KindBool AtomKind = iota
	KindInt
	KindDouble
	KindString
	KindPoint
)

func (k AtomKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// ValueType mirrors Variant's shape: an atom kind plus whether the value is
// an array of that kind.
type ValueType struct {
	Atom    AtomKind
	IsArray bool
}

func Atom(k AtomKind) ValueType    { return ValueType{Atom: k} }
func Array(k AtomKind) ValueType   { return ValueType{Atom: k, IsArray: true} }
func (t ValueType) String() string {
	if t.IsArray {
		return t.Atom.String() + "_array"
	}
	return t.Atom.String()
}

// Point is a 2-component floating point atom value.
type Point struct {
	X, Y float64
}

// atom holds every representation a scalar value can take; only the field
// matching Kind is meaningful. This keeps Variant a plain value type instead
// of an interface, matching the flat-struct style used throughout the pack
// for tagged data (cf. extraction.ExtractedEntity's Kind-tagged fields).
type atom struct {
	Kind AtomKind
	B    bool
	I    int64
	D    float64
	S    string
	P    Point
}

// Variant is a tagged value: either a single atom or a homogeneous array of
// atoms of the same kind.
type Variant struct {
	isArray bool
	a       atom
	arr     []atom
}

func NewBool(b bool) Variant     { return Variant{a: atom{Kind: KindBool, B: b}} }
func NewInt(i int64) Variant     { return Variant{a: atom{Kind: KindInt, I: i}} }
func NewDouble(d float64) Variant { return Variant{a: atom{Kind: KindDouble, D: d}} }
func NewString(s string) Variant { return Variant{a: atom{Kind: KindString, S: s}} }
func NewPoint(x, y float64) Variant {
	return Variant{a: atom{Kind: KindPoint, P: Point{X: x, Y: y}}}
}

func newArray(k AtomKind, atoms []atom) Variant {
	return Variant{isArray: true, a: atom{Kind: k}, arr: atoms}
}

func NewBoolArray(vs []bool) Variant {
	atoms := make([]atom, len(vs))
	for i, v := range vs {
		atoms[i] = atom{Kind: KindBool, B: v}
	}
	return newArray(KindBool, atoms)
}

func NewIntArray(vs []int64) Variant {
	atoms := make([]atom, len(vs))
	for i, v := range vs {
		atoms[i] = atom{Kind: KindInt, I: v}
	}
	return newArray(KindInt, atoms)
}

func NewDoubleArray(vs []float64) Variant {
	atoms := make([]atom, len(vs))
	for i, v := range vs {
		atoms[i] = atom{Kind: KindDouble, D: v}
	}
	return newArray(KindDouble, atoms)
}

func NewStringArray(vs []string) Variant {
	atoms := make([]atom, len(vs))
	for i, v := range vs {
		atoms[i] = atom{Kind: KindString, S: v}
	}
	return newArray(KindString, atoms)
}

// Type returns the ValueType this Variant is tagged with.
func (v Variant) Type() ValueType { return ValueType{Atom: v.a.Kind, IsArray: v.isArray} }

// IsArray reports whether this Variant holds an array.
func (v Variant) IsArray() bool { return v.isArray }

// Bool, Int, Double, String, PointValue return the underlying atom value and
// whether the Variant actually holds that (non-array) kind.
func (v Variant) Bool() (bool, bool)       { return v.a.B, !v.isArray && v.a.Kind == KindBool }
func (v Variant) Int() (int64, bool)       { return v.a.I, !v.isArray && v.a.Kind == KindInt }
func (v Variant) Double() (float64, bool)  { return v.a.D, !v.isArray && v.a.Kind == KindDouble }
func (v Variant) String0() (string, bool)  { return v.a.S, !v.isArray && v.a.Kind == KindString }
func (v Variant) PointValue() (Point, bool) { return v.a.P, !v.isArray && v.a.Kind == KindPoint }

// Len returns the number of elements if this is an array, else 0.
func (v Variant) Len() int {
	if !v.isArray {
		return 0
	}
	return len(v.arr)
}

// BoolArray, IntArray, DoubleArray, StringArray return the underlying
// element slice and whether the Variant actually holds an array of that
// kind.
func (v Variant) BoolArray() ([]bool, bool) {
	if !v.isArray || v.a.Kind != KindBool {
		return nil, false
	}
	out := make([]bool, len(v.arr))
	for i, a := range v.arr {
		out[i] = a.B
	}
	return out, true
}

func (v Variant) IntArray() ([]int64, bool) {
	if !v.isArray || v.a.Kind != KindInt {
		return nil, false
	}
	out := make([]int64, len(v.arr))
	for i, a := range v.arr {
		out[i] = a.I
	}
	return out, true
}

func (v Variant) DoubleArray() ([]float64, bool) {
	if !v.isArray || v.a.Kind != KindDouble {
		return nil, false
	}
	out := make([]float64, len(v.arr))
	for i, a := range v.arr {
		out[i] = a.D
	}
	return out, true
}

func (v Variant) StringArray() ([]string, bool) {
	if !v.isArray || v.a.Kind != KindString {
		return nil, false
	}
	out := make([]string, len(v.arr))
	for i, a := range v.arr {
		out[i] = a.S
	}
	return out, true
}

func (v Variant) String() string {
	if v.isArray {
		return fmt.Sprintf("%s[%d]", v.a.Kind, len(v.arr))
	}
	switch v.a.Kind {
	case KindBool:
		return fmt.Sprintf("%v", v.a.B)
	case KindInt:
		return fmt.Sprintf("%d", v.a.I)
	case KindDouble:
		return fmt.Sprintf("%g", v.a.D)
	case KindString:
		return v.a.S
	case KindPoint:
		return fmt.Sprintf("(%g, %g)", v.a.P.X, v.a.P.Y)
	default:
		return "<invalid>"
	}
}
