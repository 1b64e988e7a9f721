package variant

// Equal reports whether a and b hold the same value. Numeric atoms compare
// via promotion (int(10) == double(10.0) is true). Strings compare
// byte-for-byte. Arrays compare only for equality/inequality, element by
// element, and only against another array of the same declared atom kind.
// An atom can never equal an array kind (NotComparable), even point vs. a
// 2-element numeric array, despite those being convertible to each other.
func Equal(a, b Variant) (bool, error) {
	if a.isArray != b.isArray {
		return false, notComparable(a.Type(), b.Type())
	}
	if a.isArray {
		return equalArrays(a, b)
	}
	return equalAtoms(a, b)
}

func equalAtoms(a, b Variant) (bool, error) {
	if isNumeric(a.a.Kind) && isNumeric(b.a.Kind) {
		return promote(a) == promote(b), nil
	}
	if a.a.Kind != b.a.Kind {
		return false, notComparable(a.Type(), b.Type())
	}
	switch a.a.Kind {
	case KindBool:
		return a.a.B == b.a.B, nil
	case KindString:
		return a.a.S == b.a.S, nil
	case KindPoint:
		return a.a.P == b.a.P, nil
	default:
		return false, notComparable(a.Type(), b.Type())
	}
}

func equalArrays(a, b Variant) (bool, error) {
	if a.a.Kind != b.a.Kind {
		return false, notComparable(a.Type(), b.Type())
	}
	if len(a.arr) != len(b.arr) {
		return false, nil
	}
	for i := range a.arr {
		av := Variant{a: a.arr[i]}
		bv := Variant{a: b.arr[i]}
		eq, err := equalAtoms(av, bv)
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

func isNumeric(k AtomKind) bool { return k == KindInt || k == KindDouble }

func promote(v Variant) float64 {
	switch v.a.Kind {
	case KindInt:
		return float64(v.a.I)
	case KindDouble:
		return v.a.D
	default:
		return 0
	}
}

// Compare returns -1, 0, or 1 according to whether a is less than, equal to,
// or greater than b. Only numeric atoms (via promotion) and strings
// (lexicographically) support ordering; everything else, including arrays
// and points, returns NotComparable — use Equal for those.
func Compare(a, b Variant) (int, error) {
	if a.isArray || b.isArray {
		return 0, notComparable(a.Type(), b.Type())
	}
	if isNumeric(a.a.Kind) && isNumeric(b.a.Kind) {
		pa, pb := promote(a), promote(b)
		switch {
		case pa < pb:
			return -1, nil
		case pa > pb:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if a.a.Kind == KindString && b.a.Kind == KindString {
		switch {
		case a.a.S < b.a.S:
			return -1, nil
		case a.a.S > b.a.S:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, notComparable(a.Type(), b.Type())
}
