package variant

// ConvertTo attempts to convert v into the given ValueType, following the
// documented conversion table:
//
//	bool      -> bool                                   identity only
//	int       -> int, double                             widening allowed
//	double    -> double                                   identity only (no narrowing to int)
//	string    -> string                                   identity only
//	point     -> point, int_array[2], double_array[2]     point unpacks to a 2-element array
//	int_array, double_array -> point                      a 2-element numeric array packs to a point
//	int_array -> double_array                             widening allowed, elementwise
//	bool_array, string_array -> *                         identity only
//
// Everything not listed above fails with NotConvertible. A conversion that is
// listed as allowed but cannot complete for this particular value (wrong
// array length, non-integral point coordinates going to an int array) fails
// with ConversionFailed.
func (v Variant) ConvertTo(target ValueType) (Variant, error) {
	from := v.Type()
	if from == target {
		return v, nil
	}

	switch {
	case !from.IsArray && !target.IsArray:
		return v.convertAtomToAtom(target)
	case !from.IsArray && target.IsArray:
		return v.convertAtomToArray(target)
	case from.IsArray && !target.IsArray:
		return v.convertArrayToAtom(target)
	default:
		return v.convertArrayToArray(target)
	}
}

func (v Variant) convertAtomToAtom(target ValueType) (Variant, error) {
	from := v.Type()
	if from.Atom == KindInt && target.Atom == KindDouble {
		i, _ := v.Int()
		return NewDouble(float64(i)), nil
	}
	return Variant{}, notConvertible(from, target)
}

func (v Variant) convertAtomToArray(target ValueType) (Variant, error) {
	from := v.Type()
	p, ok := v.PointValue()
	if !ok || target.Atom != KindInt && target.Atom != KindDouble {
		return Variant{}, notConvertible(from, target)
	}
	switch target.Atom {
	case KindDouble:
		return NewDoubleArray([]float64{p.X, p.Y}), nil
	case KindInt:
		xi, yi := int64(p.X), int64(p.Y)
		if float64(xi) != p.X || float64(yi) != p.Y {
			return Variant{}, conversionFailed(from, target, "point coordinates are not integral")
		}
		return NewIntArray([]int64{xi, yi}), nil
	default:
		return Variant{}, notConvertible(from, target)
	}
}

func (v Variant) convertArrayToAtom(target ValueType) (Variant, error) {
	from := v.Type()
	if target.Atom != KindPoint || (v.a.Kind != KindInt && v.a.Kind != KindDouble) {
		return Variant{}, notConvertible(from, target)
	}
	if len(v.arr) != 2 {
		return Variant{}, conversionFailed(from, target, "array must have exactly 2 elements to become a point")
	}
	var x, y float64
	if v.a.Kind == KindInt {
		x, y = float64(v.arr[0].I), float64(v.arr[1].I)
	} else {
		x, y = v.arr[0].D, v.arr[1].D
	}
	return NewPoint(x, y), nil
}

func (v Variant) convertArrayToArray(target ValueType) (Variant, error) {
	from := v.Type()
	if v.a.Kind != KindInt || target.Atom != KindDouble {
		return Variant{}, notConvertible(from, target)
	}
	out := make([]float64, len(v.arr))
	for i, a := range v.arr {
		out[i] = float64(a.I)
	}
	return NewDoubleArray(out), nil
}
