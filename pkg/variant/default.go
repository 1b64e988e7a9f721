package variant

// Default returns the zero value for a ValueType: false, 0, 0.0, "", (0,0),
// or an empty array of the declared atom kind.
func Default(t ValueType) Variant {
	if t.IsArray {
		switch t.Atom {
		case KindBool:
			return NewBoolArray(nil)
		case KindInt:
			return NewIntArray(nil)
		case KindDouble:
			return NewDoubleArray(nil)
		case KindString:
			return NewStringArray(nil)
		default:
			return newArray(t.Atom, nil)
		}
	}
	switch t.Atom {
	case KindBool:
		return NewBool(false)
	case KindInt:
		return NewInt(0)
	case KindDouble:
		return NewDouble(0)
	case KindString:
		return NewString("")
	case KindPoint:
		return NewPoint(0, 0)
	default:
		return Variant{}
	}
}
