package variant

import "fmt"

// ValueError is the user/domain error family for conversion and comparison
// failures. Kind distinguishes NotConvertible (the conversion is never
// allowed between these shapes) from ConversionFailed (allowed in general,
// but this particular value could not convert) and NotComparable (the two
// shapes cannot be ordered or compared at all).
type ValueError struct {
	Kind ErrorKind
	From ValueType
	To   ValueType
	Msg  string
}

// ErrorKind enumerates the ValueError variants.
type ErrorKind int

const (
	NotConvertible ErrorKind = iota
	ConversionFailed
	NotComparable
)

func (e *ValueError) Error() string {
	switch e.Kind {
	case NotConvertible:
		return fmt.Sprintf("variant: %s is not convertible to %s", e.From, e.To)
	case ConversionFailed:
		return fmt.Sprintf("variant: conversion from %s to %s failed: %s", e.From, e.To, e.Msg)
	case NotComparable:
		return fmt.Sprintf("variant: %s and %s are not comparable", e.From, e.To)
	default:
		return "variant: value error"
	}
}

func notConvertible(from, to ValueType) error {
	return &ValueError{Kind: NotConvertible, From: from, To: to}
}

func conversionFailed(from, to ValueType, msg string) error {
	return &ValueError{Kind: ConversionFailed, From: from, To: to, Msg: msg}
}

func notComparable(from, to ValueType) error {
	return &ValueError{Kind: NotComparable, From: from, To: to}
}
