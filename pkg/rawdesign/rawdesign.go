// Package rawdesign defines the wire shape a Loader consumes and an
// Extractor produces (§6): an untyped, foreign representation of a Design
// with JSON-tagged structs mirroring the canonical serialization, plus
// coalesced-value decoding into pkg/variant.Variant.
package rawdesign

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/openpoiesis/graphframe/pkg/identity"
	"github.com/openpoiesis/graphframe/pkg/variant"
)

// RawDesign is the full external representation of a Design (§6).
type RawDesign struct {
	MetamodelName    string         `json:"metamodel_name,omitempty"`
	MetamodelVersion string         `json:"metamodel_version,omitempty"`
	Snapshots        []RawSnapshot  `json:"snapshots"`
	Frames           []RawFrame     `json:"frames"`
	UserReferences   []RawReference `json:"user_references,omitempty"`
	SystemReferences []RawReference `json:"system_references,omitempty"`
	UserLists        []RawList      `json:"user_lists,omitempty"`
	SystemLists      []RawList      `json:"system_lists,omitempty"`

	// ExportID stamps a fresh provenance identifier on every successful
	// extraction (pkg/extractor), so two exports of the very same design
	// state never compare byte-identical and downstream auditing tools
	// (pkg/archive) can tell them apart.
	ExportID string `json:"export_id,omitempty"`
}

// NewExportID returns a fresh, random provenance identifier for an
// extraction pass.
func NewExportID() string {
	return uuid.NewString()
}

// RawReference is a named pointer at a resolved or raw ID, e.g. the design's
// "current_frame" system reference.
type RawReference struct {
	Name string `json:"name"`
	Type string `json:"type"`
	ID   RawID  `json:"id"`
}

// RawList is a named, typed, ordered collection of raw IDs, e.g. the
// "undo"/"redo" system lists.
type RawList struct {
	Name     string  `json:"name"`
	ItemType string  `json:"item_type"`
	IDs      []RawID `json:"ids"`
}

// RawSnapshot is one object snapshot as seen by the loader/extractor
// boundary (§6).
type RawSnapshot struct {
	TypeName   string              `json:"type_name,omitempty"`
	SnapshotID *RawID              `json:"snapshot_id,omitempty"`
	ID         *RawID              `json:"id,omitempty"`
	Structure  *RawStructure       `json:"structure,omitempty"`
	Parent     *RawID              `json:"parent,omitempty"`
	Attributes map[string]RawValue `json:"attributes,omitempty"`
}

// RawStructure is the untyped structural tag (§6): kind plus zero (for
// unstructured/node) or two (for edge: origin, target in that order)
// reference IDs.
type RawStructure struct {
	Kind       string  `json:"kind"`
	References []RawID `json:"references,omitempty"`
}

// RawFrame is one frame as seen at the loader/extractor boundary: its own
// id plus the snapshot ids it contains.
type RawFrame struct {
	ID        *RawID  `json:"id,omitempty"`
	Snapshots []RawID `json:"snapshots"`
}

// RawIDKind tags which representation a RawID actually holds.
type RawIDKind int

const (
	RawIDInt RawIDKind = iota
	RawIDString
	RawIDResolved
)

// RawID is an untyped identifier: an integer, a string (used as a name), or
// an already-resolved identity.ID (§4.5: "may alias across name spaces").
type RawID struct {
	Kind     RawIDKind
	Int      int64
	Str      string
	Resolved identity.ID
}

func FromInt(v int64) RawID              { return RawID{Kind: RawIDInt, Int: v} }
func FromString(v string) RawID          { return RawID{Kind: RawIDString, Str: v} }
func FromResolved(v identity.ID) RawID   { return RawID{Kind: RawIDResolved, Resolved: v} }

func (r RawID) String() string {
	switch r.Kind {
	case RawIDInt:
		return fmt.Sprintf("%d", r.Int)
	case RawIDString:
		return r.Str
	default:
		return fmt.Sprintf("#%d", r.Resolved)
	}
}

func (r RawID) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RawIDInt:
		return json.Marshal(r.Int)
	case RawIDString:
		return json.Marshal(r.Str)
	default:
		return json.Marshal(uint64(r.Resolved))
	}
}

func (r *RawID) UnmarshalJSON(data []byte) error {
	var asInt int64
	if err := json.Unmarshal(data, &asInt); err == nil {
		r.Kind, r.Int = RawIDInt, asInt
		return nil
	}
	var asStr string
	if err := json.Unmarshal(data, &asStr); err == nil {
		r.Kind, r.Str = RawIDString, asStr
		return nil
	}
	return fmt.Errorf("rawdesign: raw id must be a JSON integer or string, got %s", string(data))
}

// RawValue is an attribute value at the wire boundary: either the canonical
// tagged dictionary `{"type": <code>, "value"|"items": ...}` or, in
// compatibility mode, a bare coalesced JSON value whose variant type is
// inferred (§6).
type RawValue struct {
	Type    string // "bool", "int", "float", "string", "point", or "<kind>_array"; empty means coalesced
	Value   json.RawMessage
	Items   []json.RawMessage
	IsArray bool
}

type taggedRawValue struct {
	Type  string            `json:"type"`
	Value json.RawMessage   `json:"value,omitempty"`
	Items []json.RawMessage `json:"items,omitempty"`
}

func (v RawValue) MarshalJSON() ([]byte, error) {
	if v.Type == "" {
		if v.IsArray {
			return json.Marshal(v.Items)
		}
		return v.Value, nil
	}
	tagged := taggedRawValue{Type: v.Type, Value: v.Value, Items: v.Items}
	return json.Marshal(tagged)
}

func (v *RawValue) UnmarshalJSON(data []byte) error {
	var tagged taggedRawValue
	if err := json.Unmarshal(data, &tagged); err == nil && tagged.Type != "" {
		v.Type = tagged.Type
		v.Value = tagged.Value
		v.Items = tagged.Items
		v.IsArray = len(tagged.Items) > 0 || arrayTypeCode(tagged.Type)
		return nil
	}
	// Compatibility mode: bare coalesced value, type inferred at decode time.
	var asArray []json.RawMessage
	if err := json.Unmarshal(data, &asArray); err == nil {
		v.Type = ""
		v.Items = asArray
		v.IsArray = true
		return nil
	}
	v.Type = ""
	v.Value = data
	v.IsArray = false
	return nil
}

func arrayTypeCode(code string) bool {
	n := len(code)
	return n > 6 && code[n-6:] == "_array"
}

// ToVariant decodes a RawValue into a typed Variant, using the tagged type
// code if present, or inferring one from the bare JSON shape if not (§6
// compatibility mode).
func ToVariant(v RawValue) (variant.Variant, error) {
	if v.Type != "" {
		return decodeTagged(v)
	}
	return decodeCoalesced(v)
}

func decodeTagged(v RawValue) (variant.Variant, error) {
	switch v.Type {
	case "bool":
		var b bool
		if err := json.Unmarshal(v.Value, &b); err != nil {
			return variant.Variant{}, fmt.Errorf("rawdesign: bool value: %w", err)
		}
		return variant.NewBool(b), nil
	case "int":
		var i int64
		if err := json.Unmarshal(v.Value, &i); err != nil {
			return variant.Variant{}, fmt.Errorf("rawdesign: int value: %w", err)
		}
		return variant.NewInt(i), nil
	case "float":
		var d float64
		if err := json.Unmarshal(v.Value, &d); err != nil {
			return variant.Variant{}, fmt.Errorf("rawdesign: float value: %w", err)
		}
		return variant.NewDouble(d), nil
	case "string":
		var s string
		if err := json.Unmarshal(v.Value, &s); err != nil {
			return variant.Variant{}, fmt.Errorf("rawdesign: string value: %w", err)
		}
		return variant.NewString(s), nil
	case "point":
		var xy [2]float64
		if err := json.Unmarshal(v.Value, &xy); err != nil {
			return variant.Variant{}, fmt.Errorf("rawdesign: point value: %w", err)
		}
		return variant.NewPoint(xy[0], xy[1]), nil
	case "bool_array":
		out := make([]bool, len(v.Items))
		for i, raw := range v.Items {
			if err := json.Unmarshal(raw, &out[i]); err != nil {
				return variant.Variant{}, fmt.Errorf("rawdesign: bool_array[%d]: %w", i, err)
			}
		}
		return variant.NewBoolArray(out), nil
	case "int_array":
		out := make([]int64, len(v.Items))
		for i, raw := range v.Items {
			if err := json.Unmarshal(raw, &out[i]); err != nil {
				return variant.Variant{}, fmt.Errorf("rawdesign: int_array[%d]: %w", i, err)
			}
		}
		return variant.NewIntArray(out), nil
	case "float_array":
		out := make([]float64, len(v.Items))
		for i, raw := range v.Items {
			if err := json.Unmarshal(raw, &out[i]); err != nil {
				return variant.Variant{}, fmt.Errorf("rawdesign: float_array[%d]: %w", i, err)
			}
		}
		return variant.NewDoubleArray(out), nil
	case "string_array":
		out := make([]string, len(v.Items))
		for i, raw := range v.Items {
			if err := json.Unmarshal(raw, &out[i]); err != nil {
				return variant.Variant{}, fmt.Errorf("rawdesign: string_array[%d]: %w", i, err)
			}
		}
		return variant.NewStringArray(out), nil
	default:
		return variant.Variant{}, fmt.Errorf("rawdesign: unknown type code %q", v.Type)
	}
}

// decodeCoalesced infers a variant type from a bare JSON value: a JSON
// boolean, number, or string becomes the matching atom; a JSON array of
// bare values becomes the matching array type, inferred from its first
// element (an empty array cannot be inferred and defaults to string_array).
func decodeCoalesced(v RawValue) (variant.Variant, error) {
	if v.IsArray {
		if len(v.Items) == 0 {
			return variant.NewStringArray(nil), nil
		}
		first, err := decodeCoalescedScalar(v.Items[0])
		if err != nil {
			return variant.Variant{}, err
		}
		switch first.Type().Atom {
		case variant.KindBool:
			out := make([]bool, len(v.Items))
			for i, raw := range v.Items {
				if err := json.Unmarshal(raw, &out[i]); err != nil {
					return variant.Variant{}, fmt.Errorf("rawdesign: coalesced array[%d]: %w", i, err)
				}
			}
			return variant.NewBoolArray(out), nil
		case variant.KindInt:
			out := make([]int64, len(v.Items))
			for i, raw := range v.Items {
				if err := json.Unmarshal(raw, &out[i]); err != nil {
					return variant.Variant{}, fmt.Errorf("rawdesign: coalesced array[%d]: %w", i, err)
				}
			}
			return variant.NewIntArray(out), nil
		case variant.KindDouble:
			out := make([]float64, len(v.Items))
			for i, raw := range v.Items {
				if err := json.Unmarshal(raw, &out[i]); err != nil {
					return variant.Variant{}, fmt.Errorf("rawdesign: coalesced array[%d]: %w", i, err)
				}
			}
			return variant.NewDoubleArray(out), nil
		default:
			out := make([]string, len(v.Items))
			for i, raw := range v.Items {
				if err := json.Unmarshal(raw, &out[i]); err != nil {
					return variant.Variant{}, fmt.Errorf("rawdesign: coalesced array[%d]: %w", i, err)
				}
			}
			return variant.NewStringArray(out), nil
		}
	}
	return decodeCoalescedScalar(v.Value)
}

func decodeCoalescedScalar(data json.RawMessage) (variant.Variant, error) {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return variant.NewBool(b), nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return variant.NewDouble(f), nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return variant.NewString(s), nil
	}
	return variant.Variant{}, fmt.Errorf("rawdesign: cannot infer a variant type for coalesced value %s", string(data))
}

// FromVariant encodes a typed Variant into its canonical tagged RawValue.
func FromVariant(v variant.Variant) (RawValue, error) {
	t := v.Type()
	if !t.IsArray {
		switch t.Atom {
		case variant.KindBool:
			b, _ := v.Bool()
			return taggedScalar("bool", b), nil
		case variant.KindInt:
			i, _ := v.Int()
			return taggedScalar("int", i), nil
		case variant.KindDouble:
			d, _ := v.Double()
			return taggedScalar("float", d), nil
		case variant.KindString:
			s, _ := v.String0()
			return taggedScalar("string", s), nil
		case variant.KindPoint:
			p, _ := v.PointValue()
			return taggedScalar("point", [2]float64{p.X, p.Y}), nil
		}
		return RawValue{}, fmt.Errorf("rawdesign: cannot encode variant of unknown atom kind")
	}

	switch t.Atom {
	case variant.KindBool:
		vs, _ := v.BoolArray()
		return taggedArray("bool_array", vs), nil
	case variant.KindInt:
		vs, _ := v.IntArray()
		return taggedArray("int_array", vs), nil
	case variant.KindDouble:
		vs, _ := v.DoubleArray()
		return taggedArray("float_array", vs), nil
	case variant.KindString:
		vs, _ := v.StringArray()
		return taggedArray("string_array", vs), nil
	}
	return RawValue{}, fmt.Errorf("rawdesign: cannot encode array variant of unknown atom kind")
}

func taggedArray[T any](typeCode string, values []T) RawValue {
	items := make([]json.RawMessage, len(values))
	for i, v := range values {
		raw, _ := json.Marshal(v)
		items[i] = raw
	}
	return RawValue{Type: typeCode, Items: items, IsArray: true}
}

func taggedScalar(typeCode string, value interface{}) RawValue {
	raw, _ := json.Marshal(value)
	return RawValue{Type: typeCode, Value: raw}
}
