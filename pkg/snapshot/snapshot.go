// Package snapshot implements the Object Snapshot (§3, §4.2's unit of
// storage): an immutable-once-frozen versioned object with typed
// attributes, a structural tag, and a place in the parent/child hierarchy.
package snapshot

import (
	"fmt"

	"github.com/openpoiesis/graphframe/pkg/graphframeerr"
	"github.com/openpoiesis/graphframe/pkg/metamodel"
	"github.com/openpoiesis/graphframe/pkg/structkind"
	"github.com/openpoiesis/graphframe/pkg/variant"
)

// State is a snapshot's lifecycle stage.
type State int

const (
	Unstable State = iota
	Transient
	Frozen
)

// Snapshot is one version of one object. Once State is Frozen, every
// mutating method returns a *graphframeerr.Fault instead of changing state —
// mutating a frozen snapshot is a programmer error (§3, §7), not a
// recoverable condition.
type Snapshot struct {
	id         SnapshotID
	objectID   ObjectID
	typ        *metamodel.ObjectType
	structure  Structure
	attributes map[string]variant.Variant
	parent     *ObjectID
	children   []ObjectID
	state      State
}

// New builds a snapshot in the Unstable state. Callers (Frame.create) are
// responsible for moving it to Transient once installed and to Frozen once
// the owning frame is accepted.
func New(id SnapshotID, objectID ObjectID, typ *metamodel.ObjectType, structure Structure) (*Snapshot, error) {
	if typ == nil {
		return nil, fmt.Errorf("snapshot: object type is required")
	}
	if structure.Kind != typ.Kind {
		return nil, fmt.Errorf("snapshot: structure kind %s does not match type %q's structural kind %s",
			structure.Kind, typ.TypeName, typ.Kind)
	}
	return &Snapshot{
		id:         id,
		objectID:   objectID,
		typ:        typ,
		structure:  structure,
		attributes: make(map[string]variant.Variant),
		state:      Unstable,
	}, nil
}

// Clone returns a deep, independent copy of s carrying a new SnapshotID (and,
// if objectID is non-nil, a new ObjectID too), in the Unstable state
// regardless of s's own state — the basis for Frame.insertDerived and
// Frame.mutableObject's copy-on-write.
func (s *Snapshot) Clone(newSnapshotID SnapshotID, newObjectID *ObjectID) *Snapshot {
	objID := s.objectID
	if newObjectID != nil {
		objID = *newObjectID
	}
	attrs := make(map[string]variant.Variant, len(s.attributes))
	for k, v := range s.attributes {
		attrs[k] = v
	}
	var parent *ObjectID
	if s.parent != nil {
		p := *s.parent
		parent = &p
	}
	return &Snapshot{
		id:         newSnapshotID,
		objectID:   objID,
		typ:        s.typ,
		structure:  s.structure,
		attributes: attrs,
		parent:     parent,
		children:   append([]ObjectID(nil), s.children...),
		state:      Unstable,
	}
}

// --- read accessors -------------------------------------------------------

func (s *Snapshot) SnapshotID() SnapshotID    { return s.id }
func (s *Snapshot) ObjectID() ObjectID        { return s.objectID }
func (s *Snapshot) Type() *metamodel.ObjectType { return s.typ }
func (s *Snapshot) TypeName() string          { return s.typ.TypeName }
func (s *Snapshot) StructureValue() Structure { return s.structure }
func (s *Snapshot) Structure() structkind.Kind { return s.structure.Kind }
func (s *Snapshot) State() State              { return s.state }
func (s *Snapshot) IsFrozen() bool            { return s.state == Frozen }

// Origin returns the edge's origin ObjectID, or ok=false if s is not an edge.
func (s *Snapshot) Origin() (ObjectID, bool) {
	if s.structure.Kind != structkind.Edge {
		return 0, false
	}
	return s.structure.Origin, true
}

// Target returns the edge's target ObjectID, or ok=false if s is not an edge.
func (s *Snapshot) Target() (ObjectID, bool) {
	if s.structure.Kind != structkind.Edge {
		return 0, false
	}
	return s.structure.Target, true
}

// Parent returns s's parent ObjectID, or ok=false if s has none.
func (s *Snapshot) Parent() (ObjectID, bool) {
	if s.parent == nil {
		return 0, false
	}
	return *s.parent, true
}

// Children returns s's children in stable, insertion-order sequence. The
// returned slice is a copy; callers must not mutate it in place.
func (s *Snapshot) Children() []ObjectID {
	return append([]ObjectID(nil), s.children...)
}

// StructuralDependencies returns every ObjectID this snapshot's presence in
// a frame depends on: edge endpoints plus parent, if any (§3).
func (s *Snapshot) StructuralDependencies() []ObjectID {
	deps := s.structure.Dependencies()
	if s.parent != nil {
		deps = append(deps, *s.parent)
	}
	return deps
}

// HasAttribute reports whether the object's type declares an attribute with
// this name (regardless of whether a non-default value was ever set).
func (s *Snapshot) HasAttribute(name string) bool {
	_, ok := s.typ.Attribute(name)
	return ok
}

// Attribute resolves an attribute: an explicitly-set value if present,
// otherwise the type's declared default. ok is false only if the type does
// not declare this attribute at all.
func (s *Snapshot) Attribute(name string) (variant.Variant, bool) {
	if v, ok := s.attributes[name]; ok {
		return v, true
	}
	descriptor, ok := s.typ.Attribute(name)
	if !ok {
		return variant.Variant{}, false
	}
	return descriptor.DefaultValue(), true
}

// Attributes returns every explicitly-set attribute (not defaults), keyed by
// name. The returned map is a copy.
func (s *Snapshot) Attributes() map[string]variant.Variant {
	out := make(map[string]variant.Variant, len(s.attributes))
	for k, v := range s.attributes {
		out[k] = v
	}
	return out
}

// --- mutation (only valid while not Frozen) -------------------------------

func (s *Snapshot) checkMutable() error {
	if s.state == Frozen {
		return graphframeerr.NewFault("snapshot: cannot mutate frozen snapshot %d (object %d)", s.id, s.objectID)
	}
	return nil
}

// SetAttribute sets key to value, converting value to the attribute's
// declared type if necessary. It fails if key is not declared by the
// object's type or if value cannot convert to the declared type.
func (s *Snapshot) SetAttribute(key string, value variant.Variant) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	descriptor, ok := s.typ.Attribute(key)
	if !ok {
		return fmt.Errorf("snapshot: type %q has no attribute %q", s.typ.TypeName, key)
	}
	converted, err := value.ConvertTo(descriptor.Type)
	if err != nil {
		return fmt.Errorf("snapshot: attribute %q: %w", key, err)
	}
	s.attributes[key] = converted
	return nil
}

// SetParent sets or clears (parent == nil) the snapshot's parent pointer
// directly. Frame-level code is responsible for keeping the corresponding
// children list on the other end in sync (§9: one source of truth,
// regenerate the other) — Frame never calls both halves independently.
func (s *Snapshot) SetParent(parent *ObjectID) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	s.parent = parent
	return nil
}

// SetChildren replaces the snapshot's ordered children list wholesale.
func (s *Snapshot) SetChildren(children []ObjectID) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	s.children = append([]ObjectID(nil), children...)
	return nil
}

// AppendChild appends id to the children list if not already present.
func (s *Snapshot) AppendChild(id ObjectID) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	for _, c := range s.children {
		if c == id {
			return nil
		}
	}
	s.children = append(s.children, id)
	return nil
}

// RemoveChild removes id from the children list, preserving order.
func (s *Snapshot) RemoveChild(id ObjectID) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	for i, c := range s.children {
		if c == id {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return nil
		}
	}
	return nil
}

// MarkTransient moves an Unstable snapshot into the Transient state, the
// state owned (mutable) snapshots sit in while their frame is open.
func (s *Snapshot) MarkTransient() { s.state = Transient }

// Freeze moves the snapshot into the Frozen state. It is idempotent.
func (s *Snapshot) Freeze() { s.state = Frozen }
