// Package frame implements the Frame component (§4.2): a StableFrame (an
// immutable, accepted set of frozen snapshots) and a TransientFrame (an
// open, mutable derivation of one), plus the read-only graph projections the
// constraint engine and callers both use.
package frame

import (
	"fmt"
	"sort"

	"github.com/openpoiesis/graphframe/pkg/constraint"
	"github.com/openpoiesis/graphframe/pkg/graphframeerr"
	"github.com/openpoiesis/graphframe/pkg/identity"
	"github.com/openpoiesis/graphframe/pkg/metamodel"
	"github.com/openpoiesis/graphframe/pkg/snapshot"
	"github.com/openpoiesis/graphframe/pkg/structkind"
	"github.com/openpoiesis/graphframe/pkg/variant"
)

type ObjectID = identity.ID
type FrameID = identity.ID

// State is a TransientFrame's lifecycle stage.
type State int

const (
	Open State = iota
	Accepted
	Discarded
)

// Graph is the read-only node/edge projection over a frame (§4.2).
type Graph struct {
	Nodes []*snapshot.Snapshot
	Edges []*snapshot.Snapshot
}

func buildGraph(snaps []*snapshot.Snapshot) Graph {
	var g Graph
	for _, s := range snaps {
		if s.Structure() == structkind.Edge {
			g.Edges = append(g.Edges, s)
		} else {
			g.Nodes = append(g.Nodes, s)
		}
	}
	return g
}

// StableFrame is an immutable, accepted set of frozen snapshots, keyed by
// ObjectID (at most one snapshot per object, §3).
type StableFrame struct {
	id        FrameID
	snapshots map[ObjectID]*snapshot.Snapshot
}

// newStableFrame copies every snapshot in objs into a new StableFrame,
// freezing each (freeze is idempotent). The caller (TransientFrame.Freeze)
// owns validating the set first.
func newStableFrame(id FrameID, objs map[ObjectID]*snapshot.Snapshot) *StableFrame {
	snaps := make(map[ObjectID]*snapshot.Snapshot, len(objs))
	for oid, s := range objs {
		s.Freeze()
		snaps[oid] = s
	}
	return &StableFrame{id: id, snapshots: snaps}
}

func (f *StableFrame) FrameID() FrameID { return f.id }

func (f *StableFrame) Contains(id ObjectID) bool {
	_, ok := f.snapshots[id]
	return ok
}

// Snapshot returns the concrete snapshot for id, if present.
func (f *StableFrame) Snapshot(id ObjectID) (*snapshot.Snapshot, bool) {
	s, ok := f.snapshots[id]
	return s, ok
}

// Snapshots returns every snapshot in the frame; order unspecified (§5).
func (f *StableFrame) Snapshots() []*snapshot.Snapshot {
	out := make([]*snapshot.Snapshot, 0, len(f.snapshots))
	for _, s := range f.snapshots {
		out = append(out, s)
	}
	return out
}

// Filter returns every snapshot whose type name equals typeName.
func (f *StableFrame) Filter(typeName string) []*snapshot.Snapshot {
	var out []*snapshot.Snapshot
	for _, s := range f.snapshots {
		if s.TypeName() == typeName {
			out = append(out, s)
		}
	}
	return out
}

// ObjectNamed returns the first snapshot whose "name" attribute equals name.
// Order among ties is unspecified.
func (f *StableFrame) ObjectNamed(name string) (*snapshot.Snapshot, bool) {
	for _, s := range f.snapshots {
		if v, ok := s.Attribute("name"); ok {
			if sv, isStr := v.String0(); isStr && sv == name {
				return s, true
			}
		}
	}
	return nil, false
}

func (f *StableFrame) GraphView() Graph { return buildGraph(f.Snapshots()) }

// --- constraint.GraphView -------------------------------------------------

func (f *StableFrame) Objects() []constraint.ObjectView {
	snaps := f.Snapshots()
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].ObjectID() < snaps[j].ObjectID() })
	out := make([]constraint.ObjectView, len(snaps))
	for i, s := range snaps {
		out[i] = s
	}
	return out
}

func (f *StableFrame) Object(id identity.ID) (constraint.ObjectView, bool) {
	s, ok := f.snapshots[id]
	if !ok {
		return nil, false
	}
	return s, true
}

// TransientFrame is an open, mutable derivation of a stable frame (or of
// nothing). Ownership tracks which snapshots this frame may mutate directly
// ("owned": created here or derived-for-mutation) versus merely inherited,
// immutable, shared references ("shared").
type TransientFrame struct {
	id          FrameID
	ids         *identity.Manager
	snapshots   map[ObjectID]*snapshot.Snapshot
	owned       map[ObjectID]bool
	removed     map[ObjectID]bool
	createdHere map[ObjectID]bool
	reserved    []identity.ID
	state       State
}

// NewTransientFrame builds an empty open transient frame with the given
// FrameID, or one pre-populated with every snapshot of deriving (all as
// shared, un-owned references) if deriving is non-nil.
func NewTransientFrame(id FrameID, ids *identity.Manager, deriving *StableFrame) *TransientFrame {
	f := &TransientFrame{
		id:          id,
		ids:         ids,
		snapshots:   make(map[ObjectID]*snapshot.Snapshot),
		owned:       make(map[ObjectID]bool),
		removed:     make(map[ObjectID]bool),
		createdHere: make(map[ObjectID]bool),
		state:       Open,
	}
	if deriving != nil {
		for oid, s := range deriving.snapshots {
			f.snapshots[oid] = s
		}
	}
	return f
}

func (f *TransientFrame) FrameID() FrameID { return f.id }
func (f *TransientFrame) State() State     { return f.state }

func (f *TransientFrame) checkOpen() error {
	if f.state != Open {
		return graphframeerr.NewFault("frame: transient frame %d is not open", f.id)
	}
	return nil
}

// CreateOptions supplies the optional arguments to Create.
type CreateOptions struct {
	Attributes map[string]variant.Variant
	Parent     *ObjectID
	Children   []ObjectID
}

// Create allocates a new objectID and snapshotID, builds an owned snapshot in
// the transient state, and installs it (§4.2). It fails if structure is
// inconsistent with typ's structural kind.
func (f *TransientFrame) Create(typ *metamodel.ObjectType, structure snapshot.Structure, opts CreateOptions) (*snapshot.Snapshot, error) {
	if err := f.checkOpen(); err != nil {
		return nil, err
	}
	objectID := f.ids.Next()
	snapshotID := f.ids.Next()
	f.reserved = append(f.reserved, objectID, snapshotID)

	s, err := snapshot.New(snapshotID, objectID, typ, structure)
	if err != nil {
		return nil, err
	}
	for k, v := range opts.Attributes {
		if err := s.SetAttribute(k, v); err != nil {
			return nil, err
		}
	}
	if opts.Parent != nil {
		if err := s.SetParent(opts.Parent); err != nil {
			return nil, err
		}
	}
	if len(opts.Children) > 0 {
		if err := s.SetChildren(opts.Children); err != nil {
			return nil, err
		}
	}
	s.MarkTransient()

	f.snapshots[objectID] = s
	f.owned[objectID] = true
	f.createdHere[objectID] = true
	delete(f.removed, objectID)

	// Parent and children are one relationship stored on both ends (§9: one
	// source of truth, regenerate the other); opts only gives Create one
	// side, so the other side is derived here the same way pkg/loader's
	// resolveFrames derives children solely from parent pointers.
	if opts.Parent != nil {
		parent, err := f.MutableObject(*opts.Parent)
		if err != nil {
			return nil, err
		}
		if err := parent.AppendChild(objectID); err != nil {
			return nil, err
		}
	}
	for _, child := range opts.Children {
		childSnap, err := f.MutableObject(child)
		if err != nil {
			return nil, err
		}
		if err := childSnap.SetParent(&objectID); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// InsertDerived clones proto, assigns it a new snapshotID and, if
// useNewObjectID is true, a new ObjectID too, and inserts the clone as
// owned. It returns the ObjectID the clone was installed under.
func (f *TransientFrame) InsertDerived(proto *snapshot.Snapshot, useNewObjectID bool) (ObjectID, error) {
	if err := f.checkOpen(); err != nil {
		return 0, err
	}
	snapshotID := f.ids.Next()
	f.reserved = append(f.reserved, snapshotID)

	var newObjectID *ObjectID
	if useNewObjectID {
		oid := f.ids.Next()
		f.reserved = append(f.reserved, oid)
		newObjectID = &oid
	}
	clone := proto.Clone(snapshotID, newObjectID)
	clone.MarkTransient()

	oid := clone.ObjectID()
	f.snapshots[oid] = clone
	f.owned[oid] = true
	f.createdHere[oid] = true
	delete(f.removed, oid)
	return oid, nil
}

// MutableObject returns the owned snapshot for id, deriving a fresh copy
// (with a new snapshotID, installed as owned) from a shared one first if
// necessary. All subsequent mutation of this object within the frame should
// go through the returned snapshot.
func (f *TransientFrame) MutableObject(id ObjectID) (*snapshot.Snapshot, error) {
	if err := f.checkOpen(); err != nil {
		return nil, err
	}
	s, ok := f.snapshots[id]
	if !ok {
		return nil, fmt.Errorf("frame: object %d is not present in this frame", id)
	}
	if f.owned[id] {
		return s, nil
	}
	snapshotID := f.ids.Next()
	f.reserved = append(f.reserved, snapshotID)
	derived := s.Clone(snapshotID, nil)
	derived.MarkTransient()
	f.snapshots[id] = derived
	f.owned[id] = true
	return derived, nil
}

// SetAttribute derives a mutable copy of id's snapshot (if needed) and sets
// key to value on it.
func (f *TransientFrame) SetAttribute(id ObjectID, key string, value variant.Variant) error {
	s, err := f.MutableObject(id)
	if err != nil {
		return err
	}
	return s.SetAttribute(key, value)
}

// RemovedObjects is the result of RemoveCascading, split per the resolved
// Open Question (§9): objects that existed in the frame this one was derived
// from ("FromParent") versus objects created and then removed within this
// same transient frame ("CreatedAndRemoved") — both are useful to a caller
// inspecting what a cascading remove actually did, so both are kept rather
// than merged into one ambiguous set.
type RemovedObjects struct {
	FromParent        map[ObjectID]bool
	CreatedAndRemoved map[ObjectID]bool
}

// All returns the union of both sets.
func (r RemovedObjects) All() map[ObjectID]bool {
	out := make(map[ObjectID]bool, len(r.FromParent)+len(r.CreatedAndRemoved))
	for id := range r.FromParent {
		out[id] = true
	}
	for id := range r.CreatedAndRemoved {
		out[id] = true
	}
	return out
}

// RemoveCascading removes id and every snapshot whose structuralDependencies
// include it (edges whose endpoint is removed, children of a removed
// parent), repeating transitively until fixpoint (§4.2).
func (f *TransientFrame) RemoveCascading(id ObjectID) (RemovedObjects, error) {
	if err := f.checkOpen(); err != nil {
		return RemovedObjects{}, err
	}
	result := RemovedObjects{FromParent: map[ObjectID]bool{}, CreatedAndRemoved: map[ObjectID]bool{}}
	frontier := []ObjectID{id}

	for len(frontier) > 0 {
		var next []ObjectID
		for _, victim := range frontier {
			if f.removed[victim] {
				continue
			}
			if _, present := f.snapshots[victim]; !present {
				continue
			}
			f.removeOne(victim, &result)

			for oid, s := range f.snapshots {
				if f.removed[oid] {
					continue
				}
				for _, dep := range s.StructuralDependencies() {
					if dep == victim {
						next = append(next, oid)
						break
					}
				}
			}
		}
		frontier = next
	}
	return result, nil
}

func (f *TransientFrame) removeOne(id ObjectID, result *RemovedObjects) {
	if f.createdHere[id] {
		result.CreatedAndRemoved[id] = true
	} else {
		result.FromParent[id] = true
	}
	delete(f.snapshots, id)
	delete(f.owned, id)
	delete(f.createdHere, id)
	f.removed[id] = true
}

// Freeze marks the frame Accepted, freezes every owned snapshot, and
// promotes every ID this frame reserved (objectIDs and snapshotIDs it
// allocated) from reserved to permanently used. Shared (inherited)
// snapshots are already frozen and their IDs already used.
func (f *TransientFrame) Freeze() {
	f.state = Accepted
	for oid, s := range f.snapshots {
		if f.owned[oid] {
			s.Freeze()
		}
	}
	for _, id := range f.reserved {
		_ = f.ids.Use(id)
	}
	f.reserved = nil
}

// ReservedIDs returns every ID this frame has reserved but not yet promoted
// to used — the set Discard releases (§9's Open Question: discard releases
// reservations for determinism).
func (f *TransientFrame) ReservedIDs() []identity.ID {
	return append([]identity.ID(nil), f.reserved...)
}

// Install inserts a fully-constructed snapshot into the frame as owned,
// bypassing the frame's own allocation — used by pkg/loader, which resolves
// its own objectIDs/snapshotIDs up front (against the identity manager
// directly, honoring whatever strategy the load uses) before constructing
// snapshots.
func (f *TransientFrame) Install(s *snapshot.Snapshot) error {
	if err := f.checkOpen(); err != nil {
		return err
	}
	oid := s.ObjectID()
	if _, exists := f.snapshots[oid]; exists {
		return fmt.Errorf("frame: object %d is already present in this frame", oid)
	}
	s.MarkTransient()
	f.snapshots[oid] = s
	f.owned[oid] = true
	f.createdHere[oid] = true
	delete(f.removed, oid)
	return nil
}

// ToStableFrame materializes the frame's current snapshot set into a new
// StableFrame carrying the given FrameID. Call only after Freeze.
func (f *TransientFrame) ToStableFrame(id FrameID) *StableFrame {
	return newStableFrame(id, f.snapshots)
}

// --- read-only projections -------------------------------------------------

func (f *TransientFrame) Contains(id ObjectID) bool {
	_, ok := f.snapshots[id]
	return ok
}

func (f *TransientFrame) Snapshot(id ObjectID) (*snapshot.Snapshot, bool) {
	s, ok := f.snapshots[id]
	return s, ok
}

func (f *TransientFrame) Snapshots() []*snapshot.Snapshot {
	out := make([]*snapshot.Snapshot, 0, len(f.snapshots))
	for _, s := range f.snapshots {
		out = append(out, s)
	}
	return out
}

func (f *TransientFrame) Filter(typeName string) []*snapshot.Snapshot {
	var out []*snapshot.Snapshot
	for _, s := range f.snapshots {
		if s.TypeName() == typeName {
			out = append(out, s)
		}
	}
	return out
}

func (f *TransientFrame) ObjectNamed(name string) (*snapshot.Snapshot, bool) {
	for _, s := range f.snapshots {
		if v, ok := s.Attribute("name"); ok {
			if sv, isStr := v.String0(); isStr && sv == name {
				return s, true
			}
		}
	}
	return nil, false
}

func (f *TransientFrame) GraphView() Graph { return buildGraph(f.Snapshots()) }

func (f *TransientFrame) IsOwned(id ObjectID) bool { return f.owned[id] }

// --- constraint.GraphView -------------------------------------------------

func (f *TransientFrame) Objects() []constraint.ObjectView {
	snaps := f.Snapshots()
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].ObjectID() < snaps[j].ObjectID() })
	out := make([]constraint.ObjectView, len(snaps))
	for i, s := range snaps {
		out[i] = s
	}
	return out
}

func (f *TransientFrame) Object(id identity.ID) (constraint.ObjectView, bool) {
	s, ok := f.snapshots[id]
	if !ok {
		return nil, false
	}
	return s, true
}
