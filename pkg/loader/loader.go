// Package loader implements the Design Loader (§4.5): it validates and
// materializes a raw (foreign) design into either a new Design or an open
// TransientFrame, resolving untyped raw identifiers against the target's
// identity space according to a chosen strategy.
package loader

import (
	"fmt"
	"strings"

	"github.com/coregx/ahocorasick"
	"github.com/sirupsen/logrus"

	"github.com/openpoiesis/graphframe/pkg/design"
	"github.com/openpoiesis/graphframe/pkg/frame"
	"github.com/openpoiesis/graphframe/pkg/identity"
	"github.com/openpoiesis/graphframe/pkg/metamodel"
	"github.com/openpoiesis/graphframe/pkg/rawdesign"
	"github.com/openpoiesis/graphframe/pkg/snapshot"
	"github.com/openpoiesis/graphframe/pkg/structkind"
	"github.com/openpoiesis/graphframe/pkg/variant"
)

// IdentityStrategy selects how raw integer IDs are reconciled with the
// target identity space (§4.5 step 2).
type IdentityStrategy int

const (
	CreateNew IdentityStrategy = iota
	RequireProvided
	PreserveOrCreate
)

// Options configures a load (§6 "Loader options").
type Options struct {
	IdentityStrategy     IdentityStrategy
	UseIDAsNameAttribute bool

	// Logger receives the load's structured lifecycle log events (ambient
	// stack: "injectable *logrus.Logger, defaulting to
	// logrus.StandardLogger()"). Left nil to use the package default.
	Logger *logrus.Logger
}

// DefaultOptions matches the spec's documented default: preserveOrCreate,
// no legacy id-as-name behavior.
func DefaultOptions() Options {
	return Options{IdentityStrategy: PreserveOrCreate}
}

func loggerFor(opts Options) *logrus.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return logrus.StandardLogger()
}

// ErrorKind names one taxonomy member from §6's error table.
type ErrorKind string

const (
	DuplicateForeignID        ErrorKind = "duplicate_foreign_id"
	UnknownEntityType         ErrorKind = "unknown_entity_type"
	DuplicateName             ErrorKind = "duplicate_name"
	UnknownID                 ErrorKind = "unknown_id"
	ReservationConflict       ErrorKind = "reservation_conflict"
	MissingObjectType         ErrorKind = "missing_object_type"
	UnknownObjectType         ErrorKind = "unknown_object_type"
	InvalidStructuralType     ErrorKind = "invalid_structural_type"
	StructuralTypeMismatch    ErrorKind = "structural_type_mismatch"
	DuplicateObject           ErrorKind = "duplicate_object"
	BrokenStructuralIntegrity ErrorKind = "broken_structural_integrity"
	ChildrenMismatch          ErrorKind = "children_mismatch"
	MissingCurrentFrame       ErrorKind = "missing_current_frame"
	UnknownFrameID            ErrorKind = "unknown_frame_id"
)

// ItemError is a per-item loader failure, wrapped with its collection and
// index for diagnostics (§6: "each item-error is wrapped with (collection,
// index, kind)").
type ItemError struct {
	Collection string
	Index      int
	Kind       ErrorKind
	Raw        string
	Detail     string
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("loader: %s[%d]: %s %q: %s", e.Collection, e.Index, e.Kind, e.Raw, e.Detail)
}

func itemErr(collection string, index int, kind ErrorKind, raw fmt.Stringer, detail string) *ItemError {
	rawStr := ""
	if raw != nil {
		rawStr = raw.String()
	}
	return &ItemError{Collection: collection, Index: index, Kind: kind, Raw: rawStr, Detail: detail}
}

func wrapItemErr(err error, collection string, index int) error {
	if ie, ok := err.(*ItemError); ok {
		ie.Collection = collection
		ie.Index = index
		return ie
	}
	return err
}

// DesignError is a design-level (not per-item) loader failure.
type DesignError struct {
	Kind   ErrorKind
	Detail string
}

func (e *DesignError) Error() string {
	return fmt.Sprintf("loader: %s: %s", e.Kind, e.Detail)
}

var reservedAttributeNames = []string{"id", "snapshot_id", "type", "type_name", "parent", "children", "structure"}

// loadContext carries the state threaded through every resolution phase.
type loadContext struct {
	mm          metamodel.Metamodel
	ids         *identity.Manager
	opts        Options
	unavailable map[identity.ID]bool
	cache       map[string]identity.ID
	consumed    []identity.ID
	scanner     *ahocorasick.Matcher
}

func newLoadContext(mm metamodel.Metamodel, ids *identity.Manager, opts Options, unavailable map[identity.ID]bool) *loadContext {
	return &loadContext{
		mm:          mm,
		ids:         ids,
		opts:        opts,
		unavailable: unavailable,
		cache:       make(map[string]identity.ID),
		scanner:     ahocorasick.NewStringMatcher(reservedAttributeNames),
	}
}

func rawCacheKey(raw rawdesign.RawID) string {
	switch raw.Kind {
	case rawdesign.RawIDString:
		return "s:" + raw.Str
	case rawdesign.RawIDResolved:
		return fmt.Sprintf("r:%d", raw.Resolved)
	default:
		return fmt.Sprintf("i:%d", raw.Int)
	}
}

// reserveExplicit performs the "explicit requests applied first" pass
// (§4.5 step 2 subtlety): every literal integer raw ID in ids (the snapshot
// collection's snapshot, object, parent and structure IDs) is reserved up front, before any implicit (string-named or
// createNew) allocation happens, so a later sequential Next() can never
// shadow an explicit request that appears later in the raw list.
func (lc *loadContext) reserveExplicit(ids []rawdesign.RawID) error {
	if lc.opts.IdentityStrategy == CreateNew {
		return nil
	}
	for _, raw := range ids {
		if raw.Kind != rawdesign.RawIDInt {
			continue
		}
		key := rawCacheKey(raw)
		if _, already := lc.cache[key]; already {
			continue
		}
		want := identity.ID(raw.Int)
		if lc.unavailable[want] || !lc.ids.IsFree(want) {
			if lc.opts.IdentityStrategy == RequireProvided {
				return &ItemError{Kind: ReservationConflict, Raw: raw.String(), Detail: "id already in use"}
			}
			continue // preserveOrCreate: leave unresolved, resolve() allocates fresh lazily
		}
		if err := lc.ids.Reserve(want); err != nil {
			return &ItemError{Kind: ReservationConflict, Raw: raw.String(), Detail: err.Error()}
		}
		lc.cache[key] = want
		lc.consumed = append(lc.consumed, want)
	}
	return nil
}

// resolve maps one raw identifier to an identity.ID, consulting the cache
// first so the same raw int or string always resolves to the same ID
// across the whole load (§4.5 step 2).
func (lc *loadContext) resolve(raw rawdesign.RawID) (identity.ID, error) {
	key := rawCacheKey(raw)
	if id, ok := lc.cache[key]; ok {
		return id, nil
	}

	var id identity.ID
	switch raw.Kind {
	case rawdesign.RawIDResolved:
		id = raw.Resolved
	case rawdesign.RawIDString:
		id = lc.ids.Next()
	default:
		want := identity.ID(raw.Int)
		switch lc.opts.IdentityStrategy {
		case CreateNew:
			id = lc.ids.Next()
		case RequireProvided:
			if lc.unavailable[want] || !lc.ids.IsFree(want) {
				return 0, &ItemError{Kind: ReservationConflict, Raw: raw.String(), Detail: "id already in use"}
			}
			if err := lc.ids.Reserve(want); err != nil {
				return 0, &ItemError{Kind: ReservationConflict, Raw: raw.String(), Detail: err.Error()}
			}
			id = want
		case PreserveOrCreate:
			if !lc.unavailable[want] && lc.ids.IsFree(want) {
				_ = lc.ids.Reserve(want)
				id = want
			} else {
				id = lc.ids.Next()
			}
		}
	}
	lc.cache[key] = id
	lc.consumed = append(lc.consumed, id)
	return id, nil
}

// hasReservedName reports whether attrName collides with a structural field
// name the wire format also uses, via the Aho-Corasick scan built once per
// load over the reserved-name set.
func (lc *loadContext) hasReservedName(attrName string) bool {
	name := strings.ToLower(attrName)
	if len(lc.scanner.Match([]byte(name))) == 0 {
		return false
	}
	for _, reserved := range reservedAttributeNames {
		if reserved == name {
			return true
		}
	}
	return false
}

// --- phase 1: validation ---------------------------------------------------

func validateSnapshots(raw []rawdesign.RawSnapshot) error {
	seen := make(map[string]bool)
	for i, s := range raw {
		if s.SnapshotID == nil {
			continue
		}
		key := rawCacheKey(*s.SnapshotID)
		if seen[key] {
			return itemErr("snapshots", i, DuplicateForeignID, s.SnapshotID, "duplicate snapshot_id in this load")
		}
		seen[key] = true
	}
	return nil
}

func validateReferenceNames(refs []rawdesign.RawReference, collection string) error {
	seen := make(map[string]bool)
	for i, r := range refs {
		if seen[r.Name] {
			return itemErr(collection, i, DuplicateName, nil, fmt.Sprintf("duplicate reference name %q", r.Name))
		}
		seen[r.Name] = true
	}
	return nil
}

// --- phase 2/3: snapshot resolution ----------------------------------------

type resolvedSnapshot struct {
	objectID   identity.ID
	snapshotID identity.ID
	typ        *metamodel.ObjectType
	structure  snapshot.Structure
	parent     *identity.ID
	rawAttrs   map[string]rawdesign.RawValue
	rawID      *rawdesign.RawID
	rawIndex   int
}

func collectSnapshotIDs(raws []rawdesign.RawSnapshot) []rawdesign.RawID {
	var ids []rawdesign.RawID
	for _, s := range raws {
		if s.SnapshotID != nil {
			ids = append(ids, *s.SnapshotID)
		}
		if s.ID != nil {
			ids = append(ids, *s.ID)
		}
		if s.Parent != nil {
			ids = append(ids, *s.Parent)
		}
		if s.Structure != nil {
			ids = append(ids, s.Structure.References...)
		}
	}
	return ids
}

func (lc *loadContext) resolveSnapshots(raws []rawdesign.RawSnapshot) ([]*resolvedSnapshot, error) {
	if err := validateSnapshots(raws); err != nil {
		return nil, err
	}
	if err := lc.reserveExplicit(collectSnapshotIDs(raws)); err != nil {
		return nil, err
	}

	out := make([]*resolvedSnapshot, 0, len(raws))
	for i, raw := range raws {
		r, err := lc.resolveOneSnapshot(i, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (lc *loadContext) resolveOneSnapshot(index int, raw rawdesign.RawSnapshot) (*resolvedSnapshot, error) {
	if raw.TypeName == "" {
		return nil, itemErr("snapshots", index, MissingObjectType, nil, "type_name is required")
	}
	typ, ok := lc.mm.LookupType(raw.TypeName)
	if !ok {
		return nil, &ItemError{Collection: "snapshots", Index: index, Kind: UnknownObjectType, Raw: raw.TypeName, Detail: "unknown object type"}
	}

	objectID, err := lc.resolveOrAllocate(raw.ID)
	if err != nil {
		return nil, wrapItemErr(err, "snapshots", index)
	}
	snapshotID, err := lc.resolveOrAllocate(raw.SnapshotID)
	if err != nil {
		return nil, wrapItemErr(err, "snapshots", index)
	}

	structure, err := lc.resolveStructure(index, raw, typ)
	if err != nil {
		return nil, err
	}

	var parent *identity.ID
	if raw.Parent != nil {
		pid, err := lc.resolve(*raw.Parent)
		if err != nil {
			return nil, wrapItemErr(err, "snapshots", index)
		}
		parent = &pid
	}

	for name := range raw.Attributes {
		if lc.hasReservedName(name) {
			return nil, itemErr("snapshots", index, InvalidStructuralType, nil,
				fmt.Sprintf("attribute name %q collides with a reserved structural field", name))
		}
	}

	return &resolvedSnapshot{
		objectID:   objectID,
		snapshotID: snapshotID,
		typ:        typ,
		structure:  structure,
		parent:     parent,
		rawAttrs:   raw.Attributes,
		rawID:      raw.ID,
		rawIndex:   index,
	}, nil
}

// resolveOrAllocate resolves raw if provided, or allocates a fresh id
// (tracked for later promotion/release) if raw is nil.
func (lc *loadContext) resolveOrAllocate(raw *rawdesign.RawID) (identity.ID, error) {
	if raw != nil {
		return lc.resolve(*raw)
	}
	id := lc.ids.Next()
	lc.consumed = append(lc.consumed, id)
	return id, nil
}

func (lc *loadContext) resolveStructure(index int, raw rawdesign.RawSnapshot, typ *metamodel.ObjectType) (snapshot.Structure, error) {
	if raw.Structure == nil {
		switch typ.Kind {
		case structkind.Edge:
			return snapshot.Structure{}, itemErr("snapshots", index, StructuralTypeMismatch, nil, "edge type requires a structure")
		case structkind.Node:
			return snapshot.NodeStructure(), nil
		default:
			return snapshot.Unstructured(), nil
		}
	}
	var kind structkind.Kind
	switch raw.Structure.Kind {
	case "unstructured":
		kind = structkind.Unstructured
	case "node":
		kind = structkind.Node
	case "edge":
		kind = structkind.Edge
	default:
		return snapshot.Structure{}, itemErr("snapshots", index, InvalidStructuralType, nil, raw.Structure.Kind)
	}
	if typ.Kind != kind {
		return snapshot.Structure{}, itemErr("snapshots", index, StructuralTypeMismatch, nil,
			fmt.Sprintf("type %q requires structural kind %s, got %s", typ.TypeName, typ.Kind, kind))
	}
	switch kind {
	case structkind.Edge:
		if len(raw.Structure.References) != 2 {
			return snapshot.Structure{}, itemErr("snapshots", index, InvalidStructuralType, nil, "edge requires exactly two references")
		}
		origin, err := lc.resolve(raw.Structure.References[0])
		if err != nil {
			return snapshot.Structure{}, wrapItemErr(err, "snapshots", index)
		}
		target, err := lc.resolve(raw.Structure.References[1])
		if err != nil {
			return snapshot.Structure{}, wrapItemErr(err, "snapshots", index)
		}
		return snapshot.EdgeStructure(origin, target), nil
	case structkind.Node:
		return snapshot.NodeStructure(), nil
	default:
		return snapshot.Unstructured(), nil
	}
}

// materialize builds the real *snapshot.Snapshot for a resolved item,
// applies its attributes, and — when opts.UseIDAsNameAttribute is set and
// the item's raw id was a string — stamps that string onto a "name"
// attribute as a compatibility shim for foreign data that used
// human-readable ids in place of a name field (§6).
func materialize(r *resolvedSnapshot, opts Options) (*snapshot.Snapshot, error) {
	s, err := snapshot.New(r.snapshotID, r.objectID, r.typ, r.structure)
	if err != nil {
		return nil, itemErr("snapshots", r.rawIndex, StructuralTypeMismatch, nil, err.Error())
	}
	for name, raw := range r.rawAttrs {
		v, err := rawdesign.ToVariant(raw)
		if err != nil {
			return nil, itemErr("snapshots", r.rawIndex, StructuralTypeMismatch, nil, err.Error())
		}
		if err := s.SetAttribute(name, v); err != nil {
			return nil, itemErr("snapshots", r.rawIndex, StructuralTypeMismatch, nil, err.Error())
		}
	}
	if opts.UseIDAsNameAttribute && r.rawID != nil && r.rawID.Kind == rawdesign.RawIDString {
		if _, already := r.rawAttrs["name"]; !already && s.HasAttribute("name") {
			_ = s.SetAttribute("name", variant.NewString(r.rawID.Str))
		}
	}
	if r.parent != nil {
		p := *r.parent
		if err := s.SetParent(&p); err != nil {
			return nil, itemErr("snapshots", r.rawIndex, BrokenStructuralIntegrity, nil, err.Error())
		}
	}
	return s, nil
}

// --- phase 4: frame resolution ----------------------------------------------

type resolvedFrame struct {
	id       identity.ID
	objects  []identity.ID // objectIDs present, in encounter order
	children map[identity.ID][]identity.ID
	rawIndex int
}

func (lc *loadContext) resolveFrames(raws []rawdesign.RawFrame, bySnapshotID map[identity.ID]*resolvedSnapshot, childrenSeen map[identity.ID]map[string][]identity.ID) ([]*resolvedFrame, error) {
	out := make([]*resolvedFrame, 0, len(raws))

	for i, raw := range raws {
		id, err := lc.resolveOrAllocate(raw.ID)
		if err != nil {
			return nil, wrapItemErr(err, "frames", i)
		}

		seen := make(map[identity.ID]bool)
		var objects []identity.ID
		children := make(map[identity.ID][]identity.ID)
		for _, snapRaw := range raw.Snapshots {
			snapID, err := lc.resolve(snapRaw)
			if err != nil {
				return nil, wrapItemErr(err, "frames", i)
			}
			r, ok := bySnapshotID[snapID]
			if !ok {
				return nil, itemErr("frames", i, UnknownID, &snapRaw, "unknown snapshot id")
			}
			if seen[r.objectID] {
				return nil, itemErr("frames", i, DuplicateObject, &snapRaw, "two snapshots of the same object in one frame")
			}
			seen[r.objectID] = true
			objects = append(objects, r.objectID)
			if r.parent != nil {
				children[*r.parent] = append(children[*r.parent], r.objectID)
			}
		}

		for parent, kids := range children {
			key := childrenKey(kids)
			if childrenSeen[parent] == nil {
				childrenSeen[parent] = map[string][]identity.ID{key: kids}
			} else if _, matches := childrenSeen[parent][key]; !matches {
				return nil, itemErr("frames", i, ChildrenMismatch, nil,
					fmt.Sprintf("object %d's children differ across frames", parent))
			}
		}

		out = append(out, &resolvedFrame{id: id, objects: objects, children: children, rawIndex: i})
	}
	return out, nil
}

func childrenKey(ids []identity.ID) string {
	sorted := append([]identity.ID(nil), ids...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}

// --- entry points ------------------------------------------------------------

// LoadDesign loads a full raw design into a brand-new Design bound to mm,
// logging the outcome (§6 load failures; ambient-stack logging) through
// opts.Logger, or logrus.StandardLogger() if none is given.
func LoadDesign(mm metamodel.Metamodel, raw rawdesign.RawDesign, opts Options) (*design.Design, error) {
	log := loggerFor(opts)
	d, err := loadDesign(mm, raw, opts)
	if err != nil {
		log.WithError(err).Warn("loader: load failed")
		return nil, err
	}
	log.WithFields(logrus.Fields{"snapshots": len(raw.Snapshots), "frames": len(raw.Frames)}).
		Info("loader: load succeeded")
	return d, nil
}

func loadDesign(mm metamodel.Metamodel, raw rawdesign.RawDesign, opts Options) (*design.Design, error) {
	d := design.New(mm)
	lc := newLoadContext(mm, d.Identities(), opts, nil)

	if err := validateReferenceNames(raw.UserReferences, "user_references"); err != nil {
		return nil, err
	}
	if err := validateReferenceNames(raw.SystemReferences, "system_references"); err != nil {
		return nil, err
	}

	resolved, err := lc.resolveSnapshots(raw.Snapshots)
	if err != nil {
		d.Identities().ReleaseAll(lc.consumed)
		return nil, err
	}

	bySnapshotID := make(map[identity.ID]*resolvedSnapshot, len(resolved))
	materialized := make(map[identity.ID]*snapshot.Snapshot, len(resolved))
	for _, r := range resolved {
		bySnapshotID[r.snapshotID] = r
		s, err := materialize(r, opts)
		if err != nil {
			d.Identities().ReleaseAll(lc.consumed)
			return nil, err
		}
		materialized[r.objectID] = s
	}

	childrenSeen := make(map[identity.ID]map[string][]identity.ID)
	frames, err := lc.resolveFrames(raw.Frames, bySnapshotID, childrenSeen)
	if err != nil {
		d.Identities().ReleaseAll(lc.consumed)
		return nil, err
	}

	knownFrameIDs := make(map[identity.ID]bool, len(frames))
	for _, rf := range frames {
		knownFrameIDs[rf.id] = true
	}

	// Resolve and validate every design-level reference/list before mutating
	// d at all (§7: "on loader failure the target design/frame is
	// unchanged") — everything above this point only touched lc's staging
	// state and the identity manager's reservations, which are released on
	// any subsequent failure.
	refs, err := resolveDesignLevelReferences(lc, raw, len(raw.Frames) > 0, knownFrameIDs)
	if err != nil {
		d.Identities().ReleaseAll(lc.consumed)
		return nil, err
	}

	for _, rf := range frames {
		tf := d.CreateFrameWithID(rf.id, nil)
		for _, oid := range rf.objects {
			s := materialized[oid]
			if kids, ok := rf.children[oid]; ok {
				_ = s.SetChildren(kids)
			}
			if err := tf.Install(s); err != nil {
				d.Identities().ReleaseAll(lc.consumed)
				return nil, itemErr("frames", rf.rawIndex, BrokenStructuralIntegrity, nil, err.Error())
			}
		}
		if _, err := d.Accept(tf, false); err != nil {
			d.Identities().ReleaseAll(lc.consumed)
			return nil, err
		}
	}

	refs.applyTo(d, len(raw.Frames) > 0)

	for _, id := range lc.consumed {
		_ = d.Identities().Use(id)
	}
	d.Identities().ReleaseUnusedReservations()
	return d, nil
}

// resolvedReferences holds every design-level reference/list already
// resolved and validated against knownFrameIDs, ready to apply once the
// loader commits to mutating the target Design.
type resolvedReferences struct {
	userRefs    map[string]identity.ID
	systemRefs  map[string]identity.ID
	userLists   map[string][]identity.ID
	systemLists map[string][]identity.ID
	current     *identity.ID
	undo, redo  []identity.ID
}

func (r *resolvedReferences) applyTo(d *design.Design, hasFrames bool) {
	for name, id := range r.userRefs {
		d.SetUserReference(name, id)
	}
	for name, id := range r.systemRefs {
		d.SetSystemReference(name, id)
	}
	for name, ids := range r.userLists {
		d.SetUserList(name, ids)
	}
	for name, ids := range r.systemLists {
		d.SetSystemList(name, ids)
	}
	if hasFrames {
		d.RestoreHistory(r.current, r.undo, r.redo)
	}
}

func resolveDesignLevelReferences(lc *loadContext, raw rawdesign.RawDesign, hasFrames bool, knownFrameIDs map[identity.ID]bool) (*resolvedReferences, error) {
	out := &resolvedReferences{
		userRefs:    make(map[string]identity.ID),
		systemRefs:  make(map[string]identity.ID),
		userLists:   make(map[string][]identity.ID),
		systemLists: make(map[string][]identity.ID),
	}

	for i, ref := range raw.SystemReferences {
		id, err := lc.resolve(ref.ID)
		if err != nil {
			return nil, wrapItemErr(err, "system_references", i)
		}
		if ref.Name == "current_frame" {
			if !knownFrameIDs[id] {
				return nil, &DesignError{Kind: UnknownFrameID, Detail: fmt.Sprintf("current_frame %d is not a frame in this load", id)}
			}
			frameID := id
			out.current = &frameID
			continue
		}
		out.systemRefs[ref.Name] = id
	}
	if hasFrames && out.current == nil {
		return nil, &DesignError{Kind: MissingCurrentFrame, Detail: "a raw design with frames must designate exactly one current_frame"}
	}

	for _, list := range raw.UserLists {
		ids, err := resolveIDList(lc, list.IDs)
		if err != nil {
			return nil, err
		}
		out.userLists[list.Name] = ids
	}
	for _, list := range raw.SystemLists {
		ids, err := resolveIDList(lc, list.IDs)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if !knownFrameIDs[id] {
				return nil, &DesignError{Kind: UnknownFrameID, Detail: fmt.Sprintf("%s list references unknown frame %d", list.Name, id)}
			}
		}
		switch list.Name {
		case "undo":
			out.undo = ids
		case "redo":
			out.redo = ids
		default:
			out.systemLists[list.Name] = ids
		}
	}

	for i, ref := range raw.UserReferences {
		id, err := lc.resolve(ref.ID)
		if err != nil {
			return nil, wrapItemErr(err, "user_references", i)
		}
		out.userRefs[ref.Name] = id
	}
	return out, nil
}

func resolveIDList(lc *loadContext, raws []rawdesign.RawID) ([]identity.ID, error) {
	ids := make([]identity.ID, len(raws))
	for i, rid := range raws {
		id, err := lc.resolve(rid)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// LoadIntoFrame loads raw snapshots into an already-open transient frame
// belonging to d (§4.5 "Load into existing transient frame"). IDs already
// present in the frame are treated as unavailable for requireProvided, and
// remapped to fresh IDs for preserveOrCreate. Logs the outcome through
// opts.Logger, or logrus.StandardLogger() if none is given.
func LoadIntoFrame(d *design.Design, tf *frame.TransientFrame, raws []rawdesign.RawSnapshot, opts Options) error {
	log := loggerFor(opts)
	if err := loadIntoFrame(d, tf, raws, opts); err != nil {
		log.WithError(err).Warn("loader: load into frame failed")
		return err
	}
	log.WithFields(logrus.Fields{"frame_id": tf.FrameID(), "snapshots": len(raws)}).
		Info("loader: load into frame succeeded")
	return nil
}

func loadIntoFrame(d *design.Design, tf *frame.TransientFrame, raws []rawdesign.RawSnapshot, opts Options) error {
	unavailable := make(map[identity.ID]bool)
	for _, s := range tf.Snapshots() {
		unavailable[s.ObjectID()] = true
	}
	lc := newLoadContext(d.Metamodel(), d.Identities(), opts, unavailable)

	resolved, err := lc.resolveSnapshots(raws)
	if err != nil {
		d.Identities().ReleaseAll(lc.consumed)
		return err
	}

	for _, r := range resolved {
		s, err := materialize(r, opts)
		if err != nil {
			d.Identities().ReleaseAll(lc.consumed)
			return err
		}
		if err := tf.Install(s); err != nil {
			d.Identities().ReleaseAll(lc.consumed)
			return itemErr("snapshots", r.rawIndex, DuplicateObject, nil, err.Error())
		}
	}

	for _, id := range lc.consumed {
		_ = d.Identities().Use(id)
	}
	return nil
}
