// Package design implements the top-level Design container (§4.4): frame
// history (undo/redo), acceptance (validation + freeze), and named
// references/lists, bound to one Metamodel and one Identity Manager.
package design

import (
	"errors"
	"fmt"
	"sort"

	trie "github.com/derekparker/trie/v3"
	"github.com/sirupsen/logrus"

	"github.com/openpoiesis/graphframe/pkg/constraint"
	"github.com/openpoiesis/graphframe/pkg/frame"
	"github.com/openpoiesis/graphframe/pkg/graphframeerr"
	"github.com/openpoiesis/graphframe/pkg/identity"
	"github.com/openpoiesis/graphframe/pkg/metamodel"
)

type FrameID = identity.ID
type ObjectID = identity.ID

// Design is the top-level container a caller drives: create transient
// frames, mutate them, accept or discard, navigate history, and manage named
// references (§4.4).
type Design struct {
	metamodel metamodel.Metamodel
	ids       *identity.Manager

	stable    map[FrameID]*frame.StableFrame
	transient map[FrameID]*frame.TransientFrame

	constraints []constraint.Constraint

	currentFrameID *FrameID
	undoList       []FrameID
	redoList       []FrameID

	userRefs    map[string]ObjectID
	systemRefs  map[string]ObjectID
	userLists   map[string][]ObjectID
	systemLists map[string][]ObjectID

	// names indexes every userRefs/systemRefs key for prefix lookup, e.g. an
	// editor's "jump to reference" autocomplete; kept in sync by setRef.
	names *trie.Trie

	log *logrus.Logger
}

// New builds an empty Design bound to mm, with its own fresh Identity
// Manager (§3: "created empty").
func New(mm metamodel.Metamodel) *Design {
	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)
	return &Design{
		metamodel:   mm,
		ids:         identity.NewManager(),
		stable:      make(map[FrameID]*frame.StableFrame),
		transient:   make(map[FrameID]*frame.TransientFrame),
		userRefs:    make(map[string]ObjectID),
		systemRefs:  make(map[string]ObjectID),
		userLists:   make(map[string][]ObjectID),
		systemLists: make(map[string][]ObjectID),
		names:       trie.New(),
		log:         log,
	}
}

func (d *Design) Metamodel() metamodel.Metamodel { return d.metamodel }
func (d *Design) Identities() *identity.Manager  { return d.ids }

// CurrentFrameID returns the design's current stable frame, if any.
func (d *Design) CurrentFrameID() (FrameID, bool) {
	if d.currentFrameID == nil {
		return 0, false
	}
	return *d.currentFrameID, true
}

// StableFrame looks up a stable frame by id.
func (d *Design) StableFrame(id FrameID) (*frame.StableFrame, bool) {
	f, ok := d.stable[id]
	return f, ok
}

// History returns the FrameIDs of the undo/current/redo chain in acceptance
// order: undoList, then the current frame, then redoList — all three are
// kept in chronological order already, regardless of where undo/redo
// currently sit. A stable frame accepted with appendHistory=false is not
// included (see StableFrameIDs).
func (d *Design) History() []FrameID {
	out := append([]FrameID(nil), d.undoList...)
	if d.currentFrameID != nil {
		out = append(out, *d.currentFrameID)
	}
	out = append(out, d.redoList...)
	return out
}

// UndoList returns a copy of the design's undo history, oldest first.
func (d *Design) UndoList() []FrameID { return append([]FrameID(nil), d.undoList...) }

// RedoList returns a copy of the design's redo history, in undo order.
func (d *Design) RedoList() []FrameID { return append([]FrameID(nil), d.redoList...) }

// StableFrameIDs returns every stable FrameID the design currently holds,
// in no particular order — used by pkg/extractor to enumerate every frame
// to export, not just the ones reachable through History's undo/current/
// redo chain (a frame accepted with appendHistory=false, as the loader
// does for every frame it installs, never enters that chain).
func (d *Design) StableFrameIDs() []FrameID {
	out := make([]FrameID, 0, len(d.stable))
	for id := range d.stable {
		out = append(out, id)
	}
	return out
}

// CreateFrame derives a new open TransientFrame, either empty (deriving ==
// nil) or pre-populated with every snapshot of the given stable frame as
// shared references (§4.4).
func (d *Design) CreateFrame(deriving *frame.StableFrame) *frame.TransientFrame {
	id := d.ids.NextUsed()
	tf := frame.NewTransientFrame(id, d.ids, deriving)
	d.transient[id] = tf
	d.log.WithField("frame_id", id).Debug("design: created transient frame")
	return tf
}

// CreateFrameWithID is CreateFrame for a caller that has already resolved a
// specific FrameID through the identity manager (pkg/loader, reconstructing
// a raw design's frames under whatever identity strategy it was given). id
// must already be reserved or used; CreateFrameWithID does not allocate it.
func (d *Design) CreateFrameWithID(id FrameID, deriving *frame.StableFrame) *frame.TransientFrame {
	tf := frame.NewTransientFrame(id, d.ids, deriving)
	d.transient[id] = tf
	d.log.WithField("frame_id", id).Debug("design: created transient frame with explicit id")
	return tf
}

// Accept validates tf (§4.3: referential integrity, parent/child coherence,
// acyclicity, then metamodel constraints), and on success freezes it into a
// new StableFrame sharing tf's FrameID, pushing it onto history if
// appendHistory is true (§4.4).
func (d *Design) Accept(tf *frame.TransientFrame, appendHistory bool) (*frame.StableFrame, error) {
	if _, owned := d.transient[tf.FrameID()]; !owned {
		return nil, graphframeerr.NewFault("design: frame %d does not belong to this design", tf.FrameID())
	}
	if tf.State() != frame.Open {
		return nil, graphframeerr.NewFault("design: frame %d is not open", tf.FrameID())
	}
	if _, alreadyStable := d.stable[tf.FrameID()]; alreadyStable {
		return nil, graphframeerr.NewFault("design: frame %d is already stable", tf.FrameID())
	}

	if err := constraint.CheckStructure(tf); err != nil {
		return nil, err
	}
	allConstraints := append(append([]constraint.Constraint(nil), d.metamodel.Constraints()...), d.constraints...)
	if err := constraint.Check(tf, allConstraints); err != nil {
		return nil, err
	}

	tf.Freeze()
	stable := tf.ToStableFrame(tf.FrameID())
	delete(d.transient, tf.FrameID())
	d.stable[stable.FrameID()] = stable

	if appendHistory {
		if d.currentFrameID != nil {
			d.undoList = append(d.undoList, *d.currentFrameID)
		}
		d.redoList = nil
		id := stable.FrameID()
		d.currentFrameID = &id
	}

	d.log.WithFields(logrus.Fields{"frame_id": stable.FrameID(), "append_history": appendHistory}).
		Info("design: accepted frame")
	return stable, nil
}

// MustAccept calls Accept and panics if it fails with a *graphframeerr.Fault
// — a programmer error (frame ownership, wrong state, referential-integrity
// breakage at accept time) that §7 says a caller should not try to recover
// from. A recoverable domain error (e.g. a constraint violation) is returned
// normally, the same distinction Accept itself makes.
func (d *Design) MustAccept(tf *frame.TransientFrame, appendHistory bool) (*frame.StableFrame, error) {
	stable, err := d.Accept(tf, appendHistory)
	if err != nil {
		var fault *graphframeerr.Fault
		if errors.As(err, &fault) {
			panic(fault)
		}
		return nil, err
	}
	return stable, nil
}

// Discard frees a transient frame without any history effect, releasing any
// IDs it reserved but never used (§9's Open Question: "choose release for
// determinism").
func (d *Design) Discard(tf *frame.TransientFrame) error {
	if _, owned := d.transient[tf.FrameID()]; !owned {
		return graphframeerr.NewFault("design: frame %d does not belong to this design", tf.FrameID())
	}
	d.ids.ReleaseAll(tf.ReservedIDs())
	delete(d.transient, tf.FrameID())
	d.log.WithField("frame_id", tf.FrameID()).Debug("design: discarded transient frame")
	return nil
}

// Undo moves current back to frameID, which must appear in undoList,
// shifting everything above it (including the prior current frame) onto the
// front of redoList (§4.4).
func (d *Design) Undo(frameID FrameID) error {
	idx := -1
	for i, id := range d.undoList {
		if id == frameID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return graphframeerr.NewFault("design: frame %d is not in the undo list", frameID)
	}

	// suffix is every frame between frameID and the current one, in
	// chronological (acceptance) order, including the current frame itself;
	// it becomes the front of redoList in that same order (§8 scenario 4).
	suffix := append([]FrameID(nil), d.undoList[idx+1:]...)
	if d.currentFrameID != nil {
		suffix = append(suffix, *d.currentFrameID)
	}
	d.redoList = append(suffix, d.redoList...)
	d.undoList = d.undoList[:idx]
	d.currentFrameID = &frameID
	return nil
}

// Redo is the symmetric inverse of Undo.
func (d *Design) Redo(frameID FrameID) error {
	idx := -1
	for i, id := range d.redoList {
		if id == frameID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return graphframeerr.NewFault("design: frame %d is not in the redo list", frameID)
	}

	// prefix is every frame between the current one and frameID, in
	// chronological order; it follows the current frame onto undoList.
	prefix := append([]FrameID(nil), d.redoList[:idx]...)
	if d.currentFrameID != nil {
		d.undoList = append(d.undoList, *d.currentFrameID)
	}
	d.undoList = append(d.undoList, prefix...)
	d.redoList = d.redoList[idx+1:]
	d.currentFrameID = &frameID
	return nil
}

// RestoreHistory sets the design's current frame and undo/redo history
// directly. Used by pkg/loader to materialize a raw design's "current_frame"
// system reference and "undo"/"redo" system lists into real history (§4.5
// design-level post-conditions), bypassing Accept's normal history-append
// logic since the frames were already accepted with appendHistory=false.
func (d *Design) RestoreHistory(current *FrameID, undo, redo []FrameID) {
	d.currentFrameID = current
	d.undoList = append([]FrameID(nil), undo...)
	d.redoList = append([]FrameID(nil), redo...)
}

// AddConstraint re-checks every stable frame against c and, if all pass,
// appends it to the design's constraint list. Per the resolved Open
// Question (§9), every stable frame is checked — not just the first, and
// not short-circuited chronologically — so a caller sees every frame a new
// constraint would break in one ConstraintViolation.
func (d *Design) AddConstraint(c constraint.Constraint) error {
	ids := d.StableFrameIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	views := make([]constraint.GraphView, 0, len(ids))
	for _, id := range ids {
		views = append(views, d.stable[id])
	}
	if err := constraint.CheckAll(views, []constraint.Constraint{c}); err != nil {
		return err
	}
	d.constraints = append(d.constraints, c)
	return nil
}

// Constraints returns the design's own constraint list (distinct from the
// metamodel's, though both are enforced at Accept).
func (d *Design) Constraints() []constraint.Constraint {
	return append([]constraint.Constraint(nil), d.constraints...)
}

// --- named references and lists -------------------------------------------

// SetUserReference names id under a user-chosen reference name.
func (d *Design) SetUserReference(name string, id ObjectID) {
	d.userRefs[name] = id
	d.names.Add(name, id)
}

// UserReference resolves a user reference name to an ObjectID.
func (d *Design) UserReference(name string) (ObjectID, bool) {
	id, ok := d.userRefs[name]
	return id, ok
}

// SetSystemReference names id under a system-managed reference name (e.g.
// "current_frame" during loading).
func (d *Design) SetSystemReference(name string, id ObjectID) {
	d.systemRefs[name] = id
	d.names.Add(name, id)
}

func (d *Design) SystemReference(name string) (ObjectID, bool) {
	id, ok := d.systemRefs[name]
	return id, ok
}

func (d *Design) SetUserList(name string, ids []ObjectID) {
	d.userLists[name] = append([]ObjectID(nil), ids...)
}

func (d *Design) UserList(name string) ([]ObjectID, bool) {
	ids, ok := d.userLists[name]
	return ids, ok
}

func (d *Design) SetSystemList(name string, ids []ObjectID) {
	d.systemLists[name] = append([]ObjectID(nil), ids...)
}

func (d *Design) SystemList(name string) ([]ObjectID, bool) {
	ids, ok := d.systemLists[name]
	return ids, ok
}

// ReferencesWithPrefix returns every user/system reference name starting
// with prefix, for editor-style autocomplete over named references.
func (d *Design) ReferencesWithPrefix(prefix string) []string {
	return d.names.PrefixSearch(prefix)
}

func (d *Design) String() string {
	return fmt.Sprintf("Design{stable=%d transient=%d}", len(d.stable), len(d.transient))
}
