// Package extractor implements the Design Extractor (§4.6): the inverse of
// pkg/loader, producing a rawdesign.RawDesign from a live Design, plus a
// "pruning" variant that extracts a self-consistent fragment of a single
// frame.
package extractor

import (
	"sort"

	"github.com/openpoiesis/graphframe/internal/poolutil"
	"github.com/openpoiesis/graphframe/pkg/design"
	"github.com/openpoiesis/graphframe/pkg/identity"
	"github.com/openpoiesis/graphframe/pkg/rawdesign"
	"github.com/openpoiesis/graphframe/pkg/snapshot"
	"github.com/openpoiesis/graphframe/pkg/structkind"
)

// Extract produces a raw design describing the full current state of d: one
// raw snapshot per distinct snapshot reachable from any stable frame, one
// raw frame per stable frame, the current_frame system reference, the undo
// and redo system lists, and the metamodel's name/version (§4.6).
func Extract(d *design.Design) rawdesign.RawDesign {
	distinct := make(map[identity.ID]*snapshot.Snapshot)
	order := poolutil.GetIDSlice()
	defer poolutil.PutIDSlice(order)

	frameIDs := poolutil.GetIDSlice()
	defer poolutil.PutIDSlice(frameIDs)
	for _, id := range d.StableFrameIDs() {
		*frameIDs = append(*frameIDs, uint64(id))
	}
	sort.Slice(*frameIDs, func(i, j int) bool { return (*frameIDs)[i] < (*frameIDs)[j] })

	rawFrames := make([]rawdesign.RawFrame, 0, len(*frameIDs))
	for _, fid := range *frameIDs {
		f, _ := d.StableFrame(identity.ID(fid))
		snaps := f.Snapshots()
		sort.Slice(snaps, func(i, j int) bool { return snaps[i].ObjectID() < snaps[j].ObjectID() })

		rf := rawdesign.RawFrame{ID: rawID(identity.ID(fid)), Snapshots: make([]rawdesign.RawID, 0, len(snaps))}
		for _, s := range snaps {
			if _, already := distinct[s.SnapshotID()]; !already {
				distinct[s.SnapshotID()] = s
				*order = append(*order, uint64(s.SnapshotID()))
			}
			rf.Snapshots = append(rf.Snapshots, rawdesign.FromResolved(s.SnapshotID()))
		}
		rawFrames = append(rawFrames, rf)
	}

	rawSnapshots := make([]rawdesign.RawSnapshot, 0, len(*order))
	for _, sid := range *order {
		rawSnapshots = append(rawSnapshots, extractSnapshot(distinct[identity.ID(sid)]))
	}

	out := rawdesign.RawDesign{
		MetamodelName:    d.Metamodel().Name(),
		MetamodelVersion: d.Metamodel().Version().String(),
		Snapshots:        rawSnapshots,
		Frames:           rawFrames,
		ExportID:         rawdesign.NewExportID(),
	}

	if cur, ok := d.CurrentFrameID(); ok {
		out.SystemReferences = append(out.SystemReferences, rawdesign.RawReference{
			Name: "current_frame", Type: "frame", ID: rawdesign.FromResolved(cur),
		})
	}
	out.SystemLists = append(out.SystemLists,
		rawdesign.RawList{Name: "undo", ItemType: "frame", IDs: rawIDList(d.UndoList())},
		rawdesign.RawList{Name: "redo", ItemType: "frame", IDs: rawIDList(d.RedoList())},
	)
	return out
}

func rawID(id identity.ID) *rawdesign.RawID {
	r := rawdesign.FromResolved(id)
	return &r
}

func rawIDList(ids []identity.ID) []rawdesign.RawID {
	out := make([]rawdesign.RawID, len(ids))
	for i, id := range ids {
		out[i] = rawdesign.FromResolved(id)
	}
	return out
}

func extractSnapshot(s *snapshot.Snapshot) rawdesign.RawSnapshot {
	raw := rawdesign.RawSnapshot{
		TypeName:   s.Type().TypeName,
		SnapshotID: rawID(s.SnapshotID()),
		ID:         rawID(s.ObjectID()),
	}
	if parent, ok := s.Parent(); ok {
		raw.Parent = rawID(parent)
	}

	switch s.Structure() {
	case structkind.Edge:
		origin, _ := s.Origin()
		target, _ := s.Target()
		raw.Structure = &rawdesign.RawStructure{Kind: "edge", References: []rawdesign.RawID{
			rawdesign.FromResolved(origin), rawdesign.FromResolved(target),
		}}
	case structkind.Node:
		raw.Structure = &rawdesign.RawStructure{Kind: "node"}
	default:
		raw.Structure = &rawdesign.RawStructure{Kind: "unstructured"}
	}

	attrs := s.Attributes()
	if len(attrs) > 0 {
		raw.Attributes = make(map[string]rawdesign.RawValue, len(attrs))
		for name, v := range attrs {
			rv, err := rawdesign.FromVariant(v)
			if err != nil {
				continue
			}
			raw.Attributes[name] = rv
		}
	}
	return raw
}

// ExtractSubset implements the pruning variant (§4.6): a self-consistent
// fragment of a single stable frame containing only the given objects. An
// edge is kept only if both endpoints are in the subset; a parent pointer
// is kept only if the parent is in the subset. Raw snapshots carry no
// children list; the loader derives children from parent pointers.
func ExtractSubset(f snapshotFrame, objectIDs []identity.ID) []rawdesign.RawSnapshot {
	keep := poolutil.GetSet()
	defer poolutil.PutSet(keep)
	for _, id := range objectIDs {
		keep[uint64(id)] = struct{}{}
	}

	out := make([]rawdesign.RawSnapshot, 0, len(objectIDs))
	for _, id := range objectIDs {
		s, ok := f.Snapshot(id)
		if !ok {
			continue
		}

		if s.Structure() == structkind.Edge {
			origin, _ := s.Origin()
			target, _ := s.Target()
			_, originKept := keep[uint64(origin)]
			_, targetKept := keep[uint64(target)]
			if !originKept || !targetKept {
				continue
			}
		}

		raw := extractSnapshot(s)
		if parent, ok := s.Parent(); ok {
			if _, parentKept := keep[uint64(parent)]; !parentKept {
				raw.Parent = nil
			}
		}
		out = append(out, raw)
	}
	return out
}

// snapshotFrame is the minimal read surface ExtractSubset needs, satisfied
// by both *frame.StableFrame and *frame.TransientFrame.
type snapshotFrame interface {
	Snapshot(id identity.ID) (*snapshot.Snapshot, bool)
}
