package archive

import (
	"encoding/json"
	"fmt"

	"github.com/openpoiesis/graphframe/pkg/rawdesign"
)

// frameDocumentPayload is the JSON shape stored in a frames row's payload column:
// the frame's own raw form plus the full raw snapshots it references, so a
// single row can be inspected or diffed without a second query against the
// rest of the archive.
type frameDocumentPayload struct {
	MetamodelName    string                  `json:"metamodel_name"`
	MetamodelVersion string                  `json:"metamodel_version"`
	ExportID         string                  `json:"export_id"`
	Frame            rawdesign.RawFrame      `json:"frame"`
	Snapshots        []rawdesign.RawSnapshot `json:"snapshots"`
}

func frameDocument(raw rawdesign.RawDesign, rf rawdesign.RawFrame) ([]byte, error) {
	byID := make(map[string]rawdesign.RawSnapshot, len(raw.Snapshots))
	for _, s := range raw.Snapshots {
		if s.SnapshotID != nil {
			byID[s.SnapshotID.String()] = s
		}
	}

	snaps := make([]rawdesign.RawSnapshot, 0, len(rf.Snapshots))
	for _, id := range rf.Snapshots {
		s, ok := byID[id.String()]
		if !ok {
			return nil, fmt.Errorf("frame %s references unknown snapshot %s", rf.ID.String(), id.String())
		}
		snaps = append(snaps, s)
	}

	doc := frameDocumentPayload{
		MetamodelName:    raw.MetamodelName,
		MetamodelVersion: raw.MetamodelVersion,
		ExportID:         raw.ExportID,
		Frame:            rf,
		Snapshots:        snaps,
	}
	return json.Marshal(doc)
}
