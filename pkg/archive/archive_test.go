package archive

import (
	"encoding/json"
	"testing"

	"github.com/blang/semver"

	"github.com/openpoiesis/graphframe/pkg/design"
	"github.com/openpoiesis/graphframe/pkg/frame"
	"github.com/openpoiesis/graphframe/pkg/metamodel"
	"github.com/openpoiesis/graphframe/pkg/snapshot"
	"github.com/openpoiesis/graphframe/pkg/structkind"
	"github.com/openpoiesis/graphframe/pkg/variant"
)

func testMetamodel() *metamodel.Registry {
	r := metamodel.NewRegistry("stockflow", semver.MustParse("1.0.0"))
	r.AddType(metamodel.NewObjectType("Stock", structkind.Node, []metamodel.AttributeDescriptor{
		{Name: "name", Type: variant.Atom(variant.KindString)},
	}))
	return r
}

func TestArchiveFrameThenListFrames(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer s.Close()

	mm := testMetamodel()
	d := design.New(mm)
	stockType, _ := mm.LookupType("Stock")
	tf := d.CreateFrame(nil)
	stock, err := tf.Create(stockType, snapshot.NodeStructure(), frame.CreateOptions{})
	if err != nil {
		t.Fatalf("failed to create stock: %v", err)
	}
	if err := stock.SetAttribute("name", variant.NewString("Water")); err != nil {
		t.Fatalf("failed to set attribute: %v", err)
	}
	if _, err := d.Accept(tf, true); err != nil {
		t.Fatalf("failed to accept frame: %v", err)
	}

	if err := s.ArchiveFrame("example", d, 1000); err != nil {
		t.Fatalf("failed to archive frame: %v", err)
	}

	records, err := s.ListFrames("example")
	if err != nil {
		t.Fatalf("failed to list frames: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 archived frame, got %d", len(records))
	}

	var doc frameDocumentPayload
	if err := json.Unmarshal([]byte(records[0].Payload), &doc); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	if len(doc.Snapshots) != 1 {
		t.Fatalf("expected 1 snapshot in payload, got %d", len(doc.Snapshots))
	}
	if doc.MetamodelName != "stockflow" {
		t.Fatalf("expected metamodel name stockflow, got %q", doc.MetamodelName)
	}
}

func TestArchiveFrameOverwritesOnReArchive(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer s.Close()

	mm := testMetamodel()
	d := design.New(mm)
	stockType, _ := mm.LookupType("Stock")
	tf := d.CreateFrame(nil)
	if _, err := tf.Create(stockType, snapshot.NodeStructure(), frame.CreateOptions{}); err != nil {
		t.Fatalf("failed to create stock: %v", err)
	}
	if _, err := d.Accept(tf, true); err != nil {
		t.Fatalf("failed to accept frame: %v", err)
	}

	if err := s.ArchiveFrame("example", d, 1000); err != nil {
		t.Fatalf("failed to archive frame: %v", err)
	}
	if err := s.ArchiveFrame("example", d, 2000); err != nil {
		t.Fatalf("failed to re-archive frame: %v", err)
	}

	records, err := s.ListFrames("example")
	if err != nil {
		t.Fatalf("failed to list frames: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected re-archiving the same frame to overwrite its row, got %d rows", len(records))
	}
	if records[0].ArchivedAt != 2000 {
		t.Fatalf("expected archived_at to be updated to 2000, got %d", records[0].ArchivedAt)
	}
}

func TestSearchSimilarFramesIsANoOp(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer s.Close()

	results, err := s.SearchSimilarFrames([]float32{0.1, 0.2}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Fatalf("expected SearchSimilarFrames to be a documented no-op, got %v", results)
	}
}
