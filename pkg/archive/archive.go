// Package archive is a peripheral, explicitly-optional companion to the
// in-memory core: a write-only audit log of accepted stable frames, kept in
// SQLite for offline inspection and diffing. Nothing in pkg/design,
// pkg/loader, or pkg/extractor depends on this package — a caller wires it
// in only if it wants frame history to outlive the process.
package archive

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"

	"github.com/openpoiesis/graphframe/pkg/design"
	"github.com/openpoiesis/graphframe/pkg/extractor"
	"github.com/openpoiesis/graphframe/pkg/rawdesign"
)

// Store is the SQLite-backed frame archive. Thread-safe for concurrent
// readers/writers, independent of the single-threaded-cooperative core it
// archives.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS frames (
    design_name  TEXT NOT NULL,
    frame_id     INTEGER NOT NULL,
    export_id    TEXT NOT NULL,
    metamodel    TEXT NOT NULL,
    payload      TEXT NOT NULL,
    archived_at  INTEGER NOT NULL,
    PRIMARY KEY (design_name, frame_id)
);

CREATE INDEX IF NOT EXISTS idx_frames_design ON frames(design_name, archived_at);

-- frame_embeddings is a documented no-op today: no component in this
-- repository produces frame embeddings (that is the out-of-scope "semantic
-- frame search" collaborator). The vec0 virtual table and SearchSimilarFrames
-- below exist so a future embedding producer has a ready target.
CREATE VIRTUAL TABLE IF NOT EXISTS frame_embeddings USING vec0(
    embedding float[256]
);
`

// Open creates or opens a frame archive at dsn (":memory:" for an ephemeral
// archive, or a file path for a persistent one).
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("archive: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ArchiveFrame extracts d's full current state and appends one row per
// stable frame it currently holds. Re-archiving a frame already present
// under the same design name overwrites its row (the archive tracks the
// latest export of each frame, not a history of exports of the same frame).
func (s *Store) ArchiveFrame(designName string, d *design.Design, archivedAt int64) error {
	raw := extractor.Extract(d)
	return s.archiveRaw(designName, raw, archivedAt)
}

func (s *Store) archiveRaw(designName string, raw rawdesign.RawDesign, archivedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("archive: begin: %w", err)
	}
	defer tx.Rollback()

	for _, rf := range raw.Frames {
		payload, err := frameDocument(raw, rf)
		if err != nil {
			return fmt.Errorf("archive: encode frame %s: %w", rf.ID.String(), err)
		}
		if _, err := tx.Exec(`
			INSERT INTO frames (design_name, frame_id, export_id, metamodel, payload, archived_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(design_name, frame_id) DO UPDATE SET
				export_id = excluded.export_id,
				payload = excluded.payload,
				archived_at = excluded.archived_at
		`, designName, int64(rf.ID.Resolved), raw.ExportID, raw.MetamodelName, payload, archivedAt); err != nil {
			return fmt.Errorf("archive: insert frame %s: %w", rf.ID.String(), err)
		}
	}
	return tx.Commit()
}

// FrameRecord is one archived frame as read back from the store.
type FrameRecord struct {
	DesignName string
	FrameID    uint64
	ExportID   string
	Metamodel  string
	Payload    string
	ArchivedAt int64
}

// ListFrames returns every archived frame for designName, most recently
// archived first.
func (s *Store) ListFrames(designName string) ([]FrameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT design_name, frame_id, export_id, metamodel, payload, archived_at
		FROM frames WHERE design_name = ? ORDER BY archived_at DESC
	`, designName)
	if err != nil {
		return nil, fmt.Errorf("archive: list frames: %w", err)
	}
	defer rows.Close()

	var out []FrameRecord
	for rows.Next() {
		var r FrameRecord
		if err := rows.Scan(&r.DesignName, &r.FrameID, &r.ExportID, &r.Metamodel, &r.Payload, &r.ArchivedAt); err != nil {
			return nil, fmt.Errorf("archive: scan frame: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SearchSimilarFrames would rank archived frames by embedding proximity to
// query. No component in this repository produces frame embeddings, so
// this always returns an empty result — it exists as the ready call site
// for a future embedding producer, not a stub to remove.
func (s *Store) SearchSimilarFrames(query []float32, limit int) ([]FrameRecord, error) {
	return nil, nil
}
