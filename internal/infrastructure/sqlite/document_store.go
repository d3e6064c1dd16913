package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/hoard/internal/inventory"
	"github.com/zjrosen/hoard/internal/log"
	"github.com/zjrosen/hoard/internal/store"
)

// DocumentStore implements store.Store over the SQLite schema.
type DocumentStore struct {
	db *sql.DB
}

// newDocumentStore creates a new DocumentStore instance.
func newDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Ensure DocumentStore implements store.Store.
var _ store.Store = (*DocumentStore)(nil)

// Load reads the whole document. Returns store.ErrNotFound if nothing has been
// saved yet. Assets and relationship types come back ordered by id.
func (s *DocumentStore) Load(ctx context.Context) (inventory.Document, error) {
	var version string
	err := s.db.QueryRowContext(ctx, `SELECT schema_version FROM document WHERE id = 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.Document{}, store.ErrNotFound
	}
	if err != nil {
		return inventory.Document{}, fmt.Errorf("failed to read document: %w", err)
	}

	var doc inventory.Document
	if doc.SchemaVersion, err = inventory.ParseSchemaVersion(version); err != nil {
		return inventory.Document{}, err
	}
	if doc.Metadata, err = s.loadMetadata(ctx); err != nil {
		return inventory.Document{}, err
	}
	if doc.RelationshipTypes, err = s.loadRelationshipTypes(ctx); err != nil {
		return inventory.Document{}, err
	}
	if doc.Assets, err = s.loadAssets(ctx); err != nil {
		return inventory.Document{}, err
	}

	log.Debug(log.CatDB, "document loaded", "assets", len(doc.Assets), "relationshipTypes", len(doc.RelationshipTypes))
	return doc, nil
}

func (s *DocumentStore) loadMetadata(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM metadata ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out map[string]string
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metadata rows: %w", err)
	}
	return out, nil
}

func (s *DocumentStore) loadRelationshipTypes(ctx context.Context) ([]inventory.RelationshipType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM relationship_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list relationship types: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []inventory.RelationshipType
	for rows.Next() {
		var rt inventory.RelationshipType
		if err := rows.Scan(&rt.ID, &rt.Name); err != nil {
			return nil, fmt.Errorf("failed to scan relationship type row: %w", err)
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relationship type rows: %w", err)
	}
	return out, nil
}

func (s *DocumentStore) loadAssets(ctx context.Context) ([]inventory.Asset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, stage, source, payload FROM assets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []inventory.Asset
	for rows.Next() {
		var model AssetModel
		if err := rows.Scan(&model.ID, &model.Name, &model.Stage, &model.Source, &model.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan asset row: %w", err)
		}
		asset, err := model.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset rows: %w", err)
	}
	return out, nil
}

// Save replaces the stored document in one transaction.
func (s *DocumentStore) Save(ctx context.Context, doc inventory.Document) error {
	models := make([]*AssetModel, 0, len(doc.Assets))
	for _, a := range doc.Assets {
		m, err := toAssetModel(a)
		if err != nil {
			return err
		}
		models = append(models, m)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"asset_tags", "assets", "relationship_types", "metadata"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO document (id, schema_version, saved_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET schema_version = excluded.schema_version, saved_at = excluded.saved_at`,
		doc.SchemaVersion.String(), time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	for key, value := range doc.Metadata {
		if _, err := tx.ExecContext(ctx, `INSERT INTO metadata (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("failed to insert metadata %q: %w", key, err)
		}
	}

	for _, rt := range doc.RelationshipTypes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO relationship_types (id, name) VALUES (?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
			rt.ID, rt.Name,
		); err != nil {
			return fmt.Errorf("failed to insert relationship type %q: %w", rt.ID, err)
		}
	}

	for _, m := range models {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO assets (id, name, stage, source, payload) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name, stage = excluded.stage, source = excluded.source, payload = excluded.payload`,
			m.ID, m.Name, m.Stage, m.Source, m.Payload,
		); err != nil {
			return fmt.Errorf("failed to insert asset %s: %w", m.ID, err)
		}
		for _, tag := range m.Tags {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO asset_tags (asset_id, tag) VALUES (?, ?)`, m.ID, tag,
			); err != nil {
				return fmt.Errorf("failed to insert tag %q for asset %s: %w", tag, m.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document: %w", err)
	}
	log.Info(log.CatDB, "document saved", "assets", len(models), "relationshipTypes", len(doc.RelationshipTypes))
	return nil
}

// CountByTag returns how many stored assets carry tag.
func (s *DocumentStore) CountByTag(ctx context.Context, tag string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM asset_tags WHERE tag = ?`, tag).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tag %q: %w", tag, err)
	}
	return n, nil
}
