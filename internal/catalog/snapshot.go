package catalog

import (
	"maps"

	"github.com/zjrosen/hoard/internal/inventory"
)

// SnapshotDocument exports the schema version, metadata, relationship types
// and every asset (ordered by id) for persistence.
func (c *Catalog) SnapshotDocument() inventory.Document {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc := inventory.Document{
		SchemaVersion: c.schemaVersion,
		Metadata:      maps.Clone(c.metadata),
	}
	if len(c.relationshipTypesByID) > 0 {
		doc.RelationshipTypes = c.relationshipTypesLocked()
	}
	if len(c.assetsByID) > 0 {
		ids := c.candidatesLocked(nil)
		doc.Assets = make([]inventory.Asset, 0, len(ids))
		for _, id := range ids {
			doc.Assets = append(doc.Assets, c.assetsByID[id].Clone())
		}
	}
	return doc
}

// SetMetadata sets a document-level metadata entry carried into snapshots.
func (c *Catalog) SetMetadata(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.metadata == nil {
		c.metadata = make(map[string]string)
	}
	c.metadata[key] = value
}
