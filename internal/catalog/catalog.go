package catalog

import (
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/zjrosen/hoard/internal/inventory"
	"github.com/zjrosen/hoard/internal/log"
)

// Catalog is the indexed in-memory asset repository.
type Catalog struct {
	mu sync.Mutex

	schemaVersion inventory.SchemaVersion
	metadata      map[string]string

	assetsByID            map[uuid.UUID]inventory.Asset
	tagIndex              map[string]map[uuid.UUID]struct{}
	identifierIndex       map[inventory.Identifier]uuid.UUID
	relationshipTypesByID map[string]inventory.RelationshipType
}

// New builds a catalog from doc.
func New(doc inventory.Document) *Catalog {
	c := &Catalog{}
	c.replace(doc)
	return c
}

// ReplaceDocument discards all state and rebuilds every index from doc in one
// pass. Callers never observe an intermediate state.
func (c *Catalog) ReplaceDocument(doc inventory.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.replace(doc)
	log.Info(log.CatCatalog, "document replaced",
		"schemaVersion", doc.SchemaVersion, "assets", len(c.assetsByID), "relationshipTypes", len(c.relationshipTypesByID))
}

func (c *Catalog) replace(doc inventory.Document) {
	c.schemaVersion = doc.SchemaVersion
	c.metadata = maps.Clone(doc.Metadata)
	c.assetsByID = make(map[uuid.UUID]inventory.Asset, len(doc.Assets))
	c.tagIndex = make(map[string]map[uuid.UUID]struct{})
	c.identifierIndex = make(map[inventory.Identifier]uuid.UUID)
	c.relationshipTypesByID = make(map[string]inventory.RelationshipType, len(doc.RelationshipTypes))

	for _, rt := range doc.RelationshipTypes {
		c.relationshipTypesByID[rt.ID] = rt
	}
	for _, asset := range doc.Assets {
		c.store(asset)
	}
}

// Upsert inserts asset or replaces the asset with the same id. The previous
// version's tag and identifier entries are removed before the new ones are
// added. It returns the stored asset, whose tags are trimmed and de-duplicated.
func (c *Catalog) Upsert(asset inventory.Asset) inventory.Asset {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := c.store(asset)
	log.Debug(log.CatCatalog, "asset upserted", "id", stored.ID, "tags", len(stored.Tags), "identifiers", len(stored.Identifiers))
	return stored.Clone()
}

// Delete removes the asset with id and its index entries. It returns false
// when id is unknown.
func (c *Catalog) Delete(id uuid.UUID) (inventory.Asset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.assetsByID[id]
	if !ok {
		return inventory.Asset{}, false
	}
	c.deindex(existing)
	delete(c.assetsByID, id)

	log.Debug(log.CatCatalog, "asset deleted", "id", id)
	return existing, true
}

// Get returns the asset with id.
func (c *Catalog) Get(id uuid.UUID) (inventory.Asset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	asset, ok := c.assetsByID[id]
	if !ok {
		return inventory.Asset{}, false
	}
	return asset.Clone(), true
}

// GetByIdentifier resolves an identifier. value is normalized before lookup.
func (c *Catalog) GetByIdentifier(t inventory.IdentifierType, value string) (inventory.Asset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.identifierIndex[inventory.Identifier{Type: t, Value: inventory.NormalizeIdentifierValue(value)}]
	if !ok {
		return inventory.Asset{}, false
	}
	asset, ok := c.assetsByID[id]
	if !ok {
		return inventory.Asset{}, false
	}
	return asset.Clone(), true
}

// Len returns the number of assets.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.assetsByID)
}

// SchemaVersion returns the version carried from the loaded document.
func (c *Catalog) SchemaVersion() inventory.SchemaVersion {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.schemaVersion
}

// TagCount is a tag with the number of assets carrying it.
type TagCount struct {
	Tag   string
	Count int
}

// Tags returns every indexed tag with its asset count, sorted by tag.
func (c *Catalog) Tags() []TagCount {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]TagCount, 0, len(c.tagIndex))
	for tag, ids := range c.tagIndex {
		out = append(out, TagCount{Tag: tag, Count: len(ids)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// store must be called with mu held.
func (c *Catalog) store(asset inventory.Asset) inventory.Asset {
	stored := asset.Clone()
	stored.Tags = inventory.NormalizeTags(stored.Tags)

	if existing, ok := c.assetsByID[stored.ID]; ok {
		c.deindex(existing)
	}
	c.assetsByID[stored.ID] = stored
	c.index(stored)
	return stored
}

func (c *Catalog) index(asset inventory.Asset) {
	for _, tag := range asset.Tags {
		bucket, ok := c.tagIndex[tag]
		if !ok {
			bucket = make(map[uuid.UUID]struct{})
			c.tagIndex[tag] = bucket
		}
		bucket[asset.ID] = struct{}{}
	}
	for _, ident := range asset.Identifiers {
		key := ident.Normalized()
		if prev, taken := c.identifierIndex[key]; taken && prev != asset.ID {
			log.Warn(log.CatCatalog, "identifier reassigned", "type", key.Type, "value", key.Value, "from", prev, "to", asset.ID)
		}
		c.identifierIndex[key] = asset.ID
	}
}

// deindex removes asset's entries. An identifier entry is only removed while it
// still points at asset; a later writer that took it over keeps it.
func (c *Catalog) deindex(asset inventory.Asset) {
	for _, tag := range asset.Tags {
		bucket, ok := c.tagIndex[tag]
		if !ok {
			continue
		}
		delete(bucket, asset.ID)
		if len(bucket) == 0 {
			delete(c.tagIndex, tag)
		}
	}
	for _, ident := range asset.Identifiers {
		key := ident.Normalized()
		if c.identifierIndex[key] == asset.ID {
			delete(c.identifierIndex, key)
		}
	}
}
