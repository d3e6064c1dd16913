// Package testutil provides fixture builders for catalog tests.
package testutil

import (
	"testing"

	"github.com/google/uuid"

	"github.com/zjrosen/hoard/internal/inventory"
)

// idNamespace seeds deterministic asset ids derived from builder keys.
var idNamespace = uuid.MustParse("6f1d6a4e-3b0c-4c52-9a57-3f2ad1c0b7e1")

// ID returns the deterministic asset id for a builder key.
func ID(key string) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte(key))
}

// Builder accumulates assets and relationship types into a Document.
type Builder struct {
	t        *testing.T
	version  inventory.SchemaVersion
	metadata map[string]string
	relTypes []inventory.RelationshipType
	assets   []assetData
}

// NewBuilder creates a builder producing documents at the current schema version.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{
		t:       t,
		version: inventory.CurrentSchemaVersion,
	}
}

// WithSchemaVersion overrides the document schema version.
func (b *Builder) WithSchemaVersion(v string) *Builder {
	b.t.Helper()
	parsed, err := inventory.ParseSchemaVersion(v)
	if err != nil {
		b.t.Fatalf("invalid schema version %q: %v", v, err)
	}
	b.version = parsed
	return b
}

// WithMetadata sets a document metadata entry.
func (b *Builder) WithMetadata(key, value string) *Builder {
	if b.metadata == nil {
		b.metadata = make(map[string]string)
	}
	b.metadata[key] = value
	return b
}

// WithRelationshipType registers a relationship type.
func (b *Builder) WithRelationshipType(id, name string) *Builder {
	b.relTypes = append(b.relTypes, inventory.RelationshipType{ID: id, Name: name})
	return b
}

// WithAsset adds an asset with optional configuration. Its id is ID(key).
func (b *Builder) WithAsset(key string, opts ...AssetOption) *Builder {
	asset := defaultAsset(key)
	for _, opt := range opts {
		opt(&asset)
	}
	b.assets = append(b.assets, asset)
	return b
}

// Build resolves every key reference and returns the document.
func (b *Builder) Build() inventory.Document {
	b.t.Helper()

	doc := inventory.Document{
		SchemaVersion:     b.version,
		Metadata:          b.metadata,
		RelationshipTypes: b.relTypes,
	}
	for _, a := range b.assets {
		doc.Assets = append(doc.Assets, b.buildAsset(a))
	}
	return doc
}

// Assets returns the built assets keyed by builder key.
func (b *Builder) Assets() map[string]inventory.Asset {
	b.t.Helper()

	out := make(map[string]inventory.Asset, len(b.assets))
	for _, a := range b.assets {
		out[a.key] = b.buildAsset(a)
	}
	return out
}

func (b *Builder) buildAsset(a assetData) inventory.Asset {
	b.t.Helper()

	asset := inventory.Asset{
		ID:          ID(a.key),
		Name:        a.name,
		Identifiers: a.identifiers,
		Tags:        a.tags,
		Stage:       a.stage,
		Source:      a.source,
	}
	for _, l := range a.links {
		asset.LinkedAssets = append(asset.LinkedAssets, inventory.LinkedAsset{
			AssetID: b.resolve(l.key),
			TypeID:  l.typeID,
			Note:    l.note,
		})
	}
	for _, key := range a.components {
		asset.Components = append(asset.Components, b.resolve(key))
	}
	for _, r := range a.requirements {
		req := inventory.RelationshipRequirement{
			Name:         r.name,
			TypeID:       r.typeID,
			Required:     r.required,
			RequiredTags: r.requiredTags,
		}
		for _, key := range r.compatibleKeys {
			req.CompatibleAssetIDs = append(req.CompatibleAssetIDs, b.resolve(key))
		}
		asset.Requirements = append(asset.Requirements, req)
	}
	return asset
}

// resolve maps a key to its id. Keys not added to the builder still resolve,
// which lets fixtures model dangling links.
func (b *Builder) resolve(key string) uuid.UUID {
	return ID(key)
}
