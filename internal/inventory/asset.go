// Package inventory defines the record shapes the catalog indexes on and the
// schema version that gates document compatibility.
package inventory

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// IdentifierType names the kind of external-world code an Identifier holds.
type IdentifierType string

const (
	IdentifierSerialNumber IdentifierType = "serial-number"
	IdentifierUUID         IdentifierType = "uuid"
	IdentifierULID         IdentifierType = "ulid"
	IdentifierBarcode      IdentifierType = "barcode"
	IdentifierInternal     IdentifierType = "internal"
)

// Identifier is a typed code resolvable to at most one asset.
type Identifier struct {
	Type  IdentifierType `json:"type" yaml:"type" toml:"type"`
	Value string         `json:"value" yaml:"value" toml:"value"`
}

// NormalizeIdentifierValue trims whitespace and lowercases value.
func NormalizeIdentifierValue(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Normalized returns the identifier with its value normalized for indexing.
func (i Identifier) Normalized() Identifier {
	return Identifier{Type: i.Type, Value: NormalizeIdentifierValue(i.Value)}
}

// LifecycleStage is where an asset sits in the owner's collection.
// Values outside the predefined set are accepted.
type LifecycleStage string

const (
	StageWishlist LifecycleStage = "wishlist"
	StageOwned    LifecycleStage = "owned"
	StageInRepair LifecycleStage = "in-repair"
	StageLent     LifecycleStage = "lent"
	StageSold     LifecycleStage = "sold"
	StageRetired  LifecycleStage = "retired"
)

// LinkedAsset points from one asset to another through a relationship type.
type LinkedAsset struct {
	AssetID uuid.UUID `json:"asset_id" yaml:"asset_id" toml:"asset_id"`
	TypeID  string    `json:"type_id" yaml:"type_id" toml:"type_id"`
	Note    string    `json:"note,omitempty" yaml:"note,omitempty" toml:"note,omitempty"`
}

// Asset is the projection of a collection item that the catalog indexes.
// The full record is owned by the storage layer.
type Asset struct {
	ID           uuid.UUID                 `json:"id" yaml:"id" toml:"id"`
	Name         string                    `json:"name" yaml:"name" toml:"name"`
	Identifiers  []Identifier              `json:"identifiers,omitempty" yaml:"identifiers,omitempty" toml:"identifiers,omitempty"`
	Tags         []string                  `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty"`
	Requirements []RelationshipRequirement `json:"requirements,omitempty" yaml:"requirements,omitempty" toml:"requirements,omitempty"`
	LinkedAssets []LinkedAsset             `json:"linked_assets,omitempty" yaml:"linked_assets,omitempty" toml:"linked_assets,omitempty"`
	Components   []uuid.UUID               `json:"components,omitempty" yaml:"components,omitempty" toml:"components,omitempty"`
	Stage        LifecycleStage            `json:"stage,omitempty" yaml:"stage,omitempty" toml:"stage,omitempty"`
	Source       string                    `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
	Contents     PackageContents           `json:"contents,omitempty" yaml:"contents,omitempty" toml:"contents,omitempty"`
}

// Clone returns a deep copy of the asset.
func (a Asset) Clone() Asset {
	out := a
	out.Identifiers = slices.Clone(a.Identifiers)
	out.Tags = slices.Clone(a.Tags)
	out.LinkedAssets = slices.Clone(a.LinkedAssets)
	out.Components = slices.Clone(a.Components)
	if a.Requirements != nil {
		out.Requirements = make([]RelationshipRequirement, len(a.Requirements))
		for i, req := range a.Requirements {
			out.Requirements[i] = req.Clone()
		}
	}
	return out
}

// HasTagFold reports whether the asset carries tag, ignoring case.
func (a Asset) HasTagFold(tag string) bool {
	return slices.ContainsFunc(a.Tags, func(t string) bool {
		return strings.EqualFold(t, tag)
	})
}

// HasAllTags reports whether the asset's tags are a superset of tags.
func (a Asset) HasAllTags(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(a.Tags))
	for _, t := range a.Tags {
		set[t] = struct{}{}
	}
	for _, t := range tags {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

// Identifier returns the first identifier of the given type.
func (a Asset) Identifier(t IdentifierType) (Identifier, bool) {
	for _, id := range a.Identifiers {
		if id.Type == t {
			return id, true
		}
	}
	return Identifier{}, false
}

// NormalizeTags trims each tag, drops empty ones and removes duplicates while
// keeping first-seen order. A nil or all-empty input yields nil.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// TagNamespace splits a "namespace:value" tag. Tags without a colon have an
// empty namespace.
func TagNamespace(tag string) (namespace, value string) {
	ns, v, ok := strings.Cut(tag, ":")
	if !ok {
		return "", tag
	}
	return ns, v
}
