package inventory

import (
	"slices"

	"github.com/google/uuid"
)

// RelationshipType is a named kind of link between assets, registered once per
// document.
type RelationshipType struct {
	ID   string `json:"id" yaml:"id" toml:"id"`
	Name string `json:"name" yaml:"name" toml:"name"`
}

// DisplayName returns the type's name, falling back to its id.
func (t RelationshipType) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// RelationshipRequirement declares that an asset needs another asset linked
// through TypeID. CompatibleAssetIDs restricts which assets count, and
// RequiredTags lists tags the related asset must carry.
type RelationshipRequirement struct {
	Name               string      `json:"name" yaml:"name" toml:"name"`
	TypeID             string      `json:"type_id" yaml:"type_id" toml:"type_id"`
	Required           bool        `json:"required" yaml:"required" toml:"required"`
	CompatibleAssetIDs []uuid.UUID `json:"compatible_asset_ids,omitempty" yaml:"compatible_asset_ids,omitempty" toml:"compatible_asset_ids,omitempty"`
	RequiredTags       []string    `json:"required_tags,omitempty" yaml:"required_tags,omitempty" toml:"required_tags,omitempty"`
}

// Clone returns a deep copy of the requirement.
func (r RelationshipRequirement) Clone() RelationshipRequirement {
	out := r
	out.CompatibleAssetIDs = slices.Clone(r.CompatibleAssetIDs)
	out.RequiredTags = slices.Clone(r.RequiredTags)
	return out
}

// EvaluationStatus is the outcome of checking one requirement.
type EvaluationStatus string

const (
	StatusSatisfied        EvaluationStatus = "satisfied"
	StatusMissingRequired  EvaluationStatus = "missingRequired"
	StatusMissingOptional  EvaluationStatus = "missingOptional"
	StatusIncompatible     EvaluationStatus = "incompatible"
	StatusNonCompliantTags EvaluationStatus = "nonCompliantTags"
)

// OK reports whether the status leaves nothing for the owner to fix.
// A missing optional relationship is fine.
func (s EvaluationStatus) OK() bool {
	return s == StatusSatisfied || s == StatusMissingOptional
}

// RelationshipEvaluation is produced by evaluating a requirement. It is never
// stored.
type RelationshipEvaluation struct {
	Requirement RelationshipRequirement `json:"requirement"`
	Status      EvaluationStatus        `json:"status"`
	Message     string                  `json:"message"`
}
