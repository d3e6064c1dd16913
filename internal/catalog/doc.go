// Package catalog implements the in-memory indexed repository over a loaded
// inventory document.
//
// A Catalog holds the working set of assets plus three derived indices: by
// id, by tag and by (identifier type, normalized value). Every public method
// takes the catalog's single mutex for its full duration, so an index is never
// observed half-updated: every tag or identifier entry that points at an id
// belongs to a live asset carrying that tag or identifier.
//
// The catalog performs no I/O. The owning service loads a Document, hands it
// to New or ReplaceDocument, and later persists SnapshotDocument.
//
// # Queries
//
// Query(tags...) uses the tag index with set-intersection semantics. Stage,
// source and predicate queries are linear scans. Search combines all criteria.
// Results are ordered by the id's string form.
//
// # Relationships
//
// EvaluateRelationships checks each of an asset's requirements against its
// linked assets. A requirement with RequiredTags is satisfied when at least
// one related asset carries all of them (any-of, not all-of).
package catalog
