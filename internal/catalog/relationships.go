package catalog

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/zjrosen/hoard/internal/inventory"
)

// RelationshipType returns the registered type with id.
func (c *Catalog) RelationshipType(id string) (inventory.RelationshipType, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rt, ok := c.relationshipTypesByID[id]
	return rt, ok
}

// RelationshipTypes returns every registered type sorted by id.
func (c *Catalog) RelationshipTypes() []inventory.RelationshipType {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.relationshipTypesLocked()
}

// RegisterRelationshipType adds or replaces a relationship type.
func (c *Catalog) RegisterRelationshipType(rt inventory.RelationshipType) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.relationshipTypesByID[rt.ID] = rt
}

func (c *Catalog) relationshipTypesLocked() []inventory.RelationshipType {
	out := make([]inventory.RelationshipType, 0, len(c.relationshipTypesByID))
	for _, rt := range c.relationshipTypesByID {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RelatedAssets resolves the asset's links into assets, keeping only links of
// typeID unless typeID is empty. Links to unknown assets are skipped.
func (c *Catalog) RelatedAssets(id uuid.UUID, typeID string) []inventory.Asset {
	c.mu.Lock()
	defer c.mu.Unlock()

	return cloneAll(c.relatedLocked(id, typeID))
}

// EmbeddedComponents resolves the asset's component links into assets.
// Links to unknown assets are skipped.
func (c *Catalog) EmbeddedComponents(id uuid.UUID) []inventory.Asset {
	c.mu.Lock()
	defer c.mu.Unlock()

	asset, ok := c.assetsByID[id]
	if !ok {
		return nil
	}
	out := make([]inventory.Asset, 0, len(asset.Components))
	for _, componentID := range asset.Components {
		if component, ok := c.assetsByID[componentID]; ok {
			out = append(out, component.Clone())
		}
	}
	return out
}

func (c *Catalog) relatedLocked(id uuid.UUID, typeID string) []inventory.Asset {
	asset, ok := c.assetsByID[id]
	if !ok {
		return nil
	}
	out := make([]inventory.Asset, 0, len(asset.LinkedAssets))
	for _, link := range asset.LinkedAssets {
		if typeID != "" && link.TypeID != typeID {
			continue
		}
		if related, ok := c.assetsByID[link.AssetID]; ok {
			out = append(out, related)
		}
	}
	return out
}

// EvaluateRelationships checks each of the asset's requirements:
//
//  1. gather the assets linked through the requirement's type;
//  2. keep only CompatibleAssetIDs when that list is non-empty;
//  3. nothing left: missingRequired or missingOptional;
//  4. RequiredTags set and no related asset carries all of them:
//     nonCompliantTags;
//  5. otherwise satisfied.
//
// An unknown id yields nil.
func (c *Catalog) EvaluateRelationships(id uuid.UUID) []inventory.RelationshipEvaluation {
	c.mu.Lock()
	defer c.mu.Unlock()

	asset, ok := c.assetsByID[id]
	if !ok {
		return nil
	}

	out := make([]inventory.RelationshipEvaluation, 0, len(asset.Requirements))
	for _, req := range asset.Requirements {
		out = append(out, c.evaluateLocked(id, req))
	}
	return out
}

func (c *Catalog) evaluateLocked(id uuid.UUID, req inventory.RelationshipRequirement) inventory.RelationshipEvaluation {
	label := req.Name
	if rt, ok := c.relationshipTypesByID[req.TypeID]; ok && rt.Name != "" {
		label = rt.Name
	}
	if label == "" {
		label = req.TypeID
	}

	related := c.relatedLocked(id, req.TypeID)
	if len(req.CompatibleAssetIDs) > 0 {
		related = slices.DeleteFunc(related, func(a inventory.Asset) bool {
			return !slices.Contains(req.CompatibleAssetIDs, a.ID)
		})
	}

	eval := inventory.RelationshipEvaluation{Requirement: req.Clone()}

	if len(related) == 0 {
		if req.Required {
			eval.Status = inventory.StatusMissingRequired
			eval.Message = fmt.Sprintf("missing required %s", label)
		} else {
			eval.Status = inventory.StatusMissingOptional
			eval.Message = fmt.Sprintf("no %s linked (optional)", label)
		}
		return eval
	}

	satisfying := related
	if len(req.RequiredTags) > 0 {
		satisfying = slices.DeleteFunc(slices.Clone(related), func(a inventory.Asset) bool {
			return !a.HasAllTags(req.RequiredTags)
		})
		if len(satisfying) == 0 {
			eval.Status = inventory.StatusNonCompliantTags
			eval.Message = fmt.Sprintf("no linked %s carries tags: %s", label, strings.Join(req.RequiredTags, ", "))
			return eval
		}
	}

	names := make([]string, 0, len(satisfying))
	for _, a := range satisfying {
		names = append(names, assetLabel(a))
	}
	eval.Status = inventory.StatusSatisfied
	eval.Message = fmt.Sprintf("%s satisfied by %s", label, strings.Join(names, ", "))
	return eval
}

func assetLabel(a inventory.Asset) string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID.String()
}

func cloneAll(assets []inventory.Asset) []inventory.Asset {
	if assets == nil {
		return nil
	}
	out := make([]inventory.Asset, len(assets))
	for i, a := range assets {
		out[i] = a.Clone()
	}
	return out
}
