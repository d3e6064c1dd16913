package catalog

import (
	"sort"

	"github.com/google/uuid"

	"github.com/zjrosen/hoard/internal/inventory"
)

// Predicate filters assets. It runs while the catalog lock is held and must
// not call back into the catalog.
type Predicate func(inventory.Asset) bool

// Criteria combines query filters. Zero-valued fields do not filter.
type Criteria struct {
	// Tags must all be carried by a matching asset.
	Tags   []string
	Stage  inventory.LifecycleStage
	Source string
	Match  Predicate
}

// IsEmpty reports whether the criteria match every asset.
func (cr Criteria) IsEmpty() bool {
	return len(inventory.NormalizeTags(cr.Tags)) == 0 && cr.Stage == "" && cr.Source == "" && cr.Match == nil
}

// Query returns the assets whose tags are a superset of tags. With no tags it
// returns every asset. An empty intersection yields an empty slice.
func (c *Catalog) Query(tags ...string) []inventory.Asset {
	return c.Search(Criteria{Tags: tags})
}

// QueryByStage returns the assets in the given lifecycle stage.
func (c *Catalog) QueryByStage(stage inventory.LifecycleStage) []inventory.Asset {
	return c.QueryFunc(func(a inventory.Asset) bool { return a.Stage == stage })
}

// QueryBySource returns the assets with the given source origin.
func (c *Catalog) QueryBySource(source string) []inventory.Asset {
	return c.QueryFunc(func(a inventory.Asset) bool { return a.Source == source })
}

// QueryFunc returns the assets for which match returns true.
func (c *Catalog) QueryFunc(match Predicate) []inventory.Asset {
	return c.Search(Criteria{Match: match})
}

// Search returns the assets matching every criterion, ordered by id.
func (c *Catalog) Search(cr Criteria) []inventory.Asset {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidates := c.candidatesLocked(inventory.NormalizeTags(cr.Tags))

	out := make([]inventory.Asset, 0, len(candidates))
	for _, id := range candidates {
		asset := c.assetsByID[id]
		if cr.Stage != "" && asset.Stage != cr.Stage {
			continue
		}
		if cr.Source != "" && asset.Source != cr.Source {
			continue
		}
		if cr.Match != nil && !cr.Match(asset) {
			continue
		}
		out = append(out, asset.Clone())
	}
	return out
}

// candidatesLocked returns the sorted ids carrying every tag. The smallest
// bucket is scanned and checked against the others.
func (c *Catalog) candidatesLocked(tags []string) []uuid.UUID {
	if len(tags) == 0 {
		ids := make([]uuid.UUID, 0, len(c.assetsByID))
		for id := range c.assetsByID {
			ids = append(ids, id)
		}
		sortIDs(ids)
		return ids
	}

	buckets := make([]map[uuid.UUID]struct{}, 0, len(tags))
	for _, tag := range tags {
		bucket, ok := c.tagIndex[tag]
		if !ok {
			return nil
		}
		buckets = append(buckets, bucket)
	}
	sort.Slice(buckets, func(i, j int) bool { return len(buckets[i]) < len(buckets[j]) })

	ids := make([]uuid.UUID, 0, len(buckets[0]))
	for id := range buckets[0] {
		inAll := true
		for _, other := range buckets[1:] {
			if _, ok := other[id]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	return ids
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}
