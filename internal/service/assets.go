package service

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/hoard/internal/catalog"
	"github.com/zjrosen/hoard/internal/flags"
	"github.com/zjrosen/hoard/internal/inventory"
	"github.com/zjrosen/hoard/internal/log"
	"github.com/zjrosen/hoard/internal/pubsub"
	"github.com/zjrosen/hoard/internal/tracing"
	"github.com/zjrosen/hoard/internal/ulid"
)

// AddAsset stores a new asset. A nil id is replaced with a random one and,
// while the auto-ulid flag is on, an asset without a ULID identifier gets one.
func (s *Service) AddAsset(ctx context.Context, asset inventory.Asset) (_ inventory.Asset, err error) {
	ctx, done := s.begin(ctx, tracing.SpanUpsert, attribute.String(tracing.AttrAssetName, asset.Name))
	defer func() { done(err) }()

	if asset.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return inventory.Asset{}, fmt.Errorf("generating asset id: %w", err)
		}
		asset.ID = id
	}

	if s.flags.Enabled(flags.FlagAutoULID) {
		if _, ok := asset.Identifier(inventory.IdentifierULID); !ok {
			id, err := ulid.Generate(s.now(), s.entropy)
			if err != nil {
				return inventory.Asset{}, fmt.Errorf("generating ulid: %w", err)
			}
			asset.Identifiers = append(slices.Clone(asset.Identifiers),
				inventory.Identifier{Type: inventory.IdentifierULID, Value: id.String()})
		}
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.String(tracing.AttrAssetID, asset.ID.String()))
	return s.upsert(ctx, asset), nil
}

// Upsert stores asset under its existing id.
func (s *Service) Upsert(ctx context.Context, asset inventory.Asset) (_ inventory.Asset, err error) {
	ctx, done := s.begin(ctx, tracing.SpanUpsert,
		attribute.String(tracing.AttrAssetID, asset.ID.String()),
		attribute.String(tracing.AttrAssetName, asset.Name))
	defer func() { done(err) }()

	if asset.ID == uuid.Nil {
		return inventory.Asset{}, ErrMissingID
	}
	return s.upsert(ctx, asset), nil
}

func (s *Service) upsert(ctx context.Context, asset inventory.Asset) inventory.Asset {
	stored := s.catalog.Upsert(asset)
	s.changed(ctx, pubsub.AssetUpserted, stored.ID)
	log.Debug(log.CatService, "asset upserted", "id", stored.ID, "name", stored.Name)
	return stored
}

// Delete removes an asset. Unknown ids are a no-op reported as false.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (inventory.Asset, bool) {
	ctx, done := s.begin(ctx, tracing.SpanDelete, attribute.String(tracing.AttrAssetID, id.String()))
	defer done(nil)

	removed, ok := s.catalog.Delete(id)
	if !ok {
		return inventory.Asset{}, false
	}
	s.changed(ctx, pubsub.AssetDeleted, id)
	log.Debug(log.CatService, "asset deleted", "id", id)
	return removed, true
}

// Get returns the asset with id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (inventory.Asset, bool) {
	_, done := s.begin(ctx, tracing.SpanGet, attribute.String(tracing.AttrAssetID, id.String()))
	defer done(nil)

	return s.catalog.Get(id)
}

// Resolve finds the asset carrying identifier (t, value). Values are
// compared normalized.
func (s *Service) Resolve(ctx context.Context, t inventory.IdentifierType, value string) (inventory.Asset, bool) {
	_, done := s.begin(ctx, tracing.SpanResolve, attribute.String(tracing.AttrIdentType, string(t)))
	defer done(nil)

	return s.catalog.GetByIdentifier(t, value)
}

// Lookup resolves ref as an asset id, then as a ULID identifier, then as a
// serial number.
func (s *Service) Lookup(ctx context.Context, ref string) (inventory.Asset, bool) {
	if id, err := uuid.Parse(ref); err == nil {
		if a, ok := s.Get(ctx, id); ok {
			return a, true
		}
	}
	if _, ok := ulid.Parse(ref); ok {
		if a, ok := s.Resolve(ctx, inventory.IdentifierULID, ref); ok {
			return a, true
		}
	}
	return s.Resolve(ctx, inventory.IdentifierSerialNumber, ref)
}

// List returns one page of the assets matching cr, ordered by id. Results
// are cached per generation unless cr carries a predicate.
func (s *Service) List(ctx context.Context, cr catalog.Criteria, offset, limit int) catalog.Page[inventory.Asset] {
	ctx, done := s.begin(ctx, tracing.SpanList,
		attribute.Int(tracing.AttrTagCount, len(cr.Tags)),
		attribute.Int(tracing.AttrOffset, offset),
		attribute.Int(tracing.AttrLimit, limit))
	defer done(nil)

	load := func(context.Context) (catalog.Page[inventory.Asset], error) {
		return catalog.Paginate(s.catalog.Search(cr), offset, limit), nil
	}

	var page catalog.Page[inventory.Asset]
	if s.lists == nil || cr.Match != nil {
		page, _ = load(ctx)
	} else {
		var hit bool
		page, hit, _ = s.lists.GetOrLoad(ctx, s.lists.Key(listKey(cr, offset, limit)...), load)
		s.metrics.CacheLookup("list", hit)
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool(tracing.AttrCacheHit, hit))
		page.Items = cloneAssets(page.Items)
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int(tracing.AttrResultCount, len(page.Items)))
	return page
}

func listKey(cr catalog.Criteria, offset, limit int) []string {
	tags := inventory.NormalizeTags(cr.Tags)
	tags = slices.Clone(tags)
	slices.Sort(tags)
	return []string{
		strings.Join(tags, ","),
		string(cr.Stage),
		cr.Source,
		strconv.Itoa(offset),
		strconv.Itoa(limit),
	}
}

func cloneAssets(assets []inventory.Asset) []inventory.Asset {
	if assets == nil {
		return nil
	}
	out := make([]inventory.Asset, len(assets))
	for i, a := range assets {
		out[i] = a.Clone()
	}
	return out
}
