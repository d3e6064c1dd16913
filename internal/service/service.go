// Package service owns the catalog for a process. It loads the document from
// a store, gates it on schema version, routes reads and writes through the
// catalog, and saves snapshots back.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/hoard/internal/cachemanager"
	"github.com/zjrosen/hoard/internal/catalog"
	"github.com/zjrosen/hoard/internal/flags"
	"github.com/zjrosen/hoard/internal/inventory"
	"github.com/zjrosen/hoard/internal/log"
	"github.com/zjrosen/hoard/internal/metrics"
	"github.com/zjrosen/hoard/internal/pubsub"
	"github.com/zjrosen/hoard/internal/store"
	"github.com/zjrosen/hoard/internal/tagregistry"
	"github.com/zjrosen/hoard/internal/tracing"
)

var (
	// ErrMissingID is returned by Upsert for an asset without an id.
	ErrMissingID = errors.New("asset has no id")
	// ErrEmptyMetadataKey is returned by SetMetadata for a blank key.
	ErrEmptyMetadataKey = errors.New("metadata key is empty")
)

// Change is the payload of every published event.
type Change struct {
	// AssetID is uuid.Nil for document-level events.
	AssetID    uuid.UUID
	Generation uint64
	Assets     int
}

// Options configures a Service. Only Store is required.
type Options struct {
	Store store.Store

	// Expected is the schema version this process reads. The zero value
	// means inventory.CurrentSchemaVersion.
	Expected          inventory.SchemaVersion
	AllowIncompatible bool

	// Broker receives change events. Nil disables publishing.
	Broker *pubsub.Broker[Change]

	Flags   *flags.Registry
	Tracer  trace.Tracer
	Metrics *metrics.Metrics

	// CacheTTL and CacheCleanup size the result caches. Zero uses the
	// cachemanager defaults.
	CacheTTL     time.Duration
	CacheCleanup time.Duration

	// Now and Entropy feed ULID generation.
	Now     func() time.Time
	Entropy io.Reader
}

// Service routes every catalog operation.
type Service struct {
	store             store.Store
	expected          inventory.SchemaVersion
	allowIncompatible bool

	catalog *catalog.Catalog
	broker  *pubsub.Broker[Change]
	flags   *flags.Registry
	tracer  trace.Tracer
	metrics *metrics.Metrics

	lists *cachemanager.Generational[catalog.Page[inventory.Asset]]
	evals *cachemanager.Generational[[]inventory.RelationshipEvaluation]

	tagsMu   sync.Mutex
	tags     *tagregistry.Registry
	autoTags map[string]string // lowercased tag -> domain, registered by syncTags

	now     func() time.Time
	entropy io.Reader
}

// New creates a service holding an empty catalog. Call Load to read the store.
func New(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("service requires a store")
	}

	s := &Service{
		store:             opts.Store,
		expected:          opts.Expected,
		allowIncompatible: opts.AllowIncompatible,
		catalog:           catalog.New(inventory.NewDocument()),
		broker:            opts.Broker,
		flags:             opts.Flags,
		tracer:            opts.Tracer,
		metrics:           opts.Metrics,
		tags:              tagregistry.New(),
		autoTags:          make(map[string]string),
		now:               opts.Now,
		entropy:           opts.Entropy,
	}
	if s.expected == (inventory.SchemaVersion{}) {
		s.expected = inventory.CurrentSchemaVersion
	}
	if s.flags == nil {
		s.flags = flags.New(nil)
	}
	if s.tracer == nil {
		s.tracer = tracing.Noop().Tracer()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.entropy == nil {
		s.entropy = rand.Reader
	}

	if s.flags.Enabled(flags.FlagResultCache) {
		ttl := opts.CacheTTL
		if ttl <= 0 {
			ttl = cachemanager.DefaultExpiration
		}
		cleanup := opts.CacheCleanup
		if cleanup <= 0 {
			cleanup = cachemanager.DefaultCleanupInterval
		}
		s.lists = cachemanager.NewGenerational[catalog.Page[inventory.Asset]](
			cachemanager.NewInMemoryCacheManager[string, catalog.Page[inventory.Asset]]("list", ttl, cleanup), ttl)
		s.evals = cachemanager.NewGenerational[[]inventory.RelationshipEvaluation](
			cachemanager.NewInMemoryCacheManager[string, []inventory.RelationshipEvaluation]("evaluate", ttl, cleanup), ttl)
	}

	return s, nil
}

// Catalog exposes the underlying catalog for read paths that need no
// caching or instrumentation.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Tags returns the tag registry. Integrations register handlers on it.
func (s *Service) Tags() *tagregistry.Registry {
	return s.tags
}

// Generation is the current result cache generation. It advances on every
// write.
func (s *Service) Generation() uint64 {
	if s.lists == nil {
		return 0
	}
	return s.lists.Generation()
}

// Load reads the store and replaces the catalog's document. A missing
// document yields an empty one at the current schema version. A document
// whose major version differs from the expected one is rejected unless
// AllowIncompatible is set.
func (s *Service) Load(ctx context.Context) (err error) {
	ctx, done := s.begin(ctx, tracing.SpanLoad)
	defer func() { done(err) }()

	doc, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Info(log.CatService, "no stored document, starting empty")
		doc = inventory.NewDocument()
	case err != nil:
		return fmt.Errorf("loading document: %w", err)
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String(tracing.AttrSchemaVersion, doc.SchemaVersion.String()))

	if err := inventory.CheckCompatible(doc.SchemaVersion, s.expected); err != nil {
		if !s.allowIncompatible {
			log.ErrorErr(log.CatService, "refusing incompatible document", err)
			return err
		}
		span.AddEvent(tracing.EventSchemaMismatch)
		log.Warn(log.CatService, "loading incompatible document",
			"expected", s.expected, "actual", doc.SchemaVersion)
	}

	s.catalog.ReplaceDocument(doc)
	s.changed(ctx, pubsub.DocumentReplaced, uuid.Nil)
	return nil
}

// Save persists the catalog snapshot.
func (s *Service) Save(ctx context.Context) (err error) {
	ctx, done := s.begin(ctx, tracing.SpanSave)
	defer func() { done(err) }()

	doc := s.catalog.SnapshotDocument()
	if err := s.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	s.publish(pubsub.DocumentSaved, uuid.Nil)
	log.Debug(log.CatService, "document saved", "assets", len(doc.Assets))
	return nil
}

// Snapshot returns the catalog's current document.
func (s *Service) Snapshot() inventory.Document {
	return s.catalog.SnapshotDocument()
}

// SetMetadata sets a document metadata entry. It is persisted on the next
// Save.
func (s *Service) SetMetadata(ctx context.Context, key, value string) (err error) {
	ctx, done := s.begin(ctx, tracing.SpanMetadata)
	defer func() { done(err) }()

	if strings.TrimSpace(key) == "" {
		return ErrEmptyMetadataKey
	}
	s.catalog.SetMetadata(key, value)
	s.changed(ctx, pubsub.MetadataUpdated, uuid.Nil)
	return nil
}

// begin opens a span and returns a func that ends it and records metrics.
func (s *Service) begin(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracing.Start(ctx, s.tracer, name, attrs...)
	return ctx, func(err error) {
		tracing.End(span, err)
		s.metrics.Observe(name, start, err)
	}
}

// changed runs after every write: drop cached results, refresh tag
// registrations and gauges, then notify subscribers.
func (s *Service) changed(ctx context.Context, event pubsub.EventType, id uuid.UUID) {
	if s.lists != nil {
		s.lists.Invalidate(ctx)
		s.evals.Invalidate(ctx)
	}
	s.syncTags()
	s.metrics.SetAssets(s.catalog.Len())
	s.metrics.SetGeneration(s.Generation())
	s.publish(event, id)
}

func (s *Service) publish(event pubsub.EventType, id uuid.UUID) {
	if s.broker == nil {
		return
	}
	s.broker.Publish(event, Change{
		AssetID:    id,
		Generation: s.Generation(),
		Assets:     s.catalog.Len(),
	})
}
