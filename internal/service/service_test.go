package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/hoard/internal/catalog"
	"github.com/zjrosen/hoard/internal/inventory"
	"github.com/zjrosen/hoard/internal/metrics"
	"github.com/zjrosen/hoard/internal/pubsub"
	"github.com/zjrosen/hoard/internal/store"
	"github.com/zjrosen/hoard/internal/tracing"
	fixtures "github.com/zjrosen/hoard/internal/testutil"
)

type failingStore struct{ err error }

func (f failingStore) Load(context.Context) (inventory.Document, error) {
	return inventory.Document{}, f.err
}

func (f failingStore) Save(context.Context, inventory.Document) error { return f.err }

func workstation(t *testing.T) inventory.Document {
	t.Helper()
	return fixtures.NewBuilder(t).WithWorkstationTestData().Build()
}

// newLoaded returns a service over a memory store seeded with the workstation
// fixture, already loaded.
func newLoaded(t *testing.T, opts Options) (*Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory(workstation(t))
	opts.Store = mem
	svc, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, svc.Load(context.Background()))
	return svc, mem
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestLoad_EmptyStore(t *testing.T) {
	svc, err := New(Options{Store: store.NewMemory()})
	require.NoError(t, err)
	require.NoError(t, svc.Load(context.Background()))

	require.Equal(t, 0, svc.Catalog().Len())
	require.Equal(t, inventory.CurrentSchemaVersion, svc.Snapshot().SchemaVersion)
}

func TestLoad_Workstation(t *testing.T) {
	svc, _ := newLoaded(t, Options{})

	require.Equal(t, 6, svc.Catalog().Len())
	kb, ok := svc.Get(context.Background(), fixtures.ID("keyboard"))
	require.True(t, ok)
	require.Equal(t, "Keyboard", kb.Name)
}

func TestLoad_SchemaGate(t *testing.T) {
	tests := []struct {
		name       string
		version    string
		allow      bool
		wantErr    bool
		wantAssets int
	}{
		{name: "same version", version: "1.0.0", wantAssets: 1},
		{name: "newer minor", version: "1.4.2", wantAssets: 1},
		{name: "prerelease of same major", version: "1.0.0-beta", wantAssets: 1},
		{name: "newer major rejected", version: "2.0.0", wantErr: true},
		{name: "older major rejected", version: "0.9.0", wantErr: true},
		{name: "newer major allowed", version: "2.0.0", allow: true, wantAssets: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := fixtures.NewBuilder(t).
				WithSchemaVersion(tt.version).
				WithAsset("thing", fixtures.Name("Thing")).
				Build()

			svc, err := New(Options{Store: store.NewMemory(doc), AllowIncompatible: tt.allow})
			require.NoError(t, err)

			err = svc.Load(context.Background())
			if tt.wantErr {
				require.ErrorIs(t, err, inventory.ErrSchemaIncompatible)
				var incompatible *inventory.SchemaIncompatibleError
				require.True(t, errors.As(err, &incompatible))
				require.Equal(t, inventory.CurrentSchemaVersion, incompatible.Expected)
				require.Equal(t, 0, svc.Catalog().Len(), "catalog untouched")
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantAssets, svc.Catalog().Len())
		})
	}
}

func TestLoad_ExpectedVersionOverride(t *testing.T) {
	doc := fixtures.NewBuilder(t).WithSchemaVersion("2.1.0").Build()
	svc, err := New(Options{
		Store:    store.NewMemory(doc),
		Expected: inventory.MustParseSchemaVersion("2.0.0"),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Load(context.Background()))
}

func TestLoad_StoreError(t *testing.T) {
	boom := errors.New("disk on fire")
	svc, err := New(Options{Store: failingStore{err: boom}})
	require.NoError(t, err)

	err = svc.Load(context.Background())
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "loading document")
}

func TestSave_PersistsSnapshot(t *testing.T) {
	svc, mem := newLoaded(t, Options{})
	ctx := context.Background()

	_, ok := svc.Delete(ctx, fixtures.ID("drawer"))
	require.True(t, ok)
	require.NoError(t, svc.Save(ctx))

	require.Equal(t, 1, mem.Saves())
	saved, err := mem.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, svc.Snapshot(), saved)
	require.Len(t, saved.Assets, 5)
}

func TestSave_StoreError(t *testing.T) {
	boom := errors.New("read-only")
	svc, err := New(Options{Store: failingStore{err: boom}})
	require.NoError(t, err)
	require.ErrorIs(t, svc.Save(context.Background()), boom)
}

func TestEvents_PublishedOnWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := pubsub.NewBroker[Change]()
	events := broker.Subscribe(ctx)

	svc, _ := newLoaded(t, Options{Broker: broker})

	replaced := <-events
	require.Equal(t, pubsub.DocumentReplaced, replaced.Type)
	require.Equal(t, 6, replaced.Payload.Assets)

	added, err := svc.AddAsset(ctx, inventory.Asset{Name: "Mouse", Tags: []string{"usb"}})
	require.NoError(t, err)
	upserted := <-events
	require.Equal(t, pubsub.AssetUpserted, upserted.Type)
	require.Equal(t, added.ID, upserted.Payload.AssetID)
	require.Equal(t, 7, upserted.Payload.Assets)
	require.Greater(t, upserted.Payload.Generation, replaced.Payload.Generation)

	svc.Delete(ctx, added.ID)
	deleted := <-events
	require.Equal(t, pubsub.AssetDeleted, deleted.Type)
	require.Equal(t, added.ID, deleted.Payload.AssetID)

	require.NoError(t, svc.Save(ctx))
	saved := <-events
	require.Equal(t, pubsub.DocumentSaved, saved.Type)
}

func TestSetMetadata(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := pubsub.NewBroker[Change]()
	svc, mem := newLoaded(t, Options{Broker: broker})
	events := broker.Subscribe(ctx)

	require.ErrorIs(t, svc.SetMetadata(ctx, " ", "x"), ErrEmptyMetadataKey)

	require.NoError(t, svc.SetMetadata(ctx, "owner", "sam"))
	ev := <-events
	require.Equal(t, pubsub.MetadataUpdated, ev.Type)
	require.Equal(t, "sam", svc.Snapshot().Metadata["owner"])

	require.NoError(t, svc.Save(ctx))
	saved, err := mem.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "sam", saved.Metadata["owner"])
}

func TestEvents_NoneForMissingDelete(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := pubsub.NewBroker[Change]()
	svc, _ := newLoaded(t, Options{Broker: broker})
	gen := svc.Generation()

	events := broker.Subscribe(ctx)
	_, ok := svc.Delete(ctx, fixtures.ID("nope"))
	require.False(t, ok)
	require.Equal(t, gen, svc.Generation())

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %s", ev.Type)
	default:
	}
}

func TestTracing_SpansPerOperation(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	svc, _ := newLoaded(t, Options{Tracer: tp.Tracer("test")})
	svc.Get(context.Background(), fixtures.ID("ram"))
	svc.Evaluate(context.Background(), fixtures.ID("keyboard"))

	var names []string
	for _, s := range sr.Ended() {
		names = append(names, s.Name())
	}
	require.Equal(t, []string{tracing.SpanLoad, tracing.SpanGet, tracing.SpanEvaluate}, names)
}

func TestTracing_LoadErrorRecorded(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	doc := fixtures.NewBuilder(t).WithSchemaVersion("3.0.0").Build()
	svc, err := New(Options{Store: store.NewMemory(doc), Tracer: tp.Tracer("test")})
	require.NoError(t, err)
	require.Error(t, svc.Load(context.Background()))

	ended := sr.Ended()
	require.Len(t, ended, 1)
	require.Equal(t, "ERROR", tracing.NewSpanRecord(ended[0]).Status)
}

func TestMetrics_Recorded(t *testing.T) {
	m := metrics.New()
	svc, _ := newLoaded(t, Options{Metrics: m})
	ctx := context.Background()

	svc.List(ctx, catalog.Criteria{Tags: []string{"usb"}}, 0, 10)
	svc.List(ctx, catalog.Criteria{Tags: []string{"usb"}}, 0, 10)

	count, err := testutil.GatherAndCount(m.Registry(), "hoard_operations_total")
	require.NoError(t, err)
	require.Equal(t, 2, count, "load and list series")

	expected := `
# HELP hoard_catalog_assets Number of assets currently held by the catalog
# TYPE hoard_catalog_assets gauge
hoard_catalog_assets 6
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "hoard_catalog_assets"))

	hits, err := testutil.GatherAndCount(m.Registry(), "hoard_cache_hits_total")
	require.NoError(t, err)
	require.Equal(t, 1, hits)
}
