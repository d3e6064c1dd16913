package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/hoard/internal/catalog"
	"github.com/zjrosen/hoard/internal/flags"
	"github.com/zjrosen/hoard/internal/inventory"
	"github.com/zjrosen/hoard/internal/store"
	fixtures "github.com/zjrosen/hoard/internal/testutil"
	"github.com/zjrosen/hoard/internal/ulid"
)

func names(assets []inventory.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.Name
	}
	return out
}

func TestAddAsset_AssignsIDAndULID(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, err := New(Options{
		Store:   store.NewMemory(),
		Now:     func() time.Time { return now },
		Entropy: bytes.NewReader(bytes.Repeat([]byte{0xAB}, 10)),
	})
	require.NoError(t, err)

	added, err := svc.AddAsset(context.Background(), inventory.Asset{Name: "Walkman"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, added.ID)

	ident, ok := added.Identifier(inventory.IdentifierULID)
	require.True(t, ok)
	id, ok := ulid.Parse(ident.Value)
	require.True(t, ok)
	require.Equal(t, uint64(now.UnixMilli()), id.Time())

	byULID, ok := svc.Resolve(context.Background(), inventory.IdentifierULID, ident.Value)
	require.True(t, ok)
	require.Equal(t, added.ID, byULID.ID)
}

func TestAddAsset_KeepsGivenIDAndULID(t *testing.T) {
	svc, err := New(Options{Store: store.NewMemory()})
	require.NoError(t, err)

	given := inventory.Asset{
		ID:          fixtures.ID("walkman"),
		Identifiers: []inventory.Identifier{{Type: inventory.IdentifierULID, Value: "05B3VWV4G40G40R40M30E20918"}},
	}
	added, err := svc.AddAsset(context.Background(), given)
	require.NoError(t, err)
	require.Equal(t, given.ID, added.ID)
	require.Len(t, added.Identifiers, 1)
}

func TestAddAsset_AutoULIDDisabled(t *testing.T) {
	svc, err := New(Options{
		Store: store.NewMemory(),
		Flags: flags.New(map[string]bool{flags.FlagAutoULID: false}),
	})
	require.NoError(t, err)

	added, err := svc.AddAsset(context.Background(), inventory.Asset{Name: "Walkman"})
	require.NoError(t, err)
	require.Empty(t, added.Identifiers)
}

func TestAddAsset_EntropyFailure(t *testing.T) {
	svc, err := New(Options{Store: store.NewMemory(), Entropy: bytes.NewReader(nil)})
	require.NoError(t, err)

	_, err = svc.AddAsset(context.Background(), inventory.Asset{Name: "Walkman"})
	require.ErrorIs(t, err, ulid.ErrEntropy)
	require.Equal(t, 0, svc.Catalog().Len())
}

func TestUpsert(t *testing.T) {
	svc, _ := newLoaded(t, Options{})
	ctx := context.Background()

	_, err := svc.Upsert(ctx, inventory.Asset{Name: "anonymous"})
	require.ErrorIs(t, err, ErrMissingID)

	kb, _ := svc.Get(ctx, fixtures.ID("keyboard"))
	kb.Name = "Model M"
	stored, err := svc.Upsert(ctx, kb)
	require.NoError(t, err)
	require.Equal(t, "Model M", stored.Name)
	require.Equal(t, 6, svc.Catalog().Len())
}

func TestLookup(t *testing.T) {
	svc, _ := newLoaded(t, Options{})
	ctx := context.Background()

	byID, ok := svc.Lookup(ctx, fixtures.ID("monitor").String())
	require.True(t, ok)
	require.Equal(t, "Monitor", byID.Name)

	bySerial, ok := svc.Lookup(ctx, "  pc-0001 ")
	require.True(t, ok)
	require.Equal(t, "Computer", bySerial.Name)

	added, err := svc.AddAsset(ctx, inventory.Asset{Name: "Tape"})
	require.NoError(t, err)
	ident, _ := added.Identifier(inventory.IdentifierULID)
	byULID, ok := svc.Lookup(ctx, ident.Value)
	require.True(t, ok)
	require.Equal(t, added.ID, byULID.ID)

	_, ok = svc.Lookup(ctx, "nothing")
	require.False(t, ok)
}

func TestList_Pages(t *testing.T) {
	svc, _ := newLoaded(t, Options{})
	ctx := context.Background()

	first := svc.List(ctx, catalog.Criteria{}, 0, 4)
	require.Len(t, first.Items, 4)
	require.Equal(t, 6, first.Total)
	require.True(t, first.HasMore())

	second := svc.List(ctx, catalog.Criteria{}, *first.NextOffset, 4)
	require.Len(t, second.Items, 2)
	require.False(t, second.HasMore())
}

func TestList_CacheInvalidatedOnWrite(t *testing.T) {
	svc, _ := newLoaded(t, Options{})
	ctx := context.Background()
	usb := catalog.Criteria{Tags: []string{"usb"}}

	require.ElementsMatch(t, []string{"Computer", "Keyboard"}, names(svc.List(ctx, usb, 0, 10).Items))
	gen := svc.Generation()

	_, err := svc.AddAsset(ctx, inventory.Asset{Name: "Mouse", Tags: []string{"usb"}})
	require.NoError(t, err)
	require.Greater(t, svc.Generation(), gen)

	require.ElementsMatch(t, []string{"Computer", "Keyboard", "Mouse"}, names(svc.List(ctx, usb, 0, 10).Items))
}

func TestList_ReturnsCopies(t *testing.T) {
	svc, _ := newLoaded(t, Options{})
	ctx := context.Background()
	cr := catalog.Criteria{Tags: []string{"type:computer"}}

	page := svc.List(ctx, cr, 0, 10)
	require.Len(t, page.Items, 1)
	page.Items[0].Tags[0] = "mutated"

	again := svc.List(ctx, cr, 0, 10)
	require.Equal(t, "type:computer", again.Items[0].Tags[0])
}

func TestList_PredicateAndCacheDisabled(t *testing.T) {
	for _, cacheOn := range []bool{true, false} {
		svc, _ := newLoaded(t, Options{Flags: flags.New(map[string]bool{flags.FlagResultCache: cacheOn})})
		ctx := context.Background()

		owned := catalog.Criteria{Match: func(a inventory.Asset) bool { return a.Stage == inventory.StageOwned }}
		require.Equal(t, 4, svc.List(ctx, owned, 0, 10).Total)

		ebay := catalog.Criteria{Source: "ebay"}
		require.ElementsMatch(t, []string{"Keyboard", "Drawer"}, names(svc.List(ctx, ebay, 0, 10).Items))
	}
}

func TestListKey_TagOrderInsensitive(t *testing.T) {
	a := listKey(catalog.Criteria{Tags: []string{"b", "a", "a"}}, 0, 5)
	b := listKey(catalog.Criteria{Tags: []string{" a", "b"}}, 0, 5)
	require.Equal(t, a, b)
	require.NotEqual(t, a, listKey(catalog.Criteria{Tags: []string{"a", "b"}}, 5, 5))
}
