package sqlite

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/hoard/internal/inventory"
	"github.com/zjrosen/hoard/internal/store"
	"github.com/zjrosen/hoard/internal/testutil"
)

func sortedByID(doc inventory.Document) inventory.Document {
	out := doc.Clone()
	slices.SortFunc(out.Assets, func(a, b inventory.Asset) int {
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

func TestDocumentStore_LoadEmpty(t *testing.T) {
	s := setupTestDB(t).DocumentStore()

	_, err := s.Load(context.Background())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDocumentStore_RoundTrip(t *testing.T) {
	s := setupTestDB(t).DocumentStore()
	doc := testutil.NewBuilder(t).
		WithSchemaVersion("1.3.0-beta+exp.sha.5114f85").
		WithMetadata("owner", "sam").
		WithMetadata("location", "attic").
		WithWorkstationTestData().
		Build()

	require.NoError(t, s.Save(context.Background(), doc))

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, sortedByID(doc), loaded)
}

func TestDocumentStore_SaveReplaces(t *testing.T) {
	s := setupTestDB(t).DocumentStore()
	ctx := context.Background()

	first := testutil.NewBuilder(t).WithWorkstationTestData().WithMetadata("k", "v").Build()
	require.NoError(t, s.Save(ctx, first))

	second := testutil.NewBuilder(t).
		WithSchemaVersion("2.0.0").
		WithAsset("lamp", testutil.Tags("light")).
		Build()
	require.NoError(t, s.Save(ctx, second))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, second, loaded)
	require.Nil(t, loaded.Metadata)
	require.Nil(t, loaded.RelationshipTypes)

	n, err := s.CountByTag(ctx, "usb")
	require.NoError(t, err)
	require.Zero(t, n)
	n, err = s.CountByTag(ctx, "light")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestDocumentStore_FacetColumns(t *testing.T) {
	db := setupTestDB(t)
	s := db.DocumentStore()
	doc := testutil.NewBuilder(t).WithWorkstationTestData().Build()
	require.NoError(t, s.Save(context.Background(), doc))

	var stage, source string
	err := db.conn.QueryRow(`SELECT stage, source FROM assets WHERE id = ?`, testutil.ID("drawer").String()).Scan(&stage, &source)
	require.NoError(t, err)
	require.Equal(t, "wishlist", stage)
	require.Equal(t, "ebay", source)

	n, err := s.CountByTag(context.Background(), "usb")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

// TestDocumentStore_RoundTripProperty saves random documents and reloads them.
func TestDocumentStore_RoundTripProperty(t *testing.T) {
	s := setupTestDB(t).DocumentStore()

	rapid.Check(t, func(r *rapid.T) {
		doc := inventory.NewDocument()
		n := rapid.IntRange(0, 8).Draw(r, "assets")
		for i := range n {
			asset := inventory.Asset{
				ID:   uuid.New(),
				Name: fmt.Sprintf("asset-%d", i),
				Tags: rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,6}`), 0, 4, rapid.ID[string]).Draw(r, "tags"),
			}
			if len(asset.Tags) == 0 {
				asset.Tags = nil
			}
			doc.Assets = append(doc.Assets, asset)
		}

		require.NoError(r, s.Save(context.Background(), doc))
		loaded, err := s.Load(context.Background())
		require.NoError(r, err)
		require.Equal(r, sortedByID(doc), loaded)
	})
}
