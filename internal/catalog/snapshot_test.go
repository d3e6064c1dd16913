package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/hoard/internal/inventory"
	"github.com/zjrosen/hoard/internal/testutil"
)

func TestSnapshotDocument(t *testing.T) {
	doc := testutil.NewBuilder(t).
		WithSchemaVersion("1.1.0").
		WithMetadata("owner", "sam").
		WithWorkstationTestData().
		Build()
	c := New(doc)

	snap := c.SnapshotDocument()
	require.Equal(t, "1.1.0", snap.SchemaVersion.String())
	require.Equal(t, map[string]string{"owner": "sam"}, snap.Metadata)
	require.Len(t, snap.Assets, len(doc.Assets))
	require.Len(t, snap.RelationshipTypes, 3)

	for i := 1; i < len(snap.Assets); i++ {
		require.Less(t, snap.Assets[i-1].ID.String(), snap.Assets[i].ID.String())
	}

	// A snapshot rebuilt into a fresh catalog yields the same snapshot.
	require.Equal(t, snap, New(snap).SnapshotDocument())
}

func TestSnapshotDocument_Empty(t *testing.T) {
	snap := New(inventory.NewDocument()).SnapshotDocument()
	require.Nil(t, snap.Assets)
	require.Nil(t, snap.RelationshipTypes)
	require.Equal(t, inventory.CurrentSchemaVersion, snap.SchemaVersion)
}

func TestSnapshotDocument_IsolatedFromCatalog(t *testing.T) {
	c := New(inventory.NewDocument())
	c.Upsert(inventory.Asset{ID: uuid.New(), Tags: []string{"a"}})
	c.SetMetadata("k", "v")

	snap := c.SnapshotDocument()
	snap.Assets[0].Tags[0] = "changed"
	snap.Metadata["k"] = "changed"

	again := c.SnapshotDocument()
	require.Equal(t, []string{"a"}, again.Assets[0].Tags)
	require.Equal(t, "v", again.Metadata["k"])
}
