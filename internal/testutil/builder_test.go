package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/hoard/internal/inventory"
)

func TestBuilder_WithAsset(t *testing.T) {
	doc := NewBuilder(t).
		WithAsset("asset-1").
		Build()

	require.Len(t, doc.Assets, 1)
	require.Equal(t, ID("asset-1"), doc.Assets[0].ID)
	require.Equal(t, "asset-1", doc.Assets[0].Name) // default name is the key
	require.Equal(t, inventory.CurrentSchemaVersion, doc.SchemaVersion)
}

func TestBuilder_WithAsset_AllOptions(t *testing.T) {
	doc := NewBuilder(t).
		WithAsset("host").
		WithAsset("part").
		WithAsset("device",
			Name("Device"),
			Tags("a", "b"),
			Serial("SN-1"),
			Stage(inventory.StageLent),
			Source("ebay"),
			LinkedToWithNote("host", "connects-to", "rear port"),
			Component("part"),
			Requires("Host", "connects-to", CompatibleWith("host"), RequiringTags("usb")),
			Wants("Case", "stored-in"),
		).
		Build()

	device := doc.Assets[2]
	require.Equal(t, "Device", device.Name)
	require.Equal(t, []string{"a", "b"}, device.Tags)
	require.Equal(t, []inventory.Identifier{{Type: inventory.IdentifierSerialNumber, Value: "SN-1"}}, device.Identifiers)
	require.Equal(t, inventory.StageLent, device.Stage)
	require.Equal(t, "ebay", device.Source)
	require.Equal(t, []inventory.LinkedAsset{{AssetID: ID("host"), TypeID: "connects-to", Note: "rear port"}}, device.LinkedAssets)
	require.Equal(t, ID("part"), device.Components[0])

	require.Len(t, device.Requirements, 2)
	require.True(t, device.Requirements[0].Required)
	require.Equal(t, ID("host"), device.Requirements[0].CompatibleAssetIDs[0])
	require.Equal(t, []string{"usb"}, device.Requirements[0].RequiredTags)
	require.False(t, device.Requirements[1].Required)
}

func TestID_Deterministic(t *testing.T) {
	require.Equal(t, ID("x"), ID("x"))
	require.NotEqual(t, ID("x"), ID("y"))
}

func TestBuilder_WithSchemaVersion(t *testing.T) {
	doc := NewBuilder(t).WithSchemaVersion("2.1.0-beta").WithMetadata("owner", "me").Build()
	require.Equal(t, "2.1.0-beta", doc.SchemaVersion.String())
	require.Equal(t, "me", doc.Metadata["owner"])
}

func TestWithWorkstationTestData(t *testing.T) {
	b := NewBuilder(t).WithWorkstationTestData()
	doc := b.Build()

	require.Len(t, doc.Assets, 6)
	require.Len(t, doc.RelationshipTypes, 3)

	assets := b.Assets()
	require.Equal(t, ID("computer"), assets["keyboard"].LinkedAssets[0].AssetID)
	require.Equal(t, []string{"usb"}, assets["keyboard"].Requirements[0].RequiredTags)
}
