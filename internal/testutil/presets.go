package testutil

import "github.com/zjrosen/hoard/internal/inventory"

// Relationship type ids used by the presets.
const (
	RelConnectsTo = "connects-to"
	RelPoweredBy  = "powered-by"
	RelStoredIn   = "stored-in"
)

// WithWorkstationTestData adds a small desk setup.
//
// Structure:
//
//	keyboard --connects-to--> computer (usb)
//	         --powered-by-->  (nothing, optional)
//	monitor  --connects-to--> computer, requires tag "hdmi"
//	computer embeds ssd, ram
//	drawer   (wishlist, ebay)
func (b *Builder) WithWorkstationTestData() *Builder {
	return b.
		WithRelationshipType(RelConnectsTo, "Connects To").
		WithRelationshipType(RelPoweredBy, "Powered By").
		WithRelationshipType(RelStoredIn, "Stored In").
		WithAsset("computer",
			Name("Computer"),
			Tags("type:computer", "usb", "owned"),
			Serial("PC-0001"),
			Stage(inventory.StageOwned), Source("retail"),
			Component("ssd"), Component("ram")).
		WithAsset("ssd",
			Name("SSD"), Tags("type:storage", "nvme"),
			Stage(inventory.StageOwned), Source("retail")).
		WithAsset("ram",
			Name("RAM"), Tags("type:memory"),
			Stage(inventory.StageOwned), Source("retail")).
		WithAsset("keyboard",
			Name("Keyboard"),
			Tags("type:keyboard", "usb", "owned"),
			Serial("KB-42"),
			Stage(inventory.StageOwned), Source("ebay"),
			LinkedTo("computer", RelConnectsTo),
			Requires("Host", RelConnectsTo, RequiringTags("usb")),
			Wants("Power", RelPoweredBy)).
		WithAsset("monitor",
			Name("Monitor"),
			Tags("type:display"),
			Stage(inventory.StageLent), Source("retail"),
			LinkedTo("computer", RelConnectsTo),
			Requires("Source", RelConnectsTo, RequiringTags("hdmi"))).
		WithAsset("drawer",
			Name("Drawer"),
			Tags("type:furniture"),
			Stage(inventory.StageWishlist), Source("ebay"))
}
