package testutil

import (
	"github.com/zjrosen/hoard/internal/inventory"
)

// linkData is a link to another builder asset, resolved at Build time.
type linkData struct {
	key    string
	typeID string
	note   string
}

// requirementData is a requirement whose compatible assets are builder keys.
type requirementData struct {
	name           string
	typeID         string
	required       bool
	compatibleKeys []string
	requiredTags   []string
}

// assetData holds everything needed to build one asset.
type assetData struct {
	key          string
	name         string
	identifiers  []inventory.Identifier
	tags         []string
	stage        inventory.LifecycleStage
	source       string
	links        []linkData
	components   []string
	requirements []requirementData
}

// defaultAsset returns an assetData named after its key.
func defaultAsset(key string) assetData {
	return assetData{
		key:  key,
		name: key, // Default name is the key
	}
}

// AssetOption configures an asset during builder setup.
type AssetOption func(*assetData)

// Name sets the asset name.
func Name(name string) AssetOption {
	return func(a *assetData) { a.name = name }
}

// Tags adds tags.
func Tags(tags ...string) AssetOption {
	return func(a *assetData) { a.tags = append(a.tags, tags...) }
}

// Ident adds an identifier.
func Ident(t inventory.IdentifierType, value string) AssetOption {
	return func(a *assetData) {
		a.identifiers = append(a.identifiers, inventory.Identifier{Type: t, Value: value})
	}
}

// Serial adds a serial-number identifier.
func Serial(value string) AssetOption {
	return Ident(inventory.IdentifierSerialNumber, value)
}

// Stage sets the lifecycle stage.
func Stage(stage inventory.LifecycleStage) AssetOption {
	return func(a *assetData) { a.stage = stage }
}

// Source sets the source origin.
func Source(source string) AssetOption {
	return func(a *assetData) { a.source = source }
}

// LinkedTo links the asset to the builder asset with key.
func LinkedTo(key, typeID string) AssetOption {
	return func(a *assetData) { a.links = append(a.links, linkData{key: key, typeID: typeID}) }
}

// LinkedToWithNote links the asset with an annotation.
func LinkedToWithNote(key, typeID, note string) AssetOption {
	return func(a *assetData) { a.links = append(a.links, linkData{key: key, typeID: typeID, note: note}) }
}

// Component embeds the builder asset with key as a component.
func Component(key string) AssetOption {
	return func(a *assetData) { a.components = append(a.components, key) }
}

// RequirementOption configures a requirement.
type RequirementOption func(*requirementData)

// CompatibleWith restricts the requirement to the builder assets with keys.
func CompatibleWith(keys ...string) RequirementOption {
	return func(r *requirementData) { r.compatibleKeys = append(r.compatibleKeys, keys...) }
}

// RequiringTags makes the requirement demand tags on the related asset.
func RequiringTags(tags ...string) RequirementOption {
	return func(r *requirementData) { r.requiredTags = append(r.requiredTags, tags...) }
}

// Requires adds a required relationship requirement.
func Requires(name, typeID string, opts ...RequirementOption) AssetOption {
	return requirement(name, typeID, true, opts)
}

// Wants adds an optional relationship requirement.
func Wants(name, typeID string, opts ...RequirementOption) AssetOption {
	return requirement(name, typeID, false, opts)
}

func requirement(name, typeID string, required bool, opts []RequirementOption) AssetOption {
	return func(a *assetData) {
		r := requirementData{name: name, typeID: typeID, required: required}
		for _, opt := range opts {
			opt(&r)
		}
		a.requirements = append(a.requirements, r)
	}
}
