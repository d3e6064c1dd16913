package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/zjrosen/hoard/internal/inventory"
)

// AssetModel represents a row of the assets table. The full asset is kept as
// a JSON payload; name, stage and source are copied into columns for ad-hoc
// SQL queries.
type AssetModel struct {
	ID      string
	Name    string
	Stage   *string // nullable
	Source  *string // nullable
	Payload string
	Tags    []string // asset_tags rows
}

// toAssetModel converts a domain Asset to an AssetModel.
func toAssetModel(a inventory.Asset) (*AssetModel, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode asset %s: %w", a.ID, err)
	}
	m := &AssetModel{
		ID:      a.ID.String(),
		Name:    a.Name,
		Payload: string(payload),
		Tags:    inventory.NormalizeTags(a.Tags),
	}
	if a.Stage != "" {
		stage := string(a.Stage)
		m.Stage = &stage
	}
	if a.Source != "" {
		source := a.Source
		m.Source = &source
	}
	return m, nil
}

// toDomain decodes the payload. The id column is authoritative.
func (m *AssetModel) toDomain() (inventory.Asset, error) {
	var a inventory.Asset
	if err := json.Unmarshal([]byte(m.Payload), &a); err != nil {
		return inventory.Asset{}, fmt.Errorf("failed to decode asset %s: %w", m.ID, err)
	}
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return inventory.Asset{}, fmt.Errorf("invalid asset id %q: %w", m.ID, err)
	}
	a.ID = id
	return a, nil
}
