package presentation

import (
	"github.com/zjrosen/hoard/internal/catalog"
	"github.com/zjrosen/hoard/internal/inventory"
)

// AssetDTO represents an asset for presentation
type AssetDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Stage       string          `json:"stage,omitempty"`
	Source      string          `json:"source,omitempty"`
	Contents    string          `json:"contents,omitempty"`
	Tags        []string        `json:"tags"`
	Identifiers []IdentifierDTO `json:"identifiers,omitempty"`
	Components  []string        `json:"components,omitempty"`
	Links       []LinkDTO       `json:"links,omitempty"`
}

// IdentifierDTO represents one typed identifier
type IdentifierDTO struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// LinkDTO represents a link to another asset
type LinkDTO struct {
	AssetID string `json:"asset_id"`
	TypeID  string `json:"type_id"`
	Note    string `json:"note,omitempty"`
}

// PageDTO wraps one page of assets with its pagination state.
type PageDTO struct {
	Assets     []AssetDTO `json:"assets"`
	Offset     int        `json:"offset"`
	Limit      int        `json:"limit"`
	Total      int        `json:"total"`
	NextOffset *int       `json:"next_offset"` // null on the last page
}

// EvaluationDTO represents one requirement check
type EvaluationDTO struct {
	Requirement string `json:"requirement"`
	TypeID      string `json:"type_id"`
	Required    bool   `json:"required"`
	Status      string `json:"status"`
	OK          bool   `json:"ok"`
	Message     string `json:"message"`
}

// TagDTO represents a tag with its usage count and handler domain. Stored
// is the persisted count, known only for the sqlite backend.
type TagDTO struct {
	Tag    string `json:"tag"`
	Count  int    `json:"count"`
	Stored *int   `json:"stored,omitempty"`
	Domain string `json:"domain,omitempty"`
}

// FromAsset converts an asset to a DTO.
func FromAsset(a inventory.Asset) AssetDTO {
	dto := AssetDTO{
		ID:     a.ID.String(),
		Name:   a.Name,
		Stage:  string(a.Stage),
		Source: a.Source,
		Tags:   a.Tags,
	}
	if a.Contents != 0 {
		dto.Contents = a.Contents.String()
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	for _, id := range a.Identifiers {
		dto.Identifiers = append(dto.Identifiers, IdentifierDTO{Type: string(id.Type), Value: id.Value})
	}
	for _, c := range a.Components {
		dto.Components = append(dto.Components, c.String())
	}
	for _, l := range a.LinkedAssets {
		dto.Links = append(dto.Links, LinkDTO{AssetID: l.AssetID.String(), TypeID: l.TypeID, Note: l.Note})
	}
	return dto
}

// FromAssets converts a list of assets, never returning nil.
func FromAssets(assets []inventory.Asset) []AssetDTO {
	out := make([]AssetDTO, 0, len(assets))
	for _, a := range assets {
		out = append(out, FromAsset(a))
	}
	return out
}

// FromPage converts a catalog page.
func FromPage(p catalog.Page[inventory.Asset]) PageDTO {
	return PageDTO{
		Assets:     FromAssets(p.Items),
		Offset:     p.Offset,
		Limit:      p.Limit,
		Total:      p.Total,
		NextOffset: p.NextOffset,
	}
}

// FromEvaluations converts requirement evaluations, never returning nil.
func FromEvaluations(evals []inventory.RelationshipEvaluation) []EvaluationDTO {
	out := make([]EvaluationDTO, 0, len(evals))
	for _, e := range evals {
		name := e.Requirement.Name
		if name == "" {
			name = e.Requirement.TypeID
		}
		out = append(out, EvaluationDTO{
			Requirement: name,
			TypeID:      e.Requirement.TypeID,
			Required:    e.Requirement.Required,
			Status:      string(e.Status),
			OK:          e.Status.OK(),
			Message:     e.Message,
		})
	}
	return out
}
