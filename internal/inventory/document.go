package inventory

import "maps"

// Document is the unit of load, snapshot and persistence.
type Document struct {
	SchemaVersion     SchemaVersion      `json:"schema_version" yaml:"schema_version" toml:"schema_version"`
	Metadata          map[string]string  `json:"metadata,omitempty" yaml:"metadata,omitempty" toml:"metadata,omitempty"`
	RelationshipTypes []RelationshipType `json:"relationship_types,omitempty" yaml:"relationship_types,omitempty" toml:"relationship_types,omitempty"`
	Assets            []Asset            `json:"assets,omitempty" yaml:"assets,omitempty" toml:"assets,omitempty"`
}

// NewDocument returns an empty document at CurrentSchemaVersion.
func NewDocument() Document {
	return Document{SchemaVersion: CurrentSchemaVersion}
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := Document{
		SchemaVersion: d.SchemaVersion,
		Metadata:      maps.Clone(d.Metadata),
	}
	if d.RelationshipTypes != nil {
		out.RelationshipTypes = append([]RelationshipType(nil), d.RelationshipTypes...)
	}
	if d.Assets != nil {
		out.Assets = make([]Asset, len(d.Assets))
		for i, a := range d.Assets {
			out.Assets[i] = a.Clone()
		}
	}
	return out
}
