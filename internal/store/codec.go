package store

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/hoard/internal/inventory"
)

// Format names a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Codec encodes and decodes documents in one format.
type Codec interface {
	Format() Format
	Encode(w io.Writer, doc inventory.Document) error
	Decode(r io.Reader) (inventory.Document, error)
}

// FormatForPath picks a format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// CodecFor returns the codec for format.
func CodecFor(format Format) (Codec, error) {
	switch format {
	case FormatYAML:
		return yamlCodec{}, nil
	case FormatJSON:
		return jsonCodec{}, nil
	case FormatTOML:
		return tomlCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

type yamlCodec struct{}

func (yamlCodec) Format() Format { return FormatYAML }

func (yamlCodec) Encode(w io.Writer, doc inventory.Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func (yamlCodec) Decode(r io.Reader) (inventory.Document, error) {
	var doc inventory.Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return inventory.NewDocument(), nil
		}
		return inventory.Document{}, fmt.Errorf("decoding yaml: %w", err)
	}
	return doc, nil
}

type jsonCodec struct{}

func (jsonCodec) Format() Format { return FormatJSON }

func (jsonCodec) Encode(w io.Writer, doc inventory.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func (jsonCodec) Decode(r io.Reader) (inventory.Document, error) {
	var doc inventory.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return inventory.Document{}, fmt.Errorf("decoding json: %w", err)
	}
	return doc, nil
}

type tomlCodec struct{}

func (tomlCodec) Format() Format { return FormatTOML }

func (tomlCodec) Encode(w io.Writer, doc inventory.Document) error {
	if err := toml.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encoding toml: %w", err)
	}
	return nil
}

func (tomlCodec) Decode(r io.Reader) (inventory.Document, error) {
	var doc inventory.Document
	if err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return inventory.Document{}, fmt.Errorf("decoding toml: %w", err)
	}
	return doc, nil
}
