package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-blackhole-raymarcher/pkg/material"
)

// Format identifies a scene config file encoding
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the config format from a file extension
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported scene config extension %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}
}

// baseHeader reads only the preset name from a config document
type baseHeader struct {
	Base string `toml:"base" yaml:"base"`
}

// LoadFile reads a scene config file. The file names a base preset and
// overrides any of its fields; unknown keys are errors. A relative
// texture_path set in the file is resolved against the file's directory
// unless it names a procedural pattern.
func LoadFile(path string) (Scene, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return Scene{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("failed to read scene config: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s, err := Parse(data, format, stem)
	if err != nil {
		return Scene{}, fmt.Errorf("%s: %w", path, err)
	}

	if s.TexturePath != "" && !filepath.IsAbs(s.TexturePath) && !material.IsProceduralTexture(s.TexturePath) {
		base, _ := Preset(s.Base)
		if s.TexturePath != base.TexturePath {
			s.TexturePath = filepath.Join(filepath.Dir(path), s.TexturePath)
		}
	}
	return s, nil
}

// Parse decodes a config document on top of its base preset. defaultName
// names the scene when the document does not.
func Parse(data []byte, format Format, defaultName string) (Scene, error) {
	var header baseHeader
	if err := decode(data, format, &header, false); err != nil {
		return Scene{}, err
	}

	s, err := Preset(header.Base)
	if err != nil {
		return Scene{}, err
	}
	s.Base = strings.ToLower(strings.TrimSpace(header.Base))
	if s.Base == "" {
		s.Base = DefaultPreset
	}
	if defaultName != "" {
		s.Name = defaultName
	}

	if err := decode(data, format, &s, true); err != nil {
		return Scene{}, err
	}
	s.Base = strings.ToLower(strings.TrimSpace(s.Base))
	if s.Base == "" {
		s.Base = DefaultPreset
	}

	if err := s.Validate(); err != nil {
		return Scene{}, err
	}
	return s, nil
}

func decode(data []byte, format Format, v any, strict bool) error {
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		if strict {
			dec.DisallowUnknownFields()
		}
		if err := dec.Decode(v); err != nil {
			var missing *toml.StrictMissingError
			if errors.As(err, &missing) {
				return fmt.Errorf("unknown scene config keys:\n%s", missing.String())
			}
			return fmt.Errorf("invalid TOML scene config: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(strict)
		if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("invalid YAML scene config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported scene config format %q", format)
	}
	return nil
}

// Encode writes the scene as a complete config document
func Encode(w io.Writer, s Scene, format Format) error {
	switch format {
	case FormatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported scene config format %q", format)
	}
}
