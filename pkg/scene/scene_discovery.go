package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	builtinGroup = "Built-in Scenes"
	configGroup  = "Config Scenes"
	configPrefix = "config:"
)

// SceneDirs are searched, in order, for scene config files
var SceneDirs = []string{"scenes", "../scenes"}

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "config"
	FilePath    string `json:"filePath"`    // Path to the config file (config type only)
	Base        string `json:"base"`        // Preset the scene derives from
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// metadataHeader is the subset of a config file shown in scene listings
type metadataHeader struct {
	Name        string `toml:"name" yaml:"name"`
	Base        string `toml:"base" yaml:"base"`
	Description string `toml:"description" yaml:"description"`
}

// findScenesDir returns the first existing scenes directory, or ""
func findScenesDir() string {
	for _, path := range SceneDirs {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path
		}
	}
	return ""
}

// ListConfigScenes scans dir for .toml, .yaml and .yml scene files
func ListConfigScenes(dir string) ([]SceneInfo, error) {
	if dir == "" {
		return []SceneInfo{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := FormatForPath(path); err != nil {
			continue
		}
		info, err := ParseConfigMetadata(path)
		if err != nil {
			// Skip unreadable files; LoadFile reports the details when selected
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes, nil
}

// ParseConfigMetadata reads the listing metadata of a scene config file
func ParseConfigMetadata(path string) (SceneInfo, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	info := SceneInfo{
		ID:          configPrefix + stem,
		Name:        titleCase(stem),
		DisplayName: titleCase(stem),
		Group:       configGroup,
		Type:        "config",
		FilePath:    path,
		Base:        DefaultPreset,
	}

	format, err := FormatForPath(path)
	if err != nil {
		return info, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return info, err
	}

	var header metadataHeader
	if err := decode(data, format, &header, false); err != nil {
		return info, err
	}
	if header.Name != "" {
		info.Name = header.Name
		info.DisplayName = header.Name
	}
	if header.Base != "" {
		info.Base = strings.ToLower(header.Base)
	}
	info.Description = header.Description
	return info, nil
}

// BuiltinScenes returns the listing entries of the presets
func BuiltinScenes() []SceneInfo {
	var scenes []SceneInfo
	for _, name := range PresetNames() {
		scenes = append(scenes, SceneInfo{
			ID:          name,
			Name:        name,
			DisplayName: titleCase(name),
			Description: presets[name].description,
			Group:       builtinGroup,
			Type:        "builtin",
			Base:        name,
		})
	}
	return scenes
}

// ListAllScenes returns both built-in and config scenes, grouped by category
func ListAllScenes() (ScenesResponse, error) {
	var response ScenesResponse

	configScenes, err := ListConfigScenes(findScenesDir())
	if err != nil {
		return response, fmt.Errorf("failed to list config scenes: %w", err)
	}

	response.Groups = append(response.Groups, SceneGroup{Name: builtinGroup, Scenes: BuiltinScenes()})
	if len(configScenes) > 0 {
		response.Groups = append(response.Groups, SceneGroup{Name: configGroup, Scenes: configScenes})
	}
	return response, nil
}

// Resolve returns the scene for a listing ID, a preset name or a config file path
func Resolve(id string) (Scene, error) {
	switch {
	case strings.HasPrefix(id, configPrefix):
		stem := strings.TrimPrefix(id, configPrefix)
		dir := findScenesDir()
		if dir == "" || stem == "" || strings.ContainsAny(stem, `/\`) {
			return Scene{}, fmt.Errorf("%w %q", ErrUnknownScene, id)
		}
		for _, ext := range []string{".toml", ".yaml", ".yml"} {
			path := filepath.Join(dir, stem+ext)
			if _, err := os.Stat(path); err == nil {
				return LoadFile(path)
			}
		}
		return Scene{}, fmt.Errorf("%w %q", ErrUnknownScene, id)
	case isConfigPath(id):
		return LoadFile(id)
	default:
		return Preset(id)
	}
}

// ResolveListed resolves only IDs that appear in scene listings: preset names
// and config: entries. Raw file paths are rejected.
func ResolveListed(id string) (Scene, error) {
	if isConfigPath(id) {
		return Scene{}, fmt.Errorf("%w %q", ErrUnknownScene, id)
	}
	return Resolve(id)
}

func isConfigPath(id string) bool {
	_, err := FormatForPath(id)
	return err == nil
}

// titleCase converts a filename-style string to title case
// e.g., "kerr-fast" -> "Kerr Fast"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
