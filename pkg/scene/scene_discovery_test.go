package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withSceneDir points scene discovery at a temp directory holding files
func withSceneDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	saved := SceneDirs
	SceneDirs = []string{dir}
	t.Cleanup(func() { SceneDirs = saved })
	return dir
}

func TestListConfigScenes(t *testing.T) {
	dir := withSceneDir(t, map[string]string{
		"slow-orbit.toml": "base = \"kerr\"\ndescription = \"A slow pan\"\n\n[animation]\norbit_speed = 0.01\n",
		"wide.yaml":       "name: Wide Angle\nbase: classic\n",
		"notes.txt":       "not a scene",
		"broken.toml":     "base = = \"kerr\"",
	})

	scenes, err := ListConfigScenes(dir)
	require.NoError(t, err)
	require.Len(t, scenes, 2)

	assert.Equal(t, "Slow Orbit", scenes[0].DisplayName)
	assert.Equal(t, "config:slow-orbit", scenes[0].ID)
	assert.Equal(t, "kerr", scenes[0].Base)
	assert.Equal(t, "A slow pan", scenes[0].Description)
	assert.Equal(t, "config", scenes[0].Type)

	assert.Equal(t, "Wide Angle", scenes[1].DisplayName)
	assert.Equal(t, "config:wide", scenes[1].ID)
	assert.Equal(t, "classic", scenes[1].Base)
}

func TestListConfigScenes_NoDir(t *testing.T) {
	scenes, err := ListConfigScenes("")
	require.NoError(t, err)
	assert.Empty(t, scenes)

	_, err = ListConfigScenes(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestParseConfigMetadata_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain_view.yml")
	require.NoError(t, os.WriteFile(path, []byte("spin: 0.3\n"), 0o644))

	info, err := ParseConfigMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, "Plain View", info.Name)
	assert.Equal(t, DefaultPreset, info.Base)
	assert.Equal(t, path, info.FilePath)
}

func TestListAllScenes(t *testing.T) {
	withSceneDir(t, map[string]string{"custom.toml": "base = \"textured\"\n"})

	response, err := ListAllScenes()
	require.NoError(t, err)
	require.Len(t, response.Groups, 2)

	builtin := response.Groups[0]
	assert.Equal(t, builtinGroup, builtin.Name)
	require.Len(t, builtin.Scenes, len(PresetNames()))
	for _, s := range builtin.Scenes {
		assert.Equal(t, "builtin", s.Type)
		assert.NotEmpty(t, s.Description)
	}

	assert.Equal(t, configGroup, response.Groups[1].Name)
	assert.Equal(t, "config:custom", response.Groups[1].Scenes[0].ID)
}

func TestListAllScenes_BuiltinOnly(t *testing.T) {
	saved := SceneDirs
	SceneDirs = []string{filepath.Join(t.TempDir(), "none")}
	t.Cleanup(func() { SceneDirs = saved })

	response, err := ListAllScenes()
	require.NoError(t, err)
	assert.Len(t, response.Groups, 1)
}

func TestResolve(t *testing.T) {
	dir := withSceneDir(t, map[string]string{"tuned.toml": "base = \"kerr\"\nspin = 0.25\n"})

	s, err := Resolve("config:tuned")
	require.NoError(t, err)
	assert.Equal(t, "tuned", s.Name)
	assert.Equal(t, 0.25, s.Spin)

	s, err = Resolve(filepath.Join(dir, "tuned.toml"))
	require.NoError(t, err)
	assert.Equal(t, 0.25, s.Spin)

	s, err = Resolve("kerr")
	require.NoError(t, err)
	assert.Equal(t, 0.9, s.Spin)

	for _, id := range []string{"config:missing", "config:", "config:../tuned", "nonexistent"} {
		_, err := Resolve(id)
		assert.True(t, errors.Is(err, ErrUnknownScene), "Resolve(%q) = %v", id, err)
	}
}

func TestResolveListed(t *testing.T) {
	dir := withSceneDir(t, map[string]string{"tuned.toml": "spin = 0.25\n"})

	_, err := ResolveListed("config:tuned")
	assert.NoError(t, err)

	_, err = ResolveListed(filepath.Join(dir, "tuned.toml"))
	assert.True(t, errors.Is(err, ErrUnknownScene))

	_, err = ResolveListed("tuned.toml")
	assert.True(t, errors.Is(err, ErrUnknownScene))
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"kerr", "Kerr"},
		{"slow-orbit", "Slow Orbit"},
		{"edge_on_disk", "Edge On Disk"},
		{"RK4-closeup", "Rk4 Closeup"},
		{"", ""},
	}

	for _, tt := range tests {
		result := titleCase(tt.input)
		if result != tt.expected {
			t.Errorf("titleCase(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestRepositoryScenesLoad(t *testing.T) {
	dir := filepath.Join("..", "..", "scenes")
	if _, err := os.Stat(dir); err != nil {
		t.Skip("no scenes directory")
	}

	scenes, err := ListConfigScenes(dir)
	require.NoError(t, err)
	require.NotEmpty(t, scenes)
	for _, info := range scenes {
		s, err := LoadFile(info.FilePath)
		if assert.NoError(t, err, info.FilePath) {
			assert.Equal(t, info.Base, s.Base, info.FilePath)
		}
	}
}
