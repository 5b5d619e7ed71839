package hellod3d

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultsShouldBeValid(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig()
	assert.NoError(cfg.Validate())
	assert.Equal(DefaultTriangle(), cfg.Scene())
	assert.Equal(Size{Width: 800, Height: 600}, cfg.Window.Size())
	assert.Equal([4]float32{0, 0, 0, 1}, cfg.Renderer.ClearColor)
}

func TestConfig_LoadShouldOverrideDefaults(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[window]
title = "custom"
width = 320
x = 10

[renderer]
backend = "software"
samples = 2
composite = "dst_over"
blend = "multiply"
clear_color = [0.0, 0.0, 1.0, 1.0]

[shader]
language = "wgsl"

[[vertex]]
position = [0.0, 1.0, 0.5]
color = [1.0, 1.0, 1.0, 1.0]

[[vertex]]
position = [1.0, -1.0, 0.5]
color = [1.0, 1.0, 1.0, 1.0]

[[vertex]]
position = [-1.0, -1.0, 0.5]
color = [1.0, 1.0, 1.0, 1.0]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal("custom", cfg.Window.Title)
	assert.Equal("hellod3d", cfg.Window.ClassName)
	assert.Equal(Size{Width: 320, Height: 600}, cfg.Window.Size())
	require.NotNil(t, cfg.Window.X)
	assert.Equal(10, *cfg.Window.X)
	assert.Nil(cfg.Window.Y)
	assert.Equal(BackendSoftware, cfg.Renderer.Backend)
	assert.Equal(2, cfg.Renderer.Samples)
	assert.Equal("dst_over", cfg.Renderer.Composite)
	assert.Equal("multiply", cfg.Renderer.Blend)
	assert.Equal([4]float32{0, 0, 1, 1}, cfg.Renderer.ClearColor)
	assert.Equal(LanguageWGSL, cfg.Shader.Language)
	assert.Len(cfg.Scene(), 3)
	assert.Equal([3]float32{1, -1, 0.5}, cfg.Scene()[1].Position)
}

func TestConfig_WriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Renderer.Backend = BackendSoftware
	cfg.Renderer.SyncInterval = 1
	cfg.Vertices = DefaultTriangle()
	require.NoError(t, WriteConfig(path, cfg))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestConfig_ValidateShouldRejectBadSettings(t *testing.T) {
	cases := map[string]func(*Config){
		"empty title":    func(c *Config) { c.Window.Title = "" },
		"empty class":    func(c *Config) { c.Window.ClassName = "" },
		"negative size":  func(c *Config) { c.Window.Width = -1 },
		"backend":        func(c *Config) { c.Renderer.Backend = "opengl" },
		"driver":         func(c *Config) { c.Renderer.Driver = "null" },
		"sync interval":  func(c *Config) { c.Renderer.SyncInterval = 5 },
		"samples":        func(c *Config) { c.Renderer.Samples = 0 },
		"language":       func(c *Config) { c.Shader.Language = "glsl" },
		"composite":      func(c *Config) { c.Renderer.Composite = "plus" },
		"blend":          func(c *Config) { c.Renderer.Blend = "hue" },
		"vertices count": func(c *Config) { c.Vertices = DefaultTriangle()[:1] },
		"vertices nan": func(c *Config) {
			c.Vertices = DefaultTriangle()
			c.Vertices[0].Position[1] = float32(math.NaN())
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfig_LoadShouldFailOnMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
