package hellod3d

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/esimov/hellod3d/imop"
	"github.com/esimov/hellod3d/utils"
)

// Supported rendering backends.
const (
	BackendD3D11    = "d3d11"
	BackendSoftware = "software"
)

// Supported Direct3D driver types.
const (
	DriverHardware  = "hardware"
	DriverWarp      = "warp"
	DriverReference = "reference"
)

// Supported shader languages.
const (
	LanguageHLSL = "hlsl"
	LanguageWGSL = "wgsl"
)

const (
	configFile = "config.toml"

	defaultWidth  = 800
	defaultHeight = 600
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every tunable of the program. It is read from a TOML file
// and then overridden by the command line flags.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Shader   ShaderConfig   `toml:"shader"`
	Vertices []Vertex       `toml:"vertex,omitempty"`
}

// WindowConfig describes the native window. A zero width or height lets the
// system pick the size; nil coordinates let it pick the position.
type WindowConfig struct {
	Title     string `toml:"title"`
	ClassName string `toml:"class"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	X         *int   `toml:"x,omitempty"`
	Y         *int   `toml:"y,omitempty"`
}

// RendererConfig selects and tunes the backend. Samples, Composite and
// Blend only apply to the software rasterizer.
type RendererConfig struct {
	Backend      string     `toml:"backend"`
	Driver       string     `toml:"driver"`
	Debug        bool       `toml:"debug"`
	SyncInterval int        `toml:"sync_interval"`
	ClearColor   [4]float32 `toml:"clear_color"`
	Samples      int        `toml:"samples"`
	Composite    string     `toml:"composite"`
	Blend        string     `toml:"blend"`
}

// ShaderConfig locates the shader sources and the compiled shader cache.
// An empty Dir uses the built-in sources, an empty CacheDir disables caching.
type ShaderConfig struct {
	Language string `toml:"language"`
	Dir      string `toml:"dir"`
	CacheDir string `toml:"cache_dir"`
}

// DefaultConfig returns the configuration used when no file is provided.
func DefaultConfig() *Config {
	backend := BackendSoftware
	if runtime.GOOS == "windows" {
		backend = BackendD3D11
	}
	return &Config{
		Window: WindowConfig{
			Title:     "Hello Triangle",
			ClassName: "hellod3d",
			Width:     defaultWidth,
			Height:    defaultHeight,
		},
		Renderer: RendererConfig{
			Backend:    backend,
			Driver:     DriverHardware,
			ClearColor: [4]float32{0, 0, 0, 1},
			Samples:    4,
			Composite:  imop.SrcOver,
			Blend:      imop.Normal,
		},
		Shader: ShaderConfig{
			Language: LanguageHLSL,
		},
	}
}

// DefaultConfigPath returns the location of the per-user config file.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hellod3d", configFile), nil
}

// LoadConfig decodes the TOML file at path on top of the default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config file %q: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		Logger().Warn("unknown config keys", "file", path, "keys", undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteConfig encodes cfg as TOML into path, creating the parent directory if needed.
func WriteConfig(path string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("could not encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Window.Title == "":
		return fmt.Errorf("%w: window title is required", ErrInvalidConfig)
	case c.Window.ClassName == "":
		return fmt.Errorf("%w: window class name is required", ErrInvalidConfig)
	case c.Window.Width < 0 || c.Window.Height < 0:
		return fmt.Errorf("%w: negative window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case !utils.Contains([]string{BackendD3D11, BackendSoftware}, c.Renderer.Backend):
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Renderer.Backend)
	case !utils.Contains([]string{DriverHardware, DriverWarp, DriverReference}, c.Renderer.Driver):
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, c.Renderer.Driver)
	case c.Renderer.SyncInterval < 0 || c.Renderer.SyncInterval > 4:
		return fmt.Errorf("%w: sync interval must be between 0 and 4", ErrInvalidConfig)
	case c.Renderer.Samples < 1 || c.Renderer.Samples > 16:
		return fmt.Errorf("%w: samples must be between 1 and 16", ErrInvalidConfig)
	case !utils.Contains([]string{LanguageHLSL, LanguageWGSL}, c.Shader.Language):
		return fmt.Errorf("%w: unknown shader language %q", ErrInvalidConfig, c.Shader.Language)
	}
	if _, _, err := NewRasterizer(c.Renderer).operators(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if len(c.Vertices) > 0 {
		if err := ValidateVertices(c.Vertices); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// Scene returns the configured vertices or the default triangle.
func (c *Config) Scene() []Vertex {
	if len(c.Vertices) == 0 {
		return DefaultTriangle()
	}
	return c.Vertices
}

// Size returns the configured client size, falling back to the default
// size for the dimensions left to the system.
func (w WindowConfig) Size() Size {
	s := Size{Width: w.Width, Height: w.Height}
	if s.Width == 0 {
		s.Width = defaultWidth
	}
	if s.Height == 0 {
		s.Height = defaultHeight
	}
	return s
}
