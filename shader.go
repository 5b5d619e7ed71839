package hellod3d

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed hlsl/*.hlsl wgsl/*.wgsl
var shaderFS embed.FS

const (
	vertexShaderFile = "hlsl/triangle_vs.hlsl"
	pixelShaderFile  = "hlsl/triangle_ps.hlsl"
	wgslShaderFile   = "wgsl/triangle.wgsl"
)

// dxbcMagic opens every compiled shader object.
var dxbcMagic = []byte("DXBC")

// Stage is a programmable pipeline stage.
type Stage int

// The pipeline stages used to draw the triangle.
const (
	StageVertex Stage = iota
	StagePixel
)

// Entry returns the default entry point name of the stage.
func (s Stage) Entry() string {
	if s == StagePixel {
		return "PS"
	}
	return "VS"
}

// Profile returns the shader model 5.0 target profile of the stage.
func (s Stage) Profile() string {
	if s == StagePixel {
		return "ps_5_0"
	}
	return "vs_5_0"
}

func (s Stage) String() string {
	if s == StagePixel {
		return "pixel"
	}
	return "vertex"
}

// Source is a single shader stage ready to be handed to a compiler.
type Source struct {
	Name    string
	Stage   Stage
	Entry   string
	Profile string
	Code    []byte
}

// ObjectName returns the file name of the compiled shader object.
// Sources declaring several entry points get one object per entry point.
func (s Source) ObjectName() string {
	base := path.Base(filepath.ToSlash(s.Name))
	stem := strings.TrimSuffix(base, path.Ext(base))
	if s.Entry != "" && s.Entry != s.Stage.Entry() {
		stem += "_" + s.Entry
	}
	return stem + ".cso"
}

// Program groups the vertex and pixel stages with the input layout feeding them.
type Program struct {
	Vertex Source
	Pixel  Source
	Layout []InputElement
}

// Bytecode holds the compiled stages of a Program.
type Bytecode struct {
	Vertex []byte
	Pixel  []byte
	Layout []InputElement
}

// CompileError carries the diagnostics of a failed shader compilation.
type CompileError struct {
	Name  string
	Entry string
	Log   string
	Err   error
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("compiling %s (%s)", e.Name, e.Entry)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if log := strings.TrimSpace(e.Log); log != "" {
		msg += "\n" + log
	}
	return msg
}

func (e *CompileError) Unwrap() error { return e.Err }

// Compiler turns a shader source into bytecode.
type Compiler interface {
	Compile(src Source) ([]byte, error)
}

// CompilerFunc adapts an ordinary function to the Compiler interface.
type CompilerFunc func(src Source) ([]byte, error)

// Compile calls f(src).
func (f CompilerFunc) Compile(src Source) ([]byte, error) { return f(src) }

// Variant is implemented by compilers whose output depends on settings other
// than the source, like the optimization flags. Objects compiled with a
// different variant never share a cache entry.
type Variant interface {
	Variant() string
}

func compilerVariant(comp Compiler) string {
	if v, ok := comp.(Variant); ok {
		return v.Variant()
	}
	return ""
}

// LoadProgram reads the shader sources of the configured language. Sources
// missing from cfg.Dir are taken from the built-in set.
func LoadProgram(cfg ShaderConfig) (*Program, error) {
	switch cfg.Language {
	case LanguageHLSL, "":
		vs, err := readShader(cfg.Dir, vertexShaderFile)
		if err != nil {
			return nil, err
		}
		ps, err := readShader(cfg.Dir, pixelShaderFile)
		if err != nil {
			return nil, err
		}
		return &Program{
			Vertex: newSource(vertexShaderFile, StageVertex, "", vs),
			Pixel:  newSource(pixelShaderFile, StagePixel, "", ps),
			Layout: VertexLayout(Semantic{Name: "POSITION"}, Semantic{Name: "COLOR"}),
		}, nil
	case LanguageWGSL:
		src, err := readShader(cfg.Dir, wgslShaderFile)
		if err != nil {
			return nil, err
		}
		tr, err := TranslateWGSL(string(src))
		if err != nil {
			return nil, fmt.Errorf("translating %s: %w", wgslShaderFile, err)
		}
		return tr.Program(wgslShaderFile), nil
	}
	return nil, fmt.Errorf("%w: unknown shader language %q", ErrInvalidConfig, cfg.Language)
}

func newSource(name string, stage Stage, entry string, code []byte) Source {
	if entry == "" {
		entry = stage.Entry()
	}
	return Source{
		Name:    name,
		Stage:   stage,
		Entry:   entry,
		Profile: stage.Profile(),
		Code:    code,
	}
}

func readShader(dir, name string) ([]byte, error) {
	if dir != "" {
		file := filepath.Join(dir, path.Base(name))
		code, err := os.ReadFile(file)
		if err == nil {
			Logger().Debug("shader source loaded", "file", file)
			return code, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading shader %s: %w", file, err)
		}
	}
	return shaderFS.ReadFile(name)
}

// Cache is a directory of compiled shader objects. A nil Cache never hits.
type Cache struct {
	dir string
}

// NewCache returns a cache rooted at dir, or nil when dir is empty.
func NewCache(dir string) *Cache {
	if dir == "" {
		return nil
	}
	return &Cache{dir: dir}
}

// Digest identifies the compiled object of src: the code, the entry point,
// the profile and the compiler variant all contribute to it.
func (s Source) Digest(variant string) string {
	h := sha256.New()
	for _, part := range [][]byte{s.Code, []byte(s.Entry), []byte(s.Profile), []byte(variant)} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// Path returns the location of the object of src compiled with variant.
func (c *Cache) Path(src Source, variant string) string {
	name := src.ObjectName()
	ext := path.Ext(name)
	return filepath.Join(c.dir, strings.TrimSuffix(name, ext)+"-"+src.Digest(variant)+ext)
}

// Load returns the cached bytecode of src. Missing, unreadable or
// malformed objects are reported as a miss.
func (c *Cache) Load(src Source, variant string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	file := c.Path(src, variant)
	blob, err := os.ReadFile(file)
	if err != nil {
		return nil, false
	}
	if !bytes.HasPrefix(blob, dxbcMagic) {
		Logger().Warn("ignoring malformed shader object", "file", file)
		return nil, false
	}
	return blob, true
}

// Store writes the bytecode of src into the cache directory.
func (c *Cache) Store(src Source, variant string, blob []byte) error {
	if c == nil {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(c.Path(src, variant), blob, 0644)
}

// LoadOrCompile returns the cached bytecode of src, compiling and caching it
// on a miss. Editing the source or switching the compiler variant misses.
func LoadOrCompile(c *Cache, comp Compiler, src Source) ([]byte, error) {
	variant := compilerVariant(comp)
	if blob, ok := c.Load(src, variant); ok {
		Logger().Debug("shader object loaded from cache", "file", c.Path(src, variant))
		return blob, nil
	}
	blob, err := comp.Compile(src)
	if err != nil {
		var cerr *CompileError
		if errors.As(err, &cerr) {
			return nil, err
		}
		return nil, &CompileError{Name: src.Name, Entry: src.Entry, Err: err}
	}
	if err := c.Store(src, variant, blob); err != nil {
		Logger().Warn("could not cache shader object", "file", c.Path(src, variant), "error", err)
	}
	return blob, nil
}

// Compile compiles both stages of the program.
func (p *Program) Compile(c *Cache, comp Compiler) (*Bytecode, error) {
	vs, err := LoadOrCompile(c, comp, p.Vertex)
	if err != nil {
		return nil, err
	}
	ps, err := LoadOrCompile(c, comp, p.Pixel)
	if err != nil {
		return nil, err
	}
	return &Bytecode{Vertex: vs, Pixel: ps, Layout: p.Layout}, nil
}
