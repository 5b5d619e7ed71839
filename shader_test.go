package hellod3d

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCompiler struct {
	calls int
	err   error
}

func (c *countingCompiler) Compile(src Source) ([]byte, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return append([]byte("DXBC"), []byte(src.Entry)...), nil
}

func TestShader_StagesShouldUseShaderModel5(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("VS", StageVertex.Entry())
	assert.Equal("vs_5_0", StageVertex.Profile())
	assert.Equal("PS", StagePixel.Entry())
	assert.Equal("ps_5_0", StagePixel.Profile())
	assert.Equal("pixel", StagePixel.String())
}

func TestShader_LoadBuiltinHLSLProgram(t *testing.T) {
	assert := assert.New(t)

	prog, err := LoadProgram(ShaderConfig{Language: LanguageHLSL})
	require.NoError(t, err)

	assert.Equal("VS", prog.Vertex.Entry)
	assert.Equal("ps_5_0", prog.Pixel.Profile)
	assert.Contains(string(prog.Vertex.Code), "VertexOut VS(")
	assert.Contains(string(prog.Pixel.Code), "float4 PS(")
	assert.Equal("triangle_vs.cso", prog.Vertex.ObjectName())
	assert.Equal("triangle_ps.cso", prog.Pixel.ObjectName())
	assert.Equal("POSITION", prog.Layout[0].Semantic)
	assert.Equal("COLOR", prog.Layout[1].Semantic)
}

func TestShader_DirectoryShouldOverrideBuiltinSources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "triangle_ps.hlsl"), []byte("// custom"), 0644))

	prog, err := LoadProgram(ShaderConfig{Language: LanguageHLSL, Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, "// custom", string(prog.Pixel.Code))
	assert.Contains(t, string(prog.Vertex.Code), "VertexOut VS(")
}

func TestShader_UnknownLanguageShouldFail(t *testing.T) {
	_, err := LoadProgram(ShaderConfig{Language: "glsl"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestShader_CacheShouldCompileOnceAndReuse(t *testing.T) {
	assert := assert.New(t)

	cache := NewCache(filepath.Join(t.TempDir(), "cso"))
	comp := &countingCompiler{}
	prog, err := LoadProgram(ShaderConfig{Language: LanguageHLSL})
	require.NoError(t, err)

	bc, err := prog.Compile(cache, comp)
	require.NoError(t, err)
	assert.Equal(2, comp.calls)
	assert.Equal([]byte("DXBCVS"), bc.Vertex)
	assert.Equal([]byte("DXBCPS"), bc.Pixel)
	assert.FileExists(cache.Path(prog.Vertex, ""))

	bc, err = prog.Compile(cache, comp)
	require.NoError(t, err)
	assert.Equal(2, comp.calls)
	assert.Equal([]byte("DXBCPS"), bc.Pixel)
}

func TestShader_MalformedObjectShouldBeRecompiled(t *testing.T) {
	assert := assert.New(t)

	cache := NewCache(t.TempDir())
	src := newSource("hlsl/triangle_vs.hlsl", StageVertex, "", nil)
	require.NoError(t, os.WriteFile(cache.Path(src, ""), []byte("garbage"), 0644))

	_, ok := cache.Load(src, "")
	assert.False(ok)

	comp := &countingCompiler{}
	blob, err := LoadOrCompile(cache, comp, src)
	require.NoError(t, err)
	assert.Equal(1, comp.calls)
	assert.Equal([]byte("DXBCVS"), blob)
}

func TestShader_NilCacheShouldAlwaysCompile(t *testing.T) {
	assert := assert.New(t)

	var cache *Cache
	assert.Nil(NewCache(""))
	comp := &countingCompiler{}
	src := newSource("triangle_ps.hlsl", StagePixel, "", nil)

	for i := 0; i < 2; i++ {
		_, err := LoadOrCompile(cache, comp, src)
		assert.NoError(err)
	}
	assert.Equal(2, comp.calls)
}

func TestShader_CompileErrorsShouldCarryTheSourceName(t *testing.T) {
	assert := assert.New(t)

	failure := errors.New("E_FAIL")
	comp := &countingCompiler{err: failure}
	src := newSource("hlsl/triangle_vs.hlsl", StageVertex, "", nil)

	_, err := LoadOrCompile(nil, comp, src)
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal("hlsl/triangle_vs.hlsl", cerr.Name)
	assert.ErrorIs(err, failure)

	logged := &CompileError{Name: "a.hlsl", Entry: "VS", Log: "a.hlsl(3,1): error X3000: syntax error\n"}
	_, err = LoadOrCompile(nil, CompilerFunc(func(Source) ([]byte, error) { return nil, logged }), src)
	assert.Same(logged, err)
	assert.Equal("compiling a.hlsl (VS)\na.hlsl(3,1): error X3000: syntax error", err.Error())
}

func TestShader_ObjectNameShouldIncludeCustomEntryPoints(t *testing.T) {
	src := newSource("wgsl/triangle.wgsl", StageVertex, "vs_main", nil)
	assert.Equal(t, "triangle_vs_main.cso", src.ObjectName())
}

type variantCompiler struct {
	countingCompiler
	variant string
}

func (c *variantCompiler) Variant() string { return c.variant }

func TestShader_EditedSourceShouldBeRecompiled(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	cfg := ShaderConfig{Language: LanguageHLSL, Dir: dir}
	cache := NewCache(filepath.Join(dir, "cso"))
	calls := 0
	comp := CompilerFunc(func(src Source) ([]byte, error) {
		calls++
		return append([]byte("DXBC"), src.Code...), nil
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "triangle_ps.hlsl"), []byte("// v1"), 0644))
	prog, err := LoadProgram(cfg)
	require.NoError(t, err)
	bc, err := prog.Compile(cache, comp)
	require.NoError(t, err)
	assert.Equal(2, calls)
	assert.Equal([]byte("DXBC// v1"), bc.Pixel)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "triangle_ps.hlsl"), []byte("// v2"), 0644))
	prog, err = LoadProgram(cfg)
	require.NoError(t, err)
	bc, err = prog.Compile(cache, comp)
	require.NoError(t, err)
	// Only the edited pixel shader misses.
	assert.Equal(3, calls)
	assert.Equal([]byte("DXBC// v2"), bc.Pixel)
	assert.NotEqual(prog.Pixel.Digest(""), newSource("triangle_ps.hlsl", StagePixel, "", []byte("// v1")).Digest(""))
}

func TestShader_CompilerVariantShouldMissTheCache(t *testing.T) {
	assert := assert.New(t)

	cache := NewCache(t.TempDir())
	src := newSource("hlsl/triangle_ps.hlsl", StagePixel, "", []byte("float4 PS() : SV_Target { return 1; }"))
	release := &variantCompiler{variant: "release"}
	debug := &variantCompiler{variant: "debug"}

	for i := 0; i < 2; i++ {
		_, err := LoadOrCompile(cache, release, src)
		require.NoError(t, err)
	}
	assert.Equal(1, release.calls)

	_, err := LoadOrCompile(cache, debug, src)
	require.NoError(t, err)
	assert.Equal(1, debug.calls)
	assert.FileExists(cache.Path(src, "release"))
	assert.FileExists(cache.Path(src, "debug"))
	assert.NotEqual(cache.Path(src, "release"), cache.Path(src, "debug"))
}
