package hellod3d

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"
)

// Translation is the HLSL rendition of a WGSL module.
type Translation struct {
	HLSL        string
	VertexEntry string
	PixelEntry  string
}

// TranslateWGSL parses, validates and lowers a WGSL module holding one vertex
// and one fragment entry point into shader model 5.0 HLSL.
func TranslateWGSL(source string) (*Translation, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, err
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, err
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, err
	}
	if len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, verr := range verrs {
			errs[i] = verr
		}
		return nil, fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}

	opts := hlsl.DefaultOptions()
	opts.ShaderModel = hlsl.ShaderModel5_0
	code, info, err := hlsl.Compile(module, opts)
	if err != nil {
		return nil, err
	}

	tr := &Translation{HLSL: code}
	for _, ep := range module.EntryPoints {
		name := ep.Name
		if generated, ok := info.EntryPointNames[ep.Name]; ok && generated != "" {
			name = generated
		}
		switch ep.Stage {
		case ir.StageVertex:
			if tr.VertexEntry == "" {
				tr.VertexEntry = name
			}
		case ir.StageFragment:
			if tr.PixelEntry == "" {
				tr.PixelEntry = name
			}
		}
	}
	if tr.VertexEntry == "" || tr.PixelEntry == "" {
		return nil, errors.New("module must declare a vertex and a fragment entry point")
	}
	return tr, nil
}

// Program builds the two-stage program out of the translated source. Vertex
// inputs bound to @location(n) are exposed as TEXCOORD<n>.
func (t *Translation) Program(name string) *Program {
	code := []byte(t.HLSL)
	return &Program{
		Vertex: newSource(name, StageVertex, t.VertexEntry, code),
		Pixel:  newSource(name, StagePixel, t.PixelEntry, code),
		Layout: VertexLayout(
			Semantic{Name: "TEXCOORD", Index: 0},
			Semantic{Name: "TEXCOORD", Index: 1},
		),
	}
}
