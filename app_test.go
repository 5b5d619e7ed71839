package hellod3d

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_ShouldValidateTheConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Renderer.Backend = "vulkan"

	assert.ErrorIs(t, Run(cfg), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Vertices = DefaultTriangle()[:2]
	assert.ErrorIs(t, Run(cfg), ErrInvalidConfig)
}
