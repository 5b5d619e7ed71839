package imop

import (
	"fmt"

	"github.com/esimov/hellod3d/utils"
)

// Separable blend modes.
const (
	Normal     = "normal"
	Darken     = "darken"
	Lighten    = "lighten"
	Multiply   = "multiply"
	Screen     = "screen"
	Overlay    = "overlay"
	Difference = "difference"
)

// Blend holds the currently active blend mode.
type Blend struct {
	OpType string
}

// NewBlend initializes a new Blend with no mode set.
func NewBlend() *Blend {
	return &Blend{}
}

// Set activates one of the supported blend modes.
func (o *Blend) Set(opType string) error {
	modes := []string{Normal, Darken, Lighten, Multiply, Screen, Overlay, Difference}
	if !utils.Contains(modes, opType) {
		return fmt.Errorf("unsupported blend mode: %q", opType)
	}
	o.OpType = opType
	return nil
}

// Get returns the currently active blend mode.
func (o *Blend) Get() string {
	return o.OpType
}

// apply returns the blended color channels of source s over backdrop b.
func (o *Blend) apply(s, b [4]float64) [3]float64 {
	var out [3]float64
	for c := 0; c < 3; c++ {
		cs, cb := s[c], b[c]
		switch o.OpType {
		case Darken:
			out[c] = utils.Min(cs, cb)
		case Lighten:
			out[c] = utils.Max(cs, cb)
		case Multiply:
			out[c] = cs * cb
		case Screen:
			out[c] = cs + cb - cs*cb
		case Overlay:
			if cb <= 0.5 {
				out[c] = 2 * cs * cb
			} else {
				out[c] = 1 - 2*(1-cs)*(1-cb)
			}
		case Difference:
			out[c] = utils.Abs(cs - cb)
		default:
			out[c] = cs
		}
	}
	return out
}
