// Package calibration drives the per-client calibration ritual: target
// planning, the face/pulse/capture phase machine, and sample accumulation.
package calibration

import (
	"math/rand"

	"github.com/eyemouse/go-eyemouse/pkg/gaze"
	"github.com/eyemouse/go-eyemouse/pkg/protocol"
)

// Plan is an ordered calibration target layout in both pixel space (for
// training) and normalized space (for client-side display).
type Plan struct {
	Pixels     []gaze.Point
	Normalized []protocol.Point2D
}

// Len returns the number of targets.
func (p Plan) Len() int {
	return len(p.Pixels)
}

// fivePointOrder is the visitation order on a 3x3 grid:
// center, top-left, top-right, bottom-left, bottom-right.
var fivePointOrder = [5][2]int{{1, 1}, {0, 0}, {2, 0}, {0, 2}, {2, 2}}

// FivePointPlan lays the fixed five calibration targets on a 3x3 grid
// scaled to the screen. Cell centers keep every target inside the screen.
func FivePointPlan(screenW, screenH int) Plan {
	plan := Plan{
		Pixels:     make([]gaze.Point, 0, len(fivePointOrder)),
		Normalized: make([]protocol.Point2D, 0, len(fivePointOrder)),
	}
	for _, cell := range fivePointOrder {
		nx := (float64(cell[0]) + 0.5) / 3
		ny := (float64(cell[1]) + 0.5) / 3
		px := float64(int(nx * float64(screenW)))
		py := float64(int(ny * float64(screenH)))
		plan.Pixels = append(plan.Pixels, gaze.Point{X: px, Y: py})
		plan.Normalized = append(plan.Normalized, protocol.Point2D{
			X: px / float64(screenW),
			Y: py / float64(screenH),
		})
	}
	return plan
}

// RandomPlan draws count targets independently and uniformly within
// [margin, 1-margin] of each screen axis. The randomness source is an
// explicit input so plans are reproducible under test.
func RandomPlan(rng *rand.Rand, count int, margin float64, screenW, screenH int) Plan {
	plan := Plan{
		Pixels:     make([]gaze.Point, 0, count),
		Normalized: make([]protocol.Point2D, 0, count),
	}
	for i := 0; i < count; i++ {
		nx := margin + rng.Float64()*(1-2*margin)
		ny := margin + rng.Float64()*(1-2*margin)
		px := float64(int(nx * float64(screenW)))
		py := float64(int(ny * float64(screenH)))
		plan.Pixels = append(plan.Pixels, gaze.Point{X: px, Y: py})
		plan.Normalized = append(plan.Normalized, protocol.Point2D{
			X: px / float64(screenW),
			Y: py / float64(screenH),
		})
	}
	return plan
}
