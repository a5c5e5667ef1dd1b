// Package tracking converts extracted frame features into normalized gaze
// updates and debounced double-blink gestures during steady-state tracking.
package tracking

import (
	"fmt"
	"time"

	"github.com/eyemouse/go-eyemouse/pkg/gaze"
	"github.com/eyemouse/go-eyemouse/pkg/protocol"
)

// Tracker turns per-frame model output into gaze_update events for one
// session. Not safe for concurrent use; each session owns one Tracker.
type Tracker struct {
	screenW float64
	screenH float64
	blinks  *Debouncer
}

// NewTracker creates a tracker for the given screen geometry.
func NewTracker(screenW, screenH int) *Tracker {
	return &Tracker{
		screenW: float64(screenW),
		screenH: float64(screenH),
		blinks:  NewDebouncer(),
	}
}

// Track builds the gaze update for one frame. Features is nil when no face
// is visible; a blink or missing face yields an update without coordinates.
func (t *Tracker) Track(est gaze.Estimator, f gaze.Features, blink bool, now time.Time) (protocol.GazeUpdate, error) {
	doubleBlink := t.blinks.Observe(blink, now)

	if f == nil || blink {
		return protocol.NewGazeBlank(blink, doubleBlink), nil
	}

	p, err := est.Predict(f)
	if err != nil {
		return protocol.GazeUpdate{}, fmt.Errorf("predict gaze point: %w", err)
	}
	return protocol.NewGazePoint(p.X/t.screenW, p.Y/t.screenH, doubleBlink), nil
}
