package tracking

import "time"

const (
	// pruneWindow is how long blink observations stay in the history.
	pruneWindow = time.Second

	// pairWindow is the maximum gap between two blinks forming a double-blink.
	pairWindow = 500 * time.Millisecond
)

// Debouncer converts raw per-frame blink flags into debounced double-blink
// gestures. The history is cleared when a pair fires, so one qualifying
// pair produces exactly one gesture.
type Debouncer struct {
	timestamps []time.Time
}

// NewDebouncer creates an empty debouncer.
func NewDebouncer() *Debouncer {
	return &Debouncer{}
}

// Observe records one frame's blink flag at the given timestamp and reports
// whether a double-blink fired.
func (d *Debouncer) Observe(blink bool, now time.Time) bool {
	if blink {
		d.timestamps = append(d.timestamps, now)
	}

	// Keep only blinks within the trailing window
	kept := d.timestamps[:0]
	for _, t := range d.timestamps {
		if now.Sub(t) < pruneWindow {
			kept = append(kept, t)
		}
	}
	d.timestamps = kept

	n := len(d.timestamps)
	if n >= 2 && d.timestamps[n-1].Sub(d.timestamps[n-2]) < pairWindow {
		d.timestamps = nil
		return true
	}
	return false
}

// Pending returns the number of blinks currently in the history window.
func (d *Debouncer) Pending() int {
	return len(d.timestamps)
}
