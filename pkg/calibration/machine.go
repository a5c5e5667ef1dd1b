package calibration

import (
	"time"

	"github.com/eyemouse/go-eyemouse/pkg/gaze"
	"github.com/eyemouse/go-eyemouse/pkg/protocol"
)

// Phase is one state of the calibration ritual.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWaitFace
	PhasePulse
	PhaseCapture
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWaitFace:
		return "wait_face"
	case PhasePulse:
		return "pulse"
	case PhaseCapture:
		return "capture"
	default:
		return "unknown"
	}
}

// Timing holds the phase durations of the calibration ritual.
type Timing struct {
	FaceWait time.Duration // Continuous face presence before the first target
	Pulse    time.Duration // Dwell on a target before capturing
	Capture  time.Duration // Sample-capture window per target
}

// DefaultTiming returns the standard ritual timing.
func DefaultTiming() Timing {
	return Timing{
		FaceWait: 2 * time.Second,
		Pulse:    time.Second,
		Capture:  time.Second,
	}
}

// Observation is one frame's input to the machine. Features is nil when no
// face is visible. Now is the explicit frame timestamp; the machine never
// reads the clock itself.
type Observation struct {
	Features gaze.Features
	Blink    bool
	Now      time.Time
}

// Machine drives one session through the calibration phases and owns the
// accumulating sample set. It is not safe for concurrent use; each session
// drives its machine from a single connection task.
type Machine struct {
	timing Timing

	phase      Phase
	plan       Plan
	index      int
	tune       bool
	faceSince  time.Time // zero = face not yet seen continuously
	phaseStart time.Time

	// Parallel sample slices, accumulated across runs in tune mode.
	samples []gaze.Features
	targets []gaze.Point
}

// NewMachine creates an idle machine.
func NewMachine(timing Timing) *Machine {
	return &Machine{timing: timing}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// IsTune reports whether the current (or last) run is a tune run.
func (m *Machine) IsTune() bool { return m.tune }

// TargetCount returns the number of targets in the current plan.
func (m *Machine) TargetCount() int { return m.plan.Len() }

// SampleCount returns the number of accumulated samples.
func (m *Machine) SampleCount() int { return len(m.samples) }

// Samples returns the accumulated parallel feature/target slices.
func (m *Machine) Samples() ([]gaze.Features, []gaze.Point) {
	return m.samples, m.targets
}

// Start begins a run with the given plan. A calibration run discards any
// previously accumulated samples; a tune run appends to them.
func (m *Machine) Start(plan Plan, tune bool) {
	m.plan = plan
	m.index = 0
	m.tune = tune
	m.phase = PhaseWaitFace
	m.faceSince = time.Time{}
	m.phaseStart = time.Time{}
	if !tune {
		m.samples = nil
		m.targets = nil
	}
}

// Abort returns the machine to idle without touching accumulated samples.
func (m *Machine) Abort() {
	m.phase = PhaseIdle
}

// Advance processes one frame observation and returns the events to emit
// plus whether the run just completed. Training on completion is the
// caller's responsibility. Observations in the idle phase are ignored, so
// frames arriving after a run's completion cannot corrupt it.
func (m *Machine) Advance(obs Observation) (events []protocol.Event, complete bool) {
	if m.phase == PhaseIdle {
		return nil, false
	}

	faceDetected := obs.Features != nil && !obs.Blink

	switch m.phase {
	case PhaseWaitFace:
		events = m.advanceWaitFace(obs.Now, faceDetected)
	case PhasePulse:
		events = m.advancePulse(obs.Now)
	case PhaseCapture:
		events, complete = m.advanceCapture(obs, faceDetected)
	}
	return events, complete
}

func (m *Machine) advanceWaitFace(now time.Time, faceDetected bool) []protocol.Event {
	if !faceDetected {
		m.faceSince = time.Time{}
		return []protocol.Event{protocol.NewFaceCountdown(0, "Face not detected")}
	}

	if m.faceSince.IsZero() {
		m.faceSince = now
	}
	elapsed := now.Sub(m.faceSince)
	events := []protocol.Event{protocol.NewFaceCountdown(progress(elapsed, m.timing.FaceWait), "")}

	if elapsed >= m.timing.FaceWait {
		m.phase = PhasePulse
		m.index = 0
		m.phaseStart = now
		events = append(events, protocol.NewPointStart(0, m.plan.Len()))
	}
	return events
}

func (m *Machine) advancePulse(now time.Time) []protocol.Event {
	if m.phaseStart.IsZero() {
		m.phaseStart = now
	}
	elapsed := now.Sub(m.phaseStart)
	events := []protocol.Event{protocol.NewPulse(progress(elapsed, m.timing.Pulse))}

	if elapsed >= m.timing.Pulse {
		m.phase = PhaseCapture
		m.phaseStart = now
	}
	return events
}

func (m *Machine) advanceCapture(obs Observation, faceDetected bool) ([]protocol.Event, bool) {
	if m.phaseStart.IsZero() {
		m.phaseStart = obs.Now
	}
	elapsed := obs.Now.Sub(m.phaseStart)
	events := []protocol.Event{protocol.NewCapture(progress(elapsed, m.timing.Capture))}

	if faceDetected {
		m.samples = append(m.samples, obs.Features)
		m.targets = append(m.targets, m.plan.Pixels[m.index])
	}

	if elapsed < m.timing.Capture {
		return events, false
	}

	m.index++
	if m.index < m.plan.Len() {
		m.phase = PhasePulse
		m.phaseStart = obs.Now
		events = append(events, protocol.NewPointStart(m.index, m.plan.Len()))
		return events, false
	}

	m.phase = PhaseIdle
	return events, true
}

func progress(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	p := float64(elapsed) / float64(total)
	if p > 1 {
		return 1
	}
	return p
}
