// Package session owns per-client state for the gaze backend: one Session
// per connected client, created lazily by the Registry and destroyed with
// its model artifact on stop, disconnect, or fatal fault.
package session

import (
	"errors"
	"math/rand"
	"os"
	"time"

	"github.com/eyemouse/go-eyemouse/internal/log"
	"github.com/eyemouse/go-eyemouse/pkg/calibration"
	"github.com/eyemouse/go-eyemouse/pkg/gaze"
	"github.com/eyemouse/go-eyemouse/pkg/metrics"
	"github.com/eyemouse/go-eyemouse/pkg/protocol"
	"github.com/eyemouse/go-eyemouse/pkg/tracking"
)

// Settings holds the per-session policy knobs.
type Settings struct {
	ScreenWidth  int
	ScreenHeight int

	Timing calibration.Timing

	// Mode-dependent training minimums. Below these, training is refused.
	MinCalibrationSamples int
	MinTuneSamples        int

	// Tune plan shape
	TunePoints int
	TuneMargin float64

	// Shared temporary root for per-client artifact directories.
	ArtifactRoot string
}

// DefaultSettings returns production defaults matching the calibration ritual.
func DefaultSettings() Settings {
	return Settings{
		ScreenWidth:           1920,
		ScreenHeight:          1080,
		Timing:                calibration.DefaultTiming(),
		MinCalibrationSamples: 5,
		MinTuneSamples:        10,
		TunePoints:            10,
		TuneMargin:            0.15,
		ArtifactRoot:          "eyemouse_temp",
	}
}

// Session is one client's calibration/tracking state bundle. All methods
// are driven by a single connection task; timestamps are passed in
// explicitly so transitions are deterministic under test.
type Session struct {
	ID string

	settings  Settings
	estimator gaze.Estimator
	machine   *calibration.Machine
	tracker   *tracking.Tracker
	rng       *rand.Rand

	calibrated   bool
	dir          string
	artifactPath string
}

// Calibrated reports whether a trained model gates are open.
func (s *Session) Calibrated() bool { return s.calibrated }

// Phase returns the current calibration phase.
func (s *Session) Phase() calibration.Phase { return s.machine.Phase() }

// SampleCount returns the accumulated training sample count.
func (s *Session) SampleCount() int { return s.machine.SampleCount() }

// ArtifactPath returns the session's model artifact location.
func (s *Session) ArtifactPath() string { return s.artifactPath }

// StartCalibration resets per-run state and begins the fixed five-point
// ritual. Any prior model is discarded.
func (s *Session) StartCalibration() []protocol.Event {
	s.calibrated = false
	plan := calibration.FivePointPlan(s.settings.ScreenWidth, s.settings.ScreenHeight)
	s.machine.Start(plan, false)

	log.Info("calibration started", "client", s.ID, "points", plan.Len())
	return []protocol.Event{
		protocol.NewCalibrationStarted(plan.Normalized, "Waiting for face detection...", false),
	}
}

// StartTune begins an additive tune run over random targets. Requires a
// trained model; otherwise the request is rejected with no state change.
func (s *Session) StartTune() []protocol.Event {
	if !s.calibrated {
		metrics.CommandErrors.WithLabelValues(string(protocol.CmdStartTune)).Inc()
		return []protocol.Event{
			protocol.NewError("No model to tune. Please calibrate first."),
		}
	}

	plan := calibration.RandomPlan(
		s.rng,
		s.settings.TunePoints,
		s.settings.TuneMargin,
		s.settings.ScreenWidth,
		s.settings.ScreenHeight,
	)
	s.machine.Start(plan, true)

	log.Info("tune started", "client", s.ID, "points", plan.Len())
	return []protocol.Event{
		protocol.NewCalibrationStarted(plan.Normalized, "Tune mode: Waiting for face detection...", true),
	}
}

// CalibrationFrame advances the ritual by one frame. Frames arriving while
// idle (including after a run's completion) are silently dropped. A frame
// extraction fault is fatal to the session and returned as an error.
func (s *Session) CalibrationFrame(frame []byte, now time.Time) ([]protocol.Event, error) {
	if s.machine.Phase() == calibration.PhaseIdle {
		return nil, nil
	}

	features, blink, err := s.estimator.ExtractFeatures(frame)
	if err != nil {
		return nil, err
	}
	metrics.FramesProcessed.WithLabelValues("calibration").Inc()

	events, complete := s.machine.Advance(calibration.Observation{
		Features: features,
		Blink:    blink,
		Now:      now,
	})
	if complete {
		events = append(events, s.train())
	}
	return events, nil
}

// train runs the mode-dependent training pass at the end of a run.
func (s *Session) train() protocol.Event {
	isTune := s.machine.IsTune()
	mode := "calibrate"
	minSamples := s.settings.MinCalibrationSamples
	if isTune {
		mode = "tune"
		minSamples = s.settings.MinTuneSamples
	}

	features, targets := s.machine.Samples()
	if len(features) < minSamples {
		metrics.TrainingRuns.WithLabelValues(mode, "failure").Inc()
		log.Warn("training refused", "client", s.ID, "samples", len(features), "min", minSamples)
		if isTune {
			return protocol.NewCalibrationFailure("Not enough tune data", true)
		}
		return protocol.NewCalibrationFailure("Not enough calibration data", false)
	}

	if err := s.estimator.Train(features, targets); err != nil {
		metrics.TrainingRuns.WithLabelValues(mode, "failure").Inc()
		log.Error("training failed", "client", s.ID, "error", err)
		return protocol.NewCalibrationFailure(err.Error(), isTune)
	}

	s.calibrated = true
	if err := s.estimator.SaveArtifact(s.artifactPath); err != nil {
		// The in-memory model is trained and usable; only load_model after
		// reconnect loses out.
		log.Warn("artifact save failed", "client", s.ID, "error", err)
	}

	metrics.TrainingRuns.WithLabelValues(mode, "success").Inc()
	log.Info("training complete", "client", s.ID, "mode", mode, "samples", len(features))
	return protocol.NewCalibrationSuccess(len(features), isTune)
}

// TrackGaze converts one frame into a gaze update. Rejected with an error
// event before calibration. A frame extraction fault is fatal.
func (s *Session) TrackGaze(frame []byte, now time.Time) ([]protocol.Event, error) {
	if !s.calibrated {
		metrics.CommandErrors.WithLabelValues(string(protocol.CmdTrackGaze)).Inc()
		return []protocol.Event{protocol.NewError("Not calibrated yet")}, nil
	}

	features, blink, err := s.estimator.ExtractFeatures(frame)
	if err != nil {
		return nil, err
	}
	metrics.FramesProcessed.WithLabelValues("tracking").Inc()

	update, err := s.tracker.Track(s.estimator, features, blink, now)
	if err != nil {
		return nil, err
	}
	metrics.GazeUpdates.Inc()
	if update.DoubleBlink {
		metrics.DoubleBlinks.Inc()
	}
	return []protocol.Event{update}, nil
}

// LoadModel attempts to hydrate the persisted artifact. Calibrated flips
// only on success; a missing artifact is a reported failure, not a fault.
func (s *Session) LoadModel() []protocol.Event {
	err := s.estimator.LoadArtifact(s.artifactPath)
	switch {
	case err == nil:
		s.calibrated = true
		log.Info("model loaded", "client", s.ID, "path", s.artifactPath)
		return []protocol.Event{protocol.NewModelLoaded(true, "")}
	case errors.Is(err, gaze.ErrNoArtifact):
		return []protocol.Event{protocol.NewModelLoaded(false, "No saved model found")}
	default:
		log.Warn("model load failed", "client", s.ID, "error", err)
		return []protocol.Event{protocol.NewModelLoaded(false, err.Error())}
	}
}

// close releases the model handle and removes the artifact directory.
// Called by the registry during teardown.
func (s *Session) close() {
	if err := s.estimator.Close(); err != nil {
		log.Warn("estimator close failed", "client", s.ID, "error", err)
	}
	if s.dir != "" {
		if err := os.RemoveAll(s.dir); err != nil {
			log.Warn("artifact dir removal failed", "client", s.ID, "dir", s.dir, "error", err)
		}
	}
}
