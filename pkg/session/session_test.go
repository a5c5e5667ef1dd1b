package session

import (
	"os"
	"testing"
	"time"

	"github.com/eyemouse/go-eyemouse/pkg/calibration"
	"github.com/eyemouse/go-eyemouse/pkg/gaze"
	"github.com/eyemouse/go-eyemouse/pkg/protocol"
)

var (
	t0    = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	frame = []byte("jpeg-bytes")
)

func newTestSession(t *testing.T) (*Session, *gaze.Mock) {
	t.Helper()

	mock := gaze.NewMock()
	settings := DefaultSettings()
	settings.ArtifactRoot = t.TempDir()

	registry := NewRegistry(settings, func() (gaze.Estimator, error) {
		return mock, nil
	})
	s, err := registry.GetOrCreate("client-1")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	return s, mock
}

// driveRun pushes a started session through a full run: face countdown,
// then one pulse-completing and one capture-completing frame per target.
// Returns the events of the final frame.
func driveRun(t *testing.T, s *Session, start time.Time, targets int, captureFace bool) []protocol.Event {
	t.Helper()

	mustFrame := func(now time.Time) []protocol.Event {
		events, err := s.CalibrationFrame(frame, now)
		if err != nil {
			t.Fatalf("CalibrationFrame() error = %v", err)
		}
		return events
	}

	mock := s.estimator.(*gaze.Mock)
	mock.SetFrame(gaze.Features{0.1, 0.2}, false)
	mustFrame(start)
	mustFrame(start.Add(2 * time.Second))

	now := start.Add(2 * time.Second)
	var events []protocol.Event
	for i := 0; i < targets; i++ {
		now = now.Add(time.Second)
		mock.SetFrame(gaze.Features{0.1, 0.2}, false)
		mustFrame(now) // pulse completes
		now = now.Add(time.Second)
		if !captureFace {
			mock.SetFrame(nil, false)
		}
		events = mustFrame(now) // capture completes
	}
	return events
}

func lastComplete(t *testing.T, events []protocol.Event) protocol.CalibrationComplete {
	t.Helper()
	for i := len(events) - 1; i >= 0; i-- {
		if done, ok := events[i].(protocol.CalibrationComplete); ok {
			return done
		}
	}
	t.Fatal("no calibration_complete event in final frame")
	return protocol.CalibrationComplete{}
}

func TestSessionCalibrationSuccess(t *testing.T) {
	s, mock := newTestSession(t)

	events := s.StartCalibration()
	started := events[0].(protocol.CalibrationStarted)
	if len(started.Points) != 5 || started.IsTune {
		t.Fatalf("started with %d points, is_tune=%v; want 5 calibration points", len(started.Points), started.IsTune)
	}

	done := lastComplete(t, driveRun(t, s, t0, 5, true))
	if !done.Success || done.Samples != 5 {
		t.Fatalf("complete = %+v, want success with 5 samples", done)
	}
	if !s.Calibrated() {
		t.Error("session should be calibrated after a successful run")
	}
	if mock.TrainCalls != 1 {
		t.Errorf("TrainCalls = %d, want 1", mock.TrainCalls)
	}
	if _, err := os.Stat(s.ArtifactPath()); err != nil {
		t.Errorf("artifact not persisted: %v", err)
	}
}

func TestSessionCalibrationInsufficientSamples(t *testing.T) {
	s, mock := newTestSession(t)

	s.StartCalibration()
	done := lastComplete(t, driveRun(t, s, t0, 5, false))
	if done.Success {
		t.Fatal("run with no captured faces should fail")
	}
	if done.Error == "" {
		t.Error("failure should carry an error message")
	}
	if s.Calibrated() {
		t.Error("failed run must not calibrate the session")
	}
	if mock.TrainCalls != 0 {
		t.Errorf("TrainCalls = %d, training must be refused below the minimum", mock.TrainCalls)
	}
	if s.Phase() != calibration.PhaseIdle {
		t.Errorf("phase = %v after failed run, want idle", s.Phase())
	}
}

func TestSessionTuneRequiresCalibration(t *testing.T) {
	s, mock := newTestSession(t)

	events := s.StartTune()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if _, ok := events[0].(protocol.ErrorEvent); !ok {
		t.Fatalf("event = %T, want error event", events[0])
	}
	if s.Phase() != calibration.PhaseIdle {
		t.Error("rejected tune must not change phase")
	}
	if mock.TrainCalls != 0 {
		t.Error("rejected tune must not train")
	}
}

func TestSessionTuneAccumulatesSamples(t *testing.T) {
	s, mock := newTestSession(t)

	s.StartCalibration()
	driveRun(t, s, t0, 5, true)

	events := s.StartTune()
	started := events[0].(protocol.CalibrationStarted)
	if len(started.Points) != 10 || !started.IsTune {
		t.Fatalf("tune started with %d points, is_tune=%v; want 10 tune points", len(started.Points), started.IsTune)
	}

	done := lastComplete(t, driveRun(t, s, t0.Add(time.Hour), 10, true))
	if !done.Success || !done.IsTune {
		t.Fatalf("complete = %+v, want tune success", done)
	}
	// Training set is calibration samples plus tune samples
	if done.Samples != 15 {
		t.Errorf("samples = %d, want 15", done.Samples)
	}
	if len(mock.TrainedFeatures) != 15 {
		t.Errorf("trained on %d samples, want 15", len(mock.TrainedFeatures))
	}
	if mock.TrainCalls != 2 {
		t.Errorf("TrainCalls = %d, want 2", mock.TrainCalls)
	}
}

func TestSessionTuneFailureKeepsModel(t *testing.T) {
	s, _ := newTestSession(t)

	s.StartCalibration()
	driveRun(t, s, t0, 5, true)

	s.StartTune()
	// Captures contribute nothing: 5 accumulated samples < 10 tune minimum
	done := lastComplete(t, driveRun(t, s, t0.Add(time.Hour), 10, false))
	if done.Success {
		t.Fatal("tune below the sample minimum should fail")
	}
	if !s.Calibrated() {
		t.Error("failed tune must not un-calibrate a trained session")
	}
}

func TestSessionTrackGaze(t *testing.T) {
	s, mock := newTestSession(t)

	// Before calibration: explicit error event, never a gaze update
	events, err := s.TrackGaze(frame, t0)
	if err != nil {
		t.Fatalf("TrackGaze() error = %v", err)
	}
	if _, ok := events[0].(protocol.ErrorEvent); !ok {
		t.Fatalf("event = %T, want error before calibration", events[0])
	}

	s.StartCalibration()
	driveRun(t, s, t0, 5, true)

	// The mock predicts feature values as pixel coordinates
	mock.SetFrame(gaze.Features{960, 540}, false)
	events, err = s.TrackGaze(frame, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("TrackGaze() error = %v", err)
	}
	update := events[0].(protocol.GazeUpdate)
	if update.X == nil || *update.X != 0.5 || *update.Y != 0.5 {
		t.Errorf("update = %+v, want normalized (0.5, 0.5)", update)
	}

	// Blink frame: no coordinates, blink flagged
	mock.SetFrame(gaze.Features{960, 540}, true)
	events, err = s.TrackGaze(frame, t0.Add(time.Hour+time.Second))
	if err != nil {
		t.Fatalf("TrackGaze() error = %v", err)
	}
	update = events[0].(protocol.GazeUpdate)
	if update.X != nil || !update.Blink {
		t.Errorf("update = %+v, want blank blink update", update)
	}
}

func TestSessionLoadModel(t *testing.T) {
	s, _ := newTestSession(t)

	events := s.LoadModel()
	loaded := events[0].(protocol.ModelLoaded)
	if loaded.Success {
		t.Fatal("load without an artifact should fail")
	}
	if s.Calibrated() {
		t.Error("failed load must not calibrate the session")
	}

	// With an artifact on disk the load hydrates the model
	if err := os.WriteFile(s.ArtifactPath(), []byte("mock-artifact"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	events = s.LoadModel()
	loaded = events[0].(protocol.ModelLoaded)
	if !loaded.Success {
		t.Fatalf("load = %+v, want success", loaded)
	}
	if !s.Calibrated() {
		t.Error("successful load should calibrate the session")
	}
}

func TestSessionIgnoresFramesWhenIdle(t *testing.T) {
	s, mock := newTestSession(t)
	mock.SetFrame(gaze.Features{0.1, 0.2}, false)

	events, err := s.CalibrationFrame(frame, t0)
	if err != nil {
		t.Fatalf("CalibrationFrame() error = %v", err)
	}
	if events != nil {
		t.Errorf("idle session should drop calibration frames, got %d events", len(events))
	}
}

func TestSessionRecalibrationResets(t *testing.T) {
	s, _ := newTestSession(t)

	s.StartCalibration()
	driveRun(t, s, t0, 5, true)
	if !s.Calibrated() {
		t.Fatal("setup: calibration should have succeeded")
	}

	s.StartCalibration()
	if s.Calibrated() {
		t.Error("restarting calibration must clear the calibrated gate")
	}
	if s.SampleCount() != 0 {
		t.Errorf("samples = %d after restart, want 0", s.SampleCount())
	}
}
