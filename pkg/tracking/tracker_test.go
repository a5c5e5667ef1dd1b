package tracking

import (
	"testing"
	"time"

	"github.com/eyemouse/go-eyemouse/pkg/gaze"
)

func TestTrackerNormalizesPrediction(t *testing.T) {
	mock := gaze.NewMock()
	if err := mock.Train([]gaze.Features{{0, 0}}, []gaze.Point{{X: 0, Y: 0}}); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	tracker := NewTracker(1920, 1080)

	// The mock predicts the first two feature values as pixel coordinates
	update, err := tracker.Track(mock, gaze.Features{960, 540}, false, t0)
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if update.X == nil || update.Y == nil {
		t.Fatal("coordinates should be present for a face frame")
	}
	if *update.X != 0.5 || *update.Y != 0.5 {
		t.Errorf("gaze = (%v, %v), want (0.5, 0.5)", *update.X, *update.Y)
	}
	if update.Blink {
		t.Error("blink = true, want false")
	}
}

func TestTrackerBlinkSuppressesCoordinates(t *testing.T) {
	mock := gaze.NewMock()
	tracker := NewTracker(1920, 1080)

	update, err := tracker.Track(mock, gaze.Features{100, 100}, true, t0)
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if update.X != nil || update.Y != nil {
		t.Error("blink frame should carry no coordinates")
	}
	if !update.Blink {
		t.Error("blink flag should be set")
	}
}

func TestTrackerNoFace(t *testing.T) {
	mock := gaze.NewMock()
	tracker := NewTracker(1920, 1080)

	update, err := tracker.Track(mock, nil, false, t0)
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if update.X != nil || update.Y != nil {
		t.Error("faceless frame should carry no coordinates")
	}
	if update.Blink {
		t.Error("blink = true, want false")
	}
}

func TestTrackerDoubleBlinkAcrossFrames(t *testing.T) {
	mock := gaze.NewMock()
	tracker := NewTracker(1920, 1080)

	u1, _ := tracker.Track(mock, nil, true, t0)
	if u1.DoubleBlink {
		t.Error("first blink should not fire a double-blink")
	}
	u2, _ := tracker.Track(mock, nil, true, t0.Add(200*time.Millisecond))
	if !u2.DoubleBlink {
		t.Error("second blink within 0.5s should fire a double-blink")
	}
	u3, _ := tracker.Track(mock, nil, true, t0.Add(250*time.Millisecond))
	if u3.DoubleBlink {
		t.Error("cleared history must not re-fire")
	}
}

func TestTrackerPredictFailure(t *testing.T) {
	mock := gaze.NewMock() // untrained: Predict returns ErrNotTrained
	tracker := NewTracker(1920, 1080)

	if _, err := tracker.Track(mock, gaze.Features{1, 2}, false, t0); err == nil {
		t.Error("Track() should surface prediction errors")
	}
}
