package gaze

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func TestArtifactRoundTrip(t *testing.T) {
	features, targets := linearSamples(12)

	trained := newRidgeModel(1e-9)
	if err := trained.fit(features, targets); err != nil {
		t.Fatalf("fit() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "gaze_model.bin")

	src := &RidgeEstimator{model: trained}
	if err := src.SaveArtifact(path); err != nil {
		t.Fatalf("SaveArtifact() error = %v", err)
	}

	dst := &RidgeEstimator{model: newRidgeModel(1.0)}
	if err := dst.LoadArtifact(path); err != nil {
		t.Fatalf("LoadArtifact() error = %v", err)
	}

	for _, f := range features {
		want, _ := trained.predict(f)
		got, err := dst.Predict(f)
		if err != nil {
			t.Fatalf("Predict() error = %v", err)
		}
		if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 {
			t.Errorf("loaded model diverges: (%v, %v) vs (%v, %v)", got.X, got.Y, want.X, want.Y)
		}
	}
}

func TestSaveArtifactBeforeTraining(t *testing.T) {
	e := &RidgeEstimator{model: newRidgeModel(1.0)}
	path := filepath.Join(t.TempDir(), "gaze_model.bin")

	if err := e.SaveArtifact(path); !errors.Is(err, ErrNotTrained) {
		t.Errorf("SaveArtifact() error = %v, want ErrNotTrained", err)
	}
}

func TestLoadArtifactMissing(t *testing.T) {
	e := &RidgeEstimator{model: newRidgeModel(1.0)}
	path := filepath.Join(t.TempDir(), "gaze_model.bin")

	if err := e.LoadArtifact(path); !errors.Is(err, ErrNoArtifact) {
		t.Errorf("LoadArtifact() error = %v, want ErrNoArtifact", err)
	}
}
