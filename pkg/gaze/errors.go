package gaze

import "errors"

var (
	// ErrNotTrained is returned when predicting or saving before training.
	ErrNotTrained = errors.New("gaze model not trained")

	// ErrNoArtifact is returned when loading a model artifact that does not exist.
	ErrNoArtifact = errors.New("no saved model artifact")

	// ErrNoSamples is returned when training on an empty sample set.
	ErrNoSamples = errors.New("no training samples")

	// ErrDimensionMismatch is returned when sample vectors disagree in length.
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
)
