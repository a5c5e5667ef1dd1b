// Package gaze provides the personalized gaze-estimation model: feature
// extraction from webcam frames, supervised training against screen targets,
// point prediction, and artifact persistence. The session layer consumes it
// through the Estimator interface and never interprets feature contents.
package gaze

// Features is one frame's extracted feature vector. Nil means no face.
type Features []float64

// Point is a pixel-space screen coordinate.
type Point struct {
	X float64
	Y float64
}

// Estimator is the capability contract for a per-session gaze model.
// Implementations need not be safe for concurrent use; each session owns
// exactly one instance and drives it from a single connection task.
type Estimator interface {
	// ExtractFeatures decodes a frame and returns its feature vector and
	// whether a blink was detected. Features is nil when no face is visible.
	ExtractFeatures(frame []byte) (Features, bool, error)

	// Train fits the model on parallel feature/target slices.
	Train(features []Features, targets []Point) error

	// Predict maps a feature vector to a pixel-space gaze point.
	// Returns ErrNotTrained before a successful Train or LoadArtifact.
	Predict(f Features) (Point, error)

	// SaveArtifact persists the trained model to path.
	SaveArtifact(path string) error

	// LoadArtifact hydrates a previously saved model from path.
	// Returns ErrNoArtifact when path does not exist.
	LoadArtifact(path string) error

	// Close releases model resources.
	Close() error
}

// Factory creates one Estimator per session.
type Factory func() (Estimator, error)
