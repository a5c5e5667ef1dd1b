package gaze

import (
	"fmt"
	"os"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Config holds the concrete estimator configuration.
type Config struct {
	ModelPath        string  // Path to the YuNet ONNX face model
	ConfidenceThresh float64 // Minimum face detection confidence
	InputWidth       int     // Detector input width
	InputHeight      int     // Detector input height
	Lambda           float64 // Ridge regularization strength
	BlinkThresh      float64 // Eye-patch contrast below this reads as a blink
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.6,
		InputWidth:       320,
		InputHeight:      320,
		Lambda:           1.0,
		BlinkThresh:      9.0,
	}
}

// artifact is the serialized form of a trained ridge model.
type artifact struct {
	Version int         `msgpack:"version"`
	Lambda  float64     `msgpack:"lambda"`
	Weights [][]float64 `msgpack:"weights"`
}

const artifactVersion = 1

// RidgeEstimator combines YuNet landmark extraction with a ridge regression
// from landmark features to screen coordinates.
type RidgeEstimator struct {
	mu        sync.Mutex
	extractor *FaceExtractor
	model     *ridgeModel
}

// NewRidgeEstimator creates an estimator backed by the YuNet face model at
// cfg.ModelPath.
func NewRidgeEstimator(cfg Config) (*RidgeEstimator, error) {
	extractor, err := NewFaceExtractor(cfg)
	if err != nil {
		return nil, fmt.Errorf("create feature extractor: %w", err)
	}
	return &RidgeEstimator{
		extractor: extractor,
		model:     newRidgeModel(cfg.Lambda),
	}, nil
}

// ExtractFeatures implements Estimator.
func (e *RidgeEstimator) ExtractFeatures(frame []byte) (Features, bool, error) {
	return e.extractor.Extract(frame)
}

// Train implements Estimator.
func (e *RidgeEstimator) Train(features []Features, targets []Point) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.fit(features, targets)
}

// Predict implements Estimator.
func (e *RidgeEstimator) Predict(f Features) (Point, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.predict(f)
}

// SaveArtifact implements Estimator.
func (e *RidgeEstimator) SaveArtifact(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.model.trained() {
		return ErrNotTrained
	}
	data, err := msgpack.Marshal(artifact{
		Version: artifactVersion,
		Lambda:  e.model.lambda,
		Weights: e.model.export(),
	})
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// LoadArtifact implements Estimator.
func (e *RidgeEstimator) LoadArtifact(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ErrNoArtifact
	}
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}

	var a artifact
	if err := msgpack.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("unmarshal artifact: %w", err)
	}
	if a.Version != artifactVersion {
		return fmt.Errorf("unsupported artifact version %d", a.Version)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	model := newRidgeModel(a.Lambda)
	if err := model.restore(a.Weights); err != nil {
		return err
	}
	e.model = model
	return nil
}

// Close implements Estimator.
func (e *RidgeEstimator) Close() error {
	return e.extractor.Close()
}
