package gaze

import (
	"os"
	"sync"
)

// Mock is a scripted Estimator for testing the session and calibration layers.
type Mock struct {
	mu sync.Mutex

	// Scripted frame results
	features Features
	blink    bool

	// Configurable behavior
	ExtractFunc func(frame []byte) (Features, bool, error)
	TrainFunc   func(features []Features, targets []Point) error
	PredictFunc func(f Features) (Point, error)

	// State
	trained bool
	closed  bool

	// Captured calls for assertions
	TrainedFeatures []Features
	TrainedTargets  []Point
	TrainCalls      int
}

// NewMock creates a new mock estimator. By default no face is visible.
func NewMock() *Mock {
	return &Mock{}
}

// SetFrame scripts the result of subsequent ExtractFeatures calls.
func (m *Mock) SetFrame(f Features, blink bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.features = f
	m.blink = blink
}

// ExtractFeatures implements Estimator.
func (m *Mock) ExtractFeatures(frame []byte) (Features, bool, error) {
	if m.ExtractFunc != nil {
		return m.ExtractFunc(frame)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.features, m.blink, nil
}

// Train implements Estimator.
func (m *Mock) Train(features []Features, targets []Point) error {
	if m.TrainFunc != nil {
		return m.TrainFunc(features, targets)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrainCalls++
	m.TrainedFeatures = append([]Features(nil), features...)
	m.TrainedTargets = append([]Point(nil), targets...)
	m.trained = true
	return nil
}

// Predict implements Estimator. The default maps the first two feature
// values straight to screen coordinates.
func (m *Mock) Predict(f Features) (Point, error) {
	if m.PredictFunc != nil {
		return m.PredictFunc(f)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.trained {
		return Point{}, ErrNotTrained
	}
	p := Point{}
	if len(f) > 0 {
		p.X = f[0]
	}
	if len(f) > 1 {
		p.Y = f[1]
	}
	return p, nil
}

// SaveArtifact implements Estimator. Writes a marker file so teardown
// paths exercise real filesystem state.
func (m *Mock) SaveArtifact(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.trained {
		return ErrNotTrained
	}
	return os.WriteFile(path, []byte("mock-artifact"), 0o644)
}

// LoadArtifact implements Estimator.
func (m *Mock) LoadArtifact(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return ErrNoArtifact
	} else if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trained = true
	return nil
}

// Close implements Estimator.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Trained reports whether the mock holds a trained model.
func (m *Mock) Trained() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trained
}
