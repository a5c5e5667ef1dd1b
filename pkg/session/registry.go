package session

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/eyemouse/go-eyemouse/internal/log"
	"github.com/eyemouse/go-eyemouse/pkg/calibration"
	"github.com/eyemouse/go-eyemouse/pkg/gaze"
	"github.com/eyemouse/go-eyemouse/pkg/metrics"
	"github.com/eyemouse/go-eyemouse/pkg/tracking"
)

const artifactFilename = "gaze_model.bin"

// Registry maps client identifiers to sessions. It is the only shared
// mutable structure between connection tasks and is safe for concurrent
// use; each session's internals are driven by a single connection only.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	settings Settings
	factory  gaze.Factory
}

// NewRegistry creates a registry. factory allocates one model handle per
// session.
func NewRegistry(settings Settings, factory gaze.Factory) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		settings: settings,
		factory:  factory,
	}
}

// GetOrCreate returns the session for id, creating it on first contact.
// Creation allocates the model handle and the per-client artifact directory.
func (r *Registry) GetOrCreate(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s, nil
	}

	estimator, err := r.factory()
	if err != nil {
		return nil, fmt.Errorf("allocate gaze model: %w", err)
	}

	dir := filepath.Join(r.settings.ArtifactRoot, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		estimator.Close()
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}

	s = &Session{
		ID:           id,
		settings:     r.settings,
		estimator:    estimator,
		machine:      calibration.NewMachine(r.settings.Timing),
		tracker:      tracking.NewTracker(r.settings.ScreenWidth, r.settings.ScreenHeight),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		dir:          dir,
		artifactPath: filepath.Join(dir, artifactFilename),
	}
	r.sessions[id] = s

	metrics.SessionsTotal.Inc()
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	log.Info("session created", "client", id, "dir", dir)
	return s, nil
}

// Get returns the session for id without creating one.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove tears down the session for id: model handle closed, artifact
// directory deleted, entry evicted. Idempotent; removing an absent session
// is not an error.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	count := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return
	}

	s.close()
	r.removeRootIfEmpty()
	metrics.ActiveSessions.Set(float64(count))
	log.Info("session removed", "client", id, "remaining", count)
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll tears down every session; used during server shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for id, s := range sessions {
		s.close()
		log.Debug("session closed on shutdown", "client", id)
	}
	r.removeRootIfEmpty()
	metrics.ActiveSessions.Set(0)
}

// removeRootIfEmpty deletes the shared temp root once the last client
// directory is gone.
func (r *Registry) removeRootIfEmpty() {
	entries, err := os.ReadDir(r.settings.ArtifactRoot)
	if err != nil || len(entries) > 0 {
		return
	}
	if err := os.Remove(r.settings.ArtifactRoot); err != nil {
		log.Debug("temp root removal skipped", "error", err)
	}
}
