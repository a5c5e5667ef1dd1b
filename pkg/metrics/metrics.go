// Package metrics exposes Prometheus instrumentation for the gaze backend.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Session metrics
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eyemouse_sessions_active",
		Help: "The current number of active client sessions.",
	})
	SessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eyemouse_sessions_total",
		Help: "The total number of client sessions created.",
	})

	// Frame metrics
	FramesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eyemouse_frames_processed_total",
		Help: "The total number of webcam frames processed.",
	}, []string{"kind"}) // "calibration" or "tracking"
	FrameDecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eyemouse_frame_decode_errors_total",
		Help: "The total number of frames that failed to decode.",
	})

	// Calibration metrics
	TrainingRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eyemouse_training_runs_total",
		Help: "The total number of model training passes.",
	}, []string{"mode", "outcome"}) // mode: "calibrate"/"tune", outcome: "success"/"failure"

	// Tracking metrics
	GazeUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eyemouse_gaze_updates_total",
		Help: "The total number of gaze update events emitted.",
	})
	DoubleBlinks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eyemouse_double_blinks_total",
		Help: "The total number of double-blink gestures detected.",
	})

	// Protocol metrics
	CommandErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eyemouse_command_errors_total",
		Help: "The total number of commands rejected with an error event.",
	}, []string{"command"})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
