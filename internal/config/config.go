// Package config loads and validates the go-eyemouse server configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig is the full server configuration.
type AppConfig struct {
	Server      ServerConfig
	Screen      ScreenConfig
	Storage     StorageConfig
	Calibration CalibrationConfig
	WebSocket   WebSocketConfig
	Metrics     MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int
	LogLevel string
}

// ScreenConfig is the screen geometry assigned to new sessions.
type ScreenConfig struct {
	Width  int
	Height int
}

// StorageConfig controls where per-session model artifacts live.
type StorageConfig struct {
	TempDir string
}

// CalibrationConfig holds the calibration ritual timing and thresholds.
type CalibrationConfig struct {
	FaceWait       time.Duration
	Pulse          time.Duration
	Capture        time.Duration
	MinSamples     int
	TunePoints     int
	TuneMargin     float64
	MinTuneSamples int
}

// WebSocketConfig holds connection limits.
type WebSocketConfig struct {
	MessageSizeLimit int // bytes
	WriteTimeout     int // seconds
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from config.yaml (working dir or ./configs),
// environment variables prefixed with EYEMOUSE_, and built-in defaults.
// A missing config file is not an error; defaults apply.
func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvPrefix("EYEMOUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &AppConfig{
		Server: ServerConfig{
			Port:     v.GetInt("server.port"),
			LogLevel: v.GetString("server.logLevel"),
		},
		Screen: ScreenConfig{
			Width:  v.GetInt("screen.width"),
			Height: v.GetInt("screen.height"),
		},
		Storage: StorageConfig{
			TempDir: v.GetString("storage.tempDir"),
		},
		Calibration: CalibrationConfig{
			FaceWait:       v.GetDuration("calibration.faceWait"),
			Pulse:          v.GetDuration("calibration.pulse"),
			Capture:        v.GetDuration("calibration.capture"),
			MinSamples:     v.GetInt("calibration.minSamples"),
			TunePoints:     v.GetInt("calibration.tunePoints"),
			TuneMargin:     v.GetFloat64("calibration.tuneMargin"),
			MinTuneSamples: v.GetInt("calibration.minTuneSamples"),
		},
		WebSocket: WebSocketConfig{
			MessageSizeLimit: v.GetInt("websocket.messageSizeLimit"),
			WriteTimeout:     v.GetInt("websocket.writeTimeout"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
			Path:    v.GetString("metrics.path"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
