package config

import "github.com/spf13/viper"

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.logLevel", "info")

	// Screen geometry assigned to new sessions. The extension reports
	// normalized coordinates, so this only scales training targets.
	v.SetDefault("screen.width", 1920)
	v.SetDefault("screen.height", 1080)

	// Storage
	v.SetDefault("storage.tempDir", "eyemouse_temp")

	// Calibration ritual
	v.SetDefault("calibration.faceWait", "2s")
	v.SetDefault("calibration.pulse", "1s")
	v.SetDefault("calibration.capture", "1s")
	v.SetDefault("calibration.minSamples", 5)
	v.SetDefault("calibration.tunePoints", 10)
	v.SetDefault("calibration.tuneMargin", 0.15)
	v.SetDefault("calibration.minTuneSamples", 10)

	// WebSocket
	v.SetDefault("websocket.messageSizeLimit", 1024*1024) // webcam frames
	v.SetDefault("websocket.writeTimeout", 10)

	// Metrics
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
