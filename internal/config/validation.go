package config

import "fmt"

func (c *AppConfig) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("invalid screen size: %dx%d", c.Screen.Width, c.Screen.Height)
	}
	if c.Storage.TempDir == "" {
		return fmt.Errorf("storage.tempDir must not be empty")
	}
	if c.Calibration.FaceWait <= 0 || c.Calibration.Pulse <= 0 || c.Calibration.Capture <= 0 {
		return fmt.Errorf("calibration phase durations must be positive")
	}
	if c.Calibration.MinSamples < 1 || c.Calibration.MinTuneSamples < 1 {
		return fmt.Errorf("calibration sample minimums must be positive")
	}
	if c.Calibration.TunePoints < 1 {
		return fmt.Errorf("calibration.tunePoints must be positive")
	}
	if c.Calibration.TuneMargin < 0 || c.Calibration.TuneMargin >= 0.5 {
		return fmt.Errorf("calibration.tuneMargin must be in [0, 0.5): %v", c.Calibration.TuneMargin)
	}
	if c.WebSocket.MessageSizeLimit < 1024 {
		return fmt.Errorf("websocket.messageSizeLimit too small: %d", c.WebSocket.MessageSizeLimit)
	}
	return nil
}
