package protocol

import "time"

// NewCalibrationStarted builds the run-start announcement.
func NewCalibrationStarted(points []Point2D, message string, isTune bool) CalibrationStarted {
	return CalibrationStarted{
		Type:    EventCalibrationStarted,
		Points:  points,
		Message: message,
		IsTune:  isTune,
	}
}

// NewFaceCountdown builds a face-acquisition progress event.
func NewFaceCountdown(progress float64, message string) FaceCountdown {
	return FaceCountdown{
		Type:     EventFaceCountdown,
		Progress: progress,
		Message:  message,
	}
}

// NewPointStart announces target index of total.
func NewPointStart(index, total int) PointStart {
	return PointStart{Type: EventPointStart, Index: index, Total: total}
}

// NewPulse builds a pulse-phase progress event.
func NewPulse(progress float64) Pulse {
	return Pulse{Type: EventPulse, Progress: progress}
}

// NewCapture builds a capture-phase progress event.
func NewCapture(progress float64) Capture {
	return Capture{Type: EventCapture, Progress: progress}
}

// NewCalibrationSuccess reports a successful training pass.
func NewCalibrationSuccess(samples int, isTune bool) CalibrationComplete {
	return CalibrationComplete{
		Type:    EventCalibrationDone,
		Success: true,
		Samples: samples,
		IsTune:  isTune,
	}
}

// NewCalibrationFailure reports a failed training pass.
func NewCalibrationFailure(errMsg string, isTune bool) CalibrationComplete {
	return CalibrationComplete{
		Type:   EventCalibrationDone,
		IsTune: isTune,
		Error:  errMsg,
	}
}

// NewGazePoint builds a gaze update with a predicted point.
func NewGazePoint(x, y float64, doubleBlink bool) GazeUpdate {
	return GazeUpdate{
		Type:        EventGazeUpdate,
		X:           &x,
		Y:           &y,
		DoubleBlink: doubleBlink,
	}
}

// NewGazeBlank builds a gaze update without coordinates (blink or face lost).
func NewGazeBlank(blink, doubleBlink bool) GazeUpdate {
	return GazeUpdate{
		Type:        EventGazeUpdate,
		Blink:       blink,
		DoubleBlink: doubleBlink,
	}
}

// NewModelLoaded reports an artifact hydration result.
func NewModelLoaded(success bool, errMsg string) ModelLoaded {
	return ModelLoaded{Type: EventModelLoaded, Success: success, Error: errMsg}
}

// NewStopped acknowledges teardown.
func NewStopped() Stopped {
	return Stopped{Type: EventStopped, Success: true}
}

// NewError builds a recoverable error event.
func NewError(message string) ErrorEvent {
	return ErrorEvent{Type: EventError, Message: message}
}

// NewPong answers a ping with the current server time.
func NewPong() Pong {
	return Pong{Type: EventPong, Timestamp: time.Now().UnixMilli()}
}
