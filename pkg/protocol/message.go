// Package protocol defines the WebSocket message types exchanged between the
// browser extension and the gaze backend. Commands flow extension → server,
// events flow server → extension. Both sides speak flat JSON with a string
// discriminator so the extension can switch on a single field.
package protocol

import (
	"encoding/json"
	"fmt"
)

// CommandType identifies an inbound command.
type CommandType string

const (
	CmdStartCalibration CommandType = "start_calibration" // Plan 5 fixed points, begin ritual
	CmdCalibrationFrame CommandType = "calibration_frame" // One webcam frame during calibration
	CmdStartTune        CommandType = "start_tune"        // Plan random points, augment model
	CmdTrackGaze        CommandType = "track_gaze"        // One webcam frame for gaze prediction
	CmdLoadModel        CommandType = "load_model"        // Hydrate a persisted model artifact
	CmdStop             CommandType = "stop"              // Tear down the session
	CmdPing             CommandType = "ping"              // Liveness probe
)

// Command is an inbound message from the extension.
// Frame carries a base64 data-URL webcam frame for the frame-bearing commands.
type Command struct {
	Command CommandType `json:"command"`
	Frame   string      `json:"frame,omitempty"`
}

// ParseCommand parses an inbound JSON command.
func ParseCommand(data []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("parse command: %w", err)
	}
	if cmd.Command == "" {
		return nil, fmt.Errorf("command field missing")
	}
	return &cmd, nil
}

// EventType identifies an outbound event.
type EventType string

const (
	EventCalibrationStarted EventType = "calibration_started"
	EventFaceCountdown      EventType = "calibration_face_countdown"
	EventPointStart         EventType = "calibration_point_start"
	EventPulse              EventType = "calibration_pulse"
	EventCapture            EventType = "calibration_capture"
	EventCalibrationDone    EventType = "calibration_complete"
	EventGazeUpdate         EventType = "gaze_update"
	EventModelLoaded        EventType = "model_loaded"
	EventStopped            EventType = "stopped"
	EventError              EventType = "error"
	EventPong               EventType = "pong"
)

// Event is implemented by every outbound message.
type Event interface {
	EventType() EventType
}

// Point2D is a normalized (0-1) screen coordinate for client-side display.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CalibrationStarted announces a new calibration or tune run with its target layout.
type CalibrationStarted struct {
	Type    EventType `json:"type"`
	Points  []Point2D `json:"points"`
	Message string    `json:"message"`
	IsTune  bool      `json:"is_tune"`
}

// FaceCountdown reports progress of the face-acquisition countdown.
type FaceCountdown struct {
	Type     EventType `json:"type"`
	Progress float64   `json:"progress"`
	Message  string    `json:"message,omitempty"`
}

// PointStart announces the next calibration target.
type PointStart struct {
	Type  EventType `json:"type"`
	Index int       `json:"index"`
	Total int       `json:"total"`
}

// Pulse reports dwell progress on the current target.
type Pulse struct {
	Type     EventType `json:"type"`
	Progress float64   `json:"progress"`
}

// Capture reports sample-capture progress on the current target.
type Capture struct {
	Type     EventType `json:"type"`
	Progress float64   `json:"progress"`
}

// CalibrationComplete reports the outcome of a training pass.
type CalibrationComplete struct {
	Type    EventType `json:"type"`
	Success bool      `json:"success"`
	Samples int       `json:"samples,omitempty"`
	IsTune  bool      `json:"is_tune"`
	Error   string    `json:"error,omitempty"`
}

// GazeUpdate carries one normalized gaze prediction. X/Y are null when the
// face is absent or a blink suppressed prediction.
type GazeUpdate struct {
	Type        EventType `json:"type"`
	X           *float64  `json:"x"`
	Y           *float64  `json:"y"`
	Blink       bool      `json:"blink"`
	DoubleBlink bool      `json:"double_blink"`
}

// ModelLoaded reports the outcome of an artifact hydration attempt.
type ModelLoaded struct {
	Type    EventType `json:"type"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
}

// Stopped acknowledges session teardown.
type Stopped struct {
	Type    EventType `json:"type"`
	Success bool      `json:"success"`
}

// ErrorEvent reports a rejected command. The connection stays open.
type ErrorEvent struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
}

// Pong answers a ping.
type Pong struct {
	Type      EventType `json:"type"`
	Timestamp int64     `json:"ts"`
}

func (e CalibrationStarted) EventType() EventType  { return e.Type }
func (e FaceCountdown) EventType() EventType       { return e.Type }
func (e PointStart) EventType() EventType          { return e.Type }
func (e Pulse) EventType() EventType               { return e.Type }
func (e Capture) EventType() EventType             { return e.Type }
func (e CalibrationComplete) EventType() EventType { return e.Type }
func (e GazeUpdate) EventType() EventType          { return e.Type }
func (e ModelLoaded) EventType() EventType         { return e.Type }
func (e Stopped) EventType() EventType             { return e.Type }
func (e ErrorEvent) EventType() EventType          { return e.Type }
func (e Pong) EventType() EventType                { return e.Type }

// Encode serializes an event to its JSON wire form.
func Encode(e Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", e.EventType(), err)
	}
	return data, nil
}
