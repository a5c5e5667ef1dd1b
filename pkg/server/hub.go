// Package server accepts extension WebSocket connections and dispatches
// protocol commands to per-client sessions.
package server

import (
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/eyemouse/go-eyemouse/internal/log"
	"github.com/eyemouse/go-eyemouse/pkg/metrics"
	"github.com/eyemouse/go-eyemouse/pkg/protocol"
	"github.com/eyemouse/go-eyemouse/pkg/session"
	"github.com/eyemouse/go-eyemouse/pkg/video"
)

// Hub owns the WebSocket endpoint. Each connection is served by its own
// read loop, which processes commands strictly in arrival order and writes
// every resulting event before reading the next command. Sessions never
// share state, so the registry is the only cross-connection structure.
type Hub struct {
	registry     *session.Registry
	messageLimit int64

	// Stats
	messagesReceived atomic.Uint64
	eventsSent       atomic.Uint64
}

// Stats is a snapshot of hub counters.
type Stats struct {
	Sessions         int    `json:"sessions"`
	MessagesReceived uint64 `json:"messages_received"`
	EventsSent       uint64 `json:"events_sent"`
}

// NewHub creates a hub over the given session registry.
func NewHub(registry *session.Registry, messageLimit int) *Hub {
	return &Hub{
		registry:     registry,
		messageLimit: int64(messageLimit),
	}
}

// RegisterRoutes registers the WebSocket routes on a Fiber app.
func (h *Hub) RegisterRoutes(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws", websocket.New(h.handleClient))
	app.Get("/ws/:client_id", websocket.New(h.handleClient))
}

// Stats returns a snapshot of hub counters.
func (h *Hub) Stats() Stats {
	return Stats{
		Sessions:         h.registry.Count(),
		MessagesReceived: h.messagesReceived.Load(),
		EventsSent:       h.eventsSent.Load(),
	}
}

// handleClient serves one extension connection until it closes or a fatal
// per-session fault occurs. Teardown on exit is idempotent, so an explicit
// stop followed by disconnect does not double-fault.
func (h *Hub) handleClient(c *websocket.Conn) {
	clientID := c.Params("client_id")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	log.Info("client connected", "client", clientID)
	defer func() {
		h.registry.Remove(clientID)
		log.Info("client disconnected", "client", clientID)
	}()

	c.SetReadLimit(h.messageLimit)

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			log.Debug("read ended", "client", clientID, "error", err)
			return
		}
		h.messagesReceived.Add(1)

		// An unparsable message is a transport fault, fatal to the session.
		cmd, err := protocol.ParseCommand(data)
		if err != nil {
			log.Warn("malformed command, closing", "client", clientID, "error", err)
			return
		}

		events, err := h.dispatch(clientID, cmd, time.Now())
		if err != nil {
			log.Error("fatal session fault", "client", clientID, "command", cmd.Command, "error", err)
			return
		}

		for _, e := range events {
			if err := h.writeEvent(c, e); err != nil {
				log.Debug("write failed", "client", clientID, "error", err)
				return
			}
		}
	}
}

// dispatch resolves the session lazily and routes one command. A returned
// error is fatal to the session; recoverable rejections come back as error
// events.
func (h *Hub) dispatch(clientID string, cmd *protocol.Command, now time.Time) ([]protocol.Event, error) {
	switch cmd.Command {
	case protocol.CmdPing:
		return []protocol.Event{protocol.NewPong()}, nil

	case protocol.CmdStop:
		// Idempotent: a second stop finds no session and still acknowledges.
		h.registry.Remove(clientID)
		return []protocol.Event{protocol.NewStopped()}, nil
	}

	s, err := h.registry.GetOrCreate(clientID)
	if err != nil {
		return nil, err
	}

	switch cmd.Command {
	case protocol.CmdStartCalibration:
		return s.StartCalibration(), nil

	case protocol.CmdStartTune:
		return s.StartTune(), nil

	case protocol.CmdCalibrationFrame:
		frame, err := video.DecodeDataURL(cmd.Frame)
		if err != nil {
			metrics.FrameDecodeErrors.Inc()
			return nil, err
		}
		return s.CalibrationFrame(frame, now)

	case protocol.CmdTrackGaze:
		frame, err := video.DecodeDataURL(cmd.Frame)
		if err != nil {
			metrics.FrameDecodeErrors.Inc()
			return nil, err
		}
		return s.TrackGaze(frame, now)

	case protocol.CmdLoadModel:
		return s.LoadModel(), nil

	default:
		metrics.CommandErrors.WithLabelValues(string(cmd.Command)).Inc()
		return []protocol.Event{protocol.NewError("Unknown command: " + string(cmd.Command))}, nil
	}
}

func (h *Hub) writeEvent(c *websocket.Conn, e protocol.Event) error {
	data, err := protocol.Encode(e)
	if err != nil {
		return err
	}
	if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	h.eventsSent.Add(1)
	return nil
}
