package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/orthoroute/pkg/diagram"
	errs "github.com/matzehuels/orthoroute/pkg/errors"
	"github.com/matzehuels/orthoroute/pkg/geom"
)

// Live message types.
const (
	liveMove   = "move"
	liveResize = "resize"
	liveRevert = "revert"

	liveResult = "result"
	liveEvent  = "event"
	liveError  = "error"
)

const (
	liveWriteWait = 10 * time.Second
	liveQueue     = 64
)

// liveMessage is sent by the client.
type liveMessage struct {
	Type   string     `json:"type"`
	Seq    int64      `json:"seq,omitempty"`
	Shape  string     `json:"shape"`
	Delta  geom.Point `json:"delta"`
	Bounds geom.Rect  `json:"bounds"`
}

// liveReply is sent by the server.
type liveReply struct {
	Type        string               `json:"type"`
	Seq         int64                `json:"seq,omitempty"`
	Connections []diagram.Connection `json:"connections,omitempty"`
	Event       *diagram.Event       `json:"event,omitempty"`
	Error       *apiError            `json:"error,omitempty"`
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	d, ok := s.withDiagram(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	l := s.log.With("diagram", d.ID(), "remote", r.RemoteAddr)
	l.Debug("live session opened")

	out := make(chan liveReply, liveQueue)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for reply := range out {
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteJSON(reply); err != nil {
				l.Debug("live write", "err", err)
				return
			}
		}
	}()

	// Events are delivered while the diagram holds its event lock, so the
	// listener must never block.
	unsubscribe := d.Subscribe(diagram.ListenerFunc(func(e diagram.Event) {
		select {
		case out <- liveReply{Type: liveEvent, Event: &e}:
		default:
			l.Warn("live client too slow, dropping event", "type", e.Type, "version", e.Version)
		}
	}))

	s.readLive(r.Context(), conn, d, out, done)

	unsubscribe()
	close(out)
	<-done
	l.Debug("live session closed")
}

// readLive applies client messages one at a time until the connection
// closes or the writer gives up.
func (s *Server) readLive(ctx context.Context, conn *websocket.Conn, d *diagram.Diagram, out chan<- liveReply, done <-chan struct{}) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("live read", "err", err)
			}
			return
		}

		var msg liveMessage
		var reply liveReply
		if err := json.Unmarshal(data, &msg); err != nil {
			reply = errorReply(0, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode live message"))
		} else {
			reply = s.applyLive(ctx, d, msg)
		}

		select {
		case out <- reply:
		case <-done:
			return
		}
	}
}

func (s *Server) applyLive(ctx context.Context, d *diagram.Diagram, msg liveMessage) liveReply {
	var (
		changed []diagram.Connection
		err     error
	)
	switch msg.Type {
	case liveMove:
		changed, err = d.MoveShape(ctx, msg.Shape, msg.Delta)
	case liveResize:
		changed, err = d.ResizeShape(ctx, msg.Shape, msg.Bounds)
	case liveRevert:
		changed, err = d.RevertResize(ctx, msg.Shape)
	default:
		err = errs.New(errs.ErrCodeInvalidInput, "unknown live message type %q", msg.Type)
	}
	if err == nil {
		err = s.persist(ctx, d)
	}
	if err != nil {
		return errorReply(msg.Seq, err)
	}
	if changed == nil {
		changed = []diagram.Connection{}
	}
	return liveReply{Type: liveResult, Seq: msg.Seq, Connections: changed}
}

func errorReply(seq int64, err error) liveReply {
	_, body := toAPIError(err)
	return liveReply{Type: liveError, Seq: seq, Error: &body}
}
