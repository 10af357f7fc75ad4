package diagram

import (
	"time"

	"github.com/matzehuels/orthoroute/pkg/geom"
)

// Shape is a rectangular element on the canvas.
type Shape struct {
	ID     string    `json:"id" bson:"id"`
	Label  string    `json:"label,omitempty" bson:"label,omitempty"`
	Bounds geom.Rect `json:"bounds" bson:"bounds"`
	// Outline is the selection outline in canvas coordinates. It is
	// maintained by the diagram.
	Outline geom.Rect `json:"outline" bson:"outline"`
}

// Connection is an orthogonal route between two shapes.
type Connection struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	// Start and End pin the sides the connection docks on. The zero value
	// lets the router choose.
	Start     geom.Direction `json:"start,omitempty" bson:"start,omitempty"`
	End       geom.Direction `json:"end,omitempty" bson:"end,omitempty"`
	Waypoints []geom.Bend    `json:"waypoints" bson:"waypoints"`
	Outline   geom.Rect      `json:"outline" bson:"outline"`
}

func (c Connection) clone() Connection {
	c.Waypoints = geom.CloneBends(c.Waypoints)
	return c
}

// Snapshot is the serializable state of a diagram.
type Snapshot struct {
	ID          string       `json:"id" bson:"_id"`
	Name        string       `json:"name,omitempty" bson:"name,omitempty"`
	Version     int64        `json:"version" bson:"version"`
	UpdatedAt   time.Time    `json:"updated_at" bson:"updated_at"`
	Shapes      []Shape      `json:"shapes" bson:"shapes"`
	Connections []Connection `json:"connections" bson:"connections"`
}

// EventType names a change to a diagram.
type EventType string

// Event types, named after the element and what happened to it.
const (
	EventShapeAdded          EventType = "shape.added"
	EventShapeMoved          EventType = "shape.moved"
	EventShapeResized        EventType = "shape.resized"
	EventShapeResizeReverted EventType = "shape.resize.reverted"
	EventShapeRemoved        EventType = "shape.removed"
	EventConnectionAdded     EventType = "connection.added"
	EventConnectionChanged   EventType = "connection.changed"
	EventConnectionRemoved   EventType = "connection.removed"
)

// Event describes one applied change. Exactly one of Shape and Connection is
// set.
type Event struct {
	Type       EventType   `json:"type"`
	DiagramID  string      `json:"diagram_id"`
	Version    int64       `json:"version"`
	Shape      *Shape      `json:"shape,omitempty"`
	Connection *Connection `json:"connection,omitempty"`
	// Repair is the repair kind for connection changes caused by a shape
	// edit ("unchanged", "adjusted" or "relayout").
	Repair string `json:"repair,omitempty"`
}

// Listener receives diagram events.
type Listener interface {
	HandleEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

// HandleEvent calls f(e).
func (f ListenerFunc) HandleEvent(e Event) { f(e) }
