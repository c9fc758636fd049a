package pubsub

import (
	"context"
	"encoding/json"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "board")
	Type    string          `json:"type"`    // Event type (e.g., "node_created", "node_changed")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// BoardTopic carries every change to the canvas board
const BoardTopic = "board"

// Board event types
const (
	NodeCreated  = "node_created"
	NodeChanged  = "node_changed"
	NodeDeleted  = "node_deleted"
	NodeSelected = "node_selected"
	EdgeCreated  = "edge_created"
	EdgeDeleted  = "edge_deleted"
)

// NodeEvent is the payload of node events. Data, Width and Height carry the
// post-change state; Keys lists the keys the patch touched.
type NodeEvent struct {
	ID       string         `json:"id"`
	Type     string         `json:"type,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Width    float64        `json:"width,omitempty"`
	Height   float64        `json:"height,omitempty"`
	Keys     []string       `json:"keys,omitempty"`
	Selected bool           `json:"selected,omitempty"`
}

// EdgeEvent is the payload of edge events
type EdgeEvent struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	SourceHandle string `json:"sourceHandle"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle"`
}
