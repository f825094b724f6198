package comm

import (
	"encoding/json"
	"time"
)

// EventTopic is the NATS subject carrying member activity from the membership
// service to the socket service.
const EventTopic = "member.events"

// MemberEvent is the wire shape shared by the member service publisher and
// the socket service fan-out. Type is e.g. "application.created",
// "card.scan.hit", "card.updated".
type MemberEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
	At   time.Time       `json:"at"`
}

// WSMessage wraps an event on its way to a websocket client.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	At    time.Time       `json:"at"`
}
