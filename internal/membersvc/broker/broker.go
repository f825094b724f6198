package broker

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/fielia/club-services/internal/comm"
)

// Broker publishes member activity events to NATS for the socket service to
// fan out. Publishing is best-effort, a broker failure never fails the
// operation that produced the event.
type Broker struct {
	Conn *nats.Conn
}

func NewBroker(nc *nats.Conn) *Broker {
	return &Broker{Conn: nc}
}

func (b *Broker) Publish(eventType string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Errorf("Error marshaling event payload for %s: %v", eventType, err)
		return
	}

	event := comm.MemberEvent{
		Type: eventType,
		Data: payload,
		At:   time.Now().UTC(),
	}

	bytes, err := json.Marshal(event)
	if err != nil {
		log.Errorf("Error marshaling event %s: %v", eventType, err)
		return
	}

	if err := b.Conn.Publish(comm.EventTopic, bytes); err != nil {
		log.Errorf("Failed to publish %s to NATS topic %s: %v", eventType, comm.EventTopic, err)
		return
	}

	log.Debugf("published event %s", eventType)
}
