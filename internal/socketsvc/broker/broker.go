package broker

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/fielia/club-services/internal/comm"
)

// Broker subscribes to the member event topic and hands each event to the
// websocket hub for fan-out.
type Broker struct {
	Conn      *nats.Conn
	Broadcast func(event *comm.MemberEvent)
}

func NewBroker(nc *nats.Conn, broadcast func(event *comm.MemberEvent)) *Broker {
	return &Broker{
		Conn:      nc,
		Broadcast: broadcast,
	}
}

func (b *Broker) handleMessage(msgNat *nats.Msg) {
	event := &comm.MemberEvent{}
	if err := json.Unmarshal(msgNat.Data, event); err != nil {
		log.Errorf("Error unmarshaling nats message: %s", err)
		return
	}

	log.Debugf("received event %s", event.Type)
	b.Broadcast(event)
}

func (b *Broker) SubscribeMemberEvents() (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(comm.EventTopic, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}
