package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/fielia/club-services/internal/comm"
)

// Ws is the hub of dashboard connections. The feed is one-way, every member
// event is written to every connected client.
type Ws struct {
	connMap sync.Map // socketId -> *websocket.Conn
	writeMu sync.Mutex
}

func NewWs() *Ws {
	return &Ws{}
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
}

// Broadcast fans a member event out to all connected dashboards. Connections
// whose writes fail are dropped from the hub.
func (s *Ws) Broadcast(event *comm.MemberEvent) {
	msg := comm.WSMessage{
		Event: event.Type,
		Data:  event.Data,
		At:    event.At,
	}

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal ws message for event %s: %v", event.Type, err)
		return
	}

	s.connMap.Range(func(key, value interface{}) bool {
		socketId := key.(string)
		conn := value.(*websocket.Conn)

		s.writeMu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, bytes)
		s.writeMu.Unlock()

		if err != nil {
			log.Warnf("dropping socket %s after write failure: %v", socketId, err)
			conn.Close()
			s.connMap.Delete(socketId)
		}
		return true
	})
}
