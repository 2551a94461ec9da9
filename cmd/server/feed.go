package main

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"
	"gitlab.com/digineat/trade-orders/cmd"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// orderFeed pushes every created and deleted order to the websocket client.
func (s *server) orderFeed(w http.ResponseWriter, r *http.Request) {
	// Subscribe before the handshake completes so no event is missed once the
	// client sees the connection as open.
	feed, cancel := s.feed.Subscribe()
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorln("Failed to upgrade to WebSocket:", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warnln("WebSocket read error:", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case e, ok := <-feed:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(cmd.FeedMessage{Type: string(e.Type), Payload: e.Order}); err != nil {
				logger.Errorln("Failed to send WebSocket message:", err)
				return
			}
		case <-closed:
			logger.Debugln("Feed client disconnected")
			return
		}
	}
}
