package notify

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// WebSocketHandler upgrades /ws connections and attaches them to the hub.
// The connection immediately receives a CONNECTION_STATUS greeting; after
// that it only ever receives broadcast events. Inbound frames keep the
// connection alive but carry no server-side logic.
func WebSocketHandler(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}

		client := &Client{
			Send: make(chan []byte, 256),
			conn: conn,
		}

		greeting, _ := json.Marshal(Event{
			Type: EventConnectionStatus,
			Data: map[string]string{"status": "connected"},
		})
		client.Send <- greeting

		hub.Register(client)
		go writePump(client)
		go readPump(client, hub, conn)
	}
}

func writePump(c *Client) {
	defer c.conn.Close()
	for msg := range c.Send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

func readPump(c *Client, hub *Hub, conn *websocket.Conn) {
	defer func() {
		hub.Unregister(c)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
