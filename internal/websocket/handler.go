package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs runs one chat connection until the peer goes away.
func ServeWs(hub *Hub, c *websocket.Conn, userID string) {
	client := &Client{Hub: hub, Conn: c, UserID: userID, Send: make(chan []byte, 64)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
