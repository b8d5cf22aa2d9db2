package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs wires an upgraded connection into the hub and blocks until the
// connection drops. The identity comes from the authenticated session, not
// the client.
func ServeWs(hub *Hub, c *websocket.Conn, userID uuid.UUID, firstName, lastName string) {
	client := &Client{
		Hub:       hub,
		Conn:      c,
		UserID:    userID,
		FirstName: firstName,
		LastName:  lastName,
		Send:      make(chan []byte, 256),
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
