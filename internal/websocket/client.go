package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Verified identity of this connection. Frames claiming another sender
	// are overridden by these.
	UserID    uuid.UUID
	FirstName string
	LastName  string

	// Buffered channel of outbound messages.
	Send chan []byte
}

// readPump pumps frames from the websocket connection into the hub.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("readPump error for user %s: %v", c.UserID, err)
			}
			break
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.Hub.logger.Warn("Client", "Dropping malformed frame", map[string]interface{}{"user_id": c.UserID})
			continue
		}

		c.handleFrame(frame)
	}
}

func (c *Client) handleFrame(frame Frame) {
	ctx := context.Background()

	switch frame.Event {
	case EventJoinChat:
		var payload JoinChatPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			return
		}
		targetID, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			return
		}
		if _, err := c.Hub.JoinRoom(ctx, c.UserID, targetID); err != nil {
			c.Hub.logger.Warn("Client", "Join rejected", map[string]interface{}{
				"user_id": c.UserID,
				"error":   err.Error(),
			})
			reason := "join failed"
			if errors.Is(err, ErrNotInRoster) {
				reason = "conversation not available"
			}
			if frame, err := NewFrame(EventJoinRejected, JoinRejectedPayload{
				TargetUserID: payload.TargetUserID,
				Reason:       reason,
			}); err == nil {
				select {
				case c.Send <- frame:
				default:
				}
			}
		}

	case EventSendMessage:
		var payload SendMessagePayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			return
		}
		targetID, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			return
		}
		roomID := RoomID(c.UserID, targetID)
		if !c.Hub.InRoom(c.UserID, roomID) {
			c.Hub.logger.Warn("Client", "sendMessage before join, dropping", map[string]interface{}{"user_id": c.UserID})
			return
		}
		msg := InboundChatMessage{
			RoomID:          roomID,
			SenderID:        c.UserID,
			SenderFirstName: c.FirstName,
			SenderLastName:  c.LastName,
			TargetUserID:    targetID,
			Content:         payload.Content,
		}
		if err := c.Hub.sink.EnqueueMessage(ctx, msg); err != nil {
			c.Hub.logger.Error("Client", "Failed to enqueue message", map[string]interface{}{
				"user_id": c.UserID,
				"error":   err.Error(),
			})
		}

	case EventTyping:
		var payload TypingPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			return
		}
		targetID, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			return
		}
		roomID := RoomID(c.UserID, targetID)
		if !c.Hub.InRoom(c.UserID, roomID) {
			return
		}
		// Typing goes to the peer only, never echoed to the sender.
		data, err := NewFrame(EventTyping, TypingPayload{
			UserID:       c.UserID.String(),
			TargetUserID: payload.TargetUserID,
		})
		if err != nil {
			return
		}
		c.Hub.DeliverToRoom(roomID, c.UserID, data)

	default:
		c.Hub.logger.Debug("Client", "Unknown event", map[string]interface{}{"event": frame.Event})
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
