package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"devmate-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotInRoster rejects a join between users without an accepted connection.
var ErrNotInRoster = errors.New("users are not connected")

// InboundChatMessage is a sendMessage frame after the hub has stamped it with
// the connection's verified identity. Sender fields come from the session, not
// the client payload.
type InboundChatMessage struct {
	RoomID          string    `json:"room_id"`
	SenderID        uuid.UUID `json:"sender_id"`
	SenderFirstName string    `json:"sender_first_name"`
	SenderLastName  string    `json:"sender_last_name"`
	TargetUserID    uuid.UUID `json:"target_user_id"`
	Content         string    `json:"content"`
}

// MessageSink receives inbound chat messages for persistence and fanout.
type MessageSink interface {
	EnqueueMessage(ctx context.Context, msg InboundChatMessage) error
}

// RosterVerifier answers whether two users share an accepted connection.
// A join is refused when they do not.
type RosterVerifier interface {
	AreConnected(ctx context.Context, userID, targetID uuid.UUID) (bool, error)
}

type Hub struct {
	// Registered clients map: UserID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	// Room membership: RoomID -> set of member user ids currently joined
	rooms map[string]map[uuid.UUID]struct{}

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	verifier RosterVerifier
	sink     MessageSink

	// instanceID tags outbound Redis frames so this instance can skip its
	// own echoes.
	instanceID string

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, verifier RosterVerifier, sink MessageSink, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rooms:      make(map[string]map[uuid.UUID]struct{}),
		rdb:        rdb,
		verifier:   verifier,
		sink:       sink,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.leaveAllRoomsLocked(client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// leaveAllRoomsLocked removes a user from every room. Caller holds h.mu.
func (h *Hub) leaveAllRoomsLocked(userID uuid.UUID) {
	for roomID, members := range h.rooms {
		delete(members, userID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// JoinRoom verifies the pair against the connection roster and, on success,
// adds the user to the room. Joining twice is a no-op.
func (h *Hub) JoinRoom(ctx context.Context, userID, targetID uuid.UUID) (string, error) {
	ok, err := h.verifier.AreConnected(ctx, userID, targetID)
	if err != nil {
		return "", err
	}
	if !ok {
		h.logger.Warn("Hub", "Join refused for unconnected pair", map[string]interface{}{
			"user_id":   userID,
			"target_id": targetID,
		})
		return "", ErrNotInRoster
	}

	roomID := RoomID(userID, targetID)
	h.mu.Lock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[uuid.UUID]struct{})
	}
	h.rooms[roomID][userID] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("Hub", "User joined room", map[string]interface{}{"user_id": userID, "room_id": roomID})
	return roomID, nil
}

// InRoom reports whether the user currently holds membership in the room.
func (h *Hub) InRoom(userID uuid.UUID, roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members, ok := h.rooms[roomID]
	if !ok {
		return false
	}
	_, in := members[userID]
	return in
}

// IsOnline reports whether the user has at least one live connection on this
// instance. The notification worker uses it to skip online recipients.
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// DeliverToRoom pushes a frame to every joined member of a room, skipping
// exclude when it is a real user id. The frame is mirrored to Redis so other
// instances reach their local members too.
func (h *Hub) DeliverToRoom(roomID string, exclude uuid.UUID, data []byte) {
	h.deliverLocal(roomID, exclude, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"origin":          h.instanceID,
			"room_id":         roomID,
			"exclude_user_id": exclude.String(),
			"message":         json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), "cluster_events", payload)
	}
}

func (h *Hub) deliverLocal(roomID string, exclude uuid.UUID, data []byte) {
	// Sends happen under the read lock so they cannot interleave with the
	// unregister path, which closes Send under the write lock.
	h.mu.RLock()
	members, ok := h.rooms[roomID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	var slow []*Client
	for userID := range members {
		if userID == exclude {
			continue
		}
		for _, client := range h.clients[userID] {
			select {
			case client.Send <- data:
			default:
				slow = append(slow, client)
			}
		}
	}
	h.mu.RUnlock()

	// Unregister owns the single close of client.Send.
	for _, client := range slow {
		h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"user_id": client.UserID})
		h.unregister <- client
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the shared cluster channel. A frame carries
	// its room id; each instance delivers to whatever members it holds locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			Origin        string          `json:"origin"`
			RoomID        string          `json:"room_id"`
			ExcludeUserID string          `json:"exclude_user_id"`
			Message       json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		// Local members already got this frame before it hit Redis.
		if payload.Origin == h.instanceID {
			continue
		}

		exclude, err := uuid.Parse(payload.ExcludeUserID)
		if err != nil {
			exclude = uuid.Nil
		}

		h.deliverLocal(payload.RoomID, exclude, payload.Message)
	}
}
