// Package ws carries the realtime side of group chat. The hub tracks
// connected clients and the rooms they joined; handlers persist chat
// messages first and then push them through the hub so every member
// with an open socket sees them immediately.
package ws

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mutex      sync.RWMutex
	logger     *zap.SugaredLogger
}

type Message struct {
	Type      string         `json:"type"`
	GroupID   int64          `json:"group_id,omitempty"`
	UserID    int64          `json:"user_id,omitempty"`
	Timestamp int64          `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run owns the client set. It must be started once, before the first
// upgrade, and runs for the life of the process.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	h.joinRoom(client, userRoom(client.UserID))
	if client.GroupID != 0 {
		h.joinRoom(client, groupRoom(client.GroupID))
	}
	h.logger.Infow("websocket client connected", "user_id", client.UserID, "group_id", client.GroupID)

	h.sendToClient(client, Message{
		Type:      "welcome",
		GroupID:   client.GroupID,
		UserID:    client.UserID,
		Timestamp: time.Now().Unix(),
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)

		for roomID, room := range h.rooms {
			if _, exists := room[client]; exists {
				delete(room, client)
				if len(room) == 0 {
					delete(h.rooms, roomID)
				}
			}
		}

		h.logger.Infow("websocket client disconnected", "user_id", client.UserID)
	}
}

func (h *Hub) broadcastMessage(message []byte) {
	var msg Message
	if err := json.Unmarshal(message, &msg); err != nil {
		h.logger.Errorw("failed to unmarshal broadcast message", "error", err)
		return
	}

	if msg.GroupID != 0 {
		h.sendToRoom(groupRoom(msg.GroupID), msg)
	}
}

// SendToGroup delivers a message to every connected member of a group.
// Members without an open socket are unaffected; chat history lives in
// the database, not the hub.
func (h *Hub) SendToGroup(groupID int64, msg Message) {
	msg.GroupID = groupID
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	h.sendToRoomLocked(groupRoom(groupID), msg)
}

// SendToUser delivers a message to every open socket of one user.
func (h *Hub) SendToUser(userID int64, msg Message) {
	msg.UserID = userID
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	h.sendToRoomLocked(userRoom(userID), msg)
}

func (h *Hub) sendToRoom(roomID string, msg Message) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	h.sendToRoomLocked(roomID, msg)
}

func (h *Hub) sendToRoomLocked(roomID string, msg Message) {
	room, exists := h.rooms[roomID]
	if !exists {
		return
	}

	data, _ := json.Marshal(msg)
	for client := range room {
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
			delete(room, client)
		}
	}
}

func (h *Hub) sendToClient(client *Client, msg Message) {
	data, _ := json.Marshal(msg)
	select {
	case client.send <- data:
	default:
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

func groupRoom(groupID int64) string {
	return "group_" + strconv.FormatInt(groupID, 10)
}

func userRoom(userID int64) string {
	return "user_" + strconv.FormatInt(userID, 10)
}
