package sse

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/google/uuid"
)

const (
	EventCollectionUpdated = "collection_updated"
	EventCollectionDeleted = "collection_deleted"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type CollectionUpdatedEvent struct {
	CollectionID uuid.UUID   `json:"collection_id"`
	Members      []uuid.UUID `json:"members"`
	DateModified time.Time   `json:"date_modified"`
	UpdatedBy    uuid.UUID   `json:"updated_by"`
}

type CollectionDeletedEvent struct {
	CollectionID uuid.UUID `json:"collection_id"`
	DeletedBy    uuid.UUID `json:"deleted_by"`
}

type Client struct {
	ID          string
	UserID      uuid.UUID
	Collections map[uuid.UUID]bool
	Send        chan []byte
}

// Hub fans collection events out to the clients watching that collection.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *CollectionMessage
	done       chan struct{}
	mu         sync.RWMutex
}

type CollectionMessage struct {
	CollectionID uuid.UUID
	Event        Event
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *CollectionMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// closes every remaining client. Once Run has returned, Register closes the
// client straight away and Unregister and the broadcasts are no-ops.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Event)
			for _, client := range h.clients {
				if client.Collections[msg.CollectionID] {
					select {
					case client.Send <- data:
					default:
						// buffer full, drop
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribe adds a collection to a connected client owned by userID. It
// reports false when no such client exists.
func (h *Hub) Subscribe(clientID string, userID uuid.UUID, collectionID uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[clientID]
	if !ok || client.UserID != userID {
		return false
	}
	client.Collections[collectionID] = true
	return true
}

func (h *Hub) Unsubscribe(clientID string, userID uuid.UUID, collectionID uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[clientID]
	if !ok || client.UserID != userID {
		return false
	}
	delete(client.Collections, collectionID)
	return true
}

func (h *Hub) publish(msg *CollectionMessage) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// ClientCount reports how many clients are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) BroadcastCollectionUpdate(c *models.Collection, updatedBy uuid.UUID) {
	members := make([]uuid.UUID, len(c.Members))
	copy(members, c.Members)

	h.publish(&CollectionMessage{
		CollectionID: c.ID,
		Event: Event{
			Type: EventCollectionUpdated,
			Data: CollectionUpdatedEvent{
				CollectionID: c.ID,
				Members:      members,
				DateModified: c.DateModified,
				UpdatedBy:    updatedBy,
			},
		},
	})
}

func (h *Hub) BroadcastCollectionDeleted(collectionID, deletedBy uuid.UUID) {
	h.publish(&CollectionMessage{
		CollectionID: collectionID,
		Event: Event{
			Type: EventCollectionDeleted,
			Data: CollectionDeletedEvent{
				CollectionID: collectionID,
				DeletedBy:    deletedBy,
			},
		},
	})
}
