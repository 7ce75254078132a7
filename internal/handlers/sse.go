package handlers

import (
	"fmt"

	"github.com/dimitrije/hydra-collections/internal/sse"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type SSEHandler struct {
	hub               HubInterface
	collectionService CollectionServiceInterface
}

func NewSSEHandler(hub HubInterface, collectionService CollectionServiceInterface) *SSEHandler {
	return &SSEHandler{
		hub:               hub,
		collectionService: collectionService,
	}
}

// Connect streams events for one collection the caller may read. Further
// collections can be attached to the same stream with Subscribe.
func (h *SSEHandler) Connect(c *drift.Context) {
	principal, collectionID, ok := collectionRequest(c)
	if !ok {
		return
	}

	if _, err := h.collectionService.Get(c.Request.Context(), principal, collectionID); err != nil {
		respondError(c, err, "collection not found")
		return
	}

	sseCtx := c.SSE()

	clientID := uuid.New().String()
	client := &sse.Client{
		ID:          clientID,
		UserID:      principal.ID,
		Collections: map[uuid.UUID]bool{collectionID: true},
		Send:        make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
	}, "system", ""); err != nil {
		return
	}

	done := c.Request.Context().Done()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *SSEHandler) Subscribe(c *drift.Context) {
	principal, collectionID, ok := collectionRequest(c)
	if !ok {
		return
	}

	clientID := c.Param("clientId")
	if clientID == "" {
		c.BadRequest("client_id is required")
		return
	}

	if _, err := h.collectionService.Get(c.Request.Context(), principal, collectionID); err != nil {
		respondError(c, err, "collection not found")
		return
	}

	if !h.hub.Subscribe(clientID, principal.ID, collectionID) {
		c.NotFound("client not found")
		return
	}

	_ = c.JSON(200, map[string]string{
		"message": fmt.Sprintf("subscribed to collection %s", collectionID),
	})
}

func (h *SSEHandler) Unsubscribe(c *drift.Context) {
	principal, collectionID, ok := collectionRequest(c)
	if !ok {
		return
	}

	clientID := c.Param("clientId")
	if clientID == "" {
		c.BadRequest("client_id is required")
		return
	}

	if !h.hub.Unsubscribe(clientID, principal.ID, collectionID) {
		c.NotFound("client not found")
		return
	}

	_ = c.JSON(200, map[string]string{
		"message": fmt.Sprintf("unsubscribed from collection %s", collectionID),
	})
}
