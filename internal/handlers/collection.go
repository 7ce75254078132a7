package handlers

import (
	"github.com/dimitrije/hydra-collections/internal/middleware"
	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/dimitrije/hydra-collections/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type CollectionHandler struct {
	collectionService CollectionServiceInterface
}

func NewCollectionHandler(collectionService CollectionServiceInterface) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService}
}

func (h *CollectionHandler) Create(c *drift.Context) {
	principal := middleware.GetPrincipal(c)
	if principal.ID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateCollectionRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Title == "" {
		c.BadRequest("title is required")
		return
	}

	collection, err := h.collectionService.Create(c.Request.Context(), principal, req.Title, req.Description)
	if err != nil {
		respondError(c, err, "collection not found")
		return
	}

	_ = c.JSON(201, toCollectionResponse(collection))
}

func (h *CollectionHandler) Get(c *drift.Context) {
	principal, collectionID, ok := collectionRequest(c)
	if !ok {
		return
	}

	collection, err := h.collectionService.Get(c.Request.Context(), principal, collectionID)
	if err != nil {
		respondError(c, err, "collection not found")
		return
	}

	_ = c.JSON(200, toCollectionResponse(collection))
}

func (h *CollectionHandler) Update(c *drift.Context) {
	principal, collectionID, ok := collectionRequest(c)
	if !ok {
		return
	}

	var req dto.UpdateCollectionRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Title != nil && *req.Title == "" {
		c.BadRequest("title cannot be empty")
		return
	}

	collection, err := h.collectionService.Update(c.Request.Context(), principal, collectionID, req.Title, req.Description)
	if err != nil {
		respondError(c, err, "collection not found")
		return
	}

	_ = c.JSON(200, toCollectionResponse(collection))
}

func (h *CollectionHandler) Delete(c *drift.Context) {
	principal, collectionID, ok := collectionRequest(c)
	if !ok {
		return
	}

	if err := h.collectionService.Delete(c.Request.Context(), principal, collectionID); err != nil {
		respondError(c, err, "collection not found")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "collection deleted"})
}

func (h *CollectionHandler) Abilities(c *drift.Context) {
	principal, collectionID, ok := collectionRequest(c)
	if !ok {
		return
	}

	perms, err := h.collectionService.Abilities(c.Request.Context(), principal, collectionID)
	if err != nil {
		respondError(c, err, "collection not found")
		return
	}

	_ = c.JSON(200, dto.AbilitiesResponse{
		Read:    perms.Read,
		Edit:    perms.Edit,
		Destroy: perms.Destroy,
	})
}

func (h *CollectionHandler) ListMembers(c *drift.Context) {
	principal, collectionID, ok := collectionRequest(c)
	if !ok {
		return
	}

	members, err := h.collectionService.Members(c.Request.Context(), principal, collectionID)
	if err != nil {
		respondError(c, err, "collection not found")
		return
	}

	response := make([]dto.MemberResponse, len(members))
	for i := range members {
		response[i] = toMemberResponse(&members[i])
	}

	_ = c.JSON(200, response)
}

func (h *CollectionHandler) SetMembers(c *drift.Context) {
	principal, collectionID, ok := collectionRequest(c)
	if !ok {
		return
	}

	var req dto.SetMembersRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.MemberIDs == nil {
		c.BadRequest("member_ids is required")
		return
	}

	collection, err := h.collectionService.SetMembers(c.Request.Context(), principal, collectionID, req.MemberIDs)
	if err != nil {
		respondError(c, err, "collection not found")
		return
	}

	_ = c.JSON(200, toCollectionResponse(collection))
}

func (h *CollectionHandler) AddMember(c *drift.Context) {
	principal, collectionID, ok := collectionRequest(c)
	if !ok {
		return
	}

	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		c.BadRequest("invalid member id")
		return
	}

	collection, err := h.collectionService.AddMember(c.Request.Context(), principal, collectionID, memberID)
	if err != nil {
		respondError(c, err, "collection not found")
		return
	}

	_ = c.JSON(200, toCollectionResponse(collection))
}

func (h *CollectionHandler) RemoveMember(c *drift.Context) {
	principal, collectionID, ok := collectionRequest(c)
	if !ok {
		return
	}

	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		c.BadRequest("invalid member id")
		return
	}

	collection, err := h.collectionService.RemoveMember(c.Request.Context(), principal, collectionID, memberID)
	if err != nil {
		respondError(c, err, "collection not found")
		return
	}

	_ = c.JSON(200, toCollectionResponse(collection))
}

// collectionRequest extracts the caller and the :collectionId parameter,
// writing the error response itself when either is missing.
func collectionRequest(c *drift.Context) (models.Principal, uuid.UUID, bool) {
	principal := middleware.GetPrincipal(c)
	if principal.ID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return principal, uuid.Nil, false
	}

	collectionID, err := uuid.Parse(c.Param("collectionId"))
	if err != nil {
		c.BadRequest("invalid collection id")
		return principal, uuid.Nil, false
	}

	return principal, collectionID, true
}

func toCollectionResponse(col *models.Collection) dto.CollectionResponse {
	members := col.Members
	if members == nil {
		members = []uuid.UUID{}
	}
	return dto.CollectionResponse{
		ID:           col.ID,
		Depositor:    col.Depositor,
		Title:        col.Title,
		Description:  col.Description,
		Members:      members,
		DateUploaded: col.DateUploaded,
		DateModified: col.DateModified,
	}
}
