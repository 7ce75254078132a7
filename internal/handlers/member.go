package handlers

import (
	"github.com/dimitrije/hydra-collections/internal/middleware"
	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/dimitrije/hydra-collections/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type MemberHandler struct {
	memberService MemberServiceInterface
}

func NewMemberHandler(memberService MemberServiceInterface) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

func (h *MemberHandler) Create(c *drift.Context) {
	principal := middleware.GetPrincipal(c)
	if principal.ID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateMemberRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Title == "" {
		c.BadRequest("title is required")
		return
	}

	member, err := h.memberService.Create(c.Request.Context(), principal, req.Title)
	if err != nil {
		respondError(c, err, "member not found")
		return
	}

	_ = c.JSON(201, toMemberResponse(member))
}

func (h *MemberHandler) Get(c *drift.Context) {
	principal, memberID, ok := memberRequest(c)
	if !ok {
		return
	}

	member, err := h.memberService.Get(c.Request.Context(), principal, memberID)
	if err != nil {
		respondError(c, err, "member not found")
		return
	}

	_ = c.JSON(200, toMemberResponse(member))
}

func (h *MemberHandler) Delete(c *drift.Context) {
	principal, memberID, ok := memberRequest(c)
	if !ok {
		return
	}

	if err := h.memberService.Delete(c.Request.Context(), principal, memberID); err != nil {
		respondError(c, err, "member not found")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "member deleted"})
}

// Collections lists every collection that currently contains the member.
func (h *MemberHandler) Collections(c *drift.Context) {
	principal, memberID, ok := memberRequest(c)
	if !ok {
		return
	}

	refs, err := h.memberService.Collections(c.Request.Context(), principal, memberID)
	if err != nil {
		respondError(c, err, "member not found")
		return
	}

	response := make([]dto.CollectionRefResponse, len(refs))
	for i, ref := range refs {
		response[i] = dto.CollectionRefResponse{
			ID:           ref.ID,
			Title:        ref.Title,
			DateUploaded: ref.DateUploaded,
			DateModified: ref.DateModified,
		}
	}

	_ = c.JSON(200, response)
}

func memberRequest(c *drift.Context) (models.Principal, uuid.UUID, bool) {
	principal := middleware.GetPrincipal(c)
	if principal.ID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return principal, uuid.Nil, false
	}

	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		c.BadRequest("invalid member id")
		return principal, uuid.Nil, false
	}

	return principal, memberID, true
}

func toMemberResponse(m *models.Member) dto.MemberResponse {
	return dto.MemberResponse{
		ID:        m.ID,
		Depositor: m.Depositor,
		Title:     m.Title,
		CreatedAt: m.CreatedAt,
	}
}
