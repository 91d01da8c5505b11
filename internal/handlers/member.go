package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/unetra-global/member-portal-sub000/internal/i18n"
	"github.com/unetra-global/member-portal-sub000/internal/services"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

type MemberHandler struct {
	memberService   *services.MemberService
	linkedInService *services.LinkedInService
	linkService     *services.MemberServicesService
}

func NewMemberHandler(memberService *services.MemberService, linkedInService *services.LinkedInService, linkService *services.MemberServicesService) *MemberHandler {
	return &MemberHandler{
		memberService:   memberService,
		linkedInService: linkedInService,
		linkService:     linkService,
	}
}

// GET /auth/me
func (h *MemberHandler) Me(c *gin.Context) {
	authUserID, ok := utils.GetAuthUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	member, err := h.memberService.GetByAuthUser(c.Request.Context(), authUserID)
	if errors.Is(err, services.ErrNotFound) {
		utils.SuccessResponse(c, gin.H{
			"auth_user_id":     authUserID,
			"email":            c.GetString(utils.ContextEmail),
			"profile_complete": false,
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"auth_user_id":     authUserID,
		"email":            member.Email,
		"profile_complete": true,
		"member":           member,
	})
}

// POST /members
func (h *MemberHandler) CreateMember(c *gin.Context) {
	authUserID, ok := utils.GetAuthUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	identity := services.Identity{AuthUserID: authUserID, Email: c.GetString(utils.ContextEmail)}
	member, err := h.memberService.Create(c.Request.Context(), identity, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeyMemberCreated, member)
}

// POST /members/linkedin-import
func (h *MemberHandler) ImportLinkedIn(c *gin.Context) {
	var req services.LinkedInImportRequest
	if !bindJSON(c, &req) {
		return
	}

	draft, err := h.linkedInService.Import(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, draft)
}

// GET /members
func (h *MemberHandler) ListMembers(c *gin.Context) {
	params := utils.GetPaginationParams(c, "created_at")

	result, err := h.memberService.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

// GET /members/:id
func (h *MemberHandler) GetMember(c *gin.Context) {
	id, ok := pathID(c, "member")
	if !ok {
		return
	}

	member, err := h.memberService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, member)
}

// PUT /members/me
func (h *MemberHandler) UpdateMe(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.UpdateMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.memberService.UpdateProfile(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyMemberUpdated, member)
}

// DELETE /members/:id
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "member")
	if !ok {
		return
	}

	if err := h.memberService.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyMemberDeleted, nil)
}

// GET /members/:id/services
func (h *MemberHandler) ListMemberServices(c *gin.Context) {
	id, ok := pathID(c, "member")
	if !ok {
		return
	}

	links, err := h.linkService.ListForMember(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, links)
}

// POST /member-services
func (h *MemberHandler) AddService(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.CreateMemberServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	link, err := h.linkService.Create(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeySuccess, link)
}

// PUT /member-services/:id
func (h *MemberHandler) UpdateService(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "member service")
	if !ok {
		return
	}

	var req services.UpdateMemberServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	link, err := h.linkService.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, link)
}

// DELETE /member-services/:id
func (h *MemberHandler) RemoveService(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "member service")
	if !ok {
		return
	}

	if err := h.linkService.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeySuccess, nil)
}
