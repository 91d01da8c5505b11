package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/unetra-global/member-portal-sub000/internal/i18n"
	"github.com/unetra-global/member-portal-sub000/internal/services"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

type MembershipHandler struct {
	membershipService *services.MembershipService
}

func NewMembershipHandler(membershipService *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

// POST /membership/upgrade
func (h *MembershipHandler) StartUpgrade(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.UpgradeRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.membershipService.StartUpgrade(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, i18n.KeySuccess, resp)
}

// POST /membership/confirm
func (h *MembershipHandler) ConfirmUpgrade(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.ConfirmUpgradeRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := h.membershipService.ConfirmUpgrade(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, i18n.KeyMembershipActive, payment)
}
