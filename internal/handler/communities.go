package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/comuna-app/feed-service/internal/dto"
	"github.com/comuna-app/feed-service/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) communitiesCreate(c *gin.Context) {
	userID, _ := h.getUserIDFromRequest(c)

	var input dto.CreateCommunityDto
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	community, err := h.services.Community.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, *community)
}

func (h *Handler) communitiesGet(c *gin.Context) {
	communityID, err := int64Param(c, "communityID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errInvalidCommunityID))
		return
	}

	community, err := h.services.Community.FindByID(c.Request.Context(), communityID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.CommunityResponse{Community: *community}
	if userID, ok := h.getUserIDFromRequest(c); ok {
		resp.IsMember = h.services.Community.RequireMember(c.Request.Context(), communityID, userID) == nil
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) communitiesEdit(c *gin.Context) {
	userID, _ := h.getUserIDFromRequest(c)

	communityID, err := int64Param(c, "communityID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errInvalidCommunityID))
		return
	}

	var input dto.EditCommunityDto
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	if err := h.services.Community.Edit(c.Request.Context(), communityID, userID, input); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, ""))
}

func (h *Handler) communitiesJoin(c *gin.Context) {
	userID, _ := h.getUserIDFromRequest(c)

	communityID, err := int64Param(c, "communityID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errInvalidCommunityID))
		return
	}

	member, err := h.services.Community.Join(c.Request.Context(), communityID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, *member)
}

func (h *Handler) communitiesCreateInvite(c *gin.Context) {
	userID, _ := h.getUserIDFromRequest(c)

	communityID, err := int64Param(c, "communityID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errInvalidCommunityID))
		return
	}

	var input dto.CreateInviteDto
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	ttl := time.Duration(input.TTLHours) * time.Hour
	invite, err := h.services.Community.CreateInvite(c.Request.Context(), communityID, userID, ttl)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, *invite)
}

func (h *Handler) invitesJoin(c *gin.Context) {
	userID, _ := h.getUserIDFromRequest(c)

	member, err := h.services.Community.JoinByInvite(c.Request.Context(), c.Param("code"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, *member)
}

func (h *Handler) membersGet(c *gin.Context) {
	userID, _ := h.getUserIDFromRequest(c)

	communityID, err := int64Param(c, "communityID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errInvalidCommunityID))
		return
	}

	status := model.MemberStatus(strings.ToLower(c.DefaultQuery("status", string(model.MemberApproved))))
	if status != model.MemberApproved && status != model.MemberPending {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errInvalidMemberStatus))
		return
	}

	members, err := h.services.Community.Members(c.Request.Context(), communityID, userID, status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMembersResponse(members, time.Now()))
}

func (h *Handler) membersPreview(c *gin.Context) {
	userID, _ := h.getUserIDFromRequest(c)

	communityID, err := int64Param(c, "communityID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errInvalidCommunityID))
		return
	}

	limit := 0
	if limitString := c.Query("limit"); limitString != "" {
		limit, err = strconv.Atoi(limitString)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errLimitMustBeInt))
			return
		}
	}

	avatars, err := h.services.Community.MemberPreview(c.Request.Context(), communityID, userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatars": avatars})
}

func (h *Handler) membersApprove(c *gin.Context) {
	h.membersDecide(c, true)
}

func (h *Handler) membersReject(c *gin.Context) {
	h.membersDecide(c, false)
}

func (h *Handler) membersDecide(c *gin.Context, approve bool) {
	managerID, _ := h.getUserIDFromRequest(c)

	communityID, err := int64Param(c, "communityID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errInvalidCommunityID))
		return
	}

	memberID, err := uuid.Parse(strings.TrimSpace(c.Param("userID")))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errInvalidUserID))
		return
	}

	if approve {
		err = h.services.Community.Approve(c.Request.Context(), communityID, managerID, memberID)
	} else {
		err = h.services.Community.Reject(c.Request.Context(), communityID, managerID, memberID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, ""))
}
