package handler

import (
	"net/http"
	"strings"

	"github.com/comuna-app/feed-service/internal/dto"
	"github.com/comuna-app/feed-service/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) authMiddleware(c *gin.Context) {
	userID, ok := h.userIDFromHeader(c.GetHeader("Authorization"))
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errNotAuthorized))
		c.Abort()
		return
	}

	c.Set(userIDKey, userID)

	c.Next()
}

func (h *Handler) userIDFromHeader(header string) (uuid.UUID, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return uuid.Nil, false
	}

	accessToken := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if accessToken == "" {
		return uuid.Nil, false
	}

	claims, err := utils.DecodeJWT(accessToken, h.accessSecret)
	if err != nil {
		return uuid.Nil, false
	}

	userID, err := utils.UserIDFromClaims(claims)
	if err != nil {
		return uuid.Nil, false
	}

	return userID, true
}
