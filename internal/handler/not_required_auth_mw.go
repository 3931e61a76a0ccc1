package handler

import (
	"github.com/gin-gonic/gin"
)

func (h *Handler) notRequiredAuthMiddleware(c *gin.Context) {
	userID, ok := h.userIDFromHeader(c.GetHeader("Authorization"))
	if !ok {
		c.Next()
		return
	}

	c.Set(userIDKey, userID)

	c.Next()
}
