package handler

import (
	"net/http"

	"github.com/comuna-app/feed-service/internal/dto"
	"github.com/gin-gonic/gin"
)

func (h *Handler) commentsCreate(c *gin.Context) {
	userID, _ := h.getUserIDFromRequest(c)

	postID, err := int64Param(c, "postID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errInvalidPostID))
		return
	}

	var input dto.CreateCommentDto
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	createdComment, err := h.services.Comment.Create(c.Request.Context(), userID, postID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createdComment)
}

func (h *Handler) commentsDelete(c *gin.Context) {
	userID, _ := h.getUserIDFromRequest(c)

	postID, err0 := int64Param(c, "postID")
	commentID, err1 := int64Param(c, "commentID")
	if err0 != nil || err1 != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errInvalidID))
		return
	}

	if err := h.services.Comment.Delete(c.Request.Context(), postID, commentID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, ""))
}

func (h *Handler) commentsLike(c *gin.Context) {
	h.commentsSetLike(c, false)
}

func (h *Handler) commentsUnlike(c *gin.Context) {
	h.commentsSetLike(c, true)
}

func (h *Handler) commentsSetLike(c *gin.Context, unlike bool) {
	userID, _ := h.getUserIDFromRequest(c)

	commentID, err := int64Param(c, "commentID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errInvalidID))
		return
	}

	if err := h.services.Comment.Like(c.Request.Context(), commentID, userID, unlike); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, ""))
}
