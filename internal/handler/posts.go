package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/comuna-app/feed-service/internal/dto"
	"github.com/comuna-app/feed-service/internal/service"
	"github.com/gin-gonic/gin"
)

const maxUploadMemory = 32 << 20

func (h *Handler) postsGetCommunityFeed(c *gin.Context) {
	userID, _ := h.getUserIDFromRequest(c)

	communityID, err := int64Param(c, "communityID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errInvalidCommunityID))
		return
	}

	start, err0 := strconv.Atoi(c.Query("start"))
	end, err1 := strconv.Atoi(c.Query("end"))
	if err0 != nil || err1 != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errStartAndEndMustBeInt))
		return
	}

	posts, err := h.services.Post.FindCommunityPosts(c.Request.Context(), userID, communityID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewFeedPostsResponse(posts, time.Now()))
}

func (h *Handler) postsCreate(c *gin.Context) {
	userID, _ := h.getUserIDFromRequest(c)

	communityID, err := int64Param(c, "communityID")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errInvalidCommunityID))
		return
	}

	if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	var input dto.CreatePostDto
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
		return
	}

	file, fileHeader, err := c.Request.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errMediaRequired))
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType, err = sniffContentType(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err))
			return
		}
	}

	upload := service.Upload{
		File:        file,
		Size:        fileHeader.Size,
		ContentType: contentType,
	}

	createdPost, err := h.services.Post.Create(c.Request.Context(), userID, communityID, input, upload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, *createdPost)
}

func sniffContentType(r io.ReadSeeker) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return http.DetectContentType(head[:n]), nil
}
