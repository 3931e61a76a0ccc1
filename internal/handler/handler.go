package handler

import (
	"strconv"
	"strings"

	"github.com/comuna-app/feed-service/internal/dto"
	"github.com/comuna-app/feed-service/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

const userIDKey = "user-id"

type Handler struct {
	services     *service.Service
	accessSecret []byte
}

func New(services *service.Service, accessSecret []byte) *Handler {
	return &Handler{
		services:     services,
		accessSecret: accessSecret,
	}
}

func (h *Handler) InitRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods: []string{"POST", "GET", "PUT", "PATCH", "DELETE"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
	}
	if origin := viper.GetString("client.origin"); origin != "" {
		corsConfig.AllowOrigins = []string{origin}
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	r.Use(cors.New(corsConfig))

	v1 := r.Group("/api/v1")
	{
		communities := v1.Group("/communities")
		{
			communities.POST("", h.authMiddleware, h.communitiesCreate)

			community := communities.Group("/:communityID")
			{
				community.GET("", h.notRequiredAuthMiddleware, h.communitiesGet)
				community.PATCH("", h.authMiddleware, h.communitiesEdit)
				community.POST("/join", h.authMiddleware, h.communitiesJoin)
				community.POST("/invites", h.authMiddleware, h.communitiesCreateInvite)

				community.GET("/posts", h.authMiddleware, h.postsGetCommunityFeed)
				community.POST("/posts", h.authMiddleware, h.postsCreate)

				members := community.Group("/members")
				{
					members.GET("", h.authMiddleware, h.membersGet)
					members.GET("/preview", h.authMiddleware, h.membersPreview)
					members.POST("/:userID/approve", h.authMiddleware, h.membersApprove)
					members.DELETE("/:userID", h.authMiddleware, h.membersReject)
				}
			}
		}

		v1.POST("/invites/:code/join", h.authMiddleware, h.invitesJoin)

		posts := v1.Group("/posts/:postID")
		{
			posts.POST("/comments", h.authMiddleware, h.commentsCreate)
			posts.DELETE("/comments/:commentID", h.authMiddleware, h.commentsDelete)
		}

		comments := v1.Group("/comments/:commentID")
		{
			comments.POST("/like", h.authMiddleware, h.commentsLike)
			comments.DELETE("/like", h.authMiddleware, h.commentsUnlike)
		}

		v1.PUT("/profile", h.authMiddleware, h.profileUpsert)
		v1.GET("/profiles/:userID", h.profilesGet)
	}

	return r
}

func (h *Handler) getUserIDFromRequest(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, false
	}

	userID, ok := value.(uuid.UUID)
	return userID, ok
}

func int64Param(c *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusOf(err), dto.NewErrorResponse(err))
}
