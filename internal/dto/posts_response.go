package dto

import (
	"time"

	"github.com/comuna-app/feed-service/internal/model"
	"github.com/comuna-app/feed-service/pkg/timefmt"
)

type FeedPostResponse struct {
	model.FeedPost
	Ago string `json:"ago"`
}

func NewFeedPostsResponse(posts []*model.FeedPost, now time.Time) []FeedPostResponse {
	resp := make([]FeedPostResponse, 0, len(posts))
	for _, post := range posts {
		if post == nil {
			continue
		}
		resp = append(resp, FeedPostResponse{
			FeedPost: *post,
			Ago:      timefmt.Relative(post.Post.CreatedAt, now),
		})
	}
	return resp
}
