package feed

import (
	"context"

	"github.com/comuna-app/feed-service/internal/model"
)

// Source returns rows of one community ordered by creation time descending
// for the inclusive row range [start, end].
type Source interface {
	FetchCommunityPosts(ctx context.Context, communityID int64, start int, end int) ([]*model.FeedPost, error)
}

type SourceFunc func(ctx context.Context, communityID int64, start int, end int) ([]*model.FeedPost, error)

func (f SourceFunc) FetchCommunityPosts(ctx context.Context, communityID int64, start int, end int) ([]*model.FeedPost, error) {
	return f(ctx, communityID, start, end)
}
