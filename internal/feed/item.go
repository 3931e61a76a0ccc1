package feed

import (
	"time"

	"github.com/comuna-app/feed-service/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlaceholderAvatarURL stands in for a missing or deleted author's avatar.
const PlaceholderAvatarURL = "/static/avatar-placeholder.png"

type Author struct {
	ID        uuid.UUID
	Name      string
	Handle    string
	AvatarURL string
}

type Comment struct {
	ID        int64
	Content   string
	CreatedAt time.Time
	Author    Author
	LikerIDs  []uuid.UUID
}

// Item is a feed row shaped for rendering: no field is ever nil.
type Item struct {
	ID          int64
	CommunityID int64
	CreatedAt   time.Time
	Description string
	MediaURL    string
	MediaType   string
	Blurhash    string
	Author      Author
	Comments    []Comment
}

func (i Item) LikedBy(commentID int64, userID uuid.UUID) bool {
	for _, c := range i.Comments {
		if c.ID != commentID {
			continue
		}
		for _, id := range c.LikerIDs {
			if id == userID {
				return true
			}
		}
	}
	return false
}

func normalizeAuthor(a *model.UserAuthor) Author {
	author := Author{AvatarURL: PlaceholderAvatarURL}
	if a == nil {
		return author
	}

	author.ID = a.ID
	if a.Name != nil {
		author.Name = *a.Name
	}
	if a.Handle != nil {
		author.Handle = *a.Handle
	}
	if a.AvatarURL != nil && *a.AvatarURL != "" {
		author.AvatarURL = *a.AvatarURL
	}
	return author
}

func normalizeRow(row *model.FeedPost) Item {
	item := Item{
		ID:          row.Post.ID,
		CommunityID: row.Post.CommunityID,
		CreatedAt:   row.Post.CreatedAt,
		MediaURL:    row.Post.MediaURL,
		MediaType:   row.Post.MediaType,
		Blurhash:    row.Post.Blurhash,
		Author:      normalizeAuthor(row.Author),
		Comments:    make([]Comment, 0, len(row.Comments)),
	}
	if row.Post.Description != nil {
		item.Description = *row.Post.Description
	}

	for _, c := range row.Comments {
		if c == nil {
			continue
		}
		likers := make([]uuid.UUID, len(c.LikerIDs))
		copy(likers, c.LikerIDs)
		item.Comments = append(item.Comments, Comment{
			ID:        c.Comment.ID,
			Content:   c.Comment.Content,
			CreatedAt: c.Comment.CreatedAt,
			Author:    normalizeAuthor(c.Author),
			LikerIDs:  likers,
		})
	}

	return item
}

// Normalize converts raw rows into render-safe items, keeping source order.
// Nil rows are dropped.
func Normalize(rows []*model.FeedPost, logger *zap.Logger) []Item {
	items := make([]Item, 0, len(rows))
	for i, row := range rows {
		if row == nil {
			logger.Sugar().Warnf("dropping nil feed row at index %d", i)
			continue
		}
		items = append(items, normalizeRow(row))
	}
	return items
}
