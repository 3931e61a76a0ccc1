package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

type Post struct {
	ID          int64     `json:"id"`
	CommunityID int64     `json:"community_id"`
	AuthorID    uuid.UUID `json:"author_id"`
	Description *string   `json:"description"`
	MediaURL    string    `json:"media_url"`
	MediaType   string    `json:"media_type"`
	Blurhash    string    `json:"blurhash"`
	CreatedAt   time.Time `json:"created_at"`
}

// FeedPost is one row of a community feed window as served to clients.
type FeedPost struct {
	Post     Post           `json:"post"`
	Author   *UserAuthor    `json:"author"`
	Comments []*FullComment `json:"comments"`
}
