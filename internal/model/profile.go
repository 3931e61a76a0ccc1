package model

import "github.com/google/uuid"

type Profile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Handle    string    `json:"handle"`
	AvatarURL string    `json:"avatar_url"`
}

// UserAuthor is the author snapshot joined into feed rows at read time.
// A nil *UserAuthor means the profile row no longer exists.
type UserAuthor struct {
	ID        uuid.UUID `json:"id"`
	Name      *string   `json:"name"`
	Handle    *string   `json:"handle"`
	AvatarURL *string   `json:"avatar_url"`
}
