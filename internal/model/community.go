package model

import (
	"time"

	"github.com/google/uuid"
)

type MemberStatus string

const (
	MemberPending  MemberStatus = "pending"
	MemberApproved MemberStatus = "approved"
)

type Community struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	ManagerID        uuid.UUID `json:"manager_id"`
	RequiresApproval bool      `json:"requires_approval"`
	CreatedAt        time.Time `json:"created_at"`
}

type Member struct {
	CommunityID int64        `json:"community_id"`
	UserID      uuid.UUID    `json:"user_id"`
	Status      MemberStatus `json:"status"`
	JoinedAt    time.Time    `json:"joined_at"`
}

type FullMember struct {
	Member Member      `json:"member"`
	Author *UserAuthor `json:"profile"`
}

type Invite struct {
	Code        string     `json:"code"`
	CommunityID int64      `json:"community_id"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	ExpiresAt   *time.Time `json:"expires_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (i Invite) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}
