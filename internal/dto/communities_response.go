package dto

import (
	"time"

	"github.com/comuna-app/feed-service/internal/model"
	"github.com/comuna-app/feed-service/pkg/timefmt"
)

type CommunityResponse struct {
	model.Community
	IsMember bool `json:"is_member"`
}

type MemberResponse struct {
	model.FullMember
	Joined string `json:"joined"`
}

func NewMembersResponse(members []*model.FullMember, now time.Time) []MemberResponse {
	resp := make([]MemberResponse, 0, len(members))
	for _, member := range members {
		if member == nil {
			continue
		}
		resp = append(resp, MemberResponse{
			FullMember: *member,
			Joined:     timefmt.Ago(member.Member.JoinedAt, now),
		})
	}
	return resp
}
