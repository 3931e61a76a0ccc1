package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/comuna-app/feed-service/internal/dto"
	"github.com/comuna-app/feed-service/internal/feed"
	"github.com/comuna-app/feed-service/internal/model"
	"github.com/comuna-app/feed-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreateCommunity(t *testing.T) {
	f := newFixture()
	manager := uuid.New()
	svc := f.communitySvc
	ctx := context.Background()

	_, err := svc.Create(ctx, manager, dto.CreateCommunityDto{Name: "   "})
	require.ErrorIs(t, err, ErrInvalidArgument)

	community, err := svc.Create(ctx, manager, dto.CreateCommunityDto{Name: " Surf ", Description: " waves ", RequiresApproval: true})
	require.NoError(t, err)
	require.Equal(t, "Surf", community.Name)
	require.Equal(t, "waves", community.Description)
	require.True(t, community.RequiresApproval)
	require.NoError(t, svc.RequireMember(ctx, community.ID, manager))
}

func TestFindCommunity_CachedAndInvalidatedOnEdit(t *testing.T) {
	f := newFixture()
	manager := uuid.New()
	communityID := f.community(manager, false)
	svc := f.communitySvc
	ctx := context.Background()

	_, err := svc.FindByID(ctx, communityID)
	require.NoError(t, err)
	_, err = svc.FindByID(ctx, communityID)
	require.NoError(t, err)
	require.Equal(t, 1, f.communities.findCalls)
	require.True(t, f.redis.has(redisrepo.CommunityKey(communityID)))

	name := "Surf & Skate"
	gated := true
	require.NoError(t, svc.Edit(ctx, communityID, manager, dto.EditCommunityDto{Name: &name, RequiresApproval: &gated}))

	community, err := svc.FindByID(ctx, communityID)
	require.NoError(t, err)
	require.Equal(t, "Surf & Skate", community.Name)
	require.True(t, community.RequiresApproval)

	_, err = svc.FindByID(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEditCommunity_Rejects(t *testing.T) {
	f := newFixture()
	manager := uuid.New()
	member := uuid.New()
	communityID := f.community(manager, false, member)
	ctx := context.Background()

	name := "mine now"
	require.ErrorIs(t, f.communitySvc.Edit(ctx, communityID, member, dto.EditCommunityDto{Name: &name}), ErrForbidden)

	blank := "  "
	require.ErrorIs(t, f.communitySvc.Edit(ctx, communityID, manager, dto.EditCommunityDto{Name: &blank}), ErrInvalidArgument)

	require.ErrorIs(t, f.communitySvc.Edit(ctx, 999, manager, dto.EditCommunityDto{Name: &name}), ErrNotFound)
}

func TestJoin_OpenCommunity(t *testing.T) {
	f := newFixture()
	communityID := f.community(uuid.New(), false)
	user := uuid.New()
	ctx := context.Background()

	member, err := f.communitySvc.Join(ctx, communityID, user)
	require.NoError(t, err)
	require.Equal(t, model.MemberApproved, member.Status)
	require.NoError(t, f.communitySvc.RequireMember(ctx, communityID, user))
}

func TestJoin_ApprovalFlow(t *testing.T) {
	f := newFixture()
	manager := uuid.New()
	communityID := f.community(manager, true)
	user := uuid.New()
	svc := f.communitySvc
	ctx := context.Background()

	member, err := svc.Join(ctx, communityID, user)
	require.NoError(t, err)
	require.Equal(t, model.MemberPending, member.Status)
	require.ErrorIs(t, svc.RequireMember(ctx, communityID, user), ErrNotMember)

	pending, err := svc.Members(ctx, communityID, manager, model.MemberPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, user, pending[0].Member.UserID)

	_, err = svc.Members(ctx, communityID, user, model.MemberPending)
	require.ErrorIs(t, err, ErrForbidden)

	require.ErrorIs(t, svc.Approve(ctx, communityID, user, user), ErrForbidden)
	require.ErrorIs(t, svc.Approve(ctx, communityID, manager, uuid.New()), ErrNotFound)
	require.NoError(t, svc.Approve(ctx, communityID, manager, user))
	require.NoError(t, svc.RequireMember(ctx, communityID, user))

	again, err := svc.Join(ctx, communityID, user)
	require.NoError(t, err)
	require.Equal(t, model.MemberApproved, again.Status)
}

func TestReject(t *testing.T) {
	f := newFixture()
	manager := uuid.New()
	communityID := f.community(manager, true)
	user := uuid.New()
	svc := f.communitySvc
	ctx := context.Background()

	_, err := svc.Join(ctx, communityID, user)
	require.NoError(t, err)

	require.ErrorIs(t, svc.Reject(ctx, communityID, manager, manager), ErrInvalidArgument)
	require.NoError(t, svc.Reject(ctx, communityID, manager, user))

	pending, err := svc.Members(ctx, communityID, manager, model.MemberPending)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestMembers_Rejects(t *testing.T) {
	f := newFixture()
	communityID := f.community(uuid.New(), false)

	_, err := f.communitySvc.Members(context.Background(), communityID, uuid.New(), model.MemberApproved)
	require.ErrorIs(t, err, ErrNotMember)

	_, err = f.communitySvc.Members(context.Background(), communityID, uuid.New(), model.MemberStatus("banned"))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestInvites(t *testing.T) {
	f := newFixture()
	manager := uuid.New()
	communityID := f.community(manager, true)
	svc := f.communitySvc
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.CreateInvite(ctx, communityID, uuid.New(), time.Hour)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CreateInvite(ctx, communityID, manager, -time.Hour)
	require.ErrorIs(t, err, ErrInvalidArgument)

	invite, err := svc.CreateInvite(ctx, communityID, manager, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, invite.Code, 16)
	require.NotNil(t, invite.ExpiresAt)
	require.Equal(t, now.Add(24*time.Hour), *invite.ExpiresAt)

	user := uuid.New()
	member, err := svc.JoinByInvite(ctx, " "+strings.ToLower(invite.Code)+" ", user)
	require.NoError(t, err)
	require.Equal(t, model.MemberApproved, member.Status)
	require.Equal(t, communityID, member.CommunityID)
	require.NoError(t, svc.RequireMember(ctx, communityID, user))

	svc.now = func() time.Time { return now.Add(24 * time.Hour) }
	_, err = svc.JoinByInvite(ctx, invite.Code, uuid.New())
	require.ErrorIs(t, err, ErrInviteExpired)

	_, err = svc.JoinByInvite(ctx, "NOPE", uuid.New())
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.JoinByInvite(ctx, "", uuid.New())
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestInvites_NoExpiry(t *testing.T) {
	f := newFixture()
	manager := uuid.New()
	communityID := f.community(manager, false)
	svc := f.communitySvc

	invite, err := svc.CreateInvite(context.Background(), communityID, manager, 0)
	require.NoError(t, err)
	require.Nil(t, invite.ExpiresAt)

	svc.now = func() time.Time { return time.Now().Add(10 * 365 * 24 * time.Hour) }
	_, err = svc.JoinByInvite(context.Background(), invite.Code, uuid.New())
	require.NoError(t, err)
}

func TestMemberPreview(t *testing.T) {
	f := newFixture()
	manager := uuid.New()
	a, b := uuid.New(), uuid.New()
	communityID := f.community(manager, false, a, b)

	avatarA := "https://cdn.test/a.jpg"
	empty := ""
	f.communities.authors[a] = &model.UserAuthor{ID: a, AvatarURL: &avatarA}
	f.communities.authors[b] = &model.UserAuthor{ID: b, AvatarURL: &empty}

	members, err := f.communitySvc.Members(context.Background(), communityID, manager, model.MemberApproved)
	require.NoError(t, err)
	require.Len(t, members, 3)

	expected := make([]string, 0, 3)
	for i := len(members) - 1; i >= 0; i-- {
		avatar := feed.PlaceholderAvatarURL
		if members[i].Member.UserID == a {
			avatar = avatarA
		}
		expected = append(expected, avatar)
	}

	avatars, err := f.communitySvc.MemberPreview(context.Background(), communityID, manager, 0)
	require.NoError(t, err)
	require.Equal(t, expected, avatars)

	limited, err := f.communitySvc.MemberPreview(context.Background(), communityID, manager, 2)
	require.NoError(t, err)
	require.Equal(t, expected[:2], limited)

	_, err = f.communitySvc.MemberPreview(context.Background(), communityID, uuid.New(), 2)
	require.ErrorIs(t, err, ErrNotMember)
}

func TestJoinByInvite_KeepsJoinTime(t *testing.T) {
	f := newFixture()
	manager := uuid.New()
	communityID := f.community(manager, true)
	svc := f.communitySvc
	ctx := context.Background()

	joined := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return joined }

	user := uuid.New()
	pending, err := svc.Join(ctx, communityID, user)
	require.NoError(t, err)
	require.Equal(t, model.MemberPending, pending.Status)

	invite, err := svc.CreateInvite(ctx, communityID, manager, 0)
	require.NoError(t, err)

	svc.now = func() time.Time { return joined.Add(48 * time.Hour) }
	member, err := svc.JoinByInvite(ctx, invite.Code, user)
	require.NoError(t, err)
	require.Equal(t, model.MemberApproved, member.Status)
	require.Equal(t, joined, member.JoinedAt)
}
