package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"strings"
	"time"

	"github.com/comuna-app/feed-service/internal/dto"
	"github.com/comuna-app/feed-service/internal/feed"
	"github.com/comuna-app/feed-service/internal/model"
	"github.com/comuna-app/feed-service/internal/repository"
	"github.com/comuna-app/feed-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	inviteCodeBytes     = 10
	defaultPreviewLimit = 12
)

var inviteEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

type communityService struct {
	logger  *zap.Logger
	repo    *repository.Repository
	shuffle func(n int, swap func(i, j int))
	now     func() time.Time
}

func newCommunityService(logger *zap.Logger, repo *repository.Repository, shuffle func(n int, swap func(i, j int))) *communityService {
	return &communityService{
		logger:  logger,
		repo:    repo,
		shuffle: shuffle,
		now:     time.Now,
	}
}

func (s *communityService) Create(ctx context.Context, managerID uuid.UUID, input dto.CreateCommunityDto) (*model.Community, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidArgument
	}

	community, err := s.repo.Postgres.Community.Create(ctx, model.Community{
		Name:             name,
		Description:      strings.TrimSpace(input.Description),
		ManagerID:        managerID,
		RequiresApproval: input.RequiresApproval,
	})
	if err != nil {
		s.logger.Sugar().Errorf("failed to create community for user(%s): %s", managerID.String(), err.Error())
		return nil, ErrInternal
	}

	return community, nil
}

func (s *communityService) FindByID(ctx context.Context, id int64) (*model.Community, error) {
	cachedCommunity, err := redisrepo.Get[model.Community](s.repo.Redis.Default, ctx, redisrepo.CommunityKey(id))
	if err == nil && cachedCommunity != nil {
		return cachedCommunity, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Sugar().Errorf("failed to get community(%d) from redis: %s", id, err.Error())
		return nil, ErrInternal
	}

	community, err := s.repo.Postgres.Community.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.logger.Sugar().Errorf("failed to find community(%d) from postgres: %s", id, err.Error())
		return nil, ErrInternal
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, redisrepo.CommunityKey(id), community, time.Hour); err != nil {
		s.logger.Sugar().Errorf("failed to set community(%d) in redis: %s", id, err.Error())
	}

	return community, nil
}

func (s *communityService) Edit(ctx context.Context, id int64, managerID uuid.UUID, input dto.EditCommunityDto) error {
	if _, err := s.requireManager(ctx, id, managerID); err != nil {
		return err
	}

	updates := make(map[string]interface{})
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return ErrInvalidArgument
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.RequiresApproval != nil {
		updates["requires_approval"] = *input.RequiresApproval
	}

	if err := s.repo.Postgres.Community.Update(ctx, id, updates); err != nil {
		s.logger.Sugar().Errorf("failed to update community(%d): %s", id, err.Error())
		return ErrInternal
	}

	if err := s.repo.Redis.Default.Del(ctx, redisrepo.CommunityKey(id)).Err(); err != nil {
		s.logger.Sugar().Errorf("failed to delete community(%d) from redis: %s", id, err.Error())
	}

	return nil
}

// Join requests membership. Communities with an approval gate put the user
// on the pending list; others approve right away. Existing memberships are
// returned unchanged.
func (s *communityService) Join(ctx context.Context, id int64, userID uuid.UUID) (*model.Member, error) {
	community, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	member, err := s.findMember(ctx, id, userID)
	if err == nil {
		return member, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	status := model.MemberApproved
	if community.RequiresApproval {
		status = model.MemberPending
	}

	return s.saveMember(ctx, id, userID, status)
}

func (s *communityService) Approve(ctx context.Context, id int64, managerID uuid.UUID, userID uuid.UUID) error {
	if _, err := s.requireManager(ctx, id, managerID); err != nil {
		return err
	}

	if _, err := s.findMember(ctx, id, userID); err != nil {
		return err
	}

	_, err := s.saveMember(ctx, id, userID, model.MemberApproved)
	return err
}

func (s *communityService) Reject(ctx context.Context, id int64, managerID uuid.UUID, userID uuid.UUID) error {
	if _, err := s.requireManager(ctx, id, managerID); err != nil {
		return err
	}

	if userID == managerID {
		return ErrInvalidArgument
	}

	if err := s.repo.Postgres.Community.DeleteMember(ctx, id, userID); err != nil {
		s.logger.Sugar().Errorf("failed to delete member(%s) of community(%d): %s", userID.String(), id, err.Error())
		return ErrInternal
	}

	return nil
}

// Members lists approved members to any approved member; the pending list is
// visible to the manager only.
func (s *communityService) Members(ctx context.Context, id int64, requesterID uuid.UUID, status model.MemberStatus) ([]*model.FullMember, error) {
	switch status {
	case model.MemberPending:
		if _, err := s.requireManager(ctx, id, requesterID); err != nil {
			return nil, err
		}
	case model.MemberApproved:
		if err := s.RequireMember(ctx, id, requesterID); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidArgument
	}

	members, err := s.repo.Postgres.Community.FindMembers(ctx, id, status)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find %s members of community(%d): %s", status, id, err.Error())
		return nil, ErrInternal
	}
	if members == nil {
		members = []*model.FullMember{}
	}

	return members, nil
}

func (s *communityService) CreateInvite(ctx context.Context, id int64, managerID uuid.UUID, ttl time.Duration) (*model.Invite, error) {
	if _, err := s.requireManager(ctx, id, managerID); err != nil {
		return nil, err
	}
	if ttl < 0 {
		return nil, ErrInvalidArgument
	}

	code, err := newInviteCode()
	if err != nil {
		s.logger.Sugar().Errorf("failed to generate invite code: %s", err.Error())
		return nil, ErrInternal
	}

	now := s.now()
	invite := model.Invite{
		Code:        code,
		CommunityID: id,
		CreatedBy:   managerID,
		CreatedAt:   now,
	}
	if ttl > 0 {
		expiresAt := now.Add(ttl)
		invite.ExpiresAt = &expiresAt
	}

	if err := s.repo.Postgres.Community.CreateInvite(ctx, invite); err != nil {
		s.logger.Sugar().Errorf("failed to create invite for community(%d): %s", id, err.Error())
		return nil, ErrInternal
	}

	return &invite, nil
}

// JoinByInvite approves the user directly; an invite bypasses the approval
// gate.
func (s *communityService) JoinByInvite(ctx context.Context, code string, userID uuid.UUID) (*model.Member, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrInvalidArgument
	}

	invite, err := s.repo.Postgres.Community.FindInvite(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.logger.Sugar().Errorf("failed to find invite(%s): %s", code, err.Error())
		return nil, ErrInternal
	}

	if invite.Expired(s.now()) {
		return nil, ErrInviteExpired
	}

	return s.saveMember(ctx, invite.CommunityID, userID, model.MemberApproved)
}

// MemberPreview returns up to limit avatar URLs of approved members in
// random order, used to scatter avatars around the community header.
func (s *communityService) MemberPreview(ctx context.Context, id int64, userID uuid.UUID, limit int) ([]string, error) {
	if limit <= 0 {
		limit = defaultPreviewLimit
	}

	members, err := s.Members(ctx, id, userID, model.MemberApproved)
	if err != nil {
		return nil, err
	}

	avatars := make([]string, 0, len(members))
	for _, m := range members {
		avatar := feed.PlaceholderAvatarURL
		if m.Author != nil && m.Author.AvatarURL != nil && *m.Author.AvatarURL != "" {
			avatar = *m.Author.AvatarURL
		}
		avatars = append(avatars, avatar)
	}

	s.shuffle(len(avatars), func(i, j int) {
		avatars[i], avatars[j] = avatars[j], avatars[i]
	})

	if len(avatars) > limit {
		avatars = avatars[:limit]
	}

	return avatars, nil
}

func (s *communityService) RequireMember(ctx context.Context, id int64, userID uuid.UUID) error {
	member, err := s.findMember(ctx, id, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotMember
		}
		return err
	}

	if member.Status != model.MemberApproved {
		return ErrNotMember
	}

	return nil
}

func (s *communityService) requireManager(ctx context.Context, id int64, userID uuid.UUID) (*model.Community, error) {
	community, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if community.ManagerID != userID {
		return nil, ErrForbidden
	}

	return community, nil
}

func (s *communityService) findMember(ctx context.Context, id int64, userID uuid.UUID) (*model.Member, error) {
	member, err := s.repo.Postgres.Community.FindMember(ctx, id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.logger.Sugar().Errorf("failed to find member(%s) of community(%d): %s", userID.String(), id, err.Error())
		return nil, ErrInternal
	}
	return member, nil
}

func (s *communityService) saveMember(ctx context.Context, id int64, userID uuid.UUID, status model.MemberStatus) (*model.Member, error) {
	member := model.Member{
		CommunityID: id,
		UserID:      userID,
		Status:      status,
		JoinedAt:    s.now(),
	}

	saved, err := s.repo.Postgres.Community.UpsertMember(ctx, member)
	if err != nil {
		s.logger.Sugar().Errorf("failed to save member(%s) of community(%d): %s", userID.String(), id, err.Error())
		return nil, ErrInternal
	}

	return saved, nil
}

func newInviteCode() (string, error) {
	b := make([]byte, inviteCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return inviteEncoding.EncodeToString(b), nil
}
