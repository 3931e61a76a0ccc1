package service

import (
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/comuna-app/feed-service/internal/config"
	"github.com/comuna-app/feed-service/internal/dto"
	"github.com/comuna-app/feed-service/internal/model"
	"github.com/comuna-app/feed-service/internal/repository"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func maxLimit(limit *int, max int) {
	if *limit > max {
		*limit = max
	}
}

// Upload is a media file received with a new post.
type Upload struct {
	File        io.ReadSeeker
	Size        int64
	ContentType string
}

type MediaStorage interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

type MQ interface {
	PublishJSON(ctx context.Context, queue string, value interface{}) error
	Consume(queue string) (<-chan amqp.Delivery, error)
}

type Post interface {
	Create(ctx context.Context, authorID uuid.UUID, communityID int64, dto dto.CreatePostDto, upload Upload) (*model.Post, error)
	FindCommunityPosts(ctx context.Context, userID uuid.UUID, communityID int64, start int, end int) ([]*model.FeedPost, error)
}

type Comment interface {
	Create(ctx context.Context, authorID uuid.UUID, postID int64, dto dto.CreateCommentDto) (*model.Comment, error)
	Delete(ctx context.Context, postID int64, commentID int64, authorID uuid.UUID) error
	Like(ctx context.Context, commentID int64, userID uuid.UUID, unlike bool) error
}

type Community interface {
	Create(ctx context.Context, managerID uuid.UUID, dto dto.CreateCommunityDto) (*model.Community, error)
	FindByID(ctx context.Context, id int64) (*model.Community, error)
	Edit(ctx context.Context, id int64, managerID uuid.UUID, dto dto.EditCommunityDto) error
	Join(ctx context.Context, id int64, userID uuid.UUID) (*model.Member, error)
	Approve(ctx context.Context, id int64, managerID uuid.UUID, userID uuid.UUID) error
	Reject(ctx context.Context, id int64, managerID uuid.UUID, userID uuid.UUID) error
	Members(ctx context.Context, id int64, requesterID uuid.UUID, status model.MemberStatus) ([]*model.FullMember, error)
	CreateInvite(ctx context.Context, id int64, managerID uuid.UUID, ttl time.Duration) (*model.Invite, error)
	JoinByInvite(ctx context.Context, code string, userID uuid.UUID) (*model.Member, error)
	MemberPreview(ctx context.Context, id int64, userID uuid.UUID, limit int) ([]string, error)
	RequireMember(ctx context.Context, id int64, userID uuid.UUID) error
}

type Profile interface {
	Upsert(ctx context.Context, id uuid.UUID, dto dto.UpsertProfileDto) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	StartConsumeUpdates(ctx context.Context)
}

type Service struct {
	Post
	Comment
	Community
	Profile
}

func New(logger *zap.Logger, repo *repository.Repository, mq MQ, media MediaStorage, feedCfg config.FeedConfig) *Service {
	communities := newCommunityService(logger, repo, rand.Shuffle)
	return &Service{
		Post:      newPostService(logger, repo, communities, mq, media, feedCfg),
		Comment:   newCommentService(logger, repo, communities),
		Community: communities,
		Profile:   newProfileService(logger, repo, mq),
	}
}

func (s *Service) StartConsumeAll(ctx context.Context) {
	go s.Profile.StartConsumeUpdates(ctx)
}
