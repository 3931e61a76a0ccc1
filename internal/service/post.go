package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/comuna-app/feed-service/internal/config"
	"github.com/comuna-app/feed-service/internal/dto"
	"github.com/comuna-app/feed-service/internal/media"
	"github.com/comuna-app/feed-service/internal/model"
	"github.com/comuna-app/feed-service/internal/rabbitmq"
	"github.com/comuna-app/feed-service/internal/repository"
	"github.com/comuna-app/feed-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	maxImageSize = 10 << 20
	maxVideoSize = 100 << 20
)

type postService struct {
	logger      *zap.Logger
	repo        *repository.Repository
	communities Community
	mq          MQ
	media       MediaStorage
	cacheTTL    time.Duration
	windowSize  int
}

func newPostService(logger *zap.Logger, repo *repository.Repository, communities Community, mq MQ, media MediaStorage, feedCfg config.FeedConfig) Post {
	cacheTTL := feedCfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = config.DefaultCacheTTL
	}
	windowSize := feedCfg.BatchSize
	if windowSize <= 0 {
		windowSize = config.DefaultBatchSize
	}

	return &postService{
		logger:      logger,
		repo:        repo,
		communities: communities,
		mq:          mq,
		media:       media,
		cacheTTL:    cacheTTL,
		windowSize:  windowSize,
	}
}

func (s *postService) Create(ctx context.Context, authorID uuid.UUID, communityID int64, input dto.CreatePostDto, upload Upload) (*model.Post, error) {
	if err := s.communities.RequireMember(ctx, communityID, authorID); err != nil {
		return nil, err
	}

	mediaType, ok := media.TypeOf(upload.ContentType)
	if !ok {
		return nil, ErrUnsupportedMedia
	}
	if (mediaType == model.MediaTypeImage && upload.Size > maxImageSize) || upload.Size > maxVideoSize {
		return nil, ErrMediaTooLarge
	}

	var blurhash string
	if mediaType == model.MediaTypeImage {
		blurhash = s.blurhash(upload.File)
	}

	if _, err := upload.File.Seek(0, io.SeekStart); err != nil {
		s.logger.Sugar().Errorf("failed to seek to the start of the file: %s", err.Error())
		return nil, ErrInternal
	}

	key := media.PostKey(communityID, upload.ContentType)
	mediaURL, err := s.media.Upload(ctx, key, upload.File, upload.Size, upload.ContentType)
	if err != nil {
		s.logger.Sugar().Errorf("failed to upload media(%s) for community(%d): %s", key, communityID, err.Error())
		return nil, ErrFailedToUploadMedia
	}

	post := model.Post{
		CommunityID: communityID,
		AuthorID:    authorID,
		Description: trimDescription(input.Description),
		MediaURL:    mediaURL,
		MediaType:   mediaType,
		Blurhash:    blurhash,
	}

	createdPost, err := s.repo.Postgres.Post.Create(ctx, post)
	if err != nil {
		s.logger.Sugar().Errorf("failed to create user(%s) post in community(%d): %s", authorID.String(), communityID, err.Error())
		return nil, ErrInternal
	}

	s.invalidateCommunityPosts(ctx, communityID)

	msg := dto.MQPostCreatedMsg{
		PostID:      createdPost.ID,
		CommunityID: communityID,
		UserID:      authorID,
		CreatedAt:   createdPost.CreatedAt,
	}
	if err := s.mq.PublishJSON(ctx, rabbitmq.POST_CREATED_QUEUE, msg); err != nil {
		s.logger.Sugar().Errorf("failed to publish post(%d) created message: %s", createdPost.ID, err.Error())
	}

	return createdPost, nil
}

// blurhash returns an empty token when the image cannot be decoded; the post
// is still accepted and clients fall back to a flat background.
func (s *postService) blurhash(r io.Reader) string {
	hash, err := media.Blurhash(r)
	if err != nil {
		s.logger.Sugar().Warnf("failed to compute blurhash: %s", err.Error())
		return ""
	}
	return hash
}

func trimDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// FindCommunityPosts serves the inclusive window [start, end] of a community
// feed, newest first. Windows are clamped to the
// configured feed batch size.
func (s *postService) FindCommunityPosts(ctx context.Context, userID uuid.UUID, communityID int64, start int, end int) ([]*model.FeedPost, error) {
	if start < 0 || end < start {
		return nil, ErrInvalidArgument
	}

	if err := s.communities.RequireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}

	limit := end - start + 1
	maxLimit(&limit, s.windowSize)
	end = start + limit - 1
	key := redisrepo.CommunityPostsKey(communityID, start, end)

	cachedPosts, err := redisrepo.GetMany[model.FeedPost](s.repo.Redis.Default, ctx, key)
	if err == nil && cachedPosts != nil {
		return cachedPosts, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Sugar().Errorf("failed to get community(%d) posts [%d, %d] from redis: %s", communityID, start, end, err.Error())
		return nil, ErrInternal
	}

	posts, err := s.repo.Postgres.Post.FindCommunityPosts(ctx, communityID, limit, start)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find community(%d) posts [%d, %d] from postgres: %s", communityID, start, end, err.Error())
		return nil, ErrInternal
	}
	if posts == nil {
		posts = []*model.FeedPost{}
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, key, posts, s.cacheTTL); err != nil {
		s.logger.Sugar().Errorf("failed to set community(%d) posts [%d, %d] in redis: %s", communityID, start, end, err.Error())
	}

	return posts, nil
}

func (s *postService) invalidateCommunityPosts(ctx context.Context, communityID int64) {
	invalidateCommunityPosts(ctx, s.logger, s.repo, communityID)
}

func invalidateCommunityPosts(ctx context.Context, logger *zap.Logger, repo *repository.Repository, communityID int64) {
	if err := redisrepo.DelPattern(repo.Redis.Default, ctx, redisrepo.CommunityPostsPattern(communityID)); err != nil {
		logger.Sugar().Errorf("failed to invalidate community(%d) posts in redis: %s", communityID, err.Error())
	}
}
