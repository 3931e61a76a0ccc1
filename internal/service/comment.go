package service

import (
	"context"
	"errors"
	"strings"

	"github.com/comuna-app/feed-service/internal/dto"
	"github.com/comuna-app/feed-service/internal/model"
	"github.com/comuna-app/feed-service/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type commentService struct {
	logger      *zap.Logger
	repo        *repository.Repository
	communities Community
}

func newCommentService(logger *zap.Logger, repo *repository.Repository, communities Community) Comment {
	return &commentService{
		logger:      logger,
		repo:        repo,
		communities: communities,
	}
}

func (s *commentService) Create(ctx context.Context, authorID uuid.UUID, postID int64, input dto.CreateCommentDto) (*model.Comment, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrInvalidArgument
	}

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.communities.RequireMember(ctx, post.CommunityID, authorID); err != nil {
		return nil, err
	}

	comment, err := s.repo.Postgres.Comment.Create(ctx, model.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	})
	if err != nil {
		s.logger.Sugar().Errorf("failed to create user(%s) comment on post(%d): %s", authorID.String(), postID, err.Error())
		return nil, ErrInternal
	}

	invalidateCommunityPosts(ctx, s.logger, s.repo, post.CommunityID)

	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, postID int64, commentID int64, authorID uuid.UUID) error {
	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.PostID != postID {
		return ErrNotFound
	}

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Postgres.Comment.Delete(ctx, commentID, authorID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to delete comment(%d): %s", commentID, err.Error())
		return ErrInternal
	}
	if !deleted {
		return ErrForbidden
	}

	invalidateCommunityPosts(ctx, s.logger, s.repo, post.CommunityID)

	return nil
}

func (s *commentService) Like(ctx context.Context, commentID int64, userID uuid.UUID, unlike bool) error {
	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return err
	}

	post, err := s.findPost(ctx, comment.PostID)
	if err != nil {
		return err
	}

	if err := s.communities.RequireMember(ctx, post.CommunityID, userID); err != nil {
		return err
	}

	if unlike {
		err = s.repo.Postgres.Comment.Unlike(ctx, commentID, userID)
	} else {
		err = s.repo.Postgres.Comment.Like(ctx, commentID, userID)
	}
	if err != nil {
		s.logger.Sugar().Errorf("failed to update user(%s) like on comment(%d): %s", userID.String(), commentID, err.Error())
		return ErrInternal
	}

	invalidateCommunityPosts(ctx, s.logger, s.repo, post.CommunityID)

	return nil
}

func (s *commentService) findPost(ctx context.Context, postID int64) (*model.Post, error) {
	post, err := s.repo.Postgres.Post.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.logger.Sugar().Errorf("failed to find post(%d): %s", postID, err.Error())
		return nil, ErrInternal
	}
	return post, nil
}

func (s *commentService) findComment(ctx context.Context, commentID int64) (*model.Comment, error) {
	comment, err := s.repo.Postgres.Comment.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.logger.Sugar().Errorf("failed to find comment(%d): %s", commentID, err.Error())
		return nil, ErrInternal
	}
	return comment, nil
}
