package postgres

import (
	"context"
	"errors"

	"github.com/comuna-app/feed-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var ErrFieldsNotAllowedToUpdate = errors.New("fields not allowed to update")

type Post interface {
	Create(ctx context.Context, post model.Post) (*model.Post, error)
	FindByID(ctx context.Context, id int64) (*model.Post, error)
	FindCommunityPosts(ctx context.Context, communityID int64, limit int, offset int) ([]*model.FeedPost, error)
}

type Comment interface {
	Create(ctx context.Context, comment model.Comment) (*model.Comment, error)
	FindByID(ctx context.Context, id int64) (*model.Comment, error)
	Delete(ctx context.Context, commentID int64, authorID uuid.UUID) (bool, error)
	Like(ctx context.Context, commentID int64, userID uuid.UUID) error
	Unlike(ctx context.Context, commentID int64, userID uuid.UUID) error
}

type Community interface {
	Create(ctx context.Context, community model.Community) (*model.Community, error)
	FindByID(ctx context.Context, id int64) (*model.Community, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	UpsertMember(ctx context.Context, member model.Member) (*model.Member, error)
	FindMember(ctx context.Context, communityID int64, userID uuid.UUID) (*model.Member, error)
	DeleteMember(ctx context.Context, communityID int64, userID uuid.UUID) error
	FindMembers(ctx context.Context, communityID int64, status model.MemberStatus) ([]*model.FullMember, error)
	CreateInvite(ctx context.Context, invite model.Invite) error
	FindInvite(ctx context.Context, code string) (*model.Invite, error)
}

type Profile interface {
	Upsert(ctx context.Context, profile model.Profile) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

type PostgresRepository struct {
	Post
	Comment
	Community
	Profile
}

func New(db *pgxpool.Pool, logger *zap.Logger) *PostgresRepository {
	return &PostgresRepository{
		Post:      newPostRepo(db, logger),
		Comment:   newCommentRepo(db),
		Community: newCommunityRepo(db),
		Profile:   newProfileRepo(db),
	}
}
