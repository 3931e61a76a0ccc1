package postgres

import (
	"context"
	"time"

	"github.com/comuna-app/feed-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postRepo struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func newPostRepo(db *pgxpool.Pool, logger *zap.Logger) Post {
	return &postRepo{
		db:     db,
		logger: logger,
	}
}

func (r *postRepo) Create(ctx context.Context, post model.Post) (*model.Post, error) {
	post.CreatedAt = time.Now()
	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO posts(community_id, author_id, description, media_url, media_type, blurhash, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		post.CommunityID,
		post.AuthorID,
		post.Description,
		post.MediaURL,
		post.MediaType,
		post.Blurhash,
		post.CreatedAt,
	).Scan(&post.ID); err != nil {
		return nil, err
	}

	return &post, nil
}

func (r *postRepo) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	if err := r.db.QueryRow(
		ctx,
		`SELECT p.id, p.community_id, p.author_id, p.description, p.media_url, p.media_type, p.blurhash, p.created_at
		FROM posts p WHERE p.id = $1`,
		id,
	).Scan(
		&post.ID,
		&post.CommunityID,
		&post.AuthorID,
		&post.Description,
		&post.MediaURL,
		&post.MediaType,
		&post.Blurhash,
		&post.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &post, nil
}

// FindCommunityPosts returns one window of the community feed, newest first,
// with author snapshots and top-level comments attached.
func (r *postRepo) FindCommunityPosts(ctx context.Context, communityID int64, limit int, offset int) ([]*model.FeedPost, error) {
	if limit <= 0 {
		return []*model.FeedPost{}, nil
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT
		p.id, p.community_id, p.author_id, p.description, p.media_url, p.media_type, p.blurhash, p.created_at,
		u.id::text, u.name, u.handle, u.avatar_url
		FROM posts p
		LEFT JOIN profiles u ON p.author_id = u.id
		WHERE p.community_id = $1
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2
		OFFSET $3`,
		communityID,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]*model.FeedPost, 0, limit)
	postsByID := make(map[int64]*model.FeedPost, limit)
	for rows.Next() {
		var (
			post   model.FeedPost
			author authorColumns
		)
		if err := rows.Scan(
			&post.Post.ID,
			&post.Post.CommunityID,
			&post.Post.AuthorID,
			&post.Post.Description,
			&post.Post.MediaURL,
			&post.Post.MediaType,
			&post.Post.Blurhash,
			&post.Post.CreatedAt,
			&author.id,
			&author.name,
			&author.handle,
			&author.avatarURL,
		); err != nil {
			return nil, err
		}

		post.Author = author.toModel()
		post.Comments = []*model.FullComment{}
		posts = append(posts, &post)
		postsByID[post.Post.ID] = &post
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(posts) == 0 {
		return posts, nil
	}

	if err := r.attachComments(ctx, postsByID); err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *postRepo) attachComments(ctx context.Context, postsByID map[int64]*model.FeedPost) error {
	ids := make([]int64, 0, len(postsByID))
	for id := range postsByID {
		ids = append(ids, id)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT
		c.id, c.post_id, c.author_id, c.content, c.created_at,
		u.id::text, u.name, u.handle, u.avatar_url,
		COALESCE(array_agg(l.user_id::text) FILTER (WHERE l.user_id IS NOT NULL), '{}')
		FROM comments c
		LEFT JOIN profiles u ON c.author_id = u.id
		LEFT JOIN comment_likes l ON l.comment_id = c.id
		WHERE c.post_id = ANY($1)
		GROUP BY c.id, u.id
		ORDER BY c.created_at ASC, c.id ASC`,
		ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			comment model.FullComment
			author  authorColumns
			likers  []string
		)
		if err := rows.Scan(
			&comment.Comment.ID,
			&comment.Comment.PostID,
			&comment.Comment.AuthorID,
			&comment.Comment.Content,
			&comment.Comment.CreatedAt,
			&author.id,
			&author.name,
			&author.handle,
			&author.avatarURL,
			&likers,
		); err != nil {
			return err
		}

		comment.Author = author.toModel()
		comment.LikerIDs = make([]uuid.UUID, 0, len(likers))
		for _, liker := range likers {
			id, err := uuid.Parse(liker)
			if err != nil {
				r.logger.Sugar().Warnf("skipping malformed liker id(%s) on comment(%d): %s", liker, comment.Comment.ID, err.Error())
				continue
			}
			comment.LikerIDs = append(comment.LikerIDs, id)
		}

		post, ok := postsByID[comment.Comment.PostID]
		if !ok {
			continue
		}
		post.Comments = append(post.Comments, &comment)
	}

	return rows.Err()
}

// authorColumns scans a LEFT JOINed profile; every column is NULL when the
// profile is missing.
type authorColumns struct {
	id        *string
	name      *string
	handle    *string
	avatarURL *string
}

func (a authorColumns) toModel() *model.UserAuthor {
	if a.id == nil {
		return nil
	}

	id, err := uuid.Parse(*a.id)
	if err != nil {
		return nil
	}

	return &model.UserAuthor{
		ID:        id,
		Name:      a.name,
		Handle:    a.handle,
		AvatarURL: a.avatarURL,
	}
}
