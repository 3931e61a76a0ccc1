package postgres

import (
	"context"
	"time"

	"github.com/comuna-app/feed-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type communityRepo struct {
	db *pgxpool.Pool
}

func newCommunityRepo(db *pgxpool.Pool) Community {
	return &communityRepo{
		db: db,
	}
}

// Create inserts the community and its manager as an approved member in one
// transaction.
func (r *communityRepo) Create(ctx context.Context, community model.Community) (*model.Community, error) {
	community.CreatedAt = time.Now()

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(
			ctx,
			`INSERT INTO communities(name, description, manager_id, requires_approval, created_at)
			VALUES($1, $2, $3, $4, $5) RETURNING id`,
			community.Name,
			community.Description,
			community.ManagerID,
			community.RequiresApproval,
			community.CreatedAt,
		).Scan(&community.ID); err != nil {
			return err
		}

		_, err := tx.Exec(
			ctx,
			"INSERT INTO community_members(community_id, user_id, status, joined_at) VALUES($1, $2, $3, $4)",
			community.ID,
			community.ManagerID,
			model.MemberApproved,
			community.CreatedAt,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &community, nil
}

func (r *communityRepo) FindByID(ctx context.Context, id int64) (*model.Community, error) {
	var community model.Community
	if err := r.db.QueryRow(
		ctx,
		`SELECT c.id, c.name, c.description, c.manager_id, c.requires_approval, c.created_at
		FROM communities c WHERE c.id = $1`,
		id,
	).Scan(
		&community.ID,
		&community.Name,
		&community.Description,
		&community.ManagerID,
		&community.RequiresApproval,
		&community.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &community, nil
}

func (r *communityRepo) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	query, args, err := buildUpdate("communities", []string{"name", "description", "requires_approval"}, id, updates)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// UpsertMember stores the membership status. An existing member keeps the
// original joined_at, which is returned.
func (r *communityRepo) UpsertMember(ctx context.Context, member model.Member) (*model.Member, error) {
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now()
	}

	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO community_members(community_id, user_id, status, joined_at) VALUES($1, $2, $3, $4)
		ON CONFLICT (community_id, user_id) DO UPDATE SET status = EXCLUDED.status
		RETURNING joined_at`,
		member.CommunityID,
		member.UserID,
		member.Status,
		member.JoinedAt,
	).Scan(&member.JoinedAt); err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *communityRepo) FindMember(ctx context.Context, communityID int64, userID uuid.UUID) (*model.Member, error) {
	var member model.Member
	if err := r.db.QueryRow(
		ctx,
		`SELECT m.community_id, m.user_id, m.status, m.joined_at
		FROM community_members m WHERE m.community_id = $1 AND m.user_id = $2`,
		communityID,
		userID,
	).Scan(
		&member.CommunityID,
		&member.UserID,
		&member.Status,
		&member.JoinedAt,
	); err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *communityRepo) DeleteMember(ctx context.Context, communityID int64, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, "DELETE FROM community_members WHERE community_id = $1 AND user_id = $2", communityID, userID)
	return err
}

func (r *communityRepo) FindMembers(ctx context.Context, communityID int64, status model.MemberStatus) ([]*model.FullMember, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT
		m.community_id, m.user_id, m.status, m.joined_at,
		u.id::text, u.name, u.handle, u.avatar_url
		FROM community_members m
		LEFT JOIN profiles u ON m.user_id = u.id
		WHERE m.community_id = $1 AND m.status = $2
		ORDER BY m.joined_at ASC`,
		communityID,
		status,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*model.FullMember
	for rows.Next() {
		var (
			member model.FullMember
			author authorColumns
		)
		if err := rows.Scan(
			&member.Member.CommunityID,
			&member.Member.UserID,
			&member.Member.Status,
			&member.Member.JoinedAt,
			&author.id,
			&author.name,
			&author.handle,
			&author.avatarURL,
		); err != nil {
			return nil, err
		}

		member.Author = author.toModel()
		members = append(members, &member)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return members, nil
}

func (r *communityRepo) CreateInvite(ctx context.Context, invite model.Invite) error {
	_, err := r.db.Exec(
		ctx,
		"INSERT INTO community_invites(code, community_id, created_by, expires_at, created_at) VALUES($1, $2, $3, $4, $5)",
		invite.Code,
		invite.CommunityID,
		invite.CreatedBy,
		invite.ExpiresAt,
		invite.CreatedAt,
	)
	return err
}

func (r *communityRepo) FindInvite(ctx context.Context, code string) (*model.Invite, error) {
	var invite model.Invite
	if err := r.db.QueryRow(
		ctx,
		`SELECT i.code, i.community_id, i.created_by, i.expires_at, i.created_at
		FROM community_invites i WHERE i.code = $1`,
		code,
	).Scan(
		&invite.Code,
		&invite.CommunityID,
		&invite.CreatedBy,
		&invite.ExpiresAt,
		&invite.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &invite, nil
}
