package postgres

import (
	"context"

	"github.com/comuna-app/feed-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type profileRepo struct {
	db *pgxpool.Pool
}

func newProfileRepo(db *pgxpool.Pool) Profile {
	return &profileRepo{
		db: db,
	}
}

func (r *profileRepo) Upsert(ctx context.Context, profile model.Profile) error {
	_, err := r.db.Exec(
		ctx,
		`INSERT INTO profiles(id, name, handle, avatar_url) VALUES($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, handle = EXCLUDED.handle, avatar_url = EXCLUDED.avatar_url`,
		profile.ID,
		profile.Name,
		profile.Handle,
		profile.AvatarURL,
	)
	return err
}

func (r *profileRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	query, args, err := buildUpdate("profiles", []string{"name", "handle", "avatar_url"}, id, updates)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

func (r *profileRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.QueryRow(
		ctx,
		"SELECT u.id, u.name, u.handle, u.avatar_url FROM profiles u WHERE u.id = $1",
		id,
	).Scan(
		&profile.ID,
		&profile.Name,
		&profile.Handle,
		&profile.AvatarURL,
	); err != nil {
		return nil, err
	}

	return &profile, nil
}
