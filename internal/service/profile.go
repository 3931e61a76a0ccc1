package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/comuna-app/feed-service/internal/dto"
	"github.com/comuna-app/feed-service/internal/model"
	"github.com/comuna-app/feed-service/internal/rabbitmq"
	"github.com/comuna-app/feed-service/internal/repository"
	"github.com/comuna-app/feed-service/internal/repository/postgres"
	"github.com/comuna-app/feed-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type profileService struct {
	logger *zap.Logger
	repo   *repository.Repository
	mq     MQ
}

func newProfileService(logger *zap.Logger, repo *repository.Repository, mq MQ) Profile {
	return &profileService{
		logger: logger,
		repo:   repo,
		mq:     mq,
	}
}

func (s *profileService) Upsert(ctx context.Context, id uuid.UUID, input dto.UpsertProfileDto) error {
	handle := strings.TrimSpace(input.Handle)
	if handle == "" {
		return ErrInvalidArgument
	}

	profile := model.Profile{
		ID:        id,
		Name:      strings.TrimSpace(input.Name),
		Handle:    handle,
		AvatarURL: strings.TrimSpace(input.AvatarURL),
	}
	if err := s.repo.Postgres.Profile.Upsert(ctx, profile); err != nil {
		s.logger.Sugar().Errorf("failed to upsert profile(%s): %s", id.String(), err.Error())
		return ErrInternal
	}

	s.dropCached(ctx, id)

	return nil
}

func (s *profileService) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if err := s.repo.Postgres.Profile.Update(ctx, id, updates); err != nil {
		if errors.Is(err, postgres.ErrFieldsNotAllowedToUpdate) {
			return ErrInvalidArgument
		}
		s.logger.Sugar().Errorf("failed to update profile(%s): %s", id.String(), err.Error())
		return ErrInternal
	}

	s.dropCached(ctx, id)

	return nil
}

func (s *profileService) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	cachedProfile, err := redisrepo.Get[model.Profile](s.repo.Redis.Default, ctx, redisrepo.ProfileKey(id.String()))
	if err == nil && cachedProfile != nil {
		return cachedProfile, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Sugar().Errorf("failed to get profile(%s) from redis: %s", id.String(), err.Error())
		return nil, ErrInternal
	}

	profile, err := s.repo.Postgres.Profile.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.logger.Sugar().Errorf("failed to get profile(%s) from postgres: %s", id.String(), err.Error())
		return nil, ErrInternal
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, redisrepo.ProfileKey(id.String()), profile, time.Hour); err != nil {
		s.logger.Sugar().Errorf("failed to set profile(%s) in redis: %s", id.String(), err.Error())
	}

	return profile, nil
}

func (s *profileService) dropCached(ctx context.Context, id uuid.UUID) {
	if err := s.repo.Redis.Default.Del(ctx, redisrepo.ProfileKey(id.String())).Err(); err != nil {
		s.logger.Sugar().Errorf("failed to delete profile(%s) from redis: %s", id.String(), err.Error())
	}
}

// StartConsumeUpdates applies profile changes published by the account
// service until the delivery channel closes or ctx is done.
func (s *profileService) StartConsumeUpdates(ctx context.Context) {
	queue := rabbitmq.PROFILE_UPDATED_QUEUE
	msgs, err := s.mq.Consume(queue)
	if err != nil {
		s.logger.Sugar().Fatalf("failed to start consume updates from queue(%s): %s", queue, err.Error())
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			switch s.handleUpdate(ctx, msg.Body) {
			case ack:
				msg.Ack(false)
			case requeue:
				msg.Nack(false, true)
			default:
				msg.Nack(false, false)
			}
		}
	}
}

type deliveryResult int

const (
	ack deliveryResult = iota
	requeue
	discard
)

func (s *profileService) handleUpdate(ctx context.Context, body []byte) deliveryResult {
	queue := rabbitmq.PROFILE_UPDATED_QUEUE

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		s.logger.Sugar().Errorf("failed to unmarshal json in queue(%s): %s", queue, err.Error())
		return discard
	}

	userIDString, exists := data["user_id"].(string)
	if !exists {
		s.logger.Sugar().Errorf("'user_id' field is not provided")
		return discard
	}
	userID, err := uuid.Parse(userIDString)
	if err != nil {
		s.logger.Sugar().Errorf("provided an invalid user_id")
		return discard
	}

	delete(data, "user_id")

	if err := s.Update(ctx, userID, data); err != nil {
		if errors.Is(err, ErrInvalidArgument) {
			return discard
		}
		return requeue
	}

	return ack
}
