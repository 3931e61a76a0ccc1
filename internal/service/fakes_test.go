package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/comuna-app/feed-service/internal/config"
	"github.com/comuna-app/feed-service/internal/model"
	"github.com/comuna-app/feed-service/internal/repository"
	"github.com/comuna-app/feed-service/internal/repository/postgres"
	"github.com/comuna-app/feed-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var errStore = errors.New("store is down")

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}}
}

func (r *fakeRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = fmt.Sprint(value)
	return nil
}

func (r *fakeRedis) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = string(valueJSON)
	return nil
}

func (r *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (r *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := r.data[key]; ok {
			delete(r.data, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (r *fakeRedis) Keys(ctx context.Context, pattern string) *redis.StringSliceCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := []string{}
	for key := range r.data {
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return redis.NewStringSliceResult(keys, nil)
}

func (r *fakeRedis) has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.data[key]
	return ok
}

type fakePosts struct {
	nextID    int64
	posts     map[int64]*model.Post
	feed      []*model.FeedPost
	findCalls int
	createErr error
}

func (f *fakePosts) Create(ctx context.Context, post model.Post) (*model.Post, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	post.ID = f.nextID
	post.CreatedAt = time.Now()
	f.posts[post.ID] = &post
	return &post, nil
}

func (f *fakePosts) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return post, nil
}

func (f *fakePosts) FindCommunityPosts(ctx context.Context, communityID int64, limit int, offset int) ([]*model.FeedPost, error) {
	f.findCalls++
	rows := []*model.FeedPost{}
	for _, row := range f.feed {
		if row.Post.CommunityID == communityID {
			rows = append(rows, row)
		}
	}
	if offset >= len(rows) {
		return []*model.FeedPost{}, nil
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

type likeKey struct {
	commentID int64
	userID    uuid.UUID
}

type fakeComments struct {
	nextID   int64
	comments map[int64]*model.Comment
	likes    map[likeKey]bool
}

func (f *fakeComments) Create(ctx context.Context, comment model.Comment) (*model.Comment, error) {
	f.nextID++
	comment.ID = f.nextID
	comment.CreatedAt = time.Now()
	f.comments[comment.ID] = &comment
	return &comment, nil
}

func (f *fakeComments) FindByID(ctx context.Context, id int64) (*model.Comment, error) {
	comment, ok := f.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return comment, nil
}

func (f *fakeComments) Delete(ctx context.Context, commentID int64, authorID uuid.UUID) (bool, error) {
	comment, ok := f.comments[commentID]
	if !ok || comment.AuthorID != authorID {
		return false, nil
	}
	delete(f.comments, commentID)
	return true, nil
}

func (f *fakeComments) Like(ctx context.Context, commentID int64, userID uuid.UUID) error {
	f.likes[likeKey{commentID, userID}] = true
	return nil
}

func (f *fakeComments) Unlike(ctx context.Context, commentID int64, userID uuid.UUID) error {
	delete(f.likes, likeKey{commentID, userID})
	return nil
}

type memberKey struct {
	communityID int64
	userID      uuid.UUID
}

type fakeCommunities struct {
	nextID      int64
	communities map[int64]*model.Community
	members     map[memberKey]*model.Member
	authors     map[uuid.UUID]*model.UserAuthor
	invites     map[string]*model.Invite
	findCalls   int
}

func (f *fakeCommunities) Create(ctx context.Context, community model.Community) (*model.Community, error) {
	f.nextID++
	community.ID = f.nextID
	community.CreatedAt = time.Now()
	f.communities[community.ID] = &community
	f.members[memberKey{community.ID, community.ManagerID}] = &model.Member{
		CommunityID: community.ID,
		UserID:      community.ManagerID,
		Status:      model.MemberApproved,
		JoinedAt:    community.CreatedAt,
	}
	return &community, nil
}

func (f *fakeCommunities) FindByID(ctx context.Context, id int64) (*model.Community, error) {
	f.findCalls++
	community, ok := f.communities[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := *community
	return &c, nil
}

func (f *fakeCommunities) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	community, ok := f.communities[id]
	if !ok {
		return pgx.ErrNoRows
	}
	for field, value := range updates {
		switch field {
		case "name":
			community.Name = value.(string)
		case "description":
			community.Description = value.(string)
		case "requires_approval":
			community.RequiresApproval = value.(bool)
		default:
			return postgres.ErrFieldsNotAllowedToUpdate
		}
	}
	return nil
}

func (f *fakeCommunities) UpsertMember(ctx context.Context, member model.Member) (*model.Member, error) {
	key := memberKey{member.CommunityID, member.UserID}
	if existing, ok := f.members[key]; ok {
		member.JoinedAt = existing.JoinedAt
	}
	f.members[key] = &member
	m := member
	return &m, nil
}

func (f *fakeCommunities) FindMember(ctx context.Context, communityID int64, userID uuid.UUID) (*model.Member, error) {
	member, ok := f.members[memberKey{communityID, userID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	m := *member
	return &m, nil
}

func (f *fakeCommunities) DeleteMember(ctx context.Context, communityID int64, userID uuid.UUID) error {
	delete(f.members, memberKey{communityID, userID})
	return nil
}

func (f *fakeCommunities) FindMembers(ctx context.Context, communityID int64, status model.MemberStatus) ([]*model.FullMember, error) {
	members := []*model.FullMember{}
	for key, member := range f.members {
		if key.communityID != communityID || member.Status != status {
			continue
		}
		members = append(members, &model.FullMember{Member: *member, Author: f.authors[key.userID]})
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].Member.UserID.String() < members[j].Member.UserID.String()
	})
	return members, nil
}

func (f *fakeCommunities) CreateInvite(ctx context.Context, invite model.Invite) error {
	f.invites[invite.Code] = &invite
	return nil
}

func (f *fakeCommunities) FindInvite(ctx context.Context, code string) (*model.Invite, error) {
	invite, ok := f.invites[code]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return invite, nil
}

type fakeProfiles struct {
	profiles  map[uuid.UUID]*model.Profile
	findCalls int
	updateErr error
}

func (f *fakeProfiles) Upsert(ctx context.Context, profile model.Profile) error {
	f.profiles[profile.ID] = &profile
	return nil
}

func (f *fakeProfiles) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	profile, ok := f.profiles[id]
	if !ok {
		profile = &model.Profile{ID: id}
		f.profiles[id] = profile
	}
	for field, value := range updates {
		s, _ := value.(string)
		switch field {
		case "name":
			profile.Name = s
		case "handle":
			profile.Handle = s
		case "avatar_url":
			profile.AvatarURL = s
		default:
			return postgres.ErrFieldsNotAllowedToUpdate
		}
	}
	return nil
}

func (f *fakeProfiles) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	f.findCalls++
	profile, ok := f.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	p := *profile
	return &p, nil
}

type published struct {
	queue string
	body  []byte
}

type fakeMQ struct {
	published  []published
	publishErr error
	deliveries chan amqp.Delivery
}

func (f *fakeMQ) PublishJSON(ctx context.Context, queue string, value interface{}) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.published = append(f.published, published{queue: queue, body: body})
	return nil
}

func (f *fakeMQ) Consume(queue string) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

type fakeMedia struct {
	keys []string
	data [][]byte
	err  error
}

func (f *fakeMedia) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	f.data = append(f.data, b)
	return "https://cdn.test/" + key, nil
}

type fixture struct {
	redis       *fakeRedis
	posts       *fakePosts
	comments    *fakeComments
	communities *fakeCommunities
	profiles    *fakeProfiles
	mq          *fakeMQ
	media       *fakeMedia
	repo        *repository.Repository

	communitySvc *communityService
}

func newFixture() *fixture {
	f := &fixture{
		redis:    newFakeRedis(),
		posts:    &fakePosts{posts: map[int64]*model.Post{}},
		comments: &fakeComments{comments: map[int64]*model.Comment{}, likes: map[likeKey]bool{}},
		communities: &fakeCommunities{
			communities: map[int64]*model.Community{},
			members:     map[memberKey]*model.Member{},
			authors:     map[uuid.UUID]*model.UserAuthor{},
			invites:     map[string]*model.Invite{},
		},
		profiles: &fakeProfiles{profiles: map[uuid.UUID]*model.Profile{}},
		mq:       &fakeMQ{},
		media:    &fakeMedia{},
	}

	f.repo = &repository.Repository{
		Postgres: &postgres.PostgresRepository{
			Post:      f.posts,
			Comment:   f.comments,
			Community: f.communities,
			Profile:   f.profiles,
		},
		Redis: &redisrepo.RedisRepository{Default: f.redis},
	}

	f.communitySvc = newCommunityService(zap.NewNop(), f.repo, func(n int, swap func(i, j int)) {
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	})

	return f
}

// community seeds a community managed by manager with the given approved
// members.
func (f *fixture) community(manager uuid.UUID, requiresApproval bool, members ...uuid.UUID) int64 {
	community, _ := f.communities.Create(context.Background(), model.Community{
		Name:             "surf club",
		ManagerID:        manager,
		RequiresApproval: requiresApproval,
	})
	for _, member := range members {
		f.communities.members[memberKey{community.ID, member}] = &model.Member{
			CommunityID: community.ID,
			UserID:      member,
			Status:      model.MemberApproved,
		}
	}
	return community.ID
}

func (f *fixture) postService() Post {
	return newPostService(zap.NewNop(), f.repo, f.communitySvc, f.mq, f.media, config.FeedConfig{BatchSize: config.DefaultBatchSize, CacheTTL: time.Hour})
}

func (f *fixture) commentService() Comment {
	return newCommentService(zap.NewNop(), f.repo, f.communitySvc)
}

func (f *fixture) profileService() *profileService {
	return newProfileService(zap.NewNop(), f.repo, f.mq).(*profileService)
}
