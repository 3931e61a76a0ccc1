package feedclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/comuna-app/feed-service/internal/feed"
	"github.com/comuna-app/feed-service/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var _ feed.Source = (*Client)(nil)

func TestFetchCommunityPosts(t *testing.T) {
	var gotPath, gotStart, gotEnd, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotStart = r.URL.Query().Get("start")
		gotEnd = r.URL.Query().Get("end")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"post":{"id":2,"community_id":7,"media_url":"https://cdn/2.jpg","blurhash":"LKO2","created_at":"2024-05-01T10:00:00Z"},"author":null,"comments":[],"ago":"3h"},
			{"post":{"id":1,"community_id":7,"media_url":"https://cdn/1.jpg","created_at":"2024-04-30T10:00:00Z"},"author":{"id":"7a0c6f7e-9a1c-4b0e-8a43-5d0a4b3c2e11","name":"Ana","handle":"ana","avatar_url":null},"comments":null}
		]`))
	}))
	defer srv.Close()

	client := New(srv.URL+"/", func() string { return "token" })
	posts, err := client.FetchCommunityPosts(context.Background(), 7, 5, 9)
	require.NoError(t, err)

	require.Equal(t, "/api/v1/communities/7/posts", gotPath)
	require.Equal(t, "5", gotStart)
	require.Equal(t, "9", gotEnd)
	require.Equal(t, "Bearer token", gotAuth)

	require.Len(t, posts, 2)
	require.Equal(t, int64(2), posts[0].Post.ID)
	require.Equal(t, "LKO2", posts[0].Post.Blurhash)
	require.Nil(t, posts[0].Author)
	require.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), posts[0].Post.CreatedAt)
	require.NotNil(t, posts[1].Author)
	require.Equal(t, "ana", *posts[1].Author.Handle)
	require.Nil(t, posts[1].Author.AvatarURL)
}

func TestFetchCommunityPosts_NoToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	posts, err := New(srv.URL, nil).FetchCommunityPosts(context.Background(), 1, 0, 4)
	require.NoError(t, err)
	require.Empty(t, posts)
	require.Equal(t, "", gotAuth)
}

func TestFetchCommunityPosts_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"ok":false,"details":"user is not an approved member of the community"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, func() string { return "t" }).FetchCommunityPosts(context.Background(), 1, 0, 4)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnexpectedStatus))
}

func TestFetchCommunityPosts_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).FetchCommunityPosts(context.Background(), 1, 0, 4)
	require.Error(t, err)
}

func TestFetchCommunityPosts_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL, nil).FetchCommunityPosts(ctx, 1, 0, 4)
	require.ErrorIs(t, err, context.Canceled)
}

// The pager drives the client end to end against a gin router serving a
// fixed feed.
func TestPagerOverClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rows := make([]*model.FeedPost, 7)
	for i := range rows {
		rows[i] = &model.FeedPost{Post: model.Post{ID: int64(7 - i), CommunityID: 3, Blurhash: "h"}}
	}

	r := gin.New()
	r.GET("/api/v1/communities/:communityID/posts", func(c *gin.Context) {
		var q struct {
			Start int `form:"start"`
			End   int `form:"end"`
		}
		require.NoError(t, c.ShouldBindQuery(&q))
		if q.Start >= len(rows) {
			c.JSON(http.StatusOK, []*model.FeedPost{})
			return
		}
		end := q.End + 1
		if end > len(rows) {
			end = len(rows)
		}
		c.JSON(http.StatusOK, rows[q.Start:end])
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	pager := feed.NewPager(New(srv.URL, nil), feed.Options{CommunityID: 3, BatchSize: 5})
	require.NoError(t, pager.Refresh(context.Background()))
	require.Equal(t, 5, pager.Len())
	require.True(t, pager.HasMore())

	require.NoError(t, pager.LoadMore(context.Background()))
	require.Equal(t, 7, pager.Len())
	require.False(t, pager.HasMore())
	require.Equal(t, int64(1), pager.Items()[6].ID)
}
