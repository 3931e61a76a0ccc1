// Package feedclient reads community feed windows from the feed service API.
package feedclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/comuna-app/feed-service/internal/model"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

var ErrUnexpectedStatus = errors.New("unexpected status from feed service")

// Client implements feed.Source over GET /api/v1/communities/:id/posts.
type Client struct {
	baseURL     string
	accessToken func() string
	httpClient  *http.Client
	logger      *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New returns a client for the API rooted at baseURL. accessToken is called
// before every request so that refreshed tokens are picked up.
func New(baseURL string, accessToken func() string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) FetchCommunityPosts(ctx context.Context, communityID int64, start int, end int) ([]*model.FeedPost, error) {
	endpoint := fmt.Sprintf("/api/v1/communities/%d/posts", communityID)
	query := url.Values{}
	query.Set("start", strconv.Itoa(start))
	query.Set("end", strconv.Itoa(end))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to feed service: %w", err)
	}

	if c.accessToken != nil {
		if token := c.accessToken(); token != "" {
			req.Header.Add("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to feed service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from feed service: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var bodyJSON map[string]interface{}
		if err := json.Unmarshal(body, &bodyJSON); err != nil {
			c.logger.Sugar().Errorf("failed to decode error response from feed service: %s", err.Error())
		} else {
			c.logger.Sugar().Errorf("ERROR from feed service endpoint(%s), details: %v", endpoint, bodyJSON["details"])
		}
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var posts []*model.FeedPost
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts from feed service: %w", err)
	}

	return posts, nil
}
