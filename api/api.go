// Package api resolves content ids into playable sources through the streaming service's REST API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reelplay/reelplay/network"
)

var (
	ErrNotFound     = errors.New("api: post not found")
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrServer       = errors.New("api: server error")
	ErrNoBaseURL    = errors.New("api: base url is not configured")
)

// Post is a published video.
type Post struct {
	ID           int       `json:"id"`
	PostID       string    `json:"postId"`
	Caption      string    `json:"caption"`
	Content      string    `json:"content"`
	VideoURL     string    `json:"videoUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	BannerURL    string    `json:"bannerUrl"`
	Tags         []string  `json:"tags"`
	LikeCount    int       `json:"likeCount"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type postResponse struct {
	Post *Post `json:"post"`
}

// TokenFunc returns the bearer token. An empty token sends no Authorization header.
type TokenFunc func() (string, error)

// Client talks to the API rooted at a base URL.
type Client struct {
	base    *url.URL
	timeout time.Duration
	token   TokenFunc
	http    *http.Client
}

// New returns a client for base. token may be nil.
func New(base string, timeout time.Duration, token TokenFunc) (*Client, error) {
	if strings.TrimSpace(base) == "" {
		return nil, ErrNoBaseURL
	}

	u, err := url.Parse(strings.TrimSuffix(base, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("api: invalid base url: %w", err)
	}

	return &Client{
		base:    u,
		timeout: timeout,
		token:   token,
		http:    network.Client,
	}, nil
}

// Post fetches a single post by id.
func (c *Client) Post(ctx context.Context, id string) (Post, error) {
	endpoint := c.base.JoinPath("posts", url.PathEscape(strings.TrimSpace(id)))

	var resp postResponse
	if err := c.get(ctx, endpoint.String(), &resp); err != nil {
		return Post{}, fmt.Errorf("post %s: %w", id, err)
	}

	if resp.Post == nil || resp.Post.VideoURL == "" {
		return Post{}, fmt.Errorf("post %s: %w", id, ErrNotFound)
	}

	return *resp.Post, nil
}

func (c *Client) get(ctx context.Context, endpoint string, v any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	if c.token != nil {
		token, err := c.token()
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case res.StatusCode == http.StatusUnauthorized, res.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case res.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrServer, res.Status)
	case res.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status: %s", res.Status)
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	return nil
}
