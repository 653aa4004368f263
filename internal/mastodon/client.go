// Package mastodon posts status updates to a Mastodon instance.
package mastodon

import (
	"context"
	"fmt"

	gomastodon "github.com/mattn/go-mastodon"
)

// Client submits status updates to one configured instance. It
// implements the publish.StatusPoster interface.
type Client struct {
	client *gomastodon.Client
}

// New creates a client for the given instance base URL and access token.
func New(instance, accessToken string) *Client {
	return &Client{
		client: gomastodon.NewClient(&gomastodon.Config{
			Server:      instance,
			AccessToken: accessToken,
		}),
	}
}

// PostStatus publishes a status update and returns the URL of the
// created post.
func (c *Client) PostStatus(ctx context.Context, status string) (string, error) {
	st, err := c.client.PostStatus(ctx, &gomastodon.Toot{Status: status})
	if err != nil {
		return "", fmt.Errorf("status post failed: %w", err)
	}
	return st.URL, nil
}
