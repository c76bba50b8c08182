package line

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/mood-assistant/internal/httpclient"
)

const replyPath = "/v2/bot/message/reply"

// Client sends replies through the LINE Messaging API.
type Client struct {
	api *httpclient.Client
}

// NewClient creates a reply client for the API at baseURL.
func NewClient(baseURL, accessToken string, timeout time.Duration) *Client {
	opts := []httpclient.Option{httpclient.WithBearerToken(accessToken)}
	if timeout > 0 {
		opts = append(opts, httpclient.WithTimeout(timeout))
	}
	return &Client{api: httpclient.New(baseURL, opts...)}
}

type replyRequest struct {
	ReplyToken string    `json:"replyToken"`
	Messages   []Message `json:"messages"`
}

// Reply answers the event identified by replyToken. Nothing is sent when
// messages is empty.
func (c *Client) Reply(ctx context.Context, replyToken string, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}
	if len(messages) > maxReplyMessages {
		messages = messages[:maxReplyMessages]
	}

	_, err := c.api.PostJSON(ctx, replyPath, replyRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	})
	if err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}
	return nil
}
