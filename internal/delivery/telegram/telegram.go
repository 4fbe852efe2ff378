// Package telegram delivers text messages through the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultAPIBase = "https://api.telegram.org"

// Client is a minimal Bot API client implementing notify.Deliverer.
type Client struct {
	http  *resty.Client
	token string
}

// Options configures a Client.
type Options struct {
	Token   string
	BaseURL string        // Overridable for tests; defaults to the Bot API
	Timeout time.Duration // Defaults to 10 s
}

// NewClient creates a Telegram delivery client
func NewClient(opts Options) *Client {
	base := opts.BaseURL
	if base == "" {
		base = defaultAPIBase
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(base)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")

	return &Client{
		http:  client,
		token: opts.Token,
	}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Deliver sends a plain-text message to a chat.
func (c *Client) Deliver(ctx context.Context, chatID int64, text string) error {
	var result apiResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": strconv.FormatInt(chatID, 10),
			"text":    text,
		}).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/bot%s/sendMessage", c.token))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	if resp.IsError() || !result.OK {
		if result.Description != "" {
			return fmt.Errorf("telegram API: %s", result.Description)
		}
		return fmt.Errorf("telegram API: unexpected status %s", resp.Status())
	}
	return nil
}
