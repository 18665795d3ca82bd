package telegram

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Client defines the contract for the outbound Bot API calls this system uses.
type Client interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendPhoto(ctx context.Context, chatID int64, photo []byte, caption string) error
	SetWebhook(ctx context.Context, url string) error
	SetMyCommands(ctx context.Context, commands []BotCommand) error
	SetChatMenuButton(ctx context.Context) error
}

// HTTPClient implements Client over the Telegram Bot API.
type HTTPClient struct {
	rc  *resty.Client
	log zerolog.Logger
}

// NewHTTPClient constructs a Bot API client. The base URL is normally
// https://api.telegram.org and is overridable for tests and the local mock.
func NewHTTPClient(baseURL, token string, timeout time.Duration, log zerolog.Logger) (*HTTPClient, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram: token is required")
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/") + "/bot" + token).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &HTTPClient{rc: rc, log: log}, nil
}

// apiResponse is the envelope every Bot API method responds with.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage delivers a plain-text message to a chat.
func (c *HTTPClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	body := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	return c.call(ctx, "sendMessage", body)
}

// SendPhoto uploads a PNG image to a chat via multipart form data.
func (c *HTTPClient) SendPhoto(ctx context.Context, chatID int64, photo []byte, caption string) error {
	form := map[string]string{
		"chat_id": strconv.FormatInt(chatID, 10),
	}
	if caption != "" {
		form["caption"] = caption
	}

	var out apiResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetFileReader("photo", "report.png", bytes.NewReader(photo)).
		SetFormData(form).
		SetResult(&out).
		SetError(&out).
		Post("/sendPhoto")
	if err != nil {
		return fmt.Errorf("telegram: sendPhoto: %w", err)
	}
	return checkResponse("sendPhoto", resp, &out)
}

// SetWebhook registers the public URL Telegram should push message updates to.
func (c *HTTPClient) SetWebhook(ctx context.Context, url string) error {
	body := map[string]interface{}{
		"url":             url,
		"allowed_updates": []string{"message"},
	}
	return c.call(ctx, "setWebhook", body)
}

// SetMyCommands registers the bot's command menu entries.
func (c *HTTPClient) SetMyCommands(ctx context.Context, commands []BotCommand) error {
	body := map[string]interface{}{
		"commands": commands,
	}
	return c.call(ctx, "setMyCommands", body)
}

// SetChatMenuButton switches the chat menu button to the command list.
func (c *HTTPClient) SetChatMenuButton(ctx context.Context) error {
	body := map[string]interface{}{
		"menu_button": map[string]string{"type": "commands"},
	}
	return c.call(ctx, "setChatMenuButton", body)
}

func (c *HTTPClient) call(ctx context.Context, method string, body interface{}) error {
	var out apiResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post("/" + method)
	if err != nil {
		return fmt.Errorf("telegram: %s: %w", method, err)
	}
	c.log.Debug().Str("method", method).Int("status", resp.StatusCode()).Msg("telegram api call")
	return checkResponse(method, resp, &out)
}

func checkResponse(method string, resp *resty.Response, out *apiResponse) error {
	if resp.IsSuccess() && out.OK {
		return nil
	}
	desc := out.Description
	if desc == "" {
		desc = "no description"
	}
	return fmt.Errorf("telegram: %s returned %d: %s", method, resp.StatusCode(), desc)
}
