package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/tinyland-inc/picorelay/pkg/logger"
)

const defaultAPIBase = "https://api.telegram.org"

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client)

// WithAPIBase overrides the Bot API base URL, e.g. for a local server
// or a test fixture.
func WithAPIBase(base string) ClientOption {
	return func(c *Client) { c.apiBase = base }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// Client is a minimal Bot API client implementing API. It speaks JSON
// for plain calls and multipart form encoding when uploads are present.
type Client struct {
	token   string
	apiBase string
	http    *http.Client
}

func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		token:   token,
		apiBase: defaultAPIBase,
		// Long polling holds the connection open for up to 30s
		// server-side; the client timeout must exceed that.
		http: &http.Client{Timeout: 50 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes one Bot API call and decodes its result according to the
// method: sendMediaGroup yields a message list, boolean-result methods
// yield an empty Result, everything else yields a single message.
func (c *Client) Do(ctx context.Context, req Request) (*Result, error) {
	raw, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if len(raw) == 0 {
		return res, nil
	}

	switch req.Method {
	case "sendMediaGroup":
		if err := json.Unmarshal(raw, &res.Messages); err != nil {
			return nil, fmt.Errorf("decode %s result: %w", req.Method, err)
		}
	default:
		// sendChatAction and the webhook setters return `true`.
		if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
			var msg Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				return nil, fmt.Errorf("decode %s result: %w", req.Method, err)
			}
			res.Message = &msg
		}
	}
	return res, nil
}

// GetMe fetches the bot's own user record.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	raw, err := c.call(ctx, Request{Method: "getMe"})
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode getMe result: %w", err)
	}
	return &u, nil
}

// GetUpdates long-polls for new updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, limit, timeout int) ([]Update, error) {
	raw, err := c.call(ctx, Request{
		Method: "getUpdates",
		Params: map[string]any{
			"offset":  offset,
			"limit":   limit,
			"timeout": timeout,
		},
	})
	if err != nil {
		return nil, err
	}
	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("decode getUpdates result: %w", err)
	}
	return updates, nil
}

// SetWebhook registers url as the update webhook. An empty url removes
// the webhook, same as DeleteWebhook without dropping updates.
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	_, err := c.call(ctx, Request{
		Method: "setWebhook",
		Params: map[string]any{"url": url},
	})
	return err
}

func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	_, err := c.call(ctx, Request{
		Method: "deleteWebhook",
		Params: map[string]any{"drop_pending_updates": dropPending},
	})
	return err
}

func (c *Client) GetWebhookInfo(ctx context.Context) (*WebhookInfo, error) {
	raw, err := c.call(ctx, Request{Method: "getWebhookInfo"})
	if err != nil {
		return nil, err
	}
	var info WebhookInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("decode getWebhookInfo result: %w", err)
	}
	return &info, nil
}

func (c *Client) call(ctx context.Context, req Request) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, req.Method)

	var body io.Reader
	contentType := "application/json"
	if len(req.Files) > 0 {
		buf, ct, err := encodeMultipart(req)
		if err != nil {
			return nil, err
		}
		body = buf
		contentType = ct
	} else if len(req.Params) > 0 {
		encoded, err := json.Marshal(req.Params)
		if err != nil {
			return nil, fmt.Errorf("marshal %s params: %w", req.Method, err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	logger.DebugCF("telegram", "API call", map[string]any{"method": req.Method})

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", req.Method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal %s response: %w", req.Method, err)
	}

	if !envelope.OK {
		apiErr := &APIError{
			Code:        envelope.ErrorCode,
			Description: envelope.Description,
		}
		if envelope.Parameters != nil {
			apiErr.RetryAfter = envelope.Parameters.RetryAfter
		}
		return nil, apiErr
	}
	return envelope.Result, nil
}

func encodeMultipart(req Request) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for key, val := range req.Params {
		if err := w.WriteField(key, formatParam(val)); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", key, err)
		}
	}
	for field, file := range req.Files {
		part, err := w.CreateFormFile(field, file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %s: %w", field, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("write form file %s: %w", field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func formatParam(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(encoded)
	}
}
