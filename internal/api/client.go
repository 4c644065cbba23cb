// Package api is the HTTP adapter for the task service. Every request carries the
// session cookie from the client's jar and targets the configured base path.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"todo-cli/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the hosted task service.
	DefaultBaseURL = "https://my-todo-app-m3ny.onrender.com/api"

	// maxBodyBytes bounds how much of a response body is read.
	maxBodyBytes = 4 << 20

	requestIDHeader = "X-Request-ID"
)

type Options struct {
	BaseURL string

	// HTTPClient is optional; its Jar is replaced when Jar is set.
	HTTPClient *http.Client
	Jar        http.CookieJar

	Logger *zap.Logger

	// Timeout applies per request. Zero means no timeout.
	Timeout time.Duration

	UserAgent string
}

type Client struct {
	base    *url.URL
	hc      *http.Client
	log     *zap.Logger
	timeout time.Duration
	ua      string
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type TaskUpdate struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      model.Status `json:"status"`
}

func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", raw, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", raw)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	} else {
		cp := *hc
		hc = &cp
	}
	if opts.Jar != nil {
		hc.Jar = opts.Jar
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "todo-cli"
	}
	return &Client{
		base:    base,
		hc:      hc,
		log:     log,
		timeout: opts.Timeout,
		ua:      ua,
	}, nil
}

// BaseURL returns a copy of the configured base path.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

func (c *Client) Register(ctx context.Context, in RegisterInput) error {
	status, body, err := c.do(ctx, "register", http.MethodPost, "/auth/register", in)
	if err != nil {
		return err
	}
	if isSuccess(status) {
		return nil
	}
	return decodeRegisterError(status, body)
}

func (c *Client) Login(ctx context.Context, in LoginInput) (model.User, error) {
	var u model.User
	err := c.call(ctx, "login", http.MethodPost, "/auth/login", in, &u)
	return u, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, "logout", http.MethodGet, "/auth/logout", nil, nil)
}

// Me asks the service who owns the current session cookie.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var u model.User
	err := c.call(ctx, "me", http.MethodGet, "/auth/me", nil, &u)
	return u, err
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.call(ctx, "list tasks", http.MethodGet, "/todo/gettask", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

func (c *Client) AddTask(ctx context.Context, in TaskInput) (model.Task, error) {
	var t model.Task
	err := c.call(ctx, "add task", http.MethodPost, "/todo/add", in, &t)
	return t, err
}

// UpdateTask returns the updated task when the service echoes one; otherwise the
// returned task is built from the request.
func (c *Client) UpdateTask(ctx context.Context, id model.TaskID, in TaskUpdate) (model.Task, error) {
	var t model.Task
	if err := c.call(ctx, "update task", http.MethodPut, "/todo/update/"+url.PathEscape(id.String()), in, &t); err != nil {
		return model.Task{}, err
	}
	if t.ID.IsZero() {
		t = model.Task{ID: id, Title: in.Title, Description: in.Description, Status: in.Status}
	}
	return t, nil
}

func (c *Client) DeleteTask(ctx context.Context, id model.TaskID) error {
	return c.call(ctx, "delete task", http.MethodDelete, "/todo/delete/"+url.PathEscape(id.String()), nil, nil)
}

// MarkTask asks the service to flip the task's status. No target status is sent.
func (c *Client) MarkTask(ctx context.Context, id model.TaskID) error {
	return c.call(ctx, "mark task", http.MethodGet, "/todo/mark/"+url.PathEscape(id.String()), nil, nil)
}

// call performs a request and decodes a 2xx JSON body into out (when out is non-nil
// and the body is not empty). Non-2xx responses become *StatusError.
func (c *Client) call(ctx context.Context, op, method, path string, in any, out any) error {
	status, body, err := c.do(ctx, op, method, path, in)
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return &StatusError{Op: op, StatusCode: status, Body: strings.TrimSpace(string(body))}
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in any) (int, []byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", reqID),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return 0, nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	c.log.Debug("request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", reqID),
		zap.Duration("duration", time.Since(start)),
	)
	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool { return status >= 200 && status < 300 }

func decodeRegisterError(status int, body []byte) error {
	var wire struct {
		Errors  map[string]json.RawMessage `json:"errors"`
		Message string                     `json:"message"`
	}
	re := &RegisterError{StatusCode: status}
	if err := json.Unmarshal(body, &wire); err != nil {
		return re
	}
	if len(wire.Errors) > 0 {
		re.Fields = make(map[string]string, len(wire.Errors))
		for k, v := range wire.Errors {
			re.Fields[k] = fieldMessage(v)
		}
	}
	re.Message = strings.TrimSpace(wire.Message)
	return re
}

// fieldMessage flattens one entry of an errors map. Validators commonly send either a
// plain string or an object carrying a "message"/"msg" key.
func fieldMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, k := range []string{"message", "msg"} {
			if v, ok := obj[k].(string); ok {
				return v
			}
		}
	}
	var xs []string
	if err := json.Unmarshal(raw, &xs); err == nil && len(xs) > 0 {
		return strings.Join(xs, ", ")
	}
	return strings.TrimSpace(string(raw))
}

// IsTransport reports whether err means no usable response was received.
func IsTransport(err error) bool { return errors.Is(err, ErrTransport) }
