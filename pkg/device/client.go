/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package device uploads scripts to a device over its HTTP RPC interface.
//
// Each call is a JSON POST to http://<host>/rpc/<Method>. Upload runs
// Script.Stop, Script.PutCode in ordered chunks, then Script.Start. Any
// failure aborts the sequence immediately; there is no retry and no
// rollback, so a failed upload can leave a partial script on the device.
package device

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fulmenhq/scriptcat/pkg/logger"
)

// RPC method names.
const (
	MethodStop    = "Script.Stop"
	MethodPutCode = "Script.PutCode"
	MethodStart   = "Script.Start"
)

// Defaults matching the device's expectations.
const (
	DefaultTimeout   = 2 * time.Second
	DefaultChunkSize = 1024
)

// HTTPError is a non-2xx reply.
type HTTPError struct {
	Method     string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s: HTTP %d", e.Method, e.StatusCode)
	if b := strings.TrimSpace(e.Body); b != "" {
		msg += ": " + b
	}
	return msg
}

// RPCError is a reply object carrying a negative code.
type RPCError struct {
	Method  string
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s: rpc error %d: %s", e.Method, e.Code, e.Message)
}

// Response is one decoded RPC reply.
type Response struct {
	Method string
	// Raw is the reply body as received.
	Raw json.RawMessage
}

// Observer is told about every successful reply, in call order.
type Observer func(Response)

// Client talks to one device.
type Client struct {
	baseURL   string
	doer      Doer
	chunkSize int
	observer  Observer
}

// Option configures a Client.
type Option func(*Client)

// WithDoer replaces the HTTP transport.
func WithDoer(d Doer) Option {
	return func(c *Client) { c.doer = d }
}

// WithChunkSize sets the PutCode chunk length in characters.
func WithChunkSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithObserver installs a reply observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient creates a client for host, which may be a bare host[:port] or
// a full http URL. timeout bounds every single call.
func NewClient(host string, timeout time.Duration, opts ...Option) (*Client, error) {
	base, err := baseURL(host)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL:   base,
		doer:      &http.Client{Timeout: timeout},
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func baseURL(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", fmt.Errorf("device host is required")
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid device host: %s", host)
	}
	return strings.TrimRight(u.Scheme+"://"+u.Host+u.Path, "/"), nil
}

// Call posts params to method and returns the reply.
func (c *Client) Call(ctx context.Context, method string, params any) (Response, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return Response{}, fmt.Errorf("%s: failed to encode request: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rpc/"+method, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("%s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("Device RPC", logger.String("method", method), logger.Int("bytes", len(body)))
	resp, err := c.doer.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%s: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("%s: failed to read reply: %w", method, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &HTTPError{Method: method, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var reply struct {
		Code    *int   `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &reply) == nil && reply.Code != nil && *reply.Code < 0 {
		return Response{}, &RPCError{Method: method, Code: *reply.Code, Message: reply.Message}
	}

	r := Response{Method: method, Raw: json.RawMessage(raw)}
	if c.observer != nil {
		c.observer(r)
	}
	return r, nil
}

type idParams struct {
	ID int `json:"id"`
}

type putCodeParams struct {
	ID     int    `json:"id"`
	Code   string `json:"code"`
	Append bool   `json:"append"`
}

// Stop stops script id.
func (c *Client) Stop(ctx context.Context, id int) error {
	_, err := c.Call(ctx, MethodStop, idParams{ID: id})
	return err
}

// Start starts script id.
func (c *Client) Start(ctx context.Context, id int) error {
	_, err := c.Call(ctx, MethodStart, idParams{ID: id})
	return err
}

// PutCode sends one chunk of code. append=false replaces the script body.
func (c *Client) PutCode(ctx context.Context, id int, code string, appendCode bool) error {
	_, err := c.Call(ctx, MethodPutCode, putCodeParams{ID: id, Code: code, Append: appendCode})
	return err
}

// Upload replaces script id with code: stop, put every chunk in order,
// start. Empty code sends no PutCode call.
func (c *Client) Upload(ctx context.Context, id int, code string) error {
	if err := c.Stop(ctx, id); err != nil {
		return err
	}
	for i, chunk := range Chunks(code, c.chunkSize) {
		if err := c.PutCode(ctx, id, chunk, i > 0); err != nil {
			return err
		}
	}
	return c.Start(ctx, id)
}

// Chunks splits s into pieces of at most size characters, keeping multi-byte
// characters whole.
func Chunks(s string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var out []string
	for len(s) > 0 {
		end, n := 0, 0
		for end < len(s) && n < size {
			_, w := utf8.DecodeRuneInString(s[end:])
			end += w
			n++
		}
		out = append(out, s[:end])
		s = s[end:]
	}
	return out
}

func methodFromPath(p string) string {
	if i := strings.LastIndex(p, "/rpc/"); i >= 0 {
		return p[i+len("/rpc/"):]
	}
	return p
}
