// Package client is a typed binding of the Weaver HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/weaverhq/weaver/internal/dto"
)

const (
	SessionCookieName = "weaver_session"
	CultureCookieName = "culture"
)

var ErrUnexpectedStatus = errors.New("unexpected response status")

// ProblemError is a problem payload returned by the server.
type ProblemError struct {
	StatusCode int
	Problem    dto.Problem
}

func (e *ProblemError) Error() string {
	msg := e.Problem.Detail
	if msg == "" {
		msg = e.Problem.Title
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, msg)
}

// FieldErrors returns the per-field validation messages, if any.
func (e *ProblemError) FieldErrors() map[string][]string {
	return e.Problem.Errors
}

// StatusCode extracts the HTTP status from an error returned by Client.
func StatusCode(err error) int {
	var pe *ProblemError
	if errors.As(err, &pe) {
		return pe.StatusCode
	}
	return 0
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
	culture string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCulture sends the culture as Accept-Language on every request.
func WithCulture(culture string) Option {
	return func(c *Client) { c.culture = culture }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client for the server at baseURL. Cookies set by the server
// are kept in an in-memory jar.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 15 * time.Second, Jar: jar},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		c.http.Jar = jar
	}
	return c, nil
}

func (c *Client) Token() string { return c.token }

func (c *Client) SetToken(token string) { c.token = token }

// Session returns the value of the session cookie, if one was issued.
func (c *Client) Session() string {
	return c.cookie(SessionCookieName)
}

// SetSession restores a previously saved session cookie.
func (c *Client) SetSession(value string) {
	c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{Name: SessionCookieName, Value: value, Path: "/"}})
}

func (c *Client) cookie(name string) string {
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, want ...int) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.culture != "" {
		req.Header.Set("Accept-Language", c.culture)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if !expected(resp.StatusCode, want) {
		return decodeProblem(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func expected(status int, want []int) bool {
	if len(want) == 0 {
		return status >= 200 && status < 300
	}
	for _, w := range want {
		if status == w {
			return true
		}
	}
	return false
}

func decodeProblem(resp *http.Response) error {
	pe := &ProblemError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if len(raw) > 0 && json.Unmarshal(raw, &pe.Problem) == nil && (pe.Problem.Title != "" || pe.Problem.Status != 0) {
		return pe
	}
	pe.Problem = dto.Problem{Title: http.StatusText(resp.StatusCode), Status: resp.StatusCode}
	return fmt.Errorf("%w: %w", ErrUnexpectedStatus, pe)
}
