// Package client implements a client of the post service. Client implements
// storage.Store, so it can stand in wherever a local store is used.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nicolagi/postd/post"
	"github.com/nicolagi/postd/storage"
)

type options struct {
	address    string
	timeout    time.Duration
	httpClient *http.Client
}

type Option func(*options)

// WithAddress sets the host:port of the post service.
func WithAddress(value string) Option {
	return func(o *options) {
		o.address = value
	}
}

func WithTimeout(value time.Duration) Option {
	return func(o *options) {
		o.timeout = value
	}
}

// WithHTTPClient makes the client issue requests through c. The timeout
// option is ignored in that case.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// StatusError is returned for responses the client has no specific error for.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Detail)
}

type Client struct {
	opts options
}

var _ storage.Store = (*Client)(nil)

func New(opts ...Option) *Client {
	var c Client
	c.opts.address = "127.0.0.1:8000"
	c.opts.timeout = 10 * time.Second
	for _, o := range opts {
		o(&c.opts)
	}
	if c.opts.httpClient == nil {
		c.opts.httpClient = &http.Client{Timeout: c.opts.timeout}
	}
	return &c
}

func (c *Client) Version() (string, error) {
	var res struct {
		Version string `json:"version"`
	}
	err := c.do(http.MethodGet, "/version", nil, &res)
	return res.Version, err
}

func (c *Client) Create(p post.Post) (id int64, err error) {
	var res struct {
		PostID int64 `json:"post_id"`
	}
	err = c.do(http.MethodPost, "/posts/", p, &res)
	return res.PostID, err
}

func (c *Client) Get(id int64) (p post.Post, err error) {
	err = c.do(http.MethodGet, pathFor(id), nil, &p)
	if err != nil {
		return post.Post{}, c.annotate(id, err)
	}
	return p, nil
}

func (c *Client) Update(id int64, p post.Post) error {
	return c.annotate(id, c.do(http.MethodPut, pathFor(id), p, nil))
}

func (c *Client) Delete(id int64) error {
	return c.annotate(id, c.do(http.MethodDelete, pathFor(id), nil, nil))
}

// Stats returns the service's successful call counts, by route path.
func (c *Client) Stats() (map[string]uint64, error) {
	var stats map[string]uint64
	err := c.do(http.MethodGet, "/stats", nil, &stats)
	return stats, err
}

func (c *Client) annotate(id int64, err error) error {
	if err == storage.ErrNotFound {
		return fmt.Errorf("post %d: %w", id, err)
	}
	return err
}

// do sends in (if not nil) as the JSON request body and decodes the JSON
// response body into out (if not nil). A 404 becomes storage.ErrNotFound and a
// 422 a *post.ValidationError.
func (c *Client) do(method, path string, in interface{}, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	request, err := http.NewRequest(method, "http://"+c.opts.address+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	response, err := c.opts.httpClient.Do(request)
	if response != nil && response.Body != nil {
		defer func() {
			_ = response.Body.Close()
		}()
	}
	if err != nil {
		return err
	}
	b, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}
	if response.StatusCode != http.StatusOK {
		var res struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(b, &res) != nil {
			res.Detail = string(b)
		}
		switch response.StatusCode {
		case http.StatusNotFound:
			return storage.ErrNotFound
		case http.StatusUnprocessableEntity:
			return validationError(res.Detail)
		default:
			return &StatusError{StatusCode: response.StatusCode, Detail: res.Detail}
		}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(b, out)
}

// validationError rebuilds the server's validation error from its detail,
// which reads "field: reason".
func validationError(detail string) *post.ValidationError {
	if i := strings.Index(detail, ": "); i > 0 {
		return &post.ValidationError{Field: detail[:i], Reason: detail[i+2:]}
	}
	return &post.ValidationError{Field: "request", Reason: detail}
}

func pathFor(id int64) string {
	return fmt.Sprintf("/posts/%d", id)
}
