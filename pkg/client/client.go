// Package client is the query facade the browsing views program against.
//
// The error policy is deliberately asymmetric: List degrades any failure
// to an empty page so listing views render "no data" instead of crashing,
// while single-record reads, mutations and graph lookups propagate an
// *APIError so detail and edit flows can show what went wrong.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"yaopedia/pkg/models"
)

// Graph mirrors the wire shape of the book-subgraph endpoint. The facade
// keeps its own copy of these types so external consumers are not coupled
// to server internals.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

type GraphNode struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

type GraphLink struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type Book struct {
	Name string `json:"name"`
	Era  string `json:"era,omitempty"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     *zap.Logger
}

func New(baseURL string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Log:     log,
	}
}

// APIError carries the server's stable error code alongside its message.
type APIError struct {
	Status  int
	Code    string
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d (%s): %s: %s", e.Status, e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

type ListOptions struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

type MonsterPage struct {
	Monsters    []models.Monster `json:"monsters"`
	Total       int              `json:"total"`
	CurrentPage int              `json:"currentPage"`
	TotalPages  int              `json:"totalPages"`
}

// ListMonsters never fails: any transport or server error is logged and
// collapsed into an empty page.
func (c *Client) ListMonsters(ctx context.Context, opts ListOptions) MonsterPage {
	q := url.Values{}
	if opts.Category != "" {
		q.Set("type", opts.Category)
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	var page MonsterPage
	if err := c.do(ctx, http.MethodGet, "/api/monsters", q, nil, &page); err != nil {
		c.Log.Warn("monster list degraded to empty result", zap.Error(err))
		return MonsterPage{Monsters: []models.Monster{}}
	}
	if page.Monsters == nil {
		page.Monsters = []models.Monster{}
	}
	return page
}

func (c *Client) GetMonster(ctx context.Context, id string) (*models.Monster, error) {
	var m models.Monster
	if err := c.do(ctx, http.MethodGet, "/api/monsters/"+url.PathEscape(id), nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) CreateMonster(ctx context.Context, m models.Monster) (*models.Monster, error) {
	var created models.Monster
	if err := c.do(ctx, http.MethodPost, "/api/monsters", nil, m, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateMonster(ctx context.Context, id string, patch models.MonsterPatch) (*models.Monster, error) {
	var updated models.Monster
	if err := c.do(ctx, http.MethodPut, "/api/monsters/"+url.PathEscape(id), nil, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteMonster(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/monsters/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) BookGraph(ctx context.Context, book string) (*Graph, error) {
	var g Graph
	if err := c.do(ctx, http.MethodGet, "/api/graph/books/"+url.PathEscape(book), nil, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) Books(ctx context.Context) ([]Book, error) {
	var out struct {
		Books []Book `json:"books"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/graph/books", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Books, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Code    string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Message
		apiErr.Detail = body.Error
		apiErr.Code = body.Code
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
