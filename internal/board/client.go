// Package board exports the backlog to a Trello-style board service over its
// REST API.
package board

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failed response body is kept on StatusError.
const maxErrorBody = 512

// DefaultTimeout bounds each request when no http.Client is supplied.
const DefaultTimeout = 30 * time.Second

// Client talks to the board service. Authentication travels as key/token query
// parameters on every request.
type Client struct {
	baseURL string
	key     string
	token   string
	http    *http.Client
}

// Board is the subset of the created board the exporter needs.
type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// List is a created board column.
type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Card is a created card.
type Card struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ShortURL string `json:"shortUrl"`
}

// Checklist is a created card checklist.
type Checklist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BoardPrefs are the presentation settings applied when a board is created.
type BoardPrefs struct {
	Background      string
	PermissionLevel string
}

// StatusError reports a non-2xx response. Path never includes credentials.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("board service %s %s returned %d", e.Method, e.Path, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// NewClient creates a client for baseURL. httpClient may be nil.
func NewClient(baseURL, key, token string, httpClient *http.Client) (*Client, error) {
	if key == "" || token == "" {
		return nil, fmt.Errorf("board credentials missing: both API key and token are required")
	}
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return nil, fmt.Errorf("invalid board base URL %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		token:   token,
		http:    httpClient,
	}, nil
}

// CreateBoard creates an empty board (no default lists).
func (c *Client) CreateBoard(ctx context.Context, name, desc string, prefs BoardPrefs) (*Board, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("desc", desc)
	params.Set("defaultLists", "false")
	if prefs.Background != "" {
		params.Set("prefs_background", prefs.Background)
	}
	if prefs.PermissionLevel != "" {
		params.Set("prefs_permissionLevel", prefs.PermissionLevel)
	}

	var board Board
	if err := c.post(ctx, "/boards/", params, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

// CreateList adds a list to boardID. pos is "top", "bottom" or a number.
func (c *Client) CreateList(ctx context.Context, boardID, name, pos string) (*List, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("idBoard", boardID)
	params.Set("pos", pos)

	var list List
	if err := c.post(ctx, "/lists", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateCard adds a card to listID.
func (c *Client) CreateCard(ctx context.Context, listID, name, desc, pos string) (*Card, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("desc", desc)
	params.Set("idList", listID)
	params.Set("pos", pos)

	var card Card
	if err := c.post(ctx, "/cards", params, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// CreateChecklist attaches an empty checklist to cardID.
func (c *Client) CreateChecklist(ctx context.Context, cardID, name string) (*Checklist, error) {
	params := url.Values{}
	params.Set("idCard", cardID)
	params.Set("name", name)

	var checklist Checklist
	if err := c.post(ctx, "/checklists", params, &checklist); err != nil {
		return nil, err
	}
	return &checklist, nil
}

// AddChecklistItem appends an unchecked item to checklistID.
func (c *Client) AddChecklistItem(ctx context.Context, checklistID, name string) error {
	params := url.Values{}
	params.Set("name", name)
	return c.post(ctx, "/checklists/"+url.PathEscape(checklistID)+"/checkItems", params, nil)
}

// post sends params as the query string and decodes the JSON reply into out
// when out is non-nil.
func (c *Client) post(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.key)
	params.Set("token", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("board service request %s failed: %w", path, redact(err, c.key, c.token))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: http.MethodPost,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode board service response for %s: %w", path, err)
	}
	return nil
}

// redact strips credentials from transport errors, which quote the full URL.
func redact(err error, secrets ...string) error {
	msg := err.Error()
	for _, s := range secrets {
		if s != "" {
			msg = strings.ReplaceAll(msg, s, "REDACTED")
		}
	}
	return fmt.Errorf("%s", msg)
}
