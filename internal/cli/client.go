package cli

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

	"labelsim/internal/game"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// APIError is a non-2xx reply from the server. Anything else returned by the
// client is a transport failure.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func gamePath(gameID string) string {
	return "/v1/games/" + url.PathEscape(gameID)
}

func (c *Client) NewGame(ctx context.Context, in game.NewGameInput) (game.GameState, error) {
	var out game.GameState
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games", in, &out)
	return out, err
}

func (c *Client) Snapshot(ctx context.Context, gameID string) (game.Snapshot, error) {
	var out game.Snapshot
	err := c.jsonRequest(ctx, http.MethodGet, gamePath(gameID), nil, &out)
	return out, err
}

func (c *Client) SignArtist(ctx context.Context, gameID string, in game.SignArtistInput) (game.Artist, error) {
	var out game.Artist
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(gameID)+"/artists", in, &out)
	return out, err
}

func (c *Client) HireExecutive(ctx context.Context, gameID, role string) (game.Executive, error) {
	var out game.Executive
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(gameID)+"/executives", map[string]string{"role": role}, &out)
	return out, err
}

func (c *Client) StartProject(ctx context.Context, gameID string, in game.StartProjectInput) (game.Project, error) {
	var out game.Project
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(gameID)+"/projects", in, &out)
	return out, err
}

func (c *Client) PlanRelease(ctx context.Context, gameID string, in game.PlanReleaseInput) (game.Release, error) {
	var out game.Release
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(gameID)+"/releases", in, &out)
	return out, err
}

func (c *Client) Advance(ctx context.Context, gameID string, actions []game.ActionEnvelope) (game.AdvanceResult, error) {
	if actions == nil {
		actions = []game.ActionEnvelope{}
	}
	var out game.AdvanceResult
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(gameID)+"/advance", map[string]any{"actions": actions}, &out)
	return out, err
}

// Preview calls one of the server's formula previews and decodes the reply
// into out.
func (c *Client) Preview(ctx context.Context, kind string, seed int64, input any, out any) error {
	return c.jsonRequest(ctx, http.MethodPost, "/v1/preview/"+url.PathEscape(kind), map[string]any{
		"seed":  seed,
		"input": input,
	}, out)
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var payload struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
