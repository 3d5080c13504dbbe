package autosave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	authusecase "session-studio/internal/auth/usecase"
	"session-studio/internal/sessions/domain/model"
	"session-studio/internal/sessions/usecase"
)

// Client is the editor-side API client. It carries the base URL and the
// bearer token obtained at login, and talks to the server's JSON endpoints.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates an API client for the given server
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken sets the bearer token presented on subsequent requests
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token
func (c *Client) Token() string {
	return c.token
}

type apiResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Token    string           `json:"token"`
	Session  *model.Session   `json:"session"`
	Sessions []*model.Session `json:"sessions"`
}

// Register creates an account and stores the issued token on the client
func (c *Client) Register(ctx context.Context, email, password string) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/auth/register",
		authusecase.RegisterRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// Login authenticates and stores the issued token on the client
func (c *Client) Login(ctx context.Context, email, password string) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/auth/login",
		authusecase.LoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// SaveDraft upserts a draft and returns the saved document
func (c *Client) SaveDraft(ctx context.Context, input usecase.SaveDraftInput) (*model.Session, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/my-sessions/save-draft", input)
	if err != nil {
		return nil, err
	}
	return resp.Session, nil
}

// Publish publishes a session and returns the published document
func (c *Client) Publish(ctx context.Context, input usecase.PublishInput) (*model.Session, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/my-sessions/publish", input)
	if err != nil {
		return nil, err
	}
	return resp.Session, nil
}

// GetSession fetches one of the caller's sessions by id
func (c *Client) GetSession(ctx context.Context, id string) (*model.Session, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/my-sessions/"+id, nil)
	if err != nil {
		return nil, err
	}
	return resp.Session, nil
}

// ListMine fetches all of the caller's sessions
func (c *Client) ListMine(ctx context.Context) ([]*model.Session, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/my-sessions/", nil)
	if err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*apiResponse, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp apiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		// Non-JSON bodies come from the framework itself (404/405 plain
		// text); report the status rather than the decode failure.
		if httpResp.StatusCode >= 400 {
			return nil, fmt.Errorf("server rejected request with status %d", httpResp.StatusCode)
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if httpResp.StatusCode >= 400 || !resp.Success {
		if resp.Message != "" {
			return nil, fmt.Errorf("server rejected request (%d): %s", httpResp.StatusCode, resp.Message)
		}
		return nil, fmt.Errorf("server rejected request with status %d", httpResp.StatusCode)
	}

	return &resp, nil
}
