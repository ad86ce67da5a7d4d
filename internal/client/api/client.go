package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Session struct {
	LoggedIn bool  `json:"loggedIn"`
	User     *User `json:"user,omitempty"`
}

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Segment struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Translation string `json:"translation"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the server at baseURL. Every request is bounded
// by timeout.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, body, out)
}

// Register creates an account and starts a session for it.
func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		Username string `json:"username"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/register", credentials{username, password}, &resp); err != nil {
		return "", err
	}
	return resp.Username, nil
}

// Login starts a session for an existing account.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		Username string `json:"username"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", credentials{username, password}, &resp); err != nil {
		return "", err
	}
	return resp.Username, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/logout", nil, nil)
}

func (c *Client) Session(ctx context.Context) (*Session, error) {
	var s Session
	if err := c.doJSON(ctx, http.MethodGet, "/api/session", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.doJSON(ctx, http.MethodGet, "/api/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) Segments(ctx context.Context, projectID string) ([]Segment, error) {
	var segments []Segment
	if err := c.doJSON(ctx, http.MethodGet, "/api/segments/"+url.PathEscape(projectID), nil, &segments); err != nil {
		return nil, err
	}
	return segments, nil
}

func (c *Client) Save(ctx context.Context, segmentID, translation string) error {
	in := struct {
		ID             string `json:"id"`
		NewTranslation string `json:"newTranslation"`
	}{segmentID, translation}
	return c.doJSON(ctx, http.MethodPost, "/api/save", in, nil)
}

// Upload sends a source document as a new project and returns its id.
func (c *Client) Upload(ctx context.Context, projectName, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("projectName", projectName); err != nil {
		return "", err
	}
	fw, err := mw.CreateFormFile("projectFile", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var resp struct {
		NewProjectID string `json:"newProjectId"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/upload", mw.FormDataContentType(), &buf, &resp); err != nil {
		return "", err
	}
	return resp.NewProjectID, nil
}

func (c *Client) Delete(ctx context.Context, projectID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(projectID), nil, nil)
}

// SourceURL returns a short-lived download link for the project's original file.
func (c *Client) SourceURL(ctx context.Context, projectID string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(projectID)+"/source", nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
