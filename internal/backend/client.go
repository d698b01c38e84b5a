// ABOUTME: HTTP client for the ChatBot360 admin and chat REST APIs
// ABOUTME: Sends JSON or multipart requests and maps failures onto the error taxonomy

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to the admin API and the chat API.
type Client struct {
	apiBaseURL  string
	chatBaseURL string
	httpClient  *http.Client
	logger      *slog.Logger
}

// New creates a client for the given admin and chat API base URLs.
func New(apiBaseURL, chatBaseURL string, timeout time.Duration) *Client {
	return &Client{
		apiBaseURL:  strings.TrimSuffix(apiBaseURL, "/"),
		chatBaseURL: strings.TrimSuffix(chatBaseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		logger:      slog.Default().With("component", "backend"),
	}
}

// Login checks credentials against POST /login.
func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.doJSON(ctx, http.MethodPost, c.apiBaseURL+"/login", credentials{Username: username, Password: password}, nil)
}

// Health calls GET /health on the admin API.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, c.apiBaseURL+"/health", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListUsers returns every backend account.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.doJSON(ctx, http.MethodGet, c.apiBaseURL+"/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Register creates a backend account.
func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.doJSON(ctx, http.MethodPost, c.apiBaseURL+"/register", credentials{Username: username, Password: password}, nil)
}

// DeleteUser deletes a backend account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, c.apiBaseURL+"/users/"+url.PathEscape(id), nil, nil)
}

// ListDocuments returns all document metadata.
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	var docs []Document
	if err := c.doJSON(ctx, http.MethodGet, c.apiBaseURL+"/documents/", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// DocumentUpload is the payload of a document creation.
type DocumentUpload struct {
	Title       string
	Description string
	UploadedBy  string
	Filename    string
	File        io.Reader
}

// UploadDocument posts a multipart form with the file and its metadata.
func (c *Client) UploadDocument(ctx context.Context, up DocumentUpload) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", up.Filename)
	if err != nil {
		return fmt.Errorf("creating file part: %w", err)
	}
	if _, err := io.Copy(part, up.File); err != nil {
		return fmt.Errorf("copying file: %w", err)
	}

	fields := map[string]string{
		"title":       up.Title,
		"description": up.Description,
		"uploaded_by": up.UploadedBy,
	}
	for _, name := range []string{"title", "description", "uploaded_by"} {
		if err := mw.WriteField(name, fields[name]); err != nil {
			return fmt.Errorf("writing field %s: %w", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("closing multipart writer: %w", err)
	}

	return c.do(ctx, http.MethodPost, c.apiBaseURL+"/documents/", &body, mw.FormDataContentType(), nil)
}

// UpdateDocument replaces a document's title and description.
func (c *Client) UpdateDocument(ctx context.Context, id string, update DocumentUpdate) error {
	return c.doJSON(ctx, http.MethodPut, c.apiBaseURL+"/documents/"+url.PathEscape(id), update, nil)
}

// DeleteDocument deletes a document.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, c.apiBaseURL+"/documents/"+url.PathEscape(id), nil, nil)
}

// DocumentFileURL returns the retrieval URL of an uploaded file.
func (c *Client) DocumentFileURL(filename string) string {
	return c.apiBaseURL + "/documents/file/" + url.PathEscape(filename)
}

// ListConversations returns stored messages, newest first.
func (c *Client) ListConversations(ctx context.Context, filter ConversationFilter) ([]Conversation, error) {
	endpoint := c.apiBaseURL + "/conversations/"

	params := url.Values{}
	if filter.StartDate != "" {
		params.Set("start_date", filter.StartDate)
	}
	if filter.EndDate != "" {
		params.Set("end_date", filter.EndDate)
	}
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var convos []Conversation
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &convos); err != nil {
		return nil, err
	}

	sort.SliceStable(convos, func(i, j int) bool {
		return convos[i].Timestamp.After(convos[j].Timestamp.Time)
	})
	return convos, nil
}

// UpdateConversation edits a stored message.
func (c *Client) UpdateConversation(ctx context.Context, id string, update ConversationUpdate) error {
	return c.doJSON(ctx, http.MethodPut, c.apiBaseURL+"/conversations/"+url.PathEscape(id), update, nil)
}

// DeleteConversation deletes a stored message.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, c.apiBaseURL+"/conversations/"+url.PathEscape(id), nil, nil)
}

// Chat sends a question to the chat API and returns the answer.
func (c *Client) Chat(ctx context.Context, sessionID, question string) (string, error) {
	var resp chatResponse
	req := chatRequest{SessionID: sessionID, Question: question}
	if err := c.doJSON(ctx, http.MethodPost, c.chatBaseURL+"/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Answer, nil
}

// ExtractName asks the chat API to detect a first name in the input.
// An empty result means no name was found.
func (c *Client) ExtractName(ctx context.Context, sessionID, question string) (string, error) {
	var resp extractNameResponse
	req := chatRequest{SessionID: sessionID, Question: question}
	if err := c.doJSON(ctx, http.MethodPost, c.chatBaseURL+"/extract_name", req, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Name), nil
}

// SetUserName stores the detected name on the chat API side.
func (c *Client) SetUserName(ctx context.Context, sessionID, name string) error {
	req := setUserNameRequest{SessionID: sessionID, Name: name}
	return c.doJSON(ctx, http.MethodPost, c.chatBaseURL+"/set_user_name", req, nil)
}

// DebugSession returns the chat API's raw snapshot of a session.
func (c *Client) DebugSession(ctx context.Context, sessionID string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, c.chatBaseURL+"/debug/session/"+url.PathEscape(sessionID), nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// doJSON encodes in (when non-nil) as the JSON body and decodes the response into out.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, endpoint, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", "method", method, "url", endpoint, "error", err)
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := parseAPIError(resp.StatusCode, data)
		c.logger.Debug("backend returned error", "method", method, "url", endpoint, "status", resp.StatusCode, "detail", apiErr.Detail)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", endpoint, err)
	}
	return nil
}
