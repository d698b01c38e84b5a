// ABOUTME: Wire types exchanged with the admin and chat APIs
// ABOUTME: IDs and timestamps accept the loose shapes the backend emits

package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID is a backend identifier that may arrive as a JSON number or string.
type ID string

// UnmarshalJSON accepts numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// timeLayouts are tried in order when decoding backend timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time is a timestamp that tolerates missing zones and fractional seconds.
// Timestamps without a zone are read as UTC.
type Time struct {
	time.Time
}

// ParseTime parses a backend timestamp string.
func ParseTime(s string) (Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Time{t}, nil
		}
	}
	return Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// UnmarshalJSON decodes a string timestamp. Null and empty strings give the zero time.
func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding timestamp: %w", err)
	}
	if s == "" {
		*t = Time{}
		return nil
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON encodes the timestamp as RFC3339.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// Conversation is one stored chat message.
type Conversation struct {
	ID        ID     `json:"id"`
	SessionID string `json:"session_id"`
	Timestamp Time   `json:"timestamp"`
	Message   string `json:"message"`
	Role      string `json:"role"`
	UserName  string `json:"user_name"`
}

// Conversation roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ConversationUpdate is the editable subset of a conversation.
type ConversationUpdate struct {
	Message  string `json:"message"`
	Role     string `json:"role"`
	UserName string `json:"user_name"`
}

// ConversationFilter restricts a conversation listing to a date range.
// Dates are passed through as YYYY-MM-DD strings; empty means unbounded.
type ConversationFilter struct {
	StartDate string
	EndDate   string
}

// Document is the metadata of an uploaded file.
type Document struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Filename    string `json:"filename"`
	UploadedBy  string `json:"uploaded_by"`
	UploadedAt  Time   `json:"uploaded_at"`
}

// DocumentUpdate is the editable subset of a document.
type DocumentUpdate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// User is a backend account. Passwords are never returned.
type User struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status string `json:"status"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

type extractNameResponse struct {
	Name string `json:"name"`
}

type setUserNameRequest struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
}
