// ABOUTME: Store interface and data types for chatbot360-admin persistence
// ABOUTME: Defines operator sessions, chat console state and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrSessionNotFound is returned when a session doesn't exist or is expired.
var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side record of an operator login.
type Session struct {
	ID        string
	Username  string
	LoggedIn  bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Transcript roles for chat console entries
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// ChatEntry is one line of the chat console transcript.
type ChatEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Pending bool   `json:"pending,omitempty"`
}

// ChatState is the chat console state owned by one operator session.
type ChatState struct {
	SessionID     string // operator session that owns this state
	ChatSessionID string // id sent to the chat API
	UserName      string // detected end-user first name, empty until known
	Transcript    []ChatEntry
	UpdatedAt     time.Time
}

// SessionStore persists operator sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	// GetSession returns ErrSessionNotFound for missing or expired sessions.
	GetSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// ChatStore persists chat console state.
type ChatStore interface {
	// GetChatState returns ErrNotFound when the session has no chat state yet.
	GetChatState(ctx context.Context, sessionID string) (*ChatState, error)
	SaveChatState(ctx context.Context, state *ChatState) error
	DeleteChatState(ctx context.Context, sessionID string) error
}

// Store combines every persistence interface.
type Store interface {
	SessionStore
	ChatStore
	Close() error
}
