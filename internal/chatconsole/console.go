// ABOUTME: Chat console state machine for testing the chatbot from the admin UI
// ABOUTME: Routes turns through name extraction until a name is known, then to chat

package chatconsole

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bmi-ci/chatbot360-admin/internal/backend"
	"github.com/bmi-ci/chatbot360-admin/internal/store"
)

// Bot messages
const (
	WelcomeMessage     = "Je suis Akissi, votre assistante chez BMI Côte d'Ivoire. Pour commencer, puis-je avoir votre prénom ?"
	PendingPlaceholder = "💭..."
	NameErrorMessage   = "Erreur lors de la détection du prénom."
	greetingFormat     = "%s, comment puis-je vous aider aujourd'hui ?"
	apiErrorPrefix     = "❌ Erreur API: "
)

// ChatAPI is the part of the chat backend the console drives.
type ChatAPI interface {
	Chat(ctx context.Context, sessionID, question string) (string, error)
	ExtractName(ctx context.Context, sessionID, question string) (string, error)
	SetUserName(ctx context.Context, sessionID, name string) error
	DebugSession(ctx context.Context, sessionID string) (json.RawMessage, error)
}

// Console owns the chat console state of every operator session.
type Console struct {
	store  store.ChatStore
	api    ChatAPI
	logger *slog.Logger
	newID  func() string
}

// New creates a console over the given state store and chat API.
func New(chats store.ChatStore, api ChatAPI) *Console {
	return &Console{
		store:  chats,
		api:    api,
		logger: slog.Default().With("component", "chatconsole"),
		newID:  NewChatSessionID,
	}
}

// NewChatSessionID returns a fresh id for the chat API.
func NewChatSessionID() string {
	return "sess_" + uuid.NewString()
}

// Greeting is the bot reply once a name has been detected.
func Greeting(name string) string {
	return fmt.Sprintf(greetingFormat, name)
}

// State returns the console state for an operator session, creating it on first use.
// An empty transcript is seeded with the welcome message.
func (c *Console) State(ctx context.Context, sessionID string) (*store.ChatState, error) {
	state, err := c.store.GetChatState(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		state = &store.ChatState{
			SessionID:     sessionID,
			ChatSessionID: c.newID(),
		}
	} else if err != nil {
		return nil, fmt.Errorf("loading chat state: %w", err)
	}

	if len(state.Transcript) == 0 {
		state.Transcript = append(state.Transcript, store.ChatEntry{Role: store.RoleBot, Content: WelcomeMessage})
		if err := c.save(ctx, state); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// Send runs one turn. Blank input leaves the state untouched.
func (c *Console) Send(ctx context.Context, sessionID, input string) (*store.ChatState, error) {
	state, err := c.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	question := strings.TrimSpace(input)
	if question == "" {
		return state, nil
	}

	state.Transcript = append(state.Transcript, store.ChatEntry{Role: store.RoleUser, Content: question})

	if state.UserName == "" {
		done, err := c.detectName(ctx, state, question)
		if err != nil {
			return nil, err
		}
		if done {
			return state, nil
		}
	}

	// The placeholder is stored so a concurrent view shows the turn in flight
	state.Transcript = append(state.Transcript, store.ChatEntry{Role: store.RoleBot, Content: PendingPlaceholder, Pending: true})
	if err := c.save(ctx, state); err != nil {
		return nil, err
	}

	answer, err := c.api.Chat(ctx, state.ChatSessionID, question)
	last := len(state.Transcript) - 1
	if err != nil {
		c.logger.Warn("chat request failed", "chat_session_id", state.ChatSessionID, "error", err)
		state.Transcript[last] = store.ChatEntry{Role: store.RoleBot, Content: apiErrorPrefix + err.Error()}
	} else {
		state.Transcript[last] = store.ChatEntry{Role: store.RoleBot, Content: answer}
	}

	// The placeholder must be replaced even when the request was canceled mid-turn
	if err := c.save(context.WithoutCancel(ctx), state); err != nil {
		return nil, err
	}
	return state, nil
}

// detectName tries to learn the user's name from the input.
// It reports true when the turn is complete (a greeting was sent).
func (c *Console) detectName(ctx context.Context, state *store.ChatState, question string) (bool, error) {
	name, err := c.api.ExtractName(ctx, state.ChatSessionID, question)
	if err != nil {
		c.logger.Warn("name extraction failed", "chat_session_id", state.ChatSessionID, "error", err)
		state.Transcript = append(state.Transcript, store.ChatEntry{Role: store.RoleBot, Content: NameErrorMessage})
		return false, nil
	}
	if name == "" {
		return false, nil
	}

	state.UserName = name
	if err := c.save(ctx, state); err != nil {
		return false, err
	}

	if err := c.api.SetUserName(ctx, state.ChatSessionID, name); err != nil {
		c.logger.Warn("storing user name failed", "chat_session_id", state.ChatSessionID, "error", err)
		state.Transcript = append(state.Transcript, store.ChatEntry{Role: store.RoleBot, Content: NameErrorMessage})
		return false, nil
	}

	state.Transcript = append(state.Transcript, store.ChatEntry{Role: store.RoleBot, Content: Greeting(name)})
	if err := c.save(ctx, state); err != nil {
		return false, err
	}
	return true, nil
}

// Reset clears the transcript and name and starts a new chat session id.
func (c *Console) Reset(ctx context.Context, sessionID string) (*store.ChatState, error) {
	state := &store.ChatState{
		SessionID:     sessionID,
		ChatSessionID: c.newID(),
		Transcript:    []store.ChatEntry{{Role: store.RoleBot, Content: WelcomeMessage}},
	}
	if err := c.save(ctx, state); err != nil {
		return nil, err
	}
	c.logger.Debug("chat console reset", "chat_session_id", state.ChatSessionID)
	return state, nil
}

// frontState is the console's own view of the session in the debug panel.
type frontState struct {
	SessionID   string            `json:"sessionId"`
	UserName    string            `json:"userName"`
	ChatHistory []store.ChatEntry `json:"chatHistory"`
}

// Debug renders the local state next to the chat API's snapshot of the same session.
func (c *Console) Debug(ctx context.Context, sessionID string) (string, error) {
	state, err := c.State(ctx, sessionID)
	if err != nil {
		return "", err
	}

	front, err := json.MarshalIndent(frontState{
		SessionID:   state.ChatSessionID,
		UserName:    state.UserName,
		ChatHistory: state.Transcript,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding front state: %w", err)
	}

	var b strings.Builder
	b.WriteString("=== Front-end ===\n")
	b.Write(front)

	raw, err := c.api.DebugSession(ctx, state.ChatSessionID)
	switch {
	case err == nil:
		b.WriteString("\n\n=== Back-end ===\n")
		b.WriteString(indentJSON(raw))
	case backend.StatusCode(err) != 0:
		fmt.Fprintf(&b, "\n\n[Back] Erreur %d", backend.StatusCode(err))
	default:
		fmt.Fprintf(&b, "\n\n[Back] Erreur réseau: %v", err)
	}

	return b.String(), nil
}

func indentJSON(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(out)
}

func (c *Console) save(ctx context.Context, state *store.ChatState) error {
	state.UpdatedAt = time.Now()
	if err := c.store.SaveChatState(ctx, state); err != nil {
		return fmt.Errorf("saving chat state: %w", err)
	}
	return nil
}
