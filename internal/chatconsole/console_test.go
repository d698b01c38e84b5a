// ABOUTME: Tests for the chat console state machine
// ABOUTME: Drives turns against a fake chat API and a real SQLite store

package chatconsole

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmi-ci/chatbot360-admin/internal/backend"
	"github.com/bmi-ci/chatbot360-admin/internal/store"
)

// fakeChatAPI records calls and returns canned results.
type fakeChatAPI struct {
	mu sync.Mutex

	name       string
	extractErr error
	setNameErr error
	answer     string
	chatErr    error
	debug      json.RawMessage
	debugErr   error
	// cancelOnChat cancels the caller's context before Chat returns
	cancelOnChat context.CancelFunc

	extractCalls []string
	chatCalls    []string
	setNames     []string
	sessionIDs   []string
}

func (f *fakeChatAPI) ExtractName(ctx context.Context, sessionID, question string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extractCalls = append(f.extractCalls, question)
	f.sessionIDs = append(f.sessionIDs, sessionID)
	return f.name, f.extractErr
}

func (f *fakeChatAPI) SetUserName(ctx context.Context, sessionID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setNames = append(f.setNames, name)
	return f.setNameErr
}

func (f *fakeChatAPI) Chat(ctx context.Context, sessionID, question string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatCalls = append(f.chatCalls, question)
	f.sessionIDs = append(f.sessionIDs, sessionID)
	if f.cancelOnChat != nil {
		f.cancelOnChat()
		return "", ctx.Err()
	}
	return f.answer, f.chatErr
}

func (f *fakeChatAPI) DebugSession(ctx context.Context, sessionID string) (json.RawMessage, error) {
	return f.debug, f.debugErr
}

const operatorSession = "op-session"

func newTestConsole(t *testing.T, api *fakeChatAPI) (*Console, *store.SQLiteStore) {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	now := time.Now()
	require.NoError(t, s.CreateSession(context.Background(), &store.Session{
		ID:        operatorSession,
		Username:  "admin",
		LoggedIn:  true,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}))

	c := New(s, api)
	n := 0
	c.newID = func() string {
		n++
		return fmt.Sprintf("sess_test%d", n)
	}
	return c, s
}

func contents(state *store.ChatState) []string {
	out := make([]string, len(state.Transcript))
	for i, e := range state.Transcript {
		out[i] = e.Role + ":" + e.Content
	}
	return out
}

func TestState_FirstLoadGetsWelcome(t *testing.T) {
	c, _ := newTestConsole(t, &fakeChatAPI{})

	state, err := c.State(context.Background(), operatorSession)
	require.NoError(t, err)

	assert.Equal(t, "sess_test1", state.ChatSessionID)
	assert.Equal(t, []string{"bot:" + WelcomeMessage}, contents(state))

	// Second load reuses the stored state
	again, err := c.State(context.Background(), operatorSession)
	require.NoError(t, err)
	assert.Equal(t, "sess_test1", again.ChatSessionID)
	assert.Len(t, again.Transcript, 1)
}

func TestSend_BlankInputIgnored(t *testing.T) {
	api := &fakeChatAPI{}
	c, _ := newTestConsole(t, api)

	state, err := c.Send(context.Background(), operatorSession, "   ")
	require.NoError(t, err)

	assert.Len(t, state.Transcript, 1)
	assert.Empty(t, api.extractCalls)
	assert.Empty(t, api.chatCalls)
}

func TestSend_FirstTurnDetectsName(t *testing.T) {
	api := &fakeChatAPI{name: "Awa"}
	c, s := newTestConsole(t, api)
	ctx := context.Background()

	state, err := c.Send(ctx, operatorSession, "  Je m'appelle Awa ")
	require.NoError(t, err)

	assert.Equal(t, []string{"Je m'appelle Awa"}, api.extractCalls)
	assert.Equal(t, []string{"Awa"}, api.setNames)
	assert.Empty(t, api.chatCalls, "a detected name ends the turn")
	assert.Equal(t, "Awa", state.UserName)
	assert.Equal(t, []string{
		"bot:" + WelcomeMessage,
		"user:Je m'appelle Awa",
		"bot:Awa, comment puis-je vous aider aujourd'hui ?",
	}, contents(state))

	stored, err := s.GetChatState(ctx, operatorSession)
	require.NoError(t, err)
	assert.Equal(t, "Awa", stored.UserName)
	assert.Len(t, stored.Transcript, 3)
}

func TestSend_LaterTurnsGoToChat(t *testing.T) {
	api := &fakeChatAPI{name: "Awa", answer: "Voici nos offres **santé**."}
	c, _ := newTestConsole(t, api)
	ctx := context.Background()

	_, err := c.Send(ctx, operatorSession, "Awa")
	require.NoError(t, err)

	state, err := c.Send(ctx, operatorSession, "Quelles offres ?")
	require.NoError(t, err)

	assert.Len(t, api.extractCalls, 1, "name extraction only runs while the name is unknown")
	assert.Equal(t, []string{"Quelles offres ?"}, api.chatCalls)

	last := state.Transcript[len(state.Transcript)-1]
	assert.Equal(t, store.RoleBot, last.Role)
	assert.Equal(t, "Voici nos offres **santé**.", last.Content)
	assert.False(t, last.Pending)

	for _, id := range api.sessionIDs {
		assert.Equal(t, state.ChatSessionID, id)
	}
}

func TestSend_NoNameFallsThroughToChat(t *testing.T) {
	api := &fakeChatAPI{name: "", answer: "Bonjour !"}
	c, _ := newTestConsole(t, api)

	state, err := c.Send(context.Background(), operatorSession, "Bonjour")
	require.NoError(t, err)

	assert.Len(t, api.extractCalls, 1)
	assert.Equal(t, []string{"Bonjour"}, api.chatCalls)
	assert.Empty(t, state.UserName)
	assert.Equal(t, []string{
		"bot:" + WelcomeMessage,
		"user:Bonjour",
		"bot:Bonjour !",
	}, contents(state))
}

func TestSend_ExtractionErrorContinues(t *testing.T) {
	api := &fakeChatAPI{extractErr: errors.New("boom"), answer: "Réponse"}
	c, _ := newTestConsole(t, api)

	state, err := c.Send(context.Background(), operatorSession, "Bonjour")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"bot:" + WelcomeMessage,
		"user:Bonjour",
		"bot:" + NameErrorMessage,
		"bot:Réponse",
	}, contents(state))
}

func TestSend_ChatErrorReplacesPlaceholder(t *testing.T) {
	api := &fakeChatAPI{chatErr: &backend.APIError{StatusCode: 500}}
	c, s := newTestConsole(t, api)
	ctx := context.Background()

	state, err := c.Send(ctx, operatorSession, "Bonjour")
	require.NoError(t, err)

	last := state.Transcript[len(state.Transcript)-1]
	assert.True(t, strings.HasPrefix(last.Content, "❌ Erreur API: "), last.Content)
	assert.Contains(t, last.Content, "500")
	assert.False(t, last.Pending)

	stored, err := s.GetChatState(ctx, operatorSession)
	require.NoError(t, err)
	for _, e := range stored.Transcript {
		assert.NotEqual(t, PendingPlaceholder, e.Content)
	}
}

func TestSend_CanceledTurnReplacesPlaceholder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	api := &fakeChatAPI{cancelOnChat: cancel}
	c, s := newTestConsole(t, api)

	state, err := c.Send(ctx, operatorSession, "Bonjour")
	require.NoError(t, err)

	last := state.Transcript[len(state.Transcript)-1]
	assert.Equal(t, apiErrorPrefix+context.Canceled.Error(), last.Content)

	stored, err := s.GetChatState(context.Background(), operatorSession)
	require.NoError(t, err)
	for _, e := range stored.Transcript {
		if e.Pending || e.Content == PendingPlaceholder {
			t.Errorf("stored transcript still holds the placeholder: %+v", stored.Transcript)
		}
	}
}

func TestReset(t *testing.T) {
	api := &fakeChatAPI{name: "Awa"}
	c, _ := newTestConsole(t, api)
	ctx := context.Background()

	before, err := c.Send(ctx, operatorSession, "Awa")
	require.NoError(t, err)
	require.Equal(t, "Awa", before.UserName)

	state, err := c.Reset(ctx, operatorSession)
	require.NoError(t, err)

	assert.NotEqual(t, before.ChatSessionID, state.ChatSessionID)
	assert.Empty(t, state.UserName)
	assert.Equal(t, []string{"bot:" + WelcomeMessage}, contents(state))

	// After reset the name flow starts over
	_, err = c.Send(ctx, operatorSession, "Koffi")
	require.NoError(t, err)
	assert.Len(t, api.extractCalls, 2)
}

func TestDebug_BackendSnapshot(t *testing.T) {
	api := &fakeChatAPI{debug: json.RawMessage(`{"user_name":"Awa","history":[]}`)}
	c, _ := newTestConsole(t, api)

	out, err := c.Debug(context.Background(), operatorSession)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "=== Front-end ===\n{\n"))
	assert.Contains(t, out, `"sessionId": "sess_test1"`)
	assert.Contains(t, out, `"chatHistory": [`)
	assert.Contains(t, out, "\n\n=== Back-end ===\n{\n  \"history\": [],\n  \"user_name\": \"Awa\"\n}")
}

func TestDebug_BackendErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "status", err: &backend.APIError{StatusCode: 404}, want: "\n\n[Back] Erreur 404"},
		{name: "network", err: fmt.Errorf("%w: dial tcp: refused", backend.ErrUnreachable), want: "\n\n[Back] Erreur réseau: backend unreachable: dial tcp: refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestConsole(t, &fakeChatAPI{debugErr: tt.err})

			out, err := c.Debug(context.Background(), operatorSession)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(out, tt.want), out)
		})
	}
}

func TestNewChatSessionID(t *testing.T) {
	a, b := NewChatSessionID(), NewChatSessionID()
	assert.True(t, strings.HasPrefix(a, "sess_"))
	assert.NotEqual(t, a, b)
}
