// ABOUTME: Chat console state store methods
// ABOUTME: One row per operator session holding chat session id, user name and transcript

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// GetChatState retrieves the chat console state for an operator session.
func (s *SQLiteStore) GetChatState(ctx context.Context, sessionID string) (*ChatState, error) {
	query := `
		SELECT session_id, chat_session_id, user_name, transcript_json, updated_at
		FROM chat_console
		WHERE session_id = ?
	`

	var state ChatState
	var transcriptJSON, updatedAtStr string

	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&state.SessionID,
		&state.ChatSessionID,
		&state.UserName,
		&transcriptJSON,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying chat state: %w", err)
	}

	if err := json.Unmarshal([]byte(transcriptJSON), &state.Transcript); err != nil {
		return nil, fmt.Errorf("decoding transcript: %w", err)
	}

	state.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &state, nil
}

// SaveChatState inserts or replaces the chat console state for an operator session.
func (s *SQLiteStore) SaveChatState(ctx context.Context, state *ChatState) error {
	transcript := state.Transcript
	if transcript == nil {
		transcript = []ChatEntry{}
	}
	transcriptJSON, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("encoding transcript: %w", err)
	}

	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now()
	}

	query := `
		INSERT INTO chat_console (session_id, chat_session_id, user_name, transcript_json, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			chat_session_id = excluded.chat_session_id,
			user_name = excluded.user_name,
			transcript_json = excluded.transcript_json,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		state.SessionID,
		state.ChatSessionID,
		state.UserName,
		string(transcriptJSON),
		state.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving chat state: %w", err)
	}
	return nil
}

// DeleteChatState removes the chat console state for an operator session.
func (s *SQLiteStore) DeleteChatState(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM chat_console WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("deleting chat state: %w", err)
	}
	return nil
}
