// Package store provides persistent storage for chatbot360-admin using SQLite.
//
// # Overview
//
// The console keeps only operator-side state locally. Conversations,
// documents and user accounts live in the backend and are never cached here.
//
//   - SessionStore: operator logins, keyed by a random id and expiring
//   - ChatStore: chat console state (chat session id, detected user name,
//     transcript) owned by one operator session
//
// SQLiteStore implements both in a single struct.
//
// # Timestamps
//
// All timestamps are stored as RFC3339 text in UTC. GetSession filters out
// expired rows, and DeleteExpiredSessions removes them together with their
// chat state.
//
// # Usage
//
//	s, err := store.NewSQLiteStore(cfg.Database.Path)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
package store
