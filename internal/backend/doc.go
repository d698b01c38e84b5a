// Package backend is the typed HTTP client for the ChatBot360 REST APIs.
//
// Two base URLs are involved: the admin API (login, health, users,
// documents, conversations) and the chat API (chat, extract_name,
// set_user_name, debug/session).
//
// # Errors
//
// Every call fails with one of:
//
//   - *APIError: non-2xx response, Detail holds the backend "detail" string when present
//   - ErrUnreachable (wrapped): the request never got a response
//   - a decoding error for malformed 2xx bodies
//
// UserMessage turns any of these into operator text. There is no retry.
package backend
