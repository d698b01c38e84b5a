// Package session is the operator session boundary for chatbot360-admin.
//
// A session is started only after the backend accepted the operator's
// credentials. The browser holds an HS256-signed cookie whose subject is the
// session id; the logged-in flag and username live in the SQLite row.
//
// Handlers never read the cookie or the store themselves. Require admits a
// request only when the session loads and both the flag and the username are
// set, then exposes the session through FromContext. Anything else clears the
// partial state and redirects to /login.
package session
