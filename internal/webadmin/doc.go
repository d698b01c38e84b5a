// Package webadmin provides the browser console for ChatBot360 administrators.
//
// # Overview
//
// The console is server-rendered and sits between the browser and the
// ChatBot360 REST backend. It offers:
//
//   - Dashboard: totals, recent items, seven-day trends
//   - Documents: PDF upload, metadata edit, delete
//   - Conversations: date filters, inline edit, bulk delete, CSV export
//   - Users: create with password confirmation, delete
//   - Test Chatbot: a chat console with a debug panel
//
// # Sessions
//
// Every route except /login, /login/probe, /healthz and /static/ is wrapped by
// session.Manager.Require. Handlers read the operator from the request
// context with session.FromContext and never touch cookies directly.
//
// # Forms
//
// Mutations are HTML form POSTs followed by a redirect (post/redirect/get).
// The outcome travels to the next page in a one-shot flash cookie.
// All forms carry a CSRF token checked against a double-submit cookie:
//
//	<input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
//
// # Templates
//
// Pages are html/template files embedded with //go:embed. Each render parses
// templates/base.html together with one page template.
package webadmin
