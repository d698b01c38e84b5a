// Package chatconsole implements the admin chat test console.
//
// Each operator session owns one console state: the chat session id sent to
// the chat API, the detected end-user name and the transcript. A turn first
// goes through name extraction while no name is known; a detected name ends
// the turn with a greeting. Otherwise the question goes to the chat endpoint
// behind a pending placeholder that is replaced by the answer or the error.
package chatconsole
