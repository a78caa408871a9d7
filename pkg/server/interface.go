/*
Package server implements msgpack IPC for prediction sessions.

The server reads msgpack requests from stdin and writes one msgpack response
per request to stdout. Requests are processed one at a time, so a session is
never touched by two requests at once.

# IPC

Every request carries an ID, echoed in the response, and an action. An input
context first attaches a session, then forwards its key events:

	{"id": "1", "action": "attach", "session": "term-1"}
	{"id": "2", "action": "key", "session": "term-1", "keyval": 99}
	{"id": "3", "action": "key", "session": "term-1", "keyval": 119, "mods": 4}

Key responses tell the client whether the key was consumed and list the host
calls the session made, in order:

	{"id": "3", "handled": true, "ops": [{"kind": "update_list", "items": ["car", "cat"]}, {"kind": "show_list"}], "page": 0, "cursor": 0, "mode": "word"}

Clients replay the ops on their own surface. A key that was not consumed
should be handled by the client as if no session existed.

Lookups can also be made without a session:

	{"id": "4", "action": "words", "p": "ca"}
	{"id": "5", "action": "symbols", "p": "smi"}

# Actions

attach, detach, key and reset work on sessions. words, symbols, info and
health do not need one. Failures answer with an ErrorResponse: code 400 for a
bad request and 404 for an unknown session.
*/
package server

import (
	"github.com/bastiangx/predict/pkg/dictionary"
	"github.com/bastiangx/predict/pkg/host"
)

// Request is any client message.
type Request struct {
	ID      string `msgpack:"id"`
	Action  string `msgpack:"action"`
	Session string `msgpack:"session,omitempty"`
	Keyval  uint32 `msgpack:"keyval,omitempty"`
	Keycode uint32 `msgpack:"keycode,omitempty"`
	Mods    uint32 `msgpack:"mods,omitempty"`
	Prefix  string `msgpack:"p,omitempty"`
}

// StatusResponse acknowledges session lifecycle and health requests.
type StatusResponse struct {
	ID      string `msgpack:"id"`
	Status  string `msgpack:"status"`
	Session string `msgpack:"session,omitempty"`
}

// KeyResponse is the outcome of a key or reset request.
type KeyResponse struct {
	ID      string    `msgpack:"id"`
	Handled bool      `msgpack:"handled"`
	Ops     []host.Op `msgpack:"ops"`
	Page    int       `msgpack:"page"`
	Cursor  int       `msgpack:"cursor"`
	Mode    string    `msgpack:"mode"`
}

// WordsResponse holds word candidates. TimeTaken is in microseconds.
type WordsResponse struct {
	ID        string   `msgpack:"id"`
	Words     []string `msgpack:"w"`
	Count     int      `msgpack:"c"`
	TimeTaken int64    `msgpack:"t"`
}

// SymbolsResponse holds symbol candidates. TimeTaken is in microseconds.
type SymbolsResponse struct {
	ID        string              `msgpack:"id"`
	Symbols   []dictionary.Symbol `msgpack:"s"`
	Count     int                 `msgpack:"c"`
	TimeTaken int64               `msgpack:"t"`
}

// InfoResponse reports index sizes and server state.
type InfoResponse struct {
	ID       string         `msgpack:"id"`
	Stats    map[string]int `msgpack:"stats"`
	Sessions int            `msgpack:"sessions"`
	PageSize int            `msgpack:"page_size"`
}

// ErrorResponse holds basic error information for a failed request.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
