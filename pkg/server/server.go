package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/bastiangx/predict/pkg/host"
	"github.com/bastiangx/predict/pkg/session"
	"github.com/bastiangx/predict/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	codeBadRequest = 400
	codeNotFound   = 404
)

// attached is a session and the surface it draws on.
type attached struct {
	session *session.Session
	surface *host.Surface
}

// Option configures a Server.
type Option func(*Server)

// WithPageSize sets the page size of sessions attached from now on.
func WithPageSize(n int) Option {
	return func(s *Server) { s.SetPageSize(n) }
}

// WithBindings sets the mode chords of new sessions.
func WithBindings(b session.Bindings) Option {
	return func(s *Server) { s.bindings = b }
}

// Server handles the IPC for prediction sessions
type Server struct {
	engine   *suggest.Engine
	sessions map[string]*attached
	bindings session.Bindings
	pageSize atomic.Int64
	nextID   int

	decoder *msgpack.Decoder
	writer  *bufio.Writer
	encoder *msgpack.Encoder
}

// NewServer creates a server using stdin/stdout for IPC
func NewServer(engine *suggest.Engine, opts ...Option) *Server {
	return NewServerWithIO(engine, os.Stdin, os.Stdout, opts...)
}

// NewServerWithIO creates a server on arbitrary streams.
func NewServerWithIO(engine *suggest.Engine, r io.Reader, w io.Writer, opts ...Option) *Server {
	bw := bufio.NewWriter(w)
	s := &Server{
		engine:   engine,
		sessions: make(map[string]*attached),
		bindings: session.DefaultBindings(),
		decoder:  msgpack.NewDecoder(bufio.NewReader(r)),
		writer:   bw,
		encoder:  msgpack.NewEncoder(bw),
	}
	s.pageSize.Store(host.DefaultPageSize)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPageSize changes the page size for sessions attached after the call.
// It is safe to call from another goroutine.
func (s *Server) SetPageSize(n int) {
	if n < 1 {
		return
	}
	s.pageSize.Store(int64(n))
}

// Start serves requests until the input ends.
func (s *Server) Start() error {
	log.Debug("Starting Server.")

	// Signal that the server is ready
	s.sendResponse(StatusResponse{Status: "ready"})

	for {
		var raw msgpack.RawMessage
		if err := s.decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				s.detachAll()
				return nil
			}
			log.Errorf("Reading request: %v", err)
			return err
		}
		s.handleRequest(raw)
	}
}

// handleRequest decodes and dispatches one message
func (s *Server) handleRequest(raw msgpack.RawMessage) {
	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		log.Errorf("Unmarshaling request: %v", err)
		s.sendError("", "Invalid msgpack request", codeBadRequest)
		return
	}
	log.Debugf("Request %q: action=%s session=%q", req.ID, req.Action, req.Session)

	switch req.Action {
	case "attach":
		s.handleAttach(req)
	case "detach":
		s.handleDetach(req)
	case "key":
		s.handleKey(req)
	case "reset":
		s.handleReset(req)
	case "words":
		s.handleWords(req)
	case "symbols":
		s.handleSymbols(req)
	case "info":
		s.sendResponse(InfoResponse{
			ID:       req.ID,
			Stats:    s.engine.Stats(),
			Sessions: len(s.sessions),
			PageSize: int(s.pageSize.Load()),
		})
	case "health":
		s.sendResponse(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %s", req.Action), codeBadRequest)
	}
}

func (s *Server) handleAttach(req Request) {
	id := req.Session
	if id == "" {
		s.nextID++
		id = fmt.Sprintf("s%d", s.nextID)
	}
	if _, ok := s.sessions[id]; ok {
		s.sendError(req.ID, fmt.Sprintf("Session already attached: %s", id), codeBadRequest)
		return
	}

	surface := host.NewSurface(int(s.pageSize.Load()))
	s.sessions[id] = &attached{
		session: session.New(s.engine, surface, session.WithBindings(s.bindings)),
		surface: surface,
	}
	log.Debugf("Attached session %s (%d active)", id, len(s.sessions))
	s.sendResponse(StatusResponse{ID: req.ID, Status: "attached", Session: id})
}

func (s *Server) handleDetach(req Request) {
	a, ok := s.lookup(req)
	if !ok {
		return
	}
	a.session.Reset()
	delete(s.sessions, req.Session)
	log.Debugf("Detached session %s (%d active)", req.Session, len(s.sessions))
	s.sendResponse(StatusResponse{ID: req.ID, Status: "detached", Session: req.Session})
}

func (s *Server) handleKey(req Request) {
	a, ok := s.lookup(req)
	if !ok {
		return
	}
	handled := a.session.HandleKeyEvent(req.Keyval, req.Keycode, session.Modifier(req.Mods))
	s.sendKeyResponse(req.ID, handled, a)
}

func (s *Server) handleReset(req Request) {
	a, ok := s.lookup(req)
	if !ok {
		return
	}
	a.session.Reset()
	s.sendKeyResponse(req.ID, true, a)
}

func (s *Server) handleWords(req Request) {
	start := time.Now()
	words, err := s.engine.Words(req.Prefix)
	if err != nil {
		log.Debugf("Words lookup failed: %v", err)
		s.sendError(req.ID, err.Error(), codeBadRequest)
		return
	}
	s.sendResponse(WordsResponse{
		ID:        req.ID,
		Words:     words,
		Count:     len(words),
		TimeTaken: time.Since(start).Microseconds(),
	})
}

func (s *Server) handleSymbols(req Request) {
	start := time.Now()
	symbols, err := s.engine.Symbols(req.Prefix)
	if err != nil {
		log.Debugf("Symbols lookup failed: %v", err)
		s.sendError(req.ID, err.Error(), codeBadRequest)
		return
	}
	s.sendResponse(SymbolsResponse{
		ID:        req.ID,
		Symbols:   symbols,
		Count:     len(symbols),
		TimeTaken: time.Since(start).Microseconds(),
	})
}

func (s *Server) lookup(req Request) (*attached, bool) {
	a, ok := s.sessions[req.Session]
	if !ok {
		s.sendError(req.ID, fmt.Sprintf("Unknown session: %q", req.Session), codeNotFound)
	}
	return a, ok
}

func (s *Server) sendKeyResponse(id string, handled bool, a *attached) {
	view := a.surface.View()
	s.sendResponse(KeyResponse{
		ID:      id,
		Handled: handled,
		Ops:     a.surface.Drain(),
		Page:    view.Page,
		Cursor:  view.Cursor,
		Mode:    a.session.Mode().String(),
	})
}

func (s *Server) detachAll() {
	for id, a := range s.sessions {
		a.session.Reset()
		delete(s.sessions, id)
	}
}

// sendResponse encodes one response and flushes it to the client.
func (s *Server) sendResponse(response any) {
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		log.Errorf("Writing response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{ID: id, Error: message, Code: code})
}
