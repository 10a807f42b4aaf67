// Package server exposes typing sessions over websockets. Each connection
// owns one session whose keystrokes and clock ticks are applied on a single
// event loop goroutine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/session"
)

const (
	writeWait       = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Message types exchanged over the socket.
const (
	TypeStart    = "start"
	TypeReset    = "reset"
	TypeEnd      = "end"
	TypeInput    = "input"
	TypeWords    = "words"
	TypeSnapshot = "snapshot"
	TypeResult   = "result"
	TypeError    = "error"
)

// ClientMessage is sent by the browser.
type ClientMessage struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// ServerMessage is sent to the browser.
type ServerMessage struct {
	Type     string            `json:"type"`
	Words    []string          `json:"words,omitempty"`
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
	Result   *model.Result     `json:"result,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Store persists finished sessions and serves history.
type Store interface {
	session.Sink
	ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.Result, error)
}

// Server serves websocket typing sessions and the results API.
type Server struct {
	cfg       model.Config
	store     Store
	newSource func() session.WordSource
	upgrader  websocket.Upgrader
}

// New creates a server. newSource is called once per connection since word
// sources are not safe for concurrent use.
func New(cfg model.Config, st Store, newSource func() session.WordSource) *Server {
	return &Server{
		cfg:       cfg,
		store:     st,
		newSource: newSource,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/results", s.handleResults)
	return mux
}

// ListenAndServe serves until ctx is done, then shuts down and closes open
// sessions.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	errc := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	cfg := s.cfg
	if user := r.URL.Query().Get("user"); user != "" {
		cfg.User = user
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	log.Printf("New client connected: %s", cfg.User)

	c := &conn{ws: ws, user: cfg.User}
	c.run(r.Context(), cfg, s.newSource(), s.store)
	log.Printf("Client disconnected: %s", cfg.User)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	cfg := model.StatsConfig{User: q.Get("user"), Lang: q.Get("lang")}
	if raw := q.Get("last"); raw != "" {
		last, err := strconv.Atoi(raw)
		if err != nil || last < 0 {
			http.Error(w, "Invalid last", http.StatusBadRequest)
			return
		}
		cfg.Last = last
	}

	results, err := s.store.ListResults(r.Context(), cfg)
	if err != nil {
		log.Printf("Failed to list results: %v", err)
		http.Error(w, "Failed to list results", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []model.Result{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(results); err != nil {
		log.Printf("Failed to write results: %v", err)
	}
}

// conn is one websocket client. Only the event loop writes to ws.
type conn struct {
	ws       *websocket.Conn
	user     string
	finished *model.Result
	writeErr error
}

func (c *conn) run(ctx context.Context, cfg model.Config, source session.WordSource, st Store) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer func() {
		if cerr := c.ws.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()

	inbox := make(chan ClientMessage)
	ticks := make(chan uint64)
	go c.readLoop(ctx, inbox)

	opts := []session.Option{
		session.WithScheduler(session.TickerScheduler{
			Context: ctx,
			Post: func(id uint64) {
				select {
				case ticks <- id:
				case <-ctx.Done():
				}
			},
		}),
		session.WithErrorReporter(func(err error) {
			log.Printf("Session error for user %s: %v", c.user, err)
			c.send(ServerMessage{Type: TypeError, Error: err.Error()})
		}),
		session.WithCompletion(func(res model.Result) {
			c.finished = &res
		}),
	}
	if st != nil {
		opts = append(opts, session.WithSink(st))
	}
	sess := session.New(cfg, source, opts...)
	defer sess.Close()

	c.send(ServerMessage{Type: TypeWords, Words: sess.Words()})
	c.sendState(sess)

	for c.writeErr == nil {
		select {
		case <-ctx.Done():
			return
		case id := <-ticks:
			if sess.Tick(id) {
				c.sendState(sess)
			}
		case msg, ok := <-inbox:
			if !ok {
				return
			}
			c.handle(sess, msg)
		}
	}
	log.Printf("Write error for user %s: %v", c.user, c.writeErr)
}

func (c *conn) handle(sess *session.Session, msg ClientMessage) {
	switch msg.Type {
	case TypeStart:
		sess.Start()
	case TypeReset:
		sess.Reset()
		c.send(ServerMessage{Type: TypeWords, Words: sess.Words()})
	case TypeEnd:
		sess.End()
	case TypeInput:
		sess.SubmitKeystroke(msg.Value)
	default:
		c.send(ServerMessage{Type: TypeError, Error: fmt.Sprintf("unknown message type %q", msg.Type)})
		return
	}
	c.sendState(sess)
}

// sendState pushes the snapshot, followed by the result once per completion.
func (c *conn) sendState(sess *session.Session) {
	snap := sess.Snapshot()
	c.send(ServerMessage{Type: TypeSnapshot, Snapshot: &snap})
	if c.finished != nil {
		c.send(ServerMessage{Type: TypeResult, Result: c.finished})
		c.finished = nil
	}
}

func (c *conn) send(msg ServerMessage) {
	if c.writeErr != nil {
		return
	}
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.writeErr = err
		return
	}
	c.writeErr = c.ws.WriteJSON(msg)
}

func (c *conn) readLoop(ctx context.Context, inbox chan<- ClientMessage) {
	defer close(inbox)
	for {
		var msg ClientMessage
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error for user %s: %v", c.user, err)
			}
			return
		}
		select {
		case inbox <- msg:
		case <-ctx.Done():
			return
		}
	}
}
