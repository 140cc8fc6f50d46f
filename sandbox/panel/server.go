package panel

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/loader"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/logger"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

//go:embed static/index.html
var indexHTML []byte

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	sendBuffer     = 256
	sniffLen       = 512
)

// Message types pushed to the browser.
const (
	MessageView    = "view"
	MessageNotice  = "notice"
	MessageDismiss = "dismiss"
	MessageError   = "error"
)

// Message is the JSON frame sent to every connected panel.
type Message struct {
	Type      string          `json:"type"`
	Container string          `json:"container,omitempty"`
	View      json.RawMessage `json:"view,omitempty"`
	Notice    *Notice         `json:"notice,omitempty"`
	NoticeID  string          `json:"noticeId,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Handler consumes what the panels send.
type Handler interface {
	// HandleIntent receives one raw intent frame. A returned error is reported back to the
	// sending panel only.
	HandleIntent(data []byte) error

	// HandleUpload takes ownership of an uploaded model file. If it returns an error the
	// server releases the resource.
	HandleUpload(res *loader.Resource) error
}

// Server is a Host whose containers are mirrored to browsers over a websocket.
type Server interface {
	Host

	// SetHandler sets the consumer of intents and uploads. Until it is set, intents are
	// rejected and uploads fail with 503.
	SetHandler(h Handler)

	// HTTPHandler returns the handler serving the panel page, /ws and /upload.
	HTTPHandler() http.Handler

	// ListenAndServe serves on the configured address until ctx is done.
	//
	// Parameters:
	//   - ctx: stops the server
	//
	// Returns:
	//   - error: error if listening fails
	ListenAndServe(ctx context.Context) error

	// Serve serves on l until ctx is done.
	Serve(ctx context.Context, l net.Listener) error
}

type server struct {
	addr      string
	maxUpload int64
	upgrader  websocket.Upgrader

	mu         *sync.Mutex
	handler    Handler
	containers map[string]*container
	order      []string
	clients    map[*client]struct{}
}

var _ Server = &server{}

type container struct {
	id      string
	srv     *server
	view    json.RawMessage
	notices []Notice
}

var _ Container = &container{}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewServer creates a panel server with one container per id.
//
// Parameters:
//   - containerIDs: the containers the server hosts
//   - options: server options
//
// Returns:
//   - Server: the server
func NewServer(containerIDs []string, options ...ServerBuilderOption) Server {
	s := &server{
		addr:       "127.0.0.1:8765",
		maxUpload:  256 << 20,
		mu:         &sync.Mutex{},
		containers: make(map[string]*container, len(containerIDs)),
		clients:    make(map[*client]struct{}),
	}
	for _, id := range containerIDs {
		if _, ok := s.containers[id]; ok {
			continue
		}
		s.containers[id] = &container{id: id, srv: s}
		s.order = append(s.order, id)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *server) Container(id string) (Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.containers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingContainer, id)
	}
	return c, nil
}

func (s *server) SetHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

func (s *server) currentHandler() Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler
}

func (s *server) HTTPHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleSocket)
	mux.HandleFunc("/upload", s.handleUpload)
	return mux
}

func (s *server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, l)
}

func (s *server) Serve(ctx context.Context, l net.Listener) error {
	hs := &http.Server{Handler: s.HTTPHandler(), ReadHeaderTimeout: 10 * time.Second}
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			logger.Log.Warn("panel server shutdown", zap.Error(err))
		}
		s.dropClients()
	}()

	logger.Log.Info("panel server listening", zap.String("addr", l.Addr().String()))
	err := hs.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	s.register(c)
	go c.writePump()
	s.readPump(c)
}

// register adds c and queues the current state of every container for it. Both happen under
// the server lock so no broadcast lands between the state and the registration.
func (s *server) register(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		ct := s.containers[id]
		if ct.view != nil {
			s.enqueue(c, Message{Type: MessageView, Container: id, View: ct.view})
		}
		for i := range ct.notices {
			n := ct.notices[i]
			s.enqueue(c, Message{Type: MessageNotice, Container: id, Notice: &n})
		}
	}
	s.clients[c] = struct{}{}
	logger.Log.Debug("panel connected", zap.String("remote", c.conn.RemoteAddr().String()), zap.Int("clients", len(s.clients)))
}

func (s *server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *server) dropClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
}

// enqueue queues msg for c. A client whose buffer is full is dropped. The caller holds s.mu.
func (s *server) enqueue(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("panel message encode failed", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	default:
		logger.Log.Warn("panel client too slow, dropping", zap.String("remote", c.conn.RemoteAddr().String()))
		if _, ok := s.clients[c]; ok {
			delete(s.clients, c)
			close(c.send)
		}
	}
}

// broadcast queues msg for every client. The caller holds s.mu.
func (s *server) broadcast(msg Message) {
	for c := range s.clients {
		s.enqueue(c, msg)
	}
}

func (s *server) readPump(c *client) {
	defer s.unregister(c)
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.Warn("panel connection closed", zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		h := s.currentHandler()
		if h == nil {
			err = errors.New("sandbox is not ready")
		} else {
			err = h.HandleIntent(data)
		}
		if err != nil {
			logger.Log.Debug("intent rejected", zap.ByteString("intent", data), zap.Error(err))
			s.mu.Lock()
			if _, ok := s.clients[c]; ok {
				s.enqueue(c, Message{Type: MessageError, Error: err.Error()})
			}
			s.mu.Unlock()
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSONError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	if !s.originAllowed(r) {
		writeJSONError(w, http.StatusForbidden, errors.New("cross-origin upload refused"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		writeJSONError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}
	head = head[:n]
	if err := CheckUpload(header.Filename, head); err != nil {
		writeJSONError(w, http.StatusUnsupportedMediaType, err)
		return
	}

	h := s.currentHandler()
	if h == nil {
		writeJSONError(w, http.StatusServiceUnavailable, errors.New("sandbox is not ready"))
		return
	}
	res, err := loader.NewTempResource(header.Filename, io.MultiReader(bytes.NewReader(head), file))
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}
	if err := h.HandleUpload(res); err != nil {
		res.Release()
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Log.Info("model uploaded", zap.String("name", res.Name()))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"name": res.Name()})
}

// originAllowed applies the websocket origin check to plain requests, so a page on another
// site cannot post uploads to the panel.
func (s *server) originAllowed(r *http.Request) bool {
	if s.upgrader.CheckOrigin != nil {
		return s.upgrader.CheckOrigin(r)
	}
	return sameOrigin(r)
}

// sameOrigin accepts requests without an Origin header and those whose Origin host matches
// the request host, the same rule gorilla/websocket applies by default.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (c *container) ID() string {
	return c.id
}

func (c *container) Render(view any) {
	data, err := json.Marshal(view)
	if err != nil {
		logger.Log.Error("panel view encode failed", zap.String("container", c.id), zap.Error(err))
		return
	}
	c.srv.mu.Lock()
	defer c.srv.mu.Unlock()
	c.view = data
	c.srv.broadcast(Message{Type: MessageView, Container: c.id, View: data})
}

func (c *container) ShowNotice(n Notice) {
	c.srv.mu.Lock()
	defer c.srv.mu.Unlock()
	replaced := false
	for i := range c.notices {
		if c.notices[i].ID == n.ID {
			c.notices[i] = n
			replaced = true
			break
		}
	}
	if !replaced {
		c.notices = append(c.notices, n)
	}
	c.srv.broadcast(Message{Type: MessageNotice, Container: c.id, Notice: &n})
}

func (c *container) DismissNotice(id string) {
	c.srv.mu.Lock()
	defer c.srv.mu.Unlock()
	for i := range c.notices {
		if c.notices[i].ID == id {
			c.notices = append(c.notices[:i], c.notices[i+1:]...)
			c.srv.broadcast(Message{Type: MessageDismiss, Container: c.id, NoticeID: id})
			return
		}
	}
}
