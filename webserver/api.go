// Package webserver serves the optional monitor: the session snapshot over
// HTTP and live notifications over a websocket.
package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"sync"
	"time"

	"braces.dev/errtrace"
	"github.com/gorilla/websocket"

	"sipalert/global"
	"sipalert/session"
	"sipalert/system"
)

// notificationBacklog bounds the notifications waiting for the websocket
// writer. Publish drops beyond it.
const notificationBacklog = 64

const writeWait = 2 * time.Second

// Snapshotter is the read side of the session. *session.Session implements it.
type Snapshotter interface {
	Snapshot() session.Snapshot
}

type Server struct {
	src     Snapshotter
	srv     *http.Server
	ln      net.Listener
	started time.Time

	notes chan session.Notification
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func New(src Snapshotter) *Server {
	s := &Server{
		src:     src,
		notes:   make(chan session.Notification, notificationBacklog),
		done:    make(chan struct{}),
		clients: make(map[*websocket.Conn]struct{}),
	}
	r := http.NewServeMux()
	r.HandleFunc("/api/v1/session", s.serveSession)
	r.HandleFunc("/api/v1/stats", s.serveStats)
	r.HandleFunc("/ws", s.handleWSConnection)
	r.HandleFunc("/", s.serveHome)
	s.srv = &http.Server{Handler: r, ReadTimeout: 5 * time.Second, WriteTimeout: 10 * time.Second, IdleTimeout: 15 * time.Second}
	return s
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return global.NewError(global.ErrTransport, err)
	}
	s.ln = ln
	s.started = time.Now()

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			system.LogError(system.LTWebserver, err.Error())
		}
	}()
	go s.broadcast()

	system.LogInfo(system.LTWebserver, fmt.Sprintf("Monitor listening on http://%s", ln.Addr()))
	return nil
}

func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Publish queues n for the websocket clients without blocking.
func (s *Server) Publish(n session.Notification) {
	select {
	case <-s.done:
	case s.notes <- n:
	default:
		system.LogDebug(system.LTWebSocketData, fmt.Sprintf("Dropping %s notification", n.Kind))
	}
}

// Shutdown stops the HTTP server and closes every websocket.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.srv.Shutdown(ctx)
		s.mu.Lock()
		for ws := range s.clients {
			_ = ws.Close()
		}
		s.mu.Unlock()
		s.wg.Wait()
	})
	return errtrace.Wrap(err)
}

func (s *Server) serveHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || r.Method != http.MethodGet {
		http.Error(w, "Not Found Resource", http.StatusNotFound)
		return
	}
	_, _ = w.Write(fmt.Appendf(nil, "<h1>%s monitor</h1>", global.UserAgent))
}

func (s *Server) serveSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.src.Snapshot())
}

func (s *Server) serveStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	BToMB := func(b uint64) uint64 {
		return b / 1000 / 1000
	}

	s.mu.Lock()
	clients := len(s.clients)
	s.mu.Unlock()

	data := struct {
		CPUCount        int
		GoRoutinesCount int
		Alloc           uint64
		System          uint64
		GCCycles        uint32
		Uptime          string
		WSClients       int
	}{CPUCount: runtime.NumCPU(),
		GoRoutinesCount: runtime.NumGoroutine(),
		Alloc:           BToMB(m.Alloc),
		System:          BToMB(m.Sys),
		GCCycles:        m.NumGC,
		Uptime:          time.Since(s.started).Truncate(time.Second).String(),
		WSClients:       clients,
	}
	writeJSON(w, data)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	response, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Error encoding response", http.StatusInternalServerError)
		return
	}
	if _, err := w.Write(response); err != nil {
		system.LogError(system.LTWebserver, err.Error())
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Server) handleWSConnection(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		system.LogWarning(system.LTWebserver, err.Error())
		return
	}

	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		_ = ws.Close()
		return
	default:
	}
	s.clients[ws] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	system.LogInfo(system.LTWebserver, fmt.Sprintf("Websocket client %s connected", ws.RemoteAddr()))
	go s.listenToWS(ws)
}

// listenToWS drains the client until it goes away. Clients only listen.
func (s *Server) listenToWS(ws *websocket.Conn) {
	defer s.wg.Done()
	defer s.drop(ws)
	for {
		if _, _, err := ws.NextReader(); err != nil {
			return
		}
	}
}

func (s *Server) drop(ws *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[ws]; ok {
		delete(s.clients, ws)
		_ = ws.Close()
	}
}

func (s *Server) broadcast() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case n := <-s.notes:
			s.mu.Lock()
			for ws := range s.clients {
				_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
				if err := ws.WriteJSON(n); err != nil {
					system.LogWarning(system.LTWebSocketData, fmt.Sprintf("Writing to %s failed: %v", ws.RemoteAddr(), err))
					delete(s.clients, ws)
					_ = ws.Close()
				}
			}
			s.mu.Unlock()
		}
	}
}
