package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

//go:embed static
var staticFiles embed.FS

// webServer creates a server serving the embedded viewer page and a
// websocket endpoint whose connections are handed to l.
func webServer(ctx context.Context, addr string, l *SessionListener) *http.Server {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err) // embedded at build time
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", websocketHandler(l))
	mux.Handle("/", http.FileServerFS(static))

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

// websocketHandler handles the http ws endpoint
// if websocket is succesfully initialized it is passed to SessionListener so it can be accepted
func websocketHandler(l *SessionListener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: l.originPatterns,
		})
		if err != nil {
			log.Println(err)
			return
		}

		select {
		case l.ch <- c:
		case <-l.ctx.Done():
			c.Close(websocket.StatusGoingAway, "server shutting down")
		}
	}
}

// SessionListener queues accepted websocket connections until the session
// loop picks them up.
type SessionListener struct {
	ch             chan *websocket.Conn
	ctx            context.Context
	cancel         context.CancelFunc
	originPatterns []string
}

func NewSessionListener(ctx context.Context, originPatterns ...string) *SessionListener {
	ctx, cancel := context.WithCancel(ctx)
	return &SessionListener{
		ch:             make(chan *websocket.Conn),
		ctx:            ctx,
		cancel:         cancel,
		originPatterns: originPatterns,
	}
}

// Accept waits for the next connection.
func (l *SessionListener) Accept() (*websocket.Conn, error) {
	select {
	case c := <-l.ch:
		return c, nil
	case <-l.ctx.Done():
		return nil, net.ErrClosed
	}
}

func (l *SessionListener) Close() error {
	l.cancel()
	return nil
}
