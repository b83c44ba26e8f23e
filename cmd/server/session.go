package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	mandel "github.com/marben/mandelview"
	"github.com/marben/mandelview/frame"
	"github.com/marben/mandelview/render"
	"github.com/marben/mandelview/zoom"
)

// hello is the first message of a session. It tells the page how big to make its canvas.
type hello struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// pointerMsg is what the page sends for every pointer event.
type pointerMsg struct {
	Type   string `json:"type"` // "down", "up", "move", "leave"
	Button int    `json:"button"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// sessionHub runs one frame driver per browser connection. All sessions
// share the hub's renderer and therefore its worker pool.
type sessionHub struct {
	cfg      mandel.Config
	renderer *render.Renderer

	sessions int
	m        sync.Mutex
}

func newSessionHub(cfg mandel.Config, renderer *render.Renderer) *sessionHub {
	return &sessionHub{cfg: cfg, renderer: renderer}
}

func (h *sessionHub) incSessions() {
	h.m.Lock()
	h.sessions++
	n := h.sessions
	h.m.Unlock()

	mandel.Logger().Info("session opened", "sessions", n)
}

func (h *sessionHub) decSessions() {
	h.m.Lock()
	h.sessions--
	n := h.sessions
	h.m.Unlock()

	mandel.Logger().Info("session closed", "sessions", n)
}

func (h *sessionHub) activeSessions() int {
	h.m.Lock()
	defer h.m.Unlock()
	return h.sessions
}

// serve runs a session until the page goes away or ctx is done.
func (h *sessionHub) serve(ctx context.Context, c *websocket.Conn) error {
	h.incSessions()
	defer h.decSessions()
	defer c.CloseNow()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := wsjson.Write(ctx, c, hello{Width: h.cfg.Width, Height: h.cfg.Height}); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}

	queue := frame.NewQueue()
	go func() {
		readPointer(ctx, c, queue)
		cancel()
	}()

	st := mandel.NewAppState(h.cfg.Viewport)
	gate := render.NewGate(h.renderer, h.cfg.Settings())
	zc := zoom.NewController(h.cfg.ZoomFactor, h.cfg.ZoomInterval)
	p := &wsPresenter{ctx: ctx, conn: c, settings: gate.Settings()}
	d := frame.NewDriver(st, gate, zc, queue, p, frame.NewTickerPacer(h.cfg.FPS))
	p.state = d.State

	if err := d.Run(ctx); err != nil {
		return err
	}
	c.Close(websocket.StatusNormalClosure, "")
	return nil
}

// readPointer feeds page events into q until the connection fails.
// It finishes by queueing a Closed event.
func readPointer(ctx context.Context, c *websocket.Conn, q *frame.Queue) {
	defer q.Push(mandel.Event{Kind: mandel.Closed})
	for {
		var msg pointerMsg
		if err := wsjson.Read(ctx, c, &msg); err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				mandel.Logger().Debug("read pointer", "err", err)
			}
			return
		}
		q.MovePointer(msg.X, msg.Y)

		switch msg.Type {
		case "down":
			q.Push(mandel.Event{Kind: mandel.ButtonPressed, Button: pageButton(msg.Button)})
		case "up":
			q.Push(mandel.Event{Kind: mandel.ButtonReleased, Button: pageButton(msg.Button)})
		case "leave":
			q.MovePointer(-1, -1)
		}
	}
}

// pageButton maps MouseEvent.button to a mandel.Button.
func pageButton(b int) mandel.Button {
	switch b {
	case 0:
		return mandel.ButtonLeft
	case 2:
		return mandel.ButtonRight
	}
	return mandel.ButtonOther
}

// wsPresenter sends every frame to the page as a PNG.
type wsPresenter struct {
	ctx      context.Context
	conn     *websocket.Conn
	state    func() mandel.AppState
	settings mandel.RenderSettings
	buf      bytes.Buffer
}

const writeTimeout = 5 * time.Second

// hudLines describes the session's current view the same way the PNG export does.
func (p *wsPresenter) hudLines() []string {
	return frame.HUDLines(mandel.RenderResult{Viewport: p.state().Viewport, Settings: p.settings})
}

func (p *wsPresenter) Present(colors mandel.ColorGrid) error {
	img := frame.ToRGBA(colors)
	if p.state != nil {
		frame.DrawHUD(img, p.hudLines()...)
	}

	p.buf.Reset()
	if err := frame.EncodePNG(&p.buf, img); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(p.ctx, writeTimeout)
	defer cancel()
	if err := p.conn.Write(ctx, websocket.MessageBinary, p.buf.Bytes()); err != nil {
		return fmt.Errorf("conn.Write: %w", err)
	}
	return nil
}
