// server streams an interactive Mandelbrot view to browsers over websockets.
// Every page gets its own session (viewport, zoom state) while all sessions
// share one render worker pool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mandel "github.com/marben/mandelview"
	"github.com/marben/mandelview/render"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	cfg := mandel.DefaultConfig()
	cfg.Width, cfg.Height = 960, 640
	cfg.FPS = 30
	cfg.RegisterFlags(flag.CommandLine)
	addr := flag.String("addr", ":8080", "http listen address")
	origins := flag.String("origins", "localhost:*,127.0.0.1:*", "comma separated websocket origin patterns")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	mandel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	renderer := render.NewRenderer(cfg.Workers, render.WithStrips(cfg.StripCount()))
	defer renderer.Close()

	hub := newSessionHub(cfg, renderer)
	listener := NewSessionListener(ctx, strings.Split(*origins, ",")...)
	httpServer := webServer(ctx, *addr, listener)

	// httpServer provides index.html along with the websocket endpoint
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("httpServer: %v", err)
		}
	}()
	log.Printf("listening on http://localhost%s", *addr)

	go func() {
		<-ctx.Done()
		listener.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("httpServer.Shutdown: %v", err)
		}
	}()

	for {
		c, err := listener.Accept()
		if err != nil {
			log.Printf("stopped accepting sessions: %v (%d still open)", err, hub.activeSessions())
			return nil
		}
		go func() {
			if err := hub.serve(ctx, c); err != nil && ctx.Err() == nil {
				mandel.Logger().Warn("session ended", "err", err)
			}
		}()
	}
}
