// cliclient renders a single frame without a window and saves it as a PNG file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	mandel "github.com/marben/mandelview"
	"github.com/marben/mandelview/frame"
	"github.com/marben/mandelview/render"
)

// main is the entry point for the CLI client.
// It runs the client logic and logs any fatal errors.
func main() {
	if err := run(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run renders the configured viewport once and writes it to a PNG file.
func run() error {
	cfg := mandel.DefaultConfig()
	cfg.RegisterFlags(flag.CommandLine)
	filename := flag.String("o", "mandel.png", "output file")
	scale := flag.Int("scale", 1, "integer upscale factor of the saved image")
	hud := flag.Bool("hud", false, "print viewport and iteration count onto the image")
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Step 1: Start the render pool
	renderer := render.NewRenderer(cfg.Workers, render.WithStrips(cfg.StripCount()))
	defer renderer.Close()

	// Step 2: Render one frame through the gate, like an interactive session's first cycle
	st := mandel.NewAppState(cfg.Viewport)
	gate := render.NewGate(renderer, cfg.Settings())
	log.Printf("Rendering %dx%d of %s...", cfg.Width, cfg.Height, cfg.Viewport)
	res, err := gate.Render(ctx, st)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	// Step 3: Build the image
	img := frame.ToRGBA(res.Colors)
	img = frame.Scale(img, *scale)
	if *hud {
		frame.DrawHUD(img, frame.HUDLines(res)...)
	}

	// Step 4: Save the rendered image to a PNG file
	log.Printf("Saving rendered image to %q...", *filename)
	f, err := os.Create(*filename)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := frame.EncodePNG(f, img); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", *filename, err)
	}

	log.Printf("Fully rendered image saved to %q", *filename)
	return nil
}
