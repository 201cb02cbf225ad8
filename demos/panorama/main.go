// panorama opens the horizontally scrolling page: a panorama, three panels,
// parallax overlays and floating physics bodies driven by the scroll.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/phanxgames/panorama"
)

func main() {
	configPath := flag.String("config", "", "JSON config overlaid on the defaults")
	assets := flag.String("assets", "", "asset directory (overrides the config)")
	seed := flag.Uint64("seed", 0, "physics seed (0 picks one from the clock)")
	debug := flag.Bool("debug", false, "show frame stats and log at debug level")
	scriptPath := flag.String("script", "", "JSON input script to replay")
	shots := flag.String("screenshots", "screenshots", "directory for scripted screenshots")
	flag.Parse()

	logger, err := panorama.NewLogger(*debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger, *configPath, *assets, *seed, *debug, *scriptPath, *shots); err != nil {
		logger.Fatal("panorama", zap.Error(err))
	}
}

func run(logger *zap.Logger, configPath, assets string, seed uint64, debug bool, scriptPath, shots string) error {
	cfg := panorama.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = panorama.LoadConfig(configPath); err != nil {
			return err
		}
	}
	if assets != "" {
		cfg.Assets.Dir = assets
	}

	opts := []panorama.Option{
		panorama.WithLogger(logger),
		panorama.WithDebug(debug),
		panorama.WithScreenshotDir(shots),
	}
	if seed != 0 {
		opts = append(opts, panorama.WithSeed(seed))
	}
	if scriptPath != "" {
		script, err := panorama.LoadScript(scriptPath)
		if err != nil {
			return err
		}
		opts = append(opts, panorama.WithScript(script))
	}

	page, err := panorama.NewPage(cfg, opts...)
	if err != nil {
		return err
	}
	defer page.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	page.Start(ctx)

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	logger.Info("starting",
		zap.String("assets", cfg.Assets.Dir),
		zap.Int("bodies", len(cfg.Bodies)),
		zap.Int("overlays", len(cfg.Overlays)))

	if err := ebiten.RunGame(page); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
