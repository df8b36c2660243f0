package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/arcamera/cameraview/internal/config"
	"github.com/arcamera/cameraview/internal/logging"
	"github.com/arcamera/cameraview/internal/utils"
	"github.com/arcamera/cameraview/pkg/camera"
	"github.com/arcamera/cameraview/pkg/cropper"
	"github.com/arcamera/cameraview/pkg/describe"
	"github.com/arcamera/cameraview/pkg/ollama"
	"github.com/arcamera/cameraview/pkg/processing"
	"github.com/arcamera/cameraview/pkg/view"
)

func main() {
	var in, outDir, ext, overlayPath, ratios, configPath string
	var url, model, logLevel string
	var width, height, quality int
	var lossless, toggle, describeOn, dev bool

	flag.StringVar(&in, "in", "", "comma-separated images, directories or URLs acting as camera devices")
	flag.IntVar(&width, "w", 0, "view width in pixels")
	flag.IntVar(&height, "h", 0, "view height in pixels")
	flag.StringVar(&outDir, "out", "", "output directory")

	flag.StringVar(&ext, "ext", "", "output format: jpg|png|webp")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP output quality (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP output lossless mode")

	flag.StringVar(&overlayPath, "overlay", "", "image drawn over the live preview")
	flag.BoolVar(&toggle, "toggle", false, "switch to the next camera device before capturing")
	flag.StringVar(&ratios, "ratios", "", "extra aspect ratios cropped from the whole capture, e.g. square,16:9")

	flag.StringVar(&configPath, "config", "", "config file (default "+config.GetConfigPath()+" when present)")
	flag.BoolVar(&describeOn, "describe", false, "describe the capture with a vision model")
	flag.StringVar(&url, "url", "", "Ollama chat URL")
	flag.StringVar(&model, "model", "", "vision model name")

	flag.StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error")
	flag.BoolVar(&dev, "dev", false, "human readable console logs")

	flag.Parse()

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	// Flags given on the command line win over file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			cfg.Camera.Sources = strings.Split(in, ",")
		case "w":
			cfg.View.Width = width
		case "h":
			cfg.View.Height = height
		case "out":
			cfg.Output.Dir = outDir
		case "ext":
			cfg.Output.Format = ext
		case "quality":
			cfg.Output.Quality = quality
		case "lossless":
			cfg.Output.Lossless = lossless
		case "ratios":
			cfg.Output.Ratios = strings.Split(ratios, ",")
		case "describe":
			cfg.Describe.Enabled = describeOn
		case "url":
			cfg.Describe.URL = url
		case "model":
			cfg.Describe.Model = model
		case "log-level":
			cfg.Log.Level = logLevel
		case "dev":
			cfg.Log.Development = dev
		}
	})

	if len(cfg.Camera.Sources) == 0 {
		log.Fatalf("usage: %s -in image.jpg[,other.jpg|dir|URL] [-w 1080 -h 1350] [-out outdir] [-ext jpg|png|webp] [-ratios square,16:9] [-overlay frame.png] [-toggle] [-describe]", filepath.Base(os.Args[0]))
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, overlayPath, toggle, logger); err != nil {
		logger.Fatal("capture failed", zap.Error(err))
	}
}

// loadConfig reads the explicit config file, or the default one when it
// exists, then applies .env and environment overrides.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path == "" && utils.FileExists(config.GetConfigPath()) {
		path = config.GetConfigPath()
	}
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(".env"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, overlayPath string, toggle bool, logger *zap.Logger) error {
	processor := processing.NewProcessor(logger)

	locations, err := utils.ExpandSources(cfg.Camera.Sources)
	if err != nil {
		return err
	}
	sources := make([]camera.Source, len(locations))
	for i, loc := range locations {
		sources[i] = processor.Source(loc)
	}

	session, err := camera.NewStillSession(logger, sources...)
	if err != nil {
		return err
	}

	extra := make([]cropper.AspectRatio, 0, len(cfg.Output.Ratios))
	for _, s := range cfg.Output.Ratios {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		r, err := cropper.ParseAspectRatio(s)
		if err != nil {
			return err
		}
		extra = append(extra, r)
	}

	captureID := processing.NewCaptureID()
	prefix := utils.SanitizeFilename(cfg.Output.Prefix)
	if err := utils.EnsureDir(cfg.Output.Dir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	observers := view.Observers{view.ObserverFuncs{
		CameraChanged: func(*view.CameraView) {
			logger.Info("using camera", zap.String("device", session.Device()))
		},
	}}

	var describer *describe.Describer
	if cfg.Describe.Enabled {
		vc, err := ollama.NewClient(cfg.Describe.URL)
		if err != nil {
			return fmt.Errorf("failed to create Ollama client: %w", err)
		}
		describer = describe.New(vc, processor, describe.Config{
			Model:       cfg.Describe.Model,
			Prompt:      cfg.Describe.Prompt,
			Raw:         cfg.Describe.Raw,
			SendSize:    cfg.Describe.SendSize,
			SendQuality: cfg.Describe.SendQuality,
			Timeout:     cfg.Describe.Timeout.Duration,
		}, logger)
		observers = append(observers, view.ObserverFuncs{
			ImageTaken: func(_ *view.CameraView, img image.Image) {
				describer.Submit(captureID, img)
			},
		})
	}

	opts := []view.Option{
		view.WithLogger(logger),
		view.WithObserver(observers),
		view.WithHideButtonDuringFocus(cfg.View.HideButtonDuringFocus),
	}
	if cfg.View.ButtonSize > 0 {
		opts = append(opts, view.WithButtonSize(cfg.View.ButtonSize))
	}
	if overlayPath != "" {
		overlay, err := processor.LoadImageSmart(overlayPath)
		if err != nil {
			return fmt.Errorf("failed to load overlay: %w", err)
		}
		opts = append(opts, view.WithOverlay(overlay))
	}

	v, err := view.New(session, cfg.View.Width, cfg.View.Height, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := v.StopCameraAndSession(); err != nil {
			logger.Warn("failed to release camera", zap.Error(err))
		}
	}()

	if err := v.StartCamera(ctx); err != nil {
		return err
	}
	if toggle {
		if err := v.ToggleCamera(); err != nil {
			return err
		}
	}

	preview, err := v.Render()
	if err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}

	if err := v.PressButton(ctx); err != nil {
		return err
	}
	taken, whole := v.ImageTaken(), v.WholeImageTaken()

	variants := []processing.Variant{
		{Name: "view", Image: taken},
		{Name: "whole", Image: whole},
		{Name: "preview", Image: preview},
	}
	crops, err := cropper.New().CropToMultipleRatios(whole, extra)
	if err != nil {
		return err
	}
	for i, c := range crops {
		variants = append(variants, processing.Variant{Name: extra[i].Name, Image: c.Image})
	}

	paths, err := processor.Export(ctx, captureID, variants, processing.ExportOptions{
		Dir:      cfg.Output.Dir,
		Prefix:   prefix,
		Format:   cfg.Output.Format,
		Quality:  cfg.Output.Quality,
		Lossless: cfg.Output.Lossless,
	})
	if err != nil {
		return err
	}
	for _, p := range paths {
		logWritten(logger, captureID, p)
	}

	if describer != nil {
		results := describer.Wait()
		js, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal descriptions: %w", err)
		}
		path := utils.ArtifactPath(cfg.Output.Dir, prefix, captureID, "description", "json")
		if err := os.WriteFile(path, js, 0o644); err != nil {
			return fmt.Errorf("failed to write descriptions: %w", err)
		}
		logWritten(logger, captureID, path)
	}

	return nil
}

func logWritten(logger *zap.Logger, captureID, path string) {
	fields := []zap.Field{zap.String("capture_id", captureID), zap.String("path", path)}
	if info, err := os.Stat(path); err == nil {
		fields = append(fields, zap.String("size", utils.FormatFileSize(info.Size())))
	}
	logger.Info("wrote", fields...)
}
