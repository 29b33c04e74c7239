// Command segmo-demo wires a Processor to a synthetic frame source and a
// small HTTP control plane, standing in for the host-integration layer
// the core spec deliberately keeps external (§1 Non-goals). Grounded on
// iluha78-FD/cmd/api/main.go's config-load / connect-dependencies /
// router / graceful-shutdown shape.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	segmo "github.com/gogpu/segmo"
	"github.com/gogpu/segmo/diagnostics"
	"github.com/gogpu/segmo/hostintegration/assets"
	"github.com/gogpu/segmo/hostintegration/onnxproducer"
	"github.com/gogpu/segmo/hostintegration/wsink"
)

func main() {
	configPath := flag.String("config", "configs/segmo-demo.yaml", "path to config file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if cfg.Logging.Level == "debug" {
		logLevel = slog.LevelDebug
	}
	segmo.SetLogger(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
	logger := segmo.Logger()

	background, err := buildBackground(cfg)
	if err != nil {
		logger.Error("build background mode", "error", err)
		os.Exit(1)
	}

	opts := segmo.Options{
		Background: background,
		Quality:    qualityLabel(cfg.Quality.Label),
		Adaptive:   cfg.Quality.Adaptive,
		UseWorker:  cfg.Model.UseWorker,
		ClientID:   "segmo-demo",
	}

	if background.Kind != segmo.BackgroundNone {
		producer, err := onnxproducer.New(onnxproducer.Config{
			ModelPath:  cfg.Model.Path,
			InputName:  cfg.Model.InputName,
			OutputName: cfg.Model.OutputName,
			Width:      256,
			Height:     256,
			Classes:    cfg.Model.Classes,
		})
		if err != nil {
			logger.Error("load segmentation model", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		opts.Producer = producer
		if cfg.Model.UseWorker {
			opts.ProducerFactory = func() (segmo.MaskProducer, error) {
				return onnxproducer.New(onnxproducer.Config{
					ModelPath:  cfg.Model.Path,
					InputName:  cfg.Model.InputName,
					OutputName: cfg.Model.OutputName,
					Width:      256,
					Height:     256,
					Classes:    cfg.Model.Classes,
				})
			}
		}
	}

	registry := prometheus.NewRegistry()
	opts.MetricsRegisterer = registry

	hub := wsink.New()
	stopHub := make(chan struct{})
	go hub.Run(stopHub)
	defer close(stopHub)

	var natsSink *diagnostics.NatsSink
	if cfg.NATS.URL != "" {
		s, err := diagnostics.NewNatsSink(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			logger.Warn("connect to nats, diagnostics will not be published", "error", err)
		} else {
			natsSink = s
			defer natsSink.Close()
		}
	}
	opts.OnDiagnostic = func(ev diagnostics.Event) {
		hub.Emit(ev)
		if natsSink != nil {
			natsSink.Emit(ev)
		}
	}
	opts.DiagnosticsLevel = segmo.DiagnosticsSummary

	const width, height = 1280, 720
	proc := segmo.NewProcessor(opts)
	if err := proc.Init(width, height); err != nil {
		logger.Error("init processor", "error", err)
		os.Exit(1)
	}
	defer proc.Destroy()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runFrameLoop(ctx, proc, hub, width, height, logger)

	router := newRouter(cfg, hub, registry)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("segmo-demo listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down segmo-demo")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
}

func newRouter(cfg *Config, hub *wsink.Hub, registry *prometheus.Registry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	r.GET("/config", func(c *gin.Context) { c.JSON(http.StatusOK, cfg) })
	r.GET("/preview", hub.HandleWS)

	return r
}

// buildBackground resolves the YAML background config into a
// segmo.BackgroundMode, fetching a still image from object storage when
// Kind is "image".
func buildBackground(cfg *Config) (segmo.BackgroundMode, error) {
	switch cfg.Background.Kind {
	case "none":
		return segmo.BackgroundMode{Kind: segmo.BackgroundNone}, nil
	case "blur":
		return segmo.BackgroundMode{Kind: segmo.BackgroundBlur, BlurRadius: cfg.Background.BlurRadius}, nil
	case "color":
		return segmo.BackgroundMode{Kind: segmo.BackgroundColor, Color: backgroundColor(cfg.Background.Color)}, nil
	case "image":
		store, err := assets.NewStore(assets.Config{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		if err != nil {
			return segmo.BackgroundMode{}, fmt.Errorf("connect to asset store: %w", err)
		}
		img, err := store.Load(context.Background(), cfg.Background.ImageKey)
		if err != nil {
			return segmo.BackgroundMode{}, fmt.Errorf("load background image: %w", err)
		}
		return segmo.BackgroundMode{Kind: segmo.BackgroundStill, Image: img, MatchStrength: 0.2}, nil
	default:
		return segmo.BackgroundMode{}, fmt.Errorf("unknown background kind %q", cfg.Background.Kind)
	}
}
