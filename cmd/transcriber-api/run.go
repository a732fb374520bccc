package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apiserver "github.com/scribeline/transcriber/internal/api_server"
	"github.com/scribeline/transcriber/internal/config"
	"github.com/scribeline/transcriber/internal/events"
	"github.com/scribeline/transcriber/internal/fanout"
	handlers "github.com/scribeline/transcriber/internal/handlers/v1alpha1"
	"github.com/scribeline/transcriber/internal/service"
	"github.com/scribeline/transcriber/internal/store"
	"github.com/scribeline/transcriber/internal/transcription"
	"github.com/scribeline/transcriber/internal/transcription/gemini"
	"github.com/scribeline/transcriber/internal/worker"
	"github.com/scribeline/transcriber/pkg/log"
)

const shutdownTimeout = 30 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the transcription api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			zap.S().Fatalw("reading configuration", "error", err)
		}
		applyFlags(cfg)

		logger := log.InitLog(log.Level(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()

		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("Starting API service...")
		defer zap.S().Info("API service stopped")

		prompts, err := config.LoadPrompts(cfg.Catalog.PromptsFile)
		if err != nil {
			zap.S().Fatalw("loading prompt templates", "error", err)
		}

		if err := os.MkdirAll(cfg.Service.UploadDir, 0o755); err != nil {
			zap.S().Fatalw("creating upload directory", "error", err)
		}

		client := transcription.NewClient(transcription.Config{
			APIKey:              cfg.Gemini.APIKey,
			Model:               cfg.Gemini.Model,
			FallbackModel:       cfg.Gemini.FallbackModel,
			SupportedExtensions: cfg.Catalog.SupportedExtensions,
			PollInterval:        cfg.Gemini.PollInterval,
			Pricing: transcription.Pricing{
				InputPerMillion:  cfg.Pricing.InputPerMillion,
				OutputPerMillion: cfg.Pricing.OutputPerMillion,
			},
			Prompts: prompts,
		}, gemini.NewUpstream)

		s := store.NewStore(nil)
		defer func() { _ = s.Close() }()

		producer := events.NewEventProducer(&events.LogWriter{})
		defer func() {
			if err := producer.Close(); err != nil {
				zap.S().Errorw("failed to close event producer", "error", err)
			}
		}()

		hub := fanout.NewHub()
		jobSrv := service.NewJobService(s, client, worker.NewPool(cfg.Jobs.Workers),
			service.WithEventWriter(producer),
			service.WithMaxAge(cfg.Jobs.MaxAge),
			service.WithSweepInterval(cfg.Jobs.SweepInterval),
		)
		handler := handlers.NewServiceHandler(cfg, jobSrv, hub, service.NewFanoutNotifier(s, hub))

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		jobSrv.StartSweeper(ctx)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				return err
			}
			return apiserver.New(cfg, handler, listener).Run(gctx)
		})
		g.Go(func() error {
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				return err
			}
			return apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener).Run(gctx)
		})

		runErr := g.Wait()
		if runErr != nil {
			zap.S().Errorw("server stopped", "error", runErr)
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := jobSrv.Shutdown(shutdownCtx); err != nil {
			zap.S().Warnw("jobs still running at shutdown", "error", err)
		}

		return runErr
	},
}

func applyFlags(cfg *config.Config) {
	if address != "" {
		cfg.Service.Address = address
	}
	if metricsAddress != "" {
		cfg.Service.MetricsAddress = metricsAddress
	}
	if promptsFile != "" {
		cfg.Catalog.PromptsFile = promptsFile
	}
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
