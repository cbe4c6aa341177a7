package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/deckreport/internal/api"
	"github.com/dgallion1/deckreport/internal/config"
	"github.com/dgallion1/deckreport/internal/pipeline"
	"github.com/dgallion1/deckreport/internal/synth"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Config file path comes from DECKREPORT_CONFIG; env vars override it.
	cfg, err := config.Load("")
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the model client.
	client, err := synth.NewClient(synth.ProviderFromConfig(cfg))
	if err != nil {
		log.Error("create llm client", "error", err)
		os.Exit(1)
	}
	llm := synth.NewService(client, cfg.SystemPrompt, cfg.MaxTokens, synth.NewLLMStats(time.Hour), log)

	// Initialize pipeline.
	svc, err := pipeline.NewService(cfg, llm, log)
	if err != nil {
		log.Error("create pipeline", "error", err)
		os.Exit(1)
	}
	svc.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(svc, llm, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.LLMTimeout * 10,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		svc.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if c, ok := client.(*synth.ClaudeClient); ok {
			c.Close()
		}
	}()

	log.Info("starting deckreport",
		"port", cfg.Port,
		"provider", cfg.LLMProvider,
		"model", llm.Model(),
		"work_dir", cfg.WorkDir,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
