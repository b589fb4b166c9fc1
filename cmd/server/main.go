package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carewise/internal/config"
	"carewise/internal/content"
	"carewise/internal/database"
	"carewise/internal/handlers"
	"carewise/internal/logger"
	"carewise/internal/metrics"
	"carewise/internal/quiz"
	"carewise/internal/remote"
	"carewise/internal/repository"
	"carewise/internal/security"
	"carewise/internal/service"
	"carewise/internal/session"
	"carewise/internal/speech"
	"carewise/internal/vault"
	"carewise/internal/web"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = 5 * time.Minute
	apiRate         = 30
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startup := handlers.NewStartup()
	m := metrics.New()

	// Record store
	startup.SetCurrentStep(handlers.StepRecordStore)
	sink, closeSink, err := openRecordSink(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()
	records := service.NewRecordSync(sink, cfg.RecordTimeout, log, m)
	startup.CompleteStep(handlers.StepRecordStore)

	// Content
	startup.SetCurrentStep(handlers.StepContent)
	library, err := content.Load()
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	bank, err := quiz.NewBank(library.Categories, library.Questions)
	if err != nil {
		return fmt.Errorf("failed to build question bank: %w", err)
	}
	log.Info("content loaded",
		zap.Int("questions", len(library.Questions)),
		zap.Int("lessons", len(library.Lessons)))
	startup.CompleteStep(handlers.StepContent)

	// Templates
	startup.SetCurrentStep(handlers.StepTemplates)
	renderer, err := web.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	startup.CompleteStep(handlers.StepTemplates)

	keys, err := security.DeriveKeys(cfg.SessionSecret)
	if err != nil {
		return fmt.Errorf("failed to derive keys: %w", err)
	}
	limiter := security.NewRateLimiter(apiRate, time.Minute)
	visitors := session.NewMemoryStore[*handlers.Visitor](cfg.VisitorTTL, handlers.ReleaseVisitor)

	synth, err := speech.NewSynthesizer(speech.SynthesizerConfig{
		AudioDir:  cfg.AudioPath,
		APIKey:    cfg.Speech.ElevenLabsAPIKey,
		VoiceID:   cfg.Speech.VoiceID,
		BaseURL:   cfg.Speech.ElevenLabsBaseURL,
		CacheSize: cfg.Speech.CacheSize,
		Timeout:   cfg.Speech.RequestTimeout,
	}, m.SpeechRequests, log)
	if err != nil {
		return fmt.Errorf("failed to initialize speech synthesizer: %w", err)
	}
	if cfg.Speech.ElevenLabsAPIKey == "" {
		log.Info("no ElevenLabs key configured, using the browser voice")
	}

	var email *service.EmailService
	if cfg.Email.FromEmail != "" {
		email, err = service.NewEmailService(ctx, cfg.Email.AWSRegion, cfg.Email.FromEmail, cfg.Email.FromName, cfg.Email.AppBaseURL, log)
		if err != nil {
			log.Warn("email delivery disabled", zap.Error(err))
			email = nil
		}
	}

	srv, err := handlers.NewServer(handlers.Options{
		Library:     library,
		Bank:        bank,
		Records:     records,
		Reports:     service.NewReportService(),
		Email:       email,
		Ledger:      vault.NewLedger(),
		Synthesizer: synth,
		Recognizer:  speech.NewRecognizer(cfg.Speech.ElevenLabsAPIKey, cfg.Speech.ElevenLabsBaseURL, cfg.Speech.RequestTimeout, nil),
		Avatar:      speech.NewAvatar(cfg.Speech.TavusAPIKey, cfg.Speech.TavusBaseURL, cfg.Speech.RequestTimeout, nil, log),
		Renderer:    renderer,
		Visitors:    visitors,
		Tokens:      security.NewVisitorTokens(keys.Visitor, cfg.VisitorTTL),
		CSRF:        security.NewCSRFGenerator(keys.CSRF),
		RateLimiter: limiter,
		Metrics:     m,
		Startup:     startup,
		Logger:      log,
		StaticDir:   cfg.StaticFilesPath,
		AudioDir:    cfg.AudioPath,
		GameTick:    cfg.GameTick,
		BaseContext: ctx,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server starting", zap.String("addr", "http://localhost"+server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		limiter.Run(gctx, time.Minute)
		return nil
	})

	g.Go(func() error {
		visitors.Run(gctx, sweepInterval)
		return nil
	})

	// The audio cache is indexed after the listener is up so /healthz can
	// report progress.
	g.Go(func() error {
		startup.SetCurrentStep(handlers.StepAudio)
		n, err := synth.IndexExisting()
		if err != nil {
			log.Warn("failed to index audio cache", zap.Error(err))
		} else {
			log.Info("audio cache indexed", zap.Int("files", n))
		}
		startup.CompleteStep(handlers.StepAudio)
		startup.MarkReady()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("graceful shutdown failed", zap.Error(err))
		}
		if err := records.Drain(shutdownCtx); err != nil {
			log.Warn("pending record writes abandoned", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}

// openRecordSink returns the configured record destination and a func that
// releases it.
func openRecordSink(ctx context.Context, cfg *config.Config, log *zap.Logger) (service.RecordSink, func(), error) {
	if cfg.RecordSink == "rest" {
		client, err := remote.NewClient(cfg.Remote.URL, cfg.Remote.AnonKey, cfg.RecordTimeout, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to configure remote record store: %w", err)
		}
		if info, err := remote.InspectKey(cfg.Remote.AnonKey); err != nil {
			log.Warn("could not read remote anon key", zap.Error(err))
		} else if info.Expired(time.Now()) {
			log.Warn("remote anon key has expired, writes will be rejected",
				zap.Time("expires_at", info.ExpiresAt))
		} else {
			log.Info("using remote record store",
				zap.String("url", cfg.Remote.URL),
				zap.String("role", info.Role))
		}
		return client, func() {}, nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Info("database connection established", zap.String("type", cfg.DatabaseType))

	if err := db.RunMigrations(ctx, log); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("migrations completed successfully")

	return repository.NewRecordRepository(db), func() { db.Close() }, nil
}
