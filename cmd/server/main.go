package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"namegame/internal/config"
	"namegame/internal/database"
	"namegame/internal/directory"
	"namegame/internal/handlers"
	"namegame/internal/jobs"
	"namegame/internal/repository"
	"namegame/internal/security"
	"namegame/internal/service"
	"namegame/internal/srs"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if cfg.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	startup := handlers.NewStartupStatus(
		handlers.StepDatabase,
		handlers.StepMigrations,
		handlers.StepRoster,
		handlers.StepServices,
		handlers.StepReady,
	)

	// Initialize database with config (supports sqlite, postgres, mysql)
	startup.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.CompleteStep(handlers.StepDatabase)

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	startup.SetCurrentStep(handlers.StepMigrations)
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	startup.CompleteStep(handlers.StepMigrations)

	log.Println("Migrations completed successfully")

	// Roster: a local file when configured, otherwise the Recurse directory
	var source directory.Source
	if cfg.DirectoryFile != "" {
		log.Printf("Serving roster from %s", cfg.DirectoryFile)
		source = directory.NewFileSource(cfg.DirectoryFile)
	} else {
		if cfg.RCToken == "" {
			log.Println("Warning: RC_TOKEN is not set, the directory will be unavailable")
		}
		source = directory.NewClient(cfg.RCAPIBase, cfg.RCToken)
	}
	roster := directory.NewCache(source, cfg.DirectoryCacheTTL)

	startup.SetCurrentStep(handlers.StepRoster)
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), 30*time.Second)
	if people, err := roster.Refresh(warmCtx); err != nil {
		log.Printf("Warning: failed to load roster at startup: %v", err)
	} else {
		log.Printf("Roster loaded: %d people", len(people))
	}
	cancelWarm()
	startup.CompleteStep(handlers.StepRoster)

	// Initialize repositories
	startup.SetCurrentStep(handlers.StepServices)
	playerRepo := repository.NewPlayerRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	// Initialize services
	keys, err := security.NewKeyring(cfg.SecretKey)
	if err != nil {
		log.Fatalf("Failed to initialize keys: %v", err)
	}
	signer := security.NewSessionSigner(keys, cfg.SessionDuration)
	authService := service.NewAuthService(playerRepo, signer)
	gameService := service.NewGameService(roster, progressRepo, srs.NewFSRS(), service.GameOptions{
		SymmetricConfusion: cfg.SymmetricConfusion,
		IdleTimeout:        cfg.SessionIdleTimeout,
	})

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	reminderService := service.NewReminderService(playerRepo, progressRepo, emailService, cfg.ReminderInterval)

	rateLimiter := security.NewRateLimiter(60, time.Minute)

	jobCfg := jobs.Config{
		Roster:         roster,
		RosterInterval: cfg.DirectoryCacheTTL,
		Sessions:       gameService,
		ReapEvery:      5 * time.Minute,
		RateLimiter:    rateLimiter,
		RateLimitPurge: 10 * time.Minute,
	}
	if cfg.RemindersEnabled() {
		jobCfg.Reminder = reminderService
		jobCfg.ReminderEvery = time.Hour
	}
	scheduler, err := jobs.New(jobCfg)
	if err != nil {
		log.Fatalf("Failed to schedule jobs: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService, security.NewCSRFGenerator(keys))
	var provider *handlers.OAuthProvider
	if cfg.OAuthEnabled() {
		provider = handlers.NewRecurseProvider(cfg.OAuthClientID, cfg.OAuthClientSecret,
			cfg.OAuthAuthorizeURL, cfg.OAuthTokenURL, cfg.OAuthUserInfoURL)
	} else {
		log.Println("OAuth not configured: players log in as guests")
	}

	srv := &handlers.Server{
		Middleware:  middleware,
		Auth:        handlers.NewAuthHandler(authService, middleware, provider, cfg.OAuthRedirectBase).WithGameSessions(gameService),
		Directory:   handlers.NewDirectoryHandler(roster),
		Game:        handlers.NewGameHandler(gameService, middleware),
		Startup:     startup,
		RateLimiter: rateLimiter,
		StaticPath:  cfg.StaticFilesPath,
	}
	startup.CompleteStep(handlers.StepServices)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:        addr,
		Handler:     srv.Routes(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()
	startup.MarkReady()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
