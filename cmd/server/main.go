package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"masterypath/internal/config"
	"masterypath/internal/database"
	"masterypath/internal/handlers"
	"masterypath/internal/questionbank"
	"masterypath/internal/repository"
	"masterypath/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	if cfg.QuestionBankURL == "" {
		log.Fatal("QUESTION_BANK_URL must be set")
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	studentRepo := repository.NewStudentRepository(db)
	diagRepo := repository.NewDiagnosticRepository(db)
	planRepo := repository.NewPlanRepository(db)
	testRepo := repository.NewTestRepository(db)
	watchRepo := repository.NewWatchRepository(db)

	// Question bank collaborator
	bank := questionbank.NewClient(cfg.QuestionBankURL, cfg.QuestionBankTimeout)

	// Initialize services
	authService := service.NewAuthService(studentRepo, cfg.SessionDuration, cfg.JWTSecret)
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	diagnosticService := service.NewDiagnosticService(diagRepo, bank)
	planService := service.NewPlanService(planRepo, testRepo, diagRepo, studentRepo, emailService, cfg.DefaultPassPercent)
	contentService := service.NewContentService(planRepo, bank)
	testService := service.NewTestService(testRepo, planRepo, bank, cfg.PassPercentCeiling)
	watchService := service.NewWatchService(watchRepo, planRepo, bank, cfg.VerificationIntervalSeconds, cfg.ComprehensionQuizSeconds)

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService)
	authHandler := handlers.NewAuthHandler(authService, emailService)
	diagnosticHandler := handlers.NewDiagnosticHandler(diagnosticService)
	planHandler := handlers.NewPlanHandler(planService)
	contentHandler := handlers.NewContentHandler(contentService)
	testHandler := handlers.NewTestHandler(testService)
	watchHandler := handlers.NewWatchHandler(watchService)

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)

	// Diagnostic routes
	mux.HandleFunc("POST /api/diagnostics", middleware.RequireAuth(diagnosticHandler.Start))
	mux.HandleFunc("POST /api/diagnostics/{attemptId}/submit", middleware.RequireAuth(diagnosticHandler.Submit))

	// Study plan routes
	mux.HandleFunc("POST /api/plans", middleware.RequireAuth(planHandler.Create))
	mux.HandleFunc("GET /api/plans/{planId}", middleware.RequireAuth(planHandler.Get))
	mux.HandleFunc("GET /api/chapters/{chapterId}/plan", middleware.RequireAuth(planHandler.GetForChapter))

	// Day content routes
	mux.HandleFunc("GET /api/days/{dayId}/videos", middleware.RequireAuth(contentHandler.GetVideos))
	mux.HandleFunc("POST /api/days/{dayId}/videos/{videoId}/watched", middleware.RequireAuth(contentHandler.MarkVideoWatched))
	mux.HandleFunc("POST /api/days/{dayId}/reading", middleware.RequireAuth(contentHandler.MarkReadingComplete))
	mux.HandleFunc("GET /api/days/{dayId}/practice", middleware.RequireAuth(contentHandler.GetPractice))
	mux.HandleFunc("POST /api/days/{dayId}/practice", middleware.RequireAuth(contentHandler.SubmitPractice))

	// Day test routes
	mux.HandleFunc("POST /api/days/{dayId}/test", middleware.RequireAuth(testHandler.Start))
	mux.HandleFunc("POST /api/tests/{attemptId}/submit", middleware.RequireAuth(testHandler.Submit))

	// Watch session routes
	mux.HandleFunc("POST /api/watch", middleware.RequireAuth(watchHandler.Start))
	mux.HandleFunc("POST /api/watch/{sessionId}/progress", middleware.RequireAuth(watchHandler.UpdateProgress))
	mux.HandleFunc("GET /api/watch/{sessionId}/challenge", middleware.RequireAuth(watchHandler.GetChallenge))
	mux.HandleFunc("POST /api/watch/{sessionId}/challenge", middleware.RequireAuth(watchHandler.SubmitChallenge))
	mux.HandleFunc("GET /api/watch/{sessionId}/quiz", middleware.RequireAuth(watchHandler.GetQuiz))
	mux.HandleFunc("POST /api/watch/{sessionId}/quiz/answers", middleware.RequireAuth(watchHandler.SubmitQuizAnswer))
	mux.HandleFunc("POST /api/watch/{sessionId}/quiz/dismiss", middleware.RequireAuth(watchHandler.DismissQuiz))
	mux.HandleFunc("POST /api/watch/{sessionId}/end", middleware.RequireAuth(watchHandler.End))

	// Wrap with logging middleware
	handler := middleware.LogRequests(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(authService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}

// cleanupExpiredSessions periodically removes expired auth sessions
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Failed to cleanup expired sessions: %v", err)
		}
	}
}
