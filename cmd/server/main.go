package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"tripmate-backend/config"
	"tripmate-backend/database"
	"tripmate-backend/handlers"
	authmiddleware "tripmate-backend/middleware"
	"tripmate-backend/repository"
	"tripmate-backend/services"
	"tripmate-backend/storage"
)

func main() {
	logger, _ := zap.NewProduction()
	if os.Getenv("ENV") == "development" {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()
	undo := zap.ReplaceGlobals(logger)
	defer undo()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	pollRepo := repository.NewPollRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	itineraryRepo := repository.NewItineraryRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	poolRepo := repository.NewPoolRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	storageService := storage.NewSupabaseStorage(cfg.SupabaseStorageURL, cfg.SupabaseServiceRoleKey)

	var mailer services.Mailer
	if cfg.SMTPHost != "" {
		smtpPort, err := strconv.Atoi(cfg.SMTPPort)
		if err != nil {
			logger.Fatal("Invalid SMTP_PORT", zap.String("value", cfg.SMTPPort))
		}
		mailer = services.NewSMTPMailer(cfg.SMTPHost, smtpPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SenderEmail)
	} else {
		mailer = services.NewNoopMailer()
	}

	notificationService := services.NewNotificationService(notificationRepo)
	groupService := services.NewGroupService(db, groupRepo, userRepo, notificationService, mailer, cfg.AppBaseURL)
	expenseService := services.NewExpenseService(db, expenseRepo, groupRepo, notificationService, storageService, cfg.ReceiptsBucket)
	settlementService := services.NewSettlementService(expenseRepo, groupRepo, userRepo)
	pollService := services.NewPollService(db, pollRepo, groupRepo, notificationService)
	taskService := services.NewTaskService(db, taskRepo, groupRepo, notificationService)
	itineraryService := services.NewItineraryService(itineraryRepo, groupRepo)
	noteService := services.NewNoteService(noteRepo, groupRepo)
	poolService := services.NewPoolService(poolRepo, groupRepo, notificationService)
	receiptService := services.NewReceiptService(groupRepo, storageService, cfg.GeminiAPIKey, cfg.ReceiptsBucket, cfg.DocumentsBucket)

	authMiddleware := authmiddleware.NewAuthMiddleware(cfg.SupabaseJWTSecret, cfg.SupabaseURL)

	h := handlers.NewHandlers(
		groupService,
		expenseService,
		settlementService,
		pollService,
		taskService,
		itineraryService,
		noteService,
		poolService,
		notificationService,
		receiptService,
	)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(authmiddleware.ZapLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(authmiddleware.SecurityHeaders)
	r.Use(authmiddleware.MaxBodySize(cfg.MaxBodySize))
	if cfg.Env == "production" {
		r.Use(authmiddleware.StrictTransportSecurity)
	}

	corsOptions := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	r.Use(cors.Handler(corsOptions))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Use(httprate.LimitByIP(services.GeneralRateLimit, 1*time.Minute))

		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(services.AIRateLimit, 1*time.Minute))
			r.Post("/groups/{groupID}/scan-receipt", h.ScanReceipt)
		})

		h.RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
