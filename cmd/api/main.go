package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/chatdiary/chatdiary-go/internal/ai"
	"github.com/chatdiary/chatdiary-go/internal/config"
	"github.com/chatdiary/chatdiary-go/internal/handler"
	"github.com/chatdiary/chatdiary-go/internal/middleware"
	"github.com/chatdiary/chatdiary-go/internal/repository"
	"github.com/chatdiary/chatdiary-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabasePath)
	if err != nil {
		slog.Error("opening database failed", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// A missing AI credential disables analysis features but the rest of the
	// app (login, history, chart data) keeps working.
	aiClient, err := ai.NewClient(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
	if err != nil {
		slog.Error("creating ai client failed", "error", err)
		os.Exit(1)
	}
	if !aiClient.Configured() {
		slog.Warn("AI_API_KEY not set — diary chat and analysis are disabled")
	}

	userRepo := repository.NewUserRepository(db)
	entryRepo := repository.NewEntryRepository(db)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	diaryService := service.NewDiaryService(entryRepo, aiClient)

	authHandler := handler.NewAuthHandler(authService)
	diaryHandler := handler.NewDiaryHandler(diaryService)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Post("/api/v1/auth/register", authHandler.HandleRegister)
		r.Post("/api/v1/auth/login", authHandler.HandleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))
		r.Get("/api/v1/auth/me", authHandler.HandleMe)

		r.Post("/api/v1/diary/chat", diaryHandler.HandleChat)
		r.Post("/api/v1/diary/analyze", diaryHandler.HandleAnalyze)
		r.Post("/api/v1/diary/entries", diaryHandler.HandleSaveEntry)
		r.Get("/api/v1/diary/entries", diaryHandler.HandleListEntries)
		r.Get("/api/v1/diary/entries/{entry_id}", diaryHandler.HandleGetEntry)
		r.Get("/api/v1/diary/emotions", diaryHandler.HandleEmotionSeries)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
