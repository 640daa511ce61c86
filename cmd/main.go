package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sheet-scanner/config"
	api "sheet-scanner/internal/api/http"
	"sheet-scanner/internal/api/telegram"
	"sheet-scanner/internal/container"
	"sheet-scanner/internal/infrastructure/artifact"
	"sheet-scanner/internal/infrastructure/storage"
	"sheet-scanner/internal/infrastructure/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	params, err := scannerParams(cfg)
	if err != nil {
		log.Fatalf("Invalid scanner params: %v", err)
	}

	store, err := artifact.NewDirStore(cfg.ArtifactDir)
	if err != nil {
		log.Fatalf("Failed to create artifact store: %v", err)
	}

	// Создаём хранилище пользователей
	userRepo := storage.NewMemoryUserRepository()

	// Собираем сервисы приложения
	appContainer := container.New(userRepo, vision.NewGoCVScanner(params), store, cfg.ScanTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}
		go func() {
			log.Println("Bot is running...")
			if err := bot.Run(ctx); err != nil {
				log.Printf("Bot error: %v", err)
			}
		}()
	} else {
		log.Println("TELEGRAM_TOKEN is not set, bot is disabled")
	}

	handler := api.NewHandler(appContainer.SheetService, appContainer.Artifacts, cfg.MaxUploadBytes)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on %s (policy %s, %d choices)", cfg.HTTPAddr, params.Policy, params.ChoiceCount)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}

// scannerParams переносит настройки из конфигурации в параметры распознавания
func scannerParams(cfg *config.Config) (vision.Params, error) {
	params := vision.DefaultParams()
	params.TargetHeight = cfg.TargetHeight
	params.ChoiceCount = cfg.ChoiceCount
	params.FillThreshold = cfg.FillThreshold
	params.HighlightColor = cfg.HighlightColor

	policy, err := vision.ParsePolicy(cfg.SelectionPolicy)
	if err != nil {
		return params, err
	}
	params.Policy = policy

	return params, params.Validate()
}
