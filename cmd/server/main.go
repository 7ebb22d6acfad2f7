package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maternalrisk/internal/config"
	"maternalrisk/internal/handler"
	"maternalrisk/internal/logger"
	"maternalrisk/internal/service"
	"maternalrisk/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Service)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	zl.Info("Maternal risk intake service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Session hand-off storage
	kv, closeKV, err := newSessionStore(cfg, zl)
	if err != nil {
		zl.Fatal("Failed to initialize session store", zap.Error(err))
	}
	defer closeKV()

	// Transcript parsing collaborator
	builtinParser := newBuiltinParser(cfg, zl)
	var voiceParser service.FieldParser = builtinParser
	if cfg.Endpoints.ParseMode == config.ParseModeRemote {
		voiceParser = service.NewRemoteFieldParser(cfg.Endpoints.ParseTextURL, cfg.RemoteTimeout(), zl)
	}
	zl.Info("Voice parsing configured",
		zap.String("mode", cfg.Endpoints.ParseMode),
		zap.String("parse_url", cfg.Endpoints.ParseTextURL),
	)

	// Initialize services
	bridge := service.NewSessionBridge(kv, cfg.SessionTTL())
	classifier := service.NewPredictionClient(cfg.Endpoints.PredictURL, cfg.RemoteTimeout(), zl)
	coordinator := service.NewSubmissionCoordinator(classifier, bridge, cfg.Policy.RequireComplete, cfg.RemoteTimeout(), zl)
	interpreter := service.NewResultInterpreter(cfg.Policy.StrictLabels)
	intake := service.NewIntakeService(voiceParser, coordinator, bridge, interpreter, service.IntakeOptions{
		SessionTTL:   cfg.SessionTTL(),
		DiscardStale: cfg.Policy.StaleMerge == config.StaleMergeDiscard,
		Timeout:      cfg.RemoteTimeout(),
		SpeechLang:   cfg.Policy.SpeechLang,
	}, zl)

	zl.Info("Services initialized",
		zap.String("predict_url", cfg.Endpoints.PredictURL),
		zap.Duration("remote_timeout", cfg.RemoteTimeout()),
		zap.Bool("strict_labels", cfg.Policy.StrictLabels),
		zap.String("stale_merge", cfg.Policy.StaleMerge),
		zap.Bool("require_complete", cfg.Policy.RequireComplete),
		zap.String("rag_url", cfg.Rag.ServiceURL),
	)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		runSweeper(sweepCtx, cfg.SweepInterval(), intake, kv, zl)
	}()

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowMethods = cfg.AllowedMethods()
	corsConfig.AllowHeaders = cfg.AllowedHeaders()
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    cfg.Logging.Service,
			"sessions":   intake.Len(),
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	handler.RegisterRoutes(router,
		handler.NewIntakeHandler(intake, cfg.Session.ResultPath),
		handler.NewVoiceHandler(intake),
		handler.NewResultHandler(intake, cfg.Session.IntakePath),
		handler.NewParseHandler(builtinParser),
		handler.NewChatHandler(service.NewRagClient(cfg.Rag.ServiceURL, cfg.RagTimeout(), zl), zl),
	)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "API endpoint not found"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}
	zl.Info("Starting server", zap.String("addr", addr))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Shutting down server")
	stopSweeper()
	<-sweeperDone
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("Server shutdown failed", zap.Error(err))
	}
	zl.Info("Server stopped")
}

// newSessionStore picks the SessionBridge backend
func newSessionStore(cfg *config.Config, zl *zap.Logger) (store.KV, func(), error) {
	if cfg.Session.Backend != config.SessionBackendRedis {
		zl.Info("Using in-memory session store")
		return store.NewMemoryKV(), func() {}, nil
	}

	kv := store.NewRedisKV(store.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := kv.Ping(ctx); err != nil {
		_ = kv.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	zl.Info("Connected to Redis session store", zap.String("addr", cfg.Redis.Addr))
	return kv, func() { _ = kv.Close() }, nil
}

// runSweeper purges expired tab sessions and, for the in-memory backend,
// expired hand-off entries until ctx is cancelled. Redis expires its own keys.
func runSweeper(ctx context.Context, interval time.Duration, intake *service.IntakeService, kv store.KV, zl *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	memory, _ := kv.(*store.MemoryKV)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions := intake.Sweep(ctx)
			entries := 0
			if memory != nil {
				entries = memory.Sweep()
			}
			if sessions > 0 || entries > 0 {
				zl.Debug("Expired sessions purged",
					zap.Int("sessions", sessions),
					zap.Int("entries", entries),
				)
			}
		}
	}
}

// newBuiltinParser builds the parser behind /parse-text: keyword rules, or
// a chat model with the rules as fallback in ai mode.
func newBuiltinParser(cfg *config.Config, zl *zap.Logger) service.FieldParser {
	rules := service.NewRuleFieldParser()
	if cfg.Endpoints.ParseMode != config.ParseModeAI {
		return rules
	}

	if !cfg.OpenAI.Enabled {
		zl.Warn("PARSE_MODE=ai but OPENAI_API_KEY is not set, using keyword rules")
	} else {
		zl.Info("OpenAI client initialized",
			zap.String("api_base", cfg.OpenAI.APIBase),
			zap.String("chat_model", cfg.OpenAI.ChatModel),
		)
	}
	return service.NewAIFieldParser(service.NewOpenAIClient(&cfg.OpenAI, zl), rules, zl)
}
