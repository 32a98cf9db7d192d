package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"ragtutor/internal/adapter"
	"ragtutor/internal/adapter/blobstore"
	"ragtutor/internal/adapter/completion"
	"ragtutor/internal/adapter/embedding"
	"ragtutor/internal/adapter/extractor"
	"ragtutor/internal/adapter/quizgen"
	"ragtutor/internal/cache"
	"ragtutor/internal/chunker"
	"ragtutor/internal/config"
	"ragtutor/internal/domain"
	"ragtutor/internal/handler"
	"ragtutor/internal/knowledge"
	"ragtutor/internal/logger"
	"ragtutor/internal/middleware"
	"ragtutor/internal/service"
	"ragtutor/internal/session"
)

const studyArchitectInstruction = "You are an expert Educational Consultant and Study Architect. " +
	"Your goal is to create highly structured, realistic, and actionable learning paths. " +
	"Always provide a structured schedule (e.g., Week 1, Week 2). " +
	"Include verified external links for study materials with a header (Relevant Links: link.xyz) which should open when clicked. " +
	"Format the output in clear Markdown."

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Embedding backend
	var embedder domain.Embedder
	switch cfg.Embedding.Source {
	case "ollama":
		appLogger.Info("Initializing Ollama embedder",
			zap.String("server_url", cfg.Embedding.Ollama.ServerURL),
			zap.String("model", cfg.Embedding.Ollama.Model),
		)
		embedder, err = embedding.NewOllamaEmbedder(cfg.Embedding.Ollama.ServerURL, cfg.Embedding.Ollama.Model)
		if err != nil {
			appLogger.Fatal("Failed to create Ollama embedder", zap.Error(err))
		}
	case "openai":
		appLogger.Info("Initializing OpenAI embedder", zap.String("model", cfg.Embedding.OpenAI.Model))
		embedder, err = embedding.NewOpenAIEmbedder(cfg.Embedding.OpenAI.APIKey, cfg.Embedding.OpenAI.Model)
		if err != nil {
			appLogger.Fatal("Failed to create OpenAI embedder", zap.Error(err))
		}
	default:
		appLogger.Fatal(fmt.Sprintf("Unsupported embedding source: %s. Please check EMBEDDING_SOURCE in config.", cfg.Embedding.Source))
	}

	// Redis-backed query embedding cache
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Redis")
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	embedder = embedding.NewCachedEmbedder(embedder, cacheAdapter, cfg.Embedding.CacheTTL)

	// Blob storage for published knowledge stores
	var blobs domain.BlobStore
	if cfg.Supabase.URL != "" {
		blobs, err = blobstore.NewSupabase(cfg.Supabase.URL, cfg.Supabase.Key, cfg.Supabase.Bucket)
		if err != nil {
			appLogger.Fatal("Failed to create Supabase blob store", zap.Error(err))
		}
		appLogger.Info("Supabase blob store initialized", zap.String("bucket", cfg.Supabase.Bucket))
	} else {
		appLogger.Warn("SUPABASE_URL not set, falling back to in-memory blob store; published stores will not survive restarts")
		blobs = blobstore.NewMemory()
	}
	registry := knowledge.NewRegistry(blobs)

	// LLM clients
	chatLLM, err := completion.NewGroqCompletion(cfg.Groq.APIKey, cfg.Groq.Model, cfg.Groq.BaseURL)
	if err != nil {
		appLogger.Fatal("Failed to create chat completion client", zap.Error(err))
	}
	webLLM, err := completion.NewGeminiWebCompletion(cfg.Gemini.APIKey, cfg.Gemini.WebModel, "")
	if err != nil {
		appLogger.Fatal("Failed to create web completion client", zap.Error(err))
	}
	architectLLM, err := completion.NewGeminiWebCompletion(cfg.Gemini.APIKey, cfg.Gemini.WebModel, studyArchitectInstruction)
	if err != nil {
		appLogger.Fatal("Failed to create study architect client", zap.Error(err))
	}
	generator, err := quizgen.NewGeminiGenerator(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		appLogger.Fatal("Failed to create quiz generator", zap.Error(err))
	}

	// Services
	sessions := session.NewManager()
	documents := service.NewDocumentService(
		extractor.New(),
		chunker.New(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap),
		embedder,
		registry,
	)
	answers := service.NewAnswerService(registry, embedder, chatLLM, webLLM, cfg.Retrieval)
	quizzes := service.NewQuizService(generator)
	study := service.NewStudyService(generator, architectLLM, cfg.Docs.WebhookURL)

	// Handlers
	sessionHandler := handler.NewSessionHandler(sessions)
	documentHandler := handler.NewDocumentHandler(sessions, documents)
	chatHandler := handler.NewChatHandler(sessions, answers)
	quizHandler := handler.NewQuizHandler(sessions, quizzes)
	studyHandler := handler.NewStudyHandler(sessions, study)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    32 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	api := app.Group("/api")

	api.Post("/sessions", sessionHandler.Create)
	api.Get("/sessions/:id/history", sessionHandler.GetHistory)
	api.Delete("/sessions/:id/history", sessionHandler.ClearHistory)

	api.Post("/sessions/:id/documents", documentHandler.Upload)
	api.Post("/sessions/:id/documents/attach", documentHandler.Attach)

	api.Post("/sessions/:id/chat", chatHandler.Ask)

	api.Post("/sessions/:id/quiz", quizHandler.Start)
	api.Post("/sessions/:id/quiz/check", quizHandler.Check)
	api.Post("/sessions/:id/quiz/next", quizHandler.Advance)
	api.Get("/sessions/:id/quiz/score", quizHandler.Score)

	api.Post("/sessions/:id/summary", studyHandler.Summarize)
	api.Post("/sessions/:id/export", studyHandler.ExportDocs)
	api.Post("/learning-path", studyHandler.LearningPath)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
