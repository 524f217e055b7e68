package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"alfredoptarigan/career-roadmap/internal/config"
	"alfredoptarigan/career-roadmap/internal/handlers"
	"alfredoptarigan/career-roadmap/internal/logger"
	"alfredoptarigan/career-roadmap/internal/metrics"
	"alfredoptarigan/career-roadmap/internal/repositories"
	"alfredoptarigan/career-roadmap/internal/services"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("✅ Config loaded successfully")

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatal("❌ Failed to initialize database", "error", err)
	}

	docRepo := repositories.NewDocumentRepository(db)
	runRepo := repositories.NewRunRepository(db)
	log.Info("✅ Repositories initialized successfully")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	storageService := services.NewStorageService(cfg.Storage.OutputDir, cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatal("❌ Failed to create upload directory", "error", err)
	}
	pdfParser := services.NewPDFParserService()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gemini, err := services.NewGeminiService(ctx, cfg.Gemini)
	if err != nil {
		log.Fatal("❌ Failed to initialize Gemini AI", "error", err)
	}
	log.Info("✅ Gemini AI initialized successfully", "model", cfg.Gemini.Model, "evalModel", cfg.Gemini.EvalModel)

	stageOpts := []services.StagesOption{services.WithStageMetrics(m)}
	if cfg.Qdrant.Enabled {
		qdrant, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
		if err != nil {
			log.Fatal("❌ Failed to initialize Qdrant", "error", err)
		}
		if err := qdrant.InitCollection(ctx); err != nil {
			log.Fatal("❌ Failed to initialize Qdrant collection", "error", err)
		}
		stageOpts = append(stageOpts, services.WithResources(services.NewResourceRetriever(gemini, qdrant, 5)))
		log.Info("✅ Qdrant initialized successfully", "collection", cfg.Qdrant.Collection)
	}

	caller := services.NewCaller(gemini, cfg.RateLimit, log, services.WithCallerMetrics(m))
	stages := services.NewStages(caller, cfg.Gemini, log, stageOpts...)
	pipeline := services.NewPipeline(
		stages,
		storageService,
		cfg.RateLimit,
		cfg.Fallback,
		log,
		services.WithPipelineMetrics(m),
		services.WithPDFParser(pdfParser),
	)
	log.Info("✅ Services initialized successfully")

	worker := services.NewWorker(runRepo, pipeline, cfg.Worker, log)
	worker.Start(ctx)

	runHandler := handlers.NewRunHandler(runRepo, worker, stages)
	stageHandler := handlers.NewStageHandler(stages)
	cvHandler := handlers.NewCVHandler(runHandler, docRepo, storageService, pdfParser, stages, cfg.Storage.MaxFileSize)
	log.Info("✅ Handlers initialized")

	app := fiber.New(fiber.Config{
		AppName:      "Career Roadmap API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := app.Group("/api/v1")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/runs", runHandler.HandleCreate)
	api.Get("/runs/:id", runHandler.HandleGet)
	api.Post("/runs/:id/ask", runHandler.HandleAsk)
	api.Post("/runs/:id/cv", cvHandler.HandleAnalyze)

	api.Post("/skills", stageHandler.HandleSkills)
	api.Post("/roadmap", stageHandler.HandleRoadmap)
	api.Post("/evaluate", stageHandler.HandleEvaluate)
	api.Post("/ask", stageHandler.HandleAsk)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Career Roadmap API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/runs",
				"GET /api/v1/runs/:id",
				"POST /api/v1/runs/:id/ask",
				"POST /api/v1/runs/:id/cv",
				"POST /api/v1/skills",
				"POST /api/v1/roadmap",
				"POST /api/v1/evaluate",
				"POST /api/v1/ask",
				"GET /metrics",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		shutdown(cancel, worker, app, log)
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("🚀 Server starting", "addr", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatal("❌ Failed to start server", "error", err)
	}
}

// shutdown cancels in-flight runs before waiting for the worker to drain.
func shutdown(cancel context.CancelFunc, worker services.Worker, app *fiber.App, log *logger.Logger) {
	log.Info("🛑 Shutting down server...")
	cancel()
	worker.Stop()
	if err := app.Shutdown(); err != nil {
		log.Error("❌ Server forced to shutdown", "error", err)
	}
}
