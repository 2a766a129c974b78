package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Harshitk-cp/fabric/internal/api/handlers"
	mw "github.com/Harshitk-cp/fabric/internal/api/middleware"
	"github.com/Harshitk-cp/fabric/internal/config"
	"github.com/Harshitk-cp/fabric/internal/domain"
	"github.com/Harshitk-cp/fabric/internal/llm"
	"github.com/Harshitk-cp/fabric/internal/service"
	"github.com/Harshitk-cp/fabric/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the router and the service layer for lifecycle management.
type App struct {
	Router       *chi.Mux
	Beliefs      *service.BeliefService
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	beliefSystemStore := store.NewBeliefSystemStore(db)
	statementStore := store.NewStatementStore(db)
	simulationStore := store.NewSimulationStore(db)

	// LLM client via provider factory
	llmProvider := config.LLMProvider()
	llmClient, err := llm.NewClient(llmProvider, config.LLMAPIKey())
	if err != nil {
		logger.Warn("LLM client initialization failed", zap.String("provider", llmProvider), zap.Error(err))
	} else {
		logger.Info("LLM client initialized", zap.String("provider", llmProvider))
	}

	// Services
	beliefSvc := service.NewBeliefService(beliefSystemStore, statementStore, simulationStore, config.MaxInferencePasses(), logger)
	translationSvc := service.NewTranslationService(llmClient)

	// Handlers
	beliefHandler := handlers.NewBeliefHandler(beliefSvc)
	translateHandler := handlers.NewTranslateHandler(translationSvc)

	r := chi.NewRouter()

	// Initialize app with metrics tracking
	app := &App{
		Router:    r,
		Beliefs:   beliefSvc,
		startTime: time.Now(),
	}

	// Metrics collector for middleware
	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)                                                 // Generate/extract request ID first
	r.Use(middleware.RealIP)                                            // Extract real IP
	r.Use(metricsCollector.Middleware)                                  // Collect metrics
	r.Use(mw.Logging(logger))                                           // Log all requests
	r.Use(middleware.Recoverer)                                         // Recover from panics
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst())) // Rate limiting

	// Health
	r.Get("/health", healthHandler(db))

	// Metrics
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		// Belief systems
		r.Route("/belief-systems", func(r chi.Router) {
			r.Post("/", beliefHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", beliefHandler.GetByID)
				r.Post("/rules", beliefHandler.AddRule)
				r.Post("/simulate", beliefHandler.Simulate)
				r.Get("/statements", beliefHandler.Statements)
				r.Get("/contradictions", beliefHandler.Contradictions)
				r.Get("/simulations", beliefHandler.History)
			})
		})

		// Natural language translation
		r.Route("/translate", func(r chi.Router) {
			r.Post("/rule", translateHandler.Rule)
			r.Post("/statement", translateHandler.Statement)
		})
	})

	return app
}

// NewRouter returns just the chi.Mux for callers that manage lifecycle themselves.
func NewRouter(db *pgxpool.Pool, logger *zap.Logger) *chi.Mux {
	return NewApp(db, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.BeliefSystemStore = (*store.BeliefSystemStore)(nil)
	_ domain.StatementStore    = (*store.StatementStore)(nil)
	_ domain.SimulationStore   = (*store.SimulationStore)(nil)
	_ service.Parser           = (*llm.OpenAIClient)(nil)
	_ service.Parser           = (*llm.AnthropicClient)(nil)
	_ service.Parser           = (*llm.MockClient)(nil)
)
