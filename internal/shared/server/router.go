package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dotupdate-backend/internal/airtable"
	"dotupdate-backend/internal/llm"
	"dotupdate-backend/internal/llm/anthropic"
	"dotupdate-backend/internal/shared/config"
	"dotupdate-backend/internal/shared/metrics"
	"dotupdate-backend/internal/shared/server/middleware"
	"dotupdate-backend/internal/shared/server/respond"
	"dotupdate-backend/internal/shared/storage/db"
	"dotupdate-backend/internal/updates"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	// Dependencies
	store := airtable.NewClient(cfg.AirtableAPIKey, cfg.AirtableBaseURL, cfg.AirtableBaseID, cfg.AirtableProjectsTable, cfg.AirtableUpdatesTable)

	var llmClient llm.Client
	if client, err := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel); err != nil {
		log.Printf("llm client unavailable: %v", err)
	} else {
		llmClient = client
	}

	prompt, err := llm.UpdatePrompt(cfg.UpdatePromptPath)
	if err != nil {
		log.Printf("failed to load prompt override, using embedded default: %v", err)
		prompt, _ = llm.UpdatePrompt("")
	}

	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, opts)
		if err != nil {
			log.Printf("failed to connect database, falling back to memory: %v", err)
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				log.Printf("failed to run migrations, falling back to memory: %v", err)
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}

	var logRepo updates.Repo
	if sqlDB != nil {
		logRepo = &updates.PGRepo{DB: sqlDB}
	} else {
		logRepo = updates.NewMemoryRepo()
	}

	svc := updates.NewService(store, llmClient, logRepo, prompt)
	handler := updates.NewHandler(svc)
	handler.RegisterRoutes(r)

	r.GET("/metrics", metrics.Handler())
	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
