package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/insightsales/insightsales/internal/api"
	"github.com/insightsales/insightsales/internal/archive"
	"github.com/insightsales/insightsales/internal/auth"
	"github.com/insightsales/insightsales/internal/config"
	"github.com/insightsales/insightsales/internal/history"
	"github.com/insightsales/insightsales/internal/llm"
	"github.com/insightsales/insightsales/internal/maintenance"
	"github.com/insightsales/insightsales/internal/nlquery"
	"github.com/insightsales/insightsales/internal/observability"
	"github.com/insightsales/insightsales/internal/sqlexec"
	"github.com/insightsales/insightsales/internal/sqlguard"
	"github.com/insightsales/insightsales/internal/store"
	duckdbstore "github.com/insightsales/insightsales/internal/store/duckdb"
	postgresstore "github.com/insightsales/insightsales/internal/store/postgres"
	s3store "github.com/insightsales/insightsales/internal/storage/s3"
)

// dataStore is the slice of a store implementation the server wires up:
// query execution, schema introspection, and the raw handle for the
// history repository.
type dataStore interface {
	store.Store
	DB() *sql.DB
	Close() error
}

func main() {
	cfg, err := config.LoadFromEnv("insightsales-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	salesStore, err := openStore(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = salesStore.Close() }()

	generator, err := newGenerator(context.Background(), cfg, salesStore, logger)
	if err != nil {
		logger.Error("failed to initialize sql generator", slog.Any("error", err))
		os.Exit(1)
	}

	deps := api.Dependencies{
		Logger: logger,
		Orchestrator: &nlquery.Orchestrator{
			Generator:  generator,
			Validator:  sqlguard.Validator{},
			Executor:   sqlexec.NewGateway(salesStore),
			MaxRetries: cfg.Query.MaxRetries,
			MaxRows:    cfg.Query.MaxRows,
			Logger:     logger,
		},
		Schema:  salesStore,
		History: history.NewRepository(salesStore.DB()),
		Readiness: api.CombineReadinessChecks(
			salesStore.Ping,
			api.CheckStoreConfig(cfg),
			api.CheckArchiveConfig(cfg),
		),
		DependencyTimeout: time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Archive.Enabled {
		objectStore, err := s3store.New(context.Background(), s3store.Config{
			Endpoint:         cfg.Archive.Endpoint,
			Region:           cfg.Archive.Region,
			Bucket:           cfg.Archive.Bucket,
			AccessKeyID:      cfg.Archive.AccessKeyID,
			SecretAccessKey:  cfg.Archive.SecretAccessKey,
			UseSSL:           cfg.Archive.UseSSL,
			AutoCreateBucket: cfg.Archive.AutoCreateBucket,
		})
		if err != nil {
			logger.Error("failed to initialize archive store", slog.Any("error", err))
			os.Exit(1)
		}
		// The writer and the retention sweep share one prefix so retention
		// only ever deletes what the writer produced.
		deps.Archiver = &archive.Writer{Store: objectStore, Prefix: cfg.Archive.Prefix}

		retention := &maintenance.Service{
			Store: objectStore,
			Config: maintenance.Config{
				RetentionInterval: cfg.Archive.RetentionInterval,
				RetentionMaxAge:   cfg.Archive.RetentionMaxAge,
				Prefix:            cfg.Archive.Prefix,
			},
			Logger: logger,
		}
		deps.Maintenance = retention
		go func() {
			if err := retention.Run(ctx); err != nil {
				logger.Error("retention loop stopped", slog.Any("error", err))
			}
		}()
	}

	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg config.Config) (dataStore, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return postgresstore.Open(ctx, postgresstore.Config{
			DSN:             cfg.Store.DSN,
			MaxOpenConns:    cfg.Store.MaxOpenConns,
			MaxIdleConns:    cfg.Store.MaxIdleConns,
			ConnMaxIdleTime: cfg.Store.ConnMaxIdleTime,
			ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
		})
	case "duckdb":
		return duckdbstore.Open(cfg.Store.Path)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// newGenerator builds the configured LLM client. When schema-in-prompt is
// on, a failed introspection downgrades to a schemaless prompt instead of
// blocking startup.
func newGenerator(ctx context.Context, cfg config.Config, schema api.SchemaSource, logger *slog.Logger) (llm.Generator, error) {
	systemPrompt := ""
	if cfg.LLM.SchemaInPrompt {
		tables, err := schema.Tables(ctx)
		if err != nil {
			logger.Warn("schema introspection failed, continuing without schema prompt", slog.Any("error", err))
		} else {
			systemPrompt = llm.BuildSchemaPrompt(tables)
		}
	}

	switch cfg.LLM.Provider {
	case "openai":
		baseURL := cfg.LLM.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com"
		}
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL:      baseURL,
			APIKey:       cfg.LLM.APIKey,
			Model:        cfg.LLM.Model,
			Temperature:  cfg.LLM.Temperature,
			MaxTokens:    cfg.LLM.MaxTokens,
			Timeout:      cfg.LLM.Timeout,
			SystemPrompt: systemPrompt,
		})
	default:
		return llm.NewOllamaClient(llm.OllamaConfig{
			BaseURL:      cfg.LLM.BaseURL,
			Model:        cfg.LLM.Model,
			Temperature:  cfg.LLM.Temperature,
			MaxTokens:    cfg.LLM.MaxTokens,
			Timeout:      cfg.LLM.Timeout,
			SystemPrompt: systemPrompt,
		}), nil
	}
}
