package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"transcript-analyzer/internal/llm"
	"transcript-analyzer/internal/llm/anthropic"
	"transcript-analyzer/internal/llm/gemini"
	"transcript-analyzer/internal/llm/openai"
	"transcript-analyzer/internal/services/health"
	"transcript-analyzer/internal/shared/config"
	"transcript-analyzer/internal/shared/metrics"
	"transcript-analyzer/internal/shared/server"
	"transcript-analyzer/internal/shared/storage/db"
	"transcript-analyzer/internal/shared/storage/object"
	localstore "transcript-analyzer/internal/shared/storage/object/local"
	s3store "transcript-analyzer/internal/shared/storage/object/s3"
	"transcript-analyzer/internal/shared/telemetry"
	"transcript-analyzer/internal/transcripts"
)

// DefaultOpenAIModel is used for OpenAI when neither LLM_MODEL nor OPENAI_MODEL is set.
const DefaultOpenAIModel = "gpt-4o-2024-08-06"

// App holds shared dependencies.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Repo    transcripts.Repo
	Service *transcripts.Service
	Handler *transcripts.Handler
	Metrics *metrics.Recorder
}

// Build wires the LLM provider, storage backend, service and router from cfg.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	client, err := BuildLLMClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app, err := BuildCore(ctx, cfg, client)
	if err != nil {
		return nil, err
	}
	app.Handler = transcripts.NewHandler(app.Service)
	app.Router = server.NewRouter(server.RouterDeps{
		CORSAllowOrigins: cfg.CORSAllowOrigin,
		Metrics:          app.Metrics,
		Health:           health.NewService(),
		Handlers:         []server.RouteRegistrar{app.Handler},
	})
	return app, nil
}

// BuildCore builds storage and the analysis service around an existing client,
// without any HTTP wiring.
func BuildCore(ctx context.Context, cfg config.Config, client llm.Client) (*App, error) {
	repo, sqlDB, err := BuildRepo(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rec := metrics.NewRecorder()
	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Repo:    repo,
		Metrics: rec,
		Service: transcripts.NewService(client, repo, rec),
	}
	telemetry.Info("bootstrap.ready", map[string]any{
		"llm_provider": cfg.LLMProvider,
		"repo_backend": cfg.RepoBackend,
		"env":          cfg.Env,
	})
	return app, nil
}

// Close releases the database pool, if any.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// BuildLLMClient selects the completion provider named by cfg.LLMProvider.
func BuildLLMClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	model := strings.TrimSpace(cfg.LLMModel)
	switch cfg.LLMProvider {
	case "offline":
		return llm.OfflineClient{}, nil
	case "anthropic":
		opts := []anthropic.Option{
			anthropic.WithAPIKey(cfg.AnthropicAPIKey),
			anthropic.WithMaxRetries(cfg.LLMMaxRetries),
		}
		if model != "" {
			opts = append(opts, anthropic.WithModel(model))
		}
		if cfg.LLMBaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.LLMBaseURL))
		}
		client, err := anthropic.NewClient(opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, model, cfg.LLMBaseURL)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "openai", "":
		if model == "" {
			model = strings.TrimSpace(cfg.OpenAIModel)
		}
		if model == "" {
			model = DefaultOpenAIModel
		}
		var opts []openai.Option
		if cfg.LLMBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.LLMBaseURL))
		}
		client, err := openai.NewClient(cfg.OpenAIAPIKey, model, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

// BuildRepo opens the storage backend named by cfg.RepoBackend and runs
// migrations for SQL backends. The returned *sql.DB is nil for non-SQL backends.
func BuildRepo(ctx context.Context, cfg config.Config) (transcripts.Repo, *sql.DB, error) {
	switch cfg.RepoBackend {
	case "memory", "":
		return transcripts.NewMemoryRepo(), nil, nil
	case "postgres":
		return openSQLRepo(ctx, db.Postgres, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	case "sqlite":
		return openSQLRepo(ctx, db.SQLite, cfg.SQLitePath, db.OptionsFromEnv(db.SQLiteOptions()))
	case "object":
		store, err := buildStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return transcripts.NewObjectRepo(store), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown repo backend %q", cfg.RepoBackend)
	}
}

func openSQLRepo(ctx context.Context, dialect db.Dialect, dsn string, opts db.Options) (transcripts.Repo, *sql.DB, error) {
	sqlDB, err := db.Connect(ctx, dialect, dsn, opts)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
		return nil, nil, errors.Join(err, sqlDB.Close())
	}
	return transcripts.NewSQLRepo(sqlDB, dialect), sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}
