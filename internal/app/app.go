// Package app wires configuration, upstream clients and services together
// for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"mealmate/internal/advisor"
	"mealmate/internal/api"
	"mealmate/internal/companion"
	"mealmate/internal/config"
	"mealmate/internal/database"
	"mealmate/internal/httpclient"
	"mealmate/internal/llm"
	"mealmate/internal/metrics"
	"mealmate/internal/planner"
	"mealmate/internal/sentiment"
	"mealmate/internal/session"
	"mealmate/internal/shopping"
	"mealmate/internal/spoonacular"
	"mealmate/internal/telegram"
	"mealmate/internal/tmdb"
	"mealmate/internal/trivia"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the application's dependencies.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
	in     io.Reader

	collector    *metrics.Collector
	db           *database.DB
	metricsStore *metrics.Store
	redis        *redis.Client
	sessions     session.Store
	tokens       *session.Tokens

	planner   *planner.Service
	shopping  *shopping.Compiler
	companion *companion.Service
	trivia    *trivia.Generator

	closers []io.Closer
}

// New builds the application from cfg. Close releases what it opened.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		cfg:       cfg,
		logger:    logger,
		out:       os.Stdout,
		in:        os.Stdin,
		collector: metrics.NewCollector(),
	}

	db, err := database.NewDB(cfg.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db
	a.metricsStore = metrics.NewStore(db.SQL)
	a.closers = append(a.closers, db)

	textGen, err := a.newTextGenerator(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	metered := llm.NewMetered(textGen, logger, a.metricsStore, a.collector)

	recipes := spoonacular.NewClient(cfg.SpoonacularAPIKey, cfg.HTTPTimeout,
		spoonacular.WithHTTPClient(a.upstream("spoonacular", httpclient.WithRateLimit(5, 5))))
	media := tmdb.NewClient(cfg.TMDBAPIKey, cfg.HTTPTimeout,
		tmdb.WithHTTPClient(a.upstream("tmdb", httpclient.WithRateLimit(20, 10))))

	var classifier advisor.Classifier
	if cfg.HFAPIToken != "" {
		classifier = sentiment.NewClient(cfg.HFAPIToken, cfg.HFSentimentModel, cfg.HTTPTimeout,
			sentiment.WithHTTPClient(a.upstream("huggingface")))
	} else {
		logger.Info("HF_API_TOKEN not set, mood analysis disabled")
	}

	a.planner = planner.NewService(recipes, advisor.NewMoodAdvisor(classifier, logger), logger)
	a.shopping = shopping.NewCompiler(recipes, recipes, logger)
	a.companion = companion.NewService(media, recipes, metered, logger)
	a.trivia = trivia.NewGenerator(metered, logger)

	a.sessions = session.NewMemoryStore(cfg.SessionTTL)
	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		a.sessions = session.NewRedisStore(a.redis, cfg.SessionTTL)
		a.closers = append(a.closers, a.redis)
		logger.Info("using redis session store", zap.String("addr", cfg.RedisAddr))
	}
	a.tokens = session.NewTokens(cfg.SessionSecret, cfg.SessionTTL)

	return a, nil
}

func (a *App) upstream(service string, opts ...httpclient.Option) *httpclient.Client {
	opts = append(opts, httpclient.WithObserver(a.collector.ObserveUpstream))
	return httpclient.New(service, a.cfg.HTTPTimeout, opts...)
}

func (a *App) newTextGenerator(ctx context.Context) (llm.TextGenerator, error) {
	switch a.cfg.LLMProvider {
	case config.ProviderGemini:
		client, err := llm.NewGeminiClient(ctx, a.cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		a.closers = append(a.closers, client)
		return client, nil
	default:
		return llm.NewGroqClient(a.cfg.GroqAPIKey, a.cfg.HTTPTimeout,
			llm.WithGroqHTTPClient(a.upstream("groq", httpclient.WithRateLimit(2, 4)))), nil
	}
}

// APIServices returns the collaborators of the HTTP API.
func (a *App) APIServices() api.Services {
	return api.Services{
		Planner:   a.planner,
		Shopping:  a.shopping,
		Companion: a.companion,
		Trivia:    a.trivia,
		Sessions:  a.sessions,
		Tokens:    a.tokens,
		Collector: a.collector,
		Health:    a.health,
	}
}

// BotDeps returns the collaborators of the Telegram bot.
func (a *App) BotDeps() telegram.Deps {
	return telegram.Deps{
		Planner:  a.planner,
		Shopping: a.shopping,
		Trivia:   a.trivia,
		Sessions: a.sessions,
		Usage:    a.metricsStore,
	}
}

func (a *App) health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := a.db.SQL.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if rs, ok := a.sessions.(*session.RedisStore); ok {
		if err := rs.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// SweepSessions drops expired in-memory sessions every interval until ctx is
// done. Redis expires keys itself.
func (a *App) SweepSessions(ctx context.Context, interval time.Duration) {
	ms, ok := a.sessions.(*session.MemoryStore)
	if !ok {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := ms.Sweep(); n > 0 {
				a.logger.Debug("expired sessions removed", zap.Int("count", n))
			}
		}
	}
}

// Close releases databases, clients and connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
