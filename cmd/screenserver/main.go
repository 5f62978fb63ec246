// Command screenserver is the thin HTTP front door over the screening
// pipeline (§1: out of scope beyond interface wiring — the core logic lives
// entirely in pkg/pipeline and its collaborators).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/vigilcore/sentry/pkg/audit"
	"github.com/vigilcore/sentry/pkg/cache"
	"github.com/vigilcore/sentry/pkg/config"
	"github.com/vigilcore/sentry/pkg/logging"
	"github.com/vigilcore/sentry/pkg/morph"
	"github.com/vigilcore/sentry/pkg/normalize"
	"github.com/vigilcore/sentry/pkg/pipeline"
	"github.com/vigilcore/sentry/pkg/search"
	"github.com/vigilcore/sentry/pkg/signals"
)

func main() {
	log := logging.New(os.Getenv("SCREEN_VERBOSE") == "true")

	cfg, err := config.Load(envOr("SCREEN_PROFILE", "balanced"), os.Getenv("SCREEN_CONFIG_PATH"))
	if err != nil {
		log.Error(err, "failed to load screening config")
		os.Exit(1)
	}

	sanctionedCache := signals.NewSanctionedIDCache()
	if snapshot := os.Getenv("SCREEN_SANCTIONED_ID_SNAPSHOT"); snapshot != "" {
		if err := sanctionedCache.LoadSnapshot(snapshot); err != nil {
			log.Error(err, "failed to load sanctioned-ID snapshot", "path", snapshot)
		}
	}

	var resultCache *cache.ResultCache
	if addr := os.Getenv("SCREEN_REDIS_ADDR"); addr != "" {
		resultCache = cache.New(redis.NewClient(&redis.Options{Addr: addr}), cache.DefaultTTL)
	}

	var embedder search.EmbeddingProvider
	if os.Getenv("SCREEN_DISABLE_EMBEDDINGS") != "true" {
		embedder = search.NewLocalEmbedderGraceful(search.DefaultLocalEmbedderConfig())
	}

	var vectorIndex search.VectorIndex
	if embedder != nil {
		if idx, err := search.NewChromemVectorIndex(embedder); err != nil {
			log.Error(err, "vector index unavailable, continuing lexical-only")
		} else {
			vectorIndex = idx
		}
	}

	acIndex := search.NewInMemoryACIndex(nil, 3)

	auditSink := newAuditSink(os.Getenv("SCREEN_AUDIT_DB_DSN"), log)

	watchReloadSignal(sanctionedCache, log)

	p := pipeline.NewPipeline(cfg)
	p.NormalizeConfig = normalize.DefaultConfig()
	p.SanctionedCache = sanctionedCache
	p.SearchEngine = search.NewEngine(acIndex, vectorIndex, cfg)
	p.Embedder = embedder
	p.Analyzer = morph.Default()
	p.Logger = log

	app := fiber.New()

	app.Post("/v1/screen", func(c fiber.Ctx) error {
		var req pipeline.Request
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		ctx, cancel := context.WithTimeout(c.Context(), requestTimeout(cfg))
		defer cancel()

		useCache := resultCache != nil && req.Options.CacheResult
		var cacheKey string
		if useCache {
			cacheKey = cache.Key(req.Text, string(req.Language), req.Options.GenerateVariants, req.Options.GenerateEmbeddings)
			var cached pipeline.Response
			if resultCache.Get(ctx, cacheKey, &cached) {
				return c.JSON(cached)
			}
		}

		resp := p.Process(ctx, req)
		if useCache {
			if err := resultCache.Set(ctx, cacheKey, resp); err != nil {
				log.Error(err, "failed to store result in cache")
			}
		}
		if err := auditSink.Record(ctx, req.Text, resp.Decision, time.Now()); err != nil {
			log.Error(err, "failed to write decision audit record")
		}
		return c.JSON(resp)
	})

	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})

	addr := envOr("SCREEN_LISTEN_ADDR", ":8080")
	log.Info("starting screening server", "addr", addr)
	if err := app.Listen(addr); err != nil {
		log.Error(err, "server exited")
		os.Exit(1)
	}
}

// newAuditSink connects to dsn and prepares the decision-audit table, logging
// a warning and returning a nil-backed Sink (a documented no-op) if dsn is
// empty or the connection fails.
func newAuditSink(dsn string, log logr.Logger) *audit.Sink {
	if dsn == "" {
		return audit.NewSink(nil)
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Error(err, "decision audit sink unavailable, continuing without it")
		return audit.NewSink(nil)
	}
	sink := audit.NewSink(pool)
	if err := sink.EnsureSchema(context.Background()); err != nil {
		log.Error(err, "decision audit schema setup failed, continuing without it")
		return audit.NewSink(nil)
	}
	return sink
}

// watchReloadSignal re-reads the sanctioned-ID snapshot (or Postgres source)
// on SIGHUP without restarting the process, per §5's hot-swap requirement.
func watchReloadSignal(sanctionedCache *signals.SanctionedIDCache, log logr.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP)
	go func() {
		for range sig {
			log.Info("reloading sanctioned-ID cache", "reason", "SIGHUP")
			if err := sanctionedCache.Reload(context.Background()); err != nil {
				log.Error(err, "sanctioned-ID cache reload failed")
			}
		}
	}()
}

func requestTimeout(cfg *config.ScreeningConfig) time.Duration {
	if cfg == nil || cfg.MaxLatencyThresholdMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(cfg.MaxLatencyThresholdMs) * time.Millisecond
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
