// Command server runs the Gatlingbook job board.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/gatlingbook/gatlingbook/internal"
	"github.com/gatlingbook/gatlingbook/internal/application"
	"github.com/gatlingbook/gatlingbook/internal/auth"
	"github.com/gatlingbook/gatlingbook/internal/config"
	schema "github.com/gatlingbook/gatlingbook/internal/db"
	"github.com/gatlingbook/gatlingbook/internal/handlers"
	"github.com/gatlingbook/gatlingbook/internal/tasks"
	"github.com/gatlingbook/gatlingbook/internal/timeline"
	"github.com/gatlingbook/gatlingbook/internal/user"
	"github.com/gatlingbook/gatlingbook/internal/views"
	"github.com/gatlingbook/gatlingbook/middlewares"
	"github.com/gatlingbook/gatlingbook/pkg/cache"
	"github.com/gatlingbook/gatlingbook/pkg/cookie"
	"github.com/gatlingbook/gatlingbook/pkg/db"
	"github.com/gatlingbook/gatlingbook/pkg/job"
	"github.com/gatlingbook/gatlingbook/pkg/logger"
	"github.com/gatlingbook/gatlingbook/pkg/mailer"
	"github.com/gatlingbook/gatlingbook/pkg/mailer/resend"
	"github.com/gatlingbook/gatlingbook/pkg/redis"
	"github.com/gatlingbook/gatlingbook/pkg/session"
	"github.com/gatlingbook/gatlingbook/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.Log, middlewares.RequestIDExtractor(), auth.UserExtractor())
	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.String("error", err.Error()))
		logger.Flush(2 * time.Second)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	if err := db.Migrate(ctx, pool, schema.Migrations(), cfg.DB.MigrationsTable, log); err != nil {
		return err
	}
	if err := job.Migrate(ctx, pool); err != nil {
		return err
	}
	sqlDB := db.SQL(pool)

	runOpts := []internal.RunOption{
		internal.Logger(log),
		internal.ShutdownTimeout(cfg.ShutdownTimeout),
	}
	checks := []internal.HealthOption{
		internal.WithReadinessCheck("postgres", db.Healthcheck(pool)),
	}

	var rdb goredis.UniversalClient
	if cfg.Redis != "" {
		rdb, err = redis.Open(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		checks = append(checks, internal.WithReadinessCheck("redis", redis.Healthcheck(rdb)))
	}

	// Sessions
	var sessions session.Store
	switch cfg.SessionStore {
	case config.SessionRedis:
		sessions = session.NewRedisStore(rdb)
	case config.SessionPostgres:
		sessions = session.NewPostgresStore(sqlDB)
	default:
		sessions = session.NewMemoryStore()
	}
	cookies, err := cookie.New(cfg.CookieSecret, cookie.WithSecure(cfg.Production()))
	if err != nil {
		return err
	}

	// Users, cached in Redis when available
	var userCache cache.Cache[*user.User] = cache.NewMemory[*user.User](cfg.UserCacheTTL, 10_000)
	if rdb != nil {
		userCache = cache.NewRedis[*user.User](rdb, "users", cfg.UserCacheTTL)
	}
	users := user.NewService(
		user.NewCachedRepository(user.NewPostgresRepository(sqlDB), userCache, cfg.UserCacheTTL),
		user.WithLimiter(user.NewLimiter(cfg.LoginAttemptsPerMinute)),
		user.WithLogger(log),
	)

	tl := timeline.NewService(timeline.NewPostgresRepository(sqlDB), log)
	apps := application.NewService(application.NewPostgresRepository(sqlDB), tl, log)

	// Resume storage is optional
	var store storage.Storage
	if cfg.S3.Enabled() {
		s3, err := storage.NewS3(cfg.S3)
		if err != nil {
			return err
		}
		store = s3
		checks = append(checks, internal.WithReadinessCheck("s3", s3.Healthcheck()))
	} else {
		log.Warn("S3 not configured, resumes are not stored")
	}

	// Mail
	var sender mailer.Sender = mailer.LogSender{Log: log}
	if cfg.Resend.APIKey != "" {
		sender = resend.New(cfg.Resend)
	} else {
		log.Warn("Resend not configured, emails are logged")
	}
	templates, err := mailer.NewRenderer(tasks.Templates())
	if err != nil {
		return err
	}
	mail := mailer.New(sender, templates, mailer.Address(cfg.Resend.SenderName, cfg.Resend.SenderEmail))

	// Background jobs
	jobs, err := job.NewManager(pool,
		job.WithTask[tasks.ApplicationPayload](tasks.NewApplicationSubmittedTask(mail, store, log)),
		job.WithScheduledTask(tasks.NewSessionCleanupTask(sessions, log)),
		job.WithMaxWorkers(cfg.JobsMaxWorkers),
		job.WithLogger(log),
	)
	if err != nil {
		return err
	}
	checks = append(checks, internal.WithReadinessCheck("jobs", jobs.Healthcheck()))

	appOpts := []internal.Option{
		internal.WithLogger(log),
		internal.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Logger(middlewares.WithLoggerSkip(func(path string) bool {
				return strings.HasPrefix(path, "/static/")
			})),
			middlewares.Recover(),
		),
		internal.WithSession(sessions, cookies, internal.WithSessionMaxAge(cfg.SessionMaxAge)),
		internal.WithRenderer(views.NewRenderer()),
		internal.WithStatic("/static", views.Assets, "static"),
		internal.WithHealthChecks(checks...),
		internal.WithJobs(jobs),
		internal.WithHandlers(handlers.New(users, tl, apps)),
	}
	if store != nil {
		appOpts = append(appOpts, internal.WithStorage(store))
	}

	if rdb != nil {
		runOpts = append(runOpts, internal.ShutdownHook(redis.Shutdown(rdb)))
	}
	runOpts = append(runOpts,
		internal.ShutdownHook(db.Shutdown(pool)),
		internal.ShutdownHook(func(context.Context) error {
			logger.Flush(2 * time.Second)
			return nil
		}),
	)

	log.Info("starting server", slog.String("addr", cfg.Addr), slog.String("env", cfg.Env))
	return internal.New(appOpts...).Run(cfg.Addr, runOpts...)
}
