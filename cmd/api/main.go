// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/teams-backend/internal/abilitycache"
	"github.com/carterperez-dev/templates/teams-backend/internal/admin"
	"github.com/carterperez-dev/templates/teams-backend/internal/auth"
	"github.com/carterperez-dev/templates/teams-backend/internal/config"
	"github.com/carterperez-dev/templates/teams-backend/internal/core"
	"github.com/carterperez-dev/templates/teams-backend/internal/dates"
	"github.com/carterperez-dev/templates/teams-backend/internal/health"
	"github.com/carterperez-dev/templates/teams-backend/internal/i18n"
	"github.com/carterperez-dev/templates/teams-backend/internal/identity"
	"github.com/carterperez-dev/templates/teams-backend/internal/invitation"
	"github.com/carterperez-dev/templates/teams-backend/internal/jobs"
	"github.com/carterperez-dev/templates/teams-backend/internal/membership"
	"github.com/carterperez-dev/templates/teams-backend/internal/middleware"
	"github.com/carterperez-dev/templates/teams-backend/internal/role"
	"github.com/carterperez-dev/templates/teams-backend/internal/server"
	"github.com/carterperez-dev/templates/teams-backend/internal/team"
	"github.com/carterperez-dev/templates/teams-backend/internal/user"
)

const (
	drainDelay = 5 * time.Second
	jobTimeout = 5 * time.Minute

	inviteRequestsPerMinute = 30
	inviteBurst             = 10
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "api",
		Short:         "Teams backend: accounts, teams and localized notices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(
		&configPath, "config", "c", "config.yaml", "path to config file",
	)

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API and background jobs",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(configPath)
			},
		},
		newKeygenCmd(&configPath),
		newLocalesCmd(&configPath),
		newMigrateCmd(&configPath),
	)

	return root
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	catalog, err := i18n.LoadCatalog(
		cfg.I18n.LocalesPath,
		cfg.I18n.DefaultLocale,
		cfg.I18n.Fallback,
	)
	if err != nil {
		return err
	}
	logger.Info("translations loaded",
		"locales", catalog.Locales(),
		"default_locale", catalog.DefaultLocale(),
		"diagnostics", cfg.I18n.Diagnostics,
	)

	translator := i18n.NewTranslator(catalog, logger, cfg.I18n.Diagnostics)
	resolver := i18n.NewResolver(cfg.I18n.DefaultLocale)

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.KeyID(),
	)

	userRepo := user.NewRepository(db.DB)
	membershipRepo := membership.NewRepository(db.DB)
	teamRepo := team.NewRepository(db.DB)
	invitationRepo := invitation.NewRepository(db.DB)

	caches := abilitycache.NewFactory(userRepo, map[string]abilitycache.Relation{
		"memberships": membershipRepo,
	})

	profileTx := user.NewProfileTx(db.DB,
		func(tx core.DBTX) user.MembershipDirectory { return membership.NewRepository(tx) },
		func(tx core.DBTX) user.TeamZones { return team.NewZones(tx) },
	)

	userSvc := user.NewService(userRepo, membershipRepo, profileTx, caches)
	membershipSvc := membership.NewService(membershipRepo, userSvc)
	teamSvc := team.NewService(teamRepo, userSvc, translator)
	invitationSvc := invitation.NewService(
		invitationRepo,
		membershipSvc,
		userSvc,
		teamSvc,
		logger,
	)
	authSvc := auth.NewService(jwtManager, userSvc, invitationSvc, redis.Client)

	identities := identity.NewMiddleware(
		userSvc,
		teamSvc,
		membershipSvc,
		resolver,
		cfg.App.DeveloperEmails,
		logger,
	)

	authHandler := auth.NewHandler(authSvc)
	userHandler := user.NewHandler(userSvc)
	membershipHandler := membership.NewHandler(membershipSvc, translator, membershipScope())
	teamHandler := team.NewHandler(teamSvc, translator, teamScope())
	invitationHandler := invitation.NewHandler(
		invitationSvc,
		teamSvc,
		translator,
		invitationScope(),
	)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
		health.Dependency{
			Name: "locales",
			Checker: health.CheckerFunc(func(context.Context) error {
				return catalog.Verify()
			}),
		},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Catalog:    catalog,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen:   true,
			BypassFunc: middleware.BypassPaths("/healthz", "/livez", "/readyz", "/metrics"),
			Logger:     logger,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/.well-known/jwks.json", jwtManager.JWKSHandler())

	inviteLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit:    middleware.PerMinute(inviteRequestsPerMinute, inviteBurst),
		FailOpen: true,
		Logger:   logger,
	})

	authenticator := middleware.Authenticator(authSvc)
	diagnostics := i18n.Diagnostics(cfg.I18n.Diagnostics)

	router.Route("/v1", func(r chi.Router) {
		r.Use(diagnostics)

		authHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator)

		invitationHandler.RegisterRoutes(r, func(next http.Handler) http.Handler {
			return authenticator(identities.Identify(next))
		})

		r.Route("/account", func(r chi.Router) {
			r.Use(authenticator)
			r.Use(identities.Identify)
			r.Use(i18n.AccountSurface)

			teamHandler.RegisterRoutes(r, identities.Team,
				membershipHandler.RegisterRoutes,
				func(r chi.Router) {
					invitationHandler.RegisterTeamRoutes(r.With(inviteLimiter.Handler))
				},
			)
		})

		adminHandler.RegisterRoutes(r,
			authenticator,
			identities.Identify,
			identities.RequireDeveloper,
		)
	})

	scheduler := jobs.NewScheduler(
		func() *identity.Context { return identity.New(userSvc, membershipSvc) },
		jobTimeout,
		logger,
	)
	teardown := jobs.NewTeamTeardown(teamSvc, 0, logger)
	if err := scheduler.Register(
		jobs.TeamTeardownName,
		cfg.Jobs.TeamTeardownSchedule,
		teardown.Run,
	); err != nil {
		return err
	}
	scheduler.Start()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	scheduler.Stop(shutdownCtx)

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// Handlers read the acting identity through these closures so the domain
// packages never import identity.
func membershipScope() membership.Scope {
	return membership.Scope{
		Actor: func(ctx context.Context) *membership.Membership {
			return identity.FromContext(ctx).Membership()
		},
		Team: func(ctx context.Context) i18n.Model {
			if t := identity.FromContext(ctx).Team(); t != nil {
				return t
			}
			return nil
		},
	}
}

func teamScope() team.Scope {
	return team.Scope{
		Member: func(ctx context.Context) (membership.Member, bool) {
			return identity.FromContext(ctx).Member()
		},
		Ability: func(ctx context.Context) *role.Ability {
			return identity.FromContext(ctx).Ability()
		},
		Team: func(ctx context.Context) *team.Team {
			return identity.FromContext(ctx).Team()
		},
		Formatter: formatterFor,
	}
}

func invitationScope() invitation.Scope {
	return invitation.Scope{
		Member: func(ctx context.Context) (membership.Member, bool) {
			return identity.FromContext(ctx).Member()
		},
		Actor: func(ctx context.Context) *membership.Membership {
			return identity.FromContext(ctx).Membership()
		},
		Team: func(ctx context.Context) *team.Team {
			return identity.FromContext(ctx).Team()
		},
		Formatter: formatterFor,
	}
}

func formatterFor(ctx context.Context) dates.Formatter {
	return identity.FromContext(ctx).Formatter()
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func loadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
