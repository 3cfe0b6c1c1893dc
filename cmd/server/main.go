package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/shopwice/auth-service"
	"github.com/shopwice/auth-service/repository"
	"github.com/shopwice/auth-service/social"
	"github.com/shopwice/auth-service/social/providers/facebook"
	"github.com/shopwice/auth-service/social/providers/google"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"
)

type App struct {
	config *Config
	bunDB  *bun.DB
	repo   auth.RepositoryManager
	tokens auth.TokenService
	social *social.SocialAuthenticator
	srv    router.Server[*fiber.App]
	logger *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("auth-service"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := LoadConfig()
	if cfg.SigningKey == "" {
		lgr.Error("AUTH_SIGNING_KEY is required")
		os.Exit(1)
	}

	fmt.Println("============")
	fmt.Println(print.MaybeHighlightJSON(cfg))
	fmt.Println("============")

	app := &App{
		config: cfg,
		logger: lgr,
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	if err := WithAuth(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(cfg.Address)

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	sqldb, err := sql.Open(sqliteshim.ShimName, app.config.DSN)
	if err != nil {
		return err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	migrationsFS, err := fs.Sub(auth.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	migrations := migrate.NewMigrations()
	if err := migrations.Discover(migrationsFS); err != nil {
		return err
	}

	migrator := migrate.NewMigrator(db, migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}

	if group.IsZero() {
		app.GetLogger("persistence").Info("database is up to date")
	} else {
		app.GetLogger("persistence").Info("migrated database", "group", group.String())
	}

	app.bunDB = db
	app.repo = auth.NewRepositoryManager(db)

	return app.repo.Validate()
}

func WithHTTPServer(ctx context.Context, app *App) error {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: app.config.Debug,
			StrictRouting:     false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	app.srv = srv
	return nil
}

func WithAuth(ctx context.Context, app *App) error {
	cfg := app.config
	logger := serviceLogger{lgr: app.GetLogger("auth")}

	app.tokens = auth.NewTokenService(
		[]byte(cfg.SigningKey),
		time.Duration(cfg.AccessTokenTTL)*time.Second,
		time.Duration(cfg.RefreshTokenTTL)*time.Second,
		cfg.Issuer,
		cfg.GetAudience(),
		logger,
	).WithClaimsDecorator(auth.ClaimsDecoratorFunc(
		func(ctx context.Context, identity auth.Identity, claims *auth.JWTClaims) error {
			if claims.Metadata == nil {
				claims.Metadata = map[string]any{}
			}
			claims.Metadata["svc"] = "shopwice-auth"
			return nil
		},
	))

	accounts := repository.NewSocialAccountRepository(app.bunDB)
	activity := loggingActivitySink(app.GetLogger("auth:activity"))

	app.social = social.NewSocialAuthenticator(
		app.repo,
		accounts,
		app.tokens,
		social.SocialAuthConfig{
			AllowSignup:          true,
			AllowLinking:         true,
			RequireEmailVerified: true,
		},
		social.WithProvider(google.New(google.Config{
			UserInfoURL: cfg.GoogleUserInfoURL,
		})),
		social.WithProvider(facebook.New(facebook.Config{
			GraphURL: cfg.FacebookGraphURL,
		})),
		social.WithLogger(serviceLogger{lgr: app.GetLogger("auth:social")}),
		social.WithActivitySink(activity),
	)

	identities := auth.NewUserProvider(userTrackerAdapter{users: app.repo.Users()}).
		WithLogger(serviceLogger{lgr: app.GetLogger("auth:prv")})

	protected := auth.ProtectedRoute(cfg, app.tokens, auth.DefaultAuthErrorHandler)

	group := app.srv.Router().Group("/api/v1/auth")

	auth.RegisterAccountRoutes(group,
		protected,
		auth.WithAccountRepository(app.repo),
		auth.WithAccountTokenService(app.tokens),
		auth.WithAccountIdentityProvider(identities),
		auth.WithAccountContextKey(cfg.ContextKey),
		auth.WithAccountLogger(serviceLogger{lgr: app.GetLogger("auth:ctrl")}),
		auth.WithAccountCodeSender(loggingCodeSender(app.GetLogger("auth:reset"))),
		auth.WithAccountActivitySink(activity),
		auth.WithAccountDebug(cfg.Debug),
	)

	controller := social.NewHTTPController(app.social, app.tokens, serviceLogger{lgr: app.GetLogger("auth:social")})
	controller.RegisterRoutes(group)

	return nil
}

type userTrackerAdapter struct {
	users auth.Users
}

func (a userTrackerAdapter) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	return a.users.GetByIdentifier(ctx, identifier)
}

func (a userTrackerAdapter) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	return a.users.TrackAttemptedLogin(ctx, user)
}

func (a userTrackerAdapter) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	return a.users.TrackSuccessfulLogin(ctx, user)
}

// loggingActivitySink writes account audit events to the structured log
// until a durable audit store is attached.
func loggingActivitySink(lgr glog.Logger) auth.ActivitySink {
	return auth.ActivitySinkFunc(func(ctx context.Context, event auth.ActivityEvent) error {
		lgr.Info("account activity",
			"event", string(event.EventType),
			"user_id", event.UserID,
			"email", event.Email,
			"provider", event.Provider,
		)
		return nil
	})
}

// loggingCodeSender stands in for a mail integration during development.
func loggingCodeSender(lgr glog.Logger) auth.CodeSenderFunc {
	return func(ctx context.Context, email, code string) error {
		lgr.Info("password reset code issued", "email", email, "code", code)
		return nil
	}
}

// serviceLogger adapts glog to the printf style logger the auth package uses.
type serviceLogger struct {
	lgr glog.Logger
}

func (l serviceLogger) Debug(format string, args ...any) {
	l.lgr.Debug(fmt.Sprintf(format, args...))
}

func (l serviceLogger) Info(format string, args ...any) {
	l.lgr.Info(fmt.Sprintf(format, args...))
}

func (l serviceLogger) Error(format string, args ...any) {
	l.lgr.Error(fmt.Sprintf(format, args...))
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
