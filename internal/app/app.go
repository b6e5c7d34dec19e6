// Package app assembles the shop from its parts: storage, search, events,
// authorization, services and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Skotchmaster/ecom/internal/authz"
	"github.com/Skotchmaster/ecom/internal/httpserver"
	"github.com/Skotchmaster/ecom/internal/models"
	"github.com/Skotchmaster/ecom/internal/repo"
	"github.com/Skotchmaster/ecom/internal/search"
	"github.com/Skotchmaster/ecom/internal/service"
	"github.com/Skotchmaster/ecom/pkg/config"
	pkgdb "github.com/Skotchmaster/ecom/pkg/db"
	"github.com/Skotchmaster/ecom/pkg/events"
	middleware "github.com/Skotchmaster/ecom/pkg/middleware/auth"
	"github.com/Skotchmaster/ecom/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/ecom/pkg/middleware/logging"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type Options struct {
	Config config.Config
	Logger *slog.Logger
	DB     *gorm.DB
	// Events defaults to a no-op publisher.
	Events events.Publisher
	// Search defaults to the SQL engine.
	Search search.Engine
}

type App struct {
	Echo   *echo.Echo
	DB     *gorm.DB
	Events events.Publisher
}

func New(ctx context.Context, opts Options) (*App, error) {
	if opts.DB == nil {
		return nil, errors.New("app: db is nil")
	}
	if opts.Config.JWTSecret == "" {
		return nil, errors.New("app: jwt secret is empty")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Events == nil {
		opts.Events = events.Noop{}
	}

	if err := models.AutoMigrate(opts.DB.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	enforcer, err := authz.New(opts.DB)
	if err != nil {
		return nil, err
	}
	if err := enforcer.Seed(authz.DefaultPolicies()); err != nil {
		return nil, err
	}

	r := &repo.GormRepo{DB: opts.DB}
	if opts.Search == nil {
		opts.Search = &search.SQLEngine{Repo: r}
	}

	secret := []byte(opts.Config.JWTSecret)
	authSvc := &service.AuthService{Repo: r, JWTSecret: secret, TokenTTL: opts.Config.JWTTTL}
	if err := authSvc.EnsureAdmin(ctx, opts.Config.AdminEmail, opts.Config.AdminPassword); err != nil {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpserver.NewValidator()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLoggerWithConfig(opts.Logger, loggingmw.Config{
		Skipper: loggingmw.SkipPrefixes("/health/"),
		UserKey: middleware.UserEmailKey,
	}))
	e.Use(echomw.CORS())
	e.Use(csrf.Middleware(csrf.Config{
		AuthCookie: middleware.AccessCookieName,
		Secure:     opts.Config.CookieSecure,
		SkipPaths:  []string{"/api/v1/auth/register", "/api/v1/auth/authenticate"},
	}))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc, SecureCookie: opts.Config.CookieSecure},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: r, Search: opts.Search, Events: opts.Events}},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Events: opts.Events}},
		OrderHandler:   &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: opts.Events}},
		AuthMW:         middleware.NewJWTAuth(secret, enforcer),
		Ready:          func(ctx context.Context) error { return pkgdb.Ping(ctx, opts.DB) },
	})

	return &App{Echo: e, DB: opts.DB, Events: opts.Events}, nil
}
