// Package auth provides the staff authentication bounded context module.
package auth

import (
	"inspection_portal/internal/auth/handler"
	"inspection_portal/internal/auth/repository"
	"inspection_portal/internal/auth/service"
	authvalidator "inspection_portal/internal/auth/validator"
	"inspection_portal/internal/events"
	apphttp "inspection_portal/internal/http"
	"inspection_portal/platform/config"
	"inspection_portal/platform/httpkit"
	"inspection_portal/platform/logger"
	"inspection_portal/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, eventBus events.Bus, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := authvalidator.Register(val); err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	svc := service.New(repo, cfg, eventBus, log)

	return &Module{
		handler: handler.New(svc, cfg, val),
		repo:    repo,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Sessions returns the server-side session check used by SessionRequired.
func (m *Module) Sessions() httpkit.SessionChecker {
	return m.repo
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	if ctx.AuthRateLimiter != nil {
		authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	}
	m.handler.RegisterRoutes(authGroup)

	ctx.Protected.GET("/auth/me", m.handler.Me)
	ctx.Protected.POST("/auth/change-password", m.handler.ChangePassword)
	ctx.Protected.GET("/users", m.handler.ListUsers)
}

var _ apphttp.Module = (*Module)(nil)
