// Package quotes provides the public calculator: quote preview and
// submission.
package quotes

import (
	"inspection_portal/internal/events"
	apphttp "inspection_portal/internal/http"
	"inspection_portal/internal/quotes/handler"
	"inspection_portal/internal/quotes/service"
	"inspection_portal/platform/logger"
	"inspection_portal/platform/phone"
	"inspection_portal/platform/validator"
)

// Module represents the quotes domain module
type Module struct {
	handler *handler.Handler
}

// NewModule creates a new quotes module with all dependencies wired
func NewModule(config service.ConfigProvider, leads service.LeadWriter, phones *phone.Normalizer, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(config, leads, phones, eventBus, log)
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quotes"
}

// RegisterRoutes registers the module's routes. Submissions share the
// public form rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	quotes := ctx.V1.Group("/quotes")
	if ctx.FormRateLimiter != nil {
		quotes.Use(ctx.FormRateLimiter.RateLimit())
	}
	quotes.POST("/preview", m.handler.Preview)
	quotes.POST("", m.handler.Submit)
}

var _ apphttp.Module = (*Module)(nil)
