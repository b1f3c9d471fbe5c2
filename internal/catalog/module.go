// Package catalog provides the pricing configuration bounded context: admin
// CRUD over cities, neighborhoods, packages, multipliers, VAT and rules, and
// the public configuration snapshot.
package catalog

import (
	"time"

	"inspection_portal/internal/catalog/handler"
	"inspection_portal/internal/catalog/repository"
	"inspection_portal/internal/catalog/service"
	apphttp "inspection_portal/internal/http"
	"inspection_portal/platform/cache"
	"inspection_portal/platform/logger"
	"inspection_portal/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the catalog module.
func NewModule(pool *pgxpool.Pool, snapshotCache cache.Cache, cacheTTL time.Duration, audit service.AuditRecorder, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), snapshotCache, cacheTTL, audit, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for the quotes module.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/config", m.handler.GetConfig)

	admin := ctx.Admin
	admin.GET("/cities", m.handler.ListCities)
	admin.GET("/cities/:id", m.handler.GetCity)
	admin.POST("/cities", m.handler.CreateCity)
	admin.PUT("/cities/:id", m.handler.UpdateCity)
	admin.DELETE("/cities/:id", m.handler.DeleteCity)

	admin.GET("/neighborhood-levels", m.handler.ListLevels)
	admin.GET("/neighborhood-levels/:id", m.handler.GetLevel)
	admin.POST("/neighborhood-levels", m.handler.CreateLevel)
	admin.PUT("/neighborhood-levels/:id", m.handler.UpdateLevel)
	admin.DELETE("/neighborhood-levels/:id", m.handler.DeleteLevel)

	admin.GET("/neighborhoods", m.handler.ListNeighborhoods)
	admin.GET("/neighborhoods/:id", m.handler.GetNeighborhood)
	admin.POST("/neighborhoods", m.handler.CreateNeighborhood)
	admin.PUT("/neighborhoods/:id", m.handler.UpdateNeighborhood)
	admin.DELETE("/neighborhoods/:id", m.handler.DeleteNeighborhood)

	admin.GET("/packages", m.handler.ListPackages)
	admin.GET("/packages/:id", m.handler.GetPackage)
	admin.POST("/packages", m.handler.CreatePackage)
	admin.PUT("/packages/:id", m.handler.UpdatePackage)
	admin.DELETE("/packages/:id", m.handler.DeletePackage)

	for path, kind := range map[string]repository.MultiplierKind{
		"/property-ages":       repository.PropertyAge,
		"/inspection-purposes": repository.InspectionPurpose,
	} {
		admin.GET(path, m.handler.ListMultipliers(kind))
		admin.GET(path+"/:id", m.handler.GetMultiplier(kind))
		admin.POST(path, m.handler.CreateMultiplier(kind))
		admin.PUT(path+"/:id", m.handler.UpdateMultiplier(kind))
		admin.DELETE(path+"/:id", m.handler.DeleteMultiplier(kind))
	}

	admin.GET("/calculation-rules", m.handler.ListRules)
	admin.GET("/calculation-rules/:id", m.handler.GetRule)
	admin.POST("/calculation-rules", m.handler.CreateRule)
	admin.PUT("/calculation-rules/:id", m.handler.UpdateRule)
	admin.DELETE("/calculation-rules/:id", m.handler.DeleteRule)

	admin.GET("/vat", m.handler.GetVat)
	admin.GET("/vat/history", m.handler.ListVatHistory)
	admin.PUT("/vat", m.handler.UpdateVat)
}

var _ apphttp.Module = (*Module)(nil)
