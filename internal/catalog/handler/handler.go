package handler

import (
	"net/http"

	audittransport "inspection_portal/internal/audit/transport"
	"inspection_portal/internal/catalog/service"
	"inspection_portal/internal/catalog/transport"
	"inspection_portal/platform/httpkit"
	"inspection_portal/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for catalog.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
)

// New creates a new catalog handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// GetConfig returns the active pricing configuration for the calculator.
// GET /api/v1/config
func (h *Handler) GetConfig(c *gin.Context) {
	snap, err := h.svc.Snapshot(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap)
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return false
	}
	return true
}

func (h *Handler) bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return false
	}
	return true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

// actor identifies the admin behind a mutation for the audit log.
func actor(c *gin.Context) (audittransport.Actor, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return audittransport.Actor{}, false
	}
	return audittransport.NewActor(identity.UserID(), httpkit.Meta(c)), true
}

func paginated[T any](c *gin.Context, res transport.ListResponse[T]) {
	httpkit.Paginated(c, res.Items, res.Page, res.PageSize, res.Total)
}

// =============================================================================
// Cities
// =============================================================================

// ListCities GET /api/v1/admin/cities
func (h *Handler) ListCities(c *gin.Context) {
	var req transport.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	res, err := h.svc.ListCities(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	paginated(c, res)
}

// GetCity GET /api/v1/admin/cities/:id
func (h *Handler) GetCity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res, err := h.svc.GetCity(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

// CreateCity POST /api/v1/admin/cities
func (h *Handler) CreateCity(c *gin.Context) {
	var req transport.CreateCityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	who, ok := actor(c)
	if !ok {
		return
	}
	res, err := h.svc.CreateCity(c.Request.Context(), who, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, res)
}

// UpdateCity PUT /api/v1/admin/cities/:id
func (h *Handler) UpdateCity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateCityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	who, ok := actor(c)
	if !ok {
		return
	}
	res, err := h.svc.UpdateCity(c.Request.Context(), who, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

// DeleteCity DELETE /api/v1/admin/cities/:id
func (h *Handler) DeleteCity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	who, ok := actor(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteCity(c.Request.Context(), who, id)) {
		return
	}
	httpkit.OK(c, gin.H{"message": "city deactivated"})
}

// =============================================================================
// Neighborhood levels
// =============================================================================

// ListLevels GET /api/v1/admin/neighborhood-levels
func (h *Handler) ListLevels(c *gin.Context) {
	var req transport.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	res, err := h.svc.ListLevels(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	paginated(c, res)
}

// GetLevel GET /api/v1/admin/neighborhood-levels/:id
func (h *Handler) GetLevel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res, err := h.svc.GetLevel(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

// CreateLevel POST /api/v1/admin/neighborhood-levels
func (h *Handler) CreateLevel(c *gin.Context) {
	var req transport.CreateLevelRequest
	if !h.bindJSON(c, &req) {
		return
	}
	who, ok := actor(c)
	if !ok {
		return
	}
	res, err := h.svc.CreateLevel(c.Request.Context(), who, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, res)
}

// UpdateLevel PUT /api/v1/admin/neighborhood-levels/:id
func (h *Handler) UpdateLevel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateLevelRequest
	if !h.bindJSON(c, &req) {
		return
	}
	who, ok := actor(c)
	if !ok {
		return
	}
	res, err := h.svc.UpdateLevel(c.Request.Context(), who, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

// DeleteLevel DELETE /api/v1/admin/neighborhood-levels/:id
func (h *Handler) DeleteLevel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	who, ok := actor(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteLevel(c.Request.Context(), who, id)) {
		return
	}
	httpkit.OK(c, gin.H{"message": "neighborhood level deactivated"})
}

// =============================================================================
// Neighborhoods
// =============================================================================

// ListNeighborhoods GET /api/v1/admin/neighborhoods?cityId=
func (h *Handler) ListNeighborhoods(c *gin.Context) {
	var req transport.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	res, err := h.svc.ListNeighborhoods(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	paginated(c, res)
}

// GetNeighborhood GET /api/v1/admin/neighborhoods/:id
func (h *Handler) GetNeighborhood(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res, err := h.svc.GetNeighborhood(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

// CreateNeighborhood POST /api/v1/admin/neighborhoods
func (h *Handler) CreateNeighborhood(c *gin.Context) {
	var req transport.CreateNeighborhoodRequest
	if !h.bindJSON(c, &req) {
		return
	}
	who, ok := actor(c)
	if !ok {
		return
	}
	res, err := h.svc.CreateNeighborhood(c.Request.Context(), who, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, res)
}

// UpdateNeighborhood PUT /api/v1/admin/neighborhoods/:id
func (h *Handler) UpdateNeighborhood(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateNeighborhoodRequest
	if !h.bindJSON(c, &req) {
		return
	}
	who, ok := actor(c)
	if !ok {
		return
	}
	res, err := h.svc.UpdateNeighborhood(c.Request.Context(), who, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

// DeleteNeighborhood DELETE /api/v1/admin/neighborhoods/:id
func (h *Handler) DeleteNeighborhood(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	who, ok := actor(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteNeighborhood(c.Request.Context(), who, id)) {
		return
	}
	httpkit.OK(c, gin.H{"message": "neighborhood deactivated"})
}
