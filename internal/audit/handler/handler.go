package handler

import (
	"net/http"

	"inspection_portal/internal/audit/service"
	"inspection_portal/internal/audit/transport"
	"inspection_portal/platform/httpkit"
	"inspection_portal/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler serves the admin audit log API.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new audit handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// List returns audit entries.
// GET /api/v1/admin/audit-logs
func (h *Handler) List(c *gin.Context) {
	var req transport.ListAuditLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return
	}

	res, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Paginated(c, res.Items, res.Page, res.PageSize, res.Total)
}
