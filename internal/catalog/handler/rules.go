package handler

import (
	"net/http"

	"inspection_portal/internal/catalog/transport"
	"inspection_portal/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// ListRules GET /api/v1/admin/calculation-rules
func (h *Handler) ListRules(c *gin.Context) {
	var req transport.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	res, err := h.svc.ListRules(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	paginated(c, res)
}

// GetRule GET /api/v1/admin/calculation-rules/:id
func (h *Handler) GetRule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res, err := h.svc.GetRule(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

// CreateRule POST /api/v1/admin/calculation-rules
func (h *Handler) CreateRule(c *gin.Context) {
	var req transport.CreateRuleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	who, ok := actor(c)
	if !ok {
		return
	}
	res, err := h.svc.CreateRule(c.Request.Context(), who, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, res)
}

// UpdateRule PUT /api/v1/admin/calculation-rules/:id
func (h *Handler) UpdateRule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateRuleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	who, ok := actor(c)
	if !ok {
		return
	}
	res, err := h.svc.UpdateRule(c.Request.Context(), who, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

// DeleteRule DELETE /api/v1/admin/calculation-rules/:id
func (h *Handler) DeleteRule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	who, ok := actor(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteRule(c.Request.Context(), who, id)) {
		return
	}
	httpkit.OK(c, gin.H{"message": "calculation rule deactivated"})
}

// =============================================================================
// VAT
// =============================================================================

// GetVat GET /api/v1/admin/vat
func (h *Handler) GetVat(c *gin.Context) {
	res, err := h.svc.GetActiveVat(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

// ListVatHistory GET /api/v1/admin/vat/history
func (h *Handler) ListVatHistory(c *gin.Context) {
	var req transport.VatHistoryRequest
	if !h.bindQuery(c, &req) {
		return
	}
	res, err := h.svc.ListVatHistory(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	paginated(c, res)
}

// UpdateVat PUT /api/v1/admin/vat
func (h *Handler) UpdateVat(c *gin.Context) {
	var req transport.UpdateVatRequest
	if !h.bindJSON(c, &req) {
		return
	}
	who, ok := actor(c)
	if !ok {
		return
	}
	res, err := h.svc.UpdateVat(c.Request.Context(), who, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}
