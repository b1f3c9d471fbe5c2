package handler

import (
	"net/http"

	"inspection_portal/internal/catalog/transport"
	"inspection_portal/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// ListPackages GET /api/v1/admin/packages
func (h *Handler) ListPackages(c *gin.Context) {
	var req transport.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	res, err := h.svc.ListPackages(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	paginated(c, res)
}

// GetPackage GET /api/v1/admin/packages/:id
func (h *Handler) GetPackage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res, err := h.svc.GetPackage(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

// CreatePackage POST /api/v1/admin/packages
func (h *Handler) CreatePackage(c *gin.Context) {
	var req transport.CreatePackageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	who, ok := actor(c)
	if !ok {
		return
	}
	res, err := h.svc.CreatePackage(c.Request.Context(), who, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, res)
}

// UpdatePackage PUT /api/v1/admin/packages/:id
func (h *Handler) UpdatePackage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdatePackageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	who, ok := actor(c)
	if !ok {
		return
	}
	res, err := h.svc.UpdatePackage(c.Request.Context(), who, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

// DeletePackage DELETE /api/v1/admin/packages/:id
func (h *Handler) DeletePackage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	who, ok := actor(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeletePackage(c.Request.Context(), who, id)) {
		return
	}
	httpkit.OK(c, gin.H{"message": "package deactivated"})
}
