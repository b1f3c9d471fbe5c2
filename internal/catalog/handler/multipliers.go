package handler

import (
	"net/http"

	"inspection_portal/internal/catalog/repository"
	"inspection_portal/internal/catalog/transport"
	"inspection_portal/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Multiplier handlers are shared by property ages and inspection purposes;
// each constructor binds the kind.

func (h *Handler) ListMultipliers(kind repository.MultiplierKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transport.ListRequest
		if !h.bindQuery(c, &req) {
			return
		}
		res, err := h.svc.ListMultipliers(c.Request.Context(), kind, req)
		if httpkit.HandleError(c, err) {
			return
		}
		paginated(c, res)
	}
}

func (h *Handler) GetMultiplier(kind repository.MultiplierKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		res, err := h.svc.GetMultiplier(c.Request.Context(), kind, id)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, res)
	}
}

func (h *Handler) CreateMultiplier(kind repository.MultiplierKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transport.CreateMultiplierRequest
		if !h.bindJSON(c, &req) {
			return
		}
		who, ok := actor(c)
		if !ok {
			return
		}
		res, err := h.svc.CreateMultiplier(c.Request.Context(), who, kind, req)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.JSON(c, http.StatusCreated, res)
	}
}

func (h *Handler) UpdateMultiplier(kind repository.MultiplierKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var req transport.UpdateMultiplierRequest
		if !h.bindJSON(c, &req) {
			return
		}
		who, ok := actor(c)
		if !ok {
			return
		}
		res, err := h.svc.UpdateMultiplier(c.Request.Context(), who, kind, id, req)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, res)
	}
}

func (h *Handler) DeleteMultiplier(kind repository.MultiplierKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		who, ok := actor(c)
		if !ok {
			return
		}
		if httpkit.HandleError(c, h.svc.DeleteMultiplier(c.Request.Context(), who, kind, id)) {
			return
		}
		httpkit.OK(c, gin.H{"message": "multiplier deactivated"})
	}
}
