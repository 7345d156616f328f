package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schichtbuch-backend/internal/auth"
	"schichtbuch-backend/internal/model"
	"schichtbuch-backend/internal/mw"
)

// ListMachines handles GET /api/machines. The response is identical for all
// users and sits behind the response cache.
func (h *Handler) ListMachines(c *gin.Context) {
	machines, err := h.store.ListMachines(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"machines": machines})
}

type createMachineRequest struct {
	Name         string `json:"name" binding:"required"`
	Location     string `json:"location"`
	Manufacturer string `json:"manufacturer"`
	IsActive     *bool  `json:"is_active"`
}

// CreateMachine handles POST /api/machines, restricted to machine managers.
func (h *Handler) CreateMachine(c *gin.Context) {
	user, ok := mw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if !auth.CapabilitiesFor(user.Role).ManageMachines {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var req createMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"name": "Bitte einen Namen angeben."}})
		return
	}

	machine := model.Machine{
		Name:         req.Name,
		Location:     req.Location,
		Manufacturer: req.Manufacturer,
		IsActive:     true,
	}
	if req.IsActive != nil {
		machine.IsActive = *req.IsActive
	}

	if err := h.store.CreateMachine(c.Request.Context(), &machine); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, machine)
}
