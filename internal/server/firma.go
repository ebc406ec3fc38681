package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	firmadomain "github.com/pausalko/pausalko/internal/firma/domain"
)

type firmaHandler struct {
	svc firmadomain.Service
}

// Firma routes split along the authorization boundary: profile updates are
// tenant self-service, registration fields and deletion are admin-only.
func registerFirmaRoutes(r gin.IRouter, svc firmadomain.Service) {
	h := &firmaHandler{svc: svc}
	group := r.Group("/firme")
	group.POST("", h.create)
	group.GET("/:id", h.get)
	group.PUT("/:id/profile", h.updateProfile)
	group.PUT("/:id/registration", h.updateRegistration)
	group.DELETE("/:id", h.delete)
}

func (h *firmaHandler) create(c *gin.Context) {
	var body firmadomain.CreateFirmaRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	firma, err := h.svc.Create(c.Request.Context(), body)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, firma)
}

func (h *firmaHandler) get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	firma, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, firma)
}

func (h *firmaHandler) updateProfile(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var body firmadomain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	firma, err := h.svc.UpdateProfile(c.Request.Context(), id, body)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, firma)
}

func (h *firmaHandler) updateRegistration(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var body firmadomain.UpdateRegistrationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	firma, err := h.svc.UpdateRegistration(c.Request.Context(), id, body)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, firma)
}

func (h *firmaHandler) delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
