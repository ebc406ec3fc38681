package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	artikaldomain "github.com/pausalko/pausalko/internal/artikal/domain"
)

type artikalHandler struct {
	svc artikaldomain.Service
}

func registerArtikalRoutes(r gin.IRouter, svc artikaldomain.Service) {
	h := &artikalHandler{svc: svc}
	group := r.Group("/artikli")
	group.POST("", h.create)
	group.GET("", h.list)
	group.GET("/:id", h.get)
	group.PUT("/:id", h.update)
	group.DELETE("/:id", h.delete)
}

func (h *artikalHandler) create(c *gin.Context) {
	var body artikaldomain.CreateArtikalRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	artikal, err := h.svc.Create(c.Request.Context(), scopeFrom(c), body)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, artikal)
}

func (h *artikalHandler) update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var body artikaldomain.UpdateArtikalRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	artikal, err := h.svc.Update(c.Request.Context(), scopeFrom(c), id, body)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, artikal)
}

func (h *artikalHandler) get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	artikal, err := h.svc.GetByID(c.Request.Context(), scopeFrom(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, artikal)
}

func (h *artikalHandler) list(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), scopeFrom(c), c.Query("search"), parsePagination(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *artikalHandler) delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), scopeFrom(c), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
