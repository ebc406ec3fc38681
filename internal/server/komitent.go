package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	komitentdomain "github.com/pausalko/pausalko/internal/komitent/domain"
	"github.com/pausalko/pausalko/internal/providers/nbs"
)

type komitentHandler struct {
	svc      komitentdomain.Service
	registry nbs.Provider
}

func registerKomitentRoutes(r gin.IRouter, svc komitentdomain.Service, registry nbs.Provider) {
	h := &komitentHandler{svc: svc, registry: registry}
	group := r.Group("/komitenti")
	group.POST("", h.create)
	group.GET("", h.list)
	group.GET("/lookup/:pib", h.lookup)
	group.GET("/:id", h.get)
	group.PUT("/:id", h.update)
	group.DELETE("/:id", h.delete)
}

func (h *komitentHandler) create(c *gin.Context) {
	var body komitentdomain.CreateKomitentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	komitent, err := h.svc.Create(c.Request.Context(), scopeFrom(c), body)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, komitent)
}

func (h *komitentHandler) update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var body komitentdomain.UpdateKomitentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	komitent, err := h.svc.Update(c.Request.Context(), scopeFrom(c), id, body)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, komitent)
}

func (h *komitentHandler) get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	komitent, err := h.svc.GetByID(c.Request.Context(), scopeFrom(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, komitent)
}

func (h *komitentHandler) list(c *gin.Context) {
	filter := komitentdomain.ListKomitentFilter{Search: c.Query("search")}
	var err error
	if filter.CreatedFrom, err = queryDate(c, "created_from"); err != nil {
		AbortWithError(c, err)
		return
	}
	if filter.CreatedTo, err = queryDate(c, "created_to"); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := h.svc.List(c.Request.Context(), scopeFrom(c), filter, parsePagination(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *komitentHandler) delete(c *gin.Context) {
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

// lookup prefills komitent data from the NBS business registry.
func (h *komitentHandler) lookup(c *gin.Context) {
	pib := c.Param("pib")
	if len(pib) != 9 {
		AbortWithError(c, komitentdomain.ErrInvalidPIB)
		return
	}
	info, err := h.registry.Lookup(c.Request.Context(), pib)
	if err != nil {
		if err == nbs.ErrCompanyNotFound {
			AbortWithError(c, komitentdomain.ErrNotFound)
			return
		}
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
