package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	fakturadomain "github.com/pausalko/pausalko/internal/faktura/domain"
	kpodomain "github.com/pausalko/pausalko/internal/kpo/domain"
)

type kpoHandler struct {
	svc kpodomain.Service
}

func registerKPORoutes(r gin.IRouter, svc kpodomain.Service) {
	h := &kpoHandler{svc: svc}
	group := r.Group("/kpo")
	group.GET("", h.list)
	group.GET("/promet", h.promet)
}

func (h *kpoHandler) list(c *gin.Context) {
	filter := kpodomain.ListFilter{
		KomitentSearch: c.Query("komitent"),
		Status:         kpodomain.StatusFilter(c.Query("status")),
	}
	var err error
	if filter.Godina, err = queryInt(c, "godina"); err != nil {
		AbortWithError(c, err)
		return
	}
	if filter.DatumOd, err = queryDate(c, "datum_od"); err != nil {
		AbortWithError(c, err)
		return
	}
	if filter.DatumDo, err = queryDate(c, "datum_do"); err != nil {
		AbortWithError(c, err)
		return
	}
	if raw := c.Query("valuta"); raw != "" {
		valuta := fakturadomain.Valuta(raw)
		filter.Valuta = &valuta
	}
	filter.SortBy, filter.SortDesc = querySort(c)

	resp, err := h.svc.List(c.Request.Context(), scopeFrom(c), filter, parsePagination(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *kpoHandler) promet(c *gin.Context) {
	filter := kpodomain.PrometFilter{
		Status: kpodomain.StatusFilter(c.Query("status")),
	}
	var err error
	if filter.Godina, err = queryInt(c, "godina"); err != nil {
		AbortWithError(c, err)
		return
	}
	if filter.DatumOd, err = queryDate(c, "datum_od"); err != nil {
		AbortWithError(c, err)
		return
	}
	if filter.DatumDo, err = queryDate(c, "datum_do"); err != nil {
		AbortWithError(c, err)
		return
	}
	if raw := c.Query("valuta"); raw != "" {
		valuta := fakturadomain.Valuta(raw)
		filter.Valuta = &valuta
	}

	total, err := h.svc.TotalPromet(c.Request.Context(), scopeFrom(c), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ukupan_promet": total})
}
