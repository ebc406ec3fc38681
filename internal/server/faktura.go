package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	fakturadomain "github.com/pausalko/pausalko/internal/faktura/domain"
)

type fakturaHandler struct {
	svc fakturadomain.Service
}

func registerFakturaRoutes(r gin.IRouter, svc fakturadomain.Service) {
	h := &fakturaHandler{svc: svc}
	group := r.Group("/fakture")
	group.POST("", h.create)
	group.GET("", h.list)
	group.GET("/:id", h.get)
	group.PUT("/:id", h.edit)
	group.DELETE("/:id", h.delete)
	group.POST("/:id/finalize", h.finalize)
	group.POST("/:id/storno", h.storno)
	group.POST("/:id/send-email", h.sendEmail)
}

type createFakturaBody struct {
	fakturadomain.CreateFakturaRequest
	UserID int64 `json:"user_id"`
}

func (h *fakturaHandler) create(c *gin.Context) {
	var body createFakturaBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	faktura, err := h.svc.Create(c.Request.Context(), scopeFrom(c), snowflakeID(body.UserID), body.CreateFakturaRequest)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, faktura)
}

func (h *fakturaHandler) edit(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var body fakturadomain.EditFakturaRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	faktura, err := h.svc.Edit(c.Request.Context(), scopeFrom(c), id, body)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, faktura)
}

func (h *fakturaHandler) finalize(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	faktura, err := h.svc.Finalize(c.Request.Context(), scopeFrom(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, faktura)
}

type stornoBody struct {
	Razlog string `json:"razlog"`
	Actor  string `json:"actor"`
}

func (h *fakturaHandler) storno(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var body stornoBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	faktura, err := h.svc.Storno(c.Request.Context(), scopeFrom(c), id, body.Razlog, body.Actor)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, faktura)
}

func (h *fakturaHandler) get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	faktura, err := h.svc.GetByID(c.Request.Context(), scopeFrom(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, faktura)
}

func (h *fakturaHandler) list(c *gin.Context) {
	filter := fakturadomain.ListFakturaFilter{}
	if raw := c.Query("status"); raw != "" {
		status := fakturadomain.FakturaStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("tip"); raw != "" {
		tip := fakturadomain.TipFakture(raw)
		filter.Tip = &tip
	}
	if raw := c.Query("valuta"); raw != "" {
		valuta := fakturadomain.Valuta(raw)
		filter.Valuta = &valuta
	}

	var err error
	if filter.KomitentID, err = queryID(c, "komitent_id"); err != nil {
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
	filter.SortBy, filter.SortDesc = querySort(c)

	resp, err := h.svc.List(c.Request.Context(), scopeFrom(c), filter, parsePagination(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *fakturaHandler) delete(c *gin.Context) {
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

type sendEmailBody struct {
	To []string `json:"to"`
}

func (h *fakturaHandler) sendEmail(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var body sendEmailBody
	if err := c.ShouldBindJSON(&body); err != nil && c.Request.ContentLength > 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := h.svc.SendEmail(c.Request.Context(), scopeFrom(c), id, body.To); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
