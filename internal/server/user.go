package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	userdomain "github.com/pausalko/pausalko/internal/user/domain"
)

type userHandler struct {
	svc userdomain.Service
}

func registerUserRoutes(r gin.IRouter, svc userdomain.Service) {
	h := &userHandler{svc: svc}
	group := r.Group("/users")
	group.POST("", h.register)
	group.POST("/login", h.login)
}

func (h *userHandler) register(c *gin.Context) {
	var body userdomain.RegisterRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	user, err := h.svc.Register(c.Request.Context(), body)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *userHandler) login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	user, err := h.svc.Authenticate(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
