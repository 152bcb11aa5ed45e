package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mvp-foundry/internal/app"
	"mvp-foundry/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
}

type IssueTokenRequest struct {
	Operator     string `json:"operator" binding:"required,max=64"`
	BootstrapKey string `json:"bootstrap_key" binding:"required"`
}

func NewAuthHandler(authService *app.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.IssueToken(app.IssueTokenInput{
		Operator:     req.Operator,
		BootstrapKey: req.BootstrapKey,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrAuthDisabled):
			response.Error(c, http.StatusForbidden, response.CodeAuthDisabled, err.Error())
		case errors.Is(err, app.ErrInvalidCredential):
			response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "issue token failed")
		}
		return
	}

	response.OK(c, result)
}
