package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mvp-foundry/internal/app"
	"mvp-foundry/internal/transport/http/middleware"
	"mvp-foundry/internal/transport/http/response"
)

type BlueprintHandler struct {
	blueprintService *app.BlueprintService
}

type CreateBlueprintRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

func NewBlueprintHandler(blueprintService *app.BlueprintService) *BlueprintHandler {
	return &BlueprintHandler{blueprintService: blueprintService}
}

func (h *BlueprintHandler) Create(c *gin.Context) {
	var req CreateBlueprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.blueprintService.Generate(c.Request.Context(), app.GenerateInput{Prompt: req.Prompt})
	if err != nil {
		writeBlueprintError(c, err, "generate blueprint failed")
		return
	}

	response.OK(c, gin.H{
		"document": result.Document,
		"recorded": result.Recorded,
		"operator": middleware.Operator(c),
	})
}

func (h *BlueprintHandler) List(c *gin.Context) {
	response.OK(c, gin.H{
		"history": h.blueprintService.History(c.Request.Context()),
	})
}

func (h *BlueprintHandler) Get(c *gin.Context) {
	doc, err := h.blueprintService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeBlueprintError(c, err, "fetch blueprint failed")
		return
	}
	response.OK(c, doc)
}

func (h *BlueprintHandler) View(c *gin.Context) {
	tab := app.Tab(c.Query("tab"))
	view, err := h.blueprintService.View(c.Request.Context(), c.Param("id"), tab)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeUnknownTab, "unknown tab")
			return
		}
		writeBlueprintError(c, err, "render blueprint failed")
		return
	}
	response.OK(c, view)
}

func (h *BlueprintHandler) Archive(c *gin.Context) {
	rows, err := h.blueprintService.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeBlueprintError(c, err, "fetch archive failed")
		return
	}
	response.OK(c, gin.H{"archive": rows})
}

func writeBlueprintError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrPromptEmpty):
		response.Error(c, http.StatusBadRequest, response.CodePromptEmpty, err.Error())
	case errors.Is(err, app.ErrPromptTooLong):
		response.Error(c, http.StatusBadRequest, response.CodePromptTooLong, err.Error())
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrBlueprintNotFound):
		response.Error(c, http.StatusNotFound, response.CodeBlueprintNotFound, err.Error())
	case errors.Is(err, app.ErrGeneration):
		response.Error(c, http.StatusBadGateway, response.CodeGenerationFailed, "could not generate blueprint, please try again")
	case errors.Is(err, app.ErrArchiveDisabled):
		response.Error(c, http.StatusServiceUnavailable, response.CodeArchiveDisabled, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
