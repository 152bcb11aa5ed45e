package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mvp-foundry/internal/app"
	"mvp-foundry/internal/transport/http/response"
)

type FormatHandler struct {
	blueprintService *app.BlueprintService
}

// FormatRequest allows an empty text; it parses to no blocks.
type FormatRequest struct {
	Text string `json:"text"`
}

func NewFormatHandler(blueprintService *app.BlueprintService) *FormatHandler {
	return &FormatHandler{blueprintService: blueprintService}
}

func (h *FormatHandler) Format(c *gin.Context) {
	var req FormatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	response.OK(c, gin.H{"blocks": h.blueprintService.Format(req.Text)})
}
