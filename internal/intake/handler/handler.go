package handler

import (
	"net/http"

	"matter_intake_backend/internal/intake/service"
	"matter_intake_backend/internal/intake/transport"
	"matter_intake_backend/platform/httpkit"
	"matter_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/matters", h.OpenMatter)
	rg.POST("/contacts", h.SyncContacts)
}

// OpenMatter handles POST /api/v1/intake/matters.
func (h *Handler) OpenMatter(c *gin.Context) {
	var req transport.OpenMatterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed)
		return
	}

	resp, err := h.svc.OpenMatter(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, resp)
}

// SyncContacts handles POST /api/v1/intake/contacts.
func (h *Handler) SyncContacts(c *gin.Context) {
	var req transport.SyncContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed)
		return
	}

	resp, err := h.svc.SyncContacts(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}
