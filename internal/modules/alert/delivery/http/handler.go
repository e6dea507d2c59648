package handler

import (
	"net/http"

	alertDto "anoa.com/bloodlink/internal/modules/alert/dto"
	alert "anoa.com/bloodlink/internal/modules/alert/service"
	"anoa.com/bloodlink/pkg/dto"
	"anoa.com/bloodlink/pkg/response"
	"anoa.com/bloodlink/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AlertHandler struct {
	service alert.AlertService
}

func NewAlertHandler(service alert.AlertService) *AlertHandler {
	return &AlertHandler{service: service}
}

func (h *AlertHandler) ValidateRequest(c *gin.Context) {
	principal, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	requestID, err := uuid.Parse(c.Param("request_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	res, err := h.service.ValidateRequest(c.Request.Context(), principal, requestID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *AlertHandler) CreateAlert(c *gin.Context) {
	principal, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input alertDto.CreateAlertInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.CreateDirectAlert(c.Request.Context(), principal, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *AlertHandler) CloseAlert(c *gin.Context) {
	principal, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	alertID, err := uuid.Parse(c.Param("alert_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	if err := h.service.CloseAlert(c.Request.Context(), principal, alertID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "alert closed"})
}

func (h *AlertHandler) GetActiveAlerts(c *gin.Context) {
	res, err := h.service.ActiveAlerts(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(res))
}

func (h *AlertHandler) GetAlert(c *gin.Context) {
	alertID, err := uuid.Parse(c.Param("alert_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	res, err := h.service.GetAlert(c.Request.Context(), alertID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
