package handler

import (
	"net/http"

	pledgeDto "anoa.com/bloodlink/internal/modules/pledge/dto"
	pledge "anoa.com/bloodlink/internal/modules/pledge/service"
	"anoa.com/bloodlink/pkg/dto"
	"anoa.com/bloodlink/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PledgeHandler struct {
	service pledge.PledgeService
}

func NewPledgeHandler(service pledge.PledgeService) *PledgeHandler {
	return &PledgeHandler{service: service}
}

func (h *PledgeHandler) RespondToAlert(c *gin.Context) {
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

	res, err := h.service.RespondToAlert(c.Request.Context(), principal, alertID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PledgeHandler) HasResponded(c *gin.Context) {
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

	responded, err := h.service.HasResponded(c.Request.Context(), alertID, principal.UserID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, pledgeDto.RespondedResponse{Responded: responded})
}

func (h *PledgeHandler) GetVolunteers(c *gin.Context) {
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

	res, err := h.service.AlertVolunteers(c.Request.Context(), principal, alertID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(res))
}

func (h *PledgeHandler) GetDonationHistory(c *gin.Context) {
	principal, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.DonationHistory(c.Request.Context(), principal)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(res))
}
