package handler

import (
	"net/http"

	requestDto "anoa.com/bloodlink/internal/modules/request/dto"
	request "anoa.com/bloodlink/internal/modules/request/service"
	"anoa.com/bloodlink/pkg/dto"
	"anoa.com/bloodlink/pkg/response"
	"anoa.com/bloodlink/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RequestHandler struct {
	service request.RequestService
}

func NewRequestHandler(service request.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

func (h *RequestHandler) CreateRequest(c *gin.Context) {
	principal, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input requestDto.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.CreateRequest(c.Request.Context(), principal, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *RequestHandler) GetMyRequests(c *gin.Context) {
	principal, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.DoctorRequests(c.Request.Context(), principal.UserID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(res))
}

func (h *RequestHandler) GetPendingRequests(c *gin.Context) {
	principal, err := response.GetPrincipal(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.PendingRequestsForBank(c.Request.Context(), principal)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(res))
}

func (h *RequestHandler) GetRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("request_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	res, err := h.service.GetRequest(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
