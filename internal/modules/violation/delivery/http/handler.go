package http

import (
	"net/http"

	violationDto "anoa.com/droneanalytics/internal/modules/violation/dto"
	violation "anoa.com/droneanalytics/internal/modules/violation/service"
	"anoa.com/droneanalytics/pkg/response"
	"github.com/gin-gonic/gin"
)

type ViolationHandler struct {
	service violation.ViolationService
}

func NewViolationHandler(service violation.ViolationService) *ViolationHandler {
	return &ViolationHandler{service: service}
}

func (h *ViolationHandler) GetViolations(c *gin.Context) {
	var filter violationDto.ViolationFilter
	if err := response.BindQuery(c, &filter); err != nil {
		response.ResponseError(c, err)
		return
	}

	violations, err := h.service.GetViolations(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, violations)
}

func (h *ViolationHandler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *ViolationHandler) SearchViolations(c *gin.Context) {
	var query violationDto.SearchQuery
	if err := response.BindQuery(c, &query); err != nil {
		response.ResponseError(c, err)
		return
	}

	results, err := h.service.SearchViolations(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
