package http

import (
	"errors"
	"fmt"
	"net/http"

	uploadDto "anoa.com/droneanalytics/internal/modules/upload/dto"
	upload "anoa.com/droneanalytics/internal/modules/upload/service"
	commonDto "anoa.com/droneanalytics/pkg/dto"
	"anoa.com/droneanalytics/pkg/ratelimiter"
	"anoa.com/droneanalytics/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UploadHandler struct {
	service upload.UploadService
}

func NewUploadHandler(service upload.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

func (h *UploadHandler) UploadJSON(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req uploadDto.UploadRequest
	if err := response.BindJSON(c, &req, "Invalid JSON format"); err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.Ingest(c.Request.Context(), userID, req)
	if err != nil {
		var rateLimitErr *ratelimiter.RateLimitError
		if errors.As(err, &rateLimitErr) {
			c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
			c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "error": rateLimitErr.Message})
			return
		}
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *UploadHandler) GetUploads(c *gin.Context) {
	var page commonDto.PageQuery
	if err := response.BindQuery(c, &page); err != nil {
		response.ResponseError(c, err)
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	uploads, err := h.service.GetUploads(c.Request.Context(), userID, page)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, uploads)
}

func (h *UploadHandler) GetUpload(c *gin.Context) {
	var req uploadDto.GetUploadRequest
	if err := response.BindURI(c, &req); err != nil {
		response.ResponseError(c, err)
		return
	}
	uploadID := uuid.MustParse(req.ID)

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	detail, err := h.service.GetUpload(c.Request.Context(), userID, uploadID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *UploadHandler) GetAllUploads(c *gin.Context) {
	var page commonDto.PageQuery
	if err := response.BindQuery(c, &page); err != nil {
		response.ResponseError(c, err)
		return
	}

	uploads, err := h.service.GetAllUploads(c.Request.Context(), page)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, uploads)
}
