package dto

import (
	"time"

	"github.com/google/uuid"

	commonDto "anoa.com/droneanalytics/pkg/dto"
)

type ViolationFilter struct {
	DroneID string `form:"droneId"`
	Date    string `form:"date"`
	Type    string `form:"type"`
	commonDto.PageQuery
}

type UploadRef struct {
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"createdAt"`
}

type ViolationResponse struct {
	ID            uuid.UUID  `json:"id"`
	ViolationID   string     `json:"violationId"`
	DroneID       string     `json:"droneId"`
	ViolationType string     `json:"violationType"`
	Timestamp     string     `json:"timestamp"`
	Date          string     `json:"date"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	ImageURL      string     `json:"imageUrl"`
	Location      string     `json:"location"`
	UploadID      uuid.UUID  `json:"uploadId"`
	CreatedAt     time.Time  `json:"createdAt"`
	Upload        *UploadRef `json:"upload,omitempty"`
}

type ViolationListResponse struct {
	Violations []ViolationResponse      `json:"violations"`
	Pagination commonDto.PaginationMeta `json:"pagination"`
}

type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type DroneCount struct {
	DroneID string `json:"droneId"`
	Count   int64  `json:"count"`
}

type DateCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type StatsResponse struct {
	TotalViolations   int64        `json:"totalViolations"`
	ViolationsByType  []TypeCount  `json:"violationsByType"`
	ViolationsByDrone []DroneCount `json:"violationsByDrone"`
	ViolationsByDate  []DateCount  `json:"violationsByDate"`
}

type SearchQuery struct {
	Query string `form:"q"`
	commonDto.PageQuery
}
