package dto

import (
	"time"

	"github.com/google/uuid"

	"anoa.com/droneanalytics/internal/entity"
	commonDto "anoa.com/droneanalytics/pkg/dto"
)

// UploadRequest is the client-supplied JSON document. Fields are decoded as
// raw JSON values so a wrongly typed field is reported by validation together
// with every other problem instead of aborting the decode.
type UploadRequest struct {
	DroneID    any              `json:"drone_id" validate:"notblank"`
	Date       any              `json:"date" validate:"notblank,ymd"`
	Location   any              `json:"location" validate:"notblank"`
	Violations []ViolationInput `json:"violations" validate:"required,min=1,dive"`
}

type ViolationInput struct {
	ID        any `json:"id" validate:"notblank"`
	Type      any `json:"type" validate:"notblank"`
	Timestamp any `json:"timestamp" validate:"notblank,hms"`
	Latitude  any `json:"latitude" validate:"jsonnumber,latitude"`
	Longitude any `json:"longitude" validate:"jsonnumber,longitude"`
	ImageURL  any `json:"image_url" validate:"notblank"`
}

// UploadBatch is a validated UploadRequest with every field at its real type.
type UploadBatch struct {
	DroneID    string
	Date       string
	Location   string
	Violations []ViolationRecord
}

type ViolationRecord struct {
	ID        string
	Type      string
	Timestamp string
	Latitude  float64
	Longitude float64
	ImageURL  string
}

// Batch converts a request that passed validation. Fields of the wrong type
// come back as zero values.
func (r UploadRequest) Batch() UploadBatch {
	batch := UploadBatch{
		DroneID:    text(r.DroneID),
		Date:       text(r.Date),
		Location:   text(r.Location),
		Violations: make([]ViolationRecord, 0, len(r.Violations)),
	}
	for _, v := range r.Violations {
		batch.Violations = append(batch.Violations, ViolationRecord{
			ID:        text(v.ID),
			Type:      text(v.Type),
			Timestamp: text(v.Timestamp),
			Latitude:  number(v.Latitude),
			Longitude: number(v.Longitude),
			ImageURL:  text(v.ImageURL),
		})
	}
	return batch
}

func text(v any) string {
	s, _ := v.(string)
	return s
}

func number(v any) float64 {
	f, _ := v.(float64)
	return f
}

type UploadSummary struct {
	ID              uuid.UUID `json:"id"`
	Filename        string    `json:"filename"`
	ViolationsCount int       `json:"violationsCount"`
	Status          string    `json:"status"`
}

type UploadCreatedResponse struct {
	Message string        `json:"message"`
	Upload  UploadSummary `json:"upload"`
}

type UploadResponse struct {
	ID              uuid.UUID  `json:"id"`
	Filename        string     `json:"filename"`
	DroneID         string     `json:"droneId"`
	Date            string     `json:"date"`
	Location        string     `json:"location"`
	UserID          uuid.UUID  `json:"userId"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	ProcessedAt     *time.Time `json:"processedAt"`
	ViolationsCount int64      `json:"violationsCount"`
}

type UploadListResponse struct {
	Uploads    []UploadResponse         `json:"uploads"`
	Pagination commonDto.PaginationMeta `json:"pagination"`
}

type GetUploadRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type UploadDetailResponse struct {
	Upload     UploadResponse     `json:"upload"`
	Violations []entity.Violation `json:"violations"`
}
