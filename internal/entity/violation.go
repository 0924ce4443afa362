package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Violation is one detected event. ViolationID is whatever identifier the
// uploader supplied and is not unique across uploads.
type Violation struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ViolationID   string    `gorm:"size:255;not null" json:"violationId"`
	DroneID       string    `gorm:"size:255;not null;index" json:"droneId"`
	ViolationType string    `gorm:"size:255;not null;index" json:"violationType"`
	Timestamp     string    `gorm:"size:8;not null" json:"timestamp"`
	Date          string    `gorm:"size:10;not null;index" json:"date"`
	Latitude      float64   `gorm:"not null" json:"latitude"`
	Longitude     float64   `gorm:"not null" json:"longitude"`
	ImageURL      string    `gorm:"type:text;not null" json:"imageUrl"`
	Location      string    `gorm:"size:255;not null" json:"location"`
	UploadID      uuid.UUID `gorm:"type:uuid;not null;index" json:"uploadId"`
	Upload        *Upload   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (v *Violation) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID, err = uuid.NewV7()
	}
	return
}
