package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
)

// Upload is one ingested JSON batch. It is owned by exactly one user.
type Upload struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Filename    string     `gorm:"size:255;not null" json:"filename"`
	DroneID     string     `gorm:"size:255;not null;index" json:"droneId"`
	Date        string     `gorm:"size:10;not null" json:"date"`
	Location    string     `gorm:"size:255;not null" json:"location"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	User        User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Status      string     `gorm:"size:20;not null;default:processing" json:"status"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
	ProcessedAt *time.Time `json:"processedAt"`
}

func (u *Upload) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	return
}

// UploadFilename is the synthesized name an upload is stored under.
func UploadFilename(droneID, date string) string {
	return fmt.Sprintf("drone_%s_%s.json", droneID, date)
}
