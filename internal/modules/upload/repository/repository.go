package repository

import (
	"context"
	"fmt"
	"time"

	"anoa.com/droneanalytics/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UploadRepository interface {
	Create(ctx context.Context, upload *entity.Upload) error
	// MarkCompleted moves a processing upload to completed. It fails when the
	// upload does not exist or has already left the processing state.
	MarkCompleted(ctx context.Context, id uuid.UUID, processedAt time.Time) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Upload, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Upload, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]entity.Upload, int64, error)
	FindAll(ctx context.Context, offset, limit int) ([]entity.Upload, int64, error)
}

type uploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, upload *entity.Upload) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

func (r *uploadRepository) MarkCompleted(ctx context.Context, id uuid.UUID, processedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Upload{}).
		Where("id = ? AND status = ?", id, entity.UploadStatusProcessing).
		Updates(map[string]interface{}{
			"status":       entity.UploadStatusCompleted,
			"processed_at": processedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("upload %s is not processing", id)
	}
	return nil
}

func (r *uploadRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Upload, error) {
	var upload entity.Upload
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&upload).Error; err != nil {
		return nil, err
	}
	return &upload, nil
}

func (r *uploadRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Upload, error) {
	var upload entity.Upload
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&upload).Error; err != nil {
		return nil, err
	}
	return &upload, nil
}

func (r *uploadRepository) FindByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]entity.Upload, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&entity.Upload{}).
		Where("user_id = ?", userID)
	return r.page(query, offset, limit)
}

func (r *uploadRepository) FindAll(ctx context.Context, offset, limit int) ([]entity.Upload, int64, error) {
	return r.page(r.db.WithContext(ctx).Model(&entity.Upload{}), offset, limit)
}

func (r *uploadRepository) page(query *gorm.DB, offset, limit int) ([]entity.Upload, int64, error) {
	var uploads []entity.Upload
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&uploads).Error; err != nil {
		return nil, 0, err
	}

	return uploads, total, nil
}
