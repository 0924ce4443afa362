package repository

import (
	"context"

	"anoa.com/droneanalytics/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// insertBatchSize keeps a single INSERT under the bind-parameter limits of
// both postgres and sqlite.
const insertBatchSize = 200

type Filter struct {
	DroneID string
	Date    string
	Type    string
}

type GroupCount struct {
	Label string
	Count int64
}

type ViolationRepository interface {
	CreateBatch(ctx context.Context, violations []entity.Violation) error
	FindAll(ctx context.Context, filter Filter, offset, limit int) ([]entity.Violation, int64, error)
	FindByUploadID(ctx context.Context, uploadID uuid.UUID) ([]entity.Violation, error)
	CountByUploadIDs(ctx context.Context, uploadIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	Count(ctx context.Context) (int64, error)
	CountByType(ctx context.Context) ([]GroupCount, error)
	CountByDrone(ctx context.Context) ([]GroupCount, error)
	// CountByDate returns the most recent dates first, at most limit of them.
	CountByDate(ctx context.Context, limit int) ([]GroupCount, error)
}

type violationRepository struct {
	db *gorm.DB
}

func NewViolationRepository(db *gorm.DB) ViolationRepository {
	return &violationRepository{db: db}
}

func (r *violationRepository) CreateBatch(ctx context.Context, violations []entity.Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&violations, insertBatchSize).Error
}

func (r *violationRepository) FindAll(ctx context.Context, filter Filter, offset, limit int) ([]entity.Violation, int64, error) {
	var violations []entity.Violation
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Violation{})

	if filter.DroneID != "" {
		query = query.Where("drone_id = ?", filter.DroneID)
	}
	if filter.Date != "" {
		query = query.Where("date = ?", filter.Date)
	}
	if filter.Type != "" {
		query = query.Where("violation_type = ?", filter.Type)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Upload").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&violations).Error; err != nil {
		return nil, 0, err
	}

	return violations, total, nil
}

func (r *violationRepository) FindByUploadID(ctx context.Context, uploadID uuid.UUID) ([]entity.Violation, error) {
	var violations []entity.Violation
	err := r.db.WithContext(ctx).
		Where("upload_id = ?", uploadID).
		Order("id ASC").
		Find(&violations).Error
	return violations, err
}

func (r *violationRepository) CountByUploadIDs(ctx context.Context, uploadIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(uploadIDs))
	if len(uploadIDs) == 0 {
		return counts, nil
	}

	type Result struct {
		UploadID uuid.UUID
		Count    int64
	}
	var results []Result

	err := r.db.WithContext(ctx).
		Model(&entity.Violation{}).
		Select("upload_id, count(*) as count").
		Where("upload_id IN ?", uploadIDs).
		Group("upload_id").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		counts[res.UploadID] = res.Count
	}
	return counts, nil
}

func (r *violationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Violation{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *violationRepository) CountByType(ctx context.Context) ([]GroupCount, error) {
	return r.countGrouped(ctx, "violation_type", "count DESC, label ASC", 0)
}

func (r *violationRepository) CountByDrone(ctx context.Context) ([]GroupCount, error) {
	return r.countGrouped(ctx, "drone_id", "count DESC, label ASC", 0)
}

func (r *violationRepository) CountByDate(ctx context.Context, limit int) ([]GroupCount, error) {
	return r.countGrouped(ctx, "date", "label DESC", limit)
}

// countGrouped counts rows per value of column. column and order are never
// caller input.
func (r *violationRepository) countGrouped(ctx context.Context, column, order string, limit int) ([]GroupCount, error) {
	var results []GroupCount

	query := r.db.WithContext(ctx).
		Model(&entity.Violation{}).
		Select(column + " as label, count(*) as count").
		Group(column).
		Order(order)
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
