package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"anoa.com/droneanalytics/internal/entity"
	search "anoa.com/droneanalytics/internal/modules/search/service"
	uploadDto "anoa.com/droneanalytics/internal/modules/upload/dto"
	repo "anoa.com/droneanalytics/internal/modules/upload/repository"
	violationRepo "anoa.com/droneanalytics/internal/modules/violation/repository"
	"anoa.com/droneanalytics/internal/validation"
	"anoa.com/droneanalytics/pkg/apperror"
	commonDto "anoa.com/droneanalytics/pkg/dto"
	"anoa.com/droneanalytics/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UploadService interface {
	Ingest(ctx context.Context, userID uuid.UUID, req uploadDto.UploadRequest) (*uploadDto.UploadCreatedResponse, error)
	GetUploads(ctx context.Context, userID uuid.UUID, page commonDto.PageQuery) (*uploadDto.UploadListResponse, error)
	GetAllUploads(ctx context.Context, page commonDto.PageQuery) (*uploadDto.UploadListResponse, error)
	GetUpload(ctx context.Context, userID, uploadID uuid.UUID) (*uploadDto.UploadDetailResponse, error)
}

type uploadService struct {
	uow           repo.UnitOfWork
	uploadRepo    repo.UploadRepository
	violationRepo violationRepo.ViolationRepository
	limiter       *ratelimiter.Limiter
	meili         search.MeiliSearchService
	now           func() time.Time
}

func NewUploadService(uow repo.UnitOfWork, uploadRepo repo.UploadRepository, violationRepo violationRepo.ViolationRepository, limiter *ratelimiter.Limiter, meili search.MeiliSearchService) UploadService {
	if meili == nil {
		meili = search.Disabled()
	}
	return &uploadService{
		uow:           uow,
		uploadRepo:    uploadRepo,
		violationRepo: violationRepo,
		limiter:       limiter,
		meili:         meili,
		now:           time.Now,
	}
}

func (s *uploadService) Ingest(ctx context.Context, userID uuid.UUID, req uploadDto.UploadRequest) (*uploadDto.UploadCreatedResponse, error) {
	if err := s.acquire(ctx, userID); err != nil {
		return nil, err
	}

	if res := validation.Upload(req); !res.Valid {
		s.release(ctx, userID)
		return nil, apperror.Validation("Invalid JSON format", res.Errors)
	}

	upload, violations, err := s.persist(ctx, userID, req.Batch())
	if err != nil {
		s.release(ctx, userID)
		return nil, apperror.New(http.StatusInternalServerError, "Upload processing failed", err)
	}

	if err := s.meili.IndexViolations(ctx, upload, violations); err != nil {
		logrus.WithFields(logrus.Fields{
			"upload_id": upload.ID,
		}).WithError(err).Warn("failed to index violations")
	}

	return &uploadDto.UploadCreatedResponse{
		Message: "JSON uploaded and processed successfully",
		Upload: uploadDto.UploadSummary{
			ID:              upload.ID,
			Filename:        upload.Filename,
			ViolationsCount: len(violations),
			Status:          upload.Status,
		},
	}, nil
}

// persist writes the upload and all of its violations in one transaction.
// Nothing is left behind when any step fails.
func (s *uploadService) persist(ctx context.Context, userID uuid.UUID, batch uploadDto.UploadBatch) (*entity.Upload, []entity.Violation, error) {
	tx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil {
			logrus.WithError(rbErr).Warn("failed to roll back upload transaction")
		}
	}()

	upload := &entity.Upload{
		Filename: entity.UploadFilename(batch.DroneID, batch.Date),
		DroneID:  batch.DroneID,
		Date:     batch.Date,
		Location: batch.Location,
		UserID:   userID,
		Status:   entity.UploadStatusProcessing,
	}
	if err := tx.Uploads().Create(ctx, upload); err != nil {
		return nil, nil, err
	}

	violations := buildViolations(upload, batch.Violations)
	if err := tx.Violations().CreateBatch(ctx, violations); err != nil {
		return nil, nil, err
	}

	processedAt := s.now()
	if err := tx.Uploads().MarkCompleted(ctx, upload.ID, processedAt); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	upload.Status = entity.UploadStatusCompleted
	upload.ProcessedAt = &processedAt
	return upload, violations, nil
}

func buildViolations(upload *entity.Upload, inputs []uploadDto.ViolationRecord) []entity.Violation {
	violations := make([]entity.Violation, 0, len(inputs))
	for _, in := range inputs {
		violations = append(violations, entity.Violation{
			ViolationID:   in.ID,
			DroneID:       upload.DroneID,
			ViolationType: in.Type,
			Timestamp:     in.Timestamp,
			Date:          upload.Date,
			Latitude:      in.Latitude,
			Longitude:     in.Longitude,
			ImageURL:      in.ImageURL,
			Location:      upload.Location,
			UploadID:      upload.ID,
		})
	}
	return violations
}

func (s *uploadService) acquire(ctx context.Context, userID uuid.UUID) error {
	err := s.limiter.Acquire(ctx, userID)
	if err == nil {
		return nil
	}

	var rateLimitErr *ratelimiter.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return err
	}

	// Redis being unreachable must not block ingestion.
	logrus.WithError(err).Warn("upload rate limit check failed, continuing without it")
	return nil
}

func (s *uploadService) release(ctx context.Context, userID uuid.UUID) {
	if err := s.limiter.Release(ctx, userID); err != nil {
		logrus.WithError(err).Warn("failed to release upload rate limit")
	}
}

func (s *uploadService) GetUploads(ctx context.Context, userID uuid.UUID, page commonDto.PageQuery) (*uploadDto.UploadListResponse, error) {
	page = page.Normalize()

	uploads, total, err := s.uploadRepo.FindByUserID(ctx, userID, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}

	return s.buildUploadList(ctx, uploads, total, page)
}

func (s *uploadService) GetAllUploads(ctx context.Context, page commonDto.PageQuery) (*uploadDto.UploadListResponse, error) {
	page = page.Normalize()

	uploads, total, err := s.uploadRepo.FindAll(ctx, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}

	return s.buildUploadList(ctx, uploads, total, page)
}

func (s *uploadService) GetUpload(ctx context.Context, userID, uploadID uuid.UUID) (*uploadDto.UploadDetailResponse, error) {
	upload, err := s.uploadRepo.FindByIDForUser(ctx, uploadID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "Upload not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	violations, err := s.violationRepo.FindByUploadID(ctx, upload.ID)
	if err != nil {
		return nil, err
	}
	if violations == nil {
		violations = []entity.Violation{}
	}

	return &uploadDto.UploadDetailResponse{
		Upload:     toUploadResponse(*upload, int64(len(violations))),
		Violations: violations,
	}, nil
}

func (s *uploadService) buildUploadList(ctx context.Context, uploads []entity.Upload, total int64, page commonDto.PageQuery) (*uploadDto.UploadListResponse, error) {
	ids := make([]uuid.UUID, 0, len(uploads))
	for _, u := range uploads {
		ids = append(ids, u.ID)
	}

	counts, err := s.violationRepo.CountByUploadIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]uploadDto.UploadResponse, 0, len(uploads))
	for _, u := range uploads {
		items = append(items, toUploadResponse(u, counts[u.ID]))
	}

	return &uploadDto.UploadListResponse{
		Uploads:    items,
		Pagination: commonDto.NewPaginationMeta(total, page, len(items)),
	}, nil
}

func toUploadResponse(u entity.Upload, violationsCount int64) uploadDto.UploadResponse {
	return uploadDto.UploadResponse{
		ID:              u.ID,
		Filename:        u.Filename,
		DroneID:         u.DroneID,
		Date:            u.Date,
		Location:        u.Location,
		UserID:          u.UserID,
		Status:          u.Status,
		CreatedAt:       u.CreatedAt,
		ProcessedAt:     u.ProcessedAt,
		ViolationsCount: violationsCount,
	}
}
