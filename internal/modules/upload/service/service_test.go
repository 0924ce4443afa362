package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"anoa.com/droneanalytics/internal/entity"
	search "anoa.com/droneanalytics/internal/modules/search/service"
	uploadDto "anoa.com/droneanalytics/internal/modules/upload/dto"
	repo "anoa.com/droneanalytics/internal/modules/upload/repository"
	violationRepo "anoa.com/droneanalytics/internal/modules/violation/repository"
	"anoa.com/droneanalytics/internal/testutil"
	"anoa.com/droneanalytics/pkg/apperror"
	commonDto "anoa.com/droneanalytics/pkg/dto"
	"anoa.com/droneanalytics/pkg/ratelimiter"
)

type recordingSearch struct {
	indexed []entity.Violation
	err     error
}

func (r *recordingSearch) IndexViolations(_ context.Context, _ *entity.Upload, violations []entity.Violation) error {
	r.indexed = append(r.indexed, violations...)
	return r.err
}

func (r *recordingSearch) SearchViolations(context.Context, string, int, int) (*search.SearchResult, error) {
	return nil, search.ErrSearchDisabled
}

type failingViolations struct {
	violationRepo.ViolationRepository
}

func (failingViolations) CreateBatch(context.Context, []entity.Violation) error {
	return errors.New("disk full")
}

type failingTx struct {
	repo.Tx
}

func (t failingTx) Violations() violationRepo.ViolationRepository {
	return failingViolations{t.Tx.Violations()}
}

type failingUnitOfWork struct {
	repo.UnitOfWork
}

func (u failingUnitOfWork) Begin(ctx context.Context) (repo.Tx, error) {
	tx, err := u.UnitOfWork.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return failingTx{tx}, nil
}

func uploadRequest(droneID, date string, n int) uploadDto.UploadRequest {
	req := uploadDto.UploadRequest{DroneID: droneID, Date: date, Location: "Zone A"}
	for i := 0; i < n; i++ {
		req.Violations = append(req.Violations, uploadDto.ViolationInput{
			ID:        fmt.Sprintf("v%d", i+1),
			Type:      "Fire Detected",
			Timestamp: "10:00:00",
			Latitude:  12.5,
			Longitude: 45.5,
			ImageURL:  "http://x/y.jpg",
		})
	}
	return req
}

func newTestService(t *testing.T, uow func(repo.UnitOfWork) repo.UnitOfWork) (*uploadService, *gorm.DB, *recordingSearch) {
	t.Helper()

	db := testutil.NewDB(t)
	unitOfWork := repo.NewUnitOfWork(db)
	if uow != nil {
		unitOfWork = uow(unitOfWork)
	}
	idx := &recordingSearch{}

	svc := NewUploadService(unitOfWork, repo.NewUploadRepository(db), violationRepo.NewViolationRepository(db), nil, idx)
	return svc.(*uploadService), db, idx
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestIngestCreatesOneUploadAndEveryViolation(t *testing.T) {
	svc, db, idx := newTestService(t, nil)
	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	user := testutil.CreateUser(t, db, "pilot")

	resp, err := svc.Ingest(context.Background(), user.ID, uploadRequest("D1", "2025-01-01", 3))
	require.NoError(t, err)

	assert.Equal(t, "JSON uploaded and processed successfully", resp.Message)
	assert.Equal(t, "drone_D1_2025-01-01.json", resp.Upload.Filename)
	assert.Equal(t, 3, resp.Upload.ViolationsCount)
	assert.Equal(t, entity.UploadStatusCompleted, resp.Upload.Status)

	assert.Equal(t, int64(1), countRows(t, db, &entity.Upload{}))
	assert.Equal(t, int64(3), countRows(t, db, &entity.Violation{}))

	var stored entity.Upload
	require.NoError(t, db.First(&stored, "id = ?", resp.Upload.ID).Error)
	assert.Equal(t, entity.UploadStatusCompleted, stored.Status)
	require.NotNil(t, stored.ProcessedAt)
	assert.True(t, fixed.Equal(*stored.ProcessedAt))
	assert.Equal(t, user.ID, stored.UserID)

	var violations []entity.Violation
	require.NoError(t, db.Where("upload_id = ?", resp.Upload.ID).Find(&violations).Error)
	for _, v := range violations {
		assert.Equal(t, "D1", v.DroneID)
		assert.Equal(t, "2025-01-01", v.Date)
		assert.Equal(t, "Zone A", v.Location)
	}

	assert.Len(t, idx.indexed, 3)
}

func TestIngestRejectsInvalidPayloadWithoutWriting(t *testing.T) {
	svc, db, idx := newTestService(t, nil)
	user := testutil.CreateUser(t, db, "pilot")

	req := uploadRequest("D1", "2025-01-01", 2)
	req.Violations[1].Latitude = 91.0

	_, err := svc.Ingest(context.Background(), user.ID, req)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, "Invalid JSON format", appErr.Message)
	assert.Equal(t, []string{"Violation 1: latitude must be a number between -90 and 90"}, appErr.Details)

	assert.Zero(t, countRows(t, db, &entity.Upload{}))
	assert.Zero(t, countRows(t, db, &entity.Violation{}))
	assert.Empty(t, idx.indexed)
}

func TestIngestRollsBackWhenViolationInsertFails(t *testing.T) {
	svc, db, idx := newTestService(t, func(u repo.UnitOfWork) repo.UnitOfWork {
		return failingUnitOfWork{u}
	})
	user := testutil.CreateUser(t, db, "pilot")

	_, err := svc.Ingest(context.Background(), user.ID, uploadRequest("D1", "2025-01-01", 2))
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Equal(t, "Upload processing failed", appErr.Message)

	assert.Zero(t, countRows(t, db, &entity.Upload{}))
	assert.Zero(t, countRows(t, db, &entity.Violation{}))
	assert.Empty(t, idx.indexed)
}

func TestIngestSucceedsWhenIndexingFails(t *testing.T) {
	svc, db, idx := newTestService(t, nil)
	idx.err = errors.New("meilisearch down")
	user := testutil.CreateUser(t, db, "pilot")

	resp, err := svc.Ingest(context.Background(), user.ID, uploadRequest("D1", "2025-01-01", 1))
	require.NoError(t, err)
	assert.Equal(t, entity.UploadStatusCompleted, resp.Upload.Status)
	assert.Equal(t, int64(1), countRows(t, db, &entity.Violation{}))
}

func TestIngestAllowsDuplicateSubmissions(t *testing.T) {
	svc, db, _ := newTestService(t, nil)
	user := testutil.CreateUser(t, db, "pilot")
	req := uploadRequest("D1", "2025-01-01", 2)

	_, err := svc.Ingest(context.Background(), user.ID, req)
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), user.ID, req)
	require.NoError(t, err)

	assert.Equal(t, int64(2), countRows(t, db, &entity.Upload{}))
	assert.Equal(t, int64(4), countRows(t, db, &entity.Violation{}))
}

func TestGetUploadsIsScopedToCaller(t *testing.T) {
	svc, db, _ := newTestService(t, nil)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	_, err := svc.Ingest(ctx, alice.ID, uploadRequest("A1", "2025-01-01", 2))
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, alice.ID, uploadRequest("A2", "2025-01-02", 5))
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, bob.ID, uploadRequest("B1", "2025-01-01", 1))
	require.NoError(t, err)

	list, err := svc.GetUploads(ctx, alice.ID, commonDto.PageQuery{})
	require.NoError(t, err)

	require.Len(t, list.Uploads, 2)
	assert.Equal(t, "A2", list.Uploads[0].DroneID, "newest first")
	assert.Equal(t, int64(5), list.Uploads[0].ViolationsCount)
	assert.Equal(t, int64(2), list.Uploads[1].ViolationsCount)
	assert.Equal(t, commonDto.PaginationMeta{Total: 2, Limit: commonDto.DefaultLimit, Offset: 0, HasMore: false}, list.Pagination)

	page, err := svc.GetUploads(ctx, alice.ID, commonDto.PageQuery{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page.Uploads, 1)
	assert.True(t, page.Pagination.HasMore)

	all, err := svc.GetAllUploads(ctx, commonDto.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Pagination.Total)
}

func TestGetUploadHidesOtherUsersUploads(t *testing.T) {
	svc, db, _ := newTestService(t, nil)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	created, err := svc.Ingest(ctx, alice.ID, uploadRequest("A1", "2025-01-01", 2))
	require.NoError(t, err)

	detail, err := svc.GetUpload(ctx, alice.ID, created.Upload.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Violations, 2)
	assert.Equal(t, int64(2), detail.Upload.ViolationsCount)

	_, err = svc.GetUpload(ctx, bob.ID, created.Upload.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.GetUpload(ctx, alice.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func withLimiter(svc *uploadService) *testutil.RedisStore {
	store := testutil.NewRedisStore()
	svc.limiter = ratelimiter.New(store, "upload", time.Minute)
	return store
}

func limiterKey(userID uuid.UUID) string {
	return "rate_limit:user:" + userID.String() + ":upload"
}

func TestIngestRateLimitsRepeatUploads(t *testing.T) {
	svc, db, _ := newTestService(t, nil)
	store := withLimiter(svc)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "pilot")

	_, err := svc.Ingest(ctx, user.ID, uploadRequest("D1", "2025-01-01", 1))
	require.NoError(t, err)
	assert.True(t, store.Held(limiterKey(user.ID)))

	_, err = svc.Ingest(ctx, user.ID, uploadRequest("D2", "2025-01-01", 1))
	var rateLimitErr *ratelimiter.RateLimitError
	require.ErrorAs(t, err, &rateLimitErr)
	assert.Equal(t, time.Minute, rateLimitErr.RetryAfter)
	assert.Equal(t, int64(1), countRows(t, db, &entity.Upload{}))
}

func TestIngestFreesRateLimitWhenUploadFails(t *testing.T) {
	t.Run("invalid payload", func(t *testing.T) {
		svc, db, _ := newTestService(t, nil)
		store := withLimiter(svc)
		user := testutil.CreateUser(t, db, "pilot")

		req := uploadRequest("D1", "2025-01-01", 1)
		req.Violations[0].Latitude = "north"
		_, err := svc.Ingest(context.Background(), user.ID, req)
		require.Error(t, err)
		assert.False(t, store.Held(limiterKey(user.ID)))

		_, err = svc.Ingest(context.Background(), user.ID, uploadRequest("D1", "2025-01-01", 1))
		assert.NoError(t, err)
	})

	t.Run("persistence failure", func(t *testing.T) {
		svc, db, _ := newTestService(t, func(u repo.UnitOfWork) repo.UnitOfWork {
			return failingUnitOfWork{u}
		})
		store := withLimiter(svc)
		user := testutil.CreateUser(t, db, "pilot")

		_, err := svc.Ingest(context.Background(), user.ID, uploadRequest("D1", "2025-01-01", 1))
		require.Error(t, err)
		assert.False(t, store.Held(limiterKey(user.ID)))
	})
}

func TestIngestContinuesWhenRateLimitStoreFails(t *testing.T) {
	svc, db, _ := newTestService(t, nil)
	store := withLimiter(svc)
	store.Err = errors.New("connection refused")
	user := testutil.CreateUser(t, db, "pilot")

	_, err := svc.Ingest(context.Background(), user.ID, uploadRequest("D1", "2025-01-01", 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), countRows(t, db, &entity.Upload{}))
}
