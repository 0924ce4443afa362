package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"anoa.com/droneanalytics/internal/entity"
	violationDto "anoa.com/droneanalytics/internal/modules/violation/dto"
	repo "anoa.com/droneanalytics/internal/modules/violation/repository"
	"anoa.com/droneanalytics/internal/testutil"
	"anoa.com/droneanalytics/pkg/apperror"
	commonDto "anoa.com/droneanalytics/pkg/dto"
)

type seed struct {
	droneID string
	date    string
	kind    string
	n       int
}

func seedViolations(t *testing.T, db *gorm.DB, seeds ...seed) {
	t.Helper()

	user := testutil.CreateUser(t, db, "pilot")
	violations := repo.NewViolationRepository(db)

	for _, s := range seeds {
		upload := &entity.Upload{
			Filename: entity.UploadFilename(s.droneID, s.date),
			DroneID:  s.droneID,
			Date:     s.date,
			Location: "Zone A",
			UserID:   user.ID,
			Status:   entity.UploadStatusCompleted,
		}
		require.NoError(t, db.Create(upload).Error)

		batch := make([]entity.Violation, 0, s.n)
		for i := 0; i < s.n; i++ {
			batch = append(batch, entity.Violation{
				ViolationID:   fmt.Sprintf("%s-%d", s.droneID, i),
				DroneID:       s.droneID,
				ViolationType: s.kind,
				Timestamp:     "10:00:00",
				Date:          s.date,
				Latitude:      1,
				Longitude:     2,
				ImageURL:      "http://x/y.jpg",
				Location:      "Zone A",
				UploadID:      upload.ID,
			})
		}
		require.NoError(t, violations.CreateBatch(context.Background(), batch))
	}
}

func newTestService(t *testing.T) (ViolationService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return NewViolationService(repo.NewViolationRepository(db), nil), db
}

func TestGetViolationsFilters(t *testing.T) {
	svc, db := newTestService(t)
	seedViolations(t, db,
		seed{droneID: "D1", date: "2025-01-01", kind: "Fire Detected", n: 2},
		seed{droneID: "D2", date: "2025-01-01", kind: "Unauthorized Person", n: 3},
		seed{droneID: "D1", date: "2025-01-02", kind: "Unauthorized Person", n: 1},
	)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter violationDto.ViolationFilter
		want   int64
	}{
		{"no filter", violationDto.ViolationFilter{}, 6},
		{"by drone", violationDto.ViolationFilter{DroneID: "D1"}, 3},
		{"by date", violationDto.ViolationFilter{Date: "2025-01-01"}, 5},
		{"by type", violationDto.ViolationFilter{Type: "Unauthorized Person"}, 4},
		{"combined", violationDto.ViolationFilter{DroneID: "D1", Type: "Unauthorized Person"}, 1},
		{"no match", violationDto.ViolationFilter{DroneID: "D9"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := svc.GetViolations(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, list.Pagination.Total)
			assert.Len(t, list.Violations, int(tt.want))
			assert.NotNil(t, list.Violations)
		})
	}
}

func TestGetViolationsCarriesUploadReference(t *testing.T) {
	svc, db := newTestService(t)
	seedViolations(t, db, seed{droneID: "D1", date: "2025-01-01", kind: "Fire Detected", n: 1})

	list, err := svc.GetViolations(context.Background(), violationDto.ViolationFilter{DroneID: "D1"})
	require.NoError(t, err)
	require.Len(t, list.Violations, 1)
	require.NotNil(t, list.Violations[0].Upload)
	assert.Equal(t, "drone_D1_2025-01-01.json", list.Violations[0].Upload.Filename)
}

func TestGetViolationsPagination(t *testing.T) {
	svc, db := newTestService(t)
	seedViolations(t, db, seed{droneID: "D1", date: "2025-01-01", kind: "Fire Detected", n: 5})
	ctx := context.Background()

	tests := []struct {
		name     string
		page     commonDto.PageQuery
		returned int
		hasMore  bool
	}{
		{"defaults", commonDto.PageQuery{}, 5, false},
		{"first page", commonDto.PageQuery{Limit: 2}, 2, true},
		{"middle page", commonDto.PageQuery{Limit: 2, Offset: 2}, 2, true},
		{"last page", commonDto.PageQuery{Limit: 2, Offset: 4}, 1, false},
		{"exact end", commonDto.PageQuery{Limit: 5}, 5, false},
		{"offset beyond total", commonDto.PageQuery{Limit: 2, Offset: 50}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := svc.GetViolations(ctx, violationDto.ViolationFilter{PageQuery: tt.page})
			require.NoError(t, err)
			assert.Len(t, list.Violations, tt.returned)
			assert.Equal(t, int64(5), list.Pagination.Total)
			assert.Equal(t, tt.hasMore, list.Pagination.HasMore)
		})
	}
}

func TestGetViolationsNewestFirst(t *testing.T) {
	svc, db := newTestService(t)
	seedViolations(t, db,
		seed{droneID: "OLD", date: "2025-01-01", kind: "Fire Detected", n: 1},
		seed{droneID: "NEW", date: "2025-01-01", kind: "Fire Detected", n: 1},
	)

	list, err := svc.GetViolations(context.Background(), violationDto.ViolationFilter{})
	require.NoError(t, err)
	require.Len(t, list.Violations, 2)
	assert.Equal(t, "NEW", list.Violations[0].DroneID)
}

func TestGetStats(t *testing.T) {
	svc, db := newTestService(t)

	var seeds []seed
	for day := 1; day <= 9; day++ {
		seeds = append(seeds, seed{droneID: "D1", date: fmt.Sprintf("2025-01-%02d", day), kind: "Fire Detected", n: 1})
	}
	seeds = append(seeds, seed{droneID: "D2", date: "2025-01-09", kind: "Unauthorized Person", n: 2})
	seedViolations(t, db, seeds...)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(11), stats.TotalViolations)
	assert.Equal(t, []violationDto.TypeCount{
		{Type: "Fire Detected", Count: 9},
		{Type: "Unauthorized Person", Count: 2},
	}, stats.ViolationsByType)
	assert.Equal(t, []violationDto.DroneCount{
		{DroneID: "D1", Count: 9},
		{DroneID: "D2", Count: 2},
	}, stats.ViolationsByDrone)

	require.Len(t, stats.ViolationsByDate, StatsDateLimit)
	assert.Equal(t, violationDto.DateCount{Date: "2025-01-09", Count: 3}, stats.ViolationsByDate[0])
	assert.Equal(t, "2025-01-03", stats.ViolationsByDate[6].Date)
}

func TestGetStatsEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalViolations)
	assert.Empty(t, stats.ViolationsByType)
	assert.NotNil(t, stats.ViolationsByDate)
}

func TestSearchWithoutIndexIsUnavailable(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SearchViolations(context.Background(), violationDto.SearchQuery{Query: "fire"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrServiceUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, apperror.MapErrorToStatus(err))
}
