package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"anoa.com/droneanalytics/internal/entity"
	search "anoa.com/droneanalytics/internal/modules/search/service"
	violationDto "anoa.com/droneanalytics/internal/modules/violation/dto"
	repo "anoa.com/droneanalytics/internal/modules/violation/repository"
	"anoa.com/droneanalytics/pkg/apperror"
	commonDto "anoa.com/droneanalytics/pkg/dto"
	"github.com/google/uuid"
)

// StatsDateLimit is how many of the most recent dates the stats endpoint reports.
const StatsDateLimit = 7

type ViolationService interface {
	GetViolations(ctx context.Context, filter violationDto.ViolationFilter) (*violationDto.ViolationListResponse, error)
	GetStats(ctx context.Context) (*violationDto.StatsResponse, error)
	SearchViolations(ctx context.Context, query violationDto.SearchQuery) (*violationDto.ViolationListResponse, error)
}

type violationService struct {
	repo  repo.ViolationRepository
	meili search.MeiliSearchService
}

func NewViolationService(repo repo.ViolationRepository, meili search.MeiliSearchService) ViolationService {
	if meili == nil {
		meili = search.Disabled()
	}
	return &violationService{repo: repo, meili: meili}
}

func (s *violationService) GetViolations(ctx context.Context, filter violationDto.ViolationFilter) (*violationDto.ViolationListResponse, error) {
	page := filter.PageQuery.Normalize()

	violations, total, err := s.repo.FindAll(ctx, repo.Filter{
		DroneID: filter.DroneID,
		Date:    filter.Date,
		Type:    filter.Type,
	}, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]violationDto.ViolationResponse, 0, len(violations))
	for _, v := range violations {
		items = append(items, toViolationResponse(v))
	}

	return &violationDto.ViolationListResponse{
		Violations: items,
		Pagination: commonDto.NewPaginationMeta(total, page, len(items)),
	}, nil
}

func (s *violationService) GetStats(ctx context.Context) (*violationDto.StatsResponse, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	byType, err := s.repo.CountByType(ctx)
	if err != nil {
		return nil, err
	}

	byDrone, err := s.repo.CountByDrone(ctx)
	if err != nil {
		return nil, err
	}

	byDate, err := s.repo.CountByDate(ctx, StatsDateLimit)
	if err != nil {
		return nil, err
	}

	stats := &violationDto.StatsResponse{
		TotalViolations:   total,
		ViolationsByType:  make([]violationDto.TypeCount, 0, len(byType)),
		ViolationsByDrone: make([]violationDto.DroneCount, 0, len(byDrone)),
		ViolationsByDate:  make([]violationDto.DateCount, 0, len(byDate)),
	}
	for _, g := range byType {
		stats.ViolationsByType = append(stats.ViolationsByType, violationDto.TypeCount{Type: g.Label, Count: g.Count})
	}
	for _, g := range byDrone {
		stats.ViolationsByDrone = append(stats.ViolationsByDrone, violationDto.DroneCount{DroneID: g.Label, Count: g.Count})
	}
	for _, g := range byDate {
		stats.ViolationsByDate = append(stats.ViolationsByDate, violationDto.DateCount{Date: g.Label, Count: g.Count})
	}

	return stats, nil
}

func (s *violationService) SearchViolations(ctx context.Context, query violationDto.SearchQuery) (*violationDto.ViolationListResponse, error) {
	page := query.PageQuery.Normalize()

	result, err := s.meili.SearchViolations(ctx, query.Query, page.Offset, page.Limit)
	if err != nil {
		if errors.Is(err, search.ErrSearchDisabled) {
			return nil, apperror.New(http.StatusServiceUnavailable, "Search is not available", apperror.ErrServiceUnavailable)
		}
		return nil, err
	}

	items := make([]violationDto.ViolationResponse, 0, len(result.Hits))
	for _, hit := range result.Hits {
		items = append(items, fromSearchDoc(hit))
	}

	return &violationDto.ViolationListResponse{
		Violations: items,
		Pagination: commonDto.NewPaginationMeta(result.Total, page, len(items)),
	}, nil
}

func toViolationResponse(v entity.Violation) violationDto.ViolationResponse {
	resp := violationDto.ViolationResponse{
		ID:            v.ID,
		ViolationID:   v.ViolationID,
		DroneID:       v.DroneID,
		ViolationType: v.ViolationType,
		Timestamp:     v.Timestamp,
		Date:          v.Date,
		Latitude:      v.Latitude,
		Longitude:     v.Longitude,
		ImageURL:      v.ImageURL,
		Location:      v.Location,
		UploadID:      v.UploadID,
		CreatedAt:     v.CreatedAt,
	}
	if v.Upload != nil {
		resp.Upload = &violationDto.UploadRef{
			Filename:  v.Upload.Filename,
			CreatedAt: v.Upload.CreatedAt,
		}
	}
	return resp
}

func fromSearchDoc(doc search.ViolationDoc) violationDto.ViolationResponse {
	id, _ := uuid.Parse(doc.ID)
	uploadID, _ := uuid.Parse(doc.UploadID)

	resp := violationDto.ViolationResponse{
		ID:            id,
		ViolationID:   doc.ViolationID,
		DroneID:       doc.DroneID,
		ViolationType: doc.ViolationType,
		Timestamp:     doc.Timestamp,
		Date:          doc.Date,
		Latitude:      doc.Latitude,
		Longitude:     doc.Longitude,
		ImageURL:      doc.ImageURL,
		Location:      doc.Location,
		UploadID:      uploadID,
		CreatedAt:     time.Unix(doc.CreatedAt, 0).UTC(),
	}
	if doc.UploadFilename != "" {
		resp.Upload = &violationDto.UploadRef{Filename: doc.UploadFilename}
	}
	return resp
}
