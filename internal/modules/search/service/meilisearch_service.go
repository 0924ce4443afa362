package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"anoa.com/droneanalytics/internal/entity"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

const ViolationIndex = "violations"

// ErrSearchDisabled is returned when no search host is configured.
var ErrSearchDisabled = errors.New("search is not configured")

type MeiliSearchService interface {
	IndexViolations(ctx context.Context, upload *entity.Upload, violations []entity.Violation) error
	SearchViolations(ctx context.Context, query string, offset, limit int) (*SearchResult, error)
}

// ViolationDoc is the document stored in the violations index.
type ViolationDoc struct {
	ID             string  `json:"id"`
	ViolationID    string  `json:"violation_id"`
	DroneID        string  `json:"drone_id"`
	ViolationType  string  `json:"violation_type"`
	Timestamp      string  `json:"timestamp"`
	Date           string  `json:"date"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	ImageURL       string  `json:"image_url"`
	Location       string  `json:"location"`
	UploadID       string  `json:"upload_id"`
	UploadFilename string  `json:"upload_filename"`
	CreatedAt      int64   `json:"created_at"`
}

type SearchResult struct {
	Hits  []ViolationDoc
	Total int64
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewMeiliSearchService(client meilisearch.ServiceManager) MeiliSearchService {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

// Disabled returns an index that accepts writes silently and refuses searches
// with ErrSearchDisabled.
func Disabled() MeiliSearchService {
	return disabledSearch{}
}

func (s *meiliSearchService) initIndexes() {
	filterable := []string{"drone_id", "date", "violation_type", "upload_id"}
	filterableInterface := make([]any, len(filterable))
	for i, v := range filterable {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(ViolationIndex).UpdateFilterableAttributes(&filterableInterface); err != nil {
		logrus.WithError(err).Warn("failed to update violations filterable attributes")
	}

	sortable := []string{"created_at", "date"}
	if _, err := s.client.Index(ViolationIndex).UpdateSortableAttributes(&sortable); err != nil {
		logrus.WithError(err).Warn("failed to update violations sortable attributes")
	}

	logrus.Info("meilisearch indexes initialized")
}

// cleanText strips markup from free-form uploader text before it is indexed.
func (s *meiliSearchService) cleanText(content string) string {
	sanitized := s.sanitizer.Sanitize(content)
	clean := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(clean), " ")
}

func (s *meiliSearchService) IndexViolations(ctx context.Context, upload *entity.Upload, violations []entity.Violation) error {
	if len(violations) == 0 {
		return nil
	}

	docs := make([]ViolationDoc, 0, len(violations))
	for _, v := range violations {
		docs = append(docs, ViolationDoc{
			ID:             v.ID.String(),
			ViolationID:    s.cleanText(v.ViolationID),
			DroneID:        v.DroneID,
			ViolationType:  s.cleanText(v.ViolationType),
			Timestamp:      v.Timestamp,
			Date:           v.Date,
			Latitude:       v.Latitude,
			Longitude:      v.Longitude,
			ImageURL:       v.ImageURL,
			Location:       s.cleanText(v.Location),
			UploadID:       upload.ID.String(),
			UploadFilename: upload.Filename,
			CreatedAt:      v.CreatedAt.Unix(),
		})
	}

	task, err := s.client.Index(ViolationIndex).AddDocumentsWithContext(ctx, docs, strPtr("id"))
	if err != nil {
		return fmt.Errorf("failed to index violations: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"upload_id": upload.ID,
		"documents": len(docs),
		"task_uid":  task.TaskUID,
	}).Debug("violations queued for indexing")
	return nil
}

type rawSearchResponse struct {
	Hits               []ViolationDoc `json:"hits"`
	EstimatedTotalHits int64          `json:"estimatedTotalHits"`
	TotalHits          int64          `json:"totalHits"`
}

func (s *meiliSearchService) SearchViolations(ctx context.Context, query string, offset, limit int) (*SearchResult, error) {
	raw, err := s.client.Index(ViolationIndex).SearchRawWithContext(ctx, query, &meilisearch.SearchRequest{
		Offset: int64(offset),
		Limit:  int64(limit),
		Sort:   []string{"created_at:desc"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search violations: %w", err)
	}

	var resp rawSearchResponse
	if err := json.Unmarshal(*raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	total := resp.TotalHits
	if total == 0 {
		total = resp.EstimatedTotalHits
	}

	return &SearchResult{Hits: resp.Hits, Total: total}, nil
}

type disabledSearch struct{}

func (disabledSearch) IndexViolations(context.Context, *entity.Upload, []entity.Violation) error {
	return nil
}

func (disabledSearch) SearchViolations(context.Context, string, int, int) (*SearchResult, error) {
	return nil, ErrSearchDisabled
}

func strPtr(s string) *string {
	return &s
}
