package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/phishsense/phishsense/internal/application/dto"
	"github.com/phishsense/phishsense/internal/domain/port"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListDetections is the use case for browsing the history of one host.
type ListDetections struct {
	repo port.DetectionRepository
}

// NewListDetections creates a new ListDetections use case.
func NewListDetections(repo port.DetectionRepository) *ListDetections {
	return &ListDetections{repo: repo}
}

// Execute returns the most recent detections for req.Host, newest first.
func (uc *ListDetections) Execute(ctx context.Context, req dto.ListDetectionsRequest) (dto.DetectionListResponse, error) {
	if uc.repo == nil {
		return dto.DetectionListResponse{}, ErrHistoryDisabled
	}
	host := strings.ToLower(strings.TrimSpace(req.Host))
	if host == "" {
		return dto.DetectionListResponse{}, fmt.Errorf("%w: host is required", ErrInvalidURL)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := max(req.Offset, 0)

	detections, err := uc.repo.FindByHost(ctx, host, limit, offset)
	if err != nil {
		return dto.DetectionListResponse{}, fmt.Errorf("failed to list detections for %s: %w", host, err)
	}

	items := make([]dto.DetectionResponse, 0, len(detections))
	for _, d := range detections {
		items = append(items, dto.FromModel(d))
	}
	return dto.DetectionListResponse{Host: host, Detections: items, Limit: limit, Offset: offset}, nil
}
