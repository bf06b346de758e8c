package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/phishsense/phishsense/internal/application/dto"
	"github.com/phishsense/phishsense/internal/domain/port"
)

// ErrHistoryDisabled is returned when no detection repository is configured.
var ErrHistoryDisabled = errors.New("detection history is disabled")

// GetDetection is the use case for retrieving a stored detection.
type GetDetection struct {
	repo port.DetectionRepository
}

// NewGetDetection creates a new GetDetection use case. A nil repository
// makes every lookup fail with ErrHistoryDisabled.
func NewGetDetection(repo port.DetectionRepository) *GetDetection {
	return &GetDetection{repo: repo}
}

// Execute retrieves a detection by ID.
func (uc *GetDetection) Execute(ctx context.Context, req dto.GetDetectionRequest) (dto.DetectionResponse, error) {
	if uc.repo == nil {
		return dto.DetectionResponse{}, ErrHistoryDisabled
	}
	detection, err := uc.repo.FindByID(ctx, req.ID)
	if err != nil {
		return dto.DetectionResponse{}, fmt.Errorf("failed to find detection %s: %w", req.ID, err)
	}
	return dto.FromModel(detection), nil
}
