package port

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/phishsense/phishsense/internal/domain/model"
	"github.com/phishsense/phishsense/pkg/events"
)

// ErrDetectionNotFound is returned when no detection exists for an ID.
var ErrDetectionNotFound = errors.New("detection not found")

// DetectionRepository defines the persistence port for detection history.
type DetectionRepository interface {
	// Save persists a detection.
	Save(ctx context.Context, detection *model.Detection) error

	// FindByID retrieves a detection by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Detection, error)

	// FindByHost retrieves the most recent detections for a host.
	FindByHost(ctx context.Context, host string, limit, offset int) ([]*model.Detection, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, events ...events.DomainEvent) error
}
