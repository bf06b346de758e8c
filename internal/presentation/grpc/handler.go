package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/phishsense/phishsense/internal/application/dto"
	"github.com/phishsense/phishsense/internal/application/usecase"
	"github.com/phishsense/phishsense/internal/domain/port"
)

// Compile-time assertion that DetectionServiceHandler implements DetectionServiceServer.
var _ DetectionServiceServer = (*DetectionServiceHandler)(nil)

// DetectionServiceHandler implements the gRPC DetectionServiceServer interface.
type DetectionServiceHandler struct {
	UnimplementedDetectionServiceServer
	detectURL      *usecase.DetectURL
	getDetection   *usecase.GetDetection
	listDetections *usecase.ListDetections
	logger         *slog.Logger
}

// NewDetectionServiceHandler creates a new gRPC handler.
func NewDetectionServiceHandler(
	detectURL *usecase.DetectURL,
	getDetection *usecase.GetDetection,
	listDetections *usecase.ListDetections,
	logger *slog.Logger,
) *DetectionServiceHandler {
	return &DetectionServiceHandler{
		detectURL:      detectURL,
		getDetection:   getDetection,
		listDetections: listDetections,
		logger:         logger,
	}
}

// Proto-aligned request/response message types.

// DetectRequest represents the proto DetectRequest message.
type DetectRequest struct {
	URL     string `json:"url"`
	Verbose bool   `json:"verbose"`
}

// DetectResponse represents the proto DetectResponse message.
type DetectResponse struct {
	Detection *DetectionMsg `json:"detection"`
}

// GetDetectionRequest represents the proto GetDetectionRequest message.
type GetDetectionRequest struct {
	ID string `json:"id"`
}

// GetDetectionResponse represents the proto GetDetectionResponse message.
type GetDetectionResponse struct {
	Detection *DetectionMsg `json:"detection"`
}

// ListDetectionsRequest represents the proto ListDetectionsRequest message.
type ListDetectionsRequest struct {
	Host   string `json:"host"`
	Limit  int32  `json:"limit"`
	Offset int32  `json:"offset"`
}

// ListDetectionsResponse represents the proto ListDetectionsResponse message.
type ListDetectionsResponse struct {
	Detections []*DetectionMsg `json:"detections"`
}

// DetectionMsg represents the proto Detection message.
type DetectionMsg struct {
	ClassifierProbability *float64     `json:"classifier_probability,omitempty"`
	ID                    string       `json:"id"`
	URL                   string       `json:"url"`
	ThreatLevel           string       `json:"threat_level"`
	DetectedAt            string       `json:"detected_at"`
	Reasons               []string     `json:"reasons"`
	Features              []FeatureMsg `json:"features,omitempty"`
	Confidence            float64      `json:"confidence"`
	HeuristicScore        float64      `json:"heuristic_score"`
	IsPhishing            bool         `json:"is_phishing"`
}

// FeatureMsg represents the proto Feature message.
type FeatureMsg struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func toDetectionMsg(r dto.DetectionResponse) *DetectionMsg {
	msg := &DetectionMsg{
		ID:          r.ID.String(),
		URL:         r.URL,
		IsPhishing:  r.IsPhishing,
		Confidence:  r.Confidence,
		ThreatLevel: r.ThreatLevel,
		Reasons:     r.Reasons,
		DetectedAt:  r.DetectedAt.Format(time.RFC3339Nano),
	}
	if r.Details != nil {
		msg.HeuristicScore = r.Details.HeuristicScore
		msg.ClassifierProbability = r.Details.ClassifierProbability
		for _, f := range r.Details.Features {
			msg.Features = append(msg.Features, FeatureMsg{Name: f.Name, Value: f.Value})
		}
	}
	return msg
}

// Detect handles a URL detection request.
func (h *DetectionServiceHandler) Detect(ctx context.Context, req *DetectRequest) (*DetectResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.detectURL.Execute(ctx, dto.DetectRequest{URL: req.URL, Verbose: req.Verbose})
	if err != nil {
		return nil, h.toStatus(ctx, "detect", err)
	}

	// The full breakdown is only sent when asked for.
	if !req.Verbose {
		result.Details = nil
	}
	return &DetectResponse{Detection: toDetectionMsg(result)}, nil
}

// GetDetection handles a stored detection lookup.
func (h *DetectionServiceHandler) GetDetection(ctx context.Context, req *GetDetectionRequest) (*GetDetectionResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid id: %v", err)
	}

	result, err := h.getDetection.Execute(ctx, dto.GetDetectionRequest{ID: id})
	if err != nil {
		return nil, h.toStatus(ctx, "get detection", err)
	}

	return &GetDetectionResponse{Detection: toDetectionMsg(result)}, nil
}

// ListDetections handles a host history request.
func (h *DetectionServiceHandler) ListDetections(ctx context.Context, req *ListDetectionsRequest) (*ListDetectionsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.listDetections.Execute(ctx, dto.ListDetectionsRequest{
		Host:   req.Host,
		Limit:  int(req.Limit),
		Offset: int(req.Offset),
	})
	if err != nil {
		return nil, h.toStatus(ctx, "list detections", err)
	}

	resp := &ListDetectionsResponse{Detections: make([]*DetectionMsg, 0, len(result.Detections))}
	for _, d := range result.Detections {
		resp.Detections = append(resp.Detections, toDetectionMsg(d))
	}
	return resp, nil
}

func (h *DetectionServiceHandler) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidURL):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, port.ErrDetectionNotFound):
		return status.Error(codes.NotFound, "detection not found")
	case errors.Is(err, usecase.ErrHistoryDisabled):
		return status.Error(codes.Unimplemented, err.Error())
	case errors.Is(err, port.ErrFeatureContract):
		h.logger.ErrorContext(ctx, "model artifact does not match the feature extractor",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		return status.Error(codes.FailedPrecondition, "classifier model is out of sync with the feature extractor")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		h.logger.ErrorContext(ctx, "request failed",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		return status.Error(codes.Internal, "internal error")
	}
}
