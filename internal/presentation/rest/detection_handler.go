package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/phishsense/phishsense/internal/application/dto"
	"github.com/phishsense/phishsense/internal/application/usecase"
	"github.com/phishsense/phishsense/internal/domain/port"
)

// maxBodyBytes bounds a detect request body.
const maxBodyBytes = 16 << 10

// DetectionHandler serves the detection API over JSON.
type DetectionHandler struct {
	detectURL      *usecase.DetectURL
	getDetection   *usecase.GetDetection
	listDetections *usecase.ListDetections
	logger         *slog.Logger
}

// NewDetectionHandler creates a new detection HTTP handler.
func NewDetectionHandler(
	detectURL *usecase.DetectURL,
	getDetection *usecase.GetDetection,
	listDetections *usecase.ListDetections,
	logger *slog.Logger,
) *DetectionHandler {
	return &DetectionHandler{
		detectURL:      detectURL,
		getDetection:   getDetection,
		listDetections: listDetections,
		logger:         logger,
	}
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RegisterRoutes registers the detection endpoints on the provided ServeMux.
func (h *DetectionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/detect", h.Detect)
	mux.HandleFunc("GET /v1/detections/{id}", h.GetDetection)
	mux.HandleFunc("GET /v1/detections", h.ListDetections)
}

// Detect classifies the URL in the request body.
func (h *DetectionHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req dto.DetectRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if v := r.URL.Query().Get("verbose"); v != "" {
		req.Verbose, _ = strconv.ParseBool(v)
	}

	resp, err := h.detectURL.Execute(r.Context(), req)
	if err != nil {
		h.writeError(r.Context(), w, "detect", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetDetection returns a stored detection.
func (h *DetectionHandler) GetDetection(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return
	}

	resp, err := h.getDetection.Execute(r.Context(), dto.GetDetectionRequest{ID: id})
	if err != nil {
		h.writeError(r.Context(), w, "get detection", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListDetections returns a page of stored detections for ?host=.
func (h *DetectionHandler) ListDetections(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := dto.ListDetectionsRequest{Host: q.Get("host")}

	var err error
	if v := q.Get("limit"); v != "" {
		if req.Limit, err = strconv.Atoi(v); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if req.Offset, err = strconv.Atoi(v); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
			return
		}
	}

	resp, err := h.listDetections.Execute(r.Context(), req)
	if err != nil {
		h.writeError(r.Context(), w, "list detections", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *DetectionHandler) writeError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidURL):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, port.ErrDetectionNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "detection not found"})
	case errors.Is(err, usecase.ErrHistoryDisabled):
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, ErrorResponse{Error: "detection timed out"})
	case errors.Is(err, port.ErrFeatureContract):
		h.logger.ErrorContext(ctx, "model artifact does not match the feature extractor", "operation", op, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "classifier model is out of sync with the feature extractor"})
	default:
		h.logger.ErrorContext(ctx, "request failed", "operation", op, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
