package consumer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phishsense/phishsense/internal/application/dto"
	"github.com/phishsense/phishsense/internal/application/usecase"
	pkgkafka "github.com/phishsense/phishsense/pkg/kafka"
)

// ScanRequest is the JSON form of a scan message. A message whose value is
// not a JSON object is taken as the bare URL.
type ScanRequest struct {
	URL string `json:"url"`
}

// ScanHandler runs detection for URLs consumed from the scan topic. Results
// leave through the detection events.
type ScanHandler struct {
	detectURL *usecase.DetectURL
	logger    *slog.Logger
}

// NewScanHandler creates a new scan topic handler.
func NewScanHandler(detectURL *usecase.DetectURL, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{detectURL: detectURL, logger: logger}
}

// Handle detects the URL carried by msg. Malformed requests are logged and
// dropped so they are committed; detection failures are returned and leave
// the message uncommitted.
func (h *ScanHandler) Handle(ctx context.Context, msg pkgkafka.Message) error {
	rawURL, err := decodeScanRequest(msg.Value)
	if err != nil {
		h.logger.WarnContext(ctx, "dropping malformed scan request",
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}

	resp, err := h.detectURL.Execute(ctx, dto.DetectRequest{URL: rawURL})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidURL) {
			h.logger.WarnContext(ctx, "dropping invalid scan request", "error", err)
			return nil
		}
		return fmt.Errorf("scan %q: %w", rawURL, err)
	}

	h.logger.DebugContext(ctx, "scan completed",
		"detection_id", resp.ID,
		"threat_level", resp.ThreatLevel,
	)
	return nil
}

func decodeScanRequest(value []byte) (string, error) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return "", errors.New("empty message")
	}
	if value[0] != '{' {
		return string(value), nil
	}

	var req ScanRequest
	if err := json.Unmarshal(value, &req); err != nil {
		return "", fmt.Errorf("decode scan request: %w", err)
	}
	return req.URL, nil
}
