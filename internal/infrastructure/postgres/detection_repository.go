package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/phishsense/phishsense/internal/domain/model"
	"github.com/phishsense/phishsense/internal/domain/port"
	"github.com/phishsense/phishsense/internal/domain/valueobject"
	pkgpostgres "github.com/phishsense/phishsense/pkg/postgres"
)

// scorePlaces matches the NUMERIC(4,3) score columns.
const scorePlaces = 3

// DetectionRepository implements port.DetectionRepository using PostgreSQL.
type DetectionRepository struct {
	db pkgpostgres.DB
}

// NewDetectionRepository creates a new PostgreSQL-backed detection repository.
func NewDetectionRepository(db pkgpostgres.DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

const selectDetection = `
	SELECT id, url, host, is_phishing, confidence, threat_level,
		heuristic_score, classifier_probability, detected_at
	FROM detections`

// Save persists a detection and its ordered reasons.
func (r *DetectionRepository) Save(ctx context.Context, d *model.Detection) error {
	return pkgpostgres.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO detections (
				id, url, host, is_phishing, confidence, threat_level,
				heuristic_score, classifier_probability, detected_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING`,
			d.ID(),
			d.URL(),
			d.Host(),
			d.IsPhishing(),
			toNumeric(d.Confidence()),
			d.ThreatLevel().String(),
			toNumeric(d.HeuristicScore()),
			toNullableNumeric(d.ClassifierProbability()),
			d.DetectedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to save detection: %w", err)
		}

		batch := &pgx.Batch{}
		for i, reason := range d.Reasons() {
			batch.Queue(
				`INSERT INTO detection_reasons (detection_id, position, reason) VALUES ($1, $2, $3)
				ON CONFLICT DO NOTHING`,
				d.ID(), i, reason,
			)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save detection reasons: %w", err)
		}
		return nil
	})
}

// FindByID retrieves a detection by its unique identifier.
func (r *DetectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Detection, error) {
	d, err := scanDetection(r.db.QueryRow(ctx, selectDetection+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, port.ErrDetectionNotFound
		}
		return nil, err
	}

	reasons, err := r.loadReasons(ctx, d.id)
	if err != nil {
		return nil, err
	}
	return d.build(reasons), nil
}

// FindByHost retrieves the most recent detections for a host.
func (r *DetectionRepository) FindByHost(ctx context.Context, host string, limit, offset int) ([]*model.Detection, error) {
	rows, err := r.db.Query(ctx,
		selectDetection+` WHERE host = $1 ORDER BY detected_at DESC LIMIT $2 OFFSET $3`,
		host, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query detections: %w", err)
	}

	var pending []detectionRow
	for rows.Next() {
		d, err := scanDetection(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		pending = append(pending, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate detections: %w", err)
	}

	detections := make([]*model.Detection, 0, len(pending))
	for _, d := range pending {
		reasons, err := r.loadReasons(ctx, d.id)
		if err != nil {
			return nil, err
		}
		detections = append(detections, d.build(reasons))
	}
	return detections, nil
}

func (r *DetectionRepository) loadReasons(ctx context.Context, id uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT reason FROM detection_reasons WHERE detection_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query detection reasons: %w", err)
	}
	reasons, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan detection reasons: %w", err)
	}
	if reasons == nil {
		reasons = make([]string, 0)
	}
	return reasons, nil
}

type detectionRow struct {
	detectedAt            time.Time
	classifierProbability *decimal.Decimal
	url                   string
	host                  string
	threatLevel           valueobject.ThreatLevel
	confidence            decimal.Decimal
	heuristicScore        decimal.Decimal
	isPhishing            bool
	id                    uuid.UUID
}

func scanDetection(row pgx.Row) (detectionRow, error) {
	var (
		d              detectionRow
		threatLevelStr string
		probability    decimal.NullDecimal
	)

	err := row.Scan(
		&d.id, &d.url, &d.host, &d.isPhishing, &d.confidence, &threatLevelStr,
		&d.heuristicScore, &probability, &d.detectedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return d, err
		}
		return d, fmt.Errorf("failed to scan detection: %w", err)
	}

	d.threatLevel, err = valueobject.ThreatLevelFromString(threatLevelStr)
	if err != nil {
		return d, fmt.Errorf("failed to parse threat level: %w", err)
	}
	if probability.Valid {
		d.classifierProbability = &probability.Decimal
	}
	return d, nil
}

func (d detectionRow) build(reasons []string) *model.Detection {
	var probability *float64
	if d.classifierProbability != nil {
		p := d.classifierProbability.InexactFloat64()
		probability = &p
	}
	return model.Reconstruct(
		d.id, d.url, d.host, d.isPhishing,
		d.confidence.InexactFloat64(), d.threatLevel, reasons,
		d.heuristicScore.InexactFloat64(), probability, d.detectedAt,
	)
}

func toNumeric(v float64) decimal.Decimal {
	return decimal.NewFromFloat(valueobject.ClampUnit(v)).RoundFloor(scorePlaces)
}

func toNullableNumeric(v *float64) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: toNumeric(*v), Valid: true}
}
