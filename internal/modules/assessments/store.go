// Package assessments stores completed analysis runs and serves them back
// by ID, by company, or by statement-series fingerprint.
package assessments

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Store persists assessment snapshots. Payloads are msgpack-encoded; the
// summary columns exist so listings never deserialize full snapshots.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStore creates an assessment store and ensures its schema exists.
func NewStore(db *sql.DB, log zerolog.Logger) (*Store, error) {
	s := &Store{
		db:  db,
		log: log.With().Str("repo", "assessments").Logger(),
	}
	if err := s.createSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS assessments (
			id                TEXT PRIMARY KEY,
			company_id        TEXT NOT NULL,
			series_hash       TEXT NOT NULL,
			composite_score   REAL NOT NULL,
			risk_level        TEXT NOT NULL,
			compliance_status TEXT NOT NULL,
			payload           BLOB NOT NULL,
			created_at        TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_assessments_company
			ON assessments(company_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_assessments_hash
			ON assessments(company_id, series_hash);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create assessments schema: %w", err)
	}
	return nil
}

// Save persists a snapshot and returns its record.
func (s *Store) Save(companyID, seriesHash string, snap Snapshot) (Record, error) {
	payload, err := msgpack.Marshal(snap)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	rec := Record{
		ID:               uuid.NewString(),
		CompanyID:        companyID,
		SeriesHash:       seriesHash,
		CompositeScore:   snap.Risk.OverallScore,
		RiskLevel:        snap.Risk.RiskLevel,
		ComplianceStatus: snap.Compliance.Status,
		CreatedAt:        time.Now().UTC(),
	}

	_, err = s.db.Exec(`
		INSERT INTO assessments (id, company_id, series_hash, composite_score, risk_level, compliance_status, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.CompanyID, rec.SeriesHash, rec.CompositeScore, rec.RiskLevel, rec.ComplianceStatus, payload, rec.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Record{}, fmt.Errorf("failed to save assessment: %w", err)
	}

	s.log.Debug().Str("id", rec.ID).Str("company_id", companyID).Msg("assessment saved")
	return rec, nil
}

// Get loads one assessment by ID. Returns nil values when not found.
func (s *Store) Get(id string) (*Record, *Snapshot, error) {
	row := s.db.QueryRow(`
		SELECT id, company_id, series_hash, composite_score, risk_level, compliance_status, payload, created_at
		FROM assessments WHERE id = ?
	`, id)
	return s.scanFull(row)
}

// Latest loads the most recent assessment for a company. Returns nil values
// when the company has never been analyzed.
func (s *Store) Latest(companyID string) (*Record, *Snapshot, error) {
	row := s.db.QueryRow(`
		SELECT id, company_id, series_hash, composite_score, risk_level, compliance_status, payload, created_at
		FROM assessments
		WHERE company_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, companyID)
	return s.scanFull(row)
}

// Cached looks up a stored snapshot for the same company and series hash.
// Identical inputs produce identical results, so a hit short-circuits a
// full analysis run. Returns nil values on miss.
func (s *Store) Cached(companyID, seriesHash string) (*Record, *Snapshot, error) {
	row := s.db.QueryRow(`
		SELECT id, company_id, series_hash, composite_score, risk_level, compliance_status, payload, created_at
		FROM assessments
		WHERE company_id = ? AND series_hash = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, companyID, seriesHash)
	return s.scanFull(row)
}

// History returns assessment summaries for a company, newest first.
func (s *Store) History(companyID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, company_id, series_hash, composite_score, risk_level, compliance_status, created_at
		FROM assessments
		WHERE company_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessment history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.CompanyID, &rec.SeriesHash, &rec.CompositeScore, &rec.RiskLevel, &rec.ComplianceStatus, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan assessment record: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assessments: %w", err)
	}
	return records, nil
}

func (s *Store) scanFull(row *sql.Row) (*Record, *Snapshot, error) {
	var rec Record
	var payload []byte
	var createdAt string

	err := row.Scan(&rec.ID, &rec.CompanyID, &rec.SeriesHash, &rec.CompositeScore, &rec.RiskLevel, &rec.ComplianceStatus, &payload, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load assessment: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	var snap Snapshot
	if err := msgpack.Unmarshal(payload, &snap); err != nil {
		return nil, nil, fmt.Errorf("failed to decode snapshot %s: %w", rec.ID, err)
	}
	return &rec, &snap, nil
}
