package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/boxfit/internal/boxfit"
)

// Run records one inference invocation: where the observations came
// from, how much computation was spent, and the prior bounds used.
type Run struct {
	RunID         string          `json:"run_id"`
	Source        string          `json:"source"`
	PointCount    int             `json:"point_count"`
	ParticleCount int             `json:"particle_count"`
	PointsPerEdge int             `json:"points_per_edge"`
	Zeta          float64         `json:"zeta"`
	Seed          int64           `json:"seed"`
	BoundsJSON    json.RawMessage `json:"bounds_json,omitempty"`
	CreatedAt     int64           `json:"created_at"`
}

// Hypothesis is one persisted ranked hypothesis row. Ordinal is the
// ascending Chamfer rank within the run, starting at 0.
type Hypothesis struct {
	RunID     string           `json:"run_id"`
	Ordinal   int              `json:"ordinal"`
	Params    boxfit.BoxParams `json:"params"`
	Chamfer   float64          `json:"chamfer"`
	LogWeight float64          `json:"log_weight"`
}

// RunStore provides persistence for inference runs and their ranked
// hypotheses.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// InsertRun persists a run record. If RunID is empty, a UUID is
// generated; if CreatedAt is zero, the current time is used.
func (s *RunStore) InsertRun(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	var boundsStr interface{}
	if len(run.BoundsJSON) > 0 {
		boundsStr = string(run.BoundsJSON)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO boxfit_runs (
				run_id, source, point_count, particle_count,
				points_per_edge, zeta, seed, bounds_json, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.Source, run.PointCount, run.ParticleCount,
			run.PointsPerEdge, run.Zeta, run.Seed, boundsStr, run.CreatedAt,
		)
		return err
	})
}

// InsertHypotheses persists the ranked hypotheses of a run in rank
// order, replacing any previously stored set for that run.
func (s *RunStore) InsertHypotheses(runID string, ranked []boxfit.RankedHypothesis) error {
	return retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin hypotheses tx: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`DELETE FROM boxfit_hypotheses WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("clear hypotheses: %w", err)
		}
		stmt, err := tx.Prepare(`
			INSERT INTO boxfit_hypotheses (
				run_id, ordinal, xc, yc, zc, l, w, h, sigma, chamfer, log_weight
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare hypothesis insert: %w", err)
		}
		defer stmt.Close()

		for i, h := range ranked {
			p := h.Params
			if _, err := stmt.Exec(runID, i, p.XC, p.YC, p.ZC, p.L, p.W, p.H, p.Sigma, h.Chamfer, h.LogWeight); err != nil {
				return fmt.Errorf("insert hypothesis %d: %w", i, err)
			}
		}
		return tx.Commit()
	})
}

// GetRun returns a single run by ID.
func (s *RunStore) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, source, point_count, particle_count,
		       points_per_edge, zeta, seed, bounds_json, created_at
		FROM boxfit_runs
		WHERE run_id = ?`, runID)

	r, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return r, nil
}

// ListRecentRuns returns up to limit runs, newest first.
func (s *RunStore) ListRecentRuns(limit int) ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT run_id, source, point_count, particle_count,
		       points_per_edge, zeta, seed, bounds_json, created_at
		FROM boxfit_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListHypotheses returns the ranked hypotheses of a run in rank order.
func (s *RunStore) ListHypotheses(runID string) ([]*Hypothesis, error) {
	rows, err := s.db.Query(`
		SELECT run_id, ordinal, xc, yc, zc, l, w, h, sigma, chamfer, log_weight
		FROM boxfit_hypotheses
		WHERE run_id = ?
		ORDER BY ordinal ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query hypotheses: %w", err)
	}
	defer rows.Close()

	var hyps []*Hypothesis
	for rows.Next() {
		var h Hypothesis
		err := rows.Scan(
			&h.RunID, &h.Ordinal,
			&h.Params.XC, &h.Params.YC, &h.Params.ZC,
			&h.Params.L, &h.Params.W, &h.Params.H, &h.Params.Sigma,
			&h.Chamfer, &h.LogWeight,
		)
		if err != nil {
			return nil, fmt.Errorf("scan hypothesis row: %w", err)
		}
		hyps = append(hyps, &h)
	}
	return hyps, rows.Err()
}

// DeleteRun removes a run and its hypotheses.
func (s *RunStore) DeleteRun(runID string) error {
	return retryOnBusy(func() error {
		if _, err := s.db.Exec(`DELETE FROM boxfit_hypotheses WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("delete hypotheses: %w", err)
		}
		result, err := s.db.Exec(`DELETE FROM boxfit_runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("run %s not found", runID)
		}
		return nil
	})
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var boundsStr sql.NullString
	err := row.Scan(
		&r.RunID, &r.Source, &r.PointCount, &r.ParticleCount,
		&r.PointsPerEdge, &r.Zeta, &r.Seed, &boundsStr, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if boundsStr.Valid {
		r.BoundsJSON = json.RawMessage(boundsStr.String)
	}
	return &r, nil
}
