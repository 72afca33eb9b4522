// Package store persists width runs in SQLite so results from different
// inputs and tunings can be compared later.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	_ "modernc.org/sqlite"

	"github.com/dabreegster/polygon-width/internal/pavement"
	"github.com/dabreegster/polygon-width/internal/pipeline"
	"github.com/dabreegster/polygon-width/internal/segmenter"
	"github.com/dabreegster/polygon-width/internal/timeutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps the results database.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Run is one stored batch.
type Run struct {
	ID        uuid.UUID
	Input     string
	Config    pavement.Config
	Pavements int
	Skipped   int
	CreatedAt time.Time
}

// Open opens (creating if needed) the database at path and applies any
// pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// PRAGMAs are per connection, so pin the pool to one.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s := &Store{db: db, clock: timeutil.RealClock{}}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// SetClock replaces the clock used to stamp new runs.
func (s *Store) SetClock(c timeutil.Clock) {
	s.clock = c
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun records a batch: the run itself, one summary per pavement and
// every width-tagged centerline segment in WGS84.
func (s *Store) SaveRun(ctx context.Context, input string, cfg pavement.Config, res *pipeline.Result) (uuid.UUID, error) {
	id := uuid.New()
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode config: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, input, config_json, pavements, skipped, created_unix) VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), input, string(cfgJSON), len(res.Pavements), res.Skipped, s.clock.Now().UnixNano(),
	); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert run: %w", err)
	}

	for i, p := range res.Pavements {
		sum := p.Summary()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pavement_summaries
				(run_id, pavement_idx, skeletons, skeleton_length, samples, min_width, max_width, mean_width, stddev_width)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id.String(), i, sum.Skeletons, sum.SkeletonLength, sum.Samples,
			sum.MinWidth, sum.MaxWidth, sum.MeanWidth, sum.StdDevWidth,
		); err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert summary for pavement %d: %w", i, err)
		}

		for j, seg := range p.CenterWithWidth {
			geom, err := wkb.Marshal(res.Plane.GeometryToGeodetic(seg.Line))
			if err != nil {
				return uuid.Nil, fmt.Errorf("failed to encode segment %d/%d: %w", i, j, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO center_segments (run_id, pavement_idx, segment_idx, min_width, max_width, geom) VALUES (?, ?, ?, ?, ?, ?)`,
				id.String(), i, j, seg.MinWidth, seg.MaxWidth, geom,
			); err != nil {
				return uuid.Nil, fmt.Errorf("failed to insert segment %d/%d: %w", i, j, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// ListRuns returns every stored run, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, input, config_json, pavements, skipped, created_unix FROM runs ORDER BY created_unix, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			id      string
			cfgJSON string
			created int64
		)
		if err := rows.Scan(&id, &r.Input, &cfgJSON, &r.Pavements, &r.Skipped, &created); err != nil {
			return nil, err
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("bad run id %q: %w", id, err)
		}
		if err := json.Unmarshal([]byte(cfgJSON), &r.Config); err != nil {
			return nil, fmt.Errorf("bad config for run %s: %w", id, err)
		}
		r.CreatedAt = time.Unix(0, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunSummaries returns the per-pavement summaries of a run in pavement
// order.
func (s *Store) RunSummaries(ctx context.Context, id uuid.UUID) ([]pavement.Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT skeletons, skeleton_length, samples, min_width, max_width, mean_width, stddev_width
		FROM pavement_summaries WHERE run_id = ? ORDER BY pavement_idx`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pavement.Summary
	for rows.Next() {
		var sum pavement.Summary
		if err := rows.Scan(&sum.Skeletons, &sum.SkeletonLength, &sum.Samples,
			&sum.MinWidth, &sum.MaxWidth, &sum.MeanWidth, &sum.StdDevWidth); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// RunSegments returns the stored centerline segments of a run, in WGS84.
func (s *Store) RunSegments(ctx context.Context, id uuid.UUID) ([]segmenter.Segment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT min_width, max_width, geom FROM center_segments
		WHERE run_id = ? ORDER BY pavement_idx, segment_idx`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []segmenter.Segment
	for rows.Next() {
		var (
			seg  segmenter.Segment
			blob []byte
		)
		if err := rows.Scan(&seg.MinWidth, &seg.MaxWidth, &blob); err != nil {
			return nil, err
		}
		g, err := wkb.Unmarshal(blob)
		if err != nil {
			return nil, fmt.Errorf("failed to decode segment geometry: %w", err)
		}
		ls, ok := g.(orb.LineString)
		if !ok {
			return nil, errors.New("stored segment is not a LineString")
		}
		seg.Line = ls
		out = append(out, seg)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and everything recorded with it.
func (s *Store) DeleteRun(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, id.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s: %w", id, sql.ErrNoRows)
	}
	return nil
}
