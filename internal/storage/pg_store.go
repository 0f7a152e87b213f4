package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/annolab/imagejudge/internal/apperr"
	"github.com/annolab/imagejudge/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Responses are TEXT rather than JSONB: JSONB does not preserve key order,
// and the exporter depends on first-seen question order.
const pgSchema = `
CREATE TABLE IF NOT EXISTS annotations (
	seq BIGSERIAL PRIMARY KEY,
	id UUID NOT NULL,
	image_name TEXT NOT NULL DEFAULT '',
	image_path TEXT NOT NULL DEFAULT '',
	prompt TEXT NOT NULL,
	responses TEXT NOT NULL
);`

type PGStore struct {
	pool *pgxpool.Pool
}

type PGConfig struct {
	ConnStr string
}

func NewPGStore(ctx context.Context, cfg PGConfig) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure annotations table: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// Append inserts the whole buffer in one transaction, so concurrent flushes
// serialize on the database and neither can overwrite the other.
func (s *PGStore) Append(ctx context.Context, records []domain.AnnotationRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, r := range records {
		responses, err := json.Marshal(r.Responses)
		if err != nil {
			return fmt.Errorf("marshal responses for record %d: %w", i, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO annotations (id, image_name, image_path, prompt, responses) VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), r.ImageName, r.ImagePath, r.Prompt, string(responses),
		)
		if err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit append transaction: %w", err)
	}
	return nil
}

func (s *PGStore) ReadAll(ctx context.Context) ([]domain.AnnotationRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT image_name, image_path, prompt, responses FROM annotations ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	defer rows.Close()

	var records []domain.AnnotationRecord
	for rows.Next() {
		var r domain.AnnotationRecord
		var responses string
		if err := rows.Scan(&r.ImageName, &r.ImagePath, &r.Prompt, &responses); err != nil {
			return nil, fmt.Errorf("scan annotation row: %w", err)
		}
		if err := json.Unmarshal([]byte(responses), &r.Responses); err != nil {
			return nil, &apperr.CorruptStoreError{Path: "postgres://annotations", Err: err}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate annotation rows: %w", err)
	}
	return records, nil
}

func (s *PGStore) Close() {
	s.pool.Close()
}
