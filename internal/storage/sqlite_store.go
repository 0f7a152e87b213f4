package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/annolab/imagejudge/internal/apperr"
	"github.com/annolab/imagejudge/internal/domain"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Responses are stored as TEXT, not a JSON column type, so question order
// survives the round trip.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS annotations (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL,
	image_name TEXT NOT NULL DEFAULT '',
	image_path TEXT NOT NULL DEFAULT '',
	prompt TEXT NOT NULL,
	responses TEXT NOT NULL
);`

// SQLiteStore persists records in an embedded single-file database. Append
// runs in one immediate transaction, which gives the single-writer guarantee
// across processes.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite store %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, records []domain.AnnotationRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append transaction: %w", err)
	}
	defer tx.Rollback()

	for i, r := range records {
		responses, err := json.Marshal(r.Responses)
		if err != nil {
			return fmt.Errorf("marshal responses for record %d: %w", i, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO annotations (id, image_name, image_path, prompt, responses) VALUES (?, ?, ?, ?, ?)`,
			uuid.NewString(), r.ImageName, r.ImagePath, r.Prompt, string(responses),
		)
		if err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ReadAll(ctx context.Context) ([]domain.AnnotationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
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
			return nil, &apperr.CorruptStoreError{Path: s.path, Err: err}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate annotation rows: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
