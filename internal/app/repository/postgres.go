package repository

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id BIGSERIAL PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	file_name TEXT NOT NULL,
	engine TEXT NOT NULL,
	language TEXT NOT NULL DEFAULT '',
	text TEXT NOT NULL DEFAULT '',
	audio_duration DOUBLE PRECISION NOT NULL DEFAULT 0,
	processing_ms BIGINT NOT NULL DEFAULT 0,
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	error_code TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_engine ON transcriptions(engine);
CREATE INDEX IF NOT EXISTS idx_transcriptions_file ON transcriptions(file_name);
`

// PostgresHistoryDAO stores history in PostgreSQL for shared deployments
// where several bench instances write to one store.
type PostgresHistoryDAO struct {
	db *sql.DB
}

// NewPostgresHistoryDAO connects with a lib/pq DSN and ensures the schema.
func NewPostgresHistoryDAO(dsn string) (*PostgresHistoryDAO, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &PostgresHistoryDAO{db: db}, nil
}

// NewPostgresHistoryDAOFromDB wraps an existing connection; used by tests.
func NewPostgresHistoryDAOFromDB(db *sql.DB) *PostgresHistoryDAO {
	return &PostgresHistoryDAO{db: db}
}

func (d *PostgresHistoryDAO) Save(rec *Record) error {
	rec.CreatedAt = time.Now().UTC()
	err := d.db.QueryRow(`
		INSERT INTO transcriptions
			(created_at, file_name, engine, language, text, audio_duration,
			 processing_ms, confidence, error_code, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		rec.CreatedAt, rec.FileName, rec.Engine, rec.Language, rec.Text,
		rec.AudioDuration, rec.ProcessingMs, rec.Confidence,
		rec.ErrorCode, rec.ErrorMessage).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("save history row: %w", err)
	}
	return nil
}

func (d *PostgresHistoryDAO) Recent(limit int) ([]*Record, error) {
	rows, err := d.db.Query(selectColumns+`
		FROM transcriptions ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return scanRecords(rows)
}

func (d *PostgresHistoryDAO) ByEngine(engineName string, limit int) ([]*Record, error) {
	rows, err := d.db.Query(selectColumns+`
		FROM transcriptions WHERE engine = $1 ORDER BY id DESC LIMIT $2`,
		engineName, limit)
	if err != nil {
		return nil, fmt.Errorf("query history by engine: %w", err)
	}
	return scanRecords(rows)
}

func (d *PostgresHistoryDAO) ByFileName(fileName string) ([]*Record, error) {
	rows, err := d.db.Query(selectColumns+`
		FROM transcriptions WHERE file_name = $1 ORDER BY id DESC`, fileName)
	if err != nil {
		return nil, fmt.Errorf("query history by file: %w", err)
	}
	return scanRecords(rows)
}

func (d *PostgresHistoryDAO) Close() error {
	return d.db.Close()
}
