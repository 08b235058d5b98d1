package repository

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	file_name TEXT NOT NULL,
	engine TEXT NOT NULL,
	language TEXT NOT NULL DEFAULT '',
	text TEXT NOT NULL DEFAULT '',
	audio_duration REAL NOT NULL DEFAULT 0,
	processing_ms INTEGER NOT NULL DEFAULT 0,
	confidence REAL NOT NULL DEFAULT 0,
	error_code TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_engine ON transcriptions(engine);
CREATE INDEX IF NOT EXISTS idx_transcriptions_file ON transcriptions(file_name);
`

// SQLiteHistoryDAO stores history in a local SQLite file. This is the
// default store for single machine use.
type SQLiteHistoryDAO struct {
	db *sql.DB
}

// NewSQLiteHistoryDAO opens (and if needed initializes) the history database
// at dbPath.
func NewSQLiteHistoryDAO(dbPath string) (*SQLiteHistoryDAO, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &SQLiteHistoryDAO{db: db}, nil
}

func (d *SQLiteHistoryDAO) Save(rec *Record) error {
	rec.CreatedAt = time.Now().UTC()
	res, err := d.db.Exec(`
		INSERT INTO transcriptions
			(created_at, file_name, engine, language, text, audio_duration,
			 processing_ms, confidence, error_code, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CreatedAt, rec.FileName, rec.Engine, rec.Language, rec.Text,
		rec.AudioDuration, rec.ProcessingMs, rec.Confidence,
		rec.ErrorCode, rec.ErrorMessage)
	if err != nil {
		return fmt.Errorf("save history row: %w", err)
	}
	rec.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("history row id: %w", err)
	}
	return nil
}

func (d *SQLiteHistoryDAO) Recent(limit int) ([]*Record, error) {
	rows, err := d.db.Query(selectColumns+`
		FROM transcriptions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return scanRecords(rows)
}

func (d *SQLiteHistoryDAO) ByEngine(engineName string, limit int) ([]*Record, error) {
	rows, err := d.db.Query(selectColumns+`
		FROM transcriptions WHERE engine = ? ORDER BY id DESC LIMIT ?`,
		engineName, limit)
	if err != nil {
		return nil, fmt.Errorf("query history by engine: %w", err)
	}
	return scanRecords(rows)
}

func (d *SQLiteHistoryDAO) ByFileName(fileName string) ([]*Record, error) {
	rows, err := d.db.Query(selectColumns+`
		FROM transcriptions WHERE file_name = ? ORDER BY id DESC`, fileName)
	if err != nil {
		return nil, fmt.Errorf("query history by file: %w", err)
	}
	return scanRecords(rows)
}

func (d *SQLiteHistoryDAO) Close() error {
	return d.db.Close()
}

const selectColumns = `
	SELECT id, created_at, file_name, engine, language, text, audio_duration,
	       processing_ms, confidence, error_code, error_message`

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	defer rows.Close()
	var records []*Record
	for rows.Next() {
		rec := &Record{}
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.FileName,
			&rec.Engine, &rec.Language, &rec.Text, &rec.AudioDuration,
			&rec.ProcessingMs, &rec.Confidence, &rec.ErrorCode,
			&rec.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
