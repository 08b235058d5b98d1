// Package repository persists transcription history so comparison runs can
// be reviewed and exported after the fact.
package repository

import (
	"time"

	"speechbench/internal/app/engine"
)

// Record is one engine invocation's history row. Failed invocations are
// recorded too, with the error fields set and the result fields zero.
type Record struct {
	ID            int64
	CreatedAt     time.Time
	FileName      string
	Engine        string
	Language      string
	Text          string
	AudioDuration float64
	ProcessingMs  int64
	Confidence    float64
	ErrorCode     string
	ErrorMessage  string
}

// RecordFromResult builds a history row from a successful engine result.
func RecordFromResult(fileName string, res *engine.Result) *Record {
	return &Record{
		FileName:      fileName,
		Engine:        res.Engine,
		Language:      res.Language,
		Text:          res.Text,
		AudioDuration: res.AudioDuration,
		ProcessingMs:  res.ProcessingTime.Milliseconds(),
		Confidence:    res.Confidence,
	}
}

// RecordFromError builds a history row from a failed engine invocation.
func RecordFromError(fileName string, e *engine.Error) *Record {
	return &Record{
		FileName:     fileName,
		Engine:       e.Engine,
		ErrorCode:    e.Code,
		ErrorMessage: e.Message,
	}
}

// HistoryDAO is the persistence interface for transcription history.
type HistoryDAO interface {
	// Save inserts a row and fills in its ID and CreatedAt.
	Save(rec *Record) error
	// Recent returns up to limit rows, newest first.
	Recent(limit int) ([]*Record, error)
	// ByEngine returns up to limit rows for one engine, newest first.
	ByEngine(engineName string, limit int) ([]*Record, error)
	// ByFileName returns every row recorded for a file, newest first.
	ByFileName(fileName string) ([]*Record, error)
	Close() error
}
