package repository

import "fmt"

// NewHistoryDAO selects a store by type: "sqlite" (default) or "postgres".
func NewHistoryDAO(dbType, sqlitePath, postgresDSN string) (HistoryDAO, error) {
	switch dbType {
	case "", "sqlite":
		return NewSQLiteHistoryDAO(sqlitePath)
	case "postgres":
		if postgresDSN == "" {
			return nil, fmt.Errorf("postgres history store requires a DSN")
		}
		return NewPostgresHistoryDAO(postgresDSN)
	default:
		return nil, fmt.Errorf("unknown history store type %q", dbType)
	}
}
