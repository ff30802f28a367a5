package convlog

import (
	"context"
	"strings"
)

// NewStore creates a postgres-backed log when DATABASE_URL is set, a sqlite
// file when CALL_LOG_PATH is set, and an in-memory log otherwise.
func NewStore(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return NewPostgresStore(ctx, databaseURL)
	}
	if strings.TrimSpace(sqlitePath) != "" {
		return NewSQLiteStore(sqlitePath)
	}
	return NewInMemoryStore(), nil
}
