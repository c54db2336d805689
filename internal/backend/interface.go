// Package backend selects and constructs the data source the finance
// engine loads its state from.
package backend

import (
	"context"
	"time"

	"kivo/internal/datasource"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result holds the constructed data source and an optional cleanup.
type Result struct {
	Source  datasource.Source
	Cleanup CleanupFunc
}

// Factory creates data sources based on configuration.
type Factory interface {
	CreateSource(ctx context.Context, config Config) (*Result, error)
}

// Config holds everything needed to construct any of the backends.
type Config struct {
	Type Type

	// Memory specific
	FetchLatency time.Duration

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific (credentials come from the environment)
	GoogleSpreadsheetID string
}

type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
	SheetsBackend Type = "sheets"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{MemoryBackend, SQLiteBackend, SheetsBackend}
}
