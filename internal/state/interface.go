package state

import (
	"io"

	"github.com/ShayCichocki/podium/internal/debate"
)

// DebateStore reads the archive.
type DebateStore interface {
	GetDebate(id string) (*Debate, error)
	ListDebates(limit int, status debate.SessionStatus) ([]DebateSummary, error)
	DeleteDebate(id string) error
}

// Migrator handles database schema migrations.
type Migrator interface {
	Migrate() error
}

// ArchiveStore is the full archive backend: the orchestrator writes through
// debate.Archiver, the CLI and HTTP API read through DebateStore.
type ArchiveStore interface {
	io.Closer
	Migrator
	debate.Archiver
	DebateStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ ArchiveStore    = (*DB)(nil)
	_ debate.Archiver = (*DB)(nil)
	_ DebateStore     = (*DB)(nil)
)
