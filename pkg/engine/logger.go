package engine

import (
	"log"

	"github.com/dshills/gonodes/pkg/domain/types"
	"github.com/dshills/gonodes/pkg/graph"
)

// ProfileRepository persists tick profiles for later inspection.
// Implemented by pkg/storage's SQLite repository.
type ProfileRepository interface {
	SaveTick(graphID types.GraphID, graphName string, stats TickStats, timings []NodeTiming) error
}

// Logger records completed ticks to a profile repository. A nil
// repository disables persistence; logging never fails a tick —
// repository errors are reported on the process log and dropped.
type Logger struct {
	repo ProfileRepository
}

// NewLogger creates a logger backed by the given repository.
func NewLogger(repo ProfileRepository) *Logger {
	return &Logger{repo: repo}
}

// LogTickComplete persists the tick profile.
func (l *Logger) LogTickComplete(g *graph.Graph, stats TickStats, timings []NodeTiming) {
	if l == nil || l.repo == nil {
		return
	}
	if err := l.repo.SaveTick(g.ID, g.Name, stats, timings); err != nil {
		log.Printf("gonodes: failed to persist tick %s: %v", stats.ID, err)
	}
}
