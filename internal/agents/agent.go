// Package agents defines the assessment agent contract and the static
// registry the API serves from.
package agents

import (
	"context"
	"time"

	"agents-backend/internal/engine"
)

// Metadata describes an agent for catalog listings and report headers.
type Metadata struct {
	Key          string        `json:"key"`
	Name         string        `json:"name"`
	Version      string        `json:"version"`
	Category     string        `json:"category"`
	Capabilities []string      `json:"capabilities"`
	ReviewCycle  time.Duration `json:"-"`
}

// Agent runs one domain assessment over a free-form input document and
// produces a report. Implementations must be deterministic: identical
// input and clock yield an identical report.
type Agent interface {
	Meta() Metadata
	Analyze(ctx context.Context, in engine.Input) (engine.Report, error)
}

// Clock supplies the report timestamp. Production uses time.Now; tests
// pin a fixed instant.
type Clock func() time.Time
