// Package journal records script runs: when they start, what they yield and
// how they end.
package journal

import (
	"context"
	"time"
)

// Outcome is how a run ended.
type Outcome string

const (
	Finished  Outcome = "finished"
	Failed    Outcome = "failed"
	Abandoned Outcome = "abandoned"
)

// Run identifies a started script run.
type Run struct {
	ID        string
	Script    string
	Chara     string
	Scene     string
	StartedAt time.Time
}

// RunRecord is a run as read back from a journal.
type RunRecord struct {
	Run
	Yields     int
	Outcome    Outcome // empty while the run is live
	Message    string
	FinishedAt time.Time
}

// Journal receives run lifecycle records. Implementations must tolerate
// calls for unknown run ids.
type Journal interface {
	RunStarted(ctx context.Context, run Run) error
	Yielded(ctx context.Context, runID string, tag, textID string) error
	RunFinished(ctx context.Context, runID string, outcome Outcome, message string) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

var _ Journal = Nop{}

func (Nop) RunStarted(context.Context, Run) error                       { return nil }
func (Nop) Yielded(context.Context, string, string, string) error       { return nil }
func (Nop) RunFinished(context.Context, string, Outcome, string) error { return nil }
func (Nop) Close() error                                                { return nil }
