// Package metrics counts parse-time events the way internal/metrics
// tallies codebase-wide stats: a small struct of counters updated as
// parsing happens, with a text formatter a CLI can print.
package metrics

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Counters tracks the parse runs of one factory.Factory: factory.New creates
// one, and every Parse call on that Factory adds to the same running totals.
// All fields are updated with atomic ops so a caller can share one Counters
// across concurrently-spliced includes.
type Counters struct {
	RecordsEmitted int64
	IncludesExpanded int64
	DirectivesEvaluated int64
	ErrorsRaised int64
	WarningsRaised int64
	FilesParsed int64
}

// New creates an empty Counters.
func New() *Counters {
	return &Counters{}
}

func (c *Counters) AddRecords(n int)     { atomic.AddInt64(&c.RecordsEmitted, int64(n)) }
func (c *Counters) AddIncludeExpanded()  { atomic.AddInt64(&c.IncludesExpanded, 1) }
func (c *Counters) AddDirectiveEval()    { atomic.AddInt64(&c.DirectivesEvaluated, 1) }
func (c *Counters) AddError()            { atomic.AddInt64(&c.ErrorsRaised, 1) }
func (c *Counters) AddWarning()          { atomic.AddInt64(&c.WarningsRaised, 1) }
func (c *Counters) AddFileParsed()       { atomic.AddInt64(&c.FilesParsed, 1) }

// Snapshot returns a copy safe to read without racing further updates.
func (c *Counters) Snapshot() Counters {
	return Counters{
		RecordsEmitted:      atomic.LoadInt64(&c.RecordsEmitted),
		IncludesExpanded:    atomic.LoadInt64(&c.IncludesExpanded),
		DirectivesEvaluated: atomic.LoadInt64(&c.DirectivesEvaluated),
		ErrorsRaised:        atomic.LoadInt64(&c.ErrorsRaised),
		WarningsRaised:      atomic.LoadInt64(&c.WarningsRaised),
		FilesParsed:         atomic.LoadInt64(&c.FilesParsed),
	}
}

// FormatAsText renders a snapshot as a short human-readable report for
// cmd/edk2meta parse --stats.
func (c Counters) FormatAsText() string {
	var sb strings.Builder
	sb.WriteString("parse summary\n")
	sb.WriteString(fmt.Sprintf("  files parsed:          %d\n", c.FilesParsed))
	sb.WriteString(fmt.Sprintf("  records emitted:       %d\n", c.RecordsEmitted))
	sb.WriteString(fmt.Sprintf("  includes expanded:     %d\n", c.IncludesExpanded))
	sb.WriteString(fmt.Sprintf("  directives evaluated:  %d\n", c.DirectivesEvaluated))
	sb.WriteString(fmt.Sprintf("  warnings raised:       %d\n", c.WarningsRaised))
	sb.WriteString(fmt.Sprintf("  errors raised:         %d\n", c.ErrorsRaised))
	return sb.String()
}
