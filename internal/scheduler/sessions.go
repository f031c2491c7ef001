package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

const editorSweepJobName = "editor_session_sweep"

// SessionSweeper drops editor sessions idle since before now minus their TTL.
type SessionSweeper interface {
	Sweep(now time.Time) int
	Len() int
}

// RegisterEditorSweep schedules sweeper on cronExpr.
func (s *Service) RegisterEditorSweep(cronExpr string, sweeper SessionSweeper) (gocron.Job, error) {
	return s.AddJob(editorSweepJobName, cronExpr, sweepTask(sweeper, time.Now))
}

func sweepTask(sweeper SessionSweeper, now func() time.Time) func() {
	return func() {
		removed := sweeper.Sweep(now())
		if removed == 0 {
			return
		}
		log.Info().
			Int("removed", removed).
			Int("remaining", sweeper.Len()).
			Msg("Discarded idle editor sessions")
	}
}
