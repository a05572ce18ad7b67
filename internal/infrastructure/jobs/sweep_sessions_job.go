package jobs

import (
	"time"

	"github.com/rs/zerolog"
)

// Sweeper evicts idle live sessions.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// SweepSessionsJob disposes browser sessions that have not been seen for
// longer than idle. Their persisted credentials stay in storage, so the next
// visit restores them.
type SweepSessionsJob struct {
	sessions Sweeper
	idle     time.Duration
	log      zerolog.Logger
}

func NewSweepSessionsJob(sessions Sweeper, idle time.Duration, log zerolog.Logger) *SweepSessionsJob {
	return &SweepSessionsJob{sessions: sessions, idle: idle, log: log}
}

func (j *SweepSessionsJob) Run() {
	if n := j.sessions.Sweep(j.idle); n > 0 {
		j.log.Info().Int("evicted", n).Dur("idle", j.idle).Msg("idle sessions evicted")
	}
}
