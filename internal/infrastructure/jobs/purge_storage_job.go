package jobs

import "github.com/rs/zerolog"

// Purger drops expired keys from an in-process store.
type Purger interface {
	Purge() int
}

// PurgeStorageJob reclaims memory held by expired credentials. Redis and
// MongoDB expire keys on their own and do not need it.
type PurgeStorageJob struct {
	store Purger
	log   zerolog.Logger
}

func NewPurgeStorageJob(store Purger, log zerolog.Logger) *PurgeStorageJob {
	return &PurgeStorageJob{store: store, log: log}
}

func (j *PurgeStorageJob) Run() {
	if n := j.store.Purge(); n > 0 {
		j.log.Debug().Int("purged", n).Msg("expired session keys purged")
	}
}
