package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the voting module.
// Tracks accepted casts, duplicate rejections, and cast-path duration.
type Metrics struct {
	VotesCast          prometheus.Counter
	DuplicatesRejected prometheus.Counter
	CastDuration       prometheus.Histogram
}

// New creates a new Metrics instance with all voting module metrics registered.
func New() *Metrics {
	return &Metrics{
		VotesCast: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_votes_cast_total",
			Help: "Total number of votes accepted into the ledger",
		}),
		DuplicatesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_duplicate_votes_rejected_total",
			Help: "Total number of casts rejected because the voter already voted",
		}),
		CastDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ballotbox_cast_vote_duration_seconds",
			Help:    "Duration of CastVote operations (eligibility checks plus ledger insert)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementVotesCast records an accepted vote.
func (m *Metrics) IncrementVotesCast() {
	m.VotesCast.Inc()
}

// IncrementDuplicateRejected records a cast rejected as a duplicate.
func (m *Metrics) IncrementDuplicateRejected() {
	m.DuplicatesRejected.Inc()
}

// ObserveCast records the duration of a CastVote operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCast(start time.Time) {
	m.CastDuration.Observe(time.Since(start).Seconds())
}
