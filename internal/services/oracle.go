package services

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"omnioracle/internal/models"
)

// OracleFetcher is the external resolution collaborator. Given a source
// descriptor it returns a copy with Status set to VERIFIED or CONFLICT and,
// only when VERIFIED, a ReportedValue. Latency is arbitrary; callers bound
// it with the context deadline.
type OracleFetcher interface {
	Fetch(ctx context.Context, source models.OracleSource) (models.OracleSource, error)
}

// SimulatedOracle mimics querying an external data source: fixed latency,
// a small conflict rate, and a YES-biased reported value.
type SimulatedOracle struct {
	Latency      time.Duration
	ConflictRate float64 // probability a fetch comes back CONFLICT
	YesBias      float64 // probability a verified read reports YES

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedOracle returns a simulator with the default behavior:
// 1.5s latency, 5% conflict rate, 70% YES bias.
func NewSimulatedOracle() *SimulatedOracle {
	return &SimulatedOracle{
		Latency:      1500 * time.Millisecond,
		ConflictRate: 0.05,
		YesBias:      0.7,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (o *SimulatedOracle) Fetch(ctx context.Context, source models.OracleSource) (models.OracleSource, error) {
	select {
	case <-time.After(o.Latency):
	case <-ctx.Done():
		return source, ctx.Err()
	}

	o.mu.Lock()
	conflict := o.rng.Float64() < o.ConflictRate
	reportYes := o.rng.Float64() < o.YesBias
	o.mu.Unlock()

	now := time.Now()
	source.FetchedAt = &now
	if conflict {
		source.Status = models.OracleStatusConflict
		source.ReportedValue = nil
		return source, nil
	}

	source.Status = models.OracleStatusVerified
	value := models.OutcomeNo
	if reportYes {
		value = models.OutcomeYes
	}
	source.ReportedValue = &value
	return source, nil
}

// DetectAnomalies inspects the results of a multi-source consultation.
// Zero verified reads, or disagreement among verified reads, is an anomaly
// and must route the market to the dispute window instead of resolving it.
// A single source can never disagree with itself, so one verified read with
// a reported value is clean.
func DetectAnomalies(sources []models.OracleSource) bool {
	var values []models.Outcome
	for _, s := range sources {
		if s.Status == models.OracleStatusVerified && s.ReportedValue != nil {
			values = append(values, *s.ReportedValue)
		}
	}
	if len(values) == 0 {
		return true
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return true
		}
	}
	return false
}
