package pivot

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pdclabs/chairview/internal/store"
)

const (
	probeSampleRate = 0.01
	probeTimeout    = 30 * time.Second
)

// qualityCounts is the single document the probe aggregation returns.
type qualityCounts struct {
	Total    int64 `bson:"total"`
	Retained int64 `bson:"retained"`
}

func (e *Engine) shouldProbe() bool {
	return e.debugProbe || e.randFloat() < probeSampleRate
}

// maybeProbe samples the data-quality side channel. The probe is detached
// from the request: it carries its own deadline and swallows every failure,
// so it can never block or fail a response.
func (e *Engine) maybeProbe() {
	if !e.shouldProbe() {
		return
	}
	go e.probe()
}

func (e *Engine) probe() {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Interface("panic", r).Msg("Pivot quality probe panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	var counts []qualityCounts
	if err := e.store.Aggregate(ctx, store.DBActivity, store.CollProcessedClaims, buildQualityPipeline(), &counts); err != nil {
		log.Debug().Err(err).Msg("Pivot quality probe failed")
		return
	}
	if len(counts) == 0 {
		return
	}

	c := counts[0]
	retention := 100.0
	if c.Total > 0 {
		retention = float64(c.Retained) / float64(c.Total) * 100
	}
	log.Debug().
		Int64("total", c.Total).
		Int64("retained", c.Retained).
		Int64("dropped", c.Total-c.Retained).
		Float64("retention_pct", retention).
		Msg("Pivot extraction quality")
}
