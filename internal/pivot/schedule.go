package pivot

import (
	"regexp"
	"strings"
	"time"

	"github.com/pdclabs/chairview/internal/store"
)

// fallbackPattern marks global fallback schedules (UCR baseline or a generic
// default). They lose to anything more specific.
var fallbackPattern = regexp.MustCompile(`(?i)UCR|DEFAULT`)

// schedulePrecedence ranks a schedule description for a carrier: 1 is
// carrier-specific, 2 a location default, 3 a global fallback. An empty
// carrier can never claim a carrier-specific schedule.
func schedulePrecedence(description, carrier string) int {
	if carrier != "" && strings.Contains(strings.ToUpper(description), strings.ToUpper(carrier)) {
		return 1
	}
	if fallbackPattern.MatchString(description) {
		return 3
	}
	return 2
}

// scheduleEntry is one schedule snapshot flattened to a fee-by-procedure map.
type scheduleEntry struct {
	description string
	collectedAt time.Time
	fees        map[string]float64
}

// scheduleIndex holds every snapshot for the locations in play, keyed by
// location code.
type scheduleIndex map[string][]scheduleEntry

func buildScheduleIndex(docs []feeScheduleDoc) scheduleIndex {
	idx := make(scheduleIndex, len(docs))
	for _, doc := range docs {
		if doc.LocationID == "" {
			continue
		}
		var collectedAt time.Time
		if t := store.ParseTime(doc.CollectedAt); t != nil {
			collectedAt = *t
		}
		for _, sched := range doc.Schedules {
			entry := scheduleEntry{
				description: sched.Description,
				collectedAt: collectedAt,
				fees:        make(map[string]float64, len(sched.Fees)),
			}
			for _, f := range sched.Fees {
				if _, dup := entry.fees[f.ProcedureCode]; dup {
					continue
				}
				entry.fees[f.ProcedureCode] = store.CoerceFloat(f.Amount)
			}
			idx[doc.LocationID] = append(idx[doc.LocationID], entry)
		}
	}
	return idx
}

// resolveFee picks the scheduled fee for one (location, carrier, procedure)
// group: lowest precedence wins, ties broken by the freshest snapshot. Nil
// when no schedule for the location carries the procedure.
func (idx scheduleIndex) resolveFee(locationCode, carrier, procCode string) *float64 {
	var (
		found    bool
		bestPrec int
		bestAt   time.Time
		bestFee  float64
	)
	for _, entry := range idx[locationCode] {
		amount, ok := entry.fees[procCode]
		if !ok {
			continue
		}
		prec := schedulePrecedence(entry.description, carrier)
		if !found || prec < bestPrec || (prec == bestPrec && entry.collectedAt.After(bestAt)) {
			found = true
			bestPrec = prec
			bestAt = entry.collectedAt
			bestFee = amount
		}
	}
	if !found {
		return nil
	}
	return &bestFee
}
