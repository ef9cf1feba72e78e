package pivot

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pdclabs/chairview/internal/filters"
	"github.com/pdclabs/chairview/internal/metrics"
	"github.com/pdclabs/chairview/internal/store"
)

// Store is the slice of the adapter the engine needs. Declared locally so
// tests can substitute a fake without a live connection.
type Store interface {
	Aggregate(ctx context.Context, db, coll string, pipeline mongo.Pipeline, out any) error
	Find(ctx context.Context, db, coll string, filter any, out any, opts ...*options.FindOptions) error
}

// Engine computes the fee-strategy pivot: an in-database aggregation over
// activity.processedclaims followed by client-side enrichment from registry
// and crucible. The two enrichment fetches are sequential because the
// fee-schedule lookup is keyed by the codes the locations fetch produces.
type Engine struct {
	store      Store
	timezone   string
	debugProbe bool

	now       func() time.Time
	randFloat func() float64
}

func NewEngine(st Store, timezone string, debugProbe bool) *Engine {
	return &Engine{
		store:      st,
		timezone:   timezone,
		debugProbe: debugProbe,
		now:        time.Now,
		randFloat:  rand.Float64,
	}
}

// Run executes the pivot for one normalized filter. Store errors surface
// as-is; they are never converted to an empty result.
func (e *Engine) Run(ctx context.Context, f filters.PivotFilter) (*Result, error) {
	e.maybeProbe()

	var groups []groupRow
	if err := e.store.Aggregate(ctx, store.DBActivity, store.CollProcessedClaims, buildPipeline(f, e.timezone), &groups); err != nil {
		return nil, err
	}

	locations, schedules, err := e.fetchJoins(ctx, groups)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, buildRow(g, locations, schedules))
	}
	rows = applyPostFilters(rows, f)
	sortRows(rows)

	metrics.RecordEngineRows("pivot", len(rows))

	return &Result{
		Rows: rows,
		Summary: Summary{
			TotalRows:   len(rows),
			DateRange:   DateRange{Start: f.Start, End: f.End},
			LastUpdated: e.now().UTC(),
		},
	}, nil
}

type locationInfo struct {
	code string
	name string
}

// fetchJoins batch-loads the registry locations referenced by the group rows,
// then the crucible fee schedules for their codes. Location ids are treated
// as opaque: the raw values go back into the $in and the string form keys the
// map.
func (e *Engine) fetchJoins(ctx context.Context, groups []groupRow) (map[string]locationInfo, scheduleIndex, error) {
	ids := make([]any, 0, len(groups))
	seen := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		key := store.IDString(g.Key.LocationID)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		ids = append(ids, g.Key.LocationID)
	}

	locations := make(map[string]locationInfo, len(ids))
	if len(ids) > 0 {
		var docs []locationDoc
		err := e.store.Find(ctx, store.DBRegistry, store.CollLocations,
			bson.M{"_id": bson.M{"$in": ids}}, &docs)
		if err != nil {
			return nil, nil, err
		}
		for _, doc := range docs {
			locations[store.IDString(doc.ID)] = locationInfo{code: doc.Code, name: doc.Name}
		}
	}

	codes := make([]string, 0, len(locations))
	codeSeen := make(map[string]struct{}, len(locations))
	for _, info := range locations {
		if info.code == "" {
			continue
		}
		if _, dup := codeSeen[info.code]; dup {
			continue
		}
		codeSeen[info.code] = struct{}{}
		codes = append(codes, info.code)
	}
	sort.Strings(codes)

	schedules := scheduleIndex{}
	if len(codes) > 0 {
		var docs []feeScheduleDoc
		opts := options.Find().SetSort(bson.D{{Key: "collected_at", Value: -1}})
		err := e.store.Find(ctx, store.DBCrucible, store.CollFeeSchedules,
			bson.M{"location_id": bson.M{"$in": codes}}, &docs, opts)
		if err != nil {
			return nil, nil, err
		}
		schedules = buildScheduleIndex(docs)
	}

	return locations, schedules, nil
}

// buildRow enriches one group with location names, the resolved scheduled
// fee, and the derived metrics. A missing location keeps the row with empty
// code and name.
func buildRow(g groupRow, locations map[string]locationInfo, schedules scheduleIndex) Row {
	locID := store.IDString(g.Key.LocationID)
	info := locations[locID]

	month := ""
	if g.Key.Month != nil {
		month = *g.Key.Month
	}

	feeScheduled := schedules.resolveFee(info.code, g.Key.Carrier, g.Key.Procedure)

	m := Metrics{
		Billed:       g.Billed,
		Allowed:      g.Allowed,
		Paid:         g.Paid,
		WriteOff:     g.WriteOff,
		FeeScheduled: feeScheduled,
		ClaimCount:   g.ClaimCount,
	}
	if g.Billed > 0 {
		m.WriteOffPct = g.WriteOff / g.Billed * 100
		if feeScheduled != nil {
			variance := (g.Billed - *feeScheduled) / g.Billed * 100
			m.ScheduleVariance = &variance
		}
	}

	return Row{
		Carrier:      g.Key.Carrier,
		LocationID:   locID,
		LocationCode: info.code,
		LocationName: info.name,
		Procedure:    g.Key.Procedure,
		Month:        month,
		Metrics:      m,
		HasIssues:    reconciliationBroken(g.Billed, g.Allowed, g.WriteOff),
	}
}

// reconciliationBroken flags groups whose allowed + writeOff drifts from
// billed by more than a dollar.
func reconciliationBroken(billed, allowed, writeOff float64) bool {
	diff := billed - (allowed + writeOff)
	if diff < 0 {
		diff = -diff
	}
	return diff > 1.0
}

func applyPostFilters(rows []Row, f filters.PivotFilter) []Row {
	locations := toSet(f.Locations)
	carriers := toSet(f.Carriers)
	procedures := toSet(f.Procedures)

	filtered := make([]Row, 0, len(rows))
	for _, r := range rows {
		if locations != nil {
			if _, ok := locations[r.LocationCode]; !ok {
				continue
			}
		}
		if carriers != nil {
			if _, ok := carriers[r.Carrier]; !ok {
				continue
			}
		}
		if procedures != nil {
			if _, ok := procedures[r.Procedure]; !ok {
				continue
			}
		}
		if r.Metrics.ClaimCount < int64(f.MinCount) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func sortRows(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Carrier != b.Carrier {
			return a.Carrier < b.Carrier
		}
		if a.LocationCode != b.LocationCode {
			return a.LocationCode < b.LocationCode
		}
		if a.Procedure != b.Procedure {
			return a.Procedure < b.Procedure
		}
		return a.Month < b.Month
	})
}
