package credentialing

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

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

// Engine computes the credentialing status report: the provider-status rows
// from crucible, location names from registry, and the recent-paid evidence
// from activity. The two enrichment fetches are independent and run in
// parallel.
type Engine struct {
	store Store

	now func() time.Time
}

func NewEngine(st Store) *Engine {
	return &Engine{store: st, now: time.Now}
}

// Run executes the report for one normalized filter. Store errors surface
// as-is; they are never converted to an empty result.
func (e *Engine) Run(ctx context.Context, f filters.CredentialingFilter) (*Result, error) {
	now := e.now().UTC()

	var docs []statusDoc
	opts := options.Find().SetSort(bson.D{
		{Key: "provider_name", Value: 1},
		{Key: "location_id", Value: 1},
		{Key: "carrier", Value: 1},
	})
	if err := e.store.Find(ctx, store.DBCrucible, store.CollProviderStatus, statusMatch(f), &docs, opts); err != nil {
		return nil, err
	}

	locations, paidNPIs, err := e.fetchEvidence(ctx, docs, now)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(docs))
	for _, doc := range docs {
		row := buildRow(doc, locations, computeAlerts(doc, now, paidNPIs))
		if !keepRow(row, f) {
			continue
		}
		rows = append(rows, row)
	}

	metrics.RecordEngineRows("credentialing", len(rows))

	return &Result{
		Rows: rows,
		Summary: Summary{
			TotalRows:   len(rows),
			LastUpdated: now,
		},
	}, nil
}

// statusMatch builds the pre-lookup filter on the provider-status collection.
func statusMatch(f filters.CredentialingFilter) bson.M {
	match := bson.M{}
	if len(f.Locations) > 0 {
		match["location_id"] = bson.M{"$in": f.Locations}
	}
	if len(f.Carriers) > 0 {
		match["carrier"] = bson.M{"$in": f.Carriers}
	}
	if f.Status != "" {
		match["status"] = f.Status
	}
	return match
}

// fetchEvidence loads location names and, when at least one driving row is
// out-of-network, the set of NPIs with a recent paid claim. The two fetches
// touch different databases and run concurrently.
func (e *Engine) fetchEvidence(ctx context.Context, docs []statusDoc, now time.Time) (map[string]string, map[string]struct{}, error) {
	codes := make([]string, 0, len(docs))
	codeSeen := make(map[string]struct{}, len(docs))
	anyOON := false
	for _, doc := range docs {
		if doc.Status == StatusOON {
			anyOON = true
		}
		if doc.LocationID == "" {
			continue
		}
		if _, dup := codeSeen[doc.LocationID]; dup {
			continue
		}
		codeSeen[doc.LocationID] = struct{}{}
		codes = append(codes, doc.LocationID)
	}

	locations := make(map[string]string, len(codes))
	paidNPIs := make(map[string]struct{})

	g, gctx := errgroup.WithContext(ctx)

	if len(codes) > 0 {
		g.Go(func() error {
			var locs []locationDoc
			err := e.store.Find(gctx, store.DBRegistry, store.CollLocations,
				bson.M{"code": bson.M{"$in": codes}}, &locs)
			if err != nil {
				return err
			}
			for _, loc := range locs {
				locations[loc.Code] = loc.Name
			}
			return nil
		})
	}

	if anyOON {
		g.Go(func() error {
			cutoff := now.Add(-recentPaidWindow)
			var paid []paidNPIDoc
			err := e.store.Aggregate(gctx, store.DBActivity, store.CollProcessedClaims,
				buildPaidNPIPipeline(cutoff), &paid)
			if err != nil {
				return err
			}
			for _, p := range paid {
				paidNPIs[p.NPI] = struct{}{}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return locations, paidNPIs, nil
}

func buildRow(doc statusDoc, locations map[string]string, alerts []string) Row {
	var locationName *string
	if name, ok := locations[doc.LocationID]; ok {
		locationName = &name
	}
	if alerts == nil {
		alerts = []string{}
	}
	return Row{
		ProviderNPI:        doc.ProviderNPI,
		ProviderName:       doc.ProviderName,
		TIN:                doc.TIN,
		LocationID:         doc.LocationID,
		LocationName:       locationName,
		Carrier:            doc.Carrier,
		Plan:               doc.Plan,
		Status:             doc.Status,
		EffectiveDate:      displayDate(doc.EffectiveDate),
		TermDate:           displayDate(doc.TermDate),
		LastVerifiedAt:     displayDate(doc.LastVerifiedAt),
		VerificationSource: doc.VerificationSource,
		SourceURL:          doc.SourceURL,
		Notes:              doc.Notes,
		IsManualOverride:   doc.IsManualOverride,
		OverrideBy:         doc.OverrideBy,
		OverrideAt:         displayDate(doc.OverrideAt),
		Alerts:             alerts,
	}
}

// keepRow applies the post-computation filters: issuesOnly and the optional
// last_verified_at range. A row without a parseable last_verified_at is
// excluded once either bound is set.
func keepRow(row Row, f filters.CredentialingFilter) bool {
	if f.IssuesOnly && len(row.Alerts) == 0 {
		return false
	}
	if f.Start == nil && f.End == nil {
		return true
	}
	if row.LastVerifiedAt == nil {
		return false
	}
	verifiedAt := store.ParseTime(*row.LastVerifiedAt)
	if verifiedAt == nil {
		return false
	}
	if f.Start != nil && verifiedAt.Before(*f.Start) {
		return false
	}
	if f.End != nil && verifiedAt.After(*f.End) {
		return false
	}
	return true
}

// displayDate renders a permissively typed date for the response: stored
// strings pass through untouched, native dates format as RFC 3339, anything
// else is null.
func displayDate(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return &t
	default:
		if parsed := store.ParseTime(v); parsed != nil {
			s := parsed.Format(time.RFC3339)
			return &s
		}
		return nil
	}
}
