package filters

import (
	"net/url"
	"strconv"
	"time"
)

// Pivot surface defaults.
const (
	DefaultMinCount = 0
	DefaultPage     = 1
	DefaultLimit    = 20000
)

// PivotFilter is the canonical filter record for the fee-strategy surface.
// Nil slices and nil dates mean "no filter on this dimension".
type PivotFilter struct {
	Start      *time.Time
	End        *time.Time
	Locations  []string
	Carriers   []string
	Procedures []string
	MinCount   int
	Page       int
	Limit      int
}

// ParsePivot normalizes raw query parameters into a PivotFilter. It never
// returns an error; unusable values fall back to the surface defaults.
func ParsePivot(values url.Values) PivotFilter {
	f := PivotFilter{
		Start:      parseDate(values.Get("start")),
		End:        parseDate(values.Get("end")),
		Locations:  parseList(values, "locations"),
		Carriers:   parseList(values, "carriers"),
		Procedures: parseList(values, "procedures"),
		MinCount:   parseInt(values.Get("minCount"), DefaultMinCount),
		Page:       parseInt(values.Get("page"), DefaultPage),
		Limit:      parseInt(values.Get("limit"), DefaultLimit),
	}
	if f.MinCount < 0 {
		f.MinCount = DefaultMinCount
	}
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	return f
}

// Fingerprint hashes the query-affecting fields. Page and limit are
// presentation-only (applied after cache retrieval) and stay out of the hash
// so the JSON and CSV surfaces share one cache entry.
func (f PivotFilter) Fingerprint() string {
	return fingerprint(canonical("pivot",
		[2]string{"carriers", canonicalList(f.Carriers)},
		[2]string{"end", canonicalDate(f.End)},
		[2]string{"locations", canonicalList(f.Locations)},
		[2]string{"minCount", strconv.Itoa(f.MinCount)},
		[2]string{"procedures", canonicalList(f.Procedures)},
		[2]string{"start", canonicalDate(f.Start)},
	))
}

// Query re-serializes the normalized record. ParsePivot(f.Query()) yields a
// record equal to f; defaults are omitted.
func (f PivotFilter) Query() url.Values {
	values := url.Values{}
	if f.Start != nil {
		values.Set("start", queryDate(f.Start))
	}
	if f.End != nil {
		values.Set("end", queryDate(f.End))
	}
	setQueryList(values, "locations", f.Locations)
	setQueryList(values, "carriers", f.Carriers)
	setQueryList(values, "procedures", f.Procedures)
	if f.MinCount != DefaultMinCount {
		values.Set("minCount", strconv.Itoa(f.MinCount))
	}
	if f.Page != DefaultPage {
		values.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit != DefaultLimit {
		values.Set("limit", strconv.Itoa(f.Limit))
	}
	return values
}

// Paginate returns the half-open row range selected by page and limit for a
// total of n rows.
func (f PivotFilter) Paginate(n int) (int, int) {
	start := (f.Page - 1) * f.Limit
	if start >= n {
		return n, n
	}
	end := start + f.Limit
	if end > n {
		end = n
	}
	return start, end
}
