package filters

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return values
}

func TestParseListResolutionOrder(t *testing.T) {
	// bracket form wins over everything else
	values := mustParseQuery(t, "locations[]=PROVO&locations[]=VEGAS&locations=OGDEN")
	assert.Equal(t, []string{"PROVO", "VEGAS"}, parseList(values, "locations"))

	// bracket form keeps a single value as a one-element list, commas intact
	values = mustParseQuery(t, "locations[]=A,B")
	assert.Equal(t, []string{"A,B"}, parseList(values, "locations"))

	// repeated keys form a sequence
	values = mustParseQuery(t, "carriers=DELTA&carriers=AETNA")
	assert.Equal(t, []string{"DELTA", "AETNA"}, parseList(values, "carriers"))

	// a single comma-separated value splits without trimming
	values = mustParseQuery(t, "carriers=DELTA, AETNA")
	assert.Equal(t, []string{"DELTA", " AETNA"}, parseList(values, "carriers"))

	// a plain single value wraps
	values = mustParseQuery(t, "procedures=D0120")
	assert.Equal(t, []string{"D0120"}, parseList(values, "procedures"))

	// absence and a lone empty string both mean "no filter"
	assert.Nil(t, parseList(url.Values{}, "locations"))
	values = mustParseQuery(t, "locations=")
	assert.Nil(t, parseList(values, "locations"))
}

func TestParseDate(t *testing.T) {
	parsed := parseDate("2024-02-01")
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *parsed)

	parsed = parseDate("2024-02-01T12:30:00Z")
	require.NotNil(t, parsed)
	assert.Equal(t, 12, parsed.Hour())

	assert.Nil(t, parseDate(""))
	assert.Nil(t, parseDate("02/2024"))
	assert.Nil(t, parseDate("yesterday"))
}

func TestParsePivotDefaultsAndFallbacks(t *testing.T) {
	f := ParsePivot(url.Values{})
	assert.Nil(t, f.Start)
	assert.Nil(t, f.End)
	assert.Nil(t, f.Locations)
	assert.Equal(t, DefaultMinCount, f.MinCount)
	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)

	f = ParsePivot(mustParseQuery(t, "minCount=abc&page=-3&limit=0&start=not-a-date"))
	assert.Equal(t, DefaultMinCount, f.MinCount)
	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Nil(t, f.Start)
}

func TestParsePivotFull(t *testing.T) {
	f := ParsePivot(mustParseQuery(t,
		"locations=PROVO&carriers=DELTA,AETNA&procedures[]=D0120&start=2024-02-01&end=2024-02-29&minCount=2&page=3&limit=50"))

	require.NotNil(t, f.Start)
	require.NotNil(t, f.End)
	assert.Equal(t, []string{"PROVO"}, f.Locations)
	assert.Equal(t, []string{"DELTA", "AETNA"}, f.Carriers)
	assert.Equal(t, []string{"D0120"}, f.Procedures)
	assert.Equal(t, 2, f.MinCount)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 50, f.Limit)
}

func TestPivotFingerprintSemantics(t *testing.T) {
	a := ParsePivot(mustParseQuery(t, "locations=PROVO,VEGAS&carriers=DELTA"))
	b := ParsePivot(mustParseQuery(t, "locations=VEGAS&locations=PROVO&carriers[]=DELTA"))
	// membership-equal lists hash equally regardless of form and order
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	c := ParsePivot(mustParseQuery(t, "locations=PROVO&carriers=DELTA"))
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	// pagination is presentation-only
	paged := ParsePivot(mustParseQuery(t, "locations=PROVO,VEGAS&carriers=DELTA&page=7&limit=10"))
	assert.Equal(t, a.Fingerprint(), paged.Fingerprint())

	// minCount affects the row set
	min2 := ParsePivot(mustParseQuery(t, "locations=PROVO,VEGAS&carriers=DELTA&minCount=2"))
	assert.NotEqual(t, a.Fingerprint(), min2.Fingerprint())
}

func TestPivotQueryRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"locations=PROVO&start=2024-02-01&end=2024-02-29",
		"locations[]=A,B&carriers=DELTA&minCount=2&page=3&limit=50",
		"procedures=D0120,D0140&start=2024-02-01T12:30:00Z",
	}
	for _, raw := range cases {
		f := ParsePivot(mustParseQuery(t, raw))
		again := ParsePivot(f.Query())
		assert.Equal(t, f, again, "round trip for %q", raw)
	}
}

func TestPaginate(t *testing.T) {
	f := PivotFilter{Page: 1, Limit: 10}
	start, end := f.Paginate(25)
	assert.Equal(t, 0, start)
	assert.Equal(t, 10, end)

	f.Page = 3
	start, end = f.Paginate(25)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	f.Page = 4
	start, end = f.Paginate(25)
	assert.Equal(t, 25, start)
	assert.Equal(t, 25, end)
}

func TestParseCredentialing(t *testing.T) {
	f := ParseCredentialing(mustParseQuery(t,
		"locations=VEGAS&carriers=AETNA&status=OON&issuesOnly=true&start=2024-01-01&end=2024-03-01"))
	assert.Equal(t, []string{"VEGAS"}, f.Locations)
	assert.Equal(t, "OON", f.Status)
	assert.True(t, f.IssuesOnly)
	require.NotNil(t, f.Start)

	// booleans accept the literal "true" only
	f = ParseCredentialing(mustParseQuery(t, "issuesOnly=1"))
	assert.False(t, f.IssuesOnly)
	f = ParseCredentialing(mustParseQuery(t, "issuesOnly=TRUE"))
	assert.False(t, f.IssuesOnly)
}

func TestCredentialingFingerprintIncludesIssuesOnly(t *testing.T) {
	plain := ParseCredentialing(mustParseQuery(t, "status=OON"))
	issues := ParseCredentialing(mustParseQuery(t, "status=OON&issuesOnly=true"))
	assert.NotEqual(t, plain.Fingerprint(), issues.Fingerprint())
}

func TestCredentialingQueryRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"locations=VEGAS,PROVO&carriers=AETNA&status=PENDING",
		"issuesOnly=true&start=2024-01-01",
	}
	for _, raw := range cases {
		f := ParseCredentialing(mustParseQuery(t, raw))
		again := ParseCredentialing(f.Query())
		assert.Equal(t, f, again, "round trip for %q", raw)
	}
}

func TestSurfacesNeverCollide(t *testing.T) {
	p := ParsePivot(mustParseQuery(t, "locations=PROVO"))
	c := ParseCredentialing(mustParseQuery(t, "locations=PROVO"))
	assert.NotEqual(t, p.Fingerprint(), c.Fingerprint())
}
