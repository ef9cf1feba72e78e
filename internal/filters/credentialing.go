package filters

import (
	"net/url"
	"strconv"
	"time"
)

// CredentialingFilter is the canonical filter record for the credentialing
// surface. Status matches the stored value exactly; start/end bound the
// record's last_verified_at.
type CredentialingFilter struct {
	Start      *time.Time
	End        *time.Time
	Locations  []string
	Carriers   []string
	Status     string
	IssuesOnly bool
}

// ParseCredentialing normalizes raw query parameters into a
// CredentialingFilter. It never returns an error.
func ParseCredentialing(values url.Values) CredentialingFilter {
	return CredentialingFilter{
		Start:      parseDate(values.Get("start")),
		End:        parseDate(values.Get("end")),
		Locations:  parseList(values, "locations"),
		Carriers:   parseList(values, "carriers"),
		Status:     values.Get("status"),
		IssuesOnly: parseBool(values.Get("issuesOnly")),
	}
}

// Fingerprint hashes every query-affecting field, issuesOnly included (it
// changes the row set, unlike pivot pagination).
func (f CredentialingFilter) Fingerprint() string {
	return fingerprint(canonical("credentialing",
		[2]string{"carriers", canonicalList(f.Carriers)},
		[2]string{"end", canonicalDate(f.End)},
		[2]string{"issuesOnly", strconv.FormatBool(f.IssuesOnly)},
		[2]string{"locations", canonicalList(f.Locations)},
		[2]string{"start", canonicalDate(f.Start)},
		[2]string{"status", f.Status},
	))
}

// Query re-serializes the normalized record so that
// ParseCredentialing(f.Query()) yields a record equal to f.
func (f CredentialingFilter) Query() url.Values {
	values := url.Values{}
	if f.Start != nil {
		values.Set("start", queryDate(f.Start))
	}
	if f.End != nil {
		values.Set("end", queryDate(f.End))
	}
	setQueryList(values, "locations", f.Locations)
	setQueryList(values, "carriers", f.Carriers)
	if f.Status != "" {
		values.Set("status", f.Status)
	}
	if f.IssuesOnly {
		values.Set("issuesOnly", "true")
	}
	return values
}
