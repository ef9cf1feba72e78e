// Package filters turns raw query parameters into the canonical filter
// records the engines consume. Parsing never fails: illegible values degrade
// to absent or defaulted fields.
package filters

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
}

// parseList resolves the three accepted array forms for a parameter name, in
// order: "name[]" (sequence preserved), repeated "name", then a single
// comma-separated "name". A lone empty string counts as absent.
func parseList(values url.Values, name string) []string {
	if bracket, ok := values[name+"[]"]; ok && len(bracket) > 0 {
		return append([]string(nil), bracket...)
	}
	plain, ok := values[name]
	if !ok || len(plain) == 0 {
		return nil
	}
	if len(plain) > 1 {
		return append([]string(nil), plain...)
	}
	single := plain[0]
	if single == "" {
		return nil
	}
	if strings.Contains(single, ",") {
		return strings.Split(single, ",")
	}
	return []string{single}
}

func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseBool(value string) bool {
	return value == "true"
}

// canonical builds the deterministic serialization hashed into a fingerprint.
// Keys arrive pre-sorted from the callers; list values are sorted copies so
// that membership-equal filters hash equally regardless of input order.
func canonical(surface string, fields ...[2]string) string {
	var b strings.Builder
	b.WriteString(surface)
	for _, field := range fields {
		b.WriteByte('|')
		b.WriteString(field[0])
		b.WriteByte('=')
		b.WriteString(field[1])
	}
	return b.String()
}

func canonicalList(list []string) string {
	if len(list) == 0 {
		return ""
	}
	sorted := append([]string(nil), list...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1f")
}

func canonicalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func fingerprint(serialized string) string {
	sum := sha256.Sum256([]byte(serialized))
	return hex.EncodeToString(sum[:])
}

// queryDate renders a normalized date back into its shortest parseable form.
func queryDate(t *time.Time) string {
	utc := t.UTC()
	if utc.Equal(utc.Truncate(24 * time.Hour)) {
		return utc.Format("2006-01-02")
	}
	return utc.Format(time.RFC3339Nano)
}

// setQueryList emits a list in bracket form, the only form that survives
// re-normalization for every element (commas included).
func setQueryList(values url.Values, name string, list []string) {
	if len(list) == 0 {
		return
	}
	values[name+"[]"] = append([]string(nil), list...)
}
