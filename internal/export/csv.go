// Package export serializes engine row sets to RFC 4180 CSV with the fixed,
// contractual column orders of the two surfaces. Writers stream row by row so
// large exports never buffer fully; row order is whatever the engine produced,
// identical to the JSON surface.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdclabs/chairview/internal/credentialing"
	"github.com/pdclabs/chairview/internal/pivot"
)

// EmptyBody is the literal body emitted when a surface has no rows.
const EmptyBody = "No data available"

// PivotColumns is the fee-strategy column order.
var PivotColumns = []string{
	"carrier", "locationId", "locationCode", "locationName", "procedure", "month",
	"billed", "allowed", "paid", "writeOff", "writeOffPct", "feeScheduled",
	"scheduleVariance", "claimCount", "hasIssues",
}

// CredentialingColumns is the credentialing column order.
var CredentialingColumns = []string{
	"provider_npi", "provider_name", "tin", "location_id", "carrier", "plan",
	"status", "effective_date", "term_date", "last_verified_at",
	"verification_source", "source_url", "notes", "is_manual_override",
	"override_by", "override_at", "alerts",
}

// WritePivot streams the fee-strategy rows as CSV.
func WritePivot(w io.Writer, rows []pivot.Row) error {
	if len(rows) == 0 {
		return writeEmpty(w)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(PivotColumns); err != nil {
		return fmt.Errorf("write pivot header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.Carrier,
			r.LocationID,
			r.LocationCode,
			r.LocationName,
			r.Procedure,
			r.Month,
			formatFloat(r.Metrics.Billed),
			formatFloat(r.Metrics.Allowed),
			formatFloat(r.Metrics.Paid),
			formatFloat(r.Metrics.WriteOff),
			formatFloat(r.Metrics.WriteOffPct),
			formatFloatPtr(r.Metrics.FeeScheduled),
			formatFloatPtr(r.Metrics.ScheduleVariance),
			strconv.FormatInt(r.Metrics.ClaimCount, 10),
			strconv.FormatBool(r.HasIssues),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write pivot row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("CSV write error: %w", err)
	}
	return nil
}

// WriteCredentialing streams the credentialing rows as CSV. The alerts set is
// joined with ";" into a single field.
func WriteCredentialing(w io.Writer, rows []credentialing.Row) error {
	if len(rows) == 0 {
		return writeEmpty(w)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CredentialingColumns); err != nil {
		return fmt.Errorf("write credentialing header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.ProviderNPI,
			r.ProviderName,
			orEmpty(r.TIN),
			r.LocationID,
			r.Carrier,
			orEmpty(r.Plan),
			r.Status,
			orEmpty(r.EffectiveDate),
			orEmpty(r.TermDate),
			orEmpty(r.LastVerifiedAt),
			orEmpty(r.VerificationSource),
			orEmpty(r.SourceURL),
			orEmpty(r.Notes),
			strconv.FormatBool(r.IsManualOverride),
			orEmpty(r.OverrideBy),
			orEmpty(r.OverrideAt),
			strings.Join(r.Alerts, ";"),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write credentialing row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("CSV write error: %w", err)
	}
	return nil
}

func writeEmpty(w io.Writer) error {
	if _, err := io.WriteString(w, EmptyBody); err != nil {
		return fmt.Errorf("write empty body: %w", err)
	}
	return nil
}

// formatFloat renders the shortest decimal that round-trips.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
