package credentialing

import "time"

// Provider-carrier relationship statuses as stored in PDC_provider_status.
const (
	StatusActive     = "ACTIVE"
	StatusPending    = "PENDING"
	StatusTerminated = "TERMINATED"
	StatusOON        = "OON"
	StatusUnknown    = "UNKNOWN"
)

// Alert names, emitted in this fixed order.
const (
	AlertNetworkMismatch  = "NETWORK_MISMATCH"
	AlertExpiringSoon     = "EXPIRING_SOON"
	AlertStaleData        = "STALE_DATA"
	AlertPendingEffective = "PENDING_EFFECTIVE"
)

// Row is one enriched (provider, location, carrier) record. Nullable source
// fields stay nil so the JSON surface renders explicit nulls; date fields keep
// their stored string form for display while alert logic parses them
// tolerantly.
type Row struct {
	ProviderNPI        string   `json:"provider_npi"`
	ProviderName       string   `json:"provider_name"`
	TIN                *string  `json:"tin"`
	LocationID         string   `json:"location_id"`
	LocationName       *string  `json:"location_name"`
	Carrier            string   `json:"carrier"`
	Plan               *string  `json:"plan"`
	Status             string   `json:"status"`
	EffectiveDate      *string  `json:"effective_date"`
	TermDate           *string  `json:"term_date"`
	LastVerifiedAt     *string  `json:"last_verified_at"`
	VerificationSource *string  `json:"verification_source"`
	SourceURL          *string  `json:"source_url"`
	Notes              *string  `json:"notes"`
	IsManualOverride   bool     `json:"is_manual_override"`
	OverrideBy         *string  `json:"override_by"`
	OverrideAt         *string  `json:"override_at"`
	Alerts             []string `json:"alerts"`
}

// Summary describes the full result set.
type Summary struct {
	TotalRows   int       `json:"totalRows"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Result is the engine output cached and served by the HTTP layer.
type Result struct {
	Rows    []Row   `json:"rows"`
	Summary Summary `json:"summary"`
}

// statusDoc is the decoded shape of one PDC_provider_status record. Dates are
// `any` because upstream writes both ISO strings and native BSON dates.
type statusDoc struct {
	ProviderNPI        string  `bson:"provider_npi"`
	ProviderName       string  `bson:"provider_name"`
	TIN                *string `bson:"tin"`
	LocationID         string  `bson:"location_id"`
	Carrier            string  `bson:"carrier"`
	Plan               *string `bson:"plan"`
	Status             string  `bson:"status"`
	EffectiveDate      any     `bson:"effective_date"`
	TermDate           any     `bson:"term_date"`
	LastVerifiedAt     any     `bson:"last_verified_at"`
	VerificationSource *string `bson:"verification_source"`
	SourceURL          *string `bson:"source_url"`
	Notes              *string `bson:"notes"`
	IsManualOverride   bool    `bson:"is_manual_override"`
	OverrideBy         *string `bson:"override_by"`
	OverrideAt         any     `bson:"override_at"`
}

// locationDoc is the registry projection used to bind location_name.
type locationDoc struct {
	Code string `bson:"code"`
	Name string `bson:"name"`
}

// paidNPIDoc is one distinct provider_npi from the recent-paid evidence
// aggregation.
type paidNPIDoc struct {
	NPI string `bson:"_id"`
}
