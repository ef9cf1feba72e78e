package pivot

import "time"

// Metrics nests the aggregated numeric fields of a row. FeeScheduled is nil
// when no schedule candidate matched; ScheduleVariance follows it.
type Metrics struct {
	Billed           float64  `json:"billed"`
	Allowed          float64  `json:"allowed"`
	Paid             float64  `json:"paid"`
	WriteOff         float64  `json:"writeOff"`
	WriteOffPct      float64  `json:"writeOffPct"`
	FeeScheduled     *float64 `json:"feeScheduled"`
	ScheduleVariance *float64 `json:"scheduleVariance"`
	ClaimCount       int64    `json:"claimCount"`
}

// Row is one (carrier, location, procedure, month) aggregate.
type Row struct {
	Carrier      string  `json:"carrier"`
	LocationID   string  `json:"locationId"`
	LocationCode string  `json:"locationCode"`
	LocationName string  `json:"locationName"`
	Procedure    string  `json:"procedure"`
	Month        string  `json:"month"`
	Metrics      Metrics `json:"metrics"`
	HasIssues    bool    `json:"hasIssues"`
}

// DateRange echoes the normalized request range.
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// Summary describes the full result before pagination.
type Summary struct {
	TotalRows   int       `json:"totalRows"`
	DateRange   DateRange `json:"dateRange"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Result is the engine output cached and served by the HTTP layer.
type Result struct {
	Rows    []Row   `json:"rows"`
	Summary Summary `json:"summary"`
}

// groupRow is the decoded shape of one $group output document.
type groupRow struct {
	Key struct {
		Carrier    string  `bson:"carrier"`
		LocationID any     `bson:"locationId"`
		Procedure  string  `bson:"procedure"`
		Month      *string `bson:"month"`
	} `bson:"_id"`
	Billed     float64 `bson:"billed"`
	Allowed    float64 `bson:"allowed"`
	Paid       float64 `bson:"paid"`
	WriteOff   float64 `bson:"writeOff"`
	ClaimCount int64   `bson:"claimCount"`
}

// locationDoc is the registry projection used for enrichment.
type locationDoc struct {
	ID   any    `bson:"_id"`
	Code string `bson:"code"`
	Name string `bson:"name"`
}

// feeScheduleDoc is one per-location schedule snapshot.
type feeScheduleDoc struct {
	LocationID  string     `bson:"location_id"`
	CollectedAt any        `bson:"collected_at"`
	Schedules   []schedule `bson:"fee_schedules"`
}

type schedule struct {
	Description string `bson:"Description"`
	Fees        []fee  `bson:"fees"`
}

type fee struct {
	ProcedureCode string `bson:"ProcedureCode"`
	Amount        any    `bson:"Amount"`
}
