package store

// Logical database names. The three are never mixed: claims activity, the
// location registry, and the curated credentialing/fee data each live in
// their own database.
const (
	DBActivity = "activity"
	DBRegistry = "registry"
	DBCrucible = "crucible"
)

// Collection names by database.
const (
	CollJobs            = "jobs"                // activity
	CollProcessedClaims = "processedclaims"     // activity
	CollLocations       = "locations"           // registry
	CollFeeSchedules    = "PDC_fee_schedules"   // crucible
	CollProviderStatus  = "PDC_provider_status" // crucible
)
