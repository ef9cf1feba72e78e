package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutViolationsCleanLayout(t *testing.T) {
	err := layoutViolations(map[string][]string{
		DBActivity: {CollJobs, CollProcessedClaims},
		DBRegistry: {CollLocations},
		DBCrucible: {CollFeeSchedules, CollProviderStatus},
	})
	assert.NoError(t, err)
}

func TestLayoutViolationsStrayPDCCollection(t *testing.T) {
	err := layoutViolations(map[string][]string{
		DBActivity: {CollJobs, CollProcessedClaims, "PDC_fee_schedules"},
		DBRegistry: {CollLocations},
		DBCrucible: {CollFeeSchedules},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "activity.PDC_fee_schedules")
	assert.Contains(t, err.Error(), "belong in crucible")
}

func TestLayoutViolationsMultiple(t *testing.T) {
	err := layoutViolations(map[string][]string{
		DBActivity: {CollLocations},
		DBRegistry: {CollJobs},
		DBCrucible: {CollProviderStatus},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "activity.locations")
	assert.Contains(t, err.Error(), "registry.jobs")
}

func TestLayoutViolationsIgnoresUnrelatedCollections(t *testing.T) {
	err := layoutViolations(map[string][]string{
		DBActivity: {CollJobs, CollProcessedClaims, "audit_logs", "users"},
		DBRegistry: {CollLocations, "system.views"},
		DBCrucible: {CollFeeSchedules, "PDC_payer_rules"},
	})
	assert.NoError(t, err)
}
