package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestRecordHTTPRequest(t *testing.T) {
	// Should not panic
	RecordHTTPRequest("GET", "/api/fee-strategy/pivot", 200, 120*time.Millisecond)
	RecordHTTPRequest("GET", "/api/credentialing/status", 504, time.Second)
}

func TestRecordCacheLookup(t *testing.T) {
	// Should not panic
	RecordCacheLookup("pivot", true)
	RecordCacheLookup("pivot", false)
	RecordCacheLookup("credentialing", false)
}

func TestRecordCacheSweep(t *testing.T) {
	// Should not panic with any counts
	RecordCacheSweep(0, 5)
	RecordCacheSweep(12, 88)
}

func TestRecordStoreQuery(t *testing.T) {
	// Should not panic
	RecordStoreQuery("activity", "processedclaims", "aggregate", 250*time.Millisecond, nil)
	RecordStoreQuery("registry", "locations", "find", time.Millisecond, errors.New("boom"))
}

func TestRecordEngineRows(t *testing.T) {
	RecordEngineRows("pivot", 0)
	RecordEngineRows("pivot", 4821)
	RecordEngineRows("credentialing", 17)
}

func TestCollectorsNotNil(t *testing.T) {
	if HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal should not be nil")
	}
	if HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration should not be nil")
	}
	if CacheHitsTotal == nil || CacheMissesTotal == nil {
		t.Error("cache counters should not be nil")
	}
	if StoreQueriesTotal == nil || StoreQueryDuration == nil {
		t.Error("store collectors should not be nil")
	}
	if EngineRows == nil {
		t.Error("EngineRows should not be nil")
	}
}
