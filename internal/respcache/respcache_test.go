package respcache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(ttl time.Duration) (*Cache, *time.Time) {
	c := New(ttl)
	current := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }
	return c, &current
}

func TestLookupHitAndExpiry(t *testing.T) {
	c, clock := newTestCache(10 * time.Minute)

	c.Insert("fp1", "payload")
	got, ok := c.Lookup("fp1")
	require.True(t, ok)
	assert.Equal(t, "payload", got)

	// still fresh one second before the deadline
	*clock = clock.Add(10*time.Minute - time.Second)
	_, ok = c.Lookup("fp1")
	assert.True(t, ok)

	// an entry expiring exactly now is a miss
	*clock = clock.Add(time.Second)
	_, ok = c.Lookup("fp1")
	assert.False(t, ok)
}

func TestLookupUnknownFingerprint(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	_, ok := c.Lookup("missing")
	assert.False(t, ok)
}

func TestInsertReplaces(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Insert("fp", 1)
	c.Insert("fp", 2)

	got, ok := c.Lookup("fp")
	require.True(t, ok)
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, c.Len())
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	c, clock := newTestCache(time.Minute)

	for i := 0; i < 60; i++ {
		c.Insert(fmt.Sprintf("old-%d", i), i)
	}
	*clock = clock.Add(2 * time.Minute) // the first batch is now expired

	// stay at the threshold: no sweep yet, expired entries linger
	for i := 0; i < 40; i++ {
		c.Insert(fmt.Sprintf("new-%d", i), i)
	}
	assert.Equal(t, 100, c.Len())

	// crossing the threshold sweeps the expired batch
	c.Insert("trigger", "x")
	assert.Equal(t, 41, c.Len())

	_, ok := c.Lookup("old-3")
	assert.False(t, ok)
	got, ok := c.Lookup("new-7")
	require.True(t, ok)
	assert.Equal(t, 7, got)
}

func TestDefaultTTLFallback(t *testing.T) {
	c := New(0)
	assert.Equal(t, DefaultTTL, c.ttl)
}
