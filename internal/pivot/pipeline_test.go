package pivot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pdclabs/chairview/internal/filters"
	"github.com/pdclabs/chairview/internal/store"
)

func stageNames(p mongo.Pipeline) []string {
	names := make([]string, 0, len(p))
	for _, stage := range p {
		names = append(names, stage[0].Key)
	}
	return names
}

func stageValue(t *testing.T, p mongo.Pipeline, i int) bson.D {
	t.Helper()
	require.Less(t, i, len(p))
	v, ok := p[i][0].Value.(bson.D)
	require.True(t, ok, "stage %d value is %T, want bson.D", i, p[i][0].Value)
	return v
}

func docValue(t *testing.T, d bson.D, key string) any {
	t.Helper()
	for _, e := range d {
		if e.Key == key {
			return e.Value
		}
	}
	t.Fatalf("key %q not found in %v", key, d)
	return nil
}

func TestBuildPipeline_StageOrder(t *testing.T) {
	p := buildPipeline(filters.PivotFilter{}, "America/Denver")

	want := []string{
		"$match",   // non-empty patients
		"$unwind",  // patients
		"$unwind",  // claims
		"$unwind",  // procedures
		"$match",   // malformed procCode
		"$project", // line item + money coercion
		"$lookup",  // jobs
		"$unwind",  // job (preserving empties)
		"$addFields",
		"$match", // fully empty rows
		"$addFields",
		"$group",
	}
	assert.Equal(t, want, stageNames(p))
}

func TestBuildPipeline_DateRangeInsertedBeforeMonth(t *testing.T) {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	f := filters.PivotFilter{Start: &start}

	p := buildPipeline(f, "America/Denver")
	names := stageNames(p)

	require.Len(t, p, 13)
	assert.Equal(t, "$match", names[10])
	assert.Equal(t, "$addFields", names[11])
	assert.Equal(t, "$group", names[12])

	match := stageValue(t, p, 10)
	bounds, ok := docValue(t, match, "dosRecv").(bson.D)
	require.True(t, ok)
	assert.Equal(t, start, docValue(t, bounds, "$gte"))
}

func TestDateRangeMatch(t *testing.T) {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)

	assert.Nil(t, dateRangeMatch(filters.PivotFilter{}))

	both := dateRangeMatch(filters.PivotFilter{Start: &start, End: &end})
	bounds := both[0].Value.(bson.D)
	require.Len(t, bounds, 2)
	assert.Equal(t, start, bounds[0].Value)
	assert.Equal(t, end, bounds[1].Value)

	endOnly := dateRangeMatch(filters.PivotFilter{End: &end})
	bounds = endOnly[0].Value.(bson.D)
	require.Len(t, bounds, 1)
	assert.Equal(t, "$lte", bounds[0].Key)
}

func TestBuildPipeline_MalformedProcCodesDropped(t *testing.T) {
	p := buildPipeline(filters.PivotFilter{}, "America/Denver")

	match := stageValue(t, p, 4)
	cond, ok := docValue(t, match, "data.patients.claims.procedures.procCode").(bson.D)
	require.True(t, ok)
	assert.Equal(t, bson.A{nil, ""}, docValue(t, cond, "$nin"))
}

func TestBuildPipeline_JobLookup(t *testing.T) {
	p := buildPipeline(filters.PivotFilter{}, "America/Denver")

	lookup := stageValue(t, p, 6)
	assert.Equal(t, store.CollJobs, docValue(t, lookup, "from"))
	assert.Equal(t, "jobId", docValue(t, lookup, "localField"))
	assert.Equal(t, "_id", docValue(t, lookup, "foreignField"))

	unwind := stageValue(t, p, 7)
	assert.Equal(t, true, docValue(t, unwind, "preserveNullAndEmptyArrays"))
}

func TestBuildPipeline_MonthUsesTimezone(t *testing.T) {
	p := buildPipeline(filters.PivotFilter{}, "America/Phoenix")

	addFields := stageValue(t, p, 10)
	month, ok := docValue(t, addFields, "month").(bson.D)
	require.True(t, ok)
	dateToString, ok := month[0].Value.(bson.D)
	require.True(t, ok)
	assert.Equal(t, "%Y-%m", docValue(t, dateToString, "format"))
	assert.Equal(t, "America/Phoenix", docValue(t, dateToString, "timezone"))
}

func TestBuildPipeline_GroupStage(t *testing.T) {
	p := buildPipeline(filters.PivotFilter{}, "America/Denver")

	group := stageValue(t, p, len(p)-1)
	id, ok := docValue(t, group, "_id").(bson.D)
	require.True(t, ok)
	assert.Equal(t, "$carrierName", docValue(t, id, "carrier"))
	assert.Equal(t, "$locationId", docValue(t, id, "locationId"))
	assert.Equal(t, "$procCode", docValue(t, id, "procedure"))
	assert.Equal(t, "$month", docValue(t, id, "month"))

	claimCount, ok := docValue(t, group, "claimCount").(bson.D)
	require.True(t, ok)
	assert.Equal(t, 1, docValue(t, claimCount, "$sum"))
}

func TestToDouble_CoercionDefaults(t *testing.T) {
	conv := store.ToDouble("$field")[0].Value.(bson.D)
	assert.Equal(t, "$field", docValue(t, conv, "input"))
	assert.Equal(t, "double", docValue(t, conv, "to"))
	assert.Equal(t, 0.0, docValue(t, conv, "onError"))
	assert.Equal(t, 0.0, docValue(t, conv, "onNull"))
}

func TestToDate_FailuresBecomeNull(t *testing.T) {
	conv := store.ToDate("$field")[0].Value.(bson.D)
	assert.Equal(t, "date", docValue(t, conv, "to"))
	assert.Nil(t, docValue(t, conv, "onError"))
	assert.Nil(t, docValue(t, conv, "onNull"))
}

func TestBuildQualityPipeline(t *testing.T) {
	p := buildQualityPipeline()

	assert.Equal(t, []string{"$unwind", "$unwind", "$unwind", "$group"}, stageNames(p))

	group := stageValue(t, p, 3)
	assert.Nil(t, docValue(t, group, "_id"))

	retained, ok := docValue(t, group, "retained").(bson.D)
	require.True(t, ok)
	sum, ok := retained[0].Value.(bson.D)
	require.True(t, ok)
	assert.Equal(t, "$cond", sum[0].Key)
}
