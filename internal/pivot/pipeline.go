package pivot

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pdclabs/chairview/internal/filters"
	"github.com/pdclabs/chairview/internal/store"
)

// buildPipeline assembles the in-database half of the fee-strategy program:
// flatten patients, claims and procedures into line items, discard malformed
// ones, coerce money, bind the payment envelope, bucket by month in tz, and
// group on (carrier, locationId, procedure, month). Location and fee-schedule
// enrichment happen client-side because they live in other databases.
func buildPipeline(f filters.PivotFilter, tz string) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "data.patients.0", Value: bson.D{{Key: "$exists", Value: true}}},
		}}},
		{{Key: "$unwind", Value: "$data.patients"}},
		{{Key: "$unwind", Value: "$data.patients.claims"}},
		{{Key: "$unwind", Value: "$data.patients.claims.procedures"}},
		{{Key: "$match", Value: bson.D{
			{Key: "data.patients.claims.procedures.procCode", Value: bson.D{
				{Key: "$nin", Value: bson.A{nil, ""}},
			}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "jobId", Value: "$job_id"},
			{Key: "locationId", Value: "$locationId"},
			{Key: "procCode", Value: "$data.patients.claims.procedures.procCode"},
			{Key: "dateReceived", Value: "$data.patients.claims.date_received"},
			{Key: "billed", Value: store.ToDouble("$data.patients.claims.procedures.feeBilled")},
			{Key: "allowed", Value: store.ToDouble("$data.patients.claims.procedures.allowedAmount")},
			{Key: "paid", Value: store.ToDouble("$data.patients.claims.procedures.insAmountPaid")},
			{Key: "writeOff", Value: store.ToDouble("$data.patients.claims.procedures.writeOff")},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: store.CollJobs},
			{Key: "localField", Value: "jobId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "job"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$job"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "carrierName", Value: bson.D{
				{Key: "$ifNull", Value: bson.A{"$job.payment.carrierName", ""}},
			}},
			{Key: "dosRecv", Value: store.ToDate(bson.D{
				{Key: "$ifNull", Value: bson.A{"$dateReceived", "$job.payment.dateIssued"}},
			})},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "carrierName", Value: bson.D{{Key: "$ne", Value: ""}}}},
			bson.D{{Key: "billed", Value: bson.D{{Key: "$gt", Value: 0.0}}}},
			bson.D{{Key: "allowed", Value: bson.D{{Key: "$gt", Value: 0.0}}}},
			bson.D{{Key: "paid", Value: bson.D{{Key: "$gt", Value: 0.0}}}},
			bson.D{{Key: "writeOff", Value: bson.D{{Key: "$gt", Value: 0.0}}}},
		}}}}},
	}

	if rangeMatch := dateRangeMatch(f); rangeMatch != nil {
		p = append(p, bson.D{{Key: "$match", Value: rangeMatch}})
	}

	p = append(p,
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "month", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m"},
				{Key: "date", Value: "$dosRecv"},
				{Key: "timezone", Value: tz},
				{Key: "onNull", Value: nil},
			}}}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "carrier", Value: "$carrierName"},
				{Key: "locationId", Value: "$locationId"},
				{Key: "procedure", Value: "$procCode"},
				{Key: "month", Value: "$month"},
			}},
			{Key: "billed", Value: bson.D{{Key: "$sum", Value: "$billed"}}},
			{Key: "allowed", Value: bson.D{{Key: "$sum", Value: "$allowed"}}},
			{Key: "paid", Value: bson.D{{Key: "$sum", Value: "$paid"}}},
			{Key: "writeOff", Value: bson.D{{Key: "$sum", Value: "$writeOff"}}},
			{Key: "claimCount", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	)

	return p
}

// dateRangeMatch bounds the pre-group dosRecv when the filter provides a
// range. Rows whose dosRecv failed to parse are excluded by the comparison.
func dateRangeMatch(f filters.PivotFilter) bson.D {
	if f.Start == nil && f.End == nil {
		return nil
	}
	bounds := bson.D{}
	if f.Start != nil {
		bounds = append(bounds, bson.E{Key: "$gte", Value: *f.Start})
	}
	if f.End != nil {
		bounds = append(bounds, bson.E{Key: "$lte", Value: *f.End})
	}
	return bson.D{{Key: "dosRecv", Value: bounds}}
}

// buildQualityPipeline counts total versus retained line items for the
// data-quality probe. Extraction quality is a property of the data, not of
// one request, so the probe is collection-wide.
func buildQualityPipeline() mongo.Pipeline {
	procCode := "$data.patients.claims.procedures.procCode"
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$data.patients"}},
		{{Key: "$unwind", Value: "$data.patients.claims"}},
		{{Key: "$unwind", Value: "$data.patients.claims.procedures"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "retained", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{
					bson.D{{Key: "$and", Value: bson.A{
						bson.D{{Key: "$ne", Value: bson.A{procCode, nil}}},
						bson.D{{Key: "$ne", Value: bson.A{procCode, ""}}},
					}}},
					1,
					0,
				}},
			}}}},
		}}},
	}
}
