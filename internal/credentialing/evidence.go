package credentialing

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pdclabs/chairview/internal/store"
)

// buildPaidNPIPipeline collects the distinct provider_npi values that have at
// least one line item with a positive insurance payment received in the last
// 90 days. The match binds NPI alone; location and carrier are deliberately
// not part of the lookup.
func buildPaidNPIPipeline(cutoff any) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$data.patients"}},
		{{Key: "$unwind", Value: "$data.patients.claims"}},
		{{Key: "$unwind", Value: "$data.patients.claims.procedures"}},
		{{Key: "$project", Value: bson.D{
			{Key: "npi", Value: "$data.patients.claims.provider_npi"},
			{Key: "received", Value: store.ToDate("$data.patients.claims.date_received")},
			{Key: "paid", Value: store.ToDouble("$data.patients.claims.procedures.insAmountPaid")},
		}}},
		{{Key: "$match", Value: bson.D{
			{Key: "received", Value: bson.D{{Key: "$gte", Value: cutoff}}},
			{Key: "paid", Value: bson.D{{Key: "$gt", Value: 0.0}}},
			{Key: "npi", Value: bson.D{{Key: "$nin", Value: bson.A{nil, ""}}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$npi"},
		}}},
	}
}
