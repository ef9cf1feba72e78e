package store

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToDouble builds the pipeline-side twin of CoerceFloat: a $convert that
// turns a permissively typed monetary expression into a double, with 0 for
// errors and nulls.
func ToDouble(expr any) bson.D {
	return bson.D{{Key: "$convert", Value: bson.D{
		{Key: "input", Value: expr},
		{Key: "to", Value: "double"},
		{Key: "onError", Value: 0.0},
		{Key: "onNull", Value: 0.0},
	}}}
}

// ToDate builds a tolerant $convert to date; failures become null so the
// pipeline can keep the row and treat the date as unknown.
func ToDate(expr any) bson.D {
	return bson.D{{Key: "$convert", Value: bson.D{
		{Key: "input", Value: expr},
		{Key: "to", Value: "date"},
		{Key: "onError", Value: nil},
		{Key: "onNull", Value: nil},
	}}}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// CoerceFloat converts a permissively typed numeric value (string or number)
// to a finite float64, with 0 for nulls, parse failures, and non-finite
// results. It is the client-side twin of the pipeline's
// $convert{to:"double", onError:0, onNull:0}.
func CoerceFloat(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return finiteOrZero(t)
	case float32:
		return finiteOrZero(float64(t))
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return finiteOrZero(parsed)
	case primitive.Decimal128:
		parsed, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return 0
		}
		return finiteOrZero(parsed)
	default:
		return 0
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseTime converts a permissively typed date value (ISO-ish string or
// native date) to UTC. Unparseable values yield nil and are treated as
// absent by callers.
func ParseTime(v any) *time.Time {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		utc := t.UTC()
		return &utc
	case primitive.DateTime:
		utc := t.Time().UTC()
		return &utc
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				utc := parsed.UTC()
				return &utc
			}
		}
		return nil
	default:
		return nil
	}
}

// IDString renders a document identifier for display and map keys. IDs are
// otherwise treated as opaque values and passed back to the store raw.
func IDString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case primitive.ObjectID:
		return t.Hex()
	default:
		return fmt.Sprint(t)
	}
}
