// Package report classifies parcel scores into the five-point rubric and
// computes city-wide and per-category summaries.
package report

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/glassbox-planner/compat-cli/internal/scoring"
)

// Bucket is a rubric class. Zero is the explicit "no data" state for parcels
// with no defined edges; it is excluded from percentage denominators and
// reported as a separate count.
type Bucket int

// BucketNoData marks a parcel without a computable score.
const BucketNoData Bucket = 0

var bucketLabels = map[Bucket]string{
	BucketNoData: "No Data",
	1:            "Fully Incompatible",
	2:            "Generally Incompatible",
	3:            "Neutral",
	4:            "Generally Compatible",
	5:            "Fully Compatible",
}

// Label returns the rubric label for a bucket.
func (b Bucket) Label() string {
	if l, ok := bucketLabels[b]; ok {
		return l
	}
	return "Unknown"
}

// Rounding selects how a non-integer aggregate (e.g. an average) is bucketed.
// The rule is explicit configuration: "3.4" cannot be allowed to fall into
// two tests.
type Rounding string

const (
	// RoundingFloor truncates toward the worse bucket (default;
	// conservative for an audit).
	RoundingFloor Rounding = "floor"
	// RoundingHalfUp rounds to the nearest bucket, halves upward.
	RoundingHalfUp Rounding = "half_up"
)

// ParseRounding validates a configured rounding rule.
func ParseRounding(s string) (Rounding, error) {
	switch Rounding(s) {
	case RoundingFloor, RoundingHalfUp:
		return Rounding(s), nil
	default:
		return "", eris.Errorf("report: unknown rounding rule %q", s)
	}
}

// Classifier buckets parcel scores under one rounding rule.
type Classifier struct {
	rounding Rounding
}

// NewClassifier builds a classifier for the configured rounding rule.
func NewClassifier(r Rounding) (*Classifier, error) {
	if _, err := ParseRounding(string(r)); err != nil {
		return nil, err
	}
	return &Classifier{rounding: r}, nil
}

// Classify maps a parcel score to its rubric bucket. Integer scores 1..5 map
// to their identically numbered bucket; non-integer aggregates follow the
// rounding rule; NoData stays NoData.
func (c *Classifier) Classify(s scoring.Score) Bucket {
	if s.NoData {
		return BucketNoData
	}
	var v float64
	switch c.rounding {
	case RoundingHalfUp:
		v = math.Floor(s.Value + 0.5)
	default:
		v = math.Floor(s.Value)
	}
	if v < 1 {
		v = 1
	}
	if v > 5 {
		v = 5
	}
	return Bucket(int(v))
}
