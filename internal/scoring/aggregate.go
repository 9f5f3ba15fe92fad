package scoring

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
)

// Policy names a parcel-level aggregation of pairwise scores. The policy is
// explicit configuration, never an implicit default buried in code: the
// choice materially changes planning conclusions drawn from the same matrix.
type Policy string

const (
	// PolicyMinimum is the reference policy: the worst pairwise score wins.
	// A parcel touching even one badly incompatible neighbor is flagged,
	// consistent with surfacing conflict rather than smoothing it.
	PolicyMinimum Policy = "minimum"
	// PolicyAverage is the unweighted mean of defined pairwise scores.
	PolicyAverage Policy = "average"
	// PolicyWeighted is the shared-boundary-weighted mean, normalized by
	// total weight.
	PolicyWeighted Policy = "weighted"
	// PolicyPercentile is the worst-side quantile of pairwise scores.
	PolicyPercentile Policy = "percentile"
)

// ParsePolicy validates a configured policy name.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyMinimum, PolicyAverage, PolicyWeighted, PolicyPercentile:
		return Policy(s), nil
	default:
		return "", eris.Errorf("scoring: unknown aggregation policy %q", s)
	}
}

// EdgeScore is one resolved adjacency edge: the matrix score and the edge
// weight (shared boundary length; consumed only by the weighted policy).
type EdgeScore struct {
	Score  int
	Weight float64
}

// Score is the parcel-level compatibility value. NoData marks a parcel with
// zero defined edges (isolated, or all neighbors unmapped); such parcels are
// excluded from summary denominators, never coerced to a numeric score.
type Score struct {
	Value  float64
	NoData bool
}

// Aggregator reduces a parcel's defined edge scores under one policy.
type Aggregator struct {
	policy     Policy
	percentile float64
}

// NewAggregator builds an aggregator. percentile is only consulted by
// PolicyPercentile and must lie in (0, 1].
func NewAggregator(policy Policy, percentile float64) (*Aggregator, error) {
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, err
	}
	if policy == PolicyPercentile && (percentile <= 0 || percentile > 1) {
		return nil, eris.Errorf("scoring: percentile %v outside (0, 1]", percentile)
	}
	return &Aggregator{policy: policy, percentile: percentile}, nil
}

// Policy returns the configured policy name.
func (a *Aggregator) Policy() Policy { return a.policy }

// Aggregate reduces the defined edges of one parcel to its Score.
func (a *Aggregator) Aggregate(edges []EdgeScore) Score {
	if len(edges) == 0 {
		return Score{NoData: true}
	}

	switch a.policy {
	case PolicyMinimum:
		min := edges[0].Score
		for _, e := range edges[1:] {
			if e.Score < min {
				min = e.Score
			}
		}
		return Score{Value: float64(min)}

	case PolicyAverage:
		sum := 0
		for _, e := range edges {
			sum += e.Score
		}
		return Score{Value: float64(sum) / float64(len(edges))}

	case PolicyWeighted:
		var sum, totalWeight float64
		for _, e := range edges {
			w := e.Weight
			if w <= 0 {
				w = 1
			}
			sum += float64(e.Score) * w
			totalWeight += w
		}
		return Score{Value: sum / totalWeight}

	case PolicyPercentile:
		values := make([]float64, len(edges))
		for i, e := range edges {
			values[i] = float64(e.Score)
		}
		sort.Float64s(values)
		return Score{Value: quantile(values, a.percentile)}
	}

	// Unreachable: NewAggregator validated the policy.
	return Score{NoData: true}
}

// quantile returns the lower (worst-side) q-quantile of sorted values with
// linear interpolation.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
