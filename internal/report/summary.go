package report

import (
	"sort"

	"github.com/glassbox-planner/compat-cli/internal/landuse"
)

// ParcelOutcome is one classified parcel as the summarizer sees it.
type ParcelOutcome struct {
	ParcelID string
	Category landuse.Category
	Bucket   Bucket
}

// BucketCount is one summary row: parcels in a bucket and their share of the
// scored (non-NoData) population.
type BucketCount struct {
	Bucket  Bucket
	Label   string
	Count   int
	Percent float64
}

// CitySummary is the city-wide distribution. All five buckets are always
// present, zero-filled where empty, so downstream consumers never need to
// guess at missing rows. NoData parcels are counted separately and excluded
// from the percentage denominator.
type CitySummary struct {
	Buckets []BucketCount
	Scored  int
	NoData  int
}

// CategorySummary is the same breakdown for one land-use category.
type CategorySummary struct {
	Category landuse.Category
	Buckets  []BucketCount
	Scored   int
	NoData   int
}

// SummarizeCity computes the city-wide bucket distribution.
func SummarizeCity(outcomes []ParcelOutcome) CitySummary {
	counts, scored, noData := tally(outcomes)
	return CitySummary{
		Buckets: bucketRows(counts, scored),
		Scored:  scored,
		NoData:  noData,
	}
}

// SummarizeByCategory groups the distribution by each parcel's own land-use
// category, enabling per-category policy audit. Categories are sorted
// lexically for deterministic output.
func SummarizeByCategory(outcomes []ParcelOutcome) []CategorySummary {
	byCategory := make(map[landuse.Category][]ParcelOutcome)
	for _, o := range outcomes {
		byCategory[o.Category] = append(byCategory[o.Category], o)
	}

	categories := make([]landuse.Category, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	summaries := make([]CategorySummary, 0, len(categories))
	for _, c := range categories {
		counts, scored, noData := tally(byCategory[c])
		summaries = append(summaries, CategorySummary{
			Category: c,
			Buckets:  bucketRows(counts, scored),
			Scored:   scored,
			NoData:   noData,
		})
	}
	return summaries
}

func tally(outcomes []ParcelOutcome) (counts map[Bucket]int, scored, noData int) {
	counts = make(map[Bucket]int, 5)
	for _, o := range outcomes {
		if o.Bucket == BucketNoData {
			noData++
			continue
		}
		counts[o.Bucket]++
		scored++
	}
	return counts, scored, noData
}

func bucketRows(counts map[Bucket]int, scored int) []BucketCount {
	rows := make([]BucketCount, 0, 5)
	for b := Bucket(1); b <= 5; b++ {
		row := BucketCount{Bucket: b, Label: b.Label(), Count: counts[b]}
		if scored > 0 {
			row.Percent = float64(row.Count) / float64(scored) * 100
		}
		rows = append(rows, row)
	}
	return rows
}
