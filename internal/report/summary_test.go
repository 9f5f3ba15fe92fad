package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOutcomes() []ParcelOutcome {
	return []ParcelOutcome{
		{ParcelID: "P1", Category: "Residential", Bucket: 1},
		{ParcelID: "P2", Category: "Industrial", Bucket: 1},
		{ParcelID: "P3", Category: "Green Space", Bucket: 4},
		{ParcelID: "P4", Category: "Residential", Bucket: BucketNoData},
	}
}

func TestSummarizeCity(t *testing.T) {
	s := SummarizeCity(testOutcomes())

	assert.Equal(t, 3, s.Scored)
	assert.Equal(t, 1, s.NoData)
	require.Len(t, s.Buckets, 5)

	assert.Equal(t, 2, s.Buckets[0].Count) // bucket 1
	assert.InDelta(t, 66.67, s.Buckets[0].Percent, 0.01)
	assert.Equal(t, 1, s.Buckets[3].Count) // bucket 4
	assert.InDelta(t, 33.33, s.Buckets[3].Percent, 0.01)

	// Empty buckets are present, zero-filled.
	assert.Equal(t, 0, s.Buckets[2].Count)
	assert.Equal(t, 0.0, s.Buckets[2].Percent)
}

func TestSummarizeCityPercentagesSumTo100(t *testing.T) {
	s := SummarizeCity(testOutcomes())
	total := 0.0
	for _, b := range s.Buckets {
		total += b.Percent
	}
	assert.InDelta(t, 100.0, total, 0.01)
}

func TestSummarizeCityAllNoData(t *testing.T) {
	s := SummarizeCity([]ParcelOutcome{
		{ParcelID: "P1", Category: "Residential", Bucket: BucketNoData},
	})
	assert.Equal(t, 0, s.Scored)
	assert.Equal(t, 1, s.NoData)
	for _, b := range s.Buckets {
		assert.Equal(t, 0.0, b.Percent)
	}
}

func TestSummarizeByCategory(t *testing.T) {
	summaries := SummarizeByCategory(testOutcomes())
	require.Len(t, summaries, 3)

	// Sorted lexically for determinism.
	assert.EqualValues(t, "Green Space", summaries[0].Category)
	assert.EqualValues(t, "Industrial", summaries[1].Category)
	assert.EqualValues(t, "Residential", summaries[2].Category)

	residential := summaries[2]
	assert.Equal(t, 1, residential.Scored)
	assert.Equal(t, 1, residential.NoData)
	assert.Equal(t, 1, residential.Buckets[0].Count)
	assert.InDelta(t, 100.0, residential.Buckets[0].Percent, 0.01)
}

func TestWriteCitySummaryCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCitySummaryCSV(&buf, SummarizeCity(testOutcomes())))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 7) // header + 5 buckets + no_data
	assert.Equal(t, "compatibility_score,label,parcel_count,percentage", lines[0])
	assert.Equal(t, "1,Fully Incompatible,2,66.67", lines[1])
	assert.Equal(t, "no_data,No Data,1,", lines[6])
}

func TestWriteCategoryBreakdownCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCategoryBreakdownCSV(&buf, SummarizeByCategory(testOutcomes())))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "land_use,1,2,3,4,5,total_parcels,no_data", lines[0])
	assert.Equal(t, "Green Space,0,0,0,1,0,1,0", lines[1])
	assert.Equal(t, "Residential,1,0,0,0,0,1,1", lines[3])
}
