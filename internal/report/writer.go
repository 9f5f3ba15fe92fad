package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
)

// WriteCitySummaryCSV writes the city-wide distribution: one row per
// classification bucket with count and percentage, plus a trailing no-data
// row so excluded parcels stay visible in the artifact.
func WriteCitySummaryCSV(w io.Writer, s CitySummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"compatibility_score", "label", "parcel_count", "percentage"}); err != nil {
		return eris.Wrap(err, "report: write city summary header")
	}
	for _, row := range s.Buckets {
		record := []string{
			strconv.Itoa(int(row.Bucket)),
			row.Label,
			strconv.Itoa(row.Count),
			fmt.Sprintf("%.2f", row.Percent),
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "report: write city summary row")
		}
	}
	if err := cw.Write([]string{"no_data", BucketNoData.Label(), strconv.Itoa(s.NoData), ""}); err != nil {
		return eris.Wrap(err, "report: write no-data row")
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush city summary")
}

// WriteCategoryBreakdownCSV writes the per-category breakdown: one row per
// land-use category with per-bucket counts, the scored total, and the
// no-data count.
func WriteCategoryBreakdownCSV(w io.Writer, summaries []CategorySummary) error {
	cw := csv.NewWriter(w)
	header := []string{"land_use", "1", "2", "3", "4", "5", "total_parcels", "no_data"}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "report: write breakdown header")
	}
	for _, s := range summaries {
		record := make([]string, 0, len(header))
		record = append(record, s.Category.String())
		for _, row := range s.Buckets {
			record = append(record, strconv.Itoa(row.Count))
		}
		record = append(record, strconv.Itoa(s.Scored), strconv.Itoa(s.NoData))
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "report: write breakdown row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush breakdown")
}
