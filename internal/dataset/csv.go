package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/spaolacci/murmur3"
)

// MarshalCSV encodes the dataset as CSV with a header row. The label column
// is included only when includeLabel is set; inference payloads omit it.
func MarshalCSV(ds *Dataset, includeLabel bool) ([]byte, error) {
	if ds == nil || len(ds.Rows) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}
	if err := ds.Schema.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := ds.Schema.FeatureNames
	if includeLabel && ds.Schema.HasLabel() {
		header = ds.Schema.Columns()
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for i, row := range ds.Rows {
		if len(row.Features) != ds.Schema.NumFeatures() {
			return nil, fmt.Errorf("row %d has %d features, schema has %d",
				i, len(row.Features), ds.Schema.NumFeatures())
		}
		record := make([]string, 0, len(header))
		for _, v := range row.Features {
			record = append(record, FormatValue(v))
		}
		if includeLabel && ds.Schema.HasLabel() {
			record = append(record, strconv.Itoa(row.Label))
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatValue renders a feature value the way the endpoint expects it.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FormatRow renders a feature vector as a comma-joined CSV payload line.
func FormatRow(features []float64) string {
	cells := make([]string, len(features))
	for i, v := range features {
		cells[i] = FormatValue(v)
	}
	return strings.Join(cells, ",")
}

// SplitRow splits a CSV payload line into its cells.
func SplitRow(payload string) []string {
	return strings.Split(payload, ",")
}

// Fingerprint computes a stable 64-bit fingerprint of the dataset's CSV
// rendering, used to correlate ledger entries with uploaded objects.
func Fingerprint(csvData []byte) uint64 {
	return murmur3.Sum64(csvData)
}
