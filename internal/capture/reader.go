package capture

import (
	"context"
	"fmt"
	"strings"

	monerrors "github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/errors"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/storage"
)

// Reader fetches and decodes capture files from object storage.
// Capture files live under prefix/endpoint/variant/yyyy/mm/dd/hh/.
type Reader struct {
	store    storage.ObjectStorage
	prefix   string
	endpoint string
}

// NewReader creates a reader for the given endpoint's capture prefix.
func NewReader(store storage.ObjectStorage, prefix, endpoint string) *Reader {
	return &Reader{
		store:    store,
		prefix:   strings.Trim(prefix, "/"),
		endpoint: endpoint,
	}
}

// Prefix returns the endpoint's full capture key prefix.
func (r *Reader) Prefix() string {
	if r.prefix == "" {
		return r.endpoint + "/"
	}
	return r.prefix + "/" + r.endpoint + "/"
}

// ListFiles returns the keys of all capture files for the endpoint,
// oldest first (the hive-style date layout sorts chronologically).
func (r *Reader) ListFiles(ctx context.Context) ([]string, error) {
	keys, err := r.store.ListObjects(ctx, r.Prefix())
	if err != nil {
		return nil, monerrors.NewCaptureError(monerrors.CodeMalformedRecord,
			"failed to list capture files", err)
	}

	var files []string
	for _, key := range keys {
		if strings.HasSuffix(key, ".jsonl") {
			files = append(files, key)
		}
	}
	return files, nil
}

// ReadAll fetches and decodes every capture file for the endpoint.
func (r *Reader) ReadAll(ctx context.Context) ([]Record, error) {
	files, err := r.ListFiles(ctx)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, monerrors.NewCaptureError(monerrors.CodeNoCaptureFiles,
			fmt.Sprintf("no capture files under %s", r.Prefix()), nil)
	}

	var records []Record
	for _, key := range files {
		data, err := r.store.GetObject(ctx, key)
		if err != nil {
			return nil, monerrors.NewCaptureError(monerrors.CodeMalformedRecord,
				fmt.Sprintf("failed to fetch capture file %s", key), err)
		}
		recs, err := DecodeRecords(data)
		if err != nil {
			return nil, monerrors.NewCaptureError(monerrors.CodeMalformedRecord,
				fmt.Sprintf("failed to decode capture file %s", key), err)
		}
		records = append(records, recs...)
	}
	return records, nil
}

// InputRows extracts the CSV input cells from capture records. Each row is
// the captured request payload split on commas; non-CSV records are skipped.
func InputRows(records []Record) [][]string {
	var rows [][]string
	for _, rec := range records {
		in := rec.CaptureData.EndpointInput
		if in.Encoding != "CSV" && in.Encoding != "" {
			continue
		}
		for _, line := range strings.Split(in.Data, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			rows = append(rows, strings.Split(line, ","))
		}
	}
	return rows
}
