// Package capture reads and decodes SageMaker data-capture files: the
// JSON-lines request/response records the endpoint writes to S3.
package capture

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Payload is one side of a captured request/response pair.
type Payload struct {
	ObservedContentType string `json:"observedContentType"`
	Mode                string `json:"mode"`
	Data                string `json:"data"`
	Encoding            string `json:"encoding"`
}

// Data is the captured request/response pair.
type Data struct {
	EndpointInput  Payload `json:"endpointInput"`
	EndpointOutput Payload `json:"endpointOutput"`
}

// Metadata carries the capture event identity and timing.
type Metadata struct {
	EventID       string `json:"eventId"`
	InferenceID   string `json:"inferenceId,omitempty"`
	InferenceTime string `json:"inferenceTime"`
}

// Record is one line of a capture file.
type Record struct {
	CaptureData   Data     `json:"captureData"`
	EventMetadata Metadata `json:"eventMetadata"`
	EventVersion  string   `json:"eventVersion"`
}

// InferenceTime parses the record's inference timestamp.
func (r *Record) InferenceTime() (time.Time, error) {
	return time.Parse(time.RFC3339, r.EventMetadata.InferenceTime)
}

// DecodeRecords decodes a capture file: one JSON record per line.
// Blank lines are skipped; a malformed line fails the whole file with
// its line number.
func DecodeRecords(data []byte) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// EncodeRecords renders records as a capture file, one JSON object per line.
// Used by tests and by local capture simulation.
func EncodeRecords(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	for i := range records {
		raw, err := json.Marshal(&records[i])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		buf.Write(raw)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
