package types

import "testing"

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    S3URI
		wantErr bool
	}{
		{
			name: "bucket and key",
			uri:  "s3://my-bucket/path/to/object.json",
			want: S3URI{Bucket: "my-bucket", Key: "path/to/object.json"},
		},
		{
			name: "bucket only",
			uri:  "s3://my-bucket",
			want: S3URI{Bucket: "my-bucket"},
		},
		{
			name: "bucket with trailing slash",
			uri:  "s3://my-bucket/",
			want: S3URI{Bucket: "my-bucket", Key: ""},
		},
		{
			name:    "missing scheme",
			uri:     "my-bucket/key",
			wantErr: true,
		},
		{
			name:    "empty bucket",
			uri:     "s3:///key",
			wantErr: true,
		},
		{
			name:    "empty string",
			uri:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseS3URI(tt.uri)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %+v", tt.uri, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseS3URI(%q) failed: %v", tt.uri, err)
			}
			if got != tt.want {
				t.Errorf("ParseS3URI(%q) = %+v, want %+v", tt.uri, got, tt.want)
			}
		})
	}
}

func TestS3URI_RoundTrip(t *testing.T) {
	uris := []string{
		"s3://bucket/key",
		"s3://bucket/deep/nested/key.csv",
		"s3://bucket",
	}
	for _, uri := range uris {
		parsed, err := ParseS3URI(uri)
		if err != nil {
			t.Fatalf("ParseS3URI(%q) failed: %v", uri, err)
		}
		if got := parsed.String(); got != uri {
			t.Errorf("round trip of %q = %q", uri, got)
		}
	}
}

func TestS3URI_Join(t *testing.T) {
	tests := []struct {
		name  string
		base  S3URI
		elems []string
		want  string
	}{
		{
			name:  "append to prefix",
			base:  S3URI{Bucket: "b", Key: "data-capture"},
			elems: []string{"endpoint", "AllTraffic"},
			want:  "s3://b/data-capture/endpoint/AllTraffic",
		},
		{
			name:  "trailing slash on base key",
			base:  S3URI{Bucket: "b", Key: "prefix/"},
			elems: []string{"file.json"},
			want:  "s3://b/prefix/file.json",
		},
		{
			name:  "empty base key",
			base:  S3URI{Bucket: "b"},
			elems: []string{"statistics.json"},
			want:  "s3://b/statistics.json",
		},
		{
			name:  "empty elements skipped",
			base:  S3URI{Bucket: "b", Key: "x"},
			elems: []string{"", "y"},
			want:  "s3://b/x/y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.base.Join(tt.elems...).String(); got != tt.want {
				t.Errorf("Join = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFeatureSchema(t *testing.T) {
	s := NewFeatureSchema(3, "label")
	if s.NumFeatures() != 3 {
		t.Fatalf("expected 3 features, got %d", s.NumFeatures())
	}
	if !s.HasLabel() {
		t.Fatal("expected schema to have a label")
	}

	cols := s.Columns()
	want := []string{"feature_0", "feature_1", "feature_2", "label"}
	if len(cols) != len(want) {
		t.Fatalf("Columns() = %v, want %v", cols, want)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("Columns()[%d] = %q, want %q", i, cols[i], want[i])
		}
	}

	if err := s.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestFeatureSchema_Validate(t *testing.T) {
	tests := []struct {
		name    string
		schema  FeatureSchema
		wantErr bool
	}{
		{
			name:    "no features",
			schema:  FeatureSchema{},
			wantErr: true,
		},
		{
			name:    "duplicate columns",
			schema:  FeatureSchema{FeatureNames: []string{"a", "a"}},
			wantErr: true,
		},
		{
			name:    "label collides with feature",
			schema:  FeatureSchema{FeatureNames: []string{"a"}, LabelName: "a"},
			wantErr: true,
		},
		{
			name:   "unlabeled",
			schema: FeatureSchema{FeatureNames: []string{"a", "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
