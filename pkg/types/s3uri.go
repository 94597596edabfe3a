// Package types provides shared types used across the monitoring toolkit.
package types

import (
	"fmt"
	"strings"
)

// S3URI identifies an object or prefix in S3 as bucket + key.
type S3URI struct {
	Bucket string
	Key    string
}

// ParseS3URI parses an s3://bucket/key URI.
// The key may be empty, denoting the bucket root.
func ParseS3URI(uri string) (S3URI, error) {
	const scheme = "s3://"
	if !strings.HasPrefix(uri, scheme) {
		return S3URI{}, fmt.Errorf("invalid S3 URI %q: missing s3:// scheme", uri)
	}

	rest := uri[len(scheme):]
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return S3URI{}, fmt.Errorf("invalid S3 URI %q: empty bucket", uri)
	}

	return S3URI{Bucket: bucket, Key: key}, nil
}

// String formats the URI as s3://bucket/key.
func (u S3URI) String() string {
	if u.Key == "" {
		return "s3://" + u.Bucket
	}
	return "s3://" + u.Bucket + "/" + u.Key
}

// Join returns a new URI with the given path elements appended to the key.
func (u S3URI) Join(elems ...string) S3URI {
	parts := make([]string, 0, len(elems)+1)
	if u.Key != "" {
		parts = append(parts, strings.TrimSuffix(u.Key, "/"))
	}
	for _, e := range elems {
		e = strings.Trim(e, "/")
		if e != "" {
			parts = append(parts, e)
		}
	}
	return S3URI{Bucket: u.Bucket, Key: strings.Join(parts, "/")}
}

// IsZero reports whether the URI is unset.
func (u S3URI) IsZero() bool {
	return u.Bucket == ""
}
