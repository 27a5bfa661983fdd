// Package source provides row sources: given a table name, a Source opens
// a readable stream whose first line is that table's header line. Two
// backends are provided, a local directory and a MinIO/S3 bucket, both
// with transparent extension-driven decompression.
package source

import (
	"context"
	"io"
)

// Source opens the row stream for a named table. The returned stream's
// first line is the comma-separated header; callers own closing it.
type Source interface {
	Open(ctx context.Context, tbl string) (io.ReadCloser, error)
}
