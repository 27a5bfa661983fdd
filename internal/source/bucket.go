package source

import (
	"context"
	"fmt"
	"io"

	"github.com/MaxwellKnight/csvg/internal/errs"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BucketConfig holds the settings for an object-store row source.
type BucketConfig struct {
	// Endpoint is the host:port of the storage server,
	// e.g. "localhost:9000" for local MinIO.
	Endpoint string

	// AccessKey is the access key ID (MinIO / S3 style).
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Region is used by region-aware backends. Leave empty for MinIO.
	Region string

	// Bucket is the bucket holding the CSV objects.
	Bucket string

	// Prefix is an optional key prefix under which the objects live.
	Prefix string
}

// Bucket serves tables from CSV objects in a MinIO/S3 bucket. A table
// named "users" resolves to <prefix>users.csv or a compressed variant,
// whichever object exists.
type Bucket struct {
	client *miniogo.Client
	cfg    BucketConfig
}

// NewBucket connects to the object store and verifies the bucket exists.
func NewBucket(ctx context.Context, cfg BucketConfig) (*Bucket, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errs.IO("creating object store client", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errs.IO("checking bucket", err)
	}
	if !exists {
		return nil, errs.InvalidInput(fmt.Sprintf("bucket %q does not exist", cfg.Bucket))
	}

	return &Bucket{client: client, cfg: cfg}, nil
}

// Open resolves tbl to an object key and returns its decompressed row
// stream.
func (b *Bucket) Open(ctx context.Context, tbl string) (io.ReadCloser, error) {
	for _, ext := range extensions {
		key := b.cfg.Prefix + tbl + ext
		if _, err := b.client.StatObject(ctx, b.cfg.Bucket, key, miniogo.StatObjectOptions{}); err != nil {
			continue
		}
		obj, err := b.client.GetObject(ctx, b.cfg.Bucket, key, miniogo.GetObjectOptions{})
		if err != nil {
			return nil, errs.IO(fmt.Sprintf("fetching object %s", key), err)
		}
		return newDecompressor(obj, key)
	}
	return nil, errs.IO(fmt.Sprintf("no csv object for table %q in bucket %s", tbl, b.cfg.Bucket), nil)
}
