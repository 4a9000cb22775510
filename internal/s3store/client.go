package s3store

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Store is the capability the snapshot browser depends on: list objects
// under a prefix, fetch an object as a stream with a known total length,
// and enumerate buckets for connection testing.
type Store interface {
	List(ctx context.Context, bucket, prefix string) ([]Snapshot, error)
	// Fetch returns the object body and its total length in bytes.
	// The length is -1 when the provider did not report one.
	Fetch(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error)
	BucketNames(ctx context.Context) ([]string, error)
}

// Client is a thin binding over the S3 SDK implementing Store.
type Client struct {
	api *s3.Client
}

// Connect validates cfg and constructs a client bound to its region,
// endpoint, credentials and addressing style.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load client configuration: %w", err)
	}

	endpoint := cfg.NormalizedEndpoint()
	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = cfg.PathStyle
	})

	return &Client{api: api}, nil
}

// List issues a single listing call scoped to bucket and, when non-empty,
// prefix. Entries missing a size or last-modified timestamp are dropped.
// The result is sorted by last-modified, most recent first.
func (c *Client) List(ctx context.Context, bucket, prefix string) ([]Snapshot, error) {
	in := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		in.Prefix = aws.String(prefix)
	}

	out, err := c.api.ListObjectsV2(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	return collectSnapshots(out.Contents), nil
}

// collectSnapshots converts listed objects to snapshots, dropping entries
// without a size or last-modified timestamp, newest first.
func collectSnapshots(contents []types.Object) []Snapshot {
	snapshots := make([]Snapshot, 0, len(contents))
	for _, obj := range contents {
		if obj.Key == nil || obj.Size == nil || obj.LastModified == nil {
			continue
		}
		snapshots = append(snapshots, Snapshot{
			Key:          *obj.Key,
			Size:         *obj.Size,
			LastModified: *obj.LastModified,
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].LastModified.After(snapshots[j].LastModified)
	})

	return snapshots
}

// Fetch starts a streamed download of the object.
func (c *Client) Fetch(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch object: %w", err)
	}

	length := int64(-1)
	if out.ContentLength != nil {
		length = *out.ContentLength
	}

	return out.Body, length, nil
}

// BucketNames enumerates the buckets visible to the credentials. Used
// only as a lightweight connection test.
func (c *Client) BucketNames(ctx context.Context) ([]string, error) {
	out, err := c.api.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	names := make([]string, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		if b.Name != nil {
			names = append(names, *b.Name)
		}
	}
	return names, nil
}
