package s3store

import (
	"errors"
	"strings"
	"time"
)

// Validation errors for the required client fields. Each one names the
// field so the UI can report exactly what is missing.
var (
	ErrBucketRequired    = errors.New("bucket name is required")
	ErrRegionRequired    = errors.New("region is required")
	ErrEndpointRequired  = errors.New("endpoint URL is required")
	ErrAccessKeyRequired = errors.New("access key ID is required")
	ErrSecretKeyRequired = errors.New("secret access key is required")
)

// Config holds the object store connection settings. Bucket, Region,
// EndpointURL, AccessKeyID and SecretAccessKey must all be non-empty
// before a client can be constructed; changing any of them invalidates
// a previously constructed client.
type Config struct {
	Bucket          string
	Region          string
	Prefix          string
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool

	// ErrorMessage carries the last validation error, for display.
	ErrorMessage string
}

// Validate checks the five fields required to construct a client.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return ErrBucketRequired
	}
	if c.Region == "" {
		return ErrRegionRequired
	}
	if c.EndpointURL == "" {
		return ErrEndpointRequired
	}
	if c.AccessKeyID == "" {
		return ErrAccessKeyRequired
	}
	if c.SecretAccessKey == "" {
		return ErrSecretKeyRequired
	}
	return nil
}

// NormalizedEndpoint returns the endpoint URL with an http:// scheme
// prepended when none is present.
func (c *Config) NormalizedEndpoint() string {
	if c.EndpointURL == "" || strings.HasPrefix(c.EndpointURL, "http") {
		return c.EndpointURL
	}
	return "http://" + c.EndpointURL
}

// Snapshot is a single backup object in the store. Immutable once listed.
type Snapshot struct {
	Key          string
	Size         int64
	LastModified time.Time
}
