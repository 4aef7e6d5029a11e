// Package objstore wraps an S3-compatible storage endpoint behind the small
// surface the browser needs: listing one level of a prefix, enumerating all
// descendants, downloading objects and server-side copies.
package objstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Item is a single entry of an object listing: either a virtual directory
// (common prefix) or a concrete object.
type Item struct {
	Name         string
	IsDir        bool
	Key          string // full object key (or prefix for directories)
	URI          string // s3://bucket/key
	ObjectURL    string // endpoint URL of the object
	Size         int64
	LastModified time.Time
	ETag         string
}

// DownloadObjectInfo is one enumerated object queued for a bulk download.
type DownloadObjectInfo struct {
	Key  string
	Size int64
}

// PasteSpec identifies a single server-side copy request.
type PasteSpec struct {
	SrcBucket string
	SrcKey    string
	DstBucket string
	DstKey    string
}

// AddressingStyle selects how bucket names are resolved against the endpoint.
type AddressingStyle int

const (
	AddressingAuto AddressingStyle = iota
	AddressingPath
	AddressingVirtualHosted
)

// Config carries everything needed to construct a Client.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Secure    bool
	Style     AddressingStyle
}

// Client talks to one S3-compatible endpoint.
type Client struct {
	mc       *minio.Client
	endpoint string
	secure   bool
}

// New builds a Client. Static credentials are used when provided, otherwise
// the standard AWS environment variables are consulted.
func New(cfg Config) (*Client, error) {
	var creds *credentials.Credentials
	if cfg.AccessKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewEnvAWS()
	}

	lookup := minio.BucketLookupAuto
	switch cfg.Style {
	case AddressingPath:
		lookup = minio.BucketLookupPath
	case AddressingVirtualHosted:
		lookup = minio.BucketLookupDNS
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        creds,
		Secure:       cfg.Secure,
		Region:       cfg.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create storage client: %w", err)
	}

	return &Client{mc: mc, endpoint: cfg.Endpoint, secure: cfg.Secure}, nil
}

// List returns the direct children of prefix in bucket: directories from
// common prefixes, files with their size, timestamp and tag.
func (c *Client) List(ctx context.Context, bucket, prefix string) ([]Item, error) {
	var items []Item
	opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: false}
	for obj := range c.mc.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("cannot list objects in %s/%s: %w", bucket, prefix, obj.Err)
		}
		if obj.Key == prefix {
			// The prefix itself can come back as a zero-byte marker object.
			continue
		}
		if strings.HasSuffix(obj.Key, "/") {
			name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), "/")
			if name == "" {
				continue
			}
			items = append(items, Item{
				Name:      name,
				IsDir:     true,
				Key:       obj.Key,
				URI:       uriFor(bucket, obj.Key),
				ObjectURL: c.objectURL(bucket, obj.Key),
			})
			continue
		}
		items = append(items, Item{
			Name:         strings.TrimPrefix(obj.Key, prefix),
			Key:          obj.Key,
			URI:          uriFor(bucket, obj.Key),
			ObjectURL:    c.objectURL(bucket, obj.Key),
			Size:         obj.Size,
			LastModified: obj.LastModified,
			ETag:         strings.Trim(obj.ETag, `"`),
		})
	}
	return items, nil
}

// ListAllDescendants recursively enumerates every object below prefix,
// returning only the fields a bulk download needs.
func (c *Client) ListAllDescendants(ctx context.Context, bucket, prefix string) ([]DownloadObjectInfo, error) {
	var objs []DownloadObjectInfo
	opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: true}
	for obj := range c.mc.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("cannot enumerate %s/%s: %w", bucket, prefix, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		objs = append(objs, DownloadObjectInfo{Key: obj.Key, Size: obj.Size})
	}
	return objs, nil
}

// Download fetches one object to destPath, creating parent directories as
// needed.
func (c *Client) Download(ctx context.Context, bucket, key, destPath string) error {
	if err := c.mc.FGetObject(ctx, bucket, key, destPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("cannot download %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Copy performs a server-side copy described by spec.
func (c *Client) Copy(ctx context.Context, spec PasteSpec) error {
	dst := minio.CopyDestOptions{Bucket: spec.DstBucket, Object: spec.DstKey}
	src := minio.CopySrcOptions{Bucket: spec.SrcBucket, Object: spec.SrcKey}
	if _, err := c.mc.CopyObject(ctx, dst, src); err != nil {
		return fmt.Errorf("cannot copy %s/%s to %s/%s: %w",
			spec.SrcBucket, spec.SrcKey, spec.DstBucket, spec.DstKey, err)
	}
	return nil
}

// ConsoleURL returns the provider web console address for a prefix.
func (c *Client) ConsoleURL(bucket, prefix string) string {
	scheme := "http"
	if c.secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/buckets/%s?prefix=%s",
		scheme, c.endpoint, bucket, url.QueryEscape(prefix))
}

func (c *Client) objectURL(bucket, key string) string {
	scheme := "http"
	if c.secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, c.endpoint, bucket, key)
}

func uriFor(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}
