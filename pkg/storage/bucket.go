package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// DefaultLocation creates the bucket in the client's region: no location
// constraint for us-east-1, the region itself as constraint otherwise.
const DefaultLocation = ""

// Bucket is a handle to a remote bucket, bound to the session that produced it.
type Bucket struct {
	Name     string
	api      S3API
	uploader *manager.Uploader
}

func newBucket(name string, api S3API) *Bucket {
	return &Bucket{
		Name: name,
		api:  api,
		uploader: manager.NewUploader(api, func(u *manager.Uploader) {
			u.Concurrency = 1
		}),
	}
}

type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

func (c *Client) CreateBucket(ctx context.Context, name, location string) (*Bucket, error) {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(name),
	}
	if location == DefaultLocation && c.cfg.region() != DefaultRegion {
		location = c.cfg.region()
	}
	if location != DefaultLocation {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(location),
		}
	}

	if _, err := c.api.CreateBucket(ctx, input); err != nil {
		status, reason := describe(err)
		c.logger.Error("Can't create a new bucket", "bucket", name, "status", status, "reason", reason)
		return nil, &Error{Kind: BucketCreateFailed, Op: "create bucket", Target: name, Err: err}
	}

	c.logger.Info("Bucket was created", "bucket", name)
	return newBucket(name, c.api), nil
}

func (c *Client) GetBucket(ctx context.Context, name string) (*Bucket, error) {
	if _, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)}); err != nil {
		status, reason := describe(err)
		c.logger.Error("Can't get a bucket", "bucket", name, "status", status, "reason", reason)
		return nil, &Error{Kind: BucketNotFound, Op: "get bucket", Target: name, Err: err}
	}

	c.logger.Info("Connected with bucket", "bucket", name)
	return newBucket(name, c.api), nil
}

// ListObjects returns every object under prefix, following pagination.
func (c *Client) ListObjects(ctx context.Context, bucket *Bucket, prefix string) ([]Object, error) {
	var objects []Object

	paginator := s3.NewListObjectsV2Paginator(bucket.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket.Name),
		Prefix: aws.String(prefix),
	})

	pageCount := 0
	for paginator.HasMorePages() {
		pageCount++
		page, err := paginator.NextPage(ctx)
		if err != nil {
			status, reason := describe(err)
			c.logger.Error("Can't list objects", "bucket", bucket.Name, "prefix", prefix, "page", pageCount, "status", status, "reason", reason)
			return nil, fmt.Errorf("failed to list objects (page %d) in s3://%s/%s: %w", pageCount, bucket.Name, prefix, err)
		}

		for _, obj := range page.Contents {
			objects = append(objects, Object{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	c.logger.Debug("Listed objects", "bucket", bucket.Name, "prefix", prefix, "count", len(objects), "pages", pageCount)
	return objects, nil
}
