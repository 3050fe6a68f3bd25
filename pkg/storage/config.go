package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const DefaultRegion = "us-east-1"

// Config is the immutable connection configuration of a Client.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	// Endpoint overrides the AWS endpoint, e.g. for MinIO. Path-style
	// addressing is used whenever it is set.
	Endpoint string
}

func (c Config) region() string {
	if c.Region == "" {
		return DefaultRegion
	}
	return c.Region
}

func (c Config) endpoint() string {
	if c.Endpoint == "" {
		return "s3." + c.region() + ".amazonaws.com"
	}
	return c.Endpoint
}

// S3API is the part of the S3 client used by this package.
type S3API interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient

	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

var _ S3API = (*s3.Client)(nil)

// Dialer opens a new session for the given config.
type Dialer func(ctx context.Context, cfg Config) (S3API, error)

func loadAWSConfig(ctx context.Context, region string, creds aws.CredentialsProvider) (aws.Config, error) {
	opts := []func(*aws_config.LoadOptions) error{
		aws_config.WithRegion(region),
	}
	if creds != nil {
		opts = append(opts, aws_config.WithCredentialsProvider(creds))
	}
	return aws_config.LoadDefaultConfig(ctx, opts...)
}

// NewS3API is the default Dialer. Static credentials are used when both keys
// are set, otherwise the SDK's default chain; if that yields nothing the
// session falls back to anonymous access so public buckets stay readable.
func NewS3API(ctx context.Context, cfg Config) (S3API, error) {
	var creds aws.CredentialsProvider
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		creds = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.region(), creds)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	if awsCfg.Credentials == nil {
		awsCfg.Credentials = aws.AnonymousCredentials{}
	} else if _, err := awsCfg.Credentials.Retrieve(ctx); err != nil {
		awsCfg, err = loadAWSConfig(ctx, cfg.region(), aws.AnonymousCredentials{})
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config with anonymous credentials: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return client, nil
}
