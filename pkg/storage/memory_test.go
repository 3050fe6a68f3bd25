package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// memS3 is an in-memory S3API. Objects are small enough that the upload
// manager always takes the single PutObject path.
type memS3 struct {
	buckets      map[string]map[string][]byte
	pageSize     int
	createInputs []*s3.CreateBucketInput
}

var _ S3API = (*memS3)(nil)

var errMultipart = errors.New("multipart upload not supported by memS3")

func newMemS3(buckets ...string) *memS3 {
	m := &memS3{buckets: map[string]map[string][]byte{}, pageSize: 1000}
	for _, b := range buckets {
		m.buckets[b] = map[string][]byte{}
	}
	return m
}

func (m *memS3) put(bucket, key, content string) {
	m.buckets[bucket][key] = []byte(content)
}

func (m *memS3) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	m.createInputs = append(m.createInputs, in)
	name := aws.ToString(in.Bucket)
	if _, ok := m.buckets[name]; ok {
		return nil, &types.BucketAlreadyOwnedByYou{Message: aws.String("bucket already exists")}
	}
	m.buckets[name] = map[string][]byte{}
	return &s3.CreateBucketOutput{Location: aws.String("/" + name)}, nil
}

func (m *memS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if _, ok := m.buckets[aws.ToString(in.Bucket)]; !ok {
		return nil, &types.NotFound{Message: aws.String("bucket not found")}
	}
	return &s3.HeadBucketOutput{}, nil
}

func (m *memS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	objects, ok := m.buckets[aws.ToString(in.Bucket)]
	if !ok {
		return nil, &types.NoSuchBucket{}
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *memS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	objects, ok := m.buckets[aws.ToString(in.Bucket)]
	if !ok {
		return nil, &types.NoSuchBucket{}
	}
	data, ok := objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (m *memS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	objects, ok := m.buckets[aws.ToString(in.Bucket)]
	if !ok {
		return nil, &types.NoSuchBucket{}
	}

	var keys []string
	for key := range objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := min(start+m.pageSize, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, key := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(objects[key]))),
			LastModified: aws.Time(time.Unix(0, 0)),
		})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (m *memS3) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errMultipart
}

func (m *memS3) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errMultipart
}

func (m *memS3) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errMultipart
}

func (m *memS3) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return nil, errMultipart
}
