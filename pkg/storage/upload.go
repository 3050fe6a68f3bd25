package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"

	"awshelpers/pkg/progress"
)

func (c *Client) UploadFile(ctx context.Context, bucket *Bucket, key, localPath string) error {
	c.logger.Info("Uploading file", "path", localPath, "bucket", bucket.Name, "key", key)

	file, err := os.Open(localPath)
	if err != nil {
		return localIOError("open", localPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return localIOError("stat", localPath, err)
	}
	if info.IsDir() {
		return localIOError("upload", localPath, errors.New("is a directory"))
	}

	return c.UploadReader(ctx, bucket, key, file, info.Size())
}

func (c *Client) UploadFileByName(ctx context.Context, bucketName, key, localPath string) error {
	bucket, err := c.GetBucket(ctx, bucketName)
	if err != nil {
		return err
	}
	return c.UploadFile(ctx, bucket, key, localPath)
}

// UploadReader uploads size bytes from r under key. Pass -1 when the size is
// unknown. Readers that also implement io.Seeker and io.ReaderAt, such as
// *os.File, are handed to the upload manager without buffering.
func (c *Client) UploadReader(ctx context.Context, bucket *Bucket, key string, r io.Reader, size int64) error {
	rep := c.progress(key, size)
	defer rep.Finish()

	_, err := bucket.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket.Name),
		Key:    aws.String(key),
		Body:   progress.NewReader(r, size, rep),
	})
	if err != nil {
		status, reason := describe(err)
		c.logger.Error("Can't upload object", "bucket", bucket.Name, "key", key, "status", status, "reason", reason)
		return fmt.Errorf("failed to upload to s3://%s/%s: %w", bucket.Name, key, err)
	}

	c.logger.Debug("Object uploaded", "bucket", bucket.Name, "key", key, "size", humanize.Bytes(uint64(max(size, 0))))
	return nil
}

// UploadDirectory uploads the regular files directly inside localDir as
// <keyPrefix>/<base of localDir>/<name>. Subdirectories are not descended
// into. If localDir cannot be read the exit hook is called with status 1.
func (c *Client) UploadDirectory(ctx context.Context, bucket *Bucket, localDir, keyPrefix string) error {
	c.logger.Info("Uploading directory", "dir", localDir, "bucket", bucket.Name, "prefix", keyPrefix)

	entries, err := os.ReadDir(localDir)
	if err != nil {
		c.logger.Error("Can't read a directory", "dir", localDir, "error", err)
		c.exit(1)
		return localIOError("read directory", localDir, err)
	}

	base := filepath.Base(filepath.Clean(localDir))
	for _, entry := range entries {
		localPath := filepath.Join(localDir, entry.Name())

		// Stat follows symlinks, so a link to a directory is skipped too.
		info, err := os.Stat(localPath)
		if err != nil {
			c.logger.Error("Can't stat a directory entry", "path", localPath, "error", err)
			return localIOError("stat", localPath, err)
		}
		if !info.Mode().IsRegular() {
			c.logger.Debug("Skipping entry that is not a regular file", "path", localPath, "mode", info.Mode().String())
			continue
		}

		key := directoryKey(keyPrefix, base, entry.Name())
		if err := c.UploadFile(ctx, bucket, key, localPath); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) UploadDirectoryByName(ctx context.Context, bucketName, localDir, keyPrefix string) error {
	bucket, err := c.GetBucket(ctx, bucketName)
	if err != nil {
		return err
	}
	return c.UploadDirectory(ctx, bucket, localDir, keyPrefix)
}

// directoryKey treats an empty or "/" prefix as the bucket root.
func directoryKey(prefix, dir, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return dir + "/" + name
	}
	return path.Join(prefix, dir, name)
}
