package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"

	"awshelpers/pkg/progress"
)

const shortKeyLen = 20

// DownloadFile saves the object under key to destDir/key, creating destDir
// and any directories the key implies.
func (c *Client) DownloadFile(ctx context.Context, bucket *Bucket, key, destDir string) error {
	c.logger.Info("Downloading file", "key", key, "bucket", bucket.Name, "dest", destDir)

	if err := c.ensureDir(destDir); err != nil {
		return err
	}

	target, err := localPath(destDir, key)
	if err != nil {
		return localIOError("download", key, err)
	}
	return c.download(ctx, bucket, key, target, key)
}

func (c *Client) DownloadFileByName(ctx context.Context, bucketName, key, destDir string) error {
	bucket, err := c.GetBucket(ctx, bucketName)
	if err != nil {
		return err
	}
	return c.DownloadFile(ctx, bucket, key, destDir)
}

// DownloadDirectory downloads every object under keyPrefix to destDir/<key>,
// one at a time. Directory marker objects (keys ending in "/") are skipped.
func (c *Client) DownloadDirectory(ctx context.Context, bucket *Bucket, keyPrefix, destDir string) error {
	c.logger.Info("Downloading directory", "prefix", keyPrefix, "bucket", bucket.Name, "dest", destDir)

	if err := c.ensureDir(destDir); err != nil {
		return err
	}

	objects, err := c.ListObjects(ctx, bucket, keyPrefix)
	if err != nil {
		return fmt.Errorf("error downloading directory s3://%s/%s to %s: %w", bucket.Name, keyPrefix, destDir, err)
	}

	files := make([]Object, 0, len(objects))
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, "/") {
			files = append(files, obj)
		}
	}

	for i, obj := range files {
		target, err := localPath(destDir, obj.Key)
		if err != nil {
			return localIOError("download", obj.Key, err)
		}

		description := fmt.Sprintf("[%d/%d] %s", i+1, len(files), shortKey(obj.Key))
		if err := c.download(ctx, bucket, obj.Key, target, description); err != nil {
			return fmt.Errorf("error downloading directory s3://%s/%s to %s: %w", bucket.Name, keyPrefix, destDir, err)
		}
	}
	return nil
}

func (c *Client) DownloadDirectoryByName(ctx context.Context, bucketName, keyPrefix, destDir string) error {
	bucket, err := c.GetBucket(ctx, bucketName)
	if err != nil {
		return err
	}
	return c.DownloadDirectory(ctx, bucket, keyPrefix, destDir)
}

func (c *Client) download(ctx context.Context, bucket *Bucket, key, target, description string) error {
	if err := c.ensureDir(filepath.Dir(target)); err != nil {
		return err
	}

	out, err := bucket.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket.Name),
		Key:    aws.String(key),
	})
	if err != nil {
		status, reason := describe(err)
		c.logger.Error("Can't download object", "bucket", bucket.Name, "key", key, "status", status, "reason", reason)
		return fmt.Errorf("failed to download s3://%s/%s: %w", bucket.Name, key, err)
	}
	defer out.Body.Close()

	file, err := os.Create(target)
	if err != nil {
		return localIOError("create", target, err)
	}

	total := aws.ToInt64(out.ContentLength)
	if out.ContentLength == nil {
		total = -1
	}
	rep := c.progress(description, total)
	n, err := io.Copy(progress.NewWriter(file, total, rep), out.Body)
	rep.Finish()

	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// Clean up the partial file
		os.Remove(target)
		return fmt.Errorf("failed to download s3://%s/%s to %s: %w", bucket.Name, key, target, err)
	}

	c.logger.Debug("Object downloaded", "bucket", bucket.Name, "key", key, "path", target, "size", humanize.Bytes(uint64(n)))
	return nil
}

// ensureDir tolerates an existing directory and fails on anything else in the way.
func (c *Client) ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.logger.Error("Can't create a directory", "dir", dir, "error", err)
		return localIOError("create directory", dir, err)
	}
	return nil
}

// localPath maps key below destDir and rejects keys that would leave it.
func localPath(destDir, key string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(key))
	rel, err := filepath.Rel(destDir, target)
	if err != nil {
		return "", err
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q does not resolve to a file inside %s", key, destDir)
	}
	return target, nil
}

func shortKey(key string) string {
	if len(key) <= shortKeyLen {
		return key
	}
	return "..." + key[len(key)-shortKeyLen:]
}
