package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const s3Scheme = "s3://"

// ParseS3Path splits an s3://bucket/key URI. The key may be empty.
func ParseS3Path(s3Path string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(s3Path, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("invalid S3 path '%s', expected '%sbucket/key'", s3Path, s3Scheme)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in S3 path '%s'", s3Path)
	}
	return bucket, key, nil
}

// isPrefix reports whether key addresses a "directory" rather than an object.
func isPrefix(key string) bool {
	return key == "" || strings.HasSuffix(key, "/")
}

// DownloadPath downloads s3://bucket/key into destDir. A key that is empty or
// ends in "/" is treated as a prefix and downloaded with DownloadDirectory.
func (c *Client) DownloadPath(ctx context.Context, s3Path, destDir string) error {
	bucketName, key, err := ParseS3Path(s3Path)
	if err != nil {
		return err
	}

	if isPrefix(key) {
		return c.DownloadDirectoryByName(ctx, bucketName, key, destDir)
	}
	return c.DownloadFileByName(ctx, bucketName, key, destDir)
}

// UploadPath uploads localPath to s3://bucket/key. Directories go through
// UploadDirectory with key as the prefix. For a file, a prefix key gets the
// file's base name appended.
func (c *Client) UploadPath(ctx context.Context, localPath, s3Path string) error {
	bucketName, key, err := ParseS3Path(s3Path)
	if err != nil {
		return err
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return localIOError("stat", localPath, err)
	}

	if info.IsDir() {
		return c.UploadDirectoryByName(ctx, bucketName, localPath, key)
	}
	if isPrefix(key) {
		key += filepath.Base(localPath)
	}
	return c.UploadFileByName(ctx, bucketName, key, localPath)
}
