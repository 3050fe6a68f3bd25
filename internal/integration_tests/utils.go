package integrationtests

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/minio"

	"awshelpers/pkg/progress"
	"awshelpers/pkg/storage"
)

const (
	minioUsername = "admin"
	minioPassword = "password"
)

func setupMinioContainer(t *testing.T, ctx context.Context) string {
	minioContainer, err := minio.Run(
		ctx,
		"minio/minio:RELEASE.2024-01-16T16-07-38Z",
		minio.WithUsername(minioUsername),
		minio.WithPassword(minioPassword),
	)
	require.NoError(t, err, "Failed to start MinIO container")

	t.Cleanup(func() {
		err := minioContainer.Terminate(context.Background())
		require.NoError(t, err, "Failed to terminate MinIO container")
	})

	connStr, err := minioContainer.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get MinIO connection string")

	return "http://" + connStr
}

func setupTestClient(t *testing.T, ctx context.Context, opts ...storage.Option) *storage.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping MinIO integration test in short mode")
	}

	endpoint := setupMinioContainer(t, ctx)

	opts = append([]storage.Option{
		storage.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		storage.WithProgress(progress.Discard),
	}, opts...)

	client, err := storage.New(ctx, storage.Config{
		Endpoint:        endpoint,
		Region:          storage.DefaultRegion,
		AccessKeyID:     minioUsername,
		SecretAccessKey: minioPassword,
	}, opts...)
	require.NoError(t, err)
	return client
}

func randomBucketName() string {
	return "test-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
