package infra

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/tnqbao/gau-workorder-service/config"
)

// MinioClient stores task progress and rejection photos. Jobs only ever
// reference the returned URL; the engine itself never touches object
// storage.
type MinioClient struct {
	Client   *minio.Client
	Endpoint string
	Bucket   string
}

func InitMinioClient(cfg *config.EnvConfig) *MinioClient {
	endpoint := cfg.Minio.Endpoint
	if endpoint == "" {
		panic("MinIO endpoint is not configured")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.RootUser, cfg.Minio.RootPassword, ""),
		Secure: false,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO client: %v", err))
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Minio.ImageBucket)
	if err != nil {
		panic(fmt.Sprintf("Failed to check MinIO bucket: %v", err))
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Minio.ImageBucket, minio.MakeBucketOptions{}); err != nil {
			panic(fmt.Sprintf("Failed to create MinIO bucket: %v", err))
		}
	}

	log.Println("Connected to MinIO:", endpoint)

	return &MinioClient{
		Client:   client,
		Endpoint: endpoint,
		Bucket:   cfg.Minio.ImageBucket,
	}
}

// UploadImage stores an image and returns its public URL.
func (m *MinioClient) UploadImage(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := m.Client.PutObject(ctx, m.Bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return fmt.Sprintf("http://%s/%s/%s", m.Endpoint, m.Bucket, objectName), nil
}
