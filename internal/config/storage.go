package config

import (
	"fmt"
	"os"
)

// StorageConfig holds configuration for the S3-compatible object store that
// keeps uploaded resume files.
type StorageConfig struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the S3 endpoint for S3-compatible stores
	// (MinIO, R2). Empty means plain AWS S3.
	Endpoint string
}

// NewStorageConfig creates a storage configuration from environment variables.
// It reads S3_REGION, S3_BUCKET, S3_ACCESS_KEY and S3_SECRET_KEY (required)
// and S3_ENDPOINT (optional).
func NewStorageConfig() (*StorageConfig, error) {
	region := os.Getenv("S3_REGION")
	if region == "" {
		return nil, fmt.Errorf("S3_REGION is required but not set")
	}

	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required but not set")
	}

	accessKey := os.Getenv("S3_ACCESS_KEY")
	if accessKey == "" {
		return nil, fmt.Errorf("S3_ACCESS_KEY is required but not set")
	}

	secretKey := os.Getenv("S3_SECRET_KEY")
	if secretKey == "" {
		return nil, fmt.Errorf("S3_SECRET_KEY is required but not set")
	}

	return &StorageConfig{
		Region:    region,
		Bucket:    bucket,
		AccessKey: accessKey,
		SecretKey: secretKey,
		Endpoint:  os.Getenv("S3_ENDPOINT"),
	}, nil
}
