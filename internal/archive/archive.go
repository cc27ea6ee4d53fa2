// Package archive stores raw intake submissions in object storage for audit.
// Archival is a trailing side effect of matter creation and is always
// best-effort; the orchestrator logs failures and moves on.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"matter_intake_backend/platform/config"
	"matter_intake_backend/platform/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store writes intake submissions as JSON objects to a MinIO bucket.
type Store struct {
	client *minio.Client
	bucket string
	log    *logger.Logger
}

// New creates the archive store and ensures the bucket exists.
func New(ctx context.Context, cfg config.ArchiveConfig, log *logger.Logger) (*Store, error) {
	if !cfg.IsArchiveEnabled() {
		return nil, fmt.Errorf("archive storage is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	s := &Store{client: client, bucket: cfg.GetMinIOArchiveBucket(), log: log}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// ArchiveSubmission stores one submission under a key derived from the
// instruction reference and the archival timestamp, so repeated runs of the
// same instruction never overwrite each other.
func (s *Store) ArchiveSubmission(ctx context.Context, instructionRef string, submission any) error {
	if instructionRef == "" {
		instructionRef = "unreferenced"
	}

	payload, err := json.MarshalIndent(submission, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}

	key := fmt.Sprintf("%s/%s.json", instructionRef, time.Now().UTC().Format("20060102T150405Z"))
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to archive submission %s: %w", key, err)
	}

	s.log.Info("intake submission archived", "bucket", s.bucket, "key", key)
	return nil
}
