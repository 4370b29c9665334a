package minio

import (
	"bytes"
	"context"
	"path"
	"strconv"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molprint/pkg/errors"
	"github.com/turtacn/molprint/pkg/matrix"
)

// NPYContentType is the media type used for uploaded matrices.
const NPYContentType = "application/x-npy"

var ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "artifact not found")

// Artifact describes an uploaded matrix.
type Artifact struct {
	Bucket     string            `json:"bucket"`
	Key        string            `json:"key"`
	ETag       string            `json:"etag"`
	Size       int64             `json:"size"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	UploadedAt time.Time         `json:"uploaded_at"`
}

// ArtifactStore uploads fingerprint matrices as .npy objects.
type ArtifactStore struct {
	client *Client
	logger logging.Logger
	now    func() time.Time
}

// NewArtifactStore returns a store over client.
func NewArtifactStore(client *Client, log logging.Logger) *ArtifactStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ArtifactStore{client: client, logger: log, now: time.Now}
}

// ObjectKey joins the configured prefix, the run id and name.
func (s *ArtifactStore) ObjectKey(runID, name string) string {
	return path.Join(s.client.config.Prefix, runID, name)
}

// PutMatrix encodes m as .npy and uploads it under ObjectKey(runID, name).
// Shape and dtype are recorded as user metadata next to any extra entries.
func (s *ArtifactStore) PutMatrix(ctx context.Context, runID, name string, m matrix.Matrix, extra map[string]string) (*Artifact, error) {
	if s.client.isClosed() {
		return nil, errors.New(errors.ErrCodeStorageError, "minio client is closed")
	}
	var buf bytes.Buffer
	if err := matrix.WriteNPY(&buf, m); err != nil {
		return nil, err
	}
	return s.PutNPY(ctx, runID, name, buf.Bytes(), matrixMetadata(m, extra))
}

// PutNPY uploads already encoded .npy bytes.
func (s *ArtifactStore) PutNPY(ctx context.Context, runID, name string, data []byte, meta map[string]string) (*Artifact, error) {
	key := s.ObjectKey(runID, name)
	bucket := s.client.config.Bucket
	info, err := s.client.api.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  NPYContentType,
		UserMetadata: meta,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "upload failed").WithDetail(key)
	}
	s.logger.Info("uploaded matrix",
		logging.String("bucket", bucket),
		logging.String("key", key),
		logging.Int64("bytes", info.Size))
	return &Artifact{
		Bucket:     bucket,
		Key:        key,
		ETag:       info.ETag,
		Size:       info.Size,
		Metadata:   meta,
		UploadedAt: s.now(),
	}, nil
}

// Stat returns metadata for an uploaded artifact.
func (s *ArtifactStore) Stat(ctx context.Context, key string) (*Artifact, error) {
	bucket := s.client.config.Bucket
	info, err := s.client.api.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound.WithDetail(key)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "stat failed").WithDetail(key)
	}
	return &Artifact{
		Bucket:     bucket,
		Key:        key,
		ETag:       info.ETag,
		Size:       info.Size,
		Metadata:   info.UserMetadata,
		UploadedAt: info.LastModified,
	}, nil
}

// Delete removes an artifact.
func (s *ArtifactStore) Delete(ctx context.Context, key string) error {
	if err := s.client.api.RemoveObject(ctx, s.client.config.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "delete failed").WithDetail(key)
	}
	return nil
}

// PresignedURL returns a time-limited download link. A zero expiry uses the
// configured default.
func (s *ArtifactStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = s.client.config.PresignExpiry
	}
	u, err := s.client.api.PresignedGetObject(ctx, s.client.config.Bucket, key, expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "presign failed").WithDetail(key)
	}
	return u.String(), nil
}

func matrixMetadata(m matrix.Matrix, extra map[string]string) map[string]string {
	meta := make(map[string]string, len(extra)+4)
	for k, v := range extra {
		meta[k] = v
	}
	meta["rows"] = strconv.Itoa(m.Rows())
	meta["cols"] = strconv.Itoa(m.Cols())
	meta["dtype"] = m.DType().String()
	meta["nnz"] = strconv.Itoa(m.NNZ())
	return meta
}
