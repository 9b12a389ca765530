package persistent

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/communitycms/media-service/pkg/s3client"
)

// MirrorRepo keeps an off-site copy of the upload tree in an S3-compatible
// bucket, under the same images/ and thumbnails/ keys.
type MirrorRepo struct {
	*s3client.S3Client
	bucket string
}

func NewMirrorRepo(s3c *s3client.S3Client, bucket string) *MirrorRepo {
	return &MirrorRepo{s3c, bucket}
}

func (r *MirrorRepo) UploadBytes(ctx context.Context, key string, data []byte, contentType string, size int64) error {
	b := bytes.NewReader(data)

	_, err := r.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          b,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("MirrorRepo - UploadBytes - r.Client.PutObject: %w", err)
	}

	return nil
}

func (r *MirrorRepo) Delete(ctx context.Context, key string) error {
	_, err := r.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("MirrorRepo - Delete - r.Client.DeleteObject: %w", err)
	}

	return nil
}
