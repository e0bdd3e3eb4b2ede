package evidence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// objectAPI is the part of the S3 client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Evidence keys carry a fresh uuid, so stored objects never change.
const immutableCacheControl = "public, max-age=31536000, immutable"

// S3Store keeps evidence in an S3 bucket. URLs are presigned GET requests.
type S3Store struct {
	client        objectAPI
	presign       *s3.PresignClient
	bucket        string
	presignExpiry time.Duration
}

// NewS3Store creates a store for bucket using the default AWS credential chain. endpoint is
// optional and selects an S3 compatible service with path style addressing.
func NewS3Store(ctx context.Context, bucket, region, endpoint string) (*S3Store, error) {
	if bucket == "" {
		return nil, errors.New("evidence bucket is required")
	}
	if region == "" {
		return nil, errors.New("evidence bucket region is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:        client,
		presign:       s3.NewPresignClient(client),
		bucket:        bucket,
		presignExpiry: 15 * time.Minute,
	}, nil
}

// Put uploads r under key. The content type follows the key's extension.
func (s *S3Store) Put(ctx context.Context, key string, r io.Reader) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(cleaned),
		Body:         r,
		ContentType:  aws.String(contentType(cleaned)),
		CacheControl: aws.String(immutableCacheControl),
	})
	if err != nil {
		return fmt.Errorf("failed to store evidence %s in bucket %s: %w", cleaned, s.bucket, err)
	}
	return nil
}

// Open downloads the evidence stored under key.
func (s *S3Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleaned),
	})
	if isNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open evidence %s in bucket %s: %w", cleaned, s.bucket, err)
	}
	return out.Body, nil
}

// Exists reports whether evidence is stored under key.
func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return false, err
	}
	err = s.head(ctx, cleaned)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// URL returns a presigned GET URL for the evidence under key, or an s3:// URL when the
// store cannot presign.
func (s *S3Store) URL(ctx context.Context, key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := s.head(ctx, cleaned); err != nil {
		return "", err
	}
	if s.presign == nil {
		return fmt.Sprintf("s3://%s/%s", s.bucket, cleaned), nil
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleaned),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = s.presignExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign evidence %s: %w", cleaned, err)
	}
	return req.URL, nil
}

// head checks a cleaned key, mapping a missing object to ErrNotFound.
func (s *S3Store) head(ctx context.Context, cleaned string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleaned),
	})
	if isNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check evidence %s in bucket %s: %w", cleaned, s.bucket, err)
	}
	return nil
}

func contentType(key string) string {
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}
