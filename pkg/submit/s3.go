package submit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/vango-dev/choicegroup/pkg/features/form"
)

// ObjectAPI is the subset of *s3.Client used by S3Sink.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Sink stores submissions as JSON objects under prefix/<id>.json.
type S3Sink struct {
	client ObjectAPI
	bucket string
	prefix string
}

// NewS3Sink creates an S3 sink.
//
// Example usage:
//
//	client := submit.NewS3Client(submit.S3ClientConfig{Region: "eu-west-1"})
//	sink := submit.NewS3Sink(client, "my-bucket", "submissions/")
func NewS3Sink(client ObjectAPI, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: prefix}
}

// S3ClientConfig configures NewS3Client.
type S3ClientConfig struct {
	Region string

	// Endpoint overrides the service endpoint, e.g. for MinIO.
	Endpoint string

	// PathStyle addresses buckets as endpoint/bucket instead of bucket.endpoint.
	PathStyle bool

	// AccessKeyID and SecretAccessKey are static credentials. When empty the
	// client sends unsigned requests.
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Client builds an S3 client from explicit settings.
func NewS3Client(cfg S3ClientConfig) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.PathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		creds := aws.Credentials{
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			Source:          "choicegroup",
		}
		opts.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return creds, nil
		})
	}
	return s3.New(opts)
}

func (s *S3Sink) key(id uuid.UUID) string {
	return path.Join(s.prefix, id.String()+".json")
}

// Save implements form.Sink.
func (s *S3Sink) Save(ctx context.Context, sub form.Submission) error {
	data, err := encode(sub)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(sub.ID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"form":         sub.Form,
			"submitted-at": sub.SubmittedAt.Format("2006-01-02T15:04:05.000Z07:00"),
		},
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", s.key(sub.ID), err)
	}
	return nil
}

// Load implements Store.
func (s *S3Sink) Load(ctx context.Context, id uuid.UUID) (form.Submission, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return form.Submission{}, ErrNotFound
	}
	if err != nil {
		return form.Submission{}, fmt.Errorf("s3 get %s: %w", s.key(id), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return form.Submission{}, err
	}
	return decode(data)
}
