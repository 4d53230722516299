// Package recordings serves mp4 and hdf5 recordings from local disk or S3.
package recordings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/lningthou/asimov-backend/internal/apperr"
)

var contentTypes = map[string]string{
	".mp4":  "video/mp4",
	".hdf5": "application/x-hdf5",
	".h5":   "application/x-hdf5",
}

// Object is an open recording. Size is -1 when unknown.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

type Source interface {
	Open(ctx context.Context, name string) (*Object, error)
}

// ValidateName accepts a bare file name with a recording extension.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: filename is required", apperr.ErrValidation)
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: filename must not contain path separators", apperr.ErrValidation)
	}
	if _, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; !ok {
		return fmt.Errorf("%w: unsupported file type %q", apperr.ErrValidation, filepath.Ext(name))
	}
	return nil
}

func contentType(name string) string {
	return contentTypes[strings.ToLower(filepath.Ext(name))]
}

type LocalSource struct {
	Root string
}

func (s LocalSource) Open(ctx context.Context, name string) (*Object, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.Root, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, name)
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, name)
	}

	return &Object{
		Body:        f,
		Size:        info.Size(),
		ContentType: contentType(name),
	}, nil
}

// GetObjectAPI is the part of the S3 client the source uses.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type S3Source struct {
	client GetObjectAPI
	bucket string
	prefix string
}

func NewS3Source(client GetObjectAPI, bucket string, prefix string) *S3Source {
	return &S3Source{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// NewS3Client loads the default AWS credential chain for region.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg), nil
}

func (s *S3Source) objectKey(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *S3Source) Open(ctx context.Context, name string) (*Object, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	key := s.objectKey(name)
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", apperr.ErrNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}

	size := int64(-1)
	if output.ContentLength != nil {
		size = *output.ContentLength
	}

	ct := contentType(name)
	if ct == "" && output.ContentType != nil {
		ct = *output.ContentType
	}

	return &Object{
		Body:        output.Body,
		Size:        size,
		ContentType: ct,
	}, nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	return false
}
